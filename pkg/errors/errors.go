// Package errors provides common domain error types for the vidscribe CLI.
//
// This package defines sentinel errors for the failure modes a session can
// hit (a submission with no source, an unreachable analysis service, a seek
// against a player that is not ready) so callers can use errors.Is() checks
// instead of string matching. All of these are recovered at the component
// boundary and surfaced as user-visible text; none abort the session.
//
// Usage:
//
//	import vserrors "github.com/vidscribe/vidscribe-cli/pkg/errors"
//
//	// Return a domain error
//	return vserrors.ErrMissingSource
//
//	// Check for domain errors
//	if vserrors.IsPlayerNotReady(err) {
//	    // show a hint instead of failing the command
//	}
package errors

import "errors"

// Domain errors - sentinel errors for session failure modes.
var (
	// ErrMissingSource indicates a submission with neither a file nor a URL.
	// Detected locally; no network call is attempted.
	ErrMissingSource = errors.New("no video file or URL provided")

	// ErrTransport indicates the request never reached (or never returned
	// from) the analysis service.
	ErrTransport = errors.New("analysis service unreachable")

	// ErrServer indicates the analysis service answered with a non-2xx
	// status and an error message.
	ErrServer = errors.New("analysis service error")

	// ErrPlayerNotReady indicates a seek was attempted before any playback
	// backend finished initializing, or against a superseded one.
	ErrPlayerNotReady = errors.New("player not ready")
)

// IsMissingSource reports whether any error in err's chain is ErrMissingSource.
func IsMissingSource(err error) bool {
	return errors.Is(err, ErrMissingSource)
}

// IsTransport reports whether any error in err's chain is ErrTransport.
func IsTransport(err error) bool {
	return errors.Is(err, ErrTransport)
}

// IsServer reports whether any error in err's chain is ErrServer.
func IsServer(err error) bool {
	return errors.Is(err, ErrServer)
}

// IsPlayerNotReady reports whether any error in err's chain is ErrPlayerNotReady.
func IsPlayerNotReady(err error) bool {
	return errors.Is(err, ErrPlayerNotReady)
}
