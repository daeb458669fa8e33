// Package submit coordinates analysis submissions against the session store.
// It enforces the at-most-one-result discipline: every submission gets a
// request token, and only the holder of the current token may install a
// result or failure.
package submit

import (
	"context"
	"io"

	"github.com/vidscribe/vidscribe-cli/client"
	vserrors "github.com/vidscribe/vidscribe-cli/pkg/errors"
	"github.com/vidscribe/vidscribe-cli/pkg/logging"
	"github.com/vidscribe/vidscribe-cli/pkg/session"
)

// API is the slice of the service client the controller needs.
type API interface {
	Analyze(ctx context.Context, req *client.AnalyzeRequest) (*client.AnalyzeResult, error)
}

// Source identifies the video to analyze. Exactly one of URL, FilePath, or
// File should be set.
type Source struct {
	URL      string
	FilePath string
	File     io.Reader
	Filename string
}

// isEmpty reports whether no video source was provided.
func (s Source) isEmpty() bool {
	return s.URL == "" && s.FilePath == "" && s.File == nil
}

// Options carries per-submission settings.
type Options struct {
	// Language is the transcription language tag.
	Language string
}

// Controller runs submissions and applies their outcomes to the store.
type Controller struct {
	store *session.Store
	api   API
	log   logging.Logger
}

// NewController creates a submission controller. A nil logger is replaced
// with a no-op logger.
func NewController(store *session.Store, api API, log logging.Logger) *Controller {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Controller{store: store, api: api, log: log}
}

// Submit runs one analysis submission to completion. It blocks until the
// service responds or ctx is cancelled; callers wanting fire-and-forget run
// it in a goroutine. A submission started after this one supersedes it, in
// which case the outcome is discarded and the store is left untouched.
//
// The returned error reports this call's own outcome even when superseded.
func (c *Controller) Submit(ctx context.Context, src Source, opts Options) error {
	// Validation failures never consume a token; an empty form does not
	// supersede an in-flight submission.
	if src.isEmpty() {
		c.log.Warn("submission rejected: no video source")
		return vserrors.ErrMissingSource
	}

	token := c.store.Begin()
	log := c.log.With(logging.F("request_token", token))
	log.Info("submitting video for analysis",
		logging.F("url", src.URL),
		logging.F("file", src.FilePath),
		logging.F("language", opts.Language),
	)

	out, err := c.api.Analyze(ctx, &client.AnalyzeRequest{
		VideoURL: src.URL,
		FilePath: src.FilePath,
		File:     src.File,
		Filename: src.Filename,
		Language: opts.Language,
	})
	if err != nil {
		reason := failureReason(err)
		if !c.store.Fail(token, reason) {
			log.Debug("discarding superseded failure")
		} else {
			log.Error("submission failed", logging.Err(err))
		}
		return err
	}

	if !c.store.Complete(token, out.Result, out.SoftError) {
		log.Debug("discarding superseded result")
		return nil
	}

	log.Info("analysis complete",
		logging.F("video_title", out.Result.VideoTitle),
		logging.F("segments", len(out.Result.Transcript)),
		logging.F("soft_error", out.SoftError),
	)
	return nil
}

// failureReason maps a submission error to the user-facing failure text.
// Transport failures get a distinct message so users can tell an unreachable
// service from a processing error.
func failureReason(err error) string {
	switch {
	case vserrors.IsTransport(err):
		return "could not reach the analysis service; check that it is running and try again"
	case vserrors.IsServer(err):
		return err.Error()
	default:
		return "analysis failed: " + err.Error()
	}
}
