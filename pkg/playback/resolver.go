package playback

import (
	"context"
	"fmt"
	"sync"

	vserrors "github.com/vidscribe/vidscribe-cli/pkg/errors"
	"github.com/vidscribe/vidscribe-cli/pkg/logging"
	"github.com/vidscribe/vidscribe-cli/pkg/observability"
	"github.com/vidscribe/vidscribe-cli/pkg/session"
)

// EmbeddedPlayer controls playback through the embedded platform player.
type EmbeddedPlayer interface {
	// VideoID returns the platform video ID this player is bound to.
	VideoID() string

	// SeekAndPlay jumps to the offset and starts playing.
	SeekAndPlay(ctx context.Context, seconds float64) error

	// Close releases the player.
	Close() error
}

// HostedPlayer controls playback of a hosted media file.
type HostedPlayer interface {
	// PlayFrom starts playback at the offset.
	PlayFrom(ctx context.Context, seconds float64) error

	// Close releases the player.
	Close() error
}

// HostedFactory creates a hosted player for a playback URL.
type HostedFactory func(playbackURL string) (HostedPlayer, error)

// Resolver owns the live playback backend for the current analysis result.
// The two backends are mutually exclusive: attaching one tears the other
// down. Attach and Seek carry the session request token, so operations for a
// superseded result fail with ErrPlayerNotReady instead of controlling the
// wrong video.
type Resolver struct {
	mu sync.Mutex

	loader    *IntegrationLoader
	newHosted HostedFactory
	log       logging.Logger
	metrics   *observability.Metrics

	token    uint64
	media    session.MediaRef
	embedded EmbeddedPlayer
	hosted   HostedPlayer
}

// NewResolver creates a resolver. A nil logger is replaced with a no-op
// logger; metrics may be nil.
func NewResolver(loader *IntegrationLoader, newHosted HostedFactory, log logging.Logger, metrics *observability.Metrics) *Resolver {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Resolver{
		loader:    loader,
		newHosted: newHosted,
		log:       log,
		metrics:   metrics,
	}
}

// Attach binds the resolver to the media of the result identified by token.
// Players for other media are torn down first; an embedded player already
// bound to the same video ID is kept rather than recreated. For embedded
// media the integration is loaded on first use, which can block; bound by
// ctx.
func (r *Resolver) Attach(ctx context.Context, token uint64, media session.MediaRef) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.token = token
	r.media = media

	switch media.Kind {
	case session.MediaEmbedded:
		r.closeHostedLocked()
		if r.embedded != nil && r.embedded.VideoID() == media.VideoID {
			return nil
		}
		r.closeEmbeddedLocked()

		integ, err := r.loader.Load(ctx)
		if err != nil {
			return fmt.Errorf("loading player integration: %w", err)
		}
		player, err := integ.NewPlayer(media.VideoID)
		if err != nil {
			return fmt.Errorf("creating embedded player: %w", err)
		}
		r.embedded = player
		r.log.Debug("embedded player attached", logging.F("video_id", media.VideoID))
		return nil

	case session.MediaHosted:
		r.closeEmbeddedLocked()
		r.closeHostedLocked()
		if r.newHosted == nil {
			return fmt.Errorf("no hosted player configured")
		}
		player, err := r.newHosted(media.PlaybackURL)
		if err != nil {
			return fmt.Errorf("creating hosted player: %w", err)
		}
		r.hosted = player
		r.log.Debug("hosted player attached", logging.F("playback_url", media.PlaybackURL))
		return nil

	default:
		r.closeEmbeddedLocked()
		r.closeHostedLocked()
		return nil
	}
}

// Seek jumps the current video to the offset. token must be the session
// request token the caller observed alongside the result; a stale token
// means the result (and its player) have been replaced. ErrPlayerNotReady is
// recoverable: the caller should tell the user to retry in a moment.
func (r *Resolver) Seek(ctx context.Context, token uint64, seconds float64) error {
	r.mu.Lock()
	if token != r.token {
		r.mu.Unlock()
		return fmt.Errorf("%w: result superseded", vserrors.ErrPlayerNotReady)
	}
	kind := r.media.Kind
	embedded := r.embedded
	hosted := r.hosted
	r.mu.Unlock()

	var err error
	switch kind {
	case session.MediaEmbedded:
		if embedded == nil {
			err = fmt.Errorf("%w: embedded player still loading", vserrors.ErrPlayerNotReady)
		} else {
			err = embedded.SeekAndPlay(ctx, seconds)
		}
	case session.MediaHosted:
		if hosted == nil {
			err = fmt.Errorf("%w: hosted player not attached", vserrors.ErrPlayerNotReady)
		} else {
			err = hosted.PlayFrom(ctx, seconds)
		}
	default:
		err = fmt.Errorf("%w: no playable media", vserrors.ErrPlayerNotReady)
	}

	status := "ok"
	if err != nil {
		status = "error"
	}
	r.metrics.ObserveSeek(kind.String(), status)
	if err != nil {
		r.log.Warn("seek failed",
			logging.F("backend", kind.String()),
			logging.F("seconds", seconds),
			logging.Err(err),
		)
		return err
	}
	r.log.Info("seek",
		logging.F("backend", kind.String()),
		logging.F("timestamp", session.FormatTimestamp(seconds)),
	)
	return nil
}

// Close tears down whichever player is live.
func (r *Resolver) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closeEmbeddedLocked()
	r.closeHostedLocked()
	r.media = session.MediaRef{}
}

func (r *Resolver) closeEmbeddedLocked() {
	if r.embedded != nil {
		if err := r.embedded.Close(); err != nil {
			r.log.Warn("closing embedded player", logging.Err(err))
		}
		r.embedded = nil
	}
}

func (r *Resolver) closeHostedLocked() {
	if r.hosted != nil {
		if err := r.hosted.Close(); err != nil {
			r.log.Warn("closing hosted player", logging.Err(err))
		}
		r.hosted = nil
	}
}
