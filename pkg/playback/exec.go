package playback

import (
	"context"
	"fmt"
	"os/exec"
	"sync"

	"github.com/vidscribe/vidscribe-cli/pkg/logging"
)

// execPlayer drives an external media player process. Each seek replaces the
// running process with a new one started at the target offset, which is how
// command-line players like mpv expose seeking from outside.
type execPlayer struct {
	mu      sync.Mutex
	command string
	url     string
	proc    *exec.Cmd
	log     logging.Logger
}

func (p *execPlayer) playFrom(ctx context.Context, seconds float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()

	cmd := exec.Command(p.command, fmt.Sprintf("--start=%d", int(seconds)), p.url)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting %s: %w", p.command, err)
	}
	p.proc = cmd
	p.log.Debug("player started",
		logging.F("command", p.command),
		logging.F("start_seconds", int(seconds)),
	)

	// Reap the process so it never lingers as a zombie.
	go cmd.Wait()
	return nil
}

func (p *execPlayer) stopLocked() {
	if p.proc != nil && p.proc.Process != nil {
		if err := p.proc.Process.Kill(); err != nil {
			p.log.Debug("stopping previous player", logging.Err(err))
		}
	}
	p.proc = nil
}

func (p *execPlayer) close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
	return nil
}

// ExecIntegration creates embedded players that hand the platform watch URL
// to an external player command. Loading it is trivial; the one-shot loader
// discipline still applies so the lookup happens once.
type ExecIntegration struct {
	command string
	log     logging.Logger
}

// NewExecIntegrationLoader returns a loader whose integration resolves the
// player command on first use.
func NewExecIntegrationLoader(command string, log logging.Logger) *IntegrationLoader {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return NewIntegrationLoader(func(ctx context.Context) (Integration, error) {
		path, err := exec.LookPath(command)
		if err != nil {
			return nil, fmt.Errorf("player command %q not found: %w", command, err)
		}
		log.Debug("player integration loaded", logging.F("command", path))
		return &ExecIntegration{command: path, log: log}, nil
	})
}

// NewPlayer creates an embedded player for the given platform video ID.
func (i *ExecIntegration) NewPlayer(videoID string) (EmbeddedPlayer, error) {
	if videoID == "" {
		return nil, fmt.Errorf("empty video ID")
	}
	return &execEmbeddedPlayer{
		videoID: videoID,
		execPlayer: execPlayer{
			command: i.command,
			url:     WatchURL(videoID),
			log:     i.log,
		},
	}, nil
}

type execEmbeddedPlayer struct {
	execPlayer
	videoID string
}

func (p *execEmbeddedPlayer) VideoID() string { return p.videoID }

func (p *execEmbeddedPlayer) SeekAndPlay(ctx context.Context, seconds float64) error {
	return p.playFrom(ctx, seconds)
}

func (p *execEmbeddedPlayer) Close() error { return p.close() }

// NewExecHostedFactory returns a HostedFactory that plays hosted media URLs
// with the given external player command.
func NewExecHostedFactory(command string, log logging.Logger) HostedFactory {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return func(playbackURL string) (HostedPlayer, error) {
		if playbackURL == "" {
			return nil, fmt.Errorf("empty playback URL")
		}
		return &execHostedPlayer{execPlayer{
			command: command,
			url:     playbackURL,
			log:     log,
		}}, nil
	}
}

type execHostedPlayer struct {
	execPlayer
}

func (p *execHostedPlayer) PlayFrom(ctx context.Context, seconds float64) error {
	return p.playFrom(ctx, seconds)
}

func (p *execHostedPlayer) Close() error { return p.close() }
