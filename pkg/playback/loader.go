// Package playback routes seek requests to whichever playback backend the
// current analysis result uses: the embedded streaming-platform player or an
// external player for hosted media files. At most one backend is live at a
// time.
package playback

import (
	"context"
	"sync"
)

// LoadState is the lifecycle state of the embedded player integration.
type LoadState int

const (
	// StateUnloaded means no load has started, or the last load failed.
	StateUnloaded LoadState = iota
	// StateLoading means a load is in flight.
	StateLoading
	// StateReady means the integration loaded and stays loaded for the
	// rest of the session.
	StateReady
)

// String returns a human-readable name for the load state.
func (s LoadState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	default:
		return "unloaded"
	}
}

// Integration creates embedded players once its runtime is loaded.
type Integration interface {
	// NewPlayer creates a player bound to the given platform video ID.
	NewPlayer(videoID string) (EmbeddedPlayer, error)
}

// LoadFunc performs the actual one-time integration load.
type LoadFunc func(ctx context.Context) (Integration, error)

// IntegrationLoader performs a lazy, shared, one-shot load of the embedded
// player integration. Concurrent callers share a single in-flight load
// rather than starting duplicates. A failed load resets to unloaded so a
// later call can retry; a successful load is kept for the session.
type IntegrationLoader struct {
	mu sync.Mutex

	state       LoadState
	integration Integration
	loadErr     error
	done        chan struct{}

	loadFn LoadFunc
}

// NewIntegrationLoader creates a loader that uses loadFn for the actual load.
func NewIntegrationLoader(loadFn LoadFunc) *IntegrationLoader {
	return &IntegrationLoader{loadFn: loadFn}
}

// State returns the current load state.
func (l *IntegrationLoader) State() LoadState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Load returns the integration, starting the load on first use. Callers
// arriving while a load is in flight wait on that same load. ctx only bounds
// this caller's wait; it does not cancel the shared load itself.
func (l *IntegrationLoader) Load(ctx context.Context) (Integration, error) {
	l.mu.Lock()
	if l.state == StateReady {
		integ := l.integration
		l.mu.Unlock()
		return integ, nil
	}
	if l.state == StateUnloaded {
		l.state = StateLoading
		l.done = make(chan struct{})
		go l.run(l.done)
	}
	done := l.done
	l.mu.Unlock()

	select {
	case <-done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == StateReady {
		return l.integration, nil
	}
	return nil, l.loadErr
}

func (l *IntegrationLoader) run(done chan struct{}) {
	integ, err := l.loadFn(context.Background())

	l.mu.Lock()
	if err != nil {
		l.state = StateUnloaded
		l.loadErr = err
	} else {
		l.state = StateReady
		l.integration = integ
		l.loadErr = nil
	}
	l.mu.Unlock()
	close(done)
}
