package host

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
	"ulascansenturk/weather-glasses/internal/session"
)

var (
	ErrSessionExists   = errors.New("session already exists")
	ErrSessionNotFound = errors.New("session not found")
)

type SessionHandler func(ctx context.Context, sess session.Session) error

type entry struct {
	sess   *LocalSession
	cancel context.CancelFunc
	done   chan struct{}
}

// Registry tracks live sessions and the goroutine serving each of them.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*entry
	logger   zerolog.Logger
}

func NewRegistry(logger zerolog.Logger) *Registry {
	return &Registry{
		sessions: make(map[string]*entry),
		logger:   logger.With().Str("component", "session_registry").Logger(),
	}
}

// Start registers sess and runs handler for it in its own goroutine. The handler context is
// cancelled by Stop.
func (r *Registry) Start(parent context.Context, sess *LocalSession, handler SessionHandler) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[sess.ID()]; exists {
		return ErrSessionExists
	}

	ctx, cancel := context.WithCancel(parent)
	e := &entry{sess: sess, cancel: cancel, done: make(chan struct{})}
	r.sessions[sess.ID()] = e

	go func() {
		defer close(e.done)
		if err := handler(ctx, sess); err != nil && !errors.Is(err, context.Canceled) {
			r.logger.Error().Err(err).Str("session_id", sess.ID()).Msg("session handler stopped")
		}
	}()

	return nil
}

func (r *Registry) Get(id string) (*LocalSession, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	return e.sess, true
}

// Stop cancels the session handler, closes the session and waits for the handler to return.
func (r *Registry) Stop(ctx context.Context, id string) (*LocalSession, error) {
	r.mu.Lock()
	e, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	r.mu.Unlock()

	if !ok {
		return nil, ErrSessionNotFound
	}

	e.cancel()
	e.sess.Close()

	select {
	case <-e.done:
		return e.sess, nil
	case <-ctx.Done():
		return e.sess, ctx.Err()
	}
}

func (r *Registry) StopAll(ctx context.Context) {
	r.mu.Lock()
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	r.mu.Unlock()

	for _, id := range ids {
		if _, err := r.Stop(ctx, id); err != nil && !errors.Is(err, ErrSessionNotFound) {
			r.logger.Warn().Err(err).Str("session_id", id).Msg("failed to stop session")
		}
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
