package session

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Registry keeps the sessions hosted by the server, keyed by id. Sessions
// not touched for longer than ttl are closed by [Registry.Reap].
type Registry struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*entry
	ttl      time.Duration
	clock    Clock
	opts     []Option
	roundEnd func(uuid.UUID, Round)
}

type entry struct {
	session  *Session
	lastSeen time.Time
}

func NewRegistry(ttl time.Duration, clock Clock, opts ...Option) *Registry {
	if clock == nil {
		clock = realClock{}
	}
	return &Registry{
		sessions: make(map[uuid.UUID]*entry),
		ttl:      ttl,
		clock:    clock,
		opts:     opts,
	}
}

// OnRoundEnd registers f to be called with the session id whenever a round
// of a session created afterwards ends.
func (r *Registry) OnRoundEnd(f func(uuid.UUID, Round)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.roundEnd = f
}

// Create starts a new session with config and registers it.
func (r *Registry) Create(config Config) (uuid.UUID, *Session, error) {
	id := uuid.New()

	r.mu.Lock()
	opts := slices.Clip(r.opts)
	if f := r.roundEnd; f != nil {
		opts = append(opts, OnRoundEnd(func(round Round) { f(id, round) }))
	}
	r.mu.Unlock()

	s := New(opts...)
	if err := s.Start(config); err != nil {
		s.Close()
		return uuid.Nil, nil, err
	}

	r.mu.Lock()
	r.sessions[id] = &entry{session: s, lastSeen: r.clock.Now()}
	r.mu.Unlock()

	Log.WithFields(config.Fields()).WithField("id", id).Info("session created")
	return id, s, nil
}

func (r *Registry) Get(id uuid.UUID) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	e.lastSeen = r.clock.Now()
	return e.session, true
}

func (r *Registry) Remove(id uuid.UUID) bool {
	r.mu.Lock()
	e, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if ok {
		e.session.Close()
	}
	return ok
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Reap closes and forgets every session idle for longer than the ttl. It
// returns the number of sessions removed.
func (r *Registry) Reap() int {
	now := r.clock.Now()
	var stale []*Session

	r.mu.Lock()
	for id, e := range r.sessions {
		if now.Sub(e.lastSeen) > r.ttl {
			stale = append(stale, e.session)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range stale {
		s.Close()
	}
	if len(stale) > 0 {
		Log.WithFields(logrus.Fields{
			"reaped": len(stale),
			"left":   r.Len(),
		}).Info("idle sessions reaped")
	}
	return len(stale)
}

// Run reaps idle sessions every interval until ctx is done, then closes
// the remaining sessions.
func (r *Registry) Run(ctx context.Context, interval time.Duration) error {
	ticker := r.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.closeAll()
			return nil
		case <-ticker.C():
			r.Reap()
		}
	}
}

func (r *Registry) closeAll() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[uuid.UUID]*entry)
	r.mu.Unlock()

	for _, e := range sessions {
		e.session.Close()
	}
}
