package wizard

import (
	"log/slog"
	"sync"
)

type entry struct {
	mu      sync.Mutex
	session *Session
}

// Registry keeps one wizard session per login. Each session is guarded by
// its own mutex so requests from the same login run one at a time.
type Registry struct {
	backend Backend
	today   func() string
	log     *slog.Logger

	mu       sync.Mutex
	sessions map[string]*entry
}

// NewRegistry returns a Registry creating sessions for today's date.
func NewRegistry(backend Backend, today func() string, log *slog.Logger) *Registry {
	if log == nil {
		log = slog.Default()
	}
	return &Registry{
		backend:  backend,
		today:    today,
		log:      log,
		sessions: make(map[string]*entry),
	}
}

func (r *Registry) entry(key string) *entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[key]
	if !ok {
		e = &entry{}
		r.sessions[key] = e
	}
	return e
}

// With runs fn on the session for key, creating it when missing. A session
// left over from an earlier date is replaced by a fresh one.
func (r *Registry) With(key string, fn func(*Session) error) error {
	e := r.entry(key)
	e.mu.Lock()
	defer e.mu.Unlock()

	date := r.today()
	if e.session == nil || e.session.Date() != date {
		e.session = NewSession(r.backend, date, r.log)
	}
	return fn(e.session)
}

// Drop forgets the session for key.
func (r *Registry) Drop(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, key)
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
