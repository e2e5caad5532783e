package web

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/ibportal/internal/core"
	"github.com/JonMunkholm/ibportal/internal/metrics"
)

var errSessionNotFound = errors.New("session not found")

// viewSession is one mounted table view. The table guards its own state;
// lastSeen is guarded by the store.
type viewSession struct {
	id       uuid.UUID
	def      core.TableDefinition
	table    *core.Table
	lastSeen time.Time
}

// sessionStore holds open table views keyed by a random ID. Views idle for
// longer than ttl are dropped by the janitor.
type sessionStore struct {
	ttl time.Duration
	now func() time.Time

	mu       sync.Mutex
	sessions map[uuid.UUID]*viewSession
}

func newSessionStore(ttl time.Duration) *sessionStore {
	return &sessionStore{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[uuid.UUID]*viewSession),
	}
}

func (s *sessionStore) create(def core.TableDefinition, table *core.Table) *viewSession {
	vs := &viewSession{id: uuid.New(), def: def, table: table}

	s.mu.Lock()
	vs.lastSeen = s.now()
	s.sessions[vs.id] = vs
	n := len(s.sessions)
	s.mu.Unlock()

	metrics.ActiveSessions.Set(float64(n))
	return vs
}

// get returns the session and refreshes its idle timer.
func (s *sessionStore) get(id string) (*viewSession, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", errSessionNotFound, id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	vs, ok := s.sessions[uid]
	if !ok || s.expired(vs) {
		return nil, fmt.Errorf("%w: %s", errSessionNotFound, uid)
	}
	vs.lastSeen = s.now()
	return vs, nil
}

func (s *sessionStore) expired(vs *viewSession) bool {
	return s.now().Sub(vs.lastSeen) > s.ttl
}

func (s *sessionStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// sweep removes expired sessions and returns how many it removed.
func (s *sessionStore) sweep() int {
	s.mu.Lock()
	removed := 0
	for id, vs := range s.sessions {
		if s.expired(vs) {
			delete(s.sessions, id)
			removed++
		}
	}
	n := len(s.sessions)
	s.mu.Unlock()

	metrics.ActiveSessions.Set(float64(n))
	return removed
}

// janitor sweeps every interval until ctx is done.
func (s *sessionStore) janitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}
