package detail

import (
	"errors"
	"time"

	"atlas/internal/metrics"
	"atlas/internal/service/storage"
	"atlas/internal/util"

	"go.uber.org/zap"
)

// ErrSessionNotFound is returned for unknown or expired session ids
var ErrSessionNotFound = errors.New("session not found")

const sessionShards = 16

// Session is one mounted page instance
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`

	*Assembler `json:"-"`
}

// Registry tracks live sessions. Every lookup refreshes the session's idle
// timer.
type Registry struct {
	deps     Dependencies
	sessions storage.Storage[string, *Session]
	logger   *zap.Logger
}

func NewRegistry(deps Dependencies) *Registry {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		deps:     deps,
		sessions: storage.NewShardedMemoryStorage[string, *Session](sessionShards, nil),
		logger:   logger,
	}
}

// Create mounts a new page instance with no active entity
func (r *Registry) Create() *Session {
	s := &Session{
		ID:        util.ShortUUID(),
		CreatedAt: time.Now().UTC(),
		Assembler: NewAssembler(r.deps),
	}
	r.sessions.Set(s.ID, s)
	metrics.ActiveSessions.Set(float64(r.sessions.Count()))

	r.logger.Debug("session created", zap.String("session_id", s.ID))
	return s
}

// Get returns the session and marks it as used
func (r *Registry) Get(id string) (*Session, error) {
	s, ok := r.sessions.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	r.sessions.Touch(id)
	return s, nil
}

// Delete unmounts the session and discards its state
func (r *Registry) Delete(id string) error {
	s, ok := r.sessions.Get(id)
	if !ok {
		return ErrSessionNotFound
	}
	r.sessions.Delete(id)
	s.Close()
	metrics.ActiveSessions.Set(float64(r.sessions.Count()))

	r.logger.Debug("session deleted", zap.String("session_id", id))
	return nil
}

// SweepIdle removes sessions unused for longer than ttl and returns their ids
func (r *Registry) SweepIdle(ttl time.Duration) []string {
	return r.sweepBefore(time.Now().Add(-ttl))
}

func (r *Registry) sweepBefore(cutoff time.Time) []string {
	var closing []*Session
	r.sessions.ForEach(func(id string, s *Session) bool {
		closing = append(closing, s)
		return true
	})

	removed := r.sessions.DeleteIdle(cutoff)
	removedSet := make(map[string]struct{}, len(removed))
	for _, id := range removed {
		removedSet[id] = struct{}{}
	}
	for _, s := range closing {
		if _, ok := removedSet[s.ID]; ok {
			s.Close()
		}
	}

	metrics.ActiveSessions.Set(float64(r.sessions.Count()))
	if len(removed) > 0 {
		r.logger.Info("idle sessions swept", zap.Int("count", len(removed)))
	}
	return removed
}

// Count returns the number of live sessions
func (r *Registry) Count() int {
	return r.sessions.Count()
}
