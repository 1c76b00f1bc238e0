package app

import (
	"sync"

	"github.com/EdJGM/ChatSala-WebSocket/internal/core"
	"github.com/EdJGM/ChatSala-WebSocket/internal/domain"
	"github.com/rs/zerolog/log"
)

// Registry maps live session ids to their transport endpoints.
type Registry struct {
	mu       sync.RWMutex
	sessions map[domain.SessionID]core.MemberSession
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[domain.SessionID]core.MemberSession)}
}

func (r *Registry) Bind(sess core.MemberSession) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sess.ID()] = sess
	log.Info().Str("module", "app.registry").Str("sid", string(sess.ID())).Msg("bound session")
}

func (r *Registry) Unbind(sid domain.SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[sid]; !ok {
		return
	}
	delete(r.sessions, sid)
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("unbind session")
}

func (r *Registry) GetSession(sid domain.SessionID) (core.MemberSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sess, ok := r.sessions[sid]
	return sess, ok
}

// Snapshot returns every bound session.
func (r *Registry) Snapshot() []core.MemberSession {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.MemberSession, 0, len(r.sessions))
	for _, sess := range r.sessions {
		out = append(out, sess)
	}
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
