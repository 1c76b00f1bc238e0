package app

import (
	"errors"
	"sync"

	"github.com/EdJGM/ChatSala-WebSocket/internal/core"
	"github.com/EdJGM/ChatSala-WebSocket/internal/domain"
	"github.com/rs/zerolog/log"
)

var ErrNoSession = errors.New("session not connected")

// Relay fans encoded events out to sessions found in the registry.
// Delivery is best effort: a full or closed queue drops the frame for
// that session and reports it in the result.
type Relay struct {
	registry *Registry

	// mu serialises fan-outs so every recipient sees the same order.
	mu sync.Mutex
}

func NewRelay(registry *Registry) *Relay {
	return &Relay{registry: registry}
}

// Broadcast delivers ev to every listed session that is still connected.
func (r *Relay) Broadcast(to []domain.SessionID, ev core.Event) core.PublishResult {
	frame, err := core.EncodeEvent(ev)
	if err != nil {
		log.Error().Err(err).Str("module", "app.relay").Str("event", ev.EventName()).Msg("encode event")
		return core.PublishResult{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	res := core.PublishResult{}
	for _, sid := range to {
		sess, ok := r.registry.GetSession(sid)
		if !ok {
			continue
		}
		r.deliver(sess, frame, &res)
	}
	log.Debug().Str("module", "app.relay").Str("event", ev.EventName()).Int("sent_to", res.SendTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	return res
}

// BroadcastAll delivers ev to every connected session.
func (r *Relay) BroadcastAll(ev core.Event) core.PublishResult {
	frame, err := core.EncodeEvent(ev)
	if err != nil {
		log.Error().Err(err).Str("module", "app.relay").Str("event", ev.EventName()).Msg("encode event")
		return core.PublishResult{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	res := core.PublishResult{}
	for _, sess := range r.registry.Snapshot() {
		r.deliver(sess, frame, &res)
	}
	return res
}

// SendTo delivers ev to a single session.
func (r *Relay) SendTo(sid domain.SessionID, ev core.Event) error {
	sess, ok := r.registry.GetSession(sid)
	if !ok {
		return ErrNoSession
	}
	frame, err := core.EncodeEvent(ev)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return sess.Signal().TrySend(frame)
}

func (r *Relay) deliver(sess core.MemberSession, frame core.Frame, res *core.PublishResult) {
	if err := sess.Signal().TrySend(frame); err != nil {
		res.Dropped = append(res.Dropped, sess.ID())
		return
	}
	res.SendTo++
}
