package orch

import (
	"sync"
	"time"

	"github.com/EdJGM/ChatSala-WebSocket/internal/app"
	"github.com/EdJGM/ChatSala-WebSocket/internal/core"
	"github.com/EdJGM/ChatSala-WebSocket/internal/domain"
	"github.com/rs/zerolog/log"
)

const defaultLookupTimeout = 2 * time.Second

// Limits bounds what a client may ask for. Zero means unbounded, except
// LookupTimeout which falls back to two seconds.
type Limits struct {
	MaxParticipants int
	MaxMessageLen   int
	LookupTimeout   time.Duration
}

// Orchestrator is the composition root of the coordination service. It
// owns no state itself; rooms live in Rooms, live connections in Registry.
type Orchestrator struct {
	Registry *app.Registry
	Rooms    *app.Store
	Admin    app.AdminQuery
	Relay    *app.Relay
	Policy   app.Policy
	Resolver HostResolver
	Limits   Limits

	// membership is held from a roster change in Rooms until its events
	// are queued, so members see rosters in the order the store applied them.
	membership sync.Mutex
}

// Connect binds a freshly opened connection and returns its session.
func (o *Orchestrator) Connect(sid domain.SessionID, addr string, conn core.SignalConnection) *Session {
	s := &Session{id: sid, addr: addr, conn: conn, o: o}
	o.Registry.Bind(s)
	log.Info().Str("module", "orch").Str("sid", string(sid)).Str("ip", addr).Msg("session connected")
	return s
}

// OnRoomExpired is the store's expiry hook.
func (o *Orchestrator) OnRoomExpired(room domain.Room) {
	log.Info().Str("module", "orch").Str("pin", string(room.PIN)).Str("name", room.Name).Msg("room removed for inactivity")
	o.publishAll(core.RoomsUpdate{})
}

func (o *Orchestrator) publish(to []domain.SessionID, ev core.Event) {
	o.onPublished(o.Relay.Broadcast(to, ev))
}

func (o *Orchestrator) publishAll(ev core.Event) {
	o.onPublished(o.Relay.BroadcastAll(ev))
}

func (o *Orchestrator) onPublished(res core.PublishResult) {
	if o.Policy == nil {
		return
	}
	for _, sid := range res.Dropped {
		switch o.Policy.OnBackPressure(sid) {
		case app.KickMember:
			o.KickBySID(sid)
		case app.NoAction:
		}
	}
}

// KickBySID closes the session's transport; the transport's disconnect
// path then performs the usual leave cleanup.
func (o *Orchestrator) KickBySID(sid domain.SessionID) {
	sess, ok := o.Registry.GetSession(sid)
	if !ok {
		return
	}
	log.Warn().Str("module", "orch").Str("sid", string(sid)).Msg("kicking slow session")
	sess.Signal().Close()
}
