package app

import (
	"time"

	"github.com/EdJGM/ChatSala-WebSocket/internal/clock"
	"github.com/EdJGM/ChatSala-WebSocket/internal/domain"
	"github.com/rs/zerolog/log"
)

const DefaultIdleWindow = 10 * time.Minute

// expiryToken is the cancellation handle kept on a room while its
// deletion check is pending. A room holds at most one.
type expiryToken struct {
	timer *clock.Timer
}

// ExpiryScheduler arms one-shot deletion checks for empty rooms. It
// never takes the store lock itself; Arm and Disarm run under it and
// fire re-acquires it.
type ExpiryScheduler struct {
	clock clock.Clock
	idle  time.Duration
	fire  func(pin domain.PIN, token *expiryToken)
}

func newExpiryScheduler(c clock.Clock, idle time.Duration, fire func(domain.PIN, *expiryToken)) *ExpiryScheduler {
	if idle <= 0 {
		idle = DefaultIdleWindow
	}
	return &ExpiryScheduler{clock: c, idle: idle, fire: fire}
}

func (s *ExpiryScheduler) IdleWindow() time.Duration { return s.idle }

// Arm replaces any pending check on r with a fresh full idle window.
func (s *ExpiryScheduler) Arm(r *roomState) {
	s.Disarm(r)
	pin := r.meta.PIN
	token := &expiryToken{}
	token.timer = s.clock.AfterFunc(s.idle, func() { s.fire(pin, token) })
	r.expiry = token
	log.Debug().Str("module", "app.expiry").Str("pin", string(pin)).Dur("idle", s.idle).Msg("expiry armed")
}

// Disarm is safe when nothing is pending or the check already fired.
func (s *ExpiryScheduler) Disarm(r *roomState) {
	if r.expiry == nil {
		return
	}
	r.expiry.timer.Stop()
	r.expiry = nil
	log.Debug().Str("module", "app.expiry").Str("pin", string(r.meta.PIN)).Msg("expiry disarmed")
}
