package orch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/EdJGM/ChatSala-WebSocket/internal/core"
	"github.com/EdJGM/ChatSala-WebSocket/internal/domain"
	"github.com/rs/zerolog/log"
)

type State int

const (
	Unidentified State = iota
	Identified
	InRoom
	Closed
)

func (s State) String() string {
	switch s {
	case Unidentified:
		return "unidentified"
	case Identified:
		return "identified"
	case InRoom:
		return "in_room"
	case Closed:
		return "closed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Session is the controller of one connection. Commands are applied one
// at a time (op); fields are guarded by mu, which is never held while
// calling into the store, the relay or another session.
type Session struct {
	id   domain.SessionID
	addr string
	conn core.SignalConnection
	o    *Orchestrator

	op sync.Mutex

	mu          sync.Mutex
	fingerprint domain.Fingerprint
	pin         domain.PIN
	nickname    string
	closed      bool
}

func (s *Session) ID() domain.SessionID          { return s.id }
func (s *Session) Signal() core.SignalConnection { return s.conn }
func (s *Session) Address() string               { return s.addr }

// Detach forgets pin if it is still the session's room. The creator
// deleted it; there is nothing left to leave.
func (s *Session) Detach(pin domain.PIN) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pin == pin {
		s.pin = ""
		s.nickname = ""
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.closed:
		return Closed
	case s.pin != "":
		return InRoom
	case s.fingerprint != "":
		return Identified
	}
	return Unidentified
}

func (s *Session) Fingerprint() domain.Fingerprint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fingerprint
}

// Room returns the PIN the session is seated in, if any.
func (s *Session) Room() (domain.PIN, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pin, s.pin != ""
}

// Handle applies one inbound command. Failures are reported to this
// session only.
func (s *Session) Handle(ctx context.Context, cmd core.Command) {
	s.op.Lock()
	defer s.op.Unlock()
	if s.State() == Closed {
		return
	}

	switch c := cmd.(type) {
	case core.Register:
		s.register(ctx, c)
	case core.CreateRoom:
		s.createRoom(c)
	case core.JoinRoom:
		s.joinRoom(c)
	case core.SendMessage:
		s.sendMessage(c)
	case core.GetRooms:
		if fp, ok := s.identity(); ok {
			s.emit(s.o.Admin.Rooms(fp))
		}
	case core.GetCreatorRooms:
		if fp, ok := s.identity(); ok {
			s.emit(s.o.Admin.CreatorRooms(fp))
		}
	case core.DeleteRoom:
		s.deleteRoom(c)
	case core.LeaveRoom:
		s.leave(false)
	default:
		log.Warn().Str("module", "orch").Str("sid", string(s.id)).Str("command", cmd.CommandName()).Msg("unhandled command")
	}
}

// Close runs the leave cleanup and unbinds the session. Safe to call
// more than once.
func (s *Session) Close() {
	s.op.Lock()
	defer s.op.Unlock()
	if s.State() == Closed {
		return
	}
	s.leave(true)
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.o.Registry.Unbind(s.id)
	log.Info().Str("module", "orch").Str("sid", string(s.id)).Msg("session closed")
}

func (s *Session) register(ctx context.Context, c core.Register) {
	fp := domain.Fingerprint(strings.TrimSpace(string(c.Fingerprint)))
	if fp == "" {
		s.fail(fmt.Errorf("%w: fingerprint is required", domain.ErrValidation))
		return
	}

	s.mu.Lock()
	if s.fingerprint != "" && s.fingerprint != fp {
		s.mu.Unlock()
		log.Warn().Str("module", "orch").Str("sid", string(s.id)).Str("fingerprint", string(fp)).Msg("conflicting fingerprint ignored")
		s.fail(domain.ErrFingerprintConflict)
		return
	}
	s.fingerprint = fp
	s.mu.Unlock()

	log.Info().Str("module", "orch").Str("sid", string(s.id)).Str("ip", s.addr).Str("fingerprint", string(fp)).Msg("fingerprint registered")
	s.emit(s.o.Admin.CreatorRooms(fp))
	go s.sendHostInfo(ctx, fp)
}

// identity returns the registered fingerprint or reports ErrUnregistered.
func (s *Session) identity() (domain.Fingerprint, bool) {
	fp := s.Fingerprint()
	if fp == "" {
		s.fail(domain.ErrUnregistered)
		return "", false
	}
	return fp, true
}

func (s *Session) emit(ev core.Event) {
	if err := s.o.Relay.SendTo(s.id, ev); err != nil {
		log.Debug().Err(err).Str("module", "orch").Str("sid", string(s.id)).Str("event", ev.EventName()).Msg("emit failed")
	}
}

// fail reports err to this session. Missing and full rooms have their
// own events so clients can redirect; everything else is a generic error.
func (s *Session) fail(err error) {
	switch {
	case errors.Is(err, domain.ErrRoomNotFound):
		s.emit(core.RoomNotFound{})
	case errors.Is(err, domain.ErrRoomFull):
		s.emit(core.RoomFull{})
	default:
		s.emit(core.ErrorEvent{Message: err.Error()})
	}
}
