package orch

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/EdJGM/ChatSala-WebSocket/internal/app"
	"github.com/EdJGM/ChatSala-WebSocket/internal/core"
	"github.com/EdJGM/ChatSala-WebSocket/internal/domain"
	"github.com/rs/zerolog/log"
)

func (s *Session) createRoom(c core.CreateRoom) {
	fp, ok := s.identity()
	if !ok {
		return
	}
	spec, err := domain.RoomSpec{
		Name:                    c.Name,
		MaxParticipants:         int(c.MaxParticipants),
		Encrypted:               c.Encrypted,
		OneConnectionPerMachine: c.OneConnectionPerMachine,
	}.Normalize(s.o.Limits.MaxParticipants)
	if err != nil {
		s.fail(err)
		return
	}

	room, err := s.o.Rooms.CreateRoom(spec, fp)
	if err != nil {
		s.fail(err)
		return
	}
	s.emit(core.RoomCreated{
		PIN:                     room.PIN,
		Name:                    room.Name,
		MaxParticipants:         room.MaxParticipants,
		Encrypted:               room.Encrypted,
		OneConnectionPerMachine: room.OneConnectionPerMachine,
	})
	s.o.publishAll(core.RoomsUpdate{})
}

func (s *Session) joinRoom(c core.JoinRoom) {
	fp, ok := s.identity()
	if !ok {
		return
	}
	nick, err := domain.NormalizeNickname(c.Nickname)
	if err != nil {
		s.fail(err)
		return
	}
	pin := domain.PIN(strings.TrimSpace(string(c.RoomPin)))
	if !pin.Valid() {
		s.fail(domain.ErrRoomNotFound)
		return
	}

	current, _ := s.Room()
	p := domain.Participant{
		SessionID:   s.id,
		Nickname:    nick,
		Address:     s.addr,
		Fingerprint: fp,
	}

	// Held until the session records its seat, so a concurrent delete
	// either refuses this join or finds the seat and detaches it.
	s.o.membership.Lock()
	defer s.o.membership.Unlock()

	var (
		dep    app.Departure
		moved  bool
		roster app.Roster
	)
	if current != "" && current != pin {
		dep, roster, err = s.o.Rooms.MoveParticipant(current, pin, p)
		moved = err == nil && dep.Participant.SessionID == s.id
	} else {
		roster, err = s.o.Rooms.AddParticipant(pin, p)
	}
	if err != nil {
		s.fail(err)
		return
	}

	s.mu.Lock()
	s.pin = pin
	s.nickname = nick
	s.mu.Unlock()

	if moved {
		log.Info().Str("module", "orch").Str("sid", string(s.id)).Str("from_room", string(current)).Str("to_room", string(pin)).Msg("left for another room")
		s.announceDeparture(dep)
		s.emit(core.RoomLeft{})
	}

	log.Info().Str("module", "orch").Str("sid", string(s.id)).Str("room", string(pin)).Str("nickname", nick).Msg("joined room")
	s.o.publish(roster.Members, core.UserJoined{Nickname: nick})
	s.o.publish(roster.Members, core.ParticipantsUpdate(roster.Participants))
	s.o.publishAll(core.RoomsUpdate{})
}

func (s *Session) sendMessage(c core.SendMessage) {
	pin, seated := s.Room()
	if !seated {
		log.Debug().Str("module", "orch").Str("sid", string(s.id)).Msg("message outside a room dropped")
		return
	}
	members, ok := s.o.Rooms.Members(pin, s.id)
	if !ok {
		log.Debug().Str("module", "orch").Str("sid", string(s.id)).Str("room", string(pin)).Msg("message for a room we are no longer in dropped")
		return
	}
	if limit := s.o.Limits.MaxMessageLen; limit > 0 && utf8.RuneCountInString(c.Message) > limit {
		s.fail(fmt.Errorf("%w: message longer than %d characters", domain.ErrValidation, limit))
		return
	}
	log.Debug().Str("module", "orch").Str("room", string(pin)).Str("author", c.Author).Msg("relaying message")
	s.o.publish(members, core.ChatMessage(c))
}

func (s *Session) deleteRoom(c core.DeleteRoom) {
	fp, ok := s.identity()
	if !ok {
		return
	}
	pin := domain.PIN(strings.TrimSpace(string(c.RoomPin)))

	s.o.membership.Lock()
	defer s.o.membership.Unlock()
	members, err := s.o.Rooms.DeleteRoom(pin, fp)
	if err != nil {
		s.fail(err)
		return
	}

	s.o.publish(members, core.RoomDeleted{PIN: pin})
	for _, sid := range members {
		if sess, ok := s.o.Registry.GetSession(sid); ok {
			sess.Detach(pin)
		}
	}
	s.emit(core.RoomDeletedSuccess(pin))
	s.o.publishAll(core.RoomsUpdate{})
}

// leave unseats the session from its current room. Without a room it
// does nothing, so explicit leave followed by disconnect is harmless.
func (s *Session) leave(closing bool) {
	s.o.membership.Lock()
	defer s.o.membership.Unlock()

	s.mu.Lock()
	pin := s.pin
	s.pin = ""
	s.nickname = ""
	s.mu.Unlock()
	if pin == "" {
		return
	}

	dep, ok := s.o.Rooms.RemoveParticipant(pin, s.id)
	if !ok {
		return
	}
	log.Info().Str("module", "orch").Str("sid", string(s.id)).Str("room", string(pin)).Bool("disconnect", closing).Msg("left room")
	s.announceDeparture(dep)
	if !closing {
		s.emit(core.RoomLeft{})
	}
	s.o.publishAll(core.RoomsUpdate{})
}

// announceDeparture tells the members left behind.
func (s *Session) announceDeparture(dep app.Departure) {
	s.o.publish(dep.Members, core.UserLeft{Nickname: dep.Participant.Nickname})
	s.o.publish(dep.Members, core.ParticipantsUpdate(dep.Participants))
}
