package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	PinLength       = 6
	MinParticipants = 2
	MaxRoomNameLen  = 64
)

// PIN is the six digit decimal identifier of a live room.
type PIN string

// Valid reports whether p has the canonical six digit form.
func (p PIN) Valid() bool {
	if len(p) != PinLength || p[0] == '0' {
		return false
	}
	for i := 0; i < len(p); i++ {
		if p[i] < '0' || p[i] > '9' {
			return false
		}
	}
	return true
}

// RoomSpec is what a creator asks for. It is validated before a PIN is spent on it.
type RoomSpec struct {
	Name                    string
	MaxParticipants         int
	Encrypted               bool
	OneConnectionPerMachine bool
}

// Normalize trims the name and checks the request against limit, the
// largest capacity the service accepts (zero means unbounded).
func (s RoomSpec) Normalize(limit int) (RoomSpec, error) {
	s.Name = strings.TrimSpace(s.Name)
	if s.Name == "" {
		return s, fmt.Errorf("%w: room name is required", ErrValidation)
	}
	if utf8.RuneCountInString(s.Name) > MaxRoomNameLen {
		return s, fmt.Errorf("%w: room name longer than %d characters", ErrValidation, MaxRoomNameLen)
	}
	if s.MaxParticipants < MinParticipants {
		return s, fmt.Errorf("%w: room needs at least %d participants", ErrValidation, MinParticipants)
	}
	if limit > 0 && s.MaxParticipants > limit {
		return s, fmt.Errorf("%w: room cannot hold more than %d participants", ErrValidation, limit)
	}
	return s, nil
}

// Room is the metadata of a room. Membership lives with the store.
type Room struct {
	PIN       PIN
	CreatedAt time.Time
	Creator   Fingerprint
	RoomSpec
}
