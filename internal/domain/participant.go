package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const MaxNicknameLen = 36

// SessionID identifies one live connection.
type SessionID string

// Participant is a session's seat inside exactly one room.
// No transport or lifecycle logic here.
type Participant struct {
	SessionID   SessionID
	Nickname    string
	Address     string
	Fingerprint Fingerprint
}

// IsCreatorOf reports whether the participant's device created r.
func (p Participant) IsCreatorOf(r *Room) bool {
	return p.Fingerprint == r.Creator
}

// NormalizeNickname trims and validates a display name.
func NormalizeNickname(nick string) (string, error) {
	nick = strings.TrimSpace(nick)
	if nick == "" {
		return "", fmt.Errorf("%w: nickname is required", ErrValidation)
	}
	if utf8.RuneCountInString(nick) > MaxNicknameLen {
		return "", fmt.Errorf("%w: nickname longer than %d characters", ErrValidation, MaxNicknameLen)
	}
	return nick, nil
}
