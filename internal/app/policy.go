package app

import "github.com/EdJGM/ChatSala-WebSocket/internal/domain"

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	KickMember
)

// Policy decides what happens to a session whose outbound queue overflowed.
type Policy interface {
	OnBackPressure(sid domain.SessionID) BackpressureAction
}

// SimplePolicy disconnects slow sessions; their cleanup then runs like
// any other disconnect.
type SimplePolicy struct{}

func (SimplePolicy) OnBackPressure(domain.SessionID) BackpressureAction {
	return KickMember
}
