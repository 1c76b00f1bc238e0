package core

import "github.com/EdJGM/ChatSala-WebSocket/internal/domain"

// MemberSession binds a live connection to its transport endpoint.
// This is what the registry stores and the relay fans out to.
type MemberSession interface {
	ID() domain.SessionID
	Signal() SignalConnection
	// Detach is called after the session's room was deleted under it.
	Detach(pin domain.PIN)
}
