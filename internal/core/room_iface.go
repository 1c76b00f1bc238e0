package core

import (
	"time"

	"github.com/EdJGM/ChatSala-WebSocket/internal/domain"
)

// PublishResult reports delivery stats/backpressure to orchestrator.
type PublishResult struct {
	SendTo  int
	Dropped []domain.SessionID
}

// ParticipantView is the roster entry sent to room members (no address, no fingerprint).
type ParticipantView struct {
	ID        domain.SessionID `json:"id"`
	Nickname  string           `json:"nickname"`
	IsCreator bool             `json:"isCreator"`
}

type RoomSummary struct {
	ID                      domain.PIN `json:"id"`
	PIN                     domain.PIN `json:"pin"`
	Name                    string     `json:"name"`
	MaxParticipants         int        `json:"maxParticipants"`
	CurrentParticipants     int        `json:"currentParticipants"`
	Encrypted               bool       `json:"encrypted"`
	OneConnectionPerMachine bool       `json:"oneConnectionPerMachine"`
	CreatedAt               time.Time  `json:"createdAt"`

	// Creator decides RoomView.IsCreator; it never goes over the wire.
	Creator domain.Fingerprint `json:"-"`
}

// RoomView is a RoomSummary as seen by one requesting device.
type RoomView struct {
	RoomSummary
	IsCreator bool `json:"isCreator"`
}
