package core

import "github.com/EdJGM/ChatSala-WebSocket/internal/domain"

// Event is an outbound message. The set of implementations below is closed.
type Event interface {
	EventName() string
}

type HostInfo struct {
	IP          string             `json:"ip"`
	Host        string             `json:"host"`
	Fingerprint domain.Fingerprint `json:"fingerprint"`
}

type CreatorRooms []domain.PIN

type RoomCreated struct {
	PIN                     domain.PIN `json:"pin"`
	Name                    string     `json:"name"`
	MaxParticipants         int        `json:"maxParticipants"`
	Encrypted               bool       `json:"encrypted"`
	OneConnectionPerMachine bool       `json:"oneConnectionPerMachine"`
}

type ErrorEvent struct {
	Message string `json:"message"`
}

type (
	RoomNotFound struct{}
	RoomFull     struct{}
	RoomsUpdate  struct{}
	RoomLeft     struct{}
)

type UserJoined struct {
	Nickname string `json:"nickname"`
}

type UserLeft struct {
	Nickname string `json:"nickname"`
}

type ParticipantsUpdate []ParticipantView

// ChatMessage is relayed as received; the server does not interpret it.
type ChatMessage struct {
	Author    string `json:"author"`
	Message   string `json:"message"`
	Timestamp *int64 `json:"timestamp,omitempty"`
}

type RoomsList []RoomView

type RoomDeleted struct {
	PIN domain.PIN `json:"pin"`
}

type RoomDeletedSuccess domain.PIN

func (HostInfo) EventName() string           { return "host_info" }
func (CreatorRooms) EventName() string       { return "creator_rooms" }
func (RoomCreated) EventName() string        { return "room_created" }
func (ErrorEvent) EventName() string         { return "error" }
func (RoomNotFound) EventName() string       { return "room_not_found" }
func (RoomFull) EventName() string           { return "room_full" }
func (UserJoined) EventName() string         { return "user_joined" }
func (UserLeft) EventName() string           { return "user_left" }
func (ParticipantsUpdate) EventName() string { return "participants_update" }
func (RoomsUpdate) EventName() string        { return "rooms_update" }
func (ChatMessage) EventName() string        { return "receive_message" }
func (RoomsList) EventName() string          { return "rooms_list" }
func (RoomDeleted) EventName() string        { return "room_deleted" }
func (RoomDeletedSuccess) EventName() string { return "room_deleted_success" }
func (RoomLeft) EventName() string           { return "room_left" }
