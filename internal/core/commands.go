package core

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/EdJGM/ChatSala-WebSocket/internal/domain"
)

// Command is an inbound request from one session. The set of
// implementations below is closed; the session dispatches on it with a
// type switch.
type Command interface {
	CommandName() string
}

type Register struct {
	Fingerprint domain.Fingerprint `json:"fingerprint"`
}

type CreateRoom struct {
	Name                    string `json:"name"`
	MaxParticipants         Count  `json:"maxParticipants"`
	Encrypted               bool   `json:"encrypted"`
	OneConnectionPerMachine bool   `json:"oneConnectionPerMachine"`
}

type JoinRoom struct {
	RoomPin  domain.PIN `json:"roomPin"`
	Nickname string     `json:"nickname"`
}

type SendMessage ChatMessage

type (
	GetRooms        struct{}
	GetCreatorRooms struct{}
	LeaveRoom       struct{}
)

type DeleteRoom struct {
	RoomPin domain.PIN `json:"roomPin"`
}

func (Register) CommandName() string        { return "register_fingerprint" }
func (CreateRoom) CommandName() string      { return "create_room" }
func (JoinRoom) CommandName() string        { return "join_room" }
func (SendMessage) CommandName() string     { return "send_message" }
func (GetRooms) CommandName() string        { return "get_rooms" }
func (GetCreatorRooms) CommandName() string { return "get_creator_rooms" }
func (DeleteRoom) CommandName() string      { return "delete_room" }
func (LeaveRoom) CommandName() string       { return "leave_room" }

// UnmarshalJSON accepts the bare PIN string browsers send as well as
// an object with a roomPin field.
func (d *DeleteRoom) UnmarshalJSON(data []byte) error {
	var pin string
	if err := json.Unmarshal(data, &pin); err == nil {
		d.RoomPin = domain.PIN(strings.TrimSpace(pin))
		return nil
	}
	type plain DeleteRoom
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*d = DeleteRoom(p)
	return nil
}

// Count is an integer that may arrive as a JSON number or a numeric string.
type Count int

func (c *Count) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		return nil
	}
	if unq, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unq)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("count %s is not an integer", string(data))
	}
	*c = Count(n)
	return nil
}
