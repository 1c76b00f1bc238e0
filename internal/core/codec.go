package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrMalformedFrame = errors.New("malformed frame")
)

type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// DecodeCommand parses an inbound {"event": ..., "data": ...} frame.
func DecodeCommand(frame []byte) (Command, error) {
	var env envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}

	var cmd Command
	switch env.Event {
	case "register_fingerprint":
		cmd = &Register{}
	case "create_room":
		cmd = &CreateRoom{}
	case "join_room":
		cmd = &JoinRoom{}
	case "send_message":
		cmd = &SendMessage{}
	case "get_rooms":
		return GetRooms{}, nil
	case "get_creator_rooms":
		return GetCreatorRooms{}, nil
	case "delete_room":
		cmd = &DeleteRoom{}
	case "leave_room":
		return LeaveRoom{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, env.Event)
	}

	data := bytes.TrimSpace(env.Data)
	if len(data) > 0 {
		if err := json.Unmarshal(data, cmd); err != nil {
			return nil, fmt.Errorf("%w: %s payload: %v", ErrMalformedFrame, env.Event, err)
		}
	}
	return deref(cmd), nil
}

func deref(cmd Command) Command {
	switch c := cmd.(type) {
	case *Register:
		return *c
	case *CreateRoom:
		return *c
	case *JoinRoom:
		return *c
	case *SendMessage:
		return *c
	case *DeleteRoom:
		return *c
	}
	return cmd
}

// EncodeEvent renders ev as an outbound frame.
func EncodeEvent(ev Event) (Frame, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{Event: ev.EventName(), Data: data})
}
