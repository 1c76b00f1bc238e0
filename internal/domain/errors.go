package domain

import "errors"

var (
	ErrUnregistered        = errors.New("machine fingerprint not registered")
	ErrFingerprintConflict = errors.New("a different fingerprint is already registered for this session")
	ErrValidation          = errors.New("invalid request")
	ErrRoomNotFound        = errors.New("room not found")
	ErrRoomFull            = errors.New("room is full")
	ErrDeviceConflict      = errors.New("only one connection per machine is allowed")
	ErrUnauthorized        = errors.New("only the room creator can delete it")
	ErrPinSpaceExhausted   = errors.New("no free room pin available")
)
