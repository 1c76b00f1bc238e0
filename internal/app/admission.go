package app

import (
	"fmt"
	"strings"

	"github.com/EdJGM/ChatSala-WebSocket/internal/domain"
)

// DeviceMatch selects how two fingerprints are judged to be the same machine.
type DeviceMatch int

const (
	// MatchPrimary compares the part before the first underscore.
	MatchPrimary DeviceMatch = iota
	// MatchExact compares whole fingerprints.
	MatchExact
)

func ParseDeviceMatch(s string) (DeviceMatch, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "primary":
		return MatchPrimary, nil
	case "exact":
		return MatchExact, nil
	}
	return MatchPrimary, fmt.Errorf("unknown device match %q", s)
}

func (m DeviceMatch) String() string {
	if m == MatchExact {
		return "exact"
	}
	return "primary"
}

// AdmissionPolicy decides whether a device may take a seat in room.
// seated holds every participant of every room that enforces one
// connection per machine, so the check sees the whole store at once.
type AdmissionPolicy interface {
	Admit(room *domain.Room, candidate domain.Fingerprint, seated []domain.Participant) error
}

type OneDevicePolicy struct {
	Match DeviceMatch
}

func (p OneDevicePolicy) key(f domain.Fingerprint) domain.Fingerprint {
	if p.Match == MatchExact {
		return f
	}
	return f.Primary()
}

func (p OneDevicePolicy) Admit(room *domain.Room, candidate domain.Fingerprint, seated []domain.Participant) error {
	if !room.OneConnectionPerMachine {
		return nil
	}
	want := p.key(candidate)
	for _, s := range seated {
		if p.key(s.Fingerprint) == want {
			return domain.ErrDeviceConflict
		}
	}
	return nil
}
