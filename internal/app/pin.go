package app

import (
	"math/rand"
	"strconv"

	"github.com/EdJGM/ChatSala-WebSocket/internal/domain"
)

const (
	pinLow  = 100000
	pinSpan = 900000

	DefaultMaxPinAttempts = 1000
)

// PinAllocator draws uniformly random six digit PINs.
type PinAllocator struct {
	intn        func(n int) int
	maxAttempts int
}

func NewPinAllocator(maxAttempts int) *PinAllocator {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxPinAttempts
	}
	return &PinAllocator{intn: rand.Intn, maxAttempts: maxAttempts}
}

// Allocate resamples until taken reports a free PIN, giving up with
// domain.ErrPinSpaceExhausted after maxAttempts draws.
func (a *PinAllocator) Allocate(taken func(domain.PIN) bool) (domain.PIN, error) {
	for i := 0; i < a.maxAttempts; i++ {
		pin := domain.PIN(strconv.Itoa(pinLow + a.intn(pinSpan)))
		if !taken(pin) {
			return pin, nil
		}
	}
	return "", domain.ErrPinSpaceExhausted
}
