package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EdJGM/ChatSala-WebSocket/internal/domain"
)

func TestPinAllocatorFormat(t *testing.T) {
	a := NewPinAllocator(10)
	for i := 0; i < 1000; i++ {
		pin, err := a.Allocate(func(domain.PIN) bool { return false })
		require.NoError(t, err)
		assert.True(t, pin.Valid(), "pin %q", pin)
	}
}

func TestPinAllocatorBounds(t *testing.T) {
	a := &PinAllocator{intn: func(int) int { return 0 }, maxAttempts: 1}
	pin, err := a.Allocate(func(domain.PIN) bool { return false })
	require.NoError(t, err)
	assert.Equal(t, domain.PIN("100000"), pin)

	a.intn = func(n int) int { return n - 1 }
	pin, err = a.Allocate(func(domain.PIN) bool { return false })
	require.NoError(t, err)
	assert.Equal(t, domain.PIN("999999"), pin)
}

func TestPinAllocatorResamples(t *testing.T) {
	draws := []int{5, 5, 7}
	a := &PinAllocator{intn: func(int) int {
		d := draws[0]
		draws = draws[1:]
		return d
	}, maxAttempts: 5}

	taken := map[domain.PIN]bool{"100005": true}
	pin, err := a.Allocate(func(p domain.PIN) bool { return taken[p] })
	require.NoError(t, err)
	assert.Equal(t, domain.PIN("100007"), pin)
}

func TestPinAllocatorExhausted(t *testing.T) {
	a := NewPinAllocator(3)
	_, err := a.Allocate(func(domain.PIN) bool { return true })
	assert.ErrorIs(t, err, domain.ErrPinSpaceExhausted)
}

func TestPinUniqueAcrossRooms(t *testing.T) {
	s, _ := newTestStore(WithPinAllocator(&PinAllocator{intn: func(n int) int { return 42 % n }, maxAttempts: 3}))
	_, err := s.CreateRoom(domain.RoomSpec{Name: "a", MaxParticipants: 2}, "m1")
	require.NoError(t, err)
	_, err = s.CreateRoom(domain.RoomSpec{Name: "b", MaxParticipants: 2}, "m1")
	assert.ErrorIs(t, err, domain.ErrPinSpaceExhausted, "a fixed draw collides with the first room")
	assert.Equal(t, 1, s.Len())

	s2, _ := newTestStore()
	seen := map[domain.PIN]bool{}
	for i := 0; i < 500; i++ {
		room, err := s2.CreateRoom(domain.RoomSpec{Name: "r", MaxParticipants: 2}, "m1")
		require.NoError(t, err)
		assert.False(t, seen[room.PIN], "duplicate pin %s", room.PIN)
		seen[room.PIN] = true
	}
}
