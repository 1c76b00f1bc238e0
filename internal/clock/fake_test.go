package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestFakeClockNow(t *testing.T) {
	clock := Fake(epoch)
	assert.True(t, clock.Now().Equal(epoch))
	clock.Advance(5 * time.Second)
	assert.True(t, clock.Now().Equal(epoch.Add(5*time.Second)))
}

func TestFakeClockAfterFunc(t *testing.T) {
	clock := Fake(epoch)
	fired := 0
	clock.AfterFunc(10*time.Minute, func() { fired++ })
	assert.Equal(t, 1, clock.PendingCount())

	clock.Advance(9 * time.Minute)
	assert.Equal(t, 0, fired)

	clock.Advance(time.Minute)
	assert.Equal(t, 1, fired)
	assert.Equal(t, 0, clock.PendingCount())

	clock.Advance(time.Hour)
	assert.Equal(t, 1, fired, "one-shot callback must not fire twice")
}

func TestFakeClockStop(t *testing.T) {
	clock := Fake(epoch)
	fired := false
	timer := clock.AfterFunc(time.Second, func() { fired = true })

	assert.True(t, timer.Stop())
	assert.False(t, timer.Stop())
	clock.Advance(time.Minute)
	assert.False(t, fired)
	assert.Equal(t, 0, clock.PendingCount())
}

func TestFakeClockStopAfterFire(t *testing.T) {
	clock := Fake(epoch)
	timer := clock.AfterFunc(time.Second, func() {})
	clock.Advance(time.Second)
	assert.False(t, timer.Stop())
}

func TestFakeClockDeadlineOrder(t *testing.T) {
	clock := Fake(epoch)
	var order []int
	clock.AfterFunc(3*time.Second, func() { order = append(order, 3) })
	clock.AfterFunc(1*time.Second, func() { order = append(order, 1) })
	clock.AfterFunc(2*time.Second, func() { order = append(order, 2) })

	clock.Advance(5 * time.Second)
	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestFakeClockCallbackMayRearm(t *testing.T) {
	clock := Fake(epoch)
	fired := 0
	clock.AfterFunc(time.Second, func() {
		fired++
		clock.AfterFunc(time.Second, func() { fired++ })
	})
	clock.Advance(time.Second)
	assert.Equal(t, 1, fired)
	assert.Equal(t, 1, clock.PendingCount())
	clock.Advance(time.Second)
	assert.Equal(t, 2, fired)
}

func TestFakeClockNonPositiveRunsImmediately(t *testing.T) {
	clock := Fake(epoch)
	fired := false
	timer := clock.AfterFunc(0, func() { fired = true })
	assert.True(t, fired)
	assert.False(t, timer.Stop())
}
