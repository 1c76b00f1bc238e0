package app

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/EdJGM/ChatSala-WebSocket/internal/clock"
	"github.com/EdJGM/ChatSala-WebSocket/internal/core"
	"github.com/EdJGM/ChatSala-WebSocket/internal/domain"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

type fakeConn struct {
	mu     sync.Mutex
	frames []core.Frame
	limit  int
	closed bool
}

func (c *fakeConn) TrySend(f core.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errors.New("closed")
	}
	if c.limit > 0 && len(c.frames) >= c.limit {
		return errors.New("full")
	}
	c.frames = append(c.frames, f)
	return nil
}

func (c *fakeConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *fakeConn) events(t *testing.T) []string {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.frames))
	for _, f := range c.frames {
		var env struct {
			Event string `json:"event"`
		}
		require.NoError(t, json.Unmarshal(f, &env))
		out = append(out, env.Event)
	}
	return out
}

type fakeSession struct {
	id       domain.SessionID
	conn     *fakeConn
	detached []domain.PIN
}

func newFakeSession(id string) *fakeSession {
	return &fakeSession{id: domain.SessionID(id), conn: &fakeConn{}}
}

func (s *fakeSession) ID() domain.SessionID          { return s.id }
func (s *fakeSession) Signal() core.SignalConnection { return s.conn }
func (s *fakeSession) Detach(pin domain.PIN)         { s.detached = append(s.detached, pin) }

func newTestStore(opts ...StoreOption) (*Store, *clock.FakeClock) {
	fc := clock.Fake(epoch)
	opts = append([]StoreOption{WithClock(fc)}, opts...)
	return NewStore(opts...), fc
}

func participant(sid, nick string, fp domain.Fingerprint) domain.Participant {
	return domain.Participant{
		SessionID:   domain.SessionID(sid),
		Nickname:    nick,
		Address:     "127.0.0.1",
		Fingerprint: fp,
	}
}
