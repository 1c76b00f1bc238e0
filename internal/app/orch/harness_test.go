package orch

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/EdJGM/ChatSala-WebSocket/internal/app"
	"github.com/EdJGM/ChatSala-WebSocket/internal/clock"
	"github.com/EdJGM/ChatSala-WebSocket/internal/core"
	"github.com/EdJGM/ChatSala-WebSocket/internal/domain"
)

type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type fakeConn struct {
	mu     sync.Mutex
	frames []frame
	closed bool
}

func (c *fakeConn) TrySend(f core.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errors.New("closed")
	}
	var fr frame
	if err := json.Unmarshal(f, &fr); err != nil {
		return err
	}
	c.frames = append(c.frames, fr)
	return nil
}

func (c *fakeConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// drain returns and forgets every frame received so far.
func (c *fakeConn) drain() []frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.frames
	c.frames = nil
	return out
}

func names(frames []frame) []string {
	out := make([]string, 0, len(frames))
	for _, f := range frames {
		out = append(out, f.Event)
	}
	return out
}

// last decodes the data of the last frame named event into v.
func last(t *testing.T, frames []frame, event string, v any) {
	t.Helper()
	for i := len(frames) - 1; i >= 0; i-- {
		if frames[i].Event == event {
			require.NoError(t, json.Unmarshal(frames[i].Data, v))
			return
		}
	}
	t.Fatalf("no %q frame in %v", event, names(frames))
}

type fakeResolver struct {
	names []string
	err   error
}

func (r fakeResolver) LookupAddr(context.Context, string) ([]string, error) {
	return r.names, r.err
}

type harness struct {
	o     *Orchestrator
	clock *clock.FakeClock
}

func newHarness(t *testing.T, opts ...app.StoreOption) *harness {
	t.Helper()
	fc := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	registry := app.NewRegistry()
	o := &Orchestrator{
		Registry: registry,
		Relay:    app.NewRelay(registry),
		Policy:   app.SimplePolicy{},
		Resolver: fakeResolver{names: []string{"box.lan."}},
		Limits:   Limits{MaxParticipants: 10, MaxMessageLen: 100},
	}
	opts = append([]app.StoreOption{app.WithClock(fc), app.WithExpiryHook(o.OnRoomExpired)}, opts...)
	o.Rooms = app.NewStore(opts...)
	o.Admin = app.NewAdminQuery(o.Rooms)
	return &harness{o: o, clock: fc}
}

type client struct {
	*Session
	conn *fakeConn
}

func (h *harness) connect(sid string) *client {
	conn := &fakeConn{}
	return &client{Session: h.o.Connect(domain.SessionID(sid), "10.0.0.1", conn), conn: conn}
}

// registered connects and registers fp, discarding the greeting frames.
func (h *harness) registered(t *testing.T, sid string, fp domain.Fingerprint) *client {
	t.Helper()
	c := h.connect(sid)
	c.Handle(context.Background(), core.Register{Fingerprint: fp})
	require.Eventually(t, func() bool {
		c.conn.mu.Lock()
		defer c.conn.mu.Unlock()
		for _, f := range c.conn.frames {
			if f.Event == "host_info" {
				return true
			}
		}
		return false
	}, time.Second, 5*time.Millisecond)
	c.conn.drain()
	return c
}

func (c *client) create(t *testing.T, name string, max int, onePerMachine bool) domain.PIN {
	t.Helper()
	c.Handle(context.Background(), core.CreateRoom{Name: name, MaxParticipants: core.Count(max), OneConnectionPerMachine: onePerMachine})
	frames := c.conn.drain()
	var created core.RoomCreated
	last(t, frames, "room_created", &created)
	return created.PIN
}

func (c *client) join(pin domain.PIN, nick string) {
	c.Handle(context.Background(), core.JoinRoom{RoomPin: pin, Nickname: nick})
}
