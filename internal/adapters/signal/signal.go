package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/EdJGM/ChatSala-WebSocket/internal/app/orch"
	"github.com/EdJGM/ChatSala-WebSocket/internal/core"
	"github.com/EdJGM/ChatSala-WebSocket/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var (
	ErrBackpressure = errors.New("backpressure")
	ErrClosed       = errors.New("connection closed")
)

const (
	defaultReadLimit  = 32768
	defaultPingPeriod = 54 * time.Second
	defaultSendBuffer = 64
	writeWait         = 5 * time.Second
)

// Options tune one websocket connection. Zero values pick the defaults.
type Options struct {
	ReadLimit  int64
	PingPeriod time.Duration
	SendBuffer int

	// TrustForwardedFor takes the client address from X-Forwarded-For.
	TrustForwardedFor bool
}

func (o Options) withDefaults() Options {
	if o.ReadLimit <= 0 {
		o.ReadLimit = defaultReadLimit
	}
	if o.PingPeriod <= 0 {
		o.PingPeriod = defaultPingPeriod
	}
	if o.SendBuffer <= 0 {
		o.SendBuffer = defaultSendBuffer
	}
	return o
}

// pongWait is how long a silent peer survives; a ping goes out every
// PingPeriod, so a healthy peer always answers in time.
func (o Options) pongWait() time.Duration { return o.PingPeriod * 10 / 9 }

type SignalWSController struct {
	Orch    *orch.Orchestrator
	Limiter *JoinLimiter
	Opts    Options
}

func NewSignalWSController(o *orch.Orchestrator, limiter *JoinLimiter, opts Options) *SignalWSController {
	return &SignalWSController{Orch: o, Limiter: limiter, Opts: opts.withDefaults()}
}

// WsSignalConn is the outbound side of one websocket. Frames are queued
// and written by writePump; a full queue is reported, never waited on.
type WsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func newWsSignalConn(ws *websocket.Conn, buffer int) *WsSignalConn {
	return &WsSignalConn{conn: ws, send: make(chan core.Frame, buffer)}
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrClosed
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleSignal upgrades the request and runs the session until the peer
// goes away or ctx is cancelled.
func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	sid := domain.SessionID(uuid.NewString())
	addr := ClientAddress(c.Request, ctl.Opts.TrustForwardedFor)
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("ip", addr).
		Str("client_token", c.GetString("client_token")).Msg("new WS connection")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	conn := newWsSignalConn(ws, ctl.Opts.SendBuffer)
	sess := ctl.Orch.Connect(sid, addr, conn)
	ctx, cancel := context.WithCancel(ctx)

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, cancel, sess, conn)
}
