package signal

import (
	"context"
	"errors"
	"time"

	"github.com/EdJGM/ChatSala-WebSocket/internal/app/orch"
	"github.com/EdJGM/ChatSala-WebSocket/internal/core"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) writePump(ctx context.Context, c *WsSignalConn) {
	ticker := time.NewTicker(ctl.Opts.PingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("module", "signal").Msg("writePump ctx done")
			c.Close()
			return
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				log.Debug().Err(err).Str("module", "signal").Msg("writePump ping")
				c.Close()
				return
			}
		case data, ok := <-c.send:
			if !ok {
				log.Debug().Str("module", "signal").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				c.Close()
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				c.Close()
				return
			}
		}
	}
}

func (ctl *SignalWSController) readPump(ctx context.Context, cancel context.CancelFunc, sess *orch.Session, c *WsSignalConn) {
	sid := string(sess.ID())
	defer func() {
		log.Info().Str("module", "signal").Str("sid", sid).Msg("readPump closing")
		sess.Close()
		c.Close()
		cancel()
	}()

	pongWait := ctl.Opts.pongWait()
	c.conn.SetReadLimit(ctl.Opts.ReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if ctx.Err() != nil {
			log.Info().Str("module", "signal").Str("sid", sid).Msg("readPump ctx done")
			return
		}
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("module", "signal").Str("sid", sid).Msg("readPump read error")
			}
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		ctl.handleFrame(ctx, sess, data)
	}
}

func (ctl *SignalWSController) handleFrame(ctx context.Context, sess *orch.Session, data []byte) {
	sid := string(sess.ID())
	cmd, err := core.DecodeCommand(data)
	switch {
	case errors.Is(err, core.ErrUnknownCommand):
		log.Warn().Err(err).Str("module", "signal").Str("sid", sid).Msg("unknown signal")
		return
	case err != nil:
		log.Warn().Err(err).Str("module", "signal").Str("sid", sid).Msg("bad payload")
		ctl.reply(sess, core.ErrorEvent{Message: "malformed message"})
		return
	}

	switch cmd.(type) {
	case core.CreateRoom, core.JoinRoom:
		if ctl.Limiter != nil && !ctl.Limiter.Allow(sess.Address()) {
			log.Warn().Str("module", "signal").Str("sid", sid).Str("ip", sess.Address()).
				Str("command", cmd.CommandName()).Msg("rate limited")
			ctl.reply(sess, core.ErrorEvent{Message: "too many attempts, slow down"})
			return
		}
	}
	sess.Handle(ctx, cmd)
}

func (ctl *SignalWSController) reply(sess *orch.Session, ev core.Event) {
	if err := ctl.Orch.Relay.SendTo(sess.ID(), ev); err != nil {
		log.Debug().Err(err).Str("module", "signal").Str("sid", string(sess.ID())).Msg("reply dropped")
	}
}
