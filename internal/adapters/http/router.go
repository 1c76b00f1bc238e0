package http

import (
	"context"
	"net/http"

	"github.com/EdJGM/ChatSala-WebSocket/internal/adapters/signal"
	"github.com/EdJGM/ChatSala-WebSocket/internal/app/orch"
	"github.com/EdJGM/ChatSala-WebSocket/internal/config"
	"github.com/EdJGM/ChatSala-WebSocket/internal/domain"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

func genClientToken() string {
	idStr := uuid.NewString()
	return idStr
}

// ClientTokenMiddleware keeps a long-lived browser token in the cookie
// session. It only labels log lines; websocket sessions get their own ids.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessions.Default(c)
		token, _ := sess.Get("ct").(string)
		if token == "" {
			token = genClientToken()
			sess.Set("ct", token)
			if err := sess.Save(); err != nil {
				log.Warn().Err(err).Str("module", "adapters.http").Msg("save client token")
			}
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, o *orch.Orchestrator) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	store.Options(sessions.Options{Path: "/", MaxAge: 3600 * 24 * 7, HttpOnly: true})
	r.Use(sessions.Sessions("ChatSalaSessions", store))
	r.Use(ClientTokenMiddleware())

	ctrl := signal.NewSignalWSController(o, signal.NewJoinLimiter(cfg.JoinRatePerMinute), signal.Options{
		ReadLimit:  cfg.ReadLimit,
		PingPeriod: cfg.PingPeriod,
		SendBuffer: cfg.SendBuffer,

		TrustForwardedFor: cfg.TrustForwardedFor,
	})

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"rooms":    o.Rooms.Len(),
			"sessions": o.Registry.Len(),
		})
	})

	api := r.Group("/api")

	api.GET("/ws", func(c *gin.Context) {
		log.Info().Str("module", "adapters.http").Str("client_token", c.GetString("client_token")).Msg("ws endpoint hit")
		ctrl.HandleSignal(ctx, c)
	})

	api.GET("/rooms", func(c *gin.Context) {
		fp := domain.Fingerprint(c.Query("fingerprint"))
		c.JSON(http.StatusOK, o.Admin.Rooms(fp))
	})

	api.GET("/rooms/:pin", func(c *gin.Context) {
		pin := domain.PIN(c.Param("pin"))
		view, ok := o.Admin.Room(pin, domain.Fingerprint(c.Query("fingerprint")))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": domain.ErrRoomNotFound.Error()})
			return
		}
		c.JSON(http.StatusOK, view)
	})

	log.Info().Str("module", "adapters.http").Str("mode", cfg.Mode).Msg("router setup")
	return r
}
