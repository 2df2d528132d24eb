// Package httpapi wires the gin router: the WS signal endpoint, the
// prometheus scrape target and the collaborator notify hooks.
package httpapi

import (
	"context"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/anibaler123143423234321/backend-chat-sub000/internal/adapters/signal"
	"github.com/anibaler123143423234321/backend-chat-sub000/internal/app"
	"github.com/anibaler123143423234321/backend-chat-sub000/internal/config"
	"github.com/anibaler123143423234321/backend-chat-sub000/internal/domain"
)

func genClientToken() string {
	return uuid.NewString()
}

func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = genClientToken()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, hub *app.Hub, ctl *signal.Controller) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("ChatSessions", store))
	r.Use(ClientTokenMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "connections": hub.Registry.Count()})
	})

	api := r.Group("/api")

	api.GET("/ws", func(c *gin.Context) {
		log.Info().Str("module", "adapters.httpapi").Str("ct", c.GetString("client_token")).Msg("ws endpoint hit")
		ctl.HandleSignal(ctx, c)
	})

	// Notify hooks for the CRUD collaborators: room lifecycle and
	// assignment-list changes originate outside this core.
	notify := api.Group("/notify")
	notify.POST("/rooms", func(c *gin.Context) {
		var body struct {
			Event    string `json:"event" binding:"required,oneof=created deleted deactivated memberAdded"`
			RoomCode string `json:"roomCode" binding:"required,max=36"`
			Identity string `json:"identity,omitempty"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		code := domain.RoomCode(body.RoomCode)
		switch body.Event {
		case "created":
			hub.NotifyRoomCreated(code)
		case "deleted":
			hub.NotifyRoomDeleted(c.Request.Context(), code)
		case "deactivated":
			hub.NotifyRoomDeactivated(code)
		case "memberAdded":
			hub.NotifyMemberAdded(code, domain.Identity(body.Identity))
		}
		c.Status(http.StatusNoContent)
	})
	notify.POST("/assignments", func(c *gin.Context) {
		hub.NotifyAssignmentsChanged(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	log.Info().Str("module", "adapters.httpapi").Msg("router setup")
	return r
}
