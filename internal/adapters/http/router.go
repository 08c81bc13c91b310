// Package http wires the gin router: the read-only query surface
// (/health, invite validation, /metrics) and the WS upgrade endpoint.
// Handlers here never mutate chat state, besides the lazy deletion
// inherent to invite validation.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/avolkov/parley/internal/chat"
	"github.com/avolkov/parley/internal/config"
	"github.com/avolkov/parley/internal/gateway"
	"github.com/avolkov/parley/internal/metrics"
)

func corsMiddleware(clientURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", clientURL)
		c.Header("Access-Control-Allow-Methods", "GET, POST")
		c.Header("Access-Control-Allow-Credentials", "true")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func SetupRouter(cfg *config.Config, state *chat.State, gw *gateway.Gateway, collector *metrics.Collector) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())
	r.Use(corsMiddleware(cfg.ClientURL))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":        "online",
			"users":         state.Presence.Count(),
			"connections":   gw.Live(),
			"activeInvites": state.Invites.Count(),
			"rooms":         state.Rooms.Snapshot(),
		})
	})

	r.GET("/metrics", gin.WrapH(collector.Handler()))

	api := r.Group("/api")
	api.GET("/invite/validate/:token", func(c *gin.Context) {
		inv, err := state.Invites.Validate(c.Param("token"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"invite": gin.H{
				"room":      inv.Room,
				"createdAt": inv.CreatedAt,
				"expiresAt": inv.ExpiresAt,
				"uses":      inv.Uses,
				"maxUses":   inv.MaxUses,
			},
		})
	})

	api.GET("/ws", gw.HandleWS)

	log.Info().Str("module", "adapters.http").Msg("router setup")
	return r
}
