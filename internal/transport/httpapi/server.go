// Package httpapi serves the administrative control plane over HTTP. The
// engine and the operator tooling stay in separate processes and meet at a
// loopback API boundary instead of sharing memory.
package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/classcord/classcord-server/internal/admin"
	"github.com/classcord/classcord-server/internal/auth"
	"github.com/classcord/classcord-server/internal/config"
	"github.com/classcord/classcord-server/internal/metrics"
	"github.com/classcord/classcord-server/internal/server"
)

// NewServer builds the admin HTTP server.
func NewServer(adminService *admin.Service, authService *auth.Service, chat *server.Server, cfg config.Config, logger *zerolog.Logger) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(logger))

	handlers := NewHandlers(adminService, authService, logger)

	router.GET("/health", healthHandler)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	router.POST("/api/login", handlers.Login)

	api := router.Group("/api")
	api.Use(AuthMiddleware(authService, logger))
	{
		api.GET("/sessions", handlers.ListSessions)
		api.GET("/channels", handlers.ListChannels)
		api.PUT("/channels", handlers.ToggleChannel)
		api.POST("/alert", handlers.Alert)
		api.GET("/messages", handlers.History)
	}

	if chat != nil {
		bridge := NewWSBridge(chat, logger)
		router.GET("/ws", bridge.Handle)
	}

	return &http.Server{
		Addr:              cfg.AdminAddr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}
