package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/classcord/classcord-server/internal/admin"
	"github.com/classcord/classcord-server/internal/auth"
	"github.com/classcord/classcord-server/internal/registry"
)

const defaultHistoryLimit = 50

// Handlers provides HTTP handlers for the admin API endpoints.
type Handlers struct {
	admin       *admin.Service
	authService *auth.Service
	log         *zerolog.Logger
}

// NewHandlers creates a new admin API handlers instance.
func NewHandlers(adminService *admin.Service, authService *auth.Service, logger *zerolog.Logger) *Handlers {
	return &Handlers{
		admin:       adminService,
		authService: authService,
		log:         logger,
	}
}

// LoginRequest represents the admin login request body.
type LoginRequest struct {
	Password string `json:"password" binding:"required"`
}

// AuthResponse represents the authentication response body.
type AuthResponse struct {
	Token string `json:"token"`
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ChannelToggleRequest represents the channel enable/disable request body.
type ChannelToggleRequest struct {
	Name    string `json:"name" binding:"required"`
	Enabled *bool  `json:"enabled" binding:"required"`
}

// AlertRequest represents the global alert request body.
type AlertRequest struct {
	Content string `json:"content" binding:"required"`
}

// AlertResponse reports per-recipient delivery counts for a global alert.
type AlertResponse struct {
	Delivered int `json:"delivered"`
	Failed    int `json:"failed"`
}

// ChannelResponse is one channel with its enabled flag.
type ChannelResponse struct {
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

// Login handles admin authentication.
// POST /api/login
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid login request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	token, err := h.authService.Login(req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid credentials"})
			return
		}
		h.log.Error().Err(err).Msg("admin login failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	h.log.Info().Msg("admin logged in")
	c.JSON(http.StatusOK, AuthResponse{Token: token})
}

// ListSessions returns the connected-users view.
// GET /api/sessions
func (h *Handlers) ListSessions(c *gin.Context) {
	c.JSON(http.StatusOK, h.admin.ListSessions())
}

// ListChannels returns every channel with its enabled flag.
// GET /api/channels
func (h *Handlers) ListChannels(c *gin.Context) {
	channels := h.admin.ListChannels()
	out := make([]ChannelResponse, 0, len(channels))
	for _, ch := range channels {
		out = append(out, ChannelResponse{Name: ch.Name, Enabled: ch.Enabled})
	}
	c.JSON(http.StatusOK, out)
}

// ToggleChannel enables or disables a channel.
// PUT /api/channels
func (h *Handlers) ToggleChannel(c *gin.Context) {
	var req ChannelToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if err := h.admin.SetChannelEnabled(req.Name, *req.Enabled); err != nil {
		if errors.Is(err, registry.ErrUnknownChannel) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "unknown channel"})
			return
		}
		h.log.Error().Err(err).Str("channel", req.Name).Msg("toggle channel failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, ChannelResponse{Name: req.Name, Enabled: *req.Enabled})
}

// Alert broadcasts a global alert to every connected session.
// POST /api/alert
func (h *Handlers) Alert(c *gin.Context) {
	var req AlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	delivered, failed := h.admin.BroadcastAlert(req.Content)
	c.JSON(http.StatusOK, AlertResponse{Delivered: delivered, Failed: failed})
}

// History returns recent persisted messages for a channel.
// GET /api/messages?channel=<name>&limit=<n>
func (h *Handlers) History(c *gin.Context) {
	channel := c.Query("channel")
	if channel == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing channel parameter"})
		return
	}

	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit parameter"})
			return
		}
		limit = parsed
	}

	msgs, err := h.admin.ChannelHistory(c.Request.Context(), channel, limit)
	if err != nil {
		if errors.Is(err, registry.ErrUnknownChannel) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "unknown channel"})
			return
		}
		h.log.Error().Err(err).Str("channel", channel).Msg("history query failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, msgs)
}
