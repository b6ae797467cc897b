package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger is satisfied by the database and cache connections.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ClientCounter reports live websocket connections.
type ClientCounter interface {
	GetConnectedClientsCount() int
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Database  string    `json:"database"`
	Cache     string    `json:"cache"`
	WebSocket string    `json:"websocket"`
	WSClients int       `json:"ws_clients"`
}

type HealthHandler struct {
	database Pinger
	cache    Pinger
	sockets  ClientCounter
}

// NewHealthHandler accepts nil for cache and sockets when they are not running.
func NewHealthHandler(database, cache Pinger, sockets ClientCounter) *HealthHandler {
	return &HealthHandler{
		database: database,
		cache:    cache,
		sockets:  sockets,
	}
}

// Check - Report dependency status
// GET /api/health
func (h *HealthHandler) Check(c *gin.Context) {
	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Database:  ping(c.Request.Context(), h.database),
		Cache:     ping(c.Request.Context(), h.cache),
		WebSocket: "disabled",
	}
	if resp.Database != "up" {
		resp.Status = "degraded"
	}
	if h.sockets != nil {
		resp.WebSocket = "active"
		resp.WSClients = h.sockets.GetConnectedClientsCount()
	}

	c.JSON(http.StatusOK, resp)
}

func ping(ctx context.Context, p Pinger) string {
	if p == nil {
		return "disabled"
	}
	pingCtx, cancel := context.WithTimeout(ctx, 1*time.Second)
	defer cancel()

	if err := p.Ping(pingCtx); err != nil {
		return "down"
	}
	return "up"
}
