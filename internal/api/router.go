package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Marga-Ghale/ora-project-tracker/internal/api/handlers"
	"github.com/Marga-Ghale/ora-project-tracker/internal/api/middleware"
	"github.com/Marga-Ghale/ora-project-tracker/internal/socket"
)

// NewRouter builds the gin engine with every route under /api.
// ws may be nil, in which case /api/ws is not registered.
func NewRouter(h *handlers.Handlers, ws *socket.Handler, corsOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery())
	r.Use(cors.New(corsConfig(corsOrigins)))

	r.NoRoute(handlers.RouteNotFound)

	api := r.Group("/api")
	{
		api.GET("/health", h.Health.Check)

		if ws != nil {
			api.GET("/ws", ws.HandleWebSocket)
		}

		projects := api.Group("/projects")
		{
			projects.POST("", h.Project.Create)
			projects.GET("", h.Project.List)
			projects.GET("/stats", h.Project.Stats)
			projects.GET("/:id", h.Project.Get)
			projects.PUT("/:id", h.Project.Update)
			projects.PATCH("/:id/status", h.Project.UpdateStatus)
			projects.DELETE("/:id", h.Project.Delete)
		}
	}

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
