package handlers

import (
	"github.com/Marga-Ghale/ora-project-tracker/internal/service"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	Project *ProjectHandler
	Health  *HealthHandler
}

// NewHandlers creates all handlers
func NewHandlers(services *service.Services, health *HealthHandler) *Handlers {
	return &Handlers{
		Project: NewProjectHandler(services.Project),
		Health:  health,
	}
}
