package usecase

import (
	"context"
	"log/slog"
	"time"

	"gussgame/src/core/ports"
)

const healthCheckTimeout = 2 * time.Second

// HealthService checks the application's dependencies.
type HealthService struct {
	log *slog.Logger
	db  ports.Repository
}

// NewHealthService creates a new HealthService. db may be nil when no storage is wired.
func NewHealthService(log *slog.Logger, db ports.Repository) *HealthService {
	return &HealthService{
		log: log,
		db:  db,
	}
}

// HealthStatus represents the health of the application.
type HealthStatus struct {
	Status     string                     `json:"status"`
	Components map[string]ComponentHealth `json:"components,omitempty"`
}

// ComponentHealth represents the health of a single component.
type ComponentHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Check performs a health check of all application components.
func (s *HealthService) Check(ctx context.Context) *HealthStatus {
	status := &HealthStatus{
		Status:     "ok",
		Components: make(map[string]ComponentHealth),
	}

	if s.db != nil {
		ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
		defer cancel()

		if err := s.db.Health(ctx); err != nil {
			s.log.Warn("database health check failed", "error", err)
			status.Status = "degraded"
			status.Components["database"] = ComponentHealth{
				Status:  "unhealthy",
				Message: err.Error(),
			}
		} else {
			status.Components["database"] = ComponentHealth{Status: "healthy"}
		}
	}

	return status
}
