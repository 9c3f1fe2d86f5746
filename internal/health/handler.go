package health

import (
	"time"

	"github.com/gin-gonic/gin"
)

// Checker reports whether a dependency is reachable
type Checker func() error

// Handler handles health check related endpoints
type Handler struct {
	responseHandler ResponseHandler
	checks          map[string]Checker
	startedAt       time.Time
}

// NewHandler creates a new health check handler
func NewHandler(responseHandler ResponseHandler, checks map[string]Checker) *Handler {
	return &Handler{
		responseHandler: responseHandler,
		checks:          checks,
		startedAt:       time.Now(),
	}
}

// Status is the body of a health response
type Status struct {
	Status       string            `json:"status"`
	Uptime       int64             `json:"uptime"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

// HandleHealthCheck reports the server and its configured dependencies
func (h *Handler) HandleHealthCheck(c *gin.Context) {
	status := Status{
		Status:       "healthy",
		Uptime:       int64(time.Since(h.startedAt).Seconds()),
		Dependencies: make(map[string]string, len(h.checks)),
	}

	for name, check := range h.checks {
		if err := check(); err != nil {
			status.Status = "degraded"
			status.Dependencies[name] = err.Error()
			continue
		}
		status.Dependencies[name] = "ok"
	}

	h.responseHandler.SuccessResponse(c, status, "Health check successful")
}
