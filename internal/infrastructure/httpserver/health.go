// Package httpserver provides HTTP server infrastructure components.
package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lllypuk/threads/internal/application/appcore"
)

// Health status constants.
const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
	// StatusDegraded marks an optional component that is down.
	StatusDegraded = "degraded"
	StatusReady    = "ready"
	StatusNotReady = "not_ready"
)

// DefaultCheckTimeout bounds a single component check.
const DefaultCheckTimeout = 3 * time.Second

// ComponentStatus represents the health status of a single component.
type ComponentStatus struct {
	Name    string         `json:"name"`
	Status  string         `json:"status"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// HealthResponse represents the response for health endpoints.
type HealthResponse struct {
	Status     string            `json:"status"`
	Components []ComponentStatus `json:"components,omitempty"`
}

// HealthChecker reports readiness and per-component health.
type HealthChecker interface {
	IsReady(ctx context.Context) bool
	GetHealthStatus(ctx context.Context) []ComponentStatus
}

// Component is a checked dependency. A failing optional component degrades
// the service without taking it out of rotation.
type Component struct {
	Checker  appcore.HealthChecker
	Optional bool
}

// ComponentChecker runs component checks in registration order.
type ComponentChecker struct {
	components []Component
	timeout    time.Duration
}

// NewComponentChecker creates a ComponentChecker. A non-positive timeout uses
// DefaultCheckTimeout.
func NewComponentChecker(timeout time.Duration, components ...Component) *ComponentChecker {
	if timeout <= 0 {
		timeout = DefaultCheckTimeout
	}
	return &ComponentChecker{components: components, timeout: timeout}
}

// IsReady reports whether every required component is healthy.
func (c *ComponentChecker) IsReady(ctx context.Context) bool {
	for _, comp := range c.components {
		if comp.Optional {
			continue
		}
		if !c.check(ctx, comp.Checker).Healthy {
			return false
		}
	}
	return true
}

// GetHealthStatus checks every component.
func (c *ComponentChecker) GetHealthStatus(ctx context.Context) []ComponentStatus {
	statuses := make([]ComponentStatus, 0, len(c.components))
	for _, comp := range c.components {
		result := c.check(ctx, comp.Checker)

		status := StatusHealthy
		switch {
		case result.Healthy:
		case comp.Optional:
			status = StatusDegraded
		default:
			status = StatusUnhealthy
		}

		statuses = append(statuses, ComponentStatus{
			Name:    comp.Checker.Name(),
			Status:  status,
			Message: result.Message,
			Details: result.Details,
		})
	}
	return statuses
}

func (c *ComponentChecker) check(ctx context.Context, checker appcore.HealthChecker) appcore.HealthStatus {
	checkCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return checker.Check(checkCtx)
}

// HealthEndpoints serves the liveness, readiness and detail endpoints.
type HealthEndpoints struct {
	checker HealthChecker
}

// NewHealthEndpoints creates a new HealthEndpoints instance. A nil checker
// reports the service as always ready.
func NewHealthEndpoints(checker HealthChecker) *HealthEndpoints {
	return &HealthEndpoints{
		checker: checker,
	}
}

// Register registers all health endpoints on the Echo instance:
//   - GET /health          liveness, always 200
//   - GET /ready           200 when required components are healthy, 503 otherwise
//   - GET /health/details  status of every component
func (h *HealthEndpoints) Register(e *echo.Echo) {
	e.GET("/health", h.handleHealth)
	e.GET("/ready", h.handleReady)
	e.GET("/health/details", h.handleHealthDetails)
}

func (h *HealthEndpoints) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status: StatusHealthy,
	})
}

func (h *HealthEndpoints) handleReady(c echo.Context) error {
	ctx := c.Request().Context()

	if h.checker == nil || h.checker.IsReady(ctx) {
		return c.JSON(http.StatusOK, HealthResponse{Status: StatusReady})
	}

	return c.JSON(http.StatusServiceUnavailable, HealthResponse{
		Status:     StatusNotReady,
		Components: h.components(ctx),
	})
}

func (h *HealthEndpoints) handleHealthDetails(c echo.Context) error {
	components := h.components(c.Request().Context())

	overallStatus := StatusHealthy
	statusCode := http.StatusOK

	for _, comp := range components {
		if comp.Status == StatusUnhealthy {
			overallStatus = StatusUnhealthy
			statusCode = http.StatusServiceUnavailable
			break
		}
		if comp.Status == StatusDegraded {
			// unhealthy takes precedence
			overallStatus = StatusDegraded
		}
	}

	return c.JSON(statusCode, HealthResponse{
		Status:     overallStatus,
		Components: components,
	})
}

func (h *HealthEndpoints) components(ctx context.Context) []ComponentStatus {
	if h.checker == nil {
		return nil
	}
	return h.checker.GetHealthStatus(ctx)
}

// RegisterHealthEndpoints registers the health endpoints on the router's Echo instance.
func (r *Router) RegisterHealthEndpoints(checker HealthChecker) {
	NewHealthEndpoints(checker).Register(r.echo)
}
