package appcore

import (
	"context"
	"time"
)

// Store is the connection side of the document store that operations need.
// The interface is declared on the consumer side.
type Store interface {
	// EnsureConnected connects on first use; later calls are no-ops.
	EnsureConnected(ctx context.Context) error

	// RunInTransaction runs fn atomically when the store supports it.
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Revalidator invalidates the cached rendering of a page path.
// Implementations never fail the calling operation.
type Revalidator interface {
	Revalidate(ctx context.Context, path string)
}

// OperationObserver records the outcome of an application operation.
type OperationObserver interface {
	ObserveOperation(operation string, duration time.Duration, err error)
}

// NopObserver discards observations.
type NopObserver struct{}

// ObserveOperation implements OperationObserver.
func (NopObserver) ObserveOperation(string, time.Duration, error) {}

// HealthChecker probes one backing service.
type HealthChecker interface {
	Name() string
	Check(ctx context.Context) HealthStatus
}

// HealthStatus is the result of one probe.
type HealthStatus struct {
	Healthy   bool           `json:"healthy"`
	Message   string         `json:"message,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
	CheckedAt time.Time      `json:"checked_at"`
}

// Healthy returns a passing status stamped with the current time.
func Healthy(message string, details map[string]any) HealthStatus {
	return HealthStatus{Healthy: true, Message: message, Details: details, CheckedAt: time.Now()}
}

// Unhealthy returns a failing status stamped with the current time.
func Unhealthy(message string) HealthStatus {
	return HealthStatus{Message: message, CheckedAt: time.Now()}
}
