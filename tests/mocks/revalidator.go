package mocks

import (
	"context"
	"sync"
	"time"
)

// MockRevalidator records revalidated paths.
type MockRevalidator struct {
	mu    sync.Mutex
	paths []string
}

// NewMockRevalidator creates a MockRevalidator.
func NewMockRevalidator() *MockRevalidator {
	return &MockRevalidator{}
}

// Revalidate implements appcore.Revalidator.
func (r *MockRevalidator) Revalidate(_ context.Context, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
}

// Paths returns the revalidated paths in call order.
func (r *MockRevalidator) Paths() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

// Reset forgets recorded paths.
func (r *MockRevalidator) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = nil
}

// Observation is one recorded operation.
type Observation struct {
	Op       string
	Duration time.Duration
	Err      error
}

// MockObserver records observed operations.
type MockObserver struct {
	mu   sync.Mutex
	seen []Observation
}

// NewMockObserver creates a MockObserver.
func NewMockObserver() *MockObserver {
	return &MockObserver{}
}

// ObserveOperation implements appcore.OperationObserver.
func (o *MockObserver) ObserveOperation(op string, d time.Duration, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.seen = append(o.seen, Observation{Op: op, Duration: d, Err: err})
}

// Observations returns everything recorded so far.
func (o *MockObserver) Observations() []Observation {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]Observation(nil), o.seen...)
}

// Reset forgets recorded observations.
func (o *MockObserver) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.seen = nil
}
