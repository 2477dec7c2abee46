package mocks

import (
	"context"
	"sync"
)

// MockStore stands in for the MongoDB connector. When rollback snapshots are
// registered, a failing RunInTransaction restores them.
type MockStore struct {
	mu           sync.Mutex
	connectErr   error
	connectCalls int
	txCalls      int
	snapshots    []func() func()
}

// NewMockStore creates a MockStore that is always reachable.
func NewMockStore() *MockStore {
	return &MockStore{}
}

// NewTransactionalStore creates a MockStore that rolls back the given
// repositories when a transaction function fails.
func NewTransactionalStore(repos ...interface{ Snapshot() func() }) *MockStore {
	s := &MockStore{}
	for _, repo := range repos {
		s.snapshots = append(s.snapshots, repo.Snapshot)
	}
	return s
}

// SetConnectError makes EnsureConnected fail with err; nil restores success.
func (s *MockStore) SetConnectError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connectErr = err
}

// EnsureConnected implements appcore.Store.
func (s *MockStore) EnsureConnected(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connectCalls++
	return s.connectErr
}

// RunInTransaction implements appcore.Store.
func (s *MockStore) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	s.txCalls++
	restores := make([]func(), 0, len(s.snapshots))
	for _, snapshot := range s.snapshots {
		restores = append(restores, snapshot())
	}
	s.mu.Unlock()

	if err := fn(ctx); err != nil {
		for _, restore := range restores {
			restore()
		}
		return err
	}
	return nil
}

// ConnectCalls returns the number of EnsureConnected calls.
func (s *MockStore) ConnectCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connectCalls
}

// TransactionCalls returns the number of RunInTransaction calls.
func (s *MockStore) TransactionCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.txCalls
}
