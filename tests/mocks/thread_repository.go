package mocks

import (
	"context"
	"slices"
	"sync"

	"github.com/lllypuk/threads/internal/domain/errs"
	"github.com/lllypuk/threads/internal/domain/thread"
	"github.com/lllypuk/threads/internal/domain/uuid"
)

// MockThreadRepository is an in-memory thread repository for tests.
type MockThreadRepository struct {
	mu      sync.RWMutex
	threads map[uuid.UUID]*thread.Thread
	calls   map[string]int
	fail    failures
}

// NewMockThreadRepository creates an empty MockThreadRepository.
func NewMockThreadRepository() *MockThreadRepository {
	return &MockThreadRepository{
		threads: make(map[uuid.UUID]*thread.Thread),
		calls:   make(map[string]int),
	}
}

// FailOn makes method return err; a nil err clears the failure.
func (r *MockThreadRepository) FailOn(method string, err error) {
	r.fail.set(method, err)
}

func (r *MockThreadRepository) enter(method string) error {
	r.calls[method]++
	return r.fail.get(method)
}

// Insert implements threadapp.ThreadRepository.
func (r *MockThreadRepository) Insert(_ context.Context, t *thread.Thread) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.enter("Insert"); err != nil {
		return err
	}
	if t == nil || t.ID().IsZero() {
		return errs.ErrInvalidInput
	}
	if _, ok := r.threads[t.ID()]; ok {
		return errs.ErrAlreadyExists
	}
	r.threads[t.ID()] = cloneThread(t, nil)
	return nil
}

// FindByID implements threadapp.ThreadRepository.
func (r *MockThreadRepository) FindByID(_ context.Context, id uuid.UUID) (*thread.Thread, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.enter("FindByID"); err != nil {
		return nil, err
	}
	t, ok := r.threads[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return cloneThread(t, nil), nil
}

// FindByIDs implements threadapp.ThreadRepository.
func (r *MockThreadRepository) FindByIDs(_ context.Context, ids []uuid.UUID) ([]*thread.Thread, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.enter("FindByIDs"); err != nil {
		return nil, err
	}
	result := make([]*thread.Thread, 0, len(ids))
	for _, id := range ids {
		if t, ok := r.threads[id]; ok {
			result = append(result, cloneThread(t, nil))
		}
	}
	return result, nil
}

// FindTopLevel implements threadapp.ThreadRepository.
func (r *MockThreadRepository) FindTopLevel(_ context.Context, offset, limit int) ([]*thread.Thread, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.enter("FindTopLevel"); err != nil {
		return nil, err
	}
	if offset < 0 {
		return nil, errs.ErrInvalidInput
	}

	top := r.topLevel()
	slices.SortFunc(top, func(a, b *thread.Thread) int {
		if c := b.CreatedAt().Compare(a.CreatedAt()); c != 0 {
			return c
		}
		switch {
		case a.ID() > b.ID():
			return -1
		case a.ID() < b.ID():
			return 1
		}
		return 0
	})

	if offset >= len(top) {
		return make([]*thread.Thread, 0), nil
	}
	end := min(offset+limit, len(top))

	result := make([]*thread.Thread, 0, end-offset)
	for _, t := range top[offset:end] {
		result = append(result, cloneThread(t, nil))
	}
	return result, nil
}

// CountTopLevel implements threadapp.ThreadRepository.
func (r *MockThreadRepository) CountTopLevel(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.enter("CountTopLevel"); err != nil {
		return 0, err
	}
	return len(r.topLevel()), nil
}

// AppendChild implements threadapp.ThreadRepository.
func (r *MockThreadRepository) AppendChild(_ context.Context, parentID, childID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.enter("AppendChild"); err != nil {
		return err
	}
	parent, ok := r.threads[parentID]
	if !ok {
		return errs.ErrNotFound
	}
	r.threads[parentID] = cloneThread(parent, append(parent.Children(), childID))
	return nil
}

// Snapshot captures the current contents; the returned func restores them.
func (r *MockThreadRepository) Snapshot() func() {
	r.mu.RLock()
	saved := make(map[uuid.UUID]*thread.Thread, len(r.threads))
	for id, t := range r.threads {
		saved[id] = t
	}
	r.mu.RUnlock()

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.threads = saved
	}
}

// Get returns the stored thread or nil.
func (r *MockThreadRepository) Get(id uuid.UUID) *thread.Thread {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if t, ok := r.threads[id]; ok {
		return cloneThread(t, nil)
	}
	return nil
}

// All returns every stored thread in no particular order.
func (r *MockThreadRepository) All() []*thread.Thread {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]*thread.Thread, 0, len(r.threads))
	for _, t := range r.threads {
		result = append(result, cloneThread(t, nil))
	}
	return result
}

// CallCount returns how many times method was called.
func (r *MockThreadRepository) CallCount(method string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.calls[method]
}

// Reset clears threads, calls and injected failures.
func (r *MockThreadRepository) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.threads = make(map[uuid.UUID]*thread.Thread)
	r.calls = make(map[string]int)
	r.fail = failures{}
}

func (r *MockThreadRepository) topLevel() []*thread.Thread {
	var top []*thread.Thread
	for _, t := range r.threads {
		if t.IsTopLevel() {
			top = append(top, t)
		}
	}
	return top
}

// cloneThread copies t, optionally replacing its children. The community
// reference is dropped the same way the MongoDB repository drops it.
func cloneThread(t *thread.Thread, children []uuid.UUID) *thread.Thread {
	if children == nil {
		children = t.Children()
	}
	return thread.Reconstruct(t.ID(), t.Text(), t.AuthorID(), "", t.ParentID(), children, t.CreatedAt())
}
