package mocks

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/lllypuk/threads/internal/domain/errs"
	"github.com/lllypuk/threads/internal/domain/user"
	"github.com/lllypuk/threads/internal/domain/uuid"
)

// MockUserRepository is an in-memory user repository for tests. It serves
// both the thread and the user application layers.
type MockUserRepository struct {
	mu         sync.RWMutex
	users      map[uuid.UUID]*user.User
	byExternal map[string]uuid.UUID
	calls      map[string]int
	fail       failures
}

// NewMockUserRepository creates an empty MockUserRepository.
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users:      make(map[uuid.UUID]*user.User),
		byExternal: make(map[string]uuid.UUID),
		calls:      make(map[string]int),
	}
}

// FailOn makes method return err; a nil err clears the failure.
func (r *MockUserRepository) FailOn(method string, err error) {
	r.fail.set(method, err)
}

func (r *MockUserRepository) enter(method string) error {
	r.calls[method]++
	return r.fail.get(method)
}

// Add stores u directly, bypassing UpsertProfile.
func (r *MockUserRepository) Add(u *user.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID()] = u
	if u.ExternalID() != "" {
		r.byExternal[u.ExternalID()] = u.ID()
	}
}

// FindByID implements threadapp.UserRepository.
func (r *MockUserRepository) FindByID(_ context.Context, id uuid.UUID, fields []user.Field) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.enter("FindByID"); err != nil {
		return nil, err
	}
	u, ok := r.users[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return project(u, fields), nil
}

// FindByIDs implements threadapp.UserRepository.
func (r *MockUserRepository) FindByIDs(_ context.Context, ids []uuid.UUID, fields []user.Field) ([]*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.enter("FindByIDs"); err != nil {
		return nil, err
	}
	result := make([]*user.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			result = append(result, project(u, fields))
		}
	}
	return result, nil
}

// FindByExternalID implements userapp.Repository.
func (r *MockUserRepository) FindByExternalID(_ context.Context, externalID string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.enter("FindByExternalID"); err != nil {
		return nil, err
	}
	if externalID == "" {
		return nil, errs.ErrInvalidInput
	}
	id, ok := r.byExternal[externalID]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return project(r.users[id], user.AllFields), nil
}

// UpsertProfile implements userapp.Repository.
func (r *MockUserRepository) UpsertProfile(_ context.Context, p user.Profile) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.enter("UpsertProfile"); err != nil {
		return nil, err
	}

	id, ok := r.byExternal[p.ExternalID]
	if !ok {
		created, err := user.NewUser(p)
		if err != nil {
			return nil, err
		}
		r.users[created.ID()] = created
		r.byExternal[p.ExternalID] = created.ID()
		return project(created, user.AllFields), nil
	}

	existing := project(r.users[id], user.AllFields)
	if err := existing.UpdateProfile(p); err != nil {
		return nil, err
	}
	r.users[id] = existing
	return project(existing, user.AllFields), nil
}

// AppendThread implements threadapp.UserRepository.
func (r *MockUserRepository) AppendThread(_ context.Context, userID, threadID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.enter("AppendThread"); err != nil {
		return err
	}
	u, ok := r.users[userID]
	if !ok {
		return errs.ErrNotFound
	}
	updated := project(u, user.AllFields)
	updated.AddThread(threadID)
	r.users[userID] = updated
	return nil
}

// Snapshot captures the current contents; the returned func restores them.
func (r *MockUserRepository) Snapshot() func() {
	r.mu.RLock()
	users := make(map[uuid.UUID]*user.User, len(r.users))
	for id, u := range r.users {
		users[id] = u
	}
	byExternal := make(map[string]uuid.UUID, len(r.byExternal))
	for k, v := range r.byExternal {
		byExternal[k] = v
	}
	r.mu.RUnlock()

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.users = users
		r.byExternal = byExternal
	}
}

// Get returns the full stored user or nil.
func (r *MockUserRepository) Get(id uuid.UUID) *user.User {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if u, ok := r.users[id]; ok {
		return project(u, user.AllFields)
	}
	return nil
}

// CallCount returns how many times method was called.
func (r *MockUserRepository) CallCount(method string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.calls[method]
}

// Reset clears users, calls and injected failures.
func (r *MockUserRepository) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = make(map[uuid.UUID]*user.User)
	r.byExternal = make(map[string]uuid.UUID)
	r.calls = make(map[string]int)
	r.fail = failures{}
}

// project copies u keeping only the selected fields. A nil field set keeps
// everything; the ID is always kept.
func project(u *user.User, fields []user.Field) *user.User {
	has := func(f user.Field) bool {
		return fields == nil || slices.Contains(fields, f)
	}
	pick := func(f user.Field, v string) string {
		if has(f) {
			return v
		}
		return ""
	}

	var threads []uuid.UUID
	if has(user.FieldThreads) {
		threads = u.Threads()
	}
	var createdAt, updatedAt time.Time
	if fields == nil {
		createdAt, updatedAt = u.CreatedAt(), u.UpdatedAt()
	}

	return user.Reconstruct(
		u.ID(),
		pick(user.FieldExternalID, u.ExternalID()),
		pick(user.FieldUsername, u.Username()),
		pick(user.FieldName, u.Name()),
		pick(user.FieldBio, u.Bio()),
		pick(user.FieldImage, u.Image()),
		has(user.FieldOnboarded) && u.IsOnboarded(),
		threads,
		createdAt,
		updatedAt,
	)
}
