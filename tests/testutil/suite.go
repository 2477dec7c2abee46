package testutil

import (
	"testing"

	threadapp "github.com/lllypuk/threads/internal/application/thread"
	userapp "github.com/lllypuk/threads/internal/application/user"
	"github.com/lllypuk/threads/tests/mocks"
)

// TestSuite wires both services over in-memory repositories.
type TestSuite struct {
	t *testing.T

	// Mocks
	Store       *mocks.MockStore
	ThreadRepo  *mocks.MockThreadRepository
	UserRepo    *mocks.MockUserRepository
	Revalidator *mocks.MockRevalidator
	Observer    *mocks.MockObserver

	// Services
	Threads *threadapp.Service
	Users   *userapp.Service
}

// NewTestSuite creates a suite whose store rolls writes back on failure.
// Extra options are applied to the thread service.
func NewTestSuite(t *testing.T, opts ...threadapp.Option) *TestSuite {
	t.Helper()

	suite := &TestSuite{
		t:           t,
		ThreadRepo:  mocks.NewMockThreadRepository(),
		UserRepo:    mocks.NewMockUserRepository(),
		Revalidator: mocks.NewMockRevalidator(),
		Observer:    mocks.NewMockObserver(),
	}
	suite.Store = mocks.NewTransactionalStore(suite.ThreadRepo, suite.UserRepo)

	threadOpts := append([]threadapp.Option{threadapp.WithObserver(suite.Observer)}, opts...)
	suite.Threads = threadapp.NewService(suite.Store, suite.ThreadRepo, suite.UserRepo, suite.Revalidator, threadOpts...)
	suite.Users = userapp.NewService(suite.Store, suite.UserRepo, suite.Revalidator,
		userapp.WithObserver(suite.Observer),
	)

	return suite
}

// Reset clears all repositories and recorded calls.
func (s *TestSuite) Reset() {
	s.ThreadRepo.Reset()
	s.UserRepo.Reset()
	s.Revalidator.Reset()
	s.Observer.Reset()
}
