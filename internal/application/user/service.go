// Package user implements profile saving and lookup.
package user

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/lllypuk/threads/internal/application/appcore"
	"github.com/lllypuk/threads/internal/domain/errs"
	"github.com/lllypuk/threads/internal/domain/user"
)

// Operation names reported to the OperationObserver.
const (
	OpUpdateUser = "update_user"
	OpFetchUser  = "fetch_user"
)

// DefaultProfileEditPath is the only path UpdateUser revalidates by default.
const DefaultProfileEditPath = "/profile/edit"

const maxBioLength = 1000

// Service implements the user operations.
type Service struct {
	store           appcore.Store
	users           Repository
	revalidator     appcore.Revalidator
	observer        appcore.OperationObserver
	profileEditPath string
	logger          *slog.Logger
}

// Option configures Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithObserver sets the operation observer (metrics).
func WithObserver(observer appcore.OperationObserver) Option {
	return func(s *Service) {
		s.observer = observer
	}
}

// WithProfileEditPath sets the path that triggers revalidation after a save.
func WithProfileEditPath(path string) Option {
	return func(s *Service) {
		s.profileEditPath = path
	}
}

// NewService creates a user Service.
func NewService(store appcore.Store, users Repository, revalidator appcore.Revalidator, opts ...Option) *Service {
	s := &Service{
		store:           store,
		users:           users,
		revalidator:     revalidator,
		observer:        appcore.NopObserver{},
		profileEditPath: DefaultProfileEditPath,
		logger:          slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// UpdateUser creates or updates the profile for cmd.UserID. The username is
// stored lower-cased and the user is marked onboarded.
func (s *Service) UpdateUser(ctx context.Context, cmd UpdateUserCommand) (_ *user.User, err error) {
	start := time.Now()
	defer func() { s.observer.ObserveOperation(OpUpdateUser, time.Since(start), err) }()

	if err = s.validateUpdate(cmd); err != nil {
		return nil, &UpdateUserError{Err: err}
	}

	if err = s.store.EnsureConnected(ctx); err != nil {
		return nil, &UpdateUserError{Err: err}
	}

	saved, err := s.users.UpsertProfile(ctx, user.Profile{
		ExternalID: cmd.UserID,
		Username:   cmd.Username,
		Name:       cmd.Name,
		Bio:        cmd.Bio,
		Image:      cmd.Image,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to save user profile",
			slog.String("external_id", cmd.UserID),
			slog.String("request_id", appcore.GetRequestID(ctx)),
			slog.String("error", err.Error()),
		)
		return nil, &UpdateUserError{Err: err}
	}

	if cmd.Path == s.profileEditPath {
		s.revalidator.Revalidate(ctx, cmd.Path)
	}

	s.logger.InfoContext(ctx, "user profile saved",
		slog.String("user_id", saved.ID().String()),
		slog.String("username", saved.Username()),
	)

	return saved, nil
}

// FetchUser loads a user by external ID without populating its threads.
// A missing user is not an error: found is false.
func (s *Service) FetchUser(ctx context.Context, q FetchUserQuery) (_ *user.User, found bool, err error) {
	start := time.Now()
	defer func() { s.observer.ObserveOperation(OpFetchUser, time.Since(start), err) }()

	if err = appcore.ValidateRequired("userId", q.ExternalID); err != nil {
		return nil, false, &FetchUserError{Err: err}
	}

	if err = s.store.EnsureConnected(ctx); err != nil {
		return nil, false, &FetchUserError{Err: err}
	}

	u, err := s.users.FindByExternalID(ctx, q.ExternalID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, &FetchUserError{Err: err}
	}

	return u, true, nil
}

func (s *Service) validateUpdate(cmd UpdateUserCommand) error {
	if err := appcore.ValidateRequired("userId", cmd.UserID); err != nil {
		return err
	}
	if err := appcore.ValidateRequired("username", cmd.Username); err != nil {
		return err
	}
	return appcore.ValidateMaxLength("bio", cmd.Bio, maxBioLength)
}
