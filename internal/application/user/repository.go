package user

import (
	"context"

	"github.com/lllypuk/threads/internal/domain/user"
)

// Repository defines the profile storage used by the user operations.
// interface declared on the consumer side (application layer)
type Repository interface {
	// UpsertProfile creates or updates the user keyed by the profile's external ID
	UpsertProfile(ctx context.Context, p user.Profile) (*user.User, error)

	// FindByExternalID returns errs.ErrNotFound when no user has the ID
	FindByExternalID(ctx context.Context, externalID string) (*user.User, error)
}
