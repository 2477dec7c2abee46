package user

import (
	"slices"
	"strings"
	"time"

	"github.com/lllypuk/threads/internal/domain/errs"
	"github.com/lllypuk/threads/internal/domain/uuid"
)

// User represents an author of threads.
type User struct {
	id         uuid.UUID
	externalID string // ID from the external auth provider, immutable once set
	username   string
	name       string
	bio        string
	image      string
	onboarded  bool
	threads    []uuid.UUID // authored threads, creation order, no duplicates
	createdAt  time.Time
	updatedAt  time.Time
}

// Profile holds the editable profile fields of a user.
type Profile struct {
	ExternalID string
	Username   string
	Name       string
	Bio        string
	Image      string
}

// NormalizeUsername case-folds a username the way it is persisted.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// NewUser creates a user from a first profile save. The user is onboarded.
func NewUser(p Profile) (*User, error) {
	if p.ExternalID == "" {
		return nil, errs.ErrInvalidInput
	}

	username := NormalizeUsername(p.Username)
	if username == "" {
		return nil, errs.ErrInvalidInput
	}

	now := time.Now().UTC()
	return &User{
		id:         uuid.NewUUID(),
		externalID: p.ExternalID,
		username:   username,
		name:       p.Name,
		bio:        p.Bio,
		image:      p.Image,
		onboarded:  true,
		threads:    make([]uuid.UUID, 0),
		createdAt:  now,
		updatedAt:  now,
	}, nil
}

// Reconstruct restores a user from storage. Fields excluded by a projection
// stay at their zero value.
func Reconstruct(
	id uuid.UUID,
	externalID, username, name, bio, image string,
	onboarded bool,
	threads []uuid.UUID,
	createdAt, updatedAt time.Time,
) *User {
	if threads == nil {
		threads = make([]uuid.UUID, 0)
	}
	return &User{
		id:         id,
		externalID: externalID,
		username:   username,
		name:       name,
		bio:        bio,
		image:      image,
		onboarded:  onboarded,
		threads:    threads,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
	}
}

// Getters

// ID returns the internal identifier
func (u *User) ID() uuid.UUID {
	return u.id
}

// ExternalID returns the identifier in the external auth provider
func (u *User) ExternalID() string {
	return u.externalID
}

// Username returns the lower-cased username
func (u *User) Username() string {
	return u.username
}

// Name returns the display name
func (u *User) Name() string {
	return u.name
}

// Bio returns the profile bio
func (u *User) Bio() string {
	return u.bio
}

// Image returns the avatar URL
func (u *User) Image() string {
	return u.image
}

// IsOnboarded reports whether the user completed a profile save
func (u *User) IsOnboarded() bool {
	return u.onboarded
}

// Threads returns a copy of the authored thread IDs in creation order
func (u *User) Threads() []uuid.UUID {
	return slices.Clone(u.threads)
}

// CreatedAt returns creation time
func (u *User) CreatedAt() time.Time {
	return u.createdAt
}

// UpdatedAt returns time of the last profile update
func (u *User) UpdatedAt() time.Time {
	return u.updatedAt
}

// UpdateProfile overwrites the profile fields and marks the user onboarded.
// The external ID cannot change.
func (u *User) UpdateProfile(p Profile) error {
	if p.ExternalID != "" && p.ExternalID != u.externalID {
		return errs.ErrInvalidInput
	}

	username := NormalizeUsername(p.Username)
	if username == "" {
		return errs.ErrInvalidInput
	}

	u.username = username
	u.name = p.Name
	u.bio = p.Bio
	u.image = p.Image
	u.onboarded = true
	u.updatedAt = time.Now().UTC()
	return nil
}

// AddThread appends an authored thread. Returns false if it was already linked.
func (u *User) AddThread(threadID uuid.UUID) bool {
	if threadID.IsZero() || slices.Contains(u.threads, threadID) {
		return false
	}
	u.threads = append(u.threads, threadID)
	return true
}
