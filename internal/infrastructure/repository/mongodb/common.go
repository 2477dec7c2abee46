// Package mongodb holds the MongoDB-backed repositories for users and threads.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/lllypuk/threads/internal/domain/errs"
)

const (
	// DefaultPaginationLimit is the page size used when a caller passes no limit.
	DefaultPaginationLimit = 20

	// MaxPaginationLimit caps any single page read.
	MaxPaginationLimit = 100
)

// HandleMongoError maps a MongoDB error to a domain error.
// returns:
//   - nil if err == nil
//   - errs.ErrNotFound if no document matched
//   - errs.ErrAlreadyExists on a unique constraint violation
//   - a wrapped error otherwise
func HandleMongoError(err error, resourceType string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, mongo.ErrNoDocuments) {
		return errs.ErrNotFound
	}

	if mongo.IsDuplicateKeyError(err) {
		return errs.ErrAlreadyExists
	}

	return fmt.Errorf("failed to operate on %s: %w", resourceType, err)
}

// BaseDocument holds the timestamps shared by mutable documents.
type BaseDocument struct {
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// FindOneAndUpsertOptions returns options for an upsert that returns the
// document as it is after the update.
func FindOneAndUpsertOptions() *options.FindOneAndUpdateOptionsBuilder {
	return options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)
}

// FindPage returns find options for one page ordered by sort.
func FindPage(offset, limit int, sort bson.D) *options.FindOptionsBuilder {
	return options.Find().
		SetSort(sort).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))
}

// CountFilter counts documents matching filter.
func CountFilter(ctx context.Context, coll *mongo.Collection, filter bson.M) (int, error) {
	count, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

// DefaultLimitWithMax returns defaultLimit for non-positive limits and caps at maxLimit.
func DefaultLimitWithMax(limit, defaultLimit, maxLimit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

// StringPtr returns nil for an empty string.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// StringValue returns the empty string for a nil pointer.
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
