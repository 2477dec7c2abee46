package mongodb

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/lllypuk/threads/internal/domain/errs"
	userdomain "github.com/lllypuk/threads/internal/domain/user"
	"github.com/lllypuk/threads/internal/domain/uuid"
)

// userFieldKeys maps selectable user fields to document keys.
var userFieldKeys = map[userdomain.Field]string{
	userdomain.FieldID:         "user_id",
	userdomain.FieldExternalID: "external_id",
	userdomain.FieldUsername:   "username",
	userdomain.FieldName:       "name",
	userdomain.FieldBio:        "bio",
	userdomain.FieldImage:      "image",
	userdomain.FieldOnboarded:  "onboarded",
	userdomain.FieldThreads:    "threads",
}

// MongoUserRepository implements the user and thread application repositories
// for the users collection.
type MongoUserRepository struct {
	collection *mongo.Collection
	logger     *slog.Logger
}

// UserRepoOption configures MongoUserRepository.
type UserRepoOption func(*MongoUserRepository)

// WithUserRepoLogger sets the logger for user repository.
func WithUserRepoLogger(logger *slog.Logger) UserRepoOption {
	return func(r *MongoUserRepository) {
		r.logger = logger
	}
}

// NewMongoUserRepository creates a new MongoDB user repository.
func NewMongoUserRepository(collection *mongo.Collection, opts ...UserRepoOption) *MongoUserRepository {
	r := &MongoUserRepository{
		collection: collection,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// FindByID finds a user by internal ID, loading only the selected fields.
// A nil field set loads the whole record.
func (r *MongoUserRepository) FindByID(
	ctx context.Context,
	id uuid.UUID,
	fields []userdomain.Field,
) (*userdomain.User, error) {
	if id.IsZero() {
		return nil, errs.ErrInvalidInput
	}

	opts := options.FindOne()
	if projection := userProjection(fields); projection != nil {
		opts.SetProjection(projection)
	}

	var doc userDocument
	err := r.collection.FindOne(ctx, bson.M{"user_id": id.String()}, opts).Decode(&doc)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			r.logger.ErrorContext(ctx, "failed to find user by ID",
				slog.String("user_id", id.String()),
				slog.String("error", err.Error()),
			)
		}
		return nil, HandleMongoError(err, "user")
	}

	return r.documentToUser(&doc)
}

// FindByExternalID finds a user by the ID of the external auth provider.
func (r *MongoUserRepository) FindByExternalID(ctx context.Context, externalID string) (*userdomain.User, error) {
	if externalID == "" {
		return nil, errs.ErrInvalidInput
	}

	var doc userDocument
	err := r.collection.FindOne(ctx, bson.M{"external_id": externalID}).Decode(&doc)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			r.logger.ErrorContext(ctx, "failed to find user by external ID",
				slog.String("external_id", externalID),
				slog.String("error", err.Error()),
			)
		}
		return nil, HandleMongoError(err, "user")
	}

	return r.documentToUser(&doc)
}

// FindByIDs loads the users with the given IDs in one query. Missing IDs are
// skipped; result order is unspecified.
func (r *MongoUserRepository) FindByIDs(
	ctx context.Context,
	ids []uuid.UUID,
	fields []userdomain.Field,
) ([]*userdomain.User, error) {
	if len(ids) == 0 {
		return make([]*userdomain.User, 0), nil
	}

	opts := options.Find()
	if projection := userProjection(fields); projection != nil {
		opts.SetProjection(projection)
	}

	filter := bson.M{"user_id": bson.M{"$in": uuid.Strings(ids)}}
	return findDocuments(ctx, r.collection, filter, opts, r.documentToUser, "users")
}

// UpsertProfile saves a profile keyed by external ID. A new user gets an
// internal ID, a creation time and an empty thread list; an existing one
// keeps them. The user is marked onboarded either way.
func (r *MongoUserRepository) UpsertProfile(ctx context.Context, profile userdomain.Profile) (*userdomain.User, error) {
	username := userdomain.NormalizeUsername(profile.Username)
	if profile.ExternalID == "" || username == "" {
		return nil, errs.ErrInvalidInput
	}

	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"username":   username,
			"name":       profile.Name,
			"bio":        profile.Bio,
			"image":      profile.Image,
			"onboarded":  true,
			"updated_at": now,
		},
		"$setOnInsert": bson.M{
			"user_id":    uuid.NewUUID().String(),
			"threads":    bson.A{},
			"created_at": now,
		},
	}

	var doc userDocument
	err := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"external_id": profile.ExternalID},
		update,
		FindOneAndUpsertOptions(),
	).Decode(&doc)
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to upsert user profile",
			slog.String("external_id", profile.ExternalID),
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
		return nil, HandleMongoError(err, "user")
	}

	return r.documentToUser(&doc)
}

// AppendThread adds a thread ID to the user's thread list once.
func (r *MongoUserRepository) AppendThread(ctx context.Context, userID, threadID uuid.UUID) error {
	if userID.IsZero() || threadID.IsZero() {
		return errs.ErrInvalidInput
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"user_id": userID.String()},
		bson.M{
			"$addToSet": bson.M{"threads": threadID.String()},
			"$set":      bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to link thread to user",
			slog.String("user_id", userID.String()),
			slog.String("thread_id", threadID.String()),
			slog.String("error", err.Error()),
		)
		return HandleMongoError(err, "user")
	}

	if result.MatchedCount == 0 {
		return errs.ErrNotFound
	}

	return nil
}

// Count returns the number of stored users.
func (r *MongoUserRepository) Count(ctx context.Context) (int, error) {
	count, err := CountFilter(ctx, r.collection, bson.M{})
	if err != nil {
		return 0, HandleMongoError(err, "users")
	}
	return count, nil
}

// userDocument represents the user document in MongoDB
type userDocument struct {
	UserID     string   `bson:"user_id"`
	ExternalID *string  `bson:"external_id,omitempty"`
	Username   string   `bson:"username,omitempty"`
	Name       string   `bson:"name,omitempty"`
	Bio        string   `bson:"bio,omitempty"`
	Image      string   `bson:"image,omitempty"`
	Onboarded  bool     `bson:"onboarded"`
	Threads    []string `bson:"threads"`

	BaseDocument `bson:",inline"`
}

// documentToUser converts a document to a User.
func (r *MongoUserRepository) documentToUser(doc *userDocument) (*userdomain.User, error) {
	if doc == nil {
		return nil, errs.ErrInvalidInput
	}

	id, err := uuid.ParseUUID(doc.UserID)
	if err != nil {
		return nil, errs.ErrInvalidInput
	}

	threads, err := parseUUIDs(doc.Threads)
	if err != nil {
		return nil, err
	}

	return userdomain.Reconstruct(
		id,
		StringValue(doc.ExternalID),
		doc.Username,
		doc.Name,
		doc.Bio,
		doc.Image,
		doc.Onboarded,
		threads,
		doc.CreatedAt,
		doc.UpdatedAt,
	), nil
}

// userProjection builds a projection for the selected fields. user_id is
// always loaded so related records can be matched back to their owners.
func userProjection(fields []userdomain.Field) bson.M {
	if fields == nil {
		return nil
	}

	projection := bson.M{"_id": 0, "user_id": 1}
	for _, f := range fields {
		if key, ok := userFieldKeys[f]; ok {
			projection[key] = 1
		}
	}
	return projection
}

func parseUUIDs(values []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(values))
	for _, v := range values {
		id, err := uuid.ParseUUID(v)
		if err != nil {
			return nil, errs.ErrInvalidInput
		}
		ids = append(ids, id)
	}
	return ids, nil
}
