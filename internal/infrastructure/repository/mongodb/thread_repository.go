package mongodb

import (
	"context"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/lllypuk/threads/internal/domain/errs"
	threaddomain "github.com/lllypuk/threads/internal/domain/thread"
	"github.com/lllypuk/threads/internal/domain/uuid"
)

// topLevelFilter matches threads whose parent_id is null or absent.
func topLevelFilter() bson.M {
	return bson.M{"parent_id": nil}
}

// MongoThreadRepository implements threadapp.ThreadRepository.
type MongoThreadRepository struct {
	collection *mongo.Collection
	logger     *slog.Logger
}

// ThreadRepoOption configures MongoThreadRepository.
type ThreadRepoOption func(*MongoThreadRepository)

// WithThreadRepoLogger sets the logger for thread repository.
func WithThreadRepoLogger(logger *slog.Logger) ThreadRepoOption {
	return func(r *MongoThreadRepository) {
		r.logger = logger
	}
}

// NewMongoThreadRepository creates a new MongoDB thread repository.
func NewMongoThreadRepository(collection *mongo.Collection, opts ...ThreadRepoOption) *MongoThreadRepository {
	r := &MongoThreadRepository{
		collection: collection,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Insert stores a new thread. The community reference is never persisted.
func (r *MongoThreadRepository) Insert(ctx context.Context, t *threaddomain.Thread) error {
	if t == nil || t.ID().IsZero() {
		return errs.ErrInvalidInput
	}

	_, err := r.collection.InsertOne(ctx, r.threadToDocument(t))
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to insert thread",
			slog.String("thread_id", t.ID().String()),
			slog.String("error", err.Error()),
		)
	}
	return HandleMongoError(err, "thread")
}

// FindByID finds a thread by ID.
func (r *MongoThreadRepository) FindByID(ctx context.Context, id uuid.UUID) (*threaddomain.Thread, error) {
	if id.IsZero() {
		return nil, errs.ErrInvalidInput
	}

	var doc threadDocument
	err := r.collection.FindOne(ctx, bson.M{"thread_id": id.String()}).Decode(&doc)
	if err != nil {
		return nil, HandleMongoError(err, "thread")
	}

	return r.documentToThread(&doc)
}

// FindByIDs loads the threads with the given IDs in one query, oldest first.
// Missing IDs are skipped.
func (r *MongoThreadRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*threaddomain.Thread, error) {
	if len(ids) == 0 {
		return make([]*threaddomain.Thread, 0), nil
	}

	filter := bson.M{"thread_id": bson.M{"$in": uuid.Strings(ids)}}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})

	return findDocuments(ctx, r.collection, filter, opts, r.documentToThread, "threads")
}

// FindTopLevel returns a page of top-level threads, newest first.
func (r *MongoThreadRepository) FindTopLevel(
	ctx context.Context,
	offset, limit int,
) ([]*threaddomain.Thread, error) {
	if offset < 0 {
		return nil, errs.ErrInvalidInput
	}
	limit = DefaultLimitWithMax(limit, DefaultPaginationLimit, MaxPaginationLimit)

	// thread_id breaks ties between threads created in the same millisecond
	opts := FindPage(offset, limit, bson.D{{Key: "created_at", Value: -1}, {Key: "thread_id", Value: -1}})

	return findDocuments(ctx, r.collection, topLevelFilter(), opts, r.documentToThread, "threads")
}

// CountTopLevel returns the number of top-level threads.
func (r *MongoThreadRepository) CountTopLevel(ctx context.Context) (int, error) {
	count, err := CountFilter(ctx, r.collection, topLevelFilter())
	if err != nil {
		return 0, HandleMongoError(err, "threads")
	}
	return count, nil
}

// AppendChild pushes a reply ID onto the parent's children list.
func (r *MongoThreadRepository) AppendChild(ctx context.Context, parentID, childID uuid.UUID) error {
	if parentID.IsZero() || childID.IsZero() {
		return errs.ErrInvalidInput
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"thread_id": parentID.String()},
		bson.M{"$push": bson.M{"children": childID.String()}},
	)
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to link reply to parent",
			slog.String("parent_id", parentID.String()),
			slog.String("child_id", childID.String()),
			slog.String("error", err.Error()),
		)
		return HandleMongoError(err, "thread")
	}

	if result.MatchedCount == 0 {
		return errs.ErrNotFound
	}

	return nil
}

// threadDocument represents the thread document in MongoDB
type threadDocument struct {
	ThreadID    string    `bson:"thread_id"`
	Text        string    `bson:"text"`
	AuthorID    string    `bson:"author_id"`
	CommunityID *string   `bson:"community_id"`
	ParentID    *string   `bson:"parent_id"`
	Children    []string  `bson:"children"`
	CreatedAt   time.Time `bson:"created_at"`
}

// threadToDocument converts a Thread to a document.
func (r *MongoThreadRepository) threadToDocument(t *threaddomain.Thread) threadDocument {
	var parentID *string
	if !t.ParentID().IsZero() {
		parentID = StringPtr(t.ParentID().String())
	}

	return threadDocument{
		ThreadID:    t.ID().String(),
		Text:        t.Text(),
		AuthorID:    t.AuthorID().String(),
		CommunityID: nil,
		ParentID:    parentID,
		Children:    uuid.Strings(t.Children()),
		CreatedAt:   t.CreatedAt(),
	}
}

// documentToThread converts a document to a Thread.
func (r *MongoThreadRepository) documentToThread(doc *threadDocument) (*threaddomain.Thread, error) {
	if doc == nil {
		return nil, errs.ErrInvalidInput
	}

	id, err := uuid.ParseUUID(doc.ThreadID)
	if err != nil {
		return nil, errs.ErrInvalidInput
	}

	authorID, err := uuid.ParseUUID(doc.AuthorID)
	if err != nil {
		return nil, errs.ErrInvalidInput
	}

	var parentID uuid.UUID
	if doc.ParentID != nil {
		parentID, err = uuid.ParseUUID(*doc.ParentID)
		if err != nil {
			return nil, errs.ErrInvalidInput
		}
	}

	children, err := parseUUIDs(doc.Children)
	if err != nil {
		return nil, err
	}

	return threaddomain.Reconstruct(
		id,
		doc.Text,
		authorID,
		"",
		parentID,
		children,
		doc.CreatedAt,
	), nil
}
