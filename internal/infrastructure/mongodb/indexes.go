// Package mongodb provides MongoDB infrastructure components: the shared
// connector and index management.
package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Collection names as constants for consistency.
const (
	CollectionUsers   = "users"
	CollectionThreads = "threads"
)

// IndexDefinition describes a MongoDB index to be created.
type IndexDefinition struct {
	Name       string
	Collection string
	Keys       bson.D
	Options    *options.IndexOptionsBuilder
}

// CreateAllIndexes creates all necessary indexes for the application.
// This function is idempotent - calling it multiple times is safe.
func CreateAllIndexes(ctx context.Context, db *mongo.Database) error {
	for _, idx := range GetAllIndexDefinitions() {
		coll := db.Collection(idx.Collection)
		model := mongo.IndexModel{
			Keys:    idx.Keys,
			Options: idx.Options,
		}

		if _, err := coll.Indexes().CreateOne(ctx, model); err != nil {
			return fmt.Errorf("failed to create index %s on collection %s: %w",
				idx.Name, idx.Collection, err)
		}
	}

	return nil
}

// GetAllIndexDefinitions returns all index definitions for all collections.
func GetAllIndexDefinitions() []IndexDefinition {
	var indexes []IndexDefinition

	indexes = append(indexes, GetUserIndexes()...)
	indexes = append(indexes, GetThreadIndexes()...)

	return indexes
}

func index(collection, name string, keys bson.D, opts *options.IndexOptionsBuilder) IndexDefinition {
	if opts == nil {
		opts = options.Index()
	}
	return IndexDefinition{
		Name:       name,
		Collection: collection,
		Keys:       keys,
		Options:    opts.SetName(name),
	}
}

// GetUserIndexes returns index definitions for the users collection.
func GetUserIndexes() []IndexDefinition {
	return []IndexDefinition{
		// Primary key
		index(CollectionUsers, "idx_users_id_unique",
			bson.D{{Key: "user_id", Value: 1}},
			options.Index().SetUnique(true)),
		// Upsert key for profile updates
		index(CollectionUsers, "idx_users_external_id_unique",
			bson.D{{Key: "external_id", Value: 1}},
			options.Index().SetUnique(true).SetSparse(true)),
		index(CollectionUsers, "idx_users_username_unique",
			bson.D{{Key: "username", Value: 1}},
			options.Index().SetUnique(true).SetSparse(true)),
	}
}

// GetThreadIndexes returns index definitions for the threads collection.
func GetThreadIndexes() []IndexDefinition {
	return []IndexDefinition{
		// Primary key
		index(CollectionThreads, "idx_threads_id_unique",
			bson.D{{Key: "thread_id", Value: 1}},
			options.Index().SetUnique(true)),
		// Feed query: top-level posts newest first
		index(CollectionThreads, "idx_threads_parent_time",
			bson.D{{Key: "parent_id", Value: 1}, {Key: "created_at", Value: -1}},
			nil),
		index(CollectionThreads, "idx_threads_author",
			bson.D{{Key: "author_id", Value: 1}},
			nil),
	}
}
