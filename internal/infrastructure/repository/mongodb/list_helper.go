package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// findDocuments runs a find and converts every document with decoder.
// T is the stored document type, R the domain type.
//
// Documents that fail to decode are an error: a partial feed or tree would
// silently misrepresent the linkage between threads.
// The returned slice is never nil.
func findDocuments[T any, R any](
	ctx context.Context,
	collection *mongo.Collection,
	filter bson.M,
	opts *options.FindOptionsBuilder,
	decoder func(*T) (R, error),
	collectionName string,
) ([]R, error) {
	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, HandleMongoError(err, collectionName)
	}
	defer cursor.Close(ctx)

	results := make([]R, 0)
	for cursor.Next(ctx) {
		var doc T
		if decodeErr := cursor.Decode(&doc); decodeErr != nil {
			return nil, fmt.Errorf("failed to decode %s document: %w", collectionName, decodeErr)
		}

		item, docErr := decoder(&doc)
		if docErr != nil {
			return nil, fmt.Errorf("failed to convert %s document: %w", collectionName, docErr)
		}

		results = append(results, item)
	}

	if err = cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	return results, nil
}
