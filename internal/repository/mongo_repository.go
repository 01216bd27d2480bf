package repository

import (
	"context"
	"errors"
	"fmt"

	"solar_registration/internal/config"
	"solar_registration/internal/domain"
	"solar_registration/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRepo stores each registration as one document
type MongoRepo struct {
	db *config.MongoDatabase
}

func NewMongoRepo(db *config.MongoDatabase) *MongoRepo {
	return &MongoRepo{db: db}
}

// Insert writes registrations using unordered batch writes. Registrations
// already stored under the same _id count as written.
func (r *MongoRepo) Insert(ctx context.Context, records []domain.Registration) error {
	if len(records) == 0 {
		return nil
	}

	docs := make([]interface{}, len(records))
	for i, record := range records {
		docs[i] = record
	}

	opts := options.InsertMany().SetOrdered(false)

	result, err := r.db.Collection.InsertMany(ctx, docs, opts)
	if err != nil {
		var bwe mongo.BulkWriteException
		if errors.As(err, &bwe) && bwe.WriteConcernError == nil && len(bwe.WriteErrors) > 0 {
			failed := failedIDs(records, bwe)
			if len(failed) == 0 {
				logger.Debugf("Skipped %d registrations already stored", len(bwe.WriteErrors))
				return nil
			}
			logger.Errorf("MongoDB InsertMany partially failed: %d/%d registrations not written", len(failed), len(records))
			return &PartialWriteError{FailedIDs: failed, Err: err}
		}
		logger.Errorf("MongoDB InsertMany failed: %v", err)
		return fmt.Errorf("batch insert failed: %w", err)
	}

	logger.Debugf("Inserted %d registrations", len(result.InsertedIDs))
	return nil
}

// failedIDs lists the registrations a bulk insert did not store. A
// duplicate key means an earlier attempt already stored the registration.
func failedIDs(records []domain.Registration, bwe mongo.BulkWriteException) []string {
	var ids []string
	for _, we := range bwe.WriteErrors {
		if isDuplicateKey(we.Code) || we.Index < 0 || we.Index >= len(records) {
			continue
		}
		ids = append(ids, records[we.Index].ID)
	}
	return ids
}

func isDuplicateKey(code int) bool {
	return code == 11000 || code == 11001 || code == 12582
}

func (r *MongoRepo) Count(ctx context.Context) (int64, error) {
	count, err := r.db.Collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count failed: %w", err)
	}
	return count, nil
}

func (r *MongoRepo) Type() string {
	return "mongo"
}
