package repository

import (
	"context"
	"fmt"

	"solar_registration/internal/config"
	"solar_registration/internal/domain"
)

// Repository stores submitted registrations
type Repository interface {
	// Insert writes multiple registrations
	Insert(ctx context.Context, records []domain.Registration) error

	// Count returns number of stored registrations
	Count(ctx context.Context) (int64, error)

	// Type returns database type
	Type() string
}

// PartialWriteError reports a batch in which only some registrations could
// not be stored. Every registration not listed in FailedIDs is stored.
type PartialWriteError struct {
	FailedIDs []string
	Err       error
}

func (e *PartialWriteError) Error() string {
	return fmt.Sprintf("%d registrations not written: %v", len(e.FailedIDs), e.Err)
}

func (e *PartialWriteError) Unwrap() error {
	return e.Err
}

// New picks the repository matching the database connection
func New(db config.Database) (Repository, error) {
	switch d := db.(type) {
	case *config.MemoryDatabase:
		return NewMemoryRepo(), nil
	case *config.MongoDatabase:
		return NewMongoRepo(d), nil
	case *config.InfluxDatabase:
		return NewInfluxRepo(d), nil
	default:
		return nil, fmt.Errorf("no repository for database type %s", db.GetType())
	}
}
