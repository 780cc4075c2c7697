package repository

import (
	"context"

	"launchdeck/internal/types"
)

// AppRepository defines the interface for registered-application persistence
type AppRepository interface {
	// GetAll returns every registered application in insertion order
	GetAll(ctx context.Context) ([]types.RegisteredApp, error)

	// GetByID returns a single record, or a NotFound error when absent
	GetByID(ctx context.Context, id string) (*types.RegisteredApp, error)

	// Insert persists a new record; the id must already be assigned
	Insert(ctx context.Context, app *types.RegisteredApp) error

	// Update replaces all mutable fields of an existing record,
	// failing with NotFound when the id is unknown
	Update(ctx context.Context, app *types.RegisteredApp) error

	// Delete removes a record, failing with NotFound when the id is unknown
	Delete(ctx context.Context, id string) error

	// DeleteAll removes every record (configuration reset)
	DeleteAll(ctx context.Context) error
}
