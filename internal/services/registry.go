package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	domerrors "launchdeck/internal/infrastructure/errors"
	"launchdeck/internal/infrastructure/logging"
	"launchdeck/internal/repository"
	"launchdeck/internal/types"
)

// AppFields carries the mutable fields of a registered application
// through add and update operations
type AppFields struct {
	Name             string
	Path             string
	Arguments        string
	Description      string
	Enabled          bool
	Delay            int64
	PreventDuplicate bool
	AutoStart        bool
}

// instanceTracker is the slice of the supervisor the registry needs:
// dropping run-state tracking when a record disappears
type instanceTracker interface {
	DropTracking(appID string)
}

// Registry implements CRUD over the registered-application store with
// validation and id assignment
type Registry struct {
	repo    repository.AppRepository
	tracker instanceTracker
	logger  logging.Logger
}

// NewRegistry creates a new registry service
func NewRegistry(repo repository.AppRepository, logger logging.Logger) *Registry {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}

	return &Registry{
		repo:   repo,
		logger: logger,
	}
}

// AttachTracker wires the supervisor so removals drop run-state tracking.
// Called once during application assembly.
func (r *Registry) AttachTracker(tracker instanceTracker) {
	r.tracker = tracker
}

// List returns the current full set of registered applications in insertion order
func (r *Registry) List(ctx context.Context) ([]types.RegisteredApp, error) {
	return r.repo.GetAll(ctx)
}

// Get returns a single registered application by id
func (r *Registry) Get(ctx context.Context, id string) (*types.RegisteredApp, error) {
	return r.repo.GetByID(ctx, id)
}

// Add validates the fields, assigns a fresh id and persists a new record
func (r *Registry) Add(ctx context.Context, fields AppFields) (*types.RegisteredApp, error) {
	if err := validateFields("Add", fields); err != nil {
		return nil, err
	}

	app := &types.RegisteredApp{
		ID:               uuid.NewString(),
		Name:             strings.TrimSpace(fields.Name),
		Path:             strings.TrimSpace(fields.Path),
		Arguments:        fields.Arguments,
		Description:      fields.Description,
		Enabled:          fields.Enabled,
		Delay:            fields.Delay,
		PreventDuplicate: fields.PreventDuplicate,
		AutoStart:        fields.AutoStart,
	}

	if err := r.repo.Insert(ctx, app); err != nil {
		return nil, err
	}

	r.logger.Info("Registered application added", "app_id", app.ID, "name", app.Name)
	return app, nil
}

// Update replaces all mutable fields of an existing record, preserving the id
func (r *Registry) Update(ctx context.Context, id string, fields AppFields) (*types.RegisteredApp, error) {
	if err := validateFields("Update", fields); err != nil {
		return nil, err
	}

	app := &types.RegisteredApp{
		ID:               id,
		Name:             strings.TrimSpace(fields.Name),
		Path:             strings.TrimSpace(fields.Path),
		Arguments:        fields.Arguments,
		Description:      fields.Description,
		Enabled:          fields.Enabled,
		Delay:            fields.Delay,
		PreventDuplicate: fields.PreventDuplicate,
		AutoStart:        fields.AutoStart,
	}

	if err := r.repo.Update(ctx, app); err != nil {
		return nil, err
	}

	r.logger.Info("Registered application updated", "app_id", id, "name", app.Name)
	return app, nil
}

// Remove deletes a record and drops any associated run-state tracking.
// Deletion never kills a live process: the user loses the launcher entry,
// not the work running in the application.
func (r *Registry) Remove(ctx context.Context, id string) error {
	if err := r.repo.Delete(ctx, id); err != nil {
		return err
	}

	if r.tracker != nil {
		r.tracker.DropTracking(id)
	}

	r.logger.Info("Registered application removed", "app_id", id)
	return nil
}

// Reset clears the whole registered-application table
func (r *Registry) Reset(ctx context.Context) error {
	apps, err := r.repo.GetAll(ctx)
	if err != nil {
		return err
	}

	if err := r.repo.DeleteAll(ctx); err != nil {
		return err
	}

	if r.tracker != nil {
		for i := range apps {
			r.tracker.DropTracking(apps[i].ID)
		}
	}

	r.logger.Info("Registered application list reset", "removed", len(apps))
	return nil
}

// validateFields enforces the record invariants: non-empty name and path,
// non-negative delay
func validateFields(op string, fields AppFields) error {
	if strings.TrimSpace(fields.Name) == "" {
		return domerrors.HandleValidationError(op, "name", fields.Name, "name cannot be empty")
	}
	if strings.TrimSpace(fields.Path) == "" {
		return domerrors.HandleValidationError(op, "path", fields.Path, "path cannot be empty")
	}
	if fields.Delay < 0 {
		return domerrors.HandleValidationError(op, "delay", "", "delay cannot be negative")
	}
	return nil
}
