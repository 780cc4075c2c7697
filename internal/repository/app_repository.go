package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"launchdeck/internal/database"
	domerrors "launchdeck/internal/infrastructure/errors"
	"launchdeck/internal/infrastructure/logging"
	"launchdeck/internal/types"
)

// appRow mirrors the registered_apps table layout
type appRow struct {
	ID               string    `db:"id"`
	Name             string    `db:"name"`
	Path             string    `db:"path"`
	Arguments        string    `db:"arguments"`
	Description      string    `db:"description"`
	Enabled          bool      `db:"enabled"`
	Delay            int64     `db:"delay"`
	PreventDuplicate bool      `db:"prevent_duplicate"`
	AutoStart        bool      `db:"auto_start"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

func (r *appRow) toType() types.RegisteredApp {
	return types.RegisteredApp{
		ID:               r.ID,
		Name:             r.Name,
		Path:             r.Path,
		Arguments:        r.Arguments,
		Description:      r.Description,
		Enabled:          r.Enabled,
		Delay:            r.Delay,
		PreventDuplicate: r.PreventDuplicate,
		AutoStart:        r.AutoStart,
	}
}

// SQLiteAppRepository implements the AppRepository interface using SQLite
type SQLiteAppRepository struct {
	db          *sqlx.DB
	dbService   database.Service
	retryConfig *domerrors.RetryConfig
	logger      logging.Logger
}

// NewSQLiteAppRepository creates a new SQLite-backed application repository
func NewSQLiteAppRepository(dbService database.Service, logger logging.Logger) *SQLiteAppRepository {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}

	return &SQLiteAppRepository{
		db:          dbService.DB(),
		dbService:   dbService,
		retryConfig: domerrors.DefaultRetryConfig(),
		logger:      logger,
	}
}

// NewSQLiteAppRepositoryWithConfig creates a repository with a custom retry configuration
func NewSQLiteAppRepositoryWithConfig(dbService database.Service, retryConfig *domerrors.RetryConfig, logger logging.Logger) *SQLiteAppRepository {
	if retryConfig == nil {
		retryConfig = domerrors.DefaultRetryConfig()
	}
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}

	return &SQLiteAppRepository{
		db:          dbService.DB(),
		dbService:   dbService,
		retryConfig: retryConfig,
		logger:      logger,
	}
}

// GetAll returns every registered application ordered by insertion.
// rowid is stable across updates, so edit order never reshuffles the list.
func (r *SQLiteAppRepository) GetAll(ctx context.Context) ([]types.RegisteredApp, error) {
	const query = `
		SELECT id, name, path, arguments, description, enabled,
		       delay, prevent_duplicate, auto_start, created_at, updated_at
		FROM registered_apps
		ORDER BY rowid`

	var rows []appRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, domerrors.WrapStorageError("GetAll", err)
	}

	apps := make([]types.RegisteredApp, 0, len(rows))
	for i := range rows {
		apps = append(apps, rows[i].toType())
	}
	return apps, nil
}

// GetByID returns a single registered application record
func (r *SQLiteAppRepository) GetByID(ctx context.Context, id string) (*types.RegisteredApp, error) {
	const query = `
		SELECT id, name, path, arguments, description, enabled,
		       delay, prevent_duplicate, auto_start, created_at, updated_at
		FROM registered_apps
		WHERE id = ?`

	var row appRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domerrors.HandleNotFound("GetByID", "registered_app", id)
		}
		return nil, domerrors.WrapStorageErrorWithContext("GetByID", err, map[string]string{
			"app_id": id,
		})
	}

	app := row.toType()
	return &app, nil
}

// Insert persists a new registered application record
func (r *SQLiteAppRepository) Insert(ctx context.Context, app *types.RegisteredApp) error {
	const query = `
		INSERT INTO registered_apps
			(id, name, path, arguments, description, enabled, delay, prevent_duplicate, auto_start)
		VALUES
			(:id, :name, :path, :arguments, :description, :enabled, :delay, :prevent_duplicate, :auto_start)`

	row := fromType(app)

	return domerrors.WithRetryContext(ctx, r.retryConfig, func() error {
		if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
			return domerrors.WrapStorageErrorWithContext("Insert", err, map[string]string{
				"app_id": app.ID,
			})
		}
		return nil
	}, "Insert")
}

// Update replaces all mutable fields of an existing record, preserving the id
func (r *SQLiteAppRepository) Update(ctx context.Context, app *types.RegisteredApp) error {
	const query = `
		UPDATE registered_apps
		SET name = :name,
		    path = :path,
		    arguments = :arguments,
		    description = :description,
		    enabled = :enabled,
		    delay = :delay,
		    prevent_duplicate = :prevent_duplicate,
		    auto_start = :auto_start,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = :id`

	row := fromType(app)

	return domerrors.WithRetryContext(ctx, r.retryConfig, func() error {
		result, err := r.db.NamedExecContext(ctx, query, row)
		if err != nil {
			return domerrors.WrapStorageErrorWithContext("Update", err, map[string]string{
				"app_id": app.ID,
			})
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return domerrors.WrapStorageError("Update", err)
		}
		if affected == 0 {
			return domerrors.HandleNotFound("Update", "registered_app", app.ID)
		}
		return nil
	}, "Update")
}

// Delete removes a registered application record
func (r *SQLiteAppRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM registered_apps WHERE id = ?`

	return domerrors.WithRetryContext(ctx, r.retryConfig, func() error {
		result, err := r.db.ExecContext(ctx, query, id)
		if err != nil {
			return domerrors.WrapStorageErrorWithContext("Delete", err, map[string]string{
				"app_id": id,
			})
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return domerrors.WrapStorageError("Delete", err)
		}
		if affected == 0 {
			return domerrors.HandleNotFound("Delete", "registered_app", id)
		}
		return nil
	}, "Delete")
}

// DeleteAll removes every registered application record
func (r *SQLiteAppRepository) DeleteAll(ctx context.Context) error {
	const query = `DELETE FROM registered_apps`

	return domerrors.WithRetryContext(ctx, r.retryConfig, func() error {
		if _, err := r.db.ExecContext(ctx, query); err != nil {
			return domerrors.WrapStorageError("DeleteAll", err)
		}
		return nil
	}, "DeleteAll")
}

func fromType(app *types.RegisteredApp) appRow {
	return appRow{
		ID:               app.ID,
		Name:             app.Name,
		Path:             app.Path,
		Arguments:        app.Arguments,
		Description:      app.Description,
		Enabled:          app.Enabled,
		Delay:            app.Delay,
		PreventDuplicate: app.PreventDuplicate,
		AutoStart:        app.AutoStart,
	}
}
