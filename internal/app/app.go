package app

import (
	"context"
	"fmt"
	"time"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"launchdeck/internal/database"
	domerrors "launchdeck/internal/infrastructure/errors"
	"launchdeck/internal/infrastructure/logging"
	"launchdeck/internal/repository"
	"launchdeck/internal/services"
	"launchdeck/internal/types"
)

// App is the Wails-bound application: its exported methods are the command
// surface consumed by the frontend
type App struct {
	ctx         context.Context
	environment string
	dbService   database.Service
	repository  repository.AppRepository
	registry    *services.Registry
	supervisor  *services.LaunchSupervisor
	logger      logging.Logger
}

// NewApp creates the application with all dependencies wired
func NewApp(env string) (*App, error) {
	// Initialize logger first (required by all other components)
	logger := logging.NewDefaultLogger()

	// Initialize database configuration based on environment
	config := database.ConfigForEnvironment(env)
	if err := config.LoadFromEnvironment(); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Initialize database service with logger
	dbService := database.NewSQLiteService(logger)
	if err := dbService.Connect(context.Background(), config); err != nil {
		return nil, err
	}

	// Run database migrations
	if err := dbService.Migrate(context.Background()); err != nil {
		dbService.Close()
		return nil, err
	}

	// Initialize repository and services
	repo := repository.NewSQLiteAppRepository(dbService, logger)
	registry := services.NewRegistry(repo, logger)
	supervisor := services.NewLaunchSupervisor(repo, nil, logger)
	registry.AttachTracker(supervisor)

	return &App{
		environment: env,
		dbService:   dbService,
		repository:  repo,
		registry:    registry,
		supervisor:  supervisor,
		logger:      logger,
	}, nil
}

// Startup is called at application startup
func (a *App) Startup(ctx context.Context) {
	a.ctx = ctx

	// Auto-start runs off the startup path so a slow spawn or a long delay
	// never holds up window creation
	go func() {
		if err := a.supervisor.AutoStartAll(context.Background()); err != nil {
			a.logger.Error("Auto-start sequence failed", "error", err)
		}
	}()

	a.logger.Info("Application started", "environment", a.environment)
}

// DomReady is called after front-end resources have been loaded
func (a *App) DomReady(ctx context.Context) {
}

// BeforeClose is called when the window close button is pressed. The window
// hides instead of quitting (main.go sets HideWindowOnClose), so returning
// false here lets Wails do that.
func (a *App) BeforeClose(ctx context.Context) (prevent bool) {
	return false
}

// Shutdown is called at application termination
func (a *App) Shutdown(ctx context.Context) {
	a.logger.Info("Starting application shutdown sequence")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	// Cancel pending auto-start timers; live processes are left running
	a.supervisor.Shutdown()

	if err := a.closeDatabaseConnection(shutdownCtx); err != nil {
		a.logger.Error("Error during database closure", "error", err)
	}

	a.logger.Info("Application shutdown completed")
}

// closeDatabaseConnection closes the database with timeout handling
func (a *App) closeDatabaseConnection(ctx context.Context) error {
	if a.dbService == nil {
		return nil
	}

	done := make(chan error, 1)
	go func() {
		done <- a.dbService.Close()
	}()

	select {
	case err := <-done:
		if err != nil {
			return domerrors.WrapStorageErrorWithContext("Shutdown", err, map[string]string{
				"operation": "close_connection",
			})
		}
		a.logger.Info("Database connection closed")
		return nil
	case <-ctx.Done():
		a.logger.Warn("Database close operation timed out")
		return domerrors.NewDomainError("Shutdown", ctx.Err(), domerrors.ErrCodeTimeout)
	}
}

// opCtx returns the Wails context when available, for runtime calls and
// request-scoped operations
func (a *App) opCtx() context.Context {
	if a.ctx != nil {
		return a.ctx
	}
	return context.Background()
}

// GetRegisteredApps returns every registered application together with its
// live running state. The supervisor owns the running flag; the frontend
// must not infer it from the auto-start setting.
func (a *App) GetRegisteredApps() ([]types.RegisteredAppStatus, error) {
	apps, err := a.registry.List(a.opCtx())
	if err != nil {
		logging.LogDomainError(a.logger, err, "GetRegisteredApps", nil)
		return nil, err
	}
	return a.supervisor.Statuses(apps), nil
}

// AddRegisteredApp validates and persists a new application record
func (a *App) AddRegisteredApp(name, path, arguments, description string, enabled bool, delay int64, preventDuplicate, autoStart bool) (*types.RegisteredApp, error) {
	app, err := a.registry.Add(a.opCtx(), services.AppFields{
		Name:             name,
		Path:             path,
		Arguments:        arguments,
		Description:      description,
		Enabled:          enabled,
		Delay:            delay,
		PreventDuplicate: preventDuplicate,
		AutoStart:        autoStart,
	})
	if err != nil {
		logging.LogDomainError(a.logger, err, "AddRegisteredApp", map[string]interface{}{"name": name})
		return nil, err
	}
	return app, nil
}

// UpdateRegisteredApp replaces the fields of an existing record, preserving its id
func (a *App) UpdateRegisteredApp(id, name, path, arguments, description string, enabled bool, delay int64, preventDuplicate, autoStart bool) (*types.RegisteredApp, error) {
	app, err := a.registry.Update(a.opCtx(), id, services.AppFields{
		Name:             name,
		Path:             path,
		Arguments:        arguments,
		Description:      description,
		Enabled:          enabled,
		Delay:            delay,
		PreventDuplicate: preventDuplicate,
		AutoStart:        autoStart,
	})
	if err != nil {
		logging.LogDomainError(a.logger, err, "UpdateRegisteredApp", map[string]interface{}{"app_id": id})
		return nil, err
	}
	return app, nil
}

// RemoveRegisteredApp deletes a record and drops its run-state tracking.
// Any live process keeps running.
func (a *App) RemoveRegisteredApp(id string) error {
	if err := a.registry.Remove(a.opCtx(), id); err != nil {
		logging.LogDomainError(a.logger, err, "RemoveRegisteredApp", map[string]interface{}{"app_id": id})
		return err
	}
	return nil
}

// ResetConfig clears the whole registered-application list
func (a *App) ResetConfig() error {
	if err := a.registry.Reset(a.opCtx()); err != nil {
		logging.LogDomainError(a.logger, err, "ResetConfig", nil)
		return err
	}
	return nil
}

// LaunchApplication starts an application. Registered ids launch from their
// stored record with duplicate prevention applied; a second launch of a
// prevent-duplicate app returns success without spawning.
func (a *App) LaunchApplication(appID, path, arguments string) error {
	if err := a.supervisor.LaunchCommand(a.opCtx(), appID, path, arguments); err != nil {
		logging.LogDomainError(a.logger, err, "LaunchApplication", map[string]interface{}{"app_id": appID})
		return err
	}
	return nil
}

// StopApplication terminates every tracked instance of the application
func (a *App) StopApplication(appID string) error {
	if err := a.supervisor.Stop(a.opCtx(), appID); err != nil {
		logging.LogDomainError(a.logger, err, "StopApplication", map[string]interface{}{"app_id": appID})
		return err
	}
	return nil
}

// IsApplicationRunning reports whether the supervisor tracks a live instance
func (a *App) IsApplicationRunning(appID string) bool {
	return a.supervisor.Running(appID)
}

// LaunchStartupApps triggers the auto-start sequence on demand
func (a *App) LaunchStartupApps() error {
	if err := a.supervisor.AutoStartAll(a.opCtx()); err != nil {
		logging.LogDomainError(a.logger, err, "LaunchStartupApps", nil)
		return err
	}
	return nil
}

// OpenFileDialog shows the platform file picker for choosing an executable.
// Returns an empty string when the user cancels.
func (a *App) OpenFileDialog() (string, error) {
	if a.ctx == nil {
		return "", fmt.Errorf("window context not ready")
	}

	return runtime.OpenFileDialog(a.ctx, runtime.OpenDialogOptions{
		Title: "Select Application",
		Filters: []runtime.FileFilter{
			{DisplayName: "Executables", Pattern: "*.exe;*.lnk"},
			{DisplayName: "All Files", Pattern: "*"},
		},
	})
}

// HideWindow hides the main window (tray-style minimize)
func (a *App) HideWindow() {
	if a.ctx == nil {
		return
	}
	runtime.WindowHide(a.ctx)
}

// ShowWindow restores the main window
func (a *App) ShowWindow() {
	if a.ctx == nil {
		return
	}
	runtime.WindowShow(a.ctx)
}

// GetLogger returns the application's structured logger
func (a *App) GetLogger() logging.Logger {
	return a.logger
}
