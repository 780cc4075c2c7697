package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"launchdeck/internal/infrastructure/logging"
)

func TestSQLiteService_Connect(t *testing.T) {
	t.Parallel()
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "test.db")

	config := DefaultConfig()
	config.Path = dbPath

	logger := logging.NewDefaultLogger()
	service := NewSQLiteService(logger)
	ctx := context.Background()

	err := service.Connect(ctx, config)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	defer service.Close()

	err = service.Health(ctx)
	if err != nil {
		t.Fatalf("Health check failed: %v", err)
	}

	// Verify database file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Fatalf("Database file was not created: %s", dbPath)
	}
}

func TestSQLiteService_Connect_InMemory(t *testing.T) {
	t.Parallel()
	config := TestConfig()

	service := NewSQLiteService(logging.NewDefaultLogger())
	ctx := context.Background()

	if err := service.Connect(ctx, config); err != nil {
		t.Fatalf("Failed to connect to in-memory database: %v", err)
	}
	defer service.Close()

	if err := service.Health(ctx); err != nil {
		t.Fatalf("Health check failed: %v", err)
	}
}

func TestSQLiteService_Migrate(t *testing.T) {
	t.Parallel()
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "test_migrate.db")

	config := DefaultConfig()
	config.Path = dbPath

	service := NewSQLiteService(logging.NewDefaultLogger())
	ctx := context.Background()

	if err := service.Connect(ctx, config); err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	defer service.Close()

	if err := service.Migrate(ctx); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	// Verify the schema by querying the table
	db := service.DB()

	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM registered_apps").Scan(&n); err != nil {
		t.Fatalf("registered_apps table was not created: %v", err)
	}
	if n != 0 {
		t.Errorf("registered_apps should start empty, got %d rows", n)
	}
}

func TestSQLiteService_MigrationStatus(t *testing.T) {
	t.Parallel()
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "test_status.db")

	config := DefaultConfig()
	config.Path = dbPath

	service := NewSQLiteService(logging.NewDefaultLogger())
	ctx := context.Background()

	if err := service.Connect(ctx, config); err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	defer service.Close()

	if err := service.Migrate(ctx); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	version, err := service.GetMigrationVersion(ctx)
	if err != nil {
		t.Fatalf("Failed to get current migration version: %v", err)
	}
	if version <= 0 {
		t.Fatalf("Expected migration version > 0, got %d", version)
	}
}

func TestSQLiteService_ConnectionPool(t *testing.T) {
	t.Parallel()
	tempDir := t.TempDir()

	t.Run("WAL mode caps connections", func(t *testing.T) {
		config := DefaultConfig()
		config.Path = filepath.Join(tempDir, "pool_wal.db")
		config.MaxConnections = 16 // Above the SQLite cap

		service := NewSQLiteService(logging.NewDefaultLogger())
		if err := service.Connect(context.Background(), config); err != nil {
			t.Fatalf("Failed to connect: %v", err)
		}
		defer service.Close()

		stats := service.GetStats()
		if stats.MaxOpenConnections != 4 {
			t.Errorf("MaxOpenConnections = %d, want capped at 4", stats.MaxOpenConnections)
		}
	})

	t.Run("forced single connection", func(t *testing.T) {
		config := DefaultConfig()
		config.Path = filepath.Join(tempDir, "pool_single.db")
		config.ForceSingleConnection = true

		service := NewSQLiteService(logging.NewDefaultLogger())
		if err := service.Connect(context.Background(), config); err != nil {
			t.Fatalf("Failed to connect: %v", err)
		}
		defer service.Close()

		stats := service.GetStats()
		if stats.MaxOpenConnections != 1 {
			t.Errorf("MaxOpenConnections = %d, want 1", stats.MaxOpenConnections)
		}
	})

	t.Run("non-WAL journal forces single connection", func(t *testing.T) {
		config := DefaultConfig()
		config.Path = filepath.Join(tempDir, "pool_delete.db")
		config.JournalMode = "DELETE"

		service := NewSQLiteService(logging.NewDefaultLogger())
		if err := service.Connect(context.Background(), config); err != nil {
			t.Fatalf("Failed to connect: %v", err)
		}
		defer service.Close()

		stats := service.GetStats()
		if stats.MaxOpenConnections != 1 {
			t.Errorf("MaxOpenConnections = %d, want 1", stats.MaxOpenConnections)
		}
	})
}

func TestSQLiteService_NotConnected(t *testing.T) {
	t.Parallel()
	service := NewSQLiteService(logging.NewDefaultLogger())
	ctx := context.Background()

	if err := service.Health(ctx); err == nil {
		t.Error("Health() should fail when not connected")
	}
	if err := service.Migrate(ctx); err == nil {
		t.Error("Migrate() should fail when not connected")
	}
	if _, err := service.GetMigrationVersion(ctx); err == nil {
		t.Error("GetMigrationVersion() should fail when not connected")
	}
	if err := service.Optimize(ctx); err == nil {
		t.Error("Optimize() should fail when not connected")
	}
	if service.DB() != nil {
		t.Error("DB() should be nil when not connected")
	}
}

func TestSQLiteService_Close(t *testing.T) {
	t.Parallel()
	config := TestConfig()

	service := NewSQLiteService(logging.NewDefaultLogger())
	if err := service.Connect(context.Background(), config); err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}

	if err := service.Close(); err != nil {
		t.Fatalf("Close() unexpected error = %v", err)
	}

	// Close on an already-closed service is a no-op
	if err := service.Close(); err != nil {
		t.Errorf("Close() second call unexpected error = %v", err)
	}

	if service.DB() != nil {
		t.Error("DB() should be nil after Close()")
	}
}

func TestSQLiteService_Optimize(t *testing.T) {
	t.Parallel()
	tempDir := t.TempDir()

	config := DefaultConfig()
	config.Path = filepath.Join(tempDir, "optimize.db")

	service := NewSQLiteService(logging.NewDefaultLogger())
	ctx := context.Background()

	if err := service.Connect(ctx, config); err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	defer service.Close()

	if err := service.Migrate(ctx); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	if err := service.Optimize(ctx); err != nil {
		t.Errorf("Optimize() unexpected error = %v", err)
	}
}

func TestSQLiteService_Reconnect(t *testing.T) {
	t.Parallel()
	tempDir := t.TempDir()

	config := DefaultConfig()
	config.Path = filepath.Join(tempDir, "reconnect_a.db")

	service := NewSQLiteService(logging.NewDefaultLogger())
	ctx := context.Background()

	if err := service.Connect(ctx, config); err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}

	// Connecting again replaces the previous connection
	config2 := DefaultConfig()
	config2.Path = filepath.Join(tempDir, "reconnect_b.db")
	if err := service.Connect(ctx, config2); err != nil {
		t.Fatalf("Failed to reconnect: %v", err)
	}
	defer service.Close()

	if err := service.Health(ctx); err != nil {
		t.Errorf("Health check after reconnect failed: %v", err)
	}
}
