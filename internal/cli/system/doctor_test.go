package system

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/willdone/timeline-core/internal/cli"
	"github.com/willdone/timeline-core/internal/storage/sqlite"
)

func setupTestDoctorDB(t *testing.T) (*cli.Context, func()) {
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "test.db")

	store := sqlite.New(dbPath)
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}

	ctx := &cli.Context{Store: store}
	return ctx, func() { store.Close() }
}

func TestDoctorCmdHealthyDB(t *testing.T) {
	ctx, cleanup := setupTestDoctorDB(t)
	defer cleanup()

	if err := checkDBReachable(ctx); err != nil {
		t.Errorf("checkDBReachable() failed on a freshly initialized database: %v", err)
	}
	if err := checkSchemaVersion(ctx); err != nil {
		t.Errorf("checkSchemaVersion() failed: %v", err)
	}
	if err := checkMigrationsComplete(ctx); err != nil {
		t.Errorf("checkMigrationsComplete() failed: %v", err)
	}
	if err := checkReferentialIntegrity(ctx); err != nil {
		t.Errorf("checkReferentialIntegrity() failed on an empty database: %v", err)
	}
	if err := checkTimestampFormats(ctx); err != nil {
		t.Errorf("checkTimestampFormats() failed on an empty database: %v", err)
	}
	if err := checkClockTimezone(); err != nil {
		t.Errorf("checkClockTimezone() failed: %v", err)
	}
}

func TestDoctorCmdBackupsPresentFailsWithoutBackups(t *testing.T) {
	ctx, cleanup := setupTestDoctorDB(t)
	defer cleanup()

	if err := checkBackupsPresent(ctx); err == nil {
		t.Error("expected checkBackupsPresent() to fail when no backups exist")
	}
}

func TestDoctorCmdUnreachableDatabase(t *testing.T) {
	store := sqlite.New(filepath.Join(t.TempDir(), "missing.db"))
	ctx := &cli.Context{Store: store}

	if err := checkDBReachable(ctx); err == nil {
		t.Error("expected checkDBReachable() to fail against an uninitialized database")
	}
}

func TestDoctorCmdRun(t *testing.T) {
	ctx, cleanup := setupTestDoctorDB(t)
	defer cleanup()

	cmd := &DoctorCmd{}
	err := cmd.Run(ctx)
	if err != nil {
		t.Errorf("expected DoctorCmd.Run() to pass on a healthy database (missing backups are only a warning), got: %v", err)
	}
}
