package system

import (
	"fmt"
	"io/fs"
	"time"

	"github.com/willdone/timeline-core/internal/backup"
	"github.com/willdone/timeline-core/internal/cli"
	"github.com/willdone/timeline-core/internal/migration"
	"github.com/willdone/timeline-core/internal/storage/sqlite"
	"github.com/willdone/timeline-core/migrations"
)

type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	hasError := false
	dbReachable := false

	if err := checkDBReachable(ctx); err != nil {
		fmt.Printf("❌ Database reachable: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("✓ Database reachable: OK\n")
		dbReachable = true
	}

	if dbReachable {
		if err := checkSchemaVersion(ctx); err != nil {
			fmt.Printf("❌ Schema version: FAIL\n")
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		} else {
			fmt.Printf("✓ Schema version: OK\n")
		}

		if err := checkMigrationsComplete(ctx); err != nil {
			fmt.Printf("❌ Migrations complete: FAIL\n")
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		} else {
			fmt.Printf("✓ Migrations complete: OK\n")
		}
	} else {
		fmt.Printf("⊘ Schema version: SKIPPED (database not reachable)\n")
		fmt.Printf("⊘ Migrations complete: SKIPPED (database not reachable)\n")
	}

	if err := checkBackupsPresent(ctx); err != nil {
		fmt.Printf("⚠ Backups present: WARNING\n")
		fmt.Printf("   %v\n", err)
	} else {
		fmt.Printf("✓ Backups present: OK\n")
	}

	if dbReachable {
		if err := checkReferentialIntegrity(ctx); err != nil {
			fmt.Printf("❌ Referential integrity: FAIL\n")
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		} else {
			fmt.Printf("✓ Referential integrity: OK\n")
		}

		if err := checkTimestampFormats(ctx); err != nil {
			fmt.Printf("❌ Timestamp formats: FAIL\n")
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		} else {
			fmt.Printf("✓ Timestamp formats: OK\n")
		}
	} else {
		fmt.Printf("⊘ Referential integrity: SKIPPED (database not reachable)\n")
		fmt.Printf("⊘ Timestamp formats: SKIPPED (database not reachable)\n")
	}

	if err := checkClockTimezone(); err != nil {
		fmt.Printf("❌ Clock/timezone: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("✓ Clock/timezone: OK\n")
	}

	fmt.Println()
	if hasError {
		fmt.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	fmt.Println("All diagnostics passed!")
	return nil
}

func checkDBReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(ctx.Background()); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}

	if store, ok := ctx.Store.(*sqlite.Store); ok {
		db := store.GetDB()
		if db == nil {
			return fmt.Errorf("database connection is nil")
		}
		var result int
		if err := db.QueryRow("SELECT 1").Scan(&result); err != nil {
			return fmt.Errorf("failed to query database: %w", err)
		}
	}

	return nil
}

func sqliteMigrationRunner(store *sqlite.Store) (*migration.Runner, error) {
	db := store.GetDB()
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	subFS, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		return nil, fmt.Errorf("failed to access sqlite migrations: %w", err)
	}
	return migration.NewRunner(db, subFS), nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	store, ok := ctx.Store.(*sqlite.Store)
	if !ok {
		// Postgres validates its schema version on Load.
		return nil
	}

	runner, err := sqliteMigrationRunner(store)
	if err != nil {
		return err
	}
	return runner.ValidateVersion()
}

func checkMigrationsComplete(ctx *cli.Context) error {
	store, ok := ctx.Store.(*sqlite.Store)
	if !ok {
		return nil
	}

	runner, err := sqliteMigrationRunner(store)
	if err != nil {
		return err
	}

	current, err := runner.GetCurrentVersion()
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}
	latest, err := runner.GetLatestVersion()
	if err != nil {
		return fmt.Errorf("failed to get latest schema version: %w", err)
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d", current, latest)
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	mgr := backup.NewManager(ctx.Store.GetConfigPath())
	backups, err := mgr.List()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with 'willdone backup create'")
	}
	return nil
}

// checkReferentialIntegrity looks for time_blocks pointing at a task_id
// that no longer exists, which UpdateBlock/DeleteTask should never leave
// behind under normal operation.
func checkReferentialIntegrity(ctx *cli.Context) error {
	store, ok := ctx.Store.(*sqlite.Store)
	if !ok {
		return nil
	}
	db := store.GetDB()
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}

	var orphaned int
	err := db.QueryRow(`
		SELECT COUNT(*) FROM time_blocks b
		LEFT JOIN tasks t ON b.task_id = t.id
		WHERE t.id IS NULL
	`).Scan(&orphaned)
	if err != nil {
		return fmt.Errorf("failed to check orphaned time blocks: %w", err)
	}
	if orphaned > 0 {
		return fmt.Errorf("found %d time blocks referencing a non-existent task", orphaned)
	}
	return nil
}

func checkTimestampFormats(ctx *cli.Context) error {
	store, ok := ctx.Store.(*sqlite.Store)
	if !ok {
		return nil
	}
	db := store.GetDB()
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}

	var malformed int
	err := db.QueryRow(`
		SELECT COUNT(*) FROM time_blocks
		WHERE start_time NOT GLOB '[0-9][0-9][0-9][0-9]-[0-9][0-9]-[0-9][0-9]T[0-9][0-9]:[0-9][0-9]:[0-9][0-9]'
		   OR end_time NOT GLOB '[0-9][0-9][0-9][0-9]-[0-9][0-9]-[0-9][0-9]T[0-9][0-9]:[0-9][0-9]:[0-9][0-9]'
	`).Scan(&malformed)
	if err != nil {
		return fmt.Errorf("failed to check time block timestamps: %w", err)
	}
	if malformed > 0 {
		return fmt.Errorf("found %d time blocks with a malformed timestamp", malformed)
	}
	return nil
}

func checkClockTimezone() error {
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	return nil
}
