package system

import (
	"fmt"
	"os"

	"github.com/willdone/timeline-core/internal/cli"
)

// InitCmd creates the database (or Postgres schema) and applies every
// pending migration. --force deletes an existing SQLite file first; it
// has no effect against a Postgres backend, which has no local file to
// remove.
type InitCmd struct {
	Force bool `help:"Delete an existing SQLite database before initializing."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		dbPath := ctx.Store.GetConfigPath()
		if _, err := os.Stat(dbPath); err == nil {
			if err := ctx.Store.Close(); err != nil {
				return fmt.Errorf("failed to close existing database: %w", err)
			}
			if err := os.Remove(dbPath); err != nil {
				return fmt.Errorf("failed to delete existing database: %w", err)
			}
			fmt.Printf("Deleted existing database at: %s\n", dbPath)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access existing database: %w", err)
		}
	}

	if err := ctx.Store.Init(ctx.Background()); err != nil {
		return err
	}
	fmt.Printf("Initialized willdone storage at: %s\n", ctx.Store.GetConfigPath())
	return nil
}
