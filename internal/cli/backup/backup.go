// Package backup wires internal/backup's file-level snapshot manager into
// the CLI: manual create, list, and restore of the SQLite database file.
package backup

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/willdone/timeline-core/internal/backup"
	"github.com/willdone/timeline-core/internal/cli"
)

type CreateCmd struct{}

func (c *CreateCmd) Run(ctx *cli.Context) error {
	mgr := backup.NewManager(ctx.Store.GetConfigPath())
	path, err := mgr.Create()
	if err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}
	fmt.Printf("backup created: %s\n", filepath.Base(path))
	return nil
}

type ListCmd struct{}

func (c *ListCmd) Run(ctx *cli.Context) error {
	mgr := backup.NewManager(ctx.Store.GetConfigPath())
	backups, err := mgr.List()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}

	if len(backups) == 0 {
		fmt.Println("no backups found.")
		fmt.Printf("backups are stored in: %s\n", mgr.Dir())
		return nil
	}

	fmt.Printf("available backups (%d total, keeping most recent %d):\n\n", len(backups), backup.MaxBackups)
	for _, b := range backups {
		sizeKB := float64(b.Size) / 1024.0
		fmt.Printf("  %s  %s  (%.1f KB)\n", b.Timestamp.Format("2006-01-02 15:04:05"), filepath.Base(b.Path), sizeKB)
	}
	fmt.Printf("\nbackup directory: %s\n", mgr.Dir())
	return nil
}

type RestoreCmd struct {
	BackupFile string `arg:"" help:"Path or filename of the backup to restore."`
}

func (c *RestoreCmd) Run(ctx *cli.Context) error {
	mgr := backup.NewManager(ctx.Store.GetConfigPath())

	backupPath := c.BackupFile
	if !filepath.IsAbs(backupPath) {
		if possible := filepath.Join(mgr.Dir(), c.BackupFile); fileExists(possible) {
			backupPath = possible
		}
	}
	if !fileExists(backupPath) {
		return fmt.Errorf("backup file not found: %s", backupPath)
	}

	fmt.Println("this will replace the current database with the backup.")
	fmt.Println("a backup of the current database will be created before restoring.")
	fmt.Printf("\nrestore from: %s\n", filepath.Base(backupPath))
	fmt.Print("continue? [y/N]: ")

	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return err
	}
	response = strings.TrimSpace(strings.ToLower(response))
	if response != "y" && response != "yes" {
		fmt.Println("restore cancelled.")
		return nil
	}

	if err := ctx.Store.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to close database connection: %v\n", err)
	}

	if err := mgr.Restore(backupPath); err != nil {
		return fmt.Errorf("restore failed: %w", err)
	}

	fmt.Println("database restored. restart any running willdone processes to use it.")
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
