// Package backup manages rotating file-level backups of the SQLite
// database: manual snapshots, a bounded retention window, and restore.
package backup

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const (
	// MaxBackups is the number of rotated backups retained on disk.
	MaxBackups = 14
	// DirName is the subdirectory (next to the database file) backups live in.
	DirName = "backups"
	// FilePrefix names every backup file this package creates.
	FilePrefix = "willdone-"
	// FileSuffix is the backup file extension.
	FileSuffix = ".db"
)

// Info describes one backup file on disk.
type Info struct {
	Path      string
	Timestamp time.Time
	Size      int64
}

// Manager creates, lists, rotates, and restores backups of a single
// SQLite database file.
type Manager struct {
	dbPath string
	dir    string
}

// NewManager returns a Manager whose backups live in a "backups"
// subdirectory next to dbPath.
func NewManager(dbPath string) *Manager {
	return &Manager{dbPath: dbPath, dir: filepath.Join(filepath.Dir(dbPath), DirName)}
}

// Dir returns the backup directory path.
func (m *Manager) Dir() string { return m.dir }

func (m *Manager) ensureDir() error {
	return os.MkdirAll(m.dir, 0700)
}

// Create snapshots the current database, then rotates old backups beyond
// MaxBackups.
func (m *Manager) Create() (string, error) {
	return m.create(false)
}

func (m *Manager) create(isPreRestore bool) (string, error) {
	if err := m.ensureDir(); err != nil {
		return "", fmt.Errorf("create backup directory: %w", err)
	}
	if _, err := os.Stat(m.dbPath); os.IsNotExist(err) {
		return "", fmt.Errorf("database does not exist: %s", m.dbPath)
	}

	path := m.uniquePath(time.Now())
	if err := m.snapshot(path); err != nil {
		return "", fmt.Errorf("snapshot database: %w", err)
	}

	if !isPreRestore {
		if err := m.rotate(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to rotate old backups: %v\n", err)
		}
	}
	return path, nil
}

// uniquePath picks a non-colliding backup filename for at, widening the
// timestamp precision and finally appending a counter if needed.
func (m *Manager) uniquePath(at time.Time) string {
	name := FilePrefix + at.Format("20060102-1504") + FileSuffix
	path := filepath.Join(m.dir, name)
	if _, err := os.Stat(path); err != nil {
		return path
	}

	name = FilePrefix + at.Format("20060102-150405") + FileSuffix
	path = filepath.Join(m.dir, name)
	for counter := 1; ; counter++ {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path
		}
		name = fmt.Sprintf("%s%s-%d%s", FilePrefix, at.Format("20060102-150405"), counter, FileSuffix)
		path = filepath.Join(m.dir, name)
	}
}

// snapshot copies the database at destPath, preferring SQLite's VACUUM
// INTO for a consistent point-in-time copy, falling back to a checkpoint
// plus file copy when the running SQLite version lacks it.
func (m *Manager) snapshot(destPath string) error {
	if !filepath.IsAbs(destPath) {
		return fmt.Errorf("destination path must be absolute")
	}
	dir, err := filepath.Abs(m.dir)
	if err != nil {
		return fmt.Errorf("resolve backup directory: %w", err)
	}
	if filepath.Dir(destPath) != dir {
		return fmt.Errorf("destination path must be in the backup directory: %s", dir)
	}

	dsn := m.dbPath
	if strings.Contains(dsn, "?") {
		dsn += "&mode=ro"
	} else {
		dsn += "?mode=ro"
	}
	src, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("open source database: %w", err)
	}
	defer src.Close()

	var count int
	if err := src.QueryRow("SELECT COUNT(*) FROM sqlite_master").Scan(&count); err != nil {
		return fmt.Errorf("source database looks corrupted: %w", err)
	}

	if _, err := src.Exec("VACUUM INTO ?", destPath); err == nil {
		return nil
	}
	if _, err := src.Exec(fmt.Sprintf("VACUUM INTO '%s'", strings.ReplaceAll(destPath, "'", "''"))); err == nil {
		return nil
	}

	src.Close()
	if chk, err := sql.Open("sqlite", m.dbPath); err == nil {
		if _, err := chk.Exec("PRAGMA wal_checkpoint(FULL)"); err != nil {
			fmt.Fprintf(os.Stderr, "warning: wal_checkpoint(FULL) failed before backup: %v\n", err)
		}
		chk.Close()
	}
	return copyFile(m.dbPath, destPath)
}

// List returns every backup on disk, newest first.
func (m *Manager) List() ([]Info, error) {
	entries, err := os.ReadDir(m.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read backup directory: %w", err)
	}

	var out []Info
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasPrefix(name, FilePrefix) || !strings.HasSuffix(name, FileSuffix) {
			continue
		}
		ts, ok := parseBackupTimestamp(strings.TrimSuffix(strings.TrimPrefix(name, FilePrefix), FileSuffix))
		if !ok {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, Info{Path: filepath.Join(m.dir, name), Timestamp: ts, Size: info.Size()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

// parseBackupTimestamp strips an optional trailing "-N" counter and parses
// the remainder as either minute or second precision.
func parseBackupTimestamp(stamp string) (time.Time, bool) {
	if ts, err := time.Parse("20060102-1504", stamp); err == nil {
		return ts, true
	}
	if ts, err := time.Parse("20060102-150405", stamp); err == nil {
		return ts, true
	}
	if i := strings.LastIndex(stamp, "-"); i > 0 && isDigits(stamp[i+1:]) {
		return parseBackupTimestamp(stamp[:i])
	}
	return time.Time{}, false
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// rotate deletes the oldest backups beyond MaxBackups.
func (m *Manager) rotate() error {
	backups, err := m.List()
	if err != nil {
		return err
	}
	for i := MaxBackups; i < len(backups); i++ {
		if err := os.Remove(backups[i].Path); err != nil {
			return fmt.Errorf("remove old backup %s: %w", backups[i].Path, err)
		}
	}
	return nil
}

// Restore replaces the live database with backupPath's contents, after
// taking a pre-restore safety snapshot of whatever is currently live.
func (m *Manager) Restore(backupPath string) error {
	if _, err := os.Stat(backupPath); os.IsNotExist(err) {
		return fmt.Errorf("backup file does not exist: %s", backupPath)
	}
	if err := m.verify(backupPath); err != nil {
		return fmt.Errorf("backup file is corrupted or invalid: %w", err)
	}

	if _, err := os.Stat(m.dbPath); err == nil {
		if _, err := m.create(true); err != nil {
			return fmt.Errorf("backup current database before restore: %w", err)
		}
	}

	tempPath := m.dbPath + ".restore.tmp"
	if err := copyFile(backupPath, tempPath); err != nil {
		return fmt.Errorf("copy backup file: %w", err)
	}

	for _, suffix := range []string{"-wal", "-shm"} {
		if err := os.Remove(m.dbPath + suffix); err != nil && !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "warning: failed to remove %s: %v\n", m.dbPath+suffix, err)
		}
	}

	if err := os.Rename(tempPath, m.dbPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("restore database: %w", err)
	}
	return nil
}

func (m *Manager) verify(path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	defer db.Close()
	var count int
	return db.QueryRow("SELECT COUNT(*) FROM sqlite_master").Scan(&count)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	if err := out.Sync(); err != nil {
		return err
	}
	return os.Chmod(dst, info.Mode())
}
