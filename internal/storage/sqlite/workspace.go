package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/willdone/timeline-core/internal/coreerrors"
	"github.com/willdone/timeline-core/internal/models"
)

func (s *Store) CreateWorkspace(ctx context.Context, ws models.Workspace, windows []models.UnpluggedWindow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return coreerrors.Wrap(coreerrors.StoreFailure, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO workspaces (id, name, core_time_start, core_time_end, role_intro, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		ws.ID, ws.Name, nullable(ws.CoreTimeStart), nullable(ws.CoreTimeEnd), nullable(ws.RoleIntro), ws.CreatedAt,
	); err != nil {
		return coreerrors.Wrap(coreerrors.StoreFailure, err)
	}

	if err := insertUnpluggedWindows(ctx, tx, ws.ID, windows); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return coreerrors.Wrap(coreerrors.StoreFailure, err)
	}
	return nil
}

func insertUnpluggedWindows(ctx context.Context, tx *sql.Tx, workspaceID string, windows []models.UnpluggedWindow) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO unplugged_times (id, workspace_id, label, start_time, end_time) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return coreerrors.Wrap(coreerrors.StoreFailure, err)
	}
	defer stmt.Close()

	for _, w := range windows {
		if _, err := stmt.ExecContext(ctx, w.ID, workspaceID, w.Label, w.Start, w.End); err != nil {
			return coreerrors.Wrap(coreerrors.StoreFailure, err)
		}
	}
	return nil
}

func (s *Store) GetWorkspace(ctx context.Context, id string) (models.Workspace, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, core_time_start, core_time_end, role_intro, created_at FROM workspaces WHERE id = ?`, id)
	ws, err := scanWorkspace(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Workspace{}, coreerrors.New(coreerrors.NotFound, "workspace not found")
	}
	if err != nil {
		return models.Workspace{}, coreerrors.Wrap(coreerrors.StoreFailure, err)
	}
	return ws, nil
}

func (s *Store) GetWorkspaces(ctx context.Context) ([]models.Workspace, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, core_time_start, core_time_end, role_intro, created_at FROM workspaces ORDER BY created_at`)
	if err != nil {
		return nil, coreerrors.Wrap(coreerrors.StoreFailure, err)
	}
	defer rows.Close()

	var out []models.Workspace
	for rows.Next() {
		ws, err := scanWorkspace(rows)
		if err != nil {
			return nil, coreerrors.Wrap(coreerrors.StoreFailure, err)
		}
		out = append(out, ws)
	}
	return out, coreerrors.Wrap(coreerrors.StoreFailure, rows.Err())
}

func (s *Store) UpdateWorkspace(ctx context.Context, ws models.Workspace) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE workspaces SET name = ?, core_time_start = ?, core_time_end = ?, role_intro = ? WHERE id = ?`,
		ws.Name, nullable(ws.CoreTimeStart), nullable(ws.CoreTimeEnd), nullable(ws.RoleIntro), ws.ID,
	)
	if err != nil {
		return coreerrors.Wrap(coreerrors.StoreFailure, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return coreerrors.Wrap(coreerrors.StoreFailure, err)
	}
	if n == 0 {
		return coreerrors.New(coreerrors.NotFound, "workspace not found")
	}
	return nil
}

// ReplaceUnpluggedWindows atomically replaces a workspace's entire unplugged
// set, matching spec §3's "updated by replacing the whole unplugged set in
// one transaction".
func (s *Store) ReplaceUnpluggedWindows(ctx context.Context, workspaceID string, windows []models.UnpluggedWindow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return coreerrors.Wrap(coreerrors.StoreFailure, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM unplugged_times WHERE workspace_id = ?`, workspaceID); err != nil {
		return coreerrors.Wrap(coreerrors.StoreFailure, err)
	}
	if err := insertUnpluggedWindows(ctx, tx, workspaceID, windows); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return coreerrors.Wrap(coreerrors.StoreFailure, err)
	}
	return nil
}

func (s *Store) GetUnpluggedWindows(ctx context.Context, workspaceID string) ([]models.UnpluggedWindow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, workspace_id, label, start_time, end_time FROM unplugged_times WHERE workspace_id = ? ORDER BY start_time`, workspaceID)
	if err != nil {
		return nil, coreerrors.Wrap(coreerrors.StoreFailure, err)
	}
	defer rows.Close()

	var out []models.UnpluggedWindow
	for rows.Next() {
		var w models.UnpluggedWindow
		if err := rows.Scan(&w.ID, &w.WorkspaceID, &w.Label, &w.Start, &w.End); err != nil {
			return nil, coreerrors.Wrap(coreerrors.StoreFailure, err)
		}
		out = append(out, w)
	}
	return out, coreerrors.Wrap(coreerrors.StoreFailure, rows.Err())
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanWorkspace(row rowScanner) (models.Workspace, error) {
	var ws models.Workspace
	var coreStart, coreEnd, roleIntro sql.NullString
	if err := row.Scan(&ws.ID, &ws.Name, &coreStart, &coreEnd, &roleIntro, &ws.CreatedAt); err != nil {
		return models.Workspace{}, err
	}
	ws.CoreTimeStart = coreStart.String
	ws.CoreTimeEnd = coreEnd.String
	ws.RoleIntro = roleIntro.String
	return ws, nil
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
