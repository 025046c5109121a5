package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/willdone/timeline-core/internal/constants"
	"github.com/willdone/timeline-core/internal/coreerrors"
	"github.com/willdone/timeline-core/internal/models"
	"github.com/willdone/timeline-core/internal/storage"
	"github.com/willdone/timeline-core/internal/timeutil"
)

// WithTx runs fn inside one *sql.Tx, committing on success and rolling
// back on error or panic.
func (s *Store) WithTx(ctx context.Context, fn func(tx storage.Tx) error) (err error) {
	sqlTx, beginErr := s.db.BeginTx(ctx, nil)
	if beginErr != nil {
		return coreerrors.Wrap(coreerrors.StoreFailure, beginErr)
	}
	defer func() {
		if p := recover(); p != nil {
			sqlTx.Rollback()
			panic(p)
		}
	}()
	defer sqlTx.Rollback()

	if err = fn(&txImpl{tx: sqlTx}); err != nil {
		return err
	}
	if err = sqlTx.Commit(); err != nil {
		return coreerrors.Wrap(coreerrors.StoreFailure, err)
	}
	return nil
}

type txImpl struct {
	tx *sql.Tx
}

func (t *txImpl) AddTask(ctx context.Context, task models.Task) (models.Task, error) {
	err := t.tx.QueryRowContext(ctx,
		`INSERT INTO tasks (workspace_id, title, planning_memo, estimated_minutes, created_at) VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		task.WorkspaceID, task.Title, task.PlanningMemo, task.EstimatedMinutes, task.CreatedAt,
	).Scan(&task.ID)
	if err != nil {
		return models.Task{}, coreerrors.Wrap(coreerrors.StoreFailure, err)
	}
	return task, nil
}

// GetInbox mirrors Store.GetInbox but reads inside the transaction, so
// move_all_to_timeline sees a consistent snapshot of the inbox it is
// draining as it places each task.
func (t *txImpl) GetInbox(ctx context.Context, workspaceID string) ([]models.Task, error) {
	rows, err := t.tx.QueryContext(ctx,
		`SELECT t.id, t.workspace_id, t.title, t.planning_memo, t.estimated_minutes, t.created_at
		 FROM tasks t
		 WHERE t.workspace_id = $1 AND NOT EXISTS (SELECT 1 FROM time_blocks b WHERE b.task_id = t.id)
		 ORDER BY t.id`, workspaceID,
	)
	if err != nil {
		return nil, coreerrors.Wrap(coreerrors.StoreFailure, err)
	}
	defer rows.Close()

	var out []models.Task
	for rows.Next() {
		var task models.Task
		if err := rows.Scan(&task.ID, &task.WorkspaceID, &task.Title, &task.PlanningMemo, &task.EstimatedMinutes, &task.CreatedAt); err != nil {
			return nil, coreerrors.Wrap(coreerrors.StoreFailure, err)
		}
		out = append(out, task)
	}
	return out, coreerrors.Wrap(coreerrors.StoreFailure, rows.Err())
}

func (t *txImpl) GetTask(ctx context.Context, id int64) (models.Task, error) {
	var task models.Task
	err := t.tx.QueryRowContext(ctx,
		`SELECT id, workspace_id, title, planning_memo, estimated_minutes, created_at FROM tasks WHERE id = $1`, id,
	).Scan(&task.ID, &task.WorkspaceID, &task.Title, &task.PlanningMemo, &task.EstimatedMinutes, &task.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, coreerrors.New(coreerrors.NotFound, "task not found")
	}
	if err != nil {
		return models.Task{}, coreerrors.Wrap(coreerrors.StoreFailure, err)
	}
	return task, nil
}

func (t *txImpl) DeleteTask(ctx context.Context, id int64) error {
	res, err := t.tx.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return coreerrors.Wrap(coreerrors.StoreFailure, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return coreerrors.Wrap(coreerrors.StoreFailure, err)
	}
	if n == 0 {
		return coreerrors.New(coreerrors.NotFound, "task not found")
	}
	return nil
}

func (t *txImpl) RepointBlockToNewTask(ctx context.Context, blockID int64, newTask models.Task) (models.Task, error) {
	created, err := t.AddTask(ctx, newTask)
	if err != nil {
		return models.Task{}, err
	}
	if _, err := t.tx.ExecContext(ctx, `UPDATE time_blocks SET task_id = $1 WHERE id = $2`, created.ID, blockID); err != nil {
		return models.Task{}, coreerrors.Wrap(coreerrors.StoreFailure, err)
	}
	return created, nil
}

func (t *txImpl) InsertBlocks(ctx context.Context, blocks []models.TimeBlock) ([]models.TimeBlock, error) {
	stmt, err := t.tx.PrepareContext(ctx,
		`INSERT INTO time_blocks (task_id, workspace_id, title, start_time, end_time, status, review_memo, is_urgent)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
	)
	if err != nil {
		return nil, coreerrors.Wrap(coreerrors.StoreFailure, err)
	}
	defer stmt.Close()

	out := make([]models.TimeBlock, len(blocks))
	for i, b := range blocks {
		if err := stmt.QueryRowContext(ctx, b.TaskID, b.WorkspaceID, b.Title, b.Start, b.End, string(b.Status), b.ReviewMemo, b.Urgent).Scan(&b.ID); err != nil {
			return nil, coreerrors.Wrap(coreerrors.StoreFailure, err)
		}
		out[i] = b
	}
	return out, nil
}

func (t *txImpl) UpdateBlock(ctx context.Context, b models.TimeBlock) error {
	_, err := t.tx.ExecContext(ctx,
		`UPDATE time_blocks SET start_time = $1, end_time = $2, status = $3, review_memo = $4, is_urgent = $5 WHERE id = $6`,
		b.Start, b.End, string(b.Status), b.ReviewMemo, b.Urgent, b.ID,
	)
	if err != nil {
		return coreerrors.Wrap(coreerrors.StoreFailure, err)
	}
	return nil
}

func (t *txImpl) DeleteBlocksForTask(ctx context.Context, taskID int64) error {
	_, err := t.tx.ExecContext(ctx, `DELETE FROM time_blocks WHERE task_id = $1`, taskID)
	return coreerrors.Wrap(coreerrors.StoreFailure, err)
}

func (t *txImpl) DeleteBlock(ctx context.Context, id int64) error {
	res, err := t.tx.ExecContext(ctx, `DELETE FROM time_blocks WHERE id = $1`, id)
	if err != nil {
		return coreerrors.Wrap(coreerrors.StoreFailure, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return coreerrors.Wrap(coreerrors.StoreFailure, err)
	}
	if n == 0 {
		return coreerrors.New(coreerrors.NotFound, "block not found")
	}
	return nil
}

func (t *txImpl) ShiftBlocks(ctx context.Context, workspaceID string, pivot time.Time, deltaMinutes int) error {
	if deltaMinutes == 0 {
		return nil
	}
	rows, err := t.tx.QueryContext(ctx,
		`SELECT id, start_time, end_time FROM time_blocks WHERE workspace_id = $1 AND status = $2 AND start_time >= $3`,
		workspaceID, string(constants.BlockWILL), timeutil.Format(pivot),
	)
	if err != nil {
		return coreerrors.Wrap(coreerrors.StoreFailure, err)
	}
	type shiftRow struct {
		id         int64
		start, end string
	}
	var toShift []shiftRow
	for rows.Next() {
		var r shiftRow
		if err := rows.Scan(&r.id, &r.start, &r.end); err != nil {
			rows.Close()
			return coreerrors.Wrap(coreerrors.StoreFailure, err)
		}
		toShift = append(toShift, r)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return coreerrors.Wrap(coreerrors.StoreFailure, err)
	}
	rows.Close()

	stmt, err := t.tx.PrepareContext(ctx, `UPDATE time_blocks SET start_time = $1, end_time = $2 WHERE id = $3`)
	if err != nil {
		return coreerrors.Wrap(coreerrors.StoreFailure, err)
	}
	defer stmt.Close()

	for _, r := range toShift {
		start, err := timeutil.Parse(r.start)
		if err != nil {
			return coreerrors.Wrap(coreerrors.DateParse, err)
		}
		end, err := timeutil.Parse(r.end)
		if err != nil {
			return coreerrors.Wrap(coreerrors.DateParse, err)
		}
		newStart := timeutil.AddMinutes(start, deltaMinutes)
		newEnd := timeutil.AddMinutes(end, deltaMinutes)
		if _, err := stmt.ExecContext(ctx, timeutil.Format(newStart), timeutil.Format(newEnd), r.id); err != nil {
			return coreerrors.Wrap(coreerrors.StoreFailure, err)
		}
	}
	return nil
}

func (t *txImpl) SetStatusForTask(ctx context.Context, taskID int64, status string) error {
	_, err := t.tx.ExecContext(ctx, `UPDATE time_blocks SET status = $1 WHERE task_id = $2`, status, taskID)
	return coreerrors.Wrap(coreerrors.StoreFailure, err)
}

func (t *txImpl) GetLatestEnd(ctx context.Context, workspaceID string) (time.Time, bool, error) {
	var end sql.NullString
	err := t.tx.QueryRowContext(ctx,
		`SELECT max(end_time) FROM time_blocks WHERE workspace_id = $1 AND status != $2`,
		workspaceID, string(constants.BlockUNPLUGGED),
	).Scan(&end)
	if err != nil {
		return time.Time{}, false, coreerrors.Wrap(coreerrors.StoreFailure, err)
	}
	if !end.Valid {
		return time.Time{}, false, nil
	}
	parsed, err := timeutil.Parse(end.String)
	if err != nil {
		return time.Time{}, false, coreerrors.Wrap(coreerrors.DateParse, err)
	}
	return parsed, true, nil
}

func (t *txImpl) GetNowBlock(ctx context.Context, workspaceID string) (*models.TimeBlock, error) {
	row := t.tx.QueryRowContext(ctx,
		`SELECT id, task_id, workspace_id, title, start_time, end_time, status, review_memo, is_urgent
		 FROM time_blocks WHERE workspace_id = $1 AND status = $2 LIMIT 1`,
		workspaceID, string(constants.BlockNOW),
	)
	b, err := scanTimeBlock(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, coreerrors.Wrap(coreerrors.StoreFailure, err)
	}
	return &b, nil
}

func (t *txImpl) GetNonDoneBlocks(ctx context.Context, workspaceID string) ([]models.TimeBlock, error) {
	rows, err := t.tx.QueryContext(ctx,
		`SELECT id, task_id, workspace_id, title, start_time, end_time, status, review_memo, is_urgent
		 FROM time_blocks WHERE workspace_id = $1 AND status != $2 ORDER BY start_time`,
		workspaceID, string(constants.BlockDONE),
	)
	if err != nil {
		return nil, coreerrors.Wrap(coreerrors.StoreFailure, err)
	}
	defer rows.Close()

	var out []models.TimeBlock
	for rows.Next() {
		b, err := scanTimeBlock(rows)
		if err != nil {
			return nil, coreerrors.Wrap(coreerrors.StoreFailure, err)
		}
		out = append(out, b)
	}
	return out, coreerrors.Wrap(coreerrors.StoreFailure, rows.Err())
}

func (t *txImpl) GetBlocksForTask(ctx context.Context, taskID int64) ([]models.TimeBlock, error) {
	rows, err := t.tx.QueryContext(ctx,
		`SELECT id, task_id, workspace_id, title, start_time, end_time, status, review_memo, is_urgent
		 FROM time_blocks WHERE task_id = $1 ORDER BY id`, taskID,
	)
	if err != nil {
		return nil, coreerrors.Wrap(coreerrors.StoreFailure, err)
	}
	defer rows.Close()

	var out []models.TimeBlock
	for rows.Next() {
		b, err := scanTimeBlock(rows)
		if err != nil {
			return nil, coreerrors.Wrap(coreerrors.StoreFailure, err)
		}
		out = append(out, b)
	}
	return out, coreerrors.Wrap(coreerrors.StoreFailure, rows.Err())
}

func (t *txImpl) GetLastBlock(ctx context.Context, taskID int64) (models.TimeBlock, error) {
	row := t.tx.QueryRowContext(ctx,
		`SELECT id, task_id, workspace_id, title, start_time, end_time, status, review_memo, is_urgent
		 FROM time_blocks WHERE task_id = $1 ORDER BY id DESC LIMIT 1`, taskID,
	)
	b, err := scanTimeBlock(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.TimeBlock{}, coreerrors.New(coreerrors.NotFound, "task has no blocks")
	}
	if err != nil {
		return models.TimeBlock{}, coreerrors.Wrap(coreerrors.StoreFailure, err)
	}
	return b, nil
}

func (t *txImpl) GetBlock(ctx context.Context, id int64) (models.TimeBlock, error) {
	row := t.tx.QueryRowContext(ctx,
		`SELECT id, task_id, workspace_id, title, start_time, end_time, status, review_memo, is_urgent
		 FROM time_blocks WHERE id = $1`, id,
	)
	b, err := scanTimeBlock(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.TimeBlock{}, coreerrors.New(coreerrors.NotFound, "block not found")
	}
	if err != nil {
		return models.TimeBlock{}, coreerrors.Wrap(coreerrors.StoreFailure, err)
	}
	return b, nil
}

func (t *txImpl) GetUnpluggedWindows(ctx context.Context, workspaceID string) ([]models.UnpluggedWindow, error) {
	rows, err := t.tx.QueryContext(ctx,
		`SELECT id, workspace_id, label, start_time, end_time FROM unplugged_times WHERE workspace_id = $1 ORDER BY start_time`, workspaceID)
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

func scanTimeBlock(row rowScanner) (models.TimeBlock, error) {
	var b models.TimeBlock
	var taskID sql.NullInt64
	var status string
	var reviewMemo sql.NullString
	var urgent bool
	if err := row.Scan(&b.ID, &taskID, &b.WorkspaceID, &b.Title, &b.Start, &b.End, &status, &reviewMemo, &urgent); err != nil {
		return models.TimeBlock{}, err
	}
	b.TaskID = taskID.Int64
	b.Status = constants.BlockStatus(status)
	b.ReviewMemo = reviewMemo.String
	b.Urgent = urgent
	return b, nil
}
