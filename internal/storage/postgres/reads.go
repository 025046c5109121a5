package postgres

import (
	"context"
	"sort"

	"github.com/willdone/timeline-core/internal/constants"
	"github.com/willdone/timeline-core/internal/coreerrors"
	"github.com/willdone/timeline-core/internal/models"
	"github.com/willdone/timeline-core/internal/timeutil"
)

func (s *Store) GetTimeline(ctx context.Context, workspaceID, date string) ([]models.TimeBlock, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, task_id, workspace_id, title, start_time, end_time, status, review_memo, is_urgent
		 FROM time_blocks WHERE workspace_id = $1 AND substr(start_time, 1, 10) = $2 ORDER BY start_time`,
		workspaceID, date,
	)
	if err != nil {
		return nil, coreerrors.Wrap(coreerrors.StoreFailure, err)
	}
	defer rows.Close()

	var blocks []models.TimeBlock
	for rows.Next() {
		b, err := scanTimeBlock(rows)
		if err != nil {
			return nil, coreerrors.Wrap(coreerrors.StoreFailure, err)
		}
		blocks = append(blocks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, coreerrors.Wrap(coreerrors.StoreFailure, err)
	}

	windows, err := s.GetUnpluggedWindows(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	anchor, err := timeutil.Parse(date + "T00:00:00")
	if err != nil {
		return nil, coreerrors.Wrap(coreerrors.DateParse, err)
	}

	for _, w := range windows {
		start, end, err := timeutil.ProjectWindow(anchor, w.Start, w.End)
		if err != nil {
			return nil, coreerrors.Wrap(coreerrors.DateParse, err)
		}
		blocks = append(blocks, models.TimeBlock{
			WorkspaceID: workspaceID,
			Title:       w.Label,
			Start:       timeutil.Format(start),
			End:         timeutil.Format(end),
			Status:      constants.BlockUNPLUGGED,
		})
	}

	sort.Slice(blocks, func(i, j int) bool { return blocks[i].Start < blocks[j].Start })
	return blocks, nil
}

func (s *Store) GetInbox(ctx context.Context, workspaceID string) ([]models.Task, error) {
	rows, err := s.db.QueryContext(ctx,
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
		var t models.Task
		if err := rows.Scan(&t.ID, &t.WorkspaceID, &t.Title, &t.PlanningMemo, &t.EstimatedMinutes, &t.CreatedAt); err != nil {
			return nil, coreerrors.Wrap(coreerrors.StoreFailure, err)
		}
		out = append(out, t)
	}
	return out, coreerrors.Wrap(coreerrors.StoreFailure, rows.Err())
}

func (s *Store) GetActiveDates(ctx context.Context, workspaceID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT substr(start_time, 1, 10) AS d FROM time_blocks
		 WHERE workspace_id = $1 AND status != 'UNPLUGGED' ORDER BY d`, workspaceID,
	)
	if err != nil {
		return nil, coreerrors.Wrap(coreerrors.StoreFailure, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, coreerrors.Wrap(coreerrors.StoreFailure, err)
		}
		out = append(out, d)
	}
	return out, coreerrors.Wrap(coreerrors.StoreFailure, rows.Err())
}
