// Package splitdelete implements handle_split_deletion: removing a task
// while optionally preserving the historical record of blocks it already
// accrued, by re-pointing each surviving block at its own new task.
package splitdelete

import (
	"context"

	"github.com/willdone/timeline-core/internal/constants"
	"github.com/willdone/timeline-core/internal/models"
	"github.com/willdone/timeline-core/internal/scheduler"
	"github.com/willdone/timeline-core/internal/storage"
	"github.com/willdone/timeline-core/internal/timeutil"
)

// Now is the clock Delete reads for the new tasks it creates; overridden in tests.
var Now = timeutil.Now

// Delete removes taskID. With keepPast false it cascades exactly like
// scheduler.DeleteTask. With keepPast true it drops the task's WILL
// blocks, re-points every remaining block (NOW, PENDING, DONE) at its own
// new, independent task carrying the same title and memo, marks each DONE,
// and finally removes the original task row; the cascade that follows is
// harmless because no block still points at it.
func Delete(ctx context.Context, tx storage.Tx, taskID int64, keepPast bool) error {
	if !keepPast {
		return scheduler.DeleteTask(ctx, tx, taskID)
	}

	task, err := tx.GetTask(ctx, taskID)
	if err != nil {
		return err
	}

	blocks, err := tx.GetBlocksForTask(ctx, taskID)
	if err != nil {
		return err
	}

	for _, b := range blocks {
		if b.Status == constants.BlockWILL {
			if err := tx.DeleteBlock(ctx, b.ID); err != nil {
				return err
			}
			continue
		}

		newTask, err := tx.RepointBlockToNewTask(ctx, b.ID, models.Task{
			WorkspaceID:      task.WorkspaceID,
			Title:            task.Title,
			PlanningMemo:     task.PlanningMemo,
			EstimatedMinutes: 0,
			CreatedAt:        timeutil.Format(Now()),
		})
		if err != nil {
			return err
		}
		b.TaskID = newTask.ID
		b.Status = constants.BlockDONE
		if err := tx.UpdateBlock(ctx, b); err != nil {
			return err
		}
	}

	return tx.DeleteTask(ctx, taskID)
}
