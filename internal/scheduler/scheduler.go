// Package scheduler implements the task-placement operations: adding a
// task to the timeline (with urgent preemption), moving tasks between the
// inbox and the timeline, and deleting a task outright.
package scheduler

import (
	"context"
	"time"

	"github.com/willdone/timeline-core/internal/constants"
	"github.com/willdone/timeline-core/internal/coreerrors"
	"github.com/willdone/timeline-core/internal/models"
	"github.com/willdone/timeline-core/internal/placer"
	"github.com/willdone/timeline-core/internal/shifter"
	"github.com/willdone/timeline-core/internal/storage"
	"github.com/willdone/timeline-core/internal/timeutil"
)

// Now is the clock the scheduler reads; overridden in tests.
var Now = timeutil.Now

// MinimumTimelineMinutes is the floor move_to_timeline applies to a task's
// estimated duration: any estimate below it, including none, is raised to it.
const MinimumTimelineMinutes = 30

// AddTaskInput is the input to AddTask.
type AddTaskInput struct {
	WorkspaceID  string
	Title        string
	Hours        int
	Minutes      int
	PlanningMemo string
	Urgent       bool
	Inbox        bool
}

// AddTask persists a new task and, unless it is destined for the inbox,
// places it on the timeline, preempting the current NOW block when urgent.
func AddTask(ctx context.Context, tx storage.Tx, in AddTaskInput) (models.Task, error) {
	duration := 60*in.Hours + in.Minutes

	task, err := tx.AddTask(ctx, models.Task{
		WorkspaceID:      in.WorkspaceID,
		Title:            in.Title,
		PlanningMemo:     in.PlanningMemo,
		EstimatedMinutes: duration,
		CreatedAt:        timeutil.Format(Now()),
	})
	if err != nil {
		return models.Task{}, err
	}
	if in.Inbox {
		return task, nil
	}

	now := Now()
	start := now
	if !in.Urgent {
		latest, ok, err := tx.GetLatestEnd(ctx, in.WorkspaceID)
		if err != nil {
			return models.Task{}, err
		}
		if ok && latest.After(start) {
			start = latest
		}
	}

	if timeutil.CrossesMidnight(start, duration) {
		return task, nil // stays in the inbox
	}

	windows, err := tx.GetUnpluggedWindows(ctx, in.WorkspaceID)
	if err != nil {
		return models.Task{}, err
	}

	if !in.Urgent {
		if _, err := placeBlocks(ctx, tx, task, in.WorkspaceID, start, duration, windows, in.Urgent); err != nil {
			return models.Task{}, err
		}
		return task, nil
	}

	nowBlock, err := tx.GetNowBlock(ctx, in.WorkspaceID)
	if err != nil {
		return models.Task{}, err
	}
	if nowBlock == nil {
		if _, err := placeBlocks(ctx, tx, task, in.WorkspaceID, now, duration, windows, in.Urgent); err != nil {
			return models.Task{}, err
		}
		if err := shifter.ShiftFuture(ctx, tx, in.WorkspaceID, now, duration); err != nil {
			return models.Task{}, err
		}
		return task, nil
	}

	return task, preemptNowBlock(ctx, tx, in.WorkspaceID, task, *nowBlock, now, duration, windows)
}

// preemptNowBlock implements step 7c of add_task: truncate the current NOW
// block, place the urgent task in its place, shift everything after the
// NOW block's original end, then resume the preempted task's remainder.
// nowBlock.Urgent carries the preempted task's own urgency (u_B), which the
// resumed placement must keep.
func preemptNowBlock(ctx context.Context, tx storage.Tx, workspaceID string, urgentTask models.Task, nowBlock models.TimeBlock, now time.Time, duration int, windows []models.UnpluggedWindow) error {
	bEnd, err := timeutil.Parse(nowBlock.End)
	if err != nil {
		return coreerrors.Wrap(coreerrors.DateParse, err)
	}
	remaining := timeutil.MinutesBetween(now, bEnd)

	nowBlock.End = timeutil.Format(now)
	nowBlock.Status = constants.BlockPENDING
	if err := tx.UpdateBlock(ctx, nowBlock); err != nil {
		return err
	}

	urgentBlocks, err := placeBlocks(ctx, tx, urgentTask, workspaceID, now, duration, windows, true)
	if err != nil {
		return err
	}
	urgentEnd := now
	if n := len(urgentBlocks); n > 0 {
		end, err := timeutil.Parse(urgentBlocks[n-1].End)
		if err != nil {
			return coreerrors.Wrap(coreerrors.DateParse, err)
		}
		urgentEnd = end
	}

	// Shift must happen after the urgent placement (so the urgent block
	// is not itself shifted) and before the resumption placement (so the
	// resumed slice lands in the just-vacated space unshifted).
	if err := shifter.ShiftFuture(ctx, tx, workspaceID, bEnd, duration); err != nil {
		return err
	}

	if remaining > 0 {
		resumedTask, err := tx.GetTask(ctx, nowBlock.TaskID)
		if err != nil {
			return err
		}
		if _, err := placeBlocks(ctx, tx, resumedTask, workspaceID, urgentEnd, remaining, windows, nowBlock.Urgent); err != nil {
			return err
		}
	}
	return nil
}

// placeBlocks runs the Placer over (start, minutes) and inserts the
// resulting intervals as WILL blocks of task, each carrying urgent as its
// urgency flag.
func placeBlocks(ctx context.Context, tx storage.Tx, task models.Task, workspaceID string, start time.Time, minutes int, windows []models.UnpluggedWindow, urgent bool) ([]models.TimeBlock, error) {
	intervals, err := placer.Place(start, minutes, windows)
	if err != nil {
		return nil, coreerrors.Wrap(coreerrors.DateParse, err)
	}
	if len(intervals) == 0 {
		return nil, nil
	}
	blocks := make([]models.TimeBlock, len(intervals))
	for i, iv := range intervals {
		blocks[i] = models.TimeBlock{
			TaskID:      task.ID,
			WorkspaceID: workspaceID,
			Title:       task.Title,
			Start:       timeutil.Format(iv.Start),
			End:         timeutil.Format(iv.End),
			Status:      constants.BlockWILL,
			Urgent:      urgent,
		}
	}
	return tx.InsertBlocks(ctx, blocks)
}

// MoveToTimeline schedules a single inbox task at max(now, latest end) for
// max(estimated_minutes, MinimumTimelineMinutes), applying the midnight
// guard. No shifting is performed.
func MoveToTimeline(ctx context.Context, tx storage.Tx, workspaceID string, taskID int64) (bool, error) {
	task, err := tx.GetTask(ctx, taskID)
	if err != nil {
		return false, err
	}
	return moveOneToTimeline(ctx, tx, workspaceID, task)
}

func moveOneToTimeline(ctx context.Context, tx storage.Tx, workspaceID string, task models.Task) (bool, error) {
	duration := task.EffectiveMinutes(MinimumTimelineMinutes)

	now := Now()
	start := now
	latest, ok, err := tx.GetLatestEnd(ctx, workspaceID)
	if err != nil {
		return false, err
	}
	if ok && latest.After(start) {
		start = latest
	}

	if timeutil.CrossesMidnight(start, duration) {
		return false, nil
	}

	windows, err := tx.GetUnpluggedWindows(ctx, workspaceID)
	if err != nil {
		return false, err
	}
	if _, err := placeBlocks(ctx, tx, task, workspaceID, start, duration, windows, false); err != nil {
		return false, err
	}
	return true, nil
}

// MoveAllToTimeline places every inbox task in insertion order, stopping
// at the first task whose placement would cross midnight; the remainder
// stay in the inbox.
func MoveAllToTimeline(ctx context.Context, tx storage.Tx, workspaceID string) (placed int, err error) {
	inbox, err := tx.GetInbox(ctx, workspaceID)
	if err != nil {
		return 0, err
	}
	for _, task := range inbox {
		ok, err := moveOneToTimeline(ctx, tx, workspaceID, task)
		if err != nil {
			return placed, err
		}
		if !ok {
			break
		}
		placed++
	}
	return placed, nil
}

// MoveToInbox deletes every block belonging to a block's task, returning
// the task to the inbox; the task row itself is kept.
func MoveToInbox(ctx context.Context, tx storage.Tx, blockID int64) error {
	block, err := tx.GetBlock(ctx, blockID)
	if err != nil {
		return err
	}
	return tx.DeleteBlocksForTask(ctx, block.TaskID)
}

// SetBlockStatus implements update_block_status: a direct status write with
// no shifting, except that writing NOW first clears NOW from any other
// block of the same task (demoting it to WILL), enforcing "at most one
// block per task has status NOW" (spec invariant) centrally rather than
// leaving it to the caller.
func SetBlockStatus(ctx context.Context, tx storage.Tx, blockID int64, status constants.BlockStatus) (models.TimeBlock, error) {
	b, err := tx.GetBlock(ctx, blockID)
	if err != nil {
		return models.TimeBlock{}, err
	}

	if status == constants.BlockNOW {
		siblings, err := tx.GetBlocksForTask(ctx, b.TaskID)
		if err != nil {
			return models.TimeBlock{}, err
		}
		for _, sib := range siblings {
			if sib.ID == blockID || sib.Status != constants.BlockNOW {
				continue
			}
			sib.Status = constants.BlockWILL
			if err := tx.UpdateBlock(ctx, sib); err != nil {
				return models.TimeBlock{}, err
			}
		}
	}

	b.Status = status
	if err := tx.UpdateBlock(ctx, b); err != nil {
		return models.TimeBlock{}, err
	}
	return b, nil
}

// DeleteTask cascade-deletes the task and all its blocks.
func DeleteTask(ctx context.Context, tx storage.Tx, taskID int64) error {
	if err := tx.DeleteBlocksForTask(ctx, taskID); err != nil {
		return err
	}
	return tx.DeleteTask(ctx, taskID)
}
