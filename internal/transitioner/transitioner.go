// Package transitioner implements process_transition: completing or
// delaying the last block of a task, with the shift onto its successors
// that each action implies.
package transitioner

import (
	"context"

	"github.com/willdone/timeline-core/internal/constants"
	"github.com/willdone/timeline-core/internal/coreerrors"
	"github.com/willdone/timeline-core/internal/shifter"
	"github.com/willdone/timeline-core/internal/storage"
	"github.com/willdone/timeline-core/internal/timeutil"
)

// Now is the clock the transitioner reads; overridden in tests.
var Now = timeutil.Now

// Input is the input to ProcessTransition.
type Input struct {
	BlockID      int64
	Action       constants.TransitionAction
	ExtraMinutes int // COMPLETE_AGO: minutes before now the block actually ended. DELAY: minutes to postpone by.
	ReviewMemo   string
}

// ProcessTransition enforces the last-block-of-task precondition, then
// applies one of the four actions and, for completions, propagates DONE
// to the rest of the task's (now historical) blocks.
func ProcessTransition(ctx context.Context, tx storage.Tx, in Input) error {
	block, err := tx.GetBlock(ctx, in.BlockID)
	if err != nil {
		return err
	}

	last, err := tx.GetLastBlock(ctx, block.TaskID)
	if err != nil {
		return err
	}
	if last.ID != block.ID {
		return coreerrors.New(coreerrors.InvalidInput, "only the last block of a split task can be transitioned")
	}

	originalStart, err := timeutil.Parse(block.Start)
	if err != nil {
		return coreerrors.Wrap(coreerrors.DateParse, err)
	}
	originalEnd, err := timeutil.Parse(block.End)
	if err != nil {
		return coreerrors.Wrap(coreerrors.DateParse, err)
	}
	now := Now()

	switch in.Action {
	case constants.CompleteOnTime:
		block.Status = constants.BlockDONE
		block.ReviewMemo = in.ReviewMemo
		if err := tx.UpdateBlock(ctx, block); err != nil {
			return err
		}

	case constants.CompleteNow:
		block.End = timeutil.Format(now)
		block.Status = constants.BlockDONE
		block.ReviewMemo = in.ReviewMemo
		if err := tx.UpdateBlock(ctx, block); err != nil {
			return err
		}
		if err := shifter.ShiftFuture(ctx, tx, block.WorkspaceID, originalEnd, timeutil.MinutesBetween(originalEnd, now)); err != nil {
			return err
		}

	case constants.CompleteAgo:
		completedEnd := timeutil.AddMinutes(now, -in.ExtraMinutes)
		if !completedEnd.After(originalStart) {
			return coreerrors.New(coreerrors.InvalidInput, "completion offset exceeds the block's elapsed duration")
		}
		block.End = timeutil.Format(completedEnd)
		block.Status = constants.BlockDONE
		block.ReviewMemo = in.ReviewMemo
		if err := tx.UpdateBlock(ctx, block); err != nil {
			return err
		}
		if err := shifter.ShiftFuture(ctx, tx, block.WorkspaceID, originalEnd, timeutil.MinutesBetween(originalEnd, completedEnd)); err != nil {
			return err
		}

	case constants.Delay:
		block.End = timeutil.Format(timeutil.AddMinutes(originalEnd, in.ExtraMinutes))
		if err := tx.UpdateBlock(ctx, block); err != nil {
			return err
		}
		return shifter.ShiftFuture(ctx, tx, block.WorkspaceID, originalEnd, in.ExtraMinutes)

	default:
		return coreerrors.Newf(coreerrors.InvalidInput, "unknown transition action %q", in.Action)
	}

	return tx.SetStatusForTask(ctx, block.TaskID, string(constants.BlockDONE))
}
