// Package reorderer implements reorder_blocks: re-sequencing the non-DONE
// blocks of a workspace's timeline into a caller-supplied order while
// preserving each block's original duration and skipping past unplugged
// windows the cursor lands inside.
package reorderer

import (
	"context"
	"sort"
	"time"

	"github.com/willdone/timeline-core/internal/constants"
	"github.com/willdone/timeline-core/internal/coreerrors"
	"github.com/willdone/timeline-core/internal/models"
	"github.com/willdone/timeline-core/internal/storage"
	"github.com/willdone/timeline-core/internal/timeutil"
)

// Reorder walks blockIDs in the given order, re-packing the non-DONE,
// non-UNPLUGGED blocks back-to-back from the first loaded block's current
// start, skipping past any unplugged window the cursor currently sits
// inside. Ids absent from the workspace's non-DONE set are skipped. It
// does not split a block that already straddles an unplugged window.
func Reorder(ctx context.Context, tx storage.Tx, workspaceID string, blockIDs []int64) error {
	blocks, err := tx.GetNonDoneBlocks(ctx, workspaceID)
	if err != nil {
		return err
	}
	if len(blocks) == 0 {
		return nil
	}
	byID := make(map[int64]models.TimeBlock, len(blocks))
	for _, b := range blocks {
		byID[b.ID] = b
	}

	sort.Slice(blocks, func(i, j int) bool { return blocks[i].Start < blocks[j].Start })
	cursor, err := timeutil.Parse(blocks[0].Start)
	if err != nil {
		return coreerrors.Wrap(coreerrors.DateParse, err)
	}

	windows, err := tx.GetUnpluggedWindows(ctx, workspaceID)
	if err != nil {
		return err
	}

	for _, id := range blockIDs {
		block, ok := byID[id]
		if !ok || block.Status == constants.BlockUNPLUGGED {
			continue
		}

		start, err := timeutil.Parse(block.Start)
		if err != nil {
			return coreerrors.Wrap(coreerrors.DateParse, err)
		}
		end, err := timeutil.Parse(block.End)
		if err != nil {
			return coreerrors.Wrap(coreerrors.DateParse, err)
		}
		duration := timeutil.MinutesBetween(start, end)

		cursor, err = skipPastContainingWindow(cursor, windows)
		if err != nil {
			return err
		}

		block.Start = timeutil.Format(cursor)
		newEnd := timeutil.AddMinutes(cursor, duration)
		block.End = timeutil.Format(newEnd)
		if err := tx.UpdateBlock(ctx, block); err != nil {
			return err
		}
		cursor = newEnd
	}
	return nil
}

// skipPastContainingWindow advances cursor to the end of any unplugged
// window (projected onto cursor's calendar day) that currently contains it.
func skipPastContainingWindow(cursor time.Time, windows []models.UnpluggedWindow) (time.Time, error) {
	for _, w := range windows {
		wStart, wEnd, err := timeutil.ProjectWindow(cursor, w.Start, w.End)
		if err != nil {
			return time.Time{}, coreerrors.Wrap(coreerrors.DateParse, err)
		}
		if !cursor.Before(wStart) && cursor.Before(wEnd) {
			return wEnd, nil
		}
	}
	return cursor, nil
}
