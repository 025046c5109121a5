package models

import "github.com/willdone/timeline-core/internal/constants"

// TimeBlock is a contiguous placement on a single day's timeline.
//
// Invariants (enforced by the components that mutate blocks, not by this
// struct): Start < End; non-UNPLUGGED blocks of a workspace on the same
// day are pairwise non-overlapping and ordered; a task's blocks are in
// ascending id and start order; at most one NOW block per task; only the
// last (greatest id) block of a task may be transitioned.
//
// ID is store-assigned (autoincrement), never a generated UUID: the last
// block of a split task is identified as the one with the greatest id,
// which only holds if ids are handed out in insertion order.
type TimeBlock struct {
	ID          int64                 `json:"id"`
	TaskID      int64                 `json:"task_id,omitempty"` // 0 only for synthesised UNPLUGGED view rows
	WorkspaceID string                `json:"workspace_id"`
	Title       string                `json:"title"`
	Start       string                `json:"start_time"` // YYYY-MM-DDTHH:MM:SS
	End         string                `json:"end_time"`   // YYYY-MM-DDTHH:MM:SS
	Status      constants.BlockStatus `json:"status"`
	ReviewMemo  string                `json:"review_memo,omitempty"`
	Urgent      bool                  `json:"is_urgent"`
}

// IsHistorical reports whether a block's status is DONE or PENDING. It
// does not check whether the block is the greatest-id block of its task.
func (b TimeBlock) IsHistorical() bool {
	switch b.Status {
	case constants.BlockDONE, constants.BlockPENDING:
		return true
	default:
		return false
	}
}
