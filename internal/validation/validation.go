// Package validation implements boundary checks applied to command input
// before it reaches the scheduling core: malformed durations, unknown
// transition actions, and empty or duplicate reorder lists. These are
// plain precondition checks, distinct from the invariants the core
// components themselves enforce (e.g. the last-block rule, or the
// COMPLETE_AGO boundary in internal/transitioner).
package validation

import (
	"github.com/willdone/timeline-core/internal/constants"
	"github.com/willdone/timeline-core/internal/coreerrors"
)

// AddTaskInput is the subset of scheduler.AddTaskInput this package
// validates; duplicated here rather than imported to keep validation
// dependency-free of the scheduler package it gates.
type AddTaskInput struct {
	Title   string
	Hours   int
	Minutes int
}

// ValidateAddTask rejects a task with no title or a negative/nonsensical
// duration before it reaches the scheduler.
func ValidateAddTask(in AddTaskInput) error {
	if in.Title == "" {
		return coreerrors.New(coreerrors.InvalidInput, "task title must not be empty")
	}
	if in.Hours < 0 || in.Minutes < 0 {
		return coreerrors.New(coreerrors.InvalidInput, "task duration must not be negative")
	}
	return nil
}

// ValidateTransitionAction rejects an action outside the four the
// transitioner understands.
func ValidateTransitionAction(action constants.TransitionAction) error {
	switch action {
	case constants.CompleteOnTime, constants.CompleteNow, constants.CompleteAgo, constants.Delay:
		return nil
	default:
		return coreerrors.Newf(coreerrors.InvalidInput, "unknown transition action %q", action)
	}
}

// ValidateExtraMinutes rejects a negative COMPLETE_AGO/DELAY offset; the
// transitioner itself rejects an oversized COMPLETE_AGO offset, since that
// check needs the block's actual elapsed duration.
func ValidateExtraMinutes(action constants.TransitionAction, extraMinutes int) error {
	switch action {
	case constants.CompleteAgo, constants.Delay:
		if extraMinutes < 0 {
			return coreerrors.New(coreerrors.InvalidInput, "extra minutes must not be negative")
		}
	}
	return nil
}

// ValidateReorder rejects an empty or duplicate-containing block id list.
func ValidateReorder(blockIDs []int64) error {
	if len(blockIDs) == 0 {
		return coreerrors.New(coreerrors.InvalidInput, "reorder requires at least one block id")
	}
	seen := make(map[int64]bool, len(blockIDs))
	for _, id := range blockIDs {
		if seen[id] {
			return coreerrors.Newf(coreerrors.InvalidInput, "block id %d appears more than once in the reorder list", id)
		}
		seen[id] = true
	}
	return nil
}
