// Package block implements the block-level commands: returning a
// scheduled task to the inbox, running a transition on the last block of
// a task, and setting a block's status directly.
package block

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/willdone/timeline-core/internal/cli"
	"github.com/willdone/timeline-core/internal/constants"
	"github.com/willdone/timeline-core/internal/coreerrors"
	"github.com/willdone/timeline-core/internal/scheduler"
	"github.com/willdone/timeline-core/internal/storage"
	"github.com/willdone/timeline-core/internal/transitioner"
	"github.com/willdone/timeline-core/internal/validation"
)

type MoveToInboxCmd struct {
	BlockID string `arg:"" help:"Block id whose task should return to the inbox."`
}

func (c *MoveToInboxCmd) Run(ctx *cli.Context) error {
	id, err := strconv.ParseInt(c.BlockID, 10, 64)
	if err != nil {
		return coreerrors.Newf(coreerrors.InvalidInput, "invalid block id %q: %v", c.BlockID, err)
	}

	err = ctx.Store.WithTx(ctx.Background(), func(tx storage.Tx) error {
		return scheduler.MoveToInbox(ctx.Background(), tx, id)
	})
	if err != nil {
		return fmt.Errorf("failed to move block to inbox: %w", err)
	}
	return nil
}

// TransitionCmd implements process_task_transition: completing (on time,
// now, or a number of minutes ago) or delaying the last block of a task.
type TransitionCmd struct {
	BlockID      string `arg:"" help:"Id of the block to transition; must be the last block of its task."`
	Action       string `arg:"" help:"One of COMPLETE_ON_TIME, COMPLETE_NOW, COMPLETE_AGO, DELAY."`
	ExtraMinutes int    `help:"COMPLETE_AGO: minutes before now the block actually ended. DELAY: minutes to postpone by." default:"0"`
	ReviewMemo   string `help:"Optional memo recorded on completion."`
}

func (c *TransitionCmd) Run(ctx *cli.Context) error {
	id, err := strconv.ParseInt(c.BlockID, 10, 64)
	if err != nil {
		return coreerrors.Newf(coreerrors.InvalidInput, "invalid block id %q: %v", c.BlockID, err)
	}
	action := constants.TransitionAction(c.Action)
	if err := validation.ValidateTransitionAction(action); err != nil {
		return err
	}
	if err := validation.ValidateExtraMinutes(action, c.ExtraMinutes); err != nil {
		return err
	}

	err = ctx.Store.WithTx(ctx.Background(), func(tx storage.Tx) error {
		return transitioner.ProcessTransition(ctx.Background(), tx, transitioner.Input{
			BlockID:      id,
			Action:       action,
			ExtraMinutes: c.ExtraMinutes,
			ReviewMemo:   c.ReviewMemo,
		})
	})
	if err != nil {
		return fmt.Errorf("failed to transition block: %w", err)
	}
	return nil
}

// StatusCmd implements update_block_status: a direct status write with
// no shifting, distinct from TransitionCmd which runs the full
// completion/delay protocol. Writing NOW goes through
// scheduler.SetBlockStatus, which clears NOW from the task's other
// blocks first.
type StatusCmd struct {
	BlockID string `arg:"" help:"Block id."`
	Status  string `arg:"" help:"One of WILL, NOW, PENDING, DONE, UNPLUGGED."`
}

func (c *StatusCmd) Run(ctx *cli.Context) error {
	id, err := strconv.ParseInt(c.BlockID, 10, 64)
	if err != nil {
		return coreerrors.Newf(coreerrors.InvalidInput, "invalid block id %q: %v", c.BlockID, err)
	}
	status := constants.BlockStatus(c.Status)
	switch status {
	case constants.BlockWILL, constants.BlockNOW, constants.BlockPENDING, constants.BlockDONE, constants.BlockUNPLUGGED:
	default:
		return coreerrors.Newf(coreerrors.InvalidInput, "unknown block status %q", c.Status)
	}

	var updated interface{}
	err = ctx.Store.WithTx(ctx.Background(), func(tx storage.Tx) error {
		b, err := scheduler.SetBlockStatus(ctx.Background(), tx, id, status)
		if err != nil {
			return err
		}
		updated = b
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to update block status: %w", err)
	}
	return printJSON(updated)
}

func printJSON(v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Println(string(b))
	return nil
}
