// Package task implements the task-facing commands: adding a task (with
// optional urgent preemption), moving it between the inbox and the
// timeline, and the two deletion flavours (whole task, split task).
package task

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/willdone/timeline-core/internal/cli"
	"github.com/willdone/timeline-core/internal/coreerrors"
	"github.com/willdone/timeline-core/internal/models"
	"github.com/willdone/timeline-core/internal/scheduler"
	"github.com/willdone/timeline-core/internal/splitdelete"
	"github.com/willdone/timeline-core/internal/storage"
	"github.com/willdone/timeline-core/internal/validation"
)

type AddCmd struct {
	WorkspaceID  string `arg:"" help:"Workspace id to add the task to."`
	Title        string `arg:"" help:"Task title."`
	Hours        int    `help:"Estimated hours." default:"0"`
	Minutes      int    `help:"Estimated minutes." default:"0"`
	PlanningMemo string `help:"Optional planning memo."`
	Urgent       bool   `help:"Preempt the current NOW block and place this task immediately."`
	Inbox        bool   `help:"Leave the task in the inbox instead of placing it on the timeline."`
}

func (c *AddCmd) Run(ctx *cli.Context) error {
	if err := validation.ValidateAddTask(validation.AddTaskInput{Title: c.Title, Hours: c.Hours, Minutes: c.Minutes}); err != nil {
		return err
	}

	var task models.Task
	err := ctx.Store.WithTx(ctx.Background(), func(tx storage.Tx) error {
		var err error
		task, err = scheduler.AddTask(ctx.Background(), tx, scheduler.AddTaskInput{
			WorkspaceID:  c.WorkspaceID,
			Title:        c.Title,
			Hours:        c.Hours,
			Minutes:      c.Minutes,
			PlanningMemo: c.PlanningMemo,
			Urgent:       c.Urgent,
			Inbox:        c.Inbox,
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to add task: %w", err)
	}
	return printJSON(task)
}

type MoveToTimelineCmd struct {
	WorkspaceID string `arg:"" help:"Workspace id the task belongs to."`
	TaskID      string `arg:"" help:"Task id."`
}

func (c *MoveToTimelineCmd) Run(ctx *cli.Context) error {
	id, err := strconv.ParseInt(c.TaskID, 10, 64)
	if err != nil {
		return coreerrors.Newf(coreerrors.InvalidInput, "invalid task id %q: %v", c.TaskID, err)
	}

	var placed bool
	err = ctx.Store.WithTx(ctx.Background(), func(tx storage.Tx) error {
		var err error
		placed, err = scheduler.MoveToTimeline(ctx.Background(), tx, c.WorkspaceID, id)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to move task to timeline: %w", err)
	}
	return printJSON(map[string]bool{"placed": placed})
}

type MoveAllToTimelineCmd struct {
	WorkspaceID string `arg:"" help:"Workspace id."`
}

func (c *MoveAllToTimelineCmd) Run(ctx *cli.Context) error {
	var placed int
	err := ctx.Store.WithTx(ctx.Background(), func(tx storage.Tx) error {
		var err error
		placed, err = scheduler.MoveAllToTimeline(ctx.Background(), tx, c.WorkspaceID)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to move tasks to timeline: %w", err)
	}
	return printJSON(map[string]int{"placed": placed})
}

type DeleteCmd struct {
	TaskID string `arg:"" help:"Task id to delete."`
}

func (c *DeleteCmd) Run(ctx *cli.Context) error {
	id, err := strconv.ParseInt(c.TaskID, 10, 64)
	if err != nil {
		return coreerrors.Newf(coreerrors.InvalidInput, "invalid task id %q: %v", c.TaskID, err)
	}

	err = ctx.Store.WithTx(ctx.Background(), func(tx storage.Tx) error {
		return scheduler.DeleteTask(ctx.Background(), tx, id)
	})
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// DeleteSplitCmd implements handle_split_task_deletion: a split task (one
// with more than one block, some possibly historical) can either be
// deleted outright or have only its WILL blocks removed, with every other
// block kept as DONE history, each re-pointed to a new task of its own,
// and the original task deleted. No inbox task is created.
type DeleteSplitCmd struct {
	TaskID   string `arg:"" help:"Task id to delete."`
	KeepPast bool   `help:"Delete only the task's WILL blocks and keep its other blocks as DONE history on new tasks, instead of deleting everything."`
}

func (c *DeleteSplitCmd) Run(ctx *cli.Context) error {
	id, err := strconv.ParseInt(c.TaskID, 10, 64)
	if err != nil {
		return coreerrors.Newf(coreerrors.InvalidInput, "invalid task id %q: %v", c.TaskID, err)
	}

	err = ctx.Store.WithTx(ctx.Background(), func(tx storage.Tx) error {
		return splitdelete.Delete(ctx.Background(), tx, id, c.KeepPast)
	})
	if err != nil {
		return fmt.Errorf("failed to delete split task: %w", err)
	}
	return nil
}

func printJSON(v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Println(string(b))
	return nil
}
