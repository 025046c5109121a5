package system

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/willdone/timeline-core/internal/cli"
	"github.com/willdone/timeline-core/internal/storage"
)

type DebugCmd struct {
	DBPath    *DebugDBPathCmd    `cmd:"" help:"Show database path."`
	DumpTask  *DebugDumpTaskCmd  `cmd:"" help:"Dump a task as JSON."`
	DumpBlock *DebugDumpBlockCmd `cmd:"" help:"Dump a time block as JSON."`
	Timeline  *DebugTimelineCmd  `cmd:"" help:"Dump a workspace's timeline for a date as JSON."`
}

type DebugDBPathCmd struct{}

func (cmd *DebugDBPathCmd) Run(ctx *cli.Context) error {
	return printJSON(map[string]string{"path": ctx.Store.GetConfigPath()})
}

type DebugDumpTaskCmd struct {
	ID string `arg:"" help:"ID of the task to dump."`
}

func (cmd *DebugDumpTaskCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(ctx.Background()); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	id, err := strconv.ParseInt(cmd.ID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid task id %q: %w", cmd.ID, err)
	}

	var out interface{}
	err = ctx.Store.WithTx(ctx.Background(), func(tx storage.Tx) error {
		task, err := tx.GetTask(ctx.Background(), id)
		out = task
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to get task: %w", err)
	}
	return printJSON(out)
}

type DebugDumpBlockCmd struct {
	ID string `arg:"" help:"ID of the time block to dump."`
}

func (cmd *DebugDumpBlockCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(ctx.Background()); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	id, err := strconv.ParseInt(cmd.ID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid block id %q: %w", cmd.ID, err)
	}

	var out interface{}
	err = ctx.Store.WithTx(ctx.Background(), func(tx storage.Tx) error {
		block, err := tx.GetBlock(ctx.Background(), id)
		out = block
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to get block: %w", err)
	}
	return printJSON(out)
}

type DebugTimelineCmd struct {
	WorkspaceID string `arg:"" help:"Workspace id."`
	Date        string `arg:"" help:"Date to dump (YYYY-MM-DD)."`
}

func (cmd *DebugTimelineCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(ctx.Background()); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	blocks, err := ctx.Store.GetTimeline(ctx.Background(), cmd.WorkspaceID, cmd.Date)
	if err != nil {
		return fmt.Errorf("failed to get timeline: %w", err)
	}
	return printJSON(blocks)
}

func printJSON(v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Println(string(b))
	return nil
}
