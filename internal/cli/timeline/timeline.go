// Package timeline implements the two timeline-level commands: reading a
// workspace's blocks for a date, and reordering its non-DONE blocks.
package timeline

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/willdone/timeline-core/internal/cli"
	"github.com/willdone/timeline-core/internal/constants"
	"github.com/willdone/timeline-core/internal/coreerrors"
	"github.com/willdone/timeline-core/internal/reorderer"
	"github.com/willdone/timeline-core/internal/storage"
	"github.com/willdone/timeline-core/internal/timeutil"
	"github.com/willdone/timeline-core/internal/validation"
)

type GetCmd struct {
	WorkspaceID string `arg:"" help:"Workspace id."`
	Date        string `help:"Date to read (YYYY-MM-DD); defaults to today."`
}

func (c *GetCmd) Run(ctx *cli.Context) error {
	date := c.Date
	if date == "" {
		date = timeutil.Now().Format(constants.DateFormat)
	}
	blocks, err := ctx.Store.GetTimeline(ctx.Background(), c.WorkspaceID, date)
	if err != nil {
		return fmt.Errorf("failed to get timeline: %w", err)
	}
	return printJSON(blocks)
}

// ReorderCmd implements reorder_blocks: the caller supplies the new
// order as a comma-separated list of block ids, and the Reorderer moves
// every non-DONE block's start/end to match while preserving durations.
type ReorderCmd struct {
	WorkspaceID string `arg:"" help:"Workspace id."`
	BlockIDs    string `arg:"" help:"Comma-separated block ids in the desired order."`
}

func (c *ReorderCmd) Run(ctx *cli.Context) error {
	ids, err := parseBlockIDs(c.BlockIDs)
	if err != nil {
		return err
	}
	if err := validation.ValidateReorder(ids); err != nil {
		return err
	}

	err = ctx.Store.WithTx(ctx.Background(), func(tx storage.Tx) error {
		return reorderer.Reorder(ctx.Background(), tx, c.WorkspaceID, ids)
	})
	if err != nil {
		return fmt.Errorf("failed to reorder blocks: %w", err)
	}
	return nil
}

func parseBlockIDs(raw string) ([]int64, error) {
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, coreerrors.Newf(coreerrors.InvalidInput, "invalid block id %q: %v", p, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func printJSON(v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Println(string(b))
	return nil
}
