// Package inbox implements get_inbox: listing a workspace's unscheduled
// tasks.
package inbox

import (
	"encoding/json"
	"fmt"

	"github.com/willdone/timeline-core/internal/cli"
)

type GetCmd struct {
	WorkspaceID string `arg:"" help:"Workspace id."`
}

func (c *GetCmd) Run(ctx *cli.Context) error {
	tasks, err := ctx.Store.GetInbox(ctx.Background(), c.WorkspaceID)
	if err != nil {
		return fmt.Errorf("failed to get inbox: %w", err)
	}
	b, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Println(string(b))
	return nil
}
