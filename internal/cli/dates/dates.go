// Package dates implements get_active_dates: the set of dates a
// workspace has any non-UNPLUGGED block on.
package dates

import (
	"encoding/json"
	"fmt"

	"github.com/willdone/timeline-core/internal/cli"
)

type ActiveCmd struct {
	WorkspaceID string `arg:"" help:"Workspace id."`
}

func (c *ActiveCmd) Run(ctx *cli.Context) error {
	active, err := ctx.Store.GetActiveDates(ctx.Background(), c.WorkspaceID)
	if err != nil {
		return fmt.Errorf("failed to get active dates: %w", err)
	}
	b, err := json.MarshalIndent(active, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Println(string(b))
	return nil
}
