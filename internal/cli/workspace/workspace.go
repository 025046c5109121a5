// Package workspace implements the workspace and unplugged-window
// commands: create/get/list/update a workspace, and replace the set of
// daily-recurring unavailable windows it schedules around.
package workspace

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/willdone/timeline-core/internal/cli"
	"github.com/willdone/timeline-core/internal/coreerrors"
	"github.com/willdone/timeline-core/internal/models"
	"github.com/willdone/timeline-core/internal/timeutil"
)

type CreateCmd struct {
	Name          string `arg:"" help:"Workspace name."`
	CoreTimeStart string `help:"Core-time start (HH:MM); stored with the workspace, not used for placement."`
	CoreTimeEnd   string `help:"Core-time end (HH:MM); stored with the workspace, not used for placement."`
	RoleIntro     string `help:"Short description used to prime retrospective generation."`
}

func (c *CreateCmd) Run(ctx *cli.Context) error {
	ws := models.Workspace{
		ID:            uuid.NewString(),
		Name:          c.Name,
		CoreTimeStart: c.CoreTimeStart,
		CoreTimeEnd:   c.CoreTimeEnd,
		RoleIntro:     c.RoleIntro,
		CreatedAt:     timeutil.Format(timeutil.Now()),
	}
	if err := ctx.Store.CreateWorkspace(ctx.Background(), ws, nil); err != nil {
		return fmt.Errorf("failed to create workspace: %w", err)
	}
	return printJSON(ws)
}

type GetCmd struct {
	ID string `arg:"" help:"Workspace id."`
}

func (c *GetCmd) Run(ctx *cli.Context) error {
	ws, err := ctx.Store.GetWorkspace(ctx.Background(), c.ID)
	if err != nil {
		return fmt.Errorf("failed to get workspace: %w", err)
	}
	return printJSON(ws)
}

type ListCmd struct{}

func (c *ListCmd) Run(ctx *cli.Context) error {
	workspaces, err := ctx.Store.GetWorkspaces(ctx.Background())
	if err != nil {
		return fmt.Errorf("failed to list workspaces: %w", err)
	}
	return printJSON(workspaces)
}

type UpdateCmd struct {
	ID            string `arg:"" help:"Workspace id."`
	Name          string `help:"New workspace name."`
	CoreTimeStart string `help:"New core-time start (HH:MM)."`
	CoreTimeEnd   string `help:"New core-time end (HH:MM)."`
	RoleIntro     string `help:"New role-intro text."`
}

func (c *UpdateCmd) Run(ctx *cli.Context) error {
	ws, err := ctx.Store.GetWorkspace(ctx.Background(), c.ID)
	if err != nil {
		return fmt.Errorf("failed to get workspace: %w", err)
	}
	if c.Name != "" {
		ws.Name = c.Name
	}
	if c.CoreTimeStart != "" {
		ws.CoreTimeStart = c.CoreTimeStart
	}
	if c.CoreTimeEnd != "" {
		ws.CoreTimeEnd = c.CoreTimeEnd
	}
	if c.RoleIntro != "" {
		ws.RoleIntro = c.RoleIntro
	}
	if err := ctx.Store.UpdateWorkspace(ctx.Background(), ws); err != nil {
		return fmt.Errorf("failed to update workspace: %w", err)
	}
	return printJSON(ws)
}

type WindowsGetCmd struct {
	WorkspaceID string `arg:"" help:"Workspace id."`
}

func (c *WindowsGetCmd) Run(ctx *cli.Context) error {
	windows, err := ctx.Store.GetUnpluggedWindows(ctx.Background(), c.WorkspaceID)
	if err != nil {
		return fmt.Errorf("failed to get unplugged windows: %w", err)
	}
	return printJSON(windows)
}

// WindowsSetCmd replaces every unplugged window of a workspace in one
// call; there is no incremental add/remove, matching the way
// ReplaceUnpluggedWindows is the only write the repository exposes.
// Windows are given as "label|start|end" triplets, comma-separated, e.g.
// "lunch|12:00|12:30,evening|22:00|23:30". Each window must start before
// it ends; a window that wraps past midnight is rejected.
type WindowsSetCmd struct {
	WorkspaceID string `arg:"" help:"Workspace id."`
	Windows     string `arg:"" help:"Comma-separated label|start|end triplets (times as HH:MM)."`
}

func (c *WindowsSetCmd) Run(ctx *cli.Context) error {
	windows, err := parseWindows(c.WorkspaceID, c.Windows)
	if err != nil {
		return err
	}
	if err := ctx.Store.ReplaceUnpluggedWindows(ctx.Background(), c.WorkspaceID, windows); err != nil {
		return fmt.Errorf("failed to replace unplugged windows: %w", err)
	}
	return printJSON(windows)
}

func parseWindows(workspaceID, raw string) ([]models.UnpluggedWindow, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	triplets := strings.Split(raw, ",")
	windows := make([]models.UnpluggedWindow, 0, len(triplets))
	for _, t := range triplets {
		parts := strings.Split(t, "|")
		if len(parts) != 3 {
			return nil, coreerrors.Newf(coreerrors.InvalidInput, "invalid window %q: expected label|start|end", t)
		}
		label, start, end := parts[0], parts[1], parts[2]
		if start >= end {
			return nil, coreerrors.Newf(coreerrors.InvalidInput, "window %q start %s must be before end %s", label, start, end)
		}
		windows = append(windows, models.UnpluggedWindow{
			ID:          uuid.NewString(),
			WorkspaceID: workspaceID,
			Label:       label,
			Start:       start,
			End:         end,
		})
	}
	return windows, nil
}

func printJSON(v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Println(string(b))
	return nil
}
