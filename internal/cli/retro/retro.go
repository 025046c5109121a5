// Package retro implements the three retrospective commands. Generation
// itself is delegated to an internal/retro.Generator; with no backend
// configured this is internal/retro.NullGenerator, so generate fails
// with NotFound rather than silently producing empty content.
package retro

import (
	"encoding/json"
	"fmt"

	"github.com/willdone/timeline-core/internal/cli"
	"github.com/willdone/timeline-core/internal/retro"
)

// Generator is the collaborator used by GenerateCmd; swapped in tests
// and left as retro.NullGenerator{} until a real backend is wired up.
var Generator retro.Generator = retro.NullGenerator{}

type GenerateCmd struct {
	WorkspaceID string `arg:"" help:"Workspace id."`
	RetroType   string `arg:"" help:"Retrospective type (e.g. daily, weekly)."`
	DateLabel   string `arg:"" help:"Date label the retrospective covers."`
}

func (c *GenerateCmd) Run(ctx *cli.Context) error {
	r, err := Generator.Generate(ctx.Background(), c.WorkspaceID, c.RetroType, c.DateLabel)
	if err != nil {
		return fmt.Errorf("failed to generate retrospective: %w", err)
	}
	if err := ctx.Store.SaveRetrospective(ctx.Background(), r); err != nil {
		return fmt.Errorf("failed to save retrospective: %w", err)
	}
	return printJSON(r)
}

type GetCmd struct {
	WorkspaceID string `arg:"" help:"Workspace id."`
	RetroType   string `arg:"" help:"Retrospective type."`
	DateLabel   string `arg:"" help:"Date label the retrospective covers."`
}

func (c *GetCmd) Run(ctx *cli.Context) error {
	r, err := ctx.Store.GetRetrospective(ctx.Background(), c.WorkspaceID, c.RetroType, c.DateLabel)
	if err != nil {
		return fmt.Errorf("failed to get retrospective: %w", err)
	}
	return printJSON(r)
}

type ListCmd struct {
	WorkspaceID string `arg:"" help:"Workspace id."`
}

func (c *ListCmd) Run(ctx *cli.Context) error {
	retros, err := ctx.Store.ListRetrospectives(ctx.Background(), c.WorkspaceID)
	if err != nil {
		return fmt.Errorf("failed to list retrospectives: %w", err)
	}
	return printJSON(retros)
}

func printJSON(v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Println(string(b))
	return nil
}
