// Package retro names the external collaborator that turns a workspace's
// recent activity into a retrospective's textual content. Generation
// itself (an LLM call or similar) is explicitly out of scope for the
// scheduling core; this package only defines the seam the CLI calls
// through and stores results behind.
package retro

import (
	"context"

	"github.com/willdone/timeline-core/internal/coreerrors"
	"github.com/willdone/timeline-core/internal/models"
)

// Generator produces a retrospective's content for a workspace/period.
type Generator interface {
	Generate(ctx context.Context, workspaceID, retroType, dateLabel string) (models.Retrospective, error)
}

// NullGenerator is the default Generator: no text-generation backend is
// configured, so every request fails with NotFound rather than silently
// producing empty content.
type NullGenerator struct{}

func (NullGenerator) Generate(ctx context.Context, workspaceID, retroType, dateLabel string) (models.Retrospective, error) {
	return models.Retrospective{}, coreerrors.New(coreerrors.NotFound, "no retrospective generator is configured")
}
