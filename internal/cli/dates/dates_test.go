package dates

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/willdone/timeline-core/internal/cli"
	"github.com/willdone/timeline-core/internal/models"
	"github.com/willdone/timeline-core/internal/storage/sqlite"
)

func TestActiveCmd(t *testing.T) {
	store := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}
	defer store.Close()
	ctx := &cli.Context{Store: store}

	if err := ctx.Store.CreateWorkspace(ctx.Background(), models.Workspace{ID: "ws1", Name: "Main", CreatedAt: "2026-01-01T00:00:00"}, nil); err != nil {
		t.Fatalf("failed to create workspace: %v", err)
	}

	if err := (&ActiveCmd{WorkspaceID: "ws1"}).Run(ctx); err != nil {
		t.Errorf("active dates failed: %v", err)
	}
}
