package task

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/willdone/timeline-core/internal/cli"
	"github.com/willdone/timeline-core/internal/models"
	"github.com/willdone/timeline-core/internal/storage/sqlite"
)

func setupTestDB(t *testing.T) (*cli.Context, string, func()) {
	store := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}
	ctx := &cli.Context{Store: store}

	workspaceID := "ws1"
	if err := ctx.Store.CreateWorkspace(ctx.Background(), models.Workspace{ID: workspaceID, Name: "Main", CreatedAt: "2026-01-01T00:00:00"}, nil); err != nil {
		t.Fatalf("failed to create workspace: %v", err)
	}

	return ctx, workspaceID, func() { store.Close() }
}

func TestAddCmdRejectsEmptyTitle(t *testing.T) {
	ctx, ws, cleanup := setupTestDB(t)
	defer cleanup()

	cmd := &AddCmd{WorkspaceID: ws, Title: "", Minutes: 30}
	if err := cmd.Run(ctx); err == nil {
		t.Error("expected an error for an empty task title")
	}
}

func TestAddCmdPlacesOnTimelineByDefault(t *testing.T) {
	ctx, ws, cleanup := setupTestDB(t)
	defer cleanup()

	cmd := &AddCmd{WorkspaceID: ws, Title: "Write report", Minutes: 30}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	inbox, err := ctx.Store.GetInbox(ctx.Background(), ws)
	if err != nil {
		t.Fatalf("failed to get inbox: %v", err)
	}
	if len(inbox) != 0 {
		t.Errorf("expected the task to be placed, not left in the inbox; got %d inbox tasks", len(inbox))
	}
}

func TestAddCmdInboxLeavesTaskUnscheduled(t *testing.T) {
	ctx, ws, cleanup := setupTestDB(t)
	defer cleanup()

	cmd := &AddCmd{WorkspaceID: ws, Title: "Someday task", Minutes: 30, Inbox: true}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	inbox, err := ctx.Store.GetInbox(ctx.Background(), ws)
	if err != nil {
		t.Fatalf("failed to get inbox: %v", err)
	}
	if len(inbox) != 1 {
		t.Fatalf("expected 1 inbox task, got %d", len(inbox))
	}
}

func TestMoveToTimelineAndMoveAllToTimeline(t *testing.T) {
	ctx, ws, cleanup := setupTestDB(t)
	defer cleanup()

	if err := (&AddCmd{WorkspaceID: ws, Title: "Task A", Minutes: 30, Inbox: true}).Run(ctx); err != nil {
		t.Fatalf("add A failed: %v", err)
	}
	if err := (&AddCmd{WorkspaceID: ws, Title: "Task B", Minutes: 30, Inbox: true}).Run(ctx); err != nil {
		t.Fatalf("add B failed: %v", err)
	}

	if err := (&MoveAllToTimelineCmd{WorkspaceID: ws}).Run(ctx); err != nil {
		t.Fatalf("move-all-to-timeline failed: %v", err)
	}

	inbox, err := ctx.Store.GetInbox(ctx.Background(), ws)
	if err != nil {
		t.Fatalf("failed to get inbox: %v", err)
	}
	if len(inbox) != 0 {
		t.Errorf("expected both tasks to be placed, got %d still in inbox", len(inbox))
	}
}

func TestDeleteCmdRejectsNonNumericID(t *testing.T) {
	ctx, _, cleanup := setupTestDB(t)
	defer cleanup()

	if err := (&DeleteCmd{TaskID: "not-a-number"}).Run(ctx); err == nil {
		t.Error("expected an error for a non-numeric task id")
	}
}

func TestDeleteCmdRemovesTaskAndBlocks(t *testing.T) {
	ctx, ws, cleanup := setupTestDB(t)
	defer cleanup()

	if err := (&AddCmd{WorkspaceID: ws, Title: "Disposable", Minutes: 30}).Run(ctx); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	if err := (&DeleteCmd{TaskID: "1"}).Run(ctx); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
}
