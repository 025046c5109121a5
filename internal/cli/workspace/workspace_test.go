package workspace

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/willdone/timeline-core/internal/cli"
	"github.com/willdone/timeline-core/internal/storage/sqlite"
)

func setupTestDB(t *testing.T) (*cli.Context, func()) {
	store := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}
	return &cli.Context{Store: store}, func() { store.Close() }
}

func TestCreateAndGet(t *testing.T) {
	ctx, cleanup := setupTestDB(t)
	defer cleanup()

	create := &CreateCmd{Name: "Main", CoreTimeStart: "09:00", CoreTimeEnd: "17:00"}
	if err := create.Run(ctx); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	list := &ListCmd{}
	if err := list.Run(ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}

	workspaces, err := ctx.Store.GetWorkspaces(ctx.Background())
	if err != nil {
		t.Fatalf("failed to read back workspaces: %v", err)
	}
	if len(workspaces) != 1 {
		t.Fatalf("expected 1 workspace, got %d", len(workspaces))
	}

	get := &GetCmd{ID: workspaces[0].ID}
	if err := get.Run(ctx); err != nil {
		t.Errorf("get failed: %v", err)
	}
}

func TestUpdateOnlyChangesGivenFields(t *testing.T) {
	ctx, cleanup := setupTestDB(t)
	defer cleanup()

	if err := (&CreateCmd{Name: "Main", RoleIntro: "original intro"}).Run(ctx); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	workspaces, err := ctx.Store.GetWorkspaces(ctx.Background())
	if err != nil || len(workspaces) != 1 {
		t.Fatalf("failed to read back workspace: %v", err)
	}
	id := workspaces[0].ID

	if err := (&UpdateCmd{ID: id, Name: "Renamed"}).Run(ctx); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	ws, err := ctx.Store.GetWorkspace(ctx.Background(), id)
	if err != nil {
		t.Fatalf("failed to get workspace: %v", err)
	}
	if ws.Name != "Renamed" {
		t.Errorf("expected name %q, got %q", "Renamed", ws.Name)
	}
	if ws.RoleIntro != "original intro" {
		t.Errorf("expected RoleIntro to be preserved, got %q", ws.RoleIntro)
	}
}

func TestWindowsSetAndGet(t *testing.T) {
	ctx, cleanup := setupTestDB(t)
	defer cleanup()

	if err := (&CreateCmd{Name: "Main"}).Run(ctx); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	workspaces, _ := ctx.Store.GetWorkspaces(ctx.Background())
	id := workspaces[0].ID

	set := &WindowsSetCmd{WorkspaceID: id, Windows: "lunch|12:00|12:30,evening|22:00|23:30"}
	if err := set.Run(ctx); err != nil {
		t.Fatalf("windows set failed: %v", err)
	}

	windows, err := ctx.Store.GetUnpluggedWindows(ctx.Background(), id)
	if err != nil {
		t.Fatalf("failed to get windows: %v", err)
	}
	if len(windows) != 2 {
		t.Fatalf("expected 2 windows, got %d", len(windows))
	}
}

func TestWindowsSetRejectsMalformedTriplet(t *testing.T) {
	ctx, cleanup := setupTestDB(t)
	defer cleanup()

	set := &WindowsSetCmd{WorkspaceID: "ws1", Windows: "lunch|12:00"}
	if err := set.Run(ctx); err == nil {
		t.Error("expected an error for a malformed label|start|end triplet")
	}
}

func TestWindowsSetRejectsInvertedWindow(t *testing.T) {
	ctx, cleanup := setupTestDB(t)
	defer cleanup()

	set := &WindowsSetCmd{WorkspaceID: "ws1", Windows: "lunch|13:00|12:00"}
	if err := set.Run(ctx); err == nil {
		t.Error("expected an error when start is not before end")
	}
}
