package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/willdone/timeline-core/internal/constants"
	"github.com/willdone/timeline-core/internal/models"
	"github.com/willdone/timeline-core/internal/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s := New(dbPath)
	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seedWorkspace(t *testing.T, s *Store, id string, windows []models.UnpluggedWindow) {
	t.Helper()
	ws := models.Workspace{ID: id, Name: "Focus", CreatedAt: "2026-07-30T00:00:00"}
	if err := s.CreateWorkspace(context.Background(), ws, windows); err != nil {
		t.Fatalf("CreateWorkspace() failed: %v", err)
	}
}

func TestCreateAndGetWorkspace(t *testing.T) {
	s := newTestStore(t)
	seedWorkspace(t, s, "ws1", []models.UnpluggedWindow{
		{ID: "u1", Label: "lunch", Start: "12:00", End: "13:00"},
	})

	got, err := s.GetWorkspace(context.Background(), "ws1")
	if err != nil {
		t.Fatalf("GetWorkspace() failed: %v", err)
	}
	if got.Name != "Focus" {
		t.Fatalf("Name = %q, want Focus", got.Name)
	}

	windows, err := s.GetUnpluggedWindows(context.Background(), "ws1")
	if err != nil {
		t.Fatalf("GetUnpluggedWindows() failed: %v", err)
	}
	if len(windows) != 1 || windows[0].Label != "lunch" {
		t.Fatalf("GetUnpluggedWindows() = %+v", windows)
	}
}

func TestReplaceUnpluggedWindows(t *testing.T) {
	s := newTestStore(t)
	seedWorkspace(t, s, "ws1", []models.UnpluggedWindow{{ID: "u1", Label: "lunch", Start: "12:00", End: "13:00"}})

	err := s.ReplaceUnpluggedWindows(context.Background(), "ws1", []models.UnpluggedWindow{
		{ID: "u2", Label: "sleep", Start: "23:00", End: "07:00"},
	})
	if err != nil {
		t.Fatalf("ReplaceUnpluggedWindows() failed: %v", err)
	}

	windows, err := s.GetUnpluggedWindows(context.Background(), "ws1")
	if err != nil {
		t.Fatalf("GetUnpluggedWindows() failed: %v", err)
	}
	if len(windows) != 1 || windows[0].Label != "sleep" {
		t.Fatalf("expected only the replacement window, got %+v", windows)
	}
}

func TestAddTaskAndInbox(t *testing.T) {
	s := newTestStore(t)
	seedWorkspace(t, s, "ws1", nil)

	var created models.Task
	err := s.WithTx(context.Background(), func(tx storage.Tx) error {
		var err error
		created, err = tx.AddTask(context.Background(), models.Task{
			WorkspaceID: "ws1", Title: "Write report", CreatedAt: "2026-07-30T09:00:00",
		})
		return err
	})
	if err != nil {
		t.Fatalf("WithTx(AddTask) failed: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("expected a non-zero assigned id")
	}

	inbox, err := s.GetInbox(context.Background(), "ws1")
	if err != nil {
		t.Fatalf("GetInbox() failed: %v", err)
	}
	if len(inbox) != 1 || inbox[0].ID != created.ID {
		t.Fatalf("GetInbox() = %+v, want one task with id %d", inbox, created.ID)
	}
}

func TestInsertBlocksAndTimeline(t *testing.T) {
	s := newTestStore(t)
	seedWorkspace(t, s, "ws1", []models.UnpluggedWindow{{ID: "u1", Label: "lunch", Start: "12:00", End: "13:00"}})

	var task models.Task
	err := s.WithTx(context.Background(), func(tx storage.Tx) error {
		var err error
		task, err = tx.AddTask(context.Background(), models.Task{WorkspaceID: "ws1", Title: "Draft spec", CreatedAt: "2026-07-30T09:00:00"})
		if err != nil {
			return err
		}
		_, err = tx.InsertBlocks(context.Background(), []models.TimeBlock{
			{TaskID: task.ID, WorkspaceID: "ws1", Title: "Draft spec", Start: "2026-07-30T11:30:00", End: "2026-07-30T12:00:00", Status: constants.BlockWILL},
		})
		return err
	})
	if err != nil {
		t.Fatalf("WithTx() failed: %v", err)
	}

	timeline, err := s.GetTimeline(context.Background(), "ws1", "2026-07-30")
	if err != nil {
		t.Fatalf("GetTimeline() failed: %v", err)
	}
	if len(timeline) != 2 {
		t.Fatalf("GetTimeline() returned %d rows, want 2 (one block + one unplugged)", len(timeline))
	}
	if timeline[1].Status != constants.BlockUNPLUGGED {
		t.Fatalf("expected the second row to be the synthesised unplugged window, got %+v", timeline[1])
	}
}

func TestWithTxRollsBackOnError(t *testing.T) {
	s := newTestStore(t)
	seedWorkspace(t, s, "ws1", nil)

	sentinelErr := context.DeadlineExceeded
	err := s.WithTx(context.Background(), func(tx storage.Tx) error {
		if _, err := tx.AddTask(context.Background(), models.Task{WorkspaceID: "ws1", Title: "doomed", CreatedAt: "2026-07-30T09:00:00"}); err != nil {
			return err
		}
		return sentinelErr
	})
	if err != sentinelErr {
		t.Fatalf("WithTx() error = %v, want %v", err, sentinelErr)
	}

	inbox, err := s.GetInbox(context.Background(), "ws1")
	if err != nil {
		t.Fatalf("GetInbox() failed: %v", err)
	}
	if len(inbox) != 0 {
		t.Fatalf("expected the aborted transaction to leave no tasks, got %+v", inbox)
	}
}
