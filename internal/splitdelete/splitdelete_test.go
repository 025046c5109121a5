package splitdelete

import (
	"context"
	"testing"
	"time"

	"github.com/willdone/timeline-core/internal/constants"
	"github.com/willdone/timeline-core/internal/models"
	"github.com/willdone/timeline-core/internal/storage/storagetest"
	"github.com/willdone/timeline-core/internal/timeutil"
)

func withFixedNow(t *testing.T, at string) {
	t.Helper()
	original := Now
	Now = func() time.Time {
		parsed, err := timeutil.Parse("2026-07-30T" + at)
		if err != nil {
			panic(err)
		}
		return parsed
	}
	t.Cleanup(func() { Now = original })
}

func TestDeleteCascadesWhenKeepPastFalse(t *testing.T) {
	fake := storagetest.New("ws1")
	task, _ := fake.AddTask(context.Background(), models.Task{WorkspaceID: "ws1", Title: "gone"})
	fake.InsertBlocks(context.Background(), []models.TimeBlock{
		{TaskID: task.ID, WorkspaceID: "ws1", Start: "2026-07-30T09:00:00", End: "2026-07-30T09:30:00", Status: constants.BlockWILL},
	})

	if err := Delete(context.Background(), fake, task.ID, false); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, err := fake.GetTask(context.Background(), task.ID); err == nil {
		t.Fatal("expected the task to be gone")
	}
	remaining, _ := fake.GetBlocksForTask(context.Background(), task.ID)
	if len(remaining) != 0 {
		t.Fatalf("remaining blocks = %+v, want none", remaining)
	}
}

// S4 — history-preserving deletion.
func TestDeletePreservesHistoryWhenKeepPastTrue(t *testing.T) {
	withFixedNow(t, "12:00:00")
	fake := storagetest.New("ws1")
	task, _ := fake.AddTask(context.Background(), models.Task{WorkspaceID: "ws1", Title: "Task 10", PlanningMemo: "memo"})
	blocks, _ := fake.InsertBlocks(context.Background(), []models.TimeBlock{
		{TaskID: task.ID, WorkspaceID: "ws1", Start: "2026-07-30T09:00:00", End: "2026-07-30T10:00:00", Status: constants.BlockPENDING},
		{TaskID: task.ID, WorkspaceID: "ws1", Start: "2026-07-30T10:00:00", End: "2026-07-30T11:00:00", Status: constants.BlockNOW},
		{TaskID: task.ID, WorkspaceID: "ws1", Start: "2026-07-30T11:00:00", End: "2026-07-30T12:00:00", Status: constants.BlockWILL},
	})
	b101, b102, b103 := blocks[0], blocks[1], blocks[2]

	if err := Delete(context.Background(), fake, task.ID, true); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}

	if _, err := fake.GetTask(context.Background(), task.ID); err == nil {
		t.Fatal("expected task 10 to be removed")
	}
	if _, ok := fake.Blocks[b103.ID]; ok {
		t.Fatal("expected the WILL block to be removed")
	}

	got101 := fake.Blocks[b101.ID]
	got102 := fake.Blocks[b102.ID]
	if got101.Status != constants.BlockDONE || got102.Status != constants.BlockDONE {
		t.Fatalf("surviving blocks = %+v, %+v, want both DONE", got101, got102)
	}
	if got101.TaskID == task.ID || got102.TaskID == task.ID {
		t.Fatalf("surviving blocks still point at the deleted task: %+v, %+v", got101, got102)
	}
	if got101.TaskID == got102.TaskID {
		t.Fatal("expected the two surviving blocks to point at distinct new tasks")
	}

	newTask1, err := fake.GetTask(context.Background(), got101.TaskID)
	if err != nil {
		t.Fatalf("new task for block 101 missing: %v", err)
	}
	if newTask1.Title != "Task 10" || newTask1.PlanningMemo != "memo" || newTask1.EstimatedMinutes != 0 {
		t.Fatalf("new task for block 101 = %+v, want same title/memo, estimated_minutes 0", newTask1)
	}

	if len(fake.Tasks) != 2 {
		t.Fatalf("total task count = %d, want 2", len(fake.Tasks))
	}
}
