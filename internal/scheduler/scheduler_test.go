package scheduler

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

// S1 — urgent preemption with resume and shift.
func TestAddTaskUrgentPreemptsAndResumes(t *testing.T) {
	withFixedNow(t, "18:10:00")
	fake := storagetest.New("ws1")
	task10, _ := fake.AddTask(context.Background(), models.Task{ID: 0, WorkspaceID: "ws1", Title: "Task 10"})
	task11, _ := fake.AddTask(context.Background(), models.Task{WorkspaceID: "ws1", Title: "Task 11"})
	t1, _ := fake.InsertBlocks(context.Background(), []models.TimeBlock{
		{TaskID: task10.ID, WorkspaceID: "ws1", Title: "Task 10", Start: "2026-07-30T18:00:00", End: "2026-07-30T18:30:00", Status: constants.BlockNOW},
	})
	t3, _ := fake.InsertBlocks(context.Background(), []models.TimeBlock{
		{TaskID: task11.ID, WorkspaceID: "ws1", Title: "Task 11", Start: "2026-07-30T18:30:00", End: "2026-07-30T19:00:00", Status: constants.BlockWILL},
	})

	urgentTask, err := AddTask(context.Background(), fake, AddTaskInput{WorkspaceID: "ws1", Title: "Urgent thing", Minutes: 20, Urgent: true})
	if err != nil {
		t.Fatalf("AddTask() failed: %v", err)
	}

	t1After := fake.Blocks[t1[0].ID]
	if t1After.Status != constants.BlockPENDING || t1After.End != "2026-07-30T18:10:00" {
		t.Fatalf("T1 after preemption = %+v, want PENDING ending 18:10:00", t1After)
	}

	urgentBlocks, _ := fake.GetBlocksForTask(context.Background(), urgentTask.ID)
	if len(urgentBlocks) != 1 || urgentBlocks[0].Start != "2026-07-30T18:10:00" || urgentBlocks[0].End != "2026-07-30T18:30:00" || urgentBlocks[0].Status != constants.BlockWILL {
		t.Fatalf("urgent blocks = %+v, want one WILL block 18:10-18:30", urgentBlocks)
	}
	if !urgentBlocks[0].Urgent {
		t.Error("urgent block should carry Urgent = true")
	}

	resumedBlocks, _ := fake.GetBlocksForTask(context.Background(), task10.ID)
	var resumed *models.TimeBlock
	for i := range resumedBlocks {
		if resumedBlocks[i].ID != t1[0].ID {
			resumed = &resumedBlocks[i]
		}
	}
	if resumed == nil || resumed.Start != "2026-07-30T18:30:00" || resumed.End != "2026-07-30T18:50:00" || resumed.Status != constants.BlockWILL {
		t.Fatalf("resumed T1 slice = %+v, want WILL 18:30-18:50", resumed)
	}
	if resumed.Urgent {
		t.Error("resumed slice should keep T1's own (non-urgent) urgency, got Urgent = true")
	}

	t3After := fake.Blocks[t3[0].ID]
	if t3After.Start != "2026-07-30T18:50:00" || t3After.End != "2026-07-30T19:20:00" {
		t.Fatalf("T3 after shift = %+v, want 18:50-19:20", t3After)
	}
}

// S2 — placement across an unplugged window.
func TestAddTaskSplitsAroundUnpluggedWindow(t *testing.T) {
	withFixedNow(t, "11:30:00")
	fake := storagetest.New("ws1")
	fake.Windows = []models.UnpluggedWindow{{WorkspaceID: "ws1", Label: "lunch", Start: "12:00", End: "13:00"}}

	task, err := AddTask(context.Background(), fake, AddTaskInput{WorkspaceID: "ws1", Title: "Deep work", Hours: 1})
	if err != nil {
		t.Fatalf("AddTask() failed: %v", err)
	}

	blocks, _ := fake.GetBlocksForTask(context.Background(), task.ID)
	if len(blocks) != 2 {
		t.Fatalf("blocks = %+v, want 2", blocks)
	}
	if blocks[0].Start != "2026-07-30T11:30:00" || blocks[0].End != "2026-07-30T12:00:00" {
		t.Fatalf("blocks[0] = %+v, want 11:30-12:00", blocks[0])
	}
	if blocks[1].Start != "2026-07-30T13:00:00" || blocks[1].End != "2026-07-30T13:30:00" {
		t.Fatalf("blocks[1] = %+v, want 13:00-13:30", blocks[1])
	}
	if blocks[0].Urgent || blocks[1].Urgent {
		t.Fatalf("blocks from a non-urgent add_task should not be marked urgent: %+v", blocks)
	}
}

// Preempting an urgent task's own NOW block must keep that task's urgency
// on its resumed slice, not just on the newly inserted urgent block.
func TestAddTaskResumedSliceKeepsPreemptedTasksUrgency(t *testing.T) {
	withFixedNow(t, "18:10:00")
	fake := storagetest.New("ws1")
	task10, _ := fake.AddTask(context.Background(), models.Task{WorkspaceID: "ws1", Title: "Task 10"})
	t1, _ := fake.InsertBlocks(context.Background(), []models.TimeBlock{
		{TaskID: task10.ID, WorkspaceID: "ws1", Title: "Task 10", Start: "2026-07-30T18:00:00", End: "2026-07-30T18:30:00", Status: constants.BlockNOW, Urgent: true},
	})

	if _, err := AddTask(context.Background(), fake, AddTaskInput{WorkspaceID: "ws1", Title: "Urgent thing", Minutes: 20, Urgent: true}); err != nil {
		t.Fatalf("AddTask() failed: %v", err)
	}

	resumedBlocks, _ := fake.GetBlocksForTask(context.Background(), task10.ID)
	var resumed *models.TimeBlock
	for i := range resumedBlocks {
		if resumedBlocks[i].ID != t1[0].ID {
			resumed = &resumedBlocks[i]
		}
	}
	if resumed == nil {
		t.Fatal("expected a resumed slice for task 10")
	}
	if !resumed.Urgent {
		t.Error("resumed slice should keep T1's own urgency, got Urgent = false")
	}
}

// S3 — midnight guard.
func TestAddTaskMidnightGuardKeepsTaskInInbox(t *testing.T) {
	withFixedNow(t, "23:40:00")
	fake := storagetest.New("ws1")

	task, err := AddTask(context.Background(), fake, AddTaskInput{WorkspaceID: "ws1", Title: "Too late", Hours: 1})
	if err != nil {
		t.Fatalf("AddTask() failed: %v", err)
	}

	blocks, _ := fake.GetBlocksForTask(context.Background(), task.ID)
	if len(blocks) != 0 {
		t.Fatalf("blocks = %+v, want none (task stays in the inbox)", blocks)
	}
	inbox, _ := fake.GetInbox(context.Background(), "ws1")
	if len(inbox) != 1 || inbox[0].ID != task.ID {
		t.Fatalf("inbox = %+v, want the task", inbox)
	}
}

func TestAddTaskInboxSkipsPlacement(t *testing.T) {
	withFixedNow(t, "09:00:00")
	fake := storagetest.New("ws1")
	task, err := AddTask(context.Background(), fake, AddTaskInput{WorkspaceID: "ws1", Title: "Someday", Hours: 1, Inbox: true})
	if err != nil {
		t.Fatalf("AddTask() failed: %v", err)
	}
	blocks, _ := fake.GetBlocksForTask(context.Background(), task.ID)
	if len(blocks) != 0 {
		t.Fatalf("blocks = %+v, want none for an explicit inbox task", blocks)
	}
}

func TestMoveAllToTimelineStopsAtFirstMidnightCrossing(t *testing.T) {
	withFixedNow(t, "23:00:00")
	fake := storagetest.New("ws1")
	a, _ := fake.AddTask(context.Background(), models.Task{WorkspaceID: "ws1", Title: "fits"})
	b, _ := fake.AddTask(context.Background(), models.Task{WorkspaceID: "ws1", Title: "does not fit", EstimatedMinutes: 60})

	placed, err := MoveAllToTimeline(context.Background(), fake, "ws1")
	if err != nil {
		t.Fatalf("MoveAllToTimeline() failed: %v", err)
	}
	if placed != 1 {
		t.Fatalf("placed = %d, want 1", placed)
	}
	aBlocks, _ := fake.GetBlocksForTask(context.Background(), a.ID)
	if len(aBlocks) == 0 {
		t.Fatal("expected the first task to be placed")
	}
	bBlocks, _ := fake.GetBlocksForTask(context.Background(), b.ID)
	if len(bBlocks) != 0 {
		t.Fatal("expected the second task to remain in the inbox")
	}
}

func TestMoveToInboxDeletesAllBlocksKeepsTask(t *testing.T) {
	fake := storagetest.New("ws1")
	task, _ := fake.AddTask(context.Background(), models.Task{WorkspaceID: "ws1", Title: "Split task"})
	blocks, _ := fake.InsertBlocks(context.Background(), []models.TimeBlock{
		{TaskID: task.ID, WorkspaceID: "ws1", Start: "2026-07-30T09:00:00", End: "2026-07-30T09:30:00", Status: constants.BlockWILL},
		{TaskID: task.ID, WorkspaceID: "ws1", Start: "2026-07-30T09:30:00", End: "2026-07-30T10:00:00", Status: constants.BlockWILL},
	})

	if err := MoveToInbox(context.Background(), fake, blocks[0].ID); err != nil {
		t.Fatalf("MoveToInbox() failed: %v", err)
	}

	remaining, _ := fake.GetBlocksForTask(context.Background(), task.ID)
	if len(remaining) != 0 {
		t.Fatalf("remaining blocks = %+v, want none", remaining)
	}
	if _, err := fake.GetTask(context.Background(), task.ID); err != nil {
		t.Fatalf("task should still exist: %v", err)
	}
}

func TestDeleteTaskCascadesBlocks(t *testing.T) {
	fake := storagetest.New("ws1")
	task, _ := fake.AddTask(context.Background(), models.Task{WorkspaceID: "ws1", Title: "Gone soon"})
	fake.InsertBlocks(context.Background(), []models.TimeBlock{
		{TaskID: task.ID, WorkspaceID: "ws1", Start: "2026-07-30T09:00:00", End: "2026-07-30T09:30:00", Status: constants.BlockWILL},
	})

	if err := DeleteTask(context.Background(), fake, task.ID); err != nil {
		t.Fatalf("DeleteTask() failed: %v", err)
	}
	if _, err := fake.GetTask(context.Background(), task.ID); err == nil {
		t.Fatal("expected the task to be gone")
	}
	remaining, _ := fake.GetBlocksForTask(context.Background(), task.ID)
	if len(remaining) != 0 {
		t.Fatalf("remaining blocks = %+v, want none", remaining)
	}
}

// Open question 2 (spec §9): update_block_status writing NOW must not
// leave a task with two NOW blocks.
func TestSetBlockStatusClearsOtherNowBlockOfSameTask(t *testing.T) {
	fake := storagetest.New("ws1")
	task, _ := fake.AddTask(context.Background(), models.Task{WorkspaceID: "ws1", Title: "Split task"})
	blocks, _ := fake.InsertBlocks(context.Background(), []models.TimeBlock{
		{TaskID: task.ID, WorkspaceID: "ws1", Start: "2026-07-30T09:00:00", End: "2026-07-30T09:30:00", Status: constants.BlockNOW},
		{TaskID: task.ID, WorkspaceID: "ws1", Start: "2026-07-30T09:30:00", End: "2026-07-30T10:00:00", Status: constants.BlockWILL},
	})

	updated, err := SetBlockStatus(context.Background(), fake, blocks[1].ID, constants.BlockNOW)
	if err != nil {
		t.Fatalf("SetBlockStatus() failed: %v", err)
	}
	if updated.Status != constants.BlockNOW {
		t.Fatalf("updated block status = %s, want NOW", updated.Status)
	}

	first := fake.Blocks[blocks[0].ID]
	if first.Status != constants.BlockWILL {
		t.Fatalf("previous NOW block status = %s, want WILL after the transfer", first.Status)
	}

	all, _ := fake.GetBlocksForTask(context.Background(), task.ID)
	nowCount := 0
	for _, b := range all {
		if b.Status == constants.BlockNOW {
			nowCount++
		}
	}
	if nowCount != 1 {
		t.Fatalf("task has %d NOW blocks, want at most 1", nowCount)
	}
}

func TestSetBlockStatusLeavesOtherStatusesUntouched(t *testing.T) {
	fake := storagetest.New("ws1")
	task, _ := fake.AddTask(context.Background(), models.Task{WorkspaceID: "ws1", Title: "Task"})
	blocks, _ := fake.InsertBlocks(context.Background(), []models.TimeBlock{
		{TaskID: task.ID, WorkspaceID: "ws1", Start: "2026-07-30T09:00:00", End: "2026-07-30T09:30:00", Status: constants.BlockWILL},
	})

	updated, err := SetBlockStatus(context.Background(), fake, blocks[0].ID, constants.BlockDONE)
	if err != nil {
		t.Fatalf("SetBlockStatus() failed: %v", err)
	}
	if updated.Status != constants.BlockDONE {
		t.Fatalf("updated block status = %s, want DONE", updated.Status)
	}
}
