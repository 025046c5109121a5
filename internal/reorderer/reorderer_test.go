package reorderer

import (
	"context"
	"testing"

	"github.com/willdone/timeline-core/internal/constants"
	"github.com/willdone/timeline-core/internal/models"
	"github.com/willdone/timeline-core/internal/storage/storagetest"
)

func seedBlocks(t *testing.T, fake *storagetest.Fake, blocks ...models.TimeBlock) []models.TimeBlock {
	t.Helper()
	for i := range blocks {
		blocks[i].WorkspaceID = "ws1"
	}
	out, err := fake.InsertBlocks(context.Background(), blocks)
	if err != nil {
		t.Fatalf("InsertBlocks() failed: %v", err)
	}
	return out
}

// S6-style reorder: three same-length blocks, reordered back to front.
func TestReorderRepacksInNewOrder(t *testing.T) {
	fake := storagetest.New("ws1")
	task, _ := fake.AddTask(context.Background(), models.Task{WorkspaceID: "ws1", Title: "t"})
	blocks := seedBlocks(t, fake,
		models.TimeBlock{TaskID: task.ID, Start: "2026-07-30T09:00:00", End: "2026-07-30T09:30:00", Status: constants.BlockWILL},
		models.TimeBlock{TaskID: task.ID, Start: "2026-07-30T09:30:00", End: "2026-07-30T10:00:00", Status: constants.BlockWILL},
		models.TimeBlock{TaskID: task.ID, Start: "2026-07-30T10:00:00", End: "2026-07-30T10:30:00", Status: constants.BlockWILL},
	)
	a, b, c := blocks[0], blocks[1], blocks[2]

	if err := Reorder(context.Background(), fake, "ws1", []int64{c.ID, a.ID, b.ID}); err != nil {
		t.Fatalf("Reorder() failed: %v", err)
	}

	if got := fake.Blocks[c.ID]; got.Start != "2026-07-30T09:00:00" || got.End != "2026-07-30T09:30:00" {
		t.Fatalf("c = %+v, want first slot", got)
	}
	if got := fake.Blocks[a.ID]; got.Start != "2026-07-30T09:30:00" || got.End != "2026-07-30T10:00:00" {
		t.Fatalf("a = %+v, want second slot", got)
	}
	if got := fake.Blocks[b.ID]; got.Start != "2026-07-30T10:00:00" || got.End != "2026-07-30T10:30:00" {
		t.Fatalf("b = %+v, want third slot (durations preserved)", got)
	}
}

func TestReorderIsIdempotentOnCurrentOrder(t *testing.T) {
	fake := storagetest.New("ws1")
	task, _ := fake.AddTask(context.Background(), models.Task{WorkspaceID: "ws1", Title: "t"})
	blocks := seedBlocks(t, fake,
		models.TimeBlock{TaskID: task.ID, Start: "2026-07-30T09:00:00", End: "2026-07-30T09:20:00", Status: constants.BlockWILL},
		models.TimeBlock{TaskID: task.ID, Start: "2026-07-30T09:20:00", End: "2026-07-30T10:00:00", Status: constants.BlockWILL},
	)

	before := map[int64]models.TimeBlock{blocks[0].ID: blocks[0], blocks[1].ID: blocks[1]}

	if err := Reorder(context.Background(), fake, "ws1", []int64{blocks[0].ID, blocks[1].ID}); err != nil {
		t.Fatalf("Reorder() failed: %v", err)
	}

	for id, want := range before {
		got := fake.Blocks[id]
		if got.Start != want.Start || got.End != want.End {
			t.Fatalf("block %d = %+v, want unchanged %+v", id, got, want)
		}
	}
}

func TestReorderSkipsUnknownAndUnpluggedIDs(t *testing.T) {
	fake := storagetest.New("ws1")
	task, _ := fake.AddTask(context.Background(), models.Task{WorkspaceID: "ws1", Title: "t"})
	blocks := seedBlocks(t, fake,
		models.TimeBlock{TaskID: task.ID, Start: "2026-07-30T09:00:00", End: "2026-07-30T09:30:00", Status: constants.BlockWILL},
		models.TimeBlock{TaskID: task.ID, Start: "2026-07-30T09:30:00", End: "2026-07-30T10:00:00", Status: constants.BlockWILL},
	)

	if err := Reorder(context.Background(), fake, "ws1", []int64{99999, blocks[1].ID, blocks[0].ID}); err != nil {
		t.Fatalf("Reorder() failed: %v", err)
	}

	if got := fake.Blocks[blocks[1].ID]; got.Start != "2026-07-30T09:00:00" {
		t.Fatalf("second block = %+v, want moved to the first slot (unknown id skipped)", got)
	}
	if got := fake.Blocks[blocks[0].ID]; got.Start != "2026-07-30T09:30:00" {
		t.Fatalf("first block = %+v, want moved to the second slot", got)
	}
}

func TestReorderSkipsUnpluggedWindowBlock(t *testing.T) {
	fake := storagetest.New("ws1")
	task, _ := fake.AddTask(context.Background(), models.Task{WorkspaceID: "ws1", Title: "t"})
	blocks := seedBlocks(t, fake,
		models.TimeBlock{TaskID: task.ID, Start: "2026-07-30T09:00:00", End: "2026-07-30T09:30:00", Status: constants.BlockWILL},
		models.TimeBlock{TaskID: task.ID, Start: "2026-07-30T09:30:00", End: "2026-07-30T10:00:00", Status: constants.BlockUNPLUGGED},
	)

	if err := Reorder(context.Background(), fake, "ws1", []int64{blocks[1].ID, blocks[0].ID}); err != nil {
		t.Fatalf("Reorder() failed: %v", err)
	}

	if got := fake.Blocks[blocks[1].ID]; got.Start != "2026-07-30T09:30:00" {
		t.Fatalf("unplugged block = %+v, want left untouched", got)
	}
	if got := fake.Blocks[blocks[0].ID]; got.Start != "2026-07-30T09:00:00" {
		t.Fatalf("ordinary block = %+v, want left at the (only) available slot", got)
	}
}
