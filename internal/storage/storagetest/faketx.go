// Package storagetest provides an in-memory storage.Tx double for unit
// tests of the components built on top of the storage layer (placer,
// shifter, scheduler, transitioner, reorderer, split-task deletion). It
// mirrors the sqlite/postgres backends' query semantics closely enough
// that tests written against it exercise the same contracts those
// backends implement.
package storagetest

import (
	"sort"

	"github.com/willdone/timeline-core/internal/coreerrors"

	"context"
	"time"

	"github.com/willdone/timeline-core/internal/constants"
	"github.com/willdone/timeline-core/internal/models"
)

// Fake implements storage.Tx entirely in memory.
type Fake struct {
	WorkspaceID string // used as the default workspace for blocks/windows

	nextTaskID  int64
	nextBlockID int64
	Tasks       map[int64]models.Task
	Blocks      map[int64]models.TimeBlock
	Windows     []models.UnpluggedWindow
}

// New returns an empty Fake scoped to a single workspace.
func New(workspaceID string) *Fake {
	return &Fake{
		WorkspaceID: workspaceID,
		Tasks:       map[int64]models.Task{},
		Blocks:      map[int64]models.TimeBlock{},
	}
}

func (f *Fake) AddTask(ctx context.Context, t models.Task) (models.Task, error) {
	f.nextTaskID++
	t.ID = f.nextTaskID
	f.Tasks[t.ID] = t
	return t, nil
}

func (f *Fake) GetTask(ctx context.Context, id int64) (models.Task, error) {
	t, ok := f.Tasks[id]
	if !ok {
		return models.Task{}, coreerrors.New(coreerrors.NotFound, "task not found")
	}
	return t, nil
}

func (f *Fake) DeleteTask(ctx context.Context, id int64) error {
	if _, ok := f.Tasks[id]; !ok {
		return coreerrors.New(coreerrors.NotFound, "task not found")
	}
	delete(f.Tasks, id)
	return nil
}

func (f *Fake) GetInbox(ctx context.Context, workspaceID string) ([]models.Task, error) {
	hasBlocks := map[int64]bool{}
	for _, b := range f.Blocks {
		hasBlocks[b.TaskID] = true
	}
	var out []models.Task
	for _, t := range f.Tasks {
		if t.WorkspaceID == workspaceID && !hasBlocks[t.ID] {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *Fake) RepointBlockToNewTask(ctx context.Context, blockID int64, newTask models.Task) (models.Task, error) {
	b, ok := f.Blocks[blockID]
	if !ok {
		return models.Task{}, coreerrors.New(coreerrors.NotFound, "block not found")
	}
	created, err := f.AddTask(ctx, newTask)
	if err != nil {
		return models.Task{}, err
	}
	b.TaskID = created.ID
	f.Blocks[blockID] = b
	return created, nil
}

func (f *Fake) InsertBlocks(ctx context.Context, blocks []models.TimeBlock) ([]models.TimeBlock, error) {
	out := make([]models.TimeBlock, len(blocks))
	for i, b := range blocks {
		f.nextBlockID++
		b.ID = f.nextBlockID
		f.Blocks[b.ID] = b
		out[i] = b
	}
	return out, nil
}

func (f *Fake) UpdateBlock(ctx context.Context, b models.TimeBlock) error {
	if _, ok := f.Blocks[b.ID]; !ok {
		return coreerrors.New(coreerrors.NotFound, "block not found")
	}
	f.Blocks[b.ID] = b
	return nil
}

func (f *Fake) DeleteBlocksForTask(ctx context.Context, taskID int64) error {
	for id, b := range f.Blocks {
		if b.TaskID == taskID {
			delete(f.Blocks, id)
		}
	}
	return nil
}

func (f *Fake) DeleteBlock(ctx context.Context, id int64) error {
	if _, ok := f.Blocks[id]; !ok {
		return coreerrors.New(coreerrors.NotFound, "block not found")
	}
	delete(f.Blocks, id)
	return nil
}

func (f *Fake) ShiftBlocks(ctx context.Context, workspaceID string, pivot time.Time, deltaMinutes int) error {
	if deltaMinutes == 0 {
		return nil
	}
	for id, b := range f.Blocks {
		if b.WorkspaceID != workspaceID || b.Status != constants.BlockWILL {
			continue
		}
		start, err := parseOrErr(b.Start)
		if err != nil {
			return err
		}
		if start.Before(pivot) {
			continue
		}
		end, err := parseOrErr(b.End)
		if err != nil {
			return err
		}
		b.Start = formatTime(start.Add(time.Duration(deltaMinutes) * time.Minute))
		b.End = formatTime(end.Add(time.Duration(deltaMinutes) * time.Minute))
		f.Blocks[id] = b
	}
	return nil
}

func (f *Fake) SetStatusForTask(ctx context.Context, taskID int64, status string) error {
	for id, b := range f.Blocks {
		if b.TaskID == taskID {
			b.Status = constants.BlockStatus(status)
			f.Blocks[id] = b
		}
	}
	return nil
}

func (f *Fake) GetLatestEnd(ctx context.Context, workspaceID string) (time.Time, bool, error) {
	var latest time.Time
	found := false
	for _, b := range f.Blocks {
		if b.WorkspaceID != workspaceID || b.Status == constants.BlockUNPLUGGED {
			continue
		}
		end, err := parseOrErr(b.End)
		if err != nil {
			return time.Time{}, false, err
		}
		if !found || end.After(latest) {
			latest = end
			found = true
		}
	}
	return latest, found, nil
}

func (f *Fake) GetNowBlock(ctx context.Context, workspaceID string) (*models.TimeBlock, error) {
	for _, b := range f.Blocks {
		if b.WorkspaceID == workspaceID && b.Status == constants.BlockNOW {
			b := b
			return &b, nil
		}
	}
	return nil, nil
}

func (f *Fake) GetNonDoneBlocks(ctx context.Context, workspaceID string) ([]models.TimeBlock, error) {
	var out []models.TimeBlock
	for _, b := range f.Blocks {
		if b.WorkspaceID == workspaceID && b.Status != constants.BlockDONE {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out, nil
}

func (f *Fake) GetBlocksForTask(ctx context.Context, taskID int64) ([]models.TimeBlock, error) {
	var out []models.TimeBlock
	for _, b := range f.Blocks {
		if b.TaskID == taskID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *Fake) GetLastBlock(ctx context.Context, taskID int64) (models.TimeBlock, error) {
	blocks, _ := f.GetBlocksForTask(ctx, taskID)
	if len(blocks) == 0 {
		return models.TimeBlock{}, coreerrors.New(coreerrors.NotFound, "task has no blocks")
	}
	return blocks[len(blocks)-1], nil
}

func (f *Fake) GetBlock(ctx context.Context, id int64) (models.TimeBlock, error) {
	b, ok := f.Blocks[id]
	if !ok {
		return models.TimeBlock{}, coreerrors.New(coreerrors.NotFound, "block not found")
	}
	return b, nil
}

func (f *Fake) GetUnpluggedWindows(ctx context.Context, workspaceID string) ([]models.UnpluggedWindow, error) {
	return f.Windows, nil
}

func parseOrErr(s string) (time.Time, error) {
	t, err := time.ParseInLocation(constants.DateTimeFormat, s, time.Local)
	if err != nil {
		return time.Time{}, coreerrors.Wrap(coreerrors.DateParse, err)
	}
	return t, nil
}

func formatTime(t time.Time) string {
	return t.Format(constants.DateTimeFormat)
}
