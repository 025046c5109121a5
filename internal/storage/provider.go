// Package storage defines the transactional repository contract the
// scheduling core mutates through. Two backends implement it: sqlite
// (default, file-based) and postgres (alternate, shared-server).
package storage

import (
	"context"
	"time"

	"github.com/willdone/timeline-core/internal/models"
)

// Provider is the Repository of spec §4.2: typed reads and writes against
// one workspace's timeline. Every multi-step mutation runs inside one
// WithTx call; the reads below are single-statement queries that may be
// called outside a transaction.
type Provider interface {
	// Workspace & unplugged windows.
	CreateWorkspace(ctx context.Context, ws models.Workspace, windows []models.UnpluggedWindow) error
	GetWorkspace(ctx context.Context, id string) (models.Workspace, error)
	GetWorkspaces(ctx context.Context) ([]models.Workspace, error)
	UpdateWorkspace(ctx context.Context, ws models.Workspace) error
	ReplaceUnpluggedWindows(ctx context.Context, workspaceID string, windows []models.UnpluggedWindow) error
	GetUnpluggedWindows(ctx context.Context, workspaceID string) ([]models.UnpluggedWindow, error)

	// User (singleton).
	GetUser(ctx context.Context) (models.User, error)
	SaveUser(ctx context.Context, u models.User) error
	CheckUserExists(ctx context.Context) (bool, error)

	// Retrospectives (storage only; generation is external, see internal/retro).
	SaveRetrospective(ctx context.Context, r models.Retrospective) error
	GetRetrospective(ctx context.Context, workspaceID, retroType, dateLabel string) (models.Retrospective, error)
	ListRetrospectives(ctx context.Context, workspaceID string) ([]models.Retrospective, error)

	// Single-statement reads (spec §2: "additionally synthesise virtual
	// UNPLUGGED blocks for the requested date").
	GetTimeline(ctx context.Context, workspaceID, date string) ([]models.TimeBlock, error)
	GetInbox(ctx context.Context, workspaceID string) ([]models.Task, error)
	GetActiveDates(ctx context.Context, workspaceID string) ([]string, error)

	// WithTx runs fn inside a single transaction, committing on success
	// and rolling back on any error (including a panic, which it recovers
	// and re-raises after rollback).
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error
}

// Tx is the repository surface available to a command's single
// transaction: the reads spec §4.2 lists plus the writes the Scheduler,
// Transitioner, Reorderer and split-task deleter need.
type Tx interface {
	// Task writes/reads.
	AddTask(ctx context.Context, t models.Task) (models.Task, error)
	GetTask(ctx context.Context, id int64) (models.Task, error)
	DeleteTask(ctx context.Context, id int64) error // cascades to its blocks
	RepointBlockToNewTask(ctx context.Context, blockID int64, newTask models.Task) (models.Task, error)
	GetInbox(ctx context.Context, workspaceID string) ([]models.Task, error)

	// Block writes.
	InsertBlocks(ctx context.Context, blocks []models.TimeBlock) ([]models.TimeBlock, error)
	UpdateBlock(ctx context.Context, b models.TimeBlock) error
	DeleteBlocksForTask(ctx context.Context, taskID int64) error
	DeleteBlock(ctx context.Context, id int64) error
	ShiftBlocks(ctx context.Context, workspaceID string, pivot time.Time, deltaMinutes int) error
	SetStatusForTask(ctx context.Context, taskID int64, status string) error

	// Block reads (spec §4.2's Repository read list).
	GetLatestEnd(ctx context.Context, workspaceID string) (end time.Time, ok bool, err error)
	GetNowBlock(ctx context.Context, workspaceID string) (*models.TimeBlock, error)
	GetNonDoneBlocks(ctx context.Context, workspaceID string) ([]models.TimeBlock, error)
	GetBlocksForTask(ctx context.Context, taskID int64) ([]models.TimeBlock, error)
	GetLastBlock(ctx context.Context, taskID int64) (models.TimeBlock, error)
	GetBlock(ctx context.Context, id int64) (models.TimeBlock, error)

	GetUnpluggedWindows(ctx context.Context, workspaceID string) ([]models.UnpluggedWindow, error)
}
