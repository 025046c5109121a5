// Package cli is the Kong command-line surface over the scheduling core:
// one command struct per verb, each with a Run(*Context) error method.
// Commands stay thin, delegating the actual mutation to internal/scheduler,
// internal/transitioner, internal/reorderer and internal/splitdelete inside
// a single Context.Store.WithTx call.
package cli

import (
	"context"

	"github.com/willdone/timeline-core/internal/storage"
)

// Backend is what a concrete storage backend (sqlite, postgres) offers
// beyond storage.Provider: lifecycle and introspection the scheduling
// core itself never needs, but the system commands do.
type Backend interface {
	storage.Provider
	Init(ctx context.Context) error
	Load(ctx context.Context) error
	GetConfigPath() string
}

// Context is threaded through every command's Run method.
type Context struct {
	Store Backend
}

// Background returns the context commands should use; there is no
// request-scoped cancellation at the CLI boundary.
func (c *Context) Background() context.Context {
	return context.Background()
}
