// Package shifter translates a workspace's future blocks by a signed
// number of minutes, as one composable step inside a larger transaction.
package shifter

import (
	"context"
	"time"

	"github.com/willdone/timeline-core/internal/storage"
)

// ShiftFuture moves every WILL block of workspaceID whose start is at or
// after pivot by deltaMinutes (signed). A block starting exactly at pivot
// is shifted. It does not re-split around unplugged windows; callers are
// responsible for only shifting in patterns that cannot introduce an
// unplugged overlap (see the Scheduler and Transitioner call sites).
func ShiftFuture(ctx context.Context, tx storage.Tx, workspaceID string, pivot time.Time, deltaMinutes int) error {
	return tx.ShiftBlocks(ctx, workspaceID, pivot, deltaMinutes)
}
