package system

import (
	"fmt"
	"strings"
	"time"

	"github.com/willdone/timeline-core/internal/cli"
	"github.com/willdone/timeline-core/internal/constants"
	"github.com/willdone/timeline-core/internal/models"
	"github.com/willdone/timeline-core/internal/notifier"
	"github.com/willdone/timeline-core/internal/timeutil"
)

// NotifyCmd is meant to run on a short cron/tray interval: it looks at a
// workspace's timeline for today, and nudges the user when the current
// NOW block is about to end or the next WILL block is about to start.
// It carries no notified-already state, so running it more often than
// the grace window produces repeat nudges; that is left to the caller's
// schedule rather than tracked here.
type NotifyCmd struct {
	Workspace string `arg:"" help:"Workspace id to check."`
	DryRun    bool   `help:"Print notifications to stdout instead of sending them."`
}

const notifyGraceMinutes = 5

func (c *NotifyCmd) Run(ctx *cli.Context) error {
	var err error
	for attempt := 0; attempt < constants.NotifyMaxRetries; attempt++ {
		err = c.runOnce(ctx)
		if err == nil {
			return nil
		}
		if attempt < constants.NotifyMaxRetries-1 && isDatabaseBusyError(err) {
			time.Sleep(constants.NotifyRetryDelay * time.Duration(attempt+1))
			continue
		}
		break
	}
	return err
}

func isDatabaseBusyError(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "database is locked") ||
		strings.Contains(s, "database busy") ||
		strings.Contains(s, "database table is locked")
}

func (c *NotifyCmd) runOnce(ctx *cli.Context) error {
	if err := ctx.Store.Load(ctx.Background()); err != nil {
		return err
	}

	now := timeutil.Now()
	blocks, err := ctx.Store.GetTimeline(ctx.Background(), c.Workspace, now.Format(constants.DateFormat))
	if err != nil {
		return fmt.Errorf("failed to get timeline: %w", err)
	}

	n := notifier.New()

	for _, b := range blocks {
		switch b.Status {
		case constants.BlockNOW:
			if msg, ok := dueEnd(b, now); ok {
				c.send(msg, n)
			}
		case constants.BlockWILL:
			if msg, ok := dueStart(b, now); ok {
				c.send(msg, n)
			}
		}
	}
	return nil
}

// dueStart reports whether b's start falls within the notify grace
// window of now, and the message to send if so.
func dueStart(b models.TimeBlock, now time.Time) (string, bool) {
	start, err := timeutil.Parse(b.Start)
	if err != nil {
		return "", false
	}
	minutesUntil := timeutil.MinutesBetween(now, start)
	if minutesUntil < 0 || minutesUntil > notifyGraceMinutes {
		return "", false
	}
	return fmt.Sprintf("Starting soon: %s (%s)", b.Title, b.Start), true
}

// dueEnd reports whether b's end falls within the notify grace window
// of now, and the message to send if so.
func dueEnd(b models.TimeBlock, now time.Time) (string, bool) {
	end, err := timeutil.Parse(b.End)
	if err != nil {
		return "", false
	}
	minutesUntil := timeutil.MinutesBetween(now, end)
	if minutesUntil < 0 || minutesUntil > notifyGraceMinutes {
		return "", false
	}
	return fmt.Sprintf("Ending soon: %s (%s)", b.Title, b.End), true
}

func (c *NotifyCmd) send(msg string, n *notifier.Notifier) {
	if c.DryRun {
		fmt.Println("[DryRun] " + msg)
		return
	}
	if err := n.Notify(msg); err != nil {
		fmt.Printf("Failed to send notification: %v\n", err)
	}
}
