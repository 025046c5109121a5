// Package placer lays remaining minutes of clock time onto a timeline,
// skipping any unplugged window the interval would otherwise run through.
package placer

import (
	"sort"
	"time"

	"github.com/willdone/timeline-core/internal/models"
	"github.com/willdone/timeline-core/internal/timeutil"
)

// Interval is one contiguous span the caller turns into a time block.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Place appends zero or more intervals starting at start, covering
// remainingMinutes of clock time in total, such that no interval's
// interior overlaps an unplugged window. Intervals are contiguous except
// where an unplugged window was skipped between them.
//
// unplugged windows are daily-recurring HH:MM pairs; they are projected
// onto whichever calendar day the cursor currently sits on, so placement
// that runs past midnight is still skipped correctly on the next day.
func Place(start time.Time, remainingMinutes int, unplugged []models.UnpluggedWindow) ([]Interval, error) {
	if remainingMinutes <= 0 {
		return nil, nil
	}

	var out []Interval
	cursor := start
	left := remainingMinutes

	for left > 0 {
		tentativeEnd := timeutil.AddMinutes(cursor, left)

		windows, err := projectOnto(cursor, unplugged)
		if err != nil {
			return nil, err
		}
		sort.Slice(windows, func(i, j int) bool { return windows[i].Start.Before(windows[j].Start) })

		advanced := false
		for _, w := range windows {
			if !w.Start.Before(tentativeEnd) || !w.End.After(cursor) {
				continue // does not intersect (cursor, tentativeEnd)
			}

			if !cursor.Before(w.Start) {
				// cursor lies inside this window: skip it and rescan.
				cursor = w.End
				advanced = true
				break
			}

			// window starts inside the tentative interval: split here.
			gap := timeutil.MinutesBetween(cursor, w.Start)
			out = appendInterval(out, cursor, w.Start)
			left -= gap
			cursor = w.End
			advanced = true
			break
		}
		if advanced {
			continue
		}

		out = appendInterval(out, cursor, tentativeEnd)
		left = 0
	}

	return out, nil
}

func appendInterval(out []Interval, start, end time.Time) []Interval {
	if !end.After(start) {
		return out
	}
	return append(out, Interval{Start: start, End: end})
}

func projectOnto(anchor time.Time, unplugged []models.UnpluggedWindow) ([]Interval, error) {
	out := make([]Interval, 0, len(unplugged))
	for _, w := range unplugged {
		s, e, err := timeutil.ProjectWindow(anchor, w.Start, w.End)
		if err != nil {
			return nil, err
		}
		out = append(out, Interval{Start: s, End: e})
	}
	return out, nil
}
