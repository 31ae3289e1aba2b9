package availability

import (
	"fmt"
	"time"

	"github.com/agsa/field-scheduler/internal/domain/slot"
)

type window struct {
	start int
	end   int
}

// Expand walks each calendar date in the intersection of [from, to] and the
// rule's active range, subtracts exceptions (league blackouts are passed in
// as exceptions too, ahead of per-field ones), and slices what remains into
// back-to-back candidate slots of gameLength minutes. Remainders shorter
// than gameLength are dropped, never reported as errors.
func Expand(rule Rule, exceptions []Exception, from, to time.Time, gameLength int) ([]CandidateSlot, error) {
	if err := rule.Validate(); err != nil {
		return nil, err
	}
	if gameLength <= 0 {
		return nil, fmt.Errorf("game length must be positive, got %d", gameLength)
	}
	if from.After(to) {
		return nil, fmt.Errorf("range start %s is after range end %s", from.Format(time.DateOnly), to.Format(time.DateOnly))
	}
	if !rule.Active {
		return nil, nil
	}

	start := from
	if rule.StartsOn.After(start) {
		start = rule.StartsOn
	}
	end := to
	if rule.EndsOn.Before(end) {
		end = rule.EndsOn
	}

	days := make(map[time.Weekday]struct{}, len(rule.DaysOfWeek))
	for _, day := range rule.DaysOfWeek {
		days[day] = struct{}{}
	}

	var out []CandidateSlot
	for date := start; !date.After(end); date = date.AddDate(0, 0, 1) {
		if _, ok := days[date.Weekday()]; !ok {
			continue
		}

		windows := []window{{start: rule.StartMinutes, end: rule.EndMinutes}}
		for _, ex := range exceptions {
			if !ex.appliesOn(date) {
				continue
			}
			if ex.WholeDay() {
				windows = nil
				break
			}
			windows = subtract(windows, window{start: ex.StartMinutes, end: ex.EndMinutes})
		}

		for _, w := range windows {
			for cur := w.start; cur+gameLength <= w.end; cur += gameLength {
				out = append(out, CandidateSlot{
					FieldKey:     rule.FieldKey,
					Division:     rule.Division,
					Date:         date,
					StartMinutes: cur,
					EndMinutes:   cur + gameLength,
				})
			}
		}
	}

	return out, nil
}

// subtract removes the carved window from every remaining window, splitting
// a window in two when the carve-out lands in its middle.
func subtract(windows []window, carve window) []window {
	if carve.start >= carve.end {
		return windows
	}

	out := make([]window, 0, len(windows)+1)
	for _, w := range windows {
		if !slot.Overlaps(w.start, w.end, carve.start, carve.end) {
			out = append(out, w)
			continue
		}
		if carve.start > w.start {
			out = append(out, window{start: w.start, end: carve.start})
		}
		if carve.end < w.end {
			out = append(out, window{start: carve.end, end: w.end})
		}
	}
	return out
}
