package schedule

import (
	"sort"
	"time"
)

// Interval is half-open: [Start, End).
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (iv Interval) IsEmpty() bool {
	return !iv.End.After(iv.Start)
}

func (iv Interval) Duration() time.Duration {
	return iv.End.Sub(iv.Start)
}

func (iv Interval) Overlaps(o Interval) bool {
	return iv.Start.Before(o.End) && o.Start.Before(iv.End)
}

func (iv Interval) Contains(o Interval) bool {
	return !o.Start.Before(iv.Start) && !o.End.After(iv.End)
}

// Normalize sorts, drops empty intervals and merges any that touch or
// overlap, so the result is an ordered set of disjoint intervals.
func Normalize(ivs []Interval) []Interval {
	var clean []Interval
	for _, iv := range ivs {
		if !iv.IsEmpty() {
			clean = append(clean, iv)
		}
	}
	if len(clean) == 0 {
		return nil
	}

	sort.Slice(clean, func(i, j int) bool {
		return clean[i].Start.Before(clean[j].Start)
	})

	merged := []Interval{clean[0]}
	for _, iv := range clean[1:] {
		last := &merged[len(merged)-1]
		if !iv.Start.After(last.End) {
			if iv.End.After(last.End) {
				last.End = iv.End
			}
			continue
		}
		merged = append(merged, iv)
	}

	return merged
}

// Subtract removes sub from win, yielding zero, one or two remainders.
func Subtract(win, sub Interval) []Interval {
	if !win.Overlaps(sub) {
		return []Interval{win}
	}

	var out []Interval
	if sub.Start.After(win.Start) {
		out = append(out, Interval{Start: win.Start, End: sub.Start})
	}
	if sub.End.Before(win.End) {
		out = append(out, Interval{Start: sub.End, End: win.End})
	}
	return out
}

// SubtractAll removes every subtrahend from win. Subtrahends are unioned
// first so overlapping ones are not subtracted twice.
func SubtractAll(win Interval, subs []Interval) []Interval {
	if win.IsEmpty() {
		return nil
	}

	remaining := []Interval{win}
	for _, sub := range Normalize(subs) {
		var next []Interval
		for _, r := range remaining {
			next = append(next, Subtract(r, sub)...)
		}
		remaining = next
	}

	return Normalize(remaining)
}
