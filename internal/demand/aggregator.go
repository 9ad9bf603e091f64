// Package demand answers "who needs to go where on date D": per-location
// aggregates of booking count, pax and assignment status, with automatic or
// manual merging of related location keys.
package demand

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/qhdzhm/happy-sub000/internal/assignment"
	"github.com/qhdzhm/happy-sub000/internal/booking"
	"github.com/qhdzhm/happy-sub000/internal/location"
)

// Stat is one aggregated row for a date: a normalized location (or a merged
// group of them) with the bookings destined there. Built on demand, never
// persisted.
type Stat struct {
	Key         string
	Label       string
	Count       int
	TotalPax    int
	BookingIDs  []int64
	Assigned    bool
	GuideInfo   string
	VehicleInfo string
	Merged      bool
	MergedFrom  []string

	// StatusErr is the retained lookup failure for this row, if any. A failed
	// lookup degrades the row to unassigned instead of dropping it.
	StatusErr error
}

// Aggregator builds demand statistics for single dates. The merge mode is
// sticky: once a manual selection is set it suppresses automatic grouping
// until ResetManualMerge.
type Aggregator struct {
	statuses assignment.StatusProvider
	groups   *location.MergeGroups

	mu     sync.Mutex
	manual map[string]bool
}

// New creates an Aggregator. groups may be nil to disable automatic merging.
func New(statuses assignment.StatusProvider, groups *location.MergeGroups) *Aggregator {
	return &Aggregator{statuses: statuses, groups: groups}
}

// SetManualMerge folds the given keys into one row on subsequent builds,
// overriding automatic grouping entirely. Selections of fewer than two keys
// are ignored.
func (a *Aggregator) SetManualMerge(keys []string) {
	if len(keys) < 2 {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.manual = make(map[string]bool, len(keys))
	for _, k := range keys {
		a.manual[k] = true
	}
}

// ResetManualMerge clears the manual selection, restoring automatic grouping.
func (a *Aggregator) ResetManualMerge() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.manual = nil
}

// ManualMergeActive reports whether a manual selection is in effect.
func (a *Aggregator) ManualMergeActive() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.manual) > 0
}

// Build aggregates demand for the date across the lanes: one pre-merge row
// per distinct normalized key, annotated with assignment status, then merged.
// Output is ordered by location key. Per-key status failures are isolated;
// they degrade that row, never abort siblings.
func (a *Aggregator) Build(ctx context.Context, date time.Time, lanes []*booking.Lane) []Stat {
	rows := a.collect(date, lanes)
	a.annotate(ctx, date, rows)

	a.mu.Lock()
	manual := a.manual
	a.mu.Unlock()

	var merged []Stat
	if len(manual) > 0 {
		merged = mergeManual(rows, manual)
	} else {
		merged = a.mergeAutomatic(rows)
	}

	sort.Slice(merged, func(i, j int) bool { return merged[i].Key < merged[j].Key })
	return merged
}

// collect builds the pre-merge rows: each lane contributes at most one
// booking per date, so a booking is counted exactly once.
func (a *Aggregator) collect(date time.Time, lanes []*booking.Lane) []*Stat {
	byKey := make(map[string]*Stat)
	var order []string

	for _, lane := range lanes {
		b := lane.OccupantOn(date)
		if b == nil {
			continue
		}
		assign := b.AssignmentOn(date)
		row, ok := byKey[assign.Key]
		if !ok {
			row = &Stat{Key: assign.Key, Label: assign.Key}
			byKey[assign.Key] = row
			order = append(order, assign.Key)
		}
		row.Count++
		row.TotalPax += b.Pax
		row.BookingIDs = append(row.BookingIDs, b.ID)
	}

	rows := make([]*Stat, 0, len(order))
	for _, key := range order {
		rows = append(rows, byKey[key])
	}
	return rows
}

// annotate fans out one status lookup per distinct key. Each goroutine writes
// only its own row, so failures and results never race.
func (a *Aggregator) annotate(ctx context.Context, date time.Time, rows []*Stat) {
	if a.statuses == nil {
		return
	}

	var wg sync.WaitGroup
	for _, row := range rows {
		wg.Add(1)
		go func(row *Stat) {
			defer wg.Done()
			status, err := a.statuses.GetAssignmentStatus(ctx, date, row.Key)
			if err != nil {
				row.Assigned = false
				row.StatusErr = err
				return
			}
			row.Assigned = status.Assigned
			row.GuideInfo = status.GuideName
			row.VehicleInfo = status.VehicleInfo
		}(row)
	}
	wg.Wait()
}

// mergeAutomatic folds rows sharing a merge group into one row; ungrouped
// rows pass through unchanged.
func (a *Aggregator) mergeAutomatic(rows []*Stat) []Stat {
	var out []Stat
	byGroup := make(map[string]*Stat)
	var groupOrder []string

	for _, row := range rows {
		group, ok := a.groups.GroupFor(row.Key)
		if !ok {
			out = append(out, *row)
			continue
		}
		target, exists := byGroup[group]
		if !exists {
			target = &Stat{Key: group, Label: group, Merged: true}
			byGroup[group] = target
			groupOrder = append(groupOrder, group)
		}
		foldInto(target, row)
	}

	for _, group := range groupOrder {
		row := byGroup[group]
		sort.Strings(row.MergedFrom)
		// A group that absorbed a single row is not really merged.
		if len(row.MergedFrom) == 1 {
			row.Merged = false
		}
		out = append(out, *row)
	}
	return out
}

// mergeManual folds exactly the selected keys into one row; everything else
// passes through unchanged.
func mergeManual(rows []*Stat, selected map[string]bool) []Stat {
	var out []Stat
	var target *Stat

	for _, row := range rows {
		if !selected[row.Key] {
			out = append(out, *row)
			continue
		}
		if target == nil {
			target = &Stat{Merged: true}
		}
		foldInto(target, row)
	}

	if target != nil {
		sort.Strings(target.MergedFrom)
		target.Key = strings.Join(target.MergedFrom, "+")
		target.Label = target.Key
		out = append(out, *target)
	}
	return out
}

// foldInto accumulates row into target: counts and pax sum, assigned flags
// OR, non-empty guide/vehicle strings union with de-duplication.
func foldInto(target, row *Stat) {
	target.Count += row.Count
	target.TotalPax += row.TotalPax
	target.BookingIDs = append(target.BookingIDs, row.BookingIDs...)
	target.Assigned = target.Assigned || row.Assigned
	target.GuideInfo = unionInfo(target.GuideInfo, row.GuideInfo)
	target.VehicleInfo = unionInfo(target.VehicleInfo, row.VehicleInfo)
	target.MergedFrom = append(target.MergedFrom, row.Key)
	if row.StatusErr != nil && target.StatusErr == nil {
		target.StatusErr = row.StatusErr
	}
}

// unionInfo joins two info strings, skipping empties and duplicates.
func unionInfo(existing, extra string) string {
	if extra == "" {
		return existing
	}
	if existing == "" {
		return extra
	}
	for _, part := range strings.Split(existing, "/") {
		if part == extra {
			return existing
		}
	}
	return existing + "/" + extra
}
