package demand

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/qhdzhm/happy-sub000/internal/assignment"
	"github.com/qhdzhm/happy-sub000/internal/booking"
	"github.com/qhdzhm/happy-sub000/internal/dateutil"
	"github.com/qhdzhm/happy-sub000/internal/location"
)

func date(s string) time.Time {
	t, err := time.Parse(dateutil.DayKeyLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

// boardLanes packs bookings and returns the lanes.
func boardLanes(bookings ...*booking.Booking) []*booking.Lane {
	lanes, _ := booking.AssignLanes(bookings, func() time.Time { return date("2025-01-01") })
	return lanes
}

// keyedBooking builds a booking assigned to one location key per day.
func keyedBooking(id int64, pax int, days map[string]string) *booking.Booking {
	b := &booking.Booking{ID: id, Pax: pax, Days: make(map[string]*booking.LocationAssignment)}
	for day, key := range days {
		b.Days[day] = &booking.LocationAssignment{Name: key, Key: key}
	}
	return b
}

func TestAggregator_Build(t *testing.T) {
	svc := assignment.NewMemory()
	svc.SetStatus(date("2025-01-05"), "摇", assignment.Status{Assigned: true, GuideName: "王导", VehicleInfo: "大巴A"})

	lanes := boardLanes(
		keyedBooking(1, 4, map[string]string{"2025-01-05": "摇"}),
		keyedBooking(2, 2, map[string]string{"2025-01-05": "摇"}),
		keyedBooking(3, 3, map[string]string{"2025-01-05": "酒"}),
		keyedBooking(4, 5, map[string]string{"2025-01-06": "酒"}), // other date, excluded
	)

	agg := New(svc, nil)
	stats := agg.Build(context.Background(), date("2025-01-05"), lanes)

	if len(stats) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(stats))
	}
	// Sorted by key: 摇 > 酒 in UTF-8 order? Verify by lookup instead.
	byKey := make(map[string]Stat)
	for _, s := range stats {
		byKey[s.Key] = s
	}

	yao := byKey["摇"]
	if yao.Count != 2 || yao.TotalPax != 6 {
		t.Errorf("摇: expected count=2 pax=6, got count=%d pax=%d", yao.Count, yao.TotalPax)
	}
	if !yao.Assigned || yao.GuideInfo != "王导" || yao.VehicleInfo != "大巴A" {
		t.Errorf("摇: unexpected status annotation: %+v", yao)
	}
	if len(yao.BookingIDs) != 2 {
		t.Errorf("摇: expected 2 booking ids, got %v", yao.BookingIDs)
	}

	jiu := byKey["酒"]
	if jiu.Count != 1 || jiu.TotalPax != 3 || jiu.Assigned {
		t.Errorf("酒: unexpected row: %+v", jiu)
	}
}

func TestAggregator_StatusFailureIsolated(t *testing.T) {
	svc := assignment.NewMemory()
	svc.SetStatus(date("2025-01-05"), "酒", assignment.Status{Assigned: true, GuideName: "李导"})
	lookupErr := errors.New("backend down")
	svc.FailStatus(date("2025-01-05"), "摇", lookupErr)

	lanes := boardLanes(
		keyedBooking(1, 4, map[string]string{"2025-01-05": "摇"}),
		keyedBooking(2, 3, map[string]string{"2025-01-05": "酒"}),
	)

	stats := New(svc, nil).Build(context.Background(), date("2025-01-05"), lanes)
	if len(stats) != 2 {
		t.Fatalf("expected both rows despite failure, got %d", len(stats))
	}

	byKey := make(map[string]Stat)
	for _, s := range stats {
		byKey[s.Key] = s
	}
	if byKey["摇"].Assigned {
		t.Error("failed lookup must degrade to unassigned")
	}
	if !errors.Is(byKey["摇"].StatusErr, lookupErr) {
		t.Errorf("expected retained lookup error, got %v", byKey["摇"].StatusErr)
	}
	if !byKey["酒"].Assigned || byKey["酒"].GuideInfo != "李导" {
		t.Error("sibling lookup must not be affected by the failure")
	}
}

func TestAggregator_AutomaticMerge(t *testing.T) {
	svc := assignment.NewMemory()
	svc.SetStatus(date("2025-01-05"), "亚", assignment.Status{Assigned: true, GuideName: "王导", VehicleInfo: "大巴A"})
	svc.SetStatus(date("2025-01-05"), "亚(迅)", assignment.Status{Assigned: true, GuideName: "李导", VehicleInfo: "大巴A"})

	groups, err := location.NewMergeGroups(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lanes := boardLanes(
		keyedBooking(1, 4, map[string]string{"2025-01-05": "亚"}),
		keyedBooking(2, 2, map[string]string{"2025-01-05": "亚(迅)"}),
		keyedBooking(3, 3, map[string]string{"2025-01-05": "摇"}),
	)

	stats := New(svc, groups).Build(context.Background(), date("2025-01-05"), lanes)
	if len(stats) != 2 {
		t.Fatalf("expected 2 rows after merge, got %d", len(stats))
	}

	byKey := make(map[string]Stat)
	for _, s := range stats {
		byKey[s.Key] = s
	}

	merged := byKey["亚瑟港"]
	if !merged.Merged {
		t.Error("expected merged row")
	}
	if merged.Count != 2 || merged.TotalPax != 6 {
		t.Errorf("expected count=2 pax=6, got count=%d pax=%d", merged.Count, merged.TotalPax)
	}
	if !merged.Assigned {
		t.Error("merged assigned flag should OR the members")
	}
	// Guide names union de-duplicated, vehicle de-duplicated to one entry.
	if merged.GuideInfo != "王导/李导" && merged.GuideInfo != "李导/王导" {
		t.Errorf("unexpected guide union: %q", merged.GuideInfo)
	}
	if merged.VehicleInfo != "大巴A" {
		t.Errorf("expected de-duplicated vehicle info, got %q", merged.VehicleInfo)
	}
	if len(merged.MergedFrom) != 2 {
		t.Errorf("expected 2 source keys, got %v", merged.MergedFrom)
	}
	if byKey["摇"].Merged {
		t.Error("ungrouped row must pass through unchanged")
	}
}

func TestAggregator_ManualMergeOverridesAutomatic(t *testing.T) {
	groups, _ := location.NewMergeGroups(nil)
	lanes := boardLanes(
		keyedBooking(1, 4, map[string]string{"2025-01-05": "亚"}),
		keyedBooking(2, 2, map[string]string{"2025-01-05": "亚(迅)"}),
		keyedBooking(3, 3, map[string]string{"2025-01-05": "摇"}),
		keyedBooking(4, 1, map[string]string{"2025-01-05": "酒"}),
	)

	agg := New(assignment.NewMemory(), groups)
	agg.SetManualMerge([]string{"摇", "酒"})

	stats := agg.Build(context.Background(), date("2025-01-05"), lanes)
	byKey := make(map[string]Stat)
	for _, s := range stats {
		byKey[s.Key] = s
	}

	// Manual merge suppresses the automatic 亚瑟港 group entirely.
	if _, ok := byKey["亚瑟港"]; ok {
		t.Error("automatic group must be suppressed while manual merge is active")
	}
	if _, ok := byKey["亚"]; !ok {
		t.Error("unselected rows must pass through unchanged")
	}

	manual := byKey["摇+酒"]
	if manual.Count != 2 || manual.TotalPax != 4 || !manual.Merged {
		t.Errorf("unexpected manual merge row: %+v", manual)
	}

	// Reset restores automatic grouping.
	agg.ResetManualMerge()
	stats = agg.Build(context.Background(), date("2025-01-05"), lanes)
	byKey = make(map[string]Stat)
	for _, s := range stats {
		byKey[s.Key] = s
	}
	if _, ok := byKey["亚瑟港"]; !ok {
		t.Error("expected automatic grouping after reset")
	}
}

func TestAggregator_MergePreservesCounts(t *testing.T) {
	groups, _ := location.NewMergeGroups(nil)
	lanes := boardLanes(
		keyedBooking(1, 4, map[string]string{"2025-01-05": "亚"}),
		keyedBooking(2, 2, map[string]string{"2025-01-05": "亚(迅)"}),
		keyedBooking(3, 3, map[string]string{"2025-01-05": "亚(含)"}),
		keyedBooking(4, 5, map[string]string{"2025-01-05": "摇"}),
		keyedBooking(5, 1, map[string]string{"2025-01-05": "酒"}),
	)

	base := New(assignment.NewMemory(), nil).Build(context.Background(), date("2025-01-05"), lanes)
	var wantCount, wantPax int
	for _, s := range base {
		wantCount += s.Count
		wantPax += s.TotalPax
	}

	// Any grouping choice preserves totals and never double counts.
	for name, agg := range map[string]*Aggregator{
		"automatic": New(assignment.NewMemory(), groups),
		"manual":    New(assignment.NewMemory(), groups),
	} {
		if name == "manual" {
			agg.SetManualMerge([]string{"摇", "酒", "亚"})
		}
		stats := agg.Build(context.Background(), date("2025-01-05"), lanes)

		var gotCount, gotPax int
		seen := make(map[int64]bool)
		for _, s := range stats {
			gotCount += s.Count
			gotPax += s.TotalPax
			for _, id := range s.BookingIDs {
				if seen[id] {
					t.Errorf("%s: booking %d counted twice", name, id)
				}
				seen[id] = true
			}
		}
		if gotCount != wantCount || gotPax != wantPax {
			t.Errorf("%s: totals changed by merge: count %d→%d pax %d→%d",
				name, wantCount, gotCount, wantPax, gotPax)
		}
	}
}

func TestAggregator_SmallManualSelectionIgnored(t *testing.T) {
	agg := New(assignment.NewMemory(), nil)
	agg.SetManualMerge([]string{"摇"})
	if agg.ManualMergeActive() {
		t.Error("single-key selection must be ignored")
	}
}

func TestAggregator_OutputSorted(t *testing.T) {
	lanes := boardLanes(
		keyedBooking(1, 1, map[string]string{"2025-01-05": "c"}),
		keyedBooking(2, 1, map[string]string{"2025-01-05": "a"}),
		keyedBooking(3, 1, map[string]string{"2025-01-05": "b"}),
	)
	stats := New(assignment.NewMemory(), nil).Build(context.Background(), date("2025-01-05"), lanes)
	want := []string{"a", "b", "c"}
	for i, s := range stats {
		if s.Key != want[i] {
			t.Errorf("stats[%d].Key = %q, want %q", i, s.Key, want[i])
		}
	}
}
