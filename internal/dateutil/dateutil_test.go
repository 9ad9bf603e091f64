package dateutil

import (
	"errors"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	t.Run("valid date", func(t *testing.T) {
		got, err := ParseDate("2025-01-15")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
		if !got.Equal(want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("empty defaults to today", func(t *testing.T) {
		got, err := ParseDate("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !SameDay(got, time.Now()) {
			t.Errorf("expected today, got %v", got)
		}
		if got.Hour() != 0 || got.Minute() != 0 {
			t.Errorf("expected midnight, got %v", got)
		}
	})

	t.Run("invalid format", func(t *testing.T) {
		for _, s := range []string{"15-01-2025", "2025/01/15", "20250115", "not-a-date"} {
			if _, err := ParseDate(s); !errors.Is(err, ErrInvalidDateFormat) {
				t.Errorf("ParseDate(%q): expected ErrInvalidDateFormat, got %v", s, err)
			}
		}
	})
}

func TestNewDateRange(t *testing.T) {
	t.Run("valid range", func(t *testing.T) {
		r, err := NewDateRange("2025-01-01", "2025-01-05")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if r.Days() != 5 {
			t.Errorf("expected 5 days, got %d", r.Days())
		}
	})

	t.Run("empty end defaults to start", func(t *testing.T) {
		r, err := NewDateRange("2025-01-01", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !r.Start.Equal(r.End) {
			t.Errorf("expected single-day range, got %v..%v", r.Start, r.End)
		}
	})

	t.Run("end before start", func(t *testing.T) {
		if _, err := NewDateRange("2025-01-05", "2025-01-01"); !errors.Is(err, ErrEndDateBeforeStart) {
			t.Errorf("expected ErrEndDateBeforeStart, got %v", err)
		}
	})
}

func TestDateRange_Axis(t *testing.T) {
	r, err := NewDateRange("2025-01-30", "2025-02-02")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	axis := r.Axis()
	want := []string{"2025-01-30", "2025-01-31", "2025-02-01", "2025-02-02"}
	if len(axis) != len(want) {
		t.Fatalf("expected %d dates, got %d", len(want), len(axis))
	}
	for i, w := range want {
		if DayKey(axis[i]) != w {
			t.Errorf("axis[%d]: expected %s, got %s", i, w, DayKey(axis[i]))
		}
	}
}

func TestDateRange_Shift(t *testing.T) {
	r, _ := NewDateRange("2025-01-01", "2025-01-07")

	forward := r.Shift(7)
	if DayKey(forward.Start) != "2025-01-08" || DayKey(forward.End) != "2025-01-14" {
		t.Errorf("Shift(7): got %s..%s", DayKey(forward.Start), DayKey(forward.End))
	}

	back := r.Shift(-7)
	if DayKey(back.Start) != "2024-12-25" || DayKey(back.End) != "2024-12-31" {
		t.Errorf("Shift(-7): got %s..%s", DayKey(back.Start), DayKey(back.End))
	}

	if DayKey(r.Start) != "2025-01-01" {
		t.Error("Shift must not mutate the receiver")
	}
}

func TestDateRange_Contains(t *testing.T) {
	r, _ := NewDateRange("2025-01-01", "2025-01-05")

	tests := []struct {
		date string
		want bool
	}{
		{"2025-01-01", true},
		{"2025-01-03", true},
		{"2025-01-05", true},
		{"2024-12-31", false},
		{"2025-01-06", false},
	}

	for _, tt := range tests {
		d, _ := ParseDate(tt.date)
		if got := r.Contains(d); got != tt.want {
			t.Errorf("Contains(%s): expected %v, got %v", tt.date, tt.want, got)
		}
	}
}

func TestDaysBetween(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"2025-01-01", "2025-01-01", 0},
		{"2025-01-01", "2025-01-04", 3},
		{"2025-01-04", "2025-01-01", -3},
		{"2025-01-31", "2025-02-01", 1},
	}

	for _, tt := range tests {
		a, _ := ParseDate(tt.a)
		b, _ := ParseDate(tt.b)
		if got := DaysBetween(a, b); got != tt.want {
			t.Errorf("DaysBetween(%s, %s): expected %d, got %d", tt.a, tt.b, tt.want, got)
		}
	}
}

func TestTruncateToDay(t *testing.T) {
	got := TruncateToDay(time.Date(2025, 6, 10, 14, 30, 45, 123, time.UTC))
	want := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}
