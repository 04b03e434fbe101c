package p24

import (
	"testing"
	"time"
)

func TestFilterDays_WindowAndOrder(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	day := func(offset int) int64 { return now.Add(time.Duration(offset) * 24 * time.Hour).Unix() }

	raw := []int64{
		day(3),
		day(-1), // past, dropped
		day(1),
		day(9), // beyond the 7-day window, dropped
		day(7),
	}

	got := FilterDays(now, 7, raw)
	if len(got) != 3 {
		t.Fatalf("want 3 days, got %d: %v", len(got), got)
	}

	limit := now.Add(7 * 24 * time.Hour)
	for i, d := range got {
		if d.Before(now) || d.After(limit) {
			t.Fatalf("day %v outside [now, now+7d]", d)
		}
		if i > 0 && got[i-1].After(d) {
			t.Fatalf("days not chronological: %v", got)
		}
	}
	if !got[0].Equal(time.Unix(day(1), 0).UTC()) {
		t.Fatalf("want first day +1d, got %v", got[0])
	}
}

func TestFilterDays_Empty(t *testing.T) {
	now := time.Now().UTC()
	if got := FilterDays(now, 7, nil); len(got) != 0 {
		t.Fatalf("want empty, got %v", got)
	}
	if got := FilterDays(now, 7, []int64{now.Add(-time.Hour).Unix()}); len(got) != 0 {
		t.Fatalf("want empty for past-only input, got %v", got)
	}
}
