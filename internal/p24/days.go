package p24

import (
	"sort"
	"time"
)

// FilterDays converts raw calendar-day unix timestamps into the chronological
// list of days worth querying: nothing before now, nothing past the look-ahead
// window. The backend occasionally returns stale or out-of-order days, so this
// runs before any per-day slot query is issued.
func FilterDays(now time.Time, daysAhead int, raw []int64) []time.Time {
	limit := now.Add(time.Duration(daysAhead) * 24 * time.Hour)

	var days []time.Time
	for _, ts := range raw {
		t := time.Unix(ts, 0).UTC()
		if t.Before(now) || t.After(limit) {
			continue
		}
		days = append(days, t)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}
