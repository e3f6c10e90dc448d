package basho

import "time"

// A basho runs for 15 bout days; day 16 is the post-basho slot used only
// for prize attribution.
const (
	BoutDays = 15
	MaxDay   = 16
)

// Basho is one tournament occurrence.
type Basho struct {
	ID            int64
	Name          string
	City          string
	StartYear     int
	StartMonth    int
	StartDay      int
	LastUpdateDay int
	BanzukeLoaded bool
}

// StartDate returns the calendar date of day 1.
func (b Basho) StartDate() time.Time {
	return time.Date(b.StartYear, time.Month(b.StartMonth), b.StartDay, 0, 0, 0, 0, time.UTC)
}

// ElapsedDays reports how many tournament days have passed as of now,
// capped at MaxDay. Day 1 is the start date itself.
func (b Basho) ElapsedDays(now time.Time) int {
	start := b.StartDate()
	if now.Before(start) {
		return 0
	}
	days := int(now.Sub(start).Hours()/24) + 1
	if days > MaxDay {
		return MaxDay
	}
	return days
}
