package alert

import "time"

const day = 24 * time.Hour

// Today returns the calendar date of now in loc, as midnight UTC.
// Asset dates are stored as midnight UTC of their calendar date, so both sides compare directly.
func Today(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}

	y, m, d := now.In(loc).Date()

	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// dateOf returns the calendar date of an asset date as midnight UTC.
func dateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()

	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysUntil returns the number of calendar days from today in loc to the asset date target.
// It is zero on the day itself and negative once the date has passed. The time of day is ignored.
func DaysUntil(now, target time.Time, loc *time.Location) int {
	return int(dateOf(target).Sub(Today(now, loc)) / day)
}
