package domain

import "time"

// NextDaily computes the next time strictly after now at which the local
// wall clock in loc reads at. The result is in UTC.
func NextDaily(now time.Time, at TimeOfDay, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	localNow := now.In(loc)
	next := time.Date(localNow.Year(), localNow.Month(), localNow.Day(), at.Hour, at.Minute, 0, 0, loc)
	if !next.After(localNow) {
		// time.Date normalizes day overflow and keeps the wall clock across DST.
		next = time.Date(localNow.Year(), localNow.Month(), localNow.Day()+1, at.Hour, at.Minute, 0, 0, loc)
	}
	return next.UTC()
}

// NextHourBoundary returns the next HH:00 strictly after now.
func NextHourBoundary(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	localNow := now.In(loc)
	next := localNow.Truncate(time.Minute).Add(time.Duration(60-localNow.Minute()) * time.Minute)
	return next.UTC()
}

// LocalizeTime formats t in loc as HH:MM.
func LocalizeTime(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format("15:04")
}
