package covid

import (
	"time"

	"cloud.google.com/go/civil"
)

// NeedsRefresh reports whether today falls on a different calendar day than the last fetch.
func NeedsRefresh(lastFetch, today civil.Date) bool {
	return lastFetch.Year != today.Year || lastFetch.Month != today.Month || lastFetch.Day != today.Day
}

// DateIn is the calendar date of t as seen in loc.
func DateIn(t time.Time, loc *time.Location) civil.Date {
	if loc == nil {
		loc = time.Local
	}
	return civil.DateOf(t.In(loc))
}
