package covid

import (
	"fmt"
	"time"
)

// SourceCredit prefixes the caption shown under the dashboard title.
const SourceCredit = "Sources: Esri & CDC | "

// Caption renders "Sources: Esri & CDC | Last Updated: March 1, 2021" for the given instant,
// using its calendar date in loc.
func Caption(lastUpdate time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	d := lastUpdate.In(loc)
	return SourceCredit + fmt.Sprintf("Last Updated: %s %d, %d", d.Month(), d.Day(), d.Year())
}
