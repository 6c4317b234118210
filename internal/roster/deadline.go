package roster

import (
	"time"
	_ "time/tzdata"
)

// Eastern is the league's time zone.
var Eastern = mustLoadLocation("America/New_York")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

// SubDeadline returns when a sub contract signed at now ends: the coming
// Sunday at 23:59 Eastern, or the same day when now is already a Sunday.
func SubDeadline(now time.Time) time.Time {
	et := now.In(Eastern)
	days := (int(time.Sunday) - int(et.Weekday()) + 7) % 7
	d := et.AddDate(0, 0, days)
	return time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 0, 0, Eastern)
}
