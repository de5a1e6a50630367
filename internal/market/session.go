package market

import "time"

// US equity session boundaries, seconds since midnight Eastern.
const (
	preOpen      = 4 * 3600
	regularOpen  = 9*3600 + 30*60
	regularClose = 16 * 3600
	afterClose   = 20 * 3600
)

var newYork = func() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		// No tzdata available; EST without DST is the closest we can get.
		return time.FixedZone("EST", -5*3600)
	}
	return loc
}()

// AllowsEntry reports whether the given instant falls inside the allowed
// trading session: the regular 09:30-16:00 ET session, plus the 04:00-09:30
// pre-market and 16:00-20:00 after-hours windows when extended hours are
// enabled. Holiday handling is deliberately out of scope.
func AllowsEntry(now time.Time, allowExtendedHours bool) bool {
	t := now.In(newYork)
	sec := t.Hour()*3600 + t.Minute()*60 + t.Second()

	regular := sec >= regularOpen && sec <= regularClose
	if !allowExtendedHours {
		return regular
	}

	pre := sec >= preOpen && sec < regularOpen
	after := sec > regularClose && sec <= afterClose
	return pre || regular || after
}
