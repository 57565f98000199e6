package market

import "time"

// IsOpen reports whether the market is trading at the given instant.
// The instant is converted to the market's local timezone; weekends are
// always closed, and session bounds are inclusive on both ends.
func (d *Definition) IsOpen(at time.Time) bool {
	local := at.In(d.Location)

	switch local.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}

	// Compare at second precision: the bounds are inclusive, so 15:00:00
	// is the last open second of a session ending at 15:00.
	seconds := (local.Hour()*60+local.Minute())*60 + local.Second()
	for _, s := range d.Sessions {
		if seconds >= s.Start.Minutes()*60 && seconds <= s.End.Minutes()*60 {
			return true
		}
	}
	return false
}

// NextOpen returns the start of the next trading session at or after the
// given instant. Used for operational logging, not for scheduling.
func (d *Definition) NextOpen(from time.Time) time.Time {
	local := from.In(d.Location)

	for day := 0; day < 8; day++ {
		candidate := local.AddDate(0, 0, day)
		if candidate.Weekday() == time.Saturday || candidate.Weekday() == time.Sunday {
			continue
		}
		minutes := 0
		if day == 0 {
			minutes = local.Hour()*60 + local.Minute()
		}
		for _, s := range d.Sessions {
			if s.Start.Minutes() >= minutes {
				return time.Date(candidate.Year(), candidate.Month(), candidate.Day(),
					s.Start.Hour, s.Start.Minute, 0, 0, d.Location)
			}
		}
	}
	// Unreachable for any definition with at least one session.
	return time.Time{}
}
