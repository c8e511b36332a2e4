package finance

import "time"

const marketTimezone = "America/New_York"

// exchangeLocation resolves the exchange timezone reported with a chart.
// Unknown or empty names fall back to New York, then to a fixed EST offset
// when tzdata is missing.
func exchangeLocation(name string) *time.Location {
	if name != "" {
		if loc, err := time.LoadLocation(name); err == nil {
			return loc
		}
	}
	loc, err := time.LoadLocation(marketTimezone)
	if err != nil {
		return time.FixedZone("EST", -5*3600)
	}
	return loc
}

// tradingDay maps a bar timestamp to its session date in loc, as UTC midnight.
func tradingDay(ts int64, loc *time.Location) time.Time {
	return dayStart(time.Unix(ts, 0).In(loc))
}

// dayStart truncates t to midnight UTC of its own calendar date.
func dayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
