package finance

import (
	"time"
)

// Horizon answers recognised by ResolveWindow.
const (
	HorizonUnderOneYear   = "Less than 1 year"
	HorizonOneToThree     = "1 to 3 years"
	HorizonThreeToFive    = "3 to 5 years"
	HorizonFiveToTen      = "5 to 10 years"
	HorizonMoreThanTen    = "More than 10 years"
	defaultLookbackDays   = 20 * 365
	lookbackOneYearDays   = 365
	lookbackThreeYearDays = 3 * 365
	lookbackFiveYearDays  = 5 * 365
	lookbackTenYearDays   = 10 * 365
)

// Lookback returns the number of calendar days of history to replay for a
// horizon answer. Any label outside the four short buckets, including
// "More than 10 years" and labels this code has never seen, gets 20 years.
func Lookback(horizon string) int {
	switch horizon {
	case HorizonUnderOneYear:
		return lookbackOneYearDays
	case HorizonOneToThree:
		return lookbackThreeYearDays
	case HorizonThreeToFive:
		return lookbackFiveYearDays
	case HorizonFiveToTen:
		return lookbackTenYearDays
	default:
		return defaultLookbackDays
	}
}

// ResolveWindow maps the horizon answer to a backtest window ending at now.
func ResolveWindow(horizon string, now time.Time) DateWindow {
	return DateWindow{
		Start: now.AddDate(0, 0, -Lookback(horizon)),
		End:   now,
	}
}
