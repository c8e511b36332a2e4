package finance

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

const (
	// RiskFreeRate is the annual rate subtracted in the Sharpe and Treynor ratios.
	RiskFreeRate = 0.02
	// TradingDaysPerYear annualizes the per-period volatility.
	TradingDaysPerYear = 252.0
)

// simpleReturns returns p[t]/p[t-1]-1 for t >= 1.
func simpleReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return nil
	}
	out := make([]float64, len(prices)-1)
	for t := 1; t < len(prices); t++ {
		out[t-1] = prices[t]/prices[t-1] - 1
	}
	return out
}

// growth compounds returns from initial: v[t] = initial * prod(1+r[k]), k <= t.
func growth(initial float64, returns []float64) []float64 {
	out := make([]float64, len(returns))
	v := initial
	for i, r := range returns {
		v *= 1 + r
		out[i] = v
	}
	return out
}

// AnnualizedReturn is the geometric growth rate implied by final/initial over years.
func AnnualizedReturn(final, initial, years float64) float64 {
	return math.Pow(final/initial, 1/years) - 1
}

// sampleStdDev is the n-1 standard deviation; undefined below two observations.
func sampleStdDev(x []float64) (float64, bool) {
	if len(x) < 2 {
		return 0, false
	}
	return stat.StdDev(x, nil), true
}

// Volatility annualizes the sample standard deviation of per-period returns.
func Volatility(returns []float64) Ratio {
	sd, ok := sampleStdDev(returns)
	if !ok {
		return Ratio{}
	}
	return defined(sd * math.Sqrt(TradingDaysPerYear))
}

// SharpeRatio divides the annualized excess return by the standard deviation
// of per-period returns. The denominator is not annualized.
// TODO: divide by Volatility instead once the report format is revised.
func SharpeRatio(annualized float64, returns []float64) Ratio {
	sd, ok := sampleStdDev(returns)
	if !ok || sd == 0 {
		return Ratio{}
	}
	return defined((annualized - RiskFreeRate) / sd)
}

// PortfolioBeta regresses the portfolio returns on the equal-weighted mean of
// its own constituents' returns (not on the benchmark index): sample
// covariance over population variance of that mean series.
// TODO: regress on the benchmark's daily returns once SimulateBenchmark exposes them.
func PortfolioBeta(portfolio, constituentMean []float64) Ratio {
	if len(portfolio) < 2 || len(portfolio) != len(constituentMean) {
		return Ratio{}
	}
	v := stat.PopVariance(constituentMean, nil)
	if v == 0 {
		return Ratio{}
	}
	return defined(stat.Covariance(portfolio, constituentMean, nil) / v)
}

// TreynorRatio divides the annualized excess return by beta.
func TreynorRatio(annualized float64, beta Ratio) Ratio {
	if !beta.Valid || beta.Value == 0 {
		return Ratio{}
	}
	return defined((annualized - RiskFreeRate) / beta.Value)
}

// MaxDrawdown is the largest decline from a running peak, as a positive fraction.
func MaxDrawdown(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}
	maxDrawdown := 0.0
	peak := values[0]
	for _, value := range values {
		if value > peak {
			peak = value
		}
		if dd := -(value/peak - 1); dd > maxDrawdown {
			maxDrawdown = dd
		}
	}
	return maxDrawdown
}
