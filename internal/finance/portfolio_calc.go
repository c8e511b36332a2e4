package finance

import (
	"fmt"
	"math"

	"riskToleranceBot/internal/allocation"
)

// Simulate replays a fixed-weight allocation over the price table.
//
// Weights are the allocation percentages divided by 100, applied to each
// period's simple returns (a daily-rebalanced portfolio). The value series
// compounds those returns from initial. Elapsed years come from the table's
// window, not from its first and last rows.
//
// Rows before the latest listing among the held symbols are dropped, so a
// fund that started trading inside the window shortens the replay instead of
// failing it. Missing prices after that row are still rejected.
func Simulate(alloc allocation.InstrumentAllocation, prices *PriceTable, initial float64) (*Metrics, error) {
	if initial <= 0 || math.IsNaN(initial) || math.IsInf(initial, 0) {
		return nil, fmt.Errorf("%w: initial investment must be positive, got %v", ErrInvalidInput, initial)
	}
	if len(alloc) == 0 {
		return nil, fmt.Errorf("%w: empty allocation", ErrInvalidInput)
	}
	if prices == nil {
		return nil, &InsufficientDataError{Symbol: alloc[0].Symbol, Reason: "no price table"}
	}
	years := prices.Window.Years()
	if years <= 0 {
		return nil, fmt.Errorf("%w: window %s..%s has no length", ErrInvalidInput,
			prices.Window.Start.Format(dateLayout), prices.Window.End.Format(dateLayout))
	}

	cols := make([][]float64, len(alloc))
	start, latest := 0, 0
	for i, h := range alloc {
		col, ok := prices.Series(h.Symbol)
		if !ok {
			return nil, &InsufficientDataError{Symbol: h.Symbol, Reason: "symbol not in price table"}
		}
		if len(col) != len(prices.Dates) {
			return nil, &InsufficientDataError{Symbol: h.Symbol, Reason: "price column does not match the date index"}
		}
		cols[i] = col
		if f := firstPriced(col); f > start {
			start, latest = f, i
		}
	}

	dates := prices.Dates[start:]
	if len(dates) < 2 {
		return nil, &InsufficientDataError{Symbol: alloc[latest].Symbol, Reason: "fewer than 2 rows of history"}
	}
	weights := make([]float64, len(alloc))
	assetReturns := make([][]float64, len(alloc))
	for i, h := range alloc {
		weights[i] = float64(h.Percent) / 100
		col := cols[i][start:]
		if reason := checkSeries(col, len(dates)); reason != "" {
			return nil, &InsufficientDataError{Symbol: h.Symbol, Reason: reason}
		}
		assetReturns[i] = simpleReturns(col)
	}

	periods := len(dates) - 1
	portfolioReturns := make([]float64, periods)
	constituentMean := make([]float64, periods)
	for t := 0; t < periods; t++ {
		var dot, sum float64
		for i := range alloc {
			dot += assetReturns[i][t] * weights[i]
			sum += assetReturns[i][t]
		}
		portfolioReturns[t] = dot
		constituentMean[t] = sum / float64(len(alloc))
	}

	values := growth(initial, portfolioReturns)
	final := values[len(values)-1]
	annualized := AnnualizedReturn(final, initial, years)
	if math.IsNaN(annualized) || math.IsInf(annualized, 0) {
		return nil, fmt.Errorf("%w: annualized return undefined for final value %v", ErrInvalidInput, final)
	}
	beta := PortfolioBeta(portfolioReturns, constituentMean)

	return &Metrics{
		InitialInvestment: initial,
		FinalValue:        final,
		Years:             years,
		AnnualizedReturn:  annualized,
		Volatility:        Volatility(portfolioReturns),
		SharpeRatio:       SharpeRatio(annualized, portfolioReturns),
		Beta:              beta,
		TreynorRatio:      TreynorRatio(annualized, beta),
		MaxDrawdown:       MaxDrawdown(values),
		Dates:             append(dates[:0:0], dates[1:]...),
		PortfolioReturns:  portfolioReturns,
		Values:            values,
	}, nil
}

// SimulateBenchmark grows initial in a single index over the table's window.
func SimulateBenchmark(symbol string, prices *PriceTable, initial float64) (*BenchmarkResult, error) {
	if initial <= 0 || math.IsNaN(initial) || math.IsInf(initial, 0) {
		return nil, fmt.Errorf("%w: initial investment must be positive, got %v", ErrInvalidInput, initial)
	}
	col, ok := prices.Series(symbol)
	if !ok {
		return nil, &InsufficientDataError{Symbol: symbol, Reason: "symbol not in price table"}
	}
	if len(col) != len(prices.Dates) {
		return nil, &InsufficientDataError{Symbol: symbol, Reason: "price column does not match the date index"}
	}
	start := firstPriced(col)
	col = col[start:]
	dates := prices.Dates[start:]
	if reason := checkSeries(col, len(dates)); reason != "" {
		return nil, &InsufficientDataError{Symbol: symbol, Reason: reason}
	}
	years := prices.Window.Years()
	if years <= 0 {
		return nil, fmt.Errorf("%w: benchmark window has no length", ErrInvalidInput)
	}
	values := growth(initial, simpleReturns(col))
	final := values[len(values)-1]
	return &BenchmarkResult{
		Symbol:           symbol,
		AnnualizedReturn: AnnualizedReturn(final, initial, years),
		FinalValue:       final,
		Dates:            append(dates[:0:0], dates[1:]...),
		Values:           values,
	}, nil
}
