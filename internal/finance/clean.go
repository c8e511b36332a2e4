package finance

import "math"

// cleanSeries pairs timestamps with prices, truncating to the shorter of the
// two and turning null prices into NaN. Nothing is dropped: gaps and bad
// prices are left for the simulator to reject with the offending symbol.
func cleanSeries(ts []int64, raw []*float64) ([]int64, []float64) {
	n := len(ts)
	if len(raw) < n {
		n = len(raw)
	}
	outTs := make([]int64, n)
	outCl := make([]float64, n)
	copy(outTs, ts[:n])
	for i := 0; i < n; i++ {
		if raw[i] == nil {
			outCl[i] = math.NaN()
			continue
		}
		outCl[i] = *raw[i]
	}
	return outTs, outCl
}

// firstPriced returns the index of the first non-NaN price, or len(prices)
// when there is none.
func firstPriced(prices []float64) int {
	for i, p := range prices {
		if !math.IsNaN(p) {
			return i
		}
	}
	return len(prices)
}

// checkSeries returns a reason when prices cannot produce defined simple returns.
func checkSeries(prices []float64, rows int) string {
	if len(prices) != rows {
		return "price column does not match the date index"
	}
	if rows < 2 {
		return "fewer than 2 rows of history"
	}
	for _, p := range prices {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return "missing price (gap) in history"
		}
		if p <= 0 {
			return "non-positive price in history"
		}
	}
	return ""
}
