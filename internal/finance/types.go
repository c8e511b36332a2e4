package finance

import (
	"time"
)

// yahooChartResp mirrors Yahoo v8 chart response (trimmed to needed fields).
// Prices are pointers because Yahoo emits null for bars it has no quote for.
type yahooChartResp struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol               string `json:"symbol"`
				ExchangeTimezoneName string `json:"exchangeTimezoneName"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// assetSeries is one symbol's raw daily bars before alignment.
type assetSeries struct {
	symbol string
	loc    *time.Location
	ts     []int64
	cl     []float64 // NaN marks a missing bar
}

// Price cache entry
type priceCacheEntry struct {
	createdAt time.Time
	expiresAt time.Time
	table     *PriceTable
}

const defaultPriceCacheTTL = 15 * time.Minute
