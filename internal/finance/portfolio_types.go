package finance

import (
	"encoding/json"
	"math"
	"time"
)

// DateWindow is the historical lookback used for a backtest.
type DateWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Days returns the number of calendar days between Start and End, ignoring time of day.
func (w DateWindow) Days() int {
	return daysBetween(w.Start, w.End)
}

// Years returns the elapsed window length in years of 365.25 days.
func (w DateWindow) Years() float64 {
	return float64(w.Days()) / 365.25
}

func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}

// PriceTable holds adjusted closing prices by date (ascending) and symbol.
// A NaN entry marks a date the symbol has no price for.
type PriceTable struct {
	Window  DateWindow
	Dates   []time.Time
	Symbols []string
	Close   map[string][]float64
}

// Series returns the price column for symbol.
func (t *PriceTable) Series(symbol string) ([]float64, bool) {
	if t == nil {
		return nil, false
	}
	s, ok := t.Close[symbol]
	return s, ok
}

// Clone returns a deep copy of t.
func (t *PriceTable) Clone() *PriceTable {
	if t == nil {
		return nil
	}
	out := &PriceTable{
		Window:  t.Window,
		Dates:   append([]time.Time(nil), t.Dates...),
		Symbols: append([]string(nil), t.Symbols...),
		Close:   make(map[string][]float64, len(t.Close)),
	}
	for k, v := range t.Close {
		out.Close[k] = append([]float64(nil), v...)
	}
	return out
}

type priceTableJSON struct {
	Window  DateWindow            `json:"window"`
	Dates   []time.Time           `json:"dates"`
	Symbols []string              `json:"symbols"`
	Close   map[string][]*float64 `json:"close"`
}

// MarshalJSON encodes gaps as null since JSON has no NaN.
func (t *PriceTable) MarshalJSON() ([]byte, error) {
	out := priceTableJSON{Window: t.Window, Dates: t.Dates, Symbols: t.Symbols, Close: make(map[string][]*float64, len(t.Close))}
	for sym, col := range t.Close {
		ptrs := make([]*float64, len(col))
		for i, v := range col {
			if !math.IsNaN(v) {
				v := v
				ptrs[i] = &v
			}
		}
		out.Close[sym] = ptrs
	}
	return json.Marshal(out)
}

func (t *PriceTable) UnmarshalJSON(b []byte) error {
	var in priceTableJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	t.Window, t.Dates, t.Symbols = in.Window, in.Dates, in.Symbols
	t.Close = make(map[string][]float64, len(in.Close))
	for sym, ptrs := range in.Close {
		col := make([]float64, len(ptrs))
		for i, p := range ptrs {
			if p == nil {
				col[i] = math.NaN()
			} else {
				col[i] = *p
			}
		}
		t.Close[sym] = col
	}
	return nil
}

// Ratio is a statistic that may be undefined for the input, e.g. when its
// denominator is zero. Undefined ratios encode as JSON null.
type Ratio struct {
	Value float64
	Valid bool
}

func defined(v float64) Ratio {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Ratio{}
	}
	return Ratio{Value: v, Valid: true}
}

func (r Ratio) MarshalJSON() ([]byte, error) {
	if !r.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(r.Value)
}

func (r *Ratio) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*r = Ratio{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*r = defined(v)
	return nil
}

// Metrics is the outcome of one portfolio backtest.
type Metrics struct {
	InitialInvestment float64     `json:"initial_investment"`
	FinalValue        float64     `json:"final_value"`
	Years             float64     `json:"years"`
	AnnualizedReturn  float64     `json:"annualized_return"`
	Volatility        Ratio       `json:"volatility"`
	SharpeRatio       Ratio       `json:"sharpe_ratio"`
	Beta              Ratio       `json:"beta"`
	TreynorRatio      Ratio       `json:"treynor_ratio"`
	MaxDrawdown       float64     `json:"max_drawdown"`
	Dates             []time.Time `json:"dates"`
	PortfolioReturns  []float64   `json:"portfolio_returns"`
	Values            []float64   `json:"values"`
}

// BenchmarkResult is the growth of the same investment in the benchmark index.
type BenchmarkResult struct {
	Symbol           string      `json:"symbol"`
	AnnualizedReturn float64     `json:"annualized_return"`
	FinalValue       float64     `json:"final_value"`
	Dates            []time.Time `json:"dates"`
	Values           []float64   `json:"values"`
}
