package finance

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// PriceSource returns adjusted closing prices for symbols over a window.
type PriceSource interface {
	FetchAdjustedClose(ctx context.Context, symbols []string, window DateWindow) (*PriceTable, error)
}

var errNoRows = errors.New("no rows returned")

const dateLayout = "2006-01-02"

// alignSeries builds a price table on the union of the series' trading dates.
// A symbol without a bar on one of those dates gets NaN there.
func alignSeries(window DateWindow, series []assetSeries) (*PriceTable, error) {
	if len(series) == 0 {
		return nil, fmt.Errorf("no series to align")
	}

	byDay := make([]map[string]float64, len(series))
	days := map[string]time.Time{}
	for i, s := range series {
		loc := s.loc
		if loc == nil {
			loc = exchangeLocation("")
		}
		byDay[i] = make(map[string]float64, len(s.ts))
		for j, ts := range s.ts {
			if j >= len(s.cl) {
				break
			}
			day := tradingDay(ts, loc)
			key := day.Format(dateLayout)
			// later bars for the same day replace earlier ones
			byDay[i][key] = s.cl[j]
			days[key] = day
		}
	}

	keys := make([]string, 0, len(days))
	for k := range days {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	table := &PriceTable{
		Window: window,
		Dates:  make([]time.Time, len(keys)),
		Close:  make(map[string][]float64, len(series)),
	}
	for i, k := range keys {
		table.Dates[i] = days[k]
	}
	for i, s := range series {
		col := make([]float64, len(keys))
		for j, k := range keys {
			if v, ok := byDay[i][k]; ok {
				col[j] = v
			} else {
				col[j] = math.NaN()
			}
		}
		table.Symbols = append(table.Symbols, s.symbol)
		table.Close[s.symbol] = col
	}
	return table, nil
}

// NewPriceTable builds a table from dated price columns that share one date axis.
func NewPriceTable(window DateWindow, dates []time.Time, closes map[string][]float64, symbols ...string) (*PriceTable, error) {
	if len(symbols) == 0 {
		for s := range closes {
			symbols = append(symbols, s)
		}
		sort.Strings(symbols)
	}
	t := &PriceTable{Window: window, Dates: append([]time.Time(nil), dates...), Close: map[string][]float64{}}
	for _, s := range symbols {
		col, ok := closes[s]
		if !ok {
			return nil, fmt.Errorf("no prices for %s", s)
		}
		if len(col) != len(dates) {
			return nil, fmt.Errorf("%s has %d prices for %d dates", s, len(col), len(dates))
		}
		t.Symbols = append(t.Symbols, s)
		t.Close[s] = append([]float64(nil), col...)
	}
	return t, nil
}

// StaticSource serves prices from memory. It backs tests and offline runs.
type StaticSource struct {
	dates  []time.Time
	closes map[string][]float64
}

// NewStaticSource returns a source over one shared, ascending date axis.
func NewStaticSource(dates []time.Time, closes map[string][]float64) *StaticSource {
	return &StaticSource{dates: dates, closes: closes}
}

// FetchAdjustedClose returns the rows whose dates fall inside the window.
func (s *StaticSource) FetchAdjustedClose(ctx context.Context, symbols []string, window DateWindow) (*PriceTable, error) {
	if err := ctx.Err(); err != nil {
		return nil, &DataUnavailableError{Err: err}
	}
	lo := dayStart(window.Start)
	hi := dayStart(window.End)
	var idx []int
	for i, d := range s.dates {
		d = dayStart(d)
		if !d.Before(lo) && !d.After(hi) {
			idx = append(idx, i)
		}
	}
	dates := make([]time.Time, len(idx))
	for j, i := range idx {
		dates[j] = s.dates[i]
	}
	closes := make(map[string][]float64, len(symbols))
	for _, sym := range symbols {
		col, ok := s.closes[sym]
		if !ok || len(idx) == 0 {
			return nil, &DataUnavailableError{Symbol: sym, Err: errNoRows}
		}
		out := make([]float64, len(idx))
		for j, i := range idx {
			out[j] = col[i]
		}
		closes[sym] = out
	}
	return NewPriceTable(window, dates, closes, symbols...)
}

// LoadPriceCSV reads a "date,SYM1,SYM2,..." file. Empty cells become gaps.
func LoadPriceCSV(r io.Reader) (*StaticSource, error) {
	rd := csv.NewReader(r)
	rd.TrimLeadingSpace = true
	rows, err := rd.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read price csv: %w", err)
	}
	if len(rows) < 2 || len(rows[0]) < 2 {
		return nil, fmt.Errorf("price csv needs a header and at least one row")
	}
	header := rows[0]
	closes := make(map[string][]float64, len(header)-1)
	var dates []time.Time
	for n, row := range rows[1:] {
		d, err := time.Parse(dateLayout, strings.TrimSpace(row[0]))
		if err != nil {
			return nil, fmt.Errorf("price csv line %d: %w", n+2, err)
		}
		if len(dates) > 0 && !d.After(dates[len(dates)-1]) {
			return nil, fmt.Errorf("price csv line %d: dates must be ascending", n+2)
		}
		dates = append(dates, d)
		for c := 1; c < len(header); c++ {
			sym := strings.ToUpper(strings.TrimSpace(header[c]))
			v := math.NaN()
			if c < len(row) && strings.TrimSpace(row[c]) != "" {
				v, err = strconv.ParseFloat(strings.TrimSpace(row[c]), 64)
				if err != nil {
					return nil, fmt.Errorf("price csv line %d, %s: %w", n+2, sym, err)
				}
			}
			closes[sym] = append(closes[sym], v)
		}
	}
	return NewStaticSource(dates, closes), nil
}
