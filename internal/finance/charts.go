package finance

import (
	"errors"
	"fmt"
	"time"

	"github.com/vicanso/go-charts/v2"

	"riskToleranceBot/internal/allocation"
)

// MacroPieChart renders the stocks/bonds/cash split for a tier as a PNG.
func MacroPieChart(title string, macro allocation.MacroAllocation) ([]byte, error) {
	labels := macro.Labels()
	raw := macro.Values()
	values := make([]float64, 0, len(raw))
	legend := make([]string, 0, len(raw))
	for i, v := range raw {
		if v <= 0 {
			continue
		}
		values = append(values, float64(v))
		legend = append(legend, fmt.Sprintf("%s (%d%%)", labels[i], v))
	}
	if len(values) == 0 {
		return nil, errors.New("empty allocation")
	}

	p, err := charts.PieRender(
		values,
		charts.TitleTextOptionFunc(title),
		charts.LegendOptionFunc(charts.LegendOption{
			Data: legend,
			Top:  charts.PositionBottom,
		}),
		charts.ThemeOptionFunc(charts.ThemeLight),
		charts.WidthOptionFunc(800),
		charts.HeightOptionFunc(600),
	)
	if err != nil {
		return nil, err
	}
	return p.Bytes()
}

// PerformanceChart plots the portfolio value series against the benchmark on
// the dates both have. benchmark may be nil.
func PerformanceChart(title string, m *Metrics, benchmark *BenchmarkResult) ([]byte, error) {
	if m == nil || len(m.Values) < 2 {
		return nil, errors.New("not enough data points")
	}

	portfolio := make(map[time.Time]float64, len(m.Dates))
	for i, d := range m.Dates {
		portfolio[d] = m.Values[i]
	}

	var dates []time.Time
	var pv, bv []float64
	if benchmark != nil {
		for i, d := range benchmark.Dates {
			if v, ok := portfolio[d]; ok {
				dates = append(dates, d)
				pv = append(pv, v)
				bv = append(bv, benchmark.Values[i])
			}
		}
	}
	if len(dates) < 2 {
		// no usable overlap, chart the portfolio alone
		benchmark = nil
		dates, pv, bv = m.Dates, m.Values, nil
	}

	labelFmt := "Jan 02"
	if dates[len(dates)-1].Sub(dates[0]) > 370*24*time.Hour {
		labelFmt = "Jan 2006"
	}
	xLabels := make([]string, len(dates))
	for i, d := range dates {
		xLabels[i] = d.Format(labelFmt)
	}

	series := [][]float64{pv}
	names := []string{"Portfolio"}
	if benchmark != nil {
		series = append(series, bv)
		names = append(names, benchmark.Symbol)
	}

	yMin, yMax := pv[0], pv[0]
	for _, s := range series {
		for _, v := range s {
			if v < yMin {
				yMin = v
			}
			if v > yMax {
				yMax = v
			}
		}
	}
	pad := (yMax - yMin) * 0.05
	if pad < yMax*0.002 {
		pad = yMax * 0.002
	}
	yMin -= pad
	if yMin < 0 {
		yMin = 0
	}
	yMax += pad

	p, err := charts.LineRender(
		series,
		charts.TitleTextOptionFunc(title),
		charts.XAxisOptionFunc(charts.XAxisOption{Data: xLabels, BoundaryGap: charts.FalseFlag(), SplitNumber: 8}),
		charts.YAxisOptionFunc(charts.YAxisOption{Min: &yMin, Max: &yMax, DivideCount: 5}),
		charts.LegendOptionFunc(charts.LegendOption{
			Data: names,
			Top:  charts.PositionTop,
		}),
		charts.ThemeOptionFunc(charts.ThemeLight),
		charts.WidthOptionFunc(1000),
		charts.HeightOptionFunc(600),
	)
	if err != nil {
		return nil, err
	}
	return p.Bytes()
}
