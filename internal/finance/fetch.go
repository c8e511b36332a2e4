package finance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

const (
	yahooUserAgent  = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15"
	BenchmarkSymbol = "^GSPC"
)

var errSymbolNotFound = errors.New("symbol not found")

// YahooSource fetches daily adjusted closes from the Yahoo v8 chart API.
type YahooSource struct {
	client   *http.Client
	hosts    []string
	backoffs []time.Duration
	timeout  time.Duration
	limiter  *rate.Limiter
	breaker  *gobreaker.CircuitBreaker
}

type YahooOption func(*YahooSource)

// WithYahooHosts replaces the base URLs tried in order on every attempt.
func WithYahooHosts(hosts ...string) YahooOption {
	return func(y *YahooSource) { y.hosts = hosts }
}

// WithYahooTimeout bounds one FetchAdjustedClose call, retries included.
func WithYahooTimeout(d time.Duration) YahooOption {
	return func(y *YahooSource) { y.timeout = d }
}

// WithYahooBackoffs sets the sleeps between retry rounds; nil disables retries.
func WithYahooBackoffs(b []time.Duration) YahooOption {
	return func(y *YahooSource) { y.backoffs = b }
}

// WithYahooRateLimit caps requests per second across all symbols.
func WithYahooRateLimit(perSecond float64, burst int) YahooOption {
	return func(y *YahooSource) { y.limiter = rate.NewLimiter(rate.Limit(perSecond), burst) }
}

func WithYahooHTTPClient(c *http.Client) YahooOption {
	return func(y *YahooSource) { y.client = c }
}

func NewYahooSource(opts ...YahooOption) *YahooSource {
	y := &YahooSource{
		client:   http.DefaultClient,
		hosts:    []string{"https://query1.finance.yahoo.com", "https://query2.finance.yahoo.com"},
		backoffs: []time.Duration{200 * time.Millisecond, 500 * time.Millisecond, 1 * time.Second},
		timeout:  20 * time.Second,
		limiter:  rate.NewLimiter(rate.Limit(4), 2),
	}
	for _, o := range opts {
		o(y)
	}
	st := gobreaker.Settings{Name: "yahoo"}
	st.Interval = 60 * time.Second
	st.Timeout = 30 * time.Second
	st.ReadyToTrip = func(counts gobreaker.Counts) bool {
		return counts.ConsecutiveFailures >= 5
	}
	st.IsSuccessful = func(err error) bool {
		return err == nil || errors.Is(err, errSymbolNotFound) || errors.Is(err, errNoRows) || errors.Is(err, context.Canceled)
	}
	st.OnStateChange = func(name string, from, to gobreaker.State) {
		log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("yahoo: circuit breaker state change")
	}
	y.breaker = gobreaker.NewCircuitBreaker(st)
	return y
}

// FetchAdjustedClose fetches every symbol over the window and aligns them by trading day.
func (y *YahooSource) FetchAdjustedClose(ctx context.Context, symbols []string, window DateWindow) (*PriceTable, error) {
	if len(symbols) == 0 {
		return nil, &DataUnavailableError{Err: errors.New("no symbols requested")}
	}
	ctx, cancel := context.WithTimeout(ctx, y.timeout)
	defer cancel()

	series := make([]assetSeries, 0, len(symbols))
	for _, sym := range symbols {
		s, err := y.fetchDailySeries(ctx, sym, window)
		if err != nil {
			return nil, &DataUnavailableError{Symbol: sym, Err: err}
		}
		series = append(series, s)
	}
	table, err := alignSeries(window, series)
	if err != nil {
		return nil, &DataUnavailableError{Err: err}
	}
	return table, nil
}

// fetchDailySeries walks the host list, retrying with backoff until one
// host answers with a usable chart or the context expires.
func (y *YahooSource) fetchDailySeries(ctx context.Context, symbol string, window DateWindow) (assetSeries, error) {
	var lastErr error
	for attempt := 0; attempt < len(y.backoffs)+1; attempt++ {
		for _, host := range y.hosts {
			if err := y.limiter.Wait(ctx); err != nil {
				return assetSeries{}, err
			}
			out, err := y.breaker.Execute(func() (interface{}, error) {
				return y.fetchOnce(ctx, host, symbol, window)
			})
			if err == nil {
				return out.(assetSeries), nil
			}
			lastErr = err
			if errors.Is(err, errSymbolNotFound) || errors.Is(err, errNoRows) || ctx.Err() != nil {
				return assetSeries{}, err
			}
			log.Debug().Str("symbol", symbol).Str("host", host).Int("attempt", attempt+1).Err(err).Msg("yahoo: fetch failed")
		}
		if attempt < len(y.backoffs) {
			select {
			case <-ctx.Done():
				return assetSeries{}, fmt.Errorf("%w (last error: %v)", ctx.Err(), lastErr)
			case <-time.After(y.backoffs[attempt]):
			}
		}
	}
	return assetSeries{}, lastErr
}

func (y *YahooSource) fetchOnce(ctx context.Context, host, symbol string, window DateWindow) (assetSeries, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?period1=%d&period2=%d&interval=1d&events=div,splits&includeAdjustedClose=true",
		strings.TrimRight(host, "/"), url.PathEscape(symbol), window.Start.Unix(), window.End.Unix())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return assetSeries{}, err
	}
	req.Header.Set("User-Agent", yahooUserAgent)
	req.Header.Set("Accept", "application/json, text/javascript, */*; q=0.01")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Referer", fmt.Sprintf("https://finance.yahoo.com/quote/%s/history", strings.ToUpper(symbol)))

	resp, err := y.client.Do(req)
	if err != nil {
		return assetSeries{}, err
	}
	body, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	if readErr != nil {
		return assetSeries{}, fmt.Errorf("failed to read yahoo response: %w", readErr)
	}
	if resp.StatusCode == http.StatusTooManyRequests || strings.HasPrefix(string(body), "Edge: Too Many Requests") {
		return assetSeries{}, fmt.Errorf("yahoo %s returned 429: Edge: Too Many Requests", host)
	}
	if resp.StatusCode == http.StatusNotFound {
		return assetSeries{}, fmt.Errorf("%w: %s", errSymbolNotFound, symbol)
	}
	if resp.StatusCode != http.StatusOK {
		return assetSeries{}, fmt.Errorf("yahoo %s returned %d: %s", host, resp.StatusCode, preview(body))
	}
	if strings.HasPrefix(string(body), "<") || strings.HasPrefix(string(body), "Edge:") {
		return assetSeries{}, fmt.Errorf("yahoo returned non-json body: %s", preview(body))
	}

	var yc yahooChartResp
	if err := json.Unmarshal(body, &yc); err != nil {
		return assetSeries{}, fmt.Errorf("failed to parse yahoo json: %v; body: %s", err, preview(body))
	}
	if yc.Chart.Error != nil {
		return assetSeries{}, fmt.Errorf("%w: %s: %s", errSymbolNotFound, yc.Chart.Error.Code, yc.Chart.Error.Description)
	}
	return seriesFromChart(symbol, &yc)
}

// seriesFromChart prefers the adjclose indicator and keeps nulls as NaN gaps.
func seriesFromChart(symbol string, yc *yahooChartResp) (assetSeries, error) {
	if len(yc.Chart.Result) == 0 {
		return assetSeries{}, errNoRows
	}
	r := yc.Chart.Result[0]
	var raw []*float64
	switch {
	case len(r.Indicators.AdjClose) > 0 && len(r.Indicators.AdjClose[0].AdjClose) > 0:
		raw = r.Indicators.AdjClose[0].AdjClose
	case len(r.Indicators.Quote) > 0:
		raw = r.Indicators.Quote[0].Close
	}
	ts, cl := cleanSeries(r.Timestamp, raw)
	if !hasPrice(cl) {
		return assetSeries{}, errNoRows
	}
	return assetSeries{symbol: symbol, loc: exchangeLocation(r.Meta.ExchangeTimezoneName), ts: ts, cl: cl}, nil
}

func hasPrice(cl []float64) bool {
	for _, v := range cl {
		if !math.IsNaN(v) {
			return true
		}
	}
	return false
}

func preview(body []byte) string {
	s := string(body)
	if len(s) > 120 {
		s = s[:120]
	}
	return s
}
