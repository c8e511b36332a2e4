package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riskToleranceBot/internal/assessment"
	"riskToleranceBot/internal/finance"
	"riskToleranceBot/internal/metrics"
)

var testNow = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func fixtureSource() *finance.StaticSource {
	const n = 20
	dates := make([]time.Time, n)
	for i := range dates {
		dates[i] = testNow.AddDate(0, 0, i-n+1)
	}
	closes := map[string][]float64{}
	for j, sym := range []string{"SPY", "BND", "SHV", finance.BenchmarkSymbol} {
		col := make([]float64, n)
		for i := range col {
			col[i] = 50 + float64(j*10) + float64(i%3) + float64(i)*0.2
		}
		closes[sym] = col
	}
	return finance.NewStaticSource(dates, closes)
}

type brokenSource struct{}

func (brokenSource) FetchAdjustedClose(context.Context, []string, finance.DateWindow) (*finance.PriceTable, error) {
	return nil, &finance.DataUnavailableError{Symbol: "SPY", Err: errors.New("timeout")}
}

func newTestServer(src finance.PriceSource) (http.Handler, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	svc := assessment.NewService(src, assessment.WithRecorder(metrics.New(reg)))
	api := NewAPI(svc)
	api.now = func() time.Time { return testNow }
	webhook := func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusAccepted) }
	return New(api, webhook, reg), reg
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var out map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec, out
}

func TestOpsRoutes(t *testing.T) {
	h, _ := newTestServer(fixtureSource())

	rec, _ := do(t, h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(t, h, http.MethodPost, "/telegram/webhook", "{}")
	assert.Equal(t, http.StatusAccepted, rec.Code)

	// touch a collector so the registry has something to expose
	_, _ = do(t, h, http.MethodPost, "/api/v1/assess", `{"answers":[1,1,1,1,1,1,1,1,1,1]}`)
	rec, _ = do(t, h, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "risk_assessments_total")
}

func TestQuestionsAndCatalog(t *testing.T) {
	h, _ := newTestServer(fixtureSource())

	rec, _ := do(t, h, http.MethodGet, "/api/v1/questions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var qs []questionJSON
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &qs))
	require.Len(t, qs, 10)
	assert.Len(t, qs[1].Options, 5)
	assert.Equal(t, "Less than 1 year", qs[1].Options[0])

	rec, _ = do(t, h, http.MethodGet, "/api/v1/catalog", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var tiers []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tiers))
	require.Len(t, tiers, 5)
	assert.Equal(t, "Aggressive", tiers[4]["tier"])
}

func TestAssess(t *testing.T) {
	h, _ := newTestServer(fixtureSource())

	rec, out := do(t, h, http.MethodPost, "/api/v1/assess", `{"answers":[5,5,5,5,5,5,5,5,5,5]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Aggressive", out["tier"])
	assert.Equal(t, 50.0, out["score"])
	assert.Equal(t, map[string]any{"stocks": 90.0, "bonds": 5.0, "cash": 5.0}, out["macro_allocation"])
}

func TestAssessIncomplete(t *testing.T) {
	h, _ := newTestServer(fixtureSource())

	rec, out := do(t, h, http.MethodPost, "/api/v1/assess", `{"answers":[1,0,1,1,1,1,1,1,0,1]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "incomplete_answers", out["error"])
	assert.Equal(t, []any{2.0, 9.0}, out["missing"])
}

func TestAssessValidation(t *testing.T) {
	h, _ := newTestServer(fixtureSource())

	rec, out := do(t, h, http.MethodPost, "/api/v1/assess", `{"answers":[1,2,3]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_request", out["error"])

	rec, _ = do(t, h, http.MethodPost, "/api/v1/assess", `{"answers":[1,1,1,1,1,1,1,1,1,9]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, h, http.MethodPost, "/api/v1/assess", `{`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSimulateByAnswers(t *testing.T) {
	h, _ := newTestServer(fixtureSource())

	rec, out := do(t, h, http.MethodPost, "/api/v1/simulate", `{"answers":[1,1,1,1,1,1,1,1,1,1]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	m := out["metrics"].(map[string]any)
	assert.Equal(t, 10000.0, m["initial_investment"])
	assert.Len(t, m["values"], 19)
	assert.NotEmpty(t, out["run_id"])
	assert.NotNil(t, out["benchmark"])
}

func TestSimulateByTier(t *testing.T) {
	h, _ := newTestServer(fixtureSource())

	rec, out := do(t, h, http.MethodPost, "/api/v1/simulate",
		`{"tier":"conservative","horizon":"Less than 1 year","investment":2500}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 2500.0, out["metrics"].(map[string]any)["initial_investment"])

	rec, out = do(t, h, http.MethodPost, "/api/v1/simulate", `{"tier":"reckless"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, out["message"], "unknown risk tier")

	rec, _ = do(t, h, http.MethodPost, "/api/v1/simulate", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSimulateInvestmentFloor(t *testing.T) {
	h, _ := newTestServer(fixtureSource())
	rec, out := do(t, h, http.MethodPost, "/api/v1/simulate", `{"tier":"Moderate","investment":999}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	fields := out["fields"].([]any)
	assert.Equal(t, "ERR_GTE", fields[0].(map[string]any)["code"])
}

func TestSimulateErrorMapping(t *testing.T) {
	h, _ := newTestServer(brokenSource{})
	rec, out := do(t, h, http.MethodPost, "/api/v1/simulate", `{"tier":"Aggressive"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "unavailable", out["error"])
	assert.Equal(t, "SPY", out["symbol"])
	assert.Nil(t, out["metrics"])

	h, _ = newTestServer(fixtureSource())
	// Moderate holds AAPL and MSFT, which the fixture lacks
	rec, out = do(t, h, http.MethodPost, "/api/v1/simulate", `{"tier":"Moderate","horizon":"Less than 1 year"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "AAPL", out["symbol"])
}

func TestWriteErrorInsufficientData(t *testing.T) {
	h, _ := newTestServer(shortSource{})
	rec, out := do(t, h, http.MethodPost, "/api/v1/simulate", `{"tier":"Conservative","horizon":"Less than 1 year"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "insufficient_data", out["error"])
	assert.Equal(t, "SPY", out["symbol"])
}

type shortSource struct{}

func (shortSource) FetchAdjustedClose(_ context.Context, symbols []string, w finance.DateWindow) (*finance.PriceTable, error) {
	closes := map[string][]float64{}
	for _, s := range symbols {
		closes[s] = []float64{100}
	}
	return finance.NewPriceTable(w, []time.Time{testNow}, closes, symbols...)
}
