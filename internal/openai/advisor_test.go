package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riskToleranceBot/internal/assessment"
	"riskToleranceBot/internal/finance"
	"riskToleranceBot/internal/questionnaire"
)

func sampleReport() *assessment.Report {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return &assessment.Report{
		RunID:   "run-1",
		Profile: assessment.ProfileFor(questionnaire.Moderate, "3 to 5 years", now),
		Metrics: &finance.Metrics{
			InitialInvestment: 10000,
			FinalValue:        14000,
			AnnualizedReturn:  0.07,
			Volatility:        finance.Ratio{Value: 0.12, Valid: true},
			SharpeRatio:       finance.Ratio{Value: 4.2, Valid: true},
			MaxDrawdown:       0.18,
		},
		Benchmark: &finance.BenchmarkResult{Symbol: finance.BenchmarkSymbol, AnnualizedReturn: 0.09},
	}
}

func TestBuildPrompt(t *testing.T) {
	p := buildPrompt(sampleReport())
	assert.Contains(t, p, "Risk tolerance tier: Moderate")
	assert.Contains(t, p, "Investment horizon: 3 to 5 years")
	assert.Contains(t, p, "- SPY 35%")
	assert.Contains(t, p, "Max drawdown: 18.00%")
	assert.Contains(t, p, "Portfolio beta: n/a")
}

func TestExplain(t *testing.T) {
	var gotModel string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"))
		body, _ := io.ReadAll(r.Body)
		var req struct {
			Model string `json:"model"`
		}
		_ = json.Unmarshal(body, &req)
		gotModel = req.Model
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","created":1,"model":"gpt-4o-mini",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"Steady growth. See https://example.com ![chart](x.png)"}}]}`))
	}))
	defer srv.Close()

	a := NewAdvisor("test-key", "", option.WithBaseURL(srv.URL+"/"), option.WithMaxRetries(0))
	out, err := a.Explain(context.Background(), sampleReport())
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", gotModel)
	assert.Equal(t, "Steady growth. See", out)
}

func TestExplainAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	a := NewAdvisor("bad", "gpt-4o-mini", option.WithBaseURL(srv.URL+"/"), option.WithMaxRetries(0))
	_, err := a.Explain(context.Background(), sampleReport())
	assert.ErrorContains(t, err, "OpenAI API error")
}

func TestSanitizeReply(t *testing.T) {
	assert.Equal(t, "hello", sanitizeReply("  hello http://x.y/z "))
	long := strings.Repeat("a", maxReplyLen+10)
	assert.Len(t, []rune(sanitizeReply(long)), maxReplyLen+1)
}
