package telegram

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riskToleranceBot/internal/assessment"
	"riskToleranceBot/internal/finance"
	"riskToleranceBot/internal/storage"
)

type fakeSender struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeSender) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.sent {
		if m, ok := c.(tgbotapi.MessageConfig); ok {
			out = append(out, m.Text)
		}
	}
	return out
}

func (f *fakeSender) photos() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.sent {
		if _, ok := c.(tgbotapi.PhotoConfig); ok {
			n++
		}
	}
	return n
}

func (f *fakeSender) last() string {
	t := f.texts()
	if len(t) == 0 {
		return ""
	}
	return t[len(t)-1]
}

func (f *fakeSender) reset() {
	f.mu.Lock()
	f.sent, f.requests = nil, nil
	f.mu.Unlock()
}

type fakeAdvisor struct{}

func (fakeAdvisor) Explain(_ context.Context, r *assessment.Report) (string, error) {
	return "commentary for " + r.Profile.Tier.String(), nil
}

var testNow = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func priceFixture() *finance.StaticSource {
	const n = 30
	dates := make([]time.Time, n)
	closes := map[string][]float64{}
	for i := range dates {
		dates[i] = testNow.AddDate(0, 0, i-n+1)
	}
	for j, sym := range []string{"SPY", "BND", "SHV", finance.BenchmarkSymbol} {
		col := make([]float64, n)
		for i := range col {
			col[i] = 100 + float64(j) + float64(i%4) + float64(i)*0.1
		}
		closes[sym] = col
	}
	return finance.NewStaticSource(dates, closes)
}

func newTestHandlers(t *testing.T, advisor Explainer) (*Handlers, *fakeSender) {
	t.Helper()
	db, err := storage.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, storage.InitSchema(db))

	api := &fakeSender{}
	h := NewHandlers(api, Deps{
		Store:   storage.NewStore(db),
		Service: assessment.NewService(priceFixture()),
		Advisor: advisor,
	})
	h.now = func() time.Time { return testNow }
	return h, api
}

func message(chatID int64, text string) *tgbotapi.Message {
	return &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: chatID}, Text: text}
}

func answer(chatID int64, data string) *tgbotapi.CallbackQuery {
	return &tgbotapi.CallbackQuery{ID: "cb", Data: data, Message: message(chatID, "")}
}

func answerAll(h *Handlers, chatID int64, choice int) {
	for i := 0; i < 10; i++ {
		h.HandleCallback(answer(chatID, fmt.Sprintf("q:%d:%d", i, choice)))
	}
}

func TestAssessSendsKeyboard(t *testing.T) {
	h, api := newTestHandlers(t, nil)
	h.HandleMessage(message(1, "/assess"))

	require.Len(t, api.sent, 1)
	msg := api.sent[0].(tgbotapi.MessageConfig)
	assert.True(t, strings.HasPrefix(msg.Text, "Question 1/10"))
	kb, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, kb.InlineKeyboard, 5)
	assert.Equal(t, "q:0:1", *kb.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, "q:0:5", *kb.InlineKeyboard[4][0].CallbackData)
}

func TestQuestionnaireFlow(t *testing.T) {
	h, api := newTestHandlers(t, nil)
	h.HandleMessage(message(1, "/assess"))

	h.HandleCallback(answer(1, "q:0:1"))
	assert.True(t, strings.HasPrefix(api.last(), "Question 2/10"))
	assert.Len(t, api.requests, 1)

	h.HandleMessage(message(1, "/result"))
	assert.Contains(t, api.last(), "Missing: 2, 3, 4, 5, 6, 7, 8, 9, 10")

	answerAll(h, 1, 1)
	assert.Contains(t, api.last(), "All questions answered")

	api.reset()
	h.HandleMessage(message(1, "/result"))
	require.NotEmpty(t, api.texts())
	assert.Contains(t, api.texts()[0], "Risk tolerance: *Conservative*")
	assert.Contains(t, api.texts()[0], "- Bonds: 70%")
	assert.Equal(t, 1, api.photos())
}

func TestCallbackIgnoresGarbage(t *testing.T) {
	h, api := newTestHandlers(t, nil)
	h.HandleCallback(answer(1, "q:99:1"))
	h.HandleCallback(answer(1, "nonsense"))
	assert.Empty(t, api.texts())
	assert.Len(t, api.requests, 2)
}

func TestInvest(t *testing.T) {
	h, api := newTestHandlers(t, nil)

	h.HandleMessage(message(5, "/invest 500"))
	assert.Contains(t, api.last(), "at least $1,000.00")

	h.HandleMessage(message(5, "/invest"))
	assert.Contains(t, api.last(), "Usage")

	h.HandleMessage(message(5, "/invest $25,000"))
	assert.Contains(t, api.last(), "$25,000.00")

	sess, err := h.store.Session(5, 10)
	require.NoError(t, err)
	assert.Equal(t, 25000.0, sess.Investment)
}

func TestSimulate(t *testing.T) {
	h, api := newTestHandlers(t, nil)
	answerAll(h, 9, 1)
	h.HandleMessage(message(9, "/invest 20000"))
	api.reset()

	h.HandleMessage(message(9, "/simulate"))
	texts := api.texts()
	require.Len(t, texts, 2)
	assert.Equal(t, "Running simulation…", texts[0])
	assert.Contains(t, texts[1], "Initial investment: $20,000.00")
	assert.Contains(t, texts[1], "Annualized return (S&P 500):")
	assert.Equal(t, 1, api.photos())
}

func TestSimulateRequiresAnswers(t *testing.T) {
	h, api := newTestHandlers(t, nil)
	h.HandleMessage(message(3, "/simulate"))
	assert.Contains(t, api.last(), "Please answer all questions first")
	assert.Zero(t, api.photos())
}

func TestExplain(t *testing.T) {
	h, api := newTestHandlers(t, nil)
	h.HandleMessage(message(2, "/explain"))
	assert.Contains(t, api.last(), "not configured")

	h, api = newTestHandlers(t, fakeAdvisor{})
	answerAll(h, 2, 1)
	h.HandleMessage(message(2, "/explain"))
	assert.Equal(t, "commentary for Conservative", api.last())
}

func TestHelpListsCommands(t *testing.T) {
	h, api := newTestHandlers(t, fakeAdvisor{})
	h.HandleMessage(message(1, "/start"))
	assert.Contains(t, api.last(), "/assess")
	assert.Contains(t, api.last(), "/explain")
	assert.Contains(t, api.last(), "min $1,000.00, default $10,000.00")
}

func TestServeUpdateRejectsBadBody(t *testing.T) {
	h, _ := newTestHandlers(t, nil)
	rec := httptest.NewRecorder()
	serveUpdate(h, rec, httptest.NewRequest(http.MethodPost, "/telegram/webhook", strings.NewReader("{")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	serveUpdate(h, rec, httptest.NewRequest(http.MethodPost, "/telegram/webhook", strings.NewReader(`{"update_id":1}`)))
	assert.Equal(t, http.StatusOK, rec.Code)
}
