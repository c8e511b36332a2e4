package telegram

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"riskToleranceBot/internal/assessment"
	"riskToleranceBot/internal/finance"
	"riskToleranceBot/internal/metrics"
	"riskToleranceBot/internal/questionnaire"
	"riskToleranceBot/internal/storage"
)

var (
	reHelp     = regexp.MustCompile(`^/(help|start)(?:@[\w_]+)?$`)
	reAssess   = regexp.MustCompile(`^/assess(?:@[\w_]+)?$`)
	reResult   = regexp.MustCompile(`^/result(?:@[\w_]+)?$`)
	reSimulate = regexp.MustCompile(`^/simulate(?:@[\w_]+)?$`)
	reExplain  = regexp.MustCompile(`^/explain(?:@[\w_]+)?$`)
	// /invest AMOUNT, e.g. /invest 25000 or /invest $25,000
	reInvest = regexp.MustCompile(`^/invest(?:@[\w_]+)?(?:\s+\$?([0-9][0-9,]*(?:\.[0-9]+)?))?$`)
	// callback data: q:<question index>:<choice>
	reAnswer = regexp.MustCompile(`^q:(\d+):([1-5])$`)
)

// Sender is the part of the Bot API the handlers use.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Explainer comments on a finished backtest.
type Explainer interface {
	Explain(ctx context.Context, r *assessment.Report) (string, error)
}

type Deps struct {
	Store    *storage.Store
	Service  *assessment.Service
	Advisor  Explainer // nil disables /explain
	Recorder *metrics.Recorder
	// SimulateTimeout bounds a whole /simulate run. Zero means one minute.
	SimulateTimeout time.Duration
}

type Handlers struct {
	api       Sender
	store     *storage.Store
	svc       *assessment.Service
	advisor   Explainer
	rec       *metrics.Recorder
	questions []questionnaire.Question
	timeout   time.Duration
	now       func() time.Time
}

func NewHandlers(api Sender, d Deps) *Handlers {
	timeout := d.SimulateTimeout
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &Handlers{
		api:       api,
		store:     d.Store,
		svc:       d.Service,
		advisor:   d.Advisor,
		rec:       d.Recorder,
		questions: d.Service.Questions(),
		timeout:   timeout,
		now:       time.Now,
	}
}

func (h *Handlers) HandleMessage(m *tgbotapi.Message) {
	if m.Chat == nil {
		return
	}
	chatID := m.Chat.ID
	txt := strings.TrimSpace(m.Text)
	switch {
	case reHelp.MatchString(txt):
		h.rec.RecordCommand("help")
		h.handleHelp(chatID)

	case reAssess.MatchString(txt):
		h.rec.RecordCommand("assess")
		h.handleAssess(chatID)

	case reResult.MatchString(txt):
		h.rec.RecordCommand("result")
		h.handleResult(chatID)

	case reInvest.MatchString(txt):
		h.rec.RecordCommand("invest")
		g := reInvest.FindStringSubmatch(txt)
		h.handleInvest(chatID, g[1])

	case reSimulate.MatchString(txt):
		h.rec.RecordCommand("simulate")
		h.handleSimulate(chatID)

	case reExplain.MatchString(txt):
		h.rec.RecordCommand("explain")
		h.handleExplain(chatID)
	}
}

// HandleCallback records an answer picked from a question's inline keyboard.
func (h *Handlers) HandleCallback(q *tgbotapi.CallbackQuery) {
	if q.Message == nil || q.Message.Chat == nil {
		return
	}
	chatID := q.Message.Chat.ID
	g := reAnswer.FindStringSubmatch(q.Data)
	if g == nil {
		h.ack(q.ID, "")
		return
	}
	idx, _ := strconv.Atoi(g[1])
	choice, _ := strconv.Atoi(g[2])

	sess, err := h.store.SetAnswer(chatID, len(h.questions), idx, questionnaire.Choice(choice))
	if err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("telegram: save answer failed")
		h.ack(q.ID, "Could not save that answer")
		return
	}
	h.ack(q.ID, "Saved: "+h.questions[idx].Label(questionnaire.Choice(choice)))

	if next := sess.Answers.NextUnanswered(); next >= 0 {
		h.sendQuestion(chatID, next)
		return
	}
	h.reply(chatID, "All questions answered. Send /result to see your risk profile.")
}

func (h *Handlers) handleHelp(chatID int64) {
	help := "Commands\n\n" +
		"- /assess - Start the 10-question risk tolerance questionnaire\n" +
		"- /result - Show your risk tier, description and recommended allocation\n" +
		fmt.Sprintf("- /invest AMOUNT - Set the initial investment (min %s, default %s)\n",
			assessment.FormatMoney(assessment.MinInvestment), assessment.FormatMoney(assessment.DefaultInvestment)) +
		"- /simulate - Backtest the recommended portfolio against the S&P 500\n"
	if h.advisor != nil {
		help += "- /explain - Plain-language commentary on your simulation\n"
	}
	help += "\nThe backtest window follows your investment horizon answer. Past performance does not predict future results."
	h.reply(chatID, help)
}

func (h *Handlers) handleAssess(chatID int64) {
	if _, err := h.store.ResetAnswers(chatID, len(h.questions)); err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("telegram: reset answers failed")
		h.reply(chatID, "Could not start the questionnaire, please try again.")
		return
	}
	h.sendQuestion(chatID, 0)
}

func (h *Handlers) sendQuestion(chatID int64, idx int) {
	q := h.questions[idx]
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(q.Options))
	for i, o := range q.Options {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(o, fmt.Sprintf("q:%d:%d", idx, i+1)),
		))
	}
	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("Question %d/%d\n\n%s", idx+1, len(h.questions), q.Prompt))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	h.send(msg)
}

// profile scores the chat's stored answers. ok is false when a reply was already sent.
func (h *Handlers) profile(chatID int64) (*assessment.Profile, *storage.Session, bool) {
	sess, err := h.store.Session(chatID, len(h.questions))
	if err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("telegram: load session failed")
		h.reply(chatID, "Could not load your answers, please try again.")
		return nil, nil, false
	}
	p, err := h.svc.Assess(sess.Answers, h.now())
	if err != nil {
		msg := assessment.UserMessage(err)
		if errors.Is(err, questionnaire.ErrIncompleteAnswers) {
			msg += " Send /assess to start."
		}
		h.reply(chatID, msg)
		return nil, nil, false
	}
	return p, sess, true
}

func (h *Handlers) handleResult(chatID int64) {
	p, _, ok := h.profile(chatID)
	if !ok {
		return
	}
	h.replyMarkdown(chatID, assessment.FormatProfile(p))

	img, err := finance.MacroPieChart("Recommended Asset Allocation", p.Macro)
	if err != nil {
		log.Warn().Err(err).Msg("telegram: pie chart failed")
		return
	}
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "allocation.png", Bytes: img})
	photo.Caption = p.Tier.String() + " • Stocks/Bonds/Cash"
	h.send(photo)
}

func (h *Handlers) handleInvest(chatID int64, amount string) {
	if amount == "" {
		h.reply(chatID, "Usage: /invest 25000")
		return
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(amount, ",", ""), 64)
	if err == nil {
		_, err = assessment.ValidateInvestment(v)
	}
	if err != nil || v == 0 {
		h.reply(chatID, fmt.Sprintf("The initial investment must be at least %s.", assessment.FormatMoney(assessment.MinInvestment)))
		return
	}
	if err := h.store.SetInvestment(chatID, len(h.questions), v); err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("telegram: save investment failed")
		h.reply(chatID, "Could not save the amount, please try again.")
		return
	}
	h.reply(chatID, "Initial investment set to "+assessment.FormatMoney(v)+". Send /simulate to run the backtest.")
}

func (h *Handlers) runSimulation(chatID int64) (*assessment.Report, bool) {
	p, sess, ok := h.profile(chatID)
	if !ok {
		return nil, false
	}
	h.reply(chatID, "Running simulation…")
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()
	r, err := h.svc.Simulate(ctx, p, sess.Investment)
	if err != nil {
		h.reply(chatID, assessment.UserMessage(err))
		return nil, false
	}
	return r, true
}

func (h *Handlers) handleSimulate(chatID int64) {
	r, ok := h.runSimulation(chatID)
	if !ok {
		return
	}
	h.replyMarkdown(chatID, assessment.FormatReport(r))

	img, err := finance.PerformanceChart("Simulated Portfolio Performance", r.Metrics, r.Benchmark)
	if err != nil {
		log.Warn().Err(err).Str("run_id", r.RunID).Msg("telegram: performance chart failed")
		return
	}
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "performance.png", Bytes: img})
	photo.Caption = "Portfolio value vs S&P 500 • " + assessment.FormatMoney(r.Metrics.InitialInvestment) + " start"
	h.send(photo)
}

func (h *Handlers) handleExplain(chatID int64) {
	if h.advisor == nil {
		h.reply(chatID, "Commentary is not configured on this bot.")
		return
	}
	r, ok := h.runSimulation(chatID)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 45*time.Second)
	defer cancel()
	out, err := h.advisor.Explain(ctx, r)
	if err != nil {
		log.Error().Err(err).Str("run_id", r.RunID).Msg("telegram: explain failed")
		h.reply(chatID, "Commentary failed, please try again later.")
		return
	}
	h.replyMarkdown(chatID, out)
}

func (h *Handlers) ack(callbackID, text string) {
	if _, err := h.api.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		log.Warn().Err(err).Msg("telegram: callback ack failed")
	}
}

func (h *Handlers) send(c tgbotapi.Chattable) {
	if _, err := h.api.Send(c); err != nil {
		log.Warn().Err(err).Msg("telegram: send failed")
	}
}

func (h *Handlers) reply(chatID int64, text string) {
	h.send(tgbotapi.NewMessage(chatID, text))
}

func (h *Handlers) replyMarkdown(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"
	h.send(msg)
}
