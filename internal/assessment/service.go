// Package assessment composes scoring, allocation lookup, window resolution and
// the backtest into the two steps a user walks through: assess, then simulate.
package assessment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"riskToleranceBot/internal/allocation"
	"riskToleranceBot/internal/finance"
	"riskToleranceBot/internal/metrics"
	"riskToleranceBot/internal/questionnaire"
)

const (
	MinInvestment     = 1000.0
	DefaultInvestment = 10000.0
)

var ErrInvalidInvestment = errors.New("invalid initial investment")

// Profile is the outcome of a completed questionnaire.
type Profile struct {
	Answers     questionnaire.AnswerSet         `json:"answers"`
	Score       int                             `json:"score"`
	Tier        questionnaire.Tier              `json:"tier"`
	Horizon     string                          `json:"horizon"`
	Macro       allocation.MacroAllocation      `json:"macro_allocation"`
	Instruments allocation.InstrumentAllocation `json:"instrument_allocation"`
	Description string                          `json:"description"`
	Window      finance.DateWindow              `json:"window"`
}

// Report is one backtest of a profile's allocation.
type Report struct {
	RunID     string                   `json:"run_id"`
	Profile   *Profile                 `json:"profile"`
	Metrics   *finance.Metrics         `json:"metrics"`
	Benchmark *finance.BenchmarkResult `json:"benchmark,omitempty"`
	// BenchmarkError is set when the comparison index could not be simulated.
	BenchmarkError string `json:"benchmark_error,omitempty"`
}

type Service struct {
	src       finance.PriceSource
	benchmark string
	rec       *metrics.Recorder
	questions []questionnaire.Question
}

type Option func(*Service)

func WithBenchmark(symbol string) Option { return func(s *Service) { s.benchmark = symbol } }

func WithRecorder(r *metrics.Recorder) Option { return func(s *Service) { s.rec = r } }

func NewService(src finance.PriceSource, opts ...Option) *Service {
	s := &Service{
		src:       src,
		benchmark: finance.BenchmarkSymbol,
		questions: questionnaire.Questions(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Questions returns the questionnaire the service scores against.
func (s *Service) Questions() []questionnaire.Question {
	return append([]questionnaire.Question(nil), s.questions...)
}

// Assess scores a complete answer set and resolves the tier's allocation and
// backtest window ending at now.
func (s *Service) Assess(answers questionnaire.AnswerSet, now time.Time) (*Profile, error) {
	res, err := questionnaire.Score(answers, s.questions)
	if err != nil {
		return nil, err
	}
	horizon := s.questions[questionnaire.HorizonQuestion].Label(answers[questionnaire.HorizonQuestion])
	p := ProfileFor(res.Tier, horizon, now)
	p.Answers = append(questionnaire.AnswerSet(nil), answers...)
	p.Score = res.Total
	s.rec.RecordAssessment(res.Tier.String())
	return p, nil
}

// ProfileFor builds a profile for a tier directly, without a questionnaire.
func ProfileFor(tier questionnaire.Tier, horizon string, now time.Time) *Profile {
	return &Profile{
		Tier:        tier,
		Horizon:     horizon,
		Macro:       allocation.Macro(tier),
		Instruments: allocation.Instruments(tier),
		Description: allocation.Describe(tier),
		Window:      finance.ResolveWindow(horizon, now),
	}
}

// ValidateInvestment rejects amounts below MinInvestment. Zero selects DefaultInvestment.
func ValidateInvestment(v float64) (float64, error) {
	if v == 0 {
		return DefaultInvestment, nil
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v < MinInvestment {
		return 0, fmt.Errorf("%w: minimum is %.0f, got %v", ErrInvalidInvestment, MinInvestment, v)
	}
	return v, nil
}

// Simulate fetches the profile's instruments over its window and backtests them.
// The benchmark is fetched separately; its failure is reported on the Report
// but does not fail the run.
func (s *Service) Simulate(ctx context.Context, p *Profile, initial float64) (*Report, error) {
	started := time.Now()
	initial, err := ValidateInvestment(initial)
	if err != nil {
		s.rec.RecordSimulation(Outcome(err), time.Since(started).Seconds())
		return nil, err
	}
	if p == nil || len(p.Instruments) == 0 {
		err := fmt.Errorf("%w: profile has no allocation", finance.ErrInvalidInput)
		s.rec.RecordSimulation(Outcome(err), time.Since(started).Seconds())
		return nil, err
	}

	runID := uuid.New().String()
	logger := log.With().Str("run_id", runID).Str("tier", p.Tier.String()).Logger()
	logger.Info().
		Str("start", p.Window.Start.Format("2006-01-02")).
		Str("end", p.Window.End.Format("2006-01-02")).
		Float64("initial", initial).
		Msg("simulate: starting run")

	m, err := s.run(ctx, p, initial)
	if err != nil {
		outcome := Outcome(err)
		logger.Warn().Err(err).Str("outcome", outcome).Msg("simulate: run failed")
		s.rec.RecordError(outcome)
		s.rec.RecordSimulation(outcome, time.Since(started).Seconds())
		return nil, err
	}

	report := &Report{RunID: runID, Profile: p, Metrics: m}
	bench, err := s.runBenchmark(ctx, p.Window, initial)
	if err != nil {
		logger.Warn().Err(err).Str("benchmark", s.benchmark).Msg("simulate: benchmark unavailable")
		s.rec.RecordError("benchmark")
		report.BenchmarkError = err.Error()
	} else {
		report.Benchmark = bench
	}

	logger.Info().
		Float64("final_value", m.FinalValue).
		Float64("annualized_return", m.AnnualizedReturn).
		Float64("max_drawdown", m.MaxDrawdown).
		Dur("took", time.Since(started)).
		Msg("simulate: run complete")
	s.rec.RecordSimulation("ok", time.Since(started).Seconds())
	return report, nil
}

func (s *Service) run(ctx context.Context, p *Profile, initial float64) (*finance.Metrics, error) {
	prices, err := s.fetch(ctx, p.Instruments.Symbols(), p.Window)
	if err != nil {
		return nil, err
	}
	return finance.Simulate(p.Instruments, prices, initial)
}

func (s *Service) runBenchmark(ctx context.Context, w finance.DateWindow, initial float64) (*finance.BenchmarkResult, error) {
	prices, err := s.fetch(ctx, []string{s.benchmark}, w)
	if err != nil {
		return nil, err
	}
	return finance.SimulateBenchmark(s.benchmark, prices, initial)
}

func (s *Service) fetch(ctx context.Context, symbols []string, w finance.DateWindow) (*finance.PriceTable, error) {
	t0 := time.Now()
	defer func() { s.rec.RecordFetch(time.Since(t0).Seconds()) }()
	prices, err := s.src.FetchAdjustedClose(ctx, symbols, w)
	if err != nil {
		if !errors.Is(err, finance.ErrDataUnavailable) {
			err = &finance.DataUnavailableError{Err: err}
		}
		return nil, err
	}
	return prices, nil
}

// Outcome classifies a pipeline error for metrics and logs.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, questionnaire.ErrIncompleteAnswers):
		return "incomplete_answers"
	case errors.Is(err, finance.ErrInsufficientData):
		return "insufficient_data"
	case errors.Is(err, finance.ErrDataUnavailable):
		return "unavailable"
	case errors.Is(err, ErrInvalidInvestment), errors.Is(err, finance.ErrInvalidInput), errors.Is(err, questionnaire.ErrInvalidAnswer):
		return "invalid"
	default:
		return "error"
	}
}

// UserMessage maps a pipeline error to text safe to show to the user.
func UserMessage(err error) string {
	var inc *questionnaire.IncompleteAnswersError
	var ins *finance.InsufficientDataError
	var una *finance.DataUnavailableError
	switch {
	case errors.As(err, &inc):
		return fmt.Sprintf("Please answer all questions first. Missing: %s.", joinInts(inc.Missing))
	case errors.As(err, &ins):
		return fmt.Sprintf("Not enough price history for %s to run the simulation (%s).", ins.Symbol, ins.Reason)
	case errors.As(err, &una):
		if una.Symbol != "" {
			return fmt.Sprintf("Market data for %s is unavailable right now. Please try again later.", una.Symbol)
		}
		return "Market data is unavailable right now. Please try again later."
	case errors.Is(err, ErrInvalidInvestment):
		return fmt.Sprintf("The initial investment must be at least %s.", FormatMoney(MinInvestment))
	default:
		return "Something went wrong. Please try again."
	}
}

func joinInts(ns []int) string {
	out := ""
	for i, n := range ns {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprint(n)
	}
	return out
}
