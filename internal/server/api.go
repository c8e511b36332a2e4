package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"riskToleranceBot/internal/allocation"
	"riskToleranceBot/internal/assessment"
	"riskToleranceBot/internal/finance"
	"riskToleranceBot/internal/questionnaire"
)

// API exposes the assessment pipeline as JSON.
type API struct {
	svc *assessment.Service
	now func() time.Time
}

func NewAPI(svc *assessment.Service) *API {
	return &API{svc: svc, now: time.Now}
}

func (a *API) RegisterRoutes(g *echo.Group) {
	g.GET("/questions", a.questions)
	g.GET("/catalog", a.catalog)
	g.POST("/assess", a.assess)
	g.POST("/simulate", a.simulate)
}

type questionJSON struct {
	Number  int      `json:"number"`
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
}

type assessRequest struct {
	Answers []int `json:"answers" validate:"required,len=10,dive,gte=0,lte=5"`
}

type simulateRequest struct {
	Answers    []int   `json:"answers" validate:"omitempty,len=10,dive,gte=0,lte=5"`
	Tier       string  `json:"tier" validate:"required_without=Answers"`
	Horizon    string  `json:"horizon" default:"More than 10 years"`
	Investment float64 `json:"investment" default:"10000" validate:"gte=1000"`
}

type tierJSON struct {
	Tier        questionnaire.Tier              `json:"tier"`
	Macro       allocation.MacroAllocation      `json:"macro_allocation"`
	Instruments allocation.InstrumentAllocation `json:"instrument_allocation"`
	Description string                          `json:"description"`
}

type errorJSON struct {
	Error   string       `json:"error"`
	Message string       `json:"message"`
	Missing []int        `json:"missing,omitempty"`
	Symbol  string       `json:"symbol,omitempty"`
	Fields  []FieldError `json:"fields,omitempty"`
}

func (a *API) questions(c echo.Context) error {
	qs := a.svc.Questions()
	out := make([]questionJSON, len(qs))
	for i, q := range qs {
		out[i] = questionJSON{Number: i + 1, Prompt: q.Prompt, Options: q.Options[:]}
	}
	return c.JSON(http.StatusOK, out)
}

func (a *API) catalog(c echo.Context) error {
	out := make([]tierJSON, 0, len(questionnaire.Tiers))
	for _, t := range questionnaire.Tiers {
		out = append(out, tierJSON{
			Tier:        t,
			Macro:       allocation.Macro(t),
			Instruments: allocation.Instruments(t),
			Description: allocation.Describe(t),
		})
	}
	return c.JSON(http.StatusOK, out)
}

func (a *API) assess(c echo.Context) error {
	var req assessRequest
	if errs := bindRequest(c, &req); errs != nil {
		return c.JSON(http.StatusBadRequest, errorJSON{Error: "invalid_request", Message: "request validation failed", Fields: errs})
	}
	p, err := a.svc.Assess(toAnswers(req.Answers), a.now())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (a *API) simulate(c echo.Context) error {
	var req simulateRequest
	if errs := bindRequest(c, &req); errs != nil {
		return c.JSON(http.StatusBadRequest, errorJSON{Error: "invalid_request", Message: "request validation failed", Fields: errs})
	}

	var p *assessment.Profile
	if len(req.Answers) > 0 {
		var err error
		if p, err = a.svc.Assess(toAnswers(req.Answers), a.now()); err != nil {
			return writeError(c, err)
		}
	} else {
		tier, err := questionnaire.ParseTier(req.Tier)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorJSON{Error: "invalid_request", Message: err.Error()})
		}
		p = assessment.ProfileFor(tier, req.Horizon, a.now())
	}

	r, err := a.svc.Simulate(c.Request().Context(), p, req.Investment)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, r)
}

func toAnswers(in []int) questionnaire.AnswerSet {
	out := questionnaire.NewAnswerSet(len(in))
	for i, v := range in {
		out[i] = questionnaire.Choice(v)
	}
	return out
}

// writeError maps pipeline errors to status codes. No partial results are written.
func writeError(c echo.Context, err error) error {
	body := errorJSON{Error: assessment.Outcome(err), Message: assessment.UserMessage(err)}
	status := http.StatusInternalServerError

	var inc *questionnaire.IncompleteAnswersError
	var ins *finance.InsufficientDataError
	var una *finance.DataUnavailableError
	switch {
	case errors.As(err, &inc):
		status = http.StatusUnprocessableEntity
		body.Missing = inc.Missing
	case errors.As(err, &ins):
		status = http.StatusUnprocessableEntity
		body.Symbol = ins.Symbol
	case errors.As(err, &una):
		status = http.StatusServiceUnavailable
		body.Symbol = una.Symbol
	case errors.Is(err, assessment.ErrInvalidInvestment), errors.Is(err, questionnaire.ErrInvalidAnswer), errors.Is(err, finance.ErrInvalidInput):
		status = http.StatusBadRequest
		body.Message = err.Error()
	}
	return c.JSON(status, body)
}
