package questionnaire

import (
	"errors"
	"fmt"
	"strings"
)

// Choice is the 1-based position of the selected option. Zero means unanswered.
type Choice int

// AnswerSet holds one choice per question, in question order.
type AnswerSet []Choice

// NewAnswerSet returns an empty answer set sized for n questions.
func NewAnswerSet(n int) AnswerSet { return make(AnswerSet, n) }

// Complete reports whether every question has been answered.
func (a AnswerSet) Complete() bool {
	for _, c := range a {
		if c == 0 {
			return false
		}
	}
	return len(a) > 0
}

// Missing returns the 1-based numbers of the unanswered questions.
func (a AnswerSet) Missing() []int {
	var out []int
	for i, c := range a {
		if c == 0 {
			out = append(out, i+1)
		}
	}
	return out
}

// NextUnanswered returns the index of the first unanswered question, or -1.
func (a AnswerSet) NextUnanswered() int {
	for i, c := range a {
		if c == 0 {
			return i
		}
	}
	return -1
}

var (
	ErrIncompleteAnswers = errors.New("incomplete answers")
	ErrInvalidAnswer     = errors.New("invalid answer")
)

// IncompleteAnswersError lists the questions still waiting for an answer.
type IncompleteAnswersError struct {
	Missing []int
}

func (e *IncompleteAnswersError) Error() string {
	nums := make([]string, len(e.Missing))
	for i, n := range e.Missing {
		nums[i] = fmt.Sprint(n)
	}
	return fmt.Sprintf("incomplete answers: questions %s unanswered", strings.Join(nums, ", "))
}

func (e *IncompleteAnswersError) Unwrap() error { return ErrIncompleteAnswers }

// Result is the outcome of scoring a complete answer set.
type Result struct {
	Total int
	Tier  Tier
}

// Score sums the option positions of a fully answered set and maps the total to a tier.
func Score(answers AnswerSet, qs []Question) (Result, error) {
	if len(answers) != len(qs) {
		return Result{}, fmt.Errorf("%w: got %d answers for %d questions", ErrInvalidAnswer, len(answers), len(qs))
	}
	if missing := answers.Missing(); len(missing) > 0 {
		return Result{}, &IncompleteAnswersError{Missing: missing}
	}
	total := 0
	for i, c := range answers {
		if c < 1 || int(c) > len(qs[i].Options) {
			return Result{}, fmt.Errorf("%w: question %d has choice %d", ErrInvalidAnswer, i+1, c)
		}
		total += int(c)
	}
	return Result{Total: total, Tier: TierFor(total)}, nil
}

// ParseAnswers converts option labels into choices. Empty labels stay unanswered.
func ParseAnswers(labels []string, qs []Question) (AnswerSet, error) {
	if len(labels) != len(qs) {
		return nil, fmt.Errorf("%w: got %d answers for %d questions", ErrInvalidAnswer, len(labels), len(qs))
	}
	out := NewAnswerSet(len(qs))
	for i, l := range labels {
		if l == "" {
			continue
		}
		c := qs[i].Position(l)
		if c == 0 {
			return nil, fmt.Errorf("%w: %q is not an option of question %d", ErrInvalidAnswer, l, i+1)
		}
		out[i] = c
	}
	return out, nil
}
