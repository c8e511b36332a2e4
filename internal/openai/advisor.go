package openai

import (
	"context"
	"fmt"
	"strings"

	oa "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"riskToleranceBot/internal/assessment"
)

// Advisor turns a backtest report into a short plain-language commentary.
type Advisor struct {
	cli   oa.Client
	model string
}

func NewAdvisor(apiKey, model string, opts ...option.RequestOption) *Advisor {
	client := oa.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...)
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &Advisor{cli: client, model: model}
}

const systemPrompt = `You are a patient financial educator explaining a simulated portfolio backtest to a retail investor.

Your response must follow this exact structure:

**What the numbers mean:**
[Explain annualized return, volatility, max drawdown and the comparison with the S&P 500 in plain words]

**How this fits the risk profile:**
[Relate the results to the user's risk tolerance tier and allocation]

**Caveats:**
[Past performance does not predict future results; the simulation rebalances daily and ignores fees and taxes]

Guidelines:
- Do not recommend buying or selling specific securities
- Use the figures given, never invent new ones
- Keep it under 250 words
- Format with bullet points where appropriate`

// Explain asks the model to comment on r.
func (a *Advisor) Explain(ctx context.Context, r *assessment.Report) (string, error) {
	resp, err := a.cli.Chat.Completions.New(ctx, oa.ChatCompletionNewParams{
		Model: oa.ChatModel(a.model),
		Messages: []oa.ChatCompletionMessageParamUnion{
			oa.SystemMessage(systemPrompt),
			oa.UserMessage(buildPrompt(r)),
		},
		MaxTokens: oa.Int(700), // Limit response length for telegram
	})
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from OpenAI")
	}
	return sanitizeReply(resp.Choices[0].Message.Content), nil
}

func buildPrompt(r *assessment.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Risk tolerance tier: %s\n", r.Profile.Tier)
	if r.Profile.Horizon != "" {
		fmt.Fprintf(&b, "Investment horizon: %s\n", r.Profile.Horizon)
	}
	b.WriteString("Allocation:\n")
	for _, h := range r.Profile.Instruments {
		fmt.Fprintf(&b, "- %s %d%%\n", h.Symbol, h.Percent)
	}
	b.WriteString("\nBacktest results:\n")
	b.WriteString(assessment.FormatReport(r))
	b.WriteString("\nExplain these results following the structured format.")
	return b.String()
}
