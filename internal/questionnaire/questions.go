package questionnaire

// Question is a prompt with exactly five options ordered by increasing risk appetite.
// The 1-based position of an option is its score contribution.
type Question struct {
	Prompt  string
	Options [5]string
}

// Position returns the 1-based position of label within the options, or 0 if absent.
func (q Question) Position(label string) Choice {
	for i, o := range q.Options {
		if o == label {
			return Choice(i + 1)
		}
	}
	return 0
}

// Label returns the option text for c, or "" when c is out of range.
func (q Question) Label(c Choice) string {
	if c < 1 || int(c) > len(q.Options) {
		return ""
	}
	return q.Options[c-1]
}

// HorizonQuestion is the index of the investment horizon question.
const HorizonQuestion = 1

var questions = []Question{
	{
		Prompt: "What is your primary investment goal?",
		Options: [5]string{
			"Preserve capital with minimal risk",
			"Generate steady income with limited risk",
			"Achieve moderate growth with some risk",
			"Pursue substantial growth with high risk",
			"Maximize long-term growth with very high risk",
		},
	},
	{
		Prompt: "How long do you plan to keep your investments before you start needing the money?",
		Options: [5]string{
			"Less than 1 year",
			"1 to 3 years",
			"3 to 5 years",
			"5 to 10 years",
			"More than 10 years",
		},
	},
	{
		Prompt: "How often do you expect to adjust or rebalance your portfolio?",
		Options: [5]string{
			"Never, prefer to set it and forget it",
			"Rarely, only when absolutely necessary",
			"Occasionally, based on market conditions",
			"Regularly, to optimize for performance",
			"Frequently, to capitalize on short-term market movements",
		},
	},
	{
		Prompt: "How do you feel about short-term fluctuations in your investment value?",
		Options: [5]string{
			"Extremely uncomfortable and prefer no fluctuations",
			"Very uncomfortable, prefer limited fluctuations",
			"Neutral, can tolerate some fluctuations",
			"Comfortable, expect moderate fluctuations",
			"Very comfortable, fluctuations do not bother me",
		},
	},
	{
		Prompt: "What level of return do you expect from your investments?",
		Options: [5]string{
			"Very low returns (1-2%) with minimal risk",
			"Low returns (3-5%) with minimal to low risk",
			"Moderate returns (6-8%) with moderate risk",
			"High returns (9-12%) with high risk",
			"Very high returns (13% or more) with substantial risk",
		},
	},
	{
		Prompt: "If your investment portfolio decreased by 25% in one year, how would you likely respond?",
		Options: [5]string{
			"Sell all investments to avoid further losses",
			"Rebalance to a more conservative portfolio",
			"Hold steady and wait for recovery",
			"Invest more to take advantage of lower prices",
			"Increase exposure to high-risk, high-reward investments",
		},
	},
	{
		Prompt: "How much of a temporary decline in your portfolio could you tolerate without getting anxious?",
		Options: [5]string{
			"Less than 5%",
			"5% to 10%",
			"10% to 15%",
			"15% to 20%",
			"More than 20%",
		},
	},
	{
		Prompt: "How experienced are you with investing in financial markets?",
		Options: [5]string{
			"No experience",
			"Limited experience, mostly in low-risk investments",
			"Moderate experience, comfortable with a balanced portfolio",
			"Significant experience, comfortable with a variety of investments",
			"Extensive experience, comfortable with high-risk investments",
		},
	},
	{
		Prompt: "What would you prefer if you had to choose between stability and growth?",
		Options: [5]string{
			"Maximum stability, even if it means very low growth",
			"Mostly stability with limited growth potential",
			"Balance between growth and stability",
			"Emphasis on growth with some risk",
			"Maximum growth, regardless of the risk",
		},
	},
	{
		Prompt: "How often do you review your investment portfolio?",
		Options: [5]string{
			"Annually",
			"Quarterly",
			"Monthly",
			"Weekly",
			"Daily",
		},
	},
}

// Questions returns a copy of the fixed questionnaire.
func Questions() []Question {
	out := make([]Question, len(questions))
	copy(out, questions)
	return out
}
