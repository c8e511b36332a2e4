package allocation

import "riskToleranceBot/internal/questionnaire"

var descriptions = map[questionnaire.Tier]string{
	questionnaire.Conservative: "A *Conservative* portfolio aims to preserve capital and minimize risk. " +
		"This type of portfolio typically consists of a high percentage of bonds and cash, " +
		"with a small allocation to stocks. It is suited for investors who prioritize stability " +
		"and capital preservation over high returns. Expected returns are lower, around 3-5% per year, " +
		"but the risk of significant losses is minimal.",
	questionnaire.ModeratelyConservative: "A *Moderately Conservative* portfolio balances safety with modest growth. " +
		"It includes a mix of bonds and dividend-paying stocks to generate steady income " +
		"while maintaining some growth potential. This portfolio is suitable for investors who are " +
		"cautious but willing to accept limited risk. Expected returns range from 4-6% per year, " +
		"with moderate exposure to market volatility.",
	questionnaire.Moderate: "A *Moderate* portfolio seeks a balance between risk and return, aiming for steady growth over time. " +
		"This portfolio typically includes a diversified mix of stocks, bonds, and cash, " +
		"providing both income and growth opportunities. It is ideal for investors with a medium risk tolerance " +
		"who are comfortable with some market fluctuations. Expected returns are around 5-8% per year, " +
		"with potential for both moderate gains and losses.",
	questionnaire.ModeratelyAggressive: "A *Moderately Aggressive* portfolio focuses on achieving higher returns with increased exposure to risk. " +
		"This portfolio has a higher allocation to growth stocks and a smaller percentage in bonds or cash. " +
		"It is suitable for investors willing to tolerate significant short-term market volatility in exchange for " +
		"potential long-term gains. Expected returns range from 7-10% per year, with a higher risk of losses during " +
		"market downturns.",
	questionnaire.Aggressive: "An *Aggressive* portfolio aims for maximum long-term growth by taking substantial risks. " +
		"This portfolio is heavily weighted towards stocks, especially high-growth or speculative stocks, " +
		"and may include alternative investments like commodities or cryptocurrencies. It is ideal for investors " +
		"with a high-risk tolerance who are comfortable with substantial volatility and potential losses. " +
		"Expected returns can be 10% or more per year, but there is a significant risk of loss, especially in bear markets.",
}

// Describe returns the long-form explanation of a tier.
func Describe(tier questionnaire.Tier) string {
	return descriptions[tier]
}
