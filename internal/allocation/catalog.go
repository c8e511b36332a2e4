// Package allocation holds the fixed model portfolios for each risk tier.
package allocation

import (
	"fmt"

	"riskToleranceBot/internal/questionnaire"
)

// MacroAllocation is the stocks/bonds/cash split shown to the user.
type MacroAllocation struct {
	Stocks int `json:"stocks"`
	Bonds  int `json:"bonds"`
	Cash   int `json:"cash"`
}

// Labels returns the bucket names in display order.
func (MacroAllocation) Labels() []string { return []string{"Stocks", "Bonds", "Cash"} }

// Values returns the bucket percentages in display order.
func (m MacroAllocation) Values() []int { return []int{m.Stocks, m.Bonds, m.Cash} }

// Holding is one instrument of a model portfolio.
type Holding struct {
	Symbol      string `json:"symbol"`
	Percent     int    `json:"percent"`
	Description string `json:"description"`
}

// InstrumentAllocation is an ordered list of holdings whose percentages sum to 100.
type InstrumentAllocation []Holding

// Symbols returns the holding symbols in allocation order.
func (a InstrumentAllocation) Symbols() []string {
	out := make([]string, len(a))
	for i, h := range a {
		out[i] = h.Symbol
	}
	return out
}

// Total returns the sum of the holding percentages.
func (a InstrumentAllocation) Total() int {
	sum := 0
	for _, h := range a {
		sum += h.Percent
	}
	return sum
}

const (
	descSPY   = "S&P 500 ETF provides exposure to large-cap U.S. stocks."
	descBND   = "U.S. Aggregate Bond ETF focuses on investment-grade bonds."
	descSHV   = "Short Treasury Bond ETF provides stability and liquidity."
	descAAPL  = "Apple Inc. is a major tech company with growth potential."
	descMSFT  = "Microsoft Corp. is a leading technology and cloud computing company."
	descTSLA  = "Tesla Inc. is a leader in electric vehicles and clean energy."
	descAMZN  = "Amazon.com Inc. is a global e-commerce and cloud computing giant."
	descNVDA  = "NVIDIA Corp. is a leader in graphics processing and AI."
	descGOOGL = "Alphabet Inc. is the parent company of Google, known for tech innovation."
)

var macro = map[questionnaire.Tier]MacroAllocation{
	questionnaire.Conservative:           {Stocks: 15, Bonds: 70, Cash: 15},
	questionnaire.ModeratelyConservative: {Stocks: 35, Bonds: 50, Cash: 15},
	questionnaire.Moderate:               {Stocks: 55, Bonds: 35, Cash: 10},
	questionnaire.ModeratelyAggressive:   {Stocks: 70, Bonds: 25, Cash: 5},
	questionnaire.Aggressive:             {Stocks: 90, Bonds: 5, Cash: 5},
}

var instruments = map[questionnaire.Tier]InstrumentAllocation{
	questionnaire.Conservative: {
		{"SPY", 15, descSPY},
		{"BND", 70, descBND},
		{"SHV", 15, descSHV},
	},
	questionnaire.ModeratelyConservative: {
		{"SPY", 35, descSPY},
		{"BND", 50, descBND},
		{"SHV", 15, descSHV},
	},
	questionnaire.Moderate: {
		{"SPY", 35, descSPY},
		{"AAPL", 10, descAAPL},
		{"MSFT", 10, descMSFT},
		{"BND", 35, descBND},
		{"SHV", 10, descSHV},
	},
	questionnaire.ModeratelyAggressive: {
		{"AAPL", 25, descAAPL},
		{"MSFT", 20, descMSFT},
		{"TSLA", 15, descTSLA},
		{"AMZN", 10, descAMZN},
		{"BND", 25, descBND},
		{"SHV", 5, descSHV},
	},
	questionnaire.Aggressive: {
		{"TSLA", 20, descTSLA},
		{"AMZN", 20, descAMZN},
		{"NVDA", 15, descNVDA},
		{"GOOGL", 15, descGOOGL},
		{"MSFT", 10, descMSFT},
		{"AAPL", 10, descAAPL},
		{"BND", 5, descBND},
		{"SHV", 5, descSHV},
	},
}

// Macro returns the display allocation for tier.
func Macro(tier questionnaire.Tier) MacroAllocation {
	return macro[tier]
}

// Instruments returns a copy of the simulation allocation for tier.
func Instruments(tier questionnaire.Tier) InstrumentAllocation {
	src := instruments[tier]
	out := make(InstrumentAllocation, len(src))
	copy(out, src)
	return out
}

// Verify checks that every tier has both tables and that each sums to 100.
func Verify() error {
	for _, t := range questionnaire.Tiers {
		m, ok := macro[t]
		if !ok {
			return fmt.Errorf("no macro allocation for %s", t)
		}
		if sum := m.Stocks + m.Bonds + m.Cash; sum != 100 {
			return fmt.Errorf("macro allocation for %s sums to %d", t, sum)
		}
		a, ok := instruments[t]
		if !ok || len(a) == 0 {
			return fmt.Errorf("no instrument allocation for %s", t)
		}
		if sum := a.Total(); sum != 100 {
			return fmt.Errorf("instrument allocation for %s sums to %d", t, sum)
		}
		seen := map[string]bool{}
		for _, h := range a {
			if h.Percent <= 0 {
				return fmt.Errorf("instrument allocation for %s has non-positive weight for %s", t, h.Symbol)
			}
			if seen[h.Symbol] {
				return fmt.Errorf("instrument allocation for %s lists %s twice", t, h.Symbol)
			}
			seen[h.Symbol] = true
		}
	}
	return nil
}
