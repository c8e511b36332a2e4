package questionnaire

import (
	"fmt"
	"strings"
)

// Tier is one of five risk tolerance categories ordered by increasing risk.
type Tier int

const (
	Conservative Tier = iota
	ModeratelyConservative
	Moderate
	ModeratelyAggressive
	Aggressive
)

// Tiers lists every tier from least to most risky.
var Tiers = []Tier{Conservative, ModeratelyConservative, Moderate, ModeratelyAggressive, Aggressive}

// Inclusive upper bounds of the score totals for each tier below Aggressive.
const (
	conservativeMax           = 15
	moderatelyConservativeMax = 25
	moderateMax               = 30
	moderatelyAggressiveMax   = 35
)

// TierFor maps a score total to its tier.
func TierFor(total int) Tier {
	switch {
	case total <= conservativeMax:
		return Conservative
	case total <= moderatelyConservativeMax:
		return ModeratelyConservative
	case total <= moderateMax:
		return Moderate
	case total <= moderatelyAggressiveMax:
		return ModeratelyAggressive
	default:
		return Aggressive
	}
}

func (t Tier) String() string {
	switch t {
	case Conservative:
		return "Conservative"
	case ModeratelyConservative:
		return "Moderately Conservative"
	case Moderate:
		return "Moderate"
	case ModeratelyAggressive:
		return "Moderately Aggressive"
	case Aggressive:
		return "Aggressive"
	default:
		return fmt.Sprintf("Tier(%d)", int(t))
	}
}

// Valid reports whether t is one of the five defined tiers.
func (t Tier) Valid() bool { return t >= Conservative && t <= Aggressive }

// ParseTier accepts display names ("Moderately Aggressive") as well as compact
// forms ("moderately-aggressive", "ModeratelyAggressive").
func ParseTier(s string) (Tier, error) {
	norm := strings.ToLower(strings.NewReplacer(" ", "", "-", "", "_", "").Replace(s))
	for _, t := range Tiers {
		if strings.ToLower(strings.ReplaceAll(t.String(), " ", "")) == norm {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown risk tier %q", s)
}

func (t Tier) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid tier %d", int(t))
	}
	return []byte(t.String()), nil
}

func (t *Tier) UnmarshalText(b []byte) error {
	v, err := ParseTier(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}
