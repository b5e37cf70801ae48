package oddsmath

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidOdds marks malformed American odds: zero, or a magnitude below
// 100. Callers can test for it with errors.Is.
var ErrInvalidOdds = errors.New("invalid american odds")

// ImpliedProbability converts American odds to implied win probability.
// +120 → 0.4545, -138 → 0.5798. Both +100 and -100 convert to 0.50.
func ImpliedProbability(american int) (float64, error) {
	if err := checkAmerican(american); err != nil {
		return 0, err
	}

	if american > 0 {
		return 100.0 / (float64(american) + 100.0), nil
	}

	abs := float64(-american)
	return abs / (abs + 100.0), nil
}

// AmericanToDecimal converts American odds to decimal odds
// American +150 → Decimal 2.50
// American -150 → Decimal 1.67
func AmericanToDecimal(american int) (float64, error) {
	if err := checkAmerican(american); err != nil {
		return 0, err
	}

	if american > 0 {
		return (float64(american) / 100.0) + 1.0, nil
	}

	return (100.0 / float64(-american)) + 1.0, nil
}

// DecimalToAmerican converts decimal odds to American odds
// Decimal 2.50 → American +150
// Decimal 1.67 → American -150
func DecimalToAmerican(decimal float64) (int, error) {
	if decimal <= 1.0 {
		return 0, fmt.Errorf("invalid decimal odds: must be > 1.0")
	}

	if decimal >= 2.0 {
		return int(math.Round((decimal - 1.0) * 100.0)), nil
	}

	return int(math.Round(-100.0 / (decimal - 1.0))), nil
}

func checkAmerican(american int) error {
	if american > -100 && american < 100 {
		return fmt.Errorf("%w: %d (magnitude must be >= 100)", ErrInvalidOdds, american)
	}
	return nil
}
