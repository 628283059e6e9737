package taxengine

import (
	"fmt"

	"github.com/iwvelando/qc-net-income/pkg/constants"
	"github.com/iwvelando/qc-net-income/pkg/mathutil"
)

// Validate checks that the schedule is a gap-free, ascending, progressive
// cover of [0, ∞) ending with a single unbounded bracket.
func (s Schedule) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("%w: no brackets", ErrInvalidSchedule)
	}

	previousBound := 0.0
	previousRate := 0.0
	for i, bracket := range s {
		if !validRate(bracket.Rate) {
			return fmt.Errorf("%w: bracket %d rate %v must be in [0, 100)", ErrInvalidSchedule, i, bracket.Rate)
		}
		if bracket.Rate < previousRate {
			return fmt.Errorf("%w: bracket %d rate %v is lower than the previous rate %v",
				ErrInvalidSchedule, i, bracket.Rate, previousRate)
		}

		last := i == len(s)-1
		if bracket.IsUnbounded() {
			if !last {
				return fmt.Errorf("%w: only the last bracket may be unbounded (bracket %d)", ErrInvalidSchedule, i)
			}
			break
		}
		if last {
			return fmt.Errorf("%w: last bracket must be unbounded, got upper bound %v", ErrInvalidSchedule, bracket.UpperBound)
		}
		if !mathutil.IsFinite(bracket.UpperBound) || bracket.UpperBound <= previousBound {
			return fmt.Errorf("%w: bracket %d upper bound %v must be greater than %v",
				ErrInvalidSchedule, i, bracket.UpperBound, previousBound)
		}

		previousBound = bracket.UpperBound
		previousRate = bracket.Rate
	}

	return nil
}

// Validate checks 0 <= exemption <= ceiling and a rate in [0, 100).
func (r ContributionRule) Validate() error {
	if !validRate(r.Rate) {
		return fmt.Errorf("%w: rate %v must be in [0, 100)", ErrInvalidContributionRule, r.Rate)
	}
	if !mathutil.IsFinite(r.Exemption) || r.Exemption < 0 {
		return fmt.Errorf("%w: exemption %v must be a non-negative amount", ErrInvalidContributionRule, r.Exemption)
	}
	if !mathutil.IsFinite(r.Ceiling) || r.Ceiling < r.Exemption {
		return fmt.Errorf("%w: ceiling %v must be at least the exemption %v",
			ErrInvalidContributionRule, r.Ceiling, r.Exemption)
	}
	return nil
}

// Validate checks every table of the year. The combined top rates must stay
// below 100% so that net income grows with gross income and never goes negative.
func (y TaxYear) Validate() error {
	if y.Year <= 0 {
		return fmt.Errorf("tax year must be positive, got %d", y.Year)
	}
	if err := y.Federal.Validate(); err != nil {
		return fmt.Errorf("%d federal: %w", y.Year, err)
	}
	if err := y.Provincial.Validate(); err != nil {
		return fmt.Errorf("%d provincial: %w", y.Year, err)
	}

	rules := []struct {
		name string
		rule ContributionRule
	}{
		{"qpp", y.Pension},
		{"qpip", y.ParentalInsurance},
		{"ei", y.EmploymentInsurance},
	}
	combined := y.Federal.TopRate() + y.Provincial.TopRate()
	for _, r := range rules {
		if err := r.rule.Validate(); err != nil {
			return fmt.Errorf("%d %s: %w", y.Year, r.name, err)
		}
		combined += r.rule.Rate
	}

	if combined >= constants.PercentageMultiplier {
		return fmt.Errorf("%w: %d combined top rates reach %.2f%%", ErrInvalidSchedule, y.Year, combined)
	}
	return nil
}

func validRate(rate float64) bool {
	return mathutil.IsFinite(rate) && rate >= 0 && rate < constants.PercentageMultiplier
}
