// Package config defines conversion utilities for configuration objects.
package config

import (
	"github.com/iwvelando/qc-net-income/pkg/taxengine"
)

// ToTaxYear converts a configured year into the engine's representation.
func (t TaxYearConfig) ToTaxYear() taxengine.TaxYear {
	return taxengine.TaxYear{
		Year:                t.Year,
		Federal:             toSchedule(t.Federal),
		Provincial:          toSchedule(t.Provincial),
		Pension:             t.QPP.ToRule(),
		ParentalInsurance:   t.QPIP.ToRule(),
		EmploymentInsurance: t.EI.ToRule(),
	}
}

// ToRule converts a configured contribution into a taxengine.ContributionRule
func (c ContributionConfig) ToRule() taxengine.ContributionRule {
	return taxengine.ContributionRule{
		Rate:      c.Rate,
		Exemption: c.Exemption,
		Ceiling:   c.Ceiling,
	}
}

// FromTaxYear converts an engine year back into its configuration form,
// e.g. to export the built-in tables as a starting point for edits.
func FromTaxYear(year taxengine.TaxYear) TaxYearConfig {
	return TaxYearConfig{
		Year:       year.Year,
		Federal:    fromSchedule(year.Federal),
		Provincial: fromSchedule(year.Provincial),
		QPP:        fromRule(year.Pension),
		QPIP:       fromRule(year.ParentalInsurance),
		EI:         fromRule(year.EmploymentInsurance),
	}
}

func toSchedule(brackets []BracketConfig) taxengine.Schedule {
	if brackets == nil {
		return nil
	}

	schedule := make(taxengine.Schedule, 0, len(brackets))
	for _, bracket := range brackets {
		upper := taxengine.Unbounded
		if bracket.UpTo != nil {
			upper = *bracket.UpTo
		}
		schedule = append(schedule, taxengine.Bracket{UpperBound: upper, Rate: bracket.Rate})
	}
	return schedule
}

func fromSchedule(schedule taxengine.Schedule) []BracketConfig {
	brackets := make([]BracketConfig, 0, len(schedule))
	for _, bracket := range schedule {
		out := BracketConfig{Rate: bracket.Rate}
		if !bracket.IsUnbounded() {
			upper := bracket.UpperBound
			out.UpTo = &upper
		}
		brackets = append(brackets, out)
	}
	return brackets
}

func fromRule(rule taxengine.ContributionRule) ContributionConfig {
	return ContributionConfig{
		Rate:      rule.Rate,
		Exemption: rule.Exemption,
		Ceiling:   rule.Ceiling,
	}
}
