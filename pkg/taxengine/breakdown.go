package taxengine

import (
	"github.com/iwvelando/qc-net-income/pkg/constants"
	"github.com/iwvelando/qc-net-income/pkg/mathutil"
)

// PeriodAmounts is gross and net pay for one pay period.
type PeriodAmounts struct {
	Gross float64 `json:"gross"`
	Net   float64 `json:"net"`
}

// PayBreakdown spreads an annual result over the usual pay frequencies.
type PayBreakdown struct {
	HoursPerWeek float64       `json:"hoursPerWeek"`
	Annual       PeriodAmounts `json:"annual"`
	Monthly      PeriodAmounts `json:"monthly"`
	SemiMonthly  PeriodAmounts `json:"semiMonthly"`
	Biweekly     PeriodAmounts `json:"biweekly"`
	Weekly       PeriodAmounts `json:"weekly"`
	Hourly       PeriodAmounts `json:"hourly"`
}

// Breakdown divides the annual gross and net amounts by pay period. The
// hourly figures are zero when hoursPerWeek is not positive.
func Breakdown(result Result, hoursPerWeek float64) PayBreakdown {
	per := func(periods float64) PeriodAmounts {
		return PeriodAmounts{
			Gross: mathutil.SafeDivide(result.GrossIncome, periods),
			Net:   mathutil.SafeDivide(result.NetIncome, periods),
		}
	}

	hoursPerYear := 0.0
	if hoursPerWeek > 0 {
		hoursPerYear = hoursPerWeek * constants.WeeksPerYear
	}

	return PayBreakdown{
		HoursPerWeek: hoursPerWeek,
		Annual:       per(1),
		Monthly:      per(constants.MonthsPerYear),
		SemiMonthly:  per(constants.SemiMonthlyPeriodsPerYear),
		Biweekly:     per(constants.BiweeklyPeriodsPerYear),
		Weekly:       per(constants.WeeksPerYear),
		Hourly:       per(hoursPerYear),
	}
}
