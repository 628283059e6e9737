package taxengine

import (
	"encoding/json"
	"math"
)

// Unbounded is the upper bound of the last bracket of every schedule.
var Unbounded = math.Inf(1)

// Bracket is one tier of a progressive schedule. Income up to and including
// UpperBound (and above the previous bracket's bound) is taxed at Rate percent.
type Bracket struct {
	UpperBound float64
	Rate       float64
}

// IsUnbounded reports whether the bracket has no upper limit.
func (b Bracket) IsUnbounded() bool {
	return math.IsInf(b.UpperBound, 1)
}

type bracketJSON struct {
	UpperBound *float64 `json:"upperBound"`
	Rate       float64  `json:"rate"`
}

// MarshalJSON renders the unbounded upper limit as null since JSON has no infinity.
func (b Bracket) MarshalJSON() ([]byte, error) {
	out := bracketJSON{Rate: b.Rate}
	if !b.IsUnbounded() {
		upper := b.UpperBound
		out.UpperBound = &upper
	}
	return json.Marshal(out)
}

// UnmarshalJSON is the inverse of MarshalJSON: a null or missing upperBound is unbounded.
func (b *Bracket) UnmarshalJSON(data []byte) error {
	var in bracketJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	b.Rate = in.Rate
	b.UpperBound = Unbounded
	if in.UpperBound != nil {
		b.UpperBound = *in.UpperBound
	}
	return nil
}

// Schedule is an ordered set of brackets covering [0, ∞) for one jurisdiction.
type Schedule []Bracket

// Clone returns a copy that shares no memory with s.
func (s Schedule) Clone() Schedule {
	if s == nil {
		return nil
	}
	out := make(Schedule, len(s))
	copy(out, s)
	return out
}

// TopRate returns the rate of the unbounded bracket.
func (s Schedule) TopRate() float64 {
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1].Rate
}

// ContributionRule describes a flat-rate payroll contribution charged on
// earnings above Exemption and capped at Ceiling (maximum insurable or
// pensionable earnings).
type ContributionRule struct {
	Rate      float64 `json:"rate"`
	Exemption float64 `json:"exemption"`
	Ceiling   float64 `json:"ceiling"`
}

// MaxContribution is the contribution owed by anyone earning at least Ceiling.
func (r ContributionRule) MaxContribution() float64 {
	return Contribution(r.Ceiling, r)
}

// TaxYear holds every table needed to compute net income for one year.
type TaxYear struct {
	Year                int              `json:"year"`
	Federal             Schedule         `json:"federal"`
	Provincial          Schedule         `json:"provincial"`
	Pension             ContributionRule `json:"qpp"`
	ParentalInsurance   ContributionRule `json:"qpip"`
	EmploymentInsurance ContributionRule `json:"ei"`
}

// Clone returns a deep copy of the tax year.
func (y TaxYear) Clone() TaxYear {
	out := y
	out.Federal = y.Federal.Clone()
	out.Provincial = y.Provincial.Clone()
	return out
}

// Result is the breakdown of deductions for a gross annual income. Amounts
// keep full precision; rounding happens only when they are displayed.
type Result struct {
	Year                int     `json:"year"`
	GrossIncome         float64 `json:"grossIncome"`
	FederalTax          float64 `json:"federalTax"`
	ProvincialTax       float64 `json:"provincialTax"`
	Pension             float64 `json:"qpp"`
	ParentalInsurance   float64 `json:"qpip"`
	EmploymentInsurance float64 `json:"ei"`
	TotalDeductions     float64 `json:"totalDeductions"`
	NetIncome           float64 `json:"netIncome"`
}

// IncomeTax is the federal plus provincial tax.
func (r Result) IncomeTax() float64 {
	return r.FederalTax + r.ProvincialTax
}

// Contributions is the sum of the three payroll contributions.
func (r Result) Contributions() float64 {
	return r.Pension + r.ParentalInsurance + r.EmploymentInsurance
}
