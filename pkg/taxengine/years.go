package taxengine

import (
	"fmt"
	"sort"
)

// Published federal and Quebec tables. Federal amounts are the nominal
// schedule; the Quebec abatement and all non-refundable credits are not
// modeled.
func taxYear2024() TaxYear {
	return TaxYear{
		Year: 2024,
		Federal: Schedule{
			{UpperBound: 55867, Rate: 15},
			{UpperBound: 111733, Rate: 20.5},
			{UpperBound: 173205, Rate: 26},
			{UpperBound: 246752, Rate: 29},
			{UpperBound: Unbounded, Rate: 33},
		},
		Provincial: Schedule{
			{UpperBound: 51780, Rate: 14},
			{UpperBound: 103545, Rate: 19},
			{UpperBound: 126000, Rate: 24},
			{UpperBound: Unbounded, Rate: 25.75},
		},
		Pension:             ContributionRule{Rate: 6.4, Exemption: 3500, Ceiling: 68500},
		ParentalInsurance:   ContributionRule{Rate: 0.494, Exemption: 0, Ceiling: 94000},
		EmploymentInsurance: ContributionRule{Rate: 1.32, Exemption: 0, Ceiling: 63200},
	}
}

func taxYear2025() TaxYear {
	return TaxYear{
		Year: 2025,
		Federal: Schedule{
			{UpperBound: 57375, Rate: 15},
			{UpperBound: 114750, Rate: 20.5},
			{UpperBound: 177882, Rate: 26},
			{UpperBound: 253414, Rate: 29},
			{UpperBound: Unbounded, Rate: 33},
		},
		Provincial: Schedule{
			{UpperBound: 53255, Rate: 14},
			{UpperBound: 106495, Rate: 19},
			{UpperBound: 129590, Rate: 24},
			{UpperBound: Unbounded, Rate: 25.75},
		},
		Pension:             ContributionRule{Rate: 6.4, Exemption: 3500, Ceiling: 71300},
		ParentalInsurance:   ContributionRule{Rate: 0.494, Exemption: 0, Ceiling: 98000},
		EmploymentInsurance: ContributionRule{Rate: 1.31, Exemption: 0, Ceiling: 65700},
	}
}

var builtinYears = []TaxYear{
	MustTaxYear(taxYear2024()),
	MustTaxYear(taxYear2025()),
}

// MustTaxYear panics if the year's tables are malformed. It is meant for
// tables compiled into the binary, which must never produce wrong numbers.
func MustTaxYear(year TaxYear) TaxYear {
	if err := year.Validate(); err != nil {
		panic(fmt.Sprintf("taxengine: invalid built-in tax year: %v", err))
	}
	return year
}

// Catalog is an immutable set of tax years keyed by year.
type Catalog struct {
	years map[int]TaxYear
}

// NewCatalog validates every year and builds a catalog. Later entries
// replace earlier ones with the same year.
func NewCatalog(years ...TaxYear) (*Catalog, error) {
	c := &Catalog{years: make(map[int]TaxYear, len(years))}
	for _, year := range years {
		if err := year.Validate(); err != nil {
			return nil, err
		}
		c.years[year.Year] = year.Clone()
	}
	return c, nil
}

// DefaultCatalog returns the catalog of built-in tax years.
func DefaultCatalog() *Catalog {
	c := &Catalog{years: make(map[int]TaxYear, len(builtinYears))}
	for _, year := range builtinYears {
		c.years[year.Year] = year.Clone()
	}
	return c
}

// With returns a new catalog holding c's years plus overrides.
func (c *Catalog) With(overrides ...TaxYear) (*Catalog, error) {
	years := make([]TaxYear, 0, len(c.years)+len(overrides))
	for _, year := range c.years {
		years = append(years, year)
	}
	years = append(years, overrides...)
	return NewCatalog(years...)
}

// Year returns a copy of the requested tax year.
func (c *Catalog) Year(year int) (TaxYear, error) {
	ty, ok := c.years[year]
	if !ok {
		return TaxYear{}, fmt.Errorf("%w: %d", ErrUnknownYear, year)
	}
	return ty.Clone(), nil
}

// Years lists the available years in ascending order.
func (c *Catalog) Years() []int {
	years := make([]int, 0, len(c.years))
	for year := range c.years {
		years = append(years, year)
	}
	sort.Ints(years)
	return years
}

// Latest returns the most recent year in the catalog.
func (c *Catalog) Latest() (TaxYear, error) {
	years := c.Years()
	if len(years) == 0 {
		return TaxYear{}, fmt.Errorf("%w: catalog is empty", ErrUnknownYear)
	}
	return c.Year(years[len(years)-1])
}
