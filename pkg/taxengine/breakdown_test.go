package taxengine_test

import (
	"testing"

	"github.com/iwvelando/qc-net-income/pkg/taxengine"
	"github.com/stretchr/testify/assert"
)

func TestBreakdown(t *testing.T) {
	result := taxengine.Result{GrossIncome: 62400, NetIncome: 46800}

	b := taxengine.Breakdown(result, 40)

	assert.Equal(t, 40.0, b.HoursPerWeek)
	assert.InDelta(t, 62400, b.Annual.Gross, 1e-9)
	assert.InDelta(t, 46800, b.Annual.Net, 1e-9)
	assert.InDelta(t, 5200, b.Monthly.Gross, 1e-9)
	assert.InDelta(t, 3900, b.Monthly.Net, 1e-9)
	assert.InDelta(t, 2600, b.SemiMonthly.Gross, 1e-9)
	assert.InDelta(t, 2400, b.Biweekly.Gross, 1e-9)
	assert.InDelta(t, 1800, b.Biweekly.Net, 1e-9)
	assert.InDelta(t, 1200, b.Weekly.Gross, 1e-9)
	assert.InDelta(t, 30, b.Hourly.Gross, 1e-9)
	assert.InDelta(t, 22.5, b.Hourly.Net, 1e-9)
}

func TestBreakdownWithoutHours(t *testing.T) {
	b := taxengine.Breakdown(taxengine.Result{GrossIncome: 52000, NetIncome: 40000}, 0)

	assert.Equal(t, taxengine.PeriodAmounts{}, b.Hourly)
	assert.InDelta(t, 1000, b.Weekly.Gross, 1e-9)
}
