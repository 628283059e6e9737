package validation

import (
	"errors"
	"math"
	"testing"

	"github.com/iwvelando/qc-net-income/pkg/taxengine"
)

func TestParseIncome(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected float64
	}{
		{"Plain integer", "75000", 75000},
		{"Decimal point", "75000.50", 75000.50},
		{"English grouping", "$75,000.50", 75000.50},
		{"French grouping", "75 000,50", 75000.50},
		{"French grouping with nbsp", "75\u00a0000", 75000},
		{"Comma as thousands separator", "75,000", 75000},
		{"Zero", "0", 0},
		{"Surrounding whitespace", "  42000  ", 42000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseIncome(tt.input)
			if err != nil {
				t.Fatalf("ParseIncome(%q) error = %v", tt.input, err)
			}
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("ParseIncome(%q) = %v, expected %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseIncomeRejectsInvalidInput(t *testing.T) {
	for _, input := range []string{"", "   ", "abc", "-100", "NaN", "Inf", "1e400"} {
		_, err := ParseIncome(input)
		if err == nil {
			t.Errorf("ParseIncome(%q) expected error", input)
			continue
		}
		if !errors.Is(err, taxengine.ErrInvalidIncome) {
			t.Errorf("ParseIncome(%q) error = %v, expected ErrInvalidIncome", input, err)
		}
	}
}
