package validation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/iwvelando/qc-net-income/pkg/taxengine"
)

// ParseIncome converts user input such as "75000", "75 000", "$75,000.50"
// or "75000,50" into an amount accepted by the tax engine. Spaces, "$" and
// thousands separators are ignored; a lone comma followed by one or two
// digits is read as a decimal separator.
func ParseIncome(input string) (float64, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '\u202f', '$', '\t':
			return -1
		}
		return r
	}, strings.TrimSpace(input))

	if cleaned == "" {
		return 0, fmt.Errorf("%w: empty input", taxengine.ErrInvalidIncome)
	}

	if !strings.Contains(cleaned, ".") && strings.Count(cleaned, ",") == 1 {
		if idx := strings.Index(cleaned, ","); len(cleaned)-idx-1 <= 2 {
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		}
	}
	cleaned = strings.ReplaceAll(cleaned, ",", "")

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", taxengine.ErrInvalidIncome, input)
	}
	if err := taxengine.ValidateIncome(value); err != nil {
		return 0, err
	}
	return value, nil
}
