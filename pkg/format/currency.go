// Package format renders amounts and rates for display. This is the only
// place where amounts are rounded to cents.
package format

import (
	"fmt"
	"strings"

	"github.com/iwvelando/qc-net-income/pkg/constants"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
)

const nbsp = "\u00a0"

// NormalizeLocale accepts tags such as "fr_CA", "FR-ca" or "en" and returns
// one of the supported locales. Any French tag maps to fr-CA, anything else
// that parses maps to en-CA.
func NormalizeLocale(locale string) (string, error) {
	trimmed := strings.TrimSpace(locale)
	if trimmed == "" {
		return constants.DefaultLocale, nil
	}

	tag, err := language.Parse(strings.ReplaceAll(trimmed, "_", "-"))
	if err != nil {
		return "", fmt.Errorf("invalid locale %q: %w", locale, err)
	}
	base, _ := tag.Base()
	if base.String() == "fr" {
		return constants.LocaleFrenchCanada, nil
	}
	return constants.LocaleEnglishCanada, nil
}

// Cents rounds half away from zero to two decimals and returns a plain
// string such as "-1234.57", suitable for CSV.
func Cents(amount float64) string {
	return decimal.NewFromFloat(amount).StringFixed(constants.CurrencyDecimalPlaces)
}

// Currency formats amount for the locale: "$1,234.56" in English and
// "1 234,56 $" in French. Unknown locales fall back to English.
func Currency(amount float64, locale string) string {
	sign, intPart, decPart := splitRounded(amount)

	if isFrench(locale) {
		return sign + group(intPart, nbsp) + "," + decPart + nbsp + "$"
	}
	return sign + "$" + group(intPart, ",") + "." + decPart
}

// Number formats amount with grouping but no currency symbol.
func Number(amount float64, locale string) string {
	sign, intPart, decPart := splitRounded(amount)
	if isFrench(locale) {
		return sign + group(intPart, nbsp) + "," + decPart
	}
	return sign + group(intPart, ",") + "." + decPart
}

// Percent formats a rate already expressed in percent, e.g. 35 -> "35.00%".
func Percent(rate float64, locale string) string {
	if isFrench(locale) {
		return Number(rate, locale) + nbsp + "%"
	}
	return Number(rate, locale) + "%"
}

func isFrench(locale string) bool {
	normalized, err := NormalizeLocale(locale)
	return err == nil && normalized == constants.LocaleFrenchCanada
}

func splitRounded(amount float64) (sign, intPart, decPart string) {
	rounded := decimal.NewFromFloat(amount).Round(constants.CurrencyDecimalPlaces)
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Neg()
	}

	parts := strings.SplitN(rounded.StringFixed(constants.CurrencyDecimalPlaces), ".", 2)
	intPart = parts[0]
	decPart = "00"
	if len(parts) == 2 {
		decPart = parts[1]
	}
	return sign, intPart, decPart
}

func group(intPart, separator string) string {
	if len(intPart) <= 3 {
		return intPart
	}

	var builder strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			builder.WriteString(separator)
		}
		builder.WriteRune(digit)
	}
	return builder.String()
}
