// Package output provides utilities for formatting and displaying tax results.
package output

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/iwvelando/qc-net-income/internal/calculator"
	"github.com/iwvelando/qc-net-income/pkg/constants"
	"github.com/iwvelando/qc-net-income/pkg/format"
	"github.com/iwvelando/qc-net-income/pkg/optimization"
	"github.com/iwvelando/qc-net-income/pkg/taxengine"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var frenchLabels = map[string]string{
	"--- Results for scenario %s (%s) ---": "--- Résultats du scénario %s (%s) ---",
	"--- Gross-up for %s (%s) ---":         "--- Salaire requis pour %s (%s) ---",
	"--- Tax year %s ---":                  "--- Année d'imposition %s ---",
	"Gross income":                         "Revenu brut",
	"Federal tax":                          "Impôt fédéral",
	"Provincial tax":                       "Impôt provincial",
	"QPP":                                  "RRQ",
	"QPIP":                                 "RQAP",
	"EI":                                   "Assurance-emploi",
	"Total deductions":                     "Total des retenues",
	"Net income":                           "Revenu net",
	"Marginal rate":                        "Taux marginal",
	"Effective rate":                       "Taux effectif",
	"Monthly net":                          "Net mensuel",
	"Biweekly net":                         "Net aux deux semaines",
	"Weekly net":                           "Net hebdomadaire",
	"Hourly net":                           "Net horaire",
	"Change in gross":                      "Écart brut",
	"Change in net":                        "Écart net",
	"Share of raise kept":                  "Part de l'écart conservée",
	"Target net":                           "Revenu net visé",
	"Required gross":                       "Revenu brut requis",
	"Iterations":                           "Itérations",
	"Converged":                            "Convergé",
	"Federal brackets":                     "Paliers fédéraux",
	"Provincial brackets":                  "Paliers provinciaux",
	"up to %s":                             "jusqu'à %s",
	"above":                                "au-delà",
	"rate %s, exemption %s, ceiling %s, maximum %s": "taux %s, exemption %s, plafond %s, maximum %s",
	"yes": "oui",
	"no":  "non",
}

func init() {
	for key, translation := range frenchLabels {
		if err := message.SetString(language.CanadianFrench, key, translation); err != nil {
			panic(fmt.Sprintf("output: registering French label %q: %v", key, err))
		}
	}
}

func printerFor(locale string) (*message.Printer, string) {
	normalized, err := format.NormalizeLocale(locale)
	if err != nil {
		normalized = constants.LocaleEnglishCanada
	}
	return message.NewPrinter(language.MustParse(normalized)), normalized
}

func line(w io.Writer, p *message.Printer, label, value string) {
	_, _ = fmt.Fprintf(w, "%-26s %s\n", p.Sprintf(label)+":", value)
}

// PrettyFormat writes a human-readable rather than machine-readable table.
func PrettyFormat(w io.Writer, results []calculator.ScenarioResult, locale string) {
	p, locale := printerFor(locale)
	money := func(amount float64) string { return format.Currency(amount, locale) }
	percent := func(rate float64) string { return format.Percent(rate, locale) }

	for i, result := range results {
		_, _ = p.Fprintf(w, "--- Results for scenario %s (%s) ---", result.Name, strconv.Itoa(result.Year))
		_, _ = fmt.Fprintln(w)

		r := result.Result
		line(w, p, "Gross income", money(r.GrossIncome))
		line(w, p, "Federal tax", money(r.FederalTax))
		line(w, p, "Provincial tax", money(r.ProvincialTax))
		line(w, p, "QPP", money(r.Pension))
		line(w, p, "QPIP", money(r.ParentalInsurance))
		line(w, p, "EI", money(r.EmploymentInsurance))
		line(w, p, "Total deductions", money(r.TotalDeductions))
		line(w, p, "Net income", money(r.NetIncome))
		line(w, p, "Marginal rate", percent(result.MarginalRate))
		line(w, p, "Effective rate", percent(result.EffectiveRate))
		line(w, p, "Monthly net", money(result.Breakdown.Monthly.Net))
		line(w, p, "Biweekly net", money(result.Breakdown.Biweekly.Net))
		line(w, p, "Weekly net", money(result.Breakdown.Weekly.Net))
		line(w, p, "Hourly net", money(result.Breakdown.Hourly.Net))

		if !result.Baseline {
			line(w, p, "Change in gross", money(result.DeltaGross))
			line(w, p, "Change in net", money(result.DeltaNet))
			line(w, p, "Share of raise kept", percent(result.KeptPercent))
		}

		if i < len(results)-1 {
			_, _ = fmt.Fprintln(w)
		}
	}
}

// GrossUpFormat writes the solved gross-up targets.
func GrossUpFormat(w io.Writer, summaries []optimization.Summary, locale string) {
	p, locale := printerFor(locale)

	for i, summary := range summaries {
		_, _ = p.Fprintf(w, "--- Gross-up for %s (%s) ---", summary.Name, strconv.Itoa(summary.Year))
		_, _ = fmt.Fprintln(w)
		line(w, p, "Target net", format.Currency(summary.TargetNet, locale))
		line(w, p, "Required gross", format.Currency(summary.GrossIncome, locale))
		line(w, p, "Net income", format.Currency(summary.NetIncome, locale))
		line(w, p, "Iterations", strconv.Itoa(summary.Iterations))
		converged := "no"
		if summary.Converged {
			converged = "yes"
		}
		line(w, p, "Converged", p.Sprintf(converged))
		for _, note := range summary.Notes {
			_, _ = fmt.Fprintf(w, "  * %s\n", note)
		}
		if i < len(summaries)-1 {
			_, _ = fmt.Fprintln(w)
		}
	}
}

// TaxYearFormat writes the brackets and contribution rules of a tax year.
func TaxYearFormat(w io.Writer, year taxengine.TaxYear, locale string) {
	p, locale := printerFor(locale)

	_, _ = p.Fprintf(w, "--- Tax year %s ---", strconv.Itoa(year.Year))
	_, _ = fmt.Fprintln(w)

	schedule := func(label string, brackets taxengine.Schedule) {
		_, _ = fmt.Fprintf(w, "%s:\n", p.Sprintf(label))
		for _, bracket := range brackets {
			bound := p.Sprintf("above")
			if !bracket.IsUnbounded() {
				bound = p.Sprintf("up to %s", format.Currency(bracket.UpperBound, locale))
			}
			_, _ = fmt.Fprintf(w, "  %-24s %s\n", bound, format.Percent(bracket.Rate, locale))
		}
	}
	schedule("Federal brackets", year.Federal)
	schedule("Provincial brackets", year.Provincial)

	rule := func(label string, r taxengine.ContributionRule) {
		line(w, p, label, p.Sprintf("rate %s, exemption %s, ceiling %s, maximum %s",
			format.Percent(r.Rate, locale),
			format.Currency(r.Exemption, locale),
			format.Currency(r.Ceiling, locale),
			format.Currency(r.MaxContribution(), locale),
		))
	}
	rule("QPP", year.Pension)
	rule("QPIP", year.ParentalInsurance)
	rule("EI", year.EmploymentInsurance)
}

var csvHeader = []string{
	"scenario", "year", "gross income", "federal tax", "provincial tax",
	"qpp", "qpip", "ei", "total deductions", "net income",
	"marginal rate", "effective rate", "monthly net", "biweekly net", "hourly net",
	"delta gross", "delta net", "kept percent",
}

// CsvFormat writes the results in comma-separated value format. Amounts are
// rounded to cents without grouping so the file stays machine-readable.
func CsvFormat(w io.Writer, results []calculator.ScenarioResult) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return err
	}

	for _, result := range results {
		r := result.Result
		record := []string{
			result.Name,
			strconv.Itoa(result.Year),
			format.Cents(r.GrossIncome),
			format.Cents(r.FederalTax),
			format.Cents(r.ProvincialTax),
			format.Cents(r.Pension),
			format.Cents(r.ParentalInsurance),
			format.Cents(r.EmploymentInsurance),
			format.Cents(r.TotalDeductions),
			format.Cents(r.NetIncome),
			format.Cents(result.MarginalRate),
			format.Cents(result.EffectiveRate),
			format.Cents(result.Breakdown.Monthly.Net),
			format.Cents(result.Breakdown.Biweekly.Net),
			format.Cents(result.Breakdown.Hourly.Net),
			format.Cents(result.DeltaGross),
			format.Cents(result.DeltaNet),
			format.Cents(result.KeptPercent),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// CsvString returns the CSV rendering of results.
func CsvString(results []calculator.ScenarioResult) string {
	var buf bytes.Buffer
	if err := CsvFormat(&buf, results); err != nil {
		return ""
	}
	return buf.String()
}

var grossUpCsvHeader = []string{
	"name", "year", "target net", "gross income", "net income", "iterations", "converged",
}

// GrossUpCsvFormat writes gross-up summaries as CSV with amounts rounded to cents.
func GrossUpCsvFormat(w io.Writer, summaries []optimization.Summary) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(grossUpCsvHeader); err != nil {
		return err
	}

	for _, summary := range summaries {
		record := []string{
			summary.Name,
			strconv.Itoa(summary.Year),
			format.Cents(summary.TargetNet),
			format.Cents(summary.GrossIncome),
			format.Cents(summary.NetIncome),
			strconv.Itoa(summary.Iterations),
			strconv.FormatBool(summary.Converged),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
