// Package safety implements the pre-dispense validation checks. The
// validator is pure: it takes a resolved prescription context and returns the
// ordered list of violations, touching no storage and keeping no state.
package safety

import (
	"fmt"
	"strings"

	"github.com/medihub/pharmacy/internal/domain/catalog"
	"github.com/medihub/pharmacy/internal/records"
)

// Validator runs allergy, dosage and interaction checks against a catalog.
type Validator struct {
	cat *catalog.Catalog
}

func New(cat *catalog.Catalog) *Validator {
	return &Validator{cat: cat}
}

// DailyTotal parses a dosage string into a per-day total. A hyphen-separated
// schedule such as "1-0-1" sums its numeric segments, a bare integer is taken
// as-is, anything else counts as zero.
func DailyTotal(dosage string) int {
	if strings.Contains(dosage, "-") {
		total := 0
		for _, part := range strings.Split(dosage, "-") {
			part = strings.TrimSpace(part)
			n, ok := atoiDigits(part)
			if ok {
				total += n
			}
		}
		return total
	}
	if n, ok := atoiDigits(dosage); ok {
		return n
	}
	return 0
}

// atoiDigits parses a non-empty all-digit string. Signs, spaces and any other
// character make it fail, mirroring a strict digit check rather than a
// general integer parse.
func atoiDigits(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}

// Evaluate returns every violation found in the prescription context, in
// check order: per-line allergy then dosage alerts, then pairwise interaction
// alerts across all lines. An empty result means the prescription is safe to
// fulfill; a non-empty result must block dispensing entirely.
func (v *Validator) Evaluate(pctx *records.PrescriptionContext) []string {
	var violations []string

	allergyTokens := splitAllergies(pctx.Allergies)

	for _, line := range pctx.Lines {
		name := line.MedicineName
		lower := strings.ToLower(name)

		for _, tok := range allergyTokens {
			if strings.Contains(lower, tok) {
				violations = append(violations,
					fmt.Sprintf("ALLERGY ALERT: Patient is allergic to %s (Found in %s)", tok, name))
			}
		}

		daily := DailyTotal(line.Dosage)
		for _, limit := range v.cat.LimitsFor(name) {
			if daily > limit.MaxMg {
				violations = append(violations,
					fmt.Sprintf("DOSAGE ALERT: %s dosage (%d/day) exceeds safety limit of %d.", name, daily, limit.MaxMg))
			}
		}
	}

	for i := 0; i < len(pctx.Lines); i++ {
		for j := i + 1; j < len(pctx.Lines); j++ {
			a, b := pctx.Lines[i].MedicineName, pctx.Lines[j].MedicineName
			for _, in := range v.cat.PairWarnings(a, b) {
				violations = append(violations,
					fmt.Sprintf("INTERACTION ALERT: %s + %s -> %s", a, b, in.Warning))
			}
		}
	}

	return violations
}

// splitAllergies tokenizes the patient's free-text allergy field: comma
// separated, trimmed, lowercased, empties dropped.
func splitAllergies(allergies string) []string {
	var out []string
	for _, tok := range strings.Split(allergies, ",") {
		tok = strings.TrimSpace(strings.ToLower(tok))
		if tok != "" {
			out = append(out, tok)
		}
	}
	return out
}
