package gamify

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Seasons are calendar quarters coded YYYY-Q[1-4], computed from UTC
// wall-clock time. A season is a pure value, not a stored entity.

var (
	seasonCanonicalRe = regexp.MustCompile(`^(\d{4})-Q([1-4])$`)
	seasonCompactRe   = regexp.MustCompile(`^(\d{4})Q([1-4])$`)
	seasonNumericRe   = regexp.MustCompile(`^(\d{4})-([1-4])$`)
	seasonReversedRe  = regexp.MustCompile(`^Q([1-4])-(\d{4})$`)
)

// SeasonCode returns the canonical season code for the given instant.
func SeasonCode(t time.Time) string {
	t = t.UTC()
	quarter := (int(t.Month())-1)/3 + 1
	return fmt.Sprintf("%04d-Q%d", t.Year(), quarter)
}

// NormalizeSeason converts a stored season code to canonical YYYY-Q[1-4]
// form. Legacy rows carry variants like "2024Q1", "2024-1" and "Q1-2024";
// those are converted, not rejected. The second return is false only when
// the input resembles no known season form.
func NormalizeSeason(code string) (string, bool) {
	s := strings.ToUpper(strings.TrimSpace(code))
	if s == "" {
		return "", false
	}
	if m := seasonCanonicalRe.FindStringSubmatch(s); m != nil {
		return m[1] + "-Q" + m[2], true
	}
	if m := seasonCompactRe.FindStringSubmatch(s); m != nil {
		return m[1] + "-Q" + m[2], true
	}
	if m := seasonNumericRe.FindStringSubmatch(s); m != nil {
		return m[1] + "-Q" + m[2], true
	}
	if m := seasonReversedRe.FindStringSubmatch(s); m != nil {
		return m[2] + "-Q" + m[1], true
	}
	return "", false
}

// SeasonVariants lists every stored spelling, uppercased, that normalizes
// to the given canonical code. Used to match legacy rows in SQL without a
// per-row normalization pass; NormalizeSeason remains the authority.
func SeasonVariants(canonical string) []string {
	m := seasonCanonicalRe.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(canonical)))
	if m == nil {
		return nil
	}
	year, q := m[1], m[2]
	return []string{
		year + "-Q" + q,
		year + "Q" + q,
		year + "-" + q,
		"Q" + q + "-" + year,
	}
}
