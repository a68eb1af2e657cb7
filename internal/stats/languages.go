// Package stats contains statistics calculations and reporting.
package stats

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/verte-zerg/ghuls/internal/model"
)

// ErrInvariantViolation reports out-of-contract input such as a negative count.
var ErrInvariantViolation = errors.New("invariant violation")

// Percentages converts byte totals into a percentage breakdown rounded
// half-up to two decimals. Empty or all-zero totals yield an empty map.
func Percentages(totals model.LanguageTotals) (model.LanguagePercentages, error) {
	var grand int64
	for lang, bytes := range totals {
		if bytes < 0 {
			return nil, fmt.Errorf("%w: negative byte count %d for %q", ErrInvariantViolation, bytes, lang)
		}
		grand += bytes
	}
	out := model.LanguagePercentages{}
	if grand == 0 {
		return out, nil
	}
	for lang, bytes := range totals {
		out[lang] = float64(hundredths(bytes, grand)) / 100
	}
	return out, nil
}

// MergeLanguages returns the key-wise sum of a and b. Neither input is modified.
func MergeLanguages(a, b model.LanguageTotals) (model.LanguageTotals, error) {
	out := make(model.LanguageTotals, len(a)+len(b))
	for _, src := range []model.LanguageTotals{a, b} {
		for lang, bytes := range src {
			if bytes < 0 {
				return nil, fmt.Errorf("%w: negative byte count %d for %q", ErrInvariantViolation, bytes, lang)
			}
			out[lang] += bytes
		}
	}
	return out, nil
}

// AddLanguages accumulates one repository's byte counts into totals.
func AddLanguages(totals model.LanguageTotals, repo model.LanguageBytes) error {
	for lang, bytes := range repo {
		if bytes < 0 {
			return fmt.Errorf("%w: negative byte count %d for %q", ErrInvariantViolation, bytes, lang)
		}
	}
	for lang, bytes := range repo {
		totals[lang] += bytes
	}
	return nil
}

// SortedLanguages orders a breakdown by descending share, then by name.
func SortedLanguages(pcts model.LanguagePercentages) []model.LanguageShare {
	out := make([]model.LanguageShare, 0, len(pcts))
	for name, pct := range pcts {
		out = append(out, model.LanguageShare{Name: name, Percent: pct})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Percent == out[j].Percent {
			return out[i].Name < out[j].Name
		}
		return out[i].Percent > out[j].Percent
	})
	return out
}

// TopLanguages keeps the n largest shares and folds the rest into "Other".
func TopLanguages(shares []model.LanguageShare, n int) []model.LanguageShare {
	if n <= 0 || len(shares) <= n {
		return shares
	}
	out := make([]model.LanguageShare, 0, n+1)
	out = append(out, shares[:n]...)
	var rest int64
	for _, s := range shares[n:] {
		rest += int64(math.Round(s.Percent * 100))
	}
	return append(out, model.LanguageShare{Name: "Other", Percent: float64(rest) / 100})
}

// hundredths returns part/whole as a percentage in hundredths, rounded
// half-up in integer arithmetic. whole must be positive.
func hundredths(part, whole int64) int64 {
	return (part*20000 + whole) / (2 * whole)
}
