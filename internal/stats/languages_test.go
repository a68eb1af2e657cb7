package stats

import (
	"errors"
	"math"
	"math/rand"
	"reflect"
	"testing"

	"github.com/verte-zerg/ghuls/internal/model"
)

func TestPercentagesTwoLanguages(t *testing.T) {
	got, err := Percentages(model.LanguageTotals{"Go": 300, "Python": 100})
	if err != nil {
		t.Fatalf("Percentages: %v", err)
	}
	want := model.LanguagePercentages{"Go": 75.0, "Python": 25.0}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestPercentagesEmpty(t *testing.T) {
	for _, totals := range []model.LanguageTotals{nil, {}, {"Go": 0, "C": 0}} {
		got, err := Percentages(totals)
		if err != nil {
			t.Fatalf("Percentages(%v): %v", totals, err)
		}
		if got == nil || len(got) != 0 {
			t.Fatalf("expected empty non-nil map for %v, got %v", totals, got)
		}
	}
}

func TestPercentagesRoundHalfUp(t *testing.T) {
	got, err := Percentages(model.LanguageTotals{"A": 1, "B": 2})
	if err != nil {
		t.Fatalf("Percentages: %v", err)
	}
	if got["A"] != 33.33 || got["B"] != 66.67 {
		t.Fatalf("unexpected rounding: %v", got)
	}
	got, err = Percentages(model.LanguageTotals{"A": 1, "B": 7})
	if err != nil {
		t.Fatalf("Percentages: %v", err)
	}
	if got["A"] != 12.5 || got["B"] != 87.5 {
		t.Fatalf("unexpected values: %v", got)
	}
}

func TestPercentagesExactHalves(t *testing.T) {
	cases := []struct {
		bytes int64
		want  float64
	}{
		{1005, 1.01},
		{1015, 1.02},
		{2675, 2.68},
		{4015, 4.02},
		{125, 0.13},
	}
	for _, tc := range cases {
		got, err := Percentages(model.LanguageTotals{"A": tc.bytes, "B": 100000 - tc.bytes})
		if err != nil {
			t.Fatalf("Percentages: %v", err)
		}
		if got["A"] != tc.want {
			t.Fatalf("%d/100000: expected %v, got %v", tc.bytes, tc.want, got["A"])
		}
	}
}

func TestTopLanguagesOtherIsExact(t *testing.T) {
	shares := []model.LanguageShare{
		{Name: "Go", Percent: 99.4},
		{Name: "C", Percent: 0.1},
		{Name: "D", Percent: 0.2},
		{Name: "E", Percent: 0.3},
	}
	got := TopLanguages(shares, 1)
	if len(got) != 2 || got[1].Name != "Other" || got[1].Percent != 0.6 {
		t.Fatalf("unexpected fold: %v", got)
	}
}

func TestPercentagesSumNearHundred(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		totals := randomTotals(rnd)
		if len(totals) == 0 {
			continue
		}
		var nonZero bool
		for _, v := range totals {
			if v > 0 {
				nonZero = true
			}
		}
		if !nonZero {
			continue
		}
		pcts, err := Percentages(totals)
		if err != nil {
			t.Fatalf("Percentages: %v", err)
		}
		var sum float64
		for _, p := range pcts {
			sum += p
		}
		if math.Abs(sum-100) > 0.1 {
			t.Fatalf("sum %.4f too far from 100 for %v", sum, totals)
		}
	}
}

func TestPercentagesNegative(t *testing.T) {
	_, err := Percentages(model.LanguageTotals{"Go": -1})
	if !errors.Is(err, ErrInvariantViolation) {
		t.Fatalf("expected invariant violation, got %v", err)
	}
}

func TestMergeLanguagesEmpty(t *testing.T) {
	got, err := MergeLanguages(model.LanguageTotals{}, model.LanguageTotals{})
	if err != nil {
		t.Fatalf("MergeLanguages: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %v", got)
	}
	got, err = MergeLanguages(model.LanguageTotals{"Ruby": 10}, model.LanguageTotals{})
	if err != nil {
		t.Fatalf("MergeLanguages: %v", err)
	}
	if !reflect.DeepEqual(got, model.LanguageTotals{"Ruby": 10}) {
		t.Fatalf("unexpected merge: %v", got)
	}
}

func TestMergeLanguagesUnion(t *testing.T) {
	a := model.LanguageTotals{"Go": 5, "C": 1}
	b := model.LanguageTotals{"Go": 7, "Rust": 3}
	got, err := MergeLanguages(a, b)
	if err != nil {
		t.Fatalf("MergeLanguages: %v", err)
	}
	want := model.LanguageTotals{"Go": 12, "C": 1, "Rust": 3}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if a["Go"] != 5 || b["Go"] != 7 {
		t.Fatalf("inputs mutated: %v %v", a, b)
	}
}

func TestMergeLanguagesCommutativeAssociative(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	for i := 0; i < 100; i++ {
		a, b, c := randomTotals(rnd), randomTotals(rnd), randomTotals(rnd)
		ab := mustMerge(t, a, b)
		ba := mustMerge(t, b, a)
		if !reflect.DeepEqual(ab, ba) {
			t.Fatalf("merge not commutative: %v vs %v", ab, ba)
		}
		left := mustMerge(t, ab, c)
		right := mustMerge(t, a, mustMerge(t, b, c))
		if !reflect.DeepEqual(left, right) {
			t.Fatalf("merge not associative: %v vs %v", left, right)
		}
	}
}

func TestMergeLanguagesNegative(t *testing.T) {
	_, err := MergeLanguages(model.LanguageTotals{"Go": 1}, model.LanguageTotals{"C": -2})
	if !errors.Is(err, ErrInvariantViolation) {
		t.Fatalf("expected invariant violation, got %v", err)
	}
}

func TestAddLanguages(t *testing.T) {
	totals := model.LanguageTotals{}
	if err := AddLanguages(totals, model.LanguageBytes{"Go": 10, "Shell": 2}); err != nil {
		t.Fatalf("AddLanguages: %v", err)
	}
	if err := AddLanguages(totals, model.LanguageBytes{"Go": 5}); err != nil {
		t.Fatalf("AddLanguages: %v", err)
	}
	if !reflect.DeepEqual(totals, model.LanguageTotals{"Go": 15, "Shell": 2}) {
		t.Fatalf("unexpected totals: %v", totals)
	}
	err := AddLanguages(totals, model.LanguageBytes{"Go": 1, "C": -1})
	if !errors.Is(err, ErrInvariantViolation) {
		t.Fatalf("expected invariant violation, got %v", err)
	}
	if totals["Go"] != 15 {
		t.Fatalf("totals changed by rejected input: %v", totals)
	}
}

func TestSortedAndTopLanguages(t *testing.T) {
	shares := SortedLanguages(model.LanguagePercentages{"C": 10, "Go": 60, "B": 10, "Rust": 20})
	names := make([]string, len(shares))
	for i, s := range shares {
		names[i] = s.Name
	}
	if !reflect.DeepEqual(names, []string{"Go", "Rust", "B", "C"}) {
		t.Fatalf("unexpected order: %v", names)
	}
	top := TopLanguages(shares, 2)
	if len(top) != 3 || top[2].Name != "Other" || top[2].Percent != 20 {
		t.Fatalf("unexpected top languages: %+v", top)
	}
	if len(TopLanguages(shares, 0)) != 4 {
		t.Fatalf("expected n <= 0 to keep all shares")
	}
}

func mustMerge(t *testing.T, a, b model.LanguageTotals) model.LanguageTotals {
	t.Helper()
	out, err := MergeLanguages(a, b)
	if err != nil {
		t.Fatalf("MergeLanguages: %v", err)
	}
	return out
}

func randomTotals(rnd *rand.Rand) model.LanguageTotals {
	langs := []string{"Go", "Ruby", "C", "Rust", "Python", "Shell", "HTML"}
	out := model.LanguageTotals{}
	n := rnd.Intn(len(langs) + 1)
	for i := 0; i < n; i++ {
		out[langs[rnd.Intn(len(langs))]] = rnd.Int63n(1_000_000)
	}
	return out
}
