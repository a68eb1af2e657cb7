package colors

import (
	"strings"
	"sync"
	"testing"
)

func TestResolveKnownLanguage(t *testing.T) {
	table, err := DefaultTable()
	if err != nil {
		t.Fatalf("default table: %v", err)
	}
	r := NewResolver(table)
	if got := r.Resolve("Rust"); got != table["Rust"] {
		t.Fatalf("expected %s for Rust, got %s", table["Rust"], got)
	}
	if got := r.Resolve("Go"); got != "#00add8" {
		t.Fatalf("expected normalized Go color, got %s", got)
	}
}

func TestResolveFallback(t *testing.T) {
	r := NewResolver(Table{"Rust": "#dea584"})
	for _, name := range []string{"ThisLanguageDoesNotExist", "", "   "} {
		if got := r.Resolve(name); got != Fallback {
			t.Fatalf("expected fallback for %q, got %s", name, got)
		}
	}
}

func TestResolveCaseInsensitiveSecondChance(t *testing.T) {
	r := NewResolver(Table{"JavaScript": "#f1e05a", "javascript": "#000000"})
	if got := r.Resolve("JavaScript"); got != "#f1e05a" {
		t.Fatalf("expected exact match, got %s", got)
	}
	if got := r.Resolve("javascript"); got != "#000000" {
		t.Fatalf("expected exact match for lower-case key, got %s", got)
	}
	if got := r.Resolve("JAVASCRIPT"); got != "#f1e05a" {
		t.Fatalf("expected case-folded match, got %s", got)
	}
}

func TestResolverIsolatedFromSourceTable(t *testing.T) {
	src := Table{"Go": "#00add8"}
	r := NewResolver(src)
	src["Go"] = "#ffffff"
	if got := r.Resolve("Go"); got != "#00add8" {
		t.Fatalf("resolver changed after source mutation: %s", got)
	}
}

func TestResolveConcurrent(t *testing.T) {
	table, err := DefaultTable()
	if err != nil {
		t.Fatalf("default table: %v", err)
	}
	r := NewResolver(table)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = r.Resolve("Python")
				_ = r.Resolve("nope")
			}
		}()
	}
	wg.Wait()
}

func TestParseColor(t *testing.T) {
	cases := map[string]Color{
		"#ABC":    "#aabbcc",
		"#A1B2C3": "#a1b2c3",
		" red ":   "#ff0000",
		"Gray":    "#808080",
		"#0f0":    "#00ff00",
		"#FFF":    "#ffffff",
	}
	for in, want := range cases {
		got, err := ParseColor(in)
		if err != nil {
			t.Fatalf("ParseColor(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseColor(%q) = %s, want %s", in, got, want)
		}
	}
	for _, bad := range []string{"", "abc", "#abcd", "#gggggg", "#+1aabb", "#1234567", "chartreuse-ish"} {
		if _, err := ParseColor(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestLoadTableRejectsInvalidColor(t *testing.T) {
	_, err := LoadTable(strings.NewReader(`{"Go": "#00ADD8", "Bad": "nope"}`))
	if err == nil || !strings.Contains(err.Error(), "Bad") {
		t.Fatalf("expected error naming the bad entry, got %v", err)
	}
}

func TestTableWithOverrides(t *testing.T) {
	base := Table{"Go": "#00add8"}
	out, err := base.With(map[string]string{"Go": "blue", "Zig": "#ec915c"})
	if err != nil {
		t.Fatalf("With: %v", err)
	}
	if out["Go"] != "#0000ff" || out["Zig"] != "#ec915c" {
		t.Fatalf("unexpected overrides: %v", out)
	}
	if base["Go"] != "#00add8" {
		t.Fatalf("base table mutated: %v", base)
	}
	if _, err := base.With(map[string]string{"Go": "#12"}); err == nil {
		t.Fatalf("expected error for invalid override")
	}
}

func TestTableNamesSorted(t *testing.T) {
	names := Table{"b": "#000000", "A": "#000000", "C": "#000000"}.Names()
	if strings.Join(names, ",") != "A,b,C" {
		t.Fatalf("unexpected order: %v", names)
	}
}
