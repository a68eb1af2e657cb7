// Package colors resolves language names to display colors.
package colors

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/lucasb-eyer/go-colorful"
)

// Fallback is returned for languages missing from the table.
const Fallback Color = "#586069"

// Color is a normalized "#rrggbb" hex color.
type Color string

// Table maps a language name, as spelled by the platform, to its color.
type Table map[string]Color

//go:embed colors.json
var defaultTableJSON []byte

var loadDefault = sync.OnceValues(func() (Table, error) {
	return LoadTable(bytes.NewReader(defaultTableJSON))
})

var namedColors = map[string]Color{
	"black":   "#000000",
	"silver":  "#c0c0c0",
	"gray":    "#808080",
	"grey":    "#808080",
	"white":   "#ffffff",
	"maroon":  "#800000",
	"red":     "#ff0000",
	"purple":  "#800080",
	"fuchsia": "#ff00ff",
	"magenta": "#ff00ff",
	"green":   "#008000",
	"lime":    "#00ff00",
	"olive":   "#808000",
	"yellow":  "#ffff00",
	"navy":    "#000080",
	"blue":    "#0000ff",
	"teal":    "#008080",
	"aqua":    "#00ffff",
	"cyan":    "#00ffff",
	"orange":  "#ffa500",
}

// DefaultTable returns the embedded color table. It is parsed once per process.
func DefaultTable() (Table, error) {
	return loadDefault()
}

// LoadTable parses a JSON object of language name to color.
func LoadTable(r io.Reader) (Table, error) {
	var raw map[string]string
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode color table: %w", err)
	}
	table := make(Table, len(raw))
	for name, value := range raw {
		c, err := ParseColor(value)
		if err != nil {
			return nil, fmt.Errorf("language %q: %w", name, err)
		}
		table[name] = c
	}
	return table, nil
}

// ParseColor normalizes "#rgb", "#rrggbb" or a basic CSS color name.
func ParseColor(value string) (Color, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if c, ok := namedColors[v]; ok {
		return c, nil
	}
	hex, ok := strings.CutPrefix(v, "#")
	if !ok || (len(hex) != 3 && len(hex) != 6) || strings.Trim(hex, "0123456789abcdef") != "" {
		return "", fmt.Errorf("invalid color %q", value)
	}
	c, err := colorful.Hex(v)
	if err != nil {
		return "", fmt.Errorf("invalid color %q: %w", value, err)
	}
	return Color(c.Hex()), nil
}

// With returns a copy of the table with overrides applied.
func (t Table) With(overrides map[string]string) (Table, error) {
	out := make(Table, len(t)+len(overrides))
	for name, c := range t {
		out[name] = c
	}
	for name, value := range overrides {
		c, err := ParseColor(value)
		if err != nil {
			return nil, fmt.Errorf("override %q: %w", name, err)
		}
		out[name] = c
	}
	return out, nil
}

// Names returns the table's language names sorted case-insensitively.
func (t Table) Names() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		li, lj := strings.ToLower(names[i]), strings.ToLower(names[j])
		if li == lj {
			return names[i] < names[j]
		}
		return li < lj
	})
	return names
}

// Resolver looks up colors in an immutable table.
type Resolver struct {
	table  Table
	folded map[string]Color
}

// NewResolver builds a resolver over a copy of table.
func NewResolver(table Table) *Resolver {
	r := &Resolver{
		table:  make(Table, len(table)),
		folded: make(map[string]Color, len(table)),
	}
	// Names are visited in sorted order so case-folded collisions resolve the same way every run.
	for _, name := range table.Names() {
		c := table[name]
		r.table[name] = c
		key := strings.ToLower(name)
		if _, ok := r.folded[key]; !ok {
			r.folded[key] = c
		}
	}
	return r
}

// Resolve returns the color for a language. An exact match wins over a
// case-insensitive one; unknown or empty names get Fallback.
func (r *Resolver) Resolve(name string) Color {
	if c, ok := r.table[name]; ok {
		return c
	}
	if c, ok := r.folded[strings.ToLower(strings.TrimSpace(name))]; ok {
		return c
	}
	return Fallback
}
