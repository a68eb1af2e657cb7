package stats

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
)

// table lays out rows in aligned columns. A non-empty footer is separated
// from the body by a rule.
type table struct {
	headers    []string
	rows       [][]string
	footer     []string
	rightAlign map[int]bool
}

func (t table) lines() []string {
	colCount := max(len(t.headers), len(t.footer))
	for _, row := range t.rows {
		if len(row) > colCount {
			colCount = len(row)
		}
	}
	if colCount == 0 {
		return nil
	}

	widths := make([]int, colCount)
	measure := func(row []string) {
		for i, cell := range row {
			if w := displayWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	measure(t.headers)
	for _, row := range t.rows {
		measure(row)
	}
	measure(t.footer)

	lines := make([]string, 0, len(t.rows)+3)
	if len(t.headers) > 0 {
		lines = append(lines, t.formatRow(t.headers, widths))
	}
	for _, row := range t.rows {
		lines = append(lines, t.formatRow(row, widths))
	}
	if len(t.footer) > 0 {
		total := colCount - 1
		for _, w := range widths {
			total += w
		}
		lines = append(lines, strings.Repeat("─", total))
		lines = append(lines, t.formatRow(t.footer, widths))
	}
	return lines
}

func (t table) formatRow(row []string, widths []int) string {
	var b strings.Builder
	for i := 0; i < len(widths); i++ {
		cell := ""
		if i < len(row) {
			cell = row[i]
		}
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(padCell(cell, widths[i], t.rightAlign[i]))
	}
	return strings.TrimRight(b.String(), " ")
}

func padCell(value string, width int, rightAlign bool) string {
	padding := width - displayWidth(value)
	if padding <= 0 {
		return value
	}
	if rightAlign {
		return strings.Repeat(" ", padding) + value
	}
	return value + strings.Repeat(" ", padding)
}

// displayWidth measures terminal cells, ignoring ANSI escape sequences.
func displayWidth(value string) int {
	return runewidth.StringWidth(ansi.Strip(value))
}
