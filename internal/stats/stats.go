package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/verte-zerg/ghuls/internal/colors"
	"github.com/verte-zerg/ghuls/internal/model"
)

const (
	sparkChars  = " .:-=+*#%@"
	trendWindow = 4
	swatch      = "●"
)

// RenderOptions controls console output.
type RenderOptions struct {
	// Resolver maps language names to colors. Nil uses the embedded table.
	Resolver *colors.Resolver
	// ForceColor enables color even when w is not a terminal.
	ForceColor bool
	// TopLanguages limits each language table; 0 prints every language.
	TopLanguages int
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 || len(values) == 0 {
		copy(out, values)
		return out
	}
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = min(max(idx, 0), len(sparkChars)-1)
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderReport prints every section of a report.
func RenderReport(w io.Writer, r Report, opts RenderOptions) error {
	if err := RenderProfile(w, r); err != nil {
		return err
	}
	if err := RenderLanguages(w, "Personal languages", r.UserLanguages,
		"Could not find any personal data to analyze.", opts); err != nil {
		return err
	}
	if r.OrgsFetched {
		if err := RenderLanguages(w, "Organization languages", r.OrgLanguages,
			"Could not find any organization data to analyze.", opts); err != nil {
			return err
		}
		if len(r.OrgLanguages) > 0 && len(r.UserLanguages) > 0 {
			if err := RenderLanguages(w, "Combined languages", r.AllLanguages, "", opts); err != nil {
				return err
			}
		}
	}
	if err := RenderRepoTable(w, r.Repos, r.RepoTotals, r.IssuesFetched); err != nil {
		return err
	}
	if r.Calendar != nil {
		if err := RenderCalendar(w, *r.Calendar, r.Weekly); err != nil {
			return err
		}
	}
	if len(r.Skipped) > 0 {
		if _, err := fmt.Fprintf(w, "Skipped %d unreadable source(s): %s\n",
			len(r.Skipped), strings.Join(r.Skipped, ", ")); err != nil {
			return err
		}
	}
	return nil
}

// RenderProfile prints the subject header and follow counts.
func RenderProfile(w io.Writer, r Report) error {
	p := r.Profile
	title := p.Login
	if p.Name != "" && p.Name != p.Login {
		title = fmt.Sprintf("%s (%s)", p.Login, p.Name)
	}
	if r.Random {
		title += " [random]"
	}
	if _, err := fmt.Fprintln(w, title); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Public repos: %s  Followers: %s  Following: %s\n\n",
		humanize.Comma(int64(p.PublicRepos)),
		humanize.Comma(int64(r.Follow.Followers)),
		humanize.Comma(int64(r.Follow.Following))); err != nil {
		return err
	}
	return nil
}

// RenderLanguages prints a language breakdown. An empty breakdown prints
// emptyMsg instead of a table; an empty emptyMsg prints nothing.
func RenderLanguages(w io.Writer, title string, pcts model.LanguagePercentages, emptyMsg string, opts RenderOptions) error {
	if len(pcts) == 0 {
		if emptyMsg == "" {
			return nil
		}
		_, err := fmt.Fprintf(w, "%s\n\n", emptyMsg)
		return err
	}
	resolver := opts.Resolver
	if resolver == nil {
		defaults, err := colors.DefaultTable()
		if err != nil {
			return err
		}
		resolver = colors.NewResolver(defaults)
	}
	style := swatchStyle(w, opts.ForceColor)

	shares := TopLanguages(SortedLanguages(pcts), opts.TopLanguages)
	rows := make([][]string, 0, len(shares))
	right := map[int]bool{1: true}
	for _, s := range shares {
		color := resolver.Resolve(s.Name)
		row := []string{s.Name, fmt.Sprintf("%.2f%%", s.Percent), string(color)}
		if style != nil {
			row = append([]string{style(color)}, row...)
			right = map[int]bool{2: true}
		}
		rows = append(rows, row)
	}
	if _, err := fmt.Fprintln(w, title); err != nil {
		return err
	}
	if err := writeLines(w, table{rows: rows, rightAlign: right}.lines()); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w)
	return err
}

// RenderColors prints the resolved color of each language name.
func RenderColors(w io.Writer, resolver *colors.Resolver, names []string, opts RenderOptions) error {
	style := swatchStyle(w, opts.ForceColor)
	rows := make([][]string, 0, len(names))
	for _, name := range names {
		color := resolver.Resolve(name)
		row := []string{name, string(color)}
		if style != nil {
			row = append([]string{style(color)}, row...)
		}
		rows = append(rows, row)
	}
	return writeLines(w, table{rows: rows}.lines())
}

// RenderRepoTable prints per-repository social counts and, when issues is
// set, issue and pull request counts, with a totals footer.
func RenderRepoTable(w io.Writer, repos []model.RepoReport, totals model.RepoMetrics, issues bool) error {
	if len(repos) == 0 {
		_, err := fmt.Fprintf(w, "No repositories to summarize.\n\n")
		return err
	}
	headers := []string{"Repository", "Stars", "Forks", "Watchers"}
	if issues {
		headers = append(headers, "Issues open", "closed", "PRs open", "closed", "merged")
	}
	row := func(name string, m model.RepoMetrics) []string {
		cells := []string{name, comma(m.Stars), comma(m.Forks), comma(m.Watchers)}
		if issues {
			cells = append(cells,
				comma(m.Issues.Open), comma(m.Issues.Closed),
				comma(m.Pulls.Open), comma(m.Pulls.Closed), comma(m.Pulls.Merged))
		}
		return cells
	}
	rows := make([][]string, 0, len(repos))
	for _, r := range repos {
		rows = append(rows, row(r.Repo.Name, r.Metrics))
	}
	right := make(map[int]bool, len(headers))
	for i := 1; i < len(headers); i++ {
		right[i] = true
	}
	if _, err := fmt.Fprintln(w, "Repositories"); err != nil {
		return err
	}
	if err := writeLines(w, table{
		headers:    headers,
		rows:       rows,
		footer:     row("Total", totals),
		rightAlign: right,
	}.lines()); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w)
	return err
}

// RenderCalendar prints contribution totals, averages, streaks, the monthly
// breakdown and a weekly sparkline.
func RenderCalendar(w io.Writer, s model.CalendarSummary, weekly []float64) error {
	if _, err := fmt.Fprintln(w, "Contributions"); err != nil {
		return err
	}
	if s.Days == 0 {
		_, err := fmt.Fprintf(w, "No contribution data available.\n\n")
		return err
	}
	lines := []string{
		fmt.Sprintf("Total: %s over %s days", humanize.Comma(int64(s.Total)), humanize.Comma(int64(s.Days))),
		fmt.Sprintf("Average: %s/day  %s/week  %s/month",
			humanize.Comma(int64(s.AvgDay)), humanize.Comma(int64(s.AvgWeek)), humanize.Comma(int64(s.AvgMonth))),
		fmt.Sprintf("Streaks: current %d days, longest %d days", s.CurrentStreak, s.LongestStreak),
	}
	if s.BusiestDay.Count > 0 {
		lines = append(lines, fmt.Sprintf("Busiest day: %s (%s)",
			s.BusiestDay.Date.Format(time.DateOnly), humanize.Comma(int64(s.BusiestDay.Count))))
	}
	if err := writeLines(w, lines); err != nil {
		return err
	}

	monthly := MonthlyTotals(s)
	if len(monthly) > 0 {
		rows := make([][]string, 0, len(monthly))
		for _, m := range monthly {
			rows = append(rows, []string{m.Month.String(), humanize.Comma(int64(m.Total))})
		}
		if err := writeLines(w, table{rows: rows, rightAlign: map[int]bool{1: true}}.lines()); err != nil {
			return err
		}
	}
	if len(weekly) > 0 {
		spark := []string{
			"Weekly: " + Sparkline(weekly),
			"Trend:  " + Sparkline(MovingAverage(weekly, trendWindow)),
		}
		if err := writeLines(w, spark); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}

// swatchStyle returns a colored-swatch renderer, or nil when w gets no color.
func swatchStyle(w io.Writer, force bool) func(colors.Color) string {
	if !shouldUseColor(w, force) {
		return nil
	}
	renderer := lipgloss.NewRenderer(w)
	if force {
		renderer.SetColorProfile(termenv.TrueColor)
	}
	return func(c colors.Color) string {
		return renderer.NewStyle().Foreground(lipgloss.Color(string(c))).Render(swatch)
	}
}

func comma(v int) string {
	return humanize.Comma(int64(v))
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func shouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
