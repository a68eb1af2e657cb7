package stats

import (
	"fmt"
	"sort"
	"time"

	"github.com/verte-zerg/ghuls/internal/model"
)

const monthsPerYear = 12

// Summarize derives totals and integer averages from a year of contribution
// counts. Averages truncate toward zero. Months without contributions are left
// out of Monthly.
func Summarize(series model.CalendarSeries) (model.CalendarSummary, error) {
	summary := model.CalendarSummary{Monthly: map[time.Month]int{}}
	for _, day := range series {
		if day.Count < 0 {
			return model.CalendarSummary{}, fmt.Errorf("%w: negative contribution count %d on %s",
				ErrInvariantViolation, day.Count, day.Date.Format(time.DateOnly))
		}
	}
	if len(series) == 0 {
		return summary, nil
	}

	for _, day := range series {
		summary.Total += day.Count
		if day.Count > 0 {
			summary.Monthly[day.Date.Month()] += day.Count
		}
		if day.Count > summary.BusiestDay.Count {
			summary.BusiestDay = day
		}
	}

	summary.Days = len(series)
	weeks := summary.Days / 7
	if weeks == 0 {
		weeks = 1
	}
	summary.AvgDay = summary.Total / summary.Days
	summary.AvgWeek = summary.Total / weeks
	summary.AvgMonth = summary.Total / monthsPerYear
	summary.CurrentStreak, summary.LongestStreak = computeStreaks(series)
	return summary, nil
}

// MonthTotal is one row of the monthly breakdown.
type MonthTotal struct {
	Month time.Month
	Total int
}

// MonthlyTotals lists the non-empty months in calendar order.
func MonthlyTotals(summary model.CalendarSummary) []MonthTotal {
	out := make([]MonthTotal, 0, len(summary.Monthly))
	for m := time.January; m <= time.December; m++ {
		if total, ok := summary.Monthly[m]; ok {
			out = append(out, MonthTotal{Month: m, Total: total})
		}
	}
	return out
}

// WeeklyCounts sums the series into consecutive 7-day buckets.
func WeeklyCounts(series model.CalendarSeries) []float64 {
	if len(series) == 0 {
		return nil
	}
	out := make([]float64, 0, len(series)/7+1)
	for start := 0; start < len(series); start += 7 {
		end := start + 7
		if end > len(series) {
			end = len(series)
		}
		var sum int
		for _, day := range series[start:end] {
			sum += day.Count
		}
		out = append(out, float64(sum))
	}
	return out
}

// computeStreaks returns the streak ending at the last day of the series and
// the longest streak. A zero count on the last day does not break the current
// streak since that day may still be in progress.
func computeStreaks(series model.CalendarSeries) (int, int) {
	counts := make(map[time.Time]int, len(series))
	for _, day := range series {
		counts[dateOf(day.Date)] += day.Count
	}
	dates := make([]time.Time, 0, len(counts))
	for d := range counts {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool {
		return dates[i].Before(dates[j])
	})

	longest := 0
	run := 0
	var prev time.Time
	for _, d := range dates {
		switch {
		case counts[d] <= 0:
			run = 0
		case run > 0 && d.Equal(prev.AddDate(0, 0, 1)):
			run++
		default:
			run = 1
		}
		if run > longest {
			longest = run
		}
		prev = d
	}

	last := dates[len(dates)-1]
	if counts[last] <= 0 {
		last = last.AddDate(0, 0, -1)
	}
	current := 0
	for d := last; counts[d] > 0; d = d.AddDate(0, 0, -1) {
		current++
	}
	return current, longest
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
