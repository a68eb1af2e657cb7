package stats

import (
	"fmt"

	"github.com/verte-zerg/ghuls/internal/model"
)

// ForkExclude returns the repositories of set.All that are not listed in
// set.Forks, keeping the order of set.All.
func ForkExclude(set model.RepositorySet) []model.Repository {
	forks := make(map[string]struct{}, len(set.Forks))
	for _, r := range set.Forks {
		forks[r.FullName()] = struct{}{}
	}
	out := make([]model.Repository, 0, len(set.All))
	for _, r := range set.All {
		if _, ok := forks[r.FullName()]; ok {
			continue
		}
		out = append(out, r)
	}
	return out
}

// IssuePullSummary sums repository metrics element-wise.
func IssuePullSummary(perRepo []model.RepoMetrics) (model.RepoMetrics, error) {
	var sum model.RepoMetrics
	for i, m := range perRepo {
		if err := checkMetrics(m); err != nil {
			return model.RepoMetrics{}, fmt.Errorf("entry %d: %w", i, err)
		}
		sum.Forks += m.Forks
		sum.Stars += m.Stars
		sum.Watchers += m.Watchers
		sum.Issues.Open += m.Issues.Open
		sum.Issues.Closed += m.Issues.Closed
		sum.Pulls.Open += m.Pulls.Open
		sum.Pulls.Closed += m.Pulls.Closed
		sum.Pulls.Merged += m.Pulls.Merged
	}
	return sum, nil
}

func checkMetrics(m model.RepoMetrics) error {
	counts := []struct {
		name  string
		value int
	}{
		{"forks", m.Forks},
		{"stars", m.Stars},
		{"watchers", m.Watchers},
		{"open issues", m.Issues.Open},
		{"closed issues", m.Issues.Closed},
		{"open pulls", m.Pulls.Open},
		{"closed pulls", m.Pulls.Closed},
		{"merged pulls", m.Pulls.Merged},
	}
	for _, c := range counts {
		if c.value < 0 {
			return fmt.Errorf("%w: negative %s count %d", ErrInvariantViolation, c.name, c.value)
		}
	}
	return nil
}
