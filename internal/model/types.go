// Package model defines shared data structures.
package model

import "time"

// Subject types reported by the platform.
const (
	SubjectUser         = "User"
	SubjectOrganization = "Organization"
)

// Subject identifies the user or organization being analyzed.
type Subject struct {
	ID    int64
	Login string
	Type  string
}

// UserProfile is the subject's public profile.
type UserProfile struct {
	Subject
	Name        string
	PublicRepos int
	Followers   int
	Following   int
}

// Follow holds follower counts for a subject.
type Follow struct {
	Followers int
	Following int
}

// LanguageBytes maps a language name to the bytes one repository contains.
type LanguageBytes map[string]int64

// LanguageTotals maps a language name to bytes summed across repositories.
type LanguageTotals map[string]int64

// LanguagePercentages maps a language name to its share of the total (0-100).
type LanguagePercentages map[string]float64

// LanguageShare is one row of a sorted percentage breakdown.
type LanguageShare struct {
	Name    string
	Percent float64
}

// Repository identifies a repository.
type Repository struct {
	Owner string
	Name  string
	Fork  bool
}

// FullName returns the owner/name identifier.
func (r Repository) FullName() string {
	return r.Owner + "/" + r.Name
}

// RepositorySet holds all public repositories of a subject and the forked ones.
// Forks is a membership filter; it may come from a different API listing than All.
type RepositorySet struct {
	All   []Repository
	Forks []Repository
}

// Social holds the social counters of a repository.
type Social struct {
	Forks    int
	Stars    int
	Watchers int
}

// IssueCounts counts issues by state.
type IssueCounts struct {
	Open   int
	Closed int
}

// PullCounts counts pull requests by state. Closed excludes merged pull requests.
type PullCounts struct {
	Open   int
	Closed int
	Merged int
}

// RepoMetrics holds the counters reported per repository.
type RepoMetrics struct {
	Social
	Issues IssueCounts
	Pulls  PullCounts
}

// RepoReport pairs a repository with its metrics.
type RepoReport struct {
	Repo    Repository
	Metrics RepoMetrics
}

// CalendarDay is one day of the contribution calendar.
type CalendarDay struct {
	Date  time.Time
	Count int
}

// CalendarSeries is an ordered year of contribution counts.
type CalendarSeries []CalendarDay

// CalendarSummary is derived from a CalendarSeries.
type CalendarSummary struct {
	Days          int
	Total         int
	AvgDay        int
	AvgWeek       int
	AvgMonth      int
	Monthly       map[time.Month]int
	CurrentStreak int
	LongestStreak int
	BusiestDay    CalendarDay
}

// ReportConfig defines what a report run fetches.
type ReportConfig struct {
	Subject     string
	Orgs        bool
	Calendar    bool
	Issues      bool
	MaxAttempts int
	MaxID       int64
}
