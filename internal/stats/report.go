package stats

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/verte-zerg/ghuls/internal/discovery"
	"github.com/verte-zerg/ghuls/internal/model"
)

// ErrSubjectNotFound is returned when the requested subject does not exist.
var ErrSubjectNotFound = errors.New("subject not found")

// ReportSteps is the number of Tracker steps a BuildReport run emits.
const ReportSteps = 6

// Source fetches raw platform data for a report.
type Source interface {
	FetchUser(ctx context.Context, login string) (model.UserProfile, bool, error)
	FetchUserRepos(ctx context.Context, login string) (model.RepositorySet, error)
	FetchOrgs(ctx context.Context, login string) ([]string, error)
	FetchOrgRepos(ctx context.Context, org string) (model.RepositorySet, error)
	FetchRepoLanguages(ctx context.Context, repo model.Repository) (model.LanguageBytes, error)
	FetchRepoSocial(ctx context.Context, repo model.Repository) (model.Social, error)
	FetchRepoIssuesPulls(ctx context.Context, repo model.Repository) (model.RepoMetrics, error)
	FetchFollowersFollowing(ctx context.Context, login string) (model.Follow, error)
	FetchContributionCalendar(ctx context.Context, login string) (model.CalendarSeries, error)
	ProbeIdentity(ctx context.Context, id int64) (model.Subject, bool, error)
}

// Tracker receives one Step per report phase.
type Tracker interface {
	Step(label string)
}

// Options carries the optional collaborators of BuildReport.
type Options struct {
	Log     *logrus.Entry
	Tracker Tracker
	Locator *discovery.Locator
}

// Report contains precomputed data for stats rendering.
type Report struct {
	Profile       model.UserProfile
	Random        bool
	Follow        model.Follow
	UserLanguages model.LanguagePercentages
	OrgLanguages  model.LanguagePercentages
	AllLanguages  model.LanguagePercentages
	Orgs          []string
	OrgsFetched   bool
	Repos         []model.RepoReport
	RepoTotals    model.RepoMetrics
	IssuesFetched bool
	Skipped       []string
	Calendar      *model.CalendarSummary
	Weekly        []float64
}

type nopTracker struct{}

func (nopTracker) Step(string) {}

// BuildReport fetches and aggregates everything reported for one subject.
// Repositories that fail to load are skipped and listed in Report.Skipped.
func BuildReport(ctx context.Context, src Source, cfg model.ReportConfig, opts Options) (Report, error) {
	log := opts.Log
	if log == nil {
		quiet := logrus.New()
		quiet.SetOutput(io.Discard)
		log = logrus.NewEntry(quiet)
	}
	tracker := opts.Tracker
	if tracker == nil {
		tracker = nopTracker{}
	}

	var report Report
	login := cfg.Subject
	if login == "" {
		locator := opts.Locator
		if locator == nil {
			locator = discovery.New(
				discovery.WithMaxAttempts(cfg.MaxAttempts),
				discovery.WithMaxID(cfg.MaxID),
				discovery.WithLogger(log),
			)
		}
		subject, err := locator.Find(ctx, src.ProbeIdentity)
		if err != nil {
			return Report{}, fmt.Errorf("failed to pick a random subject: %w", err)
		}
		login = subject.Login
		report.Random = true
		log.Infof("picked random subject %s", login)
	}
	tracker.Step("subject " + login)

	profile, ok, err := src.FetchUser(ctx, login)
	if err != nil {
		return Report{}, fmt.Errorf("failed to fetch %s: %w", login, err)
	}
	if !ok {
		return Report{}, fmt.Errorf("%w: %s", ErrSubjectNotFound, login)
	}
	report.Profile = profile
	log = log.WithField("subject", profile.Login)
	tracker.Step("profile")

	userSet, err := src.FetchUserRepos(ctx, profile.Login)
	if err != nil {
		return Report{}, fmt.Errorf("failed to list repositories of %s: %w", profile.Login, err)
	}
	userTotals := model.LanguageTotals{}
	perRepo := make([]model.RepoMetrics, 0, len(userSet.All))
	for _, repo := range ForkExclude(userSet) {
		if err := ctx.Err(); err != nil {
			return Report{}, err
		}
		entry, langs, err := collectRepo(ctx, src, repo, cfg.Issues)
		if err != nil {
			if ctx.Err() != nil {
				return Report{}, ctx.Err()
			}
			log.WithField("repo", repo.FullName()).Warnf("skipping repository: %v", err)
			report.Skipped = append(report.Skipped, repo.FullName())
			continue
		}
		if err := AddLanguages(userTotals, langs); err != nil {
			return Report{}, fmt.Errorf("%s: %w", repo.FullName(), err)
		}
		report.Repos = append(report.Repos, entry)
		perRepo = append(perRepo, entry.Metrics)
	}
	if report.RepoTotals, err = IssuePullSummary(perRepo); err != nil {
		return Report{}, err
	}
	report.IssuesFetched = cfg.Issues
	if report.UserLanguages, err = Percentages(userTotals); err != nil {
		return Report{}, err
	}
	tracker.Step("repositories")

	orgTotals := model.LanguageTotals{}
	if cfg.Orgs {
		if report.Orgs, err = src.FetchOrgs(ctx, profile.Login); err != nil {
			return Report{}, fmt.Errorf("failed to list organizations of %s: %w", profile.Login, err)
		}
		report.OrgsFetched = true
		for _, org := range report.Orgs {
			totals, skipped, err := orgLanguages(ctx, src, org, log)
			if err != nil {
				return Report{}, err
			}
			report.Skipped = append(report.Skipped, skipped...)
			if orgTotals, err = MergeLanguages(orgTotals, totals); err != nil {
				return Report{}, err
			}
		}
	}
	if report.OrgLanguages, err = Percentages(orgTotals); err != nil {
		return Report{}, err
	}
	allTotals, err := MergeLanguages(userTotals, orgTotals)
	if err != nil {
		return Report{}, err
	}
	if report.AllLanguages, err = Percentages(allTotals); err != nil {
		return Report{}, err
	}
	tracker.Step("organizations")

	if report.Follow, err = src.FetchFollowersFollowing(ctx, profile.Login); err != nil {
		return Report{}, fmt.Errorf("failed to fetch followers of %s: %w", profile.Login, err)
	}
	tracker.Step("followers")

	if cfg.Calendar {
		series, err := src.FetchContributionCalendar(ctx, profile.Login)
		if err != nil {
			if ctx.Err() != nil {
				return Report{}, ctx.Err()
			}
			log.Warnf("contribution calendar unavailable: %v", err)
		} else {
			summary, err := Summarize(series)
			if err != nil {
				return Report{}, err
			}
			report.Calendar = &summary
			report.Weekly = WeeklyCounts(series)
		}
	}
	tracker.Step("calendar")

	return report, nil
}

// collectRepo fetches everything reported for one repository. Nothing is
// returned unless every fetch succeeded.
func collectRepo(ctx context.Context, src Source, repo model.Repository, issues bool) (model.RepoReport, model.LanguageBytes, error) {
	langs, err := src.FetchRepoLanguages(ctx, repo)
	if err != nil {
		return model.RepoReport{}, nil, fmt.Errorf("languages: %w", err)
	}
	social, err := src.FetchRepoSocial(ctx, repo)
	if err != nil {
		return model.RepoReport{}, nil, fmt.Errorf("social counts: %w", err)
	}
	metrics := model.RepoMetrics{Social: social}
	if issues {
		ip, err := src.FetchRepoIssuesPulls(ctx, repo)
		if err != nil {
			return model.RepoReport{}, nil, fmt.Errorf("issues and pulls: %w", err)
		}
		metrics.Issues = ip.Issues
		metrics.Pulls = ip.Pulls
	}
	return model.RepoReport{Repo: repo, Metrics: metrics}, langs, nil
}

func orgLanguages(ctx context.Context, src Source, org string, log *logrus.Entry) (model.LanguageTotals, []string, error) {
	set, err := src.FetchOrgRepos(ctx, org)
	if err != nil {
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}
		log.WithField("org", org).Warnf("skipping organization: %v", err)
		return model.LanguageTotals{}, []string{org}, nil
	}
	totals := model.LanguageTotals{}
	var skipped []string
	for _, repo := range ForkExclude(set) {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		langs, err := src.FetchRepoLanguages(ctx, repo)
		if err != nil {
			if ctx.Err() != nil {
				return nil, nil, ctx.Err()
			}
			log.WithField("repo", repo.FullName()).Warnf("skipping repository: %v", err)
			skipped = append(skipped, repo.FullName())
			continue
		}
		if err := AddLanguages(totals, langs); err != nil {
			return nil, nil, fmt.Errorf("%s: %w", repo.FullName(), err)
		}
	}
	return totals, skipped, nil
}
