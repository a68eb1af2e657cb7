// Package github fetches user, repository and contribution data from the
// GitHub REST and GraphQL APIs.
package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gogithub "github.com/google/go-github/v62/github"
	"github.com/machinebox/graphql"
	"github.com/sirupsen/logrus"

	"github.com/verte-zerg/ghuls/internal/model"
)

const (
	defaultGraphQLURL = "https://api.github.com/graphql"
	defaultTimeout    = 30 * time.Second
	perPage           = 100
)

var (
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAuthentication is returned when the API rejects the credentials.
	ErrAuthentication = errors.New("authentication failed")
)

// GraphQLRunner executes a GraphQL request.
type GraphQLRunner interface {
	Run(ctx context.Context, req *graphql.Request, resp interface{}) error
}

// Options configures a Client. Token takes precedence over User and Pass.
type Options struct {
	Token   string
	User    string
	Pass    string
	BaseURL string
	// GraphQLURL defaults to the public GitHub endpoint.
	GraphQLURL string
	GraphQL    GraphQLRunner
	Timeout    time.Duration
	Log        *logrus.Entry
}

// Client implements the report data source on top of the GitHub API.
type Client struct {
	rest  *gogithub.Client
	graph GraphQLRunner
	token string
	basic bool
	log   *logrus.Entry

	// last profile returned by FetchUser, reused by FetchFollowersFollowing
	lastUser *gogithub.User
}

// New creates a Client.
func New(opts Options) (*Client, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient := &http.Client{Timeout: timeout}
	basic := opts.Token == "" && opts.User != "" && opts.Pass != ""
	if basic {
		tp := &gogithub.BasicAuthTransport{Username: opts.User, Password: opts.Pass}
		httpClient = tp.Client()
		httpClient.Timeout = timeout
	}

	rest := gogithub.NewClient(httpClient)
	if opts.Token != "" {
		rest = rest.WithAuthToken(opts.Token)
	}
	if opts.BaseURL != "" {
		base := opts.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("invalid API base URL %q: %w", opts.BaseURL, err)
		}
		rest.BaseURL = u
	}

	graph := opts.GraphQL
	if graph == nil {
		endpoint := opts.GraphQLURL
		if endpoint == "" {
			endpoint = defaultGraphQLURL
		}
		graph = graphql.NewClient(endpoint, graphql.WithHTTPClient(httpClient))
	}

	log := opts.Log
	if log == nil {
		log = logrus.WithField("type", "github")
	}
	return &Client{
		rest:  rest,
		graph: graph,
		token: opts.Token,
		basic: basic,
		log:   log,
	}, nil
}

// Authenticate verifies the configured credentials and returns the login
// they belong to.
func (c *Client) Authenticate(ctx context.Context) (string, error) {
	user, resp, err := c.rest.Users.Get(ctx, "")
	if err != nil {
		if resp != nil && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
			return "", fmt.Errorf("%w: %v", ErrAuthentication, err)
		}
		return "", classify(resp, err)
	}
	c.log.WithField("login", user.GetLogin()).Debug("authenticated")
	return user.GetLogin(), nil
}

// FetchUser returns the profile of a user or organization. A missing
// account is reported as ok == false.
func (c *Client) FetchUser(ctx context.Context, login string) (model.UserProfile, bool, error) {
	user, resp, err := c.rest.Users.Get(ctx, login)
	if err := classify(resp, err); err != nil {
		if errors.Is(err, ErrNotFound) {
			return model.UserProfile{}, false, nil
		}
		return model.UserProfile{}, false, fmt.Errorf("get user %s: %w", login, err)
	}
	c.lastUser = user
	return toProfile(user), true, nil
}

// ProbeIdentity looks up an account by numeric id.
func (c *Client) ProbeIdentity(ctx context.Context, id int64) (model.Subject, bool, error) {
	user, resp, err := c.rest.Users.GetByID(ctx, id)
	if err := classify(resp, err); err != nil {
		if errors.Is(err, ErrNotFound) {
			return model.Subject{}, false, nil
		}
		return model.Subject{}, false, fmt.Errorf("get user id %d: %w", id, err)
	}
	return toProfile(user).Subject, true, nil
}

// FetchUserRepos lists the public repositories owned by login. Forks is
// derived from the fork flag of each listed repository.
func (c *Client) FetchUserRepos(ctx context.Context, login string) (model.RepositorySet, error) {
	opts := &gogithub.RepositoryListByUserOptions{
		Type:        "owner",
		ListOptions: gogithub.ListOptions{PerPage: perPage},
	}
	var set model.RepositorySet
	for {
		repos, resp, err := c.rest.Repositories.ListByUser(ctx, login, opts)
		if err := classify(resp, err); err != nil {
			return model.RepositorySet{}, fmt.Errorf("list repositories of %s: %w", login, err)
		}
		for _, r := range repos {
			repo := toRepository(r)
			set.All = append(set.All, repo)
			if repo.Fork {
				set.Forks = append(set.Forks, repo)
			}
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	c.log.WithFields(logrus.Fields{"subject": login, "repos": len(set.All), "forks": len(set.Forks)}).Debug("listed repositories")
	return set, nil
}

// FetchOrgs lists the public organization memberships of login.
func (c *Client) FetchOrgs(ctx context.Context, login string) ([]string, error) {
	opts := &gogithub.ListOptions{PerPage: perPage}
	orgs := []string{}
	for {
		page, resp, err := c.rest.Organizations.List(ctx, login, opts)
		if err := classify(resp, err); err != nil {
			return nil, fmt.Errorf("list organizations of %s: %w", login, err)
		}
		for _, o := range page {
			orgs = append(orgs, o.GetLogin())
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return orgs, nil
}

// FetchOrgRepos lists the public repositories of an organization and,
// separately, its forks.
func (c *Client) FetchOrgRepos(ctx context.Context, org string) (model.RepositorySet, error) {
	all, err := c.listOrgRepos(ctx, org, "public")
	if err != nil {
		return model.RepositorySet{}, err
	}
	forks, err := c.listOrgRepos(ctx, org, "forks")
	if err != nil {
		return model.RepositorySet{}, err
	}
	c.log.WithFields(logrus.Fields{"org": org, "repos": len(all), "forks": len(forks)}).Debug("listed organization repositories")
	return model.RepositorySet{All: all, Forks: forks}, nil
}

func (c *Client) listOrgRepos(ctx context.Context, org, kind string) ([]model.Repository, error) {
	opts := &gogithub.RepositoryListByOrgOptions{
		Type:        kind,
		ListOptions: gogithub.ListOptions{PerPage: perPage},
	}
	var out []model.Repository
	for {
		repos, resp, err := c.rest.Repositories.ListByOrg(ctx, org, opts)
		if err := classify(resp, err); err != nil {
			return nil, fmt.Errorf("list %s repositories of %s: %w", kind, org, err)
		}
		for _, r := range repos {
			out = append(out, toRepository(r))
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return out, nil
}

// FetchRepoLanguages returns the byte count per language of a repository.
func (c *Client) FetchRepoLanguages(ctx context.Context, repo model.Repository) (model.LanguageBytes, error) {
	langs, resp, err := c.rest.Repositories.ListLanguages(ctx, repo.Owner, repo.Name)
	if err := classify(resp, err); err != nil {
		return nil, fmt.Errorf("languages of %s: %w", repo.FullName(), err)
	}
	out := make(model.LanguageBytes, len(langs))
	for name, bytes := range langs {
		out[name] = int64(bytes)
	}
	return out, nil
}

// FetchRepoSocial returns the fork, star and watcher counts of a repository.
func (c *Client) FetchRepoSocial(ctx context.Context, repo model.Repository) (model.Social, error) {
	r, resp, err := c.rest.Repositories.Get(ctx, repo.Owner, repo.Name)
	if err := classify(resp, err); err != nil {
		return model.Social{}, fmt.Errorf("get %s: %w", repo.FullName(), err)
	}
	return model.Social{
		Forks:    r.GetForksCount(),
		Stars:    r.GetStargazersCount(),
		Watchers: r.GetSubscribersCount(),
	}, nil
}

type countQuery struct {
	filter string
	dst    *int
}

// FetchRepoIssuesPulls counts issues and pull requests by state using the
// search API.
func (c *Client) FetchRepoIssuesPulls(ctx context.Context, repo model.Repository) (model.RepoMetrics, error) {
	var m model.RepoMetrics
	queries := []countQuery{
		{"is:issue is:open", &m.Issues.Open},
		{"is:issue is:closed", &m.Issues.Closed},
		{"is:pr is:open", &m.Pulls.Open},
		{"is:pr is:closed is:unmerged", &m.Pulls.Closed},
		{"is:pr is:merged", &m.Pulls.Merged},
	}
	for _, q := range queries {
		n, err := c.searchCount(ctx, fmt.Sprintf("repo:%s %s", repo.FullName(), q.filter))
		if err != nil {
			return model.RepoMetrics{}, err
		}
		*q.dst = n
	}
	return m, nil
}

func (c *Client) searchCount(ctx context.Context, query string) (int, error) {
	result, resp, err := c.rest.Search.Issues(ctx, query, &gogithub.SearchOptions{ListOptions: gogithub.ListOptions{PerPage: 1}})
	if err := classify(resp, err); err != nil {
		return 0, fmt.Errorf("search %q: %w", query, err)
	}
	return result.GetTotal(), nil
}

// FetchFollowersFollowing returns the follower and following counts of login.
// The profile loaded by the preceding FetchUser for the same login is reused.
func (c *Client) FetchFollowersFollowing(ctx context.Context, login string) (model.Follow, error) {
	if u := c.lastUser; u != nil && strings.EqualFold(u.GetLogin(), login) {
		return model.Follow{Followers: u.GetFollowers(), Following: u.GetFollowing()}, nil
	}
	user, resp, err := c.rest.Users.Get(ctx, login)
	if err := classify(resp, err); err != nil {
		return model.Follow{}, fmt.Errorf("get user %s: %w", login, err)
	}
	return model.Follow{Followers: user.GetFollowers(), Following: user.GetFollowing()}, nil
}

// classify maps HTTP status codes onto package sentinels.
func classify(resp *gogithub.Response, err error) error {
	if err == nil {
		return nil
	}
	if resp != nil {
		switch resp.StatusCode {
		case http.StatusNotFound:
			return fmt.Errorf("%w: %v", ErrNotFound, err)
		case http.StatusUnauthorized:
			return fmt.Errorf("%w: %v", ErrAuthentication, err)
		}
	}
	return err
}

func toProfile(u *gogithub.User) model.UserProfile {
	return model.UserProfile{
		Subject: model.Subject{
			ID:    u.GetID(),
			Login: u.GetLogin(),
			Type:  u.GetType(),
		},
		Name:        u.GetName(),
		PublicRepos: u.GetPublicRepos(),
		Followers:   u.GetFollowers(),
		Following:   u.GetFollowing(),
	}
}

func toRepository(r *gogithub.Repository) model.Repository {
	return model.Repository{
		Owner: r.GetOwner().GetLogin(),
		Name:  r.GetName(),
		Fork:  r.GetFork(),
	}
}
