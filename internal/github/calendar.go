package github

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/machinebox/graphql"
	"github.com/sirupsen/logrus"

	"github.com/verte-zerg/ghuls/internal/model"
)

const calendarQuery = `
query ($login: String!) {
  user(login: $login) {
    contributionsCollection {
      contributionCalendar {
        weeks {
          contributionDays {
            date
            contributionCount
          }
        }
      }
    }
  }
}`

// ErrCredentialsRequired is returned for calls the API only serves to
// authenticated clients.
var ErrCredentialsRequired = errors.New("credentials required")

type contributionDay struct {
	Date              string `json:"date"`
	ContributionCount int    `json:"contributionCount"`
}

type contributionWeek struct {
	ContributionDays []contributionDay `json:"contributionDays"`
}

type calendarUser struct {
	ContributionsCollection struct {
		ContributionCalendar struct {
			Weeks []contributionWeek `json:"weeks"`
		} `json:"contributionCalendar"`
	} `json:"contributionsCollection"`
}

type calendarResponse struct {
	User *calendarUser `json:"user"`
}

// FetchContributionCalendar returns the last year of daily contribution
// counts for login, oldest first.
func (c *Client) FetchContributionCalendar(ctx context.Context, login string) (model.CalendarSeries, error) {
	if c.token == "" && !c.basic {
		return nil, fmt.Errorf("contribution calendar: %w", ErrCredentialsRequired)
	}
	req := graphql.NewRequest(calendarQuery)
	req.Var("login", login)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	var resp calendarResponse
	if err := c.graph.Run(ctx, req, &resp); err != nil {
		return nil, fmt.Errorf("failed to get contribution calendar: %w", err)
	}
	if resp.User == nil {
		return nil, fmt.Errorf("contribution calendar of %s: %w", login, ErrNotFound)
	}

	var series model.CalendarSeries
	for _, week := range resp.User.ContributionsCollection.ContributionCalendar.Weeks {
		for _, day := range week.ContributionDays {
			date, err := time.Parse(time.DateOnly, day.Date)
			if err != nil {
				return nil, fmt.Errorf("contribution calendar of %s: bad date %q: %w", login, day.Date, err)
			}
			series = append(series, model.CalendarDay{Date: date, Count: day.ContributionCount})
		}
	}
	c.log.WithFields(logrus.Fields{"subject": login, "days": len(series)}).Debug("fetched contribution calendar")
	return series, nil
}
