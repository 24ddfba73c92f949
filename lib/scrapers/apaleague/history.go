package apaleague

import (
	"context"
	"log/slog"

	"apastats/lib/browser"
	"apastats/lib/retryutil"

	"go.opentelemetry.io/otel/attribute"
)

var loadMoreSelectors = []string{
	`button:has-text("Load More")`,
	`button:has-text("Show More")`,
	`button:has-text("Load More Teams")`,
	`button:has-text("Show More Teams")`,
	`[class*="load-more"]`,
	`[class*="show-more"]`,
	`[data-testid*="load-more"]`,
	`button[aria-label*="load"]`,
	`button[aria-label*="more"]`,
}

// stableRounds is how many fruitless reveal rounds in a row mean the
// table is fully loaded.
const stableRounds = 3

// harvestRows drives the portal's lazy tables: parse what is rendered,
// scroll, click any load-more control, parse again. It stops once
// nothing new appears for a few rounds or the cap is hit.
func (c *Client) harvestRows(ctx context.Context, parse func(string) ([]TeamMembership, error), limit int) ([]TeamMembership, error) {
	ctx, span := tracer.Start(ctx, "harvestRows")
	defer span.End()

	seen := map[string]bool{}
	var rows []TeamMembership

	merge := func() (int, error) {
		html, err := c.session.Content(ctx)
		if err != nil {
			return 0, err
		}
		parsed, err := parse(html)
		if err != nil {
			return 0, err
		}
		added := 0
		for _, row := range parsed {
			key := row.TeamName + "|" + row.Season
			if seen[key] {
				continue
			}
			seen[key] = true
			rows = append(rows, row)
			added++
		}
		return added, nil
	}

	stable := 0
	for iter := 0; iter < limit && stable < stableRounds; iter++ {
		added, err := merge()
		if err != nil {
			return nil, err
		}
		if added > 0 {
			stable = 0
		} else {
			stable++
		}
		if stable >= stableRounds {
			break
		}

		err = c.session.Scroll(ctx, browser.ScrollToBottom())
		if err != nil {
			return nil, err
		}
		if err := c.sleep(ctx, scrollSettleWait); err != nil {
			return nil, err
		}

		clicked, err := c.clickFirstVisible(ctx, loadMoreSelectors)
		if err != nil {
			return nil, err
		}
		if clicked {
			slog.Debug("clicked load-more control")
			if err := c.sleep(ctx, loadMoreWait); err != nil {
				return nil, err
			}
			continue
		}

		err = c.session.Scroll(ctx, browser.ScrollBy(nudgePixels))
		if err != nil {
			return nil, err
		}
		if err := c.sleep(ctx, nudgeWait); err != nil {
			return nil, err
		}
	}

	// pick up anything the last scroll revealed
	_, err := merge()
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("rows", len(rows)))
	if len(rows) == 0 {
		return nil, NoRows
	}
	return rows, nil
}

// ExtractPlayer loads a member page and harvests the full team
// history. With expand set it also reduces the history into skill
// range and seasons played.
func (c *Client) ExtractPlayer(ctx context.Context, target Target, league string, expand bool) (PlayerProfile, error) {
	ctx, span := tracer.Start(ctx, "ExtractPlayer")
	defer span.End()
	span.SetAttributes(
		attribute.String("user_id", target.UserID),
		attribute.String("league", league),
		attribute.Bool("expand", expand),
	)

	url := PlayerURL(c.opts.BaseURL, league, target.UserID)
	rows, err := retryutil.Do(ctx, c.retry, "player history", func(ctx context.Context) ([]TeamMembership, error) {
		err := c.session.Navigate(ctx, url)
		if err != nil {
			return nil, NavigationError{URL: url, Detail: err.Error()}
		}
		err = c.session.WaitFor(ctx, browser.Loaded(), c.opts.ActionTimeout)
		if err != nil {
			return nil, err
		}
		err = c.dismissNotifications(ctx)
		if err != nil {
			return nil, err
		}
		// member pages sometimes hide the history behind a Teams tab
		err = c.clickTeamsTab(ctx)
		if err != nil {
			return nil, err
		}
		return c.harvestRows(ctx, parseHistoryTables, c.opts.ScrollLimit)
	})
	if err != nil {
		return PlayerProfile{}, err
	}

	current, past := splitCurrentPast(rows)
	profile := PlayerProfile{
		UserID:       target.UserID,
		MemberID:     target.MemberNumber,
		League:       league,
		URL:          url,
		CurrentTeams: current,
		PastTeams:    past,
	}
	if expand {
		agg := historyAggregates(rows)
		profile.MinSkill = agg.MinSkill
		profile.MaxSkill = agg.MaxSkill
		profile.SeasonsPlayed = agg.SeasonsPlayed
	}

	slog.Info(
		"extracted player",
		"user_id", target.UserID,
		"league", league,
		"current_teams", len(current),
		"past_teams", len(past),
	)
	return profile, nil
}
