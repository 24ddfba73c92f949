package apaleague

import (
	"context"
	"log/slog"
	"time"

	"apastats/lib/browser"
	"apastats/lib/retryutil"

	"github.com/mazen160/go-random"
	"go.opentelemetry.io/otel/attribute"
)

var teamsTabSelectors = []string{
	`button[data-tab="teams"]`,
	`a[data-tab="teams"]`,
	`button:has-text("Teams")`,
	`a:has-text("Teams")`,
	`[role="tab"]:has-text("Teams")`,
	`.tab:has-text("Teams")`,
	`button[aria-label*="Teams"]`,
	`a[aria-label*="Teams"]`,
}

// expandRoster fills in per-player detail for every roster row that
// links to a member page. A player whose detail extraction fails ends
// up in roster.Partial, the loop keeps going.
func (c *Client) expandRoster(ctx context.Context, league string, roster *TeamRoster) {
	ctx, span := tracer.Start(ctx, "expandRoster")
	defer span.End()

	for i := range roster.Players {
		player := &roster.Players[i]
		if player.UserID == "" {
			roster.Partial = append(roster.Partial, PartialFailure{
				Name:   player.Name,
				Reason: "roster row has no member link",
			})
			continue
		}

		agg, err := c.playerAggregates(ctx, league, player.UserID)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			attempts := c.retry.MaxAttempts
			if retryutil.Classify(err) == retryutil.KindFatal {
				attempts = 1
			}
			slog.Warn(
				"player expansion failed",
				"name", player.Name,
				"user_id", player.UserID,
				"err", err,
			)
			roster.Partial = append(roster.Partial, PartialFailure{
				UserID:   player.UserID,
				Name:     player.Name,
				Reason:   err.Error(),
				Attempts: attempts,
			})
			continue
		}

		player.MinSkill = agg.MinSkill
		player.MaxSkill = agg.MaxSkill
		player.SeasonsPlayed = agg.SeasonsPlayed
	}
	span.SetAttributes(attribute.Int("failures", len(roster.Partial)))
}

// playerAggregates memoizes detail extraction per player so a member
// rostered on several teams is only visited once per process.
func (c *Client) playerAggregates(ctx context.Context, league, userID string) (detailAggregates, error) {
	key := league + "|" + userID
	if agg, ok := c.memo.Get(key); ok {
		slog.Debug("expansion served from memo", "user_id", userID)
		return agg, nil
	}

	err := c.politeDelay(ctx)
	if err != nil {
		return detailAggregates{}, err
	}
	rows, err := c.playerTeamHistory(ctx, league, userID)
	if err != nil {
		return detailAggregates{}, err
	}

	agg := historyAggregates(rows)
	c.memo.Add(key, agg)
	return agg, nil
}

// playerTeamHistory loads a member's teams page and harvests the
// looser detail tables there.
func (c *Client) playerTeamHistory(ctx context.Context, league, userID string) ([]TeamMembership, error) {
	ctx, span := tracer.Start(ctx, "playerTeamHistory")
	defer span.End()
	span.SetAttributes(attribute.String("user_id", userID))

	url := MemberTeamsURL(c.opts.BaseURL, league, userID)
	return retryutil.Do(ctx, c.retry, "member detail", func(ctx context.Context) ([]TeamMembership, error) {
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
		if err := c.settleDelay(ctx); err != nil {
			return nil, err
		}
		err = c.clickTeamsTab(ctx)
		if err != nil {
			return nil, err
		}
		return c.harvestRows(ctx, parseDetailTables, c.opts.DetailScrollLimit)
	})
}

// clickTeamsTab activates the Teams tab unless it already is active.
// Pages without a tab bar render the history directly, that is fine.
func (c *Client) clickTeamsTab(ctx context.Context) error {
	for _, selector := range teamsTabSelectors {
		els, err := c.session.Query(ctx, selector)
		if err != nil {
			return err
		}
		for _, el := range els {
			visible, err := el.Visible(ctx)
			if err != nil || !visible {
				continue
			}
			selected, err := el.Attr(ctx, "aria-selected")
			if err == nil && selected == "true" {
				return nil
			}
			err = el.Click(ctx)
			if err != nil {
				slog.Debug("teams tab click failed", "selector", selector, "err", err)
				continue
			}
			return c.sleep(ctx, dismissSettleWait)
		}
	}
	return nil
}

// settleDelay is the short randomized pause between landing on a
// member page and poking at its tabs.
func (c *Client) settleDelay(ctx context.Context) error {
	ms, err := random.IntRange(1000, 2001)
	if err != nil {
		ms = 1000
	}
	return c.sleep(ctx, time.Duration(ms)*time.Millisecond)
}
