package apaleague

import (
	"context"
	"log/slog"

	"apastats/lib/browser"
	"apastats/lib/retryutil"

	"go.opentelemetry.io/otel/attribute"
)

// ExtractTeam loads a team page and parses the roster table in
// document order. With expand set it visits every rostered member and
// attaches their skill range and seasons played, recording players
// whose detail pages would not load instead of failing the roster.
func (c *Client) ExtractTeam(ctx context.Context, teamID string, league string, expand bool) (TeamRoster, error) {
	ctx, span := tracer.Start(ctx, "ExtractTeam")
	defer span.End()
	span.SetAttributes(
		attribute.String("team_id", teamID),
		attribute.Bool("expand", expand),
	)

	url := TeamURL(c.opts.BaseURL, teamID)
	players, err := retryutil.Do(ctx, c.retry, "team roster", func(ctx context.Context) ([]RosterPlayer, error) {
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

		html, err := c.session.Content(ctx)
		if err != nil {
			return nil, err
		}
		players, err := parseRosterTables(html)
		if err != nil {
			return nil, err
		}
		if len(players) == 0 {
			return nil, NoRows
		}
		return players, nil
	})
	if err != nil {
		return TeamRoster{}, err
	}

	roster := TeamRoster{TeamID: teamID, URL: url, Players: players}
	if expand {
		c.expandRoster(ctx, league, &roster)
	}

	slog.Info(
		"extracted team",
		"team_id", teamID,
		"players", len(roster.Players),
		"expansion_failures", len(roster.Partial),
	)
	return roster, nil
}
