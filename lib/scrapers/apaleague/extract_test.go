package apaleague

import (
	"context"
	"testing"

	"apastats/lib/browser"
	"apastats/lib/browser/browsertest"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const historyPageOne = `<html><body>
<table>
<tr><th>Team</th><th>Skill</th><th>Played</th><th>Won</th><th>Win %</th><th>MVP</th></tr>
<tr><td>The Hustlers Fall 2025 Captain</td><td>5</td><td>20</td><td>12</td><td>60%</td><td>-</td></tr>
<tr><td>Bank Shot Bandits Spring 2025 Member</td><td>4</td><td>18</td><td>9</td><td>50%</td><td>-</td></tr>
</table>
</body></html>`

const historyPageTwo = `<html><body>
<table>
<tr><th>Team</th><th>Skill</th><th>Played</th><th>Won</th><th>Win %</th><th>MVP</th></tr>
<tr><td>The Hustlers Fall 2025 Captain</td><td>5</td><td>20</td><td>12</td><td>60%</td><td>-</td></tr>
<tr><td>Bank Shot Bandits Spring 2025 Member</td><td>4</td><td>18</td><td>9</td><td>50%</td><td>-</td></tr>
<tr><td>Rack City Fall 2024</td><td>6</td><td>15</td><td>10</td><td>66.7%</td><td>MVP</td></tr>
<tr><td>Chalk It Up Spring 2023 Co-Captain</td><td>3</td><td>12</td><td>5</td><td>41.7%</td><td>-</td></tr>
</table>
</body></html>`

const playerURL = "https://portal.test/Philadelphia/member/98765"

func TestExtractPlayerRevealsRowsAcrossScrolls(t *testing.T) {
	fake := browsertest.New().Route(playerURL, &browsertest.Route{
		States: []browsertest.State{{HTML: historyPageOne}, {HTML: historyPageTwo}},
	})
	c := testClient(t, fake)

	profile, err := c.ExtractPlayer(context.Background(), Target{UserID: "98765"}, "Philadelphia", false)
	require.NoError(t, err)

	require.Equal(t, "98765", profile.UserID)
	require.Equal(t, "Philadelphia", profile.League)
	require.Equal(t, playerURL, profile.URL)

	expectCurrent := []TeamMembership{
		{TeamName: "The Hustlers", Season: "Fall 2025", Role: "Captain", Skill: intPtr(5), Played: intPtr(20), Won: intPtr(12), WinPercent: floatPtr(60.0)},
		{TeamName: "Bank Shot Bandits", Season: "Spring 2025", Role: "Member", Skill: intPtr(4), Played: intPtr(18), Won: intPtr(9), WinPercent: floatPtr(50.0)},
	}
	if diff := cmp.Diff(expectCurrent, profile.CurrentTeams); diff != "" {
		t.Fatal(diff)
	}

	require.Len(t, profile.PastTeams, 2)
	require.Equal(t, "Rack City", profile.PastTeams[0].TeamName)
	require.Equal(t, "MVP", profile.PastTeams[0].MVP)
	require.Equal(t, "Chalk It Up", profile.PastTeams[1].TeamName)
	require.Equal(t, "Co-Captain", profile.PastTeams[1].Role)

	// no expansion requested
	require.Nil(t, profile.MinSkill)
	require.Nil(t, profile.MaxSkill)
	require.Nil(t, profile.SeasonsPlayed)
}

func TestExtractPlayerExpanded(t *testing.T) {
	fake := browsertest.New().Route(playerURL, &browsertest.Route{
		States: []browsertest.State{{HTML: historyPageTwo}},
	})
	c := testClient(t, fake)

	profile, err := c.ExtractPlayer(context.Background(), Target{UserID: "98765"}, "Philadelphia", true)
	require.NoError(t, err)

	require.Equal(t, intPtr(3), profile.MinSkill)
	require.Equal(t, intPtr(6), profile.MaxSkill)
	require.Equal(t, intPtr(4), profile.SeasonsPlayed)
}

func TestExtractPlayerEmptyPageExhaustsRetries(t *testing.T) {
	fake := browsertest.New().Route(playerURL, &browsertest.Route{
		States: []browsertest.State{{HTML: "<html><body><p>loading</p></body></html>"}},
	})
	c := testClient(t, fake)

	_, err := c.ExtractPlayer(context.Background(), Target{UserID: "98765"}, "Philadelphia", false)

	require.ErrorIs(t, err, NoRows)
	require.Equal(t, 3, countString(fake.NavLog, playerURL))
}

func TestExtractPlayerRecoversAfterTimeout(t *testing.T) {
	fake := browsertest.New().Route(playerURL, &browsertest.Route{
		States:   []browsertest.State{{HTML: historyPageTwo}},
		WaitErrs: []error{browser.ErrTimeout},
	})
	c := testClient(t, fake)

	profile, err := c.ExtractPlayer(context.Background(), Target{UserID: "98765"}, "Philadelphia", false)
	require.NoError(t, err)
	require.Equal(t, 2, countString(fake.NavLog, playerURL))
	require.Len(t, profile.CurrentTeams, 2)
	require.Len(t, profile.PastTeams, 2)
}

const teamPage = `<html><body>
<table>
<tr><th>Player Name</th><th>Skill Level</th><th>Matches Won/Played</th><th>Win %</th><th>PPM</th><th>PA</th></tr>
<tr><td><a href="/Philadelphia/member/11111">Alice Johnson #55555</a></td><td>5</td><td>12/20</td><td>60%</td><td>2.50</td><td>8.1</td></tr>
<tr><td><a href="/Philadelphia/member/22222">Bob Smith #66666</a></td><td>7</td><td>15/18</td><td>83.3%</td><td>3.10</td><td>11.4</td></tr>
<tr><td>Carol Davis #77777</td><td>4</td><td>8/16</td><td>50%</td><td>2.10</td><td>7.9</td></tr>
</table>
</body></html>`

const aliceDetailPage = `<html><body>
<table>
<tr><td>Rack City Fall 2025 Captain</td><td>5</td><td>15</td><td>10</td><td>66%</td><td>-</td></tr>
<tr><td>Chalk It Up</td><td>Spring 2024</td></tr>
<tr><td>Bank Shot Bandits Fall 2023</td><td>3</td><td>12</td><td>5</td><td>41.7%</td><td>-</td></tr>
</table>
</body></html>`

const teamURL = "https://portal.test/team/31415"
const aliceTeamsURL = "https://portal.test/Philadelphia/member/11111/teams"
const bobTeamsURL = "https://portal.test/Philadelphia/member/22222/teams"

func TestExtractTeamRosterOrder(t *testing.T) {
	fake := browsertest.New().Route(teamURL, &browsertest.Route{
		States: []browsertest.State{{HTML: teamPage}},
	})
	c := testClient(t, fake)

	roster, err := c.ExtractTeam(context.Background(), "31415", "Philadelphia", false)
	require.NoError(t, err)

	require.Equal(t, "31415", roster.TeamID)
	require.Equal(t, teamURL, roster.URL)
	require.Len(t, roster.Players, 3)
	require.Equal(t, "Alice Johnson", roster.Players[0].Name)
	require.Equal(t, "Bob Smith", roster.Players[1].Name)
	require.Equal(t, "Carol Davis", roster.Players[2].Name)
	require.Empty(t, roster.Partial)
}

func TestExtractTeamExpandRecordsPartialFailures(t *testing.T) {
	fake := browsertest.New().
		Route(teamURL, &browsertest.Route{States: []browsertest.State{{HTML: teamPage}}}).
		Route(aliceTeamsURL, &browsertest.Route{States: []browsertest.State{{HTML: aliceDetailPage}}})
	c := testClient(t, fake)

	roster, err := c.ExtractTeam(context.Background(), "31415", "Philadelphia", true)
	require.NoError(t, err)

	alice := roster.Players[0]
	require.Equal(t, intPtr(3), alice.MinSkill)
	require.Equal(t, intPtr(5), alice.MaxSkill)
	require.Equal(t, intPtr(3), alice.SeasonsPlayed)

	// bob's detail page never renders rows, carol has no member link
	require.Len(t, roster.Partial, 2)
	require.Equal(t, "22222", roster.Partial[0].UserID)
	require.Equal(t, "Bob Smith", roster.Partial[0].Name)
	require.Equal(t, 3, roster.Partial[0].Attempts)
	require.Contains(t, roster.Partial[0].Reason, "no rows harvested")
	require.Equal(t, "Carol Davis", roster.Partial[1].Name)
	require.Equal(t, "roster row has no member link", roster.Partial[1].Reason)

	require.Nil(t, roster.Players[1].MinSkill)
	require.Equal(t, 3, countString(fake.NavLog, bobTeamsURL))
	require.Equal(t, 1, countString(fake.NavLog, aliceTeamsURL))
}

func TestExpandMemoizesAcrossTeams(t *testing.T) {
	aliceOnly := `<html><body>
<table>
<tr><td><a href="/Philadelphia/member/11111">Alice Johnson #55555</a></td><td>5</td><td>12/20</td><td>60%</td><td>2.50</td><td>8.1</td></tr>
</table>
</body></html>`
	fake := browsertest.New().
		Route("https://portal.test/team/1", &browsertest.Route{States: []browsertest.State{{HTML: aliceOnly}}}).
		Route("https://portal.test/team/2", &browsertest.Route{States: []browsertest.State{{HTML: aliceOnly}}}).
		Route(aliceTeamsURL, &browsertest.Route{States: []browsertest.State{{HTML: aliceDetailPage}}})
	c := testClient(t, fake)

	first, err := c.ExtractTeam(context.Background(), "1", "Philadelphia", true)
	require.NoError(t, err)
	second, err := c.ExtractTeam(context.Background(), "2", "Philadelphia", true)
	require.NoError(t, err)

	require.Equal(t, first.Players[0].MinSkill, second.Players[0].MinSkill)
	require.Equal(t, 1, countString(fake.NavLog, aliceTeamsURL))
}

func TestPlayerTeamHistoryClicksTeamsTab(t *testing.T) {
	tabPage := `<html><body><button data-tab="teams">Teams</button></body></html>`
	fake := browsertest.New().Route(aliceTeamsURL, &browsertest.Route{
		States: []browsertest.State{{HTML: tabPage}, {HTML: aliceDetailPage}},
	})
	c := testClient(t, fake)

	rows, err := c.playerTeamHistory(context.Background(), "Philadelphia", "11111")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, 1, countString(fake.ClickLog, `button[data-tab="teams"]`))
}

func TestClickTeamsTabSkipsSelectedTab(t *testing.T) {
	page := `<html><body><button data-tab="teams" aria-selected="true">Teams</button></body></html>`
	fake := browsertest.New().Route(aliceTeamsURL, &browsertest.Route{
		States: []browsertest.State{{HTML: page}},
	})
	c := testClient(t, fake)
	require.NoError(t, fake.Navigate(context.Background(), aliceTeamsURL))

	require.NoError(t, c.clickTeamsTab(context.Background()))
	require.Empty(t, fake.ClickLog)
}
