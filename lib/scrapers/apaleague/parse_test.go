package apaleague

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestValidName(t *testing.T) {
	cases := []struct {
		name   string
		expect bool
	}{
		{"Bob Smith", true},
		{"Jack Mack", true},
		{"The Hustlers", true},
		{"AB", false},
		{"12345", false},
		{"60%", false},
		{"----", false},
		{"Dashboard", false},
		{"My Stats", false},
		{"Matches Won/Played", false},
		{"Note: This table displays the last 10 seasons", false},
		{"Team statistics are not available for this division", false},
	}
	for _, test := range cases {
		require.Equal(t, test.expect, validName(test.name), "name: %q", test.name)
	}
}

func TestSplitTeamCell(t *testing.T) {
	cases := []struct {
		raw    string
		name   string
		season string
		role   string
	}{
		{"The Hustlers Fall 2025 Captain", "The Hustlers", "Fall 2025", "Captain"},
		{"Bank Shot Bandits Spring 2024 Member", "Bank Shot Bandits", "Spring 2024", "Member"},
		{"Rack City Co-Captain Summer 2023", "Rack City", "Summer 2023", "Co-Captain"},
		{"Chalk It Up fall2022", "Chalk It Up", "Fall 2022", ""},
		{"Solo Team", "Solo Team", "", ""},
	}
	for _, test := range cases {
		name, season, role := splitTeamCell(test.raw)
		require.Equal(t, test.name, name, "raw: %q", test.raw)
		require.Equal(t, test.season, season, "raw: %q", test.raw)
		require.Equal(t, test.role, role, "raw: %q", test.raw)
	}
}

func TestParseHistoryCells(t *testing.T) {
	row, ok := parseHistoryCells([]string{
		"The Hustlers Fall 2025 Captain", "5", "20", "12", "61%", "-",
	})
	require.True(t, ok)

	expect := TeamMembership{
		TeamName: "The Hustlers",
		Season:   "Fall 2025",
		Role:     "Captain",
		Skill:    intPtr(5),
		Played:   intPtr(20),
		Won:      intPtr(12),
		// recomputed from won/played, not the page's rounded column
		WinPercent: floatPtr(60.0),
	}
	if diff := cmp.Diff(expect, row); diff != "" {
		t.Fatal(diff)
	}

	_, ok = parseHistoryCells([]string{"Dashboard", "-", "-", "-", "-", "-"})
	require.False(t, ok)
}

func TestParseHistoryCellsKeepsParsedPercentWhenCountsMissing(t *testing.T) {
	row, ok := parseHistoryCells([]string{
		"Bank Shot Bandits Spring 2024", "4", "-", "-", "41.7%", "MVP",
	})
	require.True(t, ok)
	require.Nil(t, row.Won)
	require.Nil(t, row.Played)
	require.NotNil(t, row.WinPercent)
	require.Equal(t, 41.7, *row.WinPercent)
	require.Equal(t, "MVP", row.MVP)
}

func TestParseDetailCells(t *testing.T) {
	// standard width rows go through the history parser
	row, ok := parseDetailCells([]string{"Rack City Fall 2024", "5", "15", "10", "66%", "-"})
	require.True(t, ok)
	require.Equal(t, "Rack City", row.TeamName)
	require.Equal(t, intPtr(5), row.Skill)

	// two cells, name then season
	row, ok = parseDetailCells([]string{"Rack City", "Fall 2024"})
	require.True(t, ok)
	require.Equal(t, "Rack City", row.TeamName)
	require.Equal(t, "Fall 2024", row.Season)

	// two cells, season first
	row, ok = parseDetailCells([]string{"Spring 2023", "Chalk It Up"})
	require.True(t, ok)
	require.Equal(t, "Chalk It Up", row.TeamName)
	require.Equal(t, "Spring 2023", row.Season)

	// a bare name with no stats at all is noise
	_, ok = parseDetailCells([]string{"Rack City", "somewhere"})
	require.False(t, ok)

	// junk stays junk no matter the shape
	_, ok = parseDetailCells([]string{"My Leagues", "Fall 2024"})
	require.False(t, ok)
}

func TestSplitCurrentPast(t *testing.T) {
	rows := []TeamMembership{
		{TeamName: "A", Season: "Fall 2025"},
		{TeamName: "B", Season: "Spring 2025"},
		{TeamName: "C", Season: "Fall 2024"},
		{TeamName: "D"},
	}
	current, past := splitCurrentPast(rows)

	require.Len(t, current, 2)
	require.Equal(t, "A", current[0].TeamName)
	require.Equal(t, "B", current[1].TeamName)
	require.Len(t, past, 2)
	require.Equal(t, "C", past[0].TeamName)
	require.Equal(t, "D", past[1].TeamName)
}

func TestSplitCurrentPastNoSeasons(t *testing.T) {
	rows := []TeamMembership{{TeamName: "A"}, {TeamName: "B"}}
	current, past := splitCurrentPast(rows)
	require.Empty(t, current)
	require.Len(t, past, 2)
}

func TestHistoryAggregates(t *testing.T) {
	rows := []TeamMembership{
		{TeamName: "A", Season: "Fall 2025", Skill: intPtr(5)},
		{TeamName: "B", Season: "Spring 2025", Skill: intPtr(3)},
		{TeamName: "C", Season: "Fall 2025", Skill: intPtr(7)},
		// out of the handicap scale, rendering artifact
		{TeamName: "D", Season: "Fall 2024", Skill: intPtr(0)},
		{TeamName: "E", Skill: nil},
	}
	agg := historyAggregates(rows)

	require.Equal(t, intPtr(3), agg.MinSkill)
	require.Equal(t, intPtr(7), agg.MaxSkill)
	require.Equal(t, intPtr(3), agg.SeasonsPlayed)
}

const rosterPage = `<html><body>
<table>
<tr><th>Player Name</th><th>Skill Level</th><th>Matches Won/Played</th><th>Win %</th><th>PPM</th><th>PA</th></tr>
<tr><td><a href="/Philadelphia/member/11111">Alice Johnson #55555</a></td><td>5</td><td>12/20</td><td>61%</td><td>2.50</td><td>8.1</td></tr>
<tr><td><a href="/Philadelphia/member/22222">Bob Smith #66666</a></td><td>7</td><td>15/18</td><td>83.3%</td><td>3.10</td><td>11.4</td></tr>
<tr><td>Dashboard</td><td>-</td><td>-</td><td>-</td><td>-</td><td>-</td></tr>
</table>
</body></html>`

func TestParseRosterTables(t *testing.T) {
	players, err := parseRosterTables(rosterPage)
	require.NoError(t, err)
	require.Len(t, players, 2)

	expect := []RosterPlayer{
		{
			Name:       "Alice Johnson",
			MemberID:   "55555",
			UserID:     "11111",
			Skill:      intPtr(5),
			Won:        intPtr(12),
			Played:     intPtr(20),
			WinPercent: floatPtr(60.0),
			PPM:        floatPtr(2.50),
			PA:         floatPtr(8.1),
		},
		{
			Name:       "Bob Smith",
			MemberID:   "66666",
			UserID:     "22222",
			Skill:      intPtr(7),
			Won:        intPtr(15),
			Played:     intPtr(18),
			WinPercent: floatPtr(83.3),
			PPM:        floatPtr(3.10),
			PA:         floatPtr(11.4),
		},
	}
	if diff := cmp.Diff(expect, players); diff != "" {
		t.Fatal(diff)
	}
}

func TestSplitWonPlayed(t *testing.T) {
	won, played, ok := splitWonPlayed("12/20")
	require.True(t, ok)
	require.Equal(t, intPtr(12), won)
	require.Equal(t, intPtr(20), played)

	won, played, ok = splitWonPlayed(" 5 / 8 ")
	require.True(t, ok)
	require.Equal(t, intPtr(5), won)
	require.Equal(t, intPtr(8), played)

	_, _, ok = splitWonPlayed("30")
	require.False(t, ok)
}

func TestParseSeason(t *testing.T) {
	season, ok := parseSeason("The Hustlers fall 2025 Captain")
	require.True(t, ok)
	require.Equal(t, "Fall 2025", season)

	season, ok = parseSeason("SUMMER2023")
	require.True(t, ok)
	require.Equal(t, "Summer 2023", season)

	_, ok = parseSeason("no season here")
	require.False(t, ok)
}

func TestParseRole(t *testing.T) {
	role, ok := parseRole("Jane Doe Co-Captain")
	require.True(t, ok)
	require.Equal(t, "Co-Captain", role)

	role, ok = parseRole("John Doe Captain")
	require.True(t, ok)
	require.Equal(t, "Captain", role)

	_, ok = parseRole("nobody special")
	require.False(t, ok)
}
