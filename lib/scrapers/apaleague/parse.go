package apaleague

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"apastats/lib/htmlutil"
	"apastats/lib/textutil"

	"github.com/PuerkitoBio/goquery"
)

var seasonRe = regexp.MustCompile(`(?i)(Fall|Spring|Summer|Winter)\s*(20\d{2})`)
var roleRe = regexp.MustCompile(`(?i)(Captain|Co-Captain|Member)`)
var percentRe = regexp.MustCompile(`(\d+(?:\.\d+)?)%`)
var yearRe = regexp.MustCompile(`20\d{2}`)
var memberNumRe = regexp.MustCompile(`#(\d+)`)
var memberHrefRe = regexp.MustCompile(`/member/(\d+)`)

// skipNames are texts the portal's navigation and notices leave in
// tables. A cell equal to one of these is chrome, not data.
var skipNames = []string{
	"member services", "dashboard", "matches", "news", "events",
	"my stats", "rules", "my leagues", "apa national", "store",
	"tournament info", "discounts", "contact", "need help", "logout",
	"login", "settings", "edit profile", "payments", "my membership",
	"card/id", "ac",
	"player name", "skill level", "matches won/played", "win %", "ppm", "pa",
	"team", "role", "season",
}

var junkPhrases = []string{
	"note: this table displays",
	"team statistics are not available",
}

func isJunkName(name string) bool {
	folded := textutil.Fold(name)
	for _, s := range skipNames {
		if folded == s {
			return true
		}
	}
	return textutil.ContainsFold(name, junkPhrases)
}

// validName filters out everything that is obviously not a player or
// team name: too short, pure numbers, stray percentages, separator
// rows and navigation chrome.
func validName(name string) bool {
	name = strings.TrimSpace(name)
	if len(name) < 3 {
		return false
	}
	if textutil.AllDigits(name) {
		return false
	}
	if strings.HasSuffix(name, "%") {
		return false
	}
	if textutil.MostlySymbols(name) {
		return false
	}
	return !isJunkName(name)
}

func parseIntCell(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return intPtr(v)
}

func parseFloatCell(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return floatPtr(v)
}

func parsePercentCell(s string) *float64 {
	m := percentRe.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil
	}
	return floatPtr(v)
}

// recomputeWinPercent derives win% from won/played when both are
// known, the page sometimes rounds its own column differently.
func recomputeWinPercent(won, played *int, parsed *float64) *float64 {
	if won != nil && played != nil && *played > 0 {
		pct := float64(*won) / float64(*played) * 100
		return floatPtr(math.Round(pct*10) / 10)
	}
	return parsed
}

// parseSeason pulls "Fall 2025" style seasons out of arbitrary text.
func parseSeason(s string) (string, bool) {
	m := seasonRe.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	word := strings.ToLower(m[1])
	word = strings.ToUpper(word[:1]) + word[1:]
	return word + " " + m[2], true
}

func parseRole(s string) (string, bool) {
	m := roleRe.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	role := strings.ToLower(m[1])
	switch role {
	case "co-captain":
		return "Co-Captain", true
	case "captain":
		return "Captain", true
	default:
		return "Member", true
	}
}

var mvpUnset = "-"

func parseMVPCell(s string) string {
	s = strings.TrimSpace(s)
	if s == mvpUnset {
		return ""
	}
	return s
}

// splitTeamCell untangles the first history column, which renders team
// name, season and role as one run of text.
func splitTeamCell(raw string) (name, season, role string) {
	season, _ = parseSeason(raw)
	role, _ = parseRole(raw)

	name = seasonRe.ReplaceAllString(raw, " ")
	name = roleRe.ReplaceAllString(name, " ")
	name = htmlutil.CleanText(name)
	name = strings.Trim(name, " -·|,")
	return name, season, role
}

func parseHistoryCells(cells []string) (TeamMembership, bool) {
	name, season, role := splitTeamCell(cells[0])
	if !validName(name) {
		return TeamMembership{}, false
	}

	won := parseIntCell(cells[3])
	played := parseIntCell(cells[2])
	row := TeamMembership{
		TeamName:   name,
		Season:     season,
		Role:       role,
		Skill:      parseIntCell(cells[1]),
		Played:     played,
		Won:        won,
		WinPercent: recomputeWinPercent(won, played, parsePercentCell(cells[4])),
		MVP:        parseMVPCell(cells[5]),
	}
	return row, true
}

// parseDetailCells copes with the looser tables on member detail
// pages. Rows shrink down to two cells or fewer columns depending on
// how much the portal felt like rendering.
func parseDetailCells(cells []string) (TeamMembership, bool) {
	var row TeamMembership

	switch {
	case len(cells) >= 6:
		return parseHistoryCells(cells)
	case len(cells) == 2:
		if season, ok := parseSeason(cells[1]); ok {
			name, _, role := splitTeamCell(cells[0])
			row = TeamMembership{TeamName: name, Season: season, Role: role}
		} else if season, ok := parseSeason(cells[0]); ok {
			name, _, role := splitTeamCell(cells[1])
			row = TeamMembership{TeamName: name, Season: season, Role: role}
		} else {
			name, _, role := splitTeamCell(cells[0])
			row = TeamMembership{TeamName: name, Role: role}
		}
	default:
		joined := strings.Join(cells, " ")
		name, season, role := splitTeamCell(cells[0])
		if season == "" {
			season, _ = parseSeason(joined)
		}
		row = TeamMembership{TeamName: name, Season: season, Role: role}
		if len(cells) > 1 {
			row.Skill = parseIntCell(cells[1])
		}
		if len(cells) > 2 {
			row.Played = parseIntCell(cells[2])
		}
		if len(cells) > 3 {
			row.Won = parseIntCell(cells[3])
			row.WinPercent = recomputeWinPercent(row.Won, row.Played, nil)
		}
	}

	if !validName(row.TeamName) {
		return TeamMembership{}, false
	}
	// a detail row with nothing but a name is noise
	if row.Season == "" && row.Skill == nil && row.Played == nil && row.Won == nil {
		return TeamMembership{}, false
	}
	return row, true
}

func cellTexts(row *goquery.Selection) []string {
	var cells []string
	row.Find("td").Each(func(_ int, cell *goquery.Selection) {
		cells = append(cells, htmlutil.CellText(cell))
	})
	return cells
}

func parseHistoryTables(html string) ([]TeamMembership, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, ParseError{What: "player page", Detail: err.Error()}
	}

	var rows []TeamMembership
	doc.Find("table tr").Each(func(_ int, tr *goquery.Selection) {
		cells := cellTexts(tr)
		if len(cells) < 6 {
			return
		}
		row, ok := parseHistoryCells(cells)
		if ok {
			rows = append(rows, row)
		}
	})
	return rows, nil
}

func parseDetailTables(html string) ([]TeamMembership, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, ParseError{What: "member detail page", Detail: err.Error()}
	}

	var rows []TeamMembership
	doc.Find("table tr").Each(func(_ int, tr *goquery.Selection) {
		cells := cellTexts(tr)
		if len(cells) == 0 {
			return
		}
		row, ok := parseDetailCells(cells)
		if ok {
			rows = append(rows, row)
		}
	})
	return rows, nil
}

func parseRosterRow(tr *goquery.Selection) (RosterPlayer, bool) {
	cells := cellTexts(tr)
	if len(cells) < 6 {
		return RosterPlayer{}, false
	}

	nameCell := cells[0]
	player := RosterPlayer{}

	if m := memberNumRe.FindStringSubmatch(nameCell); m != nil {
		player.MemberID = m[1]
		nameCell = strings.Replace(nameCell, m[0], "", 1)
	}
	player.Name = htmlutil.CleanText(nameCell)
	if !validName(player.Name) {
		return RosterPlayer{}, false
	}

	if href, ok := htmlutil.FirstHref(tr.Find("td").First()); ok {
		if m := memberHrefRe.FindStringSubmatch(href); m != nil {
			player.UserID = m[1]
		}
	}

	player.Skill = parseIntCell(cells[1])
	if won, played, ok := splitWonPlayed(cells[2]); ok {
		player.Won = won
		player.Played = played
	}
	player.WinPercent = recomputeWinPercent(player.Won, player.Played, parsePercentCell(cells[3]))
	player.PPM = parseFloatCell(cells[4])
	player.PA = parseFloatCell(cells[5])
	return player, true
}

// splitWonPlayed parses the combined "12/20" matches column.
func splitWonPlayed(s string) (won, played *int, ok bool) {
	parts := strings.SplitN(strings.TrimSpace(s), "/", 2)
	if len(parts) != 2 {
		return nil, nil, false
	}
	return parseIntCell(parts[0]), parseIntCell(parts[1]), true
}

func parseRosterTables(html string) ([]RosterPlayer, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, ParseError{What: "team page", Detail: err.Error()}
	}

	var players []RosterPlayer
	doc.Find("table tr").Each(func(_ int, tr *goquery.Selection) {
		player, ok := parseRosterRow(tr)
		if ok {
			players = append(players, player)
		}
	})
	return players, nil
}

// splitCurrentPast puts rows from the most recent season year into
// current, everything else including undated rows into past.
func splitCurrentPast(rows []TeamMembership) (current, past []TeamMembership) {
	latest := 0
	for _, row := range rows {
		if m := yearRe.FindString(row.Season); m != "" {
			year, _ := strconv.Atoi(m)
			if year > latest {
				latest = year
			}
		}
	}
	for _, row := range rows {
		m := yearRe.FindString(row.Season)
		if latest > 0 && m == strconv.Itoa(latest) {
			current = append(current, row)
		} else {
			past = append(past, row)
		}
	}
	return current, past
}

// historyAggregates reduces a membership history to the skill range
// and distinct season count. Skills outside the handicap scale are
// rendering artifacts and ignored.
func historyAggregates(rows []TeamMembership) detailAggregates {
	var agg detailAggregates

	seasons := map[string]bool{}
	for _, row := range rows {
		if row.Season != "" {
			seasons[row.Season] = true
		}
		if row.Skill == nil {
			continue
		}
		skill := *row.Skill
		if skill < 1 || skill > 9 {
			continue
		}
		if agg.MinSkill == nil || skill < *agg.MinSkill {
			agg.MinSkill = intPtr(skill)
		}
		if agg.MaxSkill == nil || skill > *agg.MaxSkill {
			agg.MaxSkill = intPtr(skill)
		}
	}
	agg.SeasonsPlayed = intPtr(len(seasons))
	return agg
}
