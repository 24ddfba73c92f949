package apaleague

// TeamMembership is one row of a player's team history table.
type TeamMembership struct {
	TeamName   string   `json:"team_name"`
	Season     string   `json:"season,omitempty"`
	Role       string   `json:"role,omitempty"`
	Skill      *int     `json:"skill,omitempty"`
	Played     *int     `json:"played,omitempty"`
	Won        *int     `json:"won,omitempty"`
	WinPercent *float64 `json:"win_percent,omitempty"`
	MVP        string   `json:"mvp,omitempty"`
}

// PlayerProfile is the result of a player extraction. Teams are split
// into current and past by the most recent season year on the page.
type PlayerProfile struct {
	UserID   string `json:"user_id"`
	MemberID string `json:"member_id,omitempty"`
	League   string `json:"league"`
	URL      string `json:"url"`

	CurrentTeams []TeamMembership `json:"current_teams"`
	PastTeams    []TeamMembership `json:"past_teams"`

	// aggregates, only set on expanded extractions
	MinSkill      *int `json:"min_skill,omitempty"`
	MaxSkill      *int `json:"max_skill,omitempty"`
	SeasonsPlayed *int `json:"seasons_played,omitempty"`
}

// RosterPlayer is one row of a team's roster table, in document order.
type RosterPlayer struct {
	Name       string   `json:"name"`
	MemberID   string   `json:"member_id,omitempty"`
	UserID     string   `json:"user_id,omitempty"`
	Skill      *int     `json:"skill,omitempty"`
	Won        *int     `json:"won,omitempty"`
	Played     *int     `json:"played,omitempty"`
	WinPercent *float64 `json:"win_percent,omitempty"`
	PPM        *float64 `json:"ppm,omitempty"`
	PA         *float64 `json:"pa,omitempty"`

	// per-player detail, only set on expanded extractions
	MinSkill      *int `json:"min_skill,omitempty"`
	MaxSkill      *int `json:"max_skill,omitempty"`
	SeasonsPlayed *int `json:"seasons_played,omitempty"`
}

// PartialFailure records a roster player whose expansion failed. The
// roster itself is still returned.
type PartialFailure struct {
	UserID   string `json:"user_id,omitempty"`
	Name     string `json:"name"`
	Reason   string `json:"reason"`
	Attempts int    `json:"attempts"`
}

// TeamRoster is the result of a team extraction.
type TeamRoster struct {
	TeamID  string           `json:"team_id"`
	URL     string           `json:"url"`
	Players []RosterPlayer   `json:"players"`
	Partial []PartialFailure `json:"partial_failures,omitempty"`
}

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }
