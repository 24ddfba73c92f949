package commands

import (
	"fmt"

	"apastats/lib/scrapers/apaleague"
	"apastats/lib/serviceutil"
	"apastats/services/apastats"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var playerLeague *string
var playerExpand *bool
var playerNoCache *bool

func init() {
	playerLeague = playerCmd.Flags().String("league", "", "League the member belongs to, overrides the config.")
	playerExpand = playerCmd.Flags().Bool("expand", false, "Also compute skill range and seasons played.")
	playerNoCache = playerCmd.Flags().Bool("no-cache", false, "Skip the cache and scrape live.")
	rootCmd.AddCommand(playerCmd)
}

var playerCmd = &cobra.Command{
	Use:   "player <user-id-or-url>",
	Short: "Extracts a player's team history.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := readConfig()
		svc, cleanup := newService(cmd.Context(), cfg)
		defer cleanup()

		res, err := svc.PlayerStats(cmd.Context(), apastats.PlayerRequest{
			Identifier: args[0],
			League:     *playerLeague,
			Expand:     *playerExpand,
			NoCache:    *playerNoCache,
		})
		if err != nil {
			serviceutil.Fatal("failed to extract player", err)
		}

		if *jsonOut {
			fmt.Println(string(res.Raw))
			return
		}
		printPlayer(res)
	},
}

func printPlayer(res apastats.PlayerResult) {
	p := res.Profile
	fmt.Printf("member %s, league %s (%s)\n", p.UserID, p.League, source(res.CacheHit))
	if p.MinSkill != nil || p.SeasonsPlayed != nil {
		fmt.Printf("skill range %v-%v over %v seasons\n", cell(p.MinSkill), cell(p.MaxSkill), cell(p.SeasonsPlayed))
	}

	printMemberships("current teams", p.CurrentTeams)
	printMemberships("past teams", p.PastTeams)
}

func printMemberships(title string, rows []apaleague.TeamMembership) {
	fmt.Println(title)
	if len(rows) == 0 {
		fmt.Println("  (none)")
		return
	}

	t := newTable()
	t.AppendHeader(table.Row{"Team", "Season", "Role", "Skill", "Won", "Played", "Win %", "MVP"})
	for _, m := range rows {
		t.AppendRow(table.Row{
			m.TeamName, m.Season, m.Role,
			cell(m.Skill), cell(m.Won), cell(m.Played), cell(m.WinPercent), m.MVP,
		})
	}
	t.Render()
}

func source(cacheHit bool) string {
	if cacheHit {
		return "cached"
	}
	return "live"
}
