package commands

import (
	"fmt"

	"apastats/lib/serviceutil"
	"apastats/services/apastats"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var teamLeague *string
var teamExpand *bool
var teamNoCache *bool

func init() {
	teamLeague = teamCmd.Flags().String("league", "", "League used for member detail pages, overrides the config.")
	teamExpand = teamCmd.Flags().Bool("expand", false, "Visit every rostered member for skill range and seasons played.")
	teamNoCache = teamCmd.Flags().Bool("no-cache", false, "Skip the cache and scrape live.")
	rootCmd.AddCommand(teamCmd)
}

var teamCmd = &cobra.Command{
	Use:   "team <team-id-or-url>",
	Short: "Extracts a team's roster.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := readConfig()
		svc, cleanup := newService(cmd.Context(), cfg)
		defer cleanup()

		res, err := svc.TeamStats(cmd.Context(), apastats.TeamRequest{
			Identifier: args[0],
			League:     *teamLeague,
			Expand:     *teamExpand,
			NoCache:    *teamNoCache,
		})
		if err != nil {
			serviceutil.Fatal("failed to extract team", err)
		}

		if *jsonOut {
			fmt.Println(string(res.Raw))
			return
		}
		printTeam(res)
	},
}

func printTeam(res apastats.TeamResult) {
	roster := res.Roster
	fmt.Printf("team %s, %d players (%s)\n", roster.TeamID, len(roster.Players), source(res.CacheHit))

	t := newTable()
	header := table.Row{"Name", "Member", "Skill", "Won", "Played", "Win %", "PPM", "PA"}
	expanded := false
	for _, p := range roster.Players {
		if p.MinSkill != nil || p.SeasonsPlayed != nil {
			expanded = true
			break
		}
	}
	if expanded {
		header = append(header, "Min", "Max", "Seasons")
	}
	t.AppendHeader(header)

	for _, p := range roster.Players {
		row := table.Row{
			p.Name, p.MemberID,
			cell(p.Skill), cell(p.Won), cell(p.Played), cell(p.WinPercent), cell(p.PPM), cell(p.PA),
		}
		if expanded {
			row = append(row, cell(p.MinSkill), cell(p.MaxSkill), cell(p.SeasonsPlayed))
		}
		t.AppendRow(row)
	}
	t.Render()

	if len(roster.Partial) > 0 {
		fmt.Printf("%d players could not be expanded\n", len(roster.Partial))
		pt := newTable()
		pt.AppendHeader(table.Row{"Name", "User ID", "Attempts", "Reason"})
		for _, f := range roster.Partial {
			pt.AppendRow(table.Row{f.Name, f.UserID, f.Attempts, f.Reason})
		}
		pt.Render()
	}
}
