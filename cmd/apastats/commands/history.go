package commands

import (
	"encoding/json"
	"fmt"
	"time"

	"apastats/lib/runstore"
	"apastats/lib/runstore/db"
	"apastats/lib/serviceutil"
	"apastats/lib/sqliteutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var historyLimit *int

func init() {
	historyLimit = historyCmd.Flags().Int("limit", 20, "How many runs to show.")
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Shows recent extraction runs, newest first.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := readConfig()

		database, err := sqliteutil.OpenDB(db.Schema, cfg.HistoryDB)
		if err != nil {
			serviceutil.Fatal("failed to open history db", err)
		}
		defer database.Close()

		runs, err := runstore.NewStore(database).Recent(cmd.Context(), *historyLimit)
		if err != nil {
			serviceutil.Fatal("failed to read history", err)
		}

		if *jsonOut {
			out, err := json.MarshalIndent(runs, "", "  ")
			if err != nil {
				serviceutil.Fatal("failed to marshal history", err)
			}
			fmt.Println(string(out))
			return
		}

		t := newTable()
		t.AppendHeader(table.Row{"Started", "Op", "Target", "League", "Expand", "Source", "Duration", "Failures", "Error"})
		for _, r := range runs {
			t.AppendRow(table.Row{
				r.StartedAt.Format("2006-01-02 15:04:05"),
				r.Operation,
				r.Target,
				r.League,
				r.Expanded,
				source(r.CacheHit),
				r.Duration.Round(10 * time.Millisecond),
				r.PartialFailures,
				r.Error,
			})
		}
		t.Render()
	},
}
