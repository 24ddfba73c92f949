package commands

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"apastats/lib/serviceutil"
	"apastats/lib/statcache"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var cacheClearAll *bool
var cacheClearKind *string
var cacheClearID *string
var cacheClearLeague *string
var cacheClearExpanded *bool

func init() {
	cacheClearAll = cacheClearCmd.Flags().Bool("all", false, "Remove every entry.")
	cacheClearKind = cacheClearCmd.Flags().String("kind", statcache.KindPlayer, "Entry kind, player or team.")
	cacheClearID = cacheClearCmd.Flags().String("id", "", "User or team id the entries belong to.")
	cacheClearLeague = cacheClearCmd.Flags().String("league", "", "Only entries for this league.")
	cacheClearExpanded = cacheClearCmd.Flags().Bool("expanded-only", false, "Keep the unexpanded entries.")

	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheCleanupCmd)
	rootCmd.AddCommand(cacheCmd)
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspects and manages the extraction cache.",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Prints cache contents and sizes.",
	Run: func(cmd *cobra.Command, args []string) {
		cache := openCache(readConfig())

		stats, err := cache.Stats(cmd.Context())
		if err != nil {
			serviceutil.Fatal("failed to read cache", err)
		}

		if *jsonOut {
			out, err := json.MarshalIndent(stats, "", "  ")
			if err != nil {
				serviceutil.Fatal("failed to marshal stats", err)
			}
			fmt.Println(string(out))
			return
		}

		t := newTable()
		t.AppendRow(table.Row{"Directory", stats.Directory})
		t.AppendRow(table.Row{"Total", stats.Total})
		t.AppendRow(table.Row{"Valid", stats.Valid})
		t.AppendRow(table.Row{"Expired", stats.Expired})
		t.AppendRow(table.Row{"Corrupt", stats.Corrupt})
		t.AppendRow(table.Row{"Expanded", stats.Expanded})
		t.AppendRow(table.Row{"Size (bytes)", stats.TotalSizeBytes})
		for kind, n := range stats.PerKind {
			t.AppendRow(table.Row{fmt.Sprintf("Kind %s", kind), n})
		}
		if !stats.Oldest.IsZero() {
			t.AppendRow(table.Row{"Oldest", stats.Oldest.Format("2006-01-02 15:04:05")})
			t.AppendRow(table.Row{"Newest", stats.Newest.Format("2006-01-02 15:04:05")})
		}
		t.Render()
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear [--all | --kind <kind> --id <id>]",
	Short: "Removes cached entries.",
	Run: func(cmd *cobra.Command, args []string) {
		cache := openCache(readConfig())

		if *cacheClearAll {
			removed, err := cache.ClearAll(cmd.Context())
			if err != nil {
				serviceutil.Fatal("failed to clear cache", err)
			}
			slog.Info("cache cleared", "removed", removed)
			return
		}

		if *cacheClearID == "" {
			serviceutil.Fatal("nothing to clear", fmt.Errorf("pass --all, or --id to pick entries"))
		}
		removed, err := cache.Clear(cmd.Context(), statcache.Filter{
			Kind:         *cacheClearKind,
			Identifier:   *cacheClearID,
			League:       *cacheClearLeague,
			ExpandedOnly: *cacheClearExpanded,
		})
		if err != nil {
			serviceutil.Fatal("failed to clear cache", err)
		}
		slog.Info("cache cleared", "removed", removed)
	},
}

var cacheCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Removes entries past their TTL.",
	Run: func(cmd *cobra.Command, args []string) {
		cache := openCache(readConfig())

		removed, err := cache.Cleanup(cmd.Context())
		if err != nil {
			serviceutil.Fatal("failed to clean up cache", err)
		}
		slog.Info("expired entries removed", "removed", removed)
	},
}
