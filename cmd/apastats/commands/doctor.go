package commands

import (
	"log/slog"

	"apastats/lib/browser"
	"apastats/lib/scrapers/apaleague"
	"apastats/lib/serviceutil"

	"github.com/spf13/cobra"
)

var doctorInstall *bool

func init() {
	doctorInstall = doctorCmd.Flags().Bool("install", false, "Also download the chromium runtime.")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Checks portal reachability and the local session state.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := readConfig()

		res, err := apaleague.Probe(cmd.Context(), cfg.BaseURL)
		if err != nil {
			slog.Error("portal is unreachable", "base_url", cfg.BaseURL, "err", err)
		} else if res.Blocked {
			slog.Warn("portal is up but the edge is challenging us, a browser session should still get through",
				"status", res.StatusCode, "latency", res.Latency)
		} else {
			slog.Info("portal responded", "status", res.StatusCode, "latency", res.Latency)
		}

		dir := apaleague.StateDir{Root: cfg.StateDir}
		if dir.HasSession() {
			meta, err := dir.ReadSessionMeta()
			if err != nil {
				slog.Warn("saved session exists but its meta is unreadable", "err", err)
			} else {
				slog.Info("saved session", "saved_at", meta.SavedAt, "expires_hint", meta.ExpiresAt)
			}
		} else {
			slog.Info("no saved session, run login before extracting")
		}

		if *doctorInstall {
			slog.Info("installing chromium runtime")
			err := browser.Install()
			if err != nil {
				serviceutil.Fatal("failed to install browser", err)
			}
			slog.Info("chromium installed")
		}
	},
}
