package commands

import (
	"log/slog"
	"os"

	"apastats/lib/serviceutil"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(verifyCmd)
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Checks whether the saved session is still accepted by the portal.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := readConfig()
		svc, cleanup := newService(cmd.Context(), cfg)

		ok, err := svc.Verify(cmd.Context())
		cleanup()
		if err != nil {
			serviceutil.Fatal("failed to verify session", err)
		}
		if !ok {
			slog.Warn("session was rejected, run login again")
			os.Exit(1)
		}
		slog.Info("session is valid")
	},
}
