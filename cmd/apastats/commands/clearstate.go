package commands

import (
	"fmt"
	"log/slog"

	"apastats/lib/scrapers/apaleague"
	"apastats/lib/serviceutil"

	"github.com/spf13/cobra"
)

var clearStateConfirm *bool

func init() {
	clearStateConfirm = clearStateCmd.Flags().Bool("confirm", false, "Actually delete, instead of describing what would be deleted.")
	rootCmd.AddCommand(clearStateCmd)
}

var clearStateCmd = &cobra.Command{
	Use:   "clear-state",
	Short: "Wipes the saved session, cache and logs.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := readConfig()
		dir := apaleague.StateDir{Root: cfg.StateDir}

		if !*clearStateConfirm {
			fmt.Printf("This wipes the saved session, cache and logs under %s.\n", cfg.StateDir)
			fmt.Println("Re-run with --confirm to proceed.")
			return
		}

		err := dir.Clear()
		if err != nil {
			serviceutil.Fatal("failed to clear state", err)
		}
		slog.Info("state cleared", "dir", cfg.StateDir)
	},
}
