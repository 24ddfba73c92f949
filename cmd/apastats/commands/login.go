package commands

import (
	"fmt"
	"log/slog"

	"apastats/lib/scrapers/apaleague"
	"apastats/lib/serviceutil"

	"github.com/spf13/cobra"
)

var loginEmail *string
var loginPassword *string

func init() {
	loginEmail = loginCmd.Flags().String("email", "", "Portal account email, overrides the config.")
	loginPassword = loginCmd.Flags().String("password", "", "Portal account password, overrides the config.")
	rootCmd.AddCommand(loginCmd)
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Logs into the portal and saves the session for later runs.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := readConfig()

		email := *loginEmail
		if email == "" {
			email = cfg.Credentials.Email
		}
		password := *loginPassword
		if password == "" {
			password = cfg.Credentials.Password
		}
		if email == "" || password == "" {
			serviceutil.Fatal(
				"missing credentials",
				fmt.Errorf("set credentials in apastats.json5 or pass --email and --password"),
			)
		}

		svc, cleanup := newService(cmd.Context(), cfg)
		defer cleanup()

		err := svc.Login(cmd.Context(), apaleague.Credentials{
			Email:    email,
			Password: password,
		})
		if err != nil {
			serviceutil.Fatal("login failed", err)
		}
		slog.Info("logged in, session saved", "state_dir", cfg.StateDir)
	},
}
