package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	serverURL     string
	adminPassword string
	client        *apiClient
)

var rootCmd = &cobra.Command{
	Use:   "adminctl",
	Short: "Operator console for a classcord server",
	Long: `adminctl inspects and controls a running classcord server through its
admin HTTP API: connected sessions, channel status, channel toggling,
global alerts, and recent channel history.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if adminPassword == "" {
			adminPassword = os.Getenv("CLASSCORD_ADMIN_PASSWORD")
		}
		if adminPassword == "" {
			return fmt.Errorf("admin password required (--password or CLASSCORD_ADMIN_PASSWORD)")
		}

		client = newAPIClient(serverURL)
		if err := client.login(adminPassword); err != nil {
			return fmt.Errorf("admin login: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://127.0.0.1:8466", "admin API base URL")
	rootCmd.PersistentFlags().StringVar(&adminPassword, "password", "", "admin password (defaults to CLASSCORD_ADMIN_PASSWORD)")

	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(channelsCmd)
	rootCmd.AddCommand(enableCmd)
	rootCmd.AddCommand(disableCmd)
	rootCmd.AddCommand(alertCmd)
	rootCmd.AddCommand(historyCmd)
}
