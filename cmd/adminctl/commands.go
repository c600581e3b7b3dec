package main

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List connected sessions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var sessions []struct {
			ID         string `json:"id"`
			Username   string `json:"username"`
			Channel    string `json:"channel"`
			RemoteAddr string `json:"remote_addr"`
		}
		if err := client.do(http.MethodGet, "/api/sessions", nil, &sessions); err != nil {
			return err
		}

		if len(sessions) == 0 {
			fmt.Println("no connected sessions")
			return nil
		}
		for _, s := range sessions {
			fmt.Printf("%-20s %-12s %s\n", s.Username, s.Channel, s.RemoteAddr)
		}
		return nil
	},
}

var channelsCmd = &cobra.Command{
	Use:   "channels",
	Short: "List channels and their enabled status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var channels []struct {
			Name    string `json:"name"`
			Enabled bool   `json:"enabled"`
		}
		if err := client.do(http.MethodGet, "/api/channels", nil, &channels); err != nil {
			return err
		}

		for _, ch := range channels {
			status := "enabled"
			if !ch.Enabled {
				status = "disabled"
			}
			fmt.Printf("%-12s %s\n", ch.Name, status)
		}
		return nil
	},
}

var enableCmd = &cobra.Command{
	Use:   "enable <channel>",
	Short: "Enable a channel",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return toggleChannel(args[0], true)
	},
}

var disableCmd = &cobra.Command{
	Use:   "disable <channel>",
	Short: "Disable a channel (advisory: current members stay)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return toggleChannel(args[0], false)
	},
}

func toggleChannel(name string, enabled bool) error {
	body := map[string]any{"name": name, "enabled": enabled}
	if err := client.do(http.MethodPut, "/api/channels", body, nil); err != nil {
		return err
	}
	state := "enabled"
	if !enabled {
		state = "disabled"
	}
	fmt.Printf("channel %s %s\n", name, state)
	return nil
}

var alertCmd = &cobra.Command{
	Use:   "alert <message...>",
	Short: "Broadcast a global alert to every connected session",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp struct {
			Delivered int `json:"delivered"`
			Failed    int `json:"failed"`
		}
		body := map[string]string{"content": strings.Join(args, " ")}
		if err := client.do(http.MethodPost, "/api/alert", body, &resp); err != nil {
			return err
		}
		fmt.Printf("alert delivered to %d session(s), %d failure(s)\n", resp.Delivered, resp.Failed)
		return nil
	},
}

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history <channel>",
	Short: "Show recent messages for a channel",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var msgs []struct {
			Sender    string `json:"sender"`
			Content   string `json:"content"`
			Timestamp string `json:"timestamp"`
		}
		path := fmt.Sprintf("/api/messages?channel=%s&limit=%d", url.QueryEscape(args[0]), historyLimit)
		if err := client.do(http.MethodGet, path, nil, &msgs); err != nil {
			return err
		}

		if len(msgs) == 0 {
			fmt.Println("no messages")
			return nil
		}
		for _, m := range msgs {
			fmt.Printf("%s  %-16s %s\n", m.Timestamp, m.Sender, m.Content)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 50, "maximum number of messages")
}
