package cmd

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/vidlinks/vidlinks/internal/ratelimit"
	"github.com/vidlinks/vidlinks/internal/server"
	"github.com/vidlinks/vidlinks/internal/server/handlers"
)

var (
	rateLimitServer string
	rateLimitToken  string
	rateLimitClient string
	rateLimitYes    bool
)

var rateLimitCmd = &cobra.Command{
	Use:   "ratelimit",
	Short: "Inspect or reset a running server's rate limit table",
	Long: `Inspect or reset the in-memory rate limit table of a running server.
Requires the server to be started with admin.token set.`,
}

var rateLimitStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show tracked and blocked clients",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := rateLimitAdminClient()
		if err != nil {
			return err
		}

		query := url.Values{}
		if c := strings.TrimSpace(rateLimitClient); c != "" {
			query.Set("client", c)
		}

		var report handlers.RateLimitReport
		if err := client.do(commandContext(cmd), "GET", server.RateLimitAdminPath, query, &report); err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), renderRateLimitReport(report))
		return err
	},
}

var rateLimitResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget every tracked client",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !rateLimitYes {
			return fmt.Errorf("reset clears every client's window; pass --yes to confirm")
		}
		client, err := rateLimitAdminClient()
		if err != nil {
			return err
		}

		var result struct {
			Cleared int `json:"cleared"`
		}
		if err := client.do(commandContext(cmd), "DELETE", server.RateLimitAdminPath, nil, &result); err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d client record(s)\n", result.Cleared)
		return err
	},
}

func rateLimitAdminClient() (*adminClient, error) {
	base := rateLimitServer
	token := rateLimitToken
	if cfg, err := currentConfig(); err == nil {
		if base == "" {
			base = fmt.Sprintf("http://%s:%d", cfg.Server.Host, cfg.Server.Port)
		}
		if token == "" {
			token = cfg.Admin.Token
		}
	}
	return newAdminClient(base, token)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func renderRateLimitReport(report handlers.RateLimitReport) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetTitle("Rate Limits")
	t.AppendHeader(table.Row{"Setting", "Value"})
	t.AppendRow(table.Row{"Capacity per window", report.Stats.Capacity})
	t.AppendRow(table.Row{"Window", report.Window})
	t.AppendRow(table.Row{"Tracked clients", report.Stats.TrackedClients})
	t.AppendRow(table.Row{"Blocked clients", report.Stats.BlockedClients})

	if c := report.Client; c != nil {
		t.AppendSeparator()
		t.AppendRow(table.Row{"Client", ratelimit.MaskKey(c.Key)})
		t.AppendRow(table.Row{"Tracked", c.Tracked})
		t.AppendRow(table.Row{"Remaining", fmt.Sprintf("%d of %d", c.Remaining, c.Limit)})
		t.AppendRow(table.Row{"Window resets", c.ResetAt.UTC().Format(time.RFC3339)})
	}
	return t.Render()
}

func init() {
	rateLimitCmd.PersistentFlags().StringVar(&rateLimitServer, "server", "", "Server base URL (default from server.host/server.port)")
	rateLimitCmd.PersistentFlags().StringVar(&rateLimitToken, "token", "", "Admin token (default admin.token)")
	rateLimitStatusCmd.Flags().StringVar(&rateLimitClient, "client", "", "Also show one client's standing (IP address)")
	rateLimitResetCmd.Flags().BoolVar(&rateLimitYes, "yes", false, "Confirm the reset")

	rateLimitCmd.AddCommand(rateLimitStatusCmd)
	rateLimitCmd.AddCommand(rateLimitResetCmd)
	rootCmd.AddCommand(rateLimitCmd)
}
