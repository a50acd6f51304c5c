package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrison/foresight/internal/logger"
	"github.com/harrison/foresight/internal/models"
)

// NewStatusCommand creates the 'foresight status' command
func NewStatusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status <session-id>",
		Short: "Query a running server for a session's status",
		Args:  cobra.ExactArgs(1),
		RunE:  runStatus,
	}

	cmd.Flags().String("server", "http://127.0.0.1:8080", "Base URL of a running foresight server")
	cmd.Flags().Duration("timeout", 5*time.Second, "Request timeout")

	return cmd
}

func runStatus(cmd *cobra.Command, args []string) error {
	base, _ := cmd.Flags().GetString("server")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	endpoint := strings.TrimRight(base, "/") + "/api/sessions/" + url.PathEscape(args[0])
	req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("query %s: %w", base, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("query %s: unexpected status %s", base, resp.Status)
	}

	var report models.StatusReport
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return fmt.Errorf("decode status: %w", err)
	}

	out := cmd.OutOrStdout()
	if !report.Exists {
		fmt.Fprintf(out, "Session %s not found\n", args[0])
		return nil
	}
	fmt.Fprintln(out, logger.ColorizedMetric("status", report.Status))
	if report.CurrentTurn != nil {
		fmt.Fprintln(out, logger.ColorizedMetric("turn", fmt.Sprintf("%d of %d", *report.CurrentTurn, models.MaxTurns)))
	}
	if report.CanContinue != nil {
		fmt.Fprintln(out, logger.ColorizedMetric("can continue", *report.CanContinue))
	}
	return nil
}
