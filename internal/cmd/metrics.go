package cmd

import (
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harrison/foresight/internal/logger"
	"github.com/harrison/foresight/internal/metrics"
)

// NewMetricsCommand creates the 'foresight metrics' parent command
func NewMetricsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Inspect silent session metrics",
		Long: `Commands for viewing the silent metrics recorded when sessions end.

Summaries hold scores, counts and outcomes only; no decision or question
text is ever stored.`,
	}

	cmd.PersistentFlags().String("db-path", "", "Path to metrics database (default: metrics.db_path from config)")

	cmd.AddCommand(newMetricsStatsCommand())
	cmd.AddCommand(newMetricsExportCommand())
	cmd.AddCommand(newMetricsPruneCommand())

	return cmd
}

// openMetricsStore opens the store named by --db-path or the config.
func openMetricsStore(cmd *cobra.Command) (*metrics.Store, error) {
	dbPath, _ := cmd.Flags().GetString("db-path")
	if dbPath == "" {
		cfg, _, err := loadConfig(cmd)
		if err != nil {
			return nil, err
		}
		dbPath = cfg.Metrics.DBPath
	}
	if dbPath == "" {
		return nil, fmt.Errorf("no metrics database configured")
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("metrics database not found: %s", dbPath)
	}

	store, err := metrics.NewStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open metrics store: %w", err)
	}
	return store, nil
}

func newMetricsStatsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show aggregate session statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openMetricsStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			stats, err := store.Stats(cmd.Context())
			if err != nil {
				return fmt.Errorf("compute stats: %w", err)
			}
			printStats(cmd.OutOrStdout(), stats)
			return nil
		},
	}
	cmd.Flags().String("config", "", "Path to config file (default: $FORESIGHT_HOME/config.yaml)")
	return cmd
}

func printStats(out io.Writer, stats *metrics.Stats) {
	if stats.TotalSessions == 0 {
		fmt.Fprintln(out, "No sessions recorded yet")
		return
	}

	header := color.New(color.Bold)
	header.Fprintln(out, "=== Session Metrics ===")
	fmt.Fprintln(out, logger.ColorizedMetric("sessions", stats.TotalSessions))
	fmt.Fprintln(out, logger.ColorizedMetric("completion rate", fmt.Sprintf("%.1f%%", stats.CompletionRate*100)))
	fmt.Fprintln(out, logger.ColorizedMetric("avg turns", fmt.Sprintf("%.2f", stats.AvgTurns)))
	fmt.Fprintln(out, logger.ColorizedMetric("avg duration", (time.Duration(stats.AvgDurationSeconds)*time.Second).String()))
	fmt.Fprintln(out, logger.ColorizedMetric("question rejections", stats.TotalRejections))

	fmt.Fprintln(out)
	header.Fprintln(out, "Mean scores")
	fmt.Fprintln(out, "  "+logger.ColorizedMetric("decision gravity", fmt.Sprintf("%.3f", stats.MeanGravity)))
	fmt.Fprintln(out, "  "+logger.ColorizedMetric("question depth", fmt.Sprintf("%.3f", stats.MeanQuestionDepth)))
	fmt.Fprintln(out, "  "+logger.ColorizedMetric("consequence depth", fmt.Sprintf("%.3f", stats.MeanConsequenceDepth)))

	printCounts(out, header, "By status", stats.ByStatus)
	printCounts(out, header, "By termination reason", stats.ByTerminationReason)
}

func printCounts(out io.Writer, header *color.Color, title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintln(out)
	header.Fprintln(out, title)
	for _, k := range keys {
		fmt.Fprintln(out, "  "+logger.ColorizedMetric(k, counts[k]))
	}
}

func newMetricsExportCommand() *cobra.Command {
	var format string
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export session summaries to JSON or YAML",
		Long: `Export every recorded session summary with aggregate stats.

If no output file is specified, data is written to stdout. Files are
written atomically under a lock.

Examples:
  foresight metrics export --format yaml --output metrics.yaml
  foresight metrics export --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openMetricsStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			if output == "" {
				exp, err := metrics.BuildExport(cmd.Context(), store)
				if err != nil {
					return err
				}
				data, err := exp.Marshal(format)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}

			n, err := metrics.WriteExport(cmd.Context(), store, output, format)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d sessions to %s\n", n, output)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", metrics.FormatJSON, "Export format (json|yaml)")
	cmd.Flags().StringVar(&output, "output", "", "Output file path (stdout if not specified)")
	cmd.Flags().String("config", "", "Path to config file (default: $FORESIGHT_HOME/config.yaml)")

	return cmd
}

func newMetricsPruneCommand() *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete summaries of sessions that ended long ago",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if olderThan <= 0 {
				return fmt.Errorf("--older-than must be positive")
			}
			store, err := openMetricsStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			n, err := store.DeleteBefore(cmd.Context(), time.Now().Add(-olderThan))
			if err != nil {
				return fmt.Errorf("prune metrics: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d session summaries\n", n)
			return nil
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 90*24*time.Hour, "Delete summaries that ended before now minus this duration")
	cmd.Flags().String("config", "", "Path to config file (default: $FORESIGHT_HOME/config.yaml)")

	return cmd
}
