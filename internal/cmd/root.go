package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for foresight
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "foresight",
		Short: "Bounded reflection sessions for consequential decisions",
		Long: `Foresight helps people imagine living with a significant decision.

A session starts with one decision and allows up to eight follow-up
questions. Every turn passes through scoring gates that keep the
conversation reflective: trivial decisions, advice seeking, prediction
requests and shallow replies are refused with guidance instead.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	cmd.AddCommand(NewServeCommand())
	cmd.AddCommand(NewChatCommand())
	cmd.AddCommand(NewScoreCommand())
	cmd.AddCommand(NewStatusCommand())
	cmd.AddCommand(NewMetricsCommand())

	return cmd
}
