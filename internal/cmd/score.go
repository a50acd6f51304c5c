package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harrison/foresight/internal/gate"
	"github.com/harrison/foresight/internal/logger"
	"github.com/harrison/foresight/internal/models"
)

// scoringGates maps the score subcommand argument to a heuristic gate.
var scoringGates = map[string]*gate.Gate{
	"gravity":     gate.Gravity,
	"question":    gate.QuestionDepth,
	"consequence": gate.ConsequenceDepth,
}

// NewScoreCommand creates the 'foresight score' command
func NewScoreCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score <gravity|question|consequence> <text>",
		Short: "Score a text against one gate",
		Long: `Run one scoring gate locally and print its dimensions, combined score,
threshold and verdict. Useful for tuning decisions, questions and
reflections without starting a session.`,
		Args:      cobra.MinimumNArgs(2),
		ValidArgs: []string{"gravity", "question", "consequence"},
		RunE:      runScore,
	}

	cmd.Flags().Bool("json", false, "Print the score as JSON")

	return cmd
}

func runScore(cmd *cobra.Command, args []string) error {
	g, ok := scoringGates[args[0]]
	if !ok {
		return fmt.Errorf("unknown gate %q (want gravity, question or consequence)", args[0])
	}
	text := strings.Join(args[1:], " ")

	score, err := g.Score(cmd.Context(), text)
	if err != nil {
		return fmt.Errorf("score %s: %w", args[0], err)
	}

	asJSON, _ := cmd.Flags().GetBool("json")
	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(score)
	}
	printScore(cmd.OutOrStdout(), args[0], score)
	return nil
}

func printScore(out io.Writer, name string, score models.Score) {
	fmt.Fprintf(out, "%s gate\n", name)
	for _, d := range score.Dimensions {
		fmt.Fprintf(out, "  %s\n", logger.ColorizedMetric(d.Name, fmt.Sprintf("%.3f", d.Value)))
	}
	fmt.Fprintf(out, "  %s\n", logger.ColorizedScore("combined", score.Combined, score.Threshold))
	fmt.Fprintf(out, "  %s\n", logger.ColorizedMetric("threshold", fmt.Sprintf("%.3f", score.Threshold)))
	fmt.Fprintf(out, "  %s\n", logger.Verdict(score.Pass))
}
