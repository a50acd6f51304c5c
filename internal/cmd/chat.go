package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/harrison/foresight/internal/models"
)

// NewChatCommand creates the 'foresight chat' command
func NewChatCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Run one reflection session in the terminal",
		Long: `Start an interactive reflection session.

Describe a decision you are facing, then ask up to eight questions about
how it might feel to live with it. Type "quit" to leave early.`,
		Args: cobra.NoArgs,
		RunE: runChat,
	}

	addConfigFlags(cmd)
	cmd.Flags().String("provider", "", "Generation provider: claude, gemini, fallback")

	return cmd
}

// palette colors the transcript when writing to a terminal.
type palette struct {
	prompt     *color.Color
	reflection *color.Color
	refusal    *color.Color
	muted      *color.Color
}

func newPalette(w io.Writer) palette {
	p := palette{
		prompt:     color.New(color.FgCyan, color.Bold),
		reflection: color.New(color.FgWhite),
		refusal:    color.New(color.FgYellow),
		muted:      color.New(color.FgHiBlack),
	}
	if f, ok := w.(*os.File); !ok || !(isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		for _, c := range []*color.Color{p.prompt, p.reflection, p.refusal, p.muted} {
			c.DisableColor()
		}
	}
	return p
}

// turnProcessor is the part of the orchestrator the chat loop drives.
type turnProcessor interface {
	ProcessTurn(ctx context.Context, req models.TurnRequest) models.TurnResult
}

// sessionCloser ends a session the user walked away from.
type sessionCloser interface {
	TerminateSession(id string, reason models.TerminationReason) error
}

// warnLogger reports problems that must not interrupt the transcript.
type warnLogger interface {
	LogWarn(message string)
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// The terminal belongs to the transcript, so only warnings reach the console.
	cfg.LogLevel = "warn"
	log, closeLog, err := newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer closeLog()

	a, err := newApp(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	return chatLoop(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), a.orchestrator, a.controller, log)
}

// chatLoop reads a decision, then questions, until the session ends, the
// user quits or input runs out.
func chatLoop(ctx context.Context, in io.Reader, out io.Writer, proc turnProcessor, closer sessionCloser, log warnLogger) error {
	p := newPalette(out)
	scanner := bufio.NewScanner(in)

	read := func(label string) (string, bool) {
		p.prompt.Fprintf(out, "%s> ", label)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return "", false
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "quit" || line == "exit" {
			return "", false
		}
		return line, true
	}

	fmt.Fprintln(out, "Describe a decision you are facing. Foresight will help you imagine living with it.")

	var sessionID string
	for sessionID == "" {
		text, ok := read("decision")
		if !ok {
			return scanner.Err()
		}
		res := proc.ProcessTurn(ctx, models.TurnRequest{
			Type:     models.RequestDecision,
			Decision: &models.DecisionInput{DecisionText: text},
		})
		if !res.Success {
			printRefusal(out, p, res.Refusal)
			continue
		}
		sessionID = res.Response.Metadata.SessionID
		printResponse(out, p, res.Response)
	}

	for {
		text, ok := read("question")
		if !ok {
			if closer != nil {
				if err := closer.TerminateSession(sessionID, models.TerminationAbandoned); err != nil && log != nil {
					log.LogWarn(fmt.Sprintf("failed to abandon session %s: %v", sessionID, err))
				}
			}
			return scanner.Err()
		}
		res := proc.ProcessTurn(ctx, models.TurnRequest{
			Type:      models.RequestQuestion,
			SessionID: sessionID,
			Question:  &models.QuestionInput{QuestionText: text},
		})
		if res.Success {
			printResponse(out, p, res.Response)
			if res.Response.IsFinal {
				return nil
			}
			continue
		}
		printRefusal(out, p, res.Refusal)
		if sessionEnded(res.Refusal.Reason) {
			return nil
		}
	}
}

// sessionEnded reports whether a question refusal means no more turns.
func sessionEnded(reason models.RefusalReason) bool {
	switch reason {
	case models.RefusalSessionTerminated, models.RefusalMaxTurnsReached,
		models.RefusalShallowResponse, models.RefusalSystemError:
		return true
	}
	return false
}

func printResponse(out io.Writer, p palette, resp *models.ReflectionResponse) {
	fmt.Fprintln(out)
	p.reflection.Fprintln(out, resp.Reflection)
	fmt.Fprintln(out)
	if resp.Guidance != "" {
		p.muted.Fprintln(out, resp.Guidance)
	}
	if resp.ClosureMessage != "" {
		p.muted.Fprintln(out, resp.ClosureMessage)
		return
	}
	p.muted.Fprintf(out, "Turn %d of %d, %d remaining\n", resp.TurnNumber, models.MaxTurns, resp.RemainingTurns)
}

func printRefusal(out io.Writer, p palette, r *models.Refusal) {
	fmt.Fprintln(out)
	p.refusal.Fprintln(out, r.Message)
	if r.Guidance != "" {
		p.muted.Fprintln(out, r.Guidance)
	}
	if r.ExampleReframe != "" {
		p.muted.Fprintf(out, "For example: %s\n", r.ExampleReframe)
	}
	fmt.Fprintln(out)
}
