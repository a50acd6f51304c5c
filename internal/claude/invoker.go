// Package claude provides utilities for invoking the Claude CLI.
package claude

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// JSONOnlyInstruction forces a JSON-only envelope so answers can be
// extracted reliably. Callers overriding the system prompt append it.
const JSONOnlyInstruction = "Your ONLY output must be valid JSON matching the provided schema. No markdown, no code fences, no prose outside the JSON."

// DefaultSystemPrompt keeps the CLI in the voice of a future self.
const DefaultSystemPrompt = "You write reflective first-person narratives in the voice of the user's possible future self. " +
	"Never give advice, verdicts or predictions stated as certain. Always frame the narrative as one possible future. " +
	JSONOnlyInstruction

// ErrEmptyPrompt is returned when a request has no prompt.
var ErrEmptyPrompt = errors.New("prompt is required")

// Invoker is a reusable client for invoking Claude CLI commands.
// Create once, use many times. Safe for concurrent use.
type Invoker struct {
	// ClaudePath is the path to the claude CLI binary. Defaults to "claude".
	ClaudePath string

	// Model is passed as --model when set.
	Model string

	// Timeout bounds each invocation. Zero means the caller's context only.
	Timeout time.Duration

	// SystemPrompt is sent with all invocations.
	SystemPrompt string
}

// Request holds per-invocation configuration for a Claude CLI call.
type Request struct {
	// Prompt is the user prompt (required).
	Prompt string

	// Schema is the JSON schema for structured output, sent via --json-schema.
	Schema string

	// SystemPrompt overrides the invoker's system prompt for this call.
	SystemPrompt string
}

// Response holds the raw output from a Claude CLI invocation.
type Response struct {
	RawOutput []byte
	Duration  time.Duration
}

// NewInvoker creates an Invoker with default settings.
func NewInvoker() *Invoker {
	return &Invoker{
		ClaudePath:   "claude",
		SystemPrompt: DefaultSystemPrompt,
	}
}

// Invoke executes a Claude CLI command under the invoker's timeout.
func (inv *Invoker) Invoke(ctx context.Context, req Request) (*Response, error) {
	if inv.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, inv.Timeout)
		defer cancel()
	}

	args, err := inv.buildArgs(req)
	if err != nil {
		return nil, err
	}

	claudePath := inv.ClaudePath
	if claudePath == "" {
		claudePath = "claude"
	}

	start := time.Now()
	cmd := exec.CommandContext(ctx, claudePath, args...)
	SetCleanEnv(cmd)

	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("claude invocation: %w", ctxErr)
		}
		return nil, fmt.Errorf("claude invocation failed: %w (%d bytes of output)", err, len(output))
	}

	return &Response{
		RawOutput: output,
		Duration:  time.Since(start),
	}, nil
}

// buildArgs always includes --system-prompt, -p, --output-format json and
// --settings; --model and --json-schema are added when set.
func (inv *Invoker) buildArgs(req Request) ([]string, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, ErrEmptyPrompt
	}

	systemPrompt := req.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = inv.SystemPrompt
	}
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}

	args := []string{"--system-prompt", systemPrompt, "-p", req.Prompt}
	if inv.Model != "" {
		args = append(args, "--model", inv.Model)
	}
	if req.Schema != "" {
		args = append(args, "--json-schema", req.Schema)
	}
	args = append(args, "--output-format", "json")

	// Disable hooks for automation
	args = append(args, "--settings", `{"disableAllHooks": true}`)
	return args, nil
}
