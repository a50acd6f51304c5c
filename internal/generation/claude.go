package generation

import (
	"context"
	"fmt"
	"time"

	"github.com/harrison/foresight/internal/claude"
)

// reflectionSchema constrains CLI structured output to a single field.
const reflectionSchema = `{"type":"object","properties":{"reflection":{"type":"string"}},"required":["reflection"],"additionalProperties":false}`

type reflectionEnvelope struct {
	Reflection string `json:"reflection"`
}

// reflectionInvoker is the part of claude.Service used by ClaudeProvider.
type reflectionInvoker interface {
	InvokeAndParse(ctx context.Context, req claude.Request, result interface{}) error
}

// ClaudeProvider generates reflections through the Claude CLI.
type ClaudeProvider struct {
	svc reflectionInvoker
}

// NewClaudeProvider creates a provider that shells out to claudePath.
func NewClaudeProvider(claudePath, model string, timeout time.Duration) *ClaudeProvider {
	return &ClaudeProvider{svc: claude.NewService(claudePath, model, timeout)}
}

// Name implements Provider.
func (p *ClaudeProvider) Name() string { return "claude" }

// Generate implements Provider.
func (p *ClaudeProvider) Generate(ctx context.Context, prompt Prompt) (string, error) {
	var out reflectionEnvelope
	req := claude.Request{
		Prompt:       prompt.User,
		Schema:       reflectionSchema,
		SystemPrompt: prompt.System + "\n\n" + claude.JSONOnlyInstruction,
	}
	if err := p.svc.InvokeAndParse(ctx, req, &out); err != nil {
		return "", fmt.Errorf("claude: %w", err)
	}
	return out.Reflection, nil
}
