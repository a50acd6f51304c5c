package generation

import (
	"context"
	"fmt"
	"time"
)

// Provider names accepted by NewProvider.
const (
	ProviderClaude   = "claude"
	ProviderGemini   = "gemini"
	ProviderFallback = "fallback"
)

// ProviderOptions selects and configures a primary provider.
type ProviderOptions struct {
	Name       string
	ClaudePath string
	Model      string
	APIKey     string
	Timeout    time.Duration
}

// NewProvider builds the configured provider. "fallback" returns nil, which
// makes the engine template-only.
func NewProvider(ctx context.Context, opts ProviderOptions) (Provider, error) {
	switch opts.Name {
	case ProviderClaude:
		return NewClaudeProvider(opts.ClaudePath, opts.Model, opts.Timeout), nil
	case ProviderGemini:
		return NewGeminiProvider(ctx, opts.APIKey, opts.Model)
	case ProviderFallback, "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown generation provider %q", opts.Name)
	}
}
