// Package generation produces future-self reflections. A primary provider
// (the Claude CLI or the Gemini API) is tried under a timeout; its output is
// flattened to plain text and screened, and any failure falls back to a
// deterministic template keyed on the themes of the input. Generation never
// returns an error to its caller.
package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/harrison/foresight/internal/models"
)

// Source tells which path produced a reflection.
type Source string

const (
	SourcePrimary  Source = "primary"
	SourceFallback Source = "fallback"
)

// Result is a generated reflection.
type Result struct {
	Reflection string
	Source     Source
}

// Prompt is the role-split payload sent to a provider.
type Prompt struct {
	System string
	User   string
}

// Provider is a text generation backend.
type Provider interface {
	Name() string
	Generate(ctx context.Context, p Prompt) (string, error)
}

// Logger is the subset of the application logger used here.
type Logger interface {
	LogDebug(message string)
	LogWarn(message string)
}

// DefaultTimeout bounds a provider call when none is configured.
const DefaultTimeout = 30 * time.Second

// ErrNoProvider is reported when the engine runs fallback-only.
var ErrNoProvider = errors.New("no generation provider configured")

// Engine runs the primary-then-fallback pipeline.
type Engine struct {
	provider Provider
	timeout  time.Duration
	logger   Logger
}

// NewEngine creates an engine. A nil provider means fallback-only.
func NewEngine(provider Provider, timeout time.Duration, logger Logger) *Engine {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Engine{
		provider: provider,
		timeout:  timeout,
		logger:   logger,
	}
}

// ProviderName names the primary provider, or "fallback".
func (e *Engine) ProviderName() string {
	if e.provider == nil {
		return string(SourceFallback)
	}
	return e.provider.Name()
}

// Initial generates the turn-1 reflection for a sanitised decision.
func (e *Engine) Initial(ctx context.Context, decision, decisionContext string) Result {
	return e.generate(ctx, InitialPrompt(decision, decisionContext), func() string {
		return InitialFallback(decision)
	})
}

// FollowUp generates a reflection for a question turn. Only the anchors carry
// turn-1 context forward; the original decision text is not retained.
func (e *Engine) FollowUp(ctx context.Context, anchors *models.CoherenceAnchors, question string, turn int) Result {
	return e.generate(ctx, FollowUpPrompt(anchors, question, turn), func() string {
		return FollowUpFallback(question)
	})
}

func (e *Engine) generate(ctx context.Context, prompt Prompt, fallback func() string) Result {
	text, err := e.primary(ctx, prompt)
	if errors.Is(err, ErrNoProvider) {
		if e.logger != nil {
			e.logger.LogDebug("generation running template-only")
		}
		return Result{Reflection: fallback(), Source: SourceFallback}
	}
	if err != nil {
		e.warn(fmt.Sprintf("generation via %s failed, using fallback: %v", e.ProviderName(), err))
		return Result{Reflection: fallback(), Source: SourceFallback}
	}
	return Result{Reflection: text, Source: SourcePrimary}
}

// primary calls the provider under the timeout and screens its output. A
// provider panic is converted to an error.
func (e *Engine) primary(ctx context.Context, prompt Prompt) (text string, err error) {
	if e.provider == nil {
		return "", ErrNoProvider
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("provider panic: %v", r)
		}
	}()

	start := time.Now()
	raw, err := e.provider.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	if e.logger != nil {
		e.logger.LogDebug(fmt.Sprintf("generation via %s took %s", e.provider.Name(), time.Since(start).Round(time.Millisecond)))
	}

	return Screen(raw)
}

func (e *Engine) warn(msg string) {
	if e.logger != nil {
		e.logger.LogWarn(msg)
	}
}

// trimQuotes drops wrapping quotes some models add around the whole answer.
func trimQuotes(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}
