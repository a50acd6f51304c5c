package claude

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Service wraps an Invoker with the invoke-parse-unmarshal flow used by
// structured callers.
type Service struct {
	inv *Invoker
}

// NewService creates a Service with its own Invoker.
func NewService(claudePath, model string, timeout time.Duration) *Service {
	inv := NewInvoker()
	if claudePath != "" {
		inv.ClaudePath = claudePath
	}
	inv.Model = model
	inv.Timeout = timeout
	return &Service{inv: inv}
}

// InvokeAndParse invokes the CLI with prompt and schema and unmarshals the
// answer into result, falling back to JSON extraction when the answer has
// prose around it.
func (s *Service) InvokeAndParse(ctx context.Context, req Request, result interface{}) error {
	resp, err := s.inv.Invoke(ctx, req)
	if err != nil {
		return err
	}

	content, _, err := ParseResponse(resp.RawOutput)
	if err != nil {
		return fmt.Errorf("failed to parse claude output: %w", err)
	}
	if content == "" {
		return fmt.Errorf("empty response from claude")
	}

	if err := json.Unmarshal([]byte(content), result); err != nil {
		extracted := ExtractJSON(content)
		if extracted == "" {
			return fmt.Errorf("failed to unmarshal response: %w (%d bytes of content)", err, len(content))
		}
		if err := json.Unmarshal([]byte(extracted), result); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w (%d bytes of content)", err, len(content))
		}
	}
	return nil
}
