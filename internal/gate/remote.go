package gate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/harrison/foresight/internal/models"
)

// Logger is the subset of the application logger used by remote scorers.
type Logger interface {
	LogWarn(message string)
}

// scoreRequest is the JSON body posted to a scoring endpoint.
type scoreRequest struct {
	Text string `json:"text"`
}

// scoreResponse is the JSON body returned by a scoring endpoint. Only the
// dimension values are trusted; weights and threshold are applied locally so
// a remote model cannot move the gate boundary.
type scoreResponse struct {
	Dimensions map[string]float64 `json:"dimensions"`
	Error      string             `json:"error,omitempty"`
}

// RemoteScorer asks an HTTP scoring endpoint for dimension values and falls
// back to a local scorer on any failure.
type RemoteScorer struct {
	url        string
	gate       *Gate
	fallback   Scorer
	httpClient *http.Client
	logger     Logger
}

// NewRemoteScorer creates a scorer for one gate. The HTTP timeout bounds each
// call; fallback is used when the endpoint fails or returns partial data.
func NewRemoteScorer(url string, g *Gate, fallback Scorer, timeout time.Duration, logger Logger) *RemoteScorer {
	if fallback == nil {
		fallback = g
	}
	return &RemoteScorer{
		url:      url,
		gate:     g,
		fallback: fallback,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Score implements Scorer.
func (r *RemoteScorer) Score(ctx context.Context, text string) (models.Score, error) {
	score, err := r.scoreRemote(ctx, text)
	if err != nil {
		if r.logger != nil {
			r.logger.LogWarn(fmt.Sprintf("%s remote scorer unavailable, using heuristic: %v", r.gate.Name, err))
		}
		return r.fallback.Score(ctx, text)
	}
	return score, nil
}

func (r *RemoteScorer) scoreRemote(ctx context.Context, text string) (models.Score, error) {
	body, err := json.Marshal(scoreRequest{Text: text})
	if err != nil {
		return models.Score{}, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return models.Score{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return models.Score{}, fmt.Errorf("post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Score{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return models.Score{}, fmt.Errorf("read response: %w", err)
	}

	var parsed scoreResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return models.Score{}, fmt.Errorf("decode response: %w", err)
	}
	if parsed.Error != "" {
		return models.Score{}, fmt.Errorf("scorer error: %s", parsed.Error)
	}
	for _, name := range r.gate.DimensionNames() {
		if _, ok := parsed.Dimensions[name]; !ok {
			return models.Score{}, fmt.Errorf("response missing dimension %q", name)
		}
	}

	return r.gate.FromDimensions(parsed.Dimensions), nil
}
