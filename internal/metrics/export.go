package metrics

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/harrison/foresight/internal/filelock"
)

// Export formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Export is the document written by metrics export.
type Export struct {
	Stats     *Stats            `json:"stats" yaml:"stats"`
	Summaries []*SessionSummary `json:"summaries" yaml:"summaries"`
}

// Marshal encodes the export in the given format.
func (e *Export) Marshal(format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case FormatJSON:
		data, err := json.MarshalIndent(e, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal json export: %w", err)
		}
		return append(data, '\n'), nil
	case FormatYAML, "yml":
		data, err := yaml.Marshal(e)
		if err != nil {
			return nil, fmt.Errorf("marshal yaml export: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unsupported export format %q (want json or yaml)", format)
	}
}

// BuildExport loads every summary and its aggregate stats.
func BuildExport(ctx context.Context, s *Store) (*Export, error) {
	all, err := s.List(ctx, 0)
	if err != nil {
		return nil, err
	}
	if all == nil {
		all = []*SessionSummary{}
	}
	return &Export{Stats: ComputeStats(all), Summaries: all}, nil
}

// WriteExport writes the export to path under a lock, atomically.
func WriteExport(ctx context.Context, s *Store, path, format string) (int, error) {
	exp, err := BuildExport(ctx, s)
	if err != nil {
		return 0, err
	}
	data, err := exp.Marshal(format)
	if err != nil {
		return 0, err
	}
	if err := filelock.LockAndWrite(path, data); err != nil {
		return 0, fmt.Errorf("write export: %w", err)
	}
	return len(exp.Summaries), nil
}
