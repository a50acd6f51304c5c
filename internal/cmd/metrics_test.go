package cmd

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/foresight/internal/metrics"
	"github.com/harrison/foresight/internal/models"
)

func seedMetrics(t *testing.T, endedAt ...time.Time) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "metrics.db")
	store, err := metrics.NewStore(dbPath)
	require.NoError(t, err)
	defer store.Close()

	for i, ended := range endedAt {
		gravity := 0.6
		abandonedAt := 3
		require.NoError(t, store.Record(context.Background(), &metrics.SessionSummary{
			SessionID:              "s-" + string(rune('a'+i)),
			Status:                 models.StatusTerminated,
			TerminationReason:      models.TerminationAbandoned,
			TurnsCompleted:         3,
			DecisionGravityScore:   &gravity,
			QuestionDepthScores:    []float64{0.5, 0.7},
			ConsequenceDepthScores: []float64{0.6, 0.6, 0.8},
			QuestionRejectionCount: 1,
			AbandonmentTurn:        &abandonedAt,
			StartedAt:              ended.Add(-10 * time.Minute),
			EndedAt:                ended,
			DurationSeconds:        600,
		}))
	}
	return dbPath
}

func TestMetricsStats(t *testing.T) {
	dbPath := seedMetrics(t, time.Now().Add(-time.Hour))

	out, err := execute(t, "metrics", "stats", "--db-path", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "=== Session Metrics ===")
	assert.Contains(t, out, "sessions")
	assert.Contains(t, out, "abandoned")
}

func TestMetricsStatsEmpty(t *testing.T) {
	dbPath := seedMetrics(t)

	out, err := execute(t, "metrics", "stats", "--db-path", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "No sessions recorded yet")
}

func TestMetricsMissingDatabase(t *testing.T) {
	_, err := execute(t, "metrics", "stats", "--db-path", filepath.Join(t.TempDir(), "nope.db"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "metrics database not found")
}

func TestMetricsExportStdout(t *testing.T) {
	dbPath := seedMetrics(t, time.Now().Add(-time.Hour), time.Now().Add(-2*time.Hour))

	out, err := execute(t, "metrics", "export", "--db-path", dbPath)
	require.NoError(t, err)

	var exp metrics.Export
	require.NoError(t, json.Unmarshal([]byte(out), &exp))
	assert.Len(t, exp.Summaries, 2)
	assert.Equal(t, 2, exp.Stats.TotalSessions)
}

func TestMetricsExportFile(t *testing.T) {
	dbPath := seedMetrics(t, time.Now().Add(-time.Hour))
	output := filepath.Join(t.TempDir(), "metrics.yaml")

	out, err := execute(t, "metrics", "export", "--db-path", dbPath, "--format", "yaml", "--output", output)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 1 sessions to "+output)
	assert.FileExists(t, output)
}

func TestMetricsPrune(t *testing.T) {
	dbPath := seedMetrics(t, time.Now().Add(-200*24*time.Hour), time.Now().Add(-time.Hour))

	out, err := execute(t, "metrics", "prune", "--db-path", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted 1 session summaries")

	_, err = execute(t, "metrics", "prune", "--db-path", dbPath, "--older-than", "0s")
	require.Error(t, err)
}
