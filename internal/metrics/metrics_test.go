package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/harrison/foresight/internal/models"
	"github.com/harrison/foresight/internal/session"
)

var started = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "metrics.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func completedSession(id string) *models.Session {
	return &models.Session{
		ID:          id,
		Status:      models.StatusCompleted,
		CurrentTurn: models.MaxTurns,
		MaxTurns:    models.MaxTurns,
		Metrics: models.SilentMetrics{
			DecisionGravityScore:   floatPtr(0.6),
			QuestionDepthScores:    []float64{0.5, 0.7},
			ConsequenceDepthScores: []float64{0.4, 0.6, 0.8},
			QuestionRejectionCount: 2,
		},
		CreatedAt: started,
	}
}

func TestNewStore(t *testing.T) {
	tests := []struct {
		name    string
		dbPath  string
		wantErr bool
	}{
		{name: "creates database", dbPath: filepath.Join(t.TempDir(), "metrics.db")},
		{name: "in-memory database", dbPath: ":memory:"},
		{name: "creates parent directories", dbPath: filepath.Join(t.TempDir(), "nested", "dir", "metrics.db")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := NewStore(tt.dbPath)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer store.Close()

			version, err := store.GetLatestVersion()
			require.NoError(t, err)
			assert.Equal(t, len(migrations), version)
			assert.Equal(t, tt.dbPath, store.Path())
		})
	}
}

func TestApplyMigrationsIsIdempotent(t *testing.T) {
	store := setupTestStore(t)

	require.NoError(t, store.ApplyMigrations(context.Background()))
	require.NoError(t, store.ApplyMigrations(context.Background()))

	versions, err := store.GetAppliedVersions()
	require.NoError(t, err)
	require.Len(t, versions, len(migrations))
	for i, v := range versions {
		assert.Equal(t, migrations[i].Version, v.Version)
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.db")
	store, err := NewStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Record(context.Background(), NewSummary(completedSession("s1"), started.Add(time.Minute))))
	require.NoError(t, store.Close())

	reopened, err := NewStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, got.Status)
}

func TestNewSummary(t *testing.T) {
	s := completedSession("s1")
	sum := NewSummary(s, started.Add(90*time.Second))

	assert.Equal(t, "s1", sum.SessionID)
	assert.Equal(t, models.MaxTurns, sum.TurnsCompleted)
	assert.Equal(t, int64(90), sum.DurationSeconds)
	require.NotNil(t, sum.DecisionGravityScore)
	assert.Equal(t, 0.6, *sum.DecisionGravityScore)

	*s.Metrics.DecisionGravityScore = 0.1
	s.Metrics.QuestionDepthScores[0] = 0
	assert.Equal(t, 0.6, *sum.DecisionGravityScore, "summary is a copy")
	assert.Equal(t, 0.5, sum.QuestionDepthScores[0])
}

func TestRecordAndGet(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	terminated := &models.Session{
		ID:                "s2",
		Status:            models.StatusTerminated,
		TerminationReason: models.TerminationShallowResponse,
		CurrentTurn:       0,
		Metrics: models.SilentMetrics{
			DecisionGravityScore: floatPtr(0.2),
			AbandonmentTurn:      intPtr(0),
		},
		CreatedAt: started,
	}
	require.NoError(t, store.Record(ctx, NewSummary(terminated, started.Add(time.Second))))

	got, err := store.Get(ctx, "s2")
	require.NoError(t, err)
	assert.Equal(t, models.StatusTerminated, got.Status)
	assert.Equal(t, models.TerminationShallowResponse, got.TerminationReason)
	require.NotNil(t, got.AbandonmentTurn)
	assert.Equal(t, 0, *got.AbandonmentTurn)
	assert.Equal(t, []float64{}, got.QuestionDepthScores)
	assert.Equal(t, started, got.StartedAt)
	assert.Equal(t, started.Add(time.Second), got.EndedAt)
	assert.Equal(t, int64(1), got.DurationSeconds)

	_, err = store.Get(ctx, "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestRecordUpserts(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	s := completedSession("s1")
	s.Status = models.StatusTerminated
	s.TerminationReason = models.TerminationAbandoned
	require.NoError(t, store.Record(ctx, NewSummary(s, started.Add(time.Minute))))

	s.Status = models.StatusError
	s.TerminationReason = models.TerminationError
	require.NoError(t, store.Record(ctx, NewSummary(s, started.Add(2*time.Minute))))

	all, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, models.StatusError, all[0].Status)
}

func TestListOrderAndLimit(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, store.Record(ctx, NewSummary(completedSession(id), started.Add(time.Duration(i+1)*time.Minute))))
	}

	all, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c", all[0].SessionID)
	assert.Equal(t, "a", all[2].SessionID)

	limited, err := store.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	deleted, err := store.DeleteBefore(ctx, started.Add(150*time.Second))
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
}

func TestComputeStats(t *testing.T) {
	empty := ComputeStats(nil)
	assert.Zero(t, empty.TotalSessions)
	assert.NotNil(t, empty.ByStatus)

	abandoned := &SessionSummary{
		Status:                 models.StatusTerminated,
		TerminationReason:      models.TerminationAbandoned,
		TurnsCompleted:         3,
		DecisionGravityScore:   floatPtr(0.4),
		QuestionDepthScores:    []float64{0.3},
		ConsequenceDepthScores: []float64{0.6},
		QuestionRejectionCount: 1,
		DurationSeconds:        60,
	}
	complete := NewSummary(completedSession("s1"), started.Add(3*time.Minute))

	stats := ComputeStats([]*SessionSummary{abandoned, complete})
	assert.Equal(t, 2, stats.TotalSessions)
	assert.Equal(t, 1, stats.ByStatus["completed"])
	assert.Equal(t, 1, stats.ByStatus["terminated"])
	assert.Equal(t, map[string]int{"abandoned": 1}, stats.ByTerminationReason)
	assert.InDelta(t, 6.0, stats.AvgTurns, 1e-9)
	assert.InDelta(t, 120.0, stats.AvgDurationSeconds, 1e-9)
	assert.InDelta(t, 0.5, stats.MeanGravity, 1e-9)
	assert.InDelta(t, 0.5, stats.MeanQuestionDepth, 1e-9)
	assert.InDelta(t, 0.6, stats.MeanConsequenceDepth, 1e-9)
	assert.Equal(t, 3, stats.TotalRejections)
	assert.InDelta(t, 0.5, stats.CompletionRate, 1e-9)
}

type recordingLogger struct {
	warnings []string
}

func (l *recordingLogger) LogDebug(string)        {}
func (l *recordingLogger) LogWarn(message string) { l.warnings = append(l.warnings, message) }

type failingRecorder struct{}

func (failingRecorder) Record(context.Context, *SessionSummary) error {
	return errors.New("disk full")
}

func TestReporterViaExitHook(t *testing.T) {
	store := setupTestStore(t)
	log := &recordingLogger{}
	reporter := NewReporter(store, log)

	controller := session.NewController(session.NewMemoryStore(), session.WithExitHook(reporter.Report))
	_, err := controller.CreateSession("s1")
	require.NoError(t, err)
	require.NoError(t, controller.RecordDecisionGravity("s1", 0.2))

	_, err = store.Get(context.Background(), "s1")
	require.ErrorIs(t, err, ErrNotFound, "active sessions are not reported")

	require.NoError(t, controller.TerminateSession("s1", models.TerminationShallowResponse))

	got, err := store.Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusTerminated, got.Status)
	assert.Equal(t, models.TerminationShallowResponse, got.TerminationReason)
	require.NotNil(t, got.DecisionGravityScore)
	assert.Equal(t, 0.2, *got.DecisionGravityScore)
	assert.Empty(t, log.warnings)
}

func TestReporterLogsFailures(t *testing.T) {
	log := &recordingLogger{}
	reporter := NewReporter(failingRecorder{}, log)

	reporter.Report(completedSession("s1"))
	require.Len(t, log.warnings, 1)
	assert.Contains(t, log.warnings[0], "s1")
	assert.Contains(t, log.warnings[0], "disk full")

	reporter.Report(&models.Session{ID: "active", Status: models.StatusActive})
	assert.Len(t, log.warnings, 1)
}

func TestWriteExport(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Record(ctx, NewSummary(completedSession("s1"), started.Add(time.Minute))))

	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "out", "metrics.json")
	n, err := WriteExport(ctx, store, jsonPath, FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	var decoded Export
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded.Summaries, 1)
	assert.Equal(t, "s1", decoded.Summaries[0].SessionID)
	assert.Equal(t, 1, decoded.Stats.TotalSessions)

	yamlPath := filepath.Join(dir, "metrics.yaml")
	_, err = WriteExport(ctx, store, yamlPath, FormatYAML)
	require.NoError(t, err)
	data, err = os.ReadFile(yamlPath)
	require.NoError(t, err)
	var doc map[string]interface{}
	require.NoError(t, yaml.Unmarshal(data, &doc))
	assert.Contains(t, doc, "summaries")
	assert.Contains(t, string(data), "session_id: s1")

	_, err = WriteExport(ctx, store, filepath.Join(dir, "metrics.csv"), "csv")
	assert.ErrorContains(t, err, "unsupported export format")
}
