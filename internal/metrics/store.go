package metrics

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/harrison/foresight/internal/models"
)

// ErrNotFound is returned when no summary exists for a session id.
var ErrNotFound = errors.New("session summary not found")

// Store manages the SQLite database of session summaries
type Store struct {
	db     *sql.DB
	dbPath string
}

// NewStore opens (creating if needed) the database at dbPath and applies
// migrations. ":memory:" opens an in-memory database.
func NewStore(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	return openAndInitStore(dbPath)
}

func openAndInitStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Each connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	// busy_timeout must be set first so later statements wait on locks.
	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if err := execWithRetry(db, pragma, 5, 10*time.Millisecond); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	store := &Store{db: db, dbPath: dbPath}
	if err := store.ApplyMigrations(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}
	return store, nil
}

// execWithRetry executes a statement, retrying "database is locked" errors
// with exponential backoff.
func execWithRetry(db *sql.DB, stmt string, maxRetries int, baseDelay time.Duration) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		_, err := db.Exec(stmt)
		if err == nil {
			return nil
		}
		if !strings.Contains(err.Error(), "database is locked") {
			return err
		}
		lastErr = err
		time.Sleep(baseDelay * time.Duration(1<<attempt))
	}
	return lastErr
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the database path.
func (s *Store) Path() string {
	return s.dbPath
}

// Record upserts a summary by session id.
func (s *Store) Record(ctx context.Context, sum *SessionSummary) error {
	depth, err := json.Marshal(nonNil(sum.QuestionDepthScores))
	if err != nil {
		return fmt.Errorf("marshal question depth scores: %w", err)
	}
	consequence, err := json.Marshal(nonNil(sum.ConsequenceDepthScores))
	if err != nil {
		return fmt.Errorf("marshal consequence depth scores: %w", err)
	}

	query := `INSERT INTO session_summaries
		(session_id, status, termination_reason, turns_completed, decision_gravity_score,
		 question_depth_scores, consequence_depth_scores, question_rejection_count,
		 abandonment_turn, started_at, ended_at, duration_seconds)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			status = excluded.status,
			termination_reason = excluded.termination_reason,
			turns_completed = excluded.turns_completed,
			decision_gravity_score = excluded.decision_gravity_score,
			question_depth_scores = excluded.question_depth_scores,
			consequence_depth_scores = excluded.consequence_depth_scores,
			question_rejection_count = excluded.question_rejection_count,
			abandonment_turn = excluded.abandonment_turn,
			started_at = excluded.started_at,
			ended_at = excluded.ended_at,
			duration_seconds = excluded.duration_seconds`

	var gravity sql.NullFloat64
	if sum.DecisionGravityScore != nil {
		gravity = sql.NullFloat64{Float64: *sum.DecisionGravityScore, Valid: true}
	}
	var abandonment sql.NullInt64
	if sum.AbandonmentTurn != nil {
		abandonment = sql.NullInt64{Int64: int64(*sum.AbandonmentTurn), Valid: true}
	}

	_, err = s.db.ExecContext(ctx, query,
		sum.SessionID,
		string(sum.Status),
		string(sum.TerminationReason),
		sum.TurnsCompleted,
		gravity,
		string(depth),
		string(consequence),
		sum.QuestionRejectionCount,
		abandonment,
		sum.StartedAt.UTC(),
		sum.EndedAt.UTC(),
		sum.DurationSeconds,
	)
	if err != nil {
		return fmt.Errorf("insert session summary: %w", err)
	}
	return nil
}

const summaryColumns = `id, session_id, status, termination_reason, turns_completed, decision_gravity_score,
	question_depth_scores, consequence_depth_scores, question_rejection_count, abandonment_turn,
	started_at, ended_at, duration_seconds`

// Get returns the summary for a session id.
func (s *Store) Get(ctx context.Context, sessionID string) (*SessionSummary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+summaryColumns+` FROM session_summaries WHERE session_id = ?`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query session summary: %w", err)
	}
	defer rows.Close()

	out, err := scanSummaries(rows)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return out[0], nil
}

// List returns summaries, most recently ended first. limit <= 0 means all.
func (s *Store) List(ctx context.Context, limit int) ([]*SessionSummary, error) {
	query := `SELECT ` + summaryColumns + ` FROM session_summaries ORDER BY ended_at DESC, id DESC`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query session summaries: %w", err)
	}
	defer rows.Close()
	return scanSummaries(rows)
}

// Stats aggregates every stored summary.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	all, err := s.List(ctx, 0)
	if err != nil {
		return nil, err
	}
	return ComputeStats(all), nil
}

// DeleteBefore removes summaries that ended before cutoff.
func (s *Store) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM session_summaries WHERE ended_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("delete old summaries: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}
	return deleted, nil
}

func scanSummaries(rows *sql.Rows) ([]*SessionSummary, error) {
	var out []*SessionSummary
	for rows.Next() {
		sum := &SessionSummary{}
		var status, reason, depth, consequence sql.NullString
		var gravity sql.NullFloat64
		var abandonment, duration sql.NullInt64
		var startedAt, endedAt sql.NullTime

		if err := rows.Scan(
			&sum.ID,
			&sum.SessionID,
			&status,
			&reason,
			&sum.TurnsCompleted,
			&gravity,
			&depth,
			&consequence,
			&sum.QuestionRejectionCount,
			&abandonment,
			&startedAt,
			&endedAt,
			&duration,
		); err != nil {
			return nil, fmt.Errorf("scan session summary: %w", err)
		}

		sum.Status = models.SessionStatus(status.String)
		sum.TerminationReason = models.TerminationReason(reason.String)
		if gravity.Valid {
			v := gravity.Float64
			sum.DecisionGravityScore = &v
		}
		if abandonment.Valid {
			v := int(abandonment.Int64)
			sum.AbandonmentTurn = &v
		}
		if startedAt.Valid {
			sum.StartedAt = startedAt.Time.UTC()
		}
		if endedAt.Valid {
			sum.EndedAt = endedAt.Time.UTC()
		}
		if duration.Valid {
			sum.DurationSeconds = duration.Int64
		}
		if err := unmarshalScores(depth, &sum.QuestionDepthScores); err != nil {
			return nil, fmt.Errorf("unmarshal question depth scores: %w", err)
		}
		if err := unmarshalScores(consequence, &sum.ConsequenceDepthScores); err != nil {
			return nil, fmt.Errorf("unmarshal consequence depth scores: %w", err)
		}

		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session summaries: %w", err)
	}
	return out, nil
}

func unmarshalScores(raw sql.NullString, dst *[]float64) error {
	*dst = []float64{}
	if !raw.Valid || raw.String == "" {
		return nil
	}
	return json.Unmarshal([]byte(raw.String), dst)
}

func nonNil(v []float64) []float64 {
	if v == nil {
		return []float64{}
	}
	return v
}
