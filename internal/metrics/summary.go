// Package metrics persists the silent metrics of finished reflection sessions
// for internal reporting. A summary holds scores, counts and lifecycle facts
// only; no decision, question or reflection text is ever stored.
package metrics

import (
	"time"

	"github.com/harrison/foresight/internal/models"
)

// SessionSummary is the reporting record of one session that left the active
// state.
type SessionSummary struct {
	ID                     int64                    `json:"-" yaml:"-"`
	SessionID              string                   `json:"session_id" yaml:"session_id"`
	Status                 models.SessionStatus     `json:"status" yaml:"status"`
	TerminationReason      models.TerminationReason `json:"termination_reason,omitempty" yaml:"termination_reason,omitempty"`
	TurnsCompleted         int                      `json:"turns_completed" yaml:"turns_completed"`
	DecisionGravityScore   *float64                 `json:"decision_gravity_score,omitempty" yaml:"decision_gravity_score,omitempty"`
	QuestionDepthScores    []float64                `json:"question_depth_scores" yaml:"question_depth_scores"`
	ConsequenceDepthScores []float64                `json:"consequence_depth_scores" yaml:"consequence_depth_scores"`
	QuestionRejectionCount int                      `json:"question_rejection_count" yaml:"question_rejection_count"`
	AbandonmentTurn        *int                     `json:"abandonment_turn,omitempty" yaml:"abandonment_turn,omitempty"`
	StartedAt              time.Time                `json:"started_at" yaml:"started_at"`
	EndedAt                time.Time                `json:"ended_at" yaml:"ended_at"`
	DurationSeconds        int64                    `json:"duration_seconds" yaml:"duration_seconds"`
}

// NewSummary builds a summary from a session snapshot.
func NewSummary(s *models.Session, endedAt time.Time) *SessionSummary {
	sum := &SessionSummary{
		SessionID:              s.ID,
		Status:                 s.Status,
		TerminationReason:      s.TerminationReason,
		TurnsCompleted:         s.CurrentTurn,
		QuestionDepthScores:    append([]float64{}, s.Metrics.QuestionDepthScores...),
		ConsequenceDepthScores: append([]float64{}, s.Metrics.ConsequenceDepthScores...),
		QuestionRejectionCount: s.Metrics.QuestionRejectionCount,
		StartedAt:              s.CreatedAt.UTC(),
		EndedAt:                endedAt.UTC(),
	}
	if s.Metrics.DecisionGravityScore != nil {
		v := *s.Metrics.DecisionGravityScore
		sum.DecisionGravityScore = &v
	}
	if s.Metrics.AbandonmentTurn != nil {
		v := *s.Metrics.AbandonmentTurn
		sum.AbandonmentTurn = &v
	}
	if d := sum.EndedAt.Sub(sum.StartedAt); d > 0 {
		sum.DurationSeconds = int64(d / time.Second)
	}
	return sum
}

// Stats aggregates stored summaries.
type Stats struct {
	TotalSessions        int            `json:"total_sessions" yaml:"total_sessions"`
	ByStatus             map[string]int `json:"by_status" yaml:"by_status"`
	ByTerminationReason  map[string]int `json:"by_termination_reason" yaml:"by_termination_reason"`
	AvgTurns             float64        `json:"avg_turns" yaml:"avg_turns"`
	AvgDurationSeconds   float64        `json:"avg_duration_seconds" yaml:"avg_duration_seconds"`
	MeanGravity          float64        `json:"mean_gravity" yaml:"mean_gravity"`
	MeanQuestionDepth    float64        `json:"mean_question_depth" yaml:"mean_question_depth"`
	MeanConsequenceDepth float64        `json:"mean_consequence_depth" yaml:"mean_consequence_depth"`
	TotalRejections      int            `json:"total_rejections" yaml:"total_rejections"`
	CompletionRate       float64        `json:"completion_rate" yaml:"completion_rate"`
}

// ComputeStats aggregates summaries. Means are taken over every recorded
// score, not per session.
func ComputeStats(summaries []*SessionSummary) *Stats {
	stats := &Stats{
		ByStatus:            map[string]int{},
		ByTerminationReason: map[string]int{},
	}
	if len(summaries) == 0 {
		return stats
	}

	var turns, duration int64
	var gravity, depth, consequence mean
	for _, s := range summaries {
		stats.TotalSessions++
		stats.ByStatus[string(s.Status)]++
		if s.TerminationReason != models.TerminationNone {
			stats.ByTerminationReason[string(s.TerminationReason)]++
		}
		turns += int64(s.TurnsCompleted)
		duration += s.DurationSeconds
		stats.TotalRejections += s.QuestionRejectionCount
		if s.DecisionGravityScore != nil {
			gravity.add(*s.DecisionGravityScore)
		}
		depth.add(s.QuestionDepthScores...)
		consequence.add(s.ConsequenceDepthScores...)
	}

	n := float64(stats.TotalSessions)
	stats.AvgTurns = float64(turns) / n
	stats.AvgDurationSeconds = float64(duration) / n
	stats.MeanGravity = gravity.value()
	stats.MeanQuestionDepth = depth.value()
	stats.MeanConsequenceDepth = consequence.value()
	stats.CompletionRate = float64(stats.ByStatus[string(models.StatusCompleted)]) / n
	return stats
}

type mean struct {
	sum   float64
	count int
}

func (m *mean) add(values ...float64) {
	for _, v := range values {
		m.sum += v
		m.count++
	}
}

func (m *mean) value() float64 {
	if m.count == 0 {
		return 0
	}
	return m.sum / float64(m.count)
}
