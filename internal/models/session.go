// Package models defines the data structures shared by the reflection engine:
// sessions and their turns, coherence anchors, silent metrics, gate scores and
// the turn-processing request/response contract.
package models

import (
	"time"
)

// MaxTurns is the fixed turn budget of every session: one decision turn
// followed by up to eight question turns.
const MaxTurns = 9

// SessionStatus is the lifecycle state of a session.
type SessionStatus string

const (
	StatusActive     SessionStatus = "active"
	StatusCompleted  SessionStatus = "completed"
	StatusTerminated SessionStatus = "terminated"
	StatusError      SessionStatus = "error"
)

// IsTerminal reports whether no further mutation of turn state is allowed.
// Every status other than active is terminal.
func (s SessionStatus) IsTerminal() bool {
	return s != StatusActive
}

// TerminationReason records why a session left the active state early.
type TerminationReason string

const (
	TerminationNone            TerminationReason = ""
	TerminationError           TerminationReason = "error"
	TerminationShallowResponse TerminationReason = "shallow_response"
	TerminationAbandoned       TerminationReason = "abandoned"
)

// TurnType distinguishes the decision turn from follow-up question turns.
type TurnType string

const (
	TurnInitialSnapshot TurnType = "initial_snapshot"
	TurnUserQuestion    TurnType = "user_question"
)

// TurnData is one recorded exchange. Turns are append-only.
type TurnData struct {
	TurnNumber            int       `json:"turn_number"`
	Timestamp             time.Time `json:"timestamp"`
	Type                  TurnType  `json:"type"`
	Question              string    `json:"question,omitempty"`
	Response              string    `json:"response"`
	QuestionDepthScore    *float64  `json:"question_depth_score,omitempty"`
	ConsequenceDepthScore float64   `json:"consequence_depth_score"`
}

// CoherenceAnchors is the categorical summary derived from turn 1. It holds
// tags only, never user text.
type CoherenceAnchors struct {
	LifeTensions    []string `json:"life_tensions"`
	IdentityMarkers []string `json:"identity_markers"`
	TemporalFrame   string   `json:"temporal_frame"`
	DecisionEssence string   `json:"decision_essence"`
}

// Clone returns a deep copy so callers cannot mutate stored anchors.
func (a *CoherenceAnchors) Clone() *CoherenceAnchors {
	if a == nil {
		return nil
	}
	return &CoherenceAnchors{
		LifeTensions:    append([]string(nil), a.LifeTensions...),
		IdentityMarkers: append([]string(nil), a.IdentityMarkers...),
		TemporalFrame:   a.TemporalFrame,
		DecisionEssence: a.DecisionEssence,
	}
}

// SilentMetrics accumulates internal-only gate results for a session.
type SilentMetrics struct {
	DecisionGravityScore   *float64  `json:"decision_gravity_score,omitempty"`
	QuestionDepthScores    []float64 `json:"question_depth_scores"`
	ConsequenceDepthScores []float64 `json:"consequence_depth_scores"`
	QuestionRejectionCount int       `json:"question_rejection_count"`
	AbandonmentTurn        *int      `json:"abandonment_turn,omitempty"`
}

// Session is a single bounded reflection dialogue.
type Session struct {
	ID                string            `json:"id"`
	Status            SessionStatus     `json:"status"`
	CurrentTurn       int               `json:"current_turn"`
	MaxTurns          int               `json:"max_turns"`
	Turns             []TurnData        `json:"turns"`
	Anchors           *CoherenceAnchors `json:"anchors,omitempty"`
	Metrics           SilentMetrics     `json:"metrics"`
	TerminationReason TerminationReason `json:"termination_reason,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// CanContinue is true iff the session is active and has turns left.
// Once false it stays false: no transition leads back to active.
func (s *Session) CanContinue() bool {
	return s.Status == StatusActive && s.CurrentTurn < s.MaxTurns
}

// RemainingTurns returns how many turns the session may still record.
func (s *Session) RemainingTurns() int {
	remaining := s.MaxTurns - s.CurrentTurn
	if remaining < 0 {
		return 0
	}
	return remaining
}

// LastTurn returns the most recently recorded turn, if any.
func (s *Session) LastTurn() (TurnData, bool) {
	if len(s.Turns) == 0 {
		return TurnData{}, false
	}
	return s.Turns[len(s.Turns)-1], true
}

// Clone returns a deep copy of the session.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.Turns = make([]TurnData, len(s.Turns))
	for i, t := range s.Turns {
		c.Turns[i] = t
		if t.QuestionDepthScore != nil {
			v := *t.QuestionDepthScore
			c.Turns[i].QuestionDepthScore = &v
		}
	}
	c.Anchors = s.Anchors.Clone()
	c.Metrics.QuestionDepthScores = append([]float64(nil), s.Metrics.QuestionDepthScores...)
	c.Metrics.ConsequenceDepthScores = append([]float64(nil), s.Metrics.ConsequenceDepthScores...)
	if s.Metrics.DecisionGravityScore != nil {
		v := *s.Metrics.DecisionGravityScore
		c.Metrics.DecisionGravityScore = &v
	}
	if s.Metrics.AbandonmentTurn != nil {
		v := *s.Metrics.AbandonmentTurn
		c.Metrics.AbandonmentTurn = &v
	}
	return &c
}
