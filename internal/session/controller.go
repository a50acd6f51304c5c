// Package session owns the lifecycle of reflection sessions: creation, turn
// advancement, coherence anchors, silent metrics and termination. It is the
// only package that mutates session state.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/harrison/foresight/internal/models"
)

// Logger is the subset of the application logger used by the controller.
type Logger interface {
	LogDebug(message string)
	LogInfo(message string)
}

// ExitHook is called with a snapshot whenever a session leaves the active
// state. It runs outside the controller lock.
type ExitHook func(s *models.Session)

// Controller is the session state machine. Every operation is a
// read-modify-write against the Store under a single mutex, and callers only
// ever see copies.
type Controller struct {
	mu     sync.Mutex
	store  Store
	now    func() time.Time
	logger Logger
	onExit ExitHook
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithLogger sets the controller logger.
func WithLogger(l Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithExitHook registers a hook for sessions leaving the active state.
func WithExitHook(h ExitHook) Option {
	return func(c *Controller) { c.onExit = h }
}

// NewController creates a controller over store.
func NewController(store Store, opts ...Option) *Controller {
	c := &Controller{
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateSession starts an active session at turn 0. Ids are single-shot: an
// id that already exists is rejected.
func (c *Controller) CreateSession(id string) (*models.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.store.Get(id); ok {
		return nil, transitionErr(id, "create", ErrSessionExists)
	}

	now := c.now()
	s := &models.Session{
		ID:          id,
		Status:      models.StatusActive,
		CurrentTurn: 0,
		MaxTurns:    models.MaxTurns,
		Turns:       []models.TurnData{},
		Metrics: models.SilentMetrics{
			QuestionDepthScores:    []float64{},
			ConsequenceDepthScores: []float64{},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	c.store.Put(s)
	c.debugf("session %s created", id)
	return s.Clone(), nil
}

// Get returns a snapshot of the session.
func (c *Controller) Get(id string) (*models.Session, error) {
	s, ok := c.store.Get(id)
	if !ok {
		return nil, transitionErr(id, "get", ErrSessionNotFound)
	}
	return s, nil
}

// CanContinue reports whether the session is active with turns left.
func (c *Controller) CanContinue(id string) (bool, error) {
	s, err := c.Get(id)
	if err != nil {
		return false, err
	}
	return s.CanContinue(), nil
}

// Status answers a status query. Unknown ids yield Exists=false.
func (c *Controller) Status(id string) models.StatusReport {
	s, ok := c.store.Get(id)
	if !ok {
		return models.StatusReport{Exists: false}
	}
	turn := s.CurrentTurn
	canContinue := s.CanContinue()
	return models.StatusReport{
		Exists:      true,
		Status:      s.Status,
		CurrentTurn: &turn,
		CanContinue: &canContinue,
	}
}

// mutate applies fn to a copy of the session and stores the result. The exit
// hook fires if fn moved the session out of the active state.
func (c *Controller) mutate(id, op string, fn func(s *models.Session) error) (*models.Session, error) {
	c.mu.Lock()
	s, ok := c.store.Get(id)
	if !ok {
		c.mu.Unlock()
		return nil, transitionErr(id, op, ErrSessionNotFound)
	}
	wasActive := s.Status == models.StatusActive
	if err := fn(s); err != nil {
		c.mu.Unlock()
		return nil, err
	}
	s.UpdatedAt = c.now()
	c.store.Put(s)
	c.mu.Unlock()

	if wasActive && s.Status.IsTerminal() && c.onExit != nil {
		c.onExit(s.Clone())
	}
	return s, nil
}

// AdvanceTurn increments the turn counter. It fails unless the session can
// continue, and completes the session when the counter reaches MaxTurns.
func (c *Controller) AdvanceTurn(id string) (int, error) {
	s, err := c.mutate(id, "advance", func(s *models.Session) error {
		if !s.CanContinue() {
			return transitionErr(id, "advance", ErrCannotContinue)
		}
		s.CurrentTurn++
		if s.CurrentTurn >= s.MaxTurns {
			s.Status = models.StatusCompleted
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	c.debugf("session %s advanced to turn %d", id, s.CurrentTurn)
	return s.CurrentTurn, nil
}

// SetCoherenceAnchors stores the anchors. Allowed exactly once, and only when
// the current turn is 1.
func (c *Controller) SetCoherenceAnchors(id string, anchors models.CoherenceAnchors) error {
	_, err := c.mutate(id, "set_anchors", func(s *models.Session) error {
		if s.Anchors != nil {
			return transitionErr(id, "set_anchors", ErrAnchorsAlreadySet)
		}
		if s.CurrentTurn != 1 {
			return transitionErr(id, "set_anchors", ErrAnchorsWrongTurn)
		}
		s.Anchors = anchors.Clone()
		return nil
	})
	return err
}

// Anchors returns a copy of the session's anchors, or nil if unset.
func (c *Controller) Anchors(id string) (*models.CoherenceAnchors, error) {
	s, err := c.Get(id)
	if err != nil {
		return nil, err
	}
	return s.Anchors, nil
}

// RecordTurn appends a turn. Its number must equal the current turn and be one
// past the last recorded turn.
func (c *Controller) RecordTurn(id string, turn models.TurnData) error {
	_, err := c.mutate(id, "record_turn", func(s *models.Session) error {
		expected := 1
		if last, ok := s.LastTurn(); ok {
			expected = last.TurnNumber + 1
		}
		if turn.TurnNumber != s.CurrentTurn || turn.TurnNumber != expected {
			return transitionErr(id, "record_turn",
				fmt.Errorf("%w: got %d, current %d", ErrTurnOutOfOrder, turn.TurnNumber, s.CurrentTurn))
		}
		if turn.Timestamp.IsZero() {
			turn.Timestamp = c.now()
		}
		s.Turns = append(s.Turns, turn)
		return nil
	})
	return err
}

// RecordDecisionGravity stores the gravity score. Metric mutators are allowed
// in any status.
func (c *Controller) RecordDecisionGravity(id string, score float64) error {
	_, err := c.mutate(id, "record_gravity", func(s *models.Session) error {
		s.Metrics.DecisionGravityScore = &score
		return nil
	})
	return err
}

// RecordQuestionDepth appends a question depth score.
func (c *Controller) RecordQuestionDepth(id string, score float64) error {
	_, err := c.mutate(id, "record_question_depth", func(s *models.Session) error {
		s.Metrics.QuestionDepthScores = append(s.Metrics.QuestionDepthScores, score)
		return nil
	})
	return err
}

// RecordConsequenceDepth appends a consequence depth score.
func (c *Controller) RecordConsequenceDepth(id string, score float64) error {
	_, err := c.mutate(id, "record_consequence_depth", func(s *models.Session) error {
		s.Metrics.ConsequenceDepthScores = append(s.Metrics.ConsequenceDepthScores, score)
		return nil
	})
	return err
}

// RecordQuestionRejection increments the rejection counter.
func (c *Controller) RecordQuestionRejection(id string) error {
	_, err := c.mutate(id, "record_question_rejection", func(s *models.Session) error {
		s.Metrics.QuestionRejectionCount++
		return nil
	})
	return err
}

// TerminateSession moves an active session to terminated and stamps the
// current turn as the abandonment point. Terminal sessions are left as they
// are, so no transition ever leaves completed, terminated or error.
func (c *Controller) TerminateSession(id string, reason models.TerminationReason) error {
	s, err := c.mutate(id, "terminate", func(s *models.Session) error {
		if s.Status.IsTerminal() {
			return nil
		}
		turn := s.CurrentTurn
		s.Status = models.StatusTerminated
		s.TerminationReason = reason
		s.Metrics.AbandonmentTurn = &turn
		return nil
	})
	if err != nil {
		return err
	}
	c.infof("session %s %s at turn %d (%s)", id, s.Status, s.CurrentTurn, s.TerminationReason)
	return nil
}

// MarkError moves an active session to the error state.
func (c *Controller) MarkError(id string) error {
	_, err := c.mutate(id, "mark_error", func(s *models.Session) error {
		if s.Status.IsTerminal() {
			return nil
		}
		turn := s.CurrentTurn
		s.Status = models.StatusError
		s.TerminationReason = models.TerminationError
		s.Metrics.AbandonmentTurn = &turn
		return nil
	})
	return err
}

// errNotIdle aborts an idle transition on a session touched since the cutoff.
var errNotIdle = errors.New("session not idle")

// AbandonIfIdle terminates an active session as abandoned when it has not
// been updated since cutoff. The check and the transition happen under the
// controller lock, so a turn recorded after the caller listed sessions keeps
// the session alive.
func (c *Controller) AbandonIfIdle(id string, cutoff time.Time) (bool, error) {
	s, err := c.mutate(id, "abandon", func(s *models.Session) error {
		if s.Status != models.StatusActive || !s.UpdatedAt.Before(cutoff) {
			return errNotIdle
		}
		turn := s.CurrentTurn
		s.Status = models.StatusTerminated
		s.TerminationReason = models.TerminationAbandoned
		s.Metrics.AbandonmentTurn = &turn
		return nil
	})
	if errors.Is(err, errNotIdle) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	c.infof("session %s abandoned at turn %d", id, s.CurrentTurn)
	return true, nil
}

// EvictIfIdle removes a non-active session that has not been updated since
// cutoff. Active sessions are never evicted.
func (c *Controller) EvictIfIdle(id string, cutoff time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.store.Get(id)
	if !ok || s.Status == models.StatusActive || !s.UpdatedAt.Before(cutoff) {
		return false
	}
	c.store.Delete(id)
	return true
}

// Delete evicts a session from the store.
func (c *Controller) Delete(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store.Delete(id)
}

// List returns snapshots of all sessions.
func (c *Controller) List() []*models.Session {
	return c.store.List()
}

func (c *Controller) debugf(format string, args ...interface{}) {
	if c.logger != nil {
		c.logger.LogDebug(fmt.Sprintf(format, args...))
	}
}

func (c *Controller) infof(format string, args ...interface{}) {
	if c.logger != nil {
		c.logger.LogInfo(fmt.Sprintf(format, args...))
	}
}
