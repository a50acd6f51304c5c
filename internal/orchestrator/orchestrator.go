// Package orchestrator sequences a reflection turn: validation, gates,
// generation and session mutation. It is the outermost boundary of the
// engine; every error and panic below it becomes a system_error refusal.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/harrison/foresight/internal/anchor"
	"github.com/harrison/foresight/internal/gate"
	"github.com/harrison/foresight/internal/generation"
	"github.com/harrison/foresight/internal/models"
	"github.com/harrison/foresight/internal/session"
	"github.com/harrison/foresight/internal/validation"
)

// Logger is the subset of the application logger used here.
type Logger interface {
	LogDebug(message string)
	LogInfo(message string)
	LogWarn(message string)
	LogError(message string)
}

// Generator produces reflections. *generation.Engine satisfies it.
type Generator interface {
	Initial(ctx context.Context, decision, decisionContext string) generation.Result
	FollowUp(ctx context.Context, anchors *models.CoherenceAnchors, question string, turn int) generation.Result
}

// Orchestrator runs decision and question turns against a session controller.
type Orchestrator struct {
	controller *session.Controller
	locks      *session.Locks
	generator  Generator
	gates      gate.Set
	pick       gate.Picker
	logger     Logger
	now        func() time.Time
	newID      func() string
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithGates replaces the heuristic gate set.
func WithGates(g gate.Set) Option {
	return func(o *Orchestrator) { o.gates = g }
}

// WithPicker sets how example reframes are chosen.
func WithPicker(p gate.Picker) Option {
	return func(o *Orchestrator) { o.pick = p }
}

// WithLogger sets the orchestrator logger.
func WithLogger(l Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// WithClock overrides time.Now for response timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// WithIDGenerator overrides session id generation.
func WithIDGenerator(fn func() string) Option {
	return func(o *Orchestrator) { o.newID = fn }
}

// New creates an orchestrator. locks may be shared with a session sweeper.
func New(controller *session.Controller, locks *session.Locks, generator Generator, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		controller: controller,
		locks:      locks,
		generator:  generator,
		gates:      gate.DefaultSet(),
		pick:       gate.RandomExample,
		now:        time.Now,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.locks == nil {
		o.locks = session.NewLocks()
	}
	return o
}

// ProcessTurn dispatches a turn request by type. It never returns an error:
// every outcome is a response or a refusal.
func (o *Orchestrator) ProcessTurn(ctx context.Context, req models.TurnRequest) models.TurnResult {
	switch req.Type {
	case models.RequestDecision:
		if req.Decision == nil {
			return refuse(models.RefusalValidationFailed, "A decision request needs a decision.", "", nil)
		}
		return o.ProcessDecision(ctx, *req.Decision)
	case models.RequestQuestion:
		if req.Question == nil {
			return refuse(models.RefusalValidationFailed, "A question request needs a question.", "", nil)
		}
		return o.ProcessQuestion(ctx, req.SessionID, *req.Question)
	default:
		return refuse(models.RefusalValidationFailed, fmt.Sprintf("Unknown request type %q.", req.Type), "", nil)
	}
}

// Status answers a session status query.
func (o *Orchestrator) Status(id string) models.StatusReport {
	return o.controller.Status(id)
}

// ProcessDecision runs turn 1. Every call creates a new session; a rejected
// decision terminates that session and a retry starts another.
func (o *Orchestrator) ProcessDecision(ctx context.Context, in models.DecisionInput) (result models.TurnResult) {
	id := o.newID()
	defer o.recoverTurn(id, &result)

	if _, err := o.controller.CreateSession(id); err != nil {
		return o.systemError(id, err)
	}

	release, err := o.locks.Lock(ctx, id)
	if err != nil {
		return o.systemError(id, err)
	}
	defer release()

	decision, err := validation.ValidateDecision(in.DecisionText, id)
	if err != nil {
		if terr := o.controller.TerminateSession(id, models.TerminationError); terr != nil {
			return o.systemError(id, terr)
		}
		var rej *validation.Rejection
		if !errors.As(err, &rej) {
			return o.systemError(id, err)
		}
		o.debugf("session %s decision rejected: %s", id, rej.Reason)
		return decisionRefusal(id, rej)
	}

	gravity, err := o.gates.Gravity.Score(ctx, decision.Text)
	if err != nil {
		return o.systemError(id, err)
	}
	if err := o.controller.RecordDecisionGravity(id, gravity.Combined); err != nil {
		return o.systemError(id, err)
	}
	o.debugf("session %s gravity %s", id, gravity)
	if !gravity.Pass {
		if err := o.controller.TerminateSession(id, models.TerminationShallowResponse); err != nil {
			return o.systemError(id, err)
		}
		gr := gate.NewGravityRefusal(gravity)
		return refuse(models.RefusalTrivialDecision, gr.Message, gr.Guidance, map[string]interface{}{
			"session_id":        id,
			"gravity_score":     gravity.Combined,
			"weakest_dimension": gr.WeakestDimension,
		})
	}

	gen := o.generator.Initial(ctx, decision.Text, validation.SanitizeDecision(in.Context))
	consequence, refusal, err := o.checkConsequence(ctx, id, gen)
	if err != nil {
		return o.systemError(id, err)
	}
	if refusal != nil {
		return *refusal
	}

	turn, err := o.controller.AdvanceTurn(id)
	if err != nil {
		return o.systemError(id, err)
	}
	if err := o.controller.SetCoherenceAnchors(id, anchor.Extract(decision.Text, gen.Reflection)); err != nil {
		return o.systemError(id, err)
	}
	if err := o.controller.RecordTurn(id, models.TurnData{
		TurnNumber:            turn,
		Timestamp:             o.now(),
		Type:                  models.TurnInitialSnapshot,
		Response:              gen.Reflection,
		ConsequenceDepthScore: consequence.Combined,
	}); err != nil {
		return o.systemError(id, err)
	}

	o.infof("session %s turn %d recorded (%s)", id, turn, gen.Source)
	g := gravity.Combined
	return models.Succeeded(formatResponse(id, turn, gen.Reflection, &g, consequence.Combined, o.now()))
}

// ProcessQuestion runs a question turn (2 to 9) for an existing session. The
// session lock is held for the whole turn.
func (o *Orchestrator) ProcessQuestion(ctx context.Context, id string, in models.QuestionInput) (result models.TurnResult) {
	if id == "" {
		return refuse(models.RefusalValidationFailed, "A question needs the session id of its reflection.", "", nil)
	}
	defer o.recoverTurn(id, &result)

	release, err := o.locks.Lock(ctx, id)
	if err != nil {
		return o.systemError("", err)
	}
	defer release()

	s, err := o.controller.Get(id)
	if errors.Is(err, session.ErrSessionNotFound) {
		return refuse(models.RefusalSessionTerminated, msgSessionNotFound, msgStartNew, nil)
	}
	if err != nil {
		return o.systemError(id, err)
	}
	if !s.CanContinue() {
		if s.Status == models.StatusCompleted {
			return refuse(models.RefusalMaxTurnsReached, msgMaxTurns, msgStartNew, map[string]interface{}{"session_id": id})
		}
		return refuse(models.RefusalSessionTerminated, msgSessionEnded, msgStartNew, map[string]interface{}{"session_id": id})
	}

	next := s.CurrentTurn + 1
	question, err := validation.ValidateQuestion(in.QuestionText, next)
	if err != nil {
		var rej *validation.Rejection
		if !errors.As(err, &rej) {
			return o.systemError(id, err)
		}
		if err := o.controller.RecordQuestionRejection(id); err != nil {
			return o.systemError(id, err)
		}
		o.debugf("session %s question rejected: %s", id, rej.Reason)
		return o.questionValidationRefusal(id, s.RemainingTurns(), rej)
	}

	depth, err := o.gates.Question.Score(ctx, question)
	if err != nil {
		return o.systemError(id, err)
	}
	if err := o.controller.RecordQuestionDepth(id, depth.Combined); err != nil {
		return o.systemError(id, err)
	}
	o.debugf("session %s question depth %s", id, depth)
	if !depth.Pass {
		if err := o.controller.RecordQuestionRejection(id); err != nil {
			return o.systemError(id, err)
		}
		qr := gate.ClassifyQuestionRejection(question, depth, o.pick)
		r := &models.Refusal{
			Reason:         qr.Reason,
			Message:        questionMessages[qr.Reason],
			Guidance:       qr.Guidance,
			ExampleReframe: qr.ExampleReframe,
			Metadata: map[string]interface{}{
				"session_id":           id,
				"question_depth_score": depth.Combined,
				"remaining_turns":      s.RemainingTurns(),
			},
		}
		return models.Refused(r)
	}

	anchors, err := o.controller.Anchors(id)
	if err != nil {
		return o.systemError(id, err)
	}
	if anchors == nil {
		return o.systemError(id, fmt.Errorf("session %s has no coherence anchors", id))
	}

	gen := o.generator.FollowUp(ctx, anchors, question, next)
	consequence, refusal, err := o.checkConsequence(ctx, id, gen)
	if err != nil {
		return o.systemError(id, err)
	}
	if refusal != nil {
		return *refusal
	}

	turn, err := o.controller.AdvanceTurn(id)
	if err != nil {
		return o.systemError(id, err)
	}
	d := depth.Combined
	if err := o.controller.RecordTurn(id, models.TurnData{
		TurnNumber:            turn,
		Timestamp:             o.now(),
		Type:                  models.TurnUserQuestion,
		Question:              question,
		Response:              gen.Reflection,
		QuestionDepthScore:    &d,
		ConsequenceDepthScore: consequence.Combined,
	}); err != nil {
		return o.systemError(id, err)
	}

	o.infof("session %s turn %d recorded (%s)", id, turn, gen.Source)
	return models.Succeeded(formatResponse(id, turn, gen.Reflection, nil, consequence.Combined, o.now()))
}

// checkConsequence scores a generated reflection and records the score. A
// failing score terminates the session and yields the refusal to return.
func (o *Orchestrator) checkConsequence(ctx context.Context, id string, gen generation.Result) (models.Score, *models.TurnResult, error) {
	score, err := o.gates.Consequence.Score(ctx, gen.Reflection)
	if err != nil {
		return models.Score{}, nil, err
	}
	if err := o.controller.RecordConsequenceDepth(id, score.Combined); err != nil {
		return models.Score{}, nil, err
	}
	o.debugf("session %s consequence depth %s (%s)", id, score, gen.Source)
	if score.Pass {
		return score, nil, nil
	}

	if err := o.controller.TerminateSession(id, models.TerminationShallowResponse); err != nil {
		return models.Score{}, nil, err
	}
	o.infof("session %s terminated: reflection below consequence threshold", id)
	res := refuse(models.RefusalShallowResponse, gate.TerminationMessage(score), "", map[string]interface{}{
		"session_id":              id,
		"consequence_depth_score": score.Combined,
	})
	return score, &res, nil
}

func (o *Orchestrator) questionValidationRefusal(id string, remaining int, rej *validation.Rejection) models.TurnResult {
	reason, ok := questionReasons[rej.Reason]
	if !ok {
		reason = models.RefusalValidationFailed
	}
	message, ok := questionMessages[reason]
	if !ok {
		message = msgInvalidQuestion
	}
	return models.Refused(&models.Refusal{
		Reason:         reason,
		Message:        message,
		Guidance:       rej.Guidance,
		ExampleReframe: gate.ExampleReframe(reason, o.pick),
		Metadata: map[string]interface{}{
			"session_id":      id,
			"remaining_turns": remaining,
		},
	})
}

// systemError moves the session to the error state and returns the generic
// refusal. The error itself is logged, never shown.
func (o *Orchestrator) systemError(id string, err error) models.TurnResult {
	if o.logger != nil {
		o.logger.LogError(fmt.Sprintf("turn failed for session %s: %v", id, err))
	}
	if id != "" {
		if merr := o.controller.MarkError(id); merr != nil && !errors.Is(merr, session.ErrSessionNotFound) && o.logger != nil {
			o.logger.LogWarn(fmt.Sprintf("could not mark session %s as errored: %v", id, merr))
		}
	}
	return refuse(models.RefusalSystemError, msgSystemError, "", nil)
}

func (o *Orchestrator) recoverTurn(id string, result *models.TurnResult) {
	if r := recover(); r != nil {
		*result = o.systemError(id, fmt.Errorf("panic: %v", r))
	}
}

func (o *Orchestrator) debugf(format string, args ...interface{}) {
	if o.logger != nil {
		o.logger.LogDebug(fmt.Sprintf(format, args...))
	}
}

func (o *Orchestrator) infof(format string, args ...interface{}) {
	if o.logger != nil {
		o.logger.LogInfo(fmt.Sprintf(format, args...))
	}
}
