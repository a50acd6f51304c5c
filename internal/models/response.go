package models

import "time"

// RequestType selects which turn flow processes a request.
type RequestType string

const (
	RequestDecision RequestType = "decision"
	RequestQuestion RequestType = "question"
)

// DecisionInput is the payload of a turn-1 request.
type DecisionInput struct {
	DecisionText string `json:"decision_text"`
	Context      string `json:"context,omitempty"`
}

// QuestionInput is the payload of a turn 2-9 request. TurnNumber is advisory;
// the engine always validates against the session's next turn.
type QuestionInput struct {
	QuestionText string `json:"question_text"`
	TurnNumber   *int   `json:"turn_number,omitempty"`
}

// TurnRequest is the inbound turn-processing request.
type TurnRequest struct {
	Type      RequestType    `json:"type"`
	SessionID string         `json:"session_id,omitempty"`
	Decision  *DecisionInput `json:"decision,omitempty"`
	Question  *QuestionInput `json:"question,omitempty"`
}

// ResponseMetadata travels with every successful reflection.
type ResponseMetadata struct {
	SessionID             string    `json:"session_id"`
	DecisionGravityScore  *float64  `json:"decision_gravity_score,omitempty"`
	ConsequenceDepthScore float64   `json:"consequence_depth_score"`
	Timestamp             time.Time `json:"timestamp"`
	SessionComplete       bool      `json:"session_complete,omitempty"`
}

// ReflectionResponse is the user-facing result of a successful turn.
type ReflectionResponse struct {
	Reflection     string           `json:"reflection"`
	TurnNumber     int              `json:"turn_number"`
	IsFinal        bool             `json:"is_final"`
	RemainingTurns int              `json:"remaining_turns"`
	Metadata       ResponseMetadata `json:"metadata"`
	Disclaimers    []string         `json:"disclaimers"`
	Guidance       string           `json:"guidance,omitempty"`
	ClosureMessage string           `json:"closure_message,omitempty"`
}

// RefusalReason enumerates every way a turn can be refused.
type RefusalReason string

const (
	RefusalTrivialDecision       RefusalReason = "trivial_decision"
	RefusalForbiddenContent      RefusalReason = "forbidden_content"
	RefusalAdviceSeekingQuestion RefusalReason = "advice_seeking_question"
	RefusalPredictiveQuestion    RefusalReason = "predictive_question"
	RefusalLeadingQuestion       RefusalReason = "leading_question"
	RefusalGenericQuestion       RefusalReason = "generic_question"
	RefusalShallowQuestion       RefusalReason = "shallow_question"
	RefusalShallowResponse       RefusalReason = "shallow_response"
	RefusalSessionTerminated     RefusalReason = "session_terminated"
	RefusalMaxTurnsReached       RefusalReason = "max_turns_reached"
	RefusalValidationFailed      RefusalReason = "validation_failed"
	RefusalSystemError           RefusalReason = "system_error"
)

// Refusal is the structured negative outcome of a turn.
type Refusal struct {
	Refused        bool                   `json:"refused"`
	Reason         RefusalReason          `json:"reason"`
	Message        string                 `json:"message"`
	Guidance       string                 `json:"guidance,omitempty"`
	ExampleReframe string                 `json:"example_reframe,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// TurnResult is exactly one of a response or a refusal.
type TurnResult struct {
	Success  bool                `json:"success"`
	Response *ReflectionResponse `json:"response,omitempty"`
	Refusal  *Refusal            `json:"refusal,omitempty"`
}

// Succeeded wraps a reflection response.
func Succeeded(resp *ReflectionResponse) TurnResult {
	return TurnResult{Success: true, Response: resp}
}

// Refused wraps a refusal, forcing Refused=true.
func Refused(r *Refusal) TurnResult {
	r.Refused = true
	return TurnResult{Success: false, Refusal: r}
}

// StatusReport answers a session-status query. Unknown ids yield Exists=false.
type StatusReport struct {
	Exists      bool          `json:"exists"`
	Status      SessionStatus `json:"status,omitempty"`
	CurrentTurn *int          `json:"currentTurn,omitempty"`
	CanContinue *bool         `json:"canContinue,omitempty"`
}
