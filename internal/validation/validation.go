// Package validation provides the syntactic and lexical gatekeepers that run
// before any scoring: schema limits, prompt-injection and forbidden-content
// checks, and sanitisation of decision and question text.
package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/harrison/foresight/internal/models"
	"github.com/harrison/foresight/internal/patterns"
)

// Limits applied to raw input.
const (
	MaxDecisionLength = 500
	MaxQuestionLength = 200
	MinQuestionLength = 5
	MinQuestionWords  = 3
	FirstQuestionTurn = 2
)

// Reason enumerates validator rejection reasons.
type Reason string

const (
	ReasonEmpty             Reason = "EMPTY"
	ReasonTooLong           Reason = "TOO_LONG"
	ReasonPromptInjection   Reason = "PROMPT_INJECTION"
	ReasonSelfHarm          Reason = "SELF_HARM"
	ReasonMedical           Reason = "MEDICAL"
	ReasonLegal             Reason = "LEGAL"
	ReasonFinancial         Reason = "FINANCIAL"
	ReasonHarm              Reason = "HARM"
	ReasonTooShort          Reason = "TOO_SHORT"
	ReasonTooGeneric        Reason = "TOO_GENERIC"
	ReasonInvalidTurn       Reason = "INVALID_TURN"
	ReasonAdviceSeeking     Reason = "ADVICE_SEEKING"
	ReasonPredictive        Reason = "PREDICTIVE"
	ReasonLeading           Reason = "LEADING"
	ReasonBinary            Reason = "BINARY"
	ReasonComparisonSeeking Reason = "COMPARISON_SEEKING"
)

var categoryReasons = map[patterns.Category]Reason{
	patterns.CategorySelfHarm:          ReasonSelfHarm,
	patterns.CategoryMedical:           ReasonMedical,
	patterns.CategoryLegal:             ReasonLegal,
	patterns.CategoryFinancial:         ReasonFinancial,
	patterns.CategoryHarm:              ReasonHarm,
	patterns.CategoryAdviceSeeking:     ReasonAdviceSeeking,
	patterns.CategoryPredictive:        ReasonPredictive,
	patterns.CategoryLeading:           ReasonLeading,
	patterns.CategoryBinary:            ReasonBinary,
	patterns.CategoryComparisonSeeking: ReasonComparisonSeeking,
}

// Rejection is returned as the error of a failed validation.
type Rejection struct {
	Field    string
	Reason   Reason
	Category patterns.Category
	Guidance string
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("%s rejected: %s", r.Field, r.Reason)
}

// CrisisResources reports whether the rejection should surface crisis
// resources to the user.
func (r *Rejection) CrisisResources() bool {
	return r.Reason == ReasonSelfHarm
}

// IsContentViolation reports whether the rejection came from a forbidden
// content category rather than a schema or injection check.
func (r *Rejection) IsContentViolation() bool {
	switch r.Reason {
	case ReasonSelfHarm, ReasonMedical, ReasonLegal, ReasonFinancial, ReasonHarm:
		return true
	}
	return false
}

// Decision is a validated, sanitised decision ready for scoring.
type Decision struct {
	SessionID string
	Text      string
}

// newSessionID is swapped in tests.
var newSessionID = uuid.NewString

// ValidateDecision runs the decision checks in order, stopping at the first
// failure: length, prompt injection, forbidden content (self-harm first), then
// sanitisation. A session id is generated when sessionID is empty.
func ValidateDecision(text, sessionID string) (Decision, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Decision{}, &Rejection{Field: "decision", Reason: ReasonEmpty}
	}
	if utf8.RuneCountInString(trimmed) > MaxDecisionLength {
		return Decision{}, &Rejection{Field: "decision", Reason: ReasonTooLong}
	}

	if rule, ok := patterns.PromptInjection.FirstMatch(trimmed); ok {
		return Decision{}, &Rejection{Field: "decision", Reason: ReasonPromptInjection, Category: rule.Category}
	}

	if cat, ok := patterns.ForbiddenContent.FirstMatchIn(trimmed, patterns.ForbiddenContentOrder...); ok {
		return Decision{}, &Rejection{Field: "decision", Reason: categoryReasons[cat], Category: cat}
	}

	sanitized := SanitizeDecision(trimmed)
	if sanitized == "" {
		return Decision{}, &Rejection{Field: "decision", Reason: ReasonEmpty}
	}

	if sessionID == "" {
		sessionID = newSessionID()
	}
	return Decision{SessionID: sessionID, Text: sanitized}, nil
}

// SanitizeDecision strips code fences, chat-role tokens and angle brackets and
// collapses whitespace.
func SanitizeDecision(text string) string {
	s := patterns.StripCodeFences(text)
	s = patterns.StripChatRoleTokens(s)
	s = patterns.StripAngleBrackets(s)
	s = patterns.CollapseWhitespace(s)
	return strings.TrimSpace(s)
}

// ValidateQuestion checks a follow-up question for the given turn number
// (expected 2..MaxTurns) and returns the sanitised text.
func ValidateQuestion(text string, turnNumber int) (string, error) {
	trimmed := strings.TrimSpace(text)
	length := utf8.RuneCountInString(trimmed)

	if length < MinQuestionLength || len(strings.Fields(trimmed)) < MinQuestionWords {
		return "", &Rejection{
			Field:    "question",
			Reason:   ReasonTooShort,
			Guidance: "Your question needs a little more shape. Ask about a specific part of the life this decision might lead to.",
		}
	}
	if length > MaxQuestionLength {
		return "", &Rejection{
			Field:    "question",
			Reason:   ReasonTooGeneric,
			Guidance: "Your question covers a lot of ground. Focus on one moment, feeling or relationship.",
		}
	}
	if turnNumber < FirstQuestionTurn || turnNumber > models.MaxTurns {
		return "", &Rejection{
			Field:    "question",
			Reason:   ReasonInvalidTurn,
			Guidance: fmt.Sprintf("Questions are accepted for turns %d to %d only.", FirstQuestionTurn, models.MaxTurns),
		}
	}

	if cat, ok := patterns.ForbiddenQuestion.FirstMatchIn(trimmed, patterns.QuestionOrder...); ok {
		return "", &Rejection{
			Field:    "question",
			Reason:   categoryReasons[cat],
			Category: cat,
			Guidance: patterns.QuestionGuidance[cat],
		}
	}

	return SanitizeQuestion(trimmed), nil
}

// SanitizeQuestion collapses whitespace and appends a question mark unless the
// text already ends with '?' or '.'.
func SanitizeQuestion(text string) string {
	s := strings.TrimSpace(patterns.CollapseWhitespace(text))
	if !strings.HasSuffix(s, "?") && !strings.HasSuffix(s, ".") {
		s += "?"
	}
	return s
}
