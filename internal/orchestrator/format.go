package orchestrator

import (
	"fmt"
	"time"

	"github.com/harrison/foresight/internal/models"
	"github.com/harrison/foresight/internal/patterns"
	"github.com/harrison/foresight/internal/validation"
)

// Disclaimers accompany every reflection.
var Disclaimers = []string{
	"This is one imagined future, not a prediction of what will happen.",
	"It is not professional advice of any kind.",
	"Only you can decide what this reflection means for your life.",
}

const (
	msgSystemError     = "Something went wrong while preparing this reflection. Please try again."
	msgSessionNotFound = "This reflection session does not exist or has already ended."
	msgSessionEnded    = "This reflection session has ended and cannot take more questions."
	msgMaxTurns        = "You have asked every question this reflection allows. The session is complete."
	msgStartNew        = "To reflect on another decision, start a new session."
	msgInvalidQuestion = "This question could not be accepted."

	closureMessage = "This reflection is complete. The future you glimpsed is only one of many, and what you carry forward from it is yours to choose."
)

func initialGuidance() string {
	return fmt.Sprintf("You can ask up to %d questions of this future self. Questions about feelings, relationships and ordinary days tend to open the most.", models.MaxTurns-1)
}

var questionMessages = map[models.RefusalReason]string{
	models.RefusalAdviceSeekingQuestion: "Your future self cannot tell you what to do.",
	models.RefusalPredictiveQuestion:    "Your future self cannot tell you how things will turn out.",
	models.RefusalLeadingQuestion:       "Your future self cannot simply confirm what you hope to hear.",
	models.RefusalGenericQuestion:       "That question is too broad to answer from inside one future.",
	models.RefusalShallowQuestion:       "That question stays on the surface of this future.",
}

// questionReasons maps validator rejections to refusal reasons. Reasons not
// listed become validation_failed.
var questionReasons = map[validation.Reason]models.RefusalReason{
	validation.ReasonTooShort:          models.RefusalShallowQuestion,
	validation.ReasonTooGeneric:        models.RefusalGenericQuestion,
	validation.ReasonAdviceSeeking:     models.RefusalAdviceSeekingQuestion,
	validation.ReasonPredictive:        models.RefusalPredictiveQuestion,
	validation.ReasonLeading:           models.RefusalLeadingQuestion,
	validation.ReasonBinary:            models.RefusalShallowQuestion,
	validation.ReasonComparisonSeeking: models.RefusalGenericQuestion,
}

type contentRefusal struct {
	message  string
	guidance string
}

var contentRefusals = map[patterns.Category]contentRefusal{
	patterns.CategorySelfHarm: {
		message:  "It sounds like you may be carrying something very painful. This space cannot hold that, but you do not have to face it alone.",
		guidance: "If you are thinking about ending your life or are in danger, please contact local emergency services or a crisis line now. In the US you can call or text 988; elsewhere, findahelpline.com lists free services.",
	},
	patterns.CategoryMedical: {
		message:  "Decisions about medical treatment deserve a conversation with a qualified clinician, so this space cannot reflect on them.",
		guidance: "If a broader life decision sits around this one, try describing that instead.",
	},
	patterns.CategoryLegal: {
		message:  "Decisions about legal action deserve a conversation with a qualified lawyer, so this space cannot reflect on them.",
		guidance: "If a broader life decision sits around this one, try describing that instead.",
	},
	patterns.CategoryFinancial: {
		message:  "Decisions about investments and money deserve a conversation with a qualified adviser, so this space cannot reflect on them.",
		guidance: "If a broader life decision sits around this one, try describing that instead.",
	},
	patterns.CategoryHarm: {
		message:  "This space cannot reflect on decisions that involve harming someone.",
		guidance: "If you are in conflict with someone, talking it through with a person you trust may help.",
	},
}

// decisionRefusal turns a validator rejection of the decision into a refusal.
// Self-harm rejections carry the crisis resource flag in metadata.
func decisionRefusal(id string, rej *validation.Rejection) models.TurnResult {
	meta := map[string]interface{}{"session_id": id}

	if rej.IsContentViolation() {
		meta["category"] = string(rej.Category)
		if rej.CrisisResources() {
			meta["crisis_resources"] = true
		}
		c := contentRefusals[rej.Category]
		return refuse(models.RefusalForbiddenContent, c.message, c.guidance, meta)
	}

	var message string
	switch rej.Reason {
	case validation.ReasonEmpty:
		message = "Please describe the decision you have made."
	case validation.ReasonTooLong:
		message = fmt.Sprintf("Please describe your decision in %d characters or fewer.", validation.MaxDecisionLength)
	default:
		message = "This decision could not be processed. Please describe it in your own words."
	}
	return refuse(models.RefusalValidationFailed, message, "", meta)
}

func refuse(reason models.RefusalReason, message, guidance string, meta map[string]interface{}) models.TurnResult {
	return models.Refused(&models.Refusal{
		Reason:   reason,
		Message:  message,
		Guidance: guidance,
		Metadata: meta,
	})
}

// formatResponse builds the user-facing response for a recorded turn.
// remaining_turns is always MaxTurns minus the turn number, matching the
// session's own count after the turn advanced.
func formatResponse(id string, turn int, reflection string, gravity *float64, consequence float64, now time.Time) *models.ReflectionResponse {
	final := turn >= models.MaxTurns
	resp := &models.ReflectionResponse{
		Reflection:     reflection,
		TurnNumber:     turn,
		IsFinal:        final,
		RemainingTurns: models.MaxTurns - turn,
		Metadata: models.ResponseMetadata{
			SessionID:             id,
			DecisionGravityScore:  gravity,
			ConsequenceDepthScore: consequence,
			Timestamp:             now,
			SessionComplete:       final,
		},
		Disclaimers: append([]string(nil), Disclaimers...),
	}
	if turn == 1 {
		resp.Guidance = initialGuidance()
	}
	if final {
		resp.ClosureMessage = closureMessage
	}
	return resp
}
