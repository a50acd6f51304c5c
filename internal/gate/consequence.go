package gate

import "github.com/harrison/foresight/internal/models"

// Consequence depth dimensions.
const (
	DimEmotionalSpecificity = "emotional_specificity"
	DimConcreteReasoning    = "concrete_reasoning"
	DimNarrativeDepth       = "narrative_depth"
	ConsequenceThreshold    = 0.35
)

// ConsequenceDepth scores whether a generated reflection is specific and
// grounded enough to show. A failing reflection ends the session.
var ConsequenceDepth = &Gate{
	Name:      "consequence_depth",
	Threshold: ConsequenceThreshold,
	Dimensions: []DimensionSpec{
		{
			Name:   DimEmotionalSpecificity,
			Weight: 0.35,
			Rules: []Rule{
				strong(`\b(grief|griev\w*|ache|aching)\b`, 0.2),
				strong(`\b(pride|proud)\b`, 0.2),
				strong(`\b(relief|relieved)\b`, 0.2),
				strong(`\b(lonel\w*|isolat\w*)\b`, 0.2),
				strong(`\b(fear|afraid|dread|anxious|anxiety)\b`, 0.2),
				strong(`\b(longing|miss|missed|missing|nostalgi\w*)\b`, 0.2),
				strong(`\b(regret\w*|guilt\w*|shame)\b`, 0.2),
				strong(`\b(joy|gratitude|grateful|tender\w*|awe)\b`, 0.2),
				strong(`\b(restless\w*|unease|uneasy|tension)\b`, 0.2),
				moderate(`\b(feel|feels|felt|feeling|emotions?)\b`, 0.1),
				moderate(`\b(heart|chest|stomach|breath)\b`, 0.1),
				trivial(`\b(happy|sad|good|bad|fine|great|nice)\b`, 0.1),
			},
		},
		{
			Name:   DimConcreteReasoning,
			Weight: 0.35,
			Rules: []Rule{
				strong(`\bbecause\b`, 0.2),
				strong(`\b(which\s+meant|that\s+meant|so\s+that|in\s+exchange|the\s+cost|trade[-\s]?offs?|gave\s+up|giving\s+up)\b`, 0.2),
				strong(`\b(mornings?|evenings?|weekends?|commute|kitchen|desk|inbox|calendar)\b`, 0.2),
				strong(`\b(first|second|third)\s+(year|month|winter|summer|spring|autumn)\b`, 0.2),
				strong(`\b(savings|rent|salary|invoices?|clients?|colleagues?)\b`, 0.2),
				moderate(`\b\d+\b`, 0.1),
				moderate(`\b(days?|weeks?|months?|years?)\b`, 0.1),
				moderate(`\b(when|after|before|until)\b`, 0.1),
				trivial(`\b(everything\s+(will|would)\s+(work\s+out|be\s+fine)|it\s+all\s+works?\s+out|things\s+will\s+be\s+fine)\b`, 0.2),
				trivial(`\b(just\s+follow\s+your\s+heart|no\s+regrets)\b`, 0.2),
			},
		},
		{
			Name:   DimNarrativeDepth,
			Weight: 0.30,
			Signals: []Signal{
				minWords(30, 0.1),
				minWords(60, 0.1),
				minWords(120, 0.1),
				minSentences(4, 0.1),
			},
			Rules: []Rule{
				strong(`\b(i\s+remember|looking\s+back|some\s+days|still|these\s+days)\b`, 0.15),
				strong(`\b(what\s+i\s+didn'?t\s+expect|surpris\w*|i\s+learned|i\s+became|i\s+had\s+to\s+learn)\b`, 0.15),
				strong(`\b(part\s+of\s+me|the\s+person\s+i|who\s+i\s+was)\b`, 0.15),
				strong(`\b(slowly|gradually|over\s+time|eventually)\b`, 0.15),
				moderate(`\b(but|although|yet)\b`, 0.1),
				trivial(`\byou\s+will\b`, 0.15),
				trivial(`\b(in\s+conclusion|to\s+summarize|overall)\b`, 0.15),
			},
		},
	},
}

var terminationMessages = map[string]string{
	DimEmotionalSpecificity: "This reflection could not reach the emotional detail this decision deserves, so the session ends here. Returning to it with fresh words may open a different view.",
	DimConcreteReasoning:    "This reflection could not ground itself in the concrete texture of daily life, so the session ends here. Returning to it with fresh words may open a different view.",
	DimNarrativeDepth:       "This reflection could not develop into a story with enough depth, so the session ends here. Returning to it with fresh words may open a different view.",
}

// TerminationMessage explains a failed consequence score, chosen by the
// weakest dimension.
func TerminationMessage(score models.Score) string {
	if msg, ok := terminationMessages[score.Weakest().Name]; ok {
		return msg
	}
	return terminationMessages[DimNarrativeDepth]
}
