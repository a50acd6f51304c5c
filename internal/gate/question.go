package gate

import (
	"math/rand/v2"

	"github.com/harrison/foresight/internal/models"
	"github.com/harrison/foresight/internal/patterns"
)

// Question depth dimensions.
const (
	DimSpecificity         = "specificity"
	DimIntrospectiveDepth  = "introspective_depth"
	DimNonLeading          = "non_leading"
	QuestionDepthThreshold = 0.4

	// genericSpecificityFloor separates generic questions from ones that are
	// specific but lack depth.
	genericSpecificityFloor = 0.4
)

// QuestionDepth scores whether a follow-up question explores the inner
// experience of a specific part of the imagined future.
var QuestionDepth = &Gate{
	Name:      "question_depth",
	Threshold: QuestionDepthThreshold,
	Dimensions: []DimensionSpec{
		{
			Name:    DimSpecificity,
			Weight:  0.35,
			Base:    0.2,
			Signals: []Signal{minWords(8, 0.15), minWords(12, 0.1)},
			Rules: []Rule{
				strong(`\b(moments?|mornings?|evenings?|nights?|days?|weeks?|routines?|habits?)\b`, 0.3),
				strong(`\b(relationships?|partner|friends?|family|parents?|children|kids|colleagues|team)\b`, 0.3),
				strong(`\b(work|job|office|home|body|city|kitchen|commute|conversations?)\b`, 0.3),
				moderate(`\b(first|last|specific|particular|exactly|one)\b`, 0.15),
				moderate(`\b(year|month|season|winter|summer|birthday|holidays?)\b`, 0.15),
				trivial(`\b(things|stuff|everything|anything|something)\b`, 0.2),
				trivial(`\b(in\s+general|generally|overall)\b`, 0.2),
			},
		},
		{
			Name:   DimIntrospectiveDepth,
			Weight: 0.40,
			Rules: []Rule{
				strong(`\b(feel|feels|feeling|felt|emotions?|emotional)\b`, 0.3),
				strong(`\b(miss|missing|regret\w*|grief|griev\w*|long\s+for|ache)\b`, 0.3),
				strong(`\b(proud|afraid|fear\w*|ashamed|lonely|loneliness|relief|joy)\b`, 0.3),
				strong(`\b(identity|sense\s+of|who\s+i\s+(am|became|become)|meaning|values?)\b`, 0.3),
				strong(`\b(surpris\w*|didn'?t\s+(anticipate|expect)|unexpected)\b`, 0.3),
				strong(`\b(find\s+myself|think(ing)?\s+about|quiet\s+moments?|wonder\w*)\b`, 0.3),
				moderate(`\b(how|what\s+might|in\s+what\s+ways?)\b`, 0.15),
				moderate(`\b(chang(e|es|ed|ing)|shift\w*|grow\w*|learn\w*|notic\w*)\b`, 0.15),
				trivial(`\b(succeed|success|rich|money|famous|win)\b`, 0.2),
			},
		},
		{
			Name:   DimNonLeading,
			Weight: 0.25,
			Base:   1.0,
			Rules: []Rule{
				trivial(`\b(should|recommend|advi[cs]e|suggest)\b`, 0.5),
				trivial(`\b(will\s+(i|it|this|that)|what\s+will|going\s+to)\b`, 0.4),
				trivial(`\b(won'?t|isn'?t\s+it|don'?t\s+you\s+think|surely)\b|\bright\s*\?\s*$`, 0.4),
				trivial(`^\s*(is|are|am|was|were|do|does|did|can|could|would|will|have|has)\s+\w+`, 0.3),
			},
		},
	},
}

// Picker chooses an index in [0,n). It makes example selection injectable.
type Picker func(n int) int

// RandomExample picks uniformly.
func RandomExample(n int) int {
	return rand.IntN(n)
}

// FirstExample always picks the first example.
func FirstExample(int) int {
	return 0
}

// QuestionRejection explains why a question did not pass the depth gate.
type QuestionRejection struct {
	Reason         models.RefusalReason
	Guidance       string
	ExampleReframe string
}

type rejectionKind struct {
	reason   models.RefusalReason
	guidance string
	examples []string
}

var (
	adviceRejection = rejectionKind{
		reason:   models.RefusalAdviceSeekingQuestion,
		guidance: "This question seeks advice. Ask about your future self's internal experience instead.",
		examples: []string{
			"What might my future self feel on the first morning of this new life?",
			"What might I find myself missing about the life I left behind?",
			"How might my sense of who I am shift in the first year?",
		},
	}
	predictiveRejection = rejectionKind{
		reason:   models.RefusalPredictiveQuestion,
		guidance: "This question asks for predictions. Ask about one possible future experience.",
		examples: []string{
			"In one version of this future, what might an ordinary Tuesday feel like?",
			"What might surprise me about my daily routine a year in?",
			"How might my relationships feel different in this future?",
		},
	}
	leadingRejection = rejectionKind{
		reason:   models.RefusalLeadingQuestion,
		guidance: "This question seeks validation. Ask open questions about your future self's experience.",
		examples: []string{
			"What might I feel in the quiet moments after a hard week?",
			"What part of this life might I find myself thinking about most?",
			"How might I feel about the person I became along the way?",
		},
	}
	genericRejection = rejectionKind{
		reason:   models.RefusalGenericQuestion,
		guidance: "This question is quite general. Ask about a specific moment, relationship or part of daily life.",
		examples: []string{
			"What might my mornings feel like in the first month?",
			"How might conversations with my family change?",
			"What might I feel walking home from work on an ordinary evening?",
		},
	}
	shallowRejection = rejectionKind{
		reason:   models.RefusalShallowQuestion,
		guidance: "This question stays on the surface. Ask how your future self might feel, change or make sense of this experience.",
		examples: []string{
			"What might I find myself grieving, even if the choice felt right for me?",
			"How might my sense of identity shift in the first year?",
			"What might my future self feel proud of that I cannot see yet?",
		},
	}
)

var rejectionKinds = map[models.RefusalReason]rejectionKind{
	models.RefusalAdviceSeekingQuestion: adviceRejection,
	models.RefusalPredictiveQuestion:    predictiveRejection,
	models.RefusalLeadingQuestion:       leadingRejection,
	models.RefusalGenericQuestion:       genericRejection,
	models.RefusalShallowQuestion:       shallowRejection,
}

// ExampleReframe picks an example question for a question refusal reason, or
// "" when the reason has no examples.
func ExampleReframe(reason models.RefusalReason, pick Picker) string {
	kind, ok := rejectionKinds[reason]
	if !ok {
		return ""
	}
	return kind.pickExample(pick)
}

func (k rejectionKind) pickExample(pick Picker) string {
	if pick == nil {
		pick = RandomExample
	}
	idx := pick(len(k.examples))
	if idx < 0 || idx >= len(k.examples) {
		idx = 0
	}
	return k.examples[idx]
}

// ClassifyQuestionRejection explains a failed question score. Framing
// problems are checked first in fixed priority (advice, predictive, leading),
// then low specificity, else the question lacks depth. pick chooses the
// example reframe; nil means RandomExample.
func ClassifyQuestionRejection(question string, score models.Score, pick Picker) QuestionRejection {
	kind := shallowRejection
	if cat, ok := patterns.ForbiddenQuestion.FirstMatchIn(question,
		patterns.CategoryAdviceSeeking, patterns.CategoryPredictive, patterns.CategoryLeading); ok {
		switch cat {
		case patterns.CategoryAdviceSeeking:
			kind = adviceRejection
		case patterns.CategoryPredictive:
			kind = predictiveRejection
		case patterns.CategoryLeading:
			kind = leadingRejection
		}
	} else if v, ok := score.Dimension(DimSpecificity); ok && v < genericSpecificityFloor {
		kind = genericRejection
	}

	return QuestionRejection{
		Reason:         kind.reason,
		Guidance:       kind.guidance,
		ExampleReframe: kind.pickExample(pick),
	}
}
