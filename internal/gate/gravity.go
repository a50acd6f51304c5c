package gate

import "github.com/harrison/foresight/internal/models"

// Decision gravity dimensions.
const (
	DimIrreversibility      = "irreversibility"
	DimLifeImpact           = "life_impact"
	DimTemporalConsequence  = "temporal_consequence"
	GravityThreshold        = 0.4
	gravityLengthFloorRunes = 20
)

// trivialDecision matches everyday choices. It is shared by all three gravity
// dimensions with different weights.
const (
	trivialFood          = `\b(eat|eating|lunch|dinner|breakfast|brunch|snacks?)\b`
	trivialEntertainment = `\b(movie|film|netflix|tv|series|episode|video\s+games?|play\s+(a\s+)?game)\b`
	trivialAppearance    = `\b(wear|outfit|shirt|shoes|haircut|nail\s+polish)\b`
	trivialErrand        = `\b(restaurant|coffee|pizza|takeout|groceries|order\s+food)\b`
	trivialTiming        = `\b(today|tonight|this\s+(evening|afternoon|weekend)|right\s+now|weekend\s+plans?)\b`
)

// Gravity scores whether a decision is weighty enough to reflect on.
var Gravity = &Gate{
	Name:      "decision_gravity",
	Threshold: GravityThreshold,
	Dimensions: []DimensionSpec{
		{
			Name:    DimIrreversibility,
			Weight:  0.40,
			Signals: []Signal{minRunes(gravityLengthFloorRunes, 0.1)},
			Rules: []Rule{
				strong(`\b(quit|quitting|resign|resigning)\b`, 0.35),
				strong(`\b(divorc\w*|separat(e|ing)\s+from)\b`, 0.35),
				strong(`\b(marry|marrying|married|propose|proposing|engaged)\b`, 0.35),
				strong(`\b(emigrat\w*|relocat\w*|(move|moving)\s+(to|abroad|across|away|overseas|back))\b`, 0.35),
				strong(`\bsell(ing)?\s+(my|our|the)\s+(house|home|business|company)\b`, 0.35),
				strong(`\b(have|having)\s+(a\s+)?(baby|child|kids?|children)\b`, 0.35),
				strong(`\b(retire|retiring)\b`, 0.35),
				strong(`\bdrop(ping)?\s+out\b`, 0.35),
				strong(`\b(break(ing)?\s+up|end(ing)?\s+(my|our|the)\s+(marriage|relationship|engagement))\b`, 0.35),
				strong(`\b(leave|leaving)\s+(my|the|our)\s+(job|career|partner|husband|wife|marriage|country|home|church|family|hometown)\b`, 0.35),
				moderate(`\b(start|starting|launch|launching|found|founding)\s+(a|my|our)\s+(company|business|startup|practice|band)\b`, 0.15),
				moderate(`\b(change|changing|switch|switching)\s+(my\s+)?careers?\b`, 0.15),
				moderate(`\b(buy|buying)\s+a\s+(house|home|farm)\b`, 0.15),
				moderate(`\b(accept|accepting|take|taking)\s+(the|a|an)\s+(job|offer|position|role)\b`, 0.15),
				moderate(`\b(enroll\w*|apply(ing)?\s+to)\b`, 0.15),
				moderate(`\b(permanent\w*|forever|for\s+good|no\s+going\s+back|can'?t\s+undo)\b`, 0.15),
				moderate(`\b(commit\w*|adopt\w*)\b`, 0.15),
				trivial(trivialFood, 0.4),
				trivial(trivialEntertainment, 0.4),
				trivial(trivialAppearance, 0.4),
				trivial(trivialErrand, 0.4),
			},
		},
		{
			Name:    DimLifeImpact,
			Weight:  0.35,
			Signals: []Signal{minRunes(gravityLengthFloorRunes, 0.1)},
			Rules: []Rule{
				strong(`\b(job|career|profession|company|business|startup)\b`, 0.3),
				strong(`\b(marriage|partner|husband|wife|spouse|relationship|fianc\w*)\b`, 0.3),
				strong(`\b(child|children|kids?|baby|family|parents?)\b`, 0.3),
				strong(`\b(home|house|country|city|hometown)\b`, 0.3),
				strong(`\b(degree|university|college|school|phd|education)\b`, 0.3),
				strong(`\b(faith|church|religion|identity)\b`, 0.3),
				moderate(`\b(friends?|community|team|colleagues)\b`, 0.15),
				moderate(`\b(life|lifestyle|future|dream|purpose|calling)\b`, 0.15),
				moderate(`\b(move|moving|leave|leaving|quit|quitting)\b`, 0.15),
				moderate(`\b(savings|salary|income|stability)\b`, 0.15),
				trivial(trivialFood, 0.3),
				trivial(trivialEntertainment, 0.3),
				trivial(trivialAppearance, 0.3),
				trivial(trivialErrand, 0.3),
			},
		},
		{
			Name:    DimTemporalConsequence,
			Weight:  0.25,
			Signals: []Signal{minRunes(gravityLengthFloorRunes, 0.1)},
			Rules: []Rule{
				strong(`\b(years?|decades?|lifetime|rest\s+of\s+my\s+life)\b`, 0.3),
				strong(`\b(forever|permanent\w*|long[-\s]term|for\s+good)\b`, 0.3),
				strong(`\b(future|someday|eventually|retire\w*)\b`, 0.3),
				moderate(`\b(quit|quitting|leave|leaving|resign\w*)\b`, 0.15),
				moderate(`\b(start|starting|begin|beginning|launch\w*|found\w*)\b`, 0.15),
				moderate(`\b(career|company|business|marriage|children|degree)\b`, 0.15),
				moderate(`\bgoing\s+to\b`, 0.15),
				moderate(`\bnext\s+(month|spring|summer|fall|autumn|winter|year)\b`, 0.15),
				trivial(trivialTiming, 0.3),
				trivial(trivialFood, 0.3),
				trivial(trivialEntertainment, 0.3),
			},
		},
	},
}

// GravityRefusal is the user-facing explanation for a trivial decision.
type GravityRefusal struct {
	Message          string
	Guidance         string
	WeakestDimension string
}

var gravityGuidance = map[string]string{
	DimIrreversibility:     "Reflection works best on choices that are hard to undo. Consider a decision that closes some doors as it opens others.",
	DimLifeImpact:          "Reflection works best on choices that reshape daily life. Consider a decision that touches your work, relationships, home or sense of self.",
	DimTemporalConsequence: "Reflection works best on choices whose effects unfold over years. Consider a decision you expect to still be living with long after it is made.",
}

// NewGravityRefusal picks the message band from the combined score and names
// the weakest dimension in the guidance.
func NewGravityRefusal(score models.Score) GravityRefusal {
	var message string
	switch {
	case score.Combined < 0.2:
		message = "This sounds like an everyday choice. This space is reserved for decisions that will shape the years ahead."
	case score.Combined < 0.35:
		message = "This decision may matter to you, but it does not yet read as a turning point that changes the shape of a life."
	default:
		message = "This decision is close, but it is not clear yet how deeply it would change your life. Try describing it more fully."
	}

	weakest := score.Weakest()
	return GravityRefusal{
		Message:          message,
		Guidance:         gravityGuidance[weakest.Name],
		WeakestDimension: weakest.Name,
	}
}
