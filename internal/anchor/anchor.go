// Package anchor extracts coherence anchors from the first turn of a session:
// the tensions, identity facets, time horizon and essence of the decision that
// later reflections must stay consistent with.
package anchor

import (
	"regexp"
	"strings"

	"github.com/harrison/foresight/internal/models"
)

// Caps on extracted list anchors.
const (
	MaxLifeTensions    = 5
	MaxIdentityMarkers = 4
)

// Fallback labels when nothing matches.
const (
	UndefinedHorizon    = "undefined_horizon"
	LifeDirectionChange = "life_direction_change"
)

type label struct {
	name string
	re   *regexp.Regexp
}

func rule(name, pattern string) label {
	return label{name: name, re: regexp.MustCompile(`(?i)` + pattern)}
}

var lifeTensions = []label{
	rule("security_vs_freedom", `\b(secur\w*|stable|stability|salary|safe\w*|pension)\b|\b(freedom|free|independen\w*|own\s+boss)\b`),
	rule("belonging_vs_independence", `\b(belong\w*|hometown|roots|community)\b|\b(on\s+my\s+own|alone|by\s+myself)\b`),
	rule("ambition_vs_contentment", `\b(ambiti\w*|achiev\w*|succe\w*|build\w*|grow\w*)\b`),
	rule("known_vs_unknown", `\b(unknown|uncertain\w*|new|unfamiliar|leap|risk\w*)\b`),
	rule("duty_vs_desire", `\b(duty|obligat\w*|expect\w*|responsib\w*|owe)\b|\b(want|desire|dream|long\s+to)\b`),
	rule("stability_vs_growth", `\b(settled|routine|comfortable)\b|\b(growth|learn\w*|challenge\w*|change)\b`),
	rule("connection_vs_autonomy", `\b(partner|family|friends?|together|relationship)\b`),
	rule("past_vs_future", `\b(past|used\s+to|left\s+behind|memor\w*|nostalgi\w*)\b|\b(future|someday|ahead)\b`),
	rule("comfort_vs_challenge", `\b(comfort\w*|easy|familiar)\b|\b(hard|difficult|struggl\w*|challeng\w*)\b`),
	rule("identity_vs_role", `\b(identity|who\s+i\s+am|sense\s+of\s+self|title|role)\b`),
}

var identityMarkers = []label{
	rule("professional_self", `\b(job|career|work|company|business|profession\w*|office|colleagues?)\b`),
	rule("partner_self", `\b(partner|husband|wife|spouse|marr\w*|relationship|fianc\w*)\b`),
	rule("parent_self", `\b(baby|child|children|kids?|parent\w*|mother|father|mom|dad)\b`),
	rule("creative_self", `\b(art|artist|writ\w*|music\w*|paint\w*|creat\w*|design\w*)\b`),
	rule("explorer_self", `\b(travel\w*|abroad|move|moving|relocat\w*|country|explor\w*|adventure)\b`),
	rule("learner_self", `\b(degree|school|study\w*|universit\w*|college|phd|learn\w*)\b`),
	rule("caretaker_self", `\b(care\w*|caring|look\s+after|support\w*|aging|elderly)\b`),
	rule("independent_self", `\b(independen\w*|own\s+boss|alone|freedom|self[-\s]employed)\b`),
}

var temporalFrames = []label{
	rule("decade_horizon", `\b(decades?|ten\s+years|10\s+years|lifetime|rest\s+of\s+my\s+life)\b`),
	rule("year_horizon", `\b(years?|annual\w*)\b`),
	rule("month_horizon", `\b(months?|weeks?|season)\b`),
}

var decisionEssences = []label{
	rule("career_transition", `\b(quit\w*|resign\w*|job|career|company|business|startup|retir\w*)\b`),
	rule("relationship_change", `\b(marr\w*|divorc\w*|break(ing)?\s+up|partner|relationship|engag\w*)\b`),
	rule("geographic_relocation", `\b(move|moving|relocat\w*|emigrat\w*|abroad|country|city)\b`),
	rule("educational_path", `\b(degree|school|study\w*|universit\w*|college|phd|enroll\w*)\b`),
	rule("family_formation", `\b(baby|child|children|kids?|adopt\w*|pregnan\w*)\b`),
	rule("creative_pursuit", `\b(art|artist|writ\w*|music\w*|paint\w*|novel|band)\b`),
	rule("lifestyle_redesign", `\b(lifestyle|simplif\w*|minimalis\w*|sabbatical|off[-\s]grid|van)\b`),
}

// Extract derives anchors from the decision and the first reflection. It is
// deterministic and never fails; missing signals yield empty lists or the
// fallback labels.
func Extract(decision, reflection string) models.CoherenceAnchors {
	text := strings.ToLower(decision + "\n" + reflection)
	return models.CoherenceAnchors{
		LifeTensions:    matchAll(lifeTensions, text, MaxLifeTensions),
		IdentityMarkers: matchAll(identityMarkers, text, MaxIdentityMarkers),
		TemporalFrame:   matchFirst(temporalFrames, text, UndefinedHorizon),
		DecisionEssence: matchFirst(decisionEssences, text, LifeDirectionChange),
	}
}

func matchAll(labels []label, text string, limit int) []string {
	out := make([]string, 0, limit)
	for _, l := range labels {
		if len(out) == limit {
			break
		}
		if l.re.MatchString(text) {
			out = append(out, l.name)
		}
	}
	return out
}

func matchFirst(labels []label, text, fallback string) string {
	for _, l := range labels {
		if l.re.MatchString(text) {
			return l.name
		}
	}
	return fallback
}

// Summary renders anchors as a compact prompt fragment.
func Summary(a *models.CoherenceAnchors) string {
	if a == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("Decision essence: " + humanize(a.DecisionEssence) + "\n")
	b.WriteString("Time horizon: " + humanize(a.TemporalFrame) + "\n")
	if len(a.LifeTensions) > 0 {
		b.WriteString("Life tensions: " + humanizeAll(a.LifeTensions) + "\n")
	}
	if len(a.IdentityMarkers) > 0 {
		b.WriteString("Identity facets: " + humanizeAll(a.IdentityMarkers) + "\n")
	}
	return b.String()
}

func humanize(s string) string {
	return strings.ReplaceAll(s, "_", " ")
}

func humanizeAll(items []string) string {
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = humanize(s)
	}
	return strings.Join(out, ", ")
}
