// Package gate implements the three scoring gates of the reflection engine:
// decision gravity, question depth and consequence depth.
//
// Each gate is a deterministic lexical heuristic expressed as explicit rule
// tables. A dimension sums the weights of the rules that match (every rule
// counts at most once), adds structural signals such as length, and clamps to
// [0,1]. The combined score is the weighted sum of dimensions; a gate passes
// when combined >= threshold. The Scorer interface lets a learned classifier
// replace a table without changing callers.
package gate

import (
	"context"
	"math"
	"regexp"
	"strings"

	"github.com/harrison/foresight/internal/models"
)

// Tier classifies a rule as strong positive, moderate positive or
// trivial/negative evidence.
type Tier int

const (
	TierStrong Tier = iota
	TierModerate
	TierNegative
)

// String returns the tier name.
func (t Tier) String() string {
	switch t {
	case TierStrong:
		return "strong"
	case TierModerate:
		return "moderate"
	case TierNegative:
		return "negative"
	default:
		return "unknown"
	}
}

// Rule is a (pattern, weight) pair. Negative-tier weights are subtracted.
type Rule struct {
	Pattern string
	Weight  float64
	Tier    Tier
	re      *regexp.Regexp
}

func compile(pattern string, weight float64, tier Tier) Rule {
	return Rule{
		Pattern: pattern,
		Weight:  weight,
		Tier:    tier,
		re:      regexp.MustCompile(`(?i)` + pattern),
	}
}

func strong(pattern string, weight float64) Rule   { return compile(pattern, weight, TierStrong) }
func moderate(pattern string, weight float64) Rule { return compile(pattern, weight, TierModerate) }
func trivial(pattern string, weight float64) Rule  { return compile(pattern, weight, TierNegative) }

// contribution is the signed amount the rule adds when it matches.
func (r Rule) contribution(text string) float64 {
	if !r.re.MatchString(text) {
		return 0
	}
	if r.Tier == TierNegative {
		return -r.Weight
	}
	return r.Weight
}

// Signal is a structural contribution derived from the whole text.
type Signal func(text string) float64

// minRunes adds bonus when the trimmed text is longer than n characters.
func minRunes(n int, bonus float64) Signal {
	return func(text string) float64 {
		if len([]rune(strings.TrimSpace(text))) > n {
			return bonus
		}
		return 0
	}
}

// minWords adds bonus when the text has at least n words.
func minWords(n int, bonus float64) Signal {
	return func(text string) float64 {
		if len(strings.Fields(text)) >= n {
			return bonus
		}
		return 0
	}
}

var sentenceEnd = regexp.MustCompile(`[.!?]+(\s|$)`)

// minSentences adds bonus when the text has at least n sentences.
func minSentences(n int, bonus float64) Signal {
	return func(text string) float64 {
		if len(sentenceEnd.FindAllStringIndex(text, -1)) >= n {
			return bonus
		}
		return 0
	}
}

// DimensionSpec is the rule table for one scored dimension.
type DimensionSpec struct {
	Name    string
	Weight  float64
	Base    float64
	Signals []Signal
	Rules   []Rule
}

func (d DimensionSpec) evaluate(text string) float64 {
	v := d.Base
	for _, s := range d.Signals {
		v += s(text)
	}
	for _, r := range d.Rules {
		v += r.contribution(text)
	}
	return clamp01(v)
}

// Gate is a set of weighted dimensions plus a pass threshold.
type Gate struct {
	Name       string
	Threshold  float64
	Dimensions []DimensionSpec
}

// Evaluate scores text. It is a pure function of its input.
func (g *Gate) Evaluate(text string) models.Score {
	values := make(map[string]float64, len(g.Dimensions))
	for _, d := range g.Dimensions {
		values[d.Name] = d.evaluate(text)
	}
	return g.FromDimensions(values)
}

// FromDimensions builds a Score from externally computed dimension values,
// applying this gate's weights and threshold. Missing dimensions count as 0.
func (g *Gate) FromDimensions(values map[string]float64) models.Score {
	score := models.Score{
		Threshold:  g.Threshold,
		Dimensions: make([]models.Dimension, 0, len(g.Dimensions)),
	}
	for _, d := range g.Dimensions {
		v := clamp01(values[d.Name])
		score.Dimensions = append(score.Dimensions, models.Dimension{Name: d.Name, Value: round3(v)})
		score.Combined += d.Weight * v
	}
	score.Combined = round3(clamp01(score.Combined))
	score.Pass = score.Combined >= g.Threshold
	return score
}

// DimensionNames lists dimension names in declaration order.
func (g *Gate) DimensionNames() []string {
	names := make([]string, len(g.Dimensions))
	for i, d := range g.Dimensions {
		names[i] = d.Name
	}
	return names
}

// Score implements Scorer. The heuristic never fails.
func (g *Gate) Score(_ context.Context, text string) (models.Score, error) {
	return g.Evaluate(text), nil
}

// Scorer produces a gate score for a text.
type Scorer interface {
	Score(ctx context.Context, text string) (models.Score, error)
}

// Set bundles the scorers used by the orchestrator.
type Set struct {
	Gravity     Scorer
	Question    Scorer
	Consequence Scorer
}

// DefaultSet returns the heuristic scorers.
func DefaultSet() Set {
	return Set{
		Gravity:     Gravity,
		Question:    QuestionDepth,
		Consequence: ConsequenceDepth,
	}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// round3 keeps scores stable across platforms and readable in metadata.
func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
