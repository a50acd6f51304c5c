package patterns

// Forbidden question framings, in checking order.
const (
	CategoryAdviceSeeking     Category = "advice_seeking"
	CategoryPredictive        Category = "predictive"
	CategoryLeading           Category = "leading"
	CategoryBinary            Category = "binary"
	CategoryComparisonSeeking Category = "comparison_seeking"
)

// QuestionOrder is the tie-break order for forbidden question framings: a
// question matching several categories is attributed to the earliest one.
var QuestionOrder = []Category{
	CategoryAdviceSeeking,
	CategoryPredictive,
	CategoryLeading,
	CategoryBinary,
	CategoryComparisonSeeking,
}

// ForbiddenQuestion detects question framings the dialogue does not answer.
var ForbiddenQuestion = newRegistry("forbidden_question", []entry{
	{CategoryAdviceSeeking, `\bshould\s+i\b`},
	{CategoryAdviceSeeking, `\bwhat\s+should\b`},
	{CategoryAdviceSeeking, `\b(recommend|recommendation|suggest|suggestion)\b`},
	{CategoryAdviceSeeking, `\badvi[cs]e\b`},
	{CategoryAdviceSeeking, `\bis\s+it\s+(a\s+)?(good|bad|wise|smart)\s+idea\b`},
	{CategoryAdviceSeeking, `\bwhat\s+(would|do)\s+you\s+do\b`},
	{CategoryAdviceSeeking, `\bhelp\s+me\s+decide\b`},

	{CategoryPredictive, `\bwill\s+(i|it|this|that)\b`},
	{CategoryPredictive, `\bwhat\s+will\b`},
	{CategoryPredictive, `\bgoing\s+to\b`},
	{CategoryPredictive, `\b(chances|odds|likelihood|probability)\b`},
	{CategoryPredictive, `\bpredict\w*\b`},

	{CategoryLeading, `\bwon'?t\b`},
	{CategoryLeading, `\bisn'?t\s+it\b`},
	{CategoryLeading, `\bdon'?t\s+you\s+think\b`},
	{CategoryLeading, `\bright\s*\?\s*$`},
	{CategoryLeading, `\bsurely\b`},
	{CategoryLeading, `\bwouldn'?t\s+(it|you|i)\b`},
	{CategoryLeading, `\bam\s+i\s+right\b`},

	{CategoryBinary, `^\s*(is|are|am|was|were|do|does|did|can|could|would|will|have|has)\s+\w+`},

	{CategoryComparisonSeeking, `\bwhat\s+if\s+i\s+had(n'?t)?\b`},
	{CategoryComparisonSeeking, `\bother\s+(option|path|choice)s?\b`},
	{CategoryComparisonSeeking, `\balternatives?\b`},
	{CategoryComparisonSeeking, `\b(better|worse)\s+than\b`},
	{CategoryComparisonSeeking, `\bcompared?\s+(to|with)\b`},
	{CategoryComparisonSeeking, `\b(versus|vs\.?)\b`},
	{CategoryComparisonSeeking, `\binstead\b`},
})

// QuestionGuidance is the redirect shown for each forbidden framing.
var QuestionGuidance = map[Category]string{
	CategoryAdviceSeeking:     "This question seeks advice. Ask about your future self's internal experience instead.",
	CategoryPredictive:        "This question asks for predictions. Ask about one possible future experience.",
	CategoryLeading:           "This question seeks validation. Ask open questions about your future self's experience.",
	CategoryBinary:            "This question invites a yes or no. Explore a specific dimension of your future experience.",
	CategoryComparisonSeeking: "This dialogue explores ONE future. Ask about this path specifically.",
}
