package patterns

// Output framing categories that a generated reflection must never contain.
const (
	CategoryPrescriptive Category = "prescriptive"
	CategoryCertainty    Category = "certainty"
	CategoryJudgment     Category = "judgment"
	CategoryAIDisclosure Category = "ai_disclosure"
	CategoryHedge        Category = "hedge"
)

// ForbiddenOutput detects advice, certainty, verdicts and assistant
// self-reference in generated text.
var ForbiddenOutput = newRegistry("forbidden_output", []entry{
	{CategoryPrescriptive, `\byou\s+(should|must|need\s+to|ought\s+to)\b`},
	{CategoryPrescriptive, `\bi\s+(would\s+)?(recommend|suggest|advise)\b`},
	{CategoryPrescriptive, `\bmy\s+advice\b`},

	{CategoryCertainty, `\byou\s+will\s+(definitely|certainly|surely|absolutely)\b`},
	{CategoryCertainty, `\bguarantee(d|s)?\b`},
	{CategoryCertainty, `\bwithout\s+(a|any)\s+doubt\b`},
	{CategoryCertainty, `\bdefinitely\s+will\b`},

	{CategoryJudgment, `\b(the\s+)?(right|wrong|correct|best|worst)\s+(choice|decision)\b`},
	{CategoryJudgment, `\b(big|huge|terrible)\s+mistake\b`},

	{CategoryAIDisclosure, `\bas\s+an\s+ai\b`},
	{CategoryAIDisclosure, `\blanguage\s+model\b`},
	{CategoryAIDisclosure, `\bi\s+(cannot|can'?t|am\s+unable\s+to)\s+(help|provide|answer|predict)\b`},
})

// HedgingMarkers are the markers of which at least one must appear in a
// generated reflection, keeping it framed as one possible future.
var HedgingMarkers = newRegistry("hedging_markers", []entry{
	{CategoryHedge, `\bmight\b`},
	{CategoryHedge, `\bmay\b`},
	{CategoryHedge, `\bperhaps\b`},
	{CategoryHedge, `\bpossibly\b`},
	{CategoryHedge, `\bcould\b`},
	{CategoryHedge, `\bmaybe\b`},
	{CategoryHedge, `\bone\s+possible\b`},
	{CategoryHedge, `\bin\s+one\s+version\b`},
	{CategoryHedge, `\bsometimes\b`},
})
