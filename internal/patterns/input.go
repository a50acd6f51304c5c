package patterns

import "regexp"

// Forbidden input content categories. SelfHarm is declared first and must be
// checked first: it is the only category that carries a crisis-resource signal.
const (
	CategoryPromptInjection Category = "prompt_injection"
	CategorySelfHarm        Category = "self_harm"
	CategoryMedical         Category = "medical"
	CategoryLegal           Category = "legal"
	CategoryFinancial       Category = "financial"
	CategoryHarm            Category = "harm"
)

// ForbiddenContentOrder is the order in which content categories are checked.
var ForbiddenContentOrder = []Category{
	CategorySelfHarm,
	CategoryMedical,
	CategoryLegal,
	CategoryFinancial,
	CategoryHarm,
}

// PromptInjection detects role switches, instruction overrides and chat
// delimiter tokens.
var PromptInjection = newRegistry("prompt_injection", []entry{
	{CategoryPromptInjection, `\bignore\s+(all\s+)?(of\s+)?(the\s+|your\s+)?(previous|prior|above|earlier|preceding)\s+(instructions?|prompts?|rules|messages)`},
	{CategoryPromptInjection, `\bdisregard\s+(all\s+)?(the\s+|your\s+)?(previous|prior|above|earlier)?\s*(instructions?|prompts?|rules)`},
	{CategoryPromptInjection, `\bforget\s+(all\s+)?(your|the|previous|prior)\s+(instructions?|rules|prompts?)`},
	{CategoryPromptInjection, `\byou\s+are\s+now\b`},
	{CategoryPromptInjection, `\bpretend\s+(to\s+be|you\s+are)\b`},
	{CategoryPromptInjection, `\bact\s+as\s+(an?\s+|the\s+|my\s+)?(ai|assistant|system|developer|admin|unrestricted|different\s+model)\b`},
	{CategoryPromptInjection, `\b(new|override|overriding|updated)\s+(system\s+)?instructions?\b`},
	{CategoryPromptInjection, `\bsystem\s+prompt\b`},
	{CategoryPromptInjection, `\b(jailbreak|developer\s+mode|dan\s+mode)\b`},
	{CategoryPromptInjection, `<\|?\s*(im_start|im_end|system|endoftext)\s*\|?>`},
	{CategoryPromptInjection, `\[/?(inst|sys)\]`},
	{CategoryPromptInjection, `<<\s*/?sys\s*>>`},
	{CategoryPromptInjection, `(^|\n)\s*(system|assistant)\s*:`},
	{CategoryPromptInjection, `#{2,}\s*(system|instruction|response)\b`},
})

// ForbiddenContent detects decision topics the engine never reflects on.
var ForbiddenContent = newRegistry("forbidden_content", []entry{
	// self-harm
	{CategorySelfHarm, `\b(kill|hurt|harm|cut)\s+myself\b`},
	{CategorySelfHarm, `\bsuicid(e|al)\b`},
	{CategorySelfHarm, `\bend(ing)?\s+my\s+(own\s+)?life\b`},
	{CategorySelfHarm, `\bend\s+it\s+all\b`},
	{CategorySelfHarm, `\bself[-\s]?harm`},
	{CategorySelfHarm, `\b(don'?t|do\s+not)\s+want\s+to\s+(live|be\s+alive|exist)\b`},
	{CategorySelfHarm, `\bnot\s+(be\s+)?(here|around|alive)\s+anymore\b`},
	{CategorySelfHarm, `\boverdos(e|ing)\b`},

	// medical
	{CategoryMedical, `\b(diagnos(e|is|ed)|prognosis)\b`},
	{CategoryMedical, `\b(medication|prescription|dosage|antidepressants?)\b`},
	{CategoryMedical, `\b(stop|stopping|start|starting|quit|quitting)\s+(taking\s+)?(my\s+)?(meds|treatment|chemo(therapy)?|therapy\s+sessions)\b`},
	{CategoryMedical, `\b(surgery|chemotherapy|chemo)\b`},
	{CategoryMedical, `\b(symptoms?|tumou?r)\b`},
	{CategoryMedical, `\bsee\s+a\s+doctor\b`},

	// legal
	{CategoryLegal, `\b(lawsuit|sue|suing|litigation|criminal\s+charges?)\b`},
	{CategoryLegal, `\bplead(ing)?\s+guilty\b`},
	{CategoryLegal, `\blegal\s+(advice|action|case)\b`},
	{CategoryLegal, `\b(custody\s+battle|restraining\s+order|tax\s+evasion)\b`},
	{CategoryLegal, `\b(break|breaking|evade|evading)\s+the\s+law\b`},

	// financial
	{CategoryFinancial, `\b(crypto(currency)?|bitcoin|ethereum|forex|options\s+trading)\b`},
	{CategoryFinancial, `\b(buy(ing)?|sell(ing)?|trad(e|ing)|invest\w*\s+in)\s+(some\s+|more\s+|individual\s+|tech\s+)?(stocks?|shares|index\s+funds?|bonds)\b`},
	{CategoryFinancial, `\binvest(ing|ment)?\s+(all\s+)?(of\s+)?(my|our)?\s*(savings|money|inheritance|\$?\d+)\b`},
	{CategoryFinancial, `\brefinanc\w*\s+(my|our|the)\s+(mortgage|house|home|loans?)\b`},
	{CategoryFinancial, `\b(cash\s+out|withdraw\w*\s+from|borrow\w*\s+(from|against))\s+(my|our)\s+(401\s?\(?k\)?|retirement\s+account|pension)`},
	{CategoryFinancial, `\b(rebalanc\w*|liquidat\w*)\s+(my|our)\s+(investment\s+|stock\s+|retirement\s+)?portfolio\b`},
	{CategoryFinancial, `\b(take\s+out\s+a\s+loan|bankruptcy|day\s+trad\w*)\b`},

	// harm to others
	{CategoryHarm, `\b(kill|murder|poison|stab|shoot)\s+(him|her|them|someone|somebody|people|my\s+(wife|husband|partner|boss|ex|father|mother|dad|mom|brother|sister|neighbou?r|coworker|colleague|family))\b`},
	{CategoryHarm, `\b(hurt|harm|attack)\s+(him|her|them|someone|somebody|people)\b`},
	{CategoryHarm, `\b(revenge|get\s+back\s+at)\b`},
	{CategoryHarm, `\b(buy|buying|get|getting|acquire|acquiring|carry|carrying|use|using)\s+(a\s+|an\s+|some\s+)?(gun|weapon|firearm)s?\b`},
	{CategoryHarm, `\b(build|building|make|making|plant|planting)\s+(a\s+)?bombs?\b`},
	{CategoryHarm, `\b(stalk|stalking|threaten|threatening)\b`},
})

var (
	codeFence      = regexp.MustCompile("(```|~~~)[a-zA-Z0-9_-]*")
	chatRoleTokens = regexp.MustCompile(`(?i)(<\|?\s*(im_start|im_end|system|endoftext)\s*\|?>|\[/?(inst|sys)\]|<<\s*/?sys\s*>>|(^|\n)\s*(system|assistant|user)\s*:)`)
	angleBrackets  = regexp.MustCompile(`[<>]`)
	whitespaceRun  = regexp.MustCompile(`\s+`)
)

// StripCodeFences removes markdown code-fence delimiters.
func StripCodeFences(s string) string {
	return codeFence.ReplaceAllString(s, " ")
}

// StripChatRoleTokens removes chat-template role markers.
func StripChatRoleTokens(s string) string {
	return chatRoleTokens.ReplaceAllString(s, " ")
}

// StripAngleBrackets removes '<' and '>'.
func StripAngleBrackets(s string) string {
	return angleBrackets.ReplaceAllString(s, "")
}

// CollapseWhitespace folds runs of whitespace into single spaces.
func CollapseWhitespace(s string) string {
	return whitespaceRun.ReplaceAllString(s, " ")
}
