package classify

// Pattern tables are plain data so they stay auditable independent of the
// scoring algorithm. Scores are match counts, not boolean presence, so
// overlapping patterns double-count.

// queryTypePriority fixes the tie-break order for type scoring. The first
// declared type wins when totals are equal.
var queryTypePriority = []QueryType{
	QueryTypeDocumentSummary,
	QueryTypeRiskAnalysis,
	QueryTypeClauseSearch,
	QueryTypeComparison,
	QueryTypeSpecificQuestion,
	QueryTypeGeneralInfo,
	QueryTypeHelp,
	QueryTypeDocumentStats,
	QueryTypeRecommendation,
}

var queryTypePatterns = map[QueryType][]string{
	QueryTypeDocumentSummary: {
		`\bsummar(?:y|ize|ise|ized|ised)\b`,
		`\boverview\b`,
		`\bmain points?\b`,
		`\bkey (?:points?|terms?|takeaways?)\b`,
		`\bbrief(?:ly)?\b.*\bdocument\b`,
	},
	QueryTypeRiskAnalysis: {
		`\brisk(?:s|y|iest)?\b`,
		`\bliabilit(?:y|ies)\b`,
		`\bexposure\b`,
		`\bred flags?\b`,
		`\bdanger(?:ous)?\b`,
		`\bproblematic\b`,
	},
	QueryTypeClauseSearch: {
		`\bclauses?\b`,
		`\bprovisions?\b`,
		`\bsections?\b`,
		`\bstipulations?\b`,
		`\bterms? (?:about|regarding|on|for)\b`,
	},
	QueryTypeComparison: {
		`\bcompar(?:e|ison|ed|ing)\b`,
		`\bversus\b`,
		`\bvs\.?\b`,
		`\bdifferences? between\b`,
		`\bwhich (?:one )?is (?:better|safer|stricter)\b`,
	},
	QueryTypeSpecificQuestion: {
		`^(?:what|how|why|when|where|who|which)\b.*\?`,
		`\bdoes (?:this|the|my)\b`,
		`\bis there\b`,
	},
	QueryTypeGeneralInfo: {
		`\btell me about\b`,
		`\bwhat is an?\b`,
		`\bdefin(?:e|ition)\b`,
	},
	QueryTypeHelp: {
		`\bhelp\b`,
		`\bhow (?:do|can) i\b`,
		`\bwhat can you do\b`,
		`\bgetting started\b`,
	},
	QueryTypeDocumentStats: {
		`\bhow many\b`,
		`\bcount\b`,
		`\bnumber of\b`,
		`\bstat(?:s|istics)\b`,
		`\btotal\b`,
	},
	QueryTypeRecommendation: {
		`\brecommend(?:ation)?s?\b`,
		`\bsuggest(?:ion)?s?\b`,
		`\bshould (?:i|we)\b`,
		`\badvi[cs]e\b`,
		`\bimprove(?:ments?)?\b`,
	},
}

// interrogatives drive the zero-score type fallback.
var interrogatives = []string{"what", "how", "why", "when", "where"}

var intentPriority = []Intent{
	IntentFind,
	IntentAnalyze,
	IntentCompare,
	IntentExplain,
	IntentList,
	IntentCount,
	IntentSummarize,
	IntentRecommend,
}

var intentPatterns = map[Intent][]string{
	IntentFind: {
		`\bfind\b`,
		`\bsearch\b`,
		`\blocate\b`,
		`\blook(?:ing)? for\b`,
		`\bshow me\b`,
	},
	IntentAnalyze: {
		`\banaly[zs]e\b`,
		`\breview\b`,
		`\bassess\b`,
		`\bevaluate\b`,
		`\bexamine\b`,
	},
	IntentCompare: {
		`\bcompar(?:e|ing)\b`,
		`\bversus\b`,
		`\bvs\.?\b`,
		`\bdifferences?\b`,
	},
	IntentExplain: {
		`\bexplain\b`,
		`\bwhat (?:is|are|does)\b`,
		`\bmean(?:s|ing)?\b`,
		`\bclarify\b`,
	},
	IntentList: {
		`\blist\b`,
		`\bshow all\b`,
		`\bgive me all\b`,
		`\benumerate\b`,
	},
	IntentCount: {
		`\bhow many\b`,
		`\bcount\b`,
		`\bnumber of\b`,
	},
	IntentSummarize: {
		`\bsummar(?:y|ize|ise)\b`,
		`\boverview\b`,
		`\btl;?dr\b`,
	},
	IntentRecommend: {
		`\brecommend\b`,
		`\bsuggest\b`,
		`\bshould\b`,
		`\badvi[cs]e\b`,
	},
}

// entityPatterns is an ordered list: extraction walks categories in this
// order, then matches in text order within each category.
var entityPatterns = []entityPattern{
	{Category: "numbers", Patterns: []string{
		`\b\d+(?:\.\d+)?\b`,
	}},
	{Category: "document_types", Patterns: []string{
		`\b(?:contracts?|agreements?|policies|policy|leases?|amendments?|reports?|invoices?|ndas?)\b`,
	}},
	{Category: "risk_levels", Patterns: []string{
		`\b(?:high|medium|low|critical)[-\s]risk\b`,
		`\b(?:high|medium|low|critical) severity\b`,
	}},
	{Category: "clause_types", Patterns: []string{
		`\b(?:payment|termination|confidentiality|indemnification|indemnity|liability|warranty|renewal|arbitration|non[-\s]compete|exclusivity|assignment)\b`,
	}},
	{Category: "legal_terms", Patterns: []string{
		`\b(?:force majeure|governing law|jurisdiction|breach|damages|waiver|severability|injunction|consideration)\b`,
	}},
}

type entityPattern struct {
	Category string
	Patterns []string
}

// documentRequiredTypes always need a document in scope.
var documentRequiredTypes = map[QueryType]bool{
	QueryTypeDocumentSummary: true,
	QueryTypeRiskAnalysis:    true,
	QueryTypeClauseSearch:    true,
	QueryTypeDocumentStats:   true,
	QueryTypeRecommendation:  true,
}

// documentPhrases force RequiresDocument regardless of type.
var documentPhrases = []string{
	"this document",
	"my contract",
	"the agreement",
	"this file",
}

// agentRouting maps a query type to its ordered handler chain. Types not
// listed fall back to defaultAgents.
var agentRouting = map[QueryType][]string{
	QueryTypeDocumentSummary: {"summary_agent", "document_agent"},
	QueryTypeRiskAnalysis:    {"risk_agent", "compliance_agent"},
	QueryTypeClauseSearch:    {"clause_agent", "search_agent"},
	QueryTypeComparison:      {"comparison_agent", "document_agent"},
	QueryTypeDocumentStats:   {"stats_agent", "document_agent"},
	QueryTypeRecommendation:  {"recommendation_agent", "risk_agent"},
}

var defaultAgents = []string{"general_agent", "document_agent"}

var stopWords = map[string]bool{
	"the": true, "and": true, "are": true, "was": true, "were": true,
	"been": true, "being": true, "have": true, "has": true, "had": true,
	"does": true, "did": true, "will": true, "would": true, "could": true,
	"should": true, "may": true, "might": true, "must": true, "shall": true,
	"can": true, "this": true, "that": true, "these": true, "those": true,
	"you": true, "your": true, "our": true, "their": true, "his": true,
	"her": true, "its": true, "they": true, "them": true, "with": true,
	"from": true, "for": true, "about": true, "into": true, "through": true,
	"during": true, "before": true, "after": true, "between": true,
	"out": true, "off": true, "over": true, "under": true, "again": true,
	"then": true, "once": true, "here": true, "there": true, "all": true,
	"any": true, "both": true, "each": true, "few": true, "more": true,
	"most": true, "other": true, "some": true, "such": true, "not": true,
	"only": true, "own": true, "same": true, "than": true, "too": true,
	"very": true, "just": true, "what": true, "which": true, "who": true,
	"whom": true, "when": true, "where": true, "why": true, "how": true,
	"please": true,
}
