package classify

import (
	"regexp"
	"strings"
)

const maxKeywords = 10

var (
	tokenPattern  = regexp.MustCompile(`[a-z0-9']+`)
	entityRegexes = compileEntityPatterns()
)

func compileEntityPatterns() []struct {
	category string
	patterns []*regexp.Regexp
} {
	out := make([]struct {
		category string
		patterns []*regexp.Regexp
	}, 0, len(entityPatterns))
	for _, ep := range entityPatterns {
		compiled := make([]*regexp.Regexp, 0, len(ep.Patterns))
		for _, src := range ep.Patterns {
			compiled = append(compiled, regexp.MustCompile(`(?i)`+src))
		}
		out = append(out, struct {
			category string
			patterns []*regexp.Regexp
		}{category: ep.Category, patterns: compiled})
	}
	return out
}

// Classifier routes free-text queries to structured intents. It holds only
// compiled pattern tables and is safe for concurrent use.
type Classifier struct {
	types   *Matcher
	intents *Matcher
}

// New constructs a Classifier from the package pattern tables.
func New() *Classifier {
	typeTable := make(map[string][]string, len(queryTypePatterns))
	typeOrder := make([]string, 0, len(queryTypePriority))
	for _, qt := range queryTypePriority {
		typeOrder = append(typeOrder, string(qt))
		typeTable[string(qt)] = queryTypePatterns[qt]
	}
	intentTable := make(map[string][]string, len(intentPatterns))
	intentOrder := make([]string, 0, len(intentPriority))
	for _, in := range intentPriority {
		intentOrder = append(intentOrder, string(in))
		intentTable[string(in)] = intentPatterns[in]
	}
	return &Classifier{
		types:   newMatcher(typeOrder, typeTable),
		intents: newMatcher(intentOrder, intentTable),
	}
}

// Classify produces a complete QueryAnalysis for the query. It never fails:
// every branch degrades to a default, so routing can never block a
// conversation. The context map is accepted for callers that carry session
// state; classification itself depends only on the query text.
func (c *Classifier) Classify(query string, context map[string]any) QueryAnalysis {
	_ = context
	normalized := strings.ToLower(strings.TrimSpace(query))

	queryType, typeHits := c.classifyType(normalized)
	intent, intentHits := c.classifyIntent(normalized)

	analysis := QueryAnalysis{
		QueryType:       queryType,
		Intent:          intent,
		Entities:        extractEntities(normalized),
		Keywords:        extractKeywords(normalized),
		Confidence:      confidence(typeHits, intentHits),
		SuggestedAgents: suggestedAgents(queryType),
		ResponseFormat:  responseFormat(queryType, intent),
	}
	analysis.RequiresDocument = requiresDocument(queryType, normalized)
	analysis.ContextNeeded = contextNeeded(queryType, analysis.Entities)
	return analysis
}

func (c *Classifier) classifyType(query string) (QueryType, int) {
	label, hits := c.types.Best(query)
	if label != "" {
		return QueryType(label), hits
	}
	for _, word := range interrogatives {
		if containsWord(query, word) {
			return QueryTypeSpecificQuestion, 0
		}
	}
	return QueryTypeGeneralInfo, 0
}

func (c *Classifier) classifyIntent(query string) (Intent, int) {
	label, hits := c.intents.Best(query)
	if label != "" {
		return Intent(label), hits
	}
	switch {
	case strings.HasPrefix(query, "what"), strings.HasPrefix(query, "which"):
		return IntentExplain, 0
	case strings.HasPrefix(query, "how many"), strings.HasPrefix(query, "count"):
		return IntentCount, 0
	case strings.HasPrefix(query, "find"):
		return IntentFind, 0
	default:
		return IntentExplain, 0
	}
}

func extractEntities(query string) []string {
	var entities []string
	for _, group := range entityRegexes {
		for _, re := range group.patterns {
			for _, match := range re.FindAllString(query, -1) {
				entities = append(entities, group.category+":"+match)
			}
		}
	}
	return entities
}

func extractKeywords(query string) []string {
	tokens := tokenPattern.FindAllString(query, -1)
	keywords := make([]string, 0, maxKeywords)
	for _, token := range tokens {
		if len(token) <= 2 || stopWords[token] {
			continue
		}
		keywords = append(keywords, token)
		if len(keywords) == maxKeywords {
			break
		}
	}
	return keywords
}

// confidence never drops below 0.5; the floor marks a default guess
// rather than certainty.
func confidence(typeHits, intentHits int) float64 {
	score := 0.5
	typeBoost := 0.2 * float64(typeHits)
	if typeBoost > 0.4 {
		typeBoost = 0.4
	}
	intentBoost := 0.1 * float64(intentHits)
	if intentBoost > 0.2 {
		intentBoost = 0.2
	}
	score += typeBoost + intentBoost
	if score > 1.0 {
		score = 1.0
	}
	return score
}

func requiresDocument(queryType QueryType, query string) bool {
	if documentRequiredTypes[queryType] {
		return true
	}
	for _, phrase := range documentPhrases {
		if strings.Contains(query, phrase) {
			return true
		}
	}
	return false
}

func suggestedAgents(queryType QueryType) []string {
	if agents, ok := agentRouting[queryType]; ok {
		return append([]string(nil), agents...)
	}
	return append([]string(nil), defaultAgents...)
}

func responseFormat(queryType QueryType, intent Intent) ResponseFormat {
	switch intent {
	case IntentList:
		return FormatNumberedList
	case IntentCount:
		return FormatCountWithDetails
	}
	switch queryType {
	case QueryTypeDocumentSummary:
		return FormatStructuredSummary
	case QueryTypeRiskAnalysis:
		return FormatRiskAssessment
	default:
		return FormatConversational
	}
}

func contextNeeded(queryType QueryType, entities []string) []string {
	var needed []string
	switch queryType {
	case QueryTypeDocumentSummary, QueryTypeRiskAnalysis, QueryTypeClauseSearch:
		needed = append(needed, ContextDocumentContent, ContextDocumentMetadata)
	}
	for _, entity := range entities {
		if strings.Contains(entity, "risk") {
			needed = append(needed, ContextRiskScores, ContextFindings)
			break
		}
	}
	if queryType == QueryTypeComparison {
		needed = append(needed, ContextMultipleDocuments)
	}
	return needed
}

func containsWord(query, word string) bool {
	idx := strings.Index(query, word)
	for idx >= 0 {
		before := idx == 0 || !isWordChar(query[idx-1])
		afterIdx := idx + len(word)
		after := afterIdx >= len(query) || !isWordChar(query[afterIdx])
		if before && after {
			return true
		}
		next := strings.Index(query[idx+1:], word)
		if next < 0 {
			return false
		}
		idx = idx + 1 + next
	}
	return false
}

func isWordChar(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9' || b == '_'
}
