package classify

// QueryType is the primary classification dimension for a query.
type QueryType string

const (
	QueryTypeDocumentSummary  QueryType = "document_summary"
	QueryTypeRiskAnalysis     QueryType = "risk_analysis"
	QueryTypeClauseSearch     QueryType = "clause_search"
	QueryTypeComparison       QueryType = "comparison"
	QueryTypeSpecificQuestion QueryType = "specific_question"
	QueryTypeGeneralInfo      QueryType = "general_info"
	QueryTypeHelp             QueryType = "help"
	QueryTypeDocumentStats    QueryType = "document_stats"
	QueryTypeRecommendation   QueryType = "recommendation"
)

// Intent is the secondary classification dimension, independent of QueryType.
type Intent string

const (
	IntentFind      Intent = "find"
	IntentAnalyze   Intent = "analyze"
	IntentCompare   Intent = "compare"
	IntentExplain   Intent = "explain"
	IntentList      Intent = "list"
	IntentCount     Intent = "count"
	IntentSummarize Intent = "summarize"
	IntentRecommend Intent = "recommend"
)

// ResponseFormat hints how a downstream agent should shape its answer.
type ResponseFormat string

const (
	FormatNumberedList      ResponseFormat = "numbered_list"
	FormatCountWithDetails  ResponseFormat = "count_with_details"
	FormatStructuredSummary ResponseFormat = "structured_summary"
	FormatRiskAssessment    ResponseFormat = "risk_assessment"
	FormatConversational    ResponseFormat = "conversational"
)

// Context resources a downstream handler may need to answer the query.
const (
	ContextDocumentContent   = "document_content"
	ContextDocumentMetadata  = "document_metadata"
	ContextRiskScores        = "risk_scores"
	ContextFindings          = "findings"
	ContextMultipleDocuments = "multiple_documents"
)

// QueryAnalysis is the structured routing decision for a single query.
// It is produced fresh per call and never mutated afterwards.
type QueryAnalysis struct {
	QueryType        QueryType      `json:"queryType"`
	Intent           Intent         `json:"intent"`
	Entities         []string       `json:"entities"`
	Keywords         []string       `json:"keywords"`
	Confidence       float64        `json:"confidence"`
	RequiresDocument bool           `json:"requiresDocument"`
	SuggestedAgents  []string       `json:"suggestedAgents"`
	ResponseFormat   ResponseFormat `json:"responseFormat"`
	ContextNeeded    []string       `json:"contextNeeded"`
}
