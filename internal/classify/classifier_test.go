package classify

import (
	"reflect"
	"strings"
	"testing"
)

func TestClassify_DocumentSummary(t *testing.T) {
	c := New()
	got := c.Classify("summarize this document", nil)

	if got.QueryType != QueryTypeDocumentSummary {
		t.Fatalf("queryType = %q, want %q", got.QueryType, QueryTypeDocumentSummary)
	}
	if got.Intent != IntentSummarize {
		t.Fatalf("intent = %q, want %q", got.Intent, IntentSummarize)
	}
	if got.Confidence != 0.8 {
		t.Fatalf("confidence = %v, want 0.8", got.Confidence)
	}
	if !got.RequiresDocument {
		t.Fatal("expected requiresDocument for a summary query")
	}
	if got.ResponseFormat != FormatStructuredSummary {
		t.Fatalf("responseFormat = %q, want %q", got.ResponseFormat, FormatStructuredSummary)
	}
	wantAgents := []string{"summary_agent", "document_agent"}
	if !reflect.DeepEqual(got.SuggestedAgents, wantAgents) {
		t.Fatalf("suggestedAgents = %v, want %v", got.SuggestedAgents, wantAgents)
	}
	wantCtx := []string{ContextDocumentContent, ContextDocumentMetadata}
	if !reflect.DeepEqual(got.ContextNeeded, wantCtx) {
		t.Fatalf("contextNeeded = %v, want %v", got.ContextNeeded, wantCtx)
	}
	wantKeywords := []string{"summarize", "document"}
	if !reflect.DeepEqual(got.Keywords, wantKeywords) {
		t.Fatalf("keywords = %v, want %v", got.Keywords, wantKeywords)
	}
}

func TestClassify_EntityOrderFollowsCategoryOrder(t *testing.T) {
	c := New()
	got := c.Classify("summarize the 3 contracts and flag any high-risk payment clause", nil)

	want := []string{
		"numbers:3",
		"document_types:contracts",
		"risk_levels:high-risk",
		"clause_types:payment",
	}
	if !reflect.DeepEqual(got.Entities, want) {
		t.Fatalf("entities = %v, want %v", got.Entities, want)
	}

	// summary, risk and clause all score one hit here; the declared order
	// of the type table breaks the tie.
	if got.QueryType != QueryTypeDocumentSummary {
		t.Fatalf("queryType = %q, want %q", got.QueryType, QueryTypeDocumentSummary)
	}
}

func TestClassify_RiskEntityPullsRiskContext(t *testing.T) {
	c := New()
	got := c.Classify("summarize the 3 contracts and flag any high-risk payment clause", nil)

	wantCtx := []string{
		ContextDocumentContent,
		ContextDocumentMetadata,
		ContextRiskScores,
		ContextFindings,
	}
	if !reflect.DeepEqual(got.ContextNeeded, wantCtx) {
		t.Fatalf("contextNeeded = %v, want %v", got.ContextNeeded, wantCtx)
	}
}

func TestClassify_GibberishDegradesToDefaults(t *testing.T) {
	c := New()
	got := c.Classify("xyz abc qqq", nil)

	if got.QueryType != QueryTypeGeneralInfo {
		t.Fatalf("queryType = %q, want %q", got.QueryType, QueryTypeGeneralInfo)
	}
	if got.Intent != IntentExplain {
		t.Fatalf("intent = %q, want %q", got.Intent, IntentExplain)
	}
	if got.Confidence != 0.5 {
		t.Fatalf("confidence = %v, want floor 0.5", got.Confidence)
	}
	if len(got.Entities) != 0 {
		t.Fatalf("entities = %v, want none", got.Entities)
	}
	if got.RequiresDocument {
		t.Fatal("gibberish should not require a document")
	}
	if got.ResponseFormat != FormatConversational {
		t.Fatalf("responseFormat = %q, want %q", got.ResponseFormat, FormatConversational)
	}
	if !reflect.DeepEqual(got.SuggestedAgents, defaultAgents) {
		t.Fatalf("suggestedAgents = %v, want defaults %v", got.SuggestedAgents, defaultAgents)
	}
}

func TestClassify_InterrogativeFallback(t *testing.T) {
	c := New()
	got := c.Classify("why is the sky blue", nil)

	if got.QueryType != QueryTypeSpecificQuestion {
		t.Fatalf("queryType = %q, want %q", got.QueryType, QueryTypeSpecificQuestion)
	}
	if got.Confidence != 0.5 {
		t.Fatalf("confidence = %v, want floor 0.5 for fallback", got.Confidence)
	}
}

func TestClassify_CountQuery(t *testing.T) {
	c := New()
	got := c.Classify("how many contracts do we have", nil)

	if got.QueryType != QueryTypeDocumentStats {
		t.Fatalf("queryType = %q, want %q", got.QueryType, QueryTypeDocumentStats)
	}
	if got.Intent != IntentCount {
		t.Fatalf("intent = %q, want %q", got.Intent, IntentCount)
	}
	if got.ResponseFormat != FormatCountWithDetails {
		t.Fatalf("responseFormat = %q, want %q", got.ResponseFormat, FormatCountWithDetails)
	}
	if !got.RequiresDocument {
		t.Fatal("stats queries require documents in scope")
	}
}

func TestClassify_ListIntentWinsFormat(t *testing.T) {
	c := New()
	got := c.Classify("list all payment clauses in the agreement", nil)

	if got.QueryType != QueryTypeClauseSearch {
		t.Fatalf("queryType = %q, want %q", got.QueryType, QueryTypeClauseSearch)
	}
	if got.Intent != IntentList {
		t.Fatalf("intent = %q, want %q", got.Intent, IntentList)
	}
	// Intent-driven formats take precedence over the type-driven ones.
	if got.ResponseFormat != FormatNumberedList {
		t.Fatalf("responseFormat = %q, want %q", got.ResponseFormat, FormatNumberedList)
	}
}

func TestClassify_ComparisonNeedsMultipleDocuments(t *testing.T) {
	c := New()
	got := c.Classify("compare this contract versus the old agreement", nil)

	if got.QueryType != QueryTypeComparison {
		t.Fatalf("queryType = %q, want %q", got.QueryType, QueryTypeComparison)
	}
	if got.Intent != IntentCompare {
		t.Fatalf("intent = %q, want %q", got.Intent, IntentCompare)
	}
	wantCtx := []string{ContextMultipleDocuments}
	if !reflect.DeepEqual(got.ContextNeeded, wantCtx) {
		t.Fatalf("contextNeeded = %v, want %v", got.ContextNeeded, wantCtx)
	}
}

func TestClassify_ConfidenceClampsAtOne(t *testing.T) {
	c := New()
	got := c.Classify("summarize and give an overview of the key points and main points", nil)

	if got.Confidence != 1.0 {
		t.Fatalf("confidence = %v, want clamp at 1.0", got.Confidence)
	}
}

func TestClassify_ConfidenceBounds(t *testing.T) {
	c := New()
	queries := []string{
		"summarize this document",
		"what are the risks in this document?",
		"find the termination clause",
		"compare these two agreements",
		"help",
		"how many invoices are overdue",
		"should we renew the lease",
		"tell me about force majeure",
		"z",
	}
	for _, q := range queries {
		got := c.Classify(q, nil)
		if got.Confidence < 0.5 || got.Confidence > 1.0 {
			t.Fatalf("confidence for %q = %v, want within [0.5, 1.0]", q, got.Confidence)
		}
		if len(got.SuggestedAgents) == 0 {
			t.Fatalf("no suggested agents for %q", q)
		}
	}
}

func TestClassify_Idempotent(t *testing.T) {
	c := New()
	const query = "What are the high-risk clauses in my contract?"

	first := c.Classify(query, nil)
	second := c.Classify(query, map[string]any{"sessionId": "abc"})
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("repeated classification diverged:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestClassify_KeywordCapAndStopwords(t *testing.T) {
	c := New()
	query := "alpha bravo charlie delta echo foxtrot golf hotel india juliet kilo lima"
	got := c.Classify(query, nil)

	if len(got.Keywords) != maxKeywords {
		t.Fatalf("keywords = %d, want cap %d", len(got.Keywords), maxKeywords)
	}
	for _, kw := range got.Keywords {
		if len(kw) <= 2 {
			t.Fatalf("short token %q leaked into keywords", kw)
		}
		if stopWords[kw] {
			t.Fatalf("stopword %q leaked into keywords", kw)
		}
	}

	got = c.Classify("is the and for you it", nil)
	if len(got.Keywords) != 0 {
		t.Fatalf("keywords = %v, want none for stopword-only query", got.Keywords)
	}
}

func TestClassify_MixedCaseNormalized(t *testing.T) {
	c := New()
	upper := c.Classify("  SUMMARIZE THIS DOCUMENT  ", nil)
	lower := c.Classify("summarize this document", nil)
	if !reflect.DeepEqual(upper, lower) {
		t.Fatalf("case and whitespace should not change the analysis:\nupper: %+v\nlower: %+v", upper, lower)
	}
}

func TestClassify_LegalTermEntities(t *testing.T) {
	c := New()
	got := c.Classify("does the force majeure section cover breach of warranty", nil)

	for _, want := range []string{"legal_terms:force majeure", "legal_terms:breach", "clause_types:warranty"} {
		found := false
		for _, e := range got.Entities {
			if e == want {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("entities %v missing %q", got.Entities, want)
		}
	}
}

func TestClassify_RoutingTable(t *testing.T) {
	cases := []struct {
		query string
		want  []string
	}{
		{"summarize this document", []string{"summary_agent", "document_agent"}},
		{"what are the red flags here", []string{"risk_agent", "compliance_agent"}},
		{"find the termination clause", []string{"clause_agent", "search_agent"}},
		{"compare these two reports", []string{"comparison_agent", "document_agent"}},
		{"how many invoices are there", []string{"stats_agent", "document_agent"}},
		{"should we renew, any recommendations", []string{"recommendation_agent", "risk_agent"}},
	}
	c := New()
	for _, tc := range cases {
		got := c.Classify(tc.query, nil)
		if !reflect.DeepEqual(got.SuggestedAgents, tc.want) {
			t.Fatalf("agents for %q = %v, want %v", tc.query, got.SuggestedAgents, tc.want)
		}
	}
}

func TestClassify_DocumentPhraseForcesRequirement(t *testing.T) {
	c := New()
	got := c.Classify("tell me about this file", nil)

	if got.QueryType != QueryTypeGeneralInfo {
		t.Fatalf("queryType = %q, want %q", got.QueryType, QueryTypeGeneralInfo)
	}
	if !got.RequiresDocument {
		t.Fatal("phrase \"this file\" should force requiresDocument")
	}
}

func TestClassify_ReturnedSlicesAreCopies(t *testing.T) {
	c := New()
	got := c.Classify("summarize this document", nil)
	if len(got.SuggestedAgents) == 0 {
		t.Fatal("expected suggested agents")
	}
	got.SuggestedAgents[0] = "mutated"

	again := c.Classify("summarize this document", nil)
	if again.SuggestedAgents[0] != "summary_agent" {
		t.Fatalf("routing table mutated through returned slice: %v", again.SuggestedAgents)
	}
}

func TestClassify_KeywordsComeFromQuery(t *testing.T) {
	c := New()
	got := c.Classify("locate the indemnification provisions", nil)
	for _, kw := range got.Keywords {
		if !strings.Contains("locate the indemnification provisions", kw) {
			t.Fatalf("keyword %q not present in query", kw)
		}
	}
}
