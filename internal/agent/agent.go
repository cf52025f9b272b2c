package agent

import "context"

// Agent is the external collaborator that performs the actual document
// analysis. The orchestrator treats it as an opaque capability that may
// fail; everything behind the endpoint is out of scope here.
type Agent interface {
	ProcessQuery(ctx context.Context, input ProcessInput) (Result, error)
}

// Message is one turn of prior conversation passed along for context.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ProcessInput carries the query and its filters to the agent service.
type ProcessInput struct {
	Query               string    `json:"query"`
	UserID              string    `json:"userId"`
	DocumentID          string    `json:"documentId,omitempty"`
	ConversationHistory []Message `json:"conversationHistory,omitempty"`
	DocumentTypes       []string  `json:"documentTypes,omitempty"`
	IndustryTypes       []string  `json:"industryTypes,omitempty"`
}

// Source is one retrieval hit cited by the agent.
type Source struct {
	DocumentID string  `json:"documentId"`
	Title      string  `json:"title"`
	Excerpt    string  `json:"excerpt"`
	Score      float64 `json:"score"`
}

// StepResult is one internal step the agent executed while answering.
type StepResult struct {
	Agent  string         `json:"agent"`
	Action string         `json:"action"`
	Output map[string]any `json:"output,omitempty"`
}

// Result is the agent's answer for a single query.
type Result struct {
	Response     string       `json:"response"`
	Sources      []Source     `json:"sources"`
	Confidence   float64      `json:"confidence"`
	AgentResults []StepResult `json:"agentResults"`
}
