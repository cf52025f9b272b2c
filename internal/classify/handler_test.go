package classify_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"docintel-backend/internal/bootstrap"
	"docintel-backend/internal/shared/config"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Config{
		Port:            "0",
		CORSAllowOrigin: []string{"http://localhost:5173"},
		LocalStoreDir:   t.TempDir(),
		Env:             "dev",
		ObjectStoreType: "local",
	}

	app, err := bootstrap.Build(cfg)
	if err != nil {
		t.Fatalf("bootstrap build: %v", err)
	}
	return app.Router
}

func TestClassifyEndpoint(t *testing.T) {
	router := newTestRouter(t)

	body := `{"query": "summarize this document"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/classify", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Guest-Id", "test-guest")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var analysis struct {
		QueryType        string   `json:"queryType"`
		Intent           string   `json:"intent"`
		Confidence       float64  `json:"confidence"`
		RequiresDocument bool     `json:"requiresDocument"`
		SuggestedAgents  []string `json:"suggestedAgents"`
		ResponseFormat   string   `json:"responseFormat"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&analysis); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if analysis.QueryType != "document_summary" {
		t.Fatalf("expected queryType document_summary, got %s", analysis.QueryType)
	}
	if analysis.Intent != "summarize" {
		t.Fatalf("expected intent summarize, got %s", analysis.Intent)
	}
	if analysis.Confidence < 0.5 || analysis.Confidence > 1.0 {
		t.Fatalf("confidence out of range: %v", analysis.Confidence)
	}
	if !analysis.RequiresDocument {
		t.Fatal("expected requiresDocument")
	}
	if len(analysis.SuggestedAgents) == 0 {
		t.Fatal("expected suggested agents")
	}
	if analysis.ResponseFormat != "structured_summary" {
		t.Fatalf("expected responseFormat structured_summary, got %s", analysis.ResponseFormat)
	}
}

func TestClassifyEndpoint_EmptyQuery(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/classify", strings.NewReader(`{"query": "   "}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Guest-Id", "test-guest")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}

	var errResp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if errResp.Error.Code != "validation_error" {
		t.Fatalf("expected validation_error, got %s", errResp.Error.Code)
	}
}

func TestClassifyEndpoint_InvalidBody(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/classify", strings.NewReader(`{`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Guest-Id", "test-guest")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}
