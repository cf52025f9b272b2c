package classify

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"docintel-backend/internal/shared/metrics"
	"docintel-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the classifier.
type Handler struct {
	Classifier *Classifier
}

// NewHandler constructs a Handler.
func NewHandler(classifier *Classifier) *Handler {
	return &Handler{Classifier: classifier}
}

// RegisterRoutes attaches classification routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/classify", h.classify)
}

type classifyRequest struct {
	Query   string         `json:"query"`
	Context map[string]any `json:"context"`
}

func (h *Handler) classify(c *gin.Context) {
	var req classifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "query is required", nil)
		return
	}

	analysis := h.Classifier.Classify(req.Query, req.Context)
	metrics.IncClassifyRequest()
	metrics.IncClassifyQueryType(string(analysis.QueryType))

	respond.OK(c, analysis)
}
