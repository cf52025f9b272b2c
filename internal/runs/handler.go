package runs

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"docintel-backend/internal/shared/server/middleware"
	"docintel-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the orchestrator.
type Handler struct {
	Orc *Orchestrator
}

// NewHandler constructs a Handler.
func NewHandler(orc *Orchestrator) *Handler {
	return &Handler{Orc: orc}
}

// RegisterRoutes attaches run routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/runs", h.start)
	rg.GET("/runs/:id", h.status)
	rg.GET("/runs", h.list)
}

type startRunRequest struct {
	Query         string   `json:"query"`
	DatasetID     string   `json:"datasetId"`
	DocumentID    string   `json:"documentId"`
	DocumentTypes []string `json:"documentTypes"`
	IndustryTypes []string `json:"industryTypes"`
}

func (h *Handler) start(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req startRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	if strings.TrimSpace(req.Query) == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "query is required", nil)
		return
	}

	run, err := h.Orc.Start(c.Request.Context(), req.Query, userID, Options{
		DatasetID:     strings.TrimSpace(req.DatasetID),
		DocumentID:    strings.TrimSpace(req.DocumentID),
		DocumentTypes: req.DocumentTypes,
		IndustryTypes: req.IndustryTypes,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "query is required", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to start run", nil)
		}
		return
	}

	respond.JSON(c, http.StatusAccepted, toStartResponse(run))
}

func (h *Handler) status(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	run, err := h.Orc.Status(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "run not found", nil)
		case errors.Is(err, ErrForbidden):
			respond.Error(c, http.StatusForbidden, "forbidden", "run belongs to another user", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch run", nil)
		}
		return
	}

	respond.OK(c, toResponse(run, time.Now().UTC()))
}

func (h *Handler) list(c *gin.Context) {
	if isGuest, ok := c.Get("isGuest"); ok {
		if guest, ok2 := isGuest.(bool); ok2 && guest {
			respond.Error(c, http.StatusUnauthorized, "login_required", "Login required to view history", nil)
			return
		}
	}

	userID := middleware.UserIDFromContext(c)

	limit := 20
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if limit < 0 {
		limit = 0
	}
	if limit > 50 {
		limit = 50
	}

	list, err := h.Orc.List(c.Request.Context(), userID, limit)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list runs", nil)
		return
	}

	now := time.Now().UTC()
	out := make([]RunResponse, 0, len(list))
	for _, run := range list {
		out = append(out, toResponse(run, now))
	}

	respond.OK(c, gin.H{"runs": out, "total": len(out)})
}
