package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/artifig/tehnopal/internal/scoring"
	"github.com/artifig/tehnopal/internal/store"
)

// ResultsHandler renders the scored report for a completed assessment.
type ResultsHandler struct {
	log     *zap.Logger
	store   *store.Store
	builder *scoring.Builder
}

// NewResultsHandler creates a ResultsHandler.
func NewResultsHandler(log *zap.Logger, st *store.Store, builder *scoring.Builder) *ResultsHandler {
	return &ResultsHandler{log: log, store: st, builder: builder}
}

// ShowResults loads the assessment, computes category and overall scores,
// and returns the report with recommendations, example solutions, their
// providers, and the chart options for the score graph.
func (h *ResultsHandler) ShowResults(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		fail(c, http.StatusBadRequest, "assessment id is required", setupRedirect)
		return
	}

	response, err := h.store.GetResponse(c.Request.Context(), id)
	if err != nil {
		h.log.Error("Failed to load assessment response", zap.String("id", id), zap.Error(err))
		fail(c, http.StatusBadGateway, errGenericStoreFailure, setupRedirect)
		return
	}
	if !response.IsActive {
		fail(c, http.StatusNotFound, "assessment not found", setupRedirect)
		return
	}

	report, err := h.builder.Build(c.Request.Context(), response)
	if err != nil {
		h.log.Error("Failed to build results report", zap.String("id", id), zap.Error(err))
		fail(c, http.StatusBadGateway, errGenericStoreFailure, setupRedirect)
		return
	}

	ok(c, http.StatusOK, gin.H{
		"report": report,
		"status": response.Status,
		"chart":  scoring.ChartOptions(report),
	})
}
