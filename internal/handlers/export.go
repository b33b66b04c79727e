package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/artifig/tehnopal/internal/services"
)

// ExportHandler proxies the PDF and email delivery of a finished report to
// the opaque external endpoints.
type ExportHandler struct {
	log    *zap.Logger
	export *services.ExportService
}

// NewExportHandler creates an ExportHandler.
func NewExportHandler(log *zap.Logger, export *services.ExportService) *ExportHandler {
	return &ExportHandler{log: log, export: export}
}

// DownloadPDF returns the rendered report as a PDF attachment.
func (h *ExportHandler) DownloadPDF(c *gin.Context) {
	id := c.Param("id")
	var req services.ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "name and email are required", "")
		return
	}

	pdf, err := h.export.DownloadPDF(c.Request.Context(), id, req)
	if err != nil {
		h.log.Error("PDF export failed", zap.String("assessmentId", id), zap.Error(err))
		fail(c, http.StatusBadGateway, "PDF export failed, please try again", "")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="hindamise-tulemused.pdf"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// SendEmail delivers the report to the submitted address.
func (h *ExportHandler) SendEmail(c *gin.Context) {
	id := c.Param("id")
	var req services.ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "name and email are required", "")
		return
	}

	if err := h.export.SendEmail(c.Request.Context(), id, req); err != nil {
		h.log.Error("Email export failed", zap.String("assessmentId", id), zap.Error(err))
		fail(c, http.StatusBadGateway, "email delivery failed, please try again", "")
		return
	}
	ok(c, http.StatusOK, gin.H{"sent": true})
}
