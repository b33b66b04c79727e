package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/artifig/tehnopal/internal/store"
)

// ReferenceHandler serves the read-only reference data the setup step
// needs.
type ReferenceHandler struct {
	log   *zap.Logger
	store *store.Store
}

// NewReferenceHandler creates a ReferenceHandler.
func NewReferenceHandler(log *zap.Logger, st *store.Store) *ReferenceHandler {
	return &ReferenceHandler{log: log, store: st}
}

// ListCompanyTypes returns the active company types the user chooses from.
func (h *ReferenceHandler) ListCompanyTypes(c *gin.Context) {
	types, err := h.store.ActiveCompanyTypes(c.Request.Context())
	if err != nil {
		h.log.Error("Failed to list company types", zap.Error(err))
		fail(c, http.StatusBadGateway, errGenericStoreFailure, "")
		return
	}
	ok(c, http.StatusOK, gin.H{"companyTypes": types})
}
