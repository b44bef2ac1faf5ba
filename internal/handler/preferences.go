package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	infralogger "github.com/jonesrussell/north-cloud/personalization/internal/logger"
	"github.com/jonesrussell/north-cloud/personalization/internal/personalization"
)

// PreferenceWriter is a preference store that accepts updates.
type PreferenceWriter interface {
	SetCategoryIDs(ctx context.Context, ids []string) error
}

// PreferencesHandler exposes the site's interest categories.
type PreferencesHandler struct {
	store  personalization.PreferenceStore
	logger infralogger.Logger
}

// NewPreferencesHandler creates a PreferencesHandler.
func NewPreferencesHandler(store personalization.PreferenceStore, log infralogger.Logger) *PreferencesHandler {
	return &PreferencesHandler{store: store, logger: log}
}

type preferencesRequest struct {
	CategoryIDs []string `binding:"required" json:"category_ids"`
}

// GetPreferences returns the configured interest category ids in order.
func (h *PreferencesHandler) GetPreferences(c *gin.Context) {
	ids, err := h.store.CategoryIDs(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to load preferences", infralogger.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "preferences unavailable"})
		return
	}
	if ids == nil {
		ids = []string{}
	}

	c.JSON(http.StatusOK, gin.H{"category_ids": ids})
}

// SetPreferences replaces the interest category ids. Stores loaded from the
// config file are read-only.
func (h *PreferencesHandler) SetPreferences(c *gin.Context) {
	writer, ok := h.store.(PreferenceWriter)
	if !ok {
		c.JSON(http.StatusConflict, gin.H{"error": "preferences are read-only for this preference source"})
		return
	}

	var req preferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := writer.SetCategoryIDs(c.Request.Context(), req.CategoryIDs); err != nil {
		h.logger.Error("Failed to store preferences", infralogger.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "preferences not updated"})
		return
	}

	h.logger.Info("Site preferences updated", infralogger.Strings("category_ids", req.CategoryIDs))
	c.Status(http.StatusNoContent)
}
