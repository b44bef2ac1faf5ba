// Package handler implements the HTTP handlers of the personalization service.
package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonesrussell/north-cloud/personalization/internal/domain"
	infralogger "github.com/jonesrussell/north-cloud/personalization/internal/logger"
	"github.com/jonesrussell/north-cloud/personalization/internal/middleware"
	"github.com/jonesrussell/north-cloud/personalization/internal/personalization"
	"github.com/jonesrussell/north-cloud/personalization/internal/session"
)

// maxSessionIDLength bounds the :id path parameter.
const maxSessionIDLength = 128

var errInvalidSessionID = errors.New("invalid session id")

// Processor runs the popular category pipeline for one session.
type Processor interface {
	ProcessClickStream(ctx context.Context, sess personalization.Session) personalization.Outcome
}

// SessionHandler serves clickstream ingest and personalization endpoints.
type SessionHandler struct {
	store     *session.Store
	processor Processor
	logger    infralogger.Logger
}

// NewSessionHandler creates a SessionHandler with the given dependencies.
func NewSessionHandler(store *session.Store, processor Processor, log infralogger.Logger) *SessionHandler {
	return &SessionHandler{
		store:     store,
		processor: processor,
		logger:    log,
	}
}

type clickRequest struct {
	PageID string `binding:"required" json:"page_id"`
	Query  string `json:"query"`
}

type trackingRequest struct {
	Enabled *bool `binding:"required" json:"enabled"`
}

// RecordClick appends a page view to the session clickstream. Crawler traffic
// is acknowledged without being stored.
func (h *SessionHandler) RecordClick(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	var req clickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if middleware.IsBot(c) {
		c.Status(http.StatusAccepted)
		return
	}

	click := domain.ClickEvent{
		PageID:    req.PageID,
		Query:     req.Query,
		ClickedAt: time.Now().UTC(),
	}
	if err := h.store.AppendClick(c.Request.Context(), id, click); err != nil {
		h.logger.Error("Failed to record click",
			infralogger.String("session_id", id),
			infralogger.Error(err),
		)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "click not recorded"})
		return
	}

	c.Status(http.StatusAccepted)
}

// SetTracking opts the session in or out of clickstream tracking.
func (h *SessionHandler) SetTracking(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	var req trackingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.store.SetTracking(c.Request.Context(), id, *req.Enabled); err != nil {
		h.logger.Error("Failed to set tracking",
			infralogger.String("session_id", id),
			infralogger.Error(err),
		)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "tracking not updated"})
		return
	}

	c.Status(http.StatusNoContent)
}

// ProcessClickStream recomputes the session's popular category. Pipeline
// failures are reported in the body with status 200 so storefront requests
// never fail on personalization.
func (h *SessionHandler) ProcessClickStream(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	outcome := h.processor.ProcessClickStream(c.Request.Context(), h.store.Session(id))
	c.JSON(http.StatusOK, outcome)
}

// GetPersonalization returns the category stored for the session.
func (h *SessionHandler) GetPersonalization(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	categoryID, err := h.store.Personalization(c.Request.Context(), id)
	if errors.Is(err, session.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no personalization for session"})
		return
	}
	if err != nil {
		h.logger.Error("Failed to read personalization",
			infralogger.String("session_id", id),
			infralogger.Error(err),
		)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "personalization unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"session_id": id, "category_id": categoryID})
}

func sessionID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if id == "" || len(id) > maxSessionIDLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidSessionID.Error()})
		return "", false
	}
	return id, true
}
