package handlers

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	"assetdesk/internal/core/apperror"
	"assetdesk/internal/infrastructure/http/v1/dto"
	"assetdesk/internal/infrastructure/storage/postgres"
)

// maxActionLogLimit caps one activity page.
const maxActionLogLimit = 500

// ActionLogReader lists recent persisted bulk-action outcomes.
type ActionLogReader interface {
	List(ctx context.Context, limit int) ([]postgres.ActionRow, error)
}

// ActionLogHandler serves the bulk-action activity page.
type ActionLogHandler struct {
	*BaseHandler
	store ActionLogReader
}

// NewActionLogHandler creates an action log handler.
func NewActionLogHandler(base *BaseHandler, store ActionLogReader) *ActionLogHandler {
	return &ActionLogHandler{BaseHandler: base, store: store}
}

// List returns the most recent settled actions, newest first.
// GET /api/v1/actionlog?limit=50
func (h *ActionLogHandler) List(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxActionLogLimit {
			h.Error(c, apperror.NewValidation("limit must be an integer between 1 and 500"))
			return
		}
		limit = n
	}

	rows, err := h.store.List(c.Request.Context(), limit)
	if err != nil {
		h.Error(c, apperror.NewInternal(err))
		return
	}

	entries := make([]dto.ActionLogEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, dto.ActionLogEntry{
			ID:             row.ID.String(),
			Action:         row.Action,
			Kind:           row.Kind,
			RequestedCount: row.RequestedCount,
			AffectedCount:  row.AffectedCount,
			Outcome:        row.Outcome,
			ActorID:        row.ActorID,
			ActorEmail:     row.ActorEmail,
			Payload:        row.Payload,
			CreatedAt:      row.CreatedAt,
		})
	}
	h.OK(c, gin.H{"entries": entries})
}
