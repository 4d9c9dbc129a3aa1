package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Submitter validates and records a feedback reply.
type Submitter interface {
	Submit(ctx context.Context, fromUser int64, rawText string) error
}

type FeedbackHandler struct {
	submitter Submitter
	log       *slog.Logger
}

func NewFeedbackHandler(submitter Submitter, log *slog.Logger) *FeedbackHandler {
	return &FeedbackHandler{submitter: submitter, log: log}
}

type submitFeedbackRequest struct {
	UserID int64  `json:"user_id" binding:"required"`
	Text   string `json:"text" binding:"required"`
}

// Submit handles POST /feedback. The text payload is the user's raw
// reply in the "s1,s2,s3 optional comment" format.
func (h *FeedbackHandler) Submit(c *gin.Context) {
	var req submitFeedbackRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.submitter.Submit(c.Request.Context(), req.UserID, req.Text); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "recorded"})
}
