package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/qazaqtalk/backend/internal/domain"
)

// Matcher selects and commits a partner for the requesting user.
type Matcher interface {
	FindMatch(ctx context.Context, requesterID int64) (*domain.Profile, error)
}

type MatchHandler struct {
	matcher Matcher
	log     *slog.Logger
}

func NewMatchHandler(matcher Matcher, log *slog.Logger) *MatchHandler {
	return &MatchHandler{matcher: matcher, log: log}
}

type findMatchRequest struct {
	UserID int64 `json:"user_id" binding:"required"`
}

type matchResponse struct {
	Status  string          `json:"status"`
	Partner *domain.Profile `json:"partner,omitempty"`
}

// FindMatch handles POST /match.
func (h *MatchHandler) FindMatch(c *gin.Context) {
	var req findMatchRequest
	if !bindJSON(c, &req) {
		return
	}

	partner, err := h.matcher.FindMatch(c.Request.Context(), req.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNoCandidate) {
			c.JSON(http.StatusOK, matchResponse{Status: "no_candidate"})
			return
		}
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, matchResponse{Status: "paired", Partner: partner})
}
