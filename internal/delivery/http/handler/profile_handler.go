package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/qazaqtalk/backend/internal/domain"
)

// ProfileReader looks up stored profiles.
type ProfileReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Profile, error)
}

// Rater reports a user's rolling feedback rating.
type Rater interface {
	RatingOf(ctx context.Context, userID int64) (float64, error)
}

type ProfileHandler struct {
	profiles ProfileReader
	rater    Rater
	log      *slog.Logger
}

func NewProfileHandler(profiles ProfileReader, rater Rater, log *slog.Logger) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, rater: rater, log: log}
}

// Get handles GET /profile/:user_id.
func (h *ProfileHandler) Get(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}

	profile, err := h.profiles.GetByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// Rating handles GET /rating/:user_id.
func (h *ProfileHandler) Rating(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}

	rating, err := h.rater.RatingOf(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user_id": userID, "rating": rating})
}

func userIDParam(c *gin.Context) (int64, bool) {
	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid user id"})
		return 0, false
	}
	return userID, true
}
