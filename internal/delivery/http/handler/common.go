package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/qazaqtalk/backend/internal/domain"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// bindJSON binds the request body and turns binding failures into a
// short 400 response.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		var vErrs validator.ValidationErrors
		if errors.As(err, &vErrs) && len(vErrs) > 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error: "missing or invalid field: " + vErrs[0].Field(),
			})
			return false
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

// respondError translates domain sentinels into HTTP responses. The
// sentinel messages are written for users; anything unrecognized is
// logged in full and surfaced generically.
func respondError(c *gin.Context, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrMalformedFeedback),
		errors.Is(err, domain.ErrScoreOutOfRange),
		errors.Is(err, domain.ErrCommentRequired),
		errors.Is(err, domain.ErrInvalidChoice):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})

	case errors.Is(err, domain.ErrAlreadyPaired),
		errors.Is(err, domain.ErrDuplicateFeedback):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})

	case errors.Is(err, domain.ErrProfileNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "profile not found, please register first"})

	case errors.Is(err, domain.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "no registration in progress, please start over"})

	case errors.Is(err, domain.ErrNoPendingReview):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "no review is waiting for your reply"})

	case errors.Is(err, domain.ErrStorageUnavailable):
		log.Error("transient storage failure", "path", c.FullPath(), "err", err)
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "temporary problem, please try again"})

	default:
		log.Error("request failed", "path", c.FullPath(), "err", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "something went wrong"})
	}
}
