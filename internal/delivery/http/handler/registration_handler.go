package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/qazaqtalk/backend/internal/domain"
	"github.com/qazaqtalk/backend/internal/usecase/register"
)

// Registrar drives the registration dialogue.
type Registrar interface {
	Start(ctx context.Context, userID int64, handle string) (*register.Reply, error)
	Input(ctx context.Context, userID int64, text string) (*register.Reply, error)
}

type RegistrationHandler struct {
	registrar Registrar
	matcher   Matcher
	log       *slog.Logger
}

func NewRegistrationHandler(registrar Registrar, matcher Matcher, log *slog.Logger) *RegistrationHandler {
	return &RegistrationHandler{registrar: registrar, matcher: matcher, log: log}
}

type startRequest struct {
	UserID int64  `json:"user_id" binding:"required"`
	Handle string `json:"handle"`
}

type inputRequest struct {
	UserID int64  `json:"user_id" binding:"required"`
	Text   string `json:"text" binding:"required"`
}

type registrationResponse struct {
	*register.Reply
	Match *matchResponse `json:"match,omitempty"`
}

// Start handles POST /registration/start.
func (h *RegistrationHandler) Start(c *gin.Context) {
	var req startRequest
	if !bindJSON(c, &req) {
		return
	}

	reply, err := h.registrar.Start(c.Request.Context(), req.UserID, req.Handle)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, registrationResponse{Reply: reply})
}

// Input handles POST /registration/input. Completing the final step
// immediately runs a match search for the new profile.
func (h *RegistrationHandler) Input(c *gin.Context) {
	var req inputRequest
	if !bindJSON(c, &req) {
		return
	}

	reply, err := h.registrar.Input(c.Request.Context(), req.UserID, req.Text)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	resp := registrationResponse{Reply: reply}
	if reply.Done {
		resp.Match = h.findMatch(c.Request.Context(), req.UserID)
	}
	c.JSON(http.StatusOK, resp)
}

// findMatch runs the post-registration match search. Its failure never
// fails the registration: the user can always request a match later.
func (h *RegistrationHandler) findMatch(ctx context.Context, userID int64) *matchResponse {
	partner, err := h.matcher.FindMatch(ctx, userID)
	switch {
	case err == nil:
		return &matchResponse{Status: "paired", Partner: partner}
	case errors.Is(err, domain.ErrNoCandidate):
		return &matchResponse{Status: "no_candidate"}
	case errors.Is(err, domain.ErrAlreadyPaired):
		return &matchResponse{Status: "already_paired"}
	default:
		h.log.Error("post-registration match failed", "user_id", userID, "err", err)
		return nil
	}
}
