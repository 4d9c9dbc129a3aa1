package http

import (
	"github.com/gin-gonic/gin"

	"github.com/qazaqtalk/backend/internal/delivery/http/handler"
)

type Router struct {
	registrationHandler *handler.RegistrationHandler
	matchHandler        *handler.MatchHandler
	feedbackHandler     *handler.FeedbackHandler
	profileHandler      *handler.ProfileHandler
}

func NewRouter(
	registrationHandler *handler.RegistrationHandler,
	matchHandler *handler.MatchHandler,
	feedbackHandler *handler.FeedbackHandler,
	profileHandler *handler.ProfileHandler,
) *Router {
	return &Router{
		registrationHandler: registrationHandler,
		matchHandler:        matchHandler,
		feedbackHandler:     feedbackHandler,
		profileHandler:      profileHandler,
	}
}

func (r *Router) Setup() *gin.Engine {
	router := gin.Default()

	// Health check (supports both GET and HEAD)
	healthHandler := func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	}
	router.GET("/health", healthHandler)
	router.HEAD("/health", healthHandler)

	// API v1. Callers are the external transport adapters, which pass
	// the authenticated sender id with every request.
	v1 := router.Group("/api/v1")
	{
		registration := v1.Group("/registration")
		{
			registration.POST("/start", r.registrationHandler.Start)
			registration.POST("/input", r.registrationHandler.Input)
		}

		v1.POST("/match", r.matchHandler.FindMatch)
		v1.POST("/feedback", r.feedbackHandler.Submit)

		v1.GET("/profile/:user_id", r.profileHandler.Get)
		v1.GET("/rating/:user_id", r.profileHandler.Rating)
	}

	return router
}
