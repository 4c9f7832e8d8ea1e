package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/katsunarinishio0430-cmd/biolog-app/estimator"
	"github.com/katsunarinishio0430-cmd/biolog-app/store"
	"github.com/katsunarinishio0430-cmd/biolog-app/tracker"
)

// Handler holds shared dependencies for all route handlers.
type Handler struct {
	svc      *tracker.Service
	est      estimator.Estimator // nil when no provider is configured
	coach    estimator.Coach     // nil when no provider is configured
	creds    credentials
	sessions *sessionStore
	log      *zap.SugaredLogger
}

// credentials is the single configured login.
type credentials struct {
	Username     string
	PasswordHash string
}

/* ─── Response helpers ───────────────────────────────────────────────── */

// apiError returns a consistent JSON error response: {"error": "message"}.
func apiError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// serviceError maps a tracker or store error onto a status code. Validation
// messages are returned to the caller; everything else is logged.
func (h *Handler) serviceError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, tracker.ErrInvalid):
		apiError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrUnavailable):
		h.log.Errorf("[%s] store unavailable: %v", op, err)
		apiError(c, http.StatusServiceUnavailable, "record store unavailable")
	default:
		h.log.Errorf("[%s] %v", op, err)
		apiError(c, http.StatusInternalServerError, "failed to "+op)
	}
}

/* ─── Routes ─────────────────────────────────────────────────────────── */

// registerRoutes registers all API routes on the router.
func (h *Handler) registerRoutes(router *gin.Engine) {
	// Public routes
	router.POST("/api/login", h.login)

	// Authenticated routes
	api := router.Group("/api", h.authMiddleware())
	api.POST("/logout", h.logout)

	api.GET("/workouts", h.listWorkouts)
	api.POST("/workouts", h.createWorkout)
	api.GET("/workouts/volume", h.getWorkoutVolume)
	api.GET("/workouts/queue", h.getWorkoutQueue)
	api.POST("/workouts/queue", h.queueWorkout)
	api.DELETE("/workouts/queue", h.clearWorkoutQueue)
	api.POST("/workouts/queue/flush", h.flushWorkoutQueue)

	api.GET("/meals", h.listMeals)
	api.POST("/meals", h.createMeal)
	api.POST("/meals/estimate", h.estimateMeal)
	api.POST("/meals/estimate-image", h.estimateMealImage)

	api.GET("/daily-summary", h.getDailySummary)
	api.POST("/daily-summary/refresh", h.refreshDailySummary)

	api.GET("/profile", h.getProfile)
	api.PUT("/profile", h.putProfile)

	api.POST("/coach", h.coachReport)
}
