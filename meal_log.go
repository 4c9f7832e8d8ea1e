package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/katsunarinishio0430-cmd/biolog-app/balance"
	"github.com/katsunarinishio0430-cmd/biolog-app/tracker"
)

// listMeals returns the whole meal log in the order it was written.
// GET /api/meals.
func (h *Handler) listMeals(c *gin.Context) {
	entries, drift, err := h.svc.Meals(c.Request.Context())
	if err != nil {
		h.serviceError(c, "read meals", err)
		return
	}
	c.JSON(http.StatusOK, newLogResponse(entries, drift))
}

// createMeal appends one meal and rebuilds the summary. Nutrition values
// come from the client, usually an accepted estimate.
// POST /api/meals.
func (h *Handler) createMeal(c *gin.Context) {
	var body tracker.MealInput
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	entry, err := h.svc.LogMeal(c.Request.Context(), body)
	if err != nil {
		h.serviceError(c, "save meal", err)
		return
	}
	c.JSON(http.StatusCreated, h.refreshAfterWrite(c, []balance.MealEntry{entry}))
}
