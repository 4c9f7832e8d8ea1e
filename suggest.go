package main

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/katsunarinishio0430-cmd/biolog-app/estimator"
)

const (
	// maxImageBytes caps uploaded meal photos.
	maxImageBytes = 10 << 20
	// defaultCoachDays is how many summary rows the coach sees by default.
	defaultCoachDays = 14
)

// estimateMeal asks the configured model for a meal's nutrition from a text
// description. Nothing is saved; the client posts the accepted values to
// /api/meals.
// POST /api/meals/estimate.
func (h *Handler) estimateMeal(c *gin.Context) {
	if h.est == nil {
		apiError(c, http.StatusServiceUnavailable, "no estimator configured")
		return
	}
	var req estimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Description) == "" {
		apiError(c, http.StatusBadRequest, "description is required")
		return
	}

	est, err := h.est.EstimateFromText(c.Request.Context(), req.Description)
	if err != nil {
		h.estimationError(c, err)
		return
	}
	c.JSON(http.StatusOK, est)
}

// estimateMealImage does the same from an uploaded photo (multipart field
// "image").
// POST /api/meals/estimate-image.
func (h *Handler) estimateMealImage(c *gin.Context) {
	if h.est == nil {
		apiError(c, http.StatusServiceUnavailable, "no estimator configured")
		return
	}
	fh, err := c.FormFile("image")
	if err != nil {
		apiError(c, http.StatusBadRequest, "image is required")
		return
	}
	if fh.Size > maxImageBytes {
		apiError(c, http.StatusRequestEntityTooLarge, "image too large")
		return
	}
	f, err := fh.Open()
	if err != nil {
		apiError(c, http.StatusBadRequest, "unreadable image")
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxImageBytes))
	if err != nil {
		apiError(c, http.StatusBadRequest, "unreadable image")
		return
	}

	img := estimator.Image{Data: data, MediaType: fh.Header.Get("Content-Type")}
	if img.MediaType == "application/octet-stream" {
		img.MediaType = ""
	}
	est, err := h.est.EstimateFromImage(c.Request.Context(), img)
	if err != nil {
		h.estimationError(c, err)
		return
	}
	c.JSON(http.StatusOK, est)
}

// coachReport asks the model for advice over the most recent summary rows.
// POST /api/coach with optional {"days": N}.
func (h *Handler) coachReport(c *gin.Context) {
	if h.coach == nil {
		apiError(c, http.StatusServiceUnavailable, "no estimator configured")
		return
	}
	var req coachRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			apiError(c, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	if req.Days <= 0 {
		req.Days = defaultCoachDays
	}

	ctx := c.Request.Context()
	rows, err := h.svc.RecentSummary(ctx, req.Days)
	if err != nil {
		h.serviceError(c, "read summary", err)
		return
	}
	if len(rows) == 0 {
		apiError(c, http.StatusBadRequest, "no summary data yet")
		return
	}
	p, err := h.svc.Profile(ctx)
	if err != nil {
		h.serviceError(c, "read profile", err)
		return
	}

	report, err := h.coach.CoachReport(ctx, p.String(), rows)
	if err != nil {
		h.estimationError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"report": report, "days": len(rows)})
}

// estimationError maps estimator failures: 422 when the input is not food,
// 502 for anything the model or transport got wrong.
func (h *Handler) estimationError(c *gin.Context, err error) {
	if errors.Is(err, estimator.ErrUnrecognized) {
		apiError(c, http.StatusUnprocessableEntity, "unrecognized")
		return
	}
	h.log.Errorf("[suggest] estimation failed: %v", err)
	apiError(c, http.StatusBadGateway, "estimation failed")
}
