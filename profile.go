package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/katsunarinishio0430-cmd/biolog-app/tracker"
)

// getProfile returns the body profile with its computed BMR and baseline.
// Defaults are returned until a profile is saved.
// GET /api/profile.
func (h *Handler) getProfile(c *gin.Context) {
	p, err := h.svc.Profile(c.Request.Context())
	if err != nil {
		h.serviceError(c, "read profile", err)
		return
	}
	resp, err := newProfileResponse(p)
	if err != nil {
		h.serviceError(c, "read profile", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// putProfile replaces the profile. Every field is required; the summary is
// rebuilt because the baseline applies to every day.
// PUT /api/profile.
func (h *Handler) putProfile(c *gin.Context) {
	var body tracker.Profile
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.svc.SaveProfile(c.Request.Context(), body); err != nil {
		h.serviceError(c, "save profile", err)
		return
	}
	if _, err := h.svc.RefreshSummary(c.Request.Context()); err != nil {
		h.log.Errorf("[profile] summary refresh failed: %v", err)
	}
	resp, err := newProfileResponse(body)
	if err != nil {
		h.serviceError(c, "save profile", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func newProfileResponse(p tracker.Profile) (profileResponse, error) {
	base, err := p.Baseline()
	if err != nil {
		return profileResponse{}, err
	}
	return profileResponse{Profile: p, BMR: p.BMR(), BaseMetabolism: base}, nil
}
