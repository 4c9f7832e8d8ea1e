package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/katsunarinishio0430-cmd/biolog-app/balance"
)

// getDailySummary returns the stored summary table, newest day first. It
// reads the derived table as last written; it does not recompute.
// GET /api/daily-summary.
func (h *Handler) getDailySummary(c *gin.Context) {
	rows, err := h.svc.Summary(c.Request.Context())
	if err != nil {
		h.serviceError(c, "read summary", err)
		return
	}
	c.JSON(http.StatusOK, summaryResponse{Columns: balance.SummaryHeader, Rows: rows})
}

// refreshDailySummary rebuilds the summary from both logs.
// POST /api/daily-summary/refresh.
func (h *Handler) refreshDailySummary(c *gin.Context) {
	res, err := h.svc.RefreshSummary(c.Request.Context())
	if err != nil {
		h.serviceError(c, "refresh summary", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"columns":         balance.SummaryHeader,
		"rows":            res.Rows,
		"base_metabolism": res.BaseMetabolism,
		"warnings":        res.Warnings,
	})
}
