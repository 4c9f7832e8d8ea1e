package main

import (
	"github.com/katsunarinishio0430-cmd/biolog-app/balance"
	"github.com/katsunarinishio0430-cmd/biolog-app/tracker"
)

/* ─── Response shapes ────────────────────────────────────────────────── */

// savedResponse is returned by every endpoint that appends to a log. The
// summary is rebuilt right after the append; when that fails the entry is
// still saved and SummaryError says why.
type savedResponse struct {
	Entries      any                       `json:"entries"`
	Summary      []balance.DailySummaryRow `json:"summary,omitempty"`
	Warnings     []string                  `json:"warnings,omitempty"`
	SummaryError string                    `json:"summary_error,omitempty"`
}

// summaryResponse is the daily summary table plus the header order the UI
// renders it in.
type summaryResponse struct {
	Columns []string                  `json:"columns"`
	Rows    []balance.DailySummaryRow `json:"rows"`
}

// profileResponse is the saved profile with its computed energy figures.
type profileResponse struct {
	tracker.Profile
	BMR            float64 `json:"bmr"`
	BaseMetabolism float64 `json:"base_metabolism"`
}

// logResponse wraps a decoded log together with any schema drift found.
type logResponse[T any] struct {
	Entries []T           `json:"entries"`
	Drift   *balance.Drift `json:"drift,omitempty"`
}

/* ─── Request shapes ─────────────────────────────────────────────────── */

// estimateRequest is the request body for POST /api/meals/estimate.
type estimateRequest struct {
	Description string `json:"description"`
}

// coachRequest is the request body for POST /api/coach.
type coachRequest struct {
	Days int `json:"days"`
}

func newLogResponse[T any](entries []T, drift balance.Drift) logResponse[T] {
	r := logResponse[T]{Entries: entries}
	if !drift.Clean() {
		r.Drift = &drift
	}
	return r
}
