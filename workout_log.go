package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/katsunarinishio0430-cmd/biolog-app/balance"
	"github.com/katsunarinishio0430-cmd/biolog-app/tracker"
)

// listWorkouts returns the whole workout log in the order it was written.
// GET /api/workouts.
func (h *Handler) listWorkouts(c *gin.Context) {
	entries, drift, err := h.svc.Workouts(c.Request.Context())
	if err != nil {
		h.serviceError(c, "read workouts", err)
		return
	}
	c.JSON(http.StatusOK, newLogResponse(entries, drift))
}

// createWorkout appends one workout and rebuilds the summary.
// POST /api/workouts.
func (h *Handler) createWorkout(c *gin.Context) {
	var body tracker.WorkoutInput
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	entry, err := h.svc.LogWorkout(c.Request.Context(), body)
	if err != nil {
		h.serviceError(c, "save workout", err)
		return
	}
	c.JSON(http.StatusCreated, h.refreshAfterWrite(c, []balance.WorkoutEntry{entry}))
}

// getWorkoutVolume returns per-day training volume, oldest first.
// GET /api/workouts/volume?exercise=Squat. Omit exercise for all of them.
func (h *Handler) getWorkoutVolume(c *gin.Context) {
	points, err := h.svc.VolumeHistory(c.Request.Context(), c.Query("exercise"))
	if err != nil {
		h.serviceError(c, "read workouts", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"exercise": c.Query("exercise"), "points": points})
}

/* ─── Session queue ──────────────────────────────────────────────────── */

// getWorkoutQueue lists the sets queued in this session but not yet saved.
// GET /api/workouts/queue.
func (h *Handler) getWorkoutQueue(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"entries": currentSession(c).Queued()})
}

// queueWorkout validates a set and holds it in the session until flush.
// POST /api/workouts/queue.
func (h *Handler) queueWorkout(c *gin.Context) {
	var body tracker.WorkoutInput
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	entry, err := h.svc.BuildWorkout(c.Request.Context(), body)
	if err != nil {
		h.serviceError(c, "queue workout", err)
		return
	}
	n := currentSession(c).Enqueue(entry)
	c.JSON(http.StatusCreated, gin.H{"entry": entry, "queued": n})
}

// clearWorkoutQueue drops every queued set without saving.
// DELETE /api/workouts/queue.
func (h *Handler) clearWorkoutQueue(c *gin.Context) {
	currentSession(c).Drain()
	c.Status(http.StatusNoContent)
}

// flushWorkoutQueue saves all queued sets in one append, clears the queue and
// rebuilds the summary. On a failed save the queue is kept.
// POST /api/workouts/queue/flush.
func (h *Handler) flushWorkoutQueue(c *gin.Context) {
	sess := currentSession(c)
	entries := sess.Drain()
	if len(entries) == 0 {
		apiError(c, http.StatusBadRequest, "no queued workouts")
		return
	}
	if err := h.svc.AppendWorkouts(c.Request.Context(), entries); err != nil {
		sess.Restore(entries)
		h.serviceError(c, "save workouts", err)
		return
	}
	c.JSON(http.StatusCreated, h.refreshAfterWrite(c, entries))
}

// refreshAfterWrite rebuilds the summary after an append. A refresh failure
// does not undo the append; it is reported in the response.
func (h *Handler) refreshAfterWrite(c *gin.Context, entries any) savedResponse {
	resp := savedResponse{Entries: entries}
	res, err := h.svc.RefreshSummary(c.Request.Context())
	if err != nil {
		h.log.Errorf("[summary] refresh after write failed: %v", err)
		resp.SummaryError = "summary refresh failed; entry was saved"
		return resp
	}
	resp.Summary = res.Rows
	resp.Warnings = res.Warnings
	return resp
}
