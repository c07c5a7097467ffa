// Shift command handlers: requests, assignment set changes, and workflow
// transitions. Every command flows through the lifecycle service, which
// authorizes the actor, serializes per-shift writes, and appends the audit
// entry; handlers only shape the transport.
//
// Endpoints:
//   - POST /shifts/:id/request
//   - POST /shifts/:id/assign
//   - POST /shifts/:id/unassign
//   - POST /shifts/:id/transition
//   - POST /shifts/:id/cancel
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medrota/shift-engine/internal/domain"
)

// RequestShiftRequest names the worker requesting the shift. A worker actor
// may omit it to request for themselves.
type RequestShiftRequest struct {
	WorkerID string `json:"worker_id"`
}

// AssignmentRequest names the worker being assigned or unassigned.
type AssignmentRequest struct {
	WorkerID string `json:"worker_id" binding:"required"`
}

// TransitionRequest is the JSON payload for a status change.
type TransitionRequest struct {
	Status string `json:"status" binding:"required"`
	Note   string `json:"note"`
}

// CancelRequest is the JSON payload for a cancellation.
type CancelRequest struct {
	Reason            string `json:"reason"`
	FacilityInitiated bool   `json:"facility_initiated"`
}

// RequestShift handles POST /shifts/:id/request.
func (h *Handlers) RequestShift(c *gin.Context) {
	if replayed(c) {
		return
	}
	var req RequestShiftRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid request payload")
			return
		}
	}
	act := actor(c)
	workerID := req.WorkerID
	if workerID == "" {
		workerID = act.ID
	}
	if workerID == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "worker_id is required")
		return
	}
	if err := h.lifecycle.RequestShift(c.Request.Context(), c.Param("id"), workerID, act); err != nil {
		failFromService(c, err)
		return
	}
	h.recordCommand(c, http.StatusNoContent)
	noContent(c)
}

// AssignWorker handles POST /shifts/:id/assign.
func (h *Handlers) AssignWorker(c *gin.Context) {
	if replayed(c) {
		return
	}
	var req AssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "worker_id is required")
		return
	}
	if err := h.lifecycle.AssignWorker(c.Request.Context(), c.Param("id"), req.WorkerID, actor(c)); err != nil {
		failFromService(c, err)
		return
	}
	h.recordCommand(c, http.StatusNoContent)
	noContent(c)
}

// UnassignWorker handles POST /shifts/:id/unassign.
func (h *Handlers) UnassignWorker(c *gin.Context) {
	if replayed(c) {
		return
	}
	var req AssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "worker_id is required")
		return
	}
	if err := h.lifecycle.UnassignWorker(c.Request.Context(), c.Param("id"), req.WorkerID, actor(c)); err != nil {
		failFromService(c, err)
		return
	}
	h.recordCommand(c, http.StatusNoContent)
	noContent(c)
}

// TransitionShift handles POST /shifts/:id/transition.
func (h *Handlers) TransitionShift(c *gin.Context) {
	if replayed(c) {
		return
	}
	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "status is required")
		return
	}
	err := h.lifecycle.Transition(c.Request.Context(), c.Param("id"), domain.ShiftStatus(req.Status), actor(c), req.Note)
	if err != nil {
		failFromService(c, err)
		return
	}
	h.recordCommand(c, http.StatusNoContent)
	noContent(c)
}

// CancelShift handles POST /shifts/:id/cancel.
func (h *Handlers) CancelShift(c *gin.Context) {
	if replayed(c) {
		return
	}
	var req CancelRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid cancel payload")
			return
		}
	}
	err := h.lifecycle.CancelShift(c.Request.Context(), c.Param("id"), actor(c), req.Reason, req.FacilityInitiated)
	if err != nil {
		failFromService(c, err)
		return
	}
	h.recordCommand(c, http.StatusNoContent)
	noContent(c)
}
