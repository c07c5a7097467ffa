// Shift query and creation handlers.
//
// Endpoints:
//   - GET  /shifts                (list, filtered + paginated)
//   - GET  /shifts/:id            (detail with staffing summary)
//   - GET  /shifts/:id/history    (append-only audit trail)
//   - GET  /shifts/:id/staffing   (derived staffing projection only)
//   - GET  /shifts/:id/candidates (eligible workers, advisory order)
//   - POST /shifts                (ad-hoc shift creation)
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/medrota/shift-engine/internal/domain"
	"github.com/medrota/shift-engine/internal/repo"
)

// AdhocShiftRequest is the JSON payload for creating a shift without a
// template.
type AdhocShiftRequest struct {
	FacilityID    string    `json:"facility_id" binding:"required"`
	Department    string    `json:"department"`
	Specialty     string    `json:"specialty" binding:"required"`
	StartAt       time.Time `json:"start_at" binding:"required"`
	EndAt         time.Time `json:"end_at" binding:"required"`
	RequiredStaff int       `json:"required_staff" binding:"required"`
	HourlyRate    float64   `json:"hourly_rate"`
}

// ListShiftsResponse wraps a page of shifts and pagination information.
type ListShiftsResponse struct {
	Shifts     []domain.Shift `json:"shifts"`
	Pagination Pagination     `json:"pagination"`
}

// ListShifts handles GET /shifts.
func (h *Handlers) ListShifts(c *gin.Context) {
	page, pageSize := clampPagination(c)
	f := repo.ShiftFilter{
		FacilityID: c.Query("facility_id"),
		Specialty:  c.Query("specialty"),
		Status:     domain.ShiftStatus(c.Query("status")),
		DateFrom:   c.Query("from"),
		DateTo:     c.Query("to"),
	}
	if f.Status != "" && !f.Status.Valid() {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "unknown status filter")
		return
	}
	items, total, err := h.queries.ListPage(c.Request.Context(), f, page, pageSize)
	if err != nil {
		failFromService(c, err)
		return
	}
	ok(c, http.StatusOK, ListShiftsResponse{
		Shifts:     items,
		Pagination: makePagination(page, pageSize, total),
	})
}

// GetShift handles GET /shifts/:id.
func (h *Handlers) GetShift(c *gin.Context) {
	detail, err := h.queries.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		failFromService(c, err)
		return
	}
	ok(c, http.StatusOK, detail)
}

// GetShiftHistory handles GET /shifts/:id/history.
func (h *Handlers) GetShiftHistory(c *gin.Context) {
	entries, err := h.queries.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		failFromService(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"history": entries})
}

// GetShiftStaffing handles GET /shifts/:id/staffing.
func (h *Handlers) GetShiftStaffing(c *gin.Context) {
	sum, err := h.queries.Staffing(c.Request.Context(), c.Param("id"))
	if err != nil {
		failFromService(c, err)
		return
	}
	ok(c, http.StatusOK, sum)
}

// GetShiftCandidates handles GET /shifts/:id/candidates.
func (h *Handlers) GetShiftCandidates(c *gin.Context) {
	detail, err := h.queries.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		failFromService(c, err)
		return
	}
	workers, err := h.avail.EligibleWorkers(c.Request.Context(), &detail.Shift)
	if err != nil {
		failFromService(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"workers": workers})
}

// CreateShift handles POST /shifts (ad-hoc creation).
func (h *Handlers) CreateShift(c *gin.Context) {
	var req AdhocShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid shift payload")
		return
	}
	sh, err := h.lifecycle.CreateAdhoc(c.Request.Context(), &domain.Shift{
		FacilityID:    req.FacilityID,
		Department:    req.Department,
		Specialty:     req.Specialty,
		StartAt:       req.StartAt.UTC(),
		EndAt:         req.EndAt.UTC(),
		RequiredStaff: req.RequiredStaff,
		HourlyRate:    req.HourlyRate,
	}, actor(c))
	if err != nil {
		failFromService(c, err)
		return
	}
	ok(c, http.StatusCreated, sh)
}

// GetWorkerCommitments handles GET /workers/:id/commitments.
func (h *Handlers) GetWorkerCommitments(c *gin.Context) {
	shifts, err := h.avail.Commitments(c.Request.Context(), c.Param("id"))
	if err != nil {
		failFromService(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"commitments": shifts})
}
