// Template HTTP handlers.
//
// Endpoints:
//   - POST /templates                    (create)
//   - GET  /templates                    (list, optional facility filter)
//   - GET  /templates/:id                (detail)
//   - PUT  /templates/:id                (edit)
//   - POST /templates/:id/deactivate     (stop future generation)
//   - POST /templates/:id/generate       (expand one template now)
//   - POST /generate                     (expand all active templates)
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/medrota/shift-engine/internal/domain"
)

// TemplateRequest is the JSON payload for creating or editing a template.
type TemplateRequest struct {
	FacilityID    string  `json:"facility_id" binding:"required"`
	Department    string  `json:"department"`
	Specialty     string  `json:"specialty" binding:"required"`
	StartTime     string  `json:"start_time" binding:"required" example:"07:00"`
	EndTime       string  `json:"end_time" binding:"required" example:"19:00"`
	Weekdays      []int   `json:"weekdays" binding:"required"`
	MinStaff      int     `json:"min_staff"`
	MaxStaff      int     `json:"max_staff"`
	RequiredStaff int     `json:"required_staff"`
	HourlyRate    float64 `json:"hourly_rate"`
	HorizonDays   int     `json:"horizon_days"`
}

func (r TemplateRequest) toDomain() *domain.ShiftTemplate {
	return &domain.ShiftTemplate{
		FacilityID:    r.FacilityID,
		Department:    r.Department,
		Specialty:     r.Specialty,
		StartTime:     r.StartTime,
		EndTime:       r.EndTime,
		Weekdays:      domain.EncodeWeekdays(r.Weekdays),
		MinStaff:      r.MinStaff,
		MaxStaff:      r.MaxStaff,
		RequiredStaff: r.RequiredStaff,
		HourlyRate:    r.HourlyRate,
		HorizonDays:   r.HorizonDays,
	}
}

// GenerateRequest optionally overrides the stored horizon for one run.
type GenerateRequest struct {
	HorizonDays int `json:"horizon_days"`
}

// GenerateResponse reports one template expansion.
type GenerateResponse struct {
	TemplateID string `json:"template_id"`
	Created    int    `json:"created"`
	Skipped    int    `json:"skipped"`
}

// CreateTemplate handles POST /templates.
func (h *Handlers) CreateTemplate(c *gin.Context) {
	var req TemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid template payload")
		return
	}
	t, err := h.templates.Create(c.Request.Context(), req.toDomain())
	if err != nil {
		failFromService(c, err)
		return
	}
	ok(c, http.StatusCreated, t)
}

// ListTemplates handles GET /templates.
func (h *Handlers) ListTemplates(c *gin.Context) {
	items, err := h.templates.List(c.Request.Context(), c.Query("facility_id"))
	if err != nil {
		failFromService(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"templates": items})
}

// GetTemplate handles GET /templates/:id.
func (h *Handlers) GetTemplate(c *gin.Context) {
	t, err := h.templates.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		failFromService(c, err)
		return
	}
	ok(c, http.StatusOK, t)
}

// UpdateTemplate handles PUT /templates/:id. Edits apply to future
// generation only; already-materialized shifts keep their copied values.
func (h *Handlers) UpdateTemplate(c *gin.Context) {
	var req TemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid template payload")
		return
	}
	t := req.toDomain()
	t.ID = c.Param("id")
	if err := h.templates.Update(c.Request.Context(), t); err != nil {
		failFromService(c, err)
		return
	}
	noContent(c)
}

// DeactivateTemplate handles POST /templates/:id/deactivate.
func (h *Handlers) DeactivateTemplate(c *gin.Context) {
	if err := h.templates.Deactivate(c.Request.Context(), c.Param("id")); err != nil {
		failFromService(c, err)
		return
	}
	noContent(c)
}

// GenerateTemplate handles POST /templates/:id/generate.
func (h *Handlers) GenerateTemplate(c *gin.Context) {
	var req GenerateRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid generate payload")
			return
		}
	}
	created, skipped, err := h.generator.GenerateByID(c.Request.Context(), c.Param("id"), req.HorizonDays, time.Now().UTC())
	if err != nil {
		failFromService(c, err)
		return
	}
	ok(c, http.StatusOK, GenerateResponse{TemplateID: c.Param("id"), Created: created, Skipped: skipped})
}

// GenerateAll handles POST /generate: every active template is expanded and
// per-template outcomes are reported, including isolated failures.
func (h *Handlers) GenerateAll(c *gin.Context) {
	results, err := h.generator.GenerateAll(c.Request.Context(), time.Now().UTC())
	if err != nil {
		failFromService(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"results": results})
}
