// Package services – TemplateService
//
// This file implements the TemplateService, which owns ShiftTemplate
// definitions: create, edit, list, and deactivate. All staffing bounds and
// recurrence rules are validated here so nothing malformed ever reaches the
// generator or persistence. Deactivating a template only stops future
// generation; instances already materialized are untouched.
package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/medrota/shift-engine/internal/domain"
	"github.com/medrota/shift-engine/internal/schedule"
)

// TemplateRepo defines the repository contract required by TemplateService.
type TemplateRepo interface {
	CreateTemplate(ctx context.Context, db *gorm.DB, t *domain.ShiftTemplate) (*domain.ShiftTemplate, error)
	GetTemplate(ctx context.Context, db *gorm.DB, id string) (*domain.ShiftTemplate, error)
	ListTemplates(ctx context.Context, db *gorm.DB, facilityID string) ([]domain.ShiftTemplate, error)
	UpdateTemplate(ctx context.Context, db *gorm.DB, t *domain.ShiftTemplate) error
	SetTemplateActive(ctx context.Context, db *gorm.DB, id string, active bool) error
}

// TemplateService provides CRUD and validation for recurring shift
// definitions.
type TemplateService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the template repository used by this service.
	Repo TemplateRepo

	// DefaultHorizonDays is used when a template omits its horizon.
	DefaultHorizonDays int
}

// NewTemplateService constructs a TemplateService with a sane default
// horizon.
func NewTemplateService(db *gorm.DB, r TemplateRepo) *TemplateService {
	return &TemplateService{DB: db, Repo: r, DefaultHorizonDays: 14}
}

// Create validates and persists a new template.
func (s *TemplateService) Create(ctx context.Context, t *domain.ShiftTemplate) (*domain.ShiftTemplate, error) {
	tr := otel.Tracer("services/TemplateService")
	ctx, span := tr.Start(ctx, "Create",
		trace.WithAttributes(attribute.String("facility.id", t.FacilityID)),
	)
	defer span.End()

	if t.HorizonDays == 0 {
		t.HorizonDays = s.DefaultHorizonDays
	}
	if err := ValidateTemplate(t); err != nil {
		return nil, err
	}
	t.Active = true
	return s.Repo.CreateTemplate(ctx, s.DB, t)
}

// Get fetches a template by id.
func (s *TemplateService) Get(ctx context.Context, id string) (*domain.ShiftTemplate, error) {
	t, err := s.Repo.GetTemplate(ctx, s.DB, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTemplateNotFound
	}
	return t, err
}

// List returns templates, optionally filtered by facility.
func (s *TemplateService) List(ctx context.Context, facilityID string) ([]domain.ShiftTemplate, error) {
	return s.Repo.ListTemplates(ctx, s.DB, facilityID)
}

// Update validates and persists edits to an existing template. Edits apply
// only to instances generated after this call; shifts already materialized
// keep the values copied at their generation time.
func (s *TemplateService) Update(ctx context.Context, t *domain.ShiftTemplate) error {
	if err := ValidateTemplate(t); err != nil {
		return err
	}
	err := s.Repo.UpdateTemplate(ctx, s.DB, t)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrTemplateNotFound
	}
	return err
}

// Deactivate stops future generation for the template.
func (s *TemplateService) Deactivate(ctx context.Context, id string) error {
	err := s.Repo.SetTemplateActive(ctx, s.DB, id, false)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrTemplateNotFound
	}
	return err
}

// ValidateTemplate checks a template's recurrence and staffing configuration.
// The first violation found is reported as a ValidationError.
func ValidateTemplate(t *domain.ShiftTemplate) error {
	if strings.TrimSpace(t.FacilityID) == "" {
		return &ValidationError{Field: "facility_id", Reason: "must not be empty"}
	}
	if strings.TrimSpace(t.Specialty) == "" {
		return &ValidationError{Field: "specialty", Reason: "must not be empty"}
	}
	if _, _, err := schedule.ParseClock(t.StartTime); err != nil {
		return &ValidationError{Field: "start_time", Reason: err.Error()}
	}
	if _, _, err := schedule.ParseClock(t.EndTime); err != nil {
		return &ValidationError{Field: "end_time", Reason: err.Error()}
	}
	if t.StartTime == t.EndTime {
		return &ValidationError{Field: "end_time", Reason: "window has zero length"}
	}
	days, err := t.WeekdaySet()
	if err != nil {
		return &ValidationError{Field: "weekdays", Reason: err.Error()}
	}
	if len(days) == 0 {
		return &ValidationError{Field: "weekdays", Reason: "recurrence set is empty"}
	}
	if t.RequiredStaff <= 0 {
		return &ValidationError{Field: "required_staff", Reason: "must be positive"}
	}
	if t.MinStaff <= 0 || t.MaxStaff <= 0 {
		return &ValidationError{Field: "staff_bounds", Reason: "must be positive"}
	}
	if t.MinStaff > t.MaxStaff {
		return &ValidationError{Field: "staff_bounds", Reason: "min exceeds max"}
	}
	if t.RequiredStaff < t.MinStaff || t.RequiredStaff > t.MaxStaff {
		return &ValidationError{Field: "required_staff", Reason: "outside min/max bounds"}
	}
	if t.HorizonDays <= 0 {
		return &ValidationError{Field: "horizon_days", Reason: "must be positive"}
	}
	if t.HourlyRate < 0 {
		return &ValidationError{Field: "hourly_rate", Reason: "must not be negative"}
	}
	return nil
}
