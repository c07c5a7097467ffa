// Repository functions for the ShiftTemplate model. Thin persistence only:
// validation of staffing bounds and weekday sets happens in the service
// layer before anything reaches these functions.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medrota/shift-engine/internal/domain"
)

// CreateTemplate inserts a new template row. The ID is assigned here when
// the caller left it empty; CreatedAt is set to UTC.
func CreateTemplate(ctx context.Context, db *gorm.DB, t *domain.ShiftTemplate) (*domain.ShiftTemplate, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.CreatedAt = time.Now().UTC()
	if err := db.WithContext(ctx).Create(t).Error; err != nil {
		return nil, err
	}
	return t, nil
}

// GetTemplate fetches a template by id, or ErrNotFound.
func GetTemplate(ctx context.Context, db *gorm.DB, id string) (*domain.ShiftTemplate, error) {
	var t domain.ShiftTemplate
	if err := db.WithContext(ctx).Where("id = ?", id).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// ListTemplates returns templates, optionally filtered by facility, most
// recent first.
func ListTemplates(ctx context.Context, db *gorm.DB, facilityID string) ([]domain.ShiftTemplate, error) {
	q := db.WithContext(ctx).Model(&domain.ShiftTemplate{})
	if facilityID != "" {
		q = q.Where("facility_id = ?", facilityID)
	}
	var out []domain.ShiftTemplate
	err := q.Order("created_at desc").Find(&out).Error
	return out, err
}

// ListActiveTemplates returns every template still eligible for generation.
func ListActiveTemplates(ctx context.Context, db *gorm.DB) ([]domain.ShiftTemplate, error) {
	var out []domain.ShiftTemplate
	err := db.WithContext(ctx).Where("active = ?", true).Order("created_at").Find(&out).Error
	return out, err
}

// UpdateTemplate persists edits to an existing template. Returns ErrNotFound
// when the row does not exist.
func UpdateTemplate(ctx context.Context, db *gorm.DB, t *domain.ShiftTemplate) error {
	res := db.WithContext(ctx).Model(&domain.ShiftTemplate{}).Where("id = ?", t.ID).Updates(map[string]any{
		"facility_id":    t.FacilityID,
		"department":     t.Department,
		"specialty":      t.Specialty,
		"start_time":     t.StartTime,
		"end_time":       t.EndTime,
		"weekdays":       t.Weekdays,
		"min_staff":      t.MinStaff,
		"max_staff":      t.MaxStaff,
		"required_staff": t.RequiredStaff,
		"hourly_rate":    t.HourlyRate,
		"horizon_days":   t.HorizonDays,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetTemplateActive flips the generation flag. Deactivation stops future
// expansion only; instances already materialized are left alone.
func SetTemplateActive(ctx context.Context, db *gorm.DB, id string, active bool) error {
	res := db.WithContext(ctx).
		Model(&domain.ShiftTemplate{}).
		Where("id = ?", id).
		Update("active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
