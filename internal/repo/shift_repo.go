// Repository functions for the Shift model, including the idempotent insert
// used by the generator and the compare-and-swap status update used by the
// lifecycle controller.
package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/medrota/shift-engine/internal/domain"
)

// ErrVersionConflict indicates that a compare-and-swap update lost the race:
// the shift row's version changed between read and write. Callers reload and
// retry once before surfacing the conflict.
var ErrVersionConflict = errors.New("shift version conflict")

// InsertShiftIfAbsent inserts the shift unless a row with the same primary
// key already exists, in which case the existing row is left completely
// untouched (status and assignments included). Reports whether a row was
// created. This is the upsert that makes template generation idempotent.
func InsertShiftIfAbsent(ctx context.Context, db *gorm.DB, s *domain.Shift) (bool, error) {
	s.CreatedAt = time.Now().UTC()
	res := db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(s)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// CreateShift inserts an ad-hoc shift row.
func CreateShift(ctx context.Context, db *gorm.DB, s *domain.Shift) (*domain.Shift, error) {
	s.CreatedAt = time.Now().UTC()
	if err := db.WithContext(ctx).Create(s).Error; err != nil {
		return nil, err
	}
	return s, nil
}

// GetShift fetches a shift by id, or ErrNotFound.
func GetShift(ctx context.Context, db *gorm.DB, id string) (*domain.Shift, error) {
	var s domain.Shift
	if err := db.WithContext(ctx).Where("id = ?", id).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// ShiftFilter narrows shift listings. Zero values mean "no constraint".
type ShiftFilter struct {
	FacilityID string
	Specialty  string
	Status     domain.ShiftStatus
	DateFrom   string // inclusive, "2006-01-02"
	DateTo     string // inclusive
}

func (f ShiftFilter) apply(q *gorm.DB) *gorm.DB {
	if f.FacilityID != "" {
		q = q.Where("facility_id = ?", f.FacilityID)
	}
	if f.Specialty != "" {
		q = q.Where("specialty = ?", f.Specialty)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.DateFrom != "" {
		q = q.Where("date >= ?", f.DateFrom)
	}
	if f.DateTo != "" {
		q = q.Where("date <= ?", f.DateTo)
	}
	return q
}

// CountShifts returns the number of shifts matching the filter.
func CountShifts(ctx context.Context, db *gorm.DB, f ShiftFilter) (int64, error) {
	var total int64
	err := f.apply(db.WithContext(ctx).Model(&domain.Shift{})).Count(&total).Error
	return total, err
}

// ListShiftsPage returns a page of shifts matching the filter, ordered by
// start time then id for a stable pagination order.
func ListShiftsPage(ctx context.Context, db *gorm.DB, f ShiftFilter, offset, limit int) ([]domain.Shift, error) {
	var out []domain.Shift
	err := f.apply(db.WithContext(ctx)).
		Order("start_at, id").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// UpdateShiftStatusCAS sets the shift's status if and only if its version
// still equals expectVersion, bumping the version in the same statement.
// Returns ErrVersionConflict when the row exists but the version moved, and
// ErrNotFound when the shift does not exist at all.
func UpdateShiftStatusCAS(ctx context.Context, db *gorm.DB, id string, expectVersion int64, status domain.ShiftStatus) error {
	res := db.WithContext(ctx).
		Model(&domain.Shift{}).
		Where("id = ? AND version = ?", id, expectVersion).
		Updates(map[string]any{
			"status":  status,
			"version": expectVersion + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var n int64
		if err := db.WithContext(ctx).Model(&domain.Shift{}).Where("id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		return ErrVersionConflict
	}
	return nil
}

// BumpShiftVersionCAS advances the version without changing status. Used to
// serialize assignment writes against concurrent mutations of the same shift.
func BumpShiftVersionCAS(ctx context.Context, db *gorm.DB, id string, expectVersion int64) error {
	res := db.WithContext(ctx).
		Model(&domain.Shift{}).
		Where("id = ? AND version = ?", id, expectVersion).
		Update("version", expectVersion+1)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var n int64
		if err := db.WithContext(ctx).Model(&domain.Shift{}).Where("id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		return ErrVersionConflict
	}
	return nil
}

// ListWorkerCommitments returns the shifts a worker currently holds: an
// active assignment on a shift whose lifecycle has not ended. This is the
// set the overlap check runs against, read fresh at assignment time rather
// than from any cached snapshot.
func ListWorkerCommitments(ctx context.Context, db *gorm.DB, workerID string) ([]domain.Shift, error) {
	var out []domain.Shift
	err := db.WithContext(ctx).
		Joins("JOIN shift_assignments sa ON sa.shift_id = shifts.id").
		Where("sa.worker_id = ? AND sa.revoked_at IS NULL", workerID).
		Where("shifts.status NOT IN ?", []domain.ShiftStatus{
			domain.StatusCompleted,
			domain.StatusCancelled,
			domain.StatusFacilityCancelled,
			domain.StatusNoShow,
		}).
		Order("shifts.start_at").
		Find(&out).Error
	return out, err
}
