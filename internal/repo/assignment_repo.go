// Repository functions for the ShiftAssignment join entity. Assignments are
// revoked rather than deleted so slot history survives for auditing, and
// capacity checks only ever count active (unrevoked) rows.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medrota/shift-engine/internal/domain"
)

// CreateAssignment inserts an active assignment of worker to shift.
func CreateAssignment(ctx context.Context, db *gorm.DB, shiftID, workerID, assignedBy string) (*domain.ShiftAssignment, error) {
	a := &domain.ShiftAssignment{
		ID:         uuid.NewString(),
		ShiftID:    shiftID,
		WorkerID:   workerID,
		AssignedBy: assignedBy,
		CreatedAt:  time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(a).Error; err != nil {
		return nil, err
	}
	return a, nil
}

// ListActiveAssignments returns the unrevoked assignments for a shift in
// assignment order.
func ListActiveAssignments(ctx context.Context, db *gorm.DB, shiftID string) ([]domain.ShiftAssignment, error) {
	var out []domain.ShiftAssignment
	err := db.WithContext(ctx).
		Where("shift_id = ? AND revoked_at IS NULL", shiftID).
		Order("created_at, id").
		Find(&out).Error
	return out, err
}

// CountActiveAssignments returns how many workers currently hold the shift.
func CountActiveAssignments(ctx context.Context, db *gorm.DB, shiftID string) (int64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.ShiftAssignment{}).
		Where("shift_id = ? AND revoked_at IS NULL", shiftID).
		Count(&n).Error
	return n, err
}

// HasActiveAssignment reports whether the worker already holds this shift.
func HasActiveAssignment(ctx context.Context, db *gorm.DB, shiftID, workerID string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.ShiftAssignment{}).
		Where("shift_id = ? AND worker_id = ? AND revoked_at IS NULL", shiftID, workerID).
		Count(&n).Error
	return n > 0, err
}

// RevokeAssignment marks the worker's active assignment on the shift as
// revoked. Returns ErrNotFound when no active assignment exists.
func RevokeAssignment(ctx context.Context, db *gorm.DB, shiftID, workerID, revokedBy string) error {
	now := time.Now().UTC()
	res := db.WithContext(ctx).
		Model(&domain.ShiftAssignment{}).
		Where("shift_id = ? AND worker_id = ? AND revoked_at IS NULL", shiftID, workerID).
		Updates(map[string]any{
			"revoked_at": &now,
			"revoked_by": revokedBy,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
