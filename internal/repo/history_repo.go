// Repository functions for the append-only ShiftHistoryEntry model. There is
// deliberately no update or delete here: the history table is the audit
// trail, and rows are only ever appended.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medrota/shift-engine/internal/domain"
)

// AppendHistory records a single status transition for a shift.
func AppendHistory(ctx context.Context, db *gorm.DB, shiftID, actorID string, from, to domain.ShiftStatus, note string) (*domain.ShiftHistoryEntry, error) {
	e := &domain.ShiftHistoryEntry{
		ID:         uuid.NewString(),
		ShiftID:    shiftID,
		ActorID:    actorID,
		FromStatus: from,
		ToStatus:   to,
		Note:       note,
		CreatedAt:  time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(e).Error; err != nil {
		return nil, err
	}
	return e, nil
}

// ListHistory returns a shift's transitions oldest first.
func ListHistory(ctx context.Context, db *gorm.DB, shiftID string) ([]domain.ShiftHistoryEntry, error) {
	var out []domain.ShiftHistoryEntry
	err := db.WithContext(ctx).
		Where("shift_id = ?", shiftID).
		Order("created_at, id").
		Find(&out).Error
	return out, err
}

// LatestHistory returns the most recent transition for a shift, or
// ErrNotFound when the shift has no history yet.
func LatestHistory(ctx context.Context, db *gorm.DB, shiftID string) (*domain.ShiftHistoryEntry, error) {
	var e domain.ShiftHistoryEntry
	err := db.WithContext(ctx).
		Where("shift_id = ?", shiftID).
		Order("created_at desc, id desc").
		First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}
