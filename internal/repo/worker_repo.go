// Repository functions for Worker eligibility profiles. The engine treats
// the staff directory as read-mostly: profile CRUD belongs to the
// surrounding system, these helpers exist for the resolver and for seeding
// test data.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medrota/shift-engine/internal/domain"
)

// GetWorker fetches a worker with facility associations preloaded, or
// ErrNotFound.
func GetWorker(ctx context.Context, db *gorm.DB, id string) (*domain.Worker, error) {
	var w domain.Worker
	err := db.WithContext(ctx).
		Preload("Facilities").
		Where("id = ?", id).
		First(&w).Error
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// ListWorkersBySpecialty returns active workers of a specialty with facility
// associations preloaded. The resolver narrows this further per shift.
func ListWorkersBySpecialty(ctx context.Context, db *gorm.DB, specialty string) ([]domain.Worker, error) {
	var out []domain.Worker
	err := db.WithContext(ctx).
		Preload("Facilities").
		Where("specialty = ? AND active = ?", specialty, true).
		Find(&out).Error
	return out, err
}

// CreateWorker inserts a worker profile with facility memberships.
func CreateWorker(ctx context.Context, db *gorm.DB, w *domain.Worker, facilityIDs []string) (*domain.Worker, error) {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	w.CreatedAt = time.Now().UTC()
	for _, fid := range facilityIDs {
		w.Facilities = append(w.Facilities, domain.WorkerFacility{
			WorkerID:   w.ID,
			FacilityID: fid,
			CreatedAt:  w.CreatedAt,
		})
	}
	if err := db.WithContext(ctx).Create(w).Error; err != nil {
		return nil, err
	}
	return w, nil
}
