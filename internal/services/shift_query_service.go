// Package services – ShiftQueryService
//
// Read-only projections over shifts: filtered listings, detail with the
// derived staffing summary, and the audit history. The staffing summary is
// computed on the fly with the pure calculator; it is a display projection
// and never feeds back into the stored workflow status.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/medrota/shift-engine/internal/domain"
	"github.com/medrota/shift-engine/internal/repo"
	"github.com/medrota/shift-engine/internal/schedule"
)

// ShiftQueryService serves the read side of the shift API.
type ShiftQueryService struct {
	// DB is the GORM handle used for persistence reads.
	DB *gorm.DB
}

// ShiftDetail is a shift together with its derived staffing projection and
// the workers currently holding it. DepartmentLabel and SpecialtyLabel are
// display renderings of the stored codes; matching always uses the codes.
type ShiftDetail struct {
	Shift           domain.Shift             `json:"shift"`
	DepartmentLabel string                   `json:"department_label"`
	SpecialtyLabel  string                   `json:"specialty_label"`
	Staffing        schedule.Summary         `json:"staffing"`
	Assignments     []domain.ShiftAssignment `json:"assignments"`
}

// Get returns the detail view for one shift.
func (s *ShiftQueryService) Get(ctx context.Context, id string) (*ShiftDetail, error) {
	sh, err := repo.GetShift(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftNotFound
		}
		return nil, err
	}
	assignments, err := repo.ListActiveAssignments(ctx, s.DB, id)
	if err != nil {
		return nil, err
	}
	return &ShiftDetail{
		Shift:           *sh,
		DepartmentLabel: schedule.DisplayLabel(sh.Department),
		SpecialtyLabel:  schedule.DisplayLabel(sh.Specialty),
		Staffing:        schedule.Staffing(len(assignments), sh.RequiredStaff),
		Assignments:     assignments,
	}, nil
}

// ListPage returns a page of shifts matching the filter plus the total
// count. Invalid page arguments fall back to defaults.
func (s *ShiftQueryService) ListPage(ctx context.Context, f repo.ShiftFilter, page, pageSize int) ([]domain.Shift, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := repo.CountShifts(ctx, s.DB, f)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Shift{}, 0, nil
	}
	items, err := repo.ListShiftsPage(ctx, s.DB, f, offset, pageSize)
	return items, total, err
}

// History returns the shift's append-only transition log, oldest first.
func (s *ShiftQueryService) History(ctx context.Context, shiftID string) ([]domain.ShiftHistoryEntry, error) {
	if _, err := repo.GetShift(ctx, s.DB, shiftID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftNotFound
		}
		return nil, err
	}
	return repo.ListHistory(ctx, s.DB, shiftID)
}

// Staffing returns just the derived staffing projection for a shift.
func (s *ShiftQueryService) Staffing(ctx context.Context, shiftID string) (*schedule.Summary, error) {
	sh, err := repo.GetShift(ctx, s.DB, shiftID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftNotFound
		}
		return nil, err
	}
	n, err := repo.CountActiveAssignments(ctx, s.DB, shiftID)
	if err != nil {
		return nil, err
	}
	sum := schedule.Staffing(int(n), sh.RequiredStaff)
	return &sum, nil
}
