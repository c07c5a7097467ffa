// Package services – AvailabilityService
//
// This file implements the availability resolver: given a candidate shift
// and a worker, it decides whether the worker may legally be placed on the
// shift. The checks run in a fixed order and short-circuit (active status,
// specialty, facility association, not already assigned, no overlapping
// commitment), and the commitment set is always read fresh from the database
// so a schedule change between request and approval is never missed.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/medrota/shift-engine/internal/domain"
	"github.com/medrota/shift-engine/internal/repo"
	"github.com/medrota/shift-engine/internal/schedule"
)

// WorkerDirectory is the staff-directory collaborator consumed by the
// resolver. The engine reads eligibility profiles through this interface and
// holds no profile CRUD of its own.
type WorkerDirectory interface {
	GetWorker(ctx context.Context, db *gorm.DB, id string) (*domain.Worker, error)
	ListWorkersBySpecialty(ctx context.Context, db *gorm.DB, specialty string) ([]domain.Worker, error)
}

// AvailabilityService resolves worker eligibility for shifts.
type AvailabilityService struct {
	// DB is the GORM handle used for persistence reads.
	DB *gorm.DB
	// Directory supplies worker eligibility profiles.
	Directory WorkerDirectory
}

// IsEligible reports whether the worker may be placed on the shift. On
// rejection the returned error is an IneligibleWorkerError (profile
// mismatch) or a ConflictError (overlapping commitment); the reason is
// always the first failing check.
func (s *AvailabilityService) IsEligible(ctx context.Context, workerID string, shift *domain.Shift) error {
	tr := otel.Tracer("services/AvailabilityService")
	ctx, span := tr.Start(ctx, "IsEligible",
		trace.WithAttributes(
			attribute.String("worker.id", workerID),
			attribute.String("shift.id", shift.ID),
		),
	)
	defer span.End()

	w, err := s.Directory.GetWorker(ctx, s.DB, workerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrWorkerNotFound
		}
		return err
	}

	held, err := repo.HasActiveAssignment(ctx, s.DB, shift.ID, workerID)
	if err != nil {
		return err
	}
	commitments, err := repo.ListWorkerCommitments(ctx, s.DB, workerID)
	if err != nil {
		return err
	}

	okay, reason := schedule.CheckEligibility(*w, *shift, held, commitments)
	if okay {
		return nil
	}
	if reason == schedule.ReasonOverlap {
		return &ConflictError{
			Kind:     ConflictOverlap,
			ShiftID:  shift.ID,
			WorkerID: workerID,
			With:     firstConflict(*shift, commitments),
		}
	}
	return &IneligibleWorkerError{WorkerID: workerID, ShiftID: shift.ID, Reason: reason}
}

// EligibleWorkers returns the workers who could take the shift, ordered for
// presentation (favorites, then reliability descending, then id). The
// ordering is advisory; correctness is carried by the filter alone.
func (s *AvailabilityService) EligibleWorkers(ctx context.Context, shift *domain.Shift) ([]domain.Worker, error) {
	candidates, err := s.Directory.ListWorkersBySpecialty(ctx, s.DB, shift.Specialty)
	if err != nil {
		return nil, err
	}

	eligible := make([]domain.Worker, 0, len(candidates))
	for _, w := range candidates {
		held, err := repo.HasActiveAssignment(ctx, s.DB, shift.ID, w.ID)
		if err != nil {
			return nil, err
		}
		commitments, err := repo.ListWorkerCommitments(ctx, s.DB, w.ID)
		if err != nil {
			return nil, err
		}
		if okay, _ := schedule.CheckEligibility(w, *shift, held, commitments); okay {
			eligible = append(eligible, w)
		}
	}
	return schedule.RankCandidates(eligible), nil
}

// Commitments returns the shifts the worker currently holds, the set the
// overlap check compares against.
func (s *AvailabilityService) Commitments(ctx context.Context, workerID string) ([]domain.Shift, error) {
	if _, err := s.Directory.GetWorker(ctx, s.DB, workerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkerNotFound
		}
		return nil, err
	}
	return repo.ListWorkerCommitments(ctx, s.DB, workerID)
}

// firstConflict finds the commitment that clashes with the candidate, for
// error reporting.
func firstConflict(candidate domain.Shift, commitments []domain.Shift) *domain.Shift {
	for i := range commitments {
		c := commitments[i]
		if c.ID == candidate.ID {
			continue
		}
		if schedule.Overlap(candidate.StartAt, candidate.EndAt, c.StartAt, c.EndAt) {
			return &c
		}
	}
	return nil
}
