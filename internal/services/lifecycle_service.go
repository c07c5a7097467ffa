// Package services – LifecycleService
//
// This file implements the lifecycle controller, the single authority for
// shift status transitions and for the assignment set. Every successful
// transition appends exactly one history entry in the same transaction that
// updates the status, so the stored status and the latest history entry can
// never disagree. Per-shift mutations are serialized with an optimistic
// compare-and-swap on the shift's version column; a lost race is retried
// once internally and then surfaced as a ConflictError for the caller to
// reload and decide.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/medrota/shift-engine/internal/domain"
	"github.com/medrota/shift-engine/internal/repo"
	"github.com/medrota/shift-engine/internal/schedule"
)

// Action names consulted against the Authorizer before any mutation.
type Action string

const (
	ActionManageTemplates Action = "templates:manage"
	ActionGenerate        Action = "shifts:generate"
	ActionCreateShift     Action = "shifts:create"
	ActionRequestShift    Action = "shifts:request"
	ActionAssign          Action = "shifts:assign"
	ActionUnassign        Action = "shifts:unassign"
	ActionTransition      Action = "shifts:transition"
	ActionCancel          Action = "shifts:cancel"
)

// Actor is the party performing a command.
type Actor struct {
	ID   string
	Role string
}

// Authorizer is the opaque permission collaborator. The engine holds no role
// matrix of its own; it only asks whether this actor may perform this action.
type Authorizer interface {
	Authorize(actor Actor, action Action) bool
}

// LifecycleService governs shift status transitions and assignments.
type LifecycleService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Auth gates every mutating command.
	Auth Authorizer
	// Directory supplies worker profiles for eligibility re-checks.
	Directory WorkerDirectory

	// Now is the clock, overridable in tests.
	Now func() time.Time
}

// NewLifecycleService constructs a LifecycleService with the real clock.
func NewLifecycleService(db *gorm.DB, auth Authorizer, dir WorkerDirectory) *LifecycleService {
	return &LifecycleService{DB: db, Auth: auth, Directory: dir, Now: time.Now}
}

// CreateAdhoc posts a shift directly, without a template. Ad-hoc shifts get
// a random id, share the same lifecycle as template-born shifts, and may
// require more than one worker.
func (s *LifecycleService) CreateAdhoc(ctx context.Context, sh *domain.Shift, actor Actor) (*domain.Shift, error) {
	if !s.Auth.Authorize(actor, ActionCreateShift) {
		return nil, ErrUnauthorized
	}
	if err := validateAdhoc(sh); err != nil {
		return nil, err
	}
	sh.ID = uuid.NewString()
	sh.Origin = domain.OriginAdhoc
	sh.Status = domain.StatusOpen
	sh.Version = 1
	sh.Date = sh.StartAt.UTC().Format(schedule.DateLayout)

	var out *domain.Shift
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		created, err := repo.CreateShift(ctx, tx, sh)
		if err != nil {
			return err
		}
		if _, err := repo.AppendHistory(ctx, tx, created.ID, actor.ID, "", domain.StatusOpen, "created"); err != nil {
			return err
		}
		out = created
		return nil
	})
	return out, err
}

// RequestShift moves an open shift to requested on behalf of a worker. The
// worker must pass the full eligibility check; the first failing check is
// the reported reason.
func (s *LifecycleService) RequestShift(ctx context.Context, shiftID, workerID string, actor Actor) error {
	if !s.Auth.Authorize(actor, ActionRequestShift) {
		return ErrUnauthorized
	}

	tr := otel.Tracer("services/LifecycleService")
	ctx, span := tr.Start(ctx, "RequestShift",
		trace.WithAttributes(
			attribute.String("shift.id", shiftID),
			attribute.String("worker.id", workerID),
		),
	)
	defer span.End()

	return s.withRetry(ctx, shiftID, func(tx *gorm.DB) error {
		sh, err := loadShift(ctx, tx, shiftID)
		if err != nil {
			return err
		}
		if sh.Status != domain.StatusOpen {
			return &StateTransitionError{ShiftID: shiftID, From: sh.Status, To: domain.StatusRequested}
		}
		if err := s.checkEligibility(ctx, tx, workerID, sh); err != nil {
			return err
		}
		if err := repo.UpdateShiftStatusCAS(ctx, tx, sh.ID, sh.Version, domain.StatusRequested); err != nil {
			return err
		}
		_, err = repo.AppendHistory(ctx, tx, sh.ID, actor.ID, domain.StatusOpen, domain.StatusRequested, "requested by "+workerID)
		return err
	})
}

// AssignWorker adds a worker to the shift's assigned set. The eligibility
// and overlap checks re-run here against the worker's current commitments,
// inside the same transaction as the write, regardless of any earlier check
// at request time. Reaching the required staff count is informational only;
// the status change to assigned remains a separate explicit Transition call.
func (s *LifecycleService) AssignWorker(ctx context.Context, shiftID, workerID string, actor Actor) error {
	if !s.Auth.Authorize(actor, ActionAssign) {
		return ErrUnauthorized
	}

	tr := otel.Tracer("services/LifecycleService")
	ctx, span := tr.Start(ctx, "AssignWorker",
		trace.WithAttributes(
			attribute.String("shift.id", shiftID),
			attribute.String("worker.id", workerID),
		),
	)
	defer span.End()

	return s.withRetry(ctx, shiftID, func(tx *gorm.DB) error {
		sh, err := loadShift(ctx, tx, shiftID)
		if err != nil {
			return err
		}
		if sh.Status.Terminal() || sh.Status == domain.StatusInProgress {
			return &StateTransitionError{ShiftID: shiftID, From: sh.Status, To: domain.StatusAssigned}
		}

		// Version bump first: two concurrent assigns contend here, and the
		// loser's capacity check re-runs against the winner's insert.
		if err := repo.BumpShiftVersionCAS(ctx, tx, sh.ID, sh.Version); err != nil {
			return err
		}

		n, err := repo.CountActiveAssignments(ctx, tx, sh.ID)
		if err != nil {
			return err
		}
		if int(n) >= sh.RequiredStaff {
			return &CapacityError{ShiftID: sh.ID, Required: sh.RequiredStaff}
		}
		if err := s.checkEligibility(ctx, tx, workerID, sh); err != nil {
			return err
		}
		_, err = repo.CreateAssignment(ctx, tx, sh.ID, workerID, actor.ID)
		return err
	})
}

// UnassignWorker revokes a worker's active assignment on the shift.
func (s *LifecycleService) UnassignWorker(ctx context.Context, shiftID, workerID string, actor Actor) error {
	if !s.Auth.Authorize(actor, ActionUnassign) {
		return ErrUnauthorized
	}
	return s.withRetry(ctx, shiftID, func(tx *gorm.DB) error {
		sh, err := loadShift(ctx, tx, shiftID)
		if err != nil {
			return err
		}
		if err := repo.BumpShiftVersionCAS(ctx, tx, sh.ID, sh.Version); err != nil {
			return err
		}
		err = repo.RevokeAssignment(ctx, tx, sh.ID, workerID, actor.ID)
		if errors.Is(err, repo.ErrNotFound) {
			return ErrAssignmentNotFound
		}
		return err
	})
}

// Transition moves the shift to a new workflow status. Legality is decided
// by the transition table; an illegal change is rejected with a
// StateTransitionError naming both states and leaves the shift untouched.
// Repeating a completed transition on an already-completed shift is a no-op.
func (s *LifecycleService) Transition(ctx context.Context, shiftID string, to domain.ShiftStatus, actor Actor, note string) error {
	if !s.Auth.Authorize(actor, ActionTransition) {
		return ErrUnauthorized
	}
	if !to.Valid() {
		return &ValidationError{Field: "status", Reason: "unknown status " + string(to)}
	}

	tr := otel.Tracer("services/LifecycleService")
	ctx, span := tr.Start(ctx, "Transition",
		trace.WithAttributes(
			attribute.String("shift.id", shiftID),
			attribute.String("shift.status", string(to)),
		),
	)
	defer span.End()

	return s.withRetry(ctx, shiftID, func(tx *gorm.DB) error {
		sh, err := loadShift(ctx, tx, shiftID)
		if err != nil {
			return err
		}
		if sh.Status == domain.StatusCompleted && to == domain.StatusCompleted {
			return nil // repeated completion is a no-op, not an error
		}
		if !sh.Status.CanTransition(to) {
			return &StateTransitionError{ShiftID: shiftID, From: sh.Status, To: to}
		}
		switch to {
		case domain.StatusRequested:
			// Requests carry a worker identity; only the dedicated
			// RequestShift path may move a shift into requested.
			return &StateTransitionError{ShiftID: shiftID, From: sh.Status, To: to}
		case domain.StatusAssigned:
			if err := s.confirmAssignable(ctx, tx, sh); err != nil {
				return err
			}
		case domain.StatusInProgress:
			if s.now().Before(sh.StartAt) {
				return &ValidationError{Field: "status", Reason: "shift has not started yet"}
			}
		}
		return s.applyTransition(ctx, tx, sh, to, actor, note)
	})
}

// CancelShift cancels a non-terminal shift, recording which party initiated
// the cancellation. Facility-initiated cancellation is legal from any
// non-terminal state; worker/scheduler cancellation follows the table.
func (s *LifecycleService) CancelShift(ctx context.Context, shiftID string, actor Actor, reason string, facilityInitiated bool) error {
	if !s.Auth.Authorize(actor, ActionCancel) {
		return ErrUnauthorized
	}
	to := domain.StatusCancelled
	if facilityInitiated {
		to = domain.StatusFacilityCancelled
	}
	return s.withRetry(ctx, shiftID, func(tx *gorm.DB) error {
		sh, err := loadShift(ctx, tx, shiftID)
		if err != nil {
			return err
		}
		legal := sh.Status.CanTransition(to)
		if facilityInitiated {
			legal = !sh.Status.Terminal()
		}
		if !legal {
			return &StateTransitionError{ShiftID: shiftID, From: sh.Status, To: to}
		}
		note := "cancelled by " + actor.ID
		if facilityInitiated {
			note = "cancelled by facility (" + actor.ID + ")"
		}
		if reason != "" {
			note += ": " + reason
		}
		return s.applyTransition(ctx, tx, sh, to, actor, note)
	})
}

// applyTransition performs the CAS status write plus the single history
// append. It must run inside a transaction.
func (s *LifecycleService) applyTransition(ctx context.Context, tx *gorm.DB, sh *domain.Shift, to domain.ShiftStatus, actor Actor, note string) error {
	if err := repo.UpdateShiftStatusCAS(ctx, tx, sh.ID, sh.Version, to); err != nil {
		return err
	}
	_, err := repo.AppendHistory(ctx, tx, sh.ID, actor.ID, sh.Status, to, note)
	return err
}

// confirmAssignable re-validates the requested → assigned confirmation: at
// least one worker must hold the shift, and every holder's commitments are
// re-read in case their schedule changed between request and approval.
func (s *LifecycleService) confirmAssignable(ctx context.Context, tx *gorm.DB, sh *domain.Shift) error {
	assignments, err := repo.ListActiveAssignments(ctx, tx, sh.ID)
	if err != nil {
		return err
	}
	if len(assignments) == 0 {
		return &ValidationError{Field: "assignments", Reason: "no active assignment to confirm"}
	}
	for _, a := range assignments {
		commitments, err := repo.ListWorkerCommitments(ctx, tx, a.WorkerID)
		if err != nil {
			return err
		}
		others := commitments[:0:0]
		for _, c := range commitments {
			if c.ID != sh.ID {
				others = append(others, c)
			}
		}
		if schedule.ConflictsWith(*sh, others) {
			return &ConflictError{
				Kind:     ConflictOverlap,
				ShiftID:  sh.ID,
				WorkerID: a.WorkerID,
				With:     firstConflict(*sh, others),
			}
		}
	}
	return nil
}

// checkEligibility runs the full ordered eligibility check against fresh
// reads on the given handle, so callers inside a transaction observe the
// worker's current commitment set rather than a stale snapshot.
func (s *LifecycleService) checkEligibility(ctx context.Context, tx *gorm.DB, workerID string, sh *domain.Shift) error {
	w, err := s.Directory.GetWorker(ctx, tx, workerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrWorkerNotFound
		}
		return err
	}
	held, err := repo.HasActiveAssignment(ctx, tx, sh.ID, workerID)
	if err != nil {
		return err
	}
	commitments, err := repo.ListWorkerCommitments(ctx, tx, workerID)
	if err != nil {
		return err
	}
	okay, reason := schedule.CheckEligibility(*w, *sh, held, commitments)
	if okay {
		return nil
	}
	if reason == schedule.ReasonOverlap {
		return &ConflictError{
			Kind:     ConflictOverlap,
			ShiftID:  sh.ID,
			WorkerID: workerID,
			With:     firstConflict(*sh, commitments),
		}
	}
	return &IneligibleWorkerError{WorkerID: workerID, ShiftID: sh.ID, Reason: reason}
}

// withRetry runs fn in a transaction and retries exactly once when the
// optimistic CAS loses a race. A second loss surfaces as ConflictError and
// is left to the actor; the engine never retries indefinitely.
func (s *LifecycleService) withRetry(ctx context.Context, shiftID string, fn func(tx *gorm.DB) error) error {
	for attempt := 0; attempt < 2; attempt++ {
		err := s.DB.WithContext(ctx).Transaction(fn)
		if err == nil {
			return nil
		}
		if errors.Is(err, repo.ErrVersionConflict) {
			continue
		}
		if errors.Is(err, repo.ErrNotFound) {
			return ErrShiftNotFound
		}
		return err
	}
	return &ConflictError{Kind: ConflictVersion, ShiftID: shiftID}
}

func loadShift(ctx context.Context, tx *gorm.DB, id string) (*domain.Shift, error) {
	sh, err := repo.GetShift(ctx, tx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftNotFound
		}
		return nil, err
	}
	return sh, nil
}

func (s *LifecycleService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// validateAdhoc checks a directly created shift the same way templates are
// checked before generation.
func validateAdhoc(sh *domain.Shift) error {
	if sh.FacilityID == "" {
		return &ValidationError{Field: "facility_id", Reason: "must not be empty"}
	}
	if sh.Specialty == "" {
		return &ValidationError{Field: "specialty", Reason: "must not be empty"}
	}
	if sh.RequiredStaff <= 0 {
		return &ValidationError{Field: "required_staff", Reason: "must be positive"}
	}
	if !sh.EndAt.After(sh.StartAt) {
		return &ValidationError{Field: "end_at", Reason: "must be after start"}
	}
	if sh.HourlyRate < 0 {
		return &ValidationError{Field: "hourly_rate", Reason: "must not be negative"}
	}
	return nil
}
