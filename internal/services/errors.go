// Package services implements the business logic of the staffing engine:
// template validation, instance generation, availability resolution, and the
// shift lifecycle. This file centralizes the error taxonomy so that every
// command returns either a result or one of these typed errors, never a bare
// boolean. Translation into HTTP status codes happens at the handler layer.
package services

import (
	"errors"
	"fmt"

	"github.com/medrota/shift-engine/internal/domain"
	"github.com/medrota/shift-engine/internal/schedule"
)

// Sentinel errors for simple predictable cases.
var (
	// ErrTemplateNotFound indicates the requested template does not exist.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrShiftNotFound indicates the requested shift does not exist.
	ErrShiftNotFound = errors.New("shift not found")

	// ErrWorkerNotFound indicates the requested worker does not exist.
	ErrWorkerNotFound = errors.New("worker not found")

	// ErrUnauthorized indicates the acting party may not perform the command.
	ErrUnauthorized = errors.New("actor not authorized for this action")

	// ErrAssignmentNotFound indicates the worker holds no active assignment
	// on the shift.
	ErrAssignmentNotFound = errors.New("no active assignment for worker on shift")
)

// ValidationError reports malformed template or shift input: a bad weekday
// set, non-positive staff bounds, an unparseable time window. Validation
// failures are rejected at the boundary and never reach persistence.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IneligibleWorkerError reports why a worker cannot be placed on a shift:
// inactive, wrong specialty, not associated with the facility, or already
// holding the shift. Time conflicts use ConflictError instead so callers can
// distinguish schedule clashes from profile mismatches.
type IneligibleWorkerError struct {
	WorkerID string
	ShiftID  string
	Reason   schedule.Reason
}

func (e *IneligibleWorkerError) Error() string {
	return fmt.Sprintf("worker %s ineligible for shift %s: %s", e.WorkerID, e.ShiftID, e.Reason)
}

// Conflict kinds carried by ConflictError.
const (
	ConflictOverlap = "overlap"
	ConflictVersion = "version"
)

// ConflictError reports either a time overlap with one of the worker's other
// commitments or an optimistic-concurrency version mismatch after the
// internal retry was exhausted.
type ConflictError struct {
	Kind     string // ConflictOverlap or ConflictVersion
	ShiftID  string
	WorkerID string
	// With holds the conflicting commitment for overlap conflicts, so the
	// rejection can be explained in one sentence ("worker already has a
	// shift from 15:00 to 23:00 that day").
	With *domain.Shift
}

func (e *ConflictError) Error() string {
	if e.Kind == ConflictOverlap && e.With != nil {
		return fmt.Sprintf("worker %s already has a shift from %s to %s",
			e.WorkerID,
			e.With.StartAt.Format("15:04"),
			e.With.EndAt.Format("15:04"))
	}
	if e.Kind == ConflictVersion {
		return fmt.Sprintf("shift %s was modified concurrently, reload and retry", e.ShiftID)
	}
	return fmt.Sprintf("conflict on shift %s", e.ShiftID)
}

// CapacityError reports that an assignment would exceed the shift's required
// staff count. The assigned set is left unchanged.
type CapacityError struct {
	ShiftID  string
	Required int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("shift %s already has its required %d workers", e.ShiftID, e.Required)
}

// StateTransitionError reports an illegal status change. It names both the
// shift's current status and the attempted one so the caller can decide
// whether to retry or escalate; the shift is left unchanged.
type StateTransitionError struct {
	ShiftID string
	From    domain.ShiftStatus
	To      domain.ShiftStatus
}

func (e *StateTransitionError) Error() string {
	return fmt.Sprintf("shift %s cannot move from %s to %s", e.ShiftID, e.From, e.To)
}
