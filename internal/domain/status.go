package domain

// ShiftStatus is the authoritative workflow state of a shift. It is distinct
// from the derived staffing projection: a shift can have enough workers and
// still be cancelled, and reaching full staffing never changes status on its
// own.
type ShiftStatus string

// Workflow states. The happy path runs open → requested → assigned →
// in_progress → completed; cancellation branches are reachable from any
// non-terminal state, and no_show only from assigned.
const (
	StatusOpen              ShiftStatus = "open"
	StatusRequested         ShiftStatus = "requested"
	StatusAssigned          ShiftStatus = "assigned"
	StatusInProgress        ShiftStatus = "in_progress"
	StatusCompleted         ShiftStatus = "completed"
	StatusCancelled         ShiftStatus = "cancelled"
	StatusFacilityCancelled ShiftStatus = "facility_cancelled"
	StatusNoShow            ShiftStatus = "no_show"
)

// ShiftOrigin discriminates how a shift came to exist. Template shifts carry
// a deterministic key and a template reference; ad-hoc and block shifts are
// created directly by a scheduler.
type ShiftOrigin string

const (
	OriginTemplate ShiftOrigin = "template"
	OriginAdhoc    ShiftOrigin = "adhoc"
	OriginBlock    ShiftOrigin = "block"
)

// transitions is the full table of legal status changes. Anything absent
// here is illegal and must be rejected without touching the shift.
var transitions = map[ShiftStatus][]ShiftStatus{
	StatusOpen:       {StatusRequested, StatusCancelled, StatusFacilityCancelled},
	StatusRequested:  {StatusAssigned, StatusCancelled, StatusFacilityCancelled},
	StatusAssigned:   {StatusInProgress, StatusNoShow, StatusCancelled, StatusFacilityCancelled},
	StatusInProgress: {StatusCompleted, StatusFacilityCancelled},
}

// Valid reports whether s is a known status value.
func (s ShiftStatus) Valid() bool {
	switch s {
	case StatusOpen, StatusRequested, StatusAssigned, StatusInProgress,
		StatusCompleted, StatusCancelled, StatusFacilityCancelled, StatusNoShow:
		return true
	}
	return false
}

// Terminal reports whether s ends the lifecycle. Terminal shifts accept no
// further transitions.
func (s ShiftStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusFacilityCancelled, StatusNoShow:
		return true
	}
	return false
}

// CanTransition reports whether the change from s to next is in the legal
// transition table.
func (s ShiftStatus) CanTransition(next ShiftStatus) bool {
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}
