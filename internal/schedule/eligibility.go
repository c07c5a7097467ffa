package schedule

import (
	"sort"

	"github.com/medrota/shift-engine/internal/domain"
)

// Reason identifies which eligibility check failed. Checks run in a fixed
// order and short-circuit, so the reported reason is always the first
// failure.
type Reason string

const (
	ReasonEligible        Reason = ""
	ReasonInactive        Reason = "worker_inactive"
	ReasonSpecialty       Reason = "specialty_mismatch"
	ReasonFacility        Reason = "not_associated_with_facility"
	ReasonAlreadyAssigned Reason = "already_assigned"
	ReasonOverlap         Reason = "overlapping_commitment"
)

// CheckEligibility determines whether a worker may be placed on a shift.
// alreadyAssigned is whether the worker currently holds a slot on this very
// shift; commitments are the worker's other active shifts (the candidate
// shift itself is ignored if present). Returns (true, ReasonEligible) or
// (false, first failing reason).
func CheckEligibility(w domain.Worker, s domain.Shift, alreadyAssigned bool, commitments []domain.Shift) (bool, Reason) {
	if !w.Active {
		return false, ReasonInactive
	}
	if w.Specialty != s.Specialty {
		return false, ReasonSpecialty
	}
	if !memberOf(w, s.FacilityID) {
		return false, ReasonFacility
	}
	if alreadyAssigned {
		return false, ReasonAlreadyAssigned
	}
	if ConflictsWith(s, commitments) {
		return false, ReasonOverlap
	}
	return true, ReasonEligible
}

// ConflictsWith reports whether the candidate shift overlaps any of the
// worker's other commitments. Commitments carry resolved timestamps, so an
// overnight shift dated d already ends on d+1 and simply compares as a later
// interval; the candidate itself is excluded by id.
func ConflictsWith(candidate domain.Shift, commitments []domain.Shift) bool {
	for _, c := range commitments {
		if c.ID == candidate.ID {
			continue
		}
		if Overlap(candidate.StartAt, candidate.EndAt, c.StartAt, c.EndAt) {
			return true
		}
	}
	return false
}

func memberOf(w domain.Worker, facilityID string) bool {
	for _, f := range w.Facilities {
		if f.FacilityID == facilityID {
			return true
		}
	}
	return false
}

// RankCandidates orders eligible workers for presentation: favorites first,
// then reliability descending, then id ascending as a stable tiebreak. The
// ordering is advisory for UI listings and carries no correctness weight.
func RankCandidates(workers []domain.Worker) []domain.Worker {
	out := make([]domain.Worker, len(workers))
	copy(out, workers)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Favorite != b.Favorite {
			return a.Favorite
		}
		if a.Reliability != b.Reliability {
			return a.Reliability > b.Reliability
		}
		return a.ID < b.ID
	})
	return out
}
