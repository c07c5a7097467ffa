// Package domain defines the persistence models for shift templates, shifts,
// assignments, history, and workers. These types are mapped with GORM and
// form the core data layer of the staffing engine.
package domain

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
)

// ShiftTemplate is a recurring shift definition owned by a facility. Active
// templates are expanded by the generator into concrete Shift rows over a
// rolling horizon. Deactivating a template stops future generation but never
// retracts instances that were already materialized.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - FacilityID: owning facility; indexed for per-facility listing.
//   - Department / Specialty: copied onto generated shifts at expansion time.
//   - StartTime / EndTime: local clock time "HH:MM"; EndTime < StartTime
//     means the shift crosses midnight and ends on the following day.
//   - Weekdays: CSV of weekday numbers 0-6 (Sunday = 0) the template recurs on.
//   - MinStaff / MaxStaff / RequiredStaff: staffing bounds; RequiredStaff is
//     snapshotted onto each generated shift.
//   - HourlyRate: advisory pay rate copied onto generated shifts.
//   - HorizonDays: how many days ahead instances are materialized.
//   - Active: generation flag.
type ShiftTemplate struct {
	ID            string         `json:"id"             gorm:"type:char(36);primaryKey"`
	FacilityID    string         `json:"facility_id"    gorm:"type:varchar(64);not null;index:idx_facility_templates"`
	Department    string         `json:"department"     gorm:"type:varchar(64);not null"`
	Specialty     string         `json:"specialty"      gorm:"type:varchar(64);not null"`
	StartTime     string         `json:"start_time"     gorm:"type:varchar(5);not null"`
	EndTime       string         `json:"end_time"       gorm:"type:varchar(5);not null"`
	Weekdays      string         `json:"weekdays"       gorm:"type:varchar(32);not null"`
	MinStaff      int            `json:"min_staff"      gorm:"not null;default:1"`
	MaxStaff      int            `json:"max_staff"      gorm:"not null;default:1"`
	RequiredStaff int            `json:"required_staff" gorm:"not null;default:1"`
	HourlyRate    float64        `json:"hourly_rate"    gorm:"not null;default:0"`
	HorizonDays   int            `json:"horizon_days"   gorm:"not null;default:14"`
	Active        bool           `json:"active"         gorm:"not null;default:true"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-"              gorm:"index"`
}

// TableName returns the database table name for ShiftTemplate.
func (ShiftTemplate) TableName() string { return "shift_templates" }

// WeekdaySet parses the CSV Weekdays column into a set of time.Weekday.
// Invalid entries yield an error; an empty column yields an empty set.
func (t ShiftTemplate) WeekdaySet() (map[time.Weekday]bool, error) {
	out := make(map[time.Weekday]bool)
	for _, part := range strings.Split(t.Weekdays, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 || n > 6 {
			return nil, fmt.Errorf("invalid weekday %q", part)
		}
		out[time.Weekday(n)] = true
	}
	return out, nil
}

// EncodeWeekdays renders a weekday list into the canonical CSV form used by
// the Weekdays column (ascending, duplicate-free).
func EncodeWeekdays(days []int) string {
	seen := make(map[int]bool, len(days))
	uniq := make([]int, 0, len(days))
	for _, d := range days {
		if !seen[d] {
			seen[d] = true
			uniq = append(uniq, d)
		}
	}
	sort.Ints(uniq)
	parts := make([]string, len(uniq))
	for i, d := range uniq {
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, ",")
}

// Shift is a concrete, dated shift. Template-born shifts use a deterministic
// slot key as their primary key, which is what makes regeneration idempotent;
// ad-hoc shifts use a random UUID. Shifts are never deleted: terminal states
// (completed, cancelled, facility_cancelled, no_show) end the lifecycle while
// the row and its history remain.
//
// Facility, department, specialty, required staff, and rate are copied from
// the template at generation time so later template edits do not retroactively
// alter shifts that were already posted.
type Shift struct {
	ID            string      `json:"id"             gorm:"type:varchar(80);primaryKey"`
	Origin        ShiftOrigin `json:"origin"         gorm:"type:varchar(16);not null;check:origin IN ('template','adhoc','block')"`
	TemplateID    *string     `json:"template_id,omitempty" gorm:"type:char(36);index:idx_template_shifts"`
	FacilityID    string      `json:"facility_id"    gorm:"type:varchar(64);not null;index:idx_facility_shifts,priority:1"`
	Department    string      `json:"department"     gorm:"type:varchar(64);not null"`
	Specialty     string      `json:"specialty"      gorm:"type:varchar(64);not null;index"`
	Date          string      `json:"date"           gorm:"type:varchar(10);not null;index:idx_facility_shifts,priority:2"`
	StartAt       time.Time   `json:"start_at"       gorm:"not null"`
	EndAt         time.Time   `json:"end_at"         gorm:"not null"`
	SlotIndex     int         `json:"slot_index"     gorm:"not null;default:0"`
	RequiredStaff int         `json:"required_staff" gorm:"not null;default:1"`
	HourlyRate    float64     `json:"hourly_rate"    gorm:"not null;default:0"`
	Status        ShiftStatus `json:"status"         gorm:"type:varchar(24);not null;default:'open';index"`
	Version       int64       `json:"version"        gorm:"not null;default:1"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// TableName returns the database table name for Shift.
func (Shift) TableName() string { return "shifts" }

// ShiftAssignment links a worker to a shift. Assignments are revoked, never
// deleted, so the row doubles as an audit record of who held the slot and
// when. At most one active (unrevoked) assignment may exist per
// (shift, worker) pair; capacity is enforced against active rows.
type ShiftAssignment struct {
	ID         string     `json:"id"          gorm:"type:char(36);primaryKey"`
	ShiftID    string     `json:"shift_id"    gorm:"type:varchar(80);not null;index:idx_shift_assignments"`
	WorkerID   string     `json:"worker_id"   gorm:"type:char(36);not null;index:idx_worker_assignments"`
	AssignedBy string     `json:"assigned_by" gorm:"type:varchar(64);not null"`
	CreatedAt  time.Time  `json:"created_at"`
	RevokedAt  *time.Time `json:"revoked_at,omitempty" gorm:"index"`
	RevokedBy  string     `json:"revoked_by,omitempty" gorm:"type:varchar(64)"`

	// Shift is the parent row. Shifts are never deleted in practice, the
	// cascade exists so test databases can be torn down cleanly.
	Shift Shift `json:"-" gorm:"foreignKey:ShiftID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for ShiftAssignment.
func (ShiftAssignment) TableName() string { return "shift_assignments" }

// Active reports whether the assignment currently holds the slot.
func (a ShiftAssignment) Active() bool { return a.RevokedAt == nil }

// ShiftHistoryEntry is the append-only audit trail for shift status changes.
// Exactly one entry is written per successful transition; entries are never
// updated or deleted. The shift's stored status and its latest history entry
// must always agree.
type ShiftHistoryEntry struct {
	ID         string      `json:"id"          gorm:"type:char(36);primaryKey"`
	ShiftID    string      `json:"shift_id"    gorm:"type:varchar(80);not null;index:idx_shift_history,priority:1"`
	ActorID    string      `json:"actor_id"    gorm:"type:varchar(64);not null"`
	FromStatus ShiftStatus `json:"from_status" gorm:"type:varchar(24);not null"`
	ToStatus   ShiftStatus `json:"to_status"   gorm:"type:varchar(24);not null"`
	Note       string      `json:"note"        gorm:"type:text"`
	CreatedAt  time.Time   `json:"created_at"  gorm:"index:idx_shift_history,priority:2"`
}

// TableName returns the database table name for ShiftHistoryEntry.
func (ShiftHistoryEntry) TableName() string { return "shift_history" }

// Worker is the eligibility profile of a staff member as seen by the engine:
// specialty, active flag, facility memberships, and the advisory ordering
// signals (favorite flag, reliability score) used when ranking candidates.
// Profile CRUD lives elsewhere; the engine only reads these rows.
type Worker struct {
	ID          string         `json:"id"          gorm:"type:char(36);primaryKey"`
	Name        string         `json:"name"        gorm:"type:varchar(128);not null"`
	Specialty   string         `json:"specialty"   gorm:"type:varchar(64);not null;index"`
	Active      bool           `json:"active"      gorm:"not null;default:true"`
	Favorite    bool           `json:"favorite"    gorm:"not null;default:false"`
	Reliability float64        `json:"reliability" gorm:"not null;default:0"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-"           gorm:"index"`

	Facilities []WorkerFacility `json:"facilities,omitempty" gorm:"foreignKey:WorkerID;references:ID"`
}

// TableName returns the database table name for Worker.
func (Worker) TableName() string { return "workers" }

// WorkerFacility associates a worker with a facility they may be staffed at.
type WorkerFacility struct {
	WorkerID   string    `json:"worker_id"   gorm:"type:char(36);primaryKey"`
	FacilityID string    `json:"facility_id" gorm:"type:varchar(64);primaryKey"`
	CreatedAt  time.Time `json:"created_at"`

	Worker Worker `json:"-" gorm:"foreignKey:WorkerID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for WorkerFacility.
func (WorkerFacility) TableName() string { return "worker_facilities" }

// FacilityIDs flattens the loaded facility associations into a plain slice.
func (w Worker) FacilityIDs() []string {
	out := make([]string, 0, len(w.Facilities))
	for _, f := range w.Facilities {
		out = append(out, f.FacilityID)
	}
	return out
}
