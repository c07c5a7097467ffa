package repo

import (
	"context"
	"errors"
	"testing"

	"github.com/medrota/shift-engine/internal/domain"
)

func TestCreateAssignment_SetsFields(t *testing.T) {
	db := newShiftRepoDB(t, &domain.Shift{}, &domain.ShiftAssignment{})
	ctx := context.Background()
	s := seedShift(t, db, "s1", domain.StatusOpen)

	a, err := CreateAssignment(ctx, db, s.ID, "w1", "sched-1")
	if err != nil {
		t.Fatalf("CreateAssignment: %v", err)
	}
	if a.ID == "" || a.ShiftID != s.ID || a.WorkerID != "w1" || a.AssignedBy != "sched-1" {
		t.Fatalf("unexpected assignment: %+v", a)
	}
	if !a.Active() {
		t.Fatalf("fresh assignment should be active")
	}
}

func TestCountAndHasActiveAssignments(t *testing.T) {
	db := newShiftRepoDB(t, &domain.Shift{}, &domain.ShiftAssignment{})
	ctx := context.Background()
	s := seedShift(t, db, "s1", domain.StatusOpen)

	if n, _ := CountActiveAssignments(ctx, db, s.ID); n != 0 {
		t.Fatalf("expected 0, got %d", n)
	}
	if held, _ := HasActiveAssignment(ctx, db, s.ID, "w1"); held {
		t.Fatalf("w1 should not hold the shift yet")
	}

	if _, err := CreateAssignment(ctx, db, s.ID, "w1", "sched"); err != nil {
		t.Fatalf("assign w1: %v", err)
	}
	if _, err := CreateAssignment(ctx, db, s.ID, "w2", "sched"); err != nil {
		t.Fatalf("assign w2: %v", err)
	}

	if n, _ := CountActiveAssignments(ctx, db, s.ID); n != 2 {
		t.Fatalf("expected 2, got %d", n)
	}
	if held, _ := HasActiveAssignment(ctx, db, s.ID, "w1"); !held {
		t.Fatalf("w1 should hold the shift")
	}

	if err := RevokeAssignment(ctx, db, s.ID, "w1", "sched"); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if n, _ := CountActiveAssignments(ctx, db, s.ID); n != 1 {
		t.Fatalf("revoked rows must not count, got %d", n)
	}
	if held, _ := HasActiveAssignment(ctx, db, s.ID, "w1"); held {
		t.Fatalf("w1 no longer holds the shift")
	}
}

func TestRevokeAssignment_KeepsRowForAudit(t *testing.T) {
	db := newShiftRepoDB(t, &domain.Shift{}, &domain.ShiftAssignment{})
	ctx := context.Background()
	s := seedShift(t, db, "s1", domain.StatusOpen)

	if _, err := CreateAssignment(ctx, db, s.ID, "w1", "sched"); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if err := RevokeAssignment(ctx, db, s.ID, "w1", "sched-2"); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	var rows []domain.ShiftAssignment
	if err := db.Where("shift_id = ?", s.ID).Find(&rows).Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("revocation must not delete the row, got %d rows", len(rows))
	}
	if rows[0].RevokedAt == nil || rows[0].RevokedBy != "sched-2" {
		t.Fatalf("revocation metadata missing: %+v", rows[0])
	}

	// Second revoke finds no active assignment.
	if err := RevokeAssignment(ctx, db, s.ID, "w1", "sched"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListActiveAssignments_Order(t *testing.T) {
	db := newShiftRepoDB(t, &domain.Shift{}, &domain.ShiftAssignment{})
	ctx := context.Background()
	s := seedShift(t, db, "s1", domain.StatusOpen)

	if _, err := CreateAssignment(ctx, db, s.ID, "w1", "sched"); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if _, err := CreateAssignment(ctx, db, s.ID, "w2", "sched"); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if err := RevokeAssignment(ctx, db, s.ID, "w1", "sched"); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	got, err := ListActiveAssignments(ctx, db, s.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].WorkerID != "w2" {
		t.Fatalf("expected only w2 active, got %+v", got)
	}
}
