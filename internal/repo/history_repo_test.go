package repo

import (
	"context"
	"errors"
	"testing"

	"github.com/medrota/shift-engine/internal/domain"
)

func TestAppendHistory_AndListOrder(t *testing.T) {
	db := newShiftRepoDB(t, &domain.Shift{}, &domain.ShiftHistoryEntry{})
	ctx := context.Background()
	s := seedShift(t, db, "s1", domain.StatusOpen)

	e1, err := AppendHistory(ctx, db, s.ID, "sched", "", domain.StatusOpen, "created")
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if e1.ID == "" || e1.ToStatus != domain.StatusOpen {
		t.Fatalf("unexpected entry: %+v", e1)
	}
	if _, err := AppendHistory(ctx, db, s.ID, "w1", domain.StatusOpen, domain.StatusRequested, "requested by w1"); err != nil {
		t.Fatalf("append: %v", err)
	}
	// A different shift's history must not leak in.
	s2 := seedShift(t, db, "s2", domain.StatusOpen)
	if _, err := AppendHistory(ctx, db, s2.ID, "sched", "", domain.StatusOpen, "created"); err != nil {
		t.Fatalf("append: %v", err)
	}

	got, err := ListHistory(ctx, db, s.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	// Oldest first.
	if got[0].ToStatus != domain.StatusOpen || got[1].ToStatus != domain.StatusRequested {
		t.Fatalf("unexpected order: %+v", got)
	}
	if got[1].Note != "requested by w1" || got[1].ActorID != "w1" {
		t.Fatalf("note/actor not recorded: %+v", got[1])
	}
}

func TestLatestHistory(t *testing.T) {
	db := newShiftRepoDB(t, &domain.Shift{}, &domain.ShiftHistoryEntry{})
	ctx := context.Background()
	s := seedShift(t, db, "s1", domain.StatusOpen)

	if _, err := LatestHistory(ctx, db, s.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for empty history, got %v", err)
	}

	if _, err := AppendHistory(ctx, db, s.ID, "sched", "", domain.StatusOpen, "created"); err != nil {
		t.Fatalf("append: %v", err)
	}
	if _, err := AppendHistory(ctx, db, s.ID, "w1", domain.StatusOpen, domain.StatusRequested, ""); err != nil {
		t.Fatalf("append: %v", err)
	}

	latest, err := LatestHistory(ctx, db, s.ID)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest.ToStatus != domain.StatusRequested {
		t.Fatalf("latest should be the requested entry, got %+v", latest)
	}
}
