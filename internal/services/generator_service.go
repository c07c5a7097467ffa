// Package services – GeneratorService
//
// This file implements the instance generator: the component that expands
// active shift templates into concrete, dated shift rows over a rolling
// horizon. Generation is idempotent because every template-born shift is
// keyed deterministically by (template, date, slot); re-running after a
// horizon rolls forward, or after a crash, inserts only what is missing and
// never touches rows that already exist.
package services

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/medrota/shift-engine/internal/domain"
	"github.com/medrota/shift-engine/internal/repo"
	"github.com/medrota/shift-engine/internal/schedule"
)

var (
	genRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shift_generator_runs_total",
			Help: "Template generation runs by outcome.",
		},
		[]string{"outcome"}, // ok | invalid | error
	)
	genCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "shift_instances_created_total",
			Help: "Shift instances materialized by the generator.",
		},
	)
)

// FacilityLocator resolves a facility's timezone so template clock times
// land on the right wall-clock instants. Implementations returning an error
// (or a nil locator) fall back to UTC.
type FacilityLocator interface {
	Location(ctx context.Context, facilityID string) (*time.Location, error)
}

// GeneratorService expands templates into shift instances.
type GeneratorService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Locations resolves facility timezones; nil means UTC everywhere.
	Locations FacilityLocator
}

// GenerateResult is the per-template outcome of a generation run.
type GenerateResult struct {
	TemplateID string `json:"template_id"`
	Created    int    `json:"created"`
	Skipped    int    `json:"skipped"`
	Err        error  `json:"-"`
	Error      string `json:"error,omitempty"`
}

// Generate expands one template over [asOf, asOf+horizon). For each matching
// date it upserts one shift per slot 0..RequiredStaff-1: insert when the
// deterministic key is absent, leave the existing row untouched otherwise.
// Returns how many rows were created versus skipped.
//
// An inactive template is a no-op (0, 0, nil). A malformed template fails
// with ValidationError before any row is written. Cancellation via ctx stops
// before the next date; rows already committed in this run stay.
func (g *GeneratorService) Generate(ctx context.Context, tmpl *domain.ShiftTemplate, asOf time.Time) (created, skipped int, err error) {
	tr := otel.Tracer("services/GeneratorService")
	ctx, span := tr.Start(ctx, "Generate",
		trace.WithAttributes(
			attribute.String("template.id", tmpl.ID),
			attribute.String("facility.id", tmpl.FacilityID),
		),
	)
	defer span.End()

	if !tmpl.Active {
		return 0, 0, nil
	}
	if err := ValidateTemplate(tmpl); err != nil {
		genRuns.WithLabelValues("invalid").Inc()
		return 0, 0, err
	}
	weekdays, err := tmpl.WeekdaySet()
	if err != nil {
		genRuns.WithLabelValues("invalid").Inc()
		return 0, 0, &ValidationError{Field: "weekdays", Reason: err.Error()}
	}

	loc := g.location(ctx, tmpl.FacilityID)
	day := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, loc)

	for i := 0; i < tmpl.HorizonDays; i++ {
		if err := ctx.Err(); err != nil {
			return created, skipped, err
		}
		date := day.AddDate(0, 0, i)
		if !weekdays[date.Weekday()] {
			continue
		}
		dateStr := date.Format(schedule.DateLayout)
		startAt, endAt, werr := schedule.ResolveWindow(dateStr, tmpl.StartTime, tmpl.EndTime, loc)
		if werr != nil {
			genRuns.WithLabelValues("invalid").Inc()
			return created, skipped, &ValidationError{Field: "time_window", Reason: werr.Error()}
		}

		for slot := 0; slot < tmpl.RequiredStaff; slot++ {
			tid := tmpl.ID
			inserted, ierr := repo.InsertShiftIfAbsent(ctx, g.DB, &domain.Shift{
				ID:            schedule.SlotKey(tmpl.ID, dateStr, slot),
				Origin:        domain.OriginTemplate,
				TemplateID:    &tid,
				FacilityID:    tmpl.FacilityID,
				Department:    tmpl.Department,
				Specialty:     tmpl.Specialty,
				Date:          dateStr,
				StartAt:       startAt.UTC(),
				EndAt:         endAt.UTC(),
				SlotIndex:     slot,
				RequiredStaff: 1,
				HourlyRate:    tmpl.HourlyRate,
				Status:        domain.StatusOpen,
				Version:       1,
			})
			if ierr != nil {
				genRuns.WithLabelValues("error").Inc()
				return created, skipped, ierr
			}
			if inserted {
				created++
			} else {
				skipped++
			}
		}
	}

	genRuns.WithLabelValues("ok").Inc()
	genCreated.Add(float64(created))
	span.SetAttributes(attribute.Int("generated.created", created), attribute.Int("generated.skipped", skipped))
	return created, skipped, nil
}

// GenerateByID loads a template and expands it, optionally overriding the
// stored horizon for this run only.
func (g *GeneratorService) GenerateByID(ctx context.Context, templateID string, horizonDays int, asOf time.Time) (created, skipped int, err error) {
	tmpl, err := repo.GetTemplate(ctx, g.DB, templateID)
	if err != nil {
		return 0, 0, ErrTemplateNotFound
	}
	if horizonDays > 0 {
		tmpl.HorizonDays = horizonDays
	}
	return g.Generate(ctx, tmpl, asOf)
}

// GenerateAll expands every active template, isolating failures: one
// template's malformed configuration never aborts the batch, it is reported
// in that template's result while the rest proceed. Templates run
// sequentially; their key spaces are disjoint so partial completion is safe.
func (g *GeneratorService) GenerateAll(ctx context.Context, asOf time.Time) ([]GenerateResult, error) {
	tmpls, err := repo.ListActiveTemplates(ctx, g.DB)
	if err != nil {
		return nil, err
	}

	results := make([]GenerateResult, 0, len(tmpls))
	for i := range tmpls {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		created, skipped, gerr := g.Generate(ctx, &tmpls[i], asOf)
		r := GenerateResult{TemplateID: tmpls[i].ID, Created: created, Skipped: skipped, Err: gerr}
		if gerr != nil {
			r.Error = gerr.Error()
		}
		results = append(results, r)
	}
	return results, nil
}

func (g *GeneratorService) location(ctx context.Context, facilityID string) *time.Location {
	if g.Locations == nil {
		return time.UTC
	}
	loc, err := g.Locations.Location(ctx, facilityID)
	if err != nil || loc == nil {
		return time.UTC
	}
	return loc
}
