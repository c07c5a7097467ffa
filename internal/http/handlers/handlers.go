// Handler wiring and shared service contracts.
//
// Handlers are transport-thin: they validate input, call application
// services, and translate results into HTTP responses. All business rules,
// including every eligibility and capacity decision, live in the service
// layer; nothing here ever recomputes workflow status from staffing counts.
package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/medrota/shift-engine/internal/auth"
	"github.com/medrota/shift-engine/internal/domain"
	"github.com/medrota/shift-engine/internal/http/middleware"
	"github.com/medrota/shift-engine/internal/repo"
	"github.com/medrota/shift-engine/internal/schedule"
	"github.com/medrota/shift-engine/internal/services"
	"github.com/medrota/shift-engine/internal/utils"
)

//
// Service contracts (context-aware)
//

// TemplateService defines template CRUD operations consumed by HTTP handlers.
type TemplateService interface {
	Create(ctx context.Context, t *domain.ShiftTemplate) (*domain.ShiftTemplate, error)
	Get(ctx context.Context, id string) (*domain.ShiftTemplate, error)
	List(ctx context.Context, facilityID string) ([]domain.ShiftTemplate, error)
	Update(ctx context.Context, t *domain.ShiftTemplate) error
	Deactivate(ctx context.Context, id string) error
}

// GeneratorService defines template expansion operations.
type GeneratorService interface {
	GenerateByID(ctx context.Context, templateID string, horizonDays int, asOf time.Time) (created, skipped int, err error)
	GenerateAll(ctx context.Context, asOf time.Time) ([]services.GenerateResult, error)
}

// AvailabilityService defines eligibility queries.
type AvailabilityService interface {
	EligibleWorkers(ctx context.Context, shift *domain.Shift) ([]domain.Worker, error)
	Commitments(ctx context.Context, workerID string) ([]domain.Shift, error)
}

// LifecycleService defines shift mutations: assignment set changes and
// workflow transitions.
type LifecycleService interface {
	CreateAdhoc(ctx context.Context, sh *domain.Shift, actor services.Actor) (*domain.Shift, error)
	RequestShift(ctx context.Context, shiftID, workerID string, actor services.Actor) error
	AssignWorker(ctx context.Context, shiftID, workerID string, actor services.Actor) error
	UnassignWorker(ctx context.Context, shiftID, workerID string, actor services.Actor) error
	Transition(ctx context.Context, shiftID string, to domain.ShiftStatus, actor services.Actor, note string) error
	CancelShift(ctx context.Context, shiftID string, actor services.Actor, reason string, facilityInitiated bool) error
}

// ShiftQueryService defines the read side of the shift API.
type ShiftQueryService interface {
	Get(ctx context.Context, id string) (*services.ShiftDetail, error)
	ListPage(ctx context.Context, f repo.ShiftFilter, page, pageSize int) ([]domain.Shift, int64, error)
	History(ctx context.Context, shiftID string) ([]domain.ShiftHistoryEntry, error)
	Staffing(ctx context.Context, shiftID string) (*schedule.Summary, error)
}

// IdempotencyRecorder persists the outcome of a completed shift command
// keyed by (actor, shift, Idempotency-Key) so an identical retry can be
// answered from the stored record instead of re-executing the command.
type IdempotencyRecorder func(ctx context.Context, actorID, shiftID, key string, status int)

// Handlers groups the HTTP endpoints of the staffing engine.
type Handlers struct {
	templates TemplateService
	generator GeneratorService
	avail     AvailabilityService
	lifecycle LifecycleService
	queries   ShiftQueryService
	idem      IdempotencyRecorder
}

// New constructs a Handlers instance bound to the given services.
func New(t TemplateService, g GeneratorService, a AvailabilityService, l LifecycleService, q ShiftQueryService) *Handlers {
	return &Handlers{templates: t, generator: g, avail: a, lifecycle: l, queries: q}
}

// WithReplayGuard installs the recorder invoked after every successful shift
// command. Without it, Idempotency-Key headers are validated but retries are
// not detected.
func (h *Handlers) WithReplayGuard(rec IdempotencyRecorder) *Handlers {
	h.idem = rec
	return h
}

// replayed short-circuits a retried shift command. When the idempotency
// validator matched a stored record for this (actor, shift, key) triple, the
// original command already ran; answer with its outcome and flag the replay.
func replayed(c *gin.Context) bool {
	if !middleware.IsReplay(c) {
		return false
	}
	c.Header("Idempotency-Replayed", "true")
	noContent(c)
	return true
}

// recordCommand stores the Idempotency-Key of a command that just succeeded.
// Best effort: the command has already committed, so storage failures must
// never surface to the client.
func (h *Handlers) recordCommand(c *gin.Context, status int) {
	if h.idem == nil {
		return
	}
	key, ok := middleware.GetIdempotencyKey(c)
	if !ok || key == "" {
		return
	}
	actorID := actor(c).ID
	if actorID == "" {
		actorID = "anonymous"
	}
	h.idem(c.Request.Context(), actorID, c.Param("id"), key, status)
}

// actor extracts the authenticated actor placed in the context by the auth
// middleware.
func actor(c *gin.Context) services.Actor { return auth.ActorFrom(c) }

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

func makePagination(page, pageSize int, total int64) Pagination {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}
