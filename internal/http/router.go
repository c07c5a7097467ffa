// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// CORS, security headers, idempotency, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/medrota/shift-engine/internal/auth"
	"github.com/medrota/shift-engine/internal/config"
	"github.com/medrota/shift-engine/internal/domain"
	"github.com/medrota/shift-engine/internal/http/handlers"
	"github.com/medrota/shift-engine/internal/http/middleware"
	"github.com/medrota/shift-engine/internal/repo"
	"github.com/medrota/shift-engine/internal/services"
)

// templateRepoShim adapts the repository free functions to the
// services.TemplateRepo interface expected by the TemplateService. This keeps
// services decoupled from the concrete repo package while reusing existing
// functions.
type templateRepoShim struct{}

// CreateTemplate proxies repo.CreateTemplate.
func (templateRepoShim) CreateTemplate(ctx context.Context, db *gorm.DB, t *domain.ShiftTemplate) (*domain.ShiftTemplate, error) {
	return repo.CreateTemplate(ctx, db, t)
}

// GetTemplate proxies repo.GetTemplate.
func (templateRepoShim) GetTemplate(ctx context.Context, db *gorm.DB, id string) (*domain.ShiftTemplate, error) {
	return repo.GetTemplate(ctx, db, id)
}

// ListTemplates proxies repo.ListTemplates.
func (templateRepoShim) ListTemplates(ctx context.Context, db *gorm.DB, facilityID string) ([]domain.ShiftTemplate, error) {
	return repo.ListTemplates(ctx, db, facilityID)
}

// UpdateTemplate proxies repo.UpdateTemplate.
func (templateRepoShim) UpdateTemplate(ctx context.Context, db *gorm.DB, t *domain.ShiftTemplate) error {
	return repo.UpdateTemplate(ctx, db, t)
}

// SetTemplateActive proxies repo.SetTemplateActive.
func (templateRepoShim) SetTemplateActive(ctx context.Context, db *gorm.DB, id string, active bool) error {
	return repo.SetTemplateActive(ctx, db, id, active)
}

// workerDirectoryShim adapts the repository free functions to the
// services.WorkerDirectory interface consumed by eligibility checks.
type workerDirectoryShim struct{}

// GetWorker proxies repo.GetWorker.
func (workerDirectoryShim) GetWorker(ctx context.Context, db *gorm.DB, id string) (*domain.Worker, error) {
	return repo.GetWorker(ctx, db, id)
}

// ListWorkersBySpecialty proxies repo.ListWorkersBySpecialty.
func (workerDirectoryShim) ListWorkersBySpecialty(ctx context.Context, db *gorm.DB, specialty string) ([]domain.Worker, error) {
	return repo.ListWorkersBySpecialty(ctx, db, specialty)
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), authentication,
// idempotency and rate limiting, CORS and security headers, health and
// metrics endpoints, and then mounts the versioned public API under /api/v*.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter + gzip responses
//  6. Metrics
//  7. Actor authentication (before idempotency so the actor keys the lookup)
//  8. Idempotency validator (before rate limiter to allow bypass on replay)
//  9. Rate limiter (per actor/IP, bypass on replay)
//  10. CORS and Security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, loc services.FacilityLocator, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{
			"X-API-Key", // project-specific sensitive header example
		},
	}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB) and compressed responses
	r.Use(limitBody(1 << 20))
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Actor identity from bearer token (or test headers)
	r.Use(auth.Middleware([]byte(cfg.JWTSecret)))

	// 8) Idempotency validation (before rate limiting)
	r.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{
			MaxLen: 200,
		},
		func(ctx context.Context, actorID, shiftID, key string, now time.Time) (bool, error) {
			rec, err := repo.GetIdempotency(ctx, db, actorID, shiftID, key, now)
			if err != nil || rec == nil {
				return false, nil
			}
			return true, nil
		},
	))

	// 9) Token-bucket rate limiter per actor/IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByActorOrIP())
	r.Use(rl.Handler())

	// 10) CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Actor-ID", "X-Actor-Role", middleware.HeaderIdempotencyKey},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist (in addition to gin-contrib/cors).
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Actor-ID", "X-Actor-Role", middleware.HeaderIdempotencyKey},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Dependency injection: services ← repo/db/locator
	tmplSvc := services.NewTemplateService(db, templateRepoShim{})
	tmplSvc.DefaultHorizonDays = cfg.HorizonDays
	genSvc := &services.GeneratorService{DB: db, Locations: loc}
	availSvc := &services.AvailabilityService{DB: db, Directory: workerDirectoryShim{}}
	lifeSvc := services.NewLifecycleService(db, auth.NewRoleAuthorizer(), workerDirectoryShim{})
	querySvc := &services.ShiftQueryService{DB: db}

	h := handlers.New(tmplSvc, genSvc, availSvc, lifeSvc, querySvc).
		WithReplayGuard(func(ctx context.Context, actorID, shiftID, key string, status int) {
			// Best effort; ErrDuplicate from a concurrent retry is fine.
			_, _ = repo.CreateIdempotency(ctx, db, actorID, shiftID, key, shiftID, status, cfg.IdempotencyTTL)
		})

	// Public API
	apiBase := cfg.APIBasePath // e.g. "/api/v1"
	api := groupWithPrefix(r, apiBase)
	{
		// Templates
		api.POST("/templates", h.CreateTemplate)
		api.GET("/templates", h.ListTemplates)
		api.GET("/templates/:id", h.GetTemplate)
		api.PUT("/templates/:id", h.UpdateTemplate)
		api.POST("/templates/:id/deactivate", h.DeactivateTemplate)
		api.POST("/templates/:id/generate", h.GenerateTemplate)
		api.POST("/generate", h.GenerateAll)

		// Shifts: read side
		api.GET("/shifts", h.ListShifts)
		api.GET("/shifts/:id", h.GetShift)
		api.GET("/shifts/:id/history", h.GetShiftHistory)
		api.GET("/shifts/:id/staffing", h.GetShiftStaffing)
		api.GET("/shifts/:id/candidates", h.GetShiftCandidates)

		// Shifts: commands
		api.POST("/shifts", h.CreateShift)
		api.POST("/shifts/:id/request", h.RequestShift)
		api.POST("/shifts/:id/assign", h.AssignWorker)
		api.POST("/shifts/:id/unassign", h.UnassignWorker)
		api.POST("/shifts/:id/transition", h.TransitionShift)
		api.POST("/shifts/:id/cancel", h.CancelShift)

		// Workers
		api.GET("/workers/:id/commitments", h.GetWorkerCommitments)
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
