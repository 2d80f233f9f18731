package api

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/credohq/credo/internal/api/handlers"
	mw "github.com/credohq/credo/internal/api/middleware"
	"github.com/credohq/credo/internal/buildconfig"
	"github.com/credohq/credo/internal/config"
	substrate "github.com/credohq/credo/internal/runtime"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// App holds the router and request metrics for the HTTP host. The host is
// a thin collaborator surface: all substrate state lives in the runtime.
type App struct {
	Router       *chi.Mux
	Runtime      *substrate.Runtime
	startTime    time.Time
	requestCount atomic.Int64
	errorCount   atomic.Int64
}

func NewApp(rt *substrate.Runtime, logger *zap.Logger) *App {
	assertionHandler := handlers.NewAssertionHandler(rt)
	beliefHandler := handlers.NewBeliefHandler(rt)
	governanceHandler := handlers.NewGovernanceHandler(rt)
	economicHandler := handlers.NewEconomicHandler(rt)
	contradictionHandler := handlers.NewContradictionHandler(rt)
	patternHandler := handlers.NewPatternHandler(rt)
	reportHandler := handlers.NewReportHandler(rt)

	r := chi.NewRouter()

	app := &App{
		Router:    r,
		Runtime:   rt,
		startTime: time.Now(),
	}

	metricsCollector := mw.NewMetricsCollector(&app.requestCount, &app.errorCount)

	// Global middleware (order matters)
	r.Use(mw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(metricsCollector.Middleware)
	r.Use(mw.Logging(logger))
	r.Use(middleware.Recoverer)
	r.Use(mw.RateLimit(config.RateLimitRPS(), config.RateLimitBurst()))

	// Health and metrics (no auth)
	r.Get("/health", app.healthHandler())
	r.Get("/metrics", app.metricsHandler())

	r.Route("/v1", func(r chi.Router) {
		r.Use(mw.APIKeyAuth(config.APIKey()))

		r.Post("/evidence", assertionHandler.CreateEvidence)
		r.Route("/assertions", func(r chi.Router) {
			r.Post("/", assertionHandler.CreateAssertion)
			r.Get("/{id}/lineage", assertionHandler.Lineage)
			r.Get("/{id}/confidence", beliefHandler.Compose)
		})

		r.Route("/beliefs", func(r chi.Router) {
			r.Post("/", beliefHandler.Create)
			r.Post("/prune", beliefHandler.Prune)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", beliefHandler.GetByID)
				r.Post("/confidence", beliefHandler.UpdateConfidence)
				r.Post("/propagate", beliefHandler.PropagateDecay)
				r.Post("/influence", economicHandler.InfluenceBelief)
			})
		})

		r.Post("/decisions", governanceHandler.CreateDecision)
		r.Route("/overrides", func(r chi.Router) {
			r.Post("/", governanceHandler.CreateOverride)
			r.Get("/active", governanceHandler.ActiveOverrides)
			r.Post("/{id}/renew", governanceHandler.RenewOverride)
		})
		r.Post("/reconcile", governanceHandler.Reconcile)
		r.Route("/divergence", func(r chi.Router) {
			r.Get("/", governanceHandler.DivergenceHistory)
			r.Post("/scan", governanceHandler.ScanDivergence)
		})

		r.Post("/signals", economicHandler.CreateSignal)
		r.Get("/targets/{target}/totals", economicHandler.TargetTotals)
		r.Get("/budget-pressure", economicHandler.BudgetPressure)

		r.Post("/policies", contradictionHandler.CreatePolicy)
		r.Post("/meanings", contradictionHandler.CreateMeaningVersion)
		r.Route("/contradictions", func(r chi.Router) {
			r.Get("/", contradictionHandler.List)
			r.Post("/scan", contradictionHandler.Scan)
			r.Post("/{id}/resolution", contradictionHandler.Resolve)
		})

		r.Get("/patterns", patternHandler.Patterns)
		r.Post("/stage", patternHandler.StageGate)
		r.Post("/tooling-mismatch", patternHandler.ToolingMismatch)

		r.Get("/summary", reportHandler.Summary)
		r.Get("/telemetry", reportHandler.Events)
	})

	return app
}

func (app *App) healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":  "ok",
			"version": buildconfig.Version(),
			"commit":  buildconfig.Commit(),
			"enabled": app.Runtime.Flags().Enabled,
		})
	}
}

func (app *App) metricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"uptime_seconds": int64(time.Since(app.startTime).Seconds()),
			"requests":       app.requestCount.Load(),
			"errors":         app.errorCount.Load(),
			"goroutines":     runtime.NumGoroutine(),
			"heap_bytes":     m.HeapAlloc,
			"substrate":      app.Runtime.Stats(),
		})
	}
}
