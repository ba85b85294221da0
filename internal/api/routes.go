// Package api assembles the HTTP router.
package api

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/matiasleandrokruk/groundedgrowth/internal/api/handlers"
	apmiddleware "github.com/matiasleandrokruk/groundedgrowth/internal/api/middleware"
	"github.com/matiasleandrokruk/groundedgrowth/internal/domain/analysis"
	domainaudit "github.com/matiasleandrokruk/groundedgrowth/internal/domain/audit"
	domainauth "github.com/matiasleandrokruk/groundedgrowth/internal/domain/auth"
	"github.com/matiasleandrokruk/groundedgrowth/internal/domain/goal"
	"github.com/matiasleandrokruk/groundedgrowth/internal/domain/journal"
	pkgauth "github.com/matiasleandrokruk/groundedgrowth/pkg/auth"
)

// Deps are the collaborators the router needs. Logger and Gatherer may be nil.
type Deps struct {
	DB         *sql.DB
	Tokens     *pkgauth.TokenManager
	Analyzer   journal.Analyzer
	Preference *analysis.Preference
	Logger     *zap.Logger
	Gatherer   prometheus.Gatherer

	// Per-user limit on POST /api/ai/analyze.
	AnalyzePerMinute float64
	AnalyzeBurst     int
}

// NewRouter builds the chi router.
//
//	/health, /metrics            public
//	/api/auth/register, login    public
//	everything else under /api   Bearer JWT
func NewRouter(d Deps) *chi.Mux {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	auditService := domainaudit.NewService(d.DB)
	goalService := goal.NewService(d.DB)
	journalService := journal.NewService(d.DB)
	analyzeService := journal.NewAnalyzeService(journalService, goalService, d.Analyzer, auditService, logger.Named("analyze"))

	authHandler := handlers.NewAuthHandler(domainauth.NewService(d.DB, d.Tokens, auditService))
	goalHandler := handlers.NewGoalHandler(goalService)
	journalHandler := handlers.NewJournalHandler(journalService)
	aiHandler := handlers.NewAIHandler(analyzeService, journalService, d.Preference, auditService, logger.Named("ai"))
	limiter := apmiddleware.NewUserRateLimiter(d.AnalyzePerMinute, d.AnalyzeBurst)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apmiddleware.RequestLogger(logger.Named("http")))
	r.Use(middleware.Recoverer)

	// ===== PUBLIC ROUTES =====

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`)) //nolint:errcheck
	})

	gatherer := d.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		// ===== PROTECTED ROUTES =====
		r.Group(func(r chi.Router) {
			r.Use(apmiddleware.Auth(d.Tokens))
			r.Use(apmiddleware.Audit(auditService))

			r.Get("/auth/profile", authHandler.Profile)
			r.Get("/auth/verify", authHandler.Verify)
			r.Post("/auth/verify", authHandler.Verify)

			r.Route("/goals", func(r chi.Router) {
				r.Get("/", goalHandler.ListGoals)
				r.Post("/", goalHandler.CreateGoal)
				r.Get("/{id}", goalHandler.GetGoal)
				r.Put("/{id}", goalHandler.UpdateGoal)
				r.Delete("/{id}", goalHandler.DeleteGoal)
			})

			r.Route("/journal", func(r chi.Router) {
				r.Get("/", journalHandler.ListEntries)
				r.Post("/", journalHandler.CreateEntry)
				r.Get("/{id}", journalHandler.GetEntry)
				r.Put("/{id}", journalHandler.UpdateEntry)
				r.Delete("/{id}", journalHandler.DeleteEntry)
			})

			r.Route("/ai", func(r chi.Router) {
				r.With(limiter.Middleware).Post("/analyze", aiHandler.Analyze)
				r.Get("/analyses", aiHandler.ListAnalyses)
				r.Get("/analyses/{id}", aiHandler.GetAnalysis)
				r.Get("/entry/{journalEntryId}", aiHandler.EntryAnalyses)
				r.Get("/provider", aiHandler.GetProvider)
				r.Post("/provider", aiHandler.SetProvider)
			})
		})
	})

	return r
}
