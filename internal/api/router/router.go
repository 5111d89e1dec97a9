package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Kolmo-Construction/Kolmo-Design-Portal-sub001/internal/estimate"
	httpmiddleware "github.com/Kolmo-Construction/Kolmo-Design-Portal-sub001/internal/http/middleware"
	"github.com/Kolmo-Construction/Kolmo-Design-Portal-sub001/internal/intake"
	"github.com/Kolmo-Construction/Kolmo-Design-Portal-sub001/internal/leads"
	"github.com/Kolmo-Construction/Kolmo-Design-Portal-sub001/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	IntakeHandler      *intake.Handler
	IntakeService      intake.Service
	LeadsHandler       *leads.Handler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// Requests/sec per IP on the public intake surface; 0 disables limiting.
	RateLimitPerSecond float64
	RateLimitBurst     int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", healthCheck)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Group(func(public chi.Router) {
		if cfg.RateLimitPerSecond > 0 {
			public.Use(httpmiddleware.RateLimit(cfg.RateLimitPerSecond, cfg.RateLimitBurst))
		}

		if cfg.IntakeHandler != nil {
			public.Route("/sessions", func(r chi.Router) {
				r.Post("/start", cfg.IntakeHandler.Start)
				r.Post("/turn", cfg.IntakeHandler.Turn)
				r.Get("/{sessionID}", cfg.IntakeHandler.Get)
				r.Post("/{sessionID}/abandon", cfg.IntakeHandler.Abandon)
				if cfg.IntakeService != nil {
					r.Get("/{sessionID}/quote", quoteHandler(cfg.IntakeService, cfg.Logger))
				}
			})
		}

		if cfg.LeadsHandler != nil {
			public.Route("/leads", func(r chi.Router) {
				r.Post("/web", cfg.LeadsHandler.CreateWebLead)
				r.Get("/", cfg.LeadsHandler.ListLeads)
				r.Get("/{leadID}", cfg.LeadsHandler.GetLead)
			})
		}
	})

	return r
}

func healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// quoteHandler prices a completed session's line items.
func quoteHandler(service intake.Service, logger *logging.Logger) http.HandlerFunc {
	if logger == nil {
		logger = logging.Default()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := chi.URLParam(r, "sessionID")
		session, err := service.GetSession(r.Context(), sessionID)
		if err != nil {
			http.Error(w, "Session not found", http.StatusNotFound)
			return
		}
		if session.Status != intake.StatusCompleted {
			http.Error(w, "Session is not complete", http.StatusConflict)
			return
		}

		quote := estimate.Assemble(session)
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(quote); err != nil {
			logger.Error("failed to encode quote", "error", err)
		}
	}
}
