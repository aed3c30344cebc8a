package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rollmates/dicematch-backend/api/controllers"
	"github.com/rollmates/dicematch-backend/api/middleware"
	"github.com/rollmates/dicematch-backend/internal/match"
	"github.com/rollmates/dicematch-backend/internal/rolls"
	"github.com/rollmates/dicematch-backend/internal/users"
	"github.com/rollmates/dicematch-backend/pkg/config"
	"github.com/rollmates/dicematch-backend/pkg/logger"
)

// Deps carries everything the HTTP surface needs. Optional fields may stay
// nil; the affected routes degrade instead of panicking.
type Deps struct {
	Config       *config.Config
	Logger       *logger.Logger
	Pingers      map[string]controllers.Pinger
	UserService  users.Service
	RollService  rolls.Service
	MatchService match.Service
	RateLimiter  middleware.RateLimiterStore
	Metrics      prometheus.Gatherer
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Pingers))
	})

	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.UserContext(logg))

		r.Route("/users", func(r chi.Router) {
			r.Post("/", controllers.UpsertUser(deps.UserService, logg))
			r.Get("/me", controllers.GetUser(deps.UserService, logg))
		})

		r.Route("/rolls", func(r chi.Router) {
			r.With(middleware.RollRateLimit(cfg.RollRateLimit, deps.RateLimiter, logg)).
				Post("/", controllers.SubmitRoll(deps.MatchService, logg))
			r.Get("/", controllers.ListRolls(deps.RollService, logg))
		})

		r.Get("/matches", controllers.ListMatches(deps.MatchService, logg))
	})

	return r
}
