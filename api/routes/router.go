package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cargochainlabs/cargochain-backend/api/controllers"
	"github.com/cargochainlabs/cargochain-backend/api/middleware"
	"github.com/cargochainlabs/cargochain-backend/internal/auth"
	"github.com/cargochainlabs/cargochain-backend/internal/booking"
	"github.com/cargochainlabs/cargochain-backend/internal/spaces"
	"github.com/cargochainlabs/cargochain-backend/internal/stats"
	"github.com/cargochainlabs/cargochain-backend/internal/tracking"
	"github.com/cargochainlabs/cargochain-backend/pkg/config"
	"github.com/cargochainlabs/cargochain-backend/pkg/enums"
	"github.com/cargochainlabs/cargochain-backend/pkg/logger"
	"github.com/cargochainlabs/cargochain-backend/pkg/redis"
)

// Dependencies carries everything the router wires into handlers.
type Dependencies struct {
	Config   *config.Config
	Logger   *logger.Logger
	Redis    *redis.Client
	Pingers  map[string]controllers.Pinger
	Auth     auth.Service
	Spaces   spaces.Service
	Booking  booking.Service
	Tracking tracking.Service
	Stats    stats.Service
}

func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	// interface vars stay nil when no redis is wired, so the middleware
	// no-op paths actually trigger
	var limiterStore middleware.RateLimiterStore
	var idempotencyStore redis.IdempotencyStore
	if deps.Redis != nil {
		limiterStore = deps.Redis
		idempotencyStore = deps.Redis
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginIdentifierLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterIdentifierLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Pingers))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, limiterStore, logg)).Post("/register", controllers.AuthRegister(deps.Auth, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, limiterStore, logg)).Post("/login", controllers.AuthLogin(deps.Auth, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, limiterStore, logg)).Post("/wallet-login", controllers.AuthWalletLogin(deps.Auth, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		r.Route("/spaces", func(r chi.Router) {
			r.Get("/", controllers.SpaceList(deps.Spaces, logg))
			r.Get("/search", controllers.SpaceSearch(deps.Spaces, logg))
			r.Get("/{spaceId}", controllers.SpaceGet(deps.Spaces, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(enums.UserRoleLogistics.String(), logg))
				r.Post("/", controllers.SpaceCreate(deps.Spaces, logg))
				r.Patch("/{spaceId}/status", controllers.SpaceUpdateStatus(deps.Spaces, logg))
			})
		})

		r.Route("/shipments", func(r chi.Router) {
			r.Post("/", controllers.ShipmentCreate(deps.Booking, logg))
			r.Get("/", controllers.ShipmentList(deps.Booking, logg))
			r.Get("/{shipmentId}", controllers.ShipmentGet(deps.Booking, logg))
			r.Patch("/{shipmentId}/status", controllers.ShipmentUpdateStatus(deps.Booking, logg))
			r.Get("/{shipmentId}/transaction", controllers.TransactionGetByShipment(deps.Booking, logg))
			r.Post("/{shipmentId}/tracking", controllers.TrackingAppend(deps.Tracking, logg))
			r.Get("/{shipmentId}/tracking", controllers.TrackingList(deps.Tracking, logg))
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Post("/", controllers.TransactionCreate(deps.Booking, logg))
			r.Get("/{transactionId}", controllers.TransactionGet(deps.Booking, logg))
			r.Patch("/{transactionId}/confirm", controllers.TransactionConfirm(deps.Booking, logg))
		})

		r.With(middleware.RequireRole(enums.UserRoleDeveloper.String(), logg)).
			Get("/stats", controllers.StatsSummary(deps.Stats, logg))
	})

	return r
}
