package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mariasandoval/storelocator-backend/api/controllers"
	"github.com/mariasandoval/storelocator-backend/api/middleware"
	"github.com/mariasandoval/storelocator-backend/internal/auth"
	"github.com/mariasandoval/storelocator-backend/internal/importer"
	"github.com/mariasandoval/storelocator-backend/internal/ratelimit"
	"github.com/mariasandoval/storelocator-backend/internal/search"
	"github.com/mariasandoval/storelocator-backend/internal/stores"
	"github.com/mariasandoval/storelocator-backend/internal/users"
	pkgauth "github.com/mariasandoval/storelocator-backend/pkg/auth"
	"github.com/mariasandoval/storelocator-backend/pkg/config"
	"github.com/mariasandoval/storelocator-backend/pkg/db"
	"github.com/mariasandoval/storelocator-backend/pkg/logger"
	"github.com/mariasandoval/storelocator-backend/pkg/metrics"
	"github.com/mariasandoval/storelocator-backend/pkg/redis"
)

// Deps bundles everything the router needs. The zero value of any
// optional field (metrics, limiter) is tolerated.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          *db.Client
	Redis       *redis.Client
	Limiter     ratelimit.Limiter
	HTTPMetrics *metrics.HTTPMetrics

	AuthService   auth.Service
	StoreService  stores.Service
	SearchService search.Service
	UserService   users.Service
	ImportService importer.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive())
		r.Get("/ready", controllers.HealthReady(deps.DB, deps.Redis, logg))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).Post("/login", controllers.AuthLogin(deps.AuthService, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.AuthService, logg))
		r.Post("/logout", controllers.AuthLogout(deps.AuthService, logg))
	})

	// Public search counts authenticated callers per user, anonymous
	// callers per client IP.
	r.Route("/api/stores", func(r chi.Router) {
		r.Use(
			middleware.OptionalAuth(cfg.JWT, logg),
			middleware.RateLimit(deps.Limiter, logg),
		)
		r.Post("/search", controllers.StoreSearch(deps.SearchService, logg))
	})

	// Admin requests are admitted per authenticated user.
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(
			middleware.Auth(cfg.JWT, logg),
			middleware.RateLimit(deps.Limiter, logg),
		)

		r.Get("/ping", controllers.AdminPing())

		r.Route("/stores", func(r chi.Router) {
			r.With(middleware.RequireCapability(pkgauth.CapabilityStoresRead, logg)).Get("/", controllers.StoreList(deps.StoreService, logg))
			r.With(middleware.RequireCapability(pkgauth.CapabilityStoresRead, logg)).Get("/{storeID}", controllers.StoreGet(deps.StoreService, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireCapability(pkgauth.CapabilityStoresWrite, logg))
				r.Post("/", controllers.StoreCreate(deps.StoreService, logg))
				r.Patch("/{storeID}", controllers.StoreUpdate(deps.StoreService, logg))
				r.Delete("/{storeID}", controllers.StoreDeactivate(deps.StoreService, logg))
			})

			r.With(middleware.RequireCapability(pkgauth.CapabilityStoresImport, logg)).Post("/import", controllers.StoreImport(deps.ImportService, logg))
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(middleware.RequireCapability(pkgauth.CapabilityUsersManage, logg))
			r.Post("/", controllers.UserCreate(deps.UserService, logg))
			r.Get("/", controllers.UserList(deps.UserService, logg))
			r.Get("/{userID}", controllers.UserGet(deps.UserService, logg))
			r.Put("/{userID}", controllers.UserUpdate(deps.UserService, logg))
			r.Delete("/{userID}", controllers.UserDeactivate(deps.UserService, logg))
		})
	})

	return r
}
