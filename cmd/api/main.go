package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/mariasandoval/storelocator-backend/api/routes"
	"github.com/mariasandoval/storelocator-backend/internal/auth"
	"github.com/mariasandoval/storelocator-backend/internal/geocode"
	"github.com/mariasandoval/storelocator-backend/internal/importer"
	"github.com/mariasandoval/storelocator-backend/internal/ratelimit"
	"github.com/mariasandoval/storelocator-backend/internal/search"
	"github.com/mariasandoval/storelocator-backend/internal/stores"
	"github.com/mariasandoval/storelocator-backend/internal/users"
	"github.com/mariasandoval/storelocator-backend/pkg/config"
	"github.com/mariasandoval/storelocator-backend/pkg/db"
	"github.com/mariasandoval/storelocator-backend/pkg/db/models"
	"github.com/mariasandoval/storelocator-backend/pkg/enums"
	"github.com/mariasandoval/storelocator-backend/pkg/logger"
	"github.com/mariasandoval/storelocator-backend/pkg/metrics"
	"github.com/mariasandoval/storelocator-backend/pkg/migrate"
	"github.com/mariasandoval/storelocator-backend/pkg/nominatim"
	"github.com/mariasandoval/storelocator-backend/pkg/redis"
	"github.com/mariasandoval/storelocator-backend/pkg/security"
)

const shutdownGrace = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}

	closeClients := func() error {
		return multierr.Combine(redisClient.Close(), dbClient.Close())
	}

	httpMetrics := metrics.NewHTTPMetrics(prometheus.DefaultRegisterer)
	cacheMetrics := metrics.NewCacheMetrics(prometheus.DefaultRegisterer)

	geoProvider, err := nominatim.NewClient(cfg.Geocoding)
	if err != nil {
		logg.Error(context.Background(), "failed to create geocoding client", err)
		os.Exit(1)
	}
	geocoder, err := geocode.NewResolver(geocode.ResolverParams{
		Cache:        redisClient,
		Provider:     geoProvider,
		Logger:       logg,
		CacheTTL:     cfg.Geocoding.CacheTTL(),
		MaxAttempts:  cfg.Geocoding.MaxAttempts,
		CacheMetrics: cacheMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create geocode resolver", err)
		os.Exit(1)
	}

	limiter, err := ratelimit.NewLimiter(redisClient, cfg.RateLimit)
	if err != nil {
		logg.Error(context.Background(), "failed to create rate limiter", err)
		os.Exit(1)
	}

	storeRepo := stores.NewRepository(dbClient.DB())
	userRepo := users.NewRepository(dbClient.DB())
	tokenRepo := auth.NewRefreshTokenRepository(dbClient.DB())

	// Expired rows are dead weight; sweep them on boot.
	if purged, err := tokenRepo.DeleteExpiredBefore(context.Background(), time.Now()); err != nil {
		logg.Warn(context.Background(), "failed to purge expired refresh tokens")
	} else if purged > 0 {
		logg.Info(logg.WithField(context.Background(), "purged", purged), "purged expired refresh tokens")
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:  userRepo,
		TokenRepo: tokenRepo,
		JWTConfig: cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	storeService, err := stores.NewService(storeRepo, geocoder)
	if err != nil {
		logg.Error(context.Background(), "failed to create store service", err)
		os.Exit(1)
	}

	searchService, err := search.NewService(search.ServiceParams{
		Repo:         storeRepo,
		Geocoder:     geocoder,
		Cache:        redisClient,
		Logger:       logg,
		Config:       cfg.Search,
		CacheMetrics: cacheMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create search service", err)
		os.Exit(1)
	}

	userService, err := users.NewService(userRepo, cfg.Password)
	if err != nil {
		logg.Error(context.Background(), "failed to create user service", err)
		os.Exit(1)
	}

	importService, err := importer.NewService(importer.ServiceParams{
		Repo:     storeRepo,
		Geocoder: geocoder,
		Logger:   logg,
		Config:   cfg.Import,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create import service", err)
		os.Exit(1)
	}

	if err := seedAdmin(context.Background(), cfg, logg, userRepo); err != nil {
		logg.Error(context.Background(), "failed to seed admin account", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:        cfg,
			Logger:        logg,
			DB:            dbClient,
			Redis:         redisClient,
			Limiter:       limiter,
			HTTPMetrics:   httpMetrics,
			AuthService:   authService,
			StoreService:  storeService,
			SearchService: searchService,
			UserService:   userService,
			ImportService: importService,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", multierr.Append(err, closeClients()))
			os.Exit(1)
		}
	case sig := <-stop:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		err := server.Shutdown(shutdownCtx)
		if err = multierr.Append(err, closeClients()); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			os.Exit(1)
		}
	}
}

// seedAdmin provisions the bootstrap admin account when configured and
// absent. Existing accounts are never modified.
func seedAdmin(ctx context.Context, cfg *config.Config, logg *logger.Logger, repo *users.Repository) error {
	email := cfg.Seed.AdminEmail
	password := cfg.Seed.AdminPassword
	if email == "" || password == "" {
		return nil
	}

	_, err := repo.FindByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := security.HashPassword(password, cfg.Password)
	if err != nil {
		return err
	}
	admin := models.User{
		Email:        email,
		PasswordHash: hash,
		Role:         enums.RoleAdmin,
		Status:       enums.UserStatusActive,
	}
	if err := repo.Create(ctx, &admin); err != nil {
		return err
	}
	logg.Info(logg.WithField(ctx, "email", email), "seeded admin account")
	return nil
}
