package server

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"storefront/internal/auth"
	"storefront/internal/catalog"
	"storefront/internal/config"
	custommiddleware "storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/service"
	"storefront/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     *sql.DB
	redis  *redis.Client
}

func NewServer(cfg *config.Config, logger *zap.Logger, db *sql.DB, redisClient *redis.Client) (*Server, error) {
	strategy, err := catalog.ParseStrategy(cfg.Catalog.FilterStrategy)
	if err != nil {
		return nil, err
	}

	router := chi.NewRouter()
	for _, mw := range custommiddleware.DefaultMiddlewareStack() {
		router.Use(mw)
	}
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(cfg.Server.AllowedOrigins, cfg.IsDevelopment()))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		custommiddleware.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Gateway
	productRepo := repository.NewProductRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)

	// Catalog core
	engine := catalog.NewEngine(productRepo, strategy, logger.Named("catalog"),
		catalog.WithCacheTTL(cfg.Catalog.CacheTTL),
	)
	resolver := catalog.NewResolver(categoryRepo, logger.Named("categories"))

	// Services
	productService := service.NewProductService(productRepo, engine, logger)
	profileService := service.NewProfileService(profileRepo)
	analyticsService := service.NewAnalyticsService(analyticsRepo, logger)

	// Auth
	if cfg.Auth.JWTSecret == "" {
		logger.Warn("AUTH_JWT_SECRET is empty; every authenticated request will be rejected")
	}
	authMiddleware := custommiddleware.AuthMiddleware(auth.NewVerifier(cfg.Auth.JWTSecret), logger)
	adminOnly := custommiddleware.RequireAdmin(cfg.Auth.AdminRoles, logger)

	// Public routes count per client host, authenticated ones per user
	rateLimit := custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
		RequestsPerWindow: cfg.RateLimit.Requests,
		Window:            cfg.RateLimit.Window,
		KeyPrefix:         "storefront_rate_limit",
	}, logger)

	router.Group(func(r chi.Router) {
		r.Use(rateLimit)

		transport.NewCatalogHandler(engine, resolver, productService, logger).RegisterRoutes(r)
		transport.NewAnalyticsHandler(analyticsService, logger).RegisterRoutes(r)
	})

	transport.SessionHandler{}.RegisterRoutes(router, authMiddleware, rateLimit)
	transport.NewAdminHandler(resolver, productService, profileService, analyticsService, logger).
		RegisterRoutes(router, authMiddleware, adminOnly, rateLimit)

	logger.Info("Catalog configured",
		zap.String("strategy", string(strategy)),
		zap.Duration("cache_ttl", cfg.Catalog.CacheTTL),
	)

	return &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
		db:     db,
		redis:  redisClient,
	}, nil
}

// Close releases the database and redis connections
func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
