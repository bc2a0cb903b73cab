package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/geocoder89/schoolhub/internal/auth"
	"github.com/geocoder89/schoolhub/internal/config"
	"github.com/geocoder89/schoolhub/internal/http/handlers"
	"github.com/geocoder89/schoolhub/internal/http/middlewares"
	"github.com/geocoder89/schoolhub/internal/observability"
	"github.com/geocoder89/schoolhub/internal/repo/postgres"
	"github.com/geocoder89/schoolhub/internal/service"
)

// NewRouter wires repositories, services, handlers and the middleware chain.
// limiter may be nil; auth endpoints then fall back to an in-memory window.
func NewRouter(log *slog.Logger, pool *pgxpool.Pool, cfg config.Config, limiter middlewares.Limiter) *gin.Engine {
	if cfg.Env != "dev" && cfg.Env != "test" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// own registry per router so tests can build routers freely
	registry := prometheus.NewRegistry()
	prom := observability.NewProm(registry)

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSAllowedOrigins))
	r.Use(middlewares.RequireJSON())
	r.Use(middlewares.MaxBodyBytes(1 << 20))
	r.Use(prom.GinHandleMiddleware())
	r.Use(otelgin.Middleware("schoolhub"))

	// health
	ping := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}

	h := handlers.NewHealthHandler(ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	// wire up repositories
	usersRepo := postgres.NewUsersRepo(pool, prom)
	rolesRepo := postgres.NewRolesRepo(pool)
	schoolsRepo := postgres.NewSchoolsRepo(pool)

	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.JWTRefreshSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)

	// services

	authService := service.NewAuthService(usersRepo, rolesRepo, schoolsRepo, jwtManager)
	userService := service.NewUserService(usersRepo, rolesRepo)

	// handlers + gate

	authHandler := handlers.NewAuthHandler(authService)
	usersHandler := handlers.NewUsersHandler(userService)
	authMW := middlewares.NewAuthMiddleware(jwtManager, usersRepo)

	if limiter == nil {
		limiter = middlewares.NewRateLimiter(10, time.Minute)
	}

	api := r.Group("/api/v1")

	authRoutes := api.Group("/auth")
	authRoutes.POST("/register", limiter.RateLimiterMiddleware(middlewares.KeyByIP), authHandler.Register)
	authRoutes.POST("/login", limiter.RateLimiterMiddleware(middlewares.KeyByIP), authHandler.Login)
	authRoutes.POST("/refresh", authHandler.Refresh)

	userRoutes := api.Group("/users")
	// public create kept as the admin-bootstrap path; self-service
	// registration lives under /auth/register
	userRoutes.POST("", usersHandler.CreateUser)
	userRoutes.GET("", authMW.RequireAuth(), authMW.RequireRoles("admin"), usersHandler.ListUsers)
	userRoutes.GET("/:id", authMW.RequireAuth(), authMW.RequireRoles("admin", "teacher", "parent"), usersHandler.GetUserByID)
	userRoutes.PUT("/:id", authMW.RequireAuth(), authMW.RequireRoles("admin"), usersHandler.UpdateUser)
	userRoutes.DELETE("/:id", authMW.RequireAuth(), authMW.RequireRoles("admin"), usersHandler.DeleteUser)

	return r
}
