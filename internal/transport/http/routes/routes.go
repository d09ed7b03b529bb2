package routes

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/okunev/learnhub/internal/infra/config"
	"github.com/okunev/learnhub/internal/transport/http/handlers"
	"github.com/okunev/learnhub/internal/transport/http/middleware"
	"github.com/okunev/learnhub/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Accounts    *usecase.AccountService
	Catalog     *usecase.CatalogService
	Enrollments *usecase.EnrollmentService
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config      *config.AppConfig
	Logger      *zap.Logger
	RateLimiter *middleware.RateLimiter
	Metrics     *middleware.HTTPMetrics
	Services    ServiceSet
	Database    DatabaseChecker
	Cache       CacheChecker
}

// DatabaseChecker exposes readiness behaviour for database connections.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// CacheChecker exposes readiness behaviour for cache backends.
type CacheChecker interface {
	HealthCheck(ctx context.Context) error
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.EnrichContext())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.CORS(deps.Config.CORS.AllowedOrigins))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Handler())
	}

	authMiddleware := middleware.RequireAuth(deps.Services.Accounts)

	healthOptions := make([]handlers.HealthOption, 0, 2)
	if deps.Database != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("database", deps.Database.Ping))
	}
	if deps.Cache != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("redis", deps.Cache.HealthCheck))
	}
	healthHandler := handlers.NewHealthHandler(healthOptions...)

	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		authHandler := handlers.NewAuthHandler(deps.Services.Accounts)

		authGroup := api.Group("/auth")
		authGroup.POST("/register", withRateLimit(deps, "auth_register_ip", deps.Config.RateLimit.RegisterMaxAttempts, authHandler.Register)...)
		authGroup.POST("/login", withRateLimit(deps, "auth_login_ip", deps.Config.RateLimit.LoginMaxAttempts, authHandler.Login)...)
		authGroup.POST("/verify-otp", authHandler.VerifyOTP)
		authGroup.POST("/resend-otp", withRateLimit(deps, "auth_resend_otp_ip", deps.Config.RateLimit.ResendOTPMaxAttempts, authHandler.ResendOTP)...)

		profileHandler := handlers.NewProfileHandler(deps.Services.Accounts, deps.Services.Enrollments)
		api.GET("/user/profile", authMiddleware, profileHandler.Profile)

		courseHandler := handlers.NewCourseHandler(deps.Services.Catalog, deps.Services.Enrollments)
		courses := api.Group("/courses")
		courses.Use(authMiddleware)
		courses.GET("", courseHandler.List)
		courses.GET("/:id", courseHandler.Get)
		courses.POST("/:id/enroll", courseHandler.Enroll)
		// Gin requires sibling routes to share the same wildcard name, so
		// the course segment is :id here and aliased for the handler.
		courses.POST("/:id/lessons/:lessonId/complete", wrapCourseParam(courseHandler.CompleteLesson))
	}

	return r
}

// wrapCourseParam aliases the :id path parameter to the courseId name the
// completion handler expects.
func wrapCourseParam(next gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Params = append(c.Params, gin.Param{Key: "courseId", Value: c.Param("id")})
		next(c)
	}
}

func withRateLimit(deps Dependencies, name string, limit int, handler gin.HandlerFunc) []gin.HandlerFunc {
	if deps.RateLimiter == nil || deps.Config == nil || limit <= 0 {
		return []gin.HandlerFunc{handler}
	}

	window := deps.Config.RateLimit.WindowDuration
	if window <= 0 {
		window = time.Minute
	}

	rule := middleware.RateLimitRule{
		Name:       name,
		Limit:      limit,
		Window:     window,
		Identifier: middleware.ClientIPIdentifier(),
	}

	return []gin.HandlerFunc{deps.RateLimiter.RateLimit(rule), handler}
}
