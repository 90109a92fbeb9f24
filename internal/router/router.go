package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/enrollment-backend/internal/config"
	"github.com/stemsi/enrollment-backend/internal/handler"
	"github.com/stemsi/enrollment-backend/internal/middleware"
	"github.com/stemsi/enrollment-backend/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Student    *handler.StudentHandler
	Course     *handler.CourseHandler
	Enrollment *handler.EnrollmentHandler
	WS         *handler.WSHandler
}

// SetupRouter configures all Gin routes with their middlewares.
// limiter guards the write routes; a nil limiter disables it.
func SetupRouter(
	handlers *Handlers,
	limiter *middleware.RateLimiter,
	cfg *config.Config,
	log zerolog.Logger,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// Client IPs key the rate limiter; only listed proxies may set them.
	if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		log.Error().Err(err).Strs("trusted_proxies", cfg.TrustedProxies).Msg("Invalid TRUSTED_PROXIES, trusting none")
		_ = router.SetTrustedProxies(nil)
	}

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Request ID first so the request log line and every envelope carry it.
	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.NoStore(), middleware.Compress())

	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// ─── 1. Reads ──────────────────────────────────────────────────────
	router.GET("/courses", handlers.Course.ListCourses)
	router.GET("/courses/:id", handlers.Course.GetCourse)
	router.GET("/courses/:id/events", handlers.Course.CourseEvents)
	router.GET("/students/:id", handlers.Student.GetStudent)
	router.GET("/student_courses/:id", handlers.Student.StudentCourses)

	// ─── 2. Writes (Rate Limited) ──────────────────────────────────────
	writes := router.Group("")
	if limiter != nil {
		writes.Use(limiter.Middleware())
	}
	{
		writes.POST("/register_student", handlers.Student.RegisterStudent)
		writes.POST("/update_student/:id", handlers.Student.UpdateStudent)
		writes.POST("/add_course", handlers.Course.AddCourse)
		writes.POST("/enroll", handlers.Enrollment.Enroll)
		writes.POST("/unenroll", handlers.Enrollment.Unenroll)
	}

	// ─── 3. WebSocket ──────────────────────────────────────────────────
	if handlers.WS != nil {
		router.GET("/ws/courses/:id/seats", handlers.WS.CourseSeatsStream)
	}

	router.NoRoute(func(c *gin.Context) {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	})

	return router
}
