package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tutor-hub/internal/domain"
	"tutor-hub/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	cookies *CookieManager,
	tokenSvc *service.TokenService,
	limiter service.RateLimiter,
	authH *AuthHandler,
	googleH *GoogleHandler,
	tutorH *TutorProfileHandler,
	enrollH *EnrollmentHandler,
	uploadH *UploadHandler,
	healthPing func(ctx context.Context) error,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	requireAuth := AuthMiddleware(cookies, tokenSvc)

	r.GET("/healthz", func(c *gin.Context) {
		if healthPing != nil {
			if err := healthPing(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Limites por ruta heredados del throttler original: 3/min para altas y
	// flujos de reset, 5/min para login y verificacion.
	auth := r.Group("/auth")
	auth.POST("/register/student", Throttle(limiter, time.Minute, 3), authH.RegisterStudent)
	auth.POST("/register/tutor", Throttle(limiter, time.Minute, 3), authH.RegisterTutor)
	auth.POST("/login", Throttle(limiter, time.Minute, 5), authH.Login)
	auth.POST("/logout", requireAuth, authH.Logout)
	auth.POST("/refresh", Throttle(limiter, time.Minute, 5), authH.Refresh)
	auth.GET("/me", requireAuth, authH.Me)
	auth.PUT("/profile", requireAuth, authH.UpdateProfile)
	auth.POST("/forgot-password", Throttle(limiter, time.Minute, 3), authH.ForgotPassword)
	auth.POST("/verify-otp", Throttle(limiter, time.Minute, 5), authH.VerifyOTP)
	auth.POST("/reset-password", Throttle(limiter, time.Minute, 3), authH.ResetPassword)
	auth.POST("/change-password", requireAuth, authH.ChangePassword)
	auth.GET("/google", googleH.Login)
	auth.GET("/google/callback", googleH.Callback)

	tutor := r.Group("/tutor-profile")
	tutor.GET("/all", tutorH.ListAll)
	tutor.POST("", requireAuth, RequireRoles(domain.RoleTutor), tutorH.Save)
	tutor.GET("", requireAuth, RequireRoles(domain.RoleTutor), tutorH.Get)
	tutor.PATCH("", requireAuth, RequireRoles(domain.RoleTutor), tutorH.Save)
	tutor.POST("/upload-profile-image", requireAuth, RequireRoles(domain.RoleTutor), tutorH.UploadProfileImage)
	tutor.POST("/upload-certificate", requireAuth, RequireRoles(domain.RoleTutor), tutorH.UploadCertificate)

	enroll := r.Group("/enrollment-applications", requireAuth)
	enroll.POST("", RequireRoles(domain.RoleStudent), enrollH.Create)
	enroll.GET("/student", RequireRoles(domain.RoleStudent), enrollH.ListByStudent)
	enroll.GET("/tutor/:tutorId", RequireRoles(domain.RoleTutor), enrollH.ListByTutor)
	enroll.PATCH("/:id", RequireRoles(domain.RoleTutor), enrollH.Decide)

	upload := r.Group("/upload", requireAuth)
	upload.POST("/image", uploadH.UploadImage)
	upload.POST("/document", uploadH.UploadDocument)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
