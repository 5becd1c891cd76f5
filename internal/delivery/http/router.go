package http

import (
	"net/http"

	"github.com/befriend-app/befriend-backend/internal/delivery/http/handler"
	"github.com/befriend-app/befriend-backend/internal/delivery/http/middleware"
	"github.com/befriend-app/befriend-backend/internal/metrics"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Router struct {
	discoverHandler *handler.DiscoverHandler
	profileHandler  *handler.ProfileHandler
	sessionHandler  *handler.SessionHandler
	authMiddleware  *middleware.AuthMiddleware
	rateLimiter     *middleware.KeyedRateLimiter
	metrics         *metrics.Metrics
	logger          *zap.Logger
	allowedOrigins  []string
}

func NewRouter(
	discoverHandler *handler.DiscoverHandler,
	profileHandler *handler.ProfileHandler,
	sessionHandler *handler.SessionHandler,
	authMiddleware *middleware.AuthMiddleware,
	rateLimiter *middleware.KeyedRateLimiter,
	m *metrics.Metrics,
	log *zap.Logger,
	allowedOrigins []string,
) *Router {
	if log == nil {
		log = zap.NewNop()
	}
	return &Router{
		discoverHandler: discoverHandler,
		profileHandler:  profileHandler,
		sessionHandler:  sessionHandler,
		authMiddleware:  authMiddleware,
		rateLimiter:     rateLimiter,
		metrics:         m,
		logger:          log,
		allowedOrigins:  allowedOrigins,
	}
}

func (r *Router) Setup() *gin.Engine {
	handler.RegisterValidators()

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.AccessLog(r.logger, r.metrics),
		middleware.CORS(r.allowedOrigins),
	)

	// Health check (supports both GET and HEAD)
	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	}
	router.GET("/health", healthHandler)
	router.HEAD("/health", healthHandler)

	if r.metrics != nil {
		router.GET("/metrics", gin.WrapH(r.metrics.Handler()))
	}

	protected := router.Group("")
	protected.Use(r.authMiddleware.RequireAuth())
	{
		protected.POST("/discover", middleware.RateLimitByUser(r.rateLimiter), r.discoverHandler.Discover)
		protected.GET("/me", r.sessionHandler.Me)

		profile := protected.Group("/profile")
		{
			profile.GET("/me", r.profileHandler.GetMyProfile)
			profile.PUT("/me", r.profileHandler.UpdateMyProfile)
			profile.POST("/register", r.profileHandler.Register)
			profile.GET("/:uid", r.profileHandler.GetProfileCard)
		}
	}

	return router
}
