package handler

import (
	"context"
	"time"

	"github.com/adventofai/backend/src/service"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Services are the dependencies of the HTTP surface
type Services struct {
	Unlock     *service.UnlockService
	Challenges *service.ChallengeService
	// Ping reports whether the backing stores are reachable
	Ping func(ctx context.Context) error
	// Registry is served on /metrics and receives the HTTP metrics. Optional.
	Registry *prometheus.Registry
	// Now is the clock of the date-driven trigger and the countdown
	Now func() time.Time
}

func RegisterRoutes(ctx context.Context, router *gin.Engine, services Services) {
	var reg prometheus.Registerer
	if services.Registry != nil {
		reg = services.Registry
	}
	SetMiddlewares(ctx, router, reg)

	if services.Registry != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(services.Registry, promhttp.HandlerOpts{})))
	}

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	unlockHandler := NewUnlockHandler(services.Unlock, services.Now)
	challengeHandler := NewChallengeHandler(services.Challenges, services.Now)

	api := router.Group("/api")
	{
		api.GET("/health", handleHealthCheck(services.Ping))

		// Unlock triggers, called by the daily workflow
		api.POST("/unlock", unlockHandler.Unlock)
		api.POST("/unlock-daily", unlockHandler.UnlockDaily)

		api.GET("/challenges", challengeHandler.ListChallenges)
		api.GET("/challenges/:day", challengeHandler.GetChallenge())
		api.GET("/schedule/next", challengeHandler.NextUnlock)
	}
}
