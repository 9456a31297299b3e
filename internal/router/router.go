package router

import (
	"github.com/loomtrack/internal/config"
	"github.com/loomtrack/internal/constants"
	"github.com/loomtrack/internal/http/handlers"
	"github.com/loomtrack/internal/logger"
	"github.com/loomtrack/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	handler := handlers.New(c)

	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	r.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(200, gin.H{"status": "ok"})
	})

	apiV1 := r.Group("/api/v1")
	{
		apiV1.POST("/auth/login", handler.Login)

		authed := apiV1.Group("")
		authed.Use(AuthMiddleware(c.AuthService))
		{
			// 状态目录
			authed.GET("/statuses", handler.ListStatuses)
			authed.GET("/statuses/:id/transitions", handler.ListTransitions)

			// 跟踪台账
			authed.GET("/orders/:orderNo/tracking", handler.GetTracking)
			authed.POST("/orders/:orderNo/events", handler.RecordEvent)

			// 生产工序
			authed.POST("/production-steps", handler.CreateStep)
			authed.PUT("/production-steps/:id", handler.UpdateStep)
			authed.GET("/orders/:orderNo/production-steps", handler.ListSteps)

			// 阶段流转
			authed.POST("/transfers", handler.CreateTransfer)
			authed.GET("/transfers", handler.ListTransfers)
			authed.GET("/transfers/:id", handler.GetTransfer)
			authed.PATCH("/transfers/:id", handler.UpdateTransfer)

			// 延期/取消
			authed.POST("/delays", handler.ReportDelay)
			authed.POST("/delays/:id/approve",
				RequirePermission(c.AuthzService, constants.PermissionDelayApprove),
				handler.ApproveDelay)
			authed.GET("/orders/:orderNo/delays", handler.ListDelays)

			// 流程卡
			authed.POST("/cards", handler.CreateCard)
			authed.GET("/cards/active", handler.ListActiveCards)
			authed.GET("/cards/:cardNumber", handler.GetCard)
			authed.POST("/cards/:cardNumber/start", handler.StartStep)
			authed.POST("/cards/:cardNumber/start-simple", handler.StartStepSimple)
			authed.POST("/cards/:cardNumber/complete", handler.CompleteStep)

			// 站内通知
			authed.GET("/notifications", handler.ListNotifications)
			authed.POST("/notifications/:id/read", handler.MarkNotificationRead)
		}
	}

	return r
}
