package router

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/timekids/internal/config"
	"github.com/timekids/internal/db"
	"github.com/timekids/internal/handler"
)

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(cfg *config.AppConfig) *gin.Engine {
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	r := gin.Default()

	// 配置会话中间件
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	r.Use(sessions.Sessions("timekids_session", store))

	// 静态文件服务（头像等上传物）
	r.Static(cfg.UploadURLPath, cfg.UploadDir)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	a := handler.NewAPI(db.DB, cfg.UploadDir, cfg.UploadURLPath)

	// 无需登录的入口
	r.POST("/signup", a.Signup)
	r.POST("/login", a.Login)
	r.GET("/logout", a.Logout)

	// 需要认证的 API 路由
	api := r.Group("/api")
	api.Use(handler.AuthRequired())
	{
		api.GET("/me", a.Me)
		api.POST("/avatar", a.UploadAvatar)

		api.POST("/children", a.CreateChild)
		api.GET("/children", a.ListChildren)

		api.GET("/schedule", a.GetSchedule)
		api.POST("/schedule/copy", a.CopySchedule)
		api.GET("/categories", a.GetCategories)

		api.POST("/tasks", a.CreateTask)
		api.PUT("/tasks/:id", a.UpdateTask)
		api.DELETE("/tasks/:id", a.DeleteTask)

		api.GET("/templates", a.ListTemplates)
		api.POST("/templates", a.CreateTemplate)
		api.PUT("/templates/:id", a.UpdateTemplate)
		api.DELETE("/templates/:id", a.DeleteTemplate)

		api.GET("/records", a.ListRecords)
		api.POST("/records/start", a.StartRecord)
		api.POST("/records/:id/stop", a.StopRecord)
		api.PUT("/records/:id", a.EditRecord)
		api.POST("/records/off-schedule", a.AddOffScheduleRecord)
		api.DELETE("/records/:id", a.DeleteRecord)

		api.GET("/reports/daily", a.GetDailyReport)
		api.GET("/reports/weekly", a.GetWeeklyReport)
		api.GET("/reports/monthly", a.GetMonthlyReport)

		api.PUT("/comments", a.UpsertWeekComment)
		api.GET("/comments", a.GetWeekComment)
	}

	return r
}
