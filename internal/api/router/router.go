package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mdibnuahmad159-cpu/studio-sub000/config"
	"github.com/mdibnuahmad159-cpu/studio-sub000/internal/api/handler"
	"github.com/mdibnuahmad159-cpu/studio-sub000/internal/api/middleware"
	"github.com/mdibnuahmad159-cpu/studio-sub000/pkg/jwt"
	"github.com/mdibnuahmad159-cpu/studio-sub000/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
// rdb 可为 nil：此时不做 Token 注销检查与登录限流
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	var (
		blacklist middleware.Blacklist
		limiter   middleware.Limiter
	)
	if rdb != nil {
		blacklist = rdb
		limiter = rdb
	}

	handler.RegisterValidators()

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	// 所有接口都经过可选认证：读接口对访客开放，写接口要求管理员
	v1 := r.Group("/api/v1")
	v1.Use(middleware.JWTAuth(jwtMgr, blacklist))
	admin := middleware.RequireAdmin()
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/login", middleware.RateLimit(limiter, cfg.Auth.LoginRateLimit, cfg.Auth.LoginRateWindow), h.Auth.Login)
			auth.POST("/logout", admin, h.Auth.Logout)
			auth.GET("/me", h.Auth.Session)
		}

		// 学生与学籍
		students := v1.Group("/students")
		{
			students.GET("", h.Student.ListStudents)
			students.GET("/:nis", h.Student.GetStudent)
			students.POST("", admin, h.Student.CreateStudent)
			students.PUT("/:nis", admin, h.Student.UpdateStudent)
			students.DELETE("/:nis", admin, h.Student.DeleteStudent)
			students.POST("/progression", admin, h.Student.Progress)
			students.POST("/:nis/revert-graduation", admin, h.Student.RevertGraduation)
			students.POST("/import", admin, h.Student.ImportRoster)
		}

		// 校友
		alumni := v1.Group("/alumni")
		{
			alumni.GET("", h.Student.ListAlumni)
			alumni.GET("/years", h.Student.AlumniYears)
		}

		// 科目
		subjects := v1.Group("/subjects")
		{
			subjects.GET("", h.Subject.ListSubjects)
			subjects.POST("", admin, h.Subject.CreateSubject)
			subjects.PUT("/:id", admin, h.Subject.UpdateSubject)
			subjects.DELETE("/:id", admin, h.Subject.DeleteSubject)
		}

		// 教职工
		staff := v1.Group("/staff")
		{
			staff.GET("", h.Staff.ListStaff)
			staff.POST("", admin, h.Staff.CreateStaff)
			staff.PUT("/:id", admin, h.Staff.UpdateStaff)
			staff.DELETE("/:id", admin, h.Staff.DeleteStaff)
		}

		// 成绩
		scores := v1.Group("/scores")
		{
			scores.GET("", h.Score.GetSheet)
			scores.PUT("", admin, h.Score.UpdateScores)
			scores.POST("/import", admin, h.Score.ImportScores)
		}

		// 考勤与评语
		attendance := v1.Group("/attendance")
		{
			attendance.GET("", h.Attendance.ListAttendance)
			attendance.PUT("", admin, h.Attendance.UpdateAttendance)
		}

		// 课表 / 考试安排（:kind = regular | exam）
		schedules := v1.Group("/schedules")
		{
			schedules.GET("/:kind", h.Schedule.GetGrid)
			schedules.PUT("/:kind", admin, h.Schedule.AssignSlot)
			schedules.DELETE("/:kind", admin, h.Schedule.ClearSlot)
		}

		// 成绩报告单
		reports := v1.Group("/reports")
		{
			reports.GET("/:nis", h.Report.GetReportCard)
			reports.GET("/:nis/pdf", h.Report.DownloadReportCard)
		}

		// 导出
		export := v1.Group("/export")
		{
			export.GET("/students", h.Export.ExportRoster)
			export.GET("/scores", h.Export.ExportScores)
			export.GET("/schedules/:kind", h.Schedule.ExportICS)
		}

		v1.GET("/dashboard", h.Dashboard.Summary)
	}

	return r
}
