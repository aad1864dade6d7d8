package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/madrasati-app/madrasati-api/internal/middleware"
	"github.com/madrasati-app/madrasati-api/internal/models"
	"github.com/madrasati-app/madrasati-api/internal/service"
)

// Handlers bundles every HTTP handler for route registration.
type Handlers struct {
	Auth       *AuthHandler
	Approvals  *ApprovalHandler
	Students   *StudentHandler
	Links      *LinkHandler
	Messages   *MessageHandler
	Attendance *AttendanceHandler
	Grades     *GradeHandler
	Homework   *HomeworkHandler
	Ticker     *TickerHandler
	Theme      *ThemeHandler
	Extraction *ExtractionHandler
	Dashboard  *DashboardHandler
	Reports    *ReportHandler
	Files      *FileHandler
	Realtime   *RealtimeHandler
}

// RegisterRoutes mounts all API routes under the prefix. Role gates query
// the role assignment table on every request.
func RegisterRoutes(r *gin.Engine, prefix string, h Handlers, auth *service.AuthService, roles *service.RoleService, metrics *service.MetricsService) {
	api := r.Group(prefix)

	public := api.Group("")
	{
		public.POST("/auth/register", h.Auth.Register)
		public.POST("/auth/login", h.Auth.Login)
		public.POST("/auth/refresh", h.Auth.Refresh)
		public.POST("/auth/forgot-password", h.Auth.ForgotPassword)
	}

	authed := api.Group("")
	authed.Use(middleware.JWT(auth))
	{
		authed.GET("/auth/me", h.Auth.Me)
		authed.POST("/auth/logout", h.Auth.Logout)
		authed.POST("/auth/change-password", h.Auth.ChangePassword)

		authed.GET("/ticker", h.Ticker.ListActive)
		authed.GET("/theme", h.Theme.List)
		authed.GET("/theme/active", h.Theme.Active)
		authed.GET("/homework", h.Homework.List)

		authed.GET("/messages", h.Messages.Inbox)
		authed.POST("/messages/:id/read", h.Messages.MarkRead)

		authed.GET("/realtime", h.Realtime.Connect)

		authed.POST("/files/sign", h.Files.Sign)
	}

	staff := api.Group("")
	staff.Use(middleware.JWT(auth), middleware.RequireRoles(roles, models.RoleAdmin, models.RoleTeacher))
	{
		staff.POST("/messages", h.Messages.Send)
		staff.POST("/messages/group", h.Messages.SendGroup)

		staff.POST("/attendance", h.Attendance.Record)
		staff.POST("/grades", h.Grades.Record)
		staff.PUT("/grades/:id", h.Grades.Update)
		staff.DELETE("/grades/:id", h.Grades.Delete)

		staff.POST("/homework", h.Homework.Publish)
		staff.PUT("/homework/:id", h.Homework.Update)
		staff.DELETE("/homework/:id", h.Homework.Delete)
		staff.POST("/homework/attachments", h.Homework.UploadAttachment)

		staff.GET("/students", h.Students.List)
		staff.GET("/students/:id", h.Students.Get)

		staff.GET("/reports/attendance", h.Reports.Attendance)
		staff.GET("/reports/grades", h.Reports.Grades)

		staff.GET("/dashboard/teacher", h.Dashboard.Teacher)
	}

	// Attendance and grade listings are shared: parents are limited to their
	// linked children inside the handlers.
	shared := api.Group("")
	shared.Use(middleware.JWT(auth))
	{
		shared.GET("/attendance", h.Attendance.List)
		shared.GET("/grades", h.Grades.List)
	}

	parents := api.Group("")
	parents.Use(middleware.JWT(auth), middleware.RequireRoles(roles, models.RoleParent))
	{
		parents.POST("/links/children", h.Links.LinkChild)
		parents.GET("/links/children", h.Links.ListChildren)
		parents.GET("/dashboard/parent", h.Dashboard.Parent)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.JWT(auth), middleware.RequireRoles(roles, models.RoleAdmin))
	{
		admin.GET("/approvals", h.Approvals.ListPending)
		admin.POST("/approvals/:id/approve", h.Approvals.Approve)
		admin.POST("/approvals/:id/reject", h.Approvals.Reject)

		admin.POST("/students", h.Students.Create)
		admin.PUT("/students/:id", h.Students.Update)
		admin.DELETE("/students/:id", h.Students.Delete)
		admin.POST("/students/import", h.Students.Import)

		admin.POST("/links/teacher-students", h.Links.AssignTeacherStudent)
		admin.POST("/links/teacher-grades", h.Links.AssignTeacherGradeLevel)

		admin.GET("/ticker", h.Ticker.ListAll)
		admin.POST("/ticker", h.Ticker.Create)
		admin.PUT("/ticker/:id", h.Ticker.Update)
		admin.DELETE("/ticker/:id", h.Ticker.Delete)

		admin.PUT("/theme", h.Theme.Switch)
		admin.POST("/extraction", h.Extraction.Extract)
		admin.POST("/extraction/confirm", h.Extraction.Confirm)
		admin.GET("/dashboard", h.Dashboard.AdminStats)
	}

	api.GET("/files/download", h.Files.Download)

	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
