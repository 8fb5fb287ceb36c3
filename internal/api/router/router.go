package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"volunteerhub/config"
	"volunteerhub/internal/api/handler"
	"volunteerhub/internal/api/middleware"
	"volunteerhub/internal/model"
	"volunteerhub/pkg/jwt"
	"volunteerhub/pkg/redis"
)

// Deps infrastructure the routes need besides the handlers. DB and Redis may be nil.
type Deps struct {
	JWT    *jwt.Manager
	Redis  *redis.Client
	DB     *gorm.DB
	Logger *zap.Logger
}

// Setup builds the gin engine.
func Setup(cfg *config.Config, h *handler.Handler, deps Deps) *gin.Engine {
	r := gin.New()

	// a nil *redis.Client must not become a non-nil interface
	var (
		revocations middleware.RevocationChecker
		limiter     middleware.Limiter
	)
	if deps.Redis != nil {
		revocations = deps.Redis
		limiter = deps.Redis
	}

	// ── global middleware ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes, cfg.Server.MaxUploadBytes))

	// ── probes ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", readiness(deps))

	volunteers := []string{model.RoleVolunteer, model.RoleGroupAdmin, model.RoleAdmin}
	managers := []string{model.RoleGroupAdmin, model.RoleAdmin}
	adminOnly := middleware.RoleAuth(model.RoleAdmin)
	authLimit := middleware.RateLimit(limiter, cfg.RateLimit.AuthRequests, cfg.RateLimit.AuthWindow)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// auth, no token required
		auth := v1.Group("/auth")
		{
			auth.POST("/login", authLimit, h.Auth.Login)
			auth.POST("/register", authLimit, h.Auth.Register)
			auth.POST("/refresh", authLimit, h.Auth.RefreshToken)
		}

		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(deps.JWT, revocations))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.GetCurrentUser)
			authorized.PUT("/auth/password", h.Auth.ChangePassword)

			// the caller's own views
			me := authorized.Group("/me")
			{
				me.GET("/shifts", h.Shift.MySignups)
				me.GET("/shifts/calendar.ics", h.Shift.CalendarFeed)
				me.GET("/check-ins", h.CheckIn.ListMine)
				me.GET("/hours", h.CheckIn.MySummary)
			}

			users := authorized.Group("/users")
			{
				users.GET("", adminOnly, h.User.ListUsers)
				users.POST("", adminOnly, h.User.CreateUser)
				users.POST("/import", adminOnly, h.User.ImportUsers)
				users.GET("/:id", middleware.RoleAuth(managers...), h.User.GetUser)
				users.PUT("/:id", h.User.UpdateUser) // self or admin, checked in the service
				users.DELETE("/:id", adminOnly, h.User.DeleteUser)
				users.PUT("/:id/active", adminOnly, h.User.SetActive)
				users.PUT("/:id/role", adminOnly, h.User.AssignRole)
				users.POST("/:id/reset-password", adminOnly, h.User.ResetPassword)
			}

			applications := authorized.Group("/applications")
			{
				applications.POST("", h.Application.Submit)
				applications.GET("/mine", h.Application.ListMine)
				applications.POST("/:id/withdraw", h.Application.Withdraw)
				applications.GET("", adminOnly, h.Application.List)
				applications.GET("/:id", adminOnly, h.Application.Get)
				applications.POST("/:id/approve", adminOnly, h.Application.Approve)
				applications.POST("/:id/reject", adminOnly, h.Application.Reject)
			}

			shifts := authorized.Group("/shifts")
			{
				shifts.GET("", h.Shift.List)
				shifts.GET("/:id", h.Shift.Get)
				shifts.POST("", middleware.RoleAuth(managers...), h.Shift.Create)
				shifts.POST("/import", middleware.RoleAuth(managers...), h.Shift.ImportICS)
				shifts.PUT("/:id", middleware.RoleAuth(managers...), h.Shift.Update)
				shifts.POST("/:id/cancel", middleware.RoleAuth(managers...), h.Shift.Cancel)
				shifts.DELETE("/:id", middleware.RoleAuth(managers...), h.Shift.Delete)
				shifts.GET("/:id/roster", middleware.RoleAuth(managers...), h.Shift.Roster)
				shifts.GET("/:id/check-ins", middleware.RoleAuth(managers...), h.CheckIn.ListByShift)
				shifts.DELETE("/:id/signups/:volunteer_id", middleware.RoleAuth(managers...), h.Shift.RemoveVolunteer)

				shifts.POST("/:id/signup", middleware.RoleAuth(volunteers...), h.Shift.Signup)
				shifts.DELETE("/:id/signup", middleware.RoleAuth(volunteers...), h.Shift.CancelSignup)
			}

			groups := authorized.Group("/groups")
			{
				groups.GET("", h.Group.List)
				groups.GET("/:id", h.Group.Get)
				groups.GET("/:id/members", h.Group.ListMembers)
				groups.POST("", adminOnly, h.Group.Create)
				groups.DELETE("/:id", adminOnly, h.Group.Delete)
				groups.PUT("/:id", middleware.RoleAuth(managers...), h.Group.Update)
				groups.PUT("/:id/members/:user_id/role", middleware.RoleAuth(managers...), h.Group.SetMemberRole)
				groups.DELETE("/:id/members/:user_id", middleware.RoleAuth(managers...), h.Group.RemoveMember)
				groups.POST("/:id/join", middleware.RoleAuth(volunteers...), h.Group.Join)
				groups.POST("/:id/leave", middleware.RoleAuth(volunteers...), h.Group.Leave)
			}

			checkIns := authorized.Group("/check-ins")
			{
				checkIns.POST("", middleware.RoleAuth(volunteers...), h.CheckIn.CheckIn)
				checkIns.POST("/check-out", middleware.RoleAuth(volunteers...), h.CheckIn.CheckOut)
				checkIns.POST("/manual", middleware.RoleAuth(managers...), h.CheckIn.CreateManual)
				checkIns.PUT("/:id", middleware.RoleAuth(managers...), h.CheckIn.Update)
			}

			reports := authorized.Group("/reports", adminOnly)
			{
				reports.GET("/dashboard", h.Report.Dashboard)
				reports.GET("/volunteer-hours", h.Report.VolunteerHours)
				reports.GET("/volunteer-hours/export", h.Report.ExportVolunteerHours)
				reports.GET("/group-hours", h.Report.GroupHours)
				reports.GET("/shift-fill", h.Report.ShiftFill)
			}
		}
	}

	return r
}

// readiness reports 503 while the database is unreachable; Redis is reported but optional.
func readiness(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		checks := gin.H{}
		ready := true

		if deps.DB != nil {
			checks["database"] = "ok"
			sqlDB, err := deps.DB.DB()
			if err == nil {
				err = sqlDB.PingContext(ctx)
			}
			if err != nil {
				checks["database"] = "unavailable"
				ready = false
			}
		}
		if deps.Redis != nil {
			checks["redis"] = "ok"
			if err := deps.Redis.Ping(ctx); err != nil {
				// redis is optional; report it without failing readiness
				checks["redis"] = "degraded"
			}
		}

		status := http.StatusOK
		checks["status"] = "ready"
		if !ready {
			status = http.StatusServiceUnavailable
			checks["status"] = "not ready"
		}
		c.JSON(status, checks)
	}
}
