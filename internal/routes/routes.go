package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"habeshaexpat/internal/authz"
	"habeshaexpat/internal/handlers"
	"habeshaexpat/internal/middleware"
)

func SetupRoutes(
	r *gin.Engine,
	authHandler *handlers.AuthHandler,
	resetHandler *handlers.ResetHandler,
	auditHandler *handlers.AuditHandler,
	settingHandler *handlers.SettingHandler,
) *gin.Engine {

	// ---- public
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.POST("/login", authHandler.Login)
	r.POST("/send-otp", resetHandler.SendOTP)
	r.POST("/verify-otp", resetHandler.VerifyOTP)
	r.POST("/reset-password", resetHandler.ResetPassword)

	// ---- protected
	r.Use(middleware.AuthMiddleware())
	r.Use(middleware.ReadOnlyGuard())

	r.GET("/me", authHandler.Me)

	// AUDIT (audit viewers + super admin)
	audit := r.Group("/audit",
		middleware.RequireRoles(authz.RoleAudit, authz.RoleSuperAdmin),
	)
	{
		audit.GET("/", auditHandler.List)
		audit.GET("/count", auditHandler.GetCount)
		audit.GET("/export", auditHandler.Export)
	}

	// SETTINGS (super admin only)
	settings := r.Group("/settings",
		middleware.RequireRoles(authz.RoleSuperAdmin),
	)
	{
		settings.GET("/", settingHandler.List)
		settings.PUT("/:key", settingHandler.Update)
	}

	return r
}
