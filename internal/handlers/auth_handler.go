package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"habeshaexpat/internal/authz"
	"habeshaexpat/internal/middleware"
	"habeshaexpat/internal/models"
	"habeshaexpat/internal/services"
)

type AuthHandler struct {
	userService  services.UserService
	authService  services.AuthService
	auditService services.AuditService
	settings     services.SettingService
	alerts       services.AlertService
	tokenTTL     time.Duration
}

func NewAuthHandler(
	userService services.UserService,
	authService services.AuthService,
	auditService services.AuditService,
	settings services.SettingService,
	alerts services.AlertService,
	tokenTTL time.Duration,
) *AuthHandler {
	return &AuthHandler{
		userService:  userService,
		authService:  authService,
		auditService: auditService,
		settings:     settings,
		alerts:       alerts,
		tokenTTL:     tokenTTL,
	}
}

// @Summary      Sign in
// @Description  Exchanges email and password for a bearer token
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        login  body      models.LoginRequest  true  "Credentials"
// @Success      200    {object}  map[string]interface{}
// @Failure      400    {object}  map[string]string
// @Failure      401    {object}  map[string]string
// @Failure      403    {object}  map[string]string
// @Router       /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	email := strings.TrimSpace(strings.ToLower(req.Email))

	if h.settings != nil && h.settings.IsEnabled(services.SettingLoginsDisabled) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Logins are temporarily disabled"})
		return
	}

	user, err := h.userService.GetUserByEmail(email)
	if err != nil && !errors.Is(err, services.ErrUserNotFound) {
		log.Printf("[auth][login] user lookup error for email=%q: %v", email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}
	if err != nil || user == nil {
		// identical response for unknown identity and wrong password
		h.auditService.Record(email, services.AuditLoginFailed, "unknown identity", c.ClientIP())
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	if !h.authService.CheckPassword(user.PasswordHash, strings.TrimSpace(req.Password)) {
		log.Printf("[auth][login] password mismatch for userID=%d", user.ID)
		h.auditService.Record(email, services.AuditLoginFailed, "password mismatch", c.ClientIP())
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	if !authz.CanAccessDashboard(user.RoleID) {
		log.Printf("[auth][login] role=%d lacks dashboard access, userID=%d", user.RoleID, user.ID)
		h.auditService.Record(email, services.AuditLoginForbidden, "insufficient privilege", c.ClientIP())
		if h.alerts != nil {
			h.alerts.Notify("Dashboard login refused for %s (role %d, ip %s)", email, user.RoleID, c.ClientIP())
		}
		c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient privilege"})
		return
	}

	claims := &middleware.Claims{
		UserID: user.ID,
		RoleID: user.RoleID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(h.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(middleware.JWTKey)
	if err != nil {
		log.Printf("[auth][login] sign token failed for userID=%d: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	if err := h.userService.TouchLastLogin(user.ID); err != nil {
		log.Printf("[auth][login] touch last_login failed for userID=%d: %v", user.ID, err)
	}
	h.auditService.Record(email, services.AuditLoginSuccess, "", c.ClientIP())
	log.Printf("[auth][login] success userID=%d role=%d", user.ID, user.RoleID)

	c.JSON(http.StatusOK, gin.H{
		"token": tokenString,
		"user":  user, // PasswordHash is json:"-", never serialized
	})
}

// @Summary      Current account
// @Tags         Auth
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Router       /me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := getIntFromCtx(c, "user_id")
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no user in context"})
		return
	}
	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
