package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"habeshaexpat/internal/models"
	"habeshaexpat/internal/otp"
	"habeshaexpat/internal/services"
)

type ResetHandler struct {
	resets       services.PasswordResetService
	auditService services.AuditService
	settings     services.SettingService
	alerts       services.AlertService
}

func NewResetHandler(
	resets services.PasswordResetService,
	auditService services.AuditService,
	settings services.SettingService,
	alerts services.AlertService,
) *ResetHandler {
	return &ResetHandler{
		resets:       resets,
		auditService: auditService,
		settings:     settings,
		alerts:       alerts,
	}
}

// @Summary      Request a reset code
// @Description  Emails a 6-digit code and returns the challenge token the client must replay
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request  body      models.SendOTPRequest  true  "Account email"
// @Success      200      {object}  map[string]string
// @Failure      400      {object}  map[string]string
// @Failure      404      {object}  map[string]string
// @Router       /send-otp [post]
func (h *ResetHandler) SendOTP(c *gin.Context) {
	var req models.SendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	email := strings.TrimSpace(strings.ToLower(req.Email))

	if h.settings != nil && h.settings.IsEnabled(services.SettingResetsDisabled) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Password resets are temporarily disabled"})
		return
	}

	token, err := h.resets.RequestReset(email)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Email is not registered"})
			return
		}
		log.Printf("[reset][send-otp] request failed for email=%q: %v", email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send code"})
		return
	}

	h.auditService.Record(email, services.AuditOTPRequested, "", c.ClientIP())
	c.JSON(http.StatusOK, gin.H{"token": token, "email": email})
}

// @Summary      Verify a reset code
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request  body      models.VerifyOTPRequest  true  "Email, code and challenge token"
// @Success      200      {object}  map[string]bool
// @Failure      400      {object}  map[string]string
// @Router       /verify-otp [post]
func (h *ResetHandler) VerifyOTP(c *gin.Context) {
	var req models.VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	email := strings.TrimSpace(strings.ToLower(req.Email))

	if err := h.resets.VerifyCode(email, req.Code, req.Token); err != nil {
		h.auditService.Record(email, services.AuditOTPFailed, err.Error(), c.ClientIP())
		switch {
		case errors.Is(err, otp.ErrMalformedToken):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Malformed token"})
		case errors.Is(err, otp.ErrCodeExpired):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Code has expired"})
		case errors.Is(err, otp.ErrCodeInvalid):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Code"})
		default:
			log.Printf("[reset][verify-otp] unexpected error for email=%q: %v", email, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Verification failed"})
		}
		return
	}

	h.auditService.Record(email, services.AuditOTPVerified, "", c.ClientIP())
	c.JSON(http.StatusOK, gin.H{"verified": true})
}

// @Summary      Set a new password
// @Description  Overwrites the account password after recovery
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request  body      models.ResetPasswordRequest  true  "Email and new password"
// @Success      200      {object}  map[string]string
// @Failure      400      {object}  map[string]string
// @Failure      404      {object}  map[string]string
// @Router       /reset-password [post]
func (h *ResetHandler) ResetPassword(c *gin.Context) {
	var req models.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	email := strings.TrimSpace(strings.ToLower(req.Email))

	if h.settings != nil && h.settings.IsEnabled(services.SettingResetsDisabled) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Password resets are temporarily disabled"})
		return
	}

	if err := h.resets.ResetPassword(email, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, services.ErrPasswordPolicy):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Email is not registered"})
		default:
			log.Printf("[reset][reset-password] failed for email=%q: %v", email, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset password"})
		}
		return
	}

	h.auditService.Record(email, services.AuditPasswordReset, "", c.ClientIP())
	if h.alerts != nil {
		h.alerts.Notify("Password reset completed for %s (ip %s)", email, c.ClientIP())
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password has been reset"})
}
