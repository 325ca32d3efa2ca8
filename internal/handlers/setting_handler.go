package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"habeshaexpat/internal/services"
)

type SettingHandler struct {
	settings     services.SettingService
	auditService services.AuditService
}

func NewSettingHandler(settings services.SettingService, auditService services.AuditService) *SettingHandler {
	return &SettingHandler{settings: settings, auditService: auditService}
}

// @Summary      List system settings
// @Tags         Settings
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /settings [get]
func (h *SettingHandler) List(c *gin.Context) {
	settings, err := h.settings.List()
	if err != nil {
		log.Printf("[settings][list] query failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list settings"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

// @Summary      Update a kill switch
// @Tags         Settings
// @Accept       json
// @Produce      json
// @Param        key      path      string  true  "setting key"
// @Param        request  body      map[string]string  true  "new value"
// @Success      200      {object}  map[string]interface{}
// @Failure      400      {object}  map[string]string
// @Router       /settings/{key} [put]
func (h *SettingHandler) Update(c *gin.Context) {
	key := c.Param("key")
	var req struct {
		Value string `json:"value" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	setting, err := h.settings.Set(key, req.Value)
	if err != nil {
		if errors.Is(err, services.ErrUnknownSetting) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.Printf("[settings][update] set failed: key=%s err=%v", key, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update setting"})
		return
	}

	actor := getStringFromCtx(c, "email")
	h.auditService.Record(actor, services.AuditSettingChanged, key+"="+req.Value, c.ClientIP())
	c.JSON(http.StatusOK, gin.H{"setting": setting})
}
