package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"habeshaexpat/internal/pdf"
	"habeshaexpat/internal/services"
)

type AuditHandler struct {
	auditService services.AuditService
	reports      pdf.Generator
}

func NewAuditHandler(auditService services.AuditService, reports pdf.Generator) *AuditHandler {
	return &AuditHandler{auditService: auditService, reports: reports}
}

// @Summary      List audit entries
// @Tags         Audit
// @Produce      json
// @Param        limit   query     int  false  "page size (default 50)"
// @Param        offset  query     int  false  "offset"
// @Success      200     {object}  map[string]interface{}
// @Router       /audit [get]
func (h *AuditHandler) List(c *gin.Context) {
	limit := queryInt(c, "limit", 50)
	offset := queryInt(c, "offset", 0)

	entries, err := h.auditService.List(limit, offset)
	if err != nil {
		log.Printf("[audit][list] query failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list audit entries"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries, "limit": limit, "offset": offset})
}

// @Summary      Count audit entries
// @Tags         Audit
// @Produce      json
// @Success      200  {object}  map[string]int
// @Router       /audit/count [get]
func (h *AuditHandler) GetCount(c *gin.Context) {
	n, err := h.auditService.GetCount()
	if err != nil {
		log.Printf("[audit][count] query failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count audit entries"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}

// @Summary      Export the audit trail as PDF
// @Tags         Audit
// @Produce      application/pdf
// @Success      200  {file}  binary
// @Router       /audit/export [get]
func (h *AuditHandler) Export(c *gin.Context) {
	limit := queryInt(c, "limit", 500)
	entries, err := h.auditService.List(limit, 0)
	if err != nil {
		log.Printf("[audit][export] query failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export audit entries"})
		return
	}
	path, err := h.reports.GenerateAuditReport(entries)
	if err != nil {
		log.Printf("[audit][export] pdf generation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate report"})
		return
	}
	c.FileAttachment(path, "audit.pdf")
}
