package services

import (
	"log"

	"habeshaexpat/internal/models"
	"habeshaexpat/internal/repositories"
)

// Audit action names recorded by the auth flow.
const (
	AuditOTPRequested   = "otp.requested"
	AuditOTPVerified    = "otp.verified"
	AuditOTPFailed      = "otp.failed"
	AuditPasswordReset  = "password.reset"
	AuditLoginSuccess   = "login.success"
	AuditLoginFailed    = "login.failed"
	AuditLoginForbidden = "login.forbidden"
	AuditSettingChanged = "setting.changed"
)

type AuditService interface {
	// Record is best-effort: a failed insert is logged, never propagated.
	Record(actor, action, detail, ip string)
	List(limit, offset int) ([]*models.AuditLog, error)
	GetCount() (int, error)
}

type auditService struct {
	repo repositories.AuditRepository
}

func NewAuditService(repo repositories.AuditRepository) AuditService {
	return &auditService{repo: repo}
}

func (s *auditService) Record(actor, action, detail, ip string) {
	entry := &models.AuditLog{
		Actor:  actor,
		Action: action,
		Detail: detail,
		IP:     ip,
	}
	if err := s.repo.Insert(entry); err != nil {
		log.Printf("[audit][record] insert failed: action=%s actor=%q err=%v", action, actor, err)
	}
}

func (s *auditService) List(limit, offset int) ([]*models.AuditLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(limit, offset)
}

func (s *auditService) GetCount() (int, error) {
	return s.repo.GetCount()
}
