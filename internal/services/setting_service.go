package services

import (
	"database/sql"
	"errors"
	"fmt"

	"habeshaexpat/internal/models"
	"habeshaexpat/internal/repositories"
)

// Kill switches honored by the public auth endpoints.
const (
	SettingLoginsDisabled = "logins_disabled"
	SettingResetsDisabled = "password_resets_disabled"
)

var knownSettings = map[string]struct{}{
	SettingLoginsDisabled: {},
	SettingResetsDisabled: {},
}

var ErrUnknownSetting = errors.New("unknown setting")

type SettingService interface {
	List() ([]*models.Setting, error)
	Set(key, value string) (*models.Setting, error)
	// IsEnabled treats a missing row as "off" so switches default to open.
	IsEnabled(key string) bool
}

type settingService struct {
	repo repositories.SettingRepository
}

func NewSettingService(repo repositories.SettingRepository) SettingService {
	return &settingService{repo: repo}
}

func (s *settingService) List() ([]*models.Setting, error) {
	return s.repo.List()
}

func (s *settingService) Set(key, value string) (*models.Setting, error) {
	if _, ok := knownSettings[key]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSetting, key)
	}
	return s.repo.Set(key, value)
}

func (s *settingService) IsEnabled(key string) bool {
	setting, err := s.repo.Get(key)
	if errors.Is(err, sql.ErrNoRows) {
		return false
	}
	if err != nil {
		// unreadable switch counts as off
		return false
	}
	switch setting.Value {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}
