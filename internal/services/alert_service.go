package services

import (
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// AlertService pushes security-sensitive events (password changes, repeated
// login failures) to the ops Telegram chat. All sends are best-effort.
type AlertService interface {
	Notify(format string, args ...any)
}

type alertService struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

type noopAlertService struct{}

func (noopAlertService) Notify(string, ...any) {}

func NewAlertService(botToken string, chatID int64, enabled bool) AlertService {
	if !enabled || botToken == "" || chatID == 0 {
		log.Printf("[alerts] telegram alerts disabled")
		return noopAlertService{}
	}
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		log.Printf("[alerts] telegram init failed, alerts disabled: %v", err)
		return noopAlertService{}
	}
	return &alertService{bot: bot, chatID: chatID}
}

func (s *alertService) Notify(format string, args ...any) {
	text := fmt.Sprintf(format, args...)
	msg := tgbotapi.NewMessage(s.chatID, text)
	if _, err := s.bot.Send(msg); err != nil {
		log.Printf("[alerts] telegram send failed: %v", err)
	}
}
