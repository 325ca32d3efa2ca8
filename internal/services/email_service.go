package services

import (
	"fmt"
	"time"

	"gopkg.in/gomail.v2"
)

type EmailService interface {
	SendResetCode(email, code string) error
	SendPasswordChangedNotice(email string) error
}

type emailService struct {
	dialer  *gomail.Dialer
	from    string
	codeTTL time.Duration
}

func NewEmailService(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail string, codeTTL time.Duration) EmailService {
	dialer := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword)
	return &emailService{
		dialer:  dialer,
		from:    fromEmail,
		codeTTL: codeTTL,
	}
}

func resetCodeBody(code string, ttl time.Duration) string {
	return fmt.Sprintf(`
		<h3>Password reset requested</h3>
		<p>We received a request to reset the password for your admin account.</p>
		<p>Your verification code is: <strong>%s</strong></p>
		<p>The code expires in %s.</p>
		<p>If you did not request this change, you can ignore this email.</p>
	`, code, formatTTL(ttl))
}

func formatTTL(ttl time.Duration) string {
	minutes := int(ttl.Round(time.Minute) / time.Minute)
	if minutes <= 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", minutes)
}

func (s *emailService) SendResetCode(email, code string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Your Habesha Expat verification code")

	m.SetBody("text/html", resetCodeBody(code, s.codeTTL))

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send reset code email: %w", err)
	}

	return nil
}

func (s *emailService) SendPasswordChangedNotice(email string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Your Habesha Expat password was changed")

	body := `
		<h3>Password changed</h3>
		<p>The password for your admin account was just changed.</p>
		<p>If this was not you, contact the platform team immediately.</p>
	`

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send password changed email: %w", err)
	}

	return nil
}
