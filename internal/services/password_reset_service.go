package services

import (
	"database/sql"
	"errors"
	"log"
	"strings"

	"habeshaexpat/internal/models"
	"habeshaexpat/internal/otp"
	"habeshaexpat/internal/repositories"
)

var ErrPasswordPolicy = errors.New("password must be at least 8 characters")

const minPasswordLength = 8

// PasswordResetService drives the stateless recovery flow: a 6-digit code is
// emailed out-of-band, and the HMAC token returned by RequestReset is the
// only server artifact the client needs to present back. Nothing is stored.
type PasswordResetService interface {
	RequestReset(email string) (token string, err error)
	VerifyCode(email, code, token string) error
	ResetPassword(email, newPassword string) error
}

type passwordResetService struct {
	userRepo repositories.UserRepository
	issuer   *otp.Issuer
	emails   EmailService
	auth     AuthService
}

func NewPasswordResetService(userRepo repositories.UserRepository, issuer *otp.Issuer, emails EmailService, auth AuthService) PasswordResetService {
	return &passwordResetService{
		userRepo: userRepo,
		issuer:   issuer,
		emails:   emails,
		auth:     auth,
	}
}

func (s *passwordResetService) RequestReset(email string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	user, err := s.lookup(email)
	if err != nil {
		return "", err
	}

	code := s.issuer.GenerateCode()
	token := s.issuer.Challenge(email, code)

	if s.emails != nil {
		if err := s.emails.SendResetCode(user.Email, code); err != nil {
			log.Printf("[password-reset][request] failed to send code to %s: %v", user.Email, err)
			return "", err
		}
	}
	log.Printf("[password-reset][request] challenge issued for userID=%d", user.ID)
	return token, nil
}

func (s *passwordResetService) VerifyCode(email, code, token string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	return s.issuer.Verify(email, strings.TrimSpace(code), strings.TrimSpace(token))
}

// ResetPassword overwrites the stored hash for the account. The OTP token is
// not required here, so the verification step and the credential update are
// independent calls.
func (s *passwordResetService) ResetPassword(email, newPassword string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	newPassword = strings.TrimSpace(newPassword)
	if len(newPassword) < minPasswordLength {
		return ErrPasswordPolicy
	}

	user, err := s.lookup(email)
	if err != nil {
		return err
	}

	hash, err := s.auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(user.ID, hash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		return err
	}

	if s.emails != nil {
		if err := s.emails.SendPasswordChangedNotice(user.Email); err != nil {
			log.Printf("[password-reset][reset] failed to send change notice to %s: %v", user.Email, err)
		}
	}
	log.Printf("[password-reset][reset] password updated for userID=%d", user.ID)
	return nil
}

func (s *passwordResetService) lookup(email string) (*models.User, error) {
	if email == "" {
		return nil, ErrUserNotFound
	}
	u, err := s.userRepo.GetByEmail(email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}
