package services

import (
	"database/sql"
	"errors"
	"strings"

	"habeshaexpat/internal/models"
	"habeshaexpat/internal/repositories"
)

var ErrUserNotFound = errors.New("user not found")

type UserService interface {
	GetUserByID(id int) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	TouchLastLogin(userID int) error
}

type userService struct {
	repo repositories.UserRepository
}

func NewUserService(repo repositories.UserRepository) UserService {
	return &userService{repo: repo}
}

func (s *userService) GetUserByID(id int) (*models.User, error) {
	u, err := s.repo.GetByID(id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return u, err
}

func (s *userService) GetUserByEmail(email string) (*models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return nil, ErrUserNotFound
	}
	u, err := s.repo.GetByEmail(email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return u, err
}

func (s *userService) TouchLastLogin(userID int) error {
	return s.repo.TouchLastLogin(userID)
}
