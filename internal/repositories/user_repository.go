package repositories

import (
	"database/sql"
	"strings"

	"habeshaexpat/internal/models"
)

type UserRepository interface {
	GetByID(id int) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	UpdatePassword(userID int, passwordHash string) error
	TouchLastLogin(userID int) error
}

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{DB: db}
}

func (r *userRepository) GetByID(id int) (*models.User, error) {
	const q = `
		SELECT id, name, email, password_hash, role_id, created_at, last_login_at
		FROM users
		WHERE id = $1
	`
	return r.scanOne(r.DB.QueryRow(q, id))
}

func (r *userRepository) GetByEmail(email string) (*models.User, error) {
	const q = `
		SELECT id, name, email, password_hash, role_id, created_at, last_login_at
		FROM users
		WHERE LOWER(email) = $1
	`
	return r.scanOne(r.DB.QueryRow(q, strings.ToLower(strings.TrimSpace(email))))
}

func (r *userRepository) scanOne(row *sql.Row) (*models.User, error) {
	u := &models.User{}
	var (
		roleID    sql.NullInt64
		lastLogin sql.NullTime
	)
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &roleID, &u.CreatedAt, &lastLogin)
	if err != nil {
		return nil, err
	}
	if roleID.Valid {
		u.RoleID = int(roleID.Int64)
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLoginAt = &t
	}
	return u, nil
}

func (r *userRepository) UpdatePassword(userID int, passwordHash string) error {
	const q = `
		UPDATE users SET password_hash = $2 WHERE id = $1
	`
	res, err := r.DB.Exec(q, userID, passwordHash)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *userRepository) TouchLastLogin(userID int) error {
	const q = `
		UPDATE users SET last_login_at = NOW() WHERE id = $1
	`
	_, err := r.DB.Exec(q, userID)
	return err
}
