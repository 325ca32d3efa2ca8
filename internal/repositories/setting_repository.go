package repositories

import (
	"database/sql"

	"habeshaexpat/internal/models"
)

type SettingRepository interface {
	Get(key string) (*models.Setting, error)
	Set(key, value string) (*models.Setting, error)
	List() ([]*models.Setting, error)
}

type settingRepository struct {
	DB *sql.DB
}

func NewSettingRepository(db *sql.DB) SettingRepository {
	return &settingRepository{DB: db}
}

func (r *settingRepository) Get(key string) (*models.Setting, error) {
	const q = `
		SELECT key, value, updated_at FROM settings WHERE key = $1
	`
	s := &models.Setting{}
	if err := r.DB.QueryRow(q, key).Scan(&s.Key, &s.Value, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *settingRepository) Set(key, value string) (*models.Setting, error) {
	const q = `
		INSERT INTO settings (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
		RETURNING key, value, updated_at
	`
	s := &models.Setting{}
	if err := r.DB.QueryRow(q, key, value).Scan(&s.Key, &s.Value, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *settingRepository) List() ([]*models.Setting, error) {
	rows, err := r.DB.Query(`SELECT key, value, updated_at FROM settings ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Setting
	for rows.Next() {
		s := &models.Setting{}
		if err := rows.Scan(&s.Key, &s.Value, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
