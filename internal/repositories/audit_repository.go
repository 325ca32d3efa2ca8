package repositories

import (
	"database/sql"

	"habeshaexpat/internal/models"
)

type AuditRepository interface {
	Insert(entry *models.AuditLog) error
	List(limit, offset int) ([]*models.AuditLog, error)
	GetCount() (int, error)
}

type auditRepository struct {
	DB *sql.DB
}

func NewAuditRepository(db *sql.DB) AuditRepository {
	return &auditRepository{DB: db}
}

func (r *auditRepository) Insert(entry *models.AuditLog) error {
	const q = `
		INSERT INTO audit_logs (actor, action, detail, ip)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	return r.DB.QueryRow(q, entry.Actor, entry.Action, entry.Detail, entry.IP).
		Scan(&entry.ID, &entry.CreatedAt)
}

func (r *auditRepository) List(limit, offset int) ([]*models.AuditLog, error) {
	const q = `
		SELECT id, actor, action, detail, ip, created_at
		FROM audit_logs
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.DB.Query(q, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.AuditLog
	for rows.Next() {
		e := &models.AuditLog{}
		var detail, ip sql.NullString
		if err := rows.Scan(&e.ID, &e.Actor, &e.Action, &detail, &ip, &e.CreatedAt); err != nil {
			return nil, err
		}
		if detail.Valid {
			e.Detail = detail.String
		}
		if ip.Valid {
			e.IP = ip.String
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *auditRepository) GetCount() (int, error) {
	var n int
	err := r.DB.QueryRow(`SELECT COUNT(*) FROM audit_logs`).Scan(&n)
	return n, err
}
