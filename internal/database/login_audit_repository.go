package database

import (
	"database/sql"

	"github.com/insiderbookings/backoffice/internal/models"
)

// LoginAuditRepository handles database operations for the login_audits
// table
type LoginAuditRepository struct {
	db DB
}

// NewLoginAuditRepository creates a new LoginAuditRepository
func NewLoginAuditRepository(db DB) *LoginAuditRepository {
	return &LoginAuditRepository{db: db}
}

// Record stores a sign-in attempt
func (r *LoginAuditRepository) Record(audit *models.LoginAudit) error {
	query := `
		INSERT INTO login_audits (
			actor_type, actor_id, email, success,
			ip_address, browser, os, mobile
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`

	return r.db.QueryRow(
		query,
		audit.ActorType, audit.ActorID, audit.Email, audit.Success,
		audit.IPAddress, audit.Browser, audit.OS, audit.Mobile,
	).Scan(&audit.ID, &audit.CreatedAt)
}

// ListRecent retrieves the latest attempts for an email address
func (r *LoginAuditRepository) ListRecent(email string, limit int) ([]models.LoginAudit, error) {
	query := `
		SELECT id, actor_type, actor_id, email, success,
			   ip_address, browser, os, mobile, created_at
		FROM login_audits
		WHERE LOWER(email) = LOWER($1)
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.Query(query, email, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	audits := []models.LoginAudit{}
	for rows.Next() {
		var audit models.LoginAudit
		var actorID sql.NullInt64

		err := rows.Scan(
			&audit.ID, &audit.ActorType, &actorID, &audit.Email, &audit.Success,
			&audit.IPAddress, &audit.Browser, &audit.OS, &audit.Mobile,
			&audit.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		if actorID.Valid {
			audit.ActorID = &actorID.Int64
		}

		audits = append(audits, audit)
	}

	return audits, rows.Err()
}
