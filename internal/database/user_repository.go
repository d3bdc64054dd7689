package database

import (
	"database/sql"

	"github.com/insiderbookings/backoffice/internal/models"
)

// UserRepository handles database operations for the users table
type UserRepository struct {
	db DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user
func (r *UserRepository) Create(user *models.User) error {
	query := `
		INSERT INTO users (name, email, password_hash, phone, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	return r.db.QueryRow(
		query,
		user.Name, user.Email, user.PasswordHash, user.Phone, user.IsActive,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

// GetByID retrieves a user by ID, excluding soft-deleted rows
func (r *UserRepository) GetByID(id int64) (*models.User, error) {
	query := `
		SELECT id, name, email, password_hash, phone, is_active,
			   created_at, updated_at, deleted_at
		FROM users
		WHERE id = $1 AND deleted_at IS NULL
	`

	return r.scanUser(r.db.QueryRow(query, id))
}

// GetByEmail retrieves a user by email, excluding soft-deleted rows
func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	query := `
		SELECT id, name, email, password_hash, phone, is_active,
			   created_at, updated_at, deleted_at
		FROM users
		WHERE LOWER(email) = LOWER($1) AND deleted_at IS NULL
	`

	return r.scanUser(r.db.QueryRow(query, email))
}

// UpdateProfile updates mutable profile fields
func (r *UserRepository) UpdateProfile(user *models.User) error {
	query := `
		UPDATE users
		SET name = $2, email = $3, phone = $4, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at
	`

	return r.db.QueryRow(query, user.ID, user.Name, user.Email, user.Phone).Scan(&user.UpdatedAt)
}

// UpdatePassword replaces the stored password hash
func (r *UserRepository) UpdatePassword(id int64, passwordHash string) error {
	query := `
		UPDATE users
		SET password_hash = $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, id, passwordHash)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// SoftDelete marks a user as deleted without removing the row
func (r *UserRepository) SoftDelete(id int64) error {
	query := `
		UPDATE users
		SET deleted_at = NOW(), is_active = FALSE, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// List retrieves all active users, newest first
func (r *UserRepository) List() ([]models.User, error) {
	query := `
		SELECT id, name, email, password_hash, phone, is_active,
			   created_at, updated_at, deleted_at
		FROM users
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		user, err := r.scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}

	return users, rows.Err()
}

func (r *UserRepository) scanUser(row scanner) (*models.User, error) {
	user := &models.User{}
	var phone sql.NullString
	var deletedAt sql.NullTime

	err := row.Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash, &phone,
		&user.IsActive, &user.CreatedAt, &user.UpdatedAt, &deletedAt,
	)
	if err != nil {
		return nil, err
	}

	if phone.Valid {
		user.Phone = &phone.String
	}
	if deletedAt.Valid {
		user.DeletedAt = &deletedAt.Time
	}

	return user, nil
}
