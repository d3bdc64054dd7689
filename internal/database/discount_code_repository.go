package database

import (
	"database/sql"

	"github.com/insiderbookings/backoffice/internal/models"
)

// DiscountCodeRepository handles database operations for the discount_codes
// table
type DiscountCodeRepository struct {
	db DB
}

// NewDiscountCodeRepository creates a new DiscountCodeRepository
func NewDiscountCodeRepository(db DB) *DiscountCodeRepository {
	return &DiscountCodeRepository{db: db}
}

const discountCodeColumns = `dc.id, dc.code, dc.staff_id, dc.hotel_id,
		   dc.percentage, dc.special_price, dc.starts_at, dc.ends_at,
		   dc.max_uses, dc.times_used, dc.active,
		   dc.created_at, dc.updated_at, s.name`

// Create inserts a new discount code
func (r *DiscountCodeRepository) Create(code *models.DiscountCode) error {
	query := `
		INSERT INTO discount_codes (
			code, staff_id, hotel_id, percentage, special_price,
			starts_at, ends_at, max_uses, active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`

	return r.db.QueryRow(
		query,
		code.Code, code.StaffID, code.HotelID, code.Percentage, code.SpecialPrice,
		code.StartsAt, code.EndsAt, code.MaxUses, code.Active,
	).Scan(&code.ID, &code.CreatedAt, &code.UpdatedAt)
}

// GetByCode retrieves an active discount code with the issuing staff name
// joined. Inactive codes are not visible here.
func (r *DiscountCodeRepository) GetByCode(code string) (*models.DiscountCode, error) {
	query := `
		SELECT ` + discountCodeColumns + `
		FROM discount_codes dc
		JOIN staff s ON s.id = dc.staff_id
		WHERE dc.code = $1 AND dc.active = TRUE
	`

	return r.scanCode(r.db.QueryRow(query, code))
}

// GetByID retrieves a discount code by ID
func (r *DiscountCodeRepository) GetByID(id int64) (*models.DiscountCode, error) {
	query := `
		SELECT ` + discountCodeColumns + `
		FROM discount_codes dc
		JOIN staff s ON s.id = dc.staff_id
		WHERE dc.id = $1
	`

	return r.scanCode(r.db.QueryRow(query, id))
}

// ListByStaff retrieves the codes a staff member has issued, newest first
func (r *DiscountCodeRepository) ListByStaff(staffID int64) ([]models.DiscountCode, error) {
	query := `
		SELECT ` + discountCodeColumns + `
		FROM discount_codes dc
		JOIN staff s ON s.id = dc.staff_id
		WHERE dc.staff_id = $1
		ORDER BY dc.created_at DESC
	`

	rows, err := r.db.Query(query, staffID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	codes := []models.DiscountCode{}
	for rows.Next() {
		code, err := r.scanCode(rows)
		if err != nil {
			return nil, err
		}
		codes = append(codes, *code)
	}

	return codes, rows.Err()
}

// CodeExists reports whether an active code with this value exists
func (r *DiscountCodeRepository) CodeExists(code string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM discount_codes WHERE code = $1 AND active = TRUE)`

	var exists bool
	err := r.db.QueryRow(query, code).Scan(&exists)
	return exists, err
}

// ConsumeUse bumps the use counter. The guard keeps the counter under
// max_uses even with concurrent redemptions; zero rows means the code was
// already exhausted.
func (r *DiscountCodeRepository) ConsumeUse(id int64) (bool, error) {
	query := `
		UPDATE discount_codes
		SET times_used = times_used + 1, updated_at = NOW()
		WHERE id = $1 AND active = TRUE
		  AND (max_uses IS NULL OR times_used < max_uses)
	`

	result, err := r.db.Exec(query, id)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows > 0, nil
}

// Deactivate turns a code off
func (r *DiscountCodeRepository) Deactivate(id, staffID int64) error {
	query := `
		UPDATE discount_codes
		SET active = FALSE, updated_at = NOW()
		WHERE id = $1 AND staff_id = $2 AND active = TRUE
	`

	result, err := r.db.Exec(query, id, staffID)
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

func (r *DiscountCodeRepository) scanCode(row scanner) (*models.DiscountCode, error) {
	code := &models.DiscountCode{}
	var percentage, specialPrice sql.NullFloat64
	var startsAt, endsAt sql.NullTime
	var hotelID, maxUses sql.NullInt64
	var staffName sql.NullString

	err := row.Scan(
		&code.ID, &code.Code, &code.StaffID, &hotelID, &percentage, &specialPrice,
		&startsAt, &endsAt, &maxUses, &code.TimesUsed, &code.Active,
		&code.CreatedAt, &code.UpdatedAt, &staffName,
	)
	if err != nil {
		return nil, err
	}

	if hotelID.Valid {
		code.HotelID = &hotelID.Int64
	}
	if percentage.Valid {
		code.Percentage = &percentage.Float64
	}
	if specialPrice.Valid {
		code.SpecialPrice = &specialPrice.Float64
	}
	if startsAt.Valid {
		code.StartsAt = &startsAt.Time
	}
	if endsAt.Valid {
		code.EndsAt = &endsAt.Time
	}
	if maxUses.Valid {
		v := int(maxUses.Int64)
		code.MaxUses = &v
	}
	if staffName.Valid {
		code.StaffName = &staffName.String
	}

	return code, nil
}
