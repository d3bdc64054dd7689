package database

import (
	"database/sql"
	"time"

	"github.com/insiderbookings/backoffice/internal/models"
)

// UpsellCodeRepository handles database operations for the upsell_codes
// table
type UpsellCodeRepository struct {
	db DB
}

// NewUpsellCodeRepository creates a new UpsellCodeRepository
func NewUpsellCodeRepository(db DB) *UpsellCodeRepository {
	return &UpsellCodeRepository{db: db}
}

const upsellCodeColumns = `id, code, staff_id, outside_booking_id, add_on_id,
	   add_on_option_id, qty, unit_price, status, expires_at, redeemed_at,
	   payment_id, created_at, updated_at`

// Create inserts a new upsell code
func (r *UpsellCodeRepository) Create(code *models.UpsellCode) error {
	query := `
		INSERT INTO upsell_codes (
			code, staff_id, outside_booking_id, add_on_id, add_on_option_id,
			qty, unit_price, status, expires_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`

	return r.db.QueryRow(
		query,
		code.Code, code.StaffID, code.OutsideBookingID, code.AddOnID,
		code.OptionID, code.Quantity, code.UnitPrice, code.Status, code.ExpiresAt,
	).Scan(&code.ID, &code.CreatedAt, &code.UpdatedAt)
}

// GetByCode retrieves an upsell code by value
func (r *UpsellCodeRepository) GetByCode(code string) (*models.UpsellCode, error) {
	query := `SELECT ` + upsellCodeColumns + ` FROM upsell_codes WHERE code = $1`

	return r.scanCode(r.db.QueryRow(query, code))
}

// GetByID retrieves an upsell code by primary key
func (r *UpsellCodeRepository) GetByID(id int64) (*models.UpsellCode, error) {
	query := `SELECT ` + upsellCodeColumns + ` FROM upsell_codes WHERE id = $1`

	return r.scanCode(r.db.QueryRow(query, id))
}

// ListByStaff retrieves the codes a staff member has issued, newest first
func (r *UpsellCodeRepository) ListByStaff(staffID int64) ([]models.UpsellCode, error) {
	query := `SELECT ` + upsellCodeColumns + ` FROM upsell_codes
		WHERE staff_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.Query(query, staffID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	codes := []models.UpsellCode{}
	for rows.Next() {
		code, err := r.scanCode(rows)
		if err != nil {
			return nil, err
		}
		codes = append(codes, *code)
	}

	return codes, rows.Err()
}

// PendingCodeExists reports whether a live (pending, unexpired) code with
// this value exists
func (r *UpsellCodeRepository) PendingCodeExists(code string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM upsell_codes
			WHERE code = $1 AND status = 'pending' AND expires_at > NOW()
		)
	`

	var exists bool
	err := r.db.QueryRow(query, code).Scan(&exists)
	return exists, err
}

// Redeem flips a pending code to used. Zero rows means the code was
// already redeemed, so concurrent redemptions cannot both win.
func (r *UpsellCodeRepository) Redeem(id int64, at time.Time) (bool, error) {
	query := `
		UPDATE upsell_codes
		SET status = 'used', redeemed_at = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
	`

	result, err := r.db.Exec(query, id, at)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows > 0, nil
}

// SetPaymentID stores the checkout session opened for a code
func (r *UpsellCodeRepository) SetPaymentID(id int64, paymentID string) error {
	query := `UPDATE upsell_codes SET payment_id = $2, updated_at = NOW() WHERE id = $1`

	_, err := r.db.Exec(query, id, paymentID)
	return err
}

// MarkPaid settles an online payment for a pending code and returns the
// updated row so the add-on can be booked. sql.ErrNoRows means the code
// already left the pending state.
func (r *UpsellCodeRepository) MarkPaid(id int64, paymentID string) (*models.UpsellCode, error) {
	query := `
		UPDATE upsell_codes
		SET status = 'used', payment_id = $2, redeemed_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + upsellCodeColumns

	return r.scanCode(r.db.QueryRow(query, id, paymentID))
}

func (r *UpsellCodeRepository) scanCode(row scanner) (*models.UpsellCode, error) {
	code := &models.UpsellCode{}
	var optionID sql.NullInt64
	var redeemedAt sql.NullTime
	var paymentID sql.NullString

	err := row.Scan(
		&code.ID, &code.Code, &code.StaffID, &code.OutsideBookingID,
		&code.AddOnID, &optionID, &code.Quantity, &code.UnitPrice,
		&code.Status, &code.ExpiresAt, &redeemedAt,
		&paymentID, &code.CreatedAt, &code.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if optionID.Valid {
		code.OptionID = &optionID.Int64
	}
	if redeemedAt.Valid {
		code.RedeemedAt = &redeemedAt.Time
	}
	if paymentID.Valid {
		code.PaymentID = &paymentID.String
	}

	return code, nil
}
