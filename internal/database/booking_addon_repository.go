package database

import (
	"database/sql"

	"github.com/insiderbookings/backoffice/internal/models"
)

// BookingAddOnRepository handles database operations for the booking_add_ons
// and outside_booking_add_ons pivot tables
type BookingAddOnRepository struct {
	db DB
}

// NewBookingAddOnRepository creates a new BookingAddOnRepository
func NewBookingAddOnRepository(db DB) *BookingAddOnRepository {
	return &BookingAddOnRepository{db: db}
}

// Create inserts an add-on row on a native booking
func (r *BookingAddOnRepository) Create(row *models.BookingAddOn) error {
	query := `
		INSERT INTO booking_add_ons (
			booking_id, add_on_id, add_on_option_id, qty, unit_price,
			status, payment_status
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	return r.db.QueryRow(
		query,
		row.BookingID, row.AddOnID, row.OptionID, row.Quantity, row.UnitPrice,
		row.Status, row.PaymentStatus,
	).Scan(&row.ID, &row.CreatedAt, &row.UpdatedAt)
}

// ListByBooking retrieves a native booking's add-on rows with names joined
func (r *BookingAddOnRepository) ListByBooking(bookingID int64) ([]models.BookingAddOn, error) {
	query := `
		SELECT ba.id, ba.booking_id, ba.add_on_id, ba.add_on_option_id,
			   ba.qty, ba.unit_price, ba.status, ba.payment_status, ba.payment_id,
			   ba.created_at, ba.updated_at, a.name, o.name
		FROM booking_add_ons ba
		JOIN add_ons a ON a.id = ba.add_on_id
		LEFT JOIN add_on_options o ON o.id = ba.add_on_option_id
		WHERE ba.booking_id = $1
		ORDER BY ba.created_at
	`

	rows, err := r.db.Query(query, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.BookingAddOn{}
	for rows.Next() {
		var item models.BookingAddOn
		var optionID sql.NullInt64
		var paymentID, optionName sql.NullString

		err := rows.Scan(
			&item.ID, &item.BookingID, &item.AddOnID, &optionID,
			&item.Quantity, &item.UnitPrice, &item.Status, &item.PaymentStatus,
			&paymentID, &item.CreatedAt, &item.UpdatedAt, &item.AddOnName, &optionName,
		)
		if err != nil {
			return nil, err
		}

		if optionID.Valid {
			item.OptionID = &optionID.Int64
		}
		if paymentID.Valid {
			item.PaymentID = &paymentID.String
		}
		if optionName.Valid {
			item.OptionName = &optionName.String
		}

		items = append(items, item)
	}

	return items, rows.Err()
}

// CreateOutside inserts an add-on row on an outside booking
func (r *BookingAddOnRepository) CreateOutside(row *models.OutsideBookingAddOn) error {
	query := `
		INSERT INTO outside_booking_add_ons (
			outside_booking_id, add_on_id, add_on_option_id, qty, unit_price,
			status, payment_status, payment_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`

	return r.db.QueryRow(
		query,
		row.OutsideBookingID, row.AddOnID, row.OptionID, row.Quantity,
		row.UnitPrice, row.Status, row.PaymentStatus, row.PaymentID,
	).Scan(&row.ID, &row.CreatedAt, &row.UpdatedAt)
}

// GetOutsideByID retrieves a single outside pivot row
func (r *BookingAddOnRepository) GetOutsideByID(id int64) (*models.OutsideBookingAddOn, error) {
	query := `
		SELECT id, outside_booking_id, add_on_id, add_on_option_id,
			   qty, unit_price, status, payment_status, payment_id,
			   created_at, updated_at
		FROM outside_booking_add_ons
		WHERE id = $1
	`

	item := &models.OutsideBookingAddOn{}
	var optionID sql.NullInt64
	var paymentID sql.NullString

	err := r.db.QueryRow(query, id).Scan(
		&item.ID, &item.OutsideBookingID, &item.AddOnID, &optionID,
		&item.Quantity, &item.UnitPrice, &item.Status, &item.PaymentStatus,
		&paymentID, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if optionID.Valid {
		item.OptionID = &optionID.Int64
	}
	if paymentID.Valid {
		item.PaymentID = &paymentID.String
	}

	return item, nil
}

// ListByOutsideBooking retrieves an outside booking's add-on rows with
// names joined
func (r *BookingAddOnRepository) ListByOutsideBooking(outsideBookingID int64) ([]models.OutsideBookingAddOn, error) {
	query := `
		SELECT ba.id, ba.outside_booking_id, ba.add_on_id, ba.add_on_option_id,
			   ba.qty, ba.unit_price, ba.status, ba.payment_status, ba.payment_id,
			   ba.created_at, ba.updated_at, a.name, o.name
		FROM outside_booking_add_ons ba
		JOIN add_ons a ON a.id = ba.add_on_id
		LEFT JOIN add_on_options o ON o.id = ba.add_on_option_id
		WHERE ba.outside_booking_id = $1
		ORDER BY ba.created_at
	`

	rows, err := r.db.Query(query, outsideBookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.OutsideBookingAddOn{}
	for rows.Next() {
		var item models.OutsideBookingAddOn
		var optionID sql.NullInt64
		var paymentID, optionName sql.NullString

		err := rows.Scan(
			&item.ID, &item.OutsideBookingID, &item.AddOnID, &optionID,
			&item.Quantity, &item.UnitPrice, &item.Status, &item.PaymentStatus,
			&paymentID, &item.CreatedAt, &item.UpdatedAt, &item.AddOnName, &optionName,
		)
		if err != nil {
			return nil, err
		}

		if optionID.Valid {
			item.OptionID = &optionID.Int64
		}
		if paymentID.Valid {
			item.PaymentID = &paymentID.String
		}
		if optionName.Valid {
			item.OptionName = &optionName.String
		}

		items = append(items, item)
	}

	return items, rows.Err()
}

// ListPendingForHotel retrieves the staff review queue: pending requests on
// the hotel's outside bookings with guest details joined
func (r *BookingAddOnRepository) ListPendingForHotel(hotelID int64) ([]models.OutsideBookingAddOn, error) {
	query := `
		SELECT ba.id, ba.outside_booking_id, ba.add_on_id, ba.add_on_option_id,
			   ba.qty, ba.unit_price, ba.status, ba.payment_status,
			   ba.created_at, ba.updated_at, a.name, o.name,
			   ob.guest_name, ob.guest_email, ob.room_number,
			   ob.booking_confirmation, ob.check_in, ob.check_out
		FROM outside_booking_add_ons ba
		JOIN outside_bookings ob ON ob.id = ba.outside_booking_id
		JOIN add_ons a ON a.id = ba.add_on_id
		LEFT JOIN add_on_options o ON o.id = ba.add_on_option_id
		WHERE ob.hotel_id = $1 AND ba.status = 'pending'
		ORDER BY ba.created_at
	`

	rows, err := r.db.Query(query, hotelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.OutsideBookingAddOn{}
	for rows.Next() {
		var item models.OutsideBookingAddOn
		var optionID sql.NullInt64
		var optionName sql.NullString

		err := rows.Scan(
			&item.ID, &item.OutsideBookingID, &item.AddOnID, &optionID,
			&item.Quantity, &item.UnitPrice, &item.Status, &item.PaymentStatus,
			&item.CreatedAt, &item.UpdatedAt, &item.AddOnName, &optionName,
			&item.GuestName, &item.GuestEmail, &item.RoomNumber,
			&item.BookingConfirmation, &item.CheckIn, &item.CheckOut,
		)
		if err != nil {
			return nil, err
		}

		if optionID.Valid {
			item.OptionID = &optionID.Int64
		}
		if optionName.Valid {
			item.OptionName = &optionName.String
		}

		items = append(items, item)
	}

	return items, rows.Err()
}

// UpdateOutsideStatus moves a pending request to a decision state. It only
// touches rows still pending so a second decision on the same request
// affects zero rows.
func (r *BookingAddOnRepository) UpdateOutsideStatus(id int64, status models.AddOnRequestStatus) (bool, error) {
	query := `
		UPDATE outside_booking_add_ons
		SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
	`

	result, err := r.db.Exec(query, id, status)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows > 0, nil
}

// MarkOutsidePaid settles a pivot row after a successful checkout
func (r *BookingAddOnRepository) MarkOutsidePaid(id int64, paymentID *string) error {
	query := `
		UPDATE outside_booking_add_ons
		SET payment_status = 'paid', status = 'ready',
			payment_id = COALESCE($2, payment_id), updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.Exec(query, id, paymentID)
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

// ReplaceForOutsideBooking swaps the complete add-on set of an outside
// booking in one transaction. Paid rows are preserved.
func (r *BookingAddOnRepository) ReplaceForOutsideBooking(outsideBookingID int64, items []models.OutsideBookingAddOn) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`DELETE FROM outside_booking_add_ons
		 WHERE outside_booking_id = $1 AND payment_status != 'paid'`,
		outsideBookingID,
	)
	if err != nil {
		return err
	}

	insert := `
		INSERT INTO outside_booking_add_ons (
			outside_booking_id, add_on_id, add_on_option_id, qty, unit_price,
			status, payment_status
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	for i := range items {
		item := &items[i]
		_, err = tx.Exec(
			insert,
			outsideBookingID, item.AddOnID, item.OptionID, item.Quantity,
			item.UnitPrice, item.Status, item.PaymentStatus,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}
