package database

import (
	"database/sql"

	"github.com/insiderbookings/backoffice/internal/models"
)

// OutsideBookingRepository handles database operations for the
// outside_bookings table
type OutsideBookingRepository struct {
	db DB
}

// NewOutsideBookingRepository creates a new OutsideBookingRepository
func NewOutsideBookingRepository(db DB) *OutsideBookingRepository {
	return &OutsideBookingRepository{db: db}
}

const outsideBookingColumns = `id, user_id, booking_confirmation, hotel_id,
	   room_number, room_type, check_in, check_out,
	   guest_name, guest_last_name, guest_email, guest_phone,
	   status, payment_status, payment_id, outside, created_at, updated_at`

// Create inserts an imported reservation
func (r *OutsideBookingRepository) Create(booking *models.OutsideBooking) error {
	query := `
		INSERT INTO outside_bookings (
			user_id, booking_confirmation, hotel_id,
			room_number, room_type, check_in, check_out,
			guest_name, guest_last_name, guest_email, guest_phone,
			status, payment_status, outside
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14
		)
		RETURNING id, created_at, updated_at
	`

	return r.db.QueryRow(
		query,
		booking.UserID, booking.BookingConfirmation, booking.HotelID,
		booking.RoomNumber, booking.RoomType, booking.CheckIn, booking.CheckOut,
		booking.GuestName, booking.GuestLastName, booking.GuestEmail,
		booking.GuestPhone, booking.Status, booking.PaymentStatus, booking.Outside,
	).Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt)
}

// GetByID retrieves an outside booking by ID
func (r *OutsideBookingRepository) GetByID(id int64) (*models.OutsideBooking, error) {
	query := `SELECT ` + outsideBookingColumns + ` FROM outside_bookings WHERE id = $1`

	return r.scanBooking(r.db.QueryRow(query, id))
}

// GetByConfirmation retrieves an outside booking by its channel
// confirmation string
func (r *OutsideBookingRepository) GetByConfirmation(confirmation string) (*models.OutsideBooking, error) {
	query := `SELECT ` + outsideBookingColumns + ` FROM outside_bookings
		WHERE booking_confirmation = $1`

	return r.scanBooking(r.db.QueryRow(query, confirmation))
}

// GetByUserID retrieves a user's outside bookings, newest first
func (r *OutsideBookingRepository) GetByUserID(userID int64) ([]models.OutsideBooking, error) {
	query := `SELECT ` + outsideBookingColumns + ` FROM outside_bookings
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanBookings(rows)
}

// GetByHotelID retrieves a hotel's outside bookings for staff panels
func (r *OutsideBookingRepository) GetByHotelID(hotelID int64) ([]models.OutsideBooking, error) {
	query := `SELECT ` + outsideBookingColumns + ` FROM outside_bookings
		WHERE hotel_id = $1 AND status != 'cancelled'
		ORDER BY check_in`

	rows, err := r.db.Query(query, hotelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanBookings(rows)
}

// AttachUser links an outside booking to a user account after auto-signup
func (r *OutsideBookingRepository) AttachUser(id, userID int64) error {
	query := `
		UPDATE outside_bookings
		SET user_id = $2, updated_at = NOW()
		WHERE id = $1 AND user_id IS NULL
	`

	result, err := r.db.Exec(query, id, userID)
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

// UpdatePaymentStatus records a settlement change from the payment bridge
func (r *OutsideBookingRepository) UpdatePaymentStatus(id int64, status models.PaymentStatus, paymentID *string) error {
	query := `
		UPDATE outside_bookings
		SET payment_status = $2, payment_id = COALESCE($3, payment_id),
			updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.Exec(query, id, status, paymentID)
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

func (r *OutsideBookingRepository) scanBooking(row scanner) (*models.OutsideBooking, error) {
	booking := &models.OutsideBooking{}
	var userID, hotelID sql.NullInt64
	var guestPhone, paymentID sql.NullString

	err := row.Scan(
		&booking.ID, &userID, &booking.BookingConfirmation, &hotelID,
		&booking.RoomNumber, &booking.RoomType, &booking.CheckIn, &booking.CheckOut,
		&booking.GuestName, &booking.GuestLastName, &booking.GuestEmail,
		&guestPhone, &booking.Status, &booking.PaymentStatus, &paymentID,
		&booking.Outside, &booking.CreatedAt, &booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if userID.Valid {
		booking.UserID = &userID.Int64
	}
	if hotelID.Valid {
		booking.HotelID = &hotelID.Int64
	}
	if guestPhone.Valid {
		booking.GuestPhone = &guestPhone.String
	}
	if paymentID.Valid {
		booking.PaymentID = &paymentID.String
	}

	return booking, nil
}

func (r *OutsideBookingRepository) scanBookings(rows *sql.Rows) ([]models.OutsideBooking, error) {
	bookings := []models.OutsideBooking{}

	for rows.Next() {
		booking, err := r.scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *booking)
	}

	return bookings, rows.Err()
}
