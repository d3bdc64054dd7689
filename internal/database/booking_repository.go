package database

import (
	"database/sql"

	"github.com/insiderbookings/backoffice/internal/models"
)

// BookingRepository handles database operations for the bookings table
type BookingRepository struct {
	db DB
}

// NewBookingRepository creates a new BookingRepository
func NewBookingRepository(db DB) *BookingRepository {
	return &BookingRepository{db: db}
}

const bookingColumns = `id, user_id, hotel_id, room_id, discount_code_id,
	   check_in, check_out, adults, children, rooms,
	   guest_name, guest_email, guest_phone, total,
	   status, payment_status, payment_id, created_at, updated_at`

// Create inserts a new booking
func (r *BookingRepository) Create(booking *models.Booking) error {
	query := `
		INSERT INTO bookings (
			user_id, hotel_id, room_id, discount_code_id,
			check_in, check_out, adults, children, rooms,
			guest_name, guest_email, guest_phone, total,
			status, payment_status
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15
		)
		RETURNING id, created_at, updated_at
	`

	return r.db.QueryRow(
		query,
		booking.UserID, booking.HotelID, booking.RoomID, booking.DiscountCodeID,
		booking.CheckIn, booking.CheckOut, booking.Adults, booking.Children,
		booking.Rooms, booking.GuestName, booking.GuestEmail, booking.GuestPhone,
		booking.Total, booking.Status, booking.PaymentStatus,
	).Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt)
}

// GetByID retrieves a booking by ID
func (r *BookingRepository) GetByID(id int64) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	return r.scanBooking(r.db.QueryRow(query, id))
}

// GetByUserID retrieves a user's bookings, newest first
func (r *BookingRepository) GetByUserID(userID int64) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanBookings(rows)
}

// GetByHotelID retrieves a hotel's bookings for staff panels, excluding
// cancelled stays
func (r *BookingRepository) GetByHotelID(hotelID int64) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
		WHERE hotel_id = $1 AND status != 'cancelled'
		ORDER BY check_in`

	rows, err := r.db.Query(query, hotelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanBookings(rows)
}

// GetByStaffCodes retrieves the bookings sold with a staff member's
// discount codes, newest first
func (r *BookingRepository) GetByStaffCodes(staffID int64) ([]models.Booking, error) {
	query := `
		SELECT b.id, b.user_id, b.hotel_id, b.room_id, b.discount_code_id,
			   b.check_in, b.check_out, b.adults, b.children, b.rooms,
			   b.guest_name, b.guest_email, b.guest_phone, b.total,
			   b.status, b.payment_status, b.payment_id, b.created_at, b.updated_at
		FROM bookings b
		JOIN discount_codes dc ON dc.id = b.discount_code_id
		WHERE dc.staff_id = $1
		ORDER BY b.created_at DESC
	`

	rows, err := r.db.Query(query, staffID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanBookings(rows)
}

// UpdatePaymentStatus marks a booking paid or refunded, recording the
// provider reference
func (r *BookingRepository) UpdatePaymentStatus(id int64, status models.PaymentStatus, paymentID *string) error {
	query := `
		UPDATE bookings
		SET payment_status = $2, payment_id = COALESCE($3, payment_id),
			status = CASE WHEN $2 = 'paid' THEN 'confirmed' ELSE status END,
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

// Cancel marks a booking cancelled. A stay that was already paid flips to
// refunded so the refund shows up on the guest's record.
func (r *BookingRepository) Cancel(id int64) error {
	query := `
		UPDATE bookings
		SET status = 'cancelled',
			payment_status = CASE WHEN payment_status = 'paid' THEN 'refunded' ELSE payment_status END,
			updated_at = NOW()
		WHERE id = $1 AND status != 'cancelled'
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

// CreateCommission records the staff earning on a discounted booking
func (r *BookingRepository) CreateCommission(c *models.Commission) error {
	query := `
		INSERT INTO commissions (booking_id, staff_id, amount)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	return r.db.QueryRow(query, c.BookingID, c.StaffID, c.Amount).Scan(&c.ID, &c.CreatedAt)
}

// ListCommissions retrieves a staff member's commissions, newest first
func (r *BookingRepository) ListCommissions(staffID int64) ([]models.Commission, error) {
	query := `
		SELECT id, booking_id, staff_id, amount, created_at
		FROM commissions
		WHERE staff_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(query, staffID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	commissions := []models.Commission{}
	for rows.Next() {
		var c models.Commission
		if err := rows.Scan(&c.ID, &c.BookingID, &c.StaffID, &c.Amount, &c.CreatedAt); err != nil {
			return nil, err
		}
		commissions = append(commissions, c)
	}

	return commissions, rows.Err()
}

func (r *BookingRepository) scanBooking(row scanner) (*models.Booking, error) {
	booking := &models.Booking{}
	var userID, discountCodeID sql.NullInt64
	var guestPhone, paymentID sql.NullString

	err := row.Scan(
		&booking.ID, &userID, &booking.HotelID, &booking.RoomID, &discountCodeID,
		&booking.CheckIn, &booking.CheckOut, &booking.Adults, &booking.Children,
		&booking.Rooms, &booking.GuestName, &booking.GuestEmail, &guestPhone,
		&booking.Total, &booking.Status, &booking.PaymentStatus, &paymentID,
		&booking.CreatedAt, &booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if userID.Valid {
		booking.UserID = &userID.Int64
	}
	if discountCodeID.Valid {
		booking.DiscountCodeID = &discountCodeID.Int64
	}
	if guestPhone.Valid {
		booking.GuestPhone = &guestPhone.String
	}
	if paymentID.Valid {
		booking.PaymentID = &paymentID.String
	}

	return booking, nil
}

func (r *BookingRepository) scanBookings(rows *sql.Rows) ([]models.Booking, error) {
	bookings := []models.Booking{}

	for rows.Next() {
		booking, err := r.scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *booking)
	}

	return bookings, rows.Err()
}
