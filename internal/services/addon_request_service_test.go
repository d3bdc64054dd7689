package services

import (
	"database/sql"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insiderbookings/backoffice/internal/database"
	"github.com/insiderbookings/backoffice/internal/models"
	"github.com/insiderbookings/backoffice/pkg/mailer"
)

func newAddOnRequestService(db *sql.DB) *AddOnRequestService {
	mockDB := newMockDatabase(db)
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	return NewAddOnRequestService(
		database.NewBookingAddOnRepository(mockDB),
		database.NewOutsideBookingRepository(mockDB),
		database.NewAddOnRepository(mockDB),
		mailer.New(mailer.Config{}, logger),
		logger,
	)
}

var outsideBookingTestColumns = []string{
	"id", "user_id", "booking_confirmation", "hotel_id",
	"room_number", "room_type", "check_in", "check_out",
	"guest_name", "guest_last_name", "guest_email", "guest_phone",
	"status", "payment_status", "payment_id", "outside", "created_at", "updated_at",
}

func outsideBookingRow(id, hotelID int64) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(outsideBookingTestColumns).AddRow(
		id, nil, "CONF-1", hotelID,
		101, "Deluxe", now, now.Add(72*time.Hour),
		"Ana", "Lopez", "ana@example.com", nil,
		"confirmed", "paid", nil, true, now, now,
	)
}

var outsidePivotTestColumns = []string{
	"id", "outside_booking_id", "add_on_id", "add_on_option_id",
	"qty", "unit_price", "status", "payment_status", "payment_id",
	"created_at", "updated_at",
}

func outsidePivotRow(id, outsideBookingID, addOnID int64, status string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(outsidePivotTestColumns).AddRow(
		id, outsideBookingID, addOnID, nil,
		1, 50.0, status, "unpaid", nil,
		now, now,
	)
}

var addOnTestColumns = []string{
	"id", "slug", "name", "description", "icon", "subtitle", "footnote",
	"type", "price", "default_qty", "meta", "created_at", "updated_at",
}

func addOnRow(id int64, name string, price float64) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(addOnTestColumns).AddRow(
		id, "late-checkout", name, nil, nil, nil, nil,
		"quantity", price, nil, nil, now, now,
	)
}

func TestRequestAddOn(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := newAddOnRequestService(db)

	mock.ExpectQuery(`SELECT (.+) FROM outside_bookings`).
		WithArgs(int64(5)).
		WillReturnRows(outsideBookingRow(5, 1))

	// Add-on existence check loads the row and its options
	mock.ExpectQuery(`SELECT (.+) FROM add_ons`).
		WithArgs(int64(2)).
		WillReturnRows(addOnRow(2, "Late Checkout", 40))
	mock.ExpectQuery(`SELECT (.+) FROM add_on_options`).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "add_on_id", "name", "price"}))

	// Hotel override wins over the catalog price
	mock.ExpectQuery(`SELECT COALESCE`).
		WithArgs(int64(1), int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(50.0))

	now := time.Now()
	mock.ExpectQuery(`INSERT INTO outside_booking_add_ons`).
		WithArgs(int64(5), int64(2), nil, 1, 50.0, "pending", "unpaid", nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow(int64(9), now, now))

	row, err := service.Request(5, &models.AddOnRequestItem{AddOnID: 2, Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(9), row.ID)
	assert.Equal(t, 50.0, row.UnitPrice)
	assert.Equal(t, models.AddOnRequestPending, row.Status)
	assert.Equal(t, models.PaymentUnpaid, row.PaymentStatus)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestAddOn_OptionsTypeBillsOneUnit(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := newAddOnRequestService(db)
	now := time.Now()

	mock.ExpectQuery(`SELECT (.+) FROM outside_bookings`).
		WithArgs(int64(5)).
		WillReturnRows(outsideBookingRow(5, 1))

	mock.ExpectQuery(`SELECT (.+) FROM add_ons`).
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows(addOnTestColumns).AddRow(
			int64(4), "dinner", "Dinner Package", nil, nil, nil, nil,
			"options", 60.0, nil, nil, now, now,
		))
	mock.ExpectQuery(`SELECT (.+) FROM add_on_options`).
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "add_on_id", "name", "price"}))

	mock.ExpectQuery(`SELECT COALESCE`).
		WithArgs(int64(1), int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(60.0))

	// The row lands with a single unit no matter what quantity was asked for
	mock.ExpectQuery(`INSERT INTO outside_booking_add_ons`).
		WithArgs(int64(5), int64(4), nil, 1, 60.0, "pending", "unpaid", nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow(int64(11), now, now))

	row, err := service.Request(5, &models.AddOnRequestItem{AddOnID: 4, Quantity: 5})
	require.NoError(t, err)
	assert.Equal(t, 1, row.Quantity)
	assert.Equal(t, 60.0, row.UnitPrice)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestAddOn_BookingNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := newAddOnRequestService(db)

	mock.ExpectQuery(`SELECT (.+) FROM outside_bookings`).
		WithArgs(int64(99)).
		WillReturnError(sql.ErrNoRows)

	_, err = service.Request(99, &models.AddOnRequestItem{AddOnID: 2, Quantity: 1})
	assert.ErrorIs(t, err, ErrBookingNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDecide(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := newAddOnRequestService(db)

	t.Run("Confirmed", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM outside_booking_add_ons`).
			WithArgs(int64(9)).
			WillReturnRows(outsidePivotRow(9, 5, 2, "pending"))

		mock.ExpectExec(`UPDATE outside_booking_add_ons`).
			WithArgs(int64(9), "confirmed").
			WillReturnResult(sqlmock.NewResult(0, 1))

		// Guest notification
		mock.ExpectQuery(`SELECT (.+) FROM outside_bookings`).
			WithArgs(int64(5)).
			WillReturnRows(outsideBookingRow(5, 1))
		mock.ExpectQuery(`SELECT (.+) FROM add_ons`).
			WithArgs(int64(2)).
			WillReturnRows(addOnRow(2, "Late Checkout", 40))
		mock.ExpectQuery(`SELECT (.+) FROM add_on_options`).
			WithArgs(int64(2)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "add_on_id", "name", "price"}))

		row, err := service.Decide(9, models.AddOnRequestConfirmed)
		require.NoError(t, err)
		assert.Equal(t, models.AddOnRequestConfirmed, row.Status)
	})

	t.Run("Already Decided", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM outside_booking_add_ons`).
			WithArgs(int64(9)).
			WillReturnRows(outsidePivotRow(9, 5, 2, "confirmed"))

		mock.ExpectExec(`UPDATE outside_booking_add_ons`).
			WithArgs(int64(9), "rejected").
			WillReturnResult(sqlmock.NewResult(0, 0))

		_, err := service.Decide(9, models.AddOnRequestRejected)
		assert.ErrorIs(t, err, ErrRequestAlreadyDecided)
	})

	t.Run("Not Found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM outside_booking_add_ons`).
			WithArgs(int64(99)).
			WillReturnError(sql.ErrNoRows)

		_, err := service.Decide(99, models.AddOnRequestConfirmed)
		assert.ErrorIs(t, err, ErrRequestNotFound)
	})

	t.Run("Notification Failure Is Swallowed", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM outside_booking_add_ons`).
			WithArgs(int64(9)).
			WillReturnRows(outsidePivotRow(9, 5, 2, "pending"))

		mock.ExpectExec(`UPDATE outside_booking_add_ons`).
			WithArgs(int64(9), "rejected").
			WillReturnResult(sqlmock.NewResult(0, 1))

		// Booking lookup for the email blows up; the decision must stand
		mock.ExpectQuery(`SELECT (.+) FROM outside_bookings`).
			WithArgs(int64(5)).
			WillReturnError(fmt.Errorf("database error"))

		row, err := service.Decide(9, models.AddOnRequestRejected)
		require.NoError(t, err)
		assert.Equal(t, models.AddOnRequestRejected, row.Status)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceAddOns(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := newAddOnRequestService(db)

	mock.ExpectQuery(`SELECT (.+) FROM outside_bookings`).
		WithArgs(int64(5)).
		WillReturnRows(outsideBookingRow(5, 1))

	// Pricing for the single replacement item
	mock.ExpectQuery(`SELECT (.+) FROM add_ons`).
		WithArgs(int64(2)).
		WillReturnRows(addOnRow(2, "Late Checkout", 40))
	mock.ExpectQuery(`SELECT (.+) FROM add_on_options`).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "add_on_id", "name", "price"}))
	mock.ExpectQuery(`SELECT COALESCE`).
		WithArgs(int64(1), int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(40.0))

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM outside_booking_add_ons`).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`INSERT INTO outside_booking_add_ons`).
		WithArgs(int64(5), int64(2), nil, 1, 40.0, "pending", "unpaid").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	// Reload of the final set
	mock.ExpectQuery(`SELECT (.+) FROM outside_booking_add_ons`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "outside_booking_id", "add_on_id", "add_on_option_id",
			"qty", "unit_price", "status", "payment_status", "payment_id",
			"created_at", "updated_at", "name", "name",
		}).AddRow(
			int64(10), int64(5), int64(2), nil,
			1, 40.0, "pending", "unpaid", nil,
			time.Now(), time.Now(), "Late Checkout", nil,
		))

	rows, err := service.Replace(5, []models.AddOnRequestItem{{AddOnID: 2, Quantity: 1}})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 40.0, rows[0].UnitPrice)

	assert.NoError(t, mock.ExpectationsWereMet())
}
