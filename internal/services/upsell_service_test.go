package services

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insiderbookings/backoffice/internal/database"
	"github.com/insiderbookings/backoffice/internal/models"
)

func newUpsellService(db *sql.DB) *UpsellService {
	mockDB := newMockDatabase(db)

	codes := NewCodeService(
		database.NewDiscountCodeRepository(mockDB),
		database.NewUpsellCodeRepository(mockDB),
		database.NewStaffRepository(mockDB),
		4, 10,
	)

	return NewUpsellService(
		codes,
		database.NewUpsellCodeRepository(mockDB),
		database.NewBookingAddOnRepository(mockDB),
		database.NewOutsideBookingRepository(mockDB),
		24*time.Hour,
	)
}

var upsellCodeTestColumns = []string{
	"id", "code", "staff_id", "outside_booking_id", "add_on_id",
	"add_on_option_id", "qty", "unit_price", "status", "expires_at", "redeemed_at",
	"payment_id", "created_at", "updated_at",
}

func upsellCodeRow(id int64, status string, expiresAt time.Time) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(upsellCodeTestColumns).AddRow(
		id, "7205", int64(7), int64(5), int64(2),
		nil, 1, 60.0, status, expiresAt, nil,
		nil, now, now,
	)
}

func TestCreateUpsellCode(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := newUpsellService(db)
	now := time.Now()

	mock.ExpectQuery(`SELECT (.+) FROM outside_bookings`).
		WithArgs(int64(5)).
		WillReturnRows(outsideBookingRow(5, 1))

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	mock.ExpectQuery(`INSERT INTO upsell_codes`).
		WithArgs(
			sqlmock.AnyArg(), int64(7), int64(5), int64(2), nil,
			1, 60.0, "pending", sqlmock.AnyArg(),
		).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow(int64(1), now, now))

	code, err := service.Create(7, &models.CreateUpsellCodeRequest{
		OutsideBookingID: 5,
		AddOnID:          2,
		Quantity:         1,
		UnitPrice:        60,
	})
	require.NoError(t, err)
	assert.Regexp(t, "^[0-9]{4}$", code.Code)
	assert.Equal(t, models.UpsellPending, code.Status)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), code.ExpiresAt, 5*time.Second)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUpsellCode_BookingNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := newUpsellService(db)

	mock.ExpectQuery(`SELECT (.+) FROM outside_bookings`).
		WithArgs(int64(99)).
		WillReturnError(sql.ErrNoRows)

	_, err = service.Create(7, &models.CreateUpsellCodeRequest{
		OutsideBookingID: 99,
		AddOnID:          2,
		Quantity:         1,
		UnitPrice:        60,
	})
	assert.ErrorIs(t, err, ErrBookingNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedeemUpsellCode(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := newUpsellService(db)

	t.Run("Success", func(t *testing.T) {
		now := time.Now()

		mock.ExpectQuery(`SELECT (.+) FROM upsell_codes`).
			WithArgs("7205").
			WillReturnRows(upsellCodeRow(1, "pending", now.Add(time.Hour)))

		mock.ExpectExec(`UPDATE upsell_codes`).
			WithArgs(int64(1), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		mock.ExpectQuery(`INSERT INTO outside_booking_add_ons`).
			WithArgs(int64(5), int64(2), nil, 1, 60.0, "ready", "paid", nil).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
				AddRow(int64(20), now, now))

		row, err := service.Redeem(&models.RedeemUpsellCodeRequest{Code: "7205", OutsideBookingID: 5})
		require.NoError(t, err)
		assert.Equal(t, models.AddOnRequestReady, row.Status)
		assert.Equal(t, models.PaymentPaid, row.PaymentStatus)
		assert.Equal(t, 60.0, row.UnitPrice)
	})

	t.Run("Unknown Code", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM upsell_codes`).
			WithArgs("0000").
			WillReturnError(sql.ErrNoRows)

		_, err := service.Redeem(&models.RedeemUpsellCodeRequest{Code: "0000", OutsideBookingID: 5})
		assert.ErrorIs(t, err, ErrCodeNotFound)
	})

	t.Run("Already Used", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM upsell_codes`).
			WithArgs("7205").
			WillReturnRows(upsellCodeRow(1, "used", time.Now().Add(time.Hour)))

		_, err := service.Redeem(&models.RedeemUpsellCodeRequest{Code: "7205", OutsideBookingID: 5})
		assert.ErrorIs(t, err, ErrUpsellCodeUsed)
	})

	t.Run("Expired", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM upsell_codes`).
			WithArgs("7205").
			WillReturnRows(upsellCodeRow(1, "pending", time.Now().Add(-time.Hour)))

		_, err := service.Redeem(&models.RedeemUpsellCodeRequest{Code: "7205", OutsideBookingID: 5})
		assert.ErrorIs(t, err, ErrCodeExpired)
	})

	t.Run("Wrong Booking", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM upsell_codes`).
			WithArgs("7205").
			WillReturnRows(upsellCodeRow(1, "pending", time.Now().Add(time.Hour)))

		_, err := service.Redeem(&models.RedeemUpsellCodeRequest{Code: "7205", OutsideBookingID: 6})
		assert.ErrorIs(t, err, ErrUpsellWrongBooking)
	})

	t.Run("Lost The Race", func(t *testing.T) {
		// A concurrent redemption flipped the code between read and update
		mock.ExpectQuery(`SELECT (.+) FROM upsell_codes`).
			WithArgs("7205").
			WillReturnRows(upsellCodeRow(1, "pending", time.Now().Add(time.Hour)))

		mock.ExpectExec(`UPDATE upsell_codes`).
			WithArgs(int64(1), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 0))

		_, err := service.Redeem(&models.RedeemUpsellCodeRequest{Code: "7205", OutsideBookingID: 5})
		assert.ErrorIs(t, err, ErrUpsellCodeUsed)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
