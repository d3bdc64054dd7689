package services

import (
	"database/sql"
	"io"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insiderbookings/backoffice/internal/database"
	"github.com/insiderbookings/backoffice/internal/models"
)

func newPricingService(db *sql.DB) *PricingService {
	mockDB := newMockDatabase(db)
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	codes := NewCodeService(
		database.NewDiscountCodeRepository(mockDB),
		database.NewUpsellCodeRepository(mockDB),
		database.NewStaffRepository(mockDB),
		4, 10,
	)

	return NewPricingService(database.NewHotelRepository(mockDB), codes, logger)
}

var roomTestColumns = []string{
	"id", "hotel_id", "room_number", "name", "description", "image",
	"price", "capacity", "beds", "available", "suite",
	"created_at", "updated_at", "deleted_at",
}

func roomRow(id, hotelID int64, roomNumber int, price float64) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(roomTestColumns).AddRow(
		id, hotelID, roomNumber, "Deluxe", nil, nil,
		price, 2, "1 King", 1, false,
		now, now, nil,
	)
}

func TestNights(t *testing.T) {
	day := func(s string) time.Time {
		d, err := time.Parse("2006-01-02", s)
		require.NoError(t, err)
		return d
	}

	tests := []struct {
		name     string
		checkIn  time.Time
		checkOut time.Time
		want     int
	}{
		{"Three Nights", day("2026-03-01"), day("2026-03-04"), 3},
		{"One Night", day("2026-03-01"), day("2026-03-02"), 1},
		{"Same Day", day("2026-03-01"), day("2026-03-01"), 1},
		{"Partial Day Rounds Up", day("2026-03-01"), day("2026-03-03").Add(6 * time.Hour), 3},
		{"Inverted Dates", day("2026-03-04"), day("2026-03-01"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Nights(tt.checkIn, tt.checkOut))
		})
	}
}

func TestQuote(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := newPricingService(db)

	t.Run("Base Price", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM rooms`).
			WithArgs(int64(10)).
			WillReturnRows(roomRow(10, 1, 101, 100))

		quote, err := service.Quote(&models.QuoteRequest{
			HotelID:  1,
			RoomID:   10,
			CheckIn:  "2026-03-01",
			CheckOut: "2026-03-04",
			Rooms:    2,
		})
		require.NoError(t, err)
		assert.Equal(t, 3, quote.Nights)
		assert.Equal(t, 100.0, quote.NightlyRate)
		assert.Equal(t, 600.0, quote.Base)
		assert.Equal(t, 600.0, quote.Total)
		assert.Zero(t, quote.Discount)
	})

	t.Run("Percentage Code", func(t *testing.T) {
		code := "4821"
		now := time.Now()

		mock.ExpectQuery(`SELECT (.+) FROM rooms`).
			WithArgs(int64(10)).
			WillReturnRows(roomRow(10, 1, 101, 100))

		mock.ExpectQuery(`SELECT dc.id`).
			WithArgs(code).
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "code", "staff_id", "hotel_id", "percentage", "special_price",
				"starts_at", "ends_at", "max_uses", "times_used", "active",
				"created_at", "updated_at", "name",
			}).AddRow(
				int64(1), code, int64(7), nil, 20.0, nil,
				nil, nil, nil, 0, true,
				now, now, "Ana",
			))

		quote, err := service.Quote(&models.QuoteRequest{
			HotelID:  1,
			RoomID:   10,
			CheckIn:  "2026-03-01",
			CheckOut: "2026-03-04",
			Rooms:    1,
			Code:     &code,
		})
		require.NoError(t, err)
		assert.Equal(t, 300.0, quote.Base)
		assert.Equal(t, 60.0, quote.Discount)
		assert.Equal(t, 240.0, quote.Total)
		require.NotNil(t, quote.CodeApplied)
		assert.Equal(t, code, *quote.CodeApplied)
	})

	t.Run("Special Price Code", func(t *testing.T) {
		code := "9377"
		now := time.Now()

		mock.ExpectQuery(`SELECT (.+) FROM rooms`).
			WithArgs(int64(10)).
			WillReturnRows(roomRow(10, 1, 101, 100))

		mock.ExpectQuery(`SELECT dc.id`).
			WithArgs(code).
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "code", "staff_id", "hotel_id", "percentage", "special_price",
				"starts_at", "ends_at", "max_uses", "times_used", "active",
				"created_at", "updated_at", "name",
			}).AddRow(
				int64(2), code, int64(7), nil, nil, 199.0,
				nil, nil, nil, 0, true,
				now, now, "Ana",
			))

		quote, err := service.Quote(&models.QuoteRequest{
			HotelID:  1,
			RoomID:   10,
			CheckIn:  "2026-03-01",
			CheckOut: "2026-03-04",
			Rooms:    1,
			Code:     &code,
		})
		require.NoError(t, err)
		assert.Equal(t, 300.0, quote.Base)
		assert.Equal(t, 199.0, quote.Total)
		assert.Equal(t, 101.0, quote.Discount)
	})

	t.Run("Room Not Found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM rooms`).
			WithArgs(int64(99)).
			WillReturnError(sql.ErrNoRows)

		_, err := service.Quote(&models.QuoteRequest{
			HotelID:  1,
			RoomID:   99,
			CheckIn:  "2026-03-01",
			CheckOut: "2026-03-04",
			Rooms:    1,
		})
		assert.ErrorIs(t, err, ErrRoomNotFound)
	})

	t.Run("Wrong Hotel", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM rooms`).
			WithArgs(int64(10)).
			WillReturnRows(roomRow(10, 2, 101, 100))

		_, err := service.Quote(&models.QuoteRequest{
			HotelID:  1,
			RoomID:   10,
			CheckIn:  "2026-03-01",
			CheckOut: "2026-03-04",
			Rooms:    1,
		})
		assert.ErrorIs(t, err, ErrRoomMismatch)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpgradeQuote(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := newPricingService(db)

	hotelID := int64(1)
	checkIn, _ := time.Parse("2006-01-02", "2026-03-01")
	checkOut, _ := time.Parse("2006-01-02", "2026-03-04")

	booking := &models.OutsideBooking{
		BookingConfirmation: "CONF-1",
		HotelID:             &hotelID,
		RoomNumber:          101,
		CheckIn:             checkIn,
		CheckOut:            checkOut,
	}

	t.Run("Upgrade", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM rooms`).
			WithArgs(hotelID, 101).
			WillReturnRows(roomRow(10, hotelID, 101, 100))

		newRoom := &models.Room{ID: 11, HotelID: hotelID, RoomNumber: 102, Price: 150}

		quote, err := service.UpgradeQuote(booking, newRoom)
		require.NoError(t, err)
		assert.Equal(t, 3, quote.Nights)
		assert.Equal(t, 100.0, quote.OldRate)
		assert.Equal(t, 150.0, quote.NewRate)
		assert.Equal(t, 150.0, quote.UnitPrice)
	})

	t.Run("Downgrade Allowed", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM rooms`).
			WithArgs(hotelID, 101).
			WillReturnRows(roomRow(10, hotelID, 101, 100))

		newRoom := &models.Room{ID: 12, HotelID: hotelID, RoomNumber: 103, Price: 80}

		quote, err := service.UpgradeQuote(booking, newRoom)
		require.NoError(t, err)
		assert.Equal(t, -60.0, quote.UnitPrice)
	})

	t.Run("Wrong Hotel", func(t *testing.T) {
		newRoom := &models.Room{ID: 13, HotelID: 2, RoomNumber: 101, Price: 150}

		_, err := service.UpgradeQuote(booking, newRoom)
		assert.ErrorIs(t, err, ErrRoomMismatch)
	})

	t.Run("No Hotel On Booking", func(t *testing.T) {
		orphan := &models.OutsideBooking{RoomNumber: 101, CheckIn: checkIn, CheckOut: checkOut}
		newRoom := &models.Room{ID: 11, HotelID: hotelID, RoomNumber: 102, Price: 150}

		_, err := service.UpgradeQuote(orphan, newRoom)
		assert.ErrorIs(t, err, ErrRoomMismatch)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
