package database

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insiderbookings/backoffice/internal/models"
)

func TestRegisterWithHotels(t *testing.T) {
	pct := 20.0
	startsAt := time.Now()

	newFixtures := func() (*models.Staff, []*models.HotelStaff, []*models.DiscountCode) {
		staff := &models.Staff{
			RoleID:       2,
			Name:         "Ana",
			Email:        "ana@hotel.test",
			PasswordHash: "hash",
			IsActive:     true,
		}
		hotelA, hotelB := int64(1), int64(4)
		links := []*models.HotelStaff{
			{HotelID: hotelA, StaffCode: "4821", IsPrimary: true},
			{HotelID: hotelB, StaffCode: "9034"},
		}
		codes := []*models.DiscountCode{
			{Code: "4821", HotelID: &hotelA, Percentage: &pct, StartsAt: &startsAt, Active: true},
			{Code: "9034", HotelID: &hotelB, Percentage: &pct, StartsAt: &startsAt, Active: true},
		}
		return staff, links, codes
	}

	t.Run("Success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewStaffRepository(newMockDatabase(db))
		staff, links, codes := newFixtures()
		now := time.Now()

		mock.ExpectBegin()

		mock.ExpectQuery(`INSERT INTO staff`).
			WithArgs(int64(2), "Ana", "ana@hotel.test", "hash", true).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
				AddRow(int64(7), now, now))

		mock.ExpectQuery(`INSERT INTO hotel_staff`).
			WithArgs(int64(1), int64(7), "4821", true, nil).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(10), now))
		mock.ExpectQuery(`INSERT INTO hotel_staff`).
			WithArgs(int64(4), int64(7), "9034", false, nil).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(11), now))

		// Each staff code lands as a matching per-hotel discount code
		mock.ExpectQuery(`INSERT INTO discount_codes`).
			WithArgs("4821", int64(7), int64(1), 20.0, nil, startsAt, nil, nil, true).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
				AddRow(int64(20), now, now))
		mock.ExpectQuery(`INSERT INTO discount_codes`).
			WithArgs("9034", int64(7), int64(4), 20.0, nil, startsAt, nil, nil, true).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
				AddRow(int64(21), now, now))

		mock.ExpectCommit()

		err = repo.RegisterWithHotels(staff, links, codes)
		require.NoError(t, err)
		assert.Equal(t, int64(7), staff.ID)
		assert.Equal(t, int64(7), links[0].StaffID)
		assert.Equal(t, int64(7), codes[1].StaffID)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Hotel Link Fails", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewStaffRepository(newMockDatabase(db))
		staff, links, codes := newFixtures()
		now := time.Now()

		mock.ExpectBegin()

		mock.ExpectQuery(`INSERT INTO staff`).
			WithArgs(int64(2), "Ana", "ana@hotel.test", "hash", true).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
				AddRow(int64(7), now, now))

		mock.ExpectQuery(`INSERT INTO hotel_staff`).
			WithArgs(int64(1), int64(7), "4821", true, nil).
			WillReturnError(fmt.Errorf("duplicate staff code"))

		// Rollback: a failed link must not leave the account behind
		mock.ExpectRollback()

		err = repo.RegisterWithHotels(staff, links, codes)
		assert.Error(t, err)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestResolveStaffCode(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewStaffRepository(newMockDatabase(db))

	columns := []string{
		"default_discount_pct", "name", "id", "hotel_name", "image", "city", "country",
	}

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery(`SELECT r.default_discount_pct`).
			WithArgs("4821").
			WillReturnRows(sqlmock.NewRows(columns).AddRow(
				20.0, "Ana", int64(1), "Grand Plaza", nil, "Miami", "US",
			))

		info, err := repo.ResolveStaffCode("4821")
		require.NoError(t, err)
		assert.Equal(t, 20.0, info.Percentage)
		assert.Equal(t, "Ana", info.StaffName)
		assert.Equal(t, int64(1), info.HotelID)
		assert.Equal(t, "Grand Plaza", info.HotelName)
		require.NotNil(t, info.City)
		assert.Equal(t, "Miami", *info.City)
		assert.Nil(t, info.HotelImage)
	})

	t.Run("Unknown Code", func(t *testing.T) {
		mock.ExpectQuery(`SELECT r.default_discount_pct`).
			WithArgs("0000").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.ResolveStaffCode("0000")
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
