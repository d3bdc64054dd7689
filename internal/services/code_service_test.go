package services

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insiderbookings/backoffice/internal/database"
	"github.com/insiderbookings/backoffice/internal/models"
)

func newCodeService(db *sql.DB, maxAttempts int) *CodeService {
	mockDB := newMockDatabase(db)
	return NewCodeService(
		database.NewDiscountCodeRepository(mockDB),
		database.NewUpsellCodeRepository(mockDB),
		database.NewStaffRepository(mockDB),
		4, maxAttempts,
	)
}

func TestCreateDiscountCode(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := newCodeService(db, 10)
	pct := 20.0
	now := time.Now()

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	mock.ExpectQuery(`INSERT INTO discount_codes`).
		WithArgs(sqlmock.AnyArg(), int64(7), nil, 20.0, nil, nil, nil, nil, true).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow(int64(1), now, now))

	code, err := service.CreateDiscountCode(7, &models.CreateDiscountCodeRequest{Percentage: &pct})
	require.NoError(t, err)
	assert.Equal(t, int64(1), code.ID)
	assert.Equal(t, int64(7), code.StaffID)
	assert.Regexp(t, "^[0-9]{4}$", code.Code)
	assert.True(t, code.Active)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateDiscountCode_SpaceExhausted(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := newCodeService(db, 3)
	pct := 15.0

	// Every draw collides
	for i := 0; i < 3; i++ {
		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs(sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	}

	_, err = service.CreateDiscountCode(7, &models.CreateDiscountCodeRequest{Percentage: &pct})
	assert.ErrorIs(t, err, ErrCodeSpaceExhausted)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestValidateDiscountCode(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := newCodeService(db, 10)
	now := time.Now()

	columns := []string{
		"id", "code", "staff_id", "hotel_id", "percentage", "special_price",
		"starts_at", "ends_at", "max_uses", "times_used", "active",
		"created_at", "updated_at", "name",
	}

	t.Run("Valid", func(t *testing.T) {
		mock.ExpectQuery(`SELECT dc.id`).
			WithArgs("4821").
			WillReturnRows(sqlmock.NewRows(columns).AddRow(
				int64(1), "4821", int64(7), nil, 20.0, nil,
				nil, nil, nil, 0, true,
				now, now, "Ana",
			))

		code, err := service.ValidateDiscountCode("4821")
		require.NoError(t, err)
		assert.Equal(t, "4821", code.Code)
		require.NotNil(t, code.Percentage)
		assert.Equal(t, 20.0, *code.Percentage)
	})

	t.Run("Not Found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT dc.id`).
			WithArgs("0000").
			WillReturnError(sql.ErrNoRows)

		_, err := service.ValidateDiscountCode("0000")
		assert.ErrorIs(t, err, ErrCodeNotFound)
	})

	t.Run("Expired", func(t *testing.T) {
		endsAt := now.Add(-time.Hour)

		mock.ExpectQuery(`SELECT dc.id`).
			WithArgs("4821").
			WillReturnRows(sqlmock.NewRows(columns).AddRow(
				int64(1), "4821", int64(7), nil, 20.0, nil,
				nil, endsAt, nil, 0, true,
				now, now, "Ana",
			))

		_, err := service.ValidateDiscountCode("4821")
		assert.ErrorIs(t, err, ErrCodeExpired)
	})

	t.Run("Not Yet Valid", func(t *testing.T) {
		startsAt := now.Add(time.Hour)

		mock.ExpectQuery(`SELECT dc.id`).
			WithArgs("4821").
			WillReturnRows(sqlmock.NewRows(columns).AddRow(
				int64(1), "4821", int64(7), nil, 20.0, nil,
				startsAt, nil, nil, 0, true,
				now, now, "Ana",
			))

		_, err := service.ValidateDiscountCode("4821")
		assert.ErrorIs(t, err, ErrCodeExpired)
	})

	t.Run("Exhausted", func(t *testing.T) {
		mock.ExpectQuery(`SELECT dc.id`).
			WithArgs("4821").
			WillReturnRows(sqlmock.NewRows(columns).AddRow(
				int64(1), "4821", int64(7), nil, 20.0, nil,
				nil, nil, 5, 5, true,
				now, now, "Ana",
			))

		_, err := service.ValidateDiscountCode("4821")
		assert.ErrorIs(t, err, ErrCodeExhausted)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConsumeDiscountCode(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := newCodeService(db, 10)
	now := time.Now()

	columns := []string{
		"id", "code", "staff_id", "hotel_id", "percentage", "special_price",
		"starts_at", "ends_at", "max_uses", "times_used", "active",
		"created_at", "updated_at", "name",
	}

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery(`SELECT dc.id`).
			WithArgs("4821").
			WillReturnRows(sqlmock.NewRows(columns).AddRow(
				int64(1), "4821", int64(7), nil, 20.0, nil,
				nil, nil, 5, 2, true,
				now, now, "Ana",
			))

		mock.ExpectExec(`UPDATE discount_codes`).
			WithArgs(int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		code, err := service.ConsumeDiscountCode("4821")
		require.NoError(t, err)
		assert.Equal(t, 3, code.TimesUsed)
	})

	t.Run("Lost The Race", func(t *testing.T) {
		// The counter hit max_uses between validation and the update
		mock.ExpectQuery(`SELECT dc.id`).
			WithArgs("4821").
			WillReturnRows(sqlmock.NewRows(columns).AddRow(
				int64(1), "4821", int64(7), nil, 20.0, nil,
				nil, nil, 5, 4, true,
				now, now, "Ana",
			))

		mock.ExpectExec(`UPDATE discount_codes`).
			WithArgs(int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		_, err := service.ConsumeDiscountCode("4821")
		assert.ErrorIs(t, err, ErrCodeExhausted)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewStaffCode(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := newCodeService(db, 10)

	// First draw collides within the hotel; the second is free both at the
	// hotel and among active discount codes
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(int64(3), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(int64(3), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	code, err := service.NewStaffCode(3)
	require.NoError(t, err)
	assert.Regexp(t, "^[0-9]{4}$", code)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRandomCode(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := newCodeService(db, 10)

	for i := 0; i < 100; i++ {
		code, err := service.randomCode()
		require.NoError(t, err)
		assert.Len(t, code, 4)
		assert.Regexp(t, "^[0-9]{4}$", code)
	}
}

// mockDatabase implements the database.DB interface for testing
type mockDatabase struct {
	db *sqlx.DB
}

func newMockDatabase(db *sql.DB) *mockDatabase {
	return &mockDatabase{db: sqlx.NewDb(db, "sqlmock")}
}

func (m *mockDatabase) Get(dest interface{}, query string, args ...interface{}) error {
	return fmt.Errorf("Get not implemented in mock")
}

func (m *mockDatabase) Select(dest interface{}, query string, args ...interface{}) error {
	return fmt.Errorf("Select not implemented in mock")
}

func (m *mockDatabase) Exec(query string, args ...interface{}) (sql.Result, error) {
	return m.db.Exec(query, args...)
}

func (m *mockDatabase) Query(query string, args ...interface{}) (*sql.Rows, error) {
	return m.db.Query(query, args...)
}

func (m *mockDatabase) QueryRow(query string, args ...interface{}) *sql.Row {
	return m.db.QueryRow(query, args...)
}

func (m *mockDatabase) Beginx() (*sqlx.Tx, error) {
	return m.db.Beginx()
}

func (m *mockDatabase) Close() error {
	return m.db.Close()
}

func (m *mockDatabase) Ping() error {
	return m.db.Ping()
}
