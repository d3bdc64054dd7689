package handlers

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insiderbookings/backoffice/internal/database"
)

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

func newUpsellRouter(db *sql.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)

	handler := NewUpsellHandler(database.NewUpsellCodeRepository(newMockDatabase(db)), nil)

	router := gin.New()
	router.GET("/api/v1/upsell-codes/:id", handler.GetCode)
	return router
}

func TestGetUpsellCode(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	router := newUpsellRouter(db)

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM upsell_codes`).
			WithArgs(int64(1)).
			WillReturnRows(upsellCodeRow(1, "pending", time.Now().Add(time.Hour)))

		req := httptest.NewRequest("GET", "/api/v1/upsell-codes/1", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"code":"7205"`)
		assert.Contains(t, w.Body.String(), `"status":"pending"`)
	})

	t.Run("Not Found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM upsell_codes`).
			WithArgs(int64(99)).
			WillReturnError(sql.ErrNoRows)

		req := httptest.NewRequest("GET", "/api/v1/upsell-codes/99", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Bad ID", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/upsell-codes/abc", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
