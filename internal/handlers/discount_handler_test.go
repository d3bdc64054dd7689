package handlers

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insiderbookings/backoffice/internal/database"
	"github.com/insiderbookings/backoffice/internal/middleware"
	"github.com/insiderbookings/backoffice/internal/models"
	"github.com/insiderbookings/backoffice/internal/services"
	"github.com/insiderbookings/backoffice/pkg/jwt"
)

func newDiscountRouter(db *sql.DB, actor *middleware.ActorContext) *gin.Engine {
	gin.SetMode(gin.TestMode)

	mockDB := newMockDatabase(db)
	discounts := database.NewDiscountCodeRepository(mockDB)
	staff := database.NewStaffRepository(mockDB)
	codes := services.NewCodeService(
		discounts,
		database.NewUpsellCodeRepository(mockDB),
		staff,
		4, 10,
	)

	handler := NewDiscountHandler(discounts, staff, codes)

	router := gin.New()
	if actor != nil {
		router.Use(func(c *gin.Context) {
			c.Set(middleware.ActorContextKey, *actor)
		})
	}
	router.POST("/api/v1/discount-codes", handler.CreateCode)
	router.POST("/api/v1/discounts/validate", handler.ValidateStaffCode)
	return router
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestValidateStaffCode(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	router := newDiscountRouter(db, nil)

	columns := []string{
		"default_discount_pct", "name", "id", "hotel_name", "image", "city", "country",
	}

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery(`SELECT r.default_discount_pct`).
			WithArgs("4821").
			WillReturnRows(sqlmock.NewRows(columns).AddRow(
				20.0, "Ana", int64(1), "Grand Plaza", nil, "Miami", "US",
			))

		w := postJSON(router, "/api/v1/discounts/validate", `{"code": "4821"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"valid":true`)
		assert.Contains(t, w.Body.String(), `"percentage":20`)
		assert.Contains(t, w.Body.String(), `"validatedBy":"Ana"`)
		assert.Contains(t, w.Body.String(), `"name":"Grand Plaza"`)
	})

	t.Run("Unknown Code", func(t *testing.T) {
		mock.ExpectQuery(`SELECT r.default_discount_pct`).
			WithArgs("0000").
			WillReturnError(sql.ErrNoRows)

		w := postJSON(router, "/api/v1/discounts/validate", `{"code": "0000"}`)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), `"valid":false`)
	})

	t.Run("Missing Code", func(t *testing.T) {
		w := postJSON(router, "/api/v1/discounts/validate", `{}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateCodeFlatPriceManagerOnly(t *testing.T) {
	t.Run("Front Desk Rejected", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		actor := &middleware.ActorContext{ID: 7, Type: jwt.ActorStaff, RoleName: "Front Desk"}
		router := newDiscountRouter(db, actor)

		// No queries expected: the role check fires before any lookup
		w := postJSON(router, "/api/v1/discount-codes", `{"specialDiscountPrice": 150}`)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Manager Allowed", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		actor := &middleware.ActorContext{ID: 7, Type: jwt.ActorStaff, RoleName: models.RoleHotelManager}
		router := newDiscountRouter(db, actor)

		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs(sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		// Flat-price defaults kick in: one use and a 24 hour window
		now := time.Now()
		mock.ExpectQuery(`INSERT INTO discount_codes`).
			WithArgs(sqlmock.AnyArg(), int64(7), nil, nil, 150.0, nil, sqlmock.AnyArg(), 1, true).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
				AddRow(int64(1), now, now))

		w := postJSON(router, "/api/v1/discount-codes", `{"specialDiscountPrice": 150}`)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"specialPrice":150`)
		assert.Contains(t, w.Body.String(), `"maxUses":1`)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
