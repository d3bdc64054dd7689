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
	"github.com/insiderbookings/backoffice/pkg/jwt"
)

// newRoomRouter wires the room creation route with the same middleware
// chain the server registers for it.
func newRoomRouter(db *sql.DB, jwtService *jwt.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)

	mockDB := newMockDatabase(db)
	handler := NewHotelHandler(database.NewHotelRepository(mockDB), database.NewStaffRepository(mockDB))

	router := gin.New()
	router.POST(
		"/api/v1/hotels/:id/rooms",
		middleware.AuthMiddleware(jwtService),
		middleware.RequireStaff(),
		middleware.RequireRole("Hotel Manager"),
		handler.CreateRoom,
	)
	return router
}

func TestCreateRoomManagerOnly(t *testing.T) {
	jwtService := jwt.NewService("test-secret-key-123456789", time.Hour, 15*time.Minute)
	body := `{"roomNumber": 101, "price": 120, "capacity": 2, "available": 3}`

	postRoom := func(router *gin.Engine, token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("POST", "/api/v1/hotels/1/rooms", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("Front Desk Rejected", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		router := newRoomRouter(db, jwtService)
		token, err := jwtService.GenerateAccessToken(7, jwt.ActorStaff, "Front Desk")
		require.NoError(t, err)

		// No queries expected: the role gate stops the request
		w := postRoom(router, token)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Manager Allowed", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		router := newRoomRouter(db, jwtService)
		token, err := jwtService.GenerateAccessToken(3, jwt.ActorStaff, "Hotel Manager")
		require.NoError(t, err)

		now := time.Now()
		mock.ExpectQuery(`INSERT INTO rooms`).
			WithArgs(int64(1), 101, nil, nil, nil, 120.0, 2, nil, 3, false).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
				AddRow(int64(9), now, now))

		w := postRoom(router, token)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"roomNumber":101`)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
