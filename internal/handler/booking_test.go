package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/transit-ticket-booking/internal/cache"
	"github.com/iliyamo/transit-ticket-booking/internal/model"
	"github.com/iliyamo/transit-ticket-booking/internal/repository"
)

func TestBookingStatusCacheFastPath(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := confirmedStore{code: "BK-001"}
	h := NewBookingHandler(repository.NewBookingRepo(db), store)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/bookings/BK-001/status", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("code")
	c.SetParamValues("BK-001")

	require.NoError(t, h.GetStatus(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"cached":true`)
	assert.Contains(t, rec.Body.String(), `"status":"CONFIRMED"`)
	// no database read happened
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingStatusFallsBackToDatabase(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE code").
		WithArgs("BK-002").
		WillReturnRows(sqlmock.NewRows(strings.Split(bookingCols, ", ")).
			AddRow(12, "BK-002", model.BookingAwaitingPayment, 42, 2, 30000, 3, now, now, nil))

	h := NewBookingHandler(repository.NewBookingRepo(db), nullStore{})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/bookings/BK-002/status", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("code")
	c.SetParamValues("BK-002")

	require.NoError(t, h.GetStatus(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"AWAITING_PAYMENT"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// confirmedStore serves a confirmed marker for one booking code.
type confirmedStore struct{ code string }

func (s confirmedStore) Set(context.Context, string, string, time.Duration) error { return nil }
func (s confirmedStore) Delete(context.Context, string) error                     { return nil }
func (s confirmedStore) Get(_ context.Context, key string) (string, error) {
	if key == cache.ConfirmedKey(s.code) {
		return "1", nil
	}
	return "", nil
}
