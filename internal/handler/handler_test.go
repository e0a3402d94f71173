package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-ledger/internal/model"
	"github.com/iliyamo/cinema-ledger/internal/repository"
	"github.com/iliyamo/cinema-ledger/internal/service"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{model.ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("%w: A1", model.ErrSeatUnavailable), http.StatusConflict},
		{model.ErrScheduleInUse, http.StatusConflict},
		{model.ErrMovieInUse, http.StatusConflict},
		{model.ErrUserExists, http.StatusConflict},
		{model.ErrValidation, http.StatusBadRequest},
		{model.ErrUnauthorized, http.StatusUnauthorized},
		{model.ErrPersistence, http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

func TestFailHidesPersistenceDetails(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	require.NoError(t, fail(c, fmt.Errorf("%w: disk full at /var/data", model.ErrPersistence)))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"persistence_error","message":"failed to persist changes"}`, rec.Body.String())
}

func TestIntParam(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.SetParamNames("id", "index", "bad")
	c.SetParamValues("7", "-1", "x")

	n, ok := intParam(c, "id")
	assert.True(t, ok)
	assert.Equal(t, 7, n)
	_, ok = intParam(c, "index")
	assert.False(t, ok)
	_, ok = intParam(c, "bad")
	assert.False(t, ok)
}

func TestListSchedulesCarriesIndex(t *testing.T) {
	svc := service.NewBookingService(repository.NewMemoryGateway(nil))
	t.Cleanup(func() { _ = svc.Close(context.Background()) })
	require.NoError(t, svc.Load(context.Background()))
	m, err := svc.AddMovie(context.Background(), "Up", "Animation", 900)
	require.NoError(t, err)
	for _, clock := range []string{"10:00", "13:00"} {
		_, err = svc.AddSchedule(context.Background(), m.ID, "2025-06-01", clock)
		require.NoError(t, err)
	}

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, NewPublicHandler(svc).ListSchedules(c))
	assert.JSONEq(t, `{"items":[{"index":0,"date":"2025-06-01","time":"10:00"},{"index":1,"date":"2025-06-01","time":"13:00"}]}`, rec.Body.String())
}
