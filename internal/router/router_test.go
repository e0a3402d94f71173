package router

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-ledger/internal/config"
	"github.com/iliyamo/cinema-ledger/internal/metrics"
	"github.com/iliyamo/cinema-ledger/internal/repository"
	"github.com/iliyamo/cinema-ledger/internal/service"
)

type api struct {
	t *testing.T
	e *echo.Echo
}

func (a api) call(method, path, token, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func (a api) decode(rec *httptest.ResponseRecorder) map[string]any {
	a.t.Helper()
	var out map[string]any
	require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (a api) login(username, password string) string {
	a.t.Helper()
	rec := a.call(http.MethodPost, "/v1/auth/login", "", `{"username":"`+username+`","password":"`+password+`"}`)
	require.Equal(a.t, http.StatusOK, rec.Code, rec.Body.String())
	access := a.decode(rec)["access"].(map[string]any)
	return access["access_token"].(string)
}

func newAPI(t *testing.T, rdb *redis.Client) (api, *service.BookingService) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.New()
	svc := service.NewBookingService(repository.NewMemoryGateway(nil), service.WithLogger(log), service.WithMetrics(m))
	require.NoError(t, svc.Load(context.Background()))
	_, err := svc.EnsureDefaultAdmin(context.Background(), "admin", "admin123")
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close(context.Background()) })

	cfg := config.Config{
		JWTSecret:      "router-secret",
		AccessTTLMin:   5,
		RequestTimeout: 5 * time.Second,
		Cache:          config.CacheConfig{Enabled: rdb != nil, Methods: map[string]bool{"GET": true}, TTL: time.Minute, Prefix: "t:cache", KeyStrategy: "route_query"},
	}
	return api{t: t, e: New(Deps{Cfg: cfg, Svc: svc, Redis: rdb, Metrics: m})}, svc
}

func TestBookingFlow(t *testing.T) {
	a, _ := newAPI(t, nil)
	admin := a.login("admin", "admin123")

	rec := a.call(http.MethodPost, "/v1/admin/movies", admin, `{"title":"Inception","genre":"Sci-Fi","price":"12.50"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, float64(1), a.decode(rec)["id"])

	rec = a.call(http.MethodPost, "/v1/admin/movies/1/schedules", admin, `{"date":"2025-06-01","time":"18:00"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = a.call(http.MethodPost, "/v1/auth/register", "", `{"username":"alice","password":"pw","display_name":"Alice"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	alice := a.login("alice", "pw")

	rec = a.call(http.MethodPost, "/v1/bookings", alice, `{"movie_id":1,"date":"2025-06-01","time":"18:00","seat":"C5","payment_mode":"Cash"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	booking := a.decode(rec)
	assert.Equal(t, float64(1), booking["id"])
	assert.Equal(t, "12.50", booking["price"])
	assert.Equal(t, "alice", booking["customer_username"])

	rec = a.call(http.MethodPost, "/v1/bookings", alice, `{"movie_id":1,"date":"2025-06-01","time":"18:00","seat":"C5","payment_mode":"GCash"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "seat_unavailable", a.decode(rec)["error"])

	rec = a.call(http.MethodGet, "/v1/movies/1/seats?date=2025-06-01", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	layout := a.decode(rec)
	assert.Equal(t, float64(79), layout["available"])
	assert.Len(t, layout["seats"], 80)

	rec = a.call(http.MethodDelete, "/v1/admin/movies/1/schedules/0", admin, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "schedule_in_use", a.decode(rec)["error"])

	rec = a.call(http.MethodDelete, "/v1/admin/movies/1", admin, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "movie_in_use", a.decode(rec)["error"])

	rec = a.call(http.MethodGet, "/v1/admin/reports/sales", admin, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "12.50", a.decode(rec)["total_revenue"])

	rec = a.call(http.MethodGet, "/v1/admin/consistency", admin, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, a.decode(rec)["consistent"])

	rec = a.call(http.MethodPatch, "/v1/bookings/1", alice, `{"seat":"D7"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "D7", a.decode(rec)["seat"])

	rec = a.call(http.MethodDelete, "/v1/bookings/1", alice, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = a.call(http.MethodGet, "/v1/bookings", alice, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, a.decode(rec)["bookings"])

	rec = a.call(http.MethodDelete, "/v1/admin/movies/1/schedules/0", admin, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBookingOwnership(t *testing.T) {
	a, _ := newAPI(t, nil)
	admin := a.login("admin", "admin123")
	a.call(http.MethodPost, "/v1/admin/movies", admin, `{"title":"Up","genre":"Animation","price":9}`)
	a.call(http.MethodPost, "/v1/admin/movies/1/schedules", admin, `{"date":"2025-06-01","time":"10:00"}`)
	for _, name := range []string{"alice", "bob"} {
		rec := a.call(http.MethodPost, "/v1/auth/register", "", `{"username":"`+name+`","password":"pw","display_name":"`+name+`"}`)
		require.Equal(t, http.StatusCreated, rec.Code)
	}
	alice, bob := a.login("alice", "pw"), a.login("bob", "pw")

	rec := a.call(http.MethodPost, "/v1/bookings", alice, `{"movie_id":1,"date":"2025-06-01","time":"10:00","seat":"A1","payment_mode":"Credit/Debit Card"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	assert.Equal(t, http.StatusNotFound, a.call(http.MethodDelete, "/v1/bookings/1", bob, "").Code)
	assert.Equal(t, http.StatusNotFound, a.call(http.MethodPatch, "/v1/bookings/1", bob, `{"seat":"A2"}`).Code)
	assert.Equal(t, http.StatusBadRequest, a.call(http.MethodPatch, "/v1/bookings/1", alice, `{"date":"2025-06-02"}`).Code)

	rec = a.call(http.MethodGet, "/v1/admin/bookings", bob, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.call(http.MethodGet, "/v1/admin/bookings", admin, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "9.00", a.decode(rec)["total"])

	assert.Equal(t, http.StatusNoContent, a.call(http.MethodDelete, "/v1/bookings/1", admin, "").Code)
}

func TestAuthEndpoints(t *testing.T) {
	a, _ := newAPI(t, nil)

	rec := a.call(http.MethodPost, "/v1/auth/register", "", `{"username":"bad name","password":"pw","display_name":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.call(http.MethodPost, "/v1/auth/register", "", `{"username":"admin","password":"pw","display_name":"x"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "user_exists", a.decode(rec)["error"])

	rec = a.call(http.MethodPost, "/v1/auth/login", "", `{"username":"admin","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	assert.Equal(t, http.StatusUnauthorized, a.call(http.MethodGet, "/v1/me", "", "").Code)

	rec = a.call(http.MethodGet, "/v1/me", a.login("admin", "admin123"), "")
	require.Equal(t, http.StatusOK, rec.Code)
	me := a.decode(rec)
	assert.Equal(t, "admin", me["username"])
	assert.Equal(t, "ADMIN", me["role"])
	assert.NotContains(t, me, "password")
}

func TestAdminSeatEndpoints(t *testing.T) {
	a, _ := newAPI(t, nil)
	admin := a.login("admin", "admin123")
	a.call(http.MethodPost, "/v1/admin/movies", admin, `{"title":"Heat","genre":"Crime","price":11}`)
	a.call(http.MethodPost, "/v1/admin/movies/1/schedules", admin, `{"date":"2025-06-01","time":"21:00"}`)

	rec := a.call(http.MethodPost, "/v1/admin/movies/1/seats", admin, `{"date":"2025-06-01","seat":"I1"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = a.call(http.MethodDelete, "/v1/admin/movies/1/seats/A1?date=2025-06-01", admin, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = a.call(http.MethodDelete, "/v1/admin/movies/1/seats/A1", admin, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.call(http.MethodPut, "/v1/admin/movies/1/layout", admin, `{"date":"2025-06-01","rows":5,"cols":6}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Len(t, a.decode(rec)["seats"], 30)

	rec = a.call(http.MethodGet, "/v1/movies/1/seats?date=2025-13-01", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = a.call(http.MethodGet, "/v1/movies/1/seats?date=2025-07-01", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = a.call(http.MethodDelete, "/v1/admin/movies/1?cascade=maybe", admin, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = a.call(http.MethodDelete, "/v1/admin/movies/1?cascade=true", admin, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, http.StatusNotFound, a.call(http.MethodGet, "/v1/movies/1", "", "").Code)
}

func TestPublicCacheInvalidatedByWrites(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	a, _ := newAPI(t, rdb)
	admin := a.login("admin", "admin123")

	rec := a.call(http.MethodGet, "/v1/movies", "", "")
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	rec = a.call(http.MethodGet, "/v1/movies", "", "")
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	assert.Empty(t, a.decode(rec)["items"])

	a.call(http.MethodPost, "/v1/admin/movies", admin, `{"title":"Up","genre":"Animation","price":9}`)
	rec = a.call(http.MethodGet, "/v1/movies", "", "")
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.Len(t, a.decode(rec)["items"], 1)
}

func TestHealthAndMetrics(t *testing.T) {
	a, _ := newAPI(t, nil)
	rec := a.call(http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = a.call(http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "cinema_operations_total")
}
