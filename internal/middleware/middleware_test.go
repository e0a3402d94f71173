package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-ledger/internal/config"
	"github.com/iliyamo/cinema-ledger/internal/logger"
	"github.com/iliyamo/cinema-ledger/internal/model"
	"github.com/iliyamo/cinema-ledger/internal/utils"
)

const secret = "test-secret"

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func do(e *echo.Echo, method, target, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func token(t *testing.T, username string, role model.Role) string {
	t.Helper()
	tok, err := utils.NewAccessToken(secret, username, string(role), time.Minute)
	require.NoError(t, err)
	return tok.Token
}

func TestJWTAuthAndRequireRole(t *testing.T) {
	e := echo.New()
	whoami := func(c echo.Context) error {
		return c.String(http.StatusOK, Username(c)+"/"+string(Role(c)))
	}
	e.GET("/me", whoami, JWTAuth(secret))
	e.GET("/admin", whoami, JWTAuth(secret), RequireRole(model.RoleAdmin))

	rec := do(e, http.MethodGet, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(e, http.MethodGet, "/me", "garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	forged, err := utils.NewAccessToken("other-secret", "mallory", string(model.RoleAdmin), time.Minute)
	require.NoError(t, err)
	rec = do(e, http.MethodGet, "/admin", forged.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	alice := token(t, "alice", model.RoleCustomer)
	rec = do(e, http.MethodGet, "/me", alice)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice/CUSTOMER", rec.Body.String())

	rec = do(e, http.MethodGet, "/admin", alice)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(e, http.MethodGet, "/admin", token(t, "admin", model.RoleAdmin))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRedisCacheHitAndInvalidate(t *testing.T) {
	_, rdb := newRedis(t)
	cfg := config.CacheConfig{Enabled: true, Methods: map[string]bool{"GET": true}, TTL: time.Minute, Prefix: "test:cache", KeyStrategy: "route_query"}

	e := echo.New()
	calls := 0
	e.GET("/movies", func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusOK, echo.Map{"calls": calls})
	}, NewRedisCache(cfg, rdb))
	e.POST("/movies", func(c echo.Context) error {
		return c.NoContent(http.StatusCreated)
	}, InvalidateCache(cfg, rdb))
	e.POST("/broken", func(c echo.Context) error {
		return c.NoContent(http.StatusConflict)
	}, InvalidateCache(cfg, rdb))

	first := do(e, http.MethodGet, "/movies?b=2&a=1", "")
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	second := do(e, http.MethodGet, "/movies?a=1&b=2", "")
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"), "query order does not matter")
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, calls)

	do(e, http.MethodPost, "/broken", "")
	assert.Equal(t, "HIT", do(e, http.MethodGet, "/movies?a=1&b=2", "").Header().Get("X-Cache"), "failed writes keep the cache")

	do(e, http.MethodPost, "/movies", "")
	third := do(e, http.MethodGet, "/movies?a=1&b=2", "")
	assert.Equal(t, "MISS", third.Header().Get("X-Cache"))
	assert.Equal(t, 2, calls)
}

func TestRedisCacheDisabled(t *testing.T) {
	e := echo.New()
	e.GET("/x", func(c echo.Context) error { return c.String(http.StatusOK, "ok") },
		NewRedisCache(config.CacheConfig{Enabled: true}, nil))
	rec := do(e, http.MethodGet, "/x", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Cache"))
}

func TestPurgeCacheOnlyTouchesPrefix(t *testing.T) {
	mr, rdb := newRedis(t)
	require.NoError(t, mr.Set("test:cache:a", "1"))
	require.NoError(t, mr.Set("test:cache:b", "2"))
	require.NoError(t, mr.Set("other:key", "3"))

	n, err := PurgeCache(testContext(t), rdb, "test:cache")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.True(t, mr.Exists("other:key"))
	assert.False(t, mr.Exists("test:cache:a"))
}

func TestPayloadCodec(t *testing.T) {
	hdr := http.Header{"Content-Type": {"application/json"}}
	bs, err := encodePayload(http.StatusOK, hdr, []byte(`{"ok":true}`))
	require.NoError(t, err)
	status, got, body, ok := decodePayload(bs)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "application/json", got.Get("Content-Type"))
	assert.JSONEq(t, `{"ok":true}`, string(body))

	_, _, _, ok = decodePayload([]byte{0, 1})
	assert.False(t, ok)
}

func TestTokenBucket(t *testing.T) {
	_, rdb := newRedis(t)
	cfg := config.RateLimitConfig{
		Enabled: true, Capacity: 2, RefillTokens: 1, RefillInterval: time.Hour,
		TTL: time.Hour, KeyStrategy: "ip", Prefix: "test:rl",
	}
	e := echo.New()
	e.GET("/ping", func(c echo.Context) error { return c.String(http.StatusOK, "pong") }, NewTokenBucket(cfg, rdb))

	for i := 0; i < 2; i++ {
		rec := do(e, http.MethodGet, "/ping", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, strconv.Itoa(1-i), rec.Header().Get("X-RateLimit-Remaining"))
	}
	rec := do(e, http.MethodGet, "/ping", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	retry, err := strconv.Atoi(rec.Header().Get("Retry-After"))
	require.NoError(t, err)
	assert.Greater(t, retry, 0)
}

func TestTokenBucketFailsOpen(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 100 * time.Millisecond})
	t.Cleanup(func() { _ = rdb.Close() })
	cfg := config.RateLimitConfig{Enabled: true, Capacity: 1, RefillTokens: 1, RefillInterval: time.Second, TTL: time.Minute, Prefix: "test:rl"}
	e := echo.New()
	e.GET("/ping", func(c echo.Context) error { return c.String(http.StatusOK, "pong") }, NewTokenBucket(cfg, rdb))
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/ping", "").Code)
	}
}

func TestBuildRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/movies/3", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/v1/movies/:id")

	cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: "ip"}
	assert.Equal(t, "rl:ip:10.0.0.1", buildRateKey(cfg, c))

	cfg.KeyStrategy = "ip_user_route"
	assert.Equal(t, "rl:ip:10.0.0.1:user:guest:route:GET /v1/movies/:id", buildRateKey(cfg, c))

	c.Set(ctxUsername, "alice")
	cfg.KeyStrategy = "user"
	assert.Equal(t, "rl:user:alice", buildRateKey(cfg, c))
}

func TestRequestLoggerSetsRequestID(t *testing.T) {
	e := echo.New()
	var seen string
	e.Use(RequestLogger())
	e.GET("/x", func(c echo.Context) error {
		seen = logger.RequestID(c.Request().Context())
		return c.NoContent(http.StatusNoContent)
	})

	rec := do(e, http.MethodGet, "/x", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(HeaderRequestID))

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", rec.Header().Get(HeaderRequestID))
}

func TestRequestLoggerWritesErrors(t *testing.T) {
	e := echo.New()
	e.Use(RequestLogger())
	e.GET("/boom", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusTeapot, "no coffee")
	})
	rec := do(e, http.MethodGet, "/boom", "")
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestTimeout(t *testing.T) {
	e := echo.New()
	e.GET("/x", func(c echo.Context) error {
		_, ok := c.Request().Context().Deadline()
		return c.JSON(http.StatusOK, ok)
	}, Timeout(time.Second))
	rec := do(e, http.MethodGet, "/x", "")
	assert.Equal(t, "true\n", rec.Body.String())
}

// testContext mirrors testing.T.Context (Go 1.24+) for older toolchains.
func testContext(t *testing.T) context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}
