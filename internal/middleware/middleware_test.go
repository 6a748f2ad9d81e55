package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mahattati/internal/apperrors"
	"mahattati/internal/models"
	"mahattati/internal/policy"
	"mahattati/internal/ratelimit"
	"mahattati/internal/reqctx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuth struct {
	users map[string]*models.User
	err   error
}

func (s stubAuth) Authenticate(_ context.Context, token string) (*models.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	if u, ok := s.users[token]; ok {
		return u, nil
	}
	return nil, apperrors.Unauthenticated("Invalid or expired token", apperrors.ErrInvalidToken)
}

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func message(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Message
}

func TestJWTAuth(t *testing.T) {
	adv := &models.User{ID: 7, Role: policy.Advertiser}
	auth := stubAuth{users: map[string]*models.User{"good": adv}}

	var seen *models.User
	h := JWTAuth(auth)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = reqctx.GetUser(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"без заголовка", "", http.StatusUnauthorized},
		{"не Bearer", "Basic abc", http.StatusUnauthorized},
		{"плохой токен", "Bearer bad", http.StatusUnauthorized},
		{"валидный", "Bearer good", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code)
		})
	}
	require.NotNil(t, seen)
	assert.Equal(t, adv.ID, seen.ID)
}

func TestJWTAuth_StoreFailureIs500(t *testing.T) {
	h := JWTAuth(stubAuth{err: apperrors.Upstream("Server error", errors.New("db down"))})(http.HandlerFunc(okHandler))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer x")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestAnyRole(t *testing.T) {
	h := Can(policy.AdCreate)(http.HandlerFunc(okHandler))

	serve := func(u *models.User) int {
		req := httptest.NewRequest(http.MethodPost, "/api/ads", nil)
		if u != nil {
			req = req.WithContext(reqctx.WithUser(req.Context(), u))
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, serve(&models.User{ID: 1, Role: policy.Advertiser}))
	assert.Equal(t, http.StatusForbidden, serve(&models.User{ID: 2, Role: policy.Subscriber}))
	assert.Equal(t, http.StatusForbidden, serve(&models.User{ID: 3, Role: policy.SystemManager}))
	assert.Equal(t, http.StatusUnauthorized, serve(nil))
}

func TestRecoverer(t *testing.T) {
	h := Recoverer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal Server Error", message(t, rec))
}

func TestRequestID(t *testing.T) {
	var rid, ip string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid, _ = reqctx.GetRequestID(r.Context())
		ip = reqctx.GetClientIP(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.5:41234"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.NotEmpty(t, rid)
	assert.Equal(t, rid, rec.Header().Get(RequestIDHeader))
	assert.Equal(t, "10.0.0.5", ip)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "abc-123", rid)
	assert.Equal(t, "192.0.2.1", ip, "без доверенных прокси заголовки игнорируются")
}

func TestParseTrustedProxies(t *testing.T) {
	proxies, err := ParseTrustedProxies([]string{"10.0.0.0/8", " 127.0.0.1 ", "", "::1"})
	require.NoError(t, err)
	require.Len(t, proxies, 3)
	assert.Equal(t, "127.0.0.1/32", proxies[1].String())
	assert.Equal(t, "::1/128", proxies[2].String())

	_, err = ParseTrustedProxies([]string{"10.0.0.0/33"})
	assert.Error(t, err)
	_, err = ParseTrustedProxies([]string{"proxy.local"})
	assert.Error(t, err)
}

func TestClientIP_TrustedProxies(t *testing.T) {
	proxies, err := ParseTrustedProxies([]string{"10.0.0.0/8"})
	require.NoError(t, err)

	req := func(remote, xff, realIP string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.RemoteAddr = remote
		if xff != "" {
			r.Header.Set("X-Forwarded-For", xff)
		}
		if realIP != "" {
			r.Header.Set("X-Real-IP", realIP)
		}
		return r
	}

	cases := []struct {
		name string
		r    *http.Request
		want string
	}{
		{"цепочка доверенных прокси", req("10.0.0.2:80", "203.0.113.9, 10.0.0.1", ""), "203.0.113.9"},
		{"подделка левее реального клиента", req("10.0.0.2:80", "1.2.3.4, 198.51.100.7, 10.0.0.1", ""), "198.51.100.7"},
		{"X-Real-IP от прокси", req("10.0.0.2:80", "", "198.51.100.8"), "198.51.100.8"},
		{"мусор в заголовках", req("10.0.0.2:80", "not-an-ip", "also-bad"), "10.0.0.2"},
		{"недоверенный узел", req("198.51.100.1:80", "203.0.113.9", "203.0.113.10"), "198.51.100.1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, proxies.ClientIP(tc.r))
		})
	}
}

func TestRateLimit(t *testing.T) {
	h := RequestID(RateLimit(ratelimit.NewMemoryLimiter(2, time.Hour))(http.HandlerFunc(okHandler)))

	do := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, do("1.1.1.1:1").Code)
	assert.Equal(t, http.StatusOK, do("1.1.1.1:2").Code)
	rec := do("1.1.1.1:3")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, TooManyRequestsMessage, message(t, rec))
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, do("2.2.2.2:1").Code, "у другого IP свой лимит")
}

func TestRateLimit_IgnoresForwardedForFromClients(t *testing.T) {
	h := RequestID(RateLimit(ratelimit.NewMemoryLimiter(1, time.Hour))(http.HandlerFunc(okHandler)))

	codes := make([]int, 0, 4)
	for i := 0; i < 4; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		req.RemoteAddr = "1.1.1.1:1000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i+1))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests, http.StatusTooManyRequests, http.StatusTooManyRequests}, codes)
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (ratelimit.Decision, error) {
	return ratelimit.Decision{}, errors.New("redis down")
}

func TestRateLimit_FailsOpen(t *testing.T) {
	h := RateLimit(failingLimiter{})(http.HandlerFunc(okHandler))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLogging_KeepsStatus(t *testing.T) {
	h := Logging(JWTAuth(stubAuth{users: map[string]*models.User{"t": {ID: 1, Role: policy.Subscriber}}})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
		})))
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "Bearer t")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)
}
