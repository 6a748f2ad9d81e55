package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mahattati/internal/events"
	"mahattati/internal/handlers"
	"mahattati/internal/middleware"
	"mahattati/internal/ratelimit"
	"mahattati/internal/repository/memstore"
	"mahattati/internal/services"
	"mahattati/internal/storage"
	"mahattati/internal/utils"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type discardMailer struct{}

func (discardMailer) Send(context.Context, string, string, string) error { return nil }

type testAPI struct {
	srv     *httptest.Server
	tokens  *utils.TokenIssuer
	uploads string
}

func newTestAPI(t *testing.T, limiter ratelimit.Limiter) *testAPI {
	return newTestAPIBehind(t, limiter, nil)
}

// newTestAPIBehind: API за прокси из proxies.
func newTestAPIBehind(t *testing.T, limiter ratelimit.Limiter, proxies middleware.TrustedProxies) *testAPI {
	t.Helper()
	store := memstore.New()
	uploads := t.TempDir()
	files, err := storage.NewLocalStore(uploads)
	require.NoError(t, err)
	tokens := utils.NewTokenIssuer("test-secret", time.Hour)

	authService := services.NewAuthService(store.Users(), tokens, discardMailer{}, events.Nop{}, "http://localhost:3000")
	adService := services.NewAdService(store.Ads(), storage.NewUploader(files), events.Nop{}, 5<<20)
	notify := services.NewNotificationService(store.Notifications())

	payments := services.NewPaymentService(store.Payments(), services.NewStripeGateway(""), store.Ads(), notify, events.Nop{})
	subscriptions := services.NewSubscriptionService(store.Subscriptions(), store.Payments(), events.Nop{})
	comments := services.NewCommentService(store.Comments(), adService, notify)
	messages := services.NewMessageService(store.Messages(), store.Users(), notify)

	// блог, промо и админка здесь не участвуют
	router := mux.NewRouter()
	InitRoutes(router, Handlers{
		Auth:    handlers.NewAuthHandler(authService),
		Users:   handlers.NewUserHandler(services.NewUserService(store.Users(), nil, events.Nop{})),
		Ads:     handlers.NewAdHandler(adService, 5<<20),
		Social:  handlers.NewSocialHandler(comments, messages, notify),
		Payment: handlers.NewPaymentHandler(payments, subscriptions),
	}, authService, limiter, proxies)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &testAPI{srv: srv, tokens: tokens, uploads: uploads}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) (int, []byte) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, a.srv.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	return a.send(t, req, token)
}

func (a *testAPI) send(t *testing.T, req *http.Request, token string) (int, []byte) {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := a.srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out bytes.Buffer
	_, err = out.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out.Bytes()
}

func (a *testAPI) register(t *testing.T, email, role string) (int, string) {
	t.Helper()
	status, body := a.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Test", "email": email, "password": "secret1", "role": role,
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	var res struct {
		Token string `json:"token"`
		User  struct {
			ID int `json:"id"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(body, &res))
	return res.User.ID, res.Token
}

type adBody struct {
	Ad struct {
		ID         int    `json:"id"`
		Status     string `json:"status"`
		ViewsCount int    `json:"views_count"`
	} `json:"ad"`
}

func (a *testAPI) createAd(t *testing.T, token, title string) int {
	t.Helper()
	status, body := a.do(t, http.MethodPost, "/api/ads", token, map[string]any{
		"title": title, "location_latitude": 24.7136, "location_longitude": 46.6753, "city": "Riyadh",
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	var res adBody
	require.NoError(t, json.Unmarshal(body, &res))
	assert.Equal(t, "draft", res.Ad.Status)
	return res.Ad.ID
}

func TestScenario_PublishAndView(t *testing.T) {
	api := newTestAPI(t, nil)

	_, advToken := api.register(t, "adv@x.com", "advertiser")
	adID := api.createAd(t, advToken, "Station 1")

	status, body := api.do(t, http.MethodPut, fmt.Sprintf("/api/ads/%d", adID), advToken, map[string]string{"status": "published"})
	require.Equal(t, http.StatusOK, status, string(body))

	_, subToken := api.register(t, "sub@x.com", "subscriber")

	status, body = api.do(t, http.MethodGet, "/api/ads", subToken, nil)
	require.Equal(t, http.StatusOK, status)
	var list struct {
		Ads []struct {
			ID int `json:"id"`
		} `json:"ads"`
	}
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list.Ads, 1)
	assert.Equal(t, adID, list.Ads[0].ID)

	var got adBody
	for i := 0; i < 2; i++ {
		status, body = api.do(t, http.MethodGet, fmt.Sprintf("/api/ads/%d", adID), subToken, nil)
		require.Equal(t, http.StatusOK, status)
		require.NoError(t, json.Unmarshal(body, &got))
	}
	assert.Equal(t, 2, got.Ad.ViewsCount)
}

func TestScenario_DraftHiddenFromSubscriber(t *testing.T) {
	api := newTestAPI(t, nil)
	_, advToken := api.register(t, "adv@x.com", "advertiser")
	_, subToken := api.register(t, "sub@x.com", "subscriber")
	adID := api.createAd(t, advToken, "Draft station")

	status, _ := api.do(t, http.MethodGet, fmt.Sprintf("/api/ads/%d", adID), subToken, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = api.do(t, http.MethodGet, fmt.Sprintf("/api/ads/%d", adID), advToken, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestScenario_RoleGates(t *testing.T) {
	api := newTestAPI(t, nil)
	_, subToken := api.register(t, "sub@x.com", "subscriber")
	_, advToken := api.register(t, "adv@x.com", "advertiser")
	_, rivalToken := api.register(t, "rival@x.com", "advertiser")
	adID := api.createAd(t, advToken, "Station")

	status, _ := api.do(t, http.MethodPost, "/api/ads", subToken, map[string]any{"title": "x", "location_latitude": 1, "location_longitude": 1})
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = api.do(t, http.MethodPost, "/api/ads", "", map[string]any{"title": "x"})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = api.do(t, http.MethodDelete, fmt.Sprintf("/api/ads/%d", adID), rivalToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = api.do(t, http.MethodGet, "/api/subscriptions/status", advToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = api.do(t, http.MethodGet, "/api/subscriptions/status", subToken, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestForgotPassword_IdenticalBodies(t *testing.T) {
	api := newTestAPI(t, nil)
	api.register(t, "known@x.com", "advertiser")

	s1, known := api.do(t, http.MethodPost, "/api/auth/forgot-password", "", map[string]string{"email": "known@x.com"})
	s2, unknown := api.do(t, http.MethodPost, "/api/auth/forgot-password", "", map[string]string{"email": "missing@x.com"})

	assert.Equal(t, http.StatusOK, s1)
	assert.Equal(t, s1, s2)
	assert.Equal(t, string(known), string(unknown))
}

func TestMe_ExpiredToken(t *testing.T) {
	api := newTestAPI(t, nil)
	id, token := api.register(t, "a@x.com", "subscriber")

	status, _ := api.do(t, http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusOK, status)

	expired, err := api.tokens.Issue(id, "", utils.PurposeSession, -time.Hour)
	require.NoError(t, err)
	status, _ = api.do(t, http.MethodGet, "/api/auth/me", expired, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestHealthAndRateLimit(t *testing.T) {
	api := newTestAPI(t, ratelimit.NewMemoryLimiter(2, time.Hour))

	status, body := api.do(t, http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"status":"OK","message":"Mahattati API is running"}`, string(body))

	api.do(t, http.MethodGet, "/api/health", "", nil)
	status, _ = api.do(t, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusTooManyRequests, status)
}

func TestRateLimit_SpoofedForwardedFor(t *testing.T) {
	api := newTestAPI(t, ratelimit.NewMemoryLimiter(1, time.Hour))

	get := func(xff string) int {
		req, err := http.NewRequest(http.MethodGet, api.srv.URL+"/api/health", nil)
		require.NoError(t, err)
		req.Header.Set("X-Forwarded-For", xff)
		status, _ := api.send(t, req, "")
		return status
	}

	assert.Equal(t, http.StatusOK, get("203.0.113.1"))
	assert.Equal(t, http.StatusTooManyRequests, get("203.0.113.2"), "новый X-Forwarded-For не даёт новой квоты")
	assert.Equal(t, http.StatusTooManyRequests, get("203.0.113.3"))
}

func TestRateLimit_BehindTrustedProxy(t *testing.T) {
	proxies, err := middleware.ParseTrustedProxies([]string{"127.0.0.1", "::1"})
	require.NoError(t, err)
	api := newTestAPIBehind(t, ratelimit.NewMemoryLimiter(1, time.Hour), proxies)

	get := func(xff string) int {
		req, err := http.NewRequest(http.MethodGet, api.srv.URL+"/api/health", nil)
		require.NoError(t, err)
		req.Header.Set("X-Forwarded-For", xff)
		status, _ := api.send(t, req, "")
		return status
	}

	assert.Equal(t, http.StatusOK, get("203.0.113.1"))
	assert.Equal(t, http.StatusTooManyRequests, get("203.0.113.1"))
	assert.Equal(t, http.StatusOK, get("203.0.113.2"), "за доверенным прокси у каждого клиента своя квота")
}
