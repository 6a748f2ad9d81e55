package routes

import (
	"net/http"

	"mahattati/internal/handlers"
	"mahattati/internal/middleware"
	"mahattati/internal/policy"
	"mahattati/internal/ratelimit"

	"github.com/gorilla/mux"
)

// Handlers: всё, что нужно роутеру.
type Handlers struct {
	Auth    *handlers.AuthHandler
	Users   *handlers.UserHandler
	Ads     *handlers.AdHandler
	Social  *handlers.SocialHandler
	Payment *handlers.PaymentHandler
	Blog    *handlers.BlogHandler
	Promo   *handlers.PromoHandler
	Admin   *handlers.AdminHandler
}

// InitRoutes регистрирует маршруты /api. limiter == nil отключает ограничение частоты,
// proxies задаёт, чьим заголовкам X-Forwarded-For верить при определении IP.
func InitRoutes(router *mux.Router, h Handlers, auth middleware.Authenticator, limiter ratelimit.Limiter, proxies middleware.TrustedProxies) {
	router.Use(proxies.RequestID, middleware.Recoverer, middleware.Logging, middleware.SecureHeaders)

	api := router.PathPrefix("/api").Subrouter()
	if limiter != nil {
		api.Use(middleware.RateLimit(limiter))
	}

	// --- Публичные маршруты ---
	api.HandleFunc("/health", handlers.Health).Methods(http.MethodGet)

	api.HandleFunc("/auth/register", h.Auth.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", h.Auth.Login).Methods(http.MethodPost)
	api.HandleFunc("/auth/verify/{token}", h.Auth.VerifyEmail).Methods(http.MethodGet)
	api.HandleFunc("/auth/forgot-password", h.Auth.ForgotPassword).Methods(http.MethodPost)
	api.HandleFunc("/auth/reset-password", h.Auth.ResetPassword).Methods(http.MethodPost)

	api.HandleFunc("/blog", h.Blog.ListPosts).Methods(http.MethodGet)
	api.HandleFunc("/blog/{id:[0-9]+}", h.Blog.GetPost).Methods(http.MethodGet)
	api.HandleFunc("/news-ticker", h.Promo.Ticker).Methods(http.MethodGet)
	api.HandleFunc("/sponsored-ads", h.Promo.ActiveSponsored).Methods(http.MethodGet)

	// --- Защищённые JWT ---
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.JWTAuth(auth))

	protected.HandleFunc("/auth/me", h.Auth.Me).Methods(http.MethodGet)

	protected.HandleFunc("/users/profile", h.Users.Profile).Methods(http.MethodGet)
	protected.HandleFunc("/users/profile", h.Users.UpdateProfile).Methods(http.MethodPut)
	protected.HandleFunc("/users/change-password", h.Users.ChangePassword).Methods(http.MethodPut)

	protected.HandleFunc("/ads", h.Ads.List).Methods(http.MethodGet)
	protected.HandleFunc("/ads/{id:[0-9]+}", h.Ads.Get).Methods(http.MethodGet)
	protected.Handle("/ads", middleware.Can(policy.AdCreate)(http.HandlerFunc(h.Ads.Create))).Methods(http.MethodPost)
	protected.Handle("/ads/{id:[0-9]+}", middleware.Can(policy.AdUpdate)(http.HandlerFunc(h.Ads.Update))).Methods(http.MethodPut)
	protected.Handle("/ads/{id:[0-9]+}", middleware.Can(policy.AdDelete)(http.HandlerFunc(h.Ads.Delete))).Methods(http.MethodDelete)

	protected.HandleFunc("/comments", h.Social.CreateComment).Methods(http.MethodPost)
	protected.HandleFunc("/comments/{adId:[0-9]+}", h.Social.ListComments).Methods(http.MethodGet)

	protected.HandleFunc("/messages", h.Social.SendMessage).Methods(http.MethodPost)
	protected.HandleFunc("/messages", h.Social.Conversations).Methods(http.MethodGet)
	protected.HandleFunc("/messages/{userId:[0-9]+}", h.Social.Thread).Methods(http.MethodGet)

	protected.HandleFunc("/notifications", h.Social.Notifications).Methods(http.MethodGet)
	protected.HandleFunc("/notifications/read-all", h.Social.MarkAllRead).Methods(http.MethodPut)
	protected.HandleFunc("/notifications/{id:[0-9]+}/read", h.Social.MarkRead).Methods(http.MethodPut)

	protected.HandleFunc("/payments/create-intent", h.Payment.CreateIntent).Methods(http.MethodPost)
	protected.HandleFunc("/payments/confirm", h.Payment.Confirm).Methods(http.MethodPost)
	protected.HandleFunc("/payments/history", h.Payment.History).Methods(http.MethodGet)
	protected.HandleFunc("/payments/mada", h.Payment.Mada).Methods(http.MethodPost)

	subs := protected.PathPrefix("/subscriptions").Subrouter()
	subs.Use(middleware.Can(policy.Subscribe))
	subs.HandleFunc("/status", h.Payment.SubscriptionStatus).Methods(http.MethodGet)
	subs.HandleFunc("/create", h.Payment.CreateSubscription).Methods(http.MethodPost)
	subs.HandleFunc("/history", h.Payment.SubscriptionHistory).Methods(http.MethodGet)

	blog := protected.PathPrefix("/blog").Subrouter()
	blog.Use(middleware.Can(policy.BlogManage))
	blog.HandleFunc("", h.Blog.CreatePost).Methods(http.MethodPost)
	blog.HandleFunc("/{id:[0-9]+}", h.Blog.UpdatePost).Methods(http.MethodPut)

	// --- Администрирование ---
	admin := protected.PathPrefix("/admin").Subrouter()
	admin.Handle("/news-ticker", middleware.Can(policy.TickerManage)(http.HandlerFunc(h.Promo.CreateTicker))).Methods(http.MethodPost)
	admin.Handle("/sponsored-ads", middleware.Can(policy.SponsoredAdd)(http.HandlerFunc(h.Promo.CreateSponsored))).Methods(http.MethodPost)
	admin.Handle("/sponsored-ads", middleware.Can(policy.SponsoredAdd)(http.HandlerFunc(h.Promo.ListSponsored))).Methods(http.MethodGet)

	system := admin.PathPrefix("").Subrouter()
	system.Use(middleware.OnlyRole(policy.SystemManager))
	system.HandleFunc("/users", h.Admin.ListUsers).Methods(http.MethodGet)
	system.HandleFunc("/users/{id:[0-9]+}", h.Admin.UpdateUser).Methods(http.MethodPut)
	system.HandleFunc("/reports", h.Admin.Report).Methods(http.MethodGet)
	system.HandleFunc("/logs", h.Admin.Logs).Methods(http.MethodGet)
}
