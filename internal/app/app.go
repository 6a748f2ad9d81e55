package app

import (
	"context"
	"time"

	"mahattati/internal/config"
	"mahattati/internal/db"
	"mahattati/internal/events"
	"mahattati/internal/handlers"
	"mahattati/internal/logger"
	"mahattati/internal/middleware"
	"mahattati/internal/ratelimit"
	"mahattati/internal/repository"
	"mahattati/internal/routes"
	"mahattati/internal/services"
	"mahattati/internal/storage"
	"mahattati/internal/utils"
	"mahattati/internal/utils/helpers"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	auditQueue      = "mahattati.audit"
	mailQueueSize   = 100
	mailWorkers     = 3
	cleanerPeriod   = time.Hour
	limiterSweep    = time.Minute
	rateLimitPrefix = "ratelimit:api:"
)

// InitApp собирает зависимости и роутер. cleanup освобождает пул, брокер и воркеры.
func InitApp(ctx context.Context, cfg *config.Config) (*mux.Router, func(), error) {
	helpers.ExposeErrors = cfg.IsDevelopment()

	ttl, err := utils.ParseTTL(cfg.JWTExpiresIn, 7*24*time.Hour)
	if err != nil {
		return nil, nil, err
	}
	proxies, err := middleware.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		return nil, nil, err
	}

	conn, err := db.NewPostgresConnection(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	logger.Log.Info("Подключение к БД установлено", zap.String("dsn", cfg.GetDSNSafe()))

	bgCtx, stopBackground := context.WithCancel(context.Background())
	var closers []func()

	// Репозитории
	userRepo := repository.NewUserRepository(conn)
	adRepo := repository.NewAdRepository(conn)
	auditRepo := repository.NewAuditRepository(conn)
	paymentRepo := repository.NewPaymentRepository(conn)
	subscriptionRepo := repository.NewSubscriptionRepository(conn)
	commentRepo := repository.NewCommentRepository(conn)
	messageRepo := repository.NewMessageRepository(conn)
	notificationRepo := repository.NewNotificationRepository(conn)
	blogRepo := repository.NewBlogRepository(conn)
	promoRepo := repository.NewPromoRepository(conn)

	// Аудит: через RabbitMQ, если он настроен, иначе сразу в БД
	var audit events.Recorder = events.NewDirectRecorder(auditRepo)
	if cfg.RabbitMQURL != "" {
		pub := events.NewAMQPPublisher(cfg.RabbitMQURL, auditQueue, audit)
		go events.NewConsumer(cfg.RabbitMQURL, auditQueue, auditRepo).Run(bgCtx)
		closers = append(closers, pub.Close)
		audit = pub
	}

	// Файлы: S3 или локальный каталог
	var files storage.FileStore
	if cfg.S3Bucket != "" {
		s3Store, err := storage.NewS3Store(ctx, cfg.S3Region, cfg.S3Bucket, cfg.S3PublicBaseURL)
		if err != nil {
			stopBackground()
			conn.Close()
			return nil, nil, err
		}
		files = s3Store
	} else {
		local, err := storage.NewLocalStore(cfg.UploadDir)
		if err != nil {
			stopBackground()
			conn.Close()
			return nil, nil, err
		}
		files = local
	}
	uploader := storage.NewUploader(files)

	// Почта уходит из запроса в очередь
	mailer := services.NewMailQueue(services.NewEmailService(cfg), mailQueueSize)
	mailer.Start(mailWorkers)
	closers = append(closers, mailer.Stop)

	// Сервисы
	tokens := utils.NewTokenIssuer(cfg.JWTSecret, ttl)
	authService := services.NewAuthService(userRepo, tokens, mailer, audit, cfg.ClientURL)
	userService := services.NewUserService(userRepo, uploader, audit)
	adService := services.NewAdService(adRepo, uploader, audit, cfg.MaxFileSize)
	notifyService := services.NewNotificationService(notificationRepo)
	commentService := services.NewCommentService(commentRepo, adService, notifyService)
	messageService := services.NewMessageService(messageRepo, userRepo, notifyService)
	paymentService := services.NewPaymentService(paymentRepo, services.NewStripeGateway(cfg.StripeSecretKey), adRepo, notifyService, audit)
	subscriptionService := services.NewSubscriptionService(subscriptionRepo, paymentRepo, audit)
	blogService := services.NewBlogService(blogRepo, uploader)
	promoService := services.NewPromoService(promoRepo)
	adminService := services.NewAdminService(userRepo, auditRepo, audit)

	// Ограничение частоты: Redis общий для всех инстансов, память как запасной вариант
	var limiter ratelimit.Limiter
	if cfg.RateLimitMax > 0 {
		limiter = newLimiter(ctx, bgCtx, cfg, &closers)
	}

	go startCleaner(bgCtx, adService, subscriptionService)

	router := mux.NewRouter()
	routes.InitRoutes(router, routes.Handlers{
		Auth:    handlers.NewAuthHandler(authService),
		Users:   handlers.NewUserHandler(userService),
		Ads:     handlers.NewAdHandler(adService, cfg.MaxFileSize),
		Social:  handlers.NewSocialHandler(commentService, messageService, notifyService),
		Payment: handlers.NewPaymentHandler(paymentService, subscriptionService),
		Blog:    handlers.NewBlogHandler(blogService),
		Promo:   handlers.NewPromoHandler(promoService),
		Admin:   handlers.NewAdminHandler(adminService),
	}, authService, limiter, proxies)

	cleanup := func() {
		stopBackground()
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
		conn.Close()
	}
	return router, cleanup, nil
}

func newLimiter(ctx, bgCtx context.Context, cfg *config.Config, closers *[]func()) ratelimit.Limiter {
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		err := rdb.Ping(pingCtx).Err()
		if err == nil {
			*closers = append(*closers, func() { _ = rdb.Close() })
			return ratelimit.NewRedisLimiter(rdb, rateLimitPrefix, cfg.RateLimitMax, cfg.RateLimitWindow)
		}
		logger.Log.Warn("Redis недоступен, лимитер в памяти", zap.Error(err))
		_ = rdb.Close()
	}
	mem := ratelimit.NewMemoryLimiter(cfg.RateLimitMax, cfg.RateLimitWindow)
	go mem.Cleanup(bgCtx, limiterSweep)
	return mem
}

// startCleaner раз в час снимает просроченные продвижения и подписки.
func startCleaner(ctx context.Context, ads *services.AdService, subs *services.SubscriptionService) {
	run := func() {
		// количество снятых записей логируют сами сервисы
		if _, err := ads.CleanupExpired(ctx); err != nil {
			logger.Log.Error("Очистка продвижений не удалась", zap.Error(err))
		}
		if _, err := subs.ExpireLapsed(ctx); err != nil {
			logger.Log.Error("Очистка подписок не удалась", zap.Error(err))
		}
	}

	run()
	t := time.NewTicker(cleanerPeriod)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			run()
		}
	}
}
