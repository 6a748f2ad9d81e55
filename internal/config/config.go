package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string
	Env  string // development|production

	DatabaseURL string
	DbHost      string
	DbPort      string
	DbUser      string
	DbPass      string
	DbName      string
	DbSSLMode   string

	JWTSecret    string
	JWTExpiresIn string

	Log      string
	LogLevel string

	ClientURL string

	UploadDir   string
	MaxFileSize int64

	RateLimitWindow time.Duration
	RateLimitMax    int
	// TrustedProxies: CIDR прокси, которым разрешено передавать X-Forwarded-For
	TrustedProxies []string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	RabbitMQURL string

	S3Bucket        string
	S3Region        string
	S3PublicBaseURL string

	StripeSecretKey string

	EmailHost string
	EmailPort string
	EmailUser string
	EmailPass string
}

// LoadConfig загружает .env, читает переменные окружения и выставляет дефолты.
// Ничего не логирует, чтобы не зависеть от logger.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load(".env")

	def := func(v, d string) string {
		v = strings.TrimSpace(v)
		if v == "" {
			return d
		}
		return v
	}

	maxFileSize, err := strconv.ParseInt(def(os.Getenv("MAX_FILE_SIZE"), "5242880"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("MAX_FILE_SIZE: %w", err)
	}
	window, err := time.ParseDuration(def(os.Getenv("RATE_LIMIT_WINDOW"), "15m"))
	if err != nil {
		return nil, fmt.Errorf("RATE_LIMIT_WINDOW: %w", err)
	}
	limitMax, err := strconv.Atoi(def(os.Getenv("RATE_LIMIT_MAX"), "100"))
	if err != nil {
		return nil, fmt.Errorf("RATE_LIMIT_MAX: %w", err)
	}
	redisDB, err := strconv.Atoi(def(os.Getenv("REDIS_DB"), "0"))
	if err != nil {
		return nil, fmt.Errorf("REDIS_DB: %w", err)
	}

	cfg := &Config{
		Port: def(os.Getenv("PORT"), "5000"),
		Env:  strings.ToLower(def(os.Getenv("ENV"), "production")),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		DbHost:      os.Getenv("DB_HOST"),
		DbPort:      def(os.Getenv("DB_PORT"), "5432"),
		DbUser:      os.Getenv("DB_USER"),
		DbPass:      os.Getenv("DB_PASSWORD"),
		DbName:      os.Getenv("DB_NAME"),
		DbSSLMode:   def(os.Getenv("DB_SSLMODE"), "disable"),

		JWTSecret:    os.Getenv("JWT_SECRET"),
		JWTExpiresIn: def(os.Getenv("JWT_EXPIRES_IN"), "7d"),

		Log:      os.Getenv("LOG"),
		LogLevel: strings.ToLower(def(os.Getenv("LOGLEVEL"), "info")),

		ClientURL: strings.TrimRight(def(os.Getenv("CLIENT_URL"), "http://localhost:3000"), "/"),

		UploadDir:   def(os.Getenv("UPLOAD_DIR"), "./uploads"),
		MaxFileSize: maxFileSize,

		RateLimitWindow: window,
		RateLimitMax:    limitMax,
		TrustedProxies:  splitList(os.Getenv("TRUSTED_PROXIES")),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       redisDB,

		RabbitMQURL: os.Getenv("RABBITMQ_URL"),

		S3Bucket:        os.Getenv("S3_BUCKET"),
		S3Region:        def(os.Getenv("S3_REGION"), "me-south-1"),
		S3PublicBaseURL: strings.TrimRight(os.Getenv("S3_PUBLIC_BASE_URL"), "/"),

		StripeSecretKey: os.Getenv("STRIPE_SECRET_KEY"),

		EmailHost: os.Getenv("EMAIL_HOST"),
		EmailPort: def(os.Getenv("EMAIL_PORT"), "587"),
		EmailUser: os.Getenv("EMAIL_USER"),
		EmailPass: os.Getenv("EMAIL_PASS"),
	}

	return cfg, nil
}

// splitList разбирает список через запятую, пустые элементы отбрасываются.
func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// IsDevelopment: показывать ли детали ошибок клиенту.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development" || c.Env == "dev"
}

// Validate возвращает предупреждения и фатальную ошибку (если критично).
func (c *Config) Validate() (warnings []string, err error) {
	if c.DatabaseURL == "" && (c.DbHost == "" || c.DbUser == "" || c.DbName == "") {
		return nil, fmt.Errorf("incomplete DB config (DATABASE_URL or DB_HOST/DB_USER/DB_NAME)")
	}

	// без секрета любой сможет подписать токен
	if strings.TrimSpace(c.JWTSecret) == "" {
		return nil, fmt.Errorf("JWT_SECRET is empty")
	}

	if c.StripeSecretKey == "" {
		warnings = append(warnings, "STRIPE_SECRET_KEY is not set, payments are disabled")
	}
	if c.EmailHost == "" || c.EmailUser == "" {
		warnings = append(warnings, "SMTP is not fully configured")
	}
	if c.RedisAddr == "" {
		warnings = append(warnings, "REDIS_ADDR is not set, using in-memory rate limiter")
	}
	if c.RabbitMQURL == "" {
		warnings = append(warnings, "RABBITMQ_URL is not set, audit events are written directly")
	}
	if c.RateLimitMax <= 0 {
		warnings = append(warnings, "RATE_LIMIT_MAX <= 0, rate limiting disabled")
	}

	return warnings, nil
}

// GetDSN: полная DSN (с паролем)
func (c *Config) GetDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DbUser, c.DbPass, c.DbHost, c.DbPort, c.DbName, c.DbSSLMode,
	)
}

// GetDSNSafe: DSN без пароля (для логов)
func (c *Config) GetDSNSafe() string {
	if c.DatabaseURL != "" {
		return "DATABASE_URL"
	}
	return fmt.Sprintf(
		"postgres://%s:***@%s:%s/%s?sslmode=%s",
		c.DbUser, c.DbHost, c.DbPort, c.DbName, c.DbSSLMode,
	)
}
