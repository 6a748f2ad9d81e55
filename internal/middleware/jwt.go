package middleware

import (
	"context"
	"net/http"
	"strings"

	"mahattati/internal/apperrors"
	"mahattati/internal/logger"
	"mahattati/internal/models"
	"mahattati/internal/reqctx"
	"mahattati/internal/utils/helpers"

	"go.uber.org/zap"
)

// Authenticator: проверка сессионного токена (services.AuthService).
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// JWTAuth пускает дальше только запросы с валидным Bearer-токеном
// и кладёт загруженного пользователя в контекст.
func JWTAuth(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
				logger.WithCtx(r.Context()).Warn("JWTAuth: отсутствует токен")
				helpers.Error(w, http.StatusUnauthorized, "No token, authorization denied")
				return
			}
			token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))

			user, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				if apperrors.Is(err, apperrors.KindUnauthenticated) {
					logger.WithCtx(r.Context()).Warn("JWTAuth: неверный или просроченный токен", zap.Error(err))
				}
				helpers.Fail(w, r, err)
				return
			}

			if h := holderFrom(r.Context()); h != nil {
				h.id, h.role = user.ID, user.Role.String()
			}
			ctx := reqctx.WithUser(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

type holderKey struct{}

// userHolder передаёт пользователя из JWTAuth обратно в Logging.
type userHolder struct {
	id   int
	role string
}

func withUserHolder(ctx context.Context, h *userHolder) context.Context {
	return context.WithValue(ctx, holderKey{}, h)
}

func holderFrom(ctx context.Context) *userHolder {
	h, _ := ctx.Value(holderKey{}).(*userHolder)
	return h
}
