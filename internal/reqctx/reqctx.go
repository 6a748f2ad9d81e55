// internal/reqctx/reqctx.go
package reqctx

import (
	"context"

	"mahattati/internal/models"
)

type key int

const (
	keyRequestID key = iota
	keyUser
	keyClientIP
)

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, keyRequestID, id)
}

func GetRequestID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(keyRequestID).(string)
	return v, ok
}

// WithUser кладёт в контекст пользователя, загруженного при аутентификации.
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, keyUser, u)
}

func GetUser(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(keyUser).(*models.User)
	return u, ok && u != nil
}

func GetUserID(ctx context.Context) (int, bool) {
	u, ok := GetUser(ctx)
	if !ok {
		return 0, false
	}
	return u.ID, true
}

func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, keyClientIP, ip)
}

func GetClientIP(ctx context.Context) string {
	v, _ := ctx.Value(keyClientIP).(string)
	return v
}
