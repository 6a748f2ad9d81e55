package middleware

import (
	"net/http"

	"mahattati/internal/logger"
	"mahattati/internal/policy"
	"mahattati/internal/reqctx"
	"mahattati/internal/utils/helpers"

	"go.uber.org/zap"
)

// AnyRole: грубая проверка роли до загрузки ресурса. Ставится после JWTAuth.
func AnyRole(allowed ...policy.Role) func(http.Handler) http.Handler {
	roleSet := make(map[policy.Role]struct{}, len(allowed))
	for _, r := range allowed {
		roleSet[r] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := reqctx.GetUser(r.Context())
			if !ok {
				helpers.Error(w, http.StatusUnauthorized, "No token, authorization denied")
				return
			}
			if _, found := roleSet[user.Role]; !found {
				logger.WithCtx(r.Context()).Warn("Доступ запрещён по роли",
					zap.String("role", user.Role.String()), zap.String("path", r.URL.Path))
				helpers.Error(w, http.StatusForbidden, "Access denied")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// OnlyRole: частный случай AnyRole.
func OnlyRole(role policy.Role) func(http.Handler) http.Handler {
	return AnyRole(role)
}

// Can пропускает роли, которым действие доступно хотя бы для своих ресурсов.
// Владение проверяет сервис после загрузки ресурса.
func Can(action policy.Action) func(http.Handler) http.Handler {
	return AnyRole(policy.RolesFor(action)...)
}
