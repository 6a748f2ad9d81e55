package handlers

import (
	"net/http"
	"strings"

	"mahattati/internal/logger"
	"mahattati/internal/services"
	"mahattati/internal/utils/helpers"

	"go.uber.org/zap"
)

type forgotReq struct {
	Email string `json:"email" example:"user@example.com"`
}

// ForgotPassword godoc
// @Summary Запрос восстановления пароля
// @Description Ответ всегда одинаковый, даже если email не найден.
// @Tags auth
// @Accept json
// @Produce json
// @Param input body forgotReq true "Email пользователя"
// @Success 200 {object} helpers.MessageResponse
// @Router /api/auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotReq
	if err := helpers.DecodeJSON(r, &req); err != nil {
		// даже на мусор отвечаем так же, чтобы ответ ничего не выдавал
		logger.WithCtx(r.Context()).Warn("Невалидный payload в ForgotPassword", zap.Error(err))
		helpers.Message(w, http.StatusOK, services.ForgotPasswordMessage)
		return
	}

	msg := h.authService.ForgotPassword(r.Context(), req.Email)
	logger.WithCtx(r.Context()).Info("Запрошено восстановление пароля", zap.String("email_masked", maskEmail(req.Email)))
	helpers.Message(w, http.StatusOK, msg)
}

// ResetPassword godoc
// @Summary Сброс пароля по токену из письма
// @Tags auth
// @Accept json
// @Produce json
// @Param input body services.ResetPasswordInput true "Токен и новый пароль"
// @Success 200 {object} helpers.MessageResponse
// @Failure 400 {object} helpers.ErrorResponse "Invalid or expired reset token"
// @Router /api/auth/reset-password [post]
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req services.ResetPasswordInput
	if err := helpers.DecodeJSON(r, &req); err != nil {
		helpers.Fail(w, r, err)
		return
	}
	if err := h.authService.ResetPassword(r.Context(), &req); err != nil {
		logger.WithCtx(r.Context()).Warn("Сброс пароля не удался", zap.Error(err))
		helpers.Fail(w, r, err)
		return
	}
	helpers.Message(w, http.StatusOK, "Password reset successfully")
}

// maskEmail прячет локальную часть адреса в логах: j***@mail.com
func maskEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return "***"
	}
	return email[:1] + "***" + email[at:]
}
