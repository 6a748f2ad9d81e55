package handlers

import (
	"net/http"

	"mahattati/internal/logger"
	"mahattati/internal/utils/helpers"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// VerifyEmail godoc
// @Summary Подтверждение email по ссылке из письма
// @Tags auth
// @Produce json
// @Param token path string true "Токен подтверждения"
// @Success 200 {object} helpers.MessageResponse
// @Failure 400 {object} helpers.ErrorResponse "Invalid or expired verification token"
// @Router /api/auth/verify/{token} [get]
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]
	if err := h.authService.VerifyEmail(r.Context(), token); err != nil {
		logger.WithCtx(r.Context()).Warn("Подтверждение email не удалось", zap.Error(err))
		helpers.Fail(w, r, err)
		return
	}
	helpers.Message(w, http.StatusOK, "Email verified successfully")
}
