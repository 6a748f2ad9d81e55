package handlers

import (
	"net/http"

	"mahattati/internal/logger"
	"mahattati/internal/models"
	"mahattati/internal/services"
	"mahattati/internal/utils/helpers"

	"go.uber.org/zap"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register godoc
// @Summary Регистрация рекламодателя или подписчика
// @Description Роль выбирается при регистрации: advertiser или subscriber. На почту уходит ссылка подтверждения.
// @Tags auth
// @Accept json
// @Produce json
// @Param input body services.RegisterInput true "Данные регистрации"
// @Success 201 {object} services.AuthResult
// @Failure 400 {object} helpers.ErrorResponse "Ошибка валидации или email занят"
// @Router /api/auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterInput
	if err := helpers.DecodeJSON(r, &req); err != nil {
		helpers.Fail(w, r, err)
		return
	}

	res, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		logger.WithCtx(r.Context()).Warn("Регистрация не удалась", zap.String("email_masked", maskEmail(req.Email)), zap.Error(err))
		helpers.Fail(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusCreated, res)
}

// Login godoc
// @Summary Вход по email и паролю
// @Tags auth
// @Accept json
// @Produce json
// @Param input body services.LoginInput true "Данные для входа"
// @Success 200 {object} services.AuthResult
// @Failure 400 {object} helpers.ErrorResponse
// @Failure 401 {object} helpers.ErrorResponse "Invalid credentials"
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req services.LoginInput
	if err := helpers.DecodeJSON(r, &req); err != nil {
		helpers.Fail(w, r, err)
		return
	}

	res, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		helpers.Fail(w, r, err)
		return
	}
	logger.WithCtx(r.Context()).Info("Вход выполнен", zap.Int("user_id", res.User.ID), zap.String("role", res.User.Role.String()))
	helpers.JSON(w, http.StatusOK, res)
}

type userResponse struct {
	User models.UserProfile `json:"user"`
}

// Me godoc
// @Summary Текущий пользователь
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} userResponse
// @Failure 401 {object} helpers.ErrorResponse
// @Router /api/auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	u, ok := caller(w, r)
	if !ok {
		return
	}
	helpers.JSON(w, http.StatusOK, userResponse{User: u.Profile()})
}
