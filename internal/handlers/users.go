package handlers

import (
	"net/http"

	"mahattati/internal/models"
	"mahattati/internal/services"
	"mahattati/internal/utils/helpers"
)

type UserHandler struct {
	users *services.UserService
}

func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// Profile godoc
// @Summary Профиль текущего пользователя
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} userResponse
// @Failure 401 {object} helpers.ErrorResponse
// @Router /api/users/profile [get]
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	u, ok := caller(w, r)
	if !ok {
		return
	}
	p, err := h.users.Profile(r.Context(), u.ID)
	if err != nil {
		helpers.Fail(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, userResponse{User: *p})
}

// UpdateProfile godoc
// @Summary Изменить профиль
// @Description JSON или multipart/form-data с файлом profile_image (до 2 МБ).
// @Tags users
// @Accept json
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param input body models.UpdateProfileRequest false "Поля профиля"
// @Success 200 {object} userResponse
// @Failure 400 {object} helpers.ErrorResponse
// @Router /api/users/profile [put]
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	u, ok := caller(w, r)
	if !ok {
		return
	}

	in := &models.UpdateProfileRequest{}
	if isMultipart(r) {
		if err := parseMultipart(w, r, services.MaxProfileImageSize+1<<20); err != nil {
			helpers.Fail(w, r, err)
			return
		}
		in.Name = formValue(r, "name")
		in.Phone = formValue(r, "phone")
		in.CompanyName = formValue(r, "company_name")
		in.LanguagePreference = formValue(r, "language_preference")
	} else if err := helpers.DecodeJSON(r, in); err != nil {
		helpers.Fail(w, r, err)
		return
	}

	p, err := h.users.UpdateProfile(r.Context(), u, in, formFile(r, "profile_image"))
	if err != nil {
		helpers.Fail(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, userResponse{User: *p})
}

// ChangePassword godoc
// @Summary Сменить пароль
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param input body services.ChangePasswordInput true "Текущий и новый пароль"
// @Success 200 {object} helpers.MessageResponse
// @Failure 400 {object} helpers.ErrorResponse
// @Router /api/users/change-password [put]
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	u, ok := caller(w, r)
	if !ok {
		return
	}
	var in services.ChangePasswordInput
	if err := helpers.DecodeJSON(r, &in); err != nil {
		helpers.Fail(w, r, err)
		return
	}
	if err := h.users.ChangePassword(r.Context(), u, &in); err != nil {
		helpers.Fail(w, r, err)
		return
	}
	helpers.Message(w, http.StatusOK, "Password changed successfully")
}
