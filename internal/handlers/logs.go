package handlers

import (
	"net/http"
	"time"

	"mahattati/internal/models"
	"mahattati/internal/services"
	"mahattati/internal/utils/helpers"
)

// AdminHandler: управление пользователями, отчёты и журнал событий.
type AdminHandler struct {
	admin *services.AdminService
}

func NewAdminHandler(admin *services.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

type pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
}

func paginationOf[T any](p *models.Page[T]) pagination {
	return pagination{Total: p.Total, Page: p.Page, Limit: p.Limit, Pages: p.Pages}
}

type usersPageResponse struct {
	Users      []models.UserProfile `json:"users"`
	Pagination pagination           `json:"pagination"`
}

type logsPageResponse struct {
	Logs       []*models.AuditLog `json:"logs"`
	Pagination pagination         `json:"pagination"`
}

type reportResponse struct {
	Report      any       `json:"report"`
	GeneratedAt time.Time `json:"generated_at"`
}

// ListUsers godoc
// @Summary Пользователи (системный менеджер)
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param role query string false "Фильтр по роли"
// @Param page query int false "Страница (с 1)"
// @Param limit query int false "Размер страницы (до 100)"
// @Success 200 {object} usersPageResponse
// @Failure 400 {object} helpers.ErrorResponse
// @Failure 403 {object} helpers.ErrorResponse
// @Router /api/admin/users [get]
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p, err := h.admin.ListUsers(r.Context(), q.Get("role"), q.Get("page"), q.Get("limit"))
	if err != nil {
		helpers.Fail(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, usersPageResponse{Users: p.Items, Pagination: paginationOf(p)})
}

// UpdateUser godoc
// @Summary Изменить пользователя (системный менеджер)
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID пользователя"
// @Param input body models.AdminUpdateUserRequest true "Изменяемые поля"
// @Success 200 {object} userResponse
// @Failure 400 {object} helpers.ErrorResponse
// @Failure 404 {object} helpers.ErrorResponse
// @Router /api/admin/users/{id} [put]
func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	u, ok := caller(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		helpers.Fail(w, r, err)
		return
	}
	var in models.AdminUpdateUserRequest
	if err := helpers.DecodeJSON(r, &in); err != nil {
		helpers.Fail(w, r, err)
		return
	}
	p, err := h.admin.UpdateUser(r.Context(), u, id, &in)
	if err != nil {
		helpers.Fail(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, userResponse{User: *p})
}

// Report godoc
// @Summary Отчёт (системный менеджер)
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param type query string true "users, ads, payments или subscriptions"
// @Param start_date query string false "Начало периода (YYYY-MM-DD или RFC3339)"
// @Param end_date query string false "Конец периода"
// @Success 200 {object} reportResponse
// @Failure 400 {object} helpers.ErrorResponse
// @Router /api/admin/reports [get]
func (h *AdminHandler) Report(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res, err := h.admin.Report(r.Context(), q.Get("type"), q.Get("start_date"), q.Get("end_date"))
	if err != nil {
		helpers.Fail(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, reportResponse{Report: res.Report, GeneratedAt: res.GeneratedAt})
}

// Logs godoc
// @Summary Журнал событий (системный менеджер)
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param event_type query string false "Тип события"
// @Param user_id query int false "ID пользователя"
// @Param page query int false "Страница (с 1)"
// @Param limit query int false "Размер страницы (до 1000)"
// @Success 200 {object} logsPageResponse
// @Failure 400 {object} helpers.ErrorResponse
// @Router /api/admin/logs [get]
func (h *AdminHandler) Logs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p, err := h.admin.Logs(r.Context(), q.Get("event_type"), q.Get("user_id"), q.Get("page"), q.Get("limit"))
	if err != nil {
		helpers.Fail(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, logsPageResponse{Logs: p.Items, Pagination: paginationOf(p)})
}
