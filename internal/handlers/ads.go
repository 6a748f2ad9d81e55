package handlers

import (
	"net/http"
	"strings"

	"mahattati/internal/models"
	"mahattati/internal/services"
	"mahattati/internal/utils/helpers"
)

type AdHandler struct {
	ads         *services.AdService
	maxFileSize int64
}

func NewAdHandler(ads *services.AdService, maxFileSize int64) *AdHandler {
	return &AdHandler{ads: ads, maxFileSize: maxFileSize}
}

type adResponse struct {
	Ad *models.Ad `json:"ad"`
}

type adsResponse struct {
	Ads []*models.Ad `json:"ads"`
}

// maxBody: все картинки плюс запас на текстовые поля.
func (h *AdHandler) maxBody() int64 {
	return int64(models.MaxAdImages)*h.maxFileSize + 1<<20
}

// createInput собирает вход из multipart-формы или JSON.
func (h *AdHandler) createInput(w http.ResponseWriter, r *http.Request) (*models.CreateAdInput, error) {
	in := &models.CreateAdInput{}
	if !isMultipart(r) {
		return in, helpers.DecodeJSON(r, in)
	}
	if err := parseMultipart(w, r, h.maxBody()); err != nil {
		return nil, err
	}

	var fe formErrors
	if v := formValue(r, "title"); v != nil {
		in.Title = *v
	}
	in.Description = formValue(r, "description")
	in.LocationLatitude = fe.float(r, "location_latitude")
	in.LocationLongitude = fe.float(r, "location_longitude")
	in.Address = formValue(r, "address")
	in.City = formValue(r, "city")
	in.Region = formValue(r, "region")
	if list := fe.stringList(r, "facilities"); list != nil {
		in.Facilities = *list
	}
	if list := fe.stringList(r, "fuel_types"); list != nil {
		in.FuelTypes = *list
	}
	return in, fe.err()
}

// Create godoc
// @Summary Создать объявление (черновик)
// @Description multipart/form-data: поля объявления, facilities и fuel_types как JSON-массивы строк, до 5 файлов images. Также принимается JSON.
// @Tags ads
// @Accept mpfd
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param title formData string true "Название"
// @Param location_latitude formData number true "Широта"
// @Param location_longitude formData number true "Долгота"
// @Param facilities formData string false "JSON-массив удобств"
// @Param fuel_types formData string false "JSON-массив видов топлива"
// @Param images formData file false "Изображения (jpeg, png, gif)"
// @Success 201 {object} adResponse
// @Failure 400 {object} helpers.ErrorResponse
// @Failure 401 {object} helpers.ErrorResponse
// @Failure 403 {object} helpers.ErrorResponse
// @Router /api/ads [post]
func (h *AdHandler) Create(w http.ResponseWriter, r *http.Request) {
	u, ok := caller(w, r)
	if !ok {
		return
	}
	in, err := h.createInput(w, r)
	if err != nil {
		helpers.Fail(w, r, err)
		return
	}

	ad, err := h.ads.Create(r.Context(), u, in, formFiles(r, "images"))
	if err != nil {
		helpers.Fail(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusCreated, adResponse{Ad: ad})
}

// List godoc
// @Summary Список объявлений
// @Description Рекламодатель видит только свои объявления. Остальные роли видят опубликованные, с фильтрами region, city и радиусом (latitude, longitude, radius в км, 1..100).
// @Tags ads
// @Produce json
// @Security BearerAuth
// @Param status query string false "draft | published" default(published)
// @Param region query string false "Регион"
// @Param city query string false "Город"
// @Param latitude query number false "Широта центра"
// @Param longitude query number false "Долгота центра"
// @Param radius query int false "Радиус, км"
// @Success 200 {object} adsResponse
// @Failure 400 {object} helpers.ErrorResponse
// @Failure 401 {object} helpers.ErrorResponse
// @Router /api/ads [get]
func (h *AdHandler) List(w http.ResponseWriter, r *http.Request) {
	u, ok := caller(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	f, err := services.ParseAdQuery(services.ScopeAdQuery(u, models.AdQuery{
		Status:    q.Get("status"),
		Region:    q.Get("region"),
		City:      q.Get("city"),
		Latitude:  q.Get("latitude"),
		Longitude: q.Get("longitude"),
		Radius:    q.Get("radius"),
	}))
	if err != nil {
		helpers.Fail(w, r, err)
		return
	}

	ads, err := h.ads.List(r.Context(), u, f)
	if err != nil {
		helpers.Fail(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, adsResponse{Ads: ads})
}

// Get godoc
// @Summary Объявление по id
// @Description Просмотр подписчиком увеличивает views_count на 1.
// @Tags ads
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID объявления"
// @Success 200 {object} adResponse
// @Failure 404 {object} helpers.ErrorResponse
// @Router /api/ads/{id} [get]
func (h *AdHandler) Get(w http.ResponseWriter, r *http.Request) {
	u, ok := caller(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		helpers.Fail(w, r, err)
		return
	}

	ad, err := h.ads.Get(r.Context(), u, id)
	if err != nil {
		helpers.Fail(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, adResponse{Ad: ad})
}

func (h *AdHandler) updateInput(w http.ResponseWriter, r *http.Request) (*models.UpdateAdInput, error) {
	in := &models.UpdateAdInput{}
	if !isMultipart(r) {
		return in, helpers.DecodeJSON(r, in)
	}
	if err := parseMultipart(w, r, h.maxBody()); err != nil {
		return nil, err
	}

	var fe formErrors
	in.Title = formValue(r, "title")
	in.Description = formValue(r, "description")
	in.LocationLatitude = fe.float(r, "location_latitude")
	in.LocationLongitude = fe.float(r, "location_longitude")
	in.Address = formValue(r, "address")
	in.City = formValue(r, "city")
	in.Region = formValue(r, "region")
	in.Facilities = fe.stringList(r, "facilities")
	in.FuelTypes = fe.stringList(r, "fuel_types")
	if v := formValue(r, "status"); v != nil {
		st := models.AdStatus(strings.TrimSpace(*v))
		in.Status = &st
	}
	return in, fe.err()
}

// Update godoc
// @Summary Изменить своё объявление
// @Description Меняются только присланные поля. Новые images заменяют старые целиком. status: draft | published.
// @Tags ads
// @Accept mpfd
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID объявления"
// @Param input body models.UpdateAdInput false "Поля для изменения (JSON)"
// @Success 200 {object} adResponse
// @Failure 400 {object} helpers.ErrorResponse
// @Failure 403 {object} helpers.ErrorResponse
// @Failure 404 {object} helpers.ErrorResponse
// @Router /api/ads/{id} [put]
func (h *AdHandler) Update(w http.ResponseWriter, r *http.Request) {
	u, ok := caller(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		helpers.Fail(w, r, err)
		return
	}
	in, err := h.updateInput(w, r)
	if err != nil {
		helpers.Fail(w, r, err)
		return
	}

	ad, err := h.ads.Update(r.Context(), u, id, in, formFiles(r, "images"))
	if err != nil {
		helpers.Fail(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, adResponse{Ad: ad})
}

// Delete godoc
// @Summary Удалить своё объявление
// @Tags ads
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID объявления"
// @Success 200 {object} helpers.MessageResponse
// @Failure 403 {object} helpers.ErrorResponse
// @Failure 404 {object} helpers.ErrorResponse
// @Router /api/ads/{id} [delete]
func (h *AdHandler) Delete(w http.ResponseWriter, r *http.Request) {
	u, ok := caller(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		helpers.Fail(w, r, err)
		return
	}
	if err := h.ads.Delete(r.Context(), u, id); err != nil {
		helpers.Fail(w, r, err)
		return
	}
	helpers.Message(w, http.StatusOK, "Ad deleted successfully")
}
