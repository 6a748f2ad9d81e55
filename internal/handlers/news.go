package handlers

import (
	"net/http"

	"mahattati/internal/models"
	"mahattati/internal/services"
	"mahattati/internal/utils/helpers"
)

type PromoHandler struct {
	promo *services.PromoService
}

func NewPromoHandler(promo *services.PromoService) *PromoHandler {
	return &PromoHandler{promo: promo}
}

type tickerResponse struct {
	Items []*models.NewsTickerItem `json:"items"`
}

type tickerItemResponse struct {
	Item *models.NewsTickerItem `json:"item"`
}

type sponsoredResponse struct {
	SponsoredAds []*models.SponsoredAd `json:"sponsored_ads"`
}

type sponsoredItemResponse struct {
	SponsoredAd *models.SponsoredAd `json:"sponsored_ad"`
}

// Ticker godoc
// @Summary Бегущая строка
// @Tags news
// @Produce json
// @Success 200 {object} tickerResponse
// @Router /api/news-ticker [get]
func (h *PromoHandler) Ticker(w http.ResponseWriter, r *http.Request) {
	items, err := h.promo.Ticker(r.Context())
	if err != nil {
		helpers.Fail(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, tickerResponse{Items: items})
}

// CreateTicker godoc
// @Summary Добавить элемент бегущей строки (менеджеры)
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param input body models.NewsTickerInput true "Элемент"
// @Success 201 {object} tickerItemResponse
// @Failure 400 {object} helpers.ErrorResponse
// @Router /api/admin/news-ticker [post]
func (h *PromoHandler) CreateTicker(w http.ResponseWriter, r *http.Request) {
	var in models.NewsTickerInput
	if err := helpers.DecodeJSON(r, &in); err != nil {
		helpers.Fail(w, r, err)
		return
	}
	item, err := h.promo.CreateTicker(r.Context(), &in)
	if err != nil {
		helpers.Fail(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusCreated, tickerItemResponse{Item: item})
}

// CreateSponsored godoc
// @Summary Создать спонсорский баннер (менеджеры)
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param input body models.SponsoredAdInput true "Баннер"
// @Success 201 {object} sponsoredItemResponse
// @Failure 400 {object} helpers.ErrorResponse
// @Router /api/admin/sponsored-ads [post]
func (h *PromoHandler) CreateSponsored(w http.ResponseWriter, r *http.Request) {
	u, ok := caller(w, r)
	if !ok {
		return
	}
	var in models.SponsoredAdInput
	if err := helpers.DecodeJSON(r, &in); err != nil {
		helpers.Fail(w, r, err)
		return
	}
	s, err := h.promo.CreateSponsored(r.Context(), u, &in)
	if err != nil {
		helpers.Fail(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusCreated, sponsoredItemResponse{SponsoredAd: s})
}

// ListSponsored godoc
// @Summary Все спонсорские баннеры (менеджеры)
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} sponsoredResponse
// @Router /api/admin/sponsored-ads [get]
func (h *PromoHandler) ListSponsored(w http.ResponseWriter, r *http.Request) {
	list, err := h.promo.ListSponsored(r.Context())
	if err != nil {
		helpers.Fail(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, sponsoredResponse{SponsoredAds: list})
}

// ActiveSponsored godoc
// @Summary Активные спонсорские баннеры
// @Tags sponsored
// @Produce json
// @Param position query string false "top_banner, left_sidebar или right_sidebar"
// @Success 200 {object} sponsoredResponse
// @Failure 400 {object} helpers.ErrorResponse
// @Router /api/sponsored-ads [get]
func (h *PromoHandler) ActiveSponsored(w http.ResponseWriter, r *http.Request) {
	list, err := h.promo.ActiveSponsored(r.Context(), r.URL.Query().Get("position"))
	if err != nil {
		helpers.Fail(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, sponsoredResponse{SponsoredAds: list})
}
