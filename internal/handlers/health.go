package handlers

import (
	"net/http"

	"mahattati/internal/utils/helpers"
)

type healthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Health godoc
// @Summary Проверка доступности
// @Tags health
// @Produce json
// @Success 200 {object} healthResponse
// @Router /api/health [get]
func Health(w http.ResponseWriter, r *http.Request) {
	helpers.JSON(w, http.StatusOK, healthResponse{Status: "OK", Message: "Mahattati API is running"})
}
