package helpers

import (
	"encoding/json"
	"net/http"

	"mahattati/internal/apperrors"
	"mahattati/internal/logger"

	"go.uber.org/zap"
)

// ExposeErrors: отдавать клиенту текст внутренней ошибки (только для ENV=development).
var ExposeErrors bool

type ErrorResponse struct {
	Message string                 `json:"message"`
	Errors  []apperrors.FieldError `json:"errors,omitempty"`
	Error   string                 `json:"error,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Log.Warn("Не удалось записать JSON-ответ", zap.Error(err))
	}
}

func Message(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, MessageResponse{Message: msg})
}

func Error(w http.ResponseWriter, status int, errMsg string) {
	JSON(w, status, ErrorResponse{Message: errMsg})
}

// Fail переводит ошибку слоя сервисов в HTTP-ответ.
// Неизвестные ошибки превращаются в 500 без деталей.
func Fail(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := apperrors.As(err)
	if !ok {
		logger.WithCtx(r.Context()).Error("Необработанная ошибка", zap.Error(err), zap.String("path", r.URL.Path))
		resp := ErrorResponse{Message: "Server error"}
		if ExposeErrors {
			resp.Error = err.Error()
		}
		JSON(w, http.StatusInternalServerError, resp)
		return
	}

	resp := ErrorResponse{Message: appErr.Message, Errors: appErr.Fields}
	if appErr.Status >= http.StatusInternalServerError {
		logger.WithCtx(r.Context()).Error("Ошибка запроса", zap.Error(err), zap.String("path", r.URL.Path))
	}
	if ExposeErrors && appErr.Err != nil {
		resp.Error = appErr.Err.Error()
	}
	JSON(w, appErr.Status, resp)
}
