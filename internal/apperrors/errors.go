// Package apperrors содержит типизированные ошибки приложения и их HTTP-статусы.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindValidation      Kind = "VALIDATION_ERROR"
	KindUnauthenticated Kind = "UNAUTHENTICATED"
	KindForbidden       Kind = "FORBIDDEN"
	KindNotFound        Kind = "NOT_FOUND"
	KindConflict        Kind = "CONFLICT"
	KindUpstream        Kind = "UPSTREAM_ERROR"
	KindTooManyRequests Kind = "TOO_MANY_REQUESTS"
	KindNotImplemented  Kind = "NOT_IMPLEMENTED"
)

var (
	// ErrInvalidToken: подпись, алгоритм, срок или назначение токена не сошлись.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenAlreadyUsedOrRevoked: токен валиден, но уже не совпадает с сохранённым.
	ErrTokenAlreadyUsedOrRevoked = errors.New("token already used or revoked")
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type AppError struct {
	Kind    Kind
	Message string
	Status  int
	Fields  []FieldError
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func Validation(message string, fields ...FieldError) *AppError {
	return &AppError{Kind: KindValidation, Message: message, Status: http.StatusBadRequest, Fields: fields}
}

// BadRequest: ошибка ввода без привязки к полю (например, неверный токен из письма).
func BadRequest(message string, err error) *AppError {
	return &AppError{Kind: KindValidation, Message: message, Status: http.StatusBadRequest, Err: err}
}

func Field(field, message string) FieldError {
	return FieldError{Field: field, Message: message}
}

func Unauthenticated(message string, err error) *AppError {
	return &AppError{Kind: KindUnauthenticated, Message: message, Status: http.StatusUnauthorized, Err: err}
}

func Forbidden(message string) *AppError {
	return &AppError{Kind: KindForbidden, Message: message, Status: http.StatusForbidden}
}

func NotFound(message string) *AppError {
	return &AppError{Kind: KindNotFound, Message: message, Status: http.StatusNotFound}
}

// Conflict отдаётся как 400: клиент ожидает этот статус для занятого email.
func Conflict(message string) *AppError {
	return &AppError{Kind: KindConflict, Message: message, Status: http.StatusBadRequest}
}

func Upstream(message string, err error) *AppError {
	return &AppError{Kind: KindUpstream, Message: message, Status: http.StatusInternalServerError, Err: err}
}

// BadGateway: внешний сервис (платёжный шлюз) ответил ошибкой или недоступен.
func BadGateway(message string, err error) *AppError {
	return &AppError{Kind: KindUpstream, Message: message, Status: http.StatusBadGateway, Err: err}
}

func TooManyRequests(message string) *AppError {
	return &AppError{Kind: KindTooManyRequests, Message: message, Status: http.StatusTooManyRequests}
}

func NotImplemented(message string) *AppError {
	return &AppError{Kind: KindNotImplemented, Message: message, Status: http.StatusNotImplemented}
}

func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func Is(err error, kind Kind) bool {
	appErr, ok := As(err)
	return ok && appErr.Kind == kind
}
