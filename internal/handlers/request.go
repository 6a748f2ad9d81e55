package handlers

import (
	"encoding/json"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"mahattati/internal/apperrors"
	"mahattati/internal/models"
	"mahattati/internal/reqctx"
	"mahattati/internal/utils/helpers"

	"github.com/gorilla/mux"
)

// multipartMemory: сколько держать в памяти до сброса файлов на диск.
const multipartMemory = 8 << 20

// caller: пользователь из JWTAuth. Маршрут без JWTAuth сюда не попадает.
func caller(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	u, ok := reqctx.GetUser(r.Context())
	if !ok {
		helpers.Error(w, http.StatusUnauthorized, "No token, authorization denied")
		return nil, false
	}
	return u, true
}

// pathID читает положительный целый {name} из пути.
func pathID(r *http.Request, name string) (int, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, apperrors.Validation("Validation failed", apperrors.Field(name, "Invalid "+name))
	}
	return id, nil
}

func isMultipart(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "multipart/form-data"
}

// parseMultipart ограничивает тело и разбирает форму.
func parseMultipart(w http.ResponseWriter, r *http.Request, maxBody int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return apperrors.BadRequest("Invalid multipart form or file too large", err)
	}
	return nil
}

// formValue: nil, если поле не прислали вовсе.
func formValue(r *http.Request, name string) *string {
	if r.MultipartForm == nil {
		return nil
	}
	vals, ok := r.MultipartForm.Value[name]
	if !ok || len(vals) == 0 {
		return nil
	}
	v := vals[0]
	return &v
}

type formErrors []apperrors.FieldError

func (fe *formErrors) float(r *http.Request, name string) *float64 {
	raw := formValue(r, name)
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(*raw), 64)
	if err != nil {
		*fe = append(*fe, apperrors.Field(name, "Valid "+name+" is required"))
		return nil
	}
	return &v
}

// stringList принимает JSON-массив строк, как его шлёт клиент в multipart.
func (fe *formErrors) stringList(r *http.Request, name string) *[]string {
	raw := formValue(r, name)
	if raw == nil {
		return nil
	}
	list := []string{}
	if s := strings.TrimSpace(*raw); s != "" {
		if err := json.Unmarshal([]byte(s), &list); err != nil {
			*fe = append(*fe, apperrors.Field(name, name+" must be a JSON array of strings"))
			return nil
		}
	}
	return &list
}

func (fe formErrors) err() error {
	if len(fe) == 0 {
		return nil
	}
	return apperrors.Validation("Validation failed", fe...)
}

func formFiles(r *http.Request, name string) []*multipart.FileHeader {
	if r.MultipartForm == nil {
		return nil
	}
	return r.MultipartForm.File[name]
}

func formFile(r *http.Request, name string) *multipart.FileHeader {
	files := formFiles(r, name)
	if len(files) == 0 {
		return nil
	}
	return files[0]
}

func queryBool(r *http.Request, name string) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get(name))
	return v
}
