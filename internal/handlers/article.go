package handlers

import (
	"net/http"

	"mahattati/internal/models"
	"mahattati/internal/services"
	"mahattati/internal/utils/helpers"
)

type BlogHandler struct {
	blog *services.BlogService
}

func NewBlogHandler(blog *services.BlogService) *BlogHandler {
	return &BlogHandler{blog: blog}
}

type postResponse struct {
	Post *models.BlogPost `json:"post"`
}

type postsResponse struct {
	Posts []*models.BlogPost `json:"posts"`
}

// blogInput читает поля поста из multipart-формы или JSON.
func blogInput(w http.ResponseWriter, r *http.Request) (*models.BlogPostInput, error) {
	in := &models.BlogPostInput{}
	if !isMultipart(r) {
		return in, helpers.DecodeJSON(r, in)
	}
	if err := parseMultipart(w, r, services.MaxBlogMediaSize+1<<20); err != nil {
		return nil, err
	}
	in.Title = formValue(r, "title")
	in.TitleAr = formValue(r, "title_ar")
	in.Content = formValue(r, "content")
	in.ContentAr = formValue(r, "content_ar")
	in.Status = formValue(r, "status")
	return in, nil
}

// ListPosts godoc
// @Summary Опубликованные посты блога
// @Tags blog
// @Produce json
// @Success 200 {object} postsResponse
// @Router /api/blog [get]
func (h *BlogHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	list, err := h.blog.ListPublished(r.Context())
	if err != nil {
		helpers.Fail(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, postsResponse{Posts: list})
}

// GetPost godoc
// @Summary Пост блога
// @Description Увеличивает счётчик просмотров.
// @Tags blog
// @Produce json
// @Param id path int true "ID поста"
// @Success 200 {object} postResponse
// @Failure 404 {object} helpers.ErrorResponse
// @Router /api/blog/{id} [get]
func (h *BlogHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		helpers.Fail(w, r, err)
		return
	}
	p, err := h.blog.Read(r.Context(), id)
	if err != nil {
		helpers.Fail(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, postResponse{Post: p})
}

// CreatePost godoc
// @Summary Создать пост (менеджеры)
// @Description JSON или multipart/form-data с файлом media (изображение или видео до 10 МБ).
// @Tags blog
// @Accept json
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param input body models.BlogPostInput true "Пост"
// @Success 201 {object} postResponse
// @Failure 400 {object} helpers.ErrorResponse
// @Failure 403 {object} helpers.ErrorResponse
// @Router /api/blog [post]
func (h *BlogHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	u, ok := caller(w, r)
	if !ok {
		return
	}
	in, err := blogInput(w, r)
	if err != nil {
		helpers.Fail(w, r, err)
		return
	}
	p, err := h.blog.Create(r.Context(), u, in, formFile(r, "media"))
	if err != nil {
		helpers.Fail(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusCreated, postResponse{Post: p})
}

// UpdatePost godoc
// @Summary Изменить пост (менеджеры)
// @Tags blog
// @Accept json
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID поста"
// @Param input body models.BlogPostInput true "Изменяемые поля"
// @Success 200 {object} postResponse
// @Failure 400 {object} helpers.ErrorResponse
// @Failure 404 {object} helpers.ErrorResponse
// @Router /api/blog/{id} [put]
func (h *BlogHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		helpers.Fail(w, r, err)
		return
	}
	in, err := blogInput(w, r)
	if err != nil {
		helpers.Fail(w, r, err)
		return
	}
	p, err := h.blog.Update(r.Context(), id, in, formFile(r, "media"))
	if err != nil {
		helpers.Fail(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, postResponse{Post: p})
}
