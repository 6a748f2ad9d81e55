package handlers

import (
	"net/http"

	"mahattati/internal/models"
	"mahattati/internal/services"
	"mahattati/internal/utils/helpers"
)

type SocialHandler struct {
	comments      *services.CommentService
	messages      *services.MessageService
	notifications *services.NotificationService
}

func NewSocialHandler(comments *services.CommentService, messages *services.MessageService, notifications *services.NotificationService) *SocialHandler {
	return &SocialHandler{comments: comments, messages: messages, notifications: notifications}
}

type commentResponse struct {
	Comment *models.Comment `json:"comment"`
}

type commentsResponse struct {
	Comments []*models.Comment `json:"comments"`
}

type messageResponse struct {
	Message *models.Message `json:"message"`
}

type messagesResponse struct {
	Messages []*models.Message `json:"messages"`
}

type conversationsResponse struct {
	Conversations []*models.Conversation `json:"conversations"`
}

type notificationsResponse struct {
	Notifications []*models.Notification `json:"notifications"`
}

// CreateComment godoc
// @Summary Комментарий к объявлению
// @Description Владелец объявления получает уведомление.
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param input body models.CreateCommentInput true "Комментарий"
// @Success 201 {object} commentResponse
// @Failure 400 {object} helpers.ErrorResponse
// @Failure 404 {object} helpers.ErrorResponse
// @Router /api/comments [post]
func (h *SocialHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	u, ok := caller(w, r)
	if !ok {
		return
	}
	var in models.CreateCommentInput
	if err := helpers.DecodeJSON(r, &in); err != nil {
		helpers.Fail(w, r, err)
		return
	}
	c, err := h.comments.Create(r.Context(), u, &in)
	if err != nil {
		helpers.Fail(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusCreated, commentResponse{Comment: c})
}

// ListComments godoc
// @Summary Комментарии объявления
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param adId path int true "ID объявления"
// @Success 200 {object} commentsResponse
// @Failure 404 {object} helpers.ErrorResponse
// @Router /api/comments/{adId} [get]
func (h *SocialHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	u, ok := caller(w, r)
	if !ok {
		return
	}
	adID, err := pathID(r, "adId")
	if err != nil {
		helpers.Fail(w, r, err)
		return
	}
	list, err := h.comments.ListByAd(r.Context(), u, adID)
	if err != nil {
		helpers.Fail(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, commentsResponse{Comments: list})
}

// SendMessage godoc
// @Summary Отправить сообщение
// @Tags messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param input body models.SendMessageInput true "Сообщение"
// @Success 201 {object} messageResponse
// @Failure 400 {object} helpers.ErrorResponse
// @Failure 404 {object} helpers.ErrorResponse "Receiver not found"
// @Router /api/messages [post]
func (h *SocialHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	u, ok := caller(w, r)
	if !ok {
		return
	}
	var in models.SendMessageInput
	if err := helpers.DecodeJSON(r, &in); err != nil {
		helpers.Fail(w, r, err)
		return
	}
	m, err := h.messages.Send(r.Context(), u, &in)
	if err != nil {
		helpers.Fail(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusCreated, messageResponse{Message: m})
}

// Conversations godoc
// @Summary Список переписок
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Success 200 {object} conversationsResponse
// @Router /api/messages [get]
func (h *SocialHandler) Conversations(w http.ResponseWriter, r *http.Request) {
	u, ok := caller(w, r)
	if !ok {
		return
	}
	list, err := h.messages.Conversations(r.Context(), u.ID)
	if err != nil {
		helpers.Fail(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, conversationsResponse{Conversations: list})
}

// Thread godoc
// @Summary Переписка с пользователем
// @Description Входящие сообщения помечаются прочитанными.
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param userId path int true "ID собеседника"
// @Success 200 {object} messagesResponse
// @Router /api/messages/{userId} [get]
func (h *SocialHandler) Thread(w http.ResponseWriter, r *http.Request) {
	u, ok := caller(w, r)
	if !ok {
		return
	}
	otherID, err := pathID(r, "userId")
	if err != nil {
		helpers.Fail(w, r, err)
		return
	}
	list, err := h.messages.Thread(r.Context(), u.ID, otherID)
	if err != nil {
		helpers.Fail(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, messagesResponse{Messages: list})
}

// Notifications godoc
// @Summary Уведомления
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param unread_only query bool false "Только непрочитанные"
// @Success 200 {object} notificationsResponse
// @Router /api/notifications [get]
func (h *SocialHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	u, ok := caller(w, r)
	if !ok {
		return
	}
	list, err := h.notifications.List(r.Context(), u.ID, queryBool(r, "unread_only"))
	if err != nil {
		helpers.Fail(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, notificationsResponse{Notifications: list})
}

// MarkRead godoc
// @Summary Отметить уведомление прочитанным
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID уведомления"
// @Success 200 {object} helpers.MessageResponse
// @Router /api/notifications/{id}/read [put]
func (h *SocialHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	u, ok := caller(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		helpers.Fail(w, r, err)
		return
	}
	if err := h.notifications.MarkRead(r.Context(), u.ID, id); err != nil {
		helpers.Fail(w, r, err)
		return
	}
	helpers.Message(w, http.StatusOK, "Notification marked as read")
}

// MarkAllRead godoc
// @Summary Отметить все уведомления прочитанными
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.MessageResponse
// @Router /api/notifications/read-all [put]
func (h *SocialHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	u, ok := caller(w, r)
	if !ok {
		return
	}
	if err := h.notifications.MarkAllRead(r.Context(), u.ID); err != nil {
		helpers.Fail(w, r, err)
		return
	}
	helpers.Message(w, http.StatusOK, "All notifications marked as read")
}
