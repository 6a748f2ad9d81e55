package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mahattati/internal/apperrors"
	"mahattati/internal/logger"
	"mahattati/internal/models"
	"mahattati/internal/repository"
	"mahattati/internal/utils/helpers"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
)

const MaxNotifications = 50

type CommentRepo interface {
	Create(ctx context.Context, c *models.Comment) error
	ListByAd(ctx context.Context, adID int) ([]*models.Comment, error)
}

type MessageRepo interface {
	Create(ctx context.Context, m *models.Message) error
	Conversations(ctx context.Context, userID int) ([]*models.Conversation, error)
	Thread(ctx context.Context, userID, otherID int) ([]*models.Message, error)
	MarkThreadRead(ctx context.Context, userID, otherID int) error
}

type NotificationRepo interface {
	Create(ctx context.Context, n *models.Notification) error
	List(ctx context.Context, userID int, unreadOnly bool, limit int) ([]*models.Notification, error)
	MarkRead(ctx context.Context, id, userID int) (bool, error)
	MarkAllRead(ctx context.Context, userID int) (int64, error)
}

// AdVisibility: проверка, что объявление видно пользователю (AdService.Visible).
type AdVisibility interface {
	Visible(ctx context.Context, caller *models.User, id int) (*models.Ad, error)
}

// strictText убирает любую разметку из пользовательского текста.
var strictText = bluemonday.StrictPolicy()

func cleanText(s string) string {
	return strings.TrimSpace(strictText.Sanitize(s))
}

type NotificationService struct {
	repo NotificationRepo
}

func NewNotificationService(repo NotificationRepo) *NotificationService {
	return &NotificationService{repo: repo}
}

// Notify создаёт уведомление. Ошибка только логируется: уведомление вторично к основному действию.
func (s *NotificationService) Notify(ctx context.Context, n *models.Notification) {
	if err := s.repo.Create(context.WithoutCancel(ctx), n); err != nil {
		logger.WithCtx(ctx).Warn("Не удалось создать уведомление", zap.Int("user_id", n.UserID), zap.String("type", string(n.Type)), zap.Error(err))
	}
}

func (s *NotificationService) List(ctx context.Context, userID int, unreadOnly bool) ([]*models.Notification, error) {
	list, err := s.repo.List(ctx, userID, unreadOnly, MaxNotifications)
	if err != nil {
		return nil, apperrors.Upstream("Server error", err)
	}
	return list, nil
}

// MarkRead не сообщает, чьё это уведомление: чужое просто не меняется.
func (s *NotificationService) MarkRead(ctx context.Context, userID, id int) error {
	if _, err := s.repo.MarkRead(ctx, id, userID); err != nil {
		return apperrors.Upstream("Server error", err)
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID int) error {
	n, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return apperrors.Upstream("Server error", err)
	}
	logger.WithCtx(ctx).Debug("Уведомления прочитаны", zap.Int64("count", n))
	return nil
}

type CommentService struct {
	repo   CommentRepo
	ads    AdVisibility
	notify *NotificationService
}

func NewCommentService(repo CommentRepo, ads AdVisibility, notify *NotificationService) *CommentService {
	return &CommentService{repo: repo, ads: ads, notify: notify}
}

func (s *CommentService) Create(ctx context.Context, caller *models.User, in *models.CreateCommentInput) (*models.Comment, error) {
	in.Content = cleanText(in.Content)
	if err := helpers.Validate(in); err != nil {
		return nil, err
	}
	ad, err := s.ads.Visible(ctx, caller, in.AdID)
	if err != nil {
		return nil, err
	}

	c := &models.Comment{
		AdID:         ad.ID,
		UserID:       caller.ID,
		ParentID:     in.ParentID,
		Content:      in.Content,
		UserName:     caller.Name,
		ProfileImage: caller.ProfileImage,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("Ad not found")
		}
		return nil, apperrors.Upstream("Server error", err)
	}

	if ad.UserID != caller.ID && s.notify != nil {
		link := fmt.Sprintf("/ads/%d", ad.ID)
		s.notify.Notify(ctx, &models.Notification{
			UserID:    ad.UserID,
			Type:      models.NotificationComment,
			Title:     "New Comment",
			TitleAr:   "تعليق جديد",
			Message:   caller.Name + " commented on your ad",
			MessageAr: "علق " + caller.Name + " على إعلانك",
			LinkURL:   &link,
		})
	}
	return c, nil
}

func (s *CommentService) ListByAd(ctx context.Context, caller *models.User, adID int) ([]*models.Comment, error) {
	if _, err := s.ads.Visible(ctx, caller, adID); err != nil {
		return nil, err
	}
	list, err := s.repo.ListByAd(ctx, adID)
	if err != nil {
		return nil, apperrors.Upstream("Server error", err)
	}
	return list, nil
}

type MessageService struct {
	repo   MessageRepo
	users  UserRepo
	notify *NotificationService
}

func NewMessageService(repo MessageRepo, users UserRepo, notify *NotificationService) *MessageService {
	return &MessageService{repo: repo, users: users, notify: notify}
}

func (s *MessageService) Send(ctx context.Context, caller *models.User, in *models.SendMessageInput) (*models.Message, error) {
	in.Content = cleanText(in.Content)
	if err := helpers.Validate(in); err != nil {
		return nil, err
	}
	if in.ReceiverID == caller.ID {
		return nil, apperrors.Validation("Validation failed", apperrors.Field("receiver_id", "cannot send a message to yourself"))
	}

	if _, err := s.users.GetByID(ctx, in.ReceiverID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("Receiver not found")
		}
		return nil, apperrors.Upstream("Server error", err)
	}

	m := &models.Message{SenderID: caller.ID, ReceiverID: in.ReceiverID, AdID: in.AdID, Content: in.Content}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, apperrors.Upstream("Server error", err)
	}

	if s.notify != nil {
		link := fmt.Sprintf("/messages/%d", m.ID)
		s.notify.Notify(ctx, &models.Notification{
			UserID:    in.ReceiverID,
			Type:      models.NotificationMessage,
			Title:     "New Message",
			TitleAr:   "رسالة جديدة",
			Message:   "You have a new message from " + caller.Name,
			MessageAr: "لديك رسالة جديدة من " + caller.Name,
			LinkURL:   &link,
		})
	}
	return m, nil
}

func (s *MessageService) Conversations(ctx context.Context, userID int) ([]*models.Conversation, error) {
	list, err := s.repo.Conversations(ctx, userID)
	if err != nil {
		return nil, apperrors.Upstream("Server error", err)
	}
	return list, nil
}

// Thread возвращает переписку и отмечает входящие сообщения прочитанными.
func (s *MessageService) Thread(ctx context.Context, userID, otherID int) ([]*models.Message, error) {
	list, err := s.repo.Thread(ctx, userID, otherID)
	if err != nil {
		return nil, apperrors.Upstream("Server error", err)
	}
	if err := s.repo.MarkThreadRead(ctx, userID, otherID); err != nil {
		logger.WithCtx(ctx).Warn("Не удалось отметить сообщения прочитанными", zap.Error(err))
	}
	return list, nil
}
