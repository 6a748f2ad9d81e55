package repository

import (
	"context"

	"mahattati/internal/logger"
	"mahattati/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type CommentRepository struct {
	db *pgxpool.Pool
}

func NewCommentRepository(db *pgxpool.Pool) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) Create(ctx context.Context, c *models.Comment) error {
	logger.Log.Info("Создание комментария (repo)", zap.Int("ad_id", c.AdID), zap.Int("user_id", c.UserID))
	err := r.db.QueryRow(ctx, `
	INSERT INTO comments (ad_id, user_id, parent_id, content)
	VALUES ($1, $2, $3, $4)
	RETURNING id, created_at`, c.AdID, c.UserID, c.ParentID, c.Content).Scan(&c.ID, &c.CreatedAt)
	return wrapErr("create comment", err)
}

func (r *CommentRepository) ListByAd(ctx context.Context, adID int) ([]*models.Comment, error) {
	rows, err := r.db.Query(ctx, `
	SELECT c.id, c.ad_id, c.user_id, c.parent_id, c.content, c.created_at, u.name, u.profile_image
	FROM comments c
	JOIN users u ON u.id = c.user_id
	WHERE c.ad_id = $1
	ORDER BY c.created_at ASC, c.id ASC`, adID)
	if err != nil {
		logger.Log.Error("Ошибка получения комментариев (repo)", zap.Error(err))
		return nil, wrapErr("list comments", err)
	}
	defer rows.Close()

	out := []*models.Comment{}
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.AdID, &c.UserID, &c.ParentID, &c.Content, &c.CreatedAt, &c.UserName, &c.ProfileImage); err != nil {
			return nil, wrapErr("scan comment", err)
		}
		out = append(out, &c)
	}
	return out, wrapErr("list comments", rows.Err())
}

type MessageRepository struct {
	db *pgxpool.Pool
}

func NewMessageRepository(db *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(ctx context.Context, m *models.Message) error {
	logger.Log.Info("Отправка сообщения (repo)", zap.Int("sender_id", m.SenderID), zap.Int("receiver_id", m.ReceiverID))
	err := r.db.QueryRow(ctx, `
	INSERT INTO messages (sender_id, receiver_id, ad_id, content)
	VALUES ($1, $2, $3, $4)
	RETURNING id, is_read, created_at`, m.SenderID, m.ReceiverID, m.AdID, m.Content).Scan(&m.ID, &m.IsRead, &m.CreatedAt)
	return wrapErr("create message", err)
}

// Conversations: по одной строке на собеседника, новые сверху.
func (r *MessageRepository) Conversations(ctx context.Context, userID int) ([]*models.Conversation, error) {
	rows, err := r.db.Query(ctx, `
	WITH thread AS (
		SELECT CASE WHEN sender_id = $1 THEN receiver_id ELSE sender_id END AS other_id,
			content, created_at, receiver_id, is_read
		FROM messages
		WHERE sender_id = $1 OR receiver_id = $1
	), last AS (
		SELECT DISTINCT ON (other_id) other_id, content, created_at
		FROM thread
		ORDER BY other_id, created_at DESC
	)
	SELECT l.other_id, u.name, u.profile_image, l.content, l.created_at,
		(SELECT COUNT(*) FROM thread t WHERE t.other_id = l.other_id AND t.receiver_id = $1 AND NOT t.is_read)
	FROM last l
	JOIN users u ON u.id = l.other_id
	ORDER BY l.created_at DESC`, userID)
	if err != nil {
		logger.Log.Error("Ошибка получения диалогов (repo)", zap.Error(err))
		return nil, wrapErr("list conversations", err)
	}
	defer rows.Close()

	out := []*models.Conversation{}
	for rows.Next() {
		var c models.Conversation
		if err := rows.Scan(&c.OtherUserID, &c.OtherUserName, &c.OtherUserImage, &c.LastMessage, &c.LastMessageTime, &c.UnreadCount); err != nil {
			return nil, wrapErr("scan conversation", err)
		}
		out = append(out, &c)
	}
	return out, wrapErr("list conversations", rows.Err())
}

func (r *MessageRepository) Thread(ctx context.Context, userID, otherID int) ([]*models.Message, error) {
	rows, err := r.db.Query(ctx, `
	SELECT id, sender_id, receiver_id, ad_id, content, is_read, created_at
	FROM messages
	WHERE (sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1)
	ORDER BY created_at ASC, id ASC`, userID, otherID)
	if err != nil {
		return nil, wrapErr("thread", err)
	}
	defer rows.Close()

	out := []*models.Message{}
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.AdID, &m.Content, &m.IsRead, &m.CreatedAt); err != nil {
			return nil, wrapErr("scan message", err)
		}
		out = append(out, &m)
	}
	return out, wrapErr("thread", rows.Err())
}

// MarkThreadRead помечает входящие от otherID прочитанными.
func (r *MessageRepository) MarkThreadRead(ctx context.Context, userID, otherID int) error {
	_, err := r.db.Exec(ctx, `
	UPDATE messages SET is_read = TRUE
	WHERE receiver_id = $1 AND sender_id = $2 AND NOT is_read`, userID, otherID)
	return wrapErr("mark thread read", err)
}

type NotificationRepository struct {
	db *pgxpool.Pool
}

func NewNotificationRepository(db *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	err := r.db.QueryRow(ctx, `
	INSERT INTO notifications (user_id, type, title, title_ar, message, message_ar, link_url)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING id, is_read, created_at`,
		n.UserID, n.Type, n.Title, n.TitleAr, n.Message, n.MessageAr, n.LinkURL,
	).Scan(&n.ID, &n.IsRead, &n.CreatedAt)
	if err != nil {
		logger.Log.Error("Ошибка создания уведомления (repo)", zap.Error(err), zap.Int("user_id", n.UserID))
	}
	return wrapErr("create notification", err)
}

func (r *NotificationRepository) List(ctx context.Context, userID int, unreadOnly bool, limit int) ([]*models.Notification, error) {
	rows, err := r.db.Query(ctx, `
	SELECT id, user_id, type, title, title_ar, message, message_ar, link_url, is_read, created_at
	FROM notifications
	WHERE user_id = $1 AND ($2 = FALSE OR is_read = FALSE)
	ORDER BY created_at DESC, id DESC
	LIMIT $3`, userID, unreadOnly, limit)
	if err != nil {
		return nil, wrapErr("list notifications", err)
	}
	defer rows.Close()

	out := []*models.Notification{}
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.TitleAr, &n.Message, &n.MessageAr, &n.LinkURL, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, wrapErr("scan notification", err)
		}
		out = append(out, &n)
	}
	return out, wrapErr("list notifications", rows.Err())
}

// MarkRead: false, если уведомления нет или оно чужое.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID int) (bool, error) {
	tag, err := r.db.Exec(ctx, `UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, wrapErr("mark notification read", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID int) (int64, error) {
	tag, err := r.db.Exec(ctx, `UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND NOT is_read`, userID)
	if err != nil {
		return 0, wrapErr("mark all read", err)
	}
	return tag.RowsAffected(), nil
}
