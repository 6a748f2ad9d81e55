package models

import "time"

type Comment struct {
	ID           int       `json:"id"`
	AdID         int       `json:"ad_id"`
	UserID       int       `json:"user_id"`
	ParentID     *int      `json:"parent_id"`
	Content      string    `json:"content"`
	UserName     string    `json:"user_name,omitempty"`
	ProfileImage *string   `json:"profile_image,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type CreateCommentInput struct {
	AdID     int    `json:"ad_id" validate:"required,gt=0"`
	Content  string `json:"content" validate:"required,max=2000"`
	ParentID *int   `json:"parent_id" validate:"omitempty,gt=0"`
}

type Message struct {
	ID         int       `json:"id"`
	SenderID   int       `json:"sender_id"`
	ReceiverID int       `json:"receiver_id"`
	AdID       *int      `json:"ad_id"`
	Content    string    `json:"content"`
	IsRead     bool      `json:"is_read"`
	CreatedAt  time.Time `json:"created_at"`
}

type SendMessageInput struct {
	ReceiverID int    `json:"receiver_id" validate:"required,gt=0"`
	Content    string `json:"content" validate:"required,max=5000"`
	AdID       *int   `json:"ad_id" validate:"omitempty,gt=0"`
}

// Conversation: последняя переписка с собеседником.
type Conversation struct {
	OtherUserID     int       `json:"other_user_id"`
	OtherUserName   string    `json:"other_user_name"`
	OtherUserImage  *string   `json:"other_user_image"`
	LastMessage     string    `json:"last_message"`
	LastMessageTime time.Time `json:"last_message_time"`
	UnreadCount     int       `json:"unread_count"`
}

type NotificationType string

const (
	NotificationComment NotificationType = "comment"
	NotificationMessage NotificationType = "message"
	NotificationPayment NotificationType = "payment"
	NotificationSystem  NotificationType = "system"
)

type Notification struct {
	ID        int              `json:"id"`
	UserID    int              `json:"user_id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	TitleAr   string           `json:"title_ar"`
	Message   string           `json:"message"`
	MessageAr string           `json:"message_ar"`
	LinkURL   *string          `json:"link_url"`
	IsRead    bool             `json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`
}
