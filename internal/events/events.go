// Package events ведёт журнал аудита: событие пишется в таблицу logs напрямую
// или через очередь RabbitMQ, если она настроена.
package events

import (
	"context"
	"time"

	"mahattati/internal/logger"
	"mahattati/internal/models"
	"mahattati/internal/reqctx"

	"go.uber.org/zap"
)

const (
	UserRegistered      = "user.registered"
	UserLogin           = "user.login"
	UserEmailVerified   = "user.email_verified"
	UserPasswordReset   = "user.password_reset"
	UserPasswordChanged = "user.password_changed"
	AdCreated           = "ad.created"
	AdUpdated           = "ad.updated"
	AdDeleted           = "ad.deleted"
	PaymentCreated      = "payment.created"
	PaymentCompleted    = "payment.completed"
	SubscriptionCreated = "subscription.created"
	AdminUserUpdated    = "admin.user_updated"
)

type Event struct {
	UserID      *int           `json:"user_id,omitempty"`
	Type        string         `json:"event_type"`
	Description string         `json:"description"`
	IP          string         `json:"ip_address,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	At          time.Time      `json:"at"`
}

func (e Event) toLog() *models.AuditLog {
	l := &models.AuditLog{
		UserID:      e.UserID,
		EventType:   e.Type,
		Description: e.Description,
		Metadata:    e.Metadata,
		CreatedAt:   e.At,
	}
	if e.IP != "" {
		ip := e.IP
		l.IPAddress = &ip
	}
	return l
}

// Recorder не возвращает ошибок: аудит не должен ломать основной запрос.
type Recorder interface {
	Record(ctx context.Context, ev Event)
}

type Sink interface {
	Create(ctx context.Context, l *models.AuditLog) error
}

// New заполняет время и IP клиента из контекста запроса.
func New(ctx context.Context, userID int, typ, description string, meta map[string]any) Event {
	ev := Event{Type: typ, Description: description, Metadata: meta, At: time.Now().UTC(), IP: reqctx.GetClientIP(ctx)}
	if userID > 0 {
		id := userID
		ev.UserID = &id
	}
	return ev
}

// DirectRecorder пишет событие в базу в том же процессе.
type DirectRecorder struct {
	sink Sink
}

func NewDirectRecorder(sink Sink) *DirectRecorder {
	return &DirectRecorder{sink: sink}
}

func (r *DirectRecorder) Record(ctx context.Context, ev Event) {
	ctx = context.WithoutCancel(ctx)
	if err := r.sink.Create(ctx, ev.toLog()); err != nil {
		logger.WithCtx(ctx).Warn("Не удалось записать событие аудита", zap.String("event", ev.Type), zap.Error(err))
	}
}

// Nop: для тестов и окружений без журнала.
type Nop struct{}

func (Nop) Record(context.Context, Event) {}
