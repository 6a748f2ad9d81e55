package repository

import (
	"context"
	"encoding/json"

	"mahattati/internal/logger"
	"mahattati/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type PaymentRepository struct {
	db *pgxpool.Pool
}

func NewPaymentRepository(db *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{db: db}
}

const paymentColumns = `id, user_id, amount, currency, payment_gateway, payment_type, status,
	transaction_id, metadata, created_at, updated_at`

func scanPayment(row pgx.Row) (*models.Payment, error) {
	var p models.Payment
	err := row.Scan(&p.ID, &p.UserID, &p.Amount, &p.Currency, &p.Gateway, &p.PaymentType, &p.Status,
		&p.TransactionID, &p.Metadata, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if p.Metadata == nil {
		p.Metadata = map[string]any{}
	}
	return &p, nil
}

func (r *PaymentRepository) Create(ctx context.Context, p *models.Payment) error {
	logger.Log.Info("Создание платежа (repo)", zap.Int("user_id", p.UserID), zap.String("type", p.PaymentType), zap.Float64("amount", p.Amount))
	meta := p.Metadata
	if meta == nil {
		meta = map[string]any{}
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	created, err := scanPayment(r.db.QueryRow(ctx, `
	INSERT INTO payments (user_id, amount, currency, payment_gateway, payment_type, status, metadata)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING `+paymentColumns,
		p.UserID, p.Amount, p.Currency, p.Gateway, p.PaymentType, p.Status, metaJSON))
	if err != nil {
		logger.Log.Error("Ошибка создания платежа (repo)", zap.Error(err))
		return wrapErr("create payment", err)
	}
	*p = *created
	return nil
}

func (r *PaymentRepository) GetByID(ctx context.Context, id int) (*models.Payment, error) {
	p, err := scanPayment(r.db.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id))
	return p, wrapErr("get payment", err)
}

func (r *PaymentRepository) SetTransaction(ctx context.Context, id int, transactionID string) error {
	_, err := r.db.Exec(ctx, `UPDATE payments SET transaction_id = $1, updated_at = NOW() WHERE id = $2`, transactionID, id)
	return wrapErr("set transaction", err)
}

func (r *PaymentRepository) SetStatus(ctx context.Context, id int, status string) error {
	logger.Log.Info("Смена статуса платежа (repo)", zap.Int("payment_id", id), zap.String("status", status))
	_, err := r.db.Exec(ctx, `UPDATE payments SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	return wrapErr("set payment status", err)
}

func (r *PaymentRepository) ListByUser(ctx context.Context, userID, limit int) ([]*models.Payment, error) {
	rows, err := r.db.Query(ctx, `SELECT `+paymentColumns+` FROM payments WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, wrapErr("list payments", err)
	}
	defer rows.Close()

	out := []*models.Payment{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, wrapErr("scan payment", err)
		}
		out = append(out, p)
	}
	return out, wrapErr("list payments", rows.Err())
}

type SubscriptionRepository struct {
	db *pgxpool.Pool
}

func NewSubscriptionRepository(db *pgxpool.Pool) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

const subscriptionColumns = `id, user_id, subscription_type, start_date, end_date, payment_status, payment_id, created_at`

func scanSubscription(row pgx.Row) (*models.Subscription, error) {
	var s models.Subscription
	if err := row.Scan(&s.ID, &s.UserID, &s.Type, &s.StartDate, &s.EndDate, &s.PaymentStatus, &s.PaymentID, &s.CreatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SubscriptionRepository) Create(ctx context.Context, s *models.Subscription) error {
	logger.Log.Info("Создание подписки (repo)", zap.Int("user_id", s.UserID), zap.String("type", s.Type))
	created, err := scanSubscription(r.db.QueryRow(ctx, `
	INSERT INTO subscriptions (user_id, subscription_type, start_date, end_date, payment_status, payment_id)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING `+subscriptionColumns,
		s.UserID, s.Type, s.StartDate, s.EndDate, s.PaymentStatus, s.PaymentID))
	if err != nil {
		return wrapErr("create subscription", err)
	}
	*s = *created
	return nil
}

// Active: последняя оплаченная подписка, которая ещё не закончилась.
func (r *SubscriptionRepository) Active(ctx context.Context, userID int) (*models.Subscription, error) {
	s, err := scanSubscription(r.db.QueryRow(ctx, `
	SELECT `+subscriptionColumns+` FROM subscriptions
	WHERE user_id = $1 AND payment_status = 'paid' AND end_date >= CURRENT_DATE
	ORDER BY end_date DESC
	LIMIT 1`, userID))
	return s, wrapErr("active subscription", err)
}

func (r *SubscriptionRepository) ExistsForPayment(ctx context.Context, paymentID int) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM subscriptions WHERE payment_id = $1)`, paymentID).Scan(&exists)
	return exists, wrapErr("subscription for payment", err)
}

func (r *SubscriptionRepository) History(ctx context.Context, userID int) ([]*models.Subscription, error) {
	rows, err := r.db.Query(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, wrapErr("subscription history", err)
	}
	defer rows.Close()

	out := []*models.Subscription{}
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, wrapErr("scan subscription", err)
		}
		out = append(out, s)
	}
	return out, wrapErr("subscription history", rows.Err())
}

// ExpireLapsed переводит закончившиеся подписки в expired.
func (r *SubscriptionRepository) ExpireLapsed(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `UPDATE subscriptions SET payment_status = 'expired' WHERE payment_status = 'paid' AND end_date < CURRENT_DATE`)
	if err != nil {
		return 0, wrapErr("expire subscriptions", err)
	}
	return tag.RowsAffected(), nil
}
