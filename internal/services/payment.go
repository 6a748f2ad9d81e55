package services

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"mahattati/internal/apperrors"
	"mahattati/internal/events"
	"mahattati/internal/logger"
	"mahattati/internal/models"
	"mahattati/internal/repository"
	"mahattati/internal/utils/helpers"

	"go.uber.org/zap"
)

const (
	MaxPaymentHistory      = 50
	DefaultPromotionType   = "top_banner"
	DefaultPromotionPeriod = 30 * 24 * time.Hour
	stripeIntentSucceeded  = "succeeded"
	defaultPaymentCurrency = "SAR"
)

type PaymentRepo interface {
	Create(ctx context.Context, p *models.Payment) error
	GetByID(ctx context.Context, id int) (*models.Payment, error)
	SetTransaction(ctx context.Context, id int, transactionID string) error
	SetStatus(ctx context.Context, id int, status string) error
	ListByUser(ctx context.Context, userID, limit int) ([]*models.Payment, error)
}

type SubscriptionRepo interface {
	Create(ctx context.Context, s *models.Subscription) error
	Active(ctx context.Context, userID int) (*models.Subscription, error)
	ExistsForPayment(ctx context.Context, paymentID int) (bool, error)
	History(ctx context.Context, userID int) ([]*models.Subscription, error)
	ExpireLapsed(ctx context.Context) (int64, error)
}

type AdPromoter interface {
	Promote(ctx context.Context, adID, userID int, p models.Promotion) (bool, error)
}

type PaymentService struct {
	repo    PaymentRepo
	gateway PaymentGateway
	ads     AdPromoter
	notify  *NotificationService
	audit   events.Recorder
	now     func() time.Time
}

func NewPaymentService(repo PaymentRepo, gateway PaymentGateway, ads AdPromoter, notify *NotificationService, audit events.Recorder) *PaymentService {
	return &PaymentService{repo: repo, gateway: gateway, ads: ads, notify: notify, audit: audit, now: time.Now}
}

func (s *PaymentService) gatewayReady() bool {
	if s.gateway == nil {
		return false
	}
	if sg, ok := s.gateway.(*StripeGateway); ok {
		return sg.Configured()
	}
	return true
}

// CreateIntent заводит pending-платёж и payment intent в Stripe.
func (s *PaymentService) CreateIntent(ctx context.Context, caller *models.User, in *models.CreatePaymentIntentInput) (*models.PaymentIntent, error) {
	in.Currency = strings.ToUpper(strings.TrimSpace(in.Currency))
	if in.Currency == "" {
		in.Currency = defaultPaymentCurrency
	}
	if err := helpers.Validate(in); err != nil {
		return nil, err
	}
	if !s.gatewayReady() {
		return nil, apperrors.BadGateway("Payment gateway is not configured", ErrGatewayNotConfigured)
	}

	p := &models.Payment{
		UserID:      caller.ID,
		Amount:      in.Amount,
		Currency:    in.Currency,
		Gateway:     models.GatewayStripe,
		PaymentType: in.PaymentType,
		Status:      models.PaymentPending,
		Metadata:    in.Metadata,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, apperrors.Upstream("Server error creating payment", err)
	}

	intent, err := s.gateway.CreateIntent(ctx, amountMinor(in.Amount), in.Currency, map[string]string{
		"payment_id":   strconv.Itoa(p.ID),
		"user_id":      strconv.Itoa(caller.ID),
		"payment_type": in.PaymentType,
	})
	if err != nil {
		logger.WithCtx(ctx).Error("Stripe: не удалось создать payment intent", zap.Int("payment_id", p.ID), zap.Error(err))
		if serr := s.repo.SetStatus(context.WithoutCancel(ctx), p.ID, models.PaymentFailed); serr != nil {
			logger.WithCtx(ctx).Error("Не удалось пометить платёж как failed", zap.Error(serr))
		}
		return nil, apperrors.BadGateway("Server error creating payment", err)
	}
	if err := s.repo.SetTransaction(ctx, p.ID, intent.ID); err != nil {
		return nil, apperrors.Upstream("Server error creating payment", err)
	}

	s.audit.Record(ctx, events.New(ctx, caller.ID, events.PaymentCreated, "Payment intent created",
		map[string]any{"payment_id": p.ID, "amount": p.Amount, "currency": p.Currency, "payment_type": p.PaymentType}))
	return &models.PaymentIntent{ClientSecret: intent.ClientSecret, PaymentID: p.ID}, nil
}

// Confirm сверяет статус в Stripe и применяет эффект платежа.
func (s *PaymentService) Confirm(ctx context.Context, caller *models.User, in *models.ConfirmPaymentInput) error {
	in.TransactionID = strings.TrimSpace(in.TransactionID)
	if err := helpers.Validate(in); err != nil {
		return err
	}

	p, err := s.repo.GetByID(ctx, in.PaymentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("Payment not found")
		}
		return apperrors.Upstream("Server error confirming payment", err)
	}
	if p.UserID != caller.ID {
		return apperrors.NotFound("Payment not found")
	}
	if p.Status == models.PaymentCompleted {
		return nil
	}
	// intent заводится вместе с платежом; без него подтверждать нечего
	if p.TransactionID == nil || *p.TransactionID != in.TransactionID {
		return apperrors.BadRequest("Payment not completed", nil)
	}

	if p.Gateway == models.GatewayStripe {
		if !s.gatewayReady() {
			return apperrors.BadGateway("Payment gateway is not configured", ErrGatewayNotConfigured)
		}
		intent, err := s.gateway.RetrieveIntent(ctx, in.TransactionID)
		if err != nil {
			return apperrors.BadGateway("Server error confirming payment", err)
		}
		if intent.Status != stripeIntentSucceeded {
			return apperrors.BadRequest("Payment not completed", nil)
		}
		if !intentMatches(intent, p) {
			logger.WithCtx(ctx).Warn("Payment intent не соответствует платежу",
				zap.Int("payment_id", p.ID), zap.String("intent_id", intent.ID),
				zap.String("intent_payment_id", intent.Metadata["payment_id"]), zap.Int64("intent_amount", intent.AmountMinor))
			return apperrors.BadRequest("Payment not completed", nil)
		}
	}

	if err := s.repo.SetStatus(ctx, p.ID, models.PaymentCompleted); err != nil {
		return apperrors.Upstream("Server error confirming payment", err)
	}

	if p.PaymentType == models.PaymentTypeAdPromotion {
		s.applyPromotion(ctx, caller.ID, p.Metadata)
	}

	if s.notify != nil {
		s.notify.Notify(ctx, &models.Notification{
			UserID:    caller.ID,
			Type:      models.NotificationPayment,
			Title:     "Payment Confirmed",
			TitleAr:   "تم تأكيد الدفع",
			Message:   "Your payment of " + strconv.FormatFloat(p.Amount, 'f', 2, 64) + " " + p.Currency + " was confirmed",
			MessageAr: "تم تأكيد دفعتك بمبلغ " + strconv.FormatFloat(p.Amount, 'f', 2, 64) + " " + p.Currency,
		})
	}
	s.audit.Record(ctx, events.New(ctx, caller.ID, events.PaymentCompleted, "Payment completed",
		map[string]any{"payment_id": p.ID, "payment_type": p.PaymentType}))
	return nil
}

func amountMinor(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// intentMatches: intent создан именно для этого платежа, на ту же сумму и в той же валюте.
func intentMatches(intent *GatewayIntent, p *models.Payment) bool {
	return intent.Metadata["payment_id"] == strconv.Itoa(p.ID) &&
		intent.AmountMinor == amountMinor(p.Amount) &&
		strings.EqualFold(intent.Currency, p.Currency)
}

func (s *PaymentService) applyPromotion(ctx context.Context, userID int, meta map[string]any) {
	adID, ok := metaInt(meta["ad_id"])
	if !ok || s.ads == nil {
		return
	}
	promo := models.Promotion{Type: DefaultPromotionType, ExpiresAt: s.now().Add(DefaultPromotionPeriod)}
	if t, ok := meta["promotion_type"].(string); ok && t != "" {
		promo.Type = t
	}
	if raw, ok := meta["expires_at"].(string); ok && raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			promo.ExpiresAt = t
		}
	}

	promoted, err := s.ads.Promote(ctx, adID, userID, promo)
	if err != nil {
		logger.WithCtx(ctx).Error("Не удалось продвинуть объявление", zap.Int("ad_id", adID), zap.Error(err))
		return
	}
	if !promoted {
		logger.WithCtx(ctx).Warn("Продвижение: объявление не найдено или чужое", zap.Int("ad_id", adID))
	}
}

// metaInt: числа из jsonb приходят как float64, из запроса иногда строкой.
func metaInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), n > 0 && n == math.Trunc(n)
	case int:
		return n, n > 0
	case int64:
		return int(n), n > 0
	case string:
		i, err := strconv.Atoi(n)
		return i, err == nil && i > 0
	}
	return 0, false
}

func (s *PaymentService) History(ctx context.Context, userID int) ([]*models.Payment, error) {
	list, err := s.repo.ListByUser(ctx, userID, MaxPaymentHistory)
	if err != nil {
		return nil, apperrors.Upstream("Server error", err)
	}
	return list, nil
}

type MadaPaymentInput struct {
	Amount      float64 `json:"amount" validate:"required,gte=0.01"`
	PaymentType string  `json:"payment_type" validate:"required,oneof=ad_promotion subscription ad_upload"`
}

// Mada: интеграция ещё не сделана, вход валидируем, чтобы контракт был стабильным.
func (s *PaymentService) Mada(_ context.Context, in *MadaPaymentInput) error {
	if err := helpers.Validate(in); err != nil {
		return err
	}
	return apperrors.NotImplemented("Mada integration pending")
}

type SubscriptionService struct {
	repo     SubscriptionRepo
	payments PaymentRepo
	audit    events.Recorder
	now      func() time.Time
}

func NewSubscriptionService(repo SubscriptionRepo, payments PaymentRepo, audit events.Recorder) *SubscriptionService {
	return &SubscriptionService{repo: repo, payments: payments, audit: audit, now: time.Now}
}

func (s *SubscriptionService) Status(ctx context.Context, userID int) (*models.SubscriptionStatus, error) {
	sub, err := s.repo.Active(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &models.SubscriptionStatus{Active: false, Message: "No active subscription found"}, nil
		}
		return nil, apperrors.Upstream("Server error", err)
	}
	return &models.SubscriptionStatus{Active: true, Subscription: sub}, nil
}

// Create оформляет подписку по завершённому платежу типа subscription. Один платёж: одна подписка.
func (s *SubscriptionService) Create(ctx context.Context, caller *models.User, in *models.CreateSubscriptionInput) (*models.Subscription, error) {
	if err := helpers.Validate(in); err != nil {
		return nil, err
	}
	const invalid = "Invalid or incomplete payment"

	p, err := s.payments.GetByID(ctx, in.PaymentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.BadRequest(invalid, nil)
		}
		return nil, apperrors.Upstream("Server error", err)
	}
	if p.UserID != caller.ID || p.PaymentType != models.PaymentTypeSubscription || p.Status != models.PaymentCompleted {
		return nil, apperrors.BadRequest(invalid, nil)
	}
	used, err := s.repo.ExistsForPayment(ctx, p.ID)
	if err != nil {
		return nil, apperrors.Upstream("Server error", err)
	}
	if used {
		return nil, apperrors.BadRequest(invalid, nil)
	}

	start := s.now().UTC()
	paymentID := p.ID
	sub := &models.Subscription{
		UserID:        caller.ID,
		Type:          in.Type,
		StartDate:     start,
		EndDate:       start.AddDate(0, 1, 0),
		PaymentStatus: models.SubscriptionPaid,
		PaymentID:     &paymentID,
	}
	if err := s.repo.Create(ctx, sub); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.BadRequest(invalid, err)
		}
		return nil, apperrors.Upstream("Server error", err)
	}

	s.audit.Record(ctx, events.New(ctx, caller.ID, events.SubscriptionCreated, "Subscription created",
		map[string]any{"subscription_id": sub.ID, "payment_id": paymentID}))
	logger.WithCtx(ctx).Info("Подписка оформлена (service)", zap.Int("user_id", caller.ID), zap.Time("end_date", sub.EndDate))
	return sub, nil
}

func (s *SubscriptionService) History(ctx context.Context, userID int) ([]*models.Subscription, error) {
	list, err := s.repo.History(ctx, userID)
	if err != nil {
		return nil, apperrors.Upstream("Server error", err)
	}
	return list, nil
}

func (s *SubscriptionService) ExpireLapsed(ctx context.Context) (int64, error) {
	n, err := s.repo.ExpireLapsed(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		logger.Log.Info("Истёкшие подписки закрыты", zap.Int64("count", n))
	}
	return n, nil
}
