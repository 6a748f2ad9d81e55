package handlers

import (
	"net/http"

	"mahattati/internal/models"
	"mahattati/internal/services"
	"mahattati/internal/utils/helpers"
)

type PaymentHandler struct {
	payments      *services.PaymentService
	subscriptions *services.SubscriptionService
}

func NewPaymentHandler(payments *services.PaymentService, subscriptions *services.SubscriptionService) *PaymentHandler {
	return &PaymentHandler{payments: payments, subscriptions: subscriptions}
}

type paymentsResponse struct {
	Payments []*models.Payment `json:"payments"`
}

type subscriptionResponse struct {
	Subscription *models.Subscription `json:"subscription"`
}

type subscriptionsResponse struct {
	Subscriptions []*models.Subscription `json:"subscriptions"`
}

// CreateIntent godoc
// @Summary Создать платёжное намерение Stripe
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param input body models.CreatePaymentIntentInput true "Сумма и тип платежа"
// @Success 200 {object} models.PaymentIntent
// @Failure 400 {object} helpers.ErrorResponse
// @Failure 502 {object} helpers.ErrorResponse "Шлюз недоступен"
// @Router /api/payments/create-intent [post]
func (h *PaymentHandler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	u, ok := caller(w, r)
	if !ok {
		return
	}
	var in models.CreatePaymentIntentInput
	if err := helpers.DecodeJSON(r, &in); err != nil {
		helpers.Fail(w, r, err)
		return
	}
	intent, err := h.payments.CreateIntent(r.Context(), u, &in)
	if err != nil {
		helpers.Fail(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, intent)
}

// Confirm godoc
// @Summary Подтвердить платёж
// @Description Сверяет статус намерения в Stripe и применяет продвижение объявления.
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param input body models.ConfirmPaymentInput true "Платёж и транзакция"
// @Success 200 {object} helpers.MessageResponse
// @Failure 400 {object} helpers.ErrorResponse "Payment not completed"
// @Failure 404 {object} helpers.ErrorResponse
// @Router /api/payments/confirm [post]
func (h *PaymentHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	u, ok := caller(w, r)
	if !ok {
		return
	}
	var in models.ConfirmPaymentInput
	if err := helpers.DecodeJSON(r, &in); err != nil {
		helpers.Fail(w, r, err)
		return
	}
	if err := h.payments.Confirm(r.Context(), u, &in); err != nil {
		helpers.Fail(w, r, err)
		return
	}
	helpers.Message(w, http.StatusOK, "Payment confirmed successfully")
}

// History godoc
// @Summary История платежей
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} paymentsResponse
// @Router /api/payments/history [get]
func (h *PaymentHandler) History(w http.ResponseWriter, r *http.Request) {
	u, ok := caller(w, r)
	if !ok {
		return
	}
	list, err := h.payments.History(r.Context(), u.ID)
	if err != nil {
		helpers.Fail(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, paymentsResponse{Payments: list})
}

// Mada godoc
// @Summary Оплата картой Mada
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param input body services.MadaPaymentInput true "Сумма и тип платежа"
// @Failure 400 {object} helpers.ErrorResponse
// @Failure 501 {object} helpers.ErrorResponse
// @Router /api/payments/mada [post]
func (h *PaymentHandler) Mada(w http.ResponseWriter, r *http.Request) {
	if _, ok := caller(w, r); !ok {
		return
	}
	var in services.MadaPaymentInput
	if err := helpers.DecodeJSON(r, &in); err != nil {
		helpers.Fail(w, r, err)
		return
	}
	if err := h.payments.Mada(r.Context(), &in); err != nil {
		helpers.Fail(w, r, err)
		return
	}
	helpers.Message(w, http.StatusOK, "Payment processed")
}

// SubscriptionStatus godoc
// @Summary Статус подписки
// @Tags subscriptions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.SubscriptionStatus
// @Router /api/subscriptions/status [get]
func (h *PaymentHandler) SubscriptionStatus(w http.ResponseWriter, r *http.Request) {
	u, ok := caller(w, r)
	if !ok {
		return
	}
	st, err := h.subscriptions.Status(r.Context(), u.ID)
	if err != nil {
		helpers.Fail(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, st)
}

// CreateSubscription godoc
// @Summary Оформить подписку по оплаченному платежу
// @Tags subscriptions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param input body models.CreateSubscriptionInput true "Платёж и тип подписки"
// @Success 201 {object} subscriptionResponse
// @Failure 400 {object} helpers.ErrorResponse
// @Router /api/subscriptions/create [post]
func (h *PaymentHandler) CreateSubscription(w http.ResponseWriter, r *http.Request) {
	u, ok := caller(w, r)
	if !ok {
		return
	}
	var in models.CreateSubscriptionInput
	if err := helpers.DecodeJSON(r, &in); err != nil {
		helpers.Fail(w, r, err)
		return
	}
	sub, err := h.subscriptions.Create(r.Context(), u, &in)
	if err != nil {
		helpers.Fail(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusCreated, subscriptionResponse{Subscription: sub})
}

// SubscriptionHistory godoc
// @Summary История подписок
// @Tags subscriptions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} subscriptionsResponse
// @Router /api/subscriptions/history [get]
func (h *PaymentHandler) SubscriptionHistory(w http.ResponseWriter, r *http.Request) {
	u, ok := caller(w, r)
	if !ok {
		return
	}
	list, err := h.subscriptions.History(r.Context(), u.ID)
	if err != nil {
		helpers.Fail(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, subscriptionsResponse{Subscriptions: list})
}
