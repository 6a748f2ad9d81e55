package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mahattati/internal/apperrors"
	"mahattati/internal/events"
	"mahattati/internal/models"
	"mahattati/internal/repository/memstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGateway struct {
	created   []int64
	intents   map[string]*GatewayIntent
	status    string
	createErr error
}

func (g *fakeGateway) CreateIntent(_ context.Context, amountMinor int64, currency string, metadata map[string]string) (*GatewayIntent, error) {
	if g.createErr != nil {
		return nil, g.createErr
	}
	g.created = append(g.created, amountMinor)
	id := "pi_" + metadata["payment_id"]
	g.intents[id] = &GatewayIntent{ID: id, ClientSecret: id + "_secret", AmountMinor: amountMinor, Currency: currency, Metadata: metadata}
	return &GatewayIntent{ID: id, ClientSecret: id + "_secret", Status: "requires_payment_method"}, nil
}

func (g *fakeGateway) RetrieveIntent(_ context.Context, id string) (*GatewayIntent, error) {
	in, ok := g.intents[id]
	if !ok {
		return nil, &StripeError{Status: http.StatusNotFound, Type: "invalid_request_error", Message: "No such payment_intent"}
	}
	cp := *in
	cp.Status = g.status
	return &cp, nil
}

func intentID(paymentID int) string {
	return fmt.Sprintf("pi_%d", paymentID)
}

type paymentFixture struct {
	store   *memstore.Store
	gateway *fakeGateway
	ads     *AdService
	svc     *PaymentService
	subs    *SubscriptionService
}

func newPaymentFixture() *paymentFixture {
	store := memstore.New()
	gw := &fakeGateway{status: stripeIntentSucceeded, intents: map[string]*GatewayIntent{}}
	return &paymentFixture{
		store:   store,
		gateway: gw,
		ads:     NewAdService(store.Ads(), nil, events.Nop{}, 5<<20),
		svc:     NewPaymentService(store.Payments(), gw, store.Ads(), NewNotificationService(store.Notifications()), events.Nop{}),
		subs:    NewSubscriptionService(store.Subscriptions(), store.Payments(), events.Nop{}),
	}
}

func (f *paymentFixture) pay(t *testing.T, caller *models.User, in *models.CreatePaymentIntentInput) int {
	t.Helper()
	intent, err := f.svc.CreateIntent(context.Background(), caller, in)
	require.NoError(t, err)
	require.NoError(t, f.svc.Confirm(context.Background(), caller, &models.ConfirmPaymentInput{PaymentID: intent.PaymentID, TransactionID: intentID(intent.PaymentID)}))
	return intent.PaymentID
}

func TestCreateIntent(t *testing.T) {
	f := newPaymentFixture()

	intent, err := f.svc.CreateIntent(context.Background(), owner, &models.CreatePaymentIntentInput{Amount: 49.99, PaymentType: models.PaymentTypeAdPromotion})
	require.NoError(t, err)
	assert.Equal(t, intentID(intent.PaymentID)+"_secret", intent.ClientSecret)
	assert.Equal(t, []int64{4999}, f.gateway.created)

	p, err := f.store.Payments().GetByID(context.Background(), intent.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, p.Status)
	assert.Equal(t, "SAR", p.Currency)
	require.NotNil(t, p.TransactionID)
	assert.Equal(t, intentID(intent.PaymentID), *p.TransactionID)
}

func TestCreateIntent_GatewayFailureMarksFailed(t *testing.T) {
	f := newPaymentFixture()
	f.gateway.createErr = errors.New("stripe down")

	_, err := f.svc.CreateIntent(context.Background(), owner, &models.CreatePaymentIntentInput{Amount: 10, PaymentType: models.PaymentTypeAdUpload})
	ae, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadGateway, ae.Status)

	list, err := f.svc.History(context.Background(), owner.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.PaymentFailed, list[0].Status)
}

func TestCreateIntent_NotConfigured(t *testing.T) {
	store := memstore.New()
	svc := NewPaymentService(store.Payments(), NewStripeGateway(""), nil, nil, events.Nop{})

	_, err := svc.CreateIntent(context.Background(), owner, &models.CreatePaymentIntentInput{Amount: 10, PaymentType: models.PaymentTypeAdUpload})
	assert.True(t, errors.Is(err, ErrGatewayNotConfigured))
}

func TestCreateIntent_Validation(t *testing.T) {
	f := newPaymentFixture()

	for _, in := range []*models.CreatePaymentIntentInput{
		{Amount: 0, PaymentType: models.PaymentTypeAdUpload},
		{Amount: 10, PaymentType: "donation"},
		{Amount: 10, PaymentType: models.PaymentTypeAdUpload, Currency: "eur"},
	} {
		_, err := f.svc.CreateIntent(context.Background(), owner, in)
		assert.True(t, apperrors.Is(err, apperrors.KindValidation), "ожидалась ошибка валидации для %+v", in)
	}
	assert.Empty(t, f.gateway.created)
}

func TestConfirm_PromotesAd(t *testing.T) {
	f := newPaymentFixture()
	ad := createAd(t, f.ads, owner, "station", 24.7, 46.6, "")

	f.pay(t, owner, &models.CreatePaymentIntentInput{
		Amount:      100,
		PaymentType: models.PaymentTypeAdPromotion,
		Metadata:    map[string]any{"ad_id": float64(ad.ID), "promotion_type": "left_sidebar"},
	})

	stored, err := f.store.Ads().GetByID(context.Background(), ad.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsPromoted)
	require.NotNil(t, stored.PromotionType)
	assert.Equal(t, "left_sidebar", *stored.PromotionType)
	require.NotNil(t, stored.PromotionExpiresAt)
	assert.WithinDuration(t, time.Now().Add(DefaultPromotionPeriod), *stored.PromotionExpiresAt, time.Minute)

	notes, err := f.store.Notifications().List(context.Background(), owner.ID, true, 10)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotificationPayment, notes[0].Type)
}

func TestConfirm_ForeignAdNotPromoted(t *testing.T) {
	f := newPaymentFixture()
	ad := createAd(t, f.ads, rival, "station", 24.7, 46.6, "")

	f.pay(t, owner, &models.CreatePaymentIntentInput{
		Amount:      100,
		PaymentType: models.PaymentTypeAdPromotion,
		Metadata:    map[string]any{"ad_id": ad.ID},
	})

	stored, err := f.store.Ads().GetByID(context.Background(), ad.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsPromoted)
}

func TestConfirm_Rules(t *testing.T) {
	f := newPaymentFixture()
	intent, err := f.svc.CreateIntent(context.Background(), owner, &models.CreatePaymentIntentInput{Amount: 10, PaymentType: models.PaymentTypeAdUpload})
	require.NoError(t, err)
	tx := intentID(intent.PaymentID)

	err = f.svc.Confirm(context.Background(), rival, &models.ConfirmPaymentInput{PaymentID: intent.PaymentID, TransactionID: tx})
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound), "чужой платёж не виден")

	err = f.svc.Confirm(context.Background(), owner, &models.ConfirmPaymentInput{PaymentID: intent.PaymentID, TransactionID: "pi_other"})
	assert.Equal(t, "Payment not completed", errMessage(err))

	f.gateway.status = "requires_payment_method"
	err = f.svc.Confirm(context.Background(), owner, &models.ConfirmPaymentInput{PaymentID: intent.PaymentID, TransactionID: tx})
	assert.Equal(t, "Payment not completed", errMessage(err))

	f.gateway.status = stripeIntentSucceeded
	require.NoError(t, f.svc.Confirm(context.Background(), owner, &models.ConfirmPaymentInput{PaymentID: intent.PaymentID, TransactionID: tx}))
	// повторное подтверждение ничего не ломает
	require.NoError(t, f.svc.Confirm(context.Background(), owner, &models.ConfirmPaymentInput{PaymentID: intent.PaymentID, TransactionID: tx}))

	notes, err := f.store.Notifications().List(context.Background(), owner.ID, false, 10)
	require.NoError(t, err)
	assert.Len(t, notes, 1)
}

func TestConfirm_RequiresStoredTransaction(t *testing.T) {
	f := newPaymentFixture()
	p := &models.Payment{
		UserID:      owner.ID,
		Amount:      10,
		Currency:    "SAR",
		Gateway:     models.GatewayStripe,
		PaymentType: models.PaymentTypeAdUpload,
		Status:      models.PaymentPending,
	}
	require.NoError(t, f.store.Payments().Create(context.Background(), p))

	// succeeded intent другого платежа не подтверждает платёж без transaction_id
	other, err := f.svc.CreateIntent(context.Background(), owner, &models.CreatePaymentIntentInput{Amount: 10, PaymentType: models.PaymentTypeAdUpload})
	require.NoError(t, err)

	err = f.svc.Confirm(context.Background(), owner, &models.ConfirmPaymentInput{PaymentID: p.ID, TransactionID: intentID(other.PaymentID)})
	assert.Equal(t, "Payment not completed", errMessage(err))

	stored, err := f.store.Payments().GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, stored.Status)
}

func TestConfirm_IntentMustMatchPayment(t *testing.T) {
	cases := map[string]func(in *GatewayIntent){
		"чужой payment_id": func(in *GatewayIntent) { in.Metadata = map[string]string{"payment_id": "999"} },
		"другая сумма":     func(in *GatewayIntent) { in.AmountMinor = 100 },
		"другая валюта":    func(in *GatewayIntent) { in.Currency = "USD" },
	}
	for name, tamper := range cases {
		t.Run(name, func(t *testing.T) {
			f := newPaymentFixture()
			intent, err := f.svc.CreateIntent(context.Background(), owner, &models.CreatePaymentIntentInput{Amount: 10, PaymentType: models.PaymentTypeAdUpload})
			require.NoError(t, err)
			tx := intentID(intent.PaymentID)
			tamper(f.gateway.intents[tx])

			err = f.svc.Confirm(context.Background(), owner, &models.ConfirmPaymentInput{PaymentID: intent.PaymentID, TransactionID: tx})
			assert.Equal(t, "Payment not completed", errMessage(err))

			stored, err := f.store.Payments().GetByID(context.Background(), intent.PaymentID)
			require.NoError(t, err)
			assert.Equal(t, models.PaymentPending, stored.Status)
		})
	}
}

func TestMada_NotImplemented(t *testing.T) {
	f := newPaymentFixture()

	err := f.svc.Mada(context.Background(), &MadaPaymentInput{Amount: 10, PaymentType: models.PaymentTypeSubscription})
	assert.True(t, apperrors.Is(err, apperrors.KindNotImplemented))

	err = f.svc.Mada(context.Background(), &MadaPaymentInput{})
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))
}

func TestSubscription_Lifecycle(t *testing.T) {
	f := newPaymentFixture()

	status, err := f.subs.Status(context.Background(), subscriber.ID)
	require.NoError(t, err)
	assert.False(t, status.Active)
	assert.Equal(t, "No active subscription found", status.Message)

	pending, err := f.svc.CreateIntent(context.Background(), subscriber, &models.CreatePaymentIntentInput{Amount: 29, PaymentType: models.PaymentTypeSubscription})
	require.NoError(t, err)
	_, err = f.subs.Create(context.Background(), subscriber, &models.CreateSubscriptionInput{PaymentID: pending.PaymentID, Type: models.SubscriptionMonthly})
	assert.Equal(t, "Invalid or incomplete payment", errMessage(err), "неоплаченный платёж")

	paid := f.pay(t, subscriber, &models.CreatePaymentIntentInput{Amount: 29, PaymentType: models.PaymentTypeSubscription})
	sub, err := f.subs.Create(context.Background(), subscriber, &models.CreateSubscriptionInput{PaymentID: paid, Type: models.SubscriptionMonthly})
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionPaid, sub.PaymentStatus)
	assert.Equal(t, sub.StartDate.AddDate(0, 1, 0), sub.EndDate)

	_, err = f.subs.Create(context.Background(), subscriber, &models.CreateSubscriptionInput{PaymentID: paid, Type: models.SubscriptionMonthly})
	assert.Equal(t, "Invalid or incomplete payment", errMessage(err), "один платёж, одна подписка")

	_, err = f.subs.Create(context.Background(), owner, &models.CreateSubscriptionInput{PaymentID: paid, Type: models.SubscriptionMonthly})
	assert.Equal(t, "Invalid or incomplete payment", errMessage(err), "чужой платёж")

	status, err = f.subs.Status(context.Background(), subscriber.ID)
	require.NoError(t, err)
	assert.True(t, status.Active)
	require.NotNil(t, status.Subscription)
	assert.Equal(t, sub.ID, status.Subscription.ID)
}

func TestStripeGateway_HTTP(t *testing.T) {
	var gotAuth, gotAmount, gotCurrency, gotPaymentID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v1/payment_intents":
			_ = r.ParseForm()
			gotAmount, gotCurrency = r.PostForm.Get("amount"), r.PostForm.Get("currency")
			gotPaymentID = r.PostForm.Get("metadata[payment_id]")
			_, _ = w.Write([]byte(`{"id":"pi_1","object":"payment_intent","client_secret":"pi_1_secret","status":"requires_payment_method","amount":1050,"currency":"sar"}`))
		case r.Method == http.MethodGet && r.URL.Path == "/v1/payment_intents/pi_1":
			_, _ = w.Write([]byte(`{"id":"pi_1","object":"payment_intent","status":"succeeded","amount":1050,"currency":"sar","metadata":{"payment_id":"1"}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"No such payment_intent"}}`))
		}
	}))
	defer srv.Close()

	gw := newStripeGateway("sk_test", srv.URL)

	intent, err := gw.CreateIntent(context.Background(), 1050, "SAR", map[string]string{"payment_id": "1"})
	require.NoError(t, err)
	assert.Equal(t, "pi_1_secret", intent.ClientSecret)
	assert.Equal(t, "Bearer sk_test", gotAuth)
	assert.Equal(t, "1050", gotAmount)
	assert.Equal(t, "sar", gotCurrency)
	assert.Equal(t, "1", gotPaymentID)

	got, err := gw.RetrieveIntent(context.Background(), "pi_1")
	require.NoError(t, err)
	assert.Equal(t, "succeeded", got.Status)
	assert.EqualValues(t, 1050, got.AmountMinor)
	assert.Equal(t, "SAR", got.Currency)
	assert.Equal(t, "1", got.Metadata["payment_id"])

	_, err = gw.RetrieveIntent(context.Background(), "pi_missing")
	var se *StripeError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.Status)
	assert.Equal(t, "No such payment_intent", se.Message)
}

func TestCleanup_PromotionsAndSubscriptions(t *testing.T) {
	f := newPaymentFixture()
	ctx := context.Background()

	ad := createAd(t, f.ads, owner, "station", 24.7, 46.6, "")
	ok, err := f.store.Ads().Promote(ctx, ad.ID, owner.ID, models.Promotion{Type: "top_banner", ExpiresAt: time.Now().Add(time.Hour)})
	require.NoError(t, err)
	require.True(t, ok)

	paid := f.pay(t, subscriber, &models.CreatePaymentIntentInput{Amount: 29, PaymentType: models.PaymentTypeSubscription})
	_, err = f.subs.Create(ctx, subscriber, &models.CreateSubscriptionInput{PaymentID: paid, Type: models.SubscriptionMonthly})
	require.NoError(t, err)

	n, err := f.ads.CleanupExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	n, err = f.subs.ExpireLapsed(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	f.store.SetClock(func() time.Time { return time.Now().AddDate(0, 2, 0) })

	n, err = f.ads.CleanupExpired(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	stored, err := f.store.Ads().GetByID(ctx, ad.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsPromoted)
	assert.Nil(t, stored.PromotionExpiresAt)

	n, err = f.subs.ExpireLapsed(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}
