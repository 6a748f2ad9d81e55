package app

import (
	"context"
	"testing"
	"time"

	"mahattati/internal/events"
	"mahattati/internal/logger"
	"mahattati/internal/models"
	"mahattati/internal/repository/memstore"
	"mahattati/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestStartCleaner_LogsCountOnce(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	prev := logger.Log
	logger.Log = zap.New(core)
	t.Cleanup(func() { logger.Log = prev })

	ctx := context.Background()
	store := memstore.New()
	ad := &models.Ad{UserID: 1, Title: "station"}
	require.NoError(t, store.Ads().Create(ctx, ad))
	ok, err := store.Ads().Promote(ctx, ad.ID, 1, models.Promotion{Type: "top_banner", ExpiresAt: time.Now().Add(-time.Hour)})
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, store.Subscriptions().Create(ctx, &models.Subscription{
		UserID:        2,
		Type:          models.SubscriptionMonthly,
		StartDate:     time.Now().AddDate(0, -2, 0),
		EndDate:       time.Now().AddDate(0, -1, 0),
		PaymentStatus: models.SubscriptionPaid,
	}))

	ads := services.NewAdService(store.Ads(), nil, events.Nop{}, 5<<20)
	subs := services.NewSubscriptionService(store.Subscriptions(), store.Payments(), events.Nop{})

	// отменённый контекст: один проход и выход
	stopped, cancel := context.WithCancel(ctx)
	cancel()
	startCleaner(stopped, ads, subs)

	counted := logs.FilterField(zap.Int64("count", 1)).All()
	assert.Len(t, counted, 2, "по одной записи на продвижения и подписки")

	stored, err := store.Ads().GetByID(ctx, ad.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsPromoted)
}
