package services

import (
	"context"
	"testing"

	"mahattati/internal/apperrors"
	"mahattati/internal/events"
	"mahattati/internal/models"
	"mahattati/internal/policy"
	"mahattati/internal/repository/memstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubAudit запоминает последний фильтр журнала, отчёты не нужны
type stubAudit struct {
	AuditRepo
	filter models.AuditFilter
	logs   []*models.AuditLog
}

func (s *stubAudit) List(_ context.Context, f models.AuditFilter) ([]*models.AuditLog, int, error) {
	s.filter = f
	return s.logs, len(s.logs), nil
}

func seedUsers(t *testing.T, store *memstore.Store) (admin, adv *models.User) {
	t.Helper()
	admin = &models.User{Name: "Admin", Email: "admin@x.com", Role: policy.SystemManager}
	adv = &models.User{Name: "Adv", Email: "adv@x.com", Role: policy.Advertiser}
	require.NoError(t, store.Users().Create(context.Background(), admin))
	require.NoError(t, store.Users().Create(context.Background(), adv))
	for _, e := range []string{"s1@x.com", "s2@x.com", "s3@x.com"} {
		require.NoError(t, store.Users().Create(context.Background(), &models.User{Name: "Sub", Email: e, Role: policy.Subscriber}))
	}
	return admin, adv
}

func TestAdmin_ListUsers(t *testing.T) {
	store := memstore.New()
	seedUsers(t, store)
	svc := NewAdminService(store.Users(), &stubAudit{}, events.NewDirectRecorder(store))

	p, err := svc.ListUsers(context.Background(), "", "", "")
	require.NoError(t, err)
	assert.Equal(t, 5, p.Total)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, DefaultUsersPageSize, p.Limit)

	p, err = svc.ListUsers(context.Background(), "subscriber", "2", "2")
	require.NoError(t, err)
	assert.Equal(t, 3, p.Total)
	assert.Equal(t, 2, p.Pages)
	require.Len(t, p.Items, 1)
	assert.Equal(t, policy.Subscriber, p.Items[0].Role)

	for _, tc := range [][3]string{{"root", "", ""}, {"", "0", ""}, {"", "x", ""}, {"", "", "101"}} {
		_, err := svc.ListUsers(context.Background(), tc[0], tc[1], tc[2])
		assert.True(t, apperrors.Is(err, apperrors.KindValidation), "ожидалась ошибка для %v", tc)
	}
}

func TestAdmin_UpdateUser(t *testing.T) {
	store := memstore.New()
	admin, adv := seedUsers(t, store)
	svc := NewAdminService(store.Users(), &stubAudit{}, events.NewDirectRecorder(store))

	role := string(policy.MarketingManager)
	p, err := svc.UpdateUser(context.Background(), admin, adv.ID, &models.AdminUpdateUserRequest{Role: &role})
	require.NoError(t, err)
	assert.Equal(t, policy.MarketingManager, p.Role)

	logs := store.AuditLogs()
	require.NotEmpty(t, logs)
	assert.Equal(t, events.AdminUserUpdated, logs[len(logs)-1].EventType)

	_, err = svc.UpdateUser(context.Background(), admin, adv.ID, &models.AdminUpdateUserRequest{})
	assert.Equal(t, "No fields to update", errMessage(err))

	taken := "ADMIN@x.com"
	_, err = svc.UpdateUser(context.Background(), admin, adv.ID, &models.AdminUpdateUserRequest{Email: &taken})
	assert.True(t, apperrors.Is(err, apperrors.KindConflict))

	name := "x"
	_, err = svc.UpdateUser(context.Background(), admin, 9999, &models.AdminUpdateUserRequest{Name: &name})
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))

	// не-менеджер не меняет чужой профиль
	_, err = svc.UpdateUser(context.Background(), adv, admin.ID, &models.AdminUpdateUserRequest{Name: &name})
	assert.True(t, apperrors.Is(err, apperrors.KindForbidden))
}

func TestAdmin_LogsAndReports(t *testing.T) {
	audit := &stubAudit{logs: []*models.AuditLog{{ID: 1, EventType: events.AdminUserUpdated}}}
	svc := NewAdminService(memstore.New().Users(), audit, events.Nop{})

	p, err := svc.Logs(context.Background(), " admin.user_updated ", "7", "3", "10")
	require.NoError(t, err)
	assert.Len(t, p.Items, 1)
	assert.Equal(t, "admin.user_updated", audit.filter.EventType)
	require.NotNil(t, audit.filter.UserID)
	assert.Equal(t, 7, *audit.filter.UserID)
	assert.Equal(t, 20, audit.filter.Offset)

	_, err = svc.Logs(context.Background(), "", "abc", "", "")
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))

	_, err = svc.Report(context.Background(), "weather", "", "")
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))

	_, err = svc.Report(context.Background(), "users", "yesterday", "")
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))
}
