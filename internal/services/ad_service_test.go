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

var (
	owner      = &models.User{ID: 101, Role: policy.Advertiser}
	rival      = &models.User{ID: 102, Role: policy.Advertiser}
	subscriber = &models.User{ID: 201, Role: policy.Subscriber}
	sysManager = &models.User{ID: 301, Role: policy.SystemManager}
)

func f64(v float64) *float64 { return &v }
func str(v string) *string { return &v }

func newAdService() (*AdService, *memstore.Store) {
	store := memstore.New()
	return NewAdService(store.Ads(), nil, events.Nop{}, 5<<20), store
}

func createAd(t *testing.T, svc *AdService, caller *models.User, title string, lat, lon float64, city string) *models.Ad {
	t.Helper()
	in := &models.CreateAdInput{Title: title, LocationLatitude: f64(lat), LocationLongitude: f64(lon)}
	if city != "" {
		in.City = str(city)
	}
	ad, err := svc.Create(context.Background(), caller, in, nil)
	require.NoError(t, err)
	return ad
}

func publish(t *testing.T, svc *AdService, caller *models.User, id int) {
	t.Helper()
	st := models.AdPublished
	_, err := svc.Update(context.Background(), caller, id, &models.UpdateAdInput{Status: &st}, nil)
	require.NoError(t, err)
}

func TestCreateAd_Draft(t *testing.T) {
	svc, _ := newAdService()

	ad := createAd(t, svc, owner, "  Station  ", 24.7, 46.6, "Riyadh")
	assert.Equal(t, "Station", ad.Title)
	assert.Equal(t, models.AdDraft, ad.Status)
	assert.Equal(t, owner.ID, ad.UserID)
	assert.NotNil(t, ad.Facilities)
	assert.NotNil(t, ad.Images)
	assert.Zero(t, ad.ViewsCount)
}

func TestCreateAd_OnlyAdvertisers(t *testing.T) {
	svc, _ := newAdService()
	in := &models.CreateAdInput{Title: "x", LocationLatitude: f64(1), LocationLongitude: f64(1)}

	_, err := svc.Create(context.Background(), subscriber, in, nil)
	assert.True(t, apperrors.Is(err, apperrors.KindForbidden))
}

func TestCreateAd_Validation(t *testing.T) {
	svc, _ := newAdService()

	_, err := svc.Create(context.Background(), owner, &models.CreateAdInput{Title: " ", LocationLatitude: f64(91)}, nil)
	ae, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.KindValidation, ae.Kind)

	fields := map[string]bool{}
	for _, fe := range ae.Fields {
		fields[fe.Field] = true
	}
	assert.True(t, fields["title"])
	assert.True(t, fields["location_latitude"])
	assert.True(t, fields["location_longitude"])
}

func TestParseAdQuery(t *testing.T) {
	f, err := ParseAdQuery(models.AdQuery{})
	require.NoError(t, err)
	assert.Equal(t, models.AdPublished, f.Status)
	assert.Nil(t, f.Proximity)
	assert.Equal(t, MaxAdsPerList, f.Limit)

	f, err = ParseAdQuery(models.AdQuery{Latitude: "24.7", Longitude: "46.6", Radius: "10", City: " Riyadh "})
	require.NoError(t, err)
	require.NotNil(t, f.Proximity)
	assert.Equal(t, 10, f.Proximity.RadiusKm)
	assert.Equal(t, "Riyadh", f.City)

	bad := []models.AdQuery{
		{Status: "archived"},
		{Latitude: "24.7"},
		{Latitude: "24.7", Longitude: "46.6"},
		{Latitude: "24.7", Longitude: "46.6", Radius: "0"},
		{Latitude: "24.7", Longitude: "46.6", Radius: "101"},
		{Latitude: "abc", Longitude: "46.6", Radius: "5"},
		{Latitude: "24.7", Longitude: "190", Radius: "5"},
	}
	for _, q := range bad {
		_, err := ParseAdQuery(q)
		assert.True(t, apperrors.Is(err, apperrors.KindValidation), "ожидалась ошибка валидации для %+v", q)
	}
}

func TestScopeAdQuery_AdvertiserIgnoresFilters(t *testing.T) {
	raw := models.AdQuery{Status: "draft", City: "Riyadh", Latitude: "x", Longitude: "46.6"}

	f, err := ParseAdQuery(ScopeAdQuery(owner, raw))
	require.NoError(t, err, "фильтры рекламодателя не проверяются")
	assert.Equal(t, models.AdDraft, f.Status)
	assert.Nil(t, f.Proximity)
	assert.Empty(t, f.City)

	_, err = ParseAdQuery(ScopeAdQuery(owner, models.AdQuery{Status: "archived"}))
	assert.True(t, apperrors.Is(err, apperrors.KindValidation), "status проверяется и для рекламодателя")

	_, err = ParseAdQuery(ScopeAdQuery(subscriber, raw))
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))
}

func TestListAds_AdvertiserSeesOnlyOwn(t *testing.T) {
	svc, _ := newAdService()
	mine := createAd(t, svc, owner, "mine", 24.7, 46.6, "Riyadh")
	theirs := createAd(t, svc, rival, "theirs", 24.7, 46.6, "Riyadh")
	publish(t, svc, owner, mine.ID)
	publish(t, svc, rival, theirs.ID)

	queries := []models.AdQuery{
		{},
		{City: "Riyadh"},
		{Region: "Central"},
		{Latitude: "24.7", Longitude: "46.6", Radius: "50"},
		{Status: "draft"},
	}
	for _, q := range queries {
		f, err := ParseAdQuery(q)
		require.NoError(t, err)
		ads, err := svc.List(context.Background(), owner, f)
		require.NoError(t, err)
		for _, a := range ads {
			assert.Equal(t, owner.ID, a.UserID, "чужое объявление в выдаче для %+v", q)
		}
	}

	f, _ := ParseAdQuery(models.AdQuery{City: "Jeddah"})
	ads, err := svc.List(context.Background(), owner, f)
	require.NoError(t, err)
	require.Len(t, ads, 1, "фильтр города для рекламодателя игнорируется")
	assert.Equal(t, mine.ID, ads[0].ID)
}

func TestListAds_SubscriberFilters(t *testing.T) {
	svc, _ := newAdService()
	riyadh := createAd(t, svc, owner, "riyadh", 24.7136, 46.6753, "Riyadh")
	jeddah := createAd(t, svc, rival, "jeddah", 21.5433, 39.1728, "Jeddah")
	createAd(t, svc, owner, "draft", 24.7136, 46.6753, "Riyadh")
	publish(t, svc, owner, riyadh.ID)
	publish(t, svc, rival, jeddah.ID)

	f, _ := ParseAdQuery(models.AdQuery{})
	ads, err := svc.List(context.Background(), subscriber, f)
	require.NoError(t, err)
	assert.Len(t, ads, 2, "черновики не попадают в выдачу")

	f, _ = ParseAdQuery(models.AdQuery{City: "Jeddah"})
	ads, err = svc.List(context.Background(), subscriber, f)
	require.NoError(t, err)
	require.Len(t, ads, 1)
	assert.Equal(t, jeddah.ID, ads[0].ID)

	f, _ = ParseAdQuery(models.AdQuery{Latitude: "24.7", Longitude: "46.7", Radius: "50"})
	ads, err = svc.List(context.Background(), subscriber, f)
	require.NoError(t, err)
	require.Len(t, ads, 1)
	assert.Equal(t, riyadh.ID, ads[0].ID)
	require.NotNil(t, ads[0].DistanceKm)
	assert.Less(t, *ads[0].DistanceKm, 50.0)
}

func TestGetAd_Visibility(t *testing.T) {
	svc, _ := newAdService()
	draft := createAd(t, svc, owner, "draft", 24.7, 46.6, "")

	_, err := svc.Get(context.Background(), subscriber, draft.ID)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound), "черновик скрыт от подписчика")

	_, err = svc.Get(context.Background(), rival, draft.ID)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound), "черновик скрыт от чужого рекламодателя")

	got, err := svc.Get(context.Background(), owner, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, draft.ID, got.ID)

	publish(t, svc, owner, draft.ID)
	_, err = svc.Get(context.Background(), rival, draft.ID)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound), "рекламодатель видит только свои")

	_, err = svc.Get(context.Background(), subscriber, 9999)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
}

func TestGetAd_CountsSubscriberViews(t *testing.T) {
	svc, store := newAdService()
	ad := createAd(t, svc, owner, "station", 24.7, 46.6, "")
	publish(t, svc, owner, ad.ID)

	for i := 1; i <= 3; i++ {
		got, err := svc.Get(context.Background(), subscriber, ad.ID)
		require.NoError(t, err)
		assert.Equal(t, i, got.ViewsCount)
	}

	// владелец и менеджер не накручивают счётчик
	_, err := svc.Get(context.Background(), owner, ad.ID)
	require.NoError(t, err)
	_, err = svc.Get(context.Background(), sysManager, ad.ID)
	require.NoError(t, err)

	stored, err := store.Ads().GetByID(context.Background(), ad.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.ViewsCount)
}

func TestUpdateAd_NonOwnerForbidden(t *testing.T) {
	svc, store := newAdService()
	ad := createAd(t, svc, owner, "original", 24.7, 46.6, "")

	_, err := svc.Update(context.Background(), rival, ad.ID, &models.UpdateAdInput{Title: str("hijacked")}, nil)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindForbidden))
	assert.Equal(t, "Not authorized to update this ad", errMessage(err))

	_, err = svc.Update(context.Background(), subscriber, ad.ID, &models.UpdateAdInput{Title: str("hijacked")}, nil)
	assert.True(t, apperrors.Is(err, apperrors.KindForbidden))

	stored, err := store.Ads().GetByID(context.Background(), ad.ID)
	require.NoError(t, err)
	assert.Equal(t, "original", stored.Title)
}

func TestUpdateAd_Rules(t *testing.T) {
	svc, _ := newAdService()
	ad := createAd(t, svc, owner, "original", 24.7, 46.6, "")

	_, err := svc.Update(context.Background(), owner, 9999, &models.UpdateAdInput{Title: str("x")}, nil)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))

	_, err = svc.Update(context.Background(), owner, ad.ID, &models.UpdateAdInput{}, nil)
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))
	assert.Equal(t, "No fields to update", errMessage(err))

	bad := models.AdStatus("archived")
	_, err = svc.Update(context.Background(), owner, ad.ID, &models.UpdateAdInput{Status: &bad}, nil)
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))

	fac := []string{"car_wash", "shop"}
	updated, err := svc.Update(context.Background(), owner, ad.ID, &models.UpdateAdInput{Title: str(" renamed "), Facilities: &fac}, nil)
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Title)
	assert.Equal(t, fac, updated.Facilities)
	assert.Equal(t, models.AdDraft, updated.Status)
}

func TestDeleteAd(t *testing.T) {
	svc, store := newAdService()
	ad := createAd(t, svc, owner, "station", 24.7, 46.6, "")

	err := svc.Delete(context.Background(), rival, ad.ID)
	assert.True(t, apperrors.Is(err, apperrors.KindForbidden))
	_, err = store.Ads().GetByID(context.Background(), ad.ID)
	require.NoError(t, err, "объявление не должно удаляться чужим")

	require.NoError(t, svc.Delete(context.Background(), owner, ad.ID))
	_, err = svc.Get(context.Background(), owner, ad.ID)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))

	err = svc.Delete(context.Background(), owner, ad.ID)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
}
