package services

import (
	"context"
	"errors"
	"mime/multipart"
	"strconv"
	"strings"
	"time"

	"mahattati/internal/apperrors"
	"mahattati/internal/events"
	"mahattati/internal/logger"
	"mahattati/internal/models"
	"mahattati/internal/policy"
	"mahattati/internal/repository"
	"mahattati/internal/storage"
	"mahattati/internal/utils/helpers"

	"go.uber.org/zap"
)

const (
	MaxAdsPerList      = 100
	MaxProximityRadius = 100
)

type AdRepo interface {
	Create(ctx context.Context, ad *models.Ad) error
	GetByID(ctx context.Context, id int) (*models.Ad, error)
	List(ctx context.Context, f models.AdFilter) ([]*models.Ad, error)
	IncrementViews(ctx context.Context, id int) (int, error)
	Update(ctx context.Context, id int, in *models.UpdateAdInput) (*models.Ad, error)
	Delete(ctx context.Context, id int) error
	Promote(ctx context.Context, adID, userID int, p models.Promotion) (bool, error)
	ClearExpiredPromotions(ctx context.Context) (int64, error)
}

// MediaStore: сохранение загруженных файлов (storage.Uploader).
type MediaStore interface {
	Save(ctx context.Context, fh *multipart.FileHeader, rule storage.Rule) (*storage.Upload, error)
	SaveAll(ctx context.Context, files []*multipart.FileHeader, rule storage.Rule) ([]string, error)
	DeleteAll(ctx context.Context, urls []string)
}

type AdService struct {
	repo      AdRepo
	media     MediaStore
	audit     events.Recorder
	imageRule storage.Rule
}

func NewAdService(repo AdRepo, media MediaStore, audit events.Recorder, maxFileSize int64) *AdService {
	return &AdService{
		repo:      repo,
		media:     media,
		audit:     audit,
		imageRule: storage.Rule{Prefix: "ads", MaxSize: maxFileSize},
	}
}

func tooManyImages() error {
	return apperrors.Validation("Too many images",
		apperrors.Field("images", "at most "+strconv.Itoa(models.MaxAdImages)+" images are allowed"))
}

func (s *AdService) saveImages(ctx context.Context, files []*multipart.FileHeader) ([]string, error) {
	if len(files) > models.MaxAdImages {
		return nil, tooManyImages()
	}
	if len(files) == 0 {
		return []string{}, nil
	}
	if s.media == nil {
		return nil, apperrors.Upstream("File storage is not configured", nil)
	}
	return s.media.SaveAll(ctx, files, s.imageRule)
}

func trimOpt(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	if v == "" {
		return nil
	}
	return &v
}

// Create создаёт черновик объявления от имени рекламодателя.
func (s *AdService) Create(ctx context.Context, caller *models.User, in *models.CreateAdInput, files []*multipart.FileHeader) (*models.Ad, error) {
	if !policy.Allow(caller.Role, policy.AdCreate, true) {
		return nil, apperrors.Forbidden("Access denied")
	}
	in.Title = strings.TrimSpace(in.Title)
	if err := helpers.Validate(in); err != nil {
		return nil, err
	}

	images, err := s.saveImages(ctx, files)
	if err != nil {
		return nil, err
	}

	ad := &models.Ad{
		UserID:            caller.ID,
		Title:             in.Title,
		Description:       trimOpt(in.Description),
		LocationLatitude:  *in.LocationLatitude,
		LocationLongitude: *in.LocationLongitude,
		Address:           trimOpt(in.Address),
		City:              trimOpt(in.City),
		Region:            trimOpt(in.Region),
		Facilities:        nonNil(in.Facilities),
		FuelTypes:         nonNil(in.FuelTypes),
		Images:            images,
		Status:            models.AdDraft,
	}
	if err := s.repo.Create(ctx, ad); err != nil {
		if len(images) > 0 {
			s.media.DeleteAll(context.WithoutCancel(ctx), images)
		}
		logger.WithCtx(ctx).Error("Ошибка создания объявления (service)", zap.Error(err))
		return nil, apperrors.Upstream("Server error", err)
	}

	s.audit.Record(ctx, events.New(ctx, caller.ID, events.AdCreated, "Ad created", map[string]any{"ad_id": ad.ID}))
	logger.WithCtx(ctx).Info("Объявление создано (service)", zap.Int("ad_id", ad.ID))
	return ad, nil
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

// ScopeAdQuery оставляет параметры, которые действуют для роли: рекламодателю
// доступен только status, остальные фильтры не проверяются и не применяются.
func ScopeAdQuery(caller *models.User, q models.AdQuery) models.AdQuery {
	if caller != nil && policy.Allow(caller.Role, policy.AdListOwn, true) {
		return models.AdQuery{Status: q.Status}
	}
	return q
}

// ParseAdQuery проверяет сырые query-параметры списка.
// Радиус применяется только когда заданы все три: latitude, longitude, radius.
func ParseAdQuery(q models.AdQuery) (models.AdFilter, error) {
	f := models.AdFilter{
		Status: models.AdPublished,
		Region: strings.TrimSpace(q.Region),
		City:   strings.TrimSpace(q.City),
		Limit:  MaxAdsPerList,
	}
	var fields []apperrors.FieldError

	if st := strings.TrimSpace(q.Status); st != "" {
		f.Status = models.AdStatus(st)
		if !f.Status.Valid() {
			fields = append(fields, apperrors.Field("status", "status must be one of: draft, published"))
		}
	}

	lat, lon, rad := strings.TrimSpace(q.Latitude), strings.TrimSpace(q.Longitude), strings.TrimSpace(q.Radius)
	if lat != "" || lon != "" || rad != "" {
		p := &models.Proximity{}
		var err error
		if p.Latitude, err = strconv.ParseFloat(lat, 64); err != nil || p.Latitude < -90 || p.Latitude > 90 {
			fields = append(fields, apperrors.Field("latitude", "latitude must be a number between -90 and 90"))
		}
		if p.Longitude, err = strconv.ParseFloat(lon, 64); err != nil || p.Longitude < -180 || p.Longitude > 180 {
			fields = append(fields, apperrors.Field("longitude", "longitude must be a number between -180 and 180"))
		}
		if p.RadiusKm, err = strconv.Atoi(rad); err != nil || p.RadiusKm < 1 || p.RadiusKm > MaxProximityRadius {
			fields = append(fields, apperrors.Field("radius", "radius must be an integer between 1 and 100"))
		}
		f.Proximity = p
	}

	if len(fields) > 0 {
		return models.AdFilter{}, apperrors.Validation("Validation failed", fields...)
	}
	return f, nil
}

// List применяет правила видимости роли к уже разобранному фильтру.
func (s *AdService) List(ctx context.Context, caller *models.User, f models.AdFilter) ([]*models.Ad, error) {
	switch {
	case policy.Allow(caller.Role, policy.AdListOwn, true):
		// рекламодатель видит только свои, прочие фильтры не действуют
		owner := caller.ID
		f = models.AdFilter{Status: f.Status, OwnerID: &owner}
	case policy.Allow(caller.Role, policy.AdBrowse, false):
		f.OwnerID = nil
	default:
		return nil, apperrors.Forbidden("Access denied")
	}
	if f.Status == "" {
		f.Status = models.AdPublished
	}
	if f.Limit <= 0 || f.Limit > MaxAdsPerList {
		f.Limit = MaxAdsPerList
	}

	ads, err := s.repo.List(ctx, f)
	if err != nil {
		logger.WithCtx(ctx).Error("Ошибка получения объявлений (service)", zap.Error(err))
		return nil, apperrors.Upstream("Server error", err)
	}
	if ads == nil {
		ads = []*models.Ad{}
	}
	return ads, nil
}

var errAdNotFound = apperrors.NotFound("Ad not found")

func (s *AdService) load(ctx context.Context, id int) (*models.Ad, error) {
	ad, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errAdNotFound
		}
		return nil, apperrors.Upstream("Server error", err)
	}
	return ad, nil
}

// Visible проверяет видимость объявления для caller без побочных эффектов.
// Скрытое объявление неотличимо от отсутствующего.
func (s *AdService) Visible(ctx context.Context, caller *models.User, id int) (*models.Ad, error) {
	ad, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if caller.Role == policy.Advertiser {
		if !policy.Allow(caller.Role, policy.AdReadDraft, ad.UserID == caller.ID) {
			return nil, errAdNotFound
		}
		return ad, nil
	}
	if ad.Status != models.AdPublished {
		return nil, errAdNotFound
	}
	return ad, nil
}

// Get: Visible плюс счётчик просмотров для подписчиков.
func (s *AdService) Get(ctx context.Context, caller *models.User, id int) (*models.Ad, error) {
	ad, err := s.Visible(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	if policy.Allow(caller.Role, policy.AdCountView, false) {
		views, err := s.repo.IncrementViews(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				// сняли с публикации между чтением и инкрементом
				return nil, errAdNotFound
			}
			return nil, apperrors.Upstream("Server error", err)
		}
		ad.ViewsCount = views
	}
	return ad, nil
}

// Update: частичное обновление владельцем. Новые картинки заменяют старые целиком.
func (s *AdService) Update(ctx context.Context, caller *models.User, id int, in *models.UpdateAdInput, files []*multipart.FileHeader) (*models.Ad, error) {
	ad, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.Allow(caller.Role, policy.AdUpdate, ad.UserID == caller.ID) {
		logger.WithCtx(ctx).Warn("Попытка изменить чужое объявление", zap.Int("ad_id", id), zap.Int("owner_id", ad.UserID))
		return nil, apperrors.Forbidden("Not authorized to update this ad")
	}

	if in.Title != nil {
		t := strings.TrimSpace(*in.Title)
		in.Title = &t
	}
	if err := helpers.Validate(in); err != nil {
		return nil, err
	}
	if in.Status != nil && !in.Status.Valid() {
		return nil, apperrors.Validation("Validation failed", apperrors.Field("status", "status must be one of: draft, published"))
	}

	if len(files) > 0 {
		images, err := s.saveImages(ctx, files)
		if err != nil {
			return nil, err
		}
		in.Images = &images
	}
	if in.Empty() {
		return nil, apperrors.BadRequest("No fields to update", nil)
	}

	updated, err := s.repo.Update(ctx, id, in)
	if err != nil {
		if in.Images != nil {
			s.media.DeleteAll(context.WithoutCancel(ctx), *in.Images)
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errAdNotFound
		}
		return nil, apperrors.Upstream("Server error", err)
	}
	if in.Images != nil && s.media != nil {
		s.media.DeleteAll(context.WithoutCancel(ctx), ad.Images)
	}

	s.audit.Record(ctx, events.New(ctx, caller.ID, events.AdUpdated, "Ad updated", map[string]any{"ad_id": id}))
	return updated, nil
}

func (s *AdService) Delete(ctx context.Context, caller *models.User, id int) error {
	ad, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !policy.Allow(caller.Role, policy.AdDelete, ad.UserID == caller.ID) {
		logger.WithCtx(ctx).Warn("Попытка удалить чужое объявление", zap.Int("ad_id", id), zap.Int("owner_id", ad.UserID))
		return apperrors.Forbidden("Not authorized to delete this ad")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errAdNotFound
		}
		return apperrors.Upstream("Server error", err)
	}
	if s.media != nil {
		s.media.DeleteAll(context.WithoutCancel(ctx), ad.Images)
	}

	s.audit.Record(ctx, events.New(ctx, caller.ID, events.AdDeleted, "Ad deleted", map[string]any{"ad_id": id}))
	logger.WithCtx(ctx).Info("Объявление удалено (service)", zap.Int("ad_id", id))
	return nil
}

// CleanupExpired снимает истёкшие продвижения. Вызывается фоновым тикером.
func (s *AdService) CleanupExpired(ctx context.Context) (int64, error) {
	n, err := s.repo.ClearExpiredPromotions(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		logger.Log.Info("Сняты истёкшие продвижения", zap.Int64("count", n), zap.Time("at", time.Now()))
	}
	return n, nil
}
