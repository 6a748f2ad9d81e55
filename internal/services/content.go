package services

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"
	"time"

	"mahattati/internal/apperrors"
	"mahattati/internal/logger"
	"mahattati/internal/models"
	"mahattati/internal/repository"
	"mahattati/internal/storage"
	"mahattati/internal/utils/helpers"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
)

const (
	MaxBlogPosts     = 100
	MaxBlogMediaSize = 10 << 20
)

type BlogRepo interface {
	Create(ctx context.Context, p *models.BlogPost) error
	GetByID(ctx context.Context, id int) (*models.BlogPost, error)
	ListPublished(ctx context.Context, limit int) ([]*models.BlogPost, error)
	ReadPublished(ctx context.Context, id int) (*models.BlogPost, error)
	Update(ctx context.Context, id int, in *models.BlogPostInput, publishDate *time.Time) (*models.BlogPost, error)
}

type PromoRepo interface {
	ActiveTicker(ctx context.Context) ([]*models.NewsTickerItem, error)
	CreateTicker(ctx context.Context, n *models.NewsTickerItem) error
	CreateSponsored(ctx context.Context, s *models.SponsoredAd) error
	ListSponsored(ctx context.Context) ([]*models.SponsoredAd, error)
	ActiveSponsored(ctx context.Context, position string, now time.Time) ([]*models.SponsoredAd, error)
}

type BlogService struct {
	repo   BlogRepo
	media  MediaStore
	policy *bluemonday.Policy
	rule   storage.Rule
	now    func() time.Time
}

func NewBlogService(repo BlogRepo, media MediaStore) *BlogService {
	p := bluemonday.UGCPolicy()
	p.AllowElements("img")
	p.AllowAttrs("src", "alt").OnElements("img")
	return &BlogService{
		repo:   repo,
		media:  media,
		policy: p,
		rule:   storage.Rule{Prefix: "blog", MaxSize: MaxBlogMediaSize, Video: true},
		now:    time.Now,
	}
}

func (s *BlogService) sanitize(in *models.BlogPostInput) {
	clean := func(p *string) *string {
		if p == nil {
			return nil
		}
		v := strings.TrimSpace(s.policy.Sanitize(*p))
		return &v
	}
	in.Content = clean(in.Content)
	in.ContentAr = clean(in.ContentAr)
	if in.Title != nil {
		t := strings.TrimSpace(strictText.Sanitize(*in.Title))
		in.Title = &t
	}
	if in.TitleAr != nil {
		t := strings.TrimSpace(strictText.Sanitize(*in.TitleAr))
		in.TitleAr = &t
	}
}

func (s *BlogService) attachMedia(ctx context.Context, in *models.BlogPostInput, fh *multipart.FileHeader) error {
	if fh == nil {
		return nil
	}
	if s.media == nil {
		return apperrors.Upstream("File storage is not configured", nil)
	}
	up, err := s.media.Save(ctx, fh, s.rule)
	if err != nil {
		return err
	}
	kind := string(up.Kind)
	in.MediaURL = &up.URL
	in.MediaType = &kind
	return nil
}

func (s *BlogService) ListPublished(ctx context.Context) ([]*models.BlogPost, error) {
	list, err := s.repo.ListPublished(ctx, MaxBlogPosts)
	if err != nil {
		return nil, apperrors.Upstream("Server error", err)
	}
	return list, nil
}

// Read отдаёт опубликованную запись и увеличивает счётчик просмотров.
func (s *BlogService) Read(ctx context.Context, id int) (*models.BlogPost, error) {
	p, err := s.repo.ReadPublished(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("Blog post not found")
		}
		return nil, apperrors.Upstream("Server error", err)
	}
	return p, nil
}

func (s *BlogService) Create(ctx context.Context, caller *models.User, in *models.BlogPostInput, media *multipart.FileHeader) (*models.BlogPost, error) {
	s.sanitize(in)
	var fields []apperrors.FieldError
	if in.Title == nil || *in.Title == "" {
		fields = append(fields, apperrors.Field("title", "Title is required"))
	}
	if in.Content == nil || *in.Content == "" {
		fields = append(fields, apperrors.Field("content", "Content is required"))
	}
	if len(fields) > 0 {
		return nil, apperrors.Validation("Validation failed", fields...)
	}
	if err := helpers.Validate(in); err != nil {
		return nil, err
	}
	if err := s.attachMedia(ctx, in, media); err != nil {
		return nil, err
	}

	p := &models.BlogPost{
		AuthorID:  caller.ID,
		Title:     *in.Title,
		TitleAr:   in.TitleAr,
		Content:   *in.Content,
		ContentAr: in.ContentAr,
		MediaURL:  in.MediaURL,
		MediaType: "none",
		Status:    models.BlogDraft,
	}
	if in.MediaType != nil {
		p.MediaType = *in.MediaType
	}
	if in.Status != nil {
		p.Status = models.BlogStatus(*in.Status)
	}
	if p.Status == models.BlogPublished {
		now := s.now().UTC()
		p.PublishDate = &now
	}

	if err := s.repo.Create(ctx, p); err != nil {
		if in.MediaURL != nil {
			s.media.DeleteAll(context.WithoutCancel(ctx), []string{*in.MediaURL})
		}
		return nil, apperrors.Upstream("Server error", err)
	}
	logger.WithCtx(ctx).Info("Запись блога создана (service)", zap.Int("post_id", p.ID), zap.String("status", string(p.Status)))
	return p, nil
}

// Update: частичное обновление. publish_date выставляется при первой публикации и дальше не меняется.
func (s *BlogService) Update(ctx context.Context, id int, in *models.BlogPostInput, media *multipart.FileHeader) (*models.BlogPost, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("Blog post not found")
		}
		return nil, apperrors.Upstream("Server error", err)
	}

	s.sanitize(in)
	if err := helpers.Validate(in); err != nil {
		return nil, err
	}
	if err := s.attachMedia(ctx, in, media); err != nil {
		return nil, err
	}

	var publishDate *time.Time
	if in.Status != nil && *in.Status == string(models.BlogPublished) && current.PublishDate == nil {
		now := s.now().UTC()
		publishDate = &now
	}

	updated, err := s.repo.Update(ctx, id, in, publishDate)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("Blog post not found")
		}
		return nil, apperrors.Upstream("Server error", err)
	}
	if in.MediaURL != nil && current.MediaURL != nil && s.media != nil {
		s.media.DeleteAll(context.WithoutCancel(ctx), []string{*current.MediaURL})
	}
	return updated, nil
}

type PromoService struct {
	repo PromoRepo
	now  func() time.Time
}

func NewPromoService(repo PromoRepo) *PromoService {
	return &PromoService{repo: repo, now: time.Now}
}

func (s *PromoService) Ticker(ctx context.Context) ([]*models.NewsTickerItem, error) {
	items, err := s.repo.ActiveTicker(ctx)
	if err != nil {
		return nil, apperrors.Upstream("Server error", err)
	}
	return items, nil
}

func (s *PromoService) CreateTicker(ctx context.Context, in *models.NewsTickerInput) (*models.NewsTickerItem, error) {
	in.Content = cleanText(in.Content)
	if in.ContentAr != nil {
		v := cleanText(*in.ContentAr)
		in.ContentAr = &v
	}
	if err := helpers.Validate(in); err != nil {
		return nil, err
	}
	item := &models.NewsTickerItem{Content: in.Content, ContentAr: in.ContentAr, Priority: in.Priority, IsActive: true}
	if in.IsActive != nil {
		item.IsActive = *in.IsActive
	}
	if err := s.repo.CreateTicker(ctx, item); err != nil {
		return nil, apperrors.Upstream("Server error", err)
	}
	return item, nil
}

// parseDate принимает RFC3339 или YYYY-MM-DD.
func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}

func (s *PromoService) CreateSponsored(ctx context.Context, caller *models.User, in *models.SponsoredAdInput) (*models.SponsoredAd, error) {
	if err := helpers.Validate(in); err != nil {
		return nil, err
	}
	ad := &models.SponsoredAd{
		CreatedBy: caller.ID,
		Title:     trimOpt(in.Title),
		MediaURL:  in.MediaURL,
		MediaType: in.MediaType,
		Position:  in.Position,
		LinkURL:   trimOpt(in.LinkURL),
		IsActive:  true,
	}

	var fields []apperrors.FieldError
	if in.StartDate != nil && strings.TrimSpace(*in.StartDate) != "" {
		t, err := parseDate(*in.StartDate)
		if err != nil {
			fields = append(fields, apperrors.Field("start_date", "start_date must be an ISO-8601 date"))
		} else {
			ad.StartDate = &t
		}
	}
	if in.EndDate != nil && strings.TrimSpace(*in.EndDate) != "" {
		t, err := parseDate(*in.EndDate)
		if err != nil {
			fields = append(fields, apperrors.Field("end_date", "end_date must be an ISO-8601 date"))
		} else {
			ad.EndDate = &t
		}
	}
	if ad.StartDate != nil && ad.EndDate != nil && ad.EndDate.Before(*ad.StartDate) {
		fields = append(fields, apperrors.Field("end_date", "end_date must not be before start_date"))
	}
	if len(fields) > 0 {
		return nil, apperrors.Validation("Validation failed", fields...)
	}

	if err := s.repo.CreateSponsored(ctx, ad); err != nil {
		return nil, apperrors.Upstream("Server error", err)
	}
	logger.WithCtx(ctx).Info("Спонсорский баннер создан (service)", zap.Int("id", ad.ID), zap.String("position", ad.Position))
	return ad, nil
}

func (s *PromoService) ListSponsored(ctx context.Context) ([]*models.SponsoredAd, error) {
	list, err := s.repo.ListSponsored(ctx)
	if err != nil {
		return nil, apperrors.Upstream("Server error", err)
	}
	return list, nil
}

var sponsoredPositions = map[string]bool{"top_banner": true, "left_sidebar": true, "right_sidebar": true}

// ActiveSponsored отдаёт баннеры для показа сейчас. Пустая позиция означает все позиции.
func (s *PromoService) ActiveSponsored(ctx context.Context, position string) ([]*models.SponsoredAd, error) {
	position = strings.TrimSpace(position)
	if position != "" && !sponsoredPositions[position] {
		return nil, apperrors.Validation("Validation failed", apperrors.Field("position", "Invalid position"))
	}
	list, err := s.repo.ActiveSponsored(ctx, position, s.now().UTC())
	if err != nil {
		return nil, apperrors.Upstream("Server error", err)
	}
	return list, nil
}
