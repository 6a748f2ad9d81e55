package services

import (
	"context"
	"mime/multipart"
	"testing"
	"time"

	"mahattati/internal/apperrors"
	"mahattati/internal/models"
	"mahattati/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBlogRepo struct {
	posts map[int]*models.BlogPost
	next  int
}

func newFakeBlogRepo() *fakeBlogRepo {
	return &fakeBlogRepo{posts: map[int]*models.BlogPost{}}
}

func (r *fakeBlogRepo) Create(_ context.Context, p *models.BlogPost) error {
	r.next++
	p.ID = r.next
	cp := *p
	r.posts[p.ID] = &cp
	return nil
}

func (r *fakeBlogRepo) GetByID(_ context.Context, id int) (*models.BlogPost, error) {
	p, ok := r.posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeBlogRepo) ListPublished(_ context.Context, _ int) ([]*models.BlogPost, error) {
	var out []*models.BlogPost
	for _, p := range r.posts {
		if p.Status == models.BlogPublished {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeBlogRepo) ReadPublished(_ context.Context, id int) (*models.BlogPost, error) {
	p, ok := r.posts[id]
	if !ok || p.Status != models.BlogPublished {
		return nil, repository.ErrNotFound
	}
	p.ViewsCount++
	cp := *p
	return &cp, nil
}

func (r *fakeBlogRepo) Update(_ context.Context, id int, in *models.BlogPostInput, publishDate *time.Time) (*models.BlogPost, error) {
	p, ok := r.posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if in.Title != nil {
		p.Title = *in.Title
	}
	if in.Content != nil {
		p.Content = *in.Content
	}
	if in.Status != nil {
		p.Status = models.BlogStatus(*in.Status)
	}
	if publishDate != nil {
		p.PublishDate = publishDate
	}
	cp := *p
	return &cp, nil
}

type fakePromoRepo struct {
	ticker    []*models.NewsTickerItem
	sponsored []*models.SponsoredAd
	position  string
	at        time.Time
}

func (r *fakePromoRepo) ActiveTicker(context.Context) ([]*models.NewsTickerItem, error) {
	return r.ticker, nil
}

func (r *fakePromoRepo) CreateTicker(_ context.Context, n *models.NewsTickerItem) error {
	n.ID = len(r.ticker) + 1
	r.ticker = append(r.ticker, n)
	return nil
}

func (r *fakePromoRepo) CreateSponsored(_ context.Context, s *models.SponsoredAd) error {
	s.ID = len(r.sponsored) + 1
	r.sponsored = append(r.sponsored, s)
	return nil
}

func (r *fakePromoRepo) ListSponsored(context.Context) ([]*models.SponsoredAd, error) {
	return r.sponsored, nil
}

func (r *fakePromoRepo) ActiveSponsored(_ context.Context, position string, now time.Time) ([]*models.SponsoredAd, error) {
	r.position, r.at = position, now
	return r.sponsored, nil
}

func TestBlog_CreateSanitizesAndDrafts(t *testing.T) {
	repo := newFakeBlogRepo()
	svc := NewBlogService(repo, nil)
	author := &models.User{ID: 5}

	p, err := svc.Create(context.Background(), author, &models.BlogPostInput{
		Title:   str("<b>Diesel</b> prices"),
		Content: str(`<p>Hello</p><script>alert(1)</script>`),
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Diesel prices", p.Title)
	assert.Equal(t, "<p>Hello</p>", p.Content)
	assert.Equal(t, models.BlogDraft, p.Status)
	assert.Equal(t, "none", p.MediaType)
	assert.Nil(t, p.PublishDate)
	assert.Equal(t, author.ID, p.AuthorID)

	_, err = svc.Read(context.Background(), p.ID)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound), "черновик не виден публично")
}

func TestBlog_CreateValidation(t *testing.T) {
	svc := NewBlogService(newFakeBlogRepo(), nil)

	_, err := svc.Create(context.Background(), &models.User{ID: 1}, &models.BlogPostInput{Title: str("<i></i>")}, nil)
	ae, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.KindValidation, ae.Kind)
	assert.Len(t, ae.Fields, 2)

	_, err = svc.Create(context.Background(), &models.User{ID: 1}, &models.BlogPostInput{Title: str("t"), Content: str("c"), Status: str("archived")}, nil)
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))
}

func TestBlog_PublishDateSetOnce(t *testing.T) {
	repo := newFakeBlogRepo()
	svc := NewBlogService(repo, nil)
	first := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return first }

	p, err := svc.Create(context.Background(), &models.User{ID: 1}, &models.BlogPostInput{Title: str("t"), Content: str("c")}, nil)
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), p.ID, &models.BlogPostInput{Status: str("published")}, nil)
	require.NoError(t, err)
	require.NotNil(t, updated.PublishDate)
	assert.Equal(t, first, *updated.PublishDate)

	svc.now = func() time.Time { return first.Add(48 * time.Hour) }
	updated, err = svc.Update(context.Background(), p.ID, &models.BlogPostInput{Status: str("published"), Title: str("renamed")}, nil)
	require.NoError(t, err)
	assert.Equal(t, first, *updated.PublishDate, "дата публикации не переписывается")
	assert.Equal(t, "renamed", updated.Title)

	read, err := svc.Read(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, read.ViewsCount)

	_, err = svc.Update(context.Background(), 999, &models.BlogPostInput{Title: str("x")}, nil)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
}

func TestBlog_MediaWithoutStorage(t *testing.T) {
	svc := NewBlogService(newFakeBlogRepo(), nil)
	fh := &multipart.FileHeader{Filename: "pic.png", Size: 10}

	_, err := svc.Create(context.Background(), &models.User{ID: 1}, &models.BlogPostInput{Title: str("t"), Content: str("c")}, fh)
	require.Error(t, err)
	assert.Equal(t, "File storage is not configured", errMessage(err))
}

func TestPromo_Ticker(t *testing.T) {
	repo := &fakePromoRepo{}
	svc := NewPromoService(repo)

	item, err := svc.CreateTicker(context.Background(), &models.NewsTickerInput{Content: " <b>New</b> station ", Priority: 5})
	require.NoError(t, err)
	assert.Equal(t, "New station", item.Content)
	assert.True(t, item.IsActive)

	off := false
	item, err = svc.CreateTicker(context.Background(), &models.NewsTickerInput{Content: "hidden", IsActive: &off})
	require.NoError(t, err)
	assert.False(t, item.IsActive)

	_, err = svc.CreateTicker(context.Background(), &models.NewsTickerInput{Content: "<script></script>"})
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))

	items, err := svc.Ticker(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestPromo_Sponsored(t *testing.T) {
	repo := &fakePromoRepo{}
	svc := NewPromoService(repo)
	mgr := &models.User{ID: 9}

	ad, err := svc.CreateSponsored(context.Background(), mgr, &models.SponsoredAdInput{
		MediaURL:  "https://cdn.example.com/banner.png",
		MediaType: "image",
		Position:  "top_banner",
		StartDate: str("2025-01-01"),
		EndDate:   str("2025-02-01T00:00:00Z"),
	})
	require.NoError(t, err)
	assert.Equal(t, mgr.ID, ad.CreatedBy)
	require.NotNil(t, ad.StartDate)
	require.NotNil(t, ad.EndDate)

	bad := []*models.SponsoredAdInput{
		{MediaURL: "not a url", MediaType: "image", Position: "top_banner"},
		{MediaURL: "https://x.io/a.png", MediaType: "gif", Position: "top_banner"},
		{MediaURL: "https://x.io/a.png", MediaType: "image", Position: "footer"},
		{MediaURL: "https://x.io/a.png", MediaType: "image", Position: "top_banner", StartDate: str("yesterday")},
		{MediaURL: "https://x.io/a.png", MediaType: "image", Position: "top_banner", StartDate: str("2025-02-01"), EndDate: str("2025-01-01")},
	}
	for _, in := range bad {
		_, err := svc.CreateSponsored(context.Background(), mgr, in)
		assert.True(t, apperrors.Is(err, apperrors.KindValidation), "ожидалась ошибка валидации для %+v", in)
	}

	now := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	list, err := svc.ActiveSponsored(context.Background(), " left_sidebar ")
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, "left_sidebar", repo.position)
	assert.Equal(t, now, repo.at)

	_, err = svc.ActiveSponsored(context.Background(), "footer")
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))
}
