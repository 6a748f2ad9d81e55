package repository

import (
	"context"
	"time"

	"mahattati/internal/logger"
	"mahattati/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// PromoRepository: бегущая строка и спонсорские баннеры.
type PromoRepository struct {
	db *pgxpool.Pool
}

func NewPromoRepository(db *pgxpool.Pool) *PromoRepository {
	return &PromoRepository{db: db}
}

func (r *PromoRepository) ActiveTicker(ctx context.Context) ([]*models.NewsTickerItem, error) {
	rows, err := r.db.Query(ctx, `
	SELECT id, content, content_ar, priority, is_active, created_at
	FROM news_ticker
	WHERE is_active
	ORDER BY priority DESC, created_at DESC`)
	if err != nil {
		logger.Log.Error("Ошибка получения бегущей строки (repo)", zap.Error(err))
		return nil, wrapErr("list ticker", err)
	}
	defer rows.Close()

	out := []*models.NewsTickerItem{}
	for rows.Next() {
		var n models.NewsTickerItem
		if err := rows.Scan(&n.ID, &n.Content, &n.ContentAr, &n.Priority, &n.IsActive, &n.CreatedAt); err != nil {
			return nil, wrapErr("scan ticker", err)
		}
		out = append(out, &n)
	}
	return out, wrapErr("list ticker", rows.Err())
}

func (r *PromoRepository) CreateTicker(ctx context.Context, n *models.NewsTickerItem) error {
	err := r.db.QueryRow(ctx, `
	INSERT INTO news_ticker (content, content_ar, priority, is_active)
	VALUES ($1, $2, $3, $4)
	RETURNING id, created_at`, n.Content, n.ContentAr, n.Priority, n.IsActive).Scan(&n.ID, &n.CreatedAt)
	return wrapErr("create ticker", err)
}

const sponsoredColumns = `id, created_by, title, media_url, media_type, position, link_url, start_date, end_date, is_active, created_at`

func scanSponsored(row pgx.Row) (*models.SponsoredAd, error) {
	var s models.SponsoredAd
	if err := row.Scan(&s.ID, &s.CreatedBy, &s.Title, &s.MediaURL, &s.MediaType, &s.Position, &s.LinkURL,
		&s.StartDate, &s.EndDate, &s.IsActive, &s.CreatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *PromoRepository) CreateSponsored(ctx context.Context, s *models.SponsoredAd) error {
	logger.Log.Info("Создание спонсорского баннера (repo)", zap.String("position", s.Position))
	created, err := scanSponsored(r.db.QueryRow(ctx, `
	INSERT INTO sponsored_ads (created_by, title, media_url, media_type, position, link_url, start_date, end_date)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING `+sponsoredColumns,
		s.CreatedBy, s.Title, s.MediaURL, s.MediaType, s.Position, s.LinkURL, s.StartDate, s.EndDate))
	if err != nil {
		return wrapErr("create sponsored", err)
	}
	*s = *created
	return nil
}

func (r *PromoRepository) ListSponsored(ctx context.Context) ([]*models.SponsoredAd, error) {
	return r.querySponsored(ctx, `SELECT `+sponsoredColumns+` FROM sponsored_ads ORDER BY created_at DESC`)
}

// ActiveSponsored: включённые баннеры, у которых now попадает в окно показа.
func (r *PromoRepository) ActiveSponsored(ctx context.Context, position string, now time.Time) ([]*models.SponsoredAd, error) {
	return r.querySponsored(ctx, `
	SELECT `+sponsoredColumns+` FROM sponsored_ads
	WHERE is_active
		AND ($1 = '' OR position = $1)
		AND (start_date IS NULL OR start_date <= $2)
		AND (end_date IS NULL OR end_date >= $2)
	ORDER BY created_at DESC`, position, now)
}

func (r *PromoRepository) querySponsored(ctx context.Context, query string, args ...interface{}) ([]*models.SponsoredAd, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapErr("list sponsored", err)
	}
	defer rows.Close()

	out := []*models.SponsoredAd{}
	for rows.Next() {
		s, err := scanSponsored(rows)
		if err != nil {
			return nil, wrapErr("scan sponsored", err)
		}
		out = append(out, s)
	}
	return out, wrapErr("list sponsored", rows.Err())
}
