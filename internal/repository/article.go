package repository

import (
	"context"
	"fmt"
	"time"

	"mahattati/internal/logger"
	"mahattati/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// BlogRepository: записи блога (таблица blog_posts).
type BlogRepository struct {
	db *pgxpool.Pool
}

func NewBlogRepository(db *pgxpool.Pool) *BlogRepository {
	return &BlogRepository{db: db}
}

const blogColumns = `b.id, b.author_id, COALESCE(u.name, ''), b.title, b.title_ar, b.content, b.content_ar,
	b.media_url, b.media_type, b.status, b.publish_date, b.views_count, b.created_at, b.updated_at`

func scanBlogPost(row pgx.Row) (*models.BlogPost, error) {
	var p models.BlogPost
	err := row.Scan(&p.ID, &p.AuthorID, &p.AuthorName, &p.Title, &p.TitleAr, &p.Content, &p.ContentAr,
		&p.MediaURL, &p.MediaType, &p.Status, &p.PublishDate, &p.ViewsCount, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *BlogRepository) Create(ctx context.Context, p *models.BlogPost) error {
	logger.Log.Info("Создание записи блога (repo)", zap.Int("author_id", p.AuthorID), zap.String("title", p.Title))
	var id int
	err := r.db.QueryRow(ctx, `
	INSERT INTO blog_posts (author_id, title, title_ar, content, content_ar, media_url, media_type, status, publish_date)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	RETURNING id`,
		p.AuthorID, p.Title, p.TitleAr, p.Content, p.ContentAr, p.MediaURL, p.MediaType, p.Status, p.PublishDate,
	).Scan(&id)
	if err != nil {
		logger.Log.Error("Ошибка создания записи блога (repo)", zap.Error(err))
		return wrapErr("create blog post", err)
	}
	created, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	*p = *created
	return nil
}

func (r *BlogRepository) GetByID(ctx context.Context, id int) (*models.BlogPost, error) {
	p, err := scanBlogPost(r.db.QueryRow(ctx, `
	SELECT `+blogColumns+` FROM blog_posts b LEFT JOIN users u ON u.id = b.author_id
	WHERE b.id = $1`, id))
	return p, wrapErr("get blog post", err)
}

func (r *BlogRepository) ListPublished(ctx context.Context, limit int) ([]*models.BlogPost, error) {
	rows, err := r.db.Query(ctx, `
	SELECT `+blogColumns+` FROM blog_posts b LEFT JOIN users u ON u.id = b.author_id
	WHERE b.status = 'published'
	ORDER BY b.publish_date DESC NULLS LAST, b.created_at DESC
	LIMIT $1`, limit)
	if err != nil {
		return nil, wrapErr("list blog posts", err)
	}
	defer rows.Close()

	out := []*models.BlogPost{}
	for rows.Next() {
		p, err := scanBlogPost(rows)
		if err != nil {
			return nil, wrapErr("scan blog post", err)
		}
		out = append(out, p)
	}
	return out, wrapErr("list blog posts", rows.Err())
}

// ReadPublished увеличивает просмотры опубликованной записи и возвращает её.
func (r *BlogRepository) ReadPublished(ctx context.Context, id int) (*models.BlogPost, error) {
	p, err := scanBlogPost(r.db.QueryRow(ctx, `
	WITH b AS (
		UPDATE blog_posts SET views_count = views_count + 1
		WHERE id = $1 AND status = 'published'
		RETURNING *
	)
	SELECT `+blogColumns+` FROM b LEFT JOIN users u ON u.id = b.author_id`, id))
	return p, wrapErr("read blog post", err)
}

func (r *BlogRepository) Update(ctx context.Context, id int, in *models.BlogPostInput, publishDate *time.Time) (*models.BlogPost, error) {
	logger.Log.Info("Обновление записи блога (repo)", zap.Int("post_id", id))
	var b setBuilder
	if in.Title != nil {
		b.add("title", *in.Title)
	}
	if in.TitleAr != nil {
		b.add("title_ar", *in.TitleAr)
	}
	if in.Content != nil {
		b.add("content", *in.Content)
	}
	if in.ContentAr != nil {
		b.add("content_ar", *in.ContentAr)
	}
	if in.Status != nil {
		b.add("status", *in.Status)
	}
	if in.MediaURL != nil {
		b.add("media_url", *in.MediaURL)
	}
	if in.MediaType != nil {
		b.add("media_type", *in.MediaType)
	}
	if publishDate != nil {
		b.add("publish_date", *publishDate)
	}
	if !b.empty() {
		b.add("updated_at", time.Now())
		query := fmt.Sprintf(`UPDATE blog_posts SET %s WHERE id = %s`, b.clause(), b.arg(id))
		tag, err := r.db.Exec(ctx, query, b.args...)
		if err != nil {
			logger.Log.Error("Ошибка обновления записи блога (repo)", zap.Error(err))
			return nil, wrapErr("update blog post", err)
		}
		if tag.RowsAffected() == 0 {
			return nil, fmt.Errorf("update blog post: %w", ErrNotFound)
		}
	}
	return r.GetByID(ctx, id)
}
