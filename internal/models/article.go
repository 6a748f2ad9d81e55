package models

import "time"

type BlogStatus string

const (
	BlogDraft     BlogStatus = "draft"
	BlogPublished BlogStatus = "published"
)

// BlogPost: двуязычная запись блога с опциональным медиа.
type BlogPost struct {
	ID          int        `json:"id"`
	AuthorID    int        `json:"author_id"`
	AuthorName  string     `json:"author_name,omitempty"`
	Title       string     `json:"title"`
	TitleAr     *string    `json:"title_ar"`
	Content     string     `json:"content"`
	ContentAr   *string    `json:"content_ar"`
	MediaURL    *string    `json:"media_url"`
	MediaType   string     `json:"media_type"` // image|video|none
	Status      BlogStatus `json:"status"`
	PublishDate *time.Time `json:"publish_date"`
	ViewsCount  int        `json:"views_count"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// swagger:model BlogPostInput
type BlogPostInput struct {
	Title     *string `json:"title" validate:"omitempty,min=1,max=255" example:"Новые станции в Эр-Рияде"`
	TitleAr   *string `json:"title_ar" validate:"omitempty,max=255"`
	Content   *string `json:"content" validate:"omitempty,min=1"`
	ContentAr *string `json:"content_ar"`
	Status    *string `json:"status" validate:"omitempty,oneof=draft published"`
	MediaURL  *string `json:"-"`
	MediaType *string `json:"-"`
}

func (in *BlogPostInput) Empty() bool {
	return in.Title == nil && in.TitleAr == nil && in.Content == nil &&
		in.ContentAr == nil && in.Status == nil && in.MediaURL == nil
}
