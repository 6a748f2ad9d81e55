package models

import "time"

type SponsoredAd struct {
	ID        int        `json:"id"`
	CreatedBy int        `json:"created_by"`
	Title     *string    `json:"title"`
	MediaURL  string     `json:"media_url"`
	MediaType string     `json:"media_type"`
	Position  string     `json:"position"`
	LinkURL   *string    `json:"link_url"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
}

type SponsoredAdInput struct {
	Title     *string `json:"title" validate:"omitempty,max=255"`
	MediaURL  string  `json:"media_url" validate:"required,url"`
	MediaType string  `json:"media_type" validate:"required,oneof=image video"`
	Position  string  `json:"position" validate:"required,oneof=top_banner left_sidebar right_sidebar"`
	LinkURL   *string `json:"link_url" validate:"omitempty,url"`
	StartDate *string `json:"start_date" validate:"omitempty"`
	EndDate   *string `json:"end_date" validate:"omitempty"`
}
