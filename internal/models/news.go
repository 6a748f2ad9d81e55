package models

import "time"

// NewsTickerItem: строка бегущей ленты на главной.
type NewsTickerItem struct {
	ID        int       `json:"id"`
	Content   string    `json:"content"`
	ContentAr *string   `json:"content_ar"`
	Priority  int       `json:"priority"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

type NewsTickerInput struct {
	Content   string  `json:"content" validate:"required,max=500"`
	ContentAr *string `json:"content_ar" validate:"omitempty,max=500"`
	Priority  int     `json:"priority" validate:"gte=0,lte=1000"`
	IsActive  *bool   `json:"is_active"`
}
