package models

import "time"

const (
	ReportUsers         = "users"
	ReportAds           = "ads"
	ReportPayments      = "payments"
	ReportSubscriptions = "subscriptions"
)

type ReportRange struct {
	From *time.Time
	To   *time.Time
}

type CountRow struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

type UsersReport struct {
	ByRole []CountRow `json:"by_role"`
	Total  int        `json:"total"`
}

type AdsReport struct {
	ByStatus []CountRow `json:"by_status"`
	Total    int        `json:"total"`
	Promoted int        `json:"promoted"`
}

type GatewayStatusRow struct {
	Gateway string  `json:"payment_gateway"`
	Status  string  `json:"status"`
	Count   int     `json:"count"`
	Amount  float64 `json:"total_amount"`
}

type PaymentsReport struct {
	ByGatewayStatus []GatewayStatusRow `json:"by_gateway_status"`
	TotalRevenue    float64            `json:"total_revenue"`
}

type SubscriptionsReport struct {
	ByStatus []CountRow `json:"by_status"`
	Active   int        `json:"active"`
}

type AuditLog struct {
	ID          int            `json:"id"`
	UserID      *int           `json:"user_id"`
	EventType   string         `json:"event_type"`
	Description string         `json:"description"`
	IPAddress   *string        `json:"ip_address"`
	Metadata    map[string]any `json:"metadata"`
	CreatedAt   time.Time      `json:"created_at"`
}

type AuditFilter struct {
	EventType string
	UserID    *int
	Limit     int
	Offset    int
}

// Page: обёртка для постраничных списков.
type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
}

func NewPage[T any](items []T, total, page, limit int) Page[T] {
	pages := 0
	if limit > 0 {
		pages = total / limit
		if total%limit > 0 {
			pages++
		}
	}
	if items == nil {
		items = []T{}
	}
	return Page[T]{Items: items, Total: total, Page: page, Limit: limit, Pages: pages}
}
