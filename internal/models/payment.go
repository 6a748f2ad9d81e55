package models

import "time"

const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"

	PaymentTypeAdPromotion  = "ad_promotion"
	PaymentTypeSubscription = "subscription"
	PaymentTypeAdUpload     = "ad_upload"

	GatewayStripe = "stripe"
	GatewayMada   = "mada"
)

type Payment struct {
	ID            int            `json:"id"`
	UserID        int            `json:"user_id"`
	Amount        float64        `json:"amount"`
	Currency      string         `json:"currency"`
	Gateway       string         `json:"payment_gateway"`
	PaymentType   string         `json:"payment_type"`
	Status        string         `json:"status"`
	TransactionID *string        `json:"transaction_id"`
	Metadata      map[string]any `json:"metadata"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

type CreatePaymentIntentInput struct {
	Amount      float64        `json:"amount" validate:"required,gte=0.01"`
	PaymentType string         `json:"payment_type" validate:"required,oneof=ad_promotion subscription ad_upload"`
	Currency    string         `json:"currency" validate:"omitempty,oneof=SAR USD"`
	Metadata    map[string]any `json:"metadata"`
}

type ConfirmPaymentInput struct {
	PaymentID     int    `json:"payment_id" validate:"required,gt=0"`
	TransactionID string `json:"transaction_id" validate:"required"`
}

type PaymentIntent struct {
	ClientSecret string `json:"client_secret"`
	PaymentID    int    `json:"payment_id"`
}

const (
	SubscriptionPending = "pending"
	SubscriptionPaid    = "paid"
	SubscriptionExpired = "expired"

	SubscriptionMonthly = "monthly"
)

type Subscription struct {
	ID            int       `json:"id"`
	UserID        int       `json:"user_id"`
	Type          string    `json:"subscription_type"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	PaymentStatus string    `json:"payment_status"`
	PaymentID     *int      `json:"payment_id"`
	CreatedAt     time.Time `json:"created_at"`
}

type CreateSubscriptionInput struct {
	PaymentID int    `json:"payment_id" validate:"required,gt=0"`
	Type      string `json:"subscription_type" validate:"required,oneof=monthly"`
}

type SubscriptionStatus struct {
	Active       bool          `json:"active"`
	Message      string        `json:"message,omitempty"`
	Subscription *Subscription `json:"subscription,omitempty"`
}
