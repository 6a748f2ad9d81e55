package models

import "time"

type AdStatus string

const (
	AdDraft     AdStatus = "draft"
	AdPublished AdStatus = "published"
)

func (s AdStatus) Valid() bool {
	return s == AdDraft || s == AdPublished
}

const MaxAdImages = 5

type Ad struct {
	ID                 int        `json:"id"`
	UserID             int        `json:"user_id"`
	Title              string     `json:"title"`
	Description        *string    `json:"description"`
	LocationLatitude   float64    `json:"location_latitude"`
	LocationLongitude  float64    `json:"location_longitude"`
	Address            *string    `json:"address"`
	City               *string    `json:"city"`
	Region             *string    `json:"region"`
	Facilities         []string   `json:"facilities"`
	FuelTypes          []string   `json:"fuel_types"`
	Images             []string   `json:"images"`
	Status             AdStatus   `json:"status"`
	ViewsCount         int        `json:"views_count"`
	IsPromoted         bool       `json:"is_promoted"`
	PromotionType      *string    `json:"promotion_type"`
	PromotionExpiresAt *time.Time `json:"promotion_expires_at"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`

	// DistanceKm заполняется только при поиске по радиусу.
	DistanceKm *float64 `json:"distance_km,omitempty"`
}

type CreateAdInput struct {
	Title             string   `json:"title" validate:"required,max=255"`
	Description       *string  `json:"description"`
	LocationLatitude  *float64 `json:"location_latitude" validate:"required,latitude"`
	LocationLongitude *float64 `json:"location_longitude" validate:"required,longitude"`
	Address           *string  `json:"address"`
	City              *string  `json:"city" validate:"omitempty,max=100"`
	Region            *string  `json:"region" validate:"omitempty,max=100"`
	Facilities        []string `json:"facilities"`
	FuelTypes         []string `json:"fuel_types"`
}

// UpdateAdInput: белый список изменяемых полей. nil означает, что поле не трогаем.
type UpdateAdInput struct {
	Title             *string   `json:"title" validate:"omitempty,min=1,max=255"`
	Description       *string   `json:"description"`
	LocationLatitude  *float64  `json:"location_latitude" validate:"omitempty,latitude"`
	LocationLongitude *float64  `json:"location_longitude" validate:"omitempty,longitude"`
	Address           *string   `json:"address"`
	City              *string   `json:"city" validate:"omitempty,max=100"`
	Region            *string   `json:"region" validate:"omitempty,max=100"`
	Facilities        *[]string `json:"facilities"`
	FuelTypes         *[]string `json:"fuel_types"`
	Status            *AdStatus `json:"status"`
	Images            *[]string `json:"-"`
}

func (in *UpdateAdInput) Empty() bool {
	return in.Title == nil && in.Description == nil && in.LocationLatitude == nil &&
		in.LocationLongitude == nil && in.Address == nil && in.City == nil &&
		in.Region == nil && in.Facilities == nil && in.FuelTypes == nil &&
		in.Status == nil && in.Images == nil
}

// Proximity: поиск в радиусе RadiusKm от точки.
type Proximity struct {
	Latitude  float64
	Longitude float64
	RadiusKm  int
}

type AdFilter struct {
	Status    AdStatus
	OwnerID   *int
	Region    string
	City      string
	Proximity *Proximity
	Limit     int
}

// AdQuery: сырые параметры GET /api/ads.
type AdQuery struct {
	Status    string
	Region    string
	City      string
	Latitude  string
	Longitude string
	Radius    string
}

type Promotion struct {
	Type      string
	ExpiresAt time.Time
}
