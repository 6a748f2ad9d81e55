package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"mahattati/internal/logger"
	"mahattati/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type AdRepository struct {
	db *pgxpool.Pool
}

func NewAdRepository(db *pgxpool.Pool) *AdRepository {
	return &AdRepository{db: db}
}

const adColumns = `id, user_id, title, description, location_latitude, location_longitude,
	address, city, region, facilities, fuel_types, images, status, views_count,
	is_promoted, promotion_type, promotion_expires_at, created_at, updated_at`

// distanceExpr: расстояние в км от точки ($lat, $lon) до объявления.
// acos зажат в [-1, 1], иначе на совпадающих точках бывает NaN.
func distanceExpr(latArg, lonArg string) string {
	return fmt.Sprintf(`(6371 * acos(LEAST(1, GREATEST(-1,
		cos(radians(%[1]s)) * cos(radians(location_latitude)) *
		cos(radians(location_longitude) - radians(%[2]s)) +
		sin(radians(%[1]s)) * sin(radians(location_latitude))))))`, latArg, lonArg)
}

func scanAd(row pgx.Row, extra ...interface{}) (*models.Ad, error) {
	var a models.Ad
	dest := []interface{}{
		&a.ID,
		&a.UserID,
		&a.Title,
		&a.Description,
		&a.LocationLatitude,
		&a.LocationLongitude,
		&a.Address,
		&a.City,
		&a.Region,
		&a.Facilities,
		&a.FuelTypes,
		&a.Images,
		&a.Status,
		&a.ViewsCount,
		&a.IsPromoted,
		&a.PromotionType,
		&a.PromotionExpiresAt,
		&a.CreatedAt,
		&a.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	normalizeAd(&a)
	return &a, nil
}

func normalizeAd(a *models.Ad) {
	if a.Facilities == nil {
		a.Facilities = []string{}
	}
	if a.FuelTypes == nil {
		a.FuelTypes = []string{}
	}
	if a.Images == nil {
		a.Images = []string{}
	}
}

// jsonList: значение для jsonb-колонки, nil пишется как [].
func jsonList(v []string) []byte {
	if v == nil {
		v = []string{}
	}
	b, _ := json.Marshal(v)
	return b
}

func (r *AdRepository) Create(ctx context.Context, ad *models.Ad) error {
	logger.Log.Info("Создание объявления (repo)", zap.Int("user_id", ad.UserID), zap.String("title", ad.Title))
	query := `
	INSERT INTO ads (user_id, title, description, location_latitude, location_longitude,
		address, city, region, facilities, fuel_types, images, status)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	RETURNING ` + adColumns
	created, err := scanAd(r.db.QueryRow(ctx, query,
		ad.UserID,
		ad.Title,
		ad.Description,
		ad.LocationLatitude,
		ad.LocationLongitude,
		ad.Address,
		ad.City,
		ad.Region,
		jsonList(ad.Facilities),
		jsonList(ad.FuelTypes),
		jsonList(ad.Images),
		ad.Status,
	))
	if err != nil {
		logger.Log.Error("Ошибка создания объявления (repo)", zap.Error(err))
		return wrapErr("create ad", err)
	}
	*ad = *created
	return nil
}

func (r *AdRepository) GetByID(ctx context.Context, id int) (*models.Ad, error) {
	a, err := scanAd(r.db.QueryRow(ctx, `SELECT `+adColumns+` FROM ads WHERE id = $1`, id))
	return a, wrapErr("get ad", err)
}

func (r *AdRepository) List(ctx context.Context, f models.AdFilter) ([]*models.Ad, error) {
	var b setBuilder
	conds := []string{"status = " + b.arg(f.Status)}
	if f.OwnerID != nil {
		conds = append(conds, "user_id = "+b.arg(*f.OwnerID))
	}
	if f.Region != "" {
		conds = append(conds, "region = "+b.arg(f.Region))
	}
	if f.City != "" {
		conds = append(conds, "city = "+b.arg(f.City))
	}

	distance := "NULL::double precision"
	if p := f.Proximity; p != nil {
		distance = distanceExpr(b.arg(p.Latitude), b.arg(p.Longitude))
		conds = append(conds, distance+" <= "+b.arg(float64(p.RadiusKm)))
	}

	query := fmt.Sprintf(`SELECT %s, %s AS distance_km FROM ads WHERE %s ORDER BY created_at DESC LIMIT %s`,
		adColumns, distance, strings.Join(conds, " AND "), b.arg(f.Limit))

	logger.Log.Debug("Список объявлений (repo)", zap.String("status", string(f.Status)), zap.Int("conds", len(conds)))
	rows, err := r.db.Query(ctx, query, b.args...)
	if err != nil {
		logger.Log.Error("Ошибка получения объявлений (repo)", zap.Error(err))
		return nil, wrapErr("list ads", err)
	}
	defer rows.Close()

	ads := []*models.Ad{}
	for rows.Next() {
		var dist *float64
		a, err := scanAd(rows, &dist)
		if err != nil {
			return nil, wrapErr("scan ad", err)
		}
		a.DistanceKm = dist
		ads = append(ads, a)
	}
	return ads, wrapErr("list ads", rows.Err())
}

// IncrementViews атомарно увеличивает счётчик опубликованного объявления.
func (r *AdRepository) IncrementViews(ctx context.Context, id int) (int, error) {
	var views int
	err := r.db.QueryRow(ctx, `
	UPDATE ads SET views_count = views_count + 1
	WHERE id = $1 AND status = 'published'
	RETURNING views_count`, id).Scan(&views)
	return views, wrapErr("increment views", err)
}

func (r *AdRepository) Update(ctx context.Context, id int, in *models.UpdateAdInput) (*models.Ad, error) {
	logger.Log.Info("Обновление объявления (repo)", zap.Int("ad_id", id))
	var b setBuilder
	if in.Title != nil {
		b.add("title", *in.Title)
	}
	if in.Description != nil {
		b.add("description", *in.Description)
	}
	if in.LocationLatitude != nil {
		b.add("location_latitude", *in.LocationLatitude)
	}
	if in.LocationLongitude != nil {
		b.add("location_longitude", *in.LocationLongitude)
	}
	if in.Address != nil {
		b.add("address", *in.Address)
	}
	if in.City != nil {
		b.add("city", *in.City)
	}
	if in.Region != nil {
		b.add("region", *in.Region)
	}
	if in.Facilities != nil {
		b.add("facilities", jsonList(*in.Facilities))
	}
	if in.FuelTypes != nil {
		b.add("fuel_types", jsonList(*in.FuelTypes))
	}
	if in.Status != nil {
		b.add("status", *in.Status)
	}
	if in.Images != nil {
		b.add("images", jsonList(*in.Images))
	}
	if b.empty() {
		return r.GetByID(ctx, id)
	}
	b.add("updated_at", time.Now())

	query := fmt.Sprintf(`UPDATE ads SET %s WHERE id = %s RETURNING `+adColumns, b.clause(), b.arg(id))
	a, err := scanAd(r.db.QueryRow(ctx, query, b.args...))
	if err != nil {
		logger.Log.Error("Ошибка обновления объявления (repo)", zap.Error(err), zap.Int("ad_id", id))
	}
	return a, wrapErr("update ad", err)
}

func (r *AdRepository) Delete(ctx context.Context, id int) error {
	logger.Log.Info("Удаление объявления (repo)", zap.Int("ad_id", id))
	tag, err := r.db.Exec(ctx, `DELETE FROM ads WHERE id = $1`, id)
	if err != nil {
		return wrapErr("delete ad", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete ad: %w", ErrNotFound)
	}
	return nil
}

// Promote помечает объявление пользователя как продвигаемое. false: объявления нет или оно чужое.
func (r *AdRepository) Promote(ctx context.Context, adID, userID int, p models.Promotion) (bool, error) {
	tag, err := r.db.Exec(ctx, `
	UPDATE ads SET is_promoted = TRUE, promotion_type = $1, promotion_expires_at = $2, updated_at = NOW()
	WHERE id = $3 AND user_id = $4`, p.Type, p.ExpiresAt, adID, userID)
	if err != nil {
		return false, wrapErr("promote ad", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *AdRepository) ClearExpiredPromotions(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `
	UPDATE ads SET is_promoted = FALSE, promotion_type = NULL, promotion_expires_at = NULL
	WHERE is_promoted AND promotion_expires_at IS NOT NULL AND promotion_expires_at < NOW()`)
	if err != nil {
		return 0, wrapErr("clear promotions", err)
	}
	return tag.RowsAffected(), nil
}
