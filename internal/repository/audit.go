package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"mahattati/internal/logger"
	"mahattati/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// AuditRepository: журнал событий (таблица logs) и агрегаты для отчётов.
type AuditRepository struct {
	db *pgxpool.Pool
}

func NewAuditRepository(db *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Create(ctx context.Context, l *models.AuditLog) error {
	meta := l.Metadata
	if meta == nil {
		meta = map[string]any{}
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	err = r.db.QueryRow(ctx, `
	INSERT INTO logs (user_id, event_type, description, ip_address, metadata, created_at)
	VALUES ($1, $2, $3, $4, $5, COALESCE($6, NOW()))
	RETURNING id, created_at`,
		l.UserID, l.EventType, l.Description, l.IPAddress, metaJSON, nullTime(l.CreatedAt),
	).Scan(&l.ID, &l.CreatedAt)
	if err != nil {
		logger.Log.Error("Ошибка записи события аудита (repo)", zap.Error(err), zap.String("event", l.EventType))
	}
	return wrapErr("create audit log", err)
}

func (r *AuditRepository) List(ctx context.Context, f models.AuditFilter) ([]*models.AuditLog, int, error) {
	var b setBuilder
	var conds []string
	if f.EventType != "" {
		conds = append(conds, "event_type = "+b.arg(f.EventType))
	}
	if f.UserID != nil {
		conds = append(conds, "user_id = "+b.arg(*f.UserID))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM logs`+where, b.args...).Scan(&total); err != nil {
		return nil, 0, wrapErr("count logs", err)
	}

	query := fmt.Sprintf(`SELECT id, user_id, event_type, description, ip_address, metadata, created_at
	FROM logs%s ORDER BY created_at DESC, id DESC LIMIT %s OFFSET %s`, where, b.arg(f.Limit), b.arg(f.Offset))
	rows, err := r.db.Query(ctx, query, b.args...)
	if err != nil {
		logger.Log.Error("Ошибка получения журнала (repo)", zap.Error(err))
		return nil, 0, wrapErr("list logs", err)
	}
	defer rows.Close()

	out := []*models.AuditLog{}
	for rows.Next() {
		var l models.AuditLog
		if err := rows.Scan(&l.ID, &l.UserID, &l.EventType, &l.Description, &l.IPAddress, &l.Metadata, &l.CreatedAt); err != nil {
			return nil, 0, wrapErr("scan log", err)
		}
		out = append(out, &l)
	}
	return out, total, wrapErr("list logs", rows.Err())
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// rangeWhere: условие по created_at для отчётов.
func rangeWhere(b *setBuilder, rng models.ReportRange) string {
	var conds []string
	if rng.From != nil {
		conds = append(conds, "created_at >= "+b.arg(*rng.From))
	}
	if rng.To != nil {
		conds = append(conds, "created_at <= "+b.arg(*rng.To))
	}
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

func (r *AuditRepository) countBy(ctx context.Context, table, column string, rng models.ReportRange) ([]models.CountRow, int, error) {
	var b setBuilder
	query := fmt.Sprintf(`SELECT %[2]s::text, COUNT(*) FROM %[1]s%[3]s GROUP BY %[2]s ORDER BY %[2]s`, table, column, rangeWhere(&b, rng))
	rows, err := r.db.Query(ctx, query, b.args...)
	if err != nil {
		return nil, 0, wrapErr("report "+table, err)
	}
	defer rows.Close()

	out := []models.CountRow{}
	total := 0
	for rows.Next() {
		var c models.CountRow
		if err := rows.Scan(&c.Key, &c.Count); err != nil {
			return nil, 0, wrapErr("scan report row", err)
		}
		total += c.Count
		out = append(out, c)
	}
	return out, total, wrapErr("report "+table, rows.Err())
}

func (r *AuditRepository) UsersReport(ctx context.Context, rng models.ReportRange) (*models.UsersReport, error) {
	rows, total, err := r.countBy(ctx, "users", "role", rng)
	if err != nil {
		return nil, err
	}
	return &models.UsersReport{ByRole: rows, Total: total}, nil
}

func (r *AuditRepository) AdsReport(ctx context.Context, rng models.ReportRange) (*models.AdsReport, error) {
	rows, total, err := r.countBy(ctx, "ads", "status", rng)
	if err != nil {
		return nil, err
	}
	var b setBuilder
	where := rangeWhere(&b, rng)
	promotedCond := " WHERE is_promoted"
	if where != "" {
		promotedCond = where + " AND is_promoted"
	}
	var promoted int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM ads`+promotedCond, b.args...).Scan(&promoted); err != nil {
		return nil, wrapErr("report promoted", err)
	}
	return &models.AdsReport{ByStatus: rows, Total: total, Promoted: promoted}, nil
}

func (r *AuditRepository) PaymentsReport(ctx context.Context, rng models.ReportRange) (*models.PaymentsReport, error) {
	var b setBuilder
	query := `SELECT payment_gateway, status, COUNT(*), COALESCE(SUM(amount), 0)::float8 FROM payments` +
		rangeWhere(&b, rng) + ` GROUP BY payment_gateway, status ORDER BY payment_gateway, status`
	rows, err := r.db.Query(ctx, query, b.args...)
	if err != nil {
		return nil, wrapErr("report payments", err)
	}
	defer rows.Close()

	rep := &models.PaymentsReport{ByGatewayStatus: []models.GatewayStatusRow{}}
	for rows.Next() {
		var g models.GatewayStatusRow
		if err := rows.Scan(&g.Gateway, &g.Status, &g.Count, &g.Amount); err != nil {
			return nil, wrapErr("scan payments report", err)
		}
		if g.Status == models.PaymentCompleted {
			rep.TotalRevenue += g.Amount
		}
		rep.ByGatewayStatus = append(rep.ByGatewayStatus, g)
	}
	return rep, wrapErr("report payments", rows.Err())
}

func (r *AuditRepository) SubscriptionsReport(ctx context.Context, rng models.ReportRange) (*models.SubscriptionsReport, error) {
	rows, _, err := r.countBy(ctx, "subscriptions", "payment_status", rng)
	if err != nil {
		return nil, err
	}
	var active int
	err = r.db.QueryRow(ctx, `SELECT COUNT(*) FROM subscriptions WHERE payment_status = 'paid' AND end_date >= CURRENT_DATE`).Scan(&active)
	if err != nil {
		return nil, wrapErr("report active subscriptions", err)
	}
	return &models.SubscriptionsReport{ByStatus: rows, Active: active}, nil
}
