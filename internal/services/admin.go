package services

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"mahattati/internal/apperrors"
	"mahattati/internal/events"
	"mahattati/internal/logger"
	"mahattati/internal/models"
	"mahattati/internal/policy"
	"mahattati/internal/repository"
	"mahattati/internal/utils/helpers"

	"go.uber.org/zap"
)

const (
	DefaultUsersPageSize = 20
	MaxUsersPageSize     = 100
	DefaultLogsPageSize  = 100
	MaxLogsPageSize      = 1000
)

type AdminUserRepo interface {
	GetByID(ctx context.Context, id int) (*models.User, error)
	AdminUpdate(ctx context.Context, userID int, in *models.AdminUpdateUserRequest) (*models.User, error)
	List(ctx context.Context, f models.UserFilter) ([]*models.User, int, error)
}

type AuditRepo interface {
	List(ctx context.Context, f models.AuditFilter) ([]*models.AuditLog, int, error)
	UsersReport(ctx context.Context, rng models.ReportRange) (*models.UsersReport, error)
	AdsReport(ctx context.Context, rng models.ReportRange) (*models.AdsReport, error)
	PaymentsReport(ctx context.Context, rng models.ReportRange) (*models.PaymentsReport, error)
	SubscriptionsReport(ctx context.Context, rng models.ReportRange) (*models.SubscriptionsReport, error)
}

type AdminService struct {
	users AdminUserRepo
	audit AuditRepo
	rec   events.Recorder
	now   func() time.Time
}

func NewAdminService(users AdminUserRepo, audit AuditRepo, rec events.Recorder) *AdminService {
	return &AdminService{users: users, audit: audit, rec: rec, now: time.Now}
}

// pageParams разбирает page/limit. Пустые значения дают дефолты, мусор даёт ошибку валидации.
func pageParams(rawPage, rawLimit string, def, max int) (page, limit int, err error) {
	page, limit = 1, def
	var fields []apperrors.FieldError
	if rawPage = strings.TrimSpace(rawPage); rawPage != "" {
		if page, err = strconv.Atoi(rawPage); err != nil || page < 1 {
			fields = append(fields, apperrors.Field("page", "page must be a positive integer"))
		}
	}
	if rawLimit = strings.TrimSpace(rawLimit); rawLimit != "" {
		if limit, err = strconv.Atoi(rawLimit); err != nil || limit < 1 || limit > max {
			fields = append(fields, apperrors.Field("limit", "limit must be between 1 and "+strconv.Itoa(max)))
		}
	}
	if len(fields) > 0 {
		return 0, 0, apperrors.Validation("Validation failed", fields...)
	}
	return page, limit, nil
}

func (s *AdminService) ListUsers(ctx context.Context, role, rawPage, rawLimit string) (*models.Page[models.UserProfile], error) {
	page, limit, err := pageParams(rawPage, rawLimit, DefaultUsersPageSize, MaxUsersPageSize)
	if err != nil {
		return nil, err
	}
	role = strings.TrimSpace(role)
	if role != "" {
		if _, ok := policy.ParseRole(role); !ok {
			return nil, apperrors.Validation("Validation failed", apperrors.Field("role", "Invalid role"))
		}
	}

	users, total, err := s.users.List(ctx, models.UserFilter{Role: role, Limit: limit, Offset: (page - 1) * limit})
	if err != nil {
		return nil, apperrors.Upstream("Server error", err)
	}
	profiles := make([]models.UserProfile, 0, len(users))
	for _, u := range users {
		profiles = append(profiles, u.Profile())
	}
	p := models.NewPage(profiles, total, page, limit)
	return &p, nil
}

// UpdateUser: единственное место, где может смениться роль пользователя.
func (s *AdminService) UpdateUser(ctx context.Context, caller *models.User, id int, in *models.AdminUpdateUserRequest) (*models.UserProfile, error) {
	if !policy.Allow(caller.Role, policy.UserUpdate, caller.ID == id) {
		return nil, apperrors.Forbidden("Access denied")
	}
	if in.Email != nil {
		e := strings.ToLower(strings.TrimSpace(*in.Email))
		in.Email = &e
	}
	if err := helpers.Validate(in); err != nil {
		return nil, err
	}
	if in.Empty() {
		return nil, apperrors.BadRequest("No fields to update", nil)
	}

	u, err := s.users.AdminUpdate(ctx, id, in)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, apperrors.NotFound("User not found")
		case errors.Is(err, repository.ErrDuplicate):
			return nil, apperrors.Conflict("User already exists with this email")
		}
		return nil, apperrors.Upstream("Server error", err)
	}

	meta := map[string]any{"target_user_id": id}
	if in.Role != nil {
		meta["role"] = *in.Role
	}
	s.rec.Record(ctx, events.New(ctx, caller.ID, events.AdminUserUpdated, "User updated by admin", meta))
	logger.WithCtx(ctx).Info("Пользователь изменён администратором (service)", zap.Int("target_id", id))
	p := u.Profile()
	return &p, nil
}

func parseRange(rawStart, rawEnd string) (models.ReportRange, error) {
	var rng models.ReportRange
	var fields []apperrors.FieldError
	if strings.TrimSpace(rawStart) != "" {
		t, err := parseDate(rawStart)
		if err != nil {
			fields = append(fields, apperrors.Field("start_date", "start_date must be an ISO-8601 date"))
		} else {
			rng.From = &t
		}
	}
	if strings.TrimSpace(rawEnd) != "" {
		t, err := parseDate(rawEnd)
		if err != nil {
			fields = append(fields, apperrors.Field("end_date", "end_date must be an ISO-8601 date"))
		} else {
			// дата без времени включает весь день
			if len(strings.TrimSpace(rawEnd)) == len("2006-01-02") {
				t = t.Add(24*time.Hour - time.Nanosecond)
			}
			rng.To = &t
		}
	}
	if len(fields) > 0 {
		return rng, apperrors.Validation("Validation failed", fields...)
	}
	return rng, nil
}

type ReportResult struct {
	Report      any       `json:"report"`
	GeneratedAt time.Time `json:"generated_at"`
}

func (s *AdminService) Report(ctx context.Context, typ, rawStart, rawEnd string) (*ReportResult, error) {
	rng, err := parseRange(rawStart, rawEnd)
	if err != nil {
		return nil, err
	}

	var report any
	switch strings.TrimSpace(typ) {
	case models.ReportUsers:
		report, err = s.audit.UsersReport(ctx, rng)
	case models.ReportAds:
		report, err = s.audit.AdsReport(ctx, rng)
	case models.ReportPayments:
		report, err = s.audit.PaymentsReport(ctx, rng)
	case models.ReportSubscriptions:
		report, err = s.audit.SubscriptionsReport(ctx, rng)
	default:
		return nil, apperrors.Validation("Validation failed", apperrors.Field("type", "Invalid report type"))
	}
	if err != nil {
		logger.WithCtx(ctx).Error("Ошибка формирования отчёта (service)", zap.String("type", typ), zap.Error(err))
		return nil, apperrors.Upstream("Server error", err)
	}
	return &ReportResult{Report: report, GeneratedAt: s.now().UTC()}, nil
}

func (s *AdminService) Logs(ctx context.Context, eventType, rawUserID, rawPage, rawLimit string) (*models.Page[*models.AuditLog], error) {
	page, limit, err := pageParams(rawPage, rawLimit, DefaultLogsPageSize, MaxLogsPageSize)
	if err != nil {
		return nil, err
	}
	f := models.AuditFilter{EventType: strings.TrimSpace(eventType), Limit: limit, Offset: (page - 1) * limit}
	if rawUserID = strings.TrimSpace(rawUserID); rawUserID != "" {
		id, err := strconv.Atoi(rawUserID)
		if err != nil || id < 1 {
			return nil, apperrors.Validation("Validation failed", apperrors.Field("user_id", "user_id must be a positive integer"))
		}
		f.UserID = &id
	}

	logs, total, err := s.audit.List(ctx, f)
	if err != nil {
		return nil, apperrors.Upstream("Server error", err)
	}
	p := models.NewPage(logs, total, page, limit)
	return &p, nil
}
