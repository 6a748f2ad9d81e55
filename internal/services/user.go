package services

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"

	"mahattati/internal/apperrors"
	"mahattati/internal/events"
	"mahattati/internal/logger"
	"mahattati/internal/models"
	"mahattati/internal/repository"
	"mahattati/internal/storage"
	"mahattati/internal/utils"
	"mahattati/internal/utils/helpers"

	"go.uber.org/zap"
)

const MaxProfileImageSize = 2 << 20

type ChangePasswordInput struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6"`
}

type UserService struct {
	repo  UserRepo
	media MediaStore
	audit events.Recorder
	rule  storage.Rule
}

func NewUserService(repo UserRepo, media MediaStore, audit events.Recorder) *UserService {
	return &UserService{
		repo:  repo,
		media: media,
		audit: audit,
		rule:  storage.Rule{Prefix: "profiles", MaxSize: MaxProfileImageSize},
	}
}

func (s *UserService) Profile(ctx context.Context, id int) (*models.UserProfile, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("User not found")
		}
		return nil, apperrors.Upstream("Server error", err)
	}
	p := u.Profile()
	return &p, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, caller *models.User, in *models.UpdateProfileRequest, image *multipart.FileHeader) (*models.UserProfile, error) {
	if in.Name != nil {
		n := strings.TrimSpace(*in.Name)
		if n == "" {
			return nil, apperrors.Validation("Validation failed", apperrors.Field("name", "Name cannot be empty"))
		}
		in.Name = &n
	}
	in.Phone = trimKeepEmpty(in.Phone)
	in.CompanyName = trimKeepEmpty(in.CompanyName)
	if err := helpers.Validate(in); err != nil {
		return nil, err
	}

	if image != nil {
		if s.media == nil {
			return nil, apperrors.Upstream("File storage is not configured", nil)
		}
		up, err := s.media.Save(ctx, image, s.rule)
		if err != nil {
			return nil, err
		}
		in.ProfileImage = &up.URL
	}
	if in.Empty() {
		return nil, apperrors.BadRequest("No fields to update", nil)
	}

	u, err := s.repo.UpdateProfile(ctx, caller.ID, in)
	if err != nil {
		if in.ProfileImage != nil {
			s.media.DeleteAll(context.WithoutCancel(ctx), []string{*in.ProfileImage})
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("User not found")
		}
		return nil, apperrors.Upstream("Server error", err)
	}
	if in.ProfileImage != nil && caller.ProfileImage != nil {
		s.media.DeleteAll(context.WithoutCancel(ctx), []string{*caller.ProfileImage})
	}

	p := u.Profile()
	return &p, nil
}

// trimKeepEmpty разрешает пустую строку: так пользователь очищает необязательное поле.
func trimKeepEmpty(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	return &v
}

func (s *UserService) ChangePassword(ctx context.Context, caller *models.User, in *ChangePasswordInput) error {
	if err := helpers.Validate(in); err != nil {
		return err
	}
	// caller из middleware, но хеш берём свежий
	u, err := s.repo.GetByID(ctx, caller.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("User not found")
		}
		return apperrors.Upstream("Server error", err)
	}
	if !utils.CheckPasswordHash(in.CurrentPassword, u.PasswordHash) {
		logger.WithCtx(ctx).Warn("Неверный текущий пароль (service)", zap.Int("user_id", u.ID))
		return apperrors.BadRequest("Current password is incorrect", nil)
	}

	hashed, err := utils.HashPassword(in.NewPassword)
	if err != nil {
		return apperrors.Upstream("Server error", err)
	}
	if err := s.repo.UpdatePassword(ctx, u.ID, hashed); err != nil {
		return apperrors.Upstream("Server error", err)
	}
	s.audit.Record(ctx, events.New(ctx, u.ID, events.UserPasswordChanged, "Password changed", nil))
	return nil
}
