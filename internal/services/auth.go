package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"mahattati/internal/apperrors"
	"mahattati/internal/events"
	"mahattati/internal/logger"
	"mahattati/internal/models"
	"mahattati/internal/policy"
	"mahattati/internal/repository"
	"mahattati/internal/utils"
	"mahattati/internal/utils/helpers"

	"go.uber.org/zap"
)

const ForgotPasswordMessage = "If email exists, password reset link has been sent"

type UserRepo interface {
	Create(ctx context.Context, user *models.User) error
	EmailExists(ctx context.Context, email string) (bool, error)
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	MarkEmailVerified(ctx context.Context, email, token string) (bool, error)
	SetResetToken(ctx context.Context, userID int, token string, expires time.Time) error
	ConsumeResetToken(ctx context.Context, userID int, token, passwordHash string) (bool, error)
	UpdatePassword(ctx context.Context, userID int, passwordHash string) error
	UpdateProfile(ctx context.Context, userID int, in *models.UpdateProfileRequest) (*models.User, error)
}

// Mailer: внешний отправщик писем.
type Mailer interface {
	Send(ctx context.Context, to, subject, html string) error
}

type AuthService struct {
	repo      UserRepo
	tokens    *utils.TokenIssuer
	mailer    Mailer
	audit     events.Recorder
	clientURL string
}

func NewAuthService(repo UserRepo, tokens *utils.TokenIssuer, mailer Mailer, audit events.Recorder, clientURL string) *AuthService {
	return &AuthService{repo: repo, tokens: tokens, mailer: mailer, audit: audit, clientURL: strings.TrimRight(clientURL, "/")}
}

type RegisterInput struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Email       string  `json:"email" validate:"required,email"`
	Password    string  `json:"password" validate:"required,min=6"`
	Role        string  `json:"role" validate:"required,oneof=advertiser subscriber"`
	Phone       *string `json:"phone" validate:"omitempty,max=50"`
	CompanyName *string `json:"company_name" validate:"omitempty,max=255"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ResetPasswordInput struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

type AuthResult struct {
	Message string             `json:"message,omitempty"`
	Token   string             `json:"token"`
	User    models.UserSummary `json:"user"`
}

func (s *AuthService) Tokens() *utils.TokenIssuer { return s.tokens }

func (s *AuthService) Register(ctx context.Context, in *RegisterInput) (*AuthResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := helpers.Validate(in); err != nil {
		return nil, err
	}
	logger.WithCtx(ctx).Info("Регистрация пользователя (service)", zap.String("email", in.Email), zap.String("role", in.Role))

	exists, err := s.repo.EmailExists(ctx, in.Email)
	if err != nil {
		return nil, apperrors.Upstream("Server error during registration", err)
	}
	if exists {
		return nil, apperrors.Conflict("User already exists with this email")
	}

	hashed, err := utils.HashPassword(in.Password)
	if err != nil {
		logger.Log.Error("Ошибка хеширования пароля", zap.Error(err))
		return nil, apperrors.Upstream("Server error during registration", err)
	}

	verifyToken, err := s.tokens.Issue(0, in.Email, utils.PurposeVerify, utils.VerifyTokenTTL)
	if err != nil {
		return nil, apperrors.Upstream("Server error during registration", err)
	}

	user := &models.User{
		Name:               in.Name,
		Email:              in.Email,
		PasswordHash:       hashed,
		Role:               policy.Role(in.Role),
		Phone:              in.Phone,
		CompanyName:        in.CompanyName,
		LanguagePreference: "ar",
		VerificationToken:  &verifyToken,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Conflict("User already exists with this email")
		}
		return nil, apperrors.Upstream("Server error during registration", err)
	}

	link := s.clientURL + "/verify-email/" + verifyToken
	s.sendMail(ctx, user.Email, "Verify Your Email - Mahattati", helpers.BuildVerificationHTML(user.Name, link))

	token, err := s.tokens.IssueSession(user.ID)
	if err != nil {
		return nil, apperrors.Upstream("Server error during registration", err)
	}

	s.audit.Record(ctx, events.New(ctx, user.ID, events.UserRegistered, "User registered", map[string]any{"role": user.Role}))
	logger.WithCtx(ctx).Info("Пользователь зарегистрирован (service)", zap.Int("user_id", user.ID))

	return &AuthResult{
		Message: "User registered successfully. Please check your email for verification.",
		Token:   token,
		User:    models.UserSummary{ID: user.ID, Name: user.Name, Email: user.Email, Role: user.Role},
	}, nil
}

// Login не различает «нет пользователя» и «неверный пароль».
func (s *AuthService) Login(ctx context.Context, in *LoginInput) (*AuthResult, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := helpers.Validate(in); err != nil {
		return nil, err
	}

	user, err := s.repo.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logger.WithCtx(ctx).Warn("Пользователь не найден (service)", zap.String("email", in.Email))
			return nil, apperrors.Unauthenticated("Invalid credentials", nil)
		}
		return nil, apperrors.Upstream("Server error during login", err)
	}

	if !utils.CheckPasswordHash(in.Password, user.PasswordHash) {
		logger.WithCtx(ctx).Warn("Неверный пароль (service)", zap.Int("user_id", user.ID))
		return nil, apperrors.Unauthenticated("Invalid credentials", nil)
	}

	token, err := s.tokens.IssueSession(user.ID)
	if err != nil {
		return nil, apperrors.Upstream("Server error during login", err)
	}

	s.audit.Record(ctx, events.New(ctx, user.ID, events.UserLogin, "User logged in", nil))
	verified := user.EmailVerified
	return &AuthResult{
		Token: token,
		User:  models.UserSummary{ID: user.ID, Name: user.Name, Email: user.Email, Role: user.Role, EmailVerified: &verified},
	}, nil
}

func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	const msg = "Invalid or expired verification token"
	claims, err := s.tokens.Verify(token, utils.PurposeVerify)
	if err != nil {
		return apperrors.BadRequest(msg, err)
	}
	ok, err := s.repo.MarkEmailVerified(ctx, claims.Email, token)
	if err != nil {
		return apperrors.Upstream("Server error", err)
	}
	if !ok {
		return apperrors.BadRequest(msg, apperrors.ErrTokenAlreadyUsedOrRevoked)
	}
	if u, err := s.repo.GetByEmail(ctx, claims.Email); err == nil {
		s.audit.Record(ctx, events.New(ctx, u.ID, events.UserEmailVerified, "Email verified", nil))
	}
	return nil
}

// ForgotPassword никогда не сообщает, есть ли такой email: внутренние ошибки только логируются.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) string {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return ForgotPasswordMessage
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			logger.WithCtx(ctx).Error("Ошибка поиска пользователя для сброса пароля", zap.Error(err))
		}
		return ForgotPasswordMessage
	}

	token, err := s.tokens.Issue(user.ID, "", utils.PurposeReset, utils.ResetTokenTTL)
	if err != nil {
		logger.WithCtx(ctx).Error("Ошибка генерации токена сброса", zap.Error(err))
		return ForgotPasswordMessage
	}
	if err := s.repo.SetResetToken(ctx, user.ID, token, time.Now().Add(utils.ResetTokenTTL)); err != nil {
		logger.WithCtx(ctx).Error("Ошибка сохранения токена сброса", zap.Error(err))
		return ForgotPasswordMessage
	}

	link := s.clientURL + "/reset-password/" + token
	s.sendMail(ctx, user.Email, "Password Reset Request - Mahattati", helpers.BuildPasswordResetHTML(user.Name, link))
	logger.WithCtx(ctx).Info("Ссылка для сброса пароля отправлена (service)", zap.Int("user_id", user.ID))
	return ForgotPasswordMessage
}

func (s *AuthService) ResetPassword(ctx context.Context, in *ResetPasswordInput) error {
	const msg = "Invalid or expired reset token"
	if err := helpers.Validate(in); err != nil {
		return err
	}
	claims, err := s.tokens.Verify(in.Token, utils.PurposeReset)
	if err != nil {
		return apperrors.BadRequest(msg, err)
	}

	hashed, err := utils.HashPassword(in.Password)
	if err != nil {
		return apperrors.Upstream("Server error", err)
	}
	ok, err := s.repo.ConsumeResetToken(ctx, claims.UserID, in.Token, hashed)
	if err != nil {
		return apperrors.Upstream("Server error", err)
	}
	if !ok {
		logger.WithCtx(ctx).Warn("Токен сброса уже использован или отозван", zap.Int("user_id", claims.UserID))
		return apperrors.BadRequest(msg, apperrors.ErrTokenAlreadyUsedOrRevoked)
	}

	s.audit.Record(ctx, events.New(ctx, claims.UserID, events.UserPasswordReset, "Password reset", nil))
	return nil
}

// Authenticate проверяет bearer-токен для middleware: и сам токен, и то, что пользователь существует.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.tokens.Verify(token, utils.PurposeSession)
	if err != nil {
		return nil, apperrors.Unauthenticated("Invalid or expired token", err)
	}
	user, err := s.repo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.Unauthenticated("User not found", err)
		}
		return nil, apperrors.Upstream("Server error", err)
	}
	return user, nil
}

func (s *AuthService) sendMail(ctx context.Context, to, subject, html string) {
	if s.mailer == nil {
		return
	}
	if err := s.mailer.Send(ctx, to, subject, html); err != nil {
		logger.WithCtx(ctx).Warn("Письмо не отправлено", zap.String("to", to), zap.Error(err))
	}
}
