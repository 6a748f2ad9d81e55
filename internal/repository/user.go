package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"mahattati/internal/logger"
	"mahattati/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, name, email, password_hash, role, phone, company_name, profile_image,
	language_preference, email_verified, verification_token, reset_password_token,
	reset_password_expires, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.Phone,
		&u.CompanyName,
		&u.ProfileImage,
		&u.LanguagePreference,
		&u.EmailVerified,
		&u.VerificationToken,
		&u.ResetPasswordToken,
		&u.ResetPasswordExpires,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	logger.Log.Info("Создание пользователя (repo)", zap.String("email", user.Email), zap.String("role", string(user.Role)))
	query := `
	INSERT INTO users (name, email, password_hash, role, phone, company_name, language_preference, verification_token)
	VALUES ($1, lower($2), $3, $4, $5, $6, $7, $8)
	RETURNING id, email, created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.Phone,
		user.CompanyName,
		user.LanguagePreference,
		user.VerificationToken,
	).Scan(&user.ID, &user.Email, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		logger.Log.Error("Ошибка создания пользователя (repo)", zap.Error(err))
	}
	return wrapErr("create user", err)
}

func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	logger.Log.Debug("Проверка email на уникальность (repo)", zap.String("email", email))
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = lower($1))`, email).Scan(&exists)
	if err != nil {
		logger.Log.Error("Ошибка проверки email (repo)", zap.Error(err))
	}
	return exists, wrapErr("email exists", err)
}

func (r *UserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	return u, wrapErr("get user by id", err)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	logger.Log.Debug("Получение пользователя по email (repo)", zap.String("email", email))
	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = lower($1)`, email))
	return u, wrapErr("get user by email", err)
}

// MarkEmailVerified подтверждает email, только если токен совпадает с сохранённым.
func (r *UserRepository) MarkEmailVerified(ctx context.Context, email, token string) (bool, error) {
	tag, err := r.db.Exec(ctx, `
	UPDATE users SET email_verified = TRUE, verification_token = NULL, updated_at = NOW()
	WHERE email = lower($1) AND verification_token = $2`, email, token)
	if err != nil {
		logger.Log.Error("Ошибка подтверждения email (repo)", zap.Error(err))
		return false, wrapErr("mark email verified", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *UserRepository) SetResetToken(ctx context.Context, userID int, token string, expires time.Time) error {
	_, err := r.db.Exec(ctx, `
	UPDATE users SET reset_password_token = $1, reset_password_expires = $2, updated_at = NOW()
	WHERE id = $3`, token, expires, userID)
	return wrapErr("set reset token", err)
}

// ConsumeResetToken меняет пароль и гасит токен одним UPDATE: повторное использование невозможно.
func (r *UserRepository) ConsumeResetToken(ctx context.Context, userID int, token, passwordHash string) (bool, error) {
	tag, err := r.db.Exec(ctx, `
	UPDATE users
	SET password_hash = $1, reset_password_token = NULL, reset_password_expires = NULL, updated_at = NOW()
	WHERE id = $2 AND reset_password_token = $3 AND reset_password_expires > NOW()`,
		passwordHash, userID, token)
	if err != nil {
		logger.Log.Error("Ошибка сброса пароля (repo)", zap.Error(err), zap.Int("user_id", userID))
		return false, wrapErr("consume reset token", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, userID int, passwordHash string) error {
	_, err := r.db.Exec(ctx, `UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2`, passwordHash, userID)
	return wrapErr("update password", err)
}

func (r *UserRepository) UpdateProfile(ctx context.Context, userID int, in *models.UpdateProfileRequest) (*models.User, error) {
	logger.Log.Info("Обновление профиля (repo)", zap.Int("user_id", userID))
	var b setBuilder
	if in.Name != nil {
		b.add("name", *in.Name)
	}
	if in.Phone != nil {
		b.add("phone", *in.Phone)
	}
	if in.CompanyName != nil {
		b.add("company_name", *in.CompanyName)
	}
	if in.LanguagePreference != nil {
		b.add("language_preference", *in.LanguagePreference)
	}
	if in.ProfileImage != nil {
		b.add("profile_image", *in.ProfileImage)
	}
	return r.applyUpdate(ctx, userID, &b)
}

func (r *UserRepository) AdminUpdate(ctx context.Context, userID int, in *models.AdminUpdateUserRequest) (*models.User, error) {
	logger.Log.Info("Обновление пользователя администратором (repo)", zap.Int("user_id", userID))
	var b setBuilder
	if in.Name != nil {
		b.add("name", *in.Name)
	}
	if in.Email != nil {
		b.add("email", strings.ToLower(*in.Email))
	}
	if in.Role != nil {
		b.add("role", *in.Role)
	}
	if in.Phone != nil {
		b.add("phone", *in.Phone)
	}
	if in.CompanyName != nil {
		b.add("company_name", *in.CompanyName)
	}
	if in.EmailVerified != nil {
		b.add("email_verified", *in.EmailVerified)
	}
	return r.applyUpdate(ctx, userID, &b)
}

func (r *UserRepository) applyUpdate(ctx context.Context, userID int, b *setBuilder) (*models.User, error) {
	if b.empty() {
		return r.GetByID(ctx, userID)
	}
	b.add("updated_at", time.Now())
	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = %s RETURNING `+userColumns, b.clause(), b.arg(userID))
	u, err := scanUser(r.db.QueryRow(ctx, query, b.args...))
	if err != nil {
		logger.Log.Error("Ошибка обновления пользователя (repo)", zap.Error(err), zap.Int("user_id", userID))
	}
	return u, wrapErr("update user", err)
}

func (r *UserRepository) List(ctx context.Context, f models.UserFilter) ([]*models.User, int, error) {
	logger.Log.Debug("Список пользователей (repo)", zap.String("role", f.Role), zap.Int("limit", f.Limit), zap.Int("offset", f.Offset))
	where := ""
	args := []interface{}{}
	if f.Role != "" {
		args = append(args, f.Role)
		where = " WHERE role = $1"
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`+where, args...).Scan(&total); err != nil {
		logger.Log.Error("Ошибка подсчёта пользователей (repo)", zap.Error(err))
		return nil, 0, wrapErr("count users", err)
	}

	query := fmt.Sprintf(`SELECT `+userColumns+` FROM users%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		where, len(args)+1, len(args)+2)
	rows, err := r.db.Query(ctx, query, append(args, f.Limit, f.Offset)...)
	if err != nil {
		logger.Log.Error("Ошибка получения пользователей (repo)", zap.Error(err))
		return nil, 0, wrapErr("list users", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, wrapErr("scan user", err)
		}
		users = append(users, u)
	}
	return users, total, wrapErr("list users", rows.Err())
}
