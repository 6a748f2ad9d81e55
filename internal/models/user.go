package models

import (
	"time"

	"mahattati/internal/policy"
)

type User struct {
	ID                   int         `json:"id"`
	Name                 string      `json:"name"`
	Email                string      `json:"email"`
	PasswordHash         string      `json:"-"`
	Role                 policy.Role `json:"role"`
	Phone                *string     `json:"phone"`
	CompanyName          *string     `json:"company_name"`
	ProfileImage         *string     `json:"profile_image"`
	LanguagePreference   string      `json:"language_preference"`
	EmailVerified        bool        `json:"email_verified"`
	VerificationToken    *string     `json:"-"`
	ResetPasswordToken   *string     `json:"-"`
	ResetPasswordExpires *time.Time  `json:"-"`
	CreatedAt            time.Time   `json:"created_at"`
	UpdatedAt            time.Time   `json:"updated_at"`
}

// UserSummary: то, что возвращают register/login.
type UserSummary struct {
	ID            int         `json:"id"`
	Name          string      `json:"name"`
	Email         string      `json:"email"`
	Role          policy.Role `json:"role"`
	EmailVerified *bool       `json:"email_verified,omitempty"`
}

// UserProfile: ответ /auth/me и /users/profile.
type UserProfile struct {
	ID                 int         `json:"id"`
	Name               string      `json:"name"`
	Email              string      `json:"email"`
	Role               policy.Role `json:"role"`
	Phone              *string     `json:"phone"`
	CompanyName        *string     `json:"company_name"`
	ProfileImage       *string     `json:"profile_image"`
	LanguagePreference string      `json:"language_preference"`
	EmailVerified      bool        `json:"email_verified"`
	CreatedAt          time.Time   `json:"created_at"`
}

func (u *User) Profile() UserProfile {
	return UserProfile{
		ID:                 u.ID,
		Name:               u.Name,
		Email:              u.Email,
		Role:               u.Role,
		Phone:              u.Phone,
		CompanyName:        u.CompanyName,
		ProfileImage:       u.ProfileImage,
		LanguagePreference: u.LanguagePreference,
		EmailVerified:      u.EmailVerified,
		CreatedAt:          u.CreatedAt,
	}
}

// UpdateProfileRequest: поля, которые пользователь меняет сам.
type UpdateProfileRequest struct {
	Name               *string `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Phone              *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	CompanyName        *string `json:"company_name,omitempty" validate:"omitempty,max=255"`
	LanguagePreference *string `json:"language_preference,omitempty" validate:"omitempty,oneof=ar en"`
	ProfileImage       *string `json:"-"`
}

func (r *UpdateProfileRequest) Empty() bool {
	return r.Name == nil && r.Phone == nil && r.CompanyName == nil &&
		r.LanguagePreference == nil && r.ProfileImage == nil
}

// AdminUpdateUserRequest: правка пользователя системным менеджером.
type AdminUpdateUserRequest struct {
	Name          *string `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Email         *string `json:"email,omitempty" validate:"omitempty,email"`
	Role          *string `json:"role,omitempty" validate:"omitempty,oneof=advertiser subscriber system_manager marketing_manager"`
	Phone         *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	CompanyName   *string `json:"company_name,omitempty" validate:"omitempty,max=255"`
	EmailVerified *bool   `json:"email_verified,omitempty"`
}

func (r *AdminUpdateUserRequest) Empty() bool {
	return r.Name == nil && r.Email == nil && r.Role == nil &&
		r.Phone == nil && r.CompanyName == nil && r.EmailVerified == nil
}

type UserFilter struct {
	Role   string
	Limit  int
	Offset int
}
