package utils

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"mahattati/internal/apperrors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type TokenPurpose string

const (
	PurposeSession TokenPurpose = "session"
	PurposeVerify  TokenPurpose = "verify"
	PurposeReset   TokenPurpose = "reset"
)

const (
	VerifyTokenTTL = 24 * time.Hour
	ResetTokenTTL  = time.Hour
)

type TokenClaims struct {
	UserID  int          `json:"user_id,omitempty"`
	Email   string       `json:"email,omitempty"`
	Purpose TokenPurpose `json:"purpose"`
	jwt.RegisteredClaims
}

// TokenIssuer подписывает и проверяет HS256-токены одним секретом.
type TokenIssuer struct {
	secret     []byte
	sessionTTL time.Duration
}

func NewTokenIssuer(secret string, sessionTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), sessionTTL: sessionTTL}
}

func (i *TokenIssuer) SessionTTL() time.Duration { return i.sessionTTL }

// Issue создаёт токен. jti случайный, поэтому два токена за одну секунду различаются.
func (i *TokenIssuer) Issue(userID int, email string, purpose TokenPurpose, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := TokenClaims{
		UserID:  userID,
		Email:   email,
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

func (i *TokenIssuer) IssueSession(userID int) (string, error) {
	return i.Issue(userID, "", PurposeSession, i.sessionTTL)
}

// Verify проверяет подпись, алгоритм, срок и назначение.
// Любое несоответствие: apperrors.ErrInvalidToken.
func (i *TokenIssuer) Verify(tokenString string, purpose TokenPurpose) (*TokenClaims, error) {
	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidToken, err)
	}
	if !token.Valid || claims.Purpose != purpose {
		return nil, apperrors.ErrInvalidToken
	}
	return claims, nil
}

// ParseTTL понимает как Go-длительности ("168h"), так и дни ("7d").
func ParseTTL(s string, def time.Duration) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n <= 0 {
			return 0, errors.New("invalid day duration: " + s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, errors.New("duration must be positive: " + s)
	}
	return d, nil
}
