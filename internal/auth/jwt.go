package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/geocoder89/schoolhub/internal/domain/user"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Claims is the identity payload embedded in both token classes. Tokens are
// stateless: validity is signature + expiry, nothing is stored server-side.
type Claims struct {
	UserID   string   `json:"userId"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
	SchoolID string   `json:"schoolId"`
	jwt.RegisteredClaims
}

// Manager signs and verifies access and refresh tokens. The two classes share
// the claim shape but use independent secrets and lifetimes, so one class can
// never pass verification against the other's secret.
type Manager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewManager(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *Manager {
	return &Manager{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (m *Manager) GenerateAccessToken(u user.User) (string, error) {
	return m.generate(u, m.accessSecret, m.accessTTL)
}

func (m *Manager) GenerateRefreshToken(u user.User) (string, error) {
	return m.generate(u, m.refreshSecret, m.refreshTTL)
}

func (m *Manager) generate(u user.User, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now().UTC()

	claims := Claims{
		UserID:   u.ID,
		Email:    u.Email,
		Roles:    u.RoleNames(),
		SchoolID: u.SchoolID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Subject:   u.ID,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func (m *Manager) VerifyAccessToken(tokenStr string) (*Claims, error) {
	return m.parseAndValidate(tokenStr, m.accessSecret)
}

func (m *Manager) VerifyRefreshToken(tokenStr string) (*Claims, error) {
	return m.parseAndValidate(tokenStr, m.refreshSecret)
}

func (m *Manager) parseAndValidate(tokenStr string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		// Enforce HS256

		_, ok := t.Method.(*jwt.SigningMethodHMAC)

		if !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})

	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)

	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
