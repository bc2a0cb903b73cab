package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/geocoder89/schoolhub/internal/apperr"
	"github.com/geocoder89/schoolhub/internal/auth"
	"github.com/geocoder89/schoolhub/internal/domain/user"
	"github.com/geocoder89/schoolhub/internal/repo/postgres"
	"github.com/geocoder89/schoolhub/internal/security"
)

// Registration defaults. Every self-registered user lands in the default
// school with the parent role; both are seeded reference records.
const (
	defaultRoleName   = "parent"
	defaultSchoolName = "Springfield Elementary"
)

// Small interfaces so tests can fake the store easily.

type UserStore interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
	List(ctx context.Context) ([]user.User, error)
	Create(ctx context.Context, params postgres.CreateUserParams) (user.User, error)
	Update(ctx context.Context, id string, params postgres.UpdateUserParams) (user.User, error)
	Delete(ctx context.Context, id string) error
}

type RoleStore interface {
	GetByName(ctx context.Context, name string) (user.Role, error)
}

type SchoolStore interface {
	GetByName(ctx context.Context, name string) (user.School, error)
}

type TokenIssuer interface {
	GenerateAccessToken(u user.User) (string, error)
	GenerateRefreshToken(u user.User) (string, error)
	VerifyRefreshToken(raw string) (*auth.Claims, error)
}

type AuthService struct {
	users   UserStore
	roles   RoleStore
	schools SchoolStore
	jwt     TokenIssuer
}

func NewAuthService(users UserStore, roles RoleStore, schools SchoolStore, jwt TokenIssuer) *AuthService {
	return &AuthService{
		users:   users,
		roles:   roles,
		schools: schools,
		jwt:     jwt,
	}
}

type RegisterParams struct {
	Email    string
	Password string
	Name     string
	Phone    *string
}

func (s *AuthService) Register(ctx context.Context, params RegisterParams) (user.User, error) {
	// Optimistic pre-check; the unique index on email remains the final
	// arbiter under concurrent registrations.
	_, err := s.users.GetByEmail(ctx, params.Email)

	if err == nil {
		return user.User{}, apperr.Conflict("User with this email already exists")
	}

	if !errors.Is(err, postgres.ErrUserNotFound) {
		return user.User{}, apperr.Internal("Could not register user", err)
	}

	hash, err := security.HashPassword(params.Password)

	if err != nil {
		return user.User{}, apperr.Internal("Could not register user", err)
	}

	parentRole, err := s.roles.GetByName(ctx, defaultRoleName)

	if err != nil {
		return user.User{}, apperr.Internal("Parent role not found. Please ensure roles are seeded.", err)
	}

	school, err := s.schools.GetByName(ctx, defaultSchoolName)

	if err != nil {
		return user.User{}, apperr.Internal("Default school not found. Please ensure schools are seeded.", err)
	}

	created, err := s.users.Create(ctx, postgres.CreateUserParams{
		ID:           uuid.NewString(),
		Email:        params.Email,
		PasswordHash: hash,
		Name:         params.Name,
		Phone:        params.Phone,
		SchoolID:     school.ID,
		RoleID:       &parentRole.ID,
	})

	if err != nil {
		if errors.Is(err, postgres.ErrEmailAlreadyUsed) {
			return user.User{}, apperr.Conflict("User with this email already exists")
		}

		return user.User{}, apperr.Internal("Could not register user", err)
	}

	return created, nil
}

type LoginResult struct {
	User         user.User
	AccessToken  string
	RefreshToken string
}

func (s *AuthService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	found, err := s.users.GetByEmail(ctx, email)

	if err != nil {
		if errors.Is(err, postgres.ErrUserNotFound) {
			// same message as a password mismatch, never reveal which failed
			return LoginResult{}, apperr.Unauthorized("Invalid credentials")
		}

		return LoginResult{}, apperr.Internal("Could not log in", err)
	}

	err = security.CheckPassword(found.PasswordHash, password)

	if err != nil {
		return LoginResult{}, apperr.Unauthorized("Invalid credentials")
	}

	accessToken, err := s.jwt.GenerateAccessToken(found)

	if err != nil {
		return LoginResult{}, apperr.Internal("Could not generate access token", err)
	}

	refreshToken, err := s.jwt.GenerateRefreshToken(found)

	if err != nil {
		return LoginResult{}, apperr.Internal("Could not generate refresh token", err)
	}

	return LoginResult{
		User:         found,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Refresh rotates a valid refresh token into a fresh access/refresh pair.
// Claims are rebuilt from the user's current roles, not the old token's
// snapshot, so role changes take effect on the next rotation.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	claims, err := s.jwt.VerifyRefreshToken(refreshToken)

	if err != nil {
		return TokenPair{}, apperr.Unauthorized("Invalid or expired refresh token")
	}

	found, err := s.users.GetByID(ctx, claims.UserID)

	if err != nil {
		if errors.Is(err, postgres.ErrUserNotFound) {
			return TokenPair{}, apperr.Unauthorized("Invalid refresh token: User not found")
		}

		return TokenPair{}, apperr.Internal("Could not refresh tokens", err)
	}

	newAccess, err := s.jwt.GenerateAccessToken(found)

	if err != nil {
		return TokenPair{}, apperr.Internal("Could not generate access token", err)
	}

	newRefresh, err := s.jwt.GenerateRefreshToken(found)

	if err != nil {
		return TokenPair{}, apperr.Internal("Could not generate refresh token", err)
	}

	return TokenPair{AccessToken: newAccess, RefreshToken: newRefresh}, nil
}
