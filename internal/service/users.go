package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/geocoder89/schoolhub/internal/apperr"
	"github.com/geocoder89/schoolhub/internal/domain/user"
	"github.com/geocoder89/schoolhub/internal/repo/postgres"
	"github.com/geocoder89/schoolhub/internal/security"
)

type UserService struct {
	users UserStore
	roles RoleStore
}

func NewUserService(users UserStore, roles RoleStore) *UserService {
	return &UserService{users: users, roles: roles}
}

func (s *UserService) List(ctx context.Context) ([]user.User, error) {
	users, err := s.users.List(ctx)

	if err != nil {
		return nil, apperr.Internal("Could not list users", err)
	}

	return users, nil
}

func (s *UserService) Get(ctx context.Context, id string) (user.User, error) {
	found, err := s.users.GetByID(ctx, id)

	if err != nil {
		if errors.Is(err, postgres.ErrUserNotFound) {
			return user.User{}, apperr.NotFound("User not found")
		}

		return user.User{}, apperr.Internal("Could not fetch user", err)
	}

	return found, nil
}

type CreateUserParams struct {
	Email    string
	Password string
	Name     string
	Phone    *string
	SchoolID string
	RoleName *string
}

func (s *UserService) Create(ctx context.Context, params CreateUserParams) (user.User, error) {
	_, err := s.users.GetByEmail(ctx, params.Email)

	if err == nil {
		return user.User{}, apperr.Conflict("User with this email already exists")
	}

	if !errors.Is(err, postgres.ErrUserNotFound) {
		return user.User{}, apperr.Internal("Could not create user", err)
	}

	var roleID *string

	if params.RoleName != nil {
		role, err := s.roles.GetByName(ctx, *params.RoleName)

		if err != nil {
			if errors.Is(err, postgres.ErrRoleNotFound) {
				return user.User{}, apperr.NotFound(fmt.Sprintf("Role '%s' not found", *params.RoleName))
			}

			return user.User{}, apperr.Internal("Could not create user", err)
		}

		roleID = &role.ID
	}

	hash, err := security.HashPassword(params.Password)

	if err != nil {
		return user.User{}, apperr.Internal("Could not create user", err)
	}

	created, err := s.users.Create(ctx, postgres.CreateUserParams{
		ID:           uuid.NewString(),
		Email:        params.Email,
		PasswordHash: hash,
		Name:         params.Name,
		Phone:        params.Phone,
		SchoolID:     params.SchoolID,
		RoleID:       roleID,
	})

	if err != nil {
		if errors.Is(err, postgres.ErrEmailAlreadyUsed) {
			return user.User{}, apperr.Conflict("User with this email already exists")
		}

		return user.User{}, apperr.Internal("Could not create user", err)
	}

	return created, nil
}

type UpdateUserParams struct {
	Name     *string
	Phone    *string
	SchoolID *string
}

func (s *UserService) Update(ctx context.Context, id string, params UpdateUserParams) (user.User, error) {
	updated, err := s.users.Update(ctx, id, postgres.UpdateUserParams{
		Name:     params.Name,
		Phone:    params.Phone,
		SchoolID: params.SchoolID,
	})

	if err != nil {
		if errors.Is(err, postgres.ErrUserNotFound) {
			return user.User{}, apperr.NotFound("User not found")
		}

		return user.User{}, apperr.Internal("Could not update user", err)
	}

	return updated, nil
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	err := s.users.Delete(ctx, id)

	if err != nil {
		if errors.Is(err, postgres.ErrUserNotFound) {
			return apperr.NotFound("User not found")
		}

		return apperr.Internal("Could not delete user", err)
	}

	return nil
}
