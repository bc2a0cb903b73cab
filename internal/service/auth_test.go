package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/geocoder89/schoolhub/internal/apperr"
	"github.com/geocoder89/schoolhub/internal/auth"
	"github.com/geocoder89/schoolhub/internal/domain/user"
	"github.com/geocoder89/schoolhub/internal/repo/postgres"
	"github.com/geocoder89/schoolhub/internal/security"
	"github.com/geocoder89/schoolhub/internal/service"
)

// Fake store implementations of the service store interfaces

type fakeUserStore struct {
	getByEmailFn func(ctx context.Context, email string) (user.User, error)
	getByIDFn    func(ctx context.Context, id string) (user.User, error)
	listFn       func(ctx context.Context) ([]user.User, error)
	createFn     func(ctx context.Context, params postgres.CreateUserParams) (user.User, error)
	updateFn     func(ctx context.Context, id string, params postgres.UpdateUserParams) (user.User, error)
	deleteFn     func(ctx context.Context, id string) error
}

func (f *fakeUserStore) GetByEmail(ctx context.Context, email string) (user.User, error) {
	if f.getByEmailFn != nil {
		return f.getByEmailFn(ctx, email)
	}
	return user.User{}, postgres.ErrUserNotFound
}

func (f *fakeUserStore) GetByID(ctx context.Context, id string) (user.User, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, id)
	}
	return user.User{}, postgres.ErrUserNotFound
}

func (f *fakeUserStore) List(ctx context.Context) ([]user.User, error) {
	if f.listFn != nil {
		return f.listFn(ctx)
	}
	return nil, nil
}

func (f *fakeUserStore) Create(ctx context.Context, params postgres.CreateUserParams) (user.User, error) {
	if f.createFn != nil {
		return f.createFn(ctx, params)
	}
	return user.User{}, nil
}

func (f *fakeUserStore) Update(ctx context.Context, id string, params postgres.UpdateUserParams) (user.User, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, params)
	}
	return user.User{}, nil
}

func (f *fakeUserStore) Delete(ctx context.Context, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

type fakeRoleStore struct {
	getByNameFn func(ctx context.Context, name string) (user.Role, error)
}

func (f *fakeRoleStore) GetByName(ctx context.Context, name string) (user.Role, error) {
	if f.getByNameFn != nil {
		return f.getByNameFn(ctx, name)
	}
	return user.Role{}, postgres.ErrRoleNotFound
}

type fakeSchoolStore struct {
	getByNameFn func(ctx context.Context, name string) (user.School, error)
}

func (f *fakeSchoolStore) GetByName(ctx context.Context, name string) (user.School, error) {
	if f.getByNameFn != nil {
		return f.getByNameFn(ctx, name)
	}
	return user.School{}, postgres.ErrSchoolNotFound
}

func newTestManager() *auth.Manager {
	return auth.NewManager("access-secret", "refresh-secret", time.Hour, 7*24*time.Hour)
}

func wantStatus(t *testing.T, err error, status int) *apperr.Error {
	t.Helper()

	var apiErr *apperr.Error

	if !errors.As(err, &apiErr) {
		t.Fatalf("got %v, want an apperr.Error", err)
	}

	if apiErr.Status != status {
		t.Fatalf("got status %d (%s), want %d", apiErr.Status, apiErr.Message, status)
	}

	return apiErr
}

// Register

func TestRegisterEmailConflict(t *testing.T) {
	users := &fakeUserStore{
		getByEmailFn: func(ctx context.Context, email string) (user.User, error) {
			return user.User{ID: "existing", Email: email}, nil
		},
	}

	svc := service.NewAuthService(users, &fakeRoleStore{}, &fakeSchoolStore{}, newTestManager())

	_, err := svc.Register(context.Background(), service.RegisterParams{
		Email:    "alice@example.com",
		Password: "pw123",
		Name:     "Alice",
	})

	wantStatus(t, err, http.StatusConflict)
}

func TestRegisterMissingSeedDataIsInternal(t *testing.T) {
	svc := service.NewAuthService(&fakeUserStore{}, &fakeRoleStore{}, &fakeSchoolStore{}, newTestManager())

	_, err := svc.Register(context.Background(), service.RegisterParams{
		Email:    "alice@example.com",
		Password: "pw123",
		Name:     "Alice",
	})

	wantStatus(t, err, http.StatusInternalServerError)
}

func TestRegisterAssignsDefaultRoleAndSchool(t *testing.T) {
	var gotParams postgres.CreateUserParams

	users := &fakeUserStore{
		createFn: func(ctx context.Context, params postgres.CreateUserParams) (user.User, error) {
			gotParams = params
			return user.User{
				ID:       params.ID,
				Email:    params.Email,
				Name:     params.Name,
				SchoolID: params.SchoolID,
				Roles:    []user.Role{{ID: *params.RoleID, Name: "parent"}},
			}, nil
		},
	}
	roles := &fakeRoleStore{
		getByNameFn: func(ctx context.Context, name string) (user.Role, error) {
			if name != "parent" {
				t.Errorf("looked up role %q, want parent", name)
			}
			return user.Role{ID: "role-parent", Name: "parent"}, nil
		},
	}
	schools := &fakeSchoolStore{
		getByNameFn: func(ctx context.Context, name string) (user.School, error) {
			if name != "Springfield Elementary" {
				t.Errorf("looked up school %q, want Springfield Elementary", name)
			}
			return user.School{ID: "school-1", Name: name}, nil
		},
	}

	svc := service.NewAuthService(users, roles, schools, newTestManager())

	created, err := svc.Register(context.Background(), service.RegisterParams{
		Email:    "alice@example.com",
		Password: "pw123",
		Name:     "Alice",
	})

	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if gotParams.SchoolID != "school-1" {
		t.Errorf("got schoolId %q, want school-1", gotParams.SchoolID)
	}

	if gotParams.RoleID == nil || *gotParams.RoleID != "role-parent" {
		t.Errorf("got roleId %v, want role-parent", gotParams.RoleID)
	}

	if gotParams.PasswordHash == "pw123" {
		t.Error("password stored unhashed")
	}

	if err := security.CheckPassword(gotParams.PasswordHash, "pw123"); err != nil {
		t.Errorf("stored hash does not match password: %v", err)
	}

	if len(created.Roles) != 1 || created.Roles[0].Name != "parent" {
		t.Errorf("got roles %v, want [parent]", created.Roles)
	}
}

// Login

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	hash, err := security.HashPassword("pw123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	known := user.User{ID: "u1", Email: "alice@example.com", PasswordHash: hash}

	users := &fakeUserStore{
		getByEmailFn: func(ctx context.Context, email string) (user.User, error) {
			if email == known.Email {
				return known, nil
			}
			return user.User{}, postgres.ErrUserNotFound
		},
	}

	svc := service.NewAuthService(users, &fakeRoleStore{}, &fakeSchoolStore{}, newTestManager())

	_, errUnknown := svc.Login(context.Background(), "bob@example.com", "pw123")
	_, errWrongPw := svc.Login(context.Background(), "alice@example.com", "wrong")

	e1 := wantStatus(t, errUnknown, http.StatusUnauthorized)
	e2 := wantStatus(t, errWrongPw, http.StatusUnauthorized)

	if e1.Message != e2.Message {
		t.Errorf("unknown-user and wrong-password messages differ: %q vs %q", e1.Message, e2.Message)
	}
}

func TestLoginIssuesBothTokenClasses(t *testing.T) {
	hash, err := security.HashPassword("pw123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	known := user.User{
		ID:           "u1",
		Email:        "alice@example.com",
		PasswordHash: hash,
		SchoolID:     "school-1",
		Roles:        []user.Role{{ID: "r1", Name: "parent"}},
	}

	users := &fakeUserStore{
		getByEmailFn: func(ctx context.Context, email string) (user.User, error) {
			return known, nil
		},
	}

	m := newTestManager()
	svc := service.NewAuthService(users, &fakeRoleStore{}, &fakeSchoolStore{}, m)

	result, err := svc.Login(context.Background(), "alice@example.com", "pw123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	accessClaims, err := m.VerifyAccessToken(result.AccessToken)
	if err != nil {
		t.Fatalf("verify access: %v", err)
	}

	if accessClaims.UserID != "u1" || len(accessClaims.Roles) != 1 || accessClaims.Roles[0] != "parent" {
		t.Errorf("unexpected access claims: %+v", accessClaims)
	}

	if _, err := m.VerifyRefreshToken(result.RefreshToken); err != nil {
		t.Fatalf("verify refresh: %v", err)
	}
}

// Refresh

func TestRefreshRejectsInvalidToken(t *testing.T) {
	svc := service.NewAuthService(&fakeUserStore{}, &fakeRoleStore{}, &fakeSchoolStore{}, newTestManager())

	_, err := svc.Refresh(context.Background(), "not-a-token")

	wantStatus(t, err, http.StatusUnauthorized)
}

func TestRefreshRejectsVanishedUser(t *testing.T) {
	m := newTestManager()

	raw, err := m.GenerateRefreshToken(user.User{ID: "u1", Email: "alice@example.com"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	svc := service.NewAuthService(&fakeUserStore{}, &fakeRoleStore{}, &fakeSchoolStore{}, m)

	_, err = svc.Refresh(context.Background(), raw)

	wantStatus(t, err, http.StatusUnauthorized)
}

// Rotation derives claims from the user's current roles, not the old token's.

func TestRefreshUsesCurrentRoles(t *testing.T) {
	m := newTestManager()

	raw, err := m.GenerateRefreshToken(user.User{
		ID:    "u1",
		Email: "alice@example.com",
		Roles: []user.Role{{ID: "r1", Name: "teacher"}},
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	users := &fakeUserStore{
		getByIDFn: func(ctx context.Context, id string) (user.User, error) {
			// roles changed since the refresh token was minted
			return user.User{
				ID:    "u1",
				Email: "alice@example.com",
				Roles: []user.Role{{ID: "r2", Name: "admin"}},
			}, nil
		},
	}

	svc := service.NewAuthService(users, &fakeRoleStore{}, &fakeSchoolStore{}, m)

	pair, err := svc.Refresh(context.Background(), raw)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}

	claims, err := m.VerifyAccessToken(pair.AccessToken)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}

	if len(claims.Roles) != 1 || claims.Roles[0] != "admin" {
		t.Errorf("got roles %v, want [admin]", claims.Roles)
	}
}
