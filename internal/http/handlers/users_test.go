package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/geocoder89/schoolhub/internal/apperr"
	"github.com/geocoder89/schoolhub/internal/domain/user"
	"github.com/geocoder89/schoolhub/internal/http/handlers"
	"github.com/geocoder89/schoolhub/internal/service"
)

type fakeUserCRUD struct {
	listFn   func(ctx context.Context) ([]user.User, error)
	getFn    func(ctx context.Context, id string) (user.User, error)
	createFn func(ctx context.Context, params service.CreateUserParams) (user.User, error)
	updateFn func(ctx context.Context, id string, params service.UpdateUserParams) (user.User, error)
	deleteFn func(ctx context.Context, id string) error
}

func (f *fakeUserCRUD) List(ctx context.Context) ([]user.User, error) {
	return f.listFn(ctx)
}

func (f *fakeUserCRUD) Get(ctx context.Context, id string) (user.User, error) {
	return f.getFn(ctx, id)
}

func (f *fakeUserCRUD) Create(ctx context.Context, params service.CreateUserParams) (user.User, error) {
	return f.createFn(ctx, params)
}

func (f *fakeUserCRUD) Update(ctx context.Context, id string, params service.UpdateUserParams) (user.User, error) {
	return f.updateFn(ctx, id, params)
}

func (f *fakeUserCRUD) Delete(ctx context.Context, id string) error {
	return f.deleteFn(ctx, id)
}

func usersRouter(crud handlers.UserCRUD) *gin.Engine {
	r := gin.New()
	h := handlers.NewUsersHandler(crud)
	r.GET("/users", h.ListUsers)
	r.GET("/users/:id", h.GetUserByID)
	r.POST("/users", h.CreateUser)
	r.PUT("/users/:id", h.UpdateUser)
	r.DELETE("/users/:id", h.DeleteUser)
	return r
}

func TestListUsersEnvelope(t *testing.T) {
	crud := &fakeUserCRUD{
		listFn: func(ctx context.Context) ([]user.User, error) {
			return []user.User{
				{ID: "u1", Email: "a@example.com"},
				{ID: "u2", Email: "b@example.com"},
			}, nil
		},
	}

	w := doJSON(t, usersRouter(crud), http.MethodGet, "/users", "")

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Items []user.User `json:"items"`
		Count int         `json:"count"`
	}

	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if resp.Count != 2 || len(resp.Items) != 2 {
		t.Errorf("got count=%d items=%d, want 2/2", resp.Count, len(resp.Items))
	}
}

func TestGetUserByID(t *testing.T) {
	crud := &fakeUserCRUD{
		getFn: func(ctx context.Context, id string) (user.User, error) {
			if id != "u1" {
				return user.User{}, apperr.NotFound("User not found")
			}
			return user.User{ID: "u1", Email: "a@example.com"}, nil
		},
	}

	r := usersRouter(crud)

	w := doJSON(t, r, http.MethodGet, "/users/u1", "")

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodGet, "/users/missing", "")

	if w.Code != http.StatusNotFound {
		t.Fatalf("got status %d, want 404: %s", w.Code, w.Body.String())
	}

	if !strings.Contains(w.Body.String(), "User not found") {
		t.Errorf("message missing from body: %s", w.Body.String())
	}
}

func TestCreateUserValidation(t *testing.T) {
	crud := &fakeUserCRUD{
		createFn: func(ctx context.Context, params service.CreateUserParams) (user.User, error) {
			t.Fatal("service reached with invalid payload")
			return user.User{}, nil
		},
	}

	r := usersRouter(crud)

	cases := []struct {
		name string
		body string
	}{
		{"missing school", `{"email":"a@example.com","password":"longenough","name":"A"}`},
		{"school not a uuid", `{"email":"a@example.com","password":"longenough","name":"A","schoolId":"nope"}`},
		{"short password", `{"email":"a@example.com","password":"short","name":"A","schoolId":"0d4ff2a2-8f5a-4f0e-94d2-0e3c0d1dd001"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, "/users", tc.body)

			if w.Code != http.StatusBadRequest {
				t.Errorf("got status %d, want 400: %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestCreateUserCreated(t *testing.T) {
	var gotParams service.CreateUserParams

	crud := &fakeUserCRUD{
		createFn: func(ctx context.Context, params service.CreateUserParams) (user.User, error) {
			gotParams = params
			return user.User{ID: "u1", Email: params.Email, SchoolID: params.SchoolID}, nil
		},
	}

	w := doJSON(t, usersRouter(crud), http.MethodPost, "/users",
		`{"email":"a@example.com","password":"longenough","name":"A","schoolId":"0d4ff2a2-8f5a-4f0e-94d2-0e3c0d1dd001","roleName":"teacher"}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("got status %d, want 201: %s", w.Code, w.Body.String())
	}

	if gotParams.RoleName == nil || *gotParams.RoleName != "teacher" {
		t.Errorf("got roleName %v, want teacher", gotParams.RoleName)
	}
}

func TestUpdateUserPartial(t *testing.T) {
	var gotParams service.UpdateUserParams

	crud := &fakeUserCRUD{
		updateFn: func(ctx context.Context, id string, params service.UpdateUserParams) (user.User, error) {
			gotParams = params
			return user.User{ID: id, Name: "Renamed"}, nil
		},
	}

	w := doJSON(t, usersRouter(crud), http.MethodPut, "/users/u1", `{"name":"Renamed"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200: %s", w.Code, w.Body.String())
	}

	if gotParams.Name == nil || *gotParams.Name != "Renamed" {
		t.Errorf("got name %v, want Renamed", gotParams.Name)
	}

	if gotParams.Phone != nil || gotParams.SchoolID != nil {
		t.Error("absent fields should stay nil")
	}
}

func TestDeleteUser(t *testing.T) {
	crud := &fakeUserCRUD{
		deleteFn: func(ctx context.Context, id string) error {
			if id == "u1" {
				return nil
			}
			return apperr.NotFound("User not found")
		},
	}

	r := usersRouter(crud)

	w := doJSON(t, r, http.MethodDelete, "/users/u1", "")

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200: %s", w.Code, w.Body.String())
	}

	if !strings.Contains(w.Body.String(), "User deleted successfully") {
		t.Errorf("message missing from body: %s", w.Body.String())
	}

	w = doJSON(t, r, http.MethodDelete, "/users/missing", "")

	if w.Code != http.StatusNotFound {
		t.Fatalf("got status %d, want 404: %s", w.Code, w.Body.String())
	}
}
