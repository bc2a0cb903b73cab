package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/geocoder89/schoolhub/internal/domain/user"
	"github.com/geocoder89/schoolhub/internal/service"
)

type UserCRUD interface {
	List(ctx context.Context) ([]user.User, error)
	Get(ctx context.Context, id string) (user.User, error)
	Create(ctx context.Context, params service.CreateUserParams) (user.User, error)
	Update(ctx context.Context, id string, params service.UpdateUserParams) (user.User, error)
	Delete(ctx context.Context, id string) error
}

type UsersHandler struct {
	users UserCRUD
}

func NewUsersHandler(users UserCRUD) *UsersHandler {
	return &UsersHandler{users: users}
}

type CreateUserRequest struct {
	Email    string  `json:"email" binding:"required,email"`
	Password string  `json:"password" binding:"required,min=8"`
	Name     string  `json:"name" binding:"required"`
	Phone    *string `json:"phone"`
	SchoolID string  `json:"schoolId" binding:"required,uuid"`
	RoleName *string `json:"roleName"`
}

type UpdateUserRequest struct {
	Name     *string `json:"name"`
	Phone    *string `json:"phone"`
	SchoolID *string `json:"schoolId" binding:"omitempty,uuid"`
}

func (h *UsersHandler) ListUsers(ctx *gin.Context) {
	users, err := h.users.List(ctx.Request.Context())

	if err != nil {
		RespondAppError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": users,
		"count": len(users),
	})
}

func (h *UsersHandler) GetUserByID(ctx *gin.Context) {
	id := ctx.Param("id")

	found, err := h.users.Get(ctx.Request.Context(), id)

	if err != nil {
		RespondAppError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, found)
}

func (h *UsersHandler) CreateUser(ctx *gin.Context) {
	var req CreateUserRequest

	if !BindJSON(ctx, &req) {
		return
	}

	created, err := h.users.Create(ctx.Request.Context(), service.CreateUserParams{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Phone:    req.Phone,
		SchoolID: req.SchoolID,
		RoleName: req.RoleName,
	})

	if err != nil {
		RespondAppError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, created)
}

func (h *UsersHandler) UpdateUser(ctx *gin.Context) {
	id := ctx.Param("id")

	var req UpdateUserRequest

	if !BindJSON(ctx, &req) {
		return
	}

	updated, err := h.users.Update(ctx.Request.Context(), id, service.UpdateUserParams{
		Name:     req.Name,
		Phone:    req.Phone,
		SchoolID: req.SchoolID,
	})

	if err != nil {
		RespondAppError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, updated)
}

func (h *UsersHandler) DeleteUser(ctx *gin.Context) {
	id := ctx.Param("id")

	err := h.users.Delete(ctx.Request.Context(), id)

	if err != nil {
		RespondAppError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "User deleted successfully",
	})
}
