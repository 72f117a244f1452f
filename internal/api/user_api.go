package api

import (
	"context"
	"net/http"
	"storefront-service/internal/auth"
	"storefront-service/internal/entity"

	"github.com/labstack/echo/v4"
)

type UserService interface {
	Register(ctx context.Context, req *entity.RegisterRequest) (*entity.User, string, error)
	Login(ctx context.Context, req *entity.LoginRequest) (*entity.User, string, error)
	Logout(ctx context.Context, token string) error
	GetProfile(ctx context.Context, id string) (*entity.User, error)
	UpdateProfile(ctx context.Context, id string, req *entity.UpdateProfileRequest) (*entity.User, error)
}

type UserHandler struct {
	userService UserService
}

func NewUserHandler(userService UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) Register(c echo.Context) error {
	req := entity.RegisterRequest{}
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request payload")
	}

	user, token, err := h.userService.Register(c.Request().Context(), &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, sessionResponse{User: newUserResponse(user), Token: token})
}

func (h *UserHandler) Login(c echo.Context) error {
	req := entity.LoginRequest{}
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request payload")
	}

	user, token, err := h.userService.Login(c.Request().Context(), &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, sessionResponse{User: newUserResponse(user), Token: token})
}

func (h *UserHandler) Logout(c echo.Context) error {
	if err := h.userService.Logout(c.Request().Context(), auth.RawToken(c)); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "logged out"})
}

func (h *UserHandler) GetProfile(c echo.Context) error {
	user, err := h.userService.GetProfile(c.Request().Context(), auth.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newUserResponse(user))
}

func (h *UserHandler) UpdateProfile(c echo.Context) error {
	req := entity.UpdateProfileRequest{}
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request payload")
	}

	user, err := h.userService.UpdateProfile(c.Request().Context(), auth.UserID(c), &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "profile updated",
		"user":    newUserResponse(user),
	})
}
