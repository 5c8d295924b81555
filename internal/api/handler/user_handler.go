package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gatekit/userdir/domain"
	"github.com/gatekit/userdir/echoauth"
	"github.com/gatekit/userdir/metrics"
	"github.com/gatekit/userdir/ports"
)

// UserHandler exposes the directory over REST for administrative use.
type UserHandler struct {
	dir ports.Directory
}

func NewUserHandler(dir ports.Directory) *UserHandler {
	return &UserHandler{dir: dir}
}

type createUserRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Username    string `json:"username"`
	Role        string `json:"role" validate:"omitempty,oneof=user admin moderator viewer"`
	DisplayName string `json:"display_name"`
}

type updateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user admin moderator viewer"`
}

type userResponse struct {
	User *domain.User `json:"user"`
}

// Create provisions a new directory record.
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.dir.Create(c.Request().Context(), req.Email, req.Username, domain.Role(req.Role), req.DisplayName)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, userResponse{User: user})
}

// Get performs a point lookup by key.
func (h *UserHandler) Get(c echo.Context) error {
	user, err := h.dir.Get(c.Request().Context(), c.Param("key"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userResponse{User: user})
}

// UpdateRole patches the role of an existing record.
func (h *UserHandler) UpdateRole(c echo.Context) error {
	var req updateRoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	key := c.Param("key")
	ok, err := h.dir.UpdateRole(c.Request().Context(), key, domain.Role(req.Role))
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrUserNotFound
	}

	metrics.RoleUpdatesTotal.WithLabelValues(req.Role).Inc()
	return c.JSON(http.StatusOK, map[string]string{"user_id": key, "role": req.Role})
}

// Me returns the principal attached by the auth middleware.
func (h *UserHandler) Me(c echo.Context) error {
	user, ok := echoauth.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication context")
	}
	return c.JSON(http.StatusOK, userResponse{User: user})
}
