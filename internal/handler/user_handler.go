package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"toko/internal/model"
	"toko/internal/service"
)

// UserHandler serves user listings and profile pages.
type UserHandler struct {
	users service.UserService
	posts service.PostService
}

// NewUserHandler creates a handler layer.
func NewUserHandler(users service.UserService, posts service.PostService) *UserHandler {
	return &UserHandler{users: users, posts: posts}
}

// UserPageResponse is a user together with their posts.
type UserPageResponse struct {
	User  *model.User      `json:"user"`
	Posts []model.PostView `json:"posts"`
}

// GetUser godoc
// @Summary Get a user and their posts
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} UserPageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	viewerID, _ := CurrentUserID(c)

	user, posts, err := h.posts.UserPosts(c.Request().Context(), id, viewerID)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, UserPageResponse{User: user, Posts: posts})
}

// ListUsers godoc
// @Summary List users
// @Tags users
// @Produce json
// @Success 200 {array} model.User
// @Failure 500 {object} errors.ErrorResponse
// @Router /users [get]
func (h *UserHandler) ListUsers(c echo.Context) error {
	users, err := h.users.ListUsers(c.Request().Context())
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, users)
}
