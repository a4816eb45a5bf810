package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"toko/internal/model"
	"toko/internal/service"
)

// PostHandler handles post and like endpoints.
type PostHandler struct {
	posts service.PostService
	likes service.LikeService
}

// NewPostHandler creates a new post handler.
func NewPostHandler(posts service.PostService, likes service.LikeService) *PostHandler {
	return &PostHandler{posts: posts, likes: likes}
}

// LikeResponse reports the outcome of a like toggle.
type LikeResponse struct {
	PostID    int64           `json:"post_id"`
	State     model.LikeState `json:"state"`
	LikeCount int64           `json:"like_count"`
}

// Feed godoc
// @Summary List all posts, newest first
// @Tags posts
// @Produce json
// @Success 200 {array} model.PostView
// @Failure 500 {object} errors.ErrorResponse
// @Router /posts [get]
func (h *PostHandler) Feed(c echo.Context) error {
	viewerID, _ := CurrentUserID(c)
	views, err := h.posts.Feed(c.Request().Context(), viewerID)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, views)
}

// CreatePost godoc
// @Summary Create a post on your own page
// @Tags posts
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "User ID"
// @Param content formData string true "Post text"
// @Param file formData file false "Attachment"
// @Success 201 {object} model.Post
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 502 {object} errors.ErrorResponse
// @Router /users/{id}/posts [post]
func (h *PostHandler) CreatePost(c echo.Context) error {
	ownerID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	actorID, _ := CurrentUserID(c)

	var upload *service.Upload
	fh, err := c.FormFile("file")
	switch {
	case err == nil && fh.Size > 0:
		f, err := fh.Open()
		if err != nil {
			return invalidRequest()
		}
		defer f.Close()
		upload = &service.Upload{Filename: fh.Filename, Body: f}
	case err != nil && !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart):
		return invalidRequest()
	}

	post, err := h.posts.CreatePost(c.Request().Context(), actorID, ownerID, c.FormValue("content"), upload)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusCreated, post)
}

// DeletePost godoc
// @Summary Delete one of your posts
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} MessageResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /posts/{id} [delete]
func (h *PostHandler) DeletePost(c echo.Context) error {
	postID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	actorID, _ := CurrentUserID(c)

	if err := h.posts.DeletePost(c.Request().Context(), actorID, postID); err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Post deleted"})
}

// ToggleLike godoc
// @Summary Like or unlike a post
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} LikeResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /posts/{id}/like [post]
func (h *PostHandler) ToggleLike(c echo.Context) error {
	postID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	userID, _ := CurrentUserID(c)
	ctx := c.Request().Context()

	state, err := h.likes.Toggle(ctx, userID, postID)
	if err != nil {
		return respondError(err)
	}
	count, err := h.likes.CountFor(ctx, postID)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, LikeResponse{PostID: postID, State: state, LikeCount: count})
}
