package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"gorm.io/gorm"

	"toko/internal/cache"
	apperrors "toko/internal/errors"
	"toko/internal/logger"
	"toko/internal/model"
	"toko/internal/repository"
)

// MediaClient uploads attachments to and resolves them from the media service.
type MediaClient interface {
	Upload(ctx context.Context, filename string, r io.Reader) (int64, error)
	Resolve(ctx context.Context, id int64) (string, error)
}

// Upload is an attachment submitted with a new post.
type Upload struct {
	Filename string
	Body     io.Reader
}

// PostService manages posts and decorates them for viewers.
type PostService interface {
	CreatePost(ctx context.Context, actorID, ownerID int64, content string, upload *Upload) (*model.Post, error)
	DeletePost(ctx context.Context, actorID, postID int64) error
	// Feed returns every post, newest first. viewerID 0 means anonymous.
	Feed(ctx context.Context, viewerID int64) ([]model.PostView, error)
	UserPosts(ctx context.Context, userID, viewerID int64) (*model.User, []model.PostView, error)
}

type postService struct {
	posts    repository.PostRepository
	users    repository.UserRepository
	likes    repository.LikeRepository
	media    MediaClient
	cache    *cache.Client
	mediaTTL time.Duration
	log      *logger.Logger
}

// NewPostService creates a new post service. Resolved media URLs are cached
// for mediaTTL; a zero TTL disables caching.
func NewPostService(
	posts repository.PostRepository,
	users repository.UserRepository,
	likes repository.LikeRepository,
	media MediaClient,
	cache *cache.Client,
	mediaTTL time.Duration,
	log *logger.Logger,
) PostService {
	return &postService{
		posts:    posts,
		users:    users,
		likes:    likes,
		media:    media,
		cache:    cache,
		mediaTTL: mediaTTL,
		log:      log,
	}
}

// CreatePost publishes content on ownerID's page. Only the owner may post
// there. The attachment, if any, is uploaded before the post is stored.
func (s *postService) CreatePost(ctx context.Context, actorID, ownerID int64, content string, upload *Upload) (*model.Post, error) {
	if actorID != ownerID {
		return nil, apperrors.Forbidden("You can only post as yourself")
	}
	if _, err := s.users.FindByID(ctx, ownerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("User not found")
		}
		return nil, s.storageError("find user", err)
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.Validation("Content cannot be empty")
	}

	post := &model.Post{UserID: ownerID, Content: content}
	if upload != nil {
		mediaID, err := s.media.Upload(ctx, upload.Filename, upload.Body)
		if err != nil {
			s.log.Warnw("media upload failed", "user_id", ownerID, "filename", upload.Filename, "err", err)
			return nil, apperrors.Upstream("Failed to upload media", err)
		}
		post.MediaID = &mediaID
	}

	if err := s.posts.Create(ctx, post); err != nil {
		return nil, s.storageError("create post", err)
	}
	return post, nil
}

// DeletePost removes a post written by actorID.
func (s *postService) DeletePost(ctx context.Context, actorID, postID int64) error {
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("Post not found")
		}
		return s.storageError("find post", err)
	}
	if post.UserID != actorID {
		return apperrors.Forbidden("Not authorized")
	}

	if err := s.posts.Delete(ctx, postID); err != nil {
		return s.storageError("delete post", err)
	}
	return nil
}

func (s *postService) Feed(ctx context.Context, viewerID int64) ([]model.PostView, error) {
	posts, err := s.posts.ListAll(ctx)
	if err != nil {
		return nil, s.storageError("list posts", err)
	}
	return s.decorate(ctx, posts, viewerID)
}

func (s *postService) UserPosts(ctx context.Context, userID, viewerID int64) (*model.User, []model.PostView, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperrors.NotFound("User not found")
		}
		return nil, nil, s.storageError("find user", err)
	}

	posts, err := s.posts.ListByUser(ctx, userID)
	if err != nil {
		return nil, nil, s.storageError("list posts", err)
	}
	views, err := s.decorate(ctx, posts, viewerID)
	if err != nil {
		return nil, nil, err
	}
	return user, views, nil
}

func (s *postService) decorate(ctx context.Context, posts []model.Post, viewerID int64) ([]model.PostView, error) {
	ids := make([]int64, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}

	counts, err := s.likes.CountByPosts(ctx, ids)
	if err != nil {
		return nil, s.storageError("count likes", err)
	}

	liked := map[int64]bool{}
	if viewerID > 0 {
		liked, err = s.likes.LikedPostIDs(ctx, viewerID, ids)
		if err != nil {
			return nil, s.storageError("load liked posts", err)
		}
	}

	urls := make(map[int64]string)
	views := make([]model.PostView, 0, len(posts))
	for _, p := range posts {
		view := model.PostView{
			Post:      p,
			Author:    p.User.Username,
			LikeCount: counts[p.ID],
			Liked:     liked[p.ID],
		}
		if p.MediaID != nil {
			url, ok := urls[*p.MediaID]
			if !ok {
				url = s.mediaURL(ctx, *p.MediaID)
				urls[*p.MediaID] = url
			}
			view.MediaURL = url
		}
		views = append(views, view)
	}
	return views, nil
}

// mediaURL returns "" when the media service cannot resolve the id. Posts
// still render without their attachment.
func (s *postService) mediaURL(ctx context.Context, id int64) string {
	key := fmt.Sprintf("media:%d", id)
	if s.mediaTTL > 0 {
		if data, _ := s.cache.Get(ctx, key); data != nil {
			return string(data)
		}
	}

	url, err := s.media.Resolve(ctx, id)
	if err != nil {
		s.log.Debugw("resolve media", "media_id", id, "err", err)
		return ""
	}

	if s.mediaTTL > 0 {
		_ = s.cache.Set(ctx, key, []byte(url), s.mediaTTL)
	}
	return url
}

func (s *postService) storageError(op string, err error) error {
	s.log.Errorw(op, "err", err)
	return apperrors.Storage(fmt.Errorf("%s: %w", op, err))
}
