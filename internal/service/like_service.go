package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	apperrors "toko/internal/errors"
	"toko/internal/logger"
	"toko/internal/model"
	"toko/internal/repository"
)

// LikeService coordinates like toggles so each (user, post) pair has at most
// one like row.
type LikeService interface {
	Toggle(ctx context.Context, userID, postID int64) (model.LikeState, error)
	CountFor(ctx context.Context, postID int64) (int64, error)
	HasLiked(ctx context.Context, userID, postID int64) (bool, error)
}

type likePair struct {
	userID int64
	postID int64
}

type likeService struct {
	likes repository.LikeRepository
	posts repository.PostRepository
	locks *keyedMutex[likePair]
	log   *logger.Logger
}

// NewLikeService creates a new like service.
func NewLikeService(likes repository.LikeRepository, posts repository.PostRepository, log *logger.Logger) LikeService {
	return &likeService{
		likes: likes,
		posts: posts,
		locks: newKeyedMutex[likePair](),
		log:   log,
	}
}

// Toggle removes the user's like on the post if present and adds it
// otherwise. Liking a post that does not exist changes nothing and reports
// LikeStateUnliked.
//
// Within a process, toggles on the same pair are serialized. Across
// processes the unique (user_id, post_id) index decides: a duplicate insert
// means a concurrent toggle already liked the post, and a delete that finds
// nothing means one already unliked it.
func (s *likeService) Toggle(ctx context.Context, userID, postID int64) (model.LikeState, error) {
	unlock := s.locks.lock(likePair{userID: userID, postID: postID})
	defer unlock()

	_, err := s.likes.Find(ctx, userID, postID)
	switch {
	case err == nil:
		if _, err := s.likes.Delete(ctx, userID, postID); err != nil {
			return "", s.storageError("delete like", err)
		}
		return model.LikeStateUnliked, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return "", s.storageError("find like", err)
	}

	if _, err := s.posts.FindByID(ctx, postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.LikeStateUnliked, nil
		}
		return "", s.storageError("find post", err)
	}

	if err := s.likes.Create(ctx, &model.Like{UserID: userID, PostID: postID}); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return model.LikeStateLiked, nil
		}
		return "", s.storageError("create like", err)
	}
	return model.LikeStateLiked, nil
}

func (s *likeService) CountFor(ctx context.Context, postID int64) (int64, error) {
	count, err := s.likes.CountByPost(ctx, postID)
	if err != nil {
		return 0, s.storageError("count likes", err)
	}
	return count, nil
}

func (s *likeService) HasLiked(ctx context.Context, userID, postID int64) (bool, error) {
	liked, err := s.likes.Exists(ctx, userID, postID)
	if err != nil {
		return false, s.storageError("check like", err)
	}
	return liked, nil
}

func (s *likeService) storageError(op string, err error) error {
	s.log.Errorw(op, "err", err)
	return apperrors.Storage(fmt.Errorf("%s: %w", op, err))
}
