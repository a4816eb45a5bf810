package service

import (
	"context"
	"io"
	"sync"

	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"toko/internal/model"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id int64) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Save(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) List(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

// MockPostRepository is a mock implementation of PostRepository.
type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) Create(ctx context.Context, post *model.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostRepository) FindByID(ctx context.Context, id int64) (*model.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Post), args.Error(1)
}

func (m *MockPostRepository) ListAll(ctx context.Context) ([]model.Post, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Post), args.Error(1)
}

func (m *MockPostRepository) ListByUser(ctx context.Context, userID int64) ([]model.Post, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Post), args.Error(1)
}

func (m *MockPostRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockLikeRepository is a mock implementation of LikeRepository.
type MockLikeRepository struct {
	mock.Mock
}

func (m *MockLikeRepository) Find(ctx context.Context, userID, postID int64) (*model.Like, error) {
	args := m.Called(ctx, userID, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Like), args.Error(1)
}

func (m *MockLikeRepository) Create(ctx context.Context, like *model.Like) error {
	args := m.Called(ctx, like)
	return args.Error(0)
}

func (m *MockLikeRepository) Delete(ctx context.Context, userID, postID int64) (bool, error) {
	args := m.Called(ctx, userID, postID)
	return args.Bool(0), args.Error(1)
}

func (m *MockLikeRepository) CountByPost(ctx context.Context, postID int64) (int64, error) {
	args := m.Called(ctx, postID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLikeRepository) Exists(ctx context.Context, userID, postID int64) (bool, error) {
	args := m.Called(ctx, userID, postID)
	return args.Bool(0), args.Error(1)
}

func (m *MockLikeRepository) CountByPosts(ctx context.Context, postIDs []int64) (map[int64]int64, error) {
	args := m.Called(ctx, postIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]int64), args.Error(1)
}

func (m *MockLikeRepository) LikedPostIDs(ctx context.Context, userID int64, postIDs []int64) (map[int64]bool, error) {
	args := m.Called(ctx, userID, postIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]bool), args.Error(1)
}

// MockMediaClient is a mock implementation of MediaClient.
type MockMediaClient struct {
	mock.Mock
}

func (m *MockMediaClient) Upload(ctx context.Context, filename string, r io.Reader) (int64, error) {
	args := m.Called(ctx, filename, r)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMediaClient) Resolve(ctx context.Context, id int64) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

// memoryUserRepository is a UserRepository with a unique username index.
type memoryUserRepository struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]model.User
}

func newMemoryUserRepository() *memoryUserRepository {
	return &memoryUserRepository{byID: make(map[int64]model.User)}
}

func (r *memoryUserRepository) FindByUsername(_ context.Context, username string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memoryUserRepository) FindByID(_ context.Context, id int64) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (r *memoryUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := r.FindByUsername(ctx, username)
	return err == nil, nil
}

func (r *memoryUserRepository) Save(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, u := range r.byID {
		if u.Username == user.Username && id != user.ID {
			return gorm.ErrDuplicatedKey
		}
	}
	if user.ID == 0 {
		r.nextID++
		user.ID = r.nextID
	}
	r.byID[user.ID] = *user
	return nil
}

func (r *memoryUserRepository) List(_ context.Context) ([]model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	users := make([]model.User, 0, len(r.byID))
	for _, u := range r.byID {
		users = append(users, u)
	}
	return users, nil
}

// memoryLikeRepository is a LikeRepository with a unique (user, post) index.
type memoryLikeRepository struct {
	mu     sync.Mutex
	nextID int64
	rows   map[[2]int64]model.Like
}

func newMemoryLikeRepository() *memoryLikeRepository {
	return &memoryLikeRepository{rows: make(map[[2]int64]model.Like)}
}

func (r *memoryLikeRepository) Find(_ context.Context, userID, postID int64) (*model.Like, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.rows[[2]int64{userID, postID}]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &l, nil
}

func (r *memoryLikeRepository) Create(_ context.Context, like *model.Like) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := [2]int64{like.UserID, like.PostID}
	if _, ok := r.rows[key]; ok {
		return gorm.ErrDuplicatedKey
	}
	r.nextID++
	like.ID = r.nextID
	r.rows[key] = *like
	return nil
}

func (r *memoryLikeRepository) Delete(_ context.Context, userID, postID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := [2]int64{userID, postID}
	_, ok := r.rows[key]
	delete(r.rows, key)
	return ok, nil
}

func (r *memoryLikeRepository) CountByPost(_ context.Context, postID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for key := range r.rows {
		if key[1] == postID {
			n++
		}
	}
	return n, nil
}

func (r *memoryLikeRepository) Exists(ctx context.Context, userID, postID int64) (bool, error) {
	_, err := r.Find(ctx, userID, postID)
	return err == nil, nil
}

func (r *memoryLikeRepository) CountByPosts(ctx context.Context, postIDs []int64) (map[int64]int64, error) {
	counts := make(map[int64]int64)
	for _, id := range postIDs {
		if n, _ := r.CountByPost(ctx, id); n > 0 {
			counts[id] = n
		}
	}
	return counts, nil
}

func (r *memoryLikeRepository) LikedPostIDs(ctx context.Context, userID int64, postIDs []int64) (map[int64]bool, error) {
	liked := make(map[int64]bool)
	for _, id := range postIDs {
		if ok, _ := r.Exists(ctx, userID, id); ok {
			liked[id] = true
		}
	}
	return liked, nil
}
