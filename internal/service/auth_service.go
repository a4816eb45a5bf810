package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"toko/internal/auth"
	apperrors "toko/internal/errors"
	"toko/internal/logger"
	"toko/internal/model"
	"toko/internal/repository"
)

const minPasswordLength = 6

// Messages returned to end users by Register.
const (
	msgPasswordMismatch = "Passwords do not match"
	msgUsernameRequired = "Username is required"
	msgPasswordTooShort = "Password must be at least 6 characters"
	msgUsernameTaken    = "Username already taken"
)

// dummySalt and dummyKey let Login spend one derivation on unknown usernames
// too, so response time does not reveal whether the account exists.
var (
	dummySalt = auth.Salt("toko-dummy-salt!")
	dummyKey  = auth.DerivedKey(make([]byte, auth.KeySize))
)

// AuthService handles registration and login.
type AuthService interface {
	Register(ctx context.Context, username, password, confirm string) (*model.User, error)
	Login(ctx context.Context, username, password string) (*model.User, error)
}

type authService struct {
	users  repository.UserRepository
	hasher *auth.Hasher
	log    *logger.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(users repository.UserRepository, hasher *auth.Hasher, log *logger.Logger) AuthService {
	return &authService{
		users:  users,
		hasher: hasher,
		log:    log,
	}
}

// Register validates the input, hashes the password and persists a new user.
// The existence pre-check only yields a friendlier error; the unique index
// on username decides races.
func (s *authService) Register(ctx context.Context, username, password, confirm string) (*model.User, error) {
	if confirm != password {
		return nil, apperrors.Validation(msgPasswordMismatch)
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperrors.Validation(msgUsernameRequired)
	}
	if utf8.RuneCountInString(password) < minPasswordLength {
		return nil, apperrors.Validation(msgPasswordTooShort)
	}

	exists, err := s.users.ExistsByUsername(ctx, username)
	if err != nil {
		s.log.Errorw("check username", "username", username, "err", err)
		return nil, apperrors.Storage(fmt.Errorf("check username: %w", err))
	}
	if exists {
		return nil, apperrors.Conflict(msgUsernameTaken)
	}

	salt, err := s.hasher.GenerateSalt()
	if err != nil {
		s.log.Errorw("generate salt", "err", err)
		return nil, apperrors.Entropy(err)
	}
	key := s.hasher.Derive(password, salt)

	user := &model.User{
		Username:     username,
		PasswordSalt: auth.EncodeSalt(salt),
		PasswordHash: auth.EncodeKey(key),
	}
	if err := s.users.Save(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Conflict(msgUsernameTaken)
		}
		s.log.Errorw("save user", "username", username, "err", err)
		return nil, apperrors.Storage(fmt.Errorf("save user: %w", err))
	}

	return user, nil
}

// Login returns the user whose password matches. Unknown usernames and wrong
// passwords both yield apperrors.ErrInvalidCredentials.
func (s *authService) Login(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.users.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.hasher.Verify(password, dummySalt, dummyKey)
			return nil, apperrors.ErrInvalidCredentials
		}
		s.log.Errorw("find user", "err", err)
		return nil, apperrors.Storage(fmt.Errorf("find user: %w", err))
	}

	salt, saltErr := auth.DecodeSalt(user.PasswordSalt)
	key, keyErr := auth.DecodeKey(user.PasswordHash)
	if saltErr != nil || keyErr != nil {
		s.log.Warnw("stored credentials are not decodable", "user_id", user.ID)
		s.hasher.Verify(password, dummySalt, dummyKey)
		return nil, apperrors.ErrInvalidCredentials
	}

	if !s.hasher.Verify(password, salt, key) {
		return nil, apperrors.ErrInvalidCredentials
	}
	return user, nil
}
