package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	apperrors "toko/internal/errors"
)

// SessionStore keeps token → user id bindings. Each method must be atomic
// on its own; expired bindings must not be returned by Get.
type SessionStore interface {
	Put(ctx context.Context, token string, userID int64, ttl time.Duration) error
	Get(ctx context.Context, token string) (userID int64, found bool, err error)
	Delete(ctx context.Context, token string) error
}

// SessionBinder maps authenticated users to opaque session tokens.
type SessionBinder struct {
	store    SessionStore
	ttl      time.Duration
	newToken func() (string, error)
}

// NewSessionBinder creates a binder whose sessions expire after ttl.
func NewSessionBinder(store SessionStore, ttl time.Duration) *SessionBinder {
	return &SessionBinder{
		store:    store,
		ttl:      ttl,
		newToken: generateToken,
	}
}

// Start binds a fresh token to userID. previous is the token the client
// presented before authenticating, if any; it is invalidated so a client
// never holds two live sessions.
func (b *SessionBinder) Start(ctx context.Context, userID int64, previous string) (string, error) {
	if userID <= 0 {
		return "", fmt.Errorf("start session: invalid user id %d", userID)
	}

	if previous != "" {
		if err := b.store.Delete(ctx, previous); err != nil {
			return "", apperrors.Storage(fmt.Errorf("end previous session: %w", err))
		}
	}

	token, err := b.newToken()
	if err != nil {
		return "", apperrors.Entropy(fmt.Errorf("generate session token: %w", err))
	}

	if err := b.store.Put(ctx, token, userID, b.ttl); err != nil {
		return "", apperrors.Storage(fmt.Errorf("store session: %w", err))
	}
	return token, nil
}

// Resolve returns the user bound to token. Unknown, ended and expired
// tokens resolve to nothing.
func (b *SessionBinder) Resolve(ctx context.Context, token string) (int64, bool, error) {
	if token == "" {
		return 0, false, nil
	}
	userID, found, err := b.store.Get(ctx, token)
	if err != nil {
		return 0, false, apperrors.Storage(fmt.Errorf("load session: %w", err))
	}
	return userID, found, nil
}

// End invalidates token. Ending an unknown or already ended token is a no-op.
func (b *SessionBinder) End(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := b.store.Delete(ctx, token); err != nil {
		return apperrors.Storage(fmt.Errorf("delete session: %w", err))
	}
	return nil
}

// TTL returns the lifetime given to new sessions.
func (b *SessionBinder) TTL() time.Duration {
	return b.ttl
}

func generateToken() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
