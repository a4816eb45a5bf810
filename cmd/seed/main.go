package main

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"toko/internal/auth"
	"toko/internal/config"
	"toko/internal/db"
	apperrors "toko/internal/errors"
	"toko/internal/logger"
	"toko/internal/media"
	"toko/internal/repository"
	"toko/internal/service"
)

//go:embed seed.json
var defaultSeed []byte

// SeedUser is one demo account with the posts to publish as it.
type SeedUser struct {
	Username string   `json:"username"`
	Password string   `json:"password"`
	Posts    []string `json:"posts"`
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Get(logger.ErrorLevel).Fatalw("load config", "err", err)
	}
	log := logger.Get(cfg.LogLevel)
	defer func() { _ = log.Sync() }()
	log.Infow("starting seed script")

	gormDB, err := db.NewMySQL(cfg.MySQLDSN, log)
	if err != nil {
		log.Fatalw("connect database", "err", err)
	}
	if err := db.Migrate(gormDB, cfg.ResetDB, log); err != nil {
		log.Fatalw("migrate", "err", err)
	}

	users := defaultSeed
	if url := os.Getenv("SEED_URL"); url != "" {
		log.Infow("fetching seed data", "url", url)
		if users, err = fetchSeed(url); err != nil {
			log.Fatalw("fetch seed data", "err", err)
		}
	}
	var seedUsers []SeedUser
	if err := json.Unmarshal(users, &seedUsers); err != nil {
		log.Fatalw("parse seed data", "err", err)
	}

	userRepo := repository.NewUserRepository(gormDB)
	postRepo := repository.NewPostRepository(gormDB)
	likeRepo := repository.NewLikeRepository(gormDB)
	authService := service.NewAuthService(userRepo, auth.NewHasher(), log)
	postService := service.NewPostService(postRepo, userRepo, likeRepo,
		media.NewClient(cfg.Media.BaseURL, cfg.Media.Timeout), nil, 0, log)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	created, existing, posts, err := seed(ctx, authService, postService, seedUsers)
	if err != nil {
		log.Fatalw("seed", "err", err)
	}
	log.Infow("seed completed",
		"users_created", created,
		"users_existing", existing,
		"posts_created", posts,
	)
}

// fetchSeed downloads seed data in the same format as seed.json.
func fetchSeed(url string) ([]byte, error) {
	resp, err := http.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch seed data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("seed source returned status code: %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// seed registers each user through the normal registration path. Users that
// already exist are left alone, posts are only created for new users so the
// script can be re-run.
func seed(ctx context.Context, authService service.AuthService, postService service.PostService, users []SeedUser) (created, existing, posts int, err error) {
	for _, u := range users {
		user, err := authService.Register(ctx, u.Username, u.Password, u.Password)
		if errors.Is(err, apperrors.ErrConflict) {
			existing++
			continue
		}
		if err != nil {
			return created, existing, posts, fmt.Errorf("register %s: %w", u.Username, err)
		}
		created++

		for _, content := range u.Posts {
			if _, err := postService.CreatePost(ctx, user.ID, user.ID, content, nil); err != nil {
				return created, existing, posts, fmt.Errorf("post as %s: %w", u.Username, err)
			}
			posts++
		}
	}
	return created, existing, posts, nil
}
