package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"toko/docs"
	"toko/internal/auth"
	"toko/internal/cache"
	"toko/internal/config"
	"toko/internal/db"
	"toko/internal/handler"
	"toko/internal/logger"
	"toko/internal/media"
	"toko/internal/repository"
	"toko/internal/router"
	"toko/internal/service"
)

const shutdownTimeout = 10 * time.Second

// @title Toko API
// @version 1.0
// @description Social posting API with cookie sessions, posts, likes and media attachments.
// @host localhost:8080
// @BasePath /api
// @schemes http
func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Get(logger.ErrorLevel).Fatalw("load config", "err", err)
	}
	log := logger.Get(cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN, log)
	if err != nil {
		log.Fatalw("database init", "err", err)
	}
	if err := db.Migrate(gormDB, cfg.ResetDB, log); err != nil {
		log.Fatalw("migrate", "err", err)
	}

	cacheClient := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	defer func() { _ = cacheClient.Close() }()
	if err := cacheClient.Ping(context.Background()); err != nil {
		log.Warnw("redis unreachable, caches disabled until it recovers", "addr", cfg.Redis.Addr, "err", err)
	}

	var sessionStore auth.SessionStore
	switch cfg.Session.Store {
	case config.SessionStoreMemory:
		log.Warnw("using in-memory session store; sessions are lost on restart")
		sessionStore = auth.NewMemorySessionStore()
	default:
		sessionStore = auth.NewRedisSessionStore(cacheClient)
	}

	// Repositories
	userRepo := repository.NewUserRepository(gormDB)
	postRepo := repository.NewPostRepository(gormDB)
	likeRepo := repository.NewLikeRepository(gormDB)

	mediaClient := media.NewClient(cfg.Media.BaseURL, cfg.Media.Timeout)
	log.Infow("media service configured", "base_url", mediaClient.BaseURL(), "timeout", cfg.Media.Timeout)

	// Services
	authService := service.NewAuthService(userRepo, auth.NewHasher(), log)
	userService := service.NewUserService(userRepo, cacheClient)
	postService := service.NewPostService(postRepo, userRepo, likeRepo, mediaClient, cacheClient, cfg.Media.CacheTTL, log)
	likeService := service.NewLikeService(likeRepo, postRepo, log)

	// Handlers
	sessions := handler.NewSessions(
		auth.NewSessionBinder(sessionStore, cfg.Session.TTL),
		cfg.Session.CookieName,
		cfg.Session.CookieSecure,
		log,
	)
	authHandler := handler.NewAuthHandler(authService, userService, sessions)
	userHandler := handler.NewUserHandler(userService, postService)
	postHandler := handler.NewPostHandler(postService, likeService)

	e := echo.New()
	e.HideBanner = true
	e.Logger.SetOutput(log.StdLog().Writer())
	router.Register(e, log, sessions, authHandler, userHandler, postHandler)

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "https://"), "http://")
	}
	log.Infow("swagger documentation available", "url", "http://"+docs.SwaggerInfo.Host+"/swagger/index.html")

	addr := ":" + cfg.ServerPort
	go func() {
		log.Infow("server starting", "addr", addr, "session_store", cfg.Session.Store)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server start", "err", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Errorw("server shutdown", "err", err)
	}
	log.Infow("server stopped")
}
