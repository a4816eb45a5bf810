package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"toko/internal/handler"
	"toko/internal/logger"
)

const maxBodySize = "10M"

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	log *logger.Logger,
	sessions *handler.Sessions,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	postHandler *handler.PostHandler,
) {
	e.Use(middleware.RequestID())
	e.Use(requestLogger(log))
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(maxBodySize))
	e.Use(sessions.Middleware)

	e.Validator = NewValidator()

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/logout", authHandler.Logout)
	api.GET("/posts", postHandler.Feed)
	api.GET("/users", userHandler.ListUsers)
	api.GET("/users/:id", userHandler.GetUser)

	// Routes that need a session
	secured := api.Group("", sessions.RequireUser)
	secured.GET("/me", authHandler.Me)
	secured.POST("/users/:id/posts", postHandler.CreatePost)
	secured.DELETE("/posts/:id", postHandler.DeletePost)
	secured.POST("/posts/:id/like", postHandler.ToggleLike)
}

func requestLogger(log *logger.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"request_id", v.RequestID,
			}
			if userID, ok := handler.CurrentUserID(c); ok {
				fields = append(fields, "user_id", userID)
			}
			switch {
			case v.Status >= http.StatusInternalServerError:
				log.Errorw("request", append(fields, "err", v.Error)...)
			case v.Error != nil:
				log.Infow("request", append(fields, "err", v.Error)...)
			default:
				log.Infow("request", fields...)
			}
			return nil
		},
	})
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator returns the validator installed on the echo instance.
func NewValidator() *CustomValidator {
	return &CustomValidator{validator: validator.New()}
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
