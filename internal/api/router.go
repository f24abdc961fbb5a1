package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/99minutos/users-api/docs"
	"github.com/99minutos/users-api/internal/api/handler"
	"github.com/99minutos/users-api/internal/api/middleware"
	"github.com/99minutos/users-api/internal/core/domain"
	"github.com/99minutos/users-api/internal/core/ports"
)

// Deps are the collaborators the HTTP layer is built from.
type Deps struct {
	Accounts    ports.AccountService
	Auth        ports.AuthService
	Revocations ports.TokenRevocationStore
	JWTSecret   string
	Health      map[string]handler.PingFunc
	Reporter    ErrorReporter
	Log         zerolog.Logger
	// Metrics enables the Prometheus middleware and /metrics. Tests leave it
	// off so repeated routers do not re-register collectors.
	Metrics bool
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log, d.Reporter)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	if d.Metrics {
		e.Use(echoprometheus.NewMiddleware("users"))
		e.GET("/metrics", echoprometheus.NewHandler())
	}

	authHandler := handler.NewAuthHandler(d.Auth)
	accountHandler := handler.NewAccountHandler(d.Accounts)
	healthHandler := handler.NewHealthHandler(d.Health)
	authMiddleware := middleware.Auth(d.JWTSecret, d.Revocations)

	// --- Public routes ---
	e.POST("/register", authHandler.Register)
	e.POST("/login", authHandler.Login)
	e.GET("/hello", handler.Hello)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Health probes (no auth required) ---
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)

	// --- Authenticated routes ---
	e.POST("/logout", authHandler.Logout, authMiddleware)
	e.POST("/refresh", authHandler.Refresh, authMiddleware)
	e.GET("/me", authHandler.Me, authMiddleware)

	e.POST("/users", accountHandler.Create, authMiddleware, middleware.RBAC(d.Accounts, domain.RoleAdministrator, domain.RoleManager))
	e.GET("/users", accountHandler.List, authMiddleware)
	e.GET("/users/:id", accountHandler.Get, authMiddleware)
	e.PUT("/users/:id", accountHandler.Update, authMiddleware)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Status >= 500 {
				evt = log.Error().Err(v.Error)
			}
			evt.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
