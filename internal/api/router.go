package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/kidguard/parental-api/docs"
	"github.com/kidguard/parental-api/internal/api/handler"
	"github.com/kidguard/parental-api/internal/api/middleware"
	"github.com/kidguard/parental-api/internal/core/domain"
	"github.com/kidguard/parental-api/internal/core/ports"
)

// Options carries the services and switches the router is built from.
type Options struct {
	Auth     ports.AuthService
	Children ports.ChildService
	Searches ports.SearchService
	Access   ports.AccessControl

	// Health lists the dependencies pinged by /health/ready.
	Health map[string]handler.Pinger
	Logger zerolog.Logger

	CORSAllowOrigins []string
	EnableMetrics    bool
	EnableSwagger    bool
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(opts.Logger)

	// --- Global middleware ---
	e.Pre(echomiddleware.RemoveTrailingSlash())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(opts.Logger))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     allowOrigins(opts.CORSAllowOrigins),
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderAuthorization, echo.HeaderContentType},
		AllowCredentials: len(opts.CORSAllowOrigins) > 0,
	}))

	if opts.EnableMetrics {
		reg := prometheus.NewRegistry()
		e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
			Namespace:                 "parental",
			Registerer:                reg,
			DoNotUseRequestPathFor404: true,
			Skipper: func(c echo.Context) bool {
				return c.Path() == "/metrics"
			},
		}))
		e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
			Gatherer: prometheus.Gatherers{reg, prometheus.DefaultGatherer},
		}))
	}

	if opts.EnableSwagger {
		e.GET("/swagger/*", echoSwagger.WrapHandler)
	}

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(opts.Auth)
	childHandler := handler.NewChildHandler(opts.Children)
	searchHandler := handler.NewSearchHandler(opts.Searches)
	healthHandler := handler.NewHealthHandler(opts.Health)

	authn := middleware.Auth(opts.Access)
	parentOnly := middleware.RequireRole(opts.Access, domain.RoleParent)

	// --- Public routes ---
	e.POST("/token", authHandler.Token)
	e.POST("/users/register", authHandler.Register)
	e.POST("/users/verify-parent-for-logout", authHandler.VerifyParentForLogout)
	e.POST("/searches/log", searchHandler.Log)

	// --- Parent routes ---
	e.GET("/users/me", authHandler.Me, authn, parentOnly)

	children := e.Group("/children", authn, parentOnly)
	children.POST("", childHandler.Create)
	children.GET("", childHandler.List)
	children.DELETE("/:child_id", childHandler.Delete)

	searches := e.Group("/searches", authn, parentOnly)
	searches.GET("/:child_id", searchHandler.List)
	searches.DELETE("/clear/:child_id", searchHandler.Clear)

	// --- Health probes (no auth required) ---
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)

	return e
}

func allowOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
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
			if v.Status >= http.StatusInternalServerError {
				evt = log.Error().Err(v.Error)
			}
			evt.
				Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	})
}
