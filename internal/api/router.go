package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	_ "github.com/eldercare/careconnect/docs"
	"github.com/eldercare/careconnect/internal/api/handler"
	"github.com/eldercare/careconnect/internal/api/middleware"
	"github.com/eldercare/careconnect/internal/core/domain"
	"github.com/eldercare/careconnect/internal/core/ports"
)

// HealthProbes serves the liveness and readiness endpoints.
type HealthProbes interface {
	Liveness(c echo.Context) error
	Readiness(c echo.Context) error
}

// Services bundles the use cases the HTTP layer exposes.
type Services struct {
	Auth     ports.AuthService
	Requests ports.ServiceRequestService
	Health   HealthProbes
}

// Options tunes router behaviour.
type Options struct {
	JWTSecret string
	// AuthRateLimit is requests/second per client IP on /signup and /login.
	// Zero disables limiting.
	AuthRateLimit float64
	// Registry receives the HTTP metrics and serves /metrics. Nil uses the
	// Prometheus default registry.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(svcs Services, opts Options, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	var registerer prometheus.Registerer = prometheus.DefaultRegisterer
	var gatherer prometheus.Gatherer = prometheus.DefaultGatherer
	if opts.Registry != nil {
		registerer, gatherer = opts.Registry, opts.Registry
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "careconnect",
		Subsystem:  "http",
		Registerer: registerer,
	}))

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(svcs.Auth)
	requestHandler := handler.NewServiceRequestHandler(svcs.Requests)
	authMiddleware := middleware.Auth(opts.JWTSecret)
	seekers := middleware.RBAC(domain.RolePatient, domain.RoleFamily)
	caregivers := middleware.RBAC(domain.RoleCaregiver)

	// --- Auth routes ---
	limit := authRateLimiter(opts.AuthRateLimit)
	e.POST("/signup", authHandler.Signup, limit)
	e.POST("/login", authHandler.Login, limit)

	// --- Service request lifecycle ---
	e.POST("/service-request", requestHandler.Create, authMiddleware, seekers)
	e.GET("/service-requests/pending", requestHandler.ListPending, authMiddleware, caregivers)
	e.PATCH("/service-request/:id/:action", requestHandler.Decide, authMiddleware, caregivers)

	// --- Operations (no auth required) ---
	if svcs.Health != nil {
		e.GET("/health", svcs.Health.Liveness)
		e.GET("/health/ready", svcs.Health.Readiness)
	}
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func authRateLimiter(perSecond float64) echo.MiddlewareFunc {
	if perSecond <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	burst := int(perSecond * 2)
	if burst < 1 {
		burst = 1
	}
	store := echomiddleware.NewRateLimiterMemoryStoreWithConfig(echomiddleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(perSecond),
		Burst:     burst,
		ExpiresIn: 3 * time.Minute,
	})
	return echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, _ string, _ error) error {
			return c.JSON(http.StatusTooManyRequests, detailResponse{Detail: "Too many attempts. Please wait a moment and try again."})
		},
		ErrorHandler: func(c echo.Context, _ error) error {
			return c.JSON(http.StatusForbidden, detailResponse{Detail: "unable to identify client"})
		},
	})
}

// requestLogger logs one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogStatus:    true,
		LogMethod:    true,
		LogURI:       true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
