package api

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/tsmart/voyage-api/docs"
	"github.com/tsmart/voyage-api/internal/api/handler"
	"github.com/tsmart/voyage-api/internal/api/middleware"
	"github.com/tsmart/voyage-api/internal/api/response"
	"github.com/tsmart/voyage-api/internal/core/domain"
	"github.com/tsmart/voyage-api/internal/core/ports"
	"github.com/tsmart/voyage-api/internal/core/service"
	"github.com/tsmart/voyage-api/internal/pkg/config"
)

const bodyLimit = "1M"

// Deps are the long-lived components the router wires into handlers.
type Deps struct {
	Config *config.Config
	Logger zerolog.Logger
	Store  ports.DataStore
	Users  ports.UserRepository
	// RateLimitStore defaults to a process-local middleware.MemoryStore.
	RateLimitStore middleware.RateLimitStore
	// Readiness lists the dependencies pinged by GET /health/ready.
	Readiness []handler.Dependency
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	cfg := d.Config
	log := d.Logger

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	resp := response.NewFormatter(cfg.APIVersion, log)
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(resp, log)

	// --- Global middleware ---
	e.Use(
		middleware.Metrics(),
		middleware.Compose(
			middleware.Logging(log),
			middleware.CORS(cfg.CORS.Origins),
			middleware.RateLimit(middleware.RateLimitConfig{
				Window:      cfg.RateLimit.Window,
				MaxRequests: cfg.RateLimit.MaxRequests,
				Store:       d.RateLimitStore,
				Logger:      log,
			}),
		),
		echomiddleware.BodyLimit(bodyLimit),
		echomiddleware.RecoverWithConfig(echomiddleware.RecoverConfig{
			LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
				zerolog.Ctx(c.Request().Context()).Error().Err(err).Bytes("stack", stack).Msg("panic recovered")
				return err
			},
		}),
	)

	// --- Dependencies ---
	authService := service.NewAuthService(d.Users, service.AuthConfig{
		Secret:           cfg.JWT.Secret,
		ExpiresIn:        cfg.JWT.ExpiresIn,
		RefreshExpiresIn: cfg.JWT.RefreshExpiresIn,
	}, log)
	guard := func(required domain.Role) echo.MiddlewareFunc {
		return middleware.Auth(authService, required)
	}

	authHandler := handler.NewAuthHandler(authService, resp)
	yachts := handler.NewYachtHandler(service.NewYachtService(d.Store, log), resp)
	customers := handler.NewCustomerHandler(service.NewResourceService(d.Store, domain.TableCustomers, log), resp)
	charters := handler.NewCharterHandler(service.NewCharterService(d.Store, log), resp)
	users := handler.NewUserHandler(service.NewUserService(d.Store, log), resp)

	// --- Health probes and ops (no auth required) ---
	health := handler.NewHealthHandler(resp, d.Readiness...)
	e.GET("/health", health.Liveness)
	e.GET("/health/ready", health.Readiness)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- API ---
	api := e.Group("/api")
	authHandler.Routes(api.Group("/auth"), guard)

	yachts.Routes(api.Group("/yachts"), guard, handler.Access{
		handler.OpList:   handler.Public,
		handler.OpGet:    handler.Public,
		handler.OpCreate: domain.RoleManager,
		handler.OpUpdate: domain.RoleManager,
		handler.OpDelete: domain.RoleAdmin,
	})
	customers.Routes(api.Group("/customers"), guard, handler.Access{
		handler.OpList:   domain.RoleManager,
		handler.OpGet:    domain.RoleManager,
		handler.OpCreate: domain.RoleManager,
		handler.OpUpdate: domain.RoleManager,
		handler.OpDelete: domain.RoleAdmin,
	})
	charters.Routes(api.Group("/charters"), guard, handler.Access{
		handler.OpList:   domain.RoleManager,
		handler.OpGet:    domain.RoleCustomer,
		handler.OpCreate: domain.RoleCustomer,
		handler.OpUpdate: domain.RoleManager,
		handler.OpDelete: domain.RoleAdmin,
	})
	users.Routes(api.Group("/users"), guard, handler.Access{
		handler.OpList:   domain.RoleAdmin,
		handler.OpGet:    domain.RoleAdmin,
		handler.OpUpdate: domain.RoleAdmin,
	})

	return e
}
