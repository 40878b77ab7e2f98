// Package server assembles the HTTP surface: echo instance, middleware chain
// and route registration.
package server

import (
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/Jhojannt/mapping-repo/config"
	"github.com/Jhojannt/mapping-repo/pkg/middleware"
	"github.com/Jhojannt/mapping-repo/pkg/routes/batch"
	"github.com/Jhojannt/mapping-repo/pkg/routes/catalog"
	"github.com/Jhojannt/mapping-repo/pkg/routes/health"
	"github.com/Jhojannt/mapping-repo/pkg/routes/row"
	"github.com/Jhojannt/mapping-repo/pkg/routes/rules"
)

// New builds the echo instance with the standard middleware chain and all
// route groups registered. The health checker is registered separately so it
// sits outside the tenant middleware.
func New(cfg *config.Config, logger ectologger.Logger, checker *health.Checker) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Server.ReadTimeout = time.Duration(cfg.HttpServerReadTimeoutSeconds) * time.Second
	e.Server.WriteTimeout = time.Duration(cfg.HttpServerWriteTimeoutSeconds) * time.Second
	e.Server.IdleTimeout = time.Duration(cfg.HttpServerIdleTimeoutSeconds) * time.Second

	e.HTTPErrorHandler = middleware.Error(logger)

	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: cfg.AllowMethods,
	}))
	e.Use(otelecho.Middleware(cfg.AppName))

	if checker != nil {
		checker.RegisterRoutes(e)
	}

	api := e.Group("/api/v1")
	api.Use(middleware.Context())
	api.Use(middleware.Logger(logger))

	rules.Register(api.Group("/rules"))
	catalog.Register(api.Group("/catalog"))
	batch.Register(api.Group("/batch"))
	row.Register(api.Group("/rows"))

	return e
}
