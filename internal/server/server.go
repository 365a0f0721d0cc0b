package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/nguyentranbao-ct/swipe-preview/internal/config"
	"github.com/nguyentranbao-ct/swipe-preview/internal/proxy"
	pkgmdw "github.com/nguyentranbao-ct/swipe-preview/internal/server/middleware"
	"github.com/nguyentranbao-ct/swipe-preview/pkg/logger"
	log "github.com/nguyentranbao-ct/swipe-preview/pkg/logger/logctx"
	"go.uber.org/fx"
)

// NewEcho builds the HTTP surface: middlewares, the API routes and the
// inference proxy.
func NewEcho(conf *config.Config, handler Controller, p *proxy.Proxy) (*echo.Echo, error) {
	corsPattern, err := regexp.Compile(conf.Server.CORSPattern)
	if err != nil {
		return nil, fmt.Errorf("compile cors pattern: %w", err)
	}

	httpLogger := logger.MustNamed("http")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = pkgmdw.NewValidator()
	e.HTTPErrorHandler = pkgmdw.ErrorHandler(httpLogger)

	e.Use(pkgmdw.Metrics())
	e.Use(pkgmdw.RequestID())
	e.Use(pkgmdw.AccessLog(pkgmdw.AccessLogConfig{
		Logger: httpLogger,
		Skipper: func(c echo.Context) bool {
			path := c.Request().URL.Path
			return path == "/health" || path == "/metrics"
		},
		// proxied payloads can be large inference results
		SkipResponseBody: func(c echo.Context) bool {
			return c.Path() == p.Prefix+"/*"
		},
	}))
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			log.Errorw(c.Request().Context(), "PANIC RECOVER", "error", err, "stack", string(stack))
			return err
		},
	}))
	e.Use(pkgmdw.CORS(corsPattern))

	if conf.Server.Pprof {
		pkgmdw.PprofWrap(e)
	}

	e.GET("/health", handler.Health)

	api := e.Group("/v1")
	api.GET("/deck", pkgmdw.WrapHandler(handler.GetDeck))
	api.PUT("/deck/snapshot", pkgmdw.WrapHandler(handler.ReplaceSnapshot))
	api.POST("/deck/refresh", pkgmdw.WrapHandler(handler.Refresh))
	api.POST("/deck/swipe", pkgmdw.WrapHandler(handler.Swipe))
	api.POST("/products/:id/generate", pkgmdw.WrapHandler(handler.Generate))
	api.GET("/products/:id/generation", pkgmdw.WrapHandler(handler.GenerationState))
	api.GET("/modal", pkgmdw.WrapHandler(handler.GetModal))
	api.POST("/modal", pkgmdw.WrapHandler(handler.OpenModal))
	api.DELETE("/modal", pkgmdw.WrapHandler(handler.CloseModal))

	p.Mount(e)

	return e, nil
}

func StartServer(
	lc fx.Lifecycle,
	sd fx.Shutdowner,
	conf *config.Config,
	e *echo.Echo,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Infow(ctx, "starting HTTP server", "addr", conf.Server.Addr)
				if err := e.Start(conf.Server.Addr); !errors.Is(err, http.ErrServerClosed) {
					log.Errorw(context.Background(), "HTTP server stopped", "error", err)
					_ = sd.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return e.Shutdown(ctx)
		},
	})
}
