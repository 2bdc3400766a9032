package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/estatehub/estate-api/config"
	httpx "github.com/estatehub/estate-api/internal/http"
)

const shutdownTimeout = 10 * time.Second

// HTTPServerConfig contains configuration for HTTP server.
type HTTPServerConfig struct {
	Config      *config.AppConfig
	Services    ServiceContainer
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
	// ErrCh receives the listener error if the server stops unexpectedly.
	ErrCh chan<- error
}

// StartHTTPServer creates and starts the HTTP server.
// Returns the server instance for graceful shutdown.
func StartHTTPServer(cfg *HTTPServerConfig) *http.Server {
	if cfg == nil {
		return nil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	appCfg := cfg.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}

	handler := buildHTTPHandler(httpHandlerConfig{
		Logger:   logger,
		Services: routerServices(cfg, appCfg, logger),
		HTTP:     appCfg.HTTP,
		IsDev:    appCfg.IsDev,
	})

	return startServer(logger, handler, appCfg.HTTP.Addr, cfg.ErrCh)
}

func routerServices(cfg *HTTPServerConfig, appCfg *config.AppConfig, logger *slog.Logger) httpx.RouterServices {
	svcs := httpx.RouterServices{
		Cookies: httpx.NewCookieTransport(httpx.CookieConfig{
			Domain:     appCfg.HTTP.CookieDomain,
			Secure:     appCfg.HTTP.CookieSecure,
			AccessTTL:  appCfg.Auth.AccessTTL,
			RefreshTTL: appCfg.Auth.RefreshTTL,
		}),
		Readiness: readinessChecks(cfg.DB, cfg.RedisClient),
		Logger:    logger,
	}
	// Typed nil pointers must not leak into the interface fields.
	if cfg.Services.Auth != nil {
		svcs.Auth = cfg.Services.Auth
	}
	if cfg.Services.Identity != nil {
		svcs.Identity = cfg.Services.Identity
	}
	if cfg.Services.Users != nil {
		svcs.Users = cfg.Services.Users
	}
	if cfg.Services.Properties != nil {
		svcs.Properties = cfg.Services.Properties
	}
	return svcs
}

func readinessChecks(db *sql.DB, rdb redis.UniversalClient) map[string]httpx.ReadinessCheck {
	checks := make(map[string]httpx.ReadinessCheck, 2)
	if db != nil {
		checks["postgres"] = db.PingContext
	}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error {
			if err := rdb.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("redis ping: %w", err)
			}
			return nil
		}
	}
	return checks
}

type httpHandlerConfig struct {
	Logger   *slog.Logger
	Services httpx.RouterServices
	HTTP     config.HTTPConfig
	IsDev    bool
}

// buildHTTPHandler wraps the router, listed from outermost to innermost:
// Recover, Logging, CORS, Compression. Compression sits inside Logging so
// logged sizes are the bytes actually sent.
func buildHTTPHandler(cfg httpHandlerConfig) http.Handler {
	var chain []func(http.Handler) http.Handler
	chain = append(chain,
		httpx.Recover(cfg.Logger),
		httpx.Logging(cfg.Logger),
		httpx.CORS(httpx.CORSConfig{
			AllowedOrigins: cfg.HTTP.CORSAllowedOrigins,
			Debug:          cfg.IsDev,
			Logger:         cfg.Logger,
		}),
	)
	if cfg.HTTP.CompressionEnabled {
		cfg.Logger.Info("HTTP compression enabled", "level", cfg.HTTP.CompressionLevel)
		chain = append(chain, httpx.Compression(httpx.CompressionConfig{
			Level:   cfg.HTTP.CompressionLevel,
			MinSize: cfg.HTTP.CompressionMinSize,
			Logger:  cfg.Logger,
		}))
	}

	var h http.Handler = httpx.NewRouter(cfg.Services)
	for i := len(chain) - 1; i >= 0; i-- {
		h = chain[i](h)
	}
	return h
}

func startServer(logger *slog.Logger, handler http.Handler, addr string, errCh chan<- error) *http.Server {
	if addr == "" {
		addr = ":8080"
	}
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("http server listening", "addr", addr)
		err := server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			return
		}
		logger.Error("http server stopped unexpectedly", "error", err)
		if errCh == nil {
			return
		}
		select {
		case errCh <- fmt.Errorf("http server: %w", err):
		default:
		}
	}()
	return server
}

// ShutdownConfig contains dependencies for HTTP server shutdown.
type ShutdownConfig struct {
	// Context parents the shutdown deadline; it must not already be cancelled.
	Context context.Context
	Server  *http.Server
	Logger  *slog.Logger
}

// ShutdownHTTPServer stops accepting connections and waits up to
// shutdownTimeout for in-flight requests.
func ShutdownHTTPServer(cfg ShutdownConfig) error {
	if cfg.Server == nil {
		return nil
	}
	parent := cfg.Context
	if parent == nil {
		parent = context.Background()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithTimeout(parent, shutdownTimeout)
	defer cancel()

	start := time.Now()
	if err := cfg.Server.Shutdown(ctx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	logger.Info("http server stopped", "took", time.Since(start))
	return nil
}
