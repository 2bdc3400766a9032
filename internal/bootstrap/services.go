package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/estatehub/estate-api/config"
	"github.com/estatehub/estate-api/internal/adapters/password"
	redisstore "github.com/estatehub/estate-api/internal/adapters/redis"
	"github.com/estatehub/estate-api/internal/adapters/tokens"
	"github.com/estatehub/estate-api/internal/data"
	"github.com/estatehub/estate-api/internal/observability/metrics"
	"github.com/estatehub/estate-api/internal/observability/statsd"
	"github.com/estatehub/estate-api/internal/service"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Auth        *service.AuthService
	Identity    *service.IdentityResolver
	Credentials *service.CredentialService
	Users       *service.UserService
	Properties  *service.PropertyService
	// Sessions is shared by the auth service, the resolver and the admin CLI.
	Sessions      *redisstore.SessionStore
	Tokens        *tokens.Codec
	Observability ObservabilityContainer
}

// ObservabilityContainer groups shared observability dependencies.
type ObservabilityContainer struct {
	MetricsSink   *statsd.Client
	MetricsConfig config.MetricsConfig
}

// sink returns the metrics sink as an interface, nil when metrics are off.
//
//nolint:ireturn // callers accept any statsd.Sink.
func (o ObservabilityContainer) sink() statsd.Sink {
	if o.MetricsSink == nil {
		return nil
	}
	return o.MetricsSink
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// buildObservability configures the statsd sink when metrics are enabled.
// A sink that cannot be created only disables metrics.
func buildObservability(logger *slog.Logger, cfg config.MetricsConfig) ObservabilityContainer {
	obsLogger := logger
	if obsLogger == nil {
		obsLogger = slog.Default()
	}

	var metricsSink *statsd.Client
	if cfg.Active() {
		client, err := statsd.NewClient(statsd.Config{
			Enabled:    true,
			Address:    cfg.Addr,
			Prefix:     cfg.Prefix,
			Logger:     obsLogger,
			GlobalTags: cfg.Tags,
		})
		if err != nil {
			obsLogger.Error("failed to initialise statsd client", "error", err)
		} else {
			metricsSink = client
		}
	}

	return ObservabilityContainer{
		MetricsSink:   metricsSink,
		MetricsConfig: cfg,
	}
}

// NewServices wires repositories, adapters and services. It fails only when
// the token keys cannot be loaded.
func NewServices(deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return ServiceContainer{}, errors.New("service deps require config")
	}
	if deps.RedisClient == nil {
		return ServiceContainer{}, errors.New("service deps require a redis client")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := deps.Config

	codec, err := BuildTokenCodec(cfg.Auth)
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("build token codec: %w", err)
	}

	observability := buildObservability(logger, cfg.Metrics)

	userRepo := data.NewUserRepo(deps.DB)
	propertyRepo := data.NewPropertyRepo(deps.DB)
	hasher := password.NewHasher(cfg.Auth.BcryptCost)
	sessions := redisstore.NewSessionStoreWithPrefix(deps.RedisClient, cfg.Auth.SessionKeyPrefix)

	credentials := service.NewCredentialService(service.CredentialServiceOptions{
		Users:  userRepo,
		Hasher: hasher,
		Logger: logger,
	})

	auth := service.NewAuthService(service.AuthServiceOptions{
		Tokens:      codec,
		Sessions:    sessions,
		Users:       userRepo,
		Credentials: credentials,
		AccessTTL:   cfg.Auth.AccessTTL,
		RefreshTTL:  cfg.Auth.RefreshTTL,
		SessionTTL:  cfg.Auth.SessionTTL,
		Logger:      logger,
		Metrics:     observability.sink(),
	})

	identity := service.NewIdentityResolver(service.IdentityResolverOptions{
		Tokens:   codec,
		Sessions: sessions,
		Users:    userRepo,
		Logger:   logger,
	})

	return ServiceContainer{
		Auth:        auth,
		Identity:    identity,
		Credentials: credentials,
		Users: service.NewUserService(service.UserServiceOptions{
			Users:      userRepo,
			Properties: propertyRepo,
			Hasher:     hasher,
			Logger:     logger,
		}),
		Properties:    service.NewPropertyService(service.PropertyServiceOptions{Properties: propertyRepo}),
		Sessions:      sessions,
		Tokens:        codec,
		Observability: observability,
	}, nil
}

// ServiceOrchestrationConfig contains configuration for service orchestration.
type ServiceOrchestrationConfig struct {
	Config      *config.AppConfig
	Services    ServiceContainer
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

const (
	// drainTimeout bounds how long background services get to return after cancel.
	drainTimeout         = 15 * time.Second
	sessionGaugeInterval = time.Minute
)

// backgroundService runs until ctx is cancelled.
type backgroundService struct {
	name  string
	start func(context.Context) error
}

// runBackground reports a failure other than cancellation on errCh.
func runBackground(ctx context.Context, logger *slog.Logger, errCh chan<- error, svc backgroundService) {
	logger.Info("background service started", "service", svc.name)
	defer logger.Info("background service stopped", "service", svc.name)

	err := svc.start(ctx)
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	select {
	case errCh <- fmt.Errorf("%s: %w", svc.name, err):
	default:
		logger.Error("background service failed", "service", svc.name, "error", err)
	}
}

// newSessionGaugeService periodically reports how many sessions are live.
// It only runs when a metrics sink is configured.
func newSessionGaugeService(sessions *redisstore.SessionStore, sink statsd.Sink, logger *slog.Logger) backgroundService {
	return backgroundService{
		name: "session gauge",
		start: func(ctx context.Context) error {
			ticker := time.NewTicker(sessionGaugeInterval)
			defer ticker.Stop()
			for {
				reportLiveSessions(ctx, sessions, sink, logger)
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-ticker.C:
				}
			}
		},
	}
}

func reportLiveSessions(ctx context.Context, sessions *redisstore.SessionStore, sink statsd.Sink, logger *slog.Logger) {
	count := 0
	err := sessions.Scan(ctx, func(redisstore.LiveSession) error {
		count++
		return nil
	})
	if err != nil {
		if ctx.Err() == nil {
			logger.Warn("count live sessions", "error", err)
		}
		return
	}
	metrics.EmitLiveSessions(sink, count)
}

func buildBackgroundServices(cfg *ServiceOrchestrationConfig, logger *slog.Logger) []backgroundService {
	sink := cfg.Services.Observability.sink()
	if sink == nil || cfg.Services.Sessions == nil {
		return nil
	}
	return []backgroundService{newSessionGaugeService(cfg.Services.Sessions, sink, logger)}
}

// RunServicesWithShutdown serves HTTP and runs the background services until
// SIGINT or SIGTERM arrives or one of them fails, then drains everything.
func RunServicesWithShutdown(cfg *ServiceOrchestrationConfig) error {
	if cfg == nil {
		return errors.New("service orchestration config is required")
	}
	if cfg.Config == nil {
		return errors.New("service orchestration config missing AppConfig")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return serveUntilDone(ctx, cfg)
}

// serveUntilDone is RunServicesWithShutdown minus signal handling: cancelling
// ctx starts the drain.
func serveUntilDone(ctx context.Context, cfg *ServiceOrchestrationConfig) error {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	background := buildBackgroundServices(cfg, logger)
	errCh := make(chan error, len(background)+1)

	server := StartHTTPServer(&HTTPServerConfig{
		Config:      cfg.Config,
		Services:    cfg.Services,
		DB:          cfg.DB,
		RedisClient: cfg.RedisClient,
		Logger:      logger,
		ErrCh:       errCh,
	})

	var wg sync.WaitGroup
	for _, svc := range background {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runBackground(ctx, logger, errCh, svc)
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case runErr = <-errCh:
		logger.Error("service failed, shutting down", "error", runErr)
	}
	cancel()

	// ctx is cancelled by now; the server still needs a live deadline to drain.
	shutdownErr := ShutdownHTTPServer(ShutdownConfig{
		Context: context.WithoutCancel(ctx),
		Server:  server,
		Logger:  logger,
	})
	if !waitGroupTimeout(&wg, drainTimeout) {
		logger.Warn("background services still running after drain timeout", "timeout", drainTimeout)
	}
	return errors.Join(runErr, shutdownErr)
}

// waitGroupTimeout reports whether wg finished within d.
func waitGroupTimeout(wg *sync.WaitGroup, d time.Duration) bool {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-done:
		return true
	case <-timer.C:
		return false
	}
}
