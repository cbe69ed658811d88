package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/davidbz/judgepanel/internal/config"
	"github.com/davidbz/judgepanel/internal/domain"
	"github.com/davidbz/judgepanel/internal/history"
	"github.com/davidbz/judgepanel/internal/http"
	"github.com/davidbz/judgepanel/internal/http/middleware"
	"github.com/davidbz/judgepanel/internal/observability"
	"github.com/davidbz/judgepanel/internal/provider/chat"
	"github.com/davidbz/judgepanel/internal/provider/dryrun"
	"github.com/davidbz/judgepanel/internal/provider/openai"
	"github.com/davidbz/judgepanel/internal/provider/registry"
)

const shutdownTimeout = 15 * time.Second

func main() {
	container := buildContainer()

	err := container.Invoke(func(server *http.Server, limiter *middleware.RateLimiter, logger *zap.Logger) error {
		defer func() { _ = logger.Sync() }()
		defer limiter.Stop()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		serveErr := make(chan error, 1)
		go func() { serveErr <- server.Start() }()

		select {
		case err := <-serveErr:
			return err
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	if err != nil {
		log.Fatalf("Application stopped with error: %v", err)
	}
}

func buildContainer() *dig.Container {
	container := dig.New()

	// Configuration
	if err := container.Provide(config.Load); err != nil {
		log.Fatalf("Failed to provide config: %v", err)
	}
	if err := container.Provide(config.ParseDependenciesConfig); err != nil {
		log.Fatalf("Failed to provide config dependencies: %v", err)
	}

	// Observability
	if err := container.Provide(observability.InitLogger); err != nil {
		log.Fatalf("Failed to provide logger: %v", err)
	}
	if err := container.Provide(func(logger *zap.Logger) domain.EventPublisher {
		return observability.NewEventBus(logger)
	}); err != nil {
		log.Fatalf("Failed to provide event bus: %v", err)
	}

	// Provider Registry
	if err := container.Provide(func() domain.ProviderRegistry {
		return registry.NewRegistry()
	}); err != nil {
		log.Fatalf("Failed to provide registry: %v", err)
	}

	// Text generator (optional)
	if err := container.Provide(provideGenerator); err != nil {
		log.Fatalf("Failed to provide text generator: %v", err)
	}

	// History
	if err := container.Provide(history.New); err != nil {
		log.Fatalf("Failed to provide history store: %v", err)
	}

	// Register rating providers with registry (invoked for side effects)
	if err := container.Invoke(registerRatingProviders); err != nil {
		log.Fatalf("Failed to register rating providers: %v", err)
	}

	// Domain Services
	if err := container.Provide(domain.NewRatingService); err != nil {
		log.Fatalf("Failed to provide rating service: %v", err)
	}
	if err := container.Provide(domain.NewEvaluationService); err != nil {
		log.Fatalf("Failed to provide evaluation service: %v", err)
	}

	// HTTP Layer
	if err := container.Provide(middleware.NewRateLimiter); err != nil {
		log.Fatalf("Failed to provide rate limiter: %v", err)
	}
	if err := container.Provide(middleware.BuildMiddlewareChain); err != nil {
		log.Fatalf("Failed to provide middleware chain: %v", err)
	}
	if err := container.Provide(http.NewHandler); err != nil {
		log.Fatalf("Failed to provide HTTP handler: %v", err)
	}
	if err := container.Provide(http.NewServer); err != nil {
		log.Fatalf("Failed to provide HTTP server: %v", err)
	}

	return container
}

// provideGenerator returns a nil generator when no API key is set so the
// rating endpoints stay usable without one.
func provideGenerator(cfg *openai.Config, logger *zap.Logger) (domain.TextGenerator, error) {
	if cfg.APIKey == "" {
		logger.Warn("text generator not configured; evaluations are disabled")
		return nil, nil
	}

	generator, err := openai.NewGenerator(*cfg)
	if err != nil {
		return nil, err
	}

	logger.Info("text generator configured", observability.String("model", generator.Model()))
	return generator, nil
}

// registerRatingProviders registers one client per configured provider.
// Providers with incomplete configuration are logged and skipped.
func registerRatingProviders(reg domain.ProviderRegistry, cfg *config.RatingConfig, logger *zap.Logger) error {
	ctx := context.Background()

	if cfg.DryRun {
		for _, id := range cfg.EnabledIDs() {
			if err := reg.Register(ctx, dryrun.NewProvider(id)); err != nil {
				return err
			}
		}
		logger.Warn("dry-run mode: rating providers return synthetic scores",
			observability.Strings("providers", cfg.EnabledIDs()))
		return nil
	}

	configs, invalid := cfg.Providers()
	for _, err := range invalid {
		var configErr *domain.ConfigurationError
		if errors.As(err, &configErr) {
			logger.Warn("rating provider skipped",
				observability.String("provider", configErr.Provider),
				observability.String("missing", configErr.Setting))
			continue
		}
		logger.Warn("rating provider skipped", observability.Error(err))
	}

	for _, pc := range configs {
		client, err := chat.NewClient(pc, nil)
		if err != nil {
			return err
		}
		if err := reg.Register(ctx, client); err != nil {
			return err
		}
		logger.Info("rating provider registered",
			observability.String("provider", pc.ID),
			observability.String("model", pc.Model))
	}

	if len(configs) == 0 {
		logger.Warn("no rating providers configured; rating requests will fail")
	}

	return nil
}
