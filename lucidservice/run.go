// Package lucidservice boots the dream journal HTTP service.
package lucidservice

import (
	"context"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/lucidia/lucid-server/internal/api"
	"github.com/lucidia/lucid-server/internal/chat"
	"github.com/lucidia/lucid-server/internal/completion"
	"github.com/lucidia/lucid-server/internal/config"
	"github.com/lucidia/lucid-server/internal/dreams"
	"github.com/lucidia/lucid-server/internal/enrich"
	"github.com/lucidia/lucid-server/internal/factory"
	"github.com/lucidia/lucid-server/internal/logger"
	"github.com/lucidia/lucid-server/internal/prefs"
)

// Run starts the HTTP server and blocks until shutdown or error.
func Run() error {
	log := logger.New("lucid-server")

	cfg, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("failed to load configuration")
		return err
	}

	ctx, stop := newServerContext()
	defer stop()

	router, cleanup, err := buildRouter(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	server := newHTTPServer(ctx, cfg, router)
	errCh := serveHTTP(server, log, cfg)

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			log.Error().Err(err).Msg("server forced to shutdown")
			return err
		}
		log.Info().Msg("server exited")
		return nil
	case err := <-errCh:
		log.Error().Err(err).Msg("HTTP server failed")
		return err
	}
}

// buildRouter wires every dependency and returns the route table plus a
// cleanup function for resources that need closing on exit.
func buildRouter(ctx context.Context, cfg *config.Config, log zerolog.Logger) (http.Handler, func(), error) {
	provider, err := completion.NewOpenAI(cfg.OpenAIAPIKey, cfg.ChatModel, cfg.CompletionModel, cfg.EmbedModel)
	if err != nil {
		log.Error().Err(err).Msg("completion provider unavailable")
		return nil, nil, err
	}

	store, err := factory.NewStore(ctx, cfg, provider, log)
	if err != nil {
		log.Error().Err(err).Msg("memory store unavailable")
		return nil, nil, err
	}

	prefsStore, err := prefs.Open(ctx, cfg.SQLitePath)
	if err != nil {
		log.Error().Err(err).Msg("preferences store unavailable")
		return nil, nil, err
	}

	verifier, err := factory.NewVerifier(cfg, log)
	if err != nil {
		_ = prefsStore.Close()
		return nil, nil, err
	}

	journal := dreams.NewService(store, log)

	policy := enrich.FixedDelay{
		Delay:       time.Duration(cfg.RetryDelaySeconds) * time.Second,
		MaxAttempts: cfg.MaxRetries,
	}
	enricher := enrich.New(provider, journal, policy, log)
	enricher.IntelligenceLevel = cfg.IntelligenceLevel
	enricher.ForceRegenerate = cfg.ForceRegenerate

	sessions := chat.NewSessionStore(time.Duration(cfg.SessionTTLMinutes) * time.Minute)
	chatSvc := chat.NewService(provider, journal, sessions, log)

	srv := api.NewServer(journal, enricher, chatSvc, prefsStore, verifier, store.HealthCheck, log)
	cleanup := func() { _ = prefsStore.Close() }
	return srv.Router(), cleanup, nil
}

func newServerContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func newHTTPServer(ctx context.Context, cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.GetHTTPAddr(),
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
}

func serveHTTP(server *http.Server, log zerolog.Logger, cfg *config.Config) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.Port).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	return errCh
}
