package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/Nireeksha2317/bharath-scheme-bot-multilingual-ai-guide/internal/cache"
	"github.com/Nireeksha2317/bharath-scheme-bot-multilingual-ai-guide/internal/config"
	"github.com/Nireeksha2317/bharath-scheme-bot-multilingual-ai-guide/internal/events"
	httpapi "github.com/Nireeksha2317/bharath-scheme-bot-multilingual-ai-guide/internal/http"
	"github.com/Nireeksha2317/bharath-scheme-bot-multilingual-ai-guide/internal/observability"
	"github.com/Nireeksha2317/bharath-scheme-bot-multilingual-ai-guide/internal/repo"
	"github.com/Nireeksha2317/bharath-scheme-bot-multilingual-ai-guide/internal/seed"
	"github.com/Nireeksha2317/bharath-scheme-bot-multilingual-ai-guide/internal/services"
	"github.com/Nireeksha2317/bharath-scheme-bot-multilingual-ai-guide/internal/sysutil"
)

const (
	shutdownGrace = 10 * time.Second
	purgeEvery    = time.Hour
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Starts the scheme directory API. The catalogue is seeded on first start
unless SEED_ON_START=false. Redis and RabbitMQ are used when configured and
skipped with a warning when unreachable.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "listen port (overrides PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	cfg.Port = sysutil.FirstNonEmpty(servePort, cfg.Port)
	sysutil.SetupLogger(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogPretty)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	go a.purgeLoop(ctx, purgeEvery)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", a.server.Addr).Str("version", version).Msg("listening")
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := a.shutdown(sctx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	if err := shutdownOTel(sctx); err != nil {
		log.Warn().Err(err).Msg("otel shutdown")
	}
	return nil
}

// app is the assembled server with the resources it owns.
type app struct {
	server  *http.Server
	db      *gorm.DB
	schemes *services.SchemeService
	chat    *services.ChatService
	idem    *services.IdempotencyService
	closers []func() error

	drained   bool
	abandoned bool
}

// newApp opens the store, seeds it when asked, connects the optional
// cache and event publisher and builds the router. Only store errors are
// fatal.
func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	db, err := repo.Open(cfg.DB.Driver, cfg.DB.DSN, cfg.DB.Tracing)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	a := &app{db: db}

	a.schemes = services.NewSchemeService(db, services.Store{})
	a.schemes.StateAlwaysInclude = cfg.StateAlwaysInclude
	if cfg.Redis.Addr != "" {
		rc, err := cache.NewRedisClient(cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("scheme cache disabled")
		} else {
			a.schemes.Cache = rc
			a.closers = append(a.closers, rc.Close)
		}
	}
	if a.schemes.Cache == nil && cfg.Redis.MemorySize > 0 {
		a.schemes.Cache = cache.NewMemoryClient(cfg.Redis.MemorySize)
	}
	if a.schemes.Cache != nil {
		a.schemes.CacheTTL = cfg.Redis.TTL
	}

	if cfg.Seed.OnStart {
		list, err := seed.Resolve(cfg.Seed.Path)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("load catalogue: %w", err)
		}
		n, err := a.schemes.Seed(ctx, list)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("seed: %w", err)
		}
		log.Info().Int("inserted", n).Msg("catalogue seed checked")
	}

	a.chat = services.NewChatService(db, services.Store{})
	a.chat.StateAlwaysInclude = cfg.StateAlwaysInclude
	a.chat.MaxInline = cfg.Chat.MaxInline
	a.chat.MaxMessageRunes = cfg.Chat.MaxMessageRunes
	a.chat.LogTimeout = cfg.Chat.LogTimeout
	if cfg.Rabbit.URL != "" {
		pub, err := events.NewPublisher(cfg.Rabbit.URL, cfg.Rabbit.Queue)
		if err != nil {
			log.Warn().Err(err).Str("queue", cfg.Rabbit.Queue).Msg("chat-log events disabled")
		} else {
			a.chat.Events = pub
			a.closers = append(a.closers, pub.Close)
		}
	}

	a.idem = services.NewIdempotencyService(db, cfg.IdempotencyTTL)

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, httpapi.Services{
		Schemes:     a.schemes,
		Chat:        a.chat,
		Idempotency: a.idem,
	}, cfg)

	a.server = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}
	return a, nil
}

// purgeLoop drops expired idempotency records until ctx is done.
func (a *app) purgeLoop(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := a.idem.PurgeExpired(ctx)
			if err != nil {
				log.Warn().Err(err).Msg("idempotency purge failed")
				continue
			}
			if n > 0 {
				log.Debug().Int64("deleted", n).Msg("idempotency purge")
			}
		}
	}
}

// shutdown stops the server and waits for the chat-log writes of the
// requests it served, so their spans end before the tracer is flushed. When
// Shutdown gives up, handlers may still be starting writes and the wait is
// skipped.
func (a *app) shutdown(ctx context.Context) error {
	if err := a.server.Shutdown(ctx); err != nil {
		a.abandoned = true
		return err
	}
	a.drain()
	return nil
}

func (a *app) drain() {
	if a.chat == nil || a.drained || a.abandoned {
		return
	}
	a.chat.Wait()
	a.drained = true
}

// close drains pending chat-log writes unless shutdown already did or gave
// up, then releases the publisher, cache and database.
func (a *app) close() {
	a.drain()
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Warn().Err(err).Msg("close")
		}
	}
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
