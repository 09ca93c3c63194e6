package main

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/tinoosan/roombook/internal/config"
	"github.com/tinoosan/roombook/internal/errs"
	"github.com/tinoosan/roombook/internal/events"
	httpapi "github.com/tinoosan/roombook/internal/httpapi/v1"
	"github.com/tinoosan/roombook/internal/service/account"
	"github.com/tinoosan/roombook/internal/service/booking"
	"github.com/tinoosan/roombook/internal/session"
	"github.com/tinoosan/roombook/internal/storage/memory"
	pgstore "github.com/tinoosan/roombook/internal/storage/postgres"
	sqlitestore "github.com/tinoosan/roombook/internal/storage/sqlite"
)

// store is what every storage backend provides to the services.
type store interface {
	account.Repo
	account.Writer
	booking.Repo
	booking.Writer
	httpapi.ReadyChecker
}

const (
	devSeedID       = "demo"
	devSeedPassword = "demo1234!"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	// Logger (slog to stdout). Level via LOG_LEVEL; format via LOG_FORMAT (json|text, default json)
	logger := buildLogger(cfg)
	slog.SetDefault(logger)

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("roombook exited", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	var closers []func()
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}()

	st, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	closers = append(closers, closeStore)
	ready := []httpapi.ReadyChecker{st}

	var sessStore session.Store = session.NewMemoryStore()
	if cfg.RedisURL != "" {
		rs, err := session.OpenRedis(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		closers = append(closers, func() { _ = rs.Close() })
		sessStore = rs
		ready = append(ready, rs)
		logger.Info("session store: redis")
	} else {
		logger.Info("session store: memory")
	}

	secret := cfg.SessionKey
	if len(secret) == 0 {
		secret = randomKey()
		logger.Warn("SESSION_KEY not set; using a random key, sessions will not survive a restart")
	}
	sessions := session.NewManager(sessStore, secret, cfg.SessionTTL)

	var pub events.Publisher = events.Nop{}
	if cfg.NATSURL != "" {
		np, err := events.NewNATSPublisher(cfg.NATSURL, logger)
		if err != nil {
			return err
		}
		closers = append(closers, func() { _ = np.Close() })
		pub = np
		logger.Info("event publisher: nats", "url", cfg.NATSURL)
	}

	accounts := account.New(st, st, sessions, logger)
	bookings := booking.New(st, st, pub, logger)

	if cfg.DevSeed {
		devSeed(ctx, logger, accounts)
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.New(accounts, bookings, sessions, ready, cfg.CORSAllowedOrigins, logger).Handler(),
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("roombook service listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctxShutdown); err != nil {
			logger.Error("server shutdown error", "err", err)
			return err
		}
		logger.Info("server stopped")
		return nil
	})
	return g.Wait()
}

// openStore picks the backend: Postgres when DATABASE_URL is set, sqlite when
// SQLITE_PATH is set, memory otherwise.
func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (store, func(), error) {
	switch cfg.Backend() {
	case config.BackendPostgres:
		pg, err := pgstore.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		if err := pg.Migrate(ctx); err != nil {
			pg.Close()
			return nil, nil, err
		}
		logger.Info("storage backend: postgres")
		return pg, pg.Close, nil
	case config.BackendSQLite:
		sq, err := sqlitestore.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite %q: %w", cfg.SQLitePath, err)
		}
		logger.Info("storage backend: sqlite", "path", cfg.SQLitePath)
		return sq, func() { _ = sq.Close() }, nil
	default:
		logger.Info("storage backend: memory")
		return memory.New(), func() {}, nil
	}
}

// devSeed registers a demo account so a fresh local stack can log in at once.
func devSeed(ctx context.Context, l *slog.Logger, accounts account.Service) {
	_, err := accounts.SignUp(ctx, devSeedID, devSeedPassword)
	switch {
	case errors.Is(err, errs.ErrDuplicateAccount):
		l.Info("DEV seed: demo account already present", "id", devSeedID)
		return
	case err != nil:
		l.Error("dev seed failed", "err", err)
		return
	}
	l.Info("DEV seed", "id", devSeedID)
	fmt.Println("==================== DEV SEED ====================")
	fmt.Printf("id: %s\n", devSeedID)
	fmt.Printf("password: %s\n", devSeedPassword)
	fmt.Println("==================================================")
}

func randomKey() []byte {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return b
}

// parseLogLevel maps env values to slog.Leveler
func parseLogLevel(s string) slog.Leveler {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error", "err":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func buildLogger(cfg config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.LogLevel)}
	if cfg.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	// default to JSON
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
