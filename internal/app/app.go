// Package app wires the stores, services and both listeners into one process.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	gomongo "go.mongodb.org/mongo-driver/mongo"

	"github.com/openshelf/library-system/internal/api"
	"github.com/openshelf/library-system/internal/api/handler"
	"github.com/openshelf/library-system/internal/core/domain"
	"github.com/openshelf/library-system/internal/core/ports"
	"github.com/openshelf/library-system/internal/core/service"
	"github.com/openshelf/library-system/internal/infrastructure/db/mongo"
	"github.com/openshelf/library-system/internal/infrastructure/db/redis"
	"github.com/openshelf/library-system/internal/infrastructure/db/sqlite"
	opshttp "github.com/openshelf/library-system/internal/infrastructure/http"
	"github.com/openshelf/library-system/internal/infrastructure/queue"
	"github.com/openshelf/library-system/internal/pkg/config"
	"github.com/openshelf/library-system/internal/server"
)

const shutdownTimeout = 10 * time.Second

// App owns every long-lived resource of the server process.
type App struct {
	cfg *config.Config
	log zerolog.Logger

	db     *sql.DB
	rdb    *goredis.Client
	mongo  *gomongo.Client
	ledger *queue.Dispatcher

	server *server.Server
	ops    *http.Server

	closeOnce sync.Once
}

// Option customises New.
type Option func(*options)

type options struct {
	registerer prometheus.Registerer
}

// WithRegisterer sends the ops listener's request metrics to reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) { o.registerer = reg }
}

// StoreOptions derives the sqlite connection settings from cfg.
func StoreOptions(cfg *config.Config) sqlite.Config {
	return sqlite.Config{Path: cfg.DB.Path, PoolSize: cfg.DB.PoolSize}
}

// OpenStore connects to SQLite, applies migrations and seeds the
// administrator.
func OpenStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*sql.DB, error) {
	db, err := sqlite.Connect(ctx, StoreOptions(cfg))
	if err != nil {
		return nil, err
	}
	if err := sqlite.Migrate(db, log); err != nil {
		_ = db.Close()
		return nil, err
	}
	seeded, err := sqlite.SeedAdmin(ctx, db, cfg.Admin.Email, cfg.Admin.PasswordDigest)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if seeded {
		log.Info().Str("username", domain.AdminUsername).Msg("administrator account created")
	}
	return db, nil
}

// New opens the stores and builds both listeners. Redis and MongoDB are only
// contacted when configured.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{cfg: cfg, log: log}

	db, err := OpenStore(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	a.db = db
	log.Info().Str("path", cfg.DB.Path).Int("pool_size", cfg.DB.PoolSize).Msg("sqlite ready")

	var cache ports.BookCache
	if cfg.Redis.Addr != "" {
		rdb, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			a.Close()
			return nil, err
		}
		a.rdb = rdb
		cache = redis.NewBookCache(rdb, cfg.Redis.BookCacheTTL)
		log.Info().Str("addr", cfg.Redis.Addr).Dur("ttl", cfg.Redis.BookCacheTTL).Msg("book cache enabled")
	}

	var (
		ledgerDB  *gomongo.Database
		publisher ports.LedgerPublisher
	)
	if cfg.Mongo.URI != "" {
		client, database, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			a.Close()
			return nil, err
		}
		a.mongo, ledgerDB = client, database

		repo := mongo.NewLedgerRepository(database)
		if err := repo.EnsureIndexes(ctx); err != nil {
			log.Warn().Err(err).Msg("ledger indexes not created")
		}
		a.ledger = queue.NewDispatcher(cfg.AuditWorkers, repo, log.With().Str("component", "ledger").Logger())
		publisher = a.ledger
		log.Info().Str("database", cfg.Mongo.Database).Int("workers", cfg.AuditWorkers).Msg("circulation ledger enabled")
	}

	// --- Services ---
	userRepo := sqlite.NewUserRepository(db)
	bookRepo := sqlite.NewBookRepository(db)
	borrowRepo := sqlite.NewBorrowRepository(db)

	authService := service.NewAuthService(userRepo, log)
	userService := service.NewUserService(userRepo, log)
	bookService := service.NewBookService(bookRepo, cache, log)
	borrowService := service.NewBorrowService(bookRepo, borrowRepo, log,
		service.WithBookCache(cache),
		service.WithLedger(publisher),
	)

	// --- Public listener ---
	router := api.NewRouter()
	api.RegisterRoutes(router, api.Handlers{
		Auth:   handler.NewAuthHandler(authService, log),
		Book:   handler.NewBookHandler(bookService, handler.NewValidator(), log),
		Borrow: handler.NewBorrowHandler(borrowService),
		Admin:  handler.NewAdminHandler(bookService, userService, borrowService),
	})
	engine := api.NewEngine(
		api.NewStaticStage(cfg.StaticRoot, cfg.TemplateRoot, log),
		router,
		api.NewErrorHandler(log, cfg.VerboseErrors),
		log,
	)
	a.server = server.New(server.Config{
		Addr:        cfg.Addr,
		BufferSize:  cfg.Server.ReadBufferSize,
		ReadTimeout: cfg.Server.ReadTimeout,
	}, engine, log)

	// --- Ops listener ---
	a.ops = &http.Server{
		Addr: cfg.OpsAddr,
		Handler: opshttp.NewRouter(opshttp.Deps{
			DB:         db,
			Redis:      a.rdb,
			Ledger:     ledgerDB,
			Registerer: o.registerer,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	return a, nil
}

// Run binds both listeners and serves until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", a.cfg.Addr, err)
	}
	opsLn, err := net.Listen("tcp", a.cfg.OpsAddr)
	if err != nil {
		_ = ln.Close()
		return fmt.Errorf("listen %s: %w", a.cfg.OpsAddr, err)
	}
	return a.Serve(ctx, ln, opsLn)
}

// Serve runs the public and ops listeners on the given sockets until ctx is
// cancelled or either listener fails, then shuts both down and waits for
// in-flight requests.
func (a *App) Serve(ctx context.Context, ln, opsLn net.Listener) error {
	// Requests and ledger workers outlive ctx so in-flight work completes
	// during shutdown.
	base := context.WithoutCancel(ctx)
	if a.ledger != nil {
		a.ledger.Start(base)
	}

	errCh := make(chan error, 2)
	go func() {
		errCh <- a.server.Serve(base, ln)
	}()
	go func() {
		a.log.Info().Str("addr", opsLn.Addr().String()).Msg("ops listening")
		if err := a.ops.Serve(opsLn); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("ops listener: %w", err)
			return
		}
		errCh <- nil
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
		if runErr == nil {
			runErr = errors.New("listener stopped unexpectedly")
		}
	}
	a.log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(base, shutdownTimeout)
	defer cancel()

	errs := []error{runErr}
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("public listener: %w", err))
	}
	if err := a.ops.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("ops listener: %w", err))
	}

	a.Close()
	return errors.Join(errs...)
}

// Close releases the stores. The ledger is drained before its database is
// disconnected.
func (a *App) Close() {
	a.closeOnce.Do(a.close)
}

func (a *App) close() {
	if a.ledger != nil {
		a.ledger.Close()
	}
	if a.mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := a.mongo.Disconnect(ctx); err != nil {
			a.log.Warn().Err(err).Msg("mongo disconnect failed")
		}
		cancel()
	}
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.log.Warn().Err(err).Msg("redis close failed")
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Warn().Err(err).Msg("sqlite close failed")
		}
	}
}
