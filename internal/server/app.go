// Package server wires the login service together: credential store,
// password verifier, token issuer, provisioning and the HTTP and gRPC
// listeners, and runs them until a shutdown signal arrives.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/entrelibros-auth/internal/logging"
	"github.com/dmitrijs2005/entrelibros-auth/internal/server/auth"
	"github.com/dmitrijs2005/entrelibros-auth/internal/server/config"
	"github.com/dmitrijs2005/entrelibros-auth/internal/server/provision"
	"github.com/dmitrijs2005/entrelibros-auth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/entrelibros-auth/internal/server/repositories/users"
	"github.com/dmitrijs2005/entrelibros-auth/internal/server/rest"
	"github.com/dmitrijs2005/entrelibros-auth/internal/server/services"
	"github.com/redis/go-redis/v9"

	gs "github.com/dmitrijs2005/entrelibros-auth/internal/server/grpc"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	authService *services.AuthService
	limiter     *rest.RateLimiter
	closers     []func() error
}

// NewApp opens the configured credential store, provisions users and
// builds the authentication service.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	app := &App{config: c, logger: logger}

	verifier, err := auth.NewPasswordVerifier(c.BcryptCost, c.HashWorkers)
	if err != nil {
		return nil, fmt.Errorf("password verifier init error: %w", err)
	}

	store, db, err := app.openStore(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}

	if err := app.provision(ctx, store, db, verifier); err != nil {
		app.Close()
		return nil, fmt.Errorf("provisioning error: %w", err)
	}

	if c.SecretKey == "" {
		logger.Warn(ctx, "JWT_SECRET is not set; logins will fail with auth.errors.jwt_not_configured")
	}

	issuer := auth.NewTokenIssuer(c.SecretKey, c.TokenTTL)
	app.authService = services.NewAuthService(store, verifier, issuer, logger)
	app.limiter = rest.NewRateLimiter(c.LoginRateLimit, c.LoginRateBurst)

	return app, nil
}

func (app *App) openStore(ctx context.Context) (users.Store, *sql.DB, error) {
	switch app.config.StorageBackend {
	case config.BackendPostgres:
		db, err := repomanager.OpenPostgres(ctx, app.config.DatabaseDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("db init error: %w", err)
		}
		app.closers = append(app.closers, db.Close)

		rm := repomanager.NewPostgresRepositoryManager()
		if err := rm.RunMigrations(ctx, db); err != nil {
			return nil, nil, fmt.Errorf("db migration error: %w", err)
		}
		return rm.Users(db), db, nil

	case config.BackendRedis:
		opts, err := redis.ParseURL(app.config.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("redis url error: %w", err)
		}
		client := redis.NewClient(opts)
		app.closers = append(app.closers, client.Close)

		if err := client.Ping(ctx).Err(); err != nil {
			return nil, nil, fmt.Errorf("redis init error: %w", err)
		}
		return users.NewRedisRepository(client), nil, nil

	default:
		return users.NewMemoryRepository(), nil, nil
	}
}

// provision loads the configured seed. Without a seed source only the
// memory backend is filled, with the demo account.
func (app *App) provision(ctx context.Context, store users.Store, db *sql.DB, h provision.Hasher) error {
	var seed []provision.SeedUser

	switch {
	case app.config.SeedSource != "":
		s, err := provision.LoadSeed(ctx, app.config.SeedSource, provision.S3Settings{
			AccessKey:    app.config.S3AccessKey,
			SecretKey:    app.config.S3SecretKey,
			Region:       app.config.S3Region,
			BaseEndpoint: app.config.S3BaseEndpoint,
		})
		if err != nil {
			return err
		}
		seed = s
	case app.config.StorageBackend == config.BackendMemory:
		seed = provision.DefaultSeed()
	default:
		return nil
	}

	p := provision.NewProvisioner(h, app.logger)
	if db != nil {
		return p.ApplyPostgres(ctx, db, repomanager.NewPostgresRepositoryManager(), seed)
	}
	return p.Apply(ctx, store, seed)
}

// Close releases the store connections.
func (app *App) Close() error {
	var errs []error
	for i := len(app.closers) - 1; i >= 0; i-- {
		errs = append(errs, app.closers[i]())
	}
	app.closers = nil
	return errors.Join(errs...)
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case <-sigs:
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) error {
	h := rest.NewHandler(app.authService, rest.Options{
		CookieSecure:   app.config.CookieSecure,
		RequestTimeout: app.config.RequestTimeout,
		LoginLimiter:   app.limiter,
	}, app.logger)

	s := rest.NewServer(app.config.HTTPAddr, rest.NewRouter(h), app.logger)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
		return err
	}
	return nil
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) error {
	s := gs.NewGRPCServer(app.config.GRPCAddr, app.logger, app.authService, app.config.RequestTimeout)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
		return err
	}
	return nil
}

// Run serves until ctx is canceled, a shutdown signal arrives or a
// listener fails. The first listener error is returned.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()
	defer app.Close()

	app.logger.Info(ctx, "Starting app...", "backend", app.config.StorageBackend)
	app.initSignalHandler(ctx, cancelFunc)

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	record := func(err error) {
		if err != nil {
			errOnce.Do(func() { firstErr = err })
		}
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		record(app.startHTTPServer(ctx, cancelFunc))
	}()

	if app.config.GRPCAddr != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			record(app.startGRPCServer(ctx, cancelFunc))
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.limiter.Run(ctx, 3*time.Minute)
	}()

	wg.Wait()
	app.logger.Info(context.Background(), "App stopped")
	return firstErr
}
