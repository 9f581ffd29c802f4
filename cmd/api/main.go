package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4/middleware"
	_ "github.com/lib/pq"
	"github.com/nlachan/movie-api/internal/auth"
	"github.com/nlachan/movie-api/internal/data"
	"github.com/nlachan/movie-api/internal/mailer"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	version   = "1.0.0"
	buildTime string
)

type mailSender interface {
	Send(recipient, templateFile string, data any) error
}

type application struct {
	config        config
	logger        *slog.Logger
	models        data.Models
	tokens        *auth.TokenService
	authenticator *auth.Authenticator
	mailer        mailSender
	limiterStore  middleware.RateLimiterStore
	wg            sync.WaitGroup
}

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, displayVersion, err := loadConfig(os.Args[1:], os.Getenv)
	if displayVersion {
		fmt.Printf("Version:\t%s\n", version)
		fmt.Printf("Build time:\t%s\n", buildTime)
		os.Exit(0)
	}
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}

	tokens, err := auth.NewTokenService(cfg.jwt.secret)
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}

	models, closeDB, err := openModels(cfg)
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
	defer closeDB()

	logger.Info("database connection pool established")

	app := &application{
		config:        cfg,
		logger:        logger,
		models:        models,
		tokens:        tokens,
		authenticator: auth.NewAuthenticator(models.Users),
	}

	if cfg.smtp.host != "" {
		app.mailer = mailer.New(cfg.smtp.host, cfg.smtp.port, cfg.smtp.username, cfg.smtp.password, cfg.smtp.sender)
	}

	if cfg.redis.addr != "" {
		rdb, err := openRedis(cfg)
		if err != nil {
			logger.Error(err.Error())
			os.Exit(1)
		}
		defer rdb.Close()
		app.limiterStore = newRedisLimiterStore(rdb, logger, cfg.limiter.rps, time.Minute)
		logger.Info("redis rate limiter store connected", slog.String("addr", cfg.redis.addr))
	}

	if err := app.serve(); err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
}

func (app *application) serve() error {
	e := app.newServer()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownErr := make(chan error, 1)
	go func() {
		<-ctx.Done()
		app.logger.Info("shutting down server")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := e.Shutdown(ctx); err != nil {
			shutdownErr <- err
			return
		}

		app.logger.Info("completing background tasks")
		app.wg.Wait()
		shutdownErr <- nil
	}()

	app.logger.Info("starting server",
		slog.Int("port", app.config.port),
		slog.String("env", app.config.env),
	)

	err := e.Start(fmt.Sprintf(":%d", app.config.port))
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	if err := <-shutdownErr; err != nil {
		return err
	}

	app.logger.Info("stopped server")
	return nil
}

// openModels connects to the backend named by the DSN scheme and returns
// the stores plus a function releasing the connection.
func openModels(cfg config) (data.Models, func(), error) {
	driver, err := cfg.db.driver()
	if err != nil {
		return data.Models{}, nil, err
	}

	switch driver {
	case driverMongo:
		client, err := openMongo(cfg)
		if err != nil {
			return data.Models{}, nil, fmt.Errorf("open mongo: %w", err)
		}
		db := client.Database(cfg.db.name)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := data.EnsureMongoIndexes(ctx, db); err != nil {
			_ = client.Disconnect(ctx)
			return data.Models{}, nil, fmt.Errorf("ensure indexes: %w", err)
		}

		closeFn := func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(ctx)
		}
		return data.NewMongoModels(db), closeFn, nil
	default:
		db, err := openDB(cfg)
		if err != nil {
			return data.Models{}, nil, fmt.Errorf("open postgres: %w", err)
		}
		return data.NewPostgresModels(db), func() { _ = db.Close() }, nil
	}
}

func openMongo(cfg config) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Client().
		ApplyURI(cfg.db.dsn).
		SetMaxPoolSize(uint64(cfg.db.maxOpenConns)).
		SetMaxConnIdleTime(cfg.db.maxIdleTime)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	return client, nil
}

func openDB(cfg config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.db.dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.db.maxOpenConns)
	db.SetMaxIdleConns(cfg.db.maxIdleConns)
	db.SetConnMaxIdleTime(cfg.db.maxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func openRedis(cfg config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.redis.addr,
		Password: cfg.redis.password,
		DB:       cfg.redis.db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, err
	}

	return rdb, nil
}
