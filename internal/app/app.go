package app

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"time"

	"github.com/birlikkoshan/todo-serverless/internal/awsclient"
	"github.com/birlikkoshan/todo-serverless/internal/cache"
	"github.com/birlikkoshan/todo-serverless/internal/config"
	"github.com/birlikkoshan/todo-serverless/internal/repo"
	"github.com/birlikkoshan/todo-serverless/internal/service"
	"github.com/birlikkoshan/todo-serverless/migrations"

	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"
)

type App struct {
	cfg     config.Config
	todos   repo.TodoRepo
	closers []func()
	redis   *redis.Client
	router  *gin.Engine
}

// New opens the configured store (and Redis, if set) and builds the router.
func New(cfg config.Config) (*App, error) {
	a := &App{cfg: cfg}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := a.openStore(ctx); err != nil {
		a.closeAll()
		return nil, err
	}
	log.Printf("todo store: %s", cfg.Store.Driver)

	var todoCache *cache.TodoCache
	if cfg.Redis.Enabled() {
		rdb, err := newRedis(cfg.Redis)
		if err != nil {
			a.closeAll()
			return nil, err
		}
		a.redis = rdb
		todoCache = cache.NewTodoCache(rdb, cfg.Store.TableName, cfg.Redis.DefaultTTL.Duration())
		log.Printf("todo list cache: redis %s", cfg.Redis.Addr)
	}

	a.router = NewRouter(cfg, service.NewTodoService(a.todos, todoCache))
	return a, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func (a *App) Close(ctx context.Context) error {
	_ = ctx
	a.closeAll()
	return nil
}

func (a *App) closeAll() {
	if a.redis != nil {
		_ = a.redis.Close()
		a.redis = nil
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *App) openStore(ctx context.Context) error {
	switch a.cfg.Store.Driver {
	case config.DriverDynamoDB:
		sess, err := awsclient.NewSession(a.cfg.AWS)
		if err != nil {
			return err
		}
		r := repo.NewDynamoTodoRepo(dynamodb.New(sess), a.cfg.Store.TableName)
		if a.cfg.AWS.CreateTable {
			if err := r.EnsureTable(ctx); err != nil {
				return err
			}
		}
		a.todos = r
	case config.DriverPostgres:
		if err := runMigrations(a.cfg.PG.DSN); err != nil {
			return err
		}
		db, err := newPostgres(ctx, a.cfg.PG.DSN)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, db.Close)
		a.todos = repo.NewPGTodoRepo(db)
	case config.DriverSQLite:
		r, err := repo.OpenSQLiteTodoRepo(a.cfg.SQLite.Path)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, func() { _ = r.Close() })
		a.todos = r
	default:
		return fmt.Errorf("unknown store driver %q", a.cfg.Store.Driver)
	}
	return nil
}

func newPostgres(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("pg parse config: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MinConns = 2
	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("pg connect: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg ping: %w", err)
	}

	return pool, nil
}

func newRedis(cfg config.RedisConfig) (*redis.Client, error) {
	opts := &redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if cfg.TLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return rdb, nil
}

func runMigrations(dsn string) error {
	db, err := goose.OpenDBWithDriver("pgx", dsn)
	if err != nil {
		return fmt.Errorf("goose open db: %w", err)
	}
	defer db.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.Up(db, migrations.PostgresDir); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

// NewRouter wires the HTTP surface around svc.
func NewRouter(cfg config.Config, svc *service.TodoService) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:  corsOrigins(cfg.HTTP.CORSOrigins),
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"},
		AllowHeaders:  []string{"Content-Type", "X-Amz-Date", "Authorization", "X-Api-Key", "X-Amz-Security-Token"},
		ExposeHeaders: []string{"Content-Length", "Content-Type", "Location"},
		MaxAge:        12 * time.Hour,
	}))

	Setup(r, cfg, svc)
	return r
}

func corsOrigins(origins []string) []string {
	for _, o := range origins {
		if o == "*" {
			return []string{"*"}
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
