package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/pressly/goose/v3"

	"taskboard-be/internal/config"
	"taskboard-be/internal/repository"
	"taskboard-be/internal/repository/memrepo"
	"taskboard-be/internal/repository/mongorepo"
)

//go:embed migrations/*.sql
var migrations embed.FS

// NewConnection creates a new database connection
func NewConnection(ctx context.Context, databaseURL string) (*sql.DB, error) {
	// Open connection to database
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test the connection
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// RunMigrations applies the embedded goose migrations
func RunMigrations(db *sql.DB) error {
	goose.SetBaseFS(migrations)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Open connects the backend selected by cfg.StoreDriver and returns its repositories.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*repository.Store, error) {
	connectCtx, cancel := context.WithTimeout(ctx, cfg.StoreTimeout)
	defer cancel()

	switch cfg.StoreDriver {
	case config.DriverPostgres:
		db, err := NewConnection(connectCtx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := RunMigrations(db); err != nil {
			db.Close()
			return nil, err
		}
		logger.Info("connected to postgres", slog.String("driver", cfg.StoreDriver))
		return repository.NewStore(
			repository.NewUserRepository(db),
			repository.NewTaskRepository(db),
			db.PingContext,
			db.Close,
		), nil

	case config.DriverMongo:
		client, err := mongorepo.Connect(connectCtx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		mdb := client.Database(cfg.MongoDatabase)
		if err := mongorepo.EnsureIndexes(connectCtx, mdb); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		logger.Info("connected to mongodb", slog.String("database", cfg.MongoDatabase))
		return repository.NewStore(
			mongorepo.NewUserRepository(mdb),
			mongorepo.NewTaskRepository(mdb),
			func(ctx context.Context) error { return client.Ping(ctx, nil) },
			func() error { return client.Disconnect(context.Background()) },
		), nil

	case config.DriverMemory:
		logger.Warn("using in-memory store; data is lost on restart")
		mem := memrepo.New()
		return repository.NewStore(mem.Users(), mem.Tasks(), nil, nil), nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}
