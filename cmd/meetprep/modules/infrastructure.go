package modules

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"

	"github.com/memohai/meetprep/internal/boot"
	"github.com/memohai/meetprep/internal/config"
	"github.com/memohai/meetprep/internal/db"
	dbsqlc "github.com/memohai/meetprep/internal/db/sqlc"
	"github.com/memohai/meetprep/internal/logger"
)

var InfraModule = fx.Module(
	"infra",
	fx.Provide(
		ProvideConfig,
		ProvideLogger,
		boot.ProvideRuntimeConfig,
		provideDBConn,
		provideDBQueries,
	),
)

// ProvideConfig loads the file named by CONFIG_PATH (default config.toml).
func ProvideConfig() (config.Config, error) {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func ProvideLogger(cfg config.Config) *slog.Logger {
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	return logger.L
}

// provideDBConn fails the whole graph when the database is unreachable.
func provideDBConn(lc fx.Lifecycle, cfg config.Config) (*pgxpool.Pool, error) {
	conn, err := db.Open(context.Background(), cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			conn.Close()
			return nil
		},
	})
	return conn, nil
}

func provideDBQueries(conn *pgxpool.Pool) *dbsqlc.Queries {
	return dbsqlc.New(conn)
}
