package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"github.com/equihire/equihire-core/config"
	"github.com/equihire/equihire-core/internal/migrate"
)

const connectTimeout = 5 * time.Second

// DatabaseConfig contains configuration for database connections.
type DatabaseConfig struct {
	DBConfig    config.DBConfig
	RedisConfig config.RedisConfig
	Logger      *slog.Logger
}

// PostgresDSN returns c.URL when set; otherwise it builds a URL, escaping special characters in credentials.
func PostgresDSN(c config.DBConfig) string {
	if dsn := strings.TrimSpace(c.URL); dsn != "" {
		return dsn
	}
	u := &url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:   "/" + c.Name,
	}
	q := u.Query()
	q.Set("sslmode", c.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// pgxConfig parses the connection string. Behind a transaction pooler every query uses the
// simple protocol, since a prepared statement may land on a different server connection.
func pgxConfig(c config.DBConfig) (*pgx.ConnConfig, error) {
	cc, err := pgx.ParseConfig(PostgresDSN(c))
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if c.Pooler {
		cc.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	}
	return cc, nil
}

// ConnectDB opens the Postgres pool and verifies it with a ping.
func ConnectDB(cfg DatabaseConfig) (*sql.DB, error) {
	cc, err := pgxConfig(cfg.DBConfig)
	if err != nil {
		return nil, err
	}

	db := stdlib.OpenDB(*cc)
	pool := cfg.DBConfig
	pool.Sanitize()
	db.SetMaxOpenConns(pool.MaxOpenConns)
	db.SetMaxIdleConns(pool.MaxIdleConns)
	db.SetConnMaxLifetime(pool.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if pingErr := db.PingContext(ctx); pingErr != nil {
		if closeErr := db.Close(); closeErr != nil {
			pingErr = errors.Join(pingErr, fmt.Errorf("close database connection: %w", closeErr))
		}
		return nil, fmt.Errorf("ping database: %w", pingErr)
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("database connected",
			"host", cc.Host,
			"port", cc.Port,
			"database", cc.Database,
			"pooler", cfg.DBConfig.Pooler,
			"max_open_conns", pool.MaxOpenConns,
		)
	}

	return db, nil
}

// redisOptions turns the configured URL into client options.
func redisOptions(c config.RedisConfig) (*redis.Options, error) {
	raw := strings.TrimSpace(c.URL)
	if raw == "" {
		return nil, errors.New("redis url is required")
	}

	var opt *redis.Options
	if strings.HasPrefix(raw, "redis://") || strings.HasPrefix(raw, "rediss://") {
		parsed, err := redis.ParseURL(raw)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		opt = parsed
	} else {
		opt = &redis.Options{Addr: raw}
	}

	if c.Password != "" {
		opt.Password = c.Password
	}
	if c.PoolSize > 0 {
		opt.PoolSize = c.PoolSize
	}
	opt.DialTimeout = connectTimeout
	return opt, nil
}

// ConnectRedis connects to Redis and verifies the connection with PING.
//
//nolint:ireturn // the session store and cache take redis.UniversalClient.
func ConnectRedis(cfg DatabaseConfig) (redis.UniversalClient, error) {
	opt, err := redisOptions(cfg.RedisConfig)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if pingErr := client.Ping(ctx).Err(); pingErr != nil {
		if closeErr := client.Close(); closeErr != nil {
			pingErr = errors.Join(pingErr, fmt.Errorf("close redis client: %w", closeErr))
		}
		return nil, fmt.Errorf("ping redis: %w", pingErr)
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("redis connected", "addr", opt.Addr, "db", opt.DB, "tls", opt.TLSConfig != nil)
	}

	return client, nil
}

// RunMigrations applies pending schema migrations.
func RunMigrations(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	if err := migrate.Run(ctx, db); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	if logger != nil {
		logger.InfoContext(ctx, "database migrations completed")
	}
	return nil
}
