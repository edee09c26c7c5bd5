package main

import (
	"database/sql"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/equihire/equihire-core/internal/bootstrap"
)

// infra holds the connections a command opened; Close releases whichever exist.
type infra struct {
	DB    *sql.DB
	Redis redis.UniversalClient
}

func (i *infra) Close(cmdCtx *commandContext) {
	if i.DB != nil {
		if err := i.DB.Close(); err != nil {
			cmdCtx.Logger.Warn("db close failed", "error", err)
		}
	}
	if i.Redis != nil {
		if err := i.Redis.Close(); err != nil {
			cmdCtx.Logger.Warn("redis close failed", "error", err)
		}
	}
}

// connectInfra opens the database and, when wantRedis is set, Redis.
// A Redis failure is logged and tolerated so database-only checks still run.
func connectInfra(cmdCtx *commandContext, wantRedis bool) (*infra, error) {
	dbCfg := bootstrap.DatabaseConfig{
		DBConfig:    cmdCtx.Config.Postgres,
		RedisConfig: cmdCtx.Config.Redis,
		Logger:      cmdCtx.Logger,
	}
	db, err := bootstrap.ConnectDB(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}
	out := &infra{DB: db}
	if !wantRedis {
		return out, nil
	}

	client, err := bootstrap.ConnectRedis(dbCfg)
	if err != nil {
		cmdCtx.Logger.Warn("redis unavailable; continuing without it", "error", err)
		return out, nil
	}
	out.Redis = client
	return out, nil
}
