package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	redisstore "github.com/estatehub/estate-api/internal/adapters/redis"
	"github.com/estatehub/estate-api/internal/bootstrap"
)

// withDatabase runs f against a fresh connection, bounded by timeout and cancelled on SIGINT/SIGTERM.
func withDatabase(
	cmdCtx *commandContext,
	timeout time.Duration,
	f func(context.Context, *sql.DB) error,
) error {
	ctx, stop := signal.NotifyContext(cmdCtx.Ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	db, err := bootstrap.ConnectDB(bootstrap.DatabaseConfig{
		DBConfig: cmdCtx.Config.Postgres,
		Logger:   cmdCtx.Logger,
	})
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			cmdCtx.Logger.Warn("db close failed", "error", cerr)
		}
	}()

	return f(ctx, db)
}

// withSessionStore connects to Redis and hands f a session store using the configured prefix.
func withSessionStore(
	cmdCtx *commandContext,
	f func(context.Context, *redisstore.SessionStore) error,
) error {
	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, defaultCommandTimeout)
	defer cancel()

	client, err := bootstrap.ConnectRedis(bootstrap.DatabaseConfig{
		RedisConfig: cmdCtx.Config.Redis,
		Logger:      cmdCtx.Logger,
	})
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer closeRedis(cmdCtx, client)

	return f(ctx, newSessionStore(cmdCtx, client))
}

func newSessionStore(cmdCtx *commandContext, client redis.UniversalClient) *redisstore.SessionStore {
	prefix := cmdCtx.Config.Auth.SessionKeyPrefix
	if prefix == "" {
		prefix = redisstore.DefaultSessionPrefix
	}
	return redisstore.NewSessionStoreWithPrefix(client, prefix)
}

func closeRedis(cmdCtx *commandContext, client redis.UniversalClient) {
	if cerr := client.Close(); cerr != nil {
		cmdCtx.Logger.Warn("redis close failed", "error", cerr)
	}
}
