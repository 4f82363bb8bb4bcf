// Package sqldb provides the relational storage backend for oralrisk.
// It runs on SQLite for single-node deployments and on PostgreSQL (via a pgx pool) otherwise,
// with gorm as the shared mapping layer.
package sqldb

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/turtacn/oralrisk/internal/config"
	"github.com/turtacn/oralrisk/internal/domain/models"
	"github.com/turtacn/oralrisk/pkg/errors"
	"github.com/turtacn/oralrisk/pkg/logger"
)

// DBConnection owns the gorm handle and, for PostgreSQL, the underlying pgx pool.
type DBConnection struct {
	db     *gorm.DB
	pool   *pgxpool.Pool
	driver string
	logger logger.Logger
}

// NewDBConnection opens the configured database, checks it is reachable and
// brings the tables up to date.
func NewDBConnection(ctx context.Context, cfg *config.DatabaseConfig, log logger.Logger) (*DBConnection, error) {
	if cfg == nil {
		return nil, errors.ErrMissingField("database")
	}
	log = log.WithComponent("sqldb")
	log.Info(ctx, "Opening database", logger.Fields{"driver": cfg.Driver})

	gormCfg := &gorm.Config{
		Logger:         gormlogger.Discard,
		TranslateError: true,
	}

	conn := &DBConnection{driver: cfg.Driver, logger: log}

	switch cfg.Driver {
	case "postgres":
		poolConfig, err := pgxpool.ParseConfig(cfg.GetDSN())
		if err != nil {
			return nil, errors.Storage("parse database dsn", err)
		}
		if cfg.MaxConns > 0 {
			poolConfig.MaxConns = int32(cfg.MaxConns)
		}
		if cfg.MaxConnLifetime > 0 {
			poolConfig.MaxConnLifetime = time.Duration(cfg.MaxConnLifetime) * time.Minute
		}

		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		pool, err := pgxpool.NewWithConfig(connectCtx, poolConfig)
		if err != nil {
			log.Error(ctx, "Failed to create database connection pool", err, nil)
			return nil, errors.Storage("connect database", err)
		}
		db, err := gorm.Open(postgres.New(postgres.Config{Conn: stdlib.OpenDBFromPool(pool)}), gormCfg)
		if err != nil {
			pool.Close()
			return nil, errors.Storage("open database", err)
		}
		conn.db, conn.pool = db, pool

	default:
		if dir := filepath.Dir(cfg.Path); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, errors.Storage("create database directory", err)
			}
		}
		db, err := gorm.Open(sqlite.Open(cfg.Path), gormCfg)
		if err != nil {
			return nil, errors.Storage("open database", err)
		}
		// SQLite allows one writer at a time.
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.SetMaxOpenConns(1)
		}
		conn.db = db
	}

	if err := conn.Ping(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	if err := conn.AutoMigrate(ctx); err != nil {
		conn.Close()
		return nil, err
	}

	log.Info(ctx, "Database ready", logger.Fields{"driver": cfg.Driver})
	return conn, nil
}

// DB returns the gorm handle used by the repositories.
func (c *DBConnection) DB() *gorm.DB {
	return c.db
}

// AutoMigrate creates or alters the accounts and predictions tables.
func (c *DBConnection) AutoMigrate(ctx context.Context) error {
	if err := c.db.WithContext(ctx).AutoMigrate(&models.Account{}, &PredictionRow{}); err != nil {
		c.logger.Error(ctx, "Schema migration failed", err, nil)
		return errors.Storage("migrate tables", err)
	}
	return nil
}

// Ping verifies the database answers.
func (c *DBConnection) Ping(ctx context.Context) error {
	sqlDB, err := c.sqlDB()
	if err != nil {
		return err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		return errors.Storage("ping database", err)
	}
	return nil
}

// Close releases the connection and pool.
func (c *DBConnection) Close() error {
	var closeErr error
	if sqlDB, err := c.sqlDB(); err == nil {
		closeErr = sqlDB.Close()
	}
	if c.pool != nil {
		c.pool.Close()
	}
	c.logger.Info(context.Background(), "Database connection closed", logger.Fields{"driver": c.driver})
	return closeErr
}

func (c *DBConnection) sqlDB() (*sql.DB, error) {
	sqlDB, err := c.db.DB()
	if err != nil {
		return nil, errors.Storage("database handle", err)
	}
	return sqlDB, nil
}
