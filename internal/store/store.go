// Package store owns the database handle: opening it for the configured
// driver, migrating the schema, and the few dialect-specific statements the
// services need.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

type Options struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	LogLevel        logger.LogLevel
}

// GormConfig is shared by every driver, including the in-memory one used
// in tests.
func GormConfig(level logger.LogLevel) *gorm.Config {
	if level == 0 {
		level = logger.Warn
	}
	return &gorm.Config{
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   logger.Default.LogMode(level),
		NowFunc:                                  func() time.Time { return time.Now().UTC() },
	}
}

// Open connects, tunes the pool and pings the database.
func Open(ctx context.Context, o Options) (*gorm.DB, error) {
	if strings.TrimSpace(o.DSN) == "" {
		return nil, errors.New("store: empty DSN")
	}

	var dialector gorm.Dialector
	switch o.Driver {
	case DriverPostgres, "":
		dialector = postgres.Open(o.DSN)
	case DriverMySQL:
		dsn, err := mysqlDSN(o.DSN)
		if err != nil {
			return nil, err
		}
		dialector = gormmysql.Open(dsn)
	default:
		return nil, fmt.Errorf("store: unsupported driver %q", o.Driver)
	}

	db, err := gorm.Open(dialector, GormConfig(o.LogLevel))
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if o.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(o.MaxOpenConns)
	}
	if o.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(o.MaxIdleConns)
	}
	if o.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(o.ConnMaxLifetime)
	}
	if o.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(o.ConnMaxIdleTime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// Close releases the underlying pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// mysqlDSN forces parseTime so DATETIME columns scan into time.Time, and
// clientFoundRows so RowsAffected counts matched rows rather than changed
// ones (an UPDATE that rewrites identical values is still a hit).
func mysqlDSN(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("store: parse mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	cfg.ClientFoundRows = true
	return cfg.FormatDSN(), nil
}
