package store

import (
	"errors"
	"log"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// WithForeignKeysSuspended runs fn on tx with foreign-key enforcement
// postponed. tx must be a transaction: the PostgreSQL and SQLite forms only
// last until commit, and the MySQL form is reset before fn's result is
// returned.
func WithForeignKeysSuspended(tx *gorm.DB, fn func(tx *gorm.DB) error) error {
	switch tx.Dialector.Name() {
	case DriverMySQL:
		if err := tx.Exec("SET FOREIGN_KEY_CHECKS = 0").Error; err != nil {
			return err
		}
		defer func() {
			if err := tx.Exec("SET FOREIGN_KEY_CHECKS = 1").Error; err != nil {
				log.Printf("store: restore foreign key checks: %v", err)
			}
		}()
	case DriverPostgres:
		if err := tx.Exec("SET CONSTRAINTS ALL DEFERRED").Error; err != nil {
			return err
		}
	case DriverSQLite:
		if err := tx.Exec("PRAGMA defer_foreign_keys = ON").Error; err != nil {
			return err
		}
	}
	return fn(tx)
}

// UTCDate returns a SQL expression for the UTC calendar day of a timestamp
// column. PostgreSQL stores timestamptz, so its DATE() would follow the
// session time zone.
func UTCDate(dialect, column string) string {
	if dialect == DriverPostgres {
		return "DATE(" + column + " AT TIME ZONE 'UTC')"
	}
	return "DATE(" + column + ")"
}

// IsDuplicate reports whether err is a unique-constraint violation from any
// of the supported drivers.
func IsDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == 1062 {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
