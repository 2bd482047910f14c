package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DB wraps the GORM handle and the pool underneath it.
type DB struct {
	Gorm *gorm.DB
	sql  *sql.DB
}

// NewDB opens the database for driver ("postgres" or "sqlite") and pings it.
// Postgres goes through the pgx stdlib driver so pool limits stay ours.
func NewDB(driver, dsn string, lg zerolog.Logger) (*DB, error) {
	gcfg := &gorm.Config{
		TranslateError: true,
		Logger: gormlogger.New(gormWriter{lg: lg}, gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	}

	var (
		gdb *gorm.DB
		err error
	)
	switch driver {
	case "postgres":
		sqlDB, openErr := sql.Open("pgx", dsn)
		if openErr != nil {
			return nil, fmt.Errorf("open postgres: %w", openErr)
		}
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(time.Hour)
		gdb, err = gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), gcfg)
	case "sqlite":
		gdb, err = gorm.Open(sqlite.Open(sqliteDSN(dsn)), gcfg)
	default:
		return nil, fmt.Errorf("unsupported db driver %q", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	if driver == "sqlite" {
		// one writer at a time; busy_timeout covers the rest
		sqlDB.SetMaxOpenConns(1)
	}

	db := &DB{Gorm: gdb, sql: sqlDB}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	return db, nil
}

func sqliteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL"
}

// Migrate creates or updates the tables for models.
func (d *DB) Migrate(models ...any) error {
	if err := d.Gorm.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// Ping checks connectivity.
func (d *DB) Ping(ctx context.Context) error {
	if d == nil || d.sql == nil {
		return errors.New("database not configured")
	}
	return d.sql.PingContext(ctx)
}

// Close closes the underlying connection.
func (d *DB) Close() error {
	if d == nil || d.sql == nil {
		return nil
	}
	return d.sql.Close()
}

// IsUniqueViolation reports whether err came from a unique constraint.
func IsUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// gormWriter routes GORM's slow-query and error lines into zerolog.
type gormWriter struct {
	lg zerolog.Logger
}

func (w gormWriter) Printf(format string, args ...any) {
	w.lg.Warn().Str("component", "gorm").Msgf(format, args...)
}
