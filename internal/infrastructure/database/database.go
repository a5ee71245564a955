package database

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/will8688/sealog-cloud-webhook/internal/config"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

func init() {
	// modernc registers under "sqlite", which sqlx does not know about.
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// DB wraps the sqlx handle with the driver it was opened on, so callers can
// rebind queries and migrations can pick the matching dialect.
type DB struct {
	*sqlx.DB
	Driver string
	config *config.DatabaseConfig
}

// Connect opens the configured database. A postgres DATABASE_URL wins; with
// nothing configured the service falls back to a local SQLite file.
func Connect(cfg *config.DatabaseConfig) (*DB, error) {
	driver := DriverSQLite
	dsn := cfg.SQLitePath
	if strings.HasPrefix(cfg.URL, "postgres://") || strings.HasPrefix(cfg.URL, "postgresql://") {
		driver = DriverPostgres
		dsn = cfg.URL
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if driver == DriverPostgres {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(5 * time.Minute)
		db.SetConnMaxIdleTime(5 * time.Minute)
	} else {
		// SQLite serializes writes through a single connection.
		db.SetMaxOpenConns(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db, Driver: driver, config: cfg}, nil
}

func (d *DB) Close() error {
	return d.DB.Close()
}

func (d *DB) Health() error {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	return d.PingContext(ctx)
}

// RunMigrations applies the dialect-specific migration set under the given
// root (migrations/postgres or migrations/sqlite).
func (d *DB) RunMigrations(migrationsPath string) error {
	var (
		driver migratedb.Driver
		err    error
	)

	switch d.Driver {
	case DriverPostgres:
		driver, err = migratepg.WithInstance(d.DB.DB, &migratepg.Config{})
	case DriverSQLite:
		driver, err = migratesqlite.WithInstance(d.DB.DB, &migratesqlite.Config{})
	default:
		return fmt.Errorf("unsupported driver %q", d.Driver)
	}
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	sourceURL := fmt.Sprintf("file://%s", filepath.Join(migrationsPath, d.Driver))
	m, err := migrate.NewWithDatabaseInstance(sourceURL, d.Driver, driver)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
