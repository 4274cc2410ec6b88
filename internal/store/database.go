package store

import (
	"context"
	"database/sql"
	"embed"
	"io/fs"
	"slices"
	"time"

	"github.com/cockroachdb/errors"
	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/fortuna/goaliestats/internal/logging"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Database is the PostgreSQL connection used by the import sink.
type Database struct {
	conn   *sql.DB
	logger *logging.Logger
}

// NewDatabase opens and pings a PostgreSQL connection.
func NewDatabase(ctx context.Context, dsn string, logger *logging.Logger) (*Database, error) {
	if logger == nil {
		logger = logging.Default()
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "ping database")
	}

	return &Database{conn: db, logger: logger.Component("store")}, nil
}

// Close closes the database connection
func (db *Database) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

// DB returns the underlying *sql.DB for queries
func (db *Database) DB() *sql.DB {
	return db.conn
}

// MigrationFiles lists the embedded migrations in the order they run.
func MigrationFiles() ([]string, error) {
	names, err := fs.Glob(migrationFS, "migrations/*.sql")
	if err != nil {
		return nil, errors.Wrap(err, "list migrations")
	}
	for i, n := range names {
		names[i] = n[len("migrations/"):]
	}
	slices.Sort(names)
	return names, nil
}

// RunMigrations applies every embedded migration that schema_migrations
// does not list yet. Each runs in its own transaction.
func (db *Database) RunMigrations(ctx context.Context) error {
	db.logger.Info("running database migrations")

	if err := db.createMigrationsTable(ctx); err != nil {
		return errors.Wrap(err, "create migrations table")
	}

	migrations, err := MigrationFiles()
	if err != nil {
		return err
	}
	for _, migration := range migrations {
		if err := db.runMigration(ctx, migration); err != nil {
			return errors.Wrapf(err, "run migration %s", migration)
		}
	}

	db.logger.Info("migrations complete", "count", len(migrations))
	return nil
}

func (db *Database) createMigrationsTable(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version VARCHAR(255) PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	_, err := db.conn.ExecContext(ctx, query)
	return err
}

func (db *Database) runMigration(ctx context.Context, filename string) error {
	var exists bool
	err := db.conn.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)", filename).Scan(&exists)
	if err != nil {
		return err
	}
	if exists {
		db.logger.Debug("skipping applied migration", "version", filename)
		return nil
	}

	content, err := migrationFS.ReadFile("migrations/" + filename)
	if err != nil {
		return errors.Wrap(err, "read migration file")
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, string(content)); err != nil {
		return errors.Wrap(err, "execute migration")
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES ($1)", filename); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	db.logger.Info("applied migration", "version", filename)
	return nil
}

// HealthCheck pings the database.
func (db *Database) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return db.conn.PingContext(ctx)
}
