package store

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations
var migrationsFS embed.FS

// migrate applies the embedded migrations for the store's dialect.
func (s *Store) migrate(dsn string) error {
	src, err := iofs.New(migrationsFS, "migrations/"+string(s.driver))
	if err != nil {
		return fmt.Errorf("store: load migrations: %w", err)
	}

	var drv database.Driver
	switch s.driver {
	case DriverPostgres:
		// The pgx migration driver pins a connection and closes its *sql.DB
		// on Close, so it gets a pool of its own.
		mdb, err := sql.Open("pgx", dsn)
		if err != nil {
			return fmt.Errorf("store: open migration connection: %w", err)
		}
		drv, err = pgxmigrate.WithInstance(mdb, &pgxmigrate.Config{})
		if err != nil {
			mdb.Close()
			return fmt.Errorf("store: migration driver: %w", err)
		}
	default:
		drv, err = sqlitemigrate.WithInstance(s.db.DB, &sqlitemigrate.Config{})
		if err != nil {
			return fmt.Errorf("store: migration driver: %w", err)
		}
	}

	m, err := migrate.NewWithInstance("iofs", src, string(s.driver), drv)
	if err != nil {
		return fmt.Errorf("store: init migrations: %w", err)
	}
	if s.driver == DriverPostgres {
		defer m.Close()
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("store: apply migrations: %w", err)
	}
	return nil
}
