// Package store persists reconciled organizer data in a relational database.
// Entity IDs are the stabilized strings derived from source names; every
// child table cascades deletes from its parent. SQLite (pure Go) and Postgres
// are supported through the same queries.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // Postgres driver, registered as "pgx".
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// Driver selects the database engine.
type Driver string

// Supported drivers.
const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// ErrUnknownDriver indicates an unsupported Driver value.
var ErrUnknownDriver = errors.New("unknown database driver")

// Store is a handle on the lineup database.
type Store struct {
	db     *sqlx.DB
	driver Driver
	bind   int
}

// Open connects to the database described by driver and dsn and applies any
// pending schema migrations. For SQLite, dsn is a file path.
func Open(ctx context.Context, driver Driver, dsn string) (*Store, error) {
	var (
		db   *sqlx.DB
		err  error
		bind int
	)
	switch driver {
	case DriverSQLite, "":
		driver = DriverSQLite
		db, err = sqlx.Open("sqlite", sqliteDSN(dsn))
		if err != nil {
			return nil, fmt.Errorf("store: open database: %w", err)
		}
		// SQLite only supports a single writer; one connection also keeps
		// the per-connection pragmas in effect for every statement.
		db.SetMaxOpenConns(1)
		bind = sqlx.QUESTION
	case DriverPostgres:
		db, err = sqlx.Open("pgx", dsn)
		if err != nil {
			return nil, fmt.Errorf("store: open database: %w", err)
		}
		bind = sqlx.DOLLAR
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	s := &Store{db: db, driver: driver, bind: bind}
	if err := s.migrate(dsn); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// sqliteDSN appends the pragmas every connection needs: foreign keys for
// cascading deletes, WAL so readers see either the old or new state of a
// sync, and a busy timeout for external readers.
func sqliteDSN(path string) string {
	if strings.Contains(path, "_pragma=") {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
}

// Driver reports the engine in use.
func (s *Store) Driver() Driver {
	return s.driver
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) rebind(q string) string {
	return sqlx.Rebind(s.bind, q)
}

// Tx is one all-or-nothing unit of work.
type Tx struct {
	tx   *sqlx.Tx
	bind int
}

// Begin starts a transaction.
func (s *Store) Begin(ctx context.Context) (*Tx, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("store: begin tx: %w", err)
	}
	return &Tx{tx: tx, bind: s.bind}, nil
}

// Commit commits the transaction.
func (t *Tx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}
	return nil
}

// Rollback aborts the transaction. Rolling back after Commit is a no-op.
func (t *Tx) Rollback() error {
	err := t.tx.Rollback()
	if err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("store: rollback: %w", err)
	}
	return nil
}

// WithTx runs fn in a transaction, committing if it returns nil and rolling
// back otherwise.
func (s *Store) WithTx(ctx context.Context, fn func(*Tx) error) error {
	tx, err := s.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (t *Tx) rebind(q string) string {
	return sqlx.Rebind(t.bind, q)
}

// FormatTime renders an instant for storage as RFC 3339 UTC text. The zero
// time is stored as "".
func FormatTime(tm time.Time) string {
	if tm.IsZero() {
		return ""
	}
	return tm.UTC().Format(time.RFC3339)
}

// ParseTime parses a stored instant. "" yields the zero time.
func ParseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, s)
}
