// Package store is the relational persistence layer for the catalogue.
//
// It runs on SQLite (modernc.org/sqlite, the default) or PostgreSQL
// (github.com/lib/pq). Queries are written once with ? placeholders and
// rebound for Postgres. Scoped name uniqueness is enforced by unique
// indexes; a violating write surfaces as ErrConflict so callers can map it
// to the same message as their pre-write check.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

var (
	// ErrNotFound is returned by Get* when no row has the given id.
	ErrNotFound = errors.New("store: record not found")
	// ErrConflict is returned when a write violates a unique index.
	ErrConflict = errors.New("store: unique constraint violated")
	// ErrReference is returned when a write violates a foreign key.
	ErrReference = errors.New("store: foreign key constraint violated")
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// ─── Config ──────────────────────────────────────────────────────────────────

// Config holds store configuration.
type Config struct {
	// Driver is "sqlite" or "postgres".
	Driver string `yaml:"driver"`
	// DSN is a file path for SQLite or a connection string for Postgres.
	DSN string `yaml:"dsn"`
	// MaxOpenConns caps the connection pool; zero keeps the driver default.
	MaxOpenConns int `yaml:"max_open_conns"`
}

// DefaultConfig returns a SQLite database under ~/.foreman.
func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{
		Driver: DriverSQLite,
		DSN:    filepath.Join(home, ".foreman", "foreman.db"),
	}
}

// ─── Store ───────────────────────────────────────────────────────────────────

// DBTX is the common interface satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ DBTX = (*sql.DB)(nil)
	_ DBTX = (*sql.Tx)(nil)
)

// Store is the catalogue persistence engine. A Store returned by WithinTx
// runs every statement in the enclosing transaction.
type Store struct {
	db      *sql.DB
	q       DBTX
	dialect dialect
	cfg     Config
	now     func() time.Time
	newID   func() string
}

// New opens the configured database and runs migrations.
func New(cfg Config) (*Store, error) {
	var (
		db  *sql.DB
		err error
	)
	switch cfg.Driver {
	case DriverSQLite, "":
		cfg.Driver = DriverSQLite
		db, err = openSQLite(cfg.DSN)
	case DriverPostgres:
		db, err = openPostgres(cfg.DSN)
	default:
		return nil, fmt.Errorf("store: unsupported driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	s := &Store{
		db:      db,
		q:       db,
		dialect: dialectFor(cfg.Driver),
		cfg:     cfg,
		now:     func() time.Time { return time.Now().UTC() },
		newID:   func() string { return uuid.New().String() },
	}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: migration: %w", err)
	}
	return s, nil
}

func openSQLite(path string) (*sql.DB, error) {
	if path == "" {
		return nil, errors.New("store: empty sqlite path")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("store: create data dir: %w", err)
		}
	}

	// Pragmas go in the DSN so every pooled connection gets them;
	// foreign_keys in particular is per connection.
	pragmas := []string{
		"journal_mode(WAL)",
		"busy_timeout(5000)",
		"synchronous(NORMAL)",
		"foreign_keys(ON)",
	}
	dsn := "file:" + path + "?"
	for i, p := range pragmas {
		if i > 0 {
			dsn += "&"
		}
		dsn += "_pragma=" + p
	}

	db, err := openDB("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: open database: %w", err)
	}
	return db, nil
}

func openPostgres(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, errors.New("store: empty postgres dsn")
	}
	db, err := openDB("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: connect: %w", err)
	}
	return db, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Driver returns the configured driver name.
func (s *Store) Driver() string {
	return s.cfg.Driver
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// WithinTx runs fn inside one transaction. fn receives a Store bound to the
// transaction; returning an error or panicking rolls everything back.
func (s *Store) WithinTx(ctx context.Context, fn func(tx *Store) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	txStore := *s
	txStore.q = tx
	if err := fn(&txStore); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("store: rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit transaction: %w", classify(err))
	}
	return nil
}

// ─── Query helpers ───────────────────────────────────────────────────────────

func (s *Store) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	res, err := s.q.ExecContext(ctx, s.dialect.rebind(query), args...)
	return res, classify(err)
}

func (s *Store) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.q.QueryContext(ctx, s.dialect.rebind(query), args...)
}

func (s *Store) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return s.q.QueryRowContext(ctx, s.dialect.rebind(query), args...)
}

func (s *Store) count(ctx context.Context, query string, args ...any) (int, error) {
	var n int
	if err := s.queryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// timestampLayout is fixed-width so stored timestamps sort as text.
// RFC3339Nano trims trailing zeros and would put 10:00:00Z after
// 10:00:00.1Z.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// ─── Dialect ─────────────────────────────────────────────────────────────────

type dialect struct {
	numbered bool
}

func dialectFor(driver string) dialect {
	return dialect{numbered: driver == DriverPostgres}
}

// rebind rewrites ? placeholders into $1, $2, ... for Postgres. Queries in
// this package never contain a literal question mark.
func (d dialect) rebind(query string) string {
	if !d.numbered || !strings.Contains(query, "?") {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// classify maps driver constraint errors onto ErrConflict and ErrReference.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case isUniqueViolation(err):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	case isForeignKeyViolation(err):
		return fmt.Errorf("%w: %v", ErrReference, err)
	default:
		return err
	}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23503"
	}
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

// ─── Scan helpers ────────────────────────────────────────────────────────────

type scanner interface {
	Scan(dest ...any) error
}

func nullableString(s *string) any {
	if s == nil || *s == "" {
		return nil
	}
	return *s
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	v := ns.String
	return &v
}

func nullableDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format("2006-01-02")
}

func parseNullableDate(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation("2006-01-02", ns.String, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("parsing date %q: %w", ns.String, err)
	}
	return &t, nil
}

func parseTimestamp(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
