package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

var (
	ErrNotFound = errors.New("store: not found")
	ErrConflict = errors.New("store: unique constraint violated")
)

/* ===================== DIALECTS ===================== */

type Dialect struct {
	Name        string
	driver      string
	placeholder sq.PlaceholderFormat
	// lockRows appends FOR UPDATE to row locks; SQLite serializes writers instead.
	lockRows bool
}

var (
	Postgres = Dialect{Name: "postgres", driver: "pgx", placeholder: sq.Dollar, lockRows: true}
	SQLite   = Dialect{Name: "sqlite", driver: "sqlite", placeholder: sq.Question}
)

type Options struct {
	MaxConns       int
	ConnectTimeout time.Duration
}

type Store struct {
	db      *sql.DB
	dialect Dialect
	sb      sq.StatementBuilderType
}

/* ===================== CONNECT ===================== */

// Open connects to a postgres:// or sqlite:// URL, retrying the ping until
// opts.ConnectTimeout elapses, then applies migrations.
func Open(ctx context.Context, url string, opts Options) (*Store, error) {
	dialect, dsn, err := parseURL(url)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(dialect.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect.Name, err)
	}

	maxConns := opts.MaxConns
	if maxConns <= 0 {
		maxConns = 10
	}
	if dialect.Name == SQLite.Name {
		maxConns = 1
	}
	db.SetMaxOpenConns(maxConns)

	timeout := opts.ConnectTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	deadline := time.Now().Add(timeout)
	for {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err = db.PingContext(pingCtx)
		cancel()
		if err == nil {
			break
		}
		if time.Now().After(deadline) || ctx.Err() != nil {
			_ = db.Close()
			return nil, fmt.Errorf("connect %s after retries: %w", dialect.Name, err)
		}
		log.Warn().Err(err).Str("dialect", dialect.Name).Msg("database not ready, retrying")
		time.Sleep(time.Second)
	}

	if err := applyMigrations(ctx, db, dialect); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate %s: %w", dialect.Name, err)
	}

	return &Store{
		db:      db,
		dialect: dialect,
		sb:      sq.StatementBuilder.PlaceholderFormat(dialect.placeholder),
	}, nil
}

// OpenMemory opens a migrated in-memory SQLite store.
func OpenMemory(ctx context.Context) (*Store, error) {
	return Open(ctx, "sqlite://:memory:", Options{ConnectTimeout: time.Second})
}

func parseURL(url string) (Dialect, string, error) {
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return Postgres, url, nil
	case strings.HasPrefix(url, "sqlite://"):
		path := strings.TrimPrefix(url, "sqlite://")
		if strings.TrimSpace(path) == "" {
			return Dialect{}, "", errors.New("sqlite path is required")
		}
		dsn := path + "?_pragma=foreign_keys(1)&_time_format=sqlite"
		if path != ":memory:" {
			dsn += "&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
		}
		return SQLite, dsn, nil
	}
	return Dialect{}, "", fmt.Errorf("unsupported database url %q", url)
}

func (s *Store) Dialect() Dialect { return s.dialect }

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

/* ===================== TX ===================== */

// Run executes fn inside one transaction. If fn returns an error the tx
// rolls back, else it commits.
func (s *Store) Run(ctx context.Context, fn func(q *Queries) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	q := &Queries{tx: tx, sb: s.sb, dialect: s.dialect}
	if err := fn(q); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Queries is bound to a single transaction.
type Queries struct {
	tx      *sql.Tx
	sb      sq.StatementBuilderType
	dialect Dialect
}

/* ===================== SQUIRREL HELPERS ===================== */

func (q *Queries) exec(ctx context.Context, b sq.Sqlizer) (sql.Result, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	res, err := q.tx.ExecContext(ctx, query, args...)
	return res, mapErr(err)
}

func (q *Queries) query(ctx context.Context, b sq.Sqlizer) (*sql.Rows, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	return q.tx.QueryContext(ctx, query, args...)
}

// row runs b and scans the single result row into dest.
func (q *Queries) row(ctx context.Context, b sq.Sqlizer, dest ...any) error {
	query, args, err := b.ToSql()
	if err != nil {
		return err
	}
	err = q.tx.QueryRowContext(ctx, query, args...).Scan(dest...)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return mapErr(err)
}

func (q *Queries) exists(ctx context.Context, b sq.SelectBuilder) (bool, error) {
	var n int
	if err := q.row(ctx, b.Column("1").Limit(1), &n); err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (q *Queries) count(ctx context.Context, b sq.SelectBuilder) (int, error) {
	var n int
	if err := q.row(ctx, b.Column("COUNT(*)"), &n); err != nil {
		return 0, err
	}
	return n, nil
}

// forUpdate locks the selected rows on dialects that support it.
func (q *Queries) forUpdate(b sq.SelectBuilder) sq.SelectBuilder {
	if q.dialect.lockRows {
		return b.Suffix("FOR UPDATE")
	}
	return b
}

func affected(res sql.Result) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: %s", ErrConflict, pgErr.ConstraintName)
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return fmt.Errorf("%w: %v", ErrConflict, err)
	}
	return err
}

// ConflictOn reports whether err is a unique violation whose constraint
// mentions column.
func ConflictOn(err error, column string) bool {
	return errors.Is(err, ErrConflict) && strings.Contains(err.Error(), column)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// likePattern builds a lowercase substring pattern for containsIgnoreCase.
// Wildcards in keyword match literally.
func likePattern(keyword string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(keyword))) + "%"
}

// containsIgnoreCase matches column against a likePattern argument.
func containsIgnoreCase(column, pattern string) sq.Sqlizer {
	return sq.Expr("LOWER("+column+") LIKE ? ESCAPE '\\'", pattern)
}

// ts normalizes timestamps before they are written.
func ts(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

// day normalizes calendar dates to UTC midnight.
func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
