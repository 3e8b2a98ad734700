// Package oraclestore persists escape-oracle decisions across
// serializations, for an Oracle implementation that performs out-of-process
// checks (spec.md §5: "Suspension occurs only at explicit asynchronous
// boundaries: ... (b) the escape oracle if it performs out-of-process
// checks"). Repeatedly asking such an oracle about the same fragment in the
// same context is wasted latency, so the cache sits in front of it.
//
// The Dialect/Database split is adapted from the teacher repo's
// util/dbutil package (database.go's Dialect enum and placeholder
// rewriting, log.go's zerolog-backed query logger): this module keeps one
// fixed-schema table rather than the teacher's staged upgrade-table
// machinery, since the cache only ever needs one version of one table.
package oraclestore

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Dialect is the SQL flavor backing the store, mirroring
// util/dbutil.Dialect in the teacher repo.
type Dialect int

const (
	DialectUnknown Dialect = iota
	Postgres
	SQLite
)

func (d Dialect) driverName() string {
	switch d {
	case Postgres:
		return "postgres"
	case SQLite:
		return "sqlite3"
	default:
		return ""
	}
}

// ParseDialect recognizes a config-file dialect name.
func ParseDialect(engine string) (Dialect, error) {
	engine = strings.ToLower(engine)
	switch {
	case strings.HasPrefix(engine, "postgres"), engine == "pgx":
		return Postgres, nil
	case strings.HasPrefix(engine, "sqlite"):
		return SQLite, nil
	default:
		return DialectUnknown, fmt.Errorf("oraclestore: unknown dialect %q", engine)
	}
}

var positionalParamPattern = regexp.MustCompile(`\$(\d+)`)

// Store persists (key -> needsNowiki, forceNamed) decisions.
type Store struct {
	db      *sql.DB
	dialect Dialect
	log     zerolog.Logger
}

// Open opens (and, if needed, creates the schema for) a decision cache at
// uri using the given dialect.
func Open(ctx context.Context, dialect Dialect, uri string, log zerolog.Logger) (*Store, error) {
	db, err := sql.Open(dialect.driverName(), uri)
	if err != nil {
		return nil, fmt.Errorf("oraclestore: open %s: %w", dialect.driverName(), err)
	}
	s := &Store{db: db, dialect: dialect, log: log}
	if err = s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) query(q string) string {
	if s.dialect == SQLite {
		return positionalParamPattern.ReplaceAllString(q, "?")
	}
	return q
}

func (s *Store) migrate(ctx context.Context) error {
	ddl := `CREATE TABLE IF NOT EXISTS escape_oracle_cache (
		cache_key TEXT PRIMARY KEY,
		needs_nowiki BOOLEAN NOT NULL,
		force_named BOOLEAN NOT NULL,
		updated_at BIGINT NOT NULL
	)`
	_, err := s.db.ExecContext(ctx, ddl)
	if err != nil {
		return fmt.Errorf("oraclestore: migrate: %w", err)
	}
	s.log.Debug().Msg("escape oracle cache schema ready")
	return nil
}

// Decision is the cached verdict shape, decoupled from escape.Decision to
// avoid this package importing the oracle interface it's merely a backing
// store for.
type Decision struct {
	NeedsNowiki bool
	ForceNamed  bool
}

// Get returns a cached decision, if any.
func (s *Store) Get(ctx context.Context, key string) (Decision, bool, error) {
	start := time.Now()
	row := s.db.QueryRowContext(ctx, s.query("SELECT needs_nowiki, force_named FROM escape_oracle_cache WHERE cache_key = $1"), key)
	var d Decision
	err := row.Scan(&d.NeedsNowiki, &d.ForceNamed)
	s.log.Trace().Dur("duration", time.Since(start)).Str("cache_key", key).Bool("hit", err == nil).Msg("escape oracle cache lookup")
	if err == sql.ErrNoRows {
		return Decision{}, false, nil
	} else if err != nil {
		return Decision{}, false, fmt.Errorf("oraclestore: get: %w", err)
	}
	return d, true, nil
}

// Put stores a decision, overwriting any previous entry for key.
func (s *Store) Put(ctx context.Context, key string, d Decision) error {
	var q string
	switch s.dialect {
	case Postgres:
		q = `INSERT INTO escape_oracle_cache (cache_key, needs_nowiki, force_named, updated_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (cache_key) DO UPDATE SET needs_nowiki = $2, force_named = $3, updated_at = $4`
	default:
		q = s.query(`INSERT INTO escape_oracle_cache (cache_key, needs_nowiki, force_named, updated_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (cache_key) DO UPDATE SET needs_nowiki = excluded.needs_nowiki, force_named = excluded.force_named, updated_at = excluded.updated_at`)
	}
	_, err := s.db.ExecContext(ctx, q, key, d.NeedsNowiki, d.ForceNamed, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("oraclestore: put: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}
