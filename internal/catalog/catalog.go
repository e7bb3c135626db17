package catalog

import (
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// ErrSchemaTooNew is returned by Open when the database's stored schema
// version is newer than this binary understands.
var ErrSchemaTooNew = errors.New("catalog: schema version is newer than this binary supports")

// Catalog is the SQLite-backed data access layer described in spec §4.1. All
// writes are wrapped in short transactions; readers and writers may proceed
// concurrently under WAL.
type Catalog struct {
	db *sql.DB
}

// Open opens (and if necessary creates) a catalog at path, in WAL mode with
// a 30-second busy wait, and brings the schema up to date.
func Open(path string) (*Catalog, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(30000)&_pragma=foreign_keys(ON)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("catalog: open %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("catalog: ping %s: %w", path, err)
	}
	c := &Catalog{db: db}
	if err := c.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

// Close releases the underlying database connection.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// DB returns the underlying *sql.DB for callers that need direct access
// (tests, ad-hoc queries).
func (c *Catalog) DB() *sql.DB {
	return c.db
}

func (c *Catalog) migrate() error {
	if _, err := c.db.Exec(schemaDDL); err != nil {
		return fmt.Errorf("catalog: create schema: %w", err)
	}

	var stored int
	row := c.db.QueryRow("SELECT version FROM schema_version ORDER BY version DESC LIMIT 1")
	if err := row.Scan(&stored); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("catalog: read schema version: %w", err)
		}
		stored = 0
	}

	if stored > schemaVersion {
		return ErrSchemaTooNew
	}
	if stored == schemaVersion {
		return nil
	}

	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("catalog: begin migration: %w", err)
	}
	defer tx.Rollback()

	for v := stored; v < schemaVersion; v++ {
		for _, stmt := range migrations[v] {
			if _, err := tx.Exec(stmt); err != nil {
				return fmt.Errorf("catalog: migrate from v%d: %w", v, err)
			}
		}
	}
	if _, err := tx.Exec("INSERT INTO schema_version (version, applied_at) VALUES (?, strftime('%s','now'))", schemaVersion); err != nil {
		return fmt.Errorf("catalog: record schema version: %w", err)
	}
	return tx.Commit()
}

// CategorizeError maps a raw error string to one of the short prefixes
// operators use to see aggregate failure causes without opening logs. It
// returns the matching prefix verbatim, "timed out" for a message containing
// " timed out after ", or "" if none match.
func CategorizeError(msg string) string {
	for _, prefix := range []string{
		"Extension ",
		"No extractor available",
		"All extractors failed",
		"Worker hung after",
		"Worker error",
	} {
		if hasPrefixOrContains(msg, prefix) {
			return prefix
		}
	}
	if hasTimeoutSuffix(msg) {
		return "timed out"
	}
	return ""
}

func hasPrefixOrContains(s, prefix string) bool {
	if len(s) >= len(prefix) && s[:len(prefix)] == prefix {
		return true
	}
	return false
}

func hasTimeoutSuffix(s string) bool {
	const marker = " timed out after "
	for i := 0; i+len(marker) <= len(s); i++ {
		if s[i:i+len(marker)] == marker {
			return true
		}
	}
	return false
}
