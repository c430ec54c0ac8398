package data

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const (
	// DataFileName is the default sqlite store file name.
	DataFileName = "data.db"

	driverSqlite   = "sqlite"
	driverPostgres = "postgres"
)

var (
	//go:embed migrations
	migrationsFS embed.FS

	errDBNotInitialized = errors.New("database not initialized")

	// ErrNotFound is returned when a run does not exist.
	ErrNotFound = errors.New("not found")
)

// IsPostgres reports whether dsn selects the Postgres store.
func IsPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

func driverName(dsn string) string {
	if IsPostgres(dsn) {
		return driverPostgres
	}
	return driverSqlite
}

// Init creates the store for dsn, a sqlite file path or a Postgres URL,
// and applies pending migrations.
func Init(dsn string) error {
	if dsn == "" {
		return errors.New("dsn not specified")
	}

	db, err := GetDB(dsn)
	if err != nil {
		return fmt.Errorf("error opening database: %w", err)
	}
	defer db.Close()

	if err := migrateUp(db, driverName(dsn)); err != nil {
		return fmt.Errorf("error migrating database: %w", err)
	}

	slog.Debug("database initialized", "driver", driverName(dsn))
	return nil
}

// GetDB opens the store for dsn.
func GetDB(dsn string) (*sql.DB, error) {
	conn, err := sql.Open(driverName(dsn), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return conn, nil
}

func isPostgresDB(db *sql.DB) bool {
	_, ok := db.Driver().(*pq.Driver)
	return ok
}

// bind rewrites ? placeholders to $n when db is Postgres.
func bind(db *sql.DB, query string) string {
	if !isPostgresDB(db) {
		return query
	}

	var b strings.Builder
	n := 0
	for _, c := range query {
		if c == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

func rollbackTransaction(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		slog.Error("error rolling back transaction", "error", err)
	}
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
