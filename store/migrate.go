package store

import (
	"database/sql"
	"embed"
	"errors"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgerrcode"
	_ "github.com/jackc/pgx/v4/stdlib"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// runMigrations applies every embedded migration once at startup. Per
// spec.md §4.2: duplicate-object errors on re-run (42P07, 42710, or a
// message containing "already exists") are demoted to info and treated as
// idempotent success; any other migration failure is fatal.
func runMigrations(databaseURL string) error {
	source, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return err
	}

	// golang-migrate's postgres driver wants a *sql.DB; pgx's stdlib
	// adapter (registered under the "pgx" driver name via blank import)
	// gives us one backed by the same driver the rest of this package
	// uses for query execution through pgxpool.
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return err
	}

	err = m.Up()
	switch {
	case err == nil, errors.Is(err, migrate.ErrNoChange):
		log.Infof("schema migrations applied (or already up to date)")
		return nil
	case isDuplicateObjectError(err):
		log.Infof("schema objects already exist, continuing: %v", err)
		return nil
	default:
		return err
	}
}

// isDuplicateObjectError recognizes a Postgres "already exists" failure
// either by SQLSTATE code or, as a fallback for drivers/wrappers that don't
// preserve the code, by message text.
func isDuplicateObjectError(err error) bool {
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		switch pgErr.SQLState() {
		case pgerrcode.DuplicateObject, pgerrcode.DuplicateTable:
			return true
		}
	}
	return strings.Contains(err.Error(), "already exists")
}
