package migration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// Supported store dialects.
const (
	DialectPostgres = "postgres"
	DialectMySQL    = "mysql"
	DialectSQLite   = "sqlite"
)

// RunMigrations brings the case schema up to date. Postgres and MySQL go through
// golang-migrate; sqlite uses the embedded runner below.
func RunMigrations(ctx context.Context, db *sql.DB, dialect string) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}

	dialect = strings.ToLower(strings.TrimSpace(dialect))
	sub, err := fsSub(dialect)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	switch dialect {
	case DialectPostgres:
		driver, err := postgres.WithInstance(db, &postgres.Config{})
		if err != nil {
			return fmt.Errorf("create migration driver: %w", err)
		}
		return migrateUp(sub, dialect, driver)
	case DialectMySQL:
		driver, err := mysql.WithInstance(db, &mysql.Config{})
		if err != nil {
			return fmt.Errorf("create migration driver: %w", err)
		}
		return migrateUp(sub, dialect, driver)
	case DialectSQLite:
		return runEmbedded(ctx, db, sub)
	default:
		return fmt.Errorf("unsupported migration dialect %q", dialect)
	}
}

func migrateUp(sub fs.FS, dialect string, driver database.Driver) error {
	source, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, dialect, driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	upErr := migrator.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", upErr)
	}
	// Do not call migrator.Close here because it would close the shared *sql.DB.

	return nil
}

func fsSub(dialect string) (fs.FS, error) {
	return fs.Sub(embeddedMigrations, path.Join(migrationsDir, dialect))
}

type upFile struct {
	version int
	name    string
}

// runEmbedded applies *.up.sql files in version order, recording each version in
// schema_migrations. Every file runs in its own transaction.
func runEmbedded(ctx context.Context, db *sql.DB, sub fs.FS) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	files, err := listUpFiles(sub)
	if err != nil {
		return err
	}

	applied := map[int]struct{}{}
	rows, err := db.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return fmt.Errorf("read schema_migrations: %w", err)
	}
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			rows.Close()
			return fmt.Errorf("read schema_migrations: %w", err)
		}
		applied[v] = struct{}{}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("read schema_migrations: %w", err)
	}

	for _, f := range files {
		if _, ok := applied[f.version]; ok {
			continue
		}
		body, err := fs.ReadFile(sub, f.name)
		if err != nil {
			return fmt.Errorf("read %s: %w", f.name, err)
		}
		if err := applyFile(ctx, db, f.version, string(body)); err != nil {
			return fmt.Errorf("apply %s: %w", f.name, err)
		}
	}
	return nil
}

func applyFile(ctx context.Context, db *sql.DB, version int, body string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, stmt := range splitStatements(body) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES (?)`, version); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func listUpFiles(sub fs.FS) ([]upFile, error) {
	entries, err := fs.ReadDir(sub, ".")
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}

	files := make([]upFile, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".up.sql") {
			continue
		}
		prefix, _, ok := strings.Cut(name, "_")
		if !ok {
			return nil, fmt.Errorf("migration %s has no version prefix", name)
		}
		version, err := strconv.Atoi(prefix)
		if err != nil {
			return nil, fmt.Errorf("migration %s: invalid version: %w", name, err)
		}
		files = append(files, upFile{version: version, name: name})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].version < files[j].version })
	return files, nil
}

// splitStatements splits a migration body on semicolons, dropping comment lines.
// Migration files must not contain semicolons inside literals.
func splitStatements(body string) []string {
	var lines []string
	for _, line := range strings.Split(body, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		lines = append(lines, line)
	}

	var out []string
	for _, stmt := range strings.Split(strings.Join(lines, "\n"), ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}
