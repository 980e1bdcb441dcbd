package persistence

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"

	"github.com/fixora/fieldreports/internal/logger"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// Migrations returns the schema migrations shipped with the binary
func Migrations() fs.FS {
	sub, err := fs.Sub(embeddedMigrations, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

type migrationFile struct {
	version int
	name    string
	path    string
	kind    string // up or down
}

// Migrator applies numbered .up.sql / .down.sql files and records them in schema_migrations
type Migrator struct {
	db     *sql.DB
	files  fs.FS
	logger logger.Logger
}

func NewMigrator(db *sql.DB, files fs.FS, log logger.Logger) *Migrator {
	return &Migrator{db: db, files: files, logger: log}
}

// Up applies every pending up migration in version order
func (m *Migrator) Up(ctx context.Context) error {
	files, err := m.prepare(ctx)
	if err != nil {
		return err
	}

	for _, f := range files {
		if f.kind != "up" {
			continue
		}
		applied, err := m.applied(ctx, f.version)
		if err != nil {
			return err
		}
		if applied {
			continue
		}

		m.logger.Info(ctx, "Applying migration", map[string]interface{}{"version": f.version, "name": f.name})
		err = m.run(ctx, f, `INSERT INTO schema_migrations (version, name) VALUES ($1, $2)`, f.version, f.name)
		if err != nil {
			return fmt.Errorf("failed applying %s: %w", f.path, err)
		}
	}
	return nil
}

// Down reverts applied migrations, newest first. steps <= 0 reverts all.
func (m *Migrator) Down(ctx context.Context, steps int) error {
	files, err := m.prepare(ctx)
	if err != nil {
		return err
	}

	var downs []migrationFile
	for _, f := range files {
		if f.kind == "down" {
			downs = append(downs, f)
		}
	}
	sort.Slice(downs, func(i, j int) bool { return downs[i].version > downs[j].version })

	reverted := 0
	for _, f := range downs {
		if steps > 0 && reverted >= steps {
			break
		}
		applied, err := m.applied(ctx, f.version)
		if err != nil {
			return err
		}
		if !applied {
			continue
		}

		m.logger.Info(ctx, "Reverting migration", map[string]interface{}{"version": f.version, "name": f.name})
		if err := m.run(ctx, f, `DELETE FROM schema_migrations WHERE version = $1`, f.version); err != nil {
			return fmt.Errorf("failed reverting %s: %w", f.path, err)
		}
		reverted++
	}
	return nil
}

func (m *Migrator) prepare(ctx context.Context) ([]migrationFile, error) {
	_, err := m.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure schema_migrations: %w", err)
	}

	files, err := loadMigrationFiles(m.files)
	if err != nil {
		return nil, fmt.Errorf("failed to load migrations: %w", err)
	}
	return files, nil
}

func (m *Migrator) applied(ctx context.Context, version int) (bool, error) {
	var exists bool
	err := m.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)`, version).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check migration %d: %w", version, err)
	}
	return exists, nil
}

// run executes the file and the bookkeeping statement in one transaction
func (m *Migrator) run(ctx context.Context, f migrationFile, bookkeeping string, args ...interface{}) error {
	body, err := fs.ReadFile(m.files, f.path)
	if err != nil {
		return err
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, string(body)); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, bookkeeping, args...); err != nil {
		return err
	}
	return tx.Commit()
}

func loadMigrationFiles(files fs.FS) ([]migrationFile, error) {
	entries, err := fs.ReadDir(files, ".")
	if err != nil {
		return nil, err
	}

	var out []migrationFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		lower := strings.ToLower(name)
		if !strings.HasSuffix(lower, ".sql") {
			continue
		}

		kind := "up"
		if strings.HasSuffix(lower, ".down.sql") {
			kind = "down"
		}

		version, migName, err := parseVersionAndName(name)
		if err != nil {
			continue
		}
		out = append(out, migrationFile{version: version, name: migName, path: name, kind: kind})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].version < out[j].version })
	return out, nil
}

// parseVersionAndName splits 001_create_technicians.up.sql into 1 and create_technicians
func parseVersionAndName(filename string) (int, string, error) {
	parts := strings.SplitN(filename, "_", 2)
	if len(parts) < 2 {
		return 0, "", errors.New("invalid migration filename")
	}
	version, err := strconv.Atoi(parts[0])
	if err != nil || version <= 0 {
		return 0, "", errors.New("invalid migration version")
	}
	name := strings.TrimSuffix(strings.TrimSuffix(strings.TrimSuffix(parts[1], ".sql"), ".up"), ".down")
	return version, name, nil
}
