// Package migrations applies the embedded schema migrations in version
// order, recording applied versions in schema_migrations.
package migrations

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

//go:embed sql/*.sql
var migrationFiles embed.FS

type Migration struct {
	Version int
	Name    string
	Up      string
	Down    string
}

func RunMigrations(db *sql.DB) error {
	if err := createMigrationsTable(db); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := getAppliedMigrations(db)
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}

	files, err := loadMigrations()
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	for _, m := range files {
		if _, exists := applied[m.Version]; !exists {
			if err := applyMigration(db, m); err != nil {
				return fmt.Errorf("failed to apply migration %s: %w", m.Name, err)
			}
			log.Printf("Applied migration: %s", m.Name)
		}
	}

	return nil
}

func createMigrationsTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
		)
	`)
	return err
}

func getAppliedMigrations(db *sql.DB) (map[int]bool, error) {
	rows, err := db.Query("SELECT version FROM schema_migrations ORDER BY version")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = true
	}
	return applied, rows.Err()
}

func loadMigrations() ([]Migration, error) {
	entries, err := fs.Glob(migrationFiles, "sql/*.up.sql")
	if err != nil {
		return nil, err
	}

	var migrations []Migration
	for _, file := range entries {
		version, name, err := parseMigrationFilename(filepath.Base(file))
		if err != nil {
			return nil, err
		}

		content, err := migrationFiles.ReadFile(file)
		if err != nil {
			return nil, err
		}

		down := []byte{}
		downFile := fmt.Sprintf("sql/%04d_%s.down.sql", version, name)
		if b, err := migrationFiles.ReadFile(downFile); err == nil {
			down = b
		}

		migrations = append(migrations, Migration{
			Version: version,
			Name:    name,
			Up:      string(content),
			Down:    string(down),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	return migrations, nil
}

func parseMigrationFilename(filename string) (int, string, error) {
	parts := strings.SplitN(filename, "_", 2)
	if len(parts) != 2 {
		return 0, "", fmt.Errorf("invalid migration filename format: %s", filename)
	}

	version, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, "", fmt.Errorf("invalid version in filename %s: %w", filename, err)
	}

	name := strings.TrimSuffix(parts[1], ".up.sql")
	name = strings.TrimSuffix(name, ".down.sql")

	return version, name, nil
}

func applyMigration(db *sql.DB, migration Migration) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(migration.Up); err != nil {
		return fmt.Errorf("failed to execute migration: %w", err)
	}

	if _, err := tx.Exec(
		"INSERT INTO schema_migrations (version, name) VALUES ($1, $2) ON CONFLICT (version) DO NOTHING",
		migration.Version,
		migration.Name,
	); err != nil {
		return fmt.Errorf("failed to record migration: %w", err)
	}

	return tx.Commit()
}
