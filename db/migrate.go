package db

import (
	"database/sql"
	"embed"
	"path"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/teranos/qlearn/errors"
)

//go:embed sqlite/migrations/*.sql
var migrations embed.FS

const migrationsDir = "sqlite/migrations"

// Migration is one embedded schema file.
type Migration struct {
	Version string // file name prefix before the first "_", e.g. "001"
	File    string
}

// Migrations lists the embedded migrations in the order Migrate applies them.
// 000 creates schema_migrations, so it always sorts first.
func Migrations() ([]Migration, error) {
	entries, err := migrations.ReadDir(migrationsDir)
	if err != nil {
		return nil, errors.Wrap(err, "read migrations")
	}

	var list []Migration
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}
		list = append(list, Migration{Version: strings.SplitN(name, "_", 2)[0], File: name})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].File < list[j].File })
	return list, nil
}

// Migrate applies every embedded migration not yet recorded in
// schema_migrations, each in its own transaction. A nil logger is silent.
func Migrate(db *sql.DB, logger *zap.SugaredLogger) error {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	list, err := Migrations()
	if err != nil {
		return err
	}
	applied, err := appliedVersions(db)
	if err != nil {
		return err
	}

	count := 0
	for _, m := range list {
		if applied[m.Version] {
			continue
		}
		logger.Debugw("Applying migration", "migration", m.File, "version", m.Version)
		if err := apply(db, m); err != nil {
			return err
		}
		count++
	}

	logger.Debugw("Migrations complete", "applied", count, "total", len(list))
	return nil
}

// appliedVersions returns the recorded versions; none on a fresh database
func appliedVersions(db *sql.DB) (map[string]bool, error) {
	var tables int
	err := db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'schema_migrations'",
	).Scan(&tables)
	if err != nil {
		return nil, markClosed(errors.Wrap(err, "look up schema_migrations"))
	}

	applied := make(map[string]bool)
	if tables == 0 {
		return applied, nil
	}

	rows, err := db.Query("SELECT version FROM schema_migrations")
	if err != nil {
		return nil, markClosed(errors.Wrap(err, "read applied migrations"))
	}
	defer rows.Close()

	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, errors.Wrap(err, "scan migration version")
		}
		applied[version] = true
	}
	return applied, errors.Wrap(rows.Err(), "read applied migrations")
}

// apply runs one migration and records it in the same transaction
func apply(db *sql.DB, m Migration) error {
	body, err := migrations.ReadFile(path.Join(migrationsDir, m.File))
	if err != nil {
		return errors.Wrapf(err, "read %s", m.File)
	}

	tx, err := db.Begin()
	if err != nil {
		return markClosed(errors.Wrapf(err, "begin %s", m.File))
	}
	if _, err := tx.Exec(string(body)); err != nil {
		tx.Rollback()
		return errors.Wrapf(err, "execute %s", m.File)
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", m.Version); err != nil {
		tx.Rollback()
		return errors.Wrapf(err, "record %s", m.File)
	}
	return errors.Wrapf(tx.Commit(), "commit %s", m.File)
}
