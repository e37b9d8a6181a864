// Package qstore persists value tables. A table is saved and loaded as a
// whole; the backend is picked from the path's extension:
//
//	.db, .sqlite, .sqlite3  SQLite (q_values table plus snapshot metadata)
//	anything else           JSON document
//
// Every failure returned by Save and Load wraps errors.ErrPersistence and is
// not retried here.
package qstore

import (
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/teranos/qlearn/errors"
	"github.com/teranos/qlearn/qtable"
)

// Store reads and writes a whole table.
type Store interface {
	// Save replaces the stored table with entries.
	Save(entries []qtable.Entry) error
	// Load returns the stored table.
	Load() ([]qtable.Entry, error)
	Close() error
}

// IsSQLitePath reports whether path selects the SQLite backend.
func IsSQLitePath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return true
	}
	return false
}

// Open returns the store for path. SQLite databases are created and
// migrated on open.
func Open(path string, logger *zap.SugaredLogger) (Store, error) {
	if path == "" {
		return nil, errors.WithHint(errors.NewInvalidRequestError("empty table path"),
			"set [table] path in am.toml or pass --table")
	}
	if IsSQLitePath(path) {
		return OpenSQLStore(path, logger)
	}
	return NewFileStore(path), nil
}

// Save writes the agent's whole table to path, overwriting what is there.
func Save(agent *qtable.Agent, path string, logger *zap.SugaredLogger) error {
	store, err := Open(path, logger)
	if err != nil {
		return errors.WrapPersistence(err, "save", path)
	}
	defer store.Close()

	entries := agent.Entries()
	if err := store.Save(entries); err != nil {
		return errors.WrapPersistence(err, "save", path)
	}
	agent.Observer().TableSaved(path, len(entries))
	return nil
}

// Load replaces the agent's whole table with the one stored at path.
// The agent is left untouched on failure.
func Load(agent *qtable.Agent, path string, logger *zap.SugaredLogger) error {
	// SQLite would happily create an empty database for a missing path
	if _, err := os.Stat(path); err != nil {
		return errors.WrapPersistence(err, "load", path)
	}

	store, err := Open(path, logger)
	if err != nil {
		return errors.WrapPersistence(err, "load", path)
	}
	defer store.Close()

	entries, err := store.Load()
	if err != nil {
		return errors.WrapPersistence(err, "load", path)
	}
	if err := agent.Replace(entries); err != nil {
		return errors.WrapPersistence(err, "load", path)
	}
	agent.Observer().TableLoaded(path, len(entries))
	return nil
}
