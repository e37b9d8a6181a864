package qstore

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/teranos/qlearn/db"
	"github.com/teranos/qlearn/errors"
	"github.com/teranos/qlearn/qtable"
)

// Query constants
const (
	valuesDeleteQuery = `DELETE FROM q_values`

	valueInsertQuery = `
		INSERT INTO q_values (state, action, value)
		VALUES (?, ?, ?)`

	valuesSelectQuery = `
		SELECT state, action, value
		FROM q_values
		ORDER BY state, action`

	snapshotInsertQuery = `
		INSERT INTO snapshots (id, saved_at, entries)
		VALUES (?, ?, ?)`

	snapshotLatestQuery = `
		SELECT id, saved_at, entries
		FROM snapshots
		ORDER BY saved_at DESC
		LIMIT 1`
)

// Snapshot describes one Save into a SQLite store.
type Snapshot struct {
	ID      string
	SavedAt time.Time
	Entries int
}

// SQLStore keeps a table in the q_values table of a SQLite database.
type SQLStore struct {
	db     *sql.DB
	logger *zap.SugaredLogger
	owned  bool
}

// NewSQLStore wraps an already migrated database. Close leaves db open.
func NewSQLStore(database *sql.DB, logger *zap.SugaredLogger) *SQLStore {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &SQLStore{db: database, logger: logger}
}

// OpenSQLStore opens and migrates the database at path. Close closes it.
func OpenSQLStore(path string, logger *zap.SugaredLogger) (*SQLStore, error) {
	database, err := db.OpenWithMigrations(path, logger)
	if err != nil {
		return nil, err
	}
	s := NewSQLStore(database, logger)
	s.owned = true
	return s, nil
}

// Save replaces every row of q_values with entries and records a snapshot,
// all in one transaction.
func (s *SQLStore) Save(entries []qtable.Entry) error {
	tx, err := s.db.Begin()
	if err != nil {
		return s.classify(errors.Wrap(err, "failed to begin transaction"))
	}

	if _, err := tx.Exec(valuesDeleteQuery); err != nil {
		tx.Rollback()
		return s.classify(errors.Wrap(err, "failed to clear values"))
	}
	for _, e := range entries {
		if _, err := tx.Exec(valueInsertQuery, string(e.State), string(e.Action), e.Value); err != nil {
			tx.Rollback()
			return s.classify(errors.Wrapf(err, "failed to insert (%s, %s)", e.State, e.Action))
		}
	}

	snap := Snapshot{ID: uuid.NewString(), SavedAt: time.Now().UTC(), Entries: len(entries)}
	if _, err := tx.Exec(snapshotInsertQuery, snap.ID, snap.SavedAt, snap.Entries); err != nil {
		tx.Rollback()
		return s.classify(errors.Wrap(err, "failed to record snapshot"))
	}

	if err := tx.Commit(); err != nil {
		return s.classify(errors.Wrap(err, "failed to commit table"))
	}

	s.logger.Debugw("Stored value table",
		"snapshot", snap.ID,
		"entries", snap.Entries,
	)
	return nil
}

// Load returns every stored row ordered by state, then action.
func (s *SQLStore) Load() ([]qtable.Entry, error) {
	rows, err := s.db.Query(valuesSelectQuery)
	if err != nil {
		return nil, s.classify(errors.Wrap(err, "failed to query values"))
	}
	defer rows.Close()

	var entries []qtable.Entry
	for rows.Next() {
		var (
			state, action string
			value         float64
		)
		if err := rows.Scan(&state, &action, &value); err != nil {
			return nil, errors.Wrap(err, "failed to scan value row")
		}
		entries = append(entries, qtable.Entry{
			State:  qtable.State(state),
			Action: qtable.Action(action),
			Value:  value,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, s.classify(errors.Wrap(err, "failed to read values"))
	}
	return entries, nil
}

// LatestSnapshot returns the metadata of the most recent Save.
func (s *SQLStore) LatestSnapshot() (*Snapshot, error) {
	var snap Snapshot
	err := s.db.QueryRow(snapshotLatestQuery).Scan(&snap.ID, &snap.SavedAt, &snap.Entries)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError("no snapshots recorded")
	}
	if err != nil {
		return nil, s.classify(errors.Wrap(err, "failed to query snapshot"))
	}
	return &snap, nil
}

// Close closes the database if this store opened it.
func (s *SQLStore) Close() error {
	if s.owned {
		return s.db.Close()
	}
	return nil
}

func (s *SQLStore) classify(err error) error {
	if db.IsDatabaseClosed(err) {
		return errors.Mark(err, db.ErrDatabaseClosed)
	}
	return err
}
