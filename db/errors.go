package db

import (
	"database/sql"
	"strings"

	"github.com/teranos/qlearn/errors"
)

// ErrDatabaseClosed marks operations attempted on a closed database.
// qstore hits this when a checkpoint races the trainer's shutdown.
var ErrDatabaseClosed = errors.New("database is closed")

// closedMessage is the text of database/sql's unexported closed-DB error
const closedMessage = "database is closed"

// IsDatabaseClosed reports whether err came from a closed database: marked
// with ErrDatabaseClosed, sql.ErrConnDone, or raised by database/sql itself.
func IsDatabaseClosed(err error) bool {
	if err == nil {
		return false
	}
	if errors.IsAny(err, ErrDatabaseClosed, sql.ErrConnDone) {
		return true
	}
	return strings.Contains(err.Error(), closedMessage)
}

// markClosed tags err with ErrDatabaseClosed when it came from a closed database
func markClosed(err error) error {
	if err != nil && IsDatabaseClosed(err) {
		return errors.Mark(err, ErrDatabaseClosed)
	}
	return err
}
