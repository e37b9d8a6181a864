package qstore

import (
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/teranos/qlearn/db"
	"github.com/teranos/qlearn/errors"
	qtesting "github.com/teranos/qlearn/internal/testing"
	"github.com/teranos/qlearn/qtable"
)

func TestSQLStore_RecordsSnapshots(t *testing.T) {
	store := NewSQLStore(qtesting.CreateTestDB(t), zaptest.NewLogger(t).Sugar())

	_, err := store.LatestSnapshot()
	require.Error(t, err)
	assert.True(t, errors.IsNotFoundError(err))

	require.NoError(t, store.Save([]qtable.Entry{{State: "s", Action: "left", Value: 1}}))
	first, err := store.LatestSnapshot()
	require.NoError(t, err)
	assert.Equal(t, 1, first.Entries)
	assert.Len(t, first.ID, 36)

	require.NoError(t, store.Save([]qtable.Entry{
		{State: "s", Action: "left", Value: 1},
		{State: "s", Action: "right", Value: 2},
	}))
	second, err := store.LatestSnapshot()
	require.NoError(t, err)
	assert.Equal(t, 2, second.Entries)
	assert.NotEqual(t, first.ID, second.ID)
	assert.False(t, second.SavedAt.Before(first.SavedAt))
}

func TestSQLStore_LoadOrdered(t *testing.T) {
	store := NewSQLStore(qtesting.CreateTestDB(t), nil)
	require.NoError(t, store.Save([]qtable.Entry{
		{State: "b", Action: "left", Value: 3},
		{State: "a", Action: "right", Value: 2},
		{State: "a", Action: "left", Value: 1},
	}))

	entries, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, []qtable.Entry{
		{State: "a", Action: "left", Value: 1},
		{State: "a", Action: "right", Value: 2},
		{State: "b", Action: "left", Value: 3},
	}, entries)
	assert.NoError(t, store.Close(), "borrowed database stays open")
}

func TestSQLStore_SaveRollsBackOnInsertFailure(t *testing.T) {
	database, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer database.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(valuesDeleteQuery)).WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec("INSERT INTO q_values").
		WithArgs("s", "left", 0.5).
		WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	store := NewSQLStore(database, nil)
	err = store.Save([]qtable.Entry{{State: "s", Action: "left", Value: 0.5}})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to insert (s, left)")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_SaveCommitFailure(t *testing.T) {
	database, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer database.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(valuesDeleteQuery)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO snapshots").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), 0).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit().WillReturnError(errors.New("database is locked"))

	err = NewSQLStore(database, nil).Save(nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to commit table")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_ClosedDatabase(t *testing.T) {
	database := qtesting.CreateTestDB(t)
	store := NewSQLStore(database, nil)
	database.Close()

	_, err := store.Load()
	require.Error(t, err)
	assert.True(t, errors.Is(err, db.ErrDatabaseClosed))
}
