package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dossierr/case-assistant/internal/model"
)

// The advisory lock must be the first statement of the transaction: seq is
// sequence-allocated outside transaction boundaries, so without the lock two
// concurrent appends on the same case can interleave their turns.
func TestAppendExchangeLocksCaseBeforeInserting(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("SELECT pg_advisory_xact_lock").
		WithArgs("case-a").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO chat_history").
		WithArgs("case-a", model.RoleUser, "where is my parcel").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO chat_history").
		WithArgs("case-a", model.RoleAssistant, "it ships tomorrow").
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectExec("DELETE FROM chat_history").
		WithArgs("case-a", float64(3600)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	s := NewHistoryStore(db, time.Hour)
	err = s.AppendExchange(context.Background(), "case-a", "where is my parcel", "it ships tomorrow")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppendExchangeRollsBackOnInsertFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("SELECT pg_advisory_xact_lock").
		WithArgs("case-a").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO chat_history").
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	s := NewHistoryStore(db, time.Hour)
	err = s.AppendExchange(context.Background(), "case-a", "q", "a")
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecentReturnsChronologicalOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	// the query returns newest-first
	mock.ExpectQuery("SELECT role, content, created_at").
		WithArgs("case-a", float64(3600), 4).
		WillReturnRows(sqlmock.NewRows([]string{"role", "content", "created_at"}).
			AddRow(model.RoleAssistant, "second answer", now).
			AddRow(model.RoleUser, "second question", now.Add(-time.Minute)).
			AddRow(model.RoleAssistant, "first answer", now.Add(-2*time.Minute)).
			AddRow(model.RoleUser, "first question", now.Add(-3*time.Minute)))

	s := NewHistoryStore(db, time.Hour)
	turns, err := s.Recent(context.Background(), "case-a", 4)
	require.NoError(t, err)
	require.Len(t, turns, 4)
	assert.Equal(t, "first question", turns[0].Content)
	assert.Equal(t, model.RoleUser, turns[0].Role)
	assert.Equal(t, "second answer", turns[3].Content)
	assert.Equal(t, model.RoleAssistant, turns[3].Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}
