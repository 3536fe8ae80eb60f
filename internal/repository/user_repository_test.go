package repository

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedExec struct {
	sql  string
	args []any
}

type fakeExecer struct {
	execs       []recordedExec
	failOn      string
	userMissing bool
}

func (e *fakeExecer) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if e.failOn != "" && strings.Contains(sql, e.failOn) {
		return pgconn.CommandTag{}, errors.New("exec failed")
	}
	e.execs = append(e.execs, recordedExec{sql: sql, args: args})

	if e.userMissing && strings.Contains(sql, "FROM users") {
		return pgconn.NewCommandTag("DELETE 0"), nil
	}
	return pgconn.NewCommandTag("DELETE 1"), nil
}

func TestDeleteUserCascadeRemovesDependentsFirst(t *testing.T) {
	exec := &fakeExecer{}

	err := deleteUserCascade(context.Background(), exec, "user-1")
	require.NoError(t, err)

	require.Len(t, exec.execs, len(userDependentTables)+1)

	// Every per-account table from the schema is emptied before the users
	// row goes, and each statement is scoped to the deleted account.
	for i, table := range []string{"activity_logs", "notifications", "notes", "user_settings", "documents"} {
		stmt := exec.execs[i]
		assert.Contains(t, stmt.sql, "DELETE FROM "+table)
		assert.Contains(t, stmt.sql, "WHERE user_id = $1")
		require.Len(t, stmt.args, 1)
		assert.Equal(t, "user-1", stmt.args[0])
	}

	last := exec.execs[len(exec.execs)-1]
	assert.Contains(t, last.sql, "DELETE FROM users")
	assert.Equal(t, []any{"user-1"}, last.args)
}

func TestDeleteUserCascadeUnknownUser(t *testing.T) {
	exec := &fakeExecer{userMissing: true}

	err := deleteUserCascade(context.Background(), exec, "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestDeleteUserCascadeStopsOnDependentFailure(t *testing.T) {
	exec := &fakeExecer{failOn: "notes"}

	err := deleteUserCascade(context.Background(), exec, "user-1")
	require.Error(t, err)

	// Nothing after the failing table ran, the users row included.
	for _, stmt := range exec.execs {
		assert.NotContains(t, stmt.sql, "FROM users")
		assert.NotContains(t, stmt.sql, "user_settings")
		assert.NotContains(t, stmt.sql, "documents")
	}
}
