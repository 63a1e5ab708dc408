package store

import (
	"errors"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/stretchr/testify/require"
)

type fakeSQLStateErr struct{ code string }

func (e fakeSQLStateErr) Error() string    { return "pg error " + e.code }
func (e fakeSQLStateErr) SQLState() string { return e.code }

func TestIsDuplicateObjectErrorBySQLState(t *testing.T) {
	require.True(t, isDuplicateObjectError(fakeSQLStateErr{code: pgerrcode.DuplicateObject}))
	require.True(t, isDuplicateObjectError(fakeSQLStateErr{code: pgerrcode.DuplicateTable}))
	require.False(t, isDuplicateObjectError(fakeSQLStateErr{code: "42601"}))
}

func TestIsDuplicateObjectErrorByMessageFallback(t *testing.T) {
	require.True(t, isDuplicateObjectError(errors.New(`relation "vaults" already exists`)))
	require.False(t, isDuplicateObjectError(errors.New("connection refused")))
}
