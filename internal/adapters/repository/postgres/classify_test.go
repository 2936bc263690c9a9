package postgres

import (
	"database/sql/driver"
	"errors"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/rollcall/internal/core/domain"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want error
	}{
		{"unique violation", &pq.Error{Code: codeUniqueViolation}, domain.ErrConflict},
		{"serialization failure", &pq.Error{Code: codeSerializationFailure}, domain.ErrTransient},
		{"deadlock", &pq.Error{Code: codeDeadlockDetected}, domain.ErrTransient},
		{"lock not available", &pq.Error{Code: codeLockNotAvailable}, domain.ErrTransient},
		{"bad conn", driver.ErrBadConn, domain.ErrTransient},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, classify(tc.err), tc.want)
		})
	}

	plain := errors.New("syntax error")
	assert.Equal(t, plain, classify(plain))
	other := &pq.Error{Code: "42601"}
	assert.False(t, errors.Is(classify(other), domain.ErrTransient))
	assert.NoError(t, classify(nil))
}

func TestMigration(t *testing.T) {
	content, err := Migration("init.up")
	require.NoError(t, err)
	assert.Contains(t, content, "CREATE TABLE IF NOT EXISTS polls")

	down, err := Migration("init.down")
	require.NoError(t, err)
	assert.Contains(t, down, "DROP TABLE")

	_, err = Migration("does-not-exist")
	assert.Error(t, err)
}
