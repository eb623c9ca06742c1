package snapshot

import (
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/balch/mocktrade/internal/logger"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

// The purge cutoff is strict: rows exactly at the boundary survive,
// only strictly older ones go. The store reports how many were removed.
func TestPurgeSnapshots(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	store := NewStore(sqlx.NewDb(mockDB, "sqlmock"), logger.NewNop())

	require.Contains(t, _purgeSnapshots, "ts <")
	require.False(t, strings.Contains(_purgeSnapshots, "ts <="))

	mock.ExpectExec(regexp.QuoteMeta(_purgeSnapshots)).
		WithArgs(30).
		WillReturnResult(sqlmock.NewResult(0, 42))

	removed, err := store.PurgeSnapshots(context.Background(), 30)
	require.NoError(t, err)
	require.Equal(t, 42, removed)
	require.NoError(t, mock.ExpectationsWereMet())
}
