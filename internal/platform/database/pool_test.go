package database

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tickethub/migrations"
)

func TestMigrateAppliesFilesInOrder(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	files := fstest.MapFS{
		"0002_b.sql": {Data: []byte("CREATE INDEX b")},
		"0001_a.sql": {Data: []byte("CREATE TABLE a")},
		"README.md":  {Data: []byte("ignored")},
	}
	mock.ExpectExec("CREATE TABLE a").WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec("CREATE INDEX b").WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, Migrate(context.Background(), mock, files))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateStopsOnFailure(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS sessions").WillReturnError(errors.New("permission denied"))

	err = Migrate(context.Background(), mock, migrations.FS)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "0001_sessions.sql")
}
