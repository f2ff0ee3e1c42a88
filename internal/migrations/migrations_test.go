package migrations

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestApply_FreshDatabase(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectQuery("SELECT id FROM schema_migrations").
		WillReturnRows(pgxmock.NewRows([]string{"id"}))
	mock.ExpectBegin()
	for _, m := range allMigrations {
		mock.ExpectExec("CREATE").WillReturnResult(pgxmock.NewResult("CREATE", 0))
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO schema_migrations (id) VALUES ($1)")).
			WithArgs(m.ID).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}
	mock.ExpectCommit()

	require.NoError(t, Apply(context.Background(), testLogger(), mock))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApply_UpToDate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	rows := pgxmock.NewRows([]string{"id"})
	for _, m := range allMigrations {
		rows.AddRow(m.ID)
	}
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectQuery("SELECT id FROM schema_migrations").WillReturnRows(rows)
	mock.ExpectBegin()
	mock.ExpectCommit()

	require.NoError(t, Apply(context.Background(), testLogger(), mock))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApply_BootstrapFailure(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").
		WillReturnError(errors.New("permission denied"))

	err = Apply(context.Background(), testLogger(), mock)

	assert.ErrorContains(t, err, "permission denied")
	assert.NoError(t, mock.ExpectationsWereMet())
}
