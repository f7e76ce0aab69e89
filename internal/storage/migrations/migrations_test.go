package migrations

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Embedded(t *testing.T) {
	pg, err := load(PostgresFS, "postgres")
	require.NoError(t, err)
	require.Len(t, pg, 2)
	assert.Equal(t, "001_pool_snapshots.sql", pg[0].name)
	assert.Equal(t, "002_tracked_queries.sql", pg[1].name)

	ch, err := load(ClickhouseFS, "clickhouse")
	require.NoError(t, err)
	require.Len(t, ch, 1)
	for _, m := range ch {
		assert.NoError(t, validateNoSemicolonInStrings(m.sql))
	}
}

func TestSplitStatements(t *testing.T) {
	sql := `
-- header comment
CREATE TABLE a (x String);

CREATE TABLE b (y String)
ENGINE = MergeTree() ORDER BY y;
`
	stmts := splitStatements(sql)
	require.Len(t, stmts, 2)
	assert.True(t, strings.HasPrefix(stmts[0], "CREATE TABLE a"))
	assert.Contains(t, stmts[1], "ENGINE = MergeTree()")
}

func TestValidateNoSemicolonInStrings(t *testing.T) {
	assert.NoError(t, validateNoSemicolonInStrings(`SELECT 'it''s'; SELECT 1;`))
	assert.NoError(t, validateNoSemicolonInStrings(`CREATE TABLE t (s String DEFAULT '');`))

	err := validateNoSemicolonInStrings(`SELECT 'a;b';`)
	assert.True(t, errors.Is(err, ErrSemicolonInString))
}

func TestDatabaseFromDSN(t *testing.T) {
	db, err := databaseFromDSN("clickhouse://localhost:9000/pools")
	require.NoError(t, err)
	assert.Equal(t, "pools", db)

	_, err = databaseFromDSN("clickhouse://localhost:9000")
	assert.Error(t, err)
}

type recordingExecer struct {
	stmts []string
	fail  bool
}

func (r *recordingExecer) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	if r.fail {
		return pgconn.CommandTag{}, errors.New("boom")
	}
	r.stmts = append(r.stmts, sql)
	return pgconn.CommandTag{}, nil
}

func TestRunPostgresMigrations(t *testing.T) {
	ex := &recordingExecer{}
	require.NoError(t, RunPostgresMigrations(context.Background(), ex))
	require.Len(t, ex.stmts, 2)
	assert.Contains(t, ex.stmts[0], "pool_snapshots")
	assert.Contains(t, ex.stmts[1], "tracked_queries")

	err := RunPostgresMigrations(context.Background(), &recordingExecer{fail: true})
	assert.ErrorContains(t, err, "001_pool_snapshots.sql")
}
