package savedb

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedSave creates a minimal GearCity-shaped save file.
func seedSave(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "save.db")
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	stmts := []string{
		`CREATE TABLE GameInfo (GameInfo_Varible TEXT, GameInfo_Data TEXT)`,
		`INSERT INTO GameInfo VALUES ('Current_Year', '1931'), ('Current_Turn', '4'), ('Starting_Year', '1900')`,
		`CREATE TABLE PlayerInfo (Player_Varible TEXT, Player_Data TEXT)`,
		`INSERT INTO PlayerInfo VALUES ('Company_ID', '3'), ('Company_Name', 'Test Motors')`,
		`CREATE TABLE CompanyList (ID INTEGER, COMPANY_NAME TEXT, FUNDS_ONHAND REAL)`,
		`INSERT INTO CompanyList VALUES (3, 'Test Motors', 152340)`,
	}
	for _, s := range stmts {
		_, err := db.Exec(s)
		require.NoError(t, err)
	}
	return path
}

func TestOpenMissingFileIsFatal(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.db"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestQueryReturnsRows(t *testing.T) {
	db, err := Open(seedSave(t), nil)
	require.NoError(t, err)
	defer db.Close()

	res, err := db.Query(context.Background(),
		"SELECT COMPANY_NAME, FUNDS_ONHAND FROM CompanyList WHERE ID = 3")
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "Test Motors", res.Str(0, "COMPANY_NAME"))
	assert.Equal(t, 152340, res.Int(0, "FUNDS_ONHAND"))
}

func TestQueryDeterministic(t *testing.T) {
	db, err := Open(seedSave(t), nil)
	require.NoError(t, err)
	defer db.Close()

	const q = "SELECT * FROM GameInfo ORDER BY GameInfo_Varible"
	first, err := db.Query(context.Background(), q)
	require.NoError(t, err)
	second, err := db.Query(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, first.Markdown(30), second.Markdown(30))
}

func TestQueryEmptyResultIsNotError(t *testing.T) {
	db, err := Open(seedSave(t), nil)
	require.NoError(t, err)
	defer db.Close()

	res, err := db.Query(context.Background(), "SELECT * FROM CompanyList WHERE ID = 999")
	require.NoError(t, err)
	assert.True(t, res.Empty())
	assert.Equal(t, "(no rows)", res.Markdown(30))
}

func TestQueryRejectsWrites(t *testing.T) {
	db, err := Open(seedSave(t), nil)
	require.NoError(t, err)
	defer db.Close()

	for _, stmt := range []string{
		"DELETE FROM CompanyList",
		"INSERT INTO CompanyList VALUES (4, 'Evil', 0)",
		"DROP TABLE GameInfo",
		"SELECT 1; DROP TABLE GameInfo",
		"PRAGMA journal_mode = DELETE",
		"",
	} {
		_, err := db.Query(context.Background(), stmt)
		assert.True(t, errors.Is(err, ErrNotSelect), "stmt %q", stmt)
	}
}

func TestCheckReadOnlyAllowsSelectWithCreatedColumn(t *testing.T) {
	// Word-boundary scan: column names containing a write verb must pass.
	assert.NoError(t, CheckReadOnly("SELECT CreatedYear, Updated_At FROM CarInfo"))
	assert.NoError(t, CheckReadOnly("WITH t AS (SELECT 1 AS n) SELECT n FROM t"))
}

func TestQuerySemanticErrors(t *testing.T) {
	db, err := Open(seedSave(t), nil)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Query(context.Background(), "SELECT * FROM NoSuchTable")
	require.Error(t, err)
	assert.Equal(t, KindSchema, Classify(err))

	_, err = db.Query(context.Background(), "SELECT FROM WHERE")
	require.Error(t, err)
	assert.Equal(t, KindSyntax, Classify(err))
}

func TestCurrentTurnProbe(t *testing.T) {
	db, err := Open(seedSave(t), nil)
	require.NoError(t, err)
	defer db.Close()

	year, month, err := db.CurrentTurn(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1931, year)
	assert.Equal(t, 4, month)
}

func TestMarkdownTruncation(t *testing.T) {
	res := &Result{
		Columns: []string{"n"},
		Rows:    [][]string{{"1"}, {"2"}, {"3"}},
	}
	md := res.Markdown(2)
	assert.Contains(t, md, "| 1 |")
	assert.Contains(t, md, "(1 more rows)")
	assert.NotContains(t, md, "| 3 |")
}
