package schema

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleMap = `# Database Schema Map

Generated: 2026-08-01 10:00:00

## Table: CompanyList (12 rows)

Columns:
- ID (INTEGER, PK)
- COMPANY_NAME (TEXT)
- FUNDS_ONHAND (REAL)

Sample rows:
| ID | COMPANY_NAME | FUNDS_ONHAND |
| --- | --- | --- |
| 3 | Test Motors | 152340 |

---

## Table: CarInfo (40 rows)

Columns:
- ID (INTEGER, PK)
- Name (TEXT)
- TopSpeed (REAL)

---
`

func writeMap(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schema_map.md")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadParsesSections(t *testing.T) {
	c, err := Load(writeMap(t, sampleMap), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"CompanyList", "CarInfo"}, c.Tables())
	assert.True(t, c.Has("CarInfo"))
	assert.False(t, c.Has("NoSuch"))
}

func TestIndexIsCompact(t *testing.T) {
	c, err := Load(writeMap(t, sampleMap), nil)
	require.NoError(t, err)

	idx := c.Index()
	assert.Contains(t, idx, "CompanyList (12 rows): ID, COMPANY_NAME, FUNDS_ONHAND")
	assert.Contains(t, idx, "CarInfo (40 rows): ID, Name, TopSpeed")
	// Tier-2 detail stays out of the index.
	assert.NotContains(t, idx, "Sample rows")
}

func TestExtractReturnsFullSections(t *testing.T) {
	c, err := Load(writeMap(t, sampleMap), nil)
	require.NoError(t, err)

	out := c.Extract([]string{"CompanyList", "Bogus"})
	assert.Contains(t, out, "## Table: CompanyList (12 rows)")
	assert.Contains(t, out, "| 3 | Test Motors | 152340 |")
	assert.Contains(t, out, "(no schema entry for Bogus)")
	assert.NotContains(t, out, "## Table: CarInfo")
}

func TestLoadRejectsEmptyMap(t *testing.T) {
	_, err := Load(writeMap(t, "# nothing here\n"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no table sections")
}

func TestReloadKeepsStateOnMissingFile(t *testing.T) {
	path := writeMap(t, sampleMap)
	c, err := Load(path, nil)
	require.NoError(t, err)

	require.NoError(t, os.Remove(path))
	require.Error(t, c.Reload())
	assert.Equal(t, []string{"CompanyList", "CarInfo"}, c.Tables())
}

func TestGenerateRoundTrip(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "save.db")
	db, err := sql.Open("sqlite3", dbPath)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE CompanyList (ID INTEGER PRIMARY KEY, COMPANY_NAME TEXT);
		INSERT INTO CompanyList VALUES (3, 'Test Motors');`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	outPath := filepath.Join(dir, "schema_map.md")
	require.NoError(t, Generate(context.Background(), dbPath, outPath, nil))

	c, err := Load(outPath, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"CompanyList"}, c.Tables())
	assert.Equal(t, []string{"ID", "COMPANY_NAME"}, c.tables["CompanyList"].Columns)
	assert.Contains(t, c.Extract([]string{"CompanyList"}), "Test Motors")
}
