package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripReasoning(t *testing.T) {
	assert.Equal(t, "answer",
		StripReasoning("<think>long chain of thought</think>answer"))
	assert.Equal(t, "before",
		StripReasoning("before<think>never closed"))
	assert.Equal(t, "plain", StripReasoning("plain"))
}

func TestCleanSQLFenced(t *testing.T) {
	in := "Here is the query:\n```sql\nSELECT * FROM CompanyList;\n```\nHope that helps!"
	assert.Equal(t, "SELECT * FROM CompanyList", CleanSQL(in))
}

func TestCleanSQLThinkAndChatter(t *testing.T) {
	in := "<think>which table holds funds?</think>Sure! SELECT FUNDS_ONHAND FROM CompanyList WHERE ID = 3"
	assert.Equal(t, "SELECT FUNDS_ONHAND FROM CompanyList WHERE ID = 3", CleanSQL(in))
}

func TestCleanSQLFirstStatementOnly(t *testing.T) {
	in := "SELECT 1; SELECT 2;"
	assert.Equal(t, "SELECT 1", CleanSQL(in))
}

func TestCleanSQLPrefersEarlierWith(t *testing.T) {
	in := "WITH t AS (SELECT 1 AS n) SELECT n FROM t"
	assert.Equal(t, in, CleanSQL(in))
}

func TestCleanSQLBareFence(t *testing.T) {
	in := "```\nSELECT COUNT(*) FROM CarInfo\n```"
	assert.Equal(t, "SELECT COUNT(*) FROM CarInfo", CleanSQL(in))
}
