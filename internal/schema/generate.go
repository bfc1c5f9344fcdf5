package schema

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	_ "github.com/mattn/go-sqlite3"
)

const sampleRows = 3

// Generate rebuilds the schema map markdown from a save database and
// writes it to outPath. It opens its own read-only connection because
// the introspection PRAGMAs are not plain SELECTs.
func Generate(ctx context.Context, dbPath, outPath string, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if _, err := os.Stat(dbPath); err != nil {
		return fmt.Errorf("schema: save file not found: %w", err)
	}

	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=ro&_busy_timeout=5000", dbPath))
	if err != nil {
		return fmt.Errorf("schema: open save: %w", err)
	}
	defer db.Close()

	names, err := tableNames(ctx, db)
	if err != nil {
		return err
	}

	var b strings.Builder
	b.WriteString("# Database Schema Map\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", time.Now().Format("2006-01-02 15:04:05"))
	for _, name := range names {
		if err := describeTable(ctx, db, name, &b); err != nil {
			return err
		}
	}

	if err := os.WriteFile(outPath, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("schema: write map: %w", err)
	}
	logger.Info("schema map generated",
		zap.String("out", outPath),
		zap.Int("tables", len(names)))
	return nil
}

func tableNames(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("schema: list tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

func describeTable(ctx context.Context, db *sql.DB, name string, b *strings.Builder) error {
	var count int
	if err := db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %q", name)).Scan(&count); err != nil {
		return fmt.Errorf("schema: count %s: %w", name, err)
	}
	fmt.Fprintf(b, "## Table: %s (%d rows)\n\n", name, count)

	cols, err := columnInfo(ctx, db, name)
	if err != nil {
		return err
	}
	b.WriteString("Columns:\n")
	for _, c := range cols {
		fmt.Fprintf(b, "- %s (%s", c.name, c.typ)
		if c.pk {
			b.WriteString(", PK")
		}
		b.WriteString(")\n")
	}
	b.WriteByte('\n')

	if fks, err := foreignKeys(ctx, db, name); err != nil {
		return err
	} else if len(fks) > 0 {
		b.WriteString("Foreign keys:\n")
		for _, fk := range fks {
			fmt.Fprintf(b, "- %s\n", fk)
		}
		b.WriteByte('\n')
	}

	if count > 0 {
		if err := writeSamples(ctx, db, name, b); err != nil {
			return err
		}
	}
	b.WriteString("---\n\n")
	return nil
}

type column struct {
	name string
	typ  string
	pk   bool
}

func columnInfo(ctx context.Context, db *sql.DB, table string) ([]column, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%q)", table))
	if err != nil {
		return nil, fmt.Errorf("schema: table_info %s: %w", table, err)
	}
	defer rows.Close()

	var cols []column
	for rows.Next() {
		var (
			cid, notnull, pk int
			name, typ        string
			dflt             sql.NullString
		)
		if err := rows.Scan(&cid, &name, &typ, &notnull, &dflt, &pk); err != nil {
			return nil, err
		}
		if typ == "" {
			typ = "ANY"
		}
		cols = append(cols, column{name: name, typ: typ, pk: pk > 0})
	}
	return cols, rows.Err()
}

func foreignKeys(ctx context.Context, db *sql.DB, table string) ([]string, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA foreign_key_list(%q)", table))
	if err != nil {
		return nil, fmt.Errorf("schema: foreign_key_list %s: %w", table, err)
	}
	defer rows.Close()

	var fks []string
	for rows.Next() {
		var (
			id, seq                   int
			refTable, from, to        string
			onUpdate, onDelete, match string
		)
		if err := rows.Scan(&id, &seq, &refTable, &from, &to, &onUpdate, &onDelete, &match); err != nil {
			return nil, err
		}
		fks = append(fks, fmt.Sprintf("%s -> %s.%s", from, refTable, to))
	}
	return fks, rows.Err()
}

func writeSamples(ctx context.Context, db *sql.DB, table string, b *strings.Builder) error {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("SELECT * FROM %q LIMIT %d", table, sampleRows))
	if err != nil {
		return fmt.Errorf("schema: sample %s: %w", table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return err
	}
	b.WriteString("Sample rows:\n")
	b.WriteString("| " + strings.Join(cols, " | ") + " |\n")
	sep := make([]string, len(cols))
	for i := range sep {
		sep[i] = "---"
	}
	b.WriteString("| " + strings.Join(sep, " | ") + " |\n")

	vals := make([]sql.NullString, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return err
		}
		cells := make([]string, len(cols))
		for i, v := range vals {
			if v.Valid {
				cells[i] = strings.ReplaceAll(v.String, "|", `\|`)
			} else {
				cells[i] = "NULL"
			}
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	b.WriteByte('\n')
	return rows.Err()
}
