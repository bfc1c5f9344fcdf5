// Package savedb is the read-only query runner over a GearCity save file.
// The save is a single-file SQLite database; it is opened with a mode=ro
// URI so the pipeline can never mutate it, and every statement is checked
// to be a plain SELECT before it reaches the driver.
package savedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// ErrNotSelect flags a statement that is not a read-only SELECT. It is a
// generation defect, not an execution failure: the statement never runs.
var ErrNotSelect = errors.New("savedb: statement is not a read-only SELECT")

// writeVerbs are rejected anywhere in a statement, fenced or not.
var writeVerbs = []string{
	"INSERT", "UPDATE", "DELETE", "DROP", "ALTER", "CREATE",
	"REPLACE", "ATTACH", "DETACH", "PRAGMA", "VACUUM", "REINDEX",
}

// DB is a read-only handle on a save file.
type DB struct {
	db     *sql.DB
	path   string
	logger *zap.Logger
}

// Open opens the save file strictly read-only. A missing file is a fatal
// resource error surfaced immediately.
func Open(path string, logger *zap.Logger) (*DB, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("savedb: save file not found: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?mode=ro&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("savedb: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("savedb: cannot read %s (locked or corrupted?): %w", path, err)
	}

	logger.Debug("save database opened read-only", zap.String("path", path))
	return &DB{db: db, path: path, logger: logger.Named("savedb")}, nil
}

// Path returns the save file path.
func (d *DB) Path() string { return d.path }

// Close releases the underlying connection.
func (d *DB) Close() error { return d.db.Close() }

// CheckReadOnly validates a statement without executing it.
func CheckReadOnly(stmt string) error {
	trimmed := strings.TrimSpace(stmt)
	if trimmed == "" {
		return fmt.Errorf("%w: empty statement", ErrNotSelect)
	}
	upper := strings.ToUpper(trimmed)
	if !strings.HasPrefix(upper, "SELECT") && !strings.HasPrefix(upper, "WITH") {
		return fmt.Errorf("%w: %q", ErrNotSelect, firstLine(trimmed))
	}
	for _, verb := range writeVerbs {
		// Word-boundary scan; "CREATED" in a column name must not trip it.
		for idx := strings.Index(upper, verb); idx >= 0; {
			before := idx == 0 || !isWordByte(upper[idx-1])
			afterIdx := idx + len(verb)
			after := afterIdx >= len(upper) || !isWordByte(upper[afterIdx])
			if before && after {
				return fmt.Errorf("%w: contains %s", ErrNotSelect, verb)
			}
			next := strings.Index(upper[idx+1:], verb)
			if next < 0 {
				break
			}
			idx = idx + 1 + next
		}
	}
	return nil
}

func isWordByte(b byte) bool {
	return b == '_' || (b >= '0' && b <= '9') || (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// Query executes a SELECT and materializes the rows as strings. An empty
// row set is a successful result, not an error; callers distinguish it via
// Result.Empty.
func (d *DB) Query(ctx context.Context, stmt string) (*Result, error) {
	if err := CheckReadOnly(stmt); err != nil {
		return nil, err
	}

	rows, err := d.db.QueryContext(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("savedb: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("savedb: columns: %w", err)
	}

	res := &Result{Columns: cols}
	scan := make([]any, len(cols))
	for i := range scan {
		scan[i] = new(sql.NullString)
	}
	for rows.Next() {
		if err := rows.Scan(scan...); err != nil {
			return nil, fmt.Errorf("savedb: scan: %w", err)
		}
		row := make([]string, len(cols))
		for i, v := range scan {
			ns := v.(*sql.NullString)
			if ns.Valid {
				row[i] = ns.String
			}
		}
		res.Rows = append(res.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("savedb: rows: %w", err)
	}
	return res, nil
}

// CurrentTurn probes the game clock from the GameInfo key-value table.
// GameInfo stores Current_Turn as the month within Current_Year (the game
// advances one turn per month). Both values are zero when the probe fails.
func (d *DB) CurrentTurn(ctx context.Context) (year, month int, err error) {
	get := func(key string) (int, error) {
		var raw string
		row := d.db.QueryRowContext(ctx,
			"SELECT GameInfo_Data FROM GameInfo WHERE GameInfo_Varible = ?", key)
		if err := row.Scan(&raw); err != nil {
			return 0, err
		}
		var n int
		if _, err := fmt.Sscanf(strings.TrimSpace(raw), "%d", &n); err != nil {
			return 0, fmt.Errorf("savedb: %s is not an integer: %q", key, raw)
		}
		return n, nil
	}

	year, err = get("Current_Year")
	if err != nil {
		return 0, 0, fmt.Errorf("savedb: probe Current_Year: %w", err)
	}
	month, err = get("Current_Turn")
	if err != nil {
		return 0, 0, fmt.Errorf("savedb: probe Current_Turn: %w", err)
	}
	return year, month, nil
}
