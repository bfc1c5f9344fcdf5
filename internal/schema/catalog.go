// Package schema loads the markdown schema map that describes the save
// database and serves it at two granularities: a compact index of every
// table for planning, and full per-table sections for SQL generation.
package schema

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// headerRe matches the per-table section headers in the schema map,
// e.g. "## Table: CompanyList (12 rows)".
var headerRe = regexp.MustCompile(`(?m)^## Table: (\S+) \((\d+) rows\)`)

// columnRe matches column bullet lines within a section,
// e.g. "- FUNDS_ONHAND (REAL)".
var columnRe = regexp.MustCompile(`(?m)^- (\w+) \(`)

// Table is one parsed section of the schema map.
type Table struct {
	Name    string
	Rows    string
	Columns []string
	Section string // full markdown section, header included
}

// Catalog is the parsed schema map. It is safe for concurrent use;
// Reload swaps the parsed state atomically under the lock.
type Catalog struct {
	mu     sync.RWMutex
	path   string
	logger *zap.Logger
	tables map[string]*Table
	order  []string
}

// Load reads and parses the schema map at path. A missing or empty map
// is an error: without it the pipeline cannot ground its SQL.
func Load(path string, logger *zap.Logger) (*Catalog, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Catalog{path: path, logger: logger}
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// Reload re-reads the schema map from disk. On parse failure the
// previous catalog state is kept.
func (c *Catalog) Reload() error {
	raw, err := os.ReadFile(c.path)
	if err != nil {
		return fmt.Errorf("schema: read map: %w", err)
	}
	tables, order, err := parse(string(raw))
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.tables = tables
	c.order = order
	c.mu.Unlock()

	c.logger.Debug("schema map loaded",
		zap.String("path", c.path),
		zap.Int("tables", len(order)))
	return nil
}

func parse(raw string) (map[string]*Table, []string, error) {
	locs := headerRe.FindAllStringSubmatchIndex(raw, -1)
	if len(locs) == 0 {
		return nil, nil, fmt.Errorf("schema: map contains no table sections")
	}

	tables := make(map[string]*Table, len(locs))
	order := make([]string, 0, len(locs))
	for i, loc := range locs {
		end := len(raw)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		section := strings.TrimRight(raw[loc[0]:end], "\n-")
		name := raw[loc[2]:loc[3]]
		t := &Table{
			Name:    name,
			Rows:    raw[loc[4]:loc[5]],
			Section: strings.TrimSpace(section),
		}
		for _, m := range columnRe.FindAllStringSubmatch(section, -1) {
			t.Columns = append(t.Columns, m[1])
		}
		tables[name] = t
		order = append(order, name)
	}
	return tables, order, nil
}

// Tables returns every table name in map order.
func (c *Catalog) Tables() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Has reports whether the map has a section for the named table.
func (c *Catalog) Has(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.tables[name]
	return ok
}

// Index renders the compact one-line-per-table view used by the
// planner, so it can pick tables without seeing full column details.
func (c *Catalog) Index() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var b strings.Builder
	b.WriteString("Available tables:\n")
	for _, name := range c.order {
		t := c.tables[name]
		fmt.Fprintf(&b, "- %s (%s rows)", t.Name, t.Rows)
		if len(t.Columns) > 0 {
			b.WriteString(": ")
			b.WriteString(strings.Join(t.Columns, ", "))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Extract returns the full sections for the named tables, in the order
// given. Unknown tables produce an inline note rather than an error so
// one bad table pick does not sink the whole schema context.
func (c *Catalog) Extract(names []string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var parts []string
	for _, name := range names {
		if t, ok := c.tables[name]; ok {
			parts = append(parts, t.Section)
		} else {
			parts = append(parts, fmt.Sprintf("(no schema entry for %s)", name))
		}
	}
	return strings.Join(parts, "\n\n")
}
