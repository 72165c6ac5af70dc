package source

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/syssam/denorm"
)

// Dialect names accepted by LoadSQL. They match the database/sql driver
// names registered by modernc.org/sqlite, lib/pq and go-sql-driver/mysql.
const (
	SQLite   = "sqlite"
	Postgres = "postgres"
	MySQL    = "mysql"
)

// tableNameRe matches the table names LoadSQL interpolates into SELECT
// statements. Dots separate a schema from a table; quoteIdent rejects
// empty parts and quotes each one for the dialect.
var tableNameRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_.]*$`)

const maxTableNameLen = 128

func validTableName(s string) bool {
	return len(s) <= maxTableNameLen && tableNameRe.MatchString(s)
}

// quoteIdent quotes a possibly schema-qualified identifier for dialect.
func quoteIdent(dialect, s string) (string, error) {
	if !validTableName(s) {
		return "", fmt.Errorf("invalid identifier %q", s)
	}
	q := `"`
	if dialect == MySQL {
		q = "`"
	}
	parts := strings.Split(s, ".")
	for i, p := range parts {
		if p == "" {
			return "", fmt.Errorf("invalid identifier %q", s)
		}
		parts[i] = q + p + q
	}
	return strings.Join(parts, "."), nil
}

// SQLOption configures LoadSQL.
type SQLOption func(*sqlConfig)

type sqlConfig struct {
	json    map[string]bool
	uuid    map[string]bool
	workers int
}

// WithJSONColumns decodes the named text columns as JSON. A name is either
// a bare column name, matching in every table, or "table.column".
func WithJSONColumns(cols ...string) SQLOption {
	return func(c *sqlConfig) {
		for _, col := range cols {
			c.json[col] = true
		}
	}
}

// WithUUIDColumns renders the named columns in canonical uuid form. Names
// follow the rules of WithJSONColumns.
func WithUUIDColumns(cols ...string) SQLOption {
	return func(c *sqlConfig) {
		for _, col := range cols {
			c.uuid[col] = true
		}
	}
}

// WithConcurrency limits the number of tables read at once. Zero or a
// negative value means no limit.
func WithConcurrency(n int) SQLOption {
	return func(c *sqlConfig) {
		c.workers = n
	}
}

func (c *sqlConfig) match(set map[string]bool, table, col string) bool {
	return set[col] || set[table+"."+col]
}

// LoadSQL reads each table into a collection of the same name. Tables are
// queried concurrently; the first failure cancels the rest.
func LoadSQL(ctx context.Context, db *sql.DB, dialect string, tables []string, opts ...SQLOption) (denorm.Graph, error) {
	switch dialect {
	case SQLite, Postgres, MySQL:
	default:
		return nil, denorm.NewConfigError("Dialect", dialect, "unsupported dialect; use sqlite, postgres or mysql")
	}
	cfg := &sqlConfig{json: map[string]bool{}, uuid: map[string]bool{}}
	for _, opt := range opts {
		opt(cfg)
	}
	queries := make([]string, len(tables))
	for i, t := range tables {
		ident, err := quoteIdent(dialect, t)
		if err != nil {
			return nil, err
		}
		queries[i] = "SELECT * FROM " + ident
	}

	results := make([][]any, len(tables))
	eg, ctx := errgroup.WithContext(ctx)
	if cfg.workers > 0 {
		eg.SetLimit(cfg.workers)
	}
	for i, t := range tables {
		eg.Go(func() error {
			rows, err := loadTable(ctx, db, queries[i], t, cfg)
			if err != nil {
				return denorm.NewSourceError(t, "query", err)
			}
			results[i] = rows
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	g := make(denorm.Graph, len(tables))
	for i, t := range tables {
		g[t] = results[i]
	}
	return g, nil
}

func loadTable(ctx context.Context, db *sql.DB, query, table string, cfg *sqlConfig) ([]any, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	entities := []any{}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		e := make(map[string]any, len(cols))
		for i, col := range cols {
			v, err := cfg.convert(table, col, values[i])
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", col, err)
			}
			e[col] = v
		}
		entities = append(entities, e)
	}
	return entities, rows.Err()
}

func (c *sqlConfig) convert(table, col string, v any) (any, error) {
	switch {
	case v == nil:
		return nil, nil
	case c.match(c.uuid, table, col):
		switch b := v.(type) {
		case []byte:
			if len(b) == 16 {
				id, err := uuid.FromBytes(b)
				if err != nil {
					return nil, err
				}
				return id.String(), nil
			}
			return parseUUID(string(b))
		case string:
			return parseUUID(b)
		}
		return v, nil
	case c.match(c.json, table, col):
		var text []byte
		switch b := v.(type) {
		case []byte:
			text = b
		case string:
			text = []byte(b)
		default:
			return v, nil
		}
		var out any
		if err := json.Unmarshal(text, &out); err != nil {
			return nil, err
		}
		return out, nil
	}
	if b, ok := v.([]byte); ok {
		return string(b), nil
	}
	return v, nil
}

func parseUUID(s string) (any, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, err
	}
	return id.String(), nil
}
