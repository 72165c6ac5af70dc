package main

import (
	"context"
	"database/sql"
	"errors"

	"github.com/spf13/cobra"

	"github.com/syssam/denorm"
	"github.com/syssam/denorm/internal/config"
	"github.com/syssam/denorm/source"
)

// sourceFlags are the flags shared by every command that reads a graph.
type sourceFlags struct {
	graph       string
	driver      string
	dsn         string
	tables      []string
	jsonColumns []string
	uuidColumns []string
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.graph, "graph", "", "graph file (.json, .yaml, .msgpack)")
	fs.StringVar(&f.driver, "driver", "", "database driver: sqlite, postgres or mysql")
	fs.StringVar(&f.dsn, "dsn", "", "database connection string")
	fs.StringSliceVar(&f.tables, "table", nil, "table to load as a collection (repeatable)")
	fs.StringSliceVar(&f.jsonColumns, "json-column", nil, "column holding JSON text, as column or table.column")
	fs.StringSliceVar(&f.uuidColumns, "uuid-column", nil, "column holding binary uuids, as column or table.column")
}

// apply copies the flags the user set over the loaded configuration.
func (f *sourceFlags) apply(cmd *cobra.Command, c *config.SourceConfig) {
	fs := cmd.Flags()
	if fs.Changed("graph") {
		c.Graph = f.graph
		c.Driver = ""
	}
	if fs.Changed("driver") {
		c.Driver = f.driver
		c.Graph = ""
	}
	if fs.Changed("dsn") {
		c.DSN = f.dsn
	}
	if fs.Changed("table") {
		c.Tables = f.tables
	}
	if fs.Changed("json-column") {
		c.JSONColumns = f.jsonColumns
	}
	if fs.Changed("uuid-column") {
		c.UUIDColumns = f.uuidColumns
	}
}

var errNoSource = errors.New("no graph source: set --graph or --driver")

// loadGraph reads the graph described by c.
func loadGraph(ctx context.Context, c config.SourceConfig) (denorm.Graph, error) {
	switch {
	case c.Graph != "":
		return source.LoadFile(c.Graph)
	case c.Driver != "":
		db, err := sql.Open(c.Driver, c.DSN)
		if err != nil {
			return nil, denorm.NewSourceError(c.Driver, "open", err)
		}
		defer func() { _ = db.Close() }()
		return source.LoadSQL(ctx, db, c.Driver, c.Tables,
			source.WithJSONColumns(c.JSONColumns...),
			source.WithUUIDColumns(c.UUIDColumns...),
			source.WithConcurrency(c.Concurrency),
		)
	default:
		return nil, errNoSource
	}
}
