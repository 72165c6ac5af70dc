// Package source loads graphs from files and databases and writes
// populated results back out.
//
// Files may be JSON, YAML or MessagePack; the format is picked from the
// file extension. A SQL database is read one table per collection, one
// entity per row:
//
//	g, err := source.LoadFile("graph.yaml")
//	g, err := source.LoadSQL(ctx, db, source.Postgres, []string{"people", "stories"})
//
// Watch reloads a graph file whenever it changes.
package source
