// Package mysql contains the MySQL schema reader. It queries
// information_schema over the github.com/go-sql-driver/mysql driver
// and normalizes the results into the core model. The target schema
// defaults to the connection's current database.
package mysql

import (
	"context"
	"errors"

	"entgen/internal/core"
	"entgen/internal/introspect"
	"entgen/internal/logging"
	"entgen/internal/pool"

	_ "github.com/go-sql-driver/mysql"
)

func init() {
	introspect.Register(core.DialectMySQL, New)
}

type reader struct {
	dsn    string
	schema string
	pool   *pool.Pool
	fks    *introspect.FKCache
	log    *logging.Logger
}

// New constructs a MySQL reader from the given configuration.
func New(cfg introspect.Config) (introspect.Reader, error) {
	opts := []pool.Option{pool.WithLogger(cfg.Log())}
	if cfg.MaxConnections > 0 {
		opts = append(opts, pool.WithMaxConnections(cfg.MaxConnections))
	}
	p, err := pool.New("mysql", opts...)
	if err != nil {
		return nil, err
	}
	return &reader{
		dsn:    cfg.DSN,
		schema: cfg.Schema,
		pool:   p,
		fks:    introspect.NewFKCache(),
		log:    cfg.Log(),
	}, nil
}

// schemaExpr returns the SQL expression selecting the target schema:
// the configured name, or DATABASE() for the connection's current
// database.
func (r *reader) schemaExpr() (string, []any) {
	if r.schema != "" {
		return "?", []any{r.schema}
	}
	return "DATABASE()", nil
}

// ReadTables enumerates every base table of the target schema, details
// each one in parallel batches, and post-processes one-to-one hints.
func (r *reader) ReadTables(ctx context.Context) ([]*core.Table, error) {
	tables, err := r.enumerateTables(ctx)
	if err != nil {
		r.pool.Clear()
		return nil, err
	}
	r.log.Infof("Found %d tables", len(tables))

	err = introspect.InBatches(ctx, tables, r.readBatch)
	if err != nil {
		r.pool.Clear()
		return nil, err
	}

	tables = introspect.DropSkipped(tables)
	introspect.MarkOneToOneHints(tables)

	stats := r.pool.Statistics()
	r.log.Infof("Introspection complete: %d tables, pool total=%d available=%d max=%d",
		len(tables), stats.Total, stats.Available, stats.Max)
	return tables, nil
}

func (r *reader) readBatch(ctx context.Context, batch []*core.Table) error {
	conn, err := r.pool.Acquire(ctx, r.dsn)
	if err != nil {
		return err
	}
	defer r.pool.Release(conn)

	for _, t := range batch {
		if err := r.readTable(ctx, conn, t); err != nil {
			var schemaErr *core.SchemaError
			if errors.As(err, &schemaErr) {
				r.log.Exception("Skipping table "+t.QualifiedName(), err)
				t.MarkSkipped()
				continue
			}
			return err
		}
	}
	return nil
}

func (r *reader) readTable(ctx context.Context, conn *pool.Conn, t *core.Table) error {
	if err := r.readColumns(ctx, conn, t); err != nil {
		return err
	}
	if err := r.readIndexes(ctx, conn, t); err != nil {
		return err
	}
	return r.readForeignKeys(ctx, conn, t)
}
