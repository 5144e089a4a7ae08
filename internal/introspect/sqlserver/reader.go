// Package sqlserver contains the SQL Server schema reader. It queries
// the sys.* catalog views over the github.com/denisenkom/go-mssqldb
// driver and normalizes the results into the core model. The reader
// requires multiple active result sets on its connections; strings
// that do not enable them are rewritten at construction.
package sqlserver

import (
	"context"
	"errors"

	"entgen/internal/core"
	"entgen/internal/introspect"
	"entgen/internal/logging"
	"entgen/internal/pool"

	_ "github.com/denisenkom/go-mssqldb"
)

const defaultSchema = "dbo"

func init() {
	introspect.Register(core.DialectSQLServer, New)
}

type reader struct {
	dsn    string
	schema string
	pool   *pool.Pool
	fks    *introspect.FKCache
	log    *logging.Logger
}

// New constructs a SQL Server reader from the given configuration.
func New(cfg introspect.Config) (introspect.Reader, error) {
	log := cfg.Log()
	dsn := pool.WarnIfMissingMARS(cfg.DSN, log)

	opts := []pool.Option{pool.WithLogger(log)}
	if cfg.MaxConnections > 0 {
		opts = append(opts, pool.WithMaxConnections(cfg.MaxConnections))
	}
	p, err := pool.New("sqlserver", opts...)
	if err != nil {
		return nil, err
	}

	schema := cfg.Schema
	if schema == "" {
		schema = defaultSchema
	}
	return &reader{
		dsn:    dsn,
		schema: schema,
		pool:   p,
		fks:    introspect.NewFKCache(),
		log:    log,
	}, nil
}

// ReadTables enumerates every user table of the schema, details each
// one in parallel batches, and post-processes one-to-one hints. On any
// batch failure the pool is emptied and the error surfaced.
func (r *reader) ReadTables(ctx context.Context) ([]*core.Table, error) {
	tables, err := r.enumerateTables(ctx)
	if err != nil {
		r.pool.Clear()
		return nil, err
	}
	r.log.Infof("Found %d tables in schema %s", len(tables), r.schema)

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

// readBatch details one batch of tables sequentially on a single
// pooled connection. Schema errors are table-local: the table is
// logged and skipped, the batch continues.
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
