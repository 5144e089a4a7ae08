// Package pool provides bounded, thread-safe reuse of open database
// connections. Connections are queued per connection string (FIFO) with
// a ceiling on the total count across all queues. Introspection batches
// each acquire one connection, run their catalog queries sequentially
// on it, and release it back when done.
package pool

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"entgen/internal/core"
	"entgen/internal/logging"
)

// DefaultMaxConnections is the total ceiling used when none is
// configured.
const DefaultMaxConnections = 10

// ErrExhausted is returned by Acquire when every connection is in use
// and the total ceiling has been reached.
var ErrExhausted = errors.New("connection pool exhausted")

// Conn is one pooled connection. Each Conn owns an independent driver
// handle limited to a single underlying connection, so sequential
// statements on it share one session.
type Conn struct {
	dsn    string
	db     *sql.DB
	opened bool
}

// DB returns the database handle for issuing queries.
func (c *Conn) DB() *sql.DB { return c.db }

// DSN returns the connection string the Conn belongs to.
func (c *Conn) DSN() string { return c.dsn }

// Pool is the bounded connection pool. State mutation happens under a
// single mutex; network I/O (open, ping, close) happens outside it.
type Pool struct {
	driver string
	open   func(dsn string) (*sql.DB, error)
	log    *logging.Logger

	mu    sync.Mutex
	max   int
	total int
	idle  map[string][]*Conn
}

// Option configures a Pool.
type Option func(*Pool)

// WithMaxConnections sets the total connection ceiling.
func WithMaxConnections(max int) Option {
	return func(p *Pool) { p.max = max }
}

// WithLogger sets the log sink.
func WithLogger(log *logging.Logger) Option {
	return func(p *Pool) { p.log = log }
}

// withOpener replaces the driver opener. Test hook.
func withOpener(open func(dsn string) (*sql.DB, error)) Option {
	return func(p *Pool) { p.open = open }
}

// New creates a pool for the given database/sql driver name. A ceiling
// of zero or less is rejected.
func New(driver string, opts ...Option) (*Pool, error) {
	p := &Pool{
		driver: driver,
		max:    DefaultMaxConnections,
		log:    logging.NewNop(),
		idle:   make(map[string][]*Conn),
	}
	p.open = func(dsn string) (*sql.DB, error) {
		db, err := sql.Open(p.driver, dsn)
		if err != nil {
			return nil, err
		}
		// One pooled Conn is one logical connection.
		db.SetMaxOpenConns(1)
		return db, nil
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.max <= 0 {
		return nil, &core.ConfigError{Msg: fmt.Sprintf("max connections must be positive, got %d", p.max)}
	}
	return p, nil
}

// Acquire returns a connection for the given connection string, ready
// for use. A queued connection is reused when available; otherwise a
// new one is created unless the total ceiling has been reached.
func (p *Pool) Acquire(ctx context.Context, dsn string) (*Conn, error) {
	p.mu.Lock()
	var conn *Conn
	created := false
	if q := p.idle[dsn]; len(q) > 0 {
		conn = q[0]
		p.idle[dsn] = q[1:]
	} else if p.total < p.max {
		conn = &Conn{dsn: dsn}
		p.total++
		created = true
	} else {
		p.mu.Unlock()
		return nil, &core.ConnectivityError{Err: ErrExhausted}
	}
	p.mu.Unlock()

	if err := p.ensureOpen(ctx, conn); err != nil {
		if created {
			p.mu.Lock()
			p.total--
			p.mu.Unlock()
		}
		return nil, &core.ConnectivityError{Err: fmt.Errorf("failed to open connection: %w", err)}
	}
	return conn, nil
}

// ensureOpen opens and verifies the underlying connection if it has
// not been opened yet. Runs outside the pool mutex.
func (p *Pool) ensureOpen(ctx context.Context, conn *Conn) error {
	if conn.opened {
		return nil
	}
	db, err := p.open(conn.dsn)
	if err != nil {
		return err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}
	conn.db = db
	conn.opened = true
	return nil
}

// Release returns a connection to its queue, keeping it alive for
// reuse. When the queue has no room the connection is disposed and the
// total decremented; disposal errors are swallowed.
func (p *Pool) Release(conn *Conn) {
	if conn == nil {
		return
	}
	p.mu.Lock()
	if len(p.idle[conn.dsn]) < p.max {
		p.idle[conn.dsn] = append(p.idle[conn.dsn], conn)
		p.mu.Unlock()
		return
	}
	p.total--
	p.mu.Unlock()

	p.dispose(conn)
}

// Discard disposes a connection without requeueing it, for callers
// that hit an error mid-use and do not want the session reused.
func (p *Pool) Discard(conn *Conn) {
	if conn == nil {
		return
	}
	p.mu.Lock()
	p.total--
	p.mu.Unlock()

	p.dispose(conn)
}

func (p *Pool) dispose(conn *Conn) {
	if conn.db == nil {
		return
	}
	if err := conn.db.Close(); err != nil {
		p.log.Warnf("Failed to close pooled connection: %v", err)
	}
	conn.db = nil
	conn.opened = false
}

// Clear drains and disposes every queued connection and resets the
// total count.
func (p *Pool) Clear() {
	p.mu.Lock()
	drained := make([]*Conn, 0, p.total)
	for dsn, q := range p.idle {
		drained = append(drained, q...)
		delete(p.idle, dsn)
	}
	p.total = 0
	p.mu.Unlock()

	for _, conn := range drained {
		p.dispose(conn)
	}
}

// Statistics is a point-in-time snapshot of the pool.
type Statistics struct {
	Total     int
	Available int
	Max       int
}

// Statistics returns a snapshot of the pool counters.
func (p *Pool) Statistics() Statistics {
	p.mu.Lock()
	defer p.mu.Unlock()
	available := 0
	for _, q := range p.idle {
		available += len(q)
	}
	return Statistics{Total: p.total, Available: available, Max: p.max}
}
