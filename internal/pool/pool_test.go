package pool

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"sync/atomic"
	"testing"

	"entgen/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDriver backs the pool tests with an in-memory connection.
type fakeDriver struct{}

func (fakeDriver) Open(string) (driver.Conn, error) { return fakeConn{}, nil }

type fakeConnector struct {
	err error
}

func (c fakeConnector) Connect(context.Context) (driver.Conn, error) {
	if c.err != nil {
		return nil, c.err
	}
	return fakeConn{}, nil
}

func (fakeConnector) Driver() driver.Driver { return fakeDriver{} }

type fakeConn struct{}

func (fakeConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("not implemented") }
func (fakeConn) Close() error                        { return nil }
func (fakeConn) Begin() (driver.Tx, error)           { return nil, errors.New("not implemented") }

// newTestPool builds a pool whose opener counts invocations and can be
// forced to fail.
func newTestPool(t *testing.T, max int, openErr error) (*Pool, *atomic.Int32) {
	t.Helper()
	var opens atomic.Int32
	p, err := New("fake",
		WithMaxConnections(max),
		withOpener(func(dsn string) (*sql.DB, error) {
			opens.Add(1)
			if openErr != nil {
				return nil, openErr
			}
			return sql.OpenDB(fakeConnector{}), nil
		}),
	)
	require.NoError(t, err)
	return p, &opens
}

func TestNewRejectsNonPositiveMax(t *testing.T) {
	_, err := New("fake", WithMaxConnections(0))
	var cfgErr *core.ConfigError
	assert.ErrorAs(t, err, &cfgErr)

	_, err = New("fake", WithMaxConnections(-3))
	assert.Error(t, err)
}

func TestAcquireReleaseReuse(t *testing.T) {
	p, opens := newTestPool(t, 1, nil)
	ctx := context.Background()

	conn, err := p.Acquire(ctx, "dsn-a")
	require.NoError(t, err)
	require.NotNil(t, conn.DB())
	assert.Equal(t, "dsn-a", conn.DSN())

	// Ceiling of one: a second acquire before release must fail.
	_, err = p.Acquire(ctx, "dsn-a")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExhausted)
	var connErr *core.ConnectivityError
	assert.ErrorAs(t, err, &connErr)

	p.Release(conn)

	again, err := p.Acquire(ctx, "dsn-a")
	require.NoError(t, err)
	assert.Same(t, conn, again, "released connection must be reused")
	assert.EqualValues(t, 1, opens.Load(), "reuse must not reopen")
}

func TestAcquireOpenFailureDecrementsTotal(t *testing.T) {
	p, _ := newTestPool(t, 2, errors.New("connection refused"))
	ctx := context.Background()

	_, err := p.Acquire(ctx, "dsn-a")
	require.Error(t, err)
	var connErr *core.ConnectivityError
	assert.ErrorAs(t, err, &connErr)

	stats := p.Statistics()
	assert.Zero(t, stats.Total, "failed open must not leak a slot")
}

func TestAcquireSeparateQueuesShareCeiling(t *testing.T) {
	p, _ := newTestPool(t, 2, nil)
	ctx := context.Background()

	a, err := p.Acquire(ctx, "dsn-a")
	require.NoError(t, err)
	b, err := p.Acquire(ctx, "dsn-b")
	require.NoError(t, err)

	_, err = p.Acquire(ctx, "dsn-c")
	assert.ErrorIs(t, err, ErrExhausted)

	p.Release(a)
	p.Release(b)
}

func TestStatistics(t *testing.T) {
	p, _ := newTestPool(t, 5, nil)
	ctx := context.Background()

	conn, err := p.Acquire(ctx, "dsn-a")
	require.NoError(t, err)

	stats := p.Statistics()
	assert.Equal(t, Statistics{Total: 1, Available: 0, Max: 5}, stats)

	p.Release(conn)
	stats = p.Statistics()
	assert.Equal(t, Statistics{Total: 1, Available: 1, Max: 5}, stats)
}

func TestClear(t *testing.T) {
	p, _ := newTestPool(t, 5, nil)
	ctx := context.Background()

	a, err := p.Acquire(ctx, "dsn-a")
	require.NoError(t, err)
	b, err := p.Acquire(ctx, "dsn-b")
	require.NoError(t, err)
	p.Release(a)
	p.Release(b)

	p.Clear()
	stats := p.Statistics()
	assert.Zero(t, stats.Total)
	assert.Zero(t, stats.Available)
}

func TestDiscard(t *testing.T) {
	p, opens := newTestPool(t, 1, nil)
	ctx := context.Background()

	conn, err := p.Acquire(ctx, "dsn-a")
	require.NoError(t, err)
	p.Discard(conn)

	assert.Zero(t, p.Statistics().Total)

	// The slot is free again; a fresh connection is opened.
	_, err = p.Acquire(ctx, "dsn-a")
	require.NoError(t, err)
	assert.EqualValues(t, 2, opens.Load())
}
