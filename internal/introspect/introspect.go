// Package introspect contains the reader interface that turns a live
// database connection into the normalized schema model, the registry
// that dialect packages plug into, and the provider-name factory that
// selects between them.
package introspect

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"entgen/internal/core"
	"entgen/internal/logging"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// Reader reads every user table of the target schema, normalized into
// the core model.
type Reader interface {
	ReadTables(ctx context.Context) ([]*core.Table, error)
}

// Config carries everything a dialect reader needs at construction.
type Config struct {
	// DSN is the driver connection string.
	DSN string
	// Schema restricts introspection to one schema. Empty selects the
	// dialect default (dbo, the current database, or public).
	Schema string
	// MaxConnections bounds the reader's connection pool. Zero selects
	// the pool default.
	MaxConnections int
	// Logger receives progress and warnings. Nil discards them.
	Logger *logging.Logger
}

func (c Config) Log() *logging.Logger {
	if c.Logger == nil {
		return logging.NewNop()
	}
	return c.Logger
}

var (
	registry = make(map[core.Dialect]func(cfg Config) (Reader, error))
	mu       sync.RWMutex
)

// Register installs a reader constructor for a dialect. Called from
// dialect package init functions.
func Register(dialect core.Dialect, fn func(cfg Config) (Reader, error)) {
	mu.Lock()
	defer mu.Unlock()
	registry[dialect] = fn
}

// New constructs the registered reader for a dialect.
func New(dialect core.Dialect, cfg Config) (Reader, error) {
	mu.RLock()
	fn, ok := registry[dialect]
	mu.RUnlock()

	if !ok {
		return nil, &core.ConfigError{Msg: fmt.Sprintf("no reader registered for dialect %q", dialect)}
	}
	return fn(cfg)
}

// providerDialects maps ADO.NET-style provider names onto dialects.
// Matching is case-insensitive.
var providerDialects = map[string]core.Dialect{
	"microsoft.data.sqlclient": core.DialectSQLServer,
	"mysql.data.mysqlclient":   core.DialectMySQL,
	"npgsql":                   core.DialectPostgreSQL,
}

// ProviderDialect resolves a provider name to its dialect. Unknown
// providers fail with an error naming the offending token; when a
// known provider is close by edit distance, the error suggests it.
func ProviderDialect(provider string) (core.Dialect, error) {
	d, ok := providerDialects[strings.ToLower(strings.TrimSpace(provider))]
	if !ok {
		msg := fmt.Sprintf("unsupported provider %q", provider)
		if s := closestProvider(provider); s != "" {
			msg += fmt.Sprintf(" (did you mean %q?)", s)
		}
		return "", &core.ConfigError{Msg: msg}
	}
	return d, nil
}

// NewReader resolves the provider name and constructs the matching
// dialect reader.
func NewReader(provider string, cfg Config) (Reader, error) {
	dialect, err := ProviderDialect(provider)
	if err != nil {
		return nil, err
	}
	return New(dialect, cfg)
}

// closestProvider returns the known provider within a small edit
// distance of the given token, or "".
func closestProvider(provider string) string {
	lower := strings.ToLower(strings.TrimSpace(provider))
	best := ""
	bestDist := 8
	for known := range providerDialects {
		dist := levenshtein.DistanceForStrings([]rune(lower), []rune(known), levenshtein.DefaultOptions)
		if dist < bestDist {
			best, bestDist = known, dist
		}
	}
	return best
}
