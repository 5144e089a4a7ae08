package pool

import (
	"net/url"
	"strings"

	"entgen/internal/logging"
)

const marsKey = "MultipleActiveResultSets"

// EnsureMARS returns the connection string with multiple active result
// sets enabled, and reports whether it had to be rewritten. Both
// URL-style (sqlserver://...) and ADO-style (key=value;...) strings
// are handled.
func EnsureMARS(dsn string) (string, bool) {
	if strings.Contains(dsn, "://") {
		return ensureMARSURL(dsn)
	}
	return ensureMARSKeyValue(dsn)
}

func ensureMARSURL(dsn string) (string, bool) {
	u, err := url.Parse(dsn)
	if err != nil {
		return dsn, false
	}
	q := u.Query()
	for key, vals := range q {
		if strings.EqualFold(key, marsKey) {
			if len(vals) > 0 && strings.EqualFold(vals[0], "true") {
				return dsn, false
			}
			q.Del(key)
		}
	}
	q.Set(marsKey, "true")
	u.RawQuery = q.Encode()
	return u.String(), true
}

func ensureMARSKeyValue(dsn string) (string, bool) {
	parts := strings.Split(dsn, ";")
	out := make([]string, 0, len(parts)+1)
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		key, val, found := strings.Cut(trimmed, "=")
		if found && strings.EqualFold(strings.TrimSpace(key), marsKey) {
			if strings.EqualFold(strings.TrimSpace(val), "true") {
				return dsn, false
			}
			continue
		}
		out = append(out, trimmed)
	}
	out = append(out, marsKey+"=true")
	return strings.Join(out, ";"), true
}

// WarnIfMissingMARS applies EnsureMARS and logs when a rewrite was
// needed. Returns the usable connection string.
func WarnIfMissingMARS(dsn string, log *logging.Logger) string {
	fixed, rewritten := EnsureMARS(dsn)
	if rewritten {
		log.Warnf("Connection string does not enable %s; enabling it (required for concurrent catalog reads)", marsKey)
	}
	return fixed
}
