package logging

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lineRe is the contract for every emitted line:
// "YYYY-MM-DD HH:MM:SS [LEVEL] message".
var lineRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2} \[(INFO|WARNING|ERROR)\] .+$`)

func TestLogFileFormat(t *testing.T) {
	dir := t.TempDir()
	log, closeLog, err := New(dir)
	require.NoError(t, err)

	log.Infof("reading %d tables", 3)
	log.Warnf("connection string rewritten")
	log.Errorf("batch failed")
	log.Exception("introspection aborted", os.ErrClosed)
	closeLog()

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	require.NoError(t, err)

	lines := splitLines(string(data))
	require.Len(t, lines, 4)
	for _, line := range lines {
		assert.Regexp(t, lineRe, line)
	}

	assert.Contains(t, lines[0], "[INFO] reading 3 tables")
	assert.Contains(t, lines[1], "[WARNING] connection string rewritten")
	assert.Contains(t, lines[2], "[ERROR] batch failed")
	assert.Contains(t, lines[3], "EXCEPTION: "+os.ErrClosed.Error())
}

func TestExceptionWithoutCause(t *testing.T) {
	dir := t.TempDir()
	log, closeLog, err := New(dir)
	require.NoError(t, err)

	log.Exception("failed", nil)
	closeLog()

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "EXCEPTION:")
}

func TestNewNopDiscards(t *testing.T) {
	log := NewNop()
	log.Infof("dropped")
	log.Exception("dropped", os.ErrClosed)
}

func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
