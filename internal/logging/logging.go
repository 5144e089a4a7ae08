// Package logging provides the process log sink: a single CodeGen.log
// file in the working directory, duplicated to standard output. Lines
// are formatted as "YYYY-MM-DD HH:MM:SS [LEVEL] message". The logger is
// injected at construction wherever it is needed, never used as
// ambient state.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// FileName is the log file created in the working directory.
const FileName = "CodeGen.log"

// Logger wraps the zap sink with the small surface the generator uses.
type Logger struct {
	z *zap.Logger
}

// New opens (or creates) CodeGen.log under dir and returns a logger
// that tees every line to the file and to stdout. The returned close
// function flushes buffered entries.
func New(dir string) (*Logger, func(), error) {
	path := filepath.Join(dir, FileName)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	enc := newEncoder()
	tee := zapcore.NewTee(
		zapcore.NewCore(enc, zapcore.AddSync(f), zapcore.InfoLevel),
		zapcore.NewCore(newEncoder(), zapcore.AddSync(os.Stdout), zapcore.InfoLevel),
	)
	z := zap.New(tee)

	closer := func() {
		_ = z.Sync()
		_ = f.Close()
	}
	return &Logger{z: z}, closer, nil
}

// NewNop returns a logger that discards everything. Used in tests and
// as the default when a component is constructed without a sink.
func NewNop() *Logger {
	return &Logger{z: zap.NewNop()}
}

// newEncoder builds the console encoder producing the
// "YYYY-MM-DD HH:MM:SS [LEVEL] message" line format.
func newEncoder() zapcore.Encoder {
	cfg := zapcore.EncoderConfig{
		TimeKey:          "ts",
		LevelKey:         "level",
		MessageKey:       "msg",
		LineEnding:       zapcore.DefaultLineEnding,
		ConsoleSeparator: " ",
		EncodeTime:       zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05"),
		EncodeLevel:      bracketLevelEncoder,
	}
	return zapcore.NewConsoleEncoder(cfg)
}

// bracketLevelEncoder renders INFO, WARNING and ERROR in brackets.
// Zap's warn level is spelled WARNING in this log format.
func bracketLevelEncoder(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	switch l {
	case zapcore.WarnLevel:
		enc.AppendString("[WARNING]")
	case zapcore.ErrorLevel, zapcore.DPanicLevel, zapcore.PanicLevel, zapcore.FatalLevel:
		enc.AppendString("[ERROR]")
	default:
		enc.AppendString("[INFO]")
	}
}

// Infof logs an informational line.
func (l *Logger) Infof(format string, args ...any) {
	l.z.Info(fmt.Sprintf(format, args...))
}

// Warnf logs a warning line.
func (l *Logger) Warnf(format string, args ...any) {
	l.z.Warn(fmt.Sprintf(format, args...))
}

// Errorf logs an error line.
func (l *Logger) Errorf(format string, args ...any) {
	l.z.Error(fmt.Sprintf(format, args...))
}

// Exception logs an error line with the underlying cause appended in
// the "EXCEPTION: <detail>" form.
func (l *Logger) Exception(msg string, err error) {
	if err == nil {
		l.z.Error(msg)
		return
	}
	l.z.Error(fmt.Sprintf("%s EXCEPTION: %v", msg, err))
}
