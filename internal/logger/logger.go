package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/fatih/color"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger defines the logging interface used throughout gitdoc.
// Internal messages (Info, Warning, Error) go to the debug log file;
// user-facing messages (InfoToUser, WarningToUser, Success, StatusMessage)
// are written to the terminal and mirrored to the log file.
type Logger interface {
	// Info logs an informational message for debugging purposes.
	Info(format string, args ...any)

	// Warning logs a warning. It is echoed to the user in verbose mode.
	Warning(format string, args ...any)

	// Error logs an error. Errors are always shown to the user on stderr.
	Error(format string, args ...any)

	// InfoToUser shows an informational message to the user.
	InfoToUser(format string, args ...any)

	// WarningToUser shows a non-blocking warning to the user.
	WarningToUser(format string, args ...any)

	// Success shows a success message to the user.
	Success(format string, args ...any)

	// StatusMessage prints a plain status line without logging it.
	StatusMessage(format string, args ...any)

	// Close flushes the log file and releases it.
	Close() error
}

var (
	infoColor    = color.New(color.FgCyan)
	warningColor = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
	successColor = color.New(color.FgGreen)
)

// DefaultLogger writes structured debug logs through zap and colored
// user-facing lines to stdout/stderr.
type DefaultLogger struct {
	mu      sync.Mutex
	zl      *zap.Logger
	enabled bool
	logFile string
	verbose bool
	stdout  io.Writer
	stderr  io.Writer
	file    *os.File
}

// New creates a new Logger instance
func New(enabled bool, logFile string, verbose bool) *DefaultLogger {
	return NewWithOutput(enabled, logFile, verbose, os.Stdout, os.Stderr)
}

// NewWithOutput creates a DefaultLogger with custom output writers
func NewWithOutput(enabled bool, logFile string, verbose bool, stdout, stderr io.Writer) *DefaultLogger {
	l := &DefaultLogger{
		zl:      zap.NewNop(),
		enabled: enabled,
		logFile: logFile,
		verbose: verbose,
		stdout:  stdout,
		stderr:  stderr,
	}

	if !enabled {
		return l
	}

	var sink zapcore.WriteSyncer
	if logFile != "" {
		if dir := filepath.Dir(logFile); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				_, _ = warningColor.Fprintf(stderr, "⚠️  Failed to create log directory: %v\n", err)
			}
		}

		f, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err == nil {
			l.file = f
			sink = zapcore.AddSync(f)
			_, _ = fmt.Fprintf(stdout, "🔍 Debug logging enabled. Logs will be written to: %s\n", logFile)
		} else {
			_, _ = warningColor.Fprintf(stderr, "⚠️  Failed to open log file: %v, using stderr instead\n", err)
		}
	}
	if sink == nil {
		sink = zapcore.AddSync(stderr)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), sink, zap.InfoLevel)
	l.zl = zap.New(core)
	l.zl.Info("gitdoc debug logging started")

	return l
}

// AddField attaches a key/value pair to every subsequent structured log entry.
func (l *DefaultLogger) AddField(key, value string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.zl = l.zl.With(zap.String(key, value))
}

// Info logs an informational message (file only)
func (l *DefaultLogger) Info(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.enabled {
		return
	}
	l.zl.Info(fmt.Sprintf(format, args...))
}

// InfoToUser logs an informational message to both file and stdout
func (l *DefaultLogger) InfoToUser(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := fmt.Sprintf(format, args...)
	if l.enabled {
		l.zl.Info(msg, zap.Bool("user", true))
	}
	_, _ = infoColor.Fprintf(l.stdout, "ℹ️  %s\n", msg)
}

// Success logs a success message to both file and stdout
func (l *DefaultLogger) Success(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := fmt.Sprintf(format, args...)
	if l.enabled {
		l.zl.Info(msg, zap.Bool("user", true))
	}
	_, _ = successColor.Fprintf(l.stdout, "✅ %s\n", msg)
}

// Warning logs a warning message
func (l *DefaultLogger) Warning(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := fmt.Sprintf(format, args...)
	if l.enabled {
		l.zl.Warn(msg)
	}
	if l.verbose {
		_, _ = warningColor.Fprintf(l.stdout, "⚠️  %s\n", msg)
	}
}

// WarningToUser logs a warning message to both file and stdout
func (l *DefaultLogger) WarningToUser(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := fmt.Sprintf(format, args...)
	if l.enabled {
		l.zl.Warn(msg, zap.Bool("user", true))
	}
	_, _ = warningColor.Fprintf(l.stdout, "⚠️  %s\n", msg)
}

// Error logs an error message
func (l *DefaultLogger) Error(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := fmt.Sprintf(format, args...)
	if l.enabled {
		l.zl.Error(msg)
	}
	_, _ = errorColor.Fprintf(l.stderr, "❌ %s\n", msg)
}

// StatusMessage prints a status message to stdout only (no logging)
func (l *DefaultLogger) StatusMessage(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, _ = fmt.Fprintln(l.stdout, fmt.Sprintf(format, args...))
}

// Close flushes zap and closes the log file
func (l *DefaultLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	// Sync on a stderr-backed core fails on some platforms; only the file matters.
	_ = l.zl.Sync()

	if l.file != nil {
		if err := l.file.Sync(); err != nil {
			return err
		}
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}

// SetStdout sets a custom writer for user-facing stdout messages only.
func (l *DefaultLogger) SetStdout(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stdout = w
}

// SetStderr sets a custom writer for user-facing stderr messages only.
func (l *DefaultLogger) SetStderr(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stderr = w
}

// Nop returns a logger that discards everything. Useful in tests.
func Nop() *DefaultLogger {
	return NewWithOutput(false, "", false, io.Discard, io.Discard)
}
