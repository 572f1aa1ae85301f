package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

// Options describes logger construction parameters
type Options struct {
	Level   string
	Format  string
	LogFile string
	// Console is where console output goes; defaults to stderr
	Console io.Writer
}

var (
	logger  = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	logFile *os.File
	mu      sync.Mutex
	isSetup bool
)

// SetupLogger replaces the process logger according to opts.
// Calling it again after a successful setup is a no-op until CloseLogger.
func SetupLogger(opts Options) error {
	mu.Lock()
	defer mu.Unlock()

	if isSetup {
		return nil
	}

	handler, file, err := newHandler(opts)
	if err != nil {
		return err
	}

	logger = slog.New(handler)
	logFile = file
	isSetup = true

	if file != nil {
		logger.Debug("log started", "file", opts.LogFile, "at", time.Now().Format(time.RFC3339))
	}
	return nil
}

func newHandler(opts Options) (slog.Handler, *os.File, error) {
	var out io.Writer = os.Stderr
	if opts.Console != nil {
		out = opts.Console
	}

	var file *os.File
	if path := strings.TrimSpace(opts.LogFile); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		file = f
		out = io.MultiWriter(out, f)
	}

	handlerOpts := &slog.HandlerOptions{Level: ParseLevel(opts.Level)}
	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "", "console", "text":
		return slog.NewTextHandler(out, handlerOpts), file, nil
	case "json":
		return slog.NewJSONHandler(out, handlerOpts), file, nil
	default:
		if file != nil {
			file.Close()
		}
		return nil, nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}
}

// ParseLevel maps a level name to a slog level, defaulting to info
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// CloseLogger closes the log file and restores the default stderr logger
func CloseLogger() {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		logger.Debug("log closed", "at", time.Now().Format(time.RFC3339))
		logFile.Close()
		logFile = nil
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	isSetup = false
}

// Logger returns the current process logger for structured calls
func Logger() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	return logger
}

// LogInfo logs an information message
func LogInfo(format string, args ...interface{}) {
	Logger().Info(fmt.Sprintf(format, args...))
}

// DebugLog logs a message at debug level
func DebugLog(format string, args ...interface{}) {
	Logger().Debug(fmt.Sprintf(format, args...))
}

// LogError logs an error message
func LogError(format string, args ...interface{}) {
	Logger().Error(fmt.Sprintf(format, args...))
}

// LogWarning logs a warning message
func LogWarning(format string, args ...interface{}) {
	Logger().Warn(fmt.Sprintf(format, args...))
}

// LogImageProcessed logs the outcome of hashing one image
func LogImageProcessed(path string, success bool, errMsg string) {
	if success {
		Logger().Debug("image processed", "path", path)
		return
	}
	Logger().Warn("image skipped", "path", path, "reason", errMsg)
}
