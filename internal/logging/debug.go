package logging

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
)

var (
	debugMu     sync.Mutex
	debugFile   *os.File
	debugLogger *slog.Logger
)

// EnableDebug appends debug lines to path until DisableDebug is called.
func EnableDebug(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open debug log: %w", err)
	}

	debugMu.Lock()
	defer debugMu.Unlock()
	if debugFile != nil {
		debugFile.Close()
	}
	debugFile = f
	debugLogger = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return nil
}

// DisableDebug stops debug logging and closes the log file.
func DisableDebug() error {
	debugMu.Lock()
	defer debugMu.Unlock()
	debugLogger = nil
	if debugFile == nil {
		return nil
	}
	err := debugFile.Close()
	debugFile = nil
	return err
}

// DebugEnabled reports whether a debug log is open.
func DebugEnabled() bool {
	debugMu.Lock()
	defer debugMu.Unlock()
	return debugLogger != nil
}

// Debugf writes one debug line tagged with category. It is a no-op when
// debug logging is off. Never call it from the audio callback.
func Debugf(category, format string, args ...any) {
	debugMu.Lock()
	logger := debugLogger
	debugMu.Unlock()
	if logger == nil {
		return
	}
	logger.Debug(fmt.Sprintf(format, args...), "category", category)
}
