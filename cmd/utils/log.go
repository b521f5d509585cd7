package utils

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	debugMu     sync.Mutex
	debugFile   *lumberjack.Logger
	debugLogger *zap.Logger
	debugPath   string
	enableDebug bool = false

	// Compiled regex patterns for sanitization (compiled once at startup)
	// NOTE: Order matters! More specific patterns should come before generic ones.
	sensitivePatterns = []struct {
		pattern     *regexp.Regexp
		replacement string
	}{
		// JWT tokens (must come before generic token patterns)
		{regexp.MustCompile(`\beyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`), "[REDACTED-JWT]"},
		{regexp.MustCompile(`\b(sk|pk|sess)-[a-zA-Z0-9\-_]{20,}`), "[REDACTED-KEY]"},
		{regexp.MustCompile(`(?i)(authorization[=:\s]+['"]?)(Basic|Bearer|Digest)\s+[a-zA-Z0-9\-_\.=]+`), "${1}${2} [REDACTED]"},
		{regexp.MustCompile(`(?i)(bearer\s+)[a-zA-Z0-9\-_\.]+`), "${1}[REDACTED]"},
		{regexp.MustCompile(`(?i)(api[_-]?key[=:\s]+['"]?)[a-zA-Z0-9\-_]{16,}`), "${1}[REDACTED]"},
		{regexp.MustCompile(`(?i)(password[=:\s]+['"]?)[^\s&'"]+`), "${1}[REDACTED]"},
		{regexp.MustCompile(`(?i)(token[=:\s]+['"]?)[a-zA-Z0-9\-_\.]{16,}`), "${1}[REDACTED]"},
		{regexp.MustCompile(`(?i)(cookie[=:\s]+['"]?)[^;\n]+`), "${1}[REDACTED]"},
	}
)

// InitDebugLogger opens a rotating debug log file. If path is empty it defaults
// to "debug.log" in the effective working directory. When debug is true, debug
// lines are also echoed through the output manager. Calling it again with a
// different path reopens the log there.
func InitDebugLogger(path string, debug bool) error {
	debugMu.Lock()
	defer debugMu.Unlock()

	enableDebug = debug
	if path == "" {
		path = filepath.Join(GetEffectiveCWD(), "debug.log")
	}
	if debugLogger != nil && debugPath == path {
		return nil
	}
	closeDebugLoggerLocked()

	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve debug log path: %w", err)
	}

	rotator := &lumberjack.Logger{
		Filename:   absPath,
		MaxSize:    5, // megabytes
		MaxBackups: 3,
		MaxAge:     14, // days
	}

	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.AddSync(rotator), zap.DebugLevel)

	debugFile = rotator
	debugLogger = zap.New(core)
	debugPath = path
	return nil
}

// Logger returns the shared structured logger, or a no-op logger when debug
// logging has not been initialized.
func Logger() *zap.Logger {
	debugMu.Lock()
	defer debugMu.Unlock()
	if debugLogger == nil {
		return zap.NewNop()
	}
	return debugLogger
}

// CloseDebugLogger flushes and closes the debug log file if it was opened.
func CloseDebugLogger() {
	debugMu.Lock()
	defer debugMu.Unlock()
	closeDebugLoggerLocked()
}

func closeDebugLoggerLocked() {
	if debugLogger != nil {
		_ = debugLogger.Sync()
	}
	if debugFile != nil {
		_ = debugFile.Close()
	}
	debugLogger = nil
	debugFile = nil
	debugPath = ""
}

// ResetDebugLoggerForTesting resets the debug logger state.
// WARNING: This should ONLY be called from tests!
func ResetDebugLoggerForTesting() {
	CloseDebugLogger()
	debugMu.Lock()
	enableDebug = false
	debugMu.Unlock()
}

// sanitizeLogMessage redacts common credential shapes from a log line.
func sanitizeLogMessage(msg string) string {
	sanitized := msg
	for _, sp := range sensitivePatterns {
		sanitized = sp.pattern.ReplaceAllString(sanitized, sp.replacement)
	}
	return sanitized
}

// LogDebug writes a sanitized debug line to the debug log. It is a no-op until
// InitDebugLogger has been called.
func LogDebug(msg string) {
	debugMu.Lock()
	logger := debugLogger
	echo := enableDebug
	debugMu.Unlock()

	if logger == nil {
		return
	}
	sanitized := sanitizeLogMessage(msg)
	logger.Debug(sanitized)

	if echo {
		sendMessage(DebugMessage, "%s", sanitized)
	}
}
