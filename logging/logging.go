/*
Copyright © 2026 Jayson Grace <jayson.e.grace@gmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/

// Package logging provides a custom logger with support for multiple output formats and log levels.
// Commands propagate the logger through context (InfoContext, WarnContext, etc.); the
// package-level helpers write through the logger configured by Initialize.
//
// The "actions" output type renders GitHub Actions workflow commands so warnings and
// errors show up as annotations on the workflow run.
package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// LogLevel represents the severity level of a log message
type LogLevel int

// OutputType represents the output format for logs
type OutputType int

// Output types for different log formats
const (
	PlainOutput OutputType = iota
	ColorOutput
	JSONOutput
	ActionsOutput
)

// Log levels for different types of log messages.
// Ordered from least to most severe for numeric comparison.
const (
	// DebugLevel represents debug messages (lowest severity)
	DebugLevel LogLevel = iota
	// InfoLevel represents informational messages
	InfoLevel
	// WarnLevel represents warning messages
	WarnLevel
	// ErrorLevel represents error messages (highest severity)
	ErrorLevel
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "INFO"
	}
}

// ParseOutputType maps a format name to an OutputType.
func ParseOutputType(format string) (OutputType, error) {
	switch strings.ToLower(format) {
	case "", "text", "plain":
		return PlainOutput, nil
	case "color":
		return ColorOutput, nil
	case "json":
		return JSONOutput, nil
	case "actions", "github":
		return ActionsOutput, nil
	default:
		return PlainOutput, fmt.Errorf("unknown log format %q (expected text, color, json or actions)", format)
	}
}

// CustomLogger wraps the logging functionality with custom formatting options.
type CustomLogger struct {
	mu            sync.Mutex
	LogLevel      slog.Level
	OutputType    OutputType
	Quiet         bool
	ConsoleWriter io.Writer
	Verbose       bool
}

// formatMessage handles formatting based on output type and log level.
func (l *CustomLogger) formatMessage(level LogLevel, message string, args ...interface{}) string {
	formattedMsg := message
	if len(args) > 0 {
		formattedMsg = fmt.Sprintf(message, args...)
	}

	switch l.OutputType {
	case ColorOutput:
		switch level {
		case DebugLevel:
			return color.HiBlackString("[DEBUG] %s", formattedMsg)
		case InfoLevel:
			return color.HiGreenString("[INFO] %s", formattedMsg)
		case WarnLevel:
			return color.HiYellowString("[WARN] %s", formattedMsg)
		case ErrorLevel:
			return color.HiRedString("[ERROR] %s", formattedMsg)
		}
	case ActionsOutput:
		switch level {
		case DebugLevel:
			return "::debug::" + escapeCommandData(formattedMsg)
		case WarnLevel:
			return "::warning::" + escapeCommandData(formattedMsg)
		case ErrorLevel:
			return "::error::" + escapeCommandData(formattedMsg)
		}
	case JSONOutput:
		data, err := json.Marshal(map[string]string{
			"time":  time.Now().Format(time.RFC3339),
			"level": level.String(),
			"msg":   formattedMsg,
		})
		if err == nil {
			return string(data)
		}
	}
	return formattedMsg
}

// escapeCommandData escapes a workflow command payload so multi-line messages
// stay inside a single annotation.
func escapeCommandData(s string) string {
	return strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A").Replace(s)
}

// shouldShowOnConsoleLocked determines if a message should be shown on console.
// This method must be called while holding l.mu.
// Logic:
// - In quiet mode, only errors are shown
// - In verbose mode, all messages are shown
// - In actions mode debug lines are always emitted; the runner hides them
// - Otherwise, show messages at or above the configured level
func (l *CustomLogger) shouldShowOnConsoleLocked(level LogLevel) bool {
	if l.Quiet {
		return level == ErrorLevel
	}

	if l.Verbose {
		return true
	}

	if l.OutputType == ActionsOutput && level == DebugLevel {
		return true
	}

	return level >= levelFromSlog(l.LogLevel)
}

func levelFromSlog(level slog.Level) LogLevel {
	switch {
	case level <= slog.LevelDebug:
		return DebugLevel
	case level <= slog.LevelInfo:
		return InfoLevel
	case level <= slog.LevelWarn:
		return WarnLevel
	default:
		return ErrorLevel
	}
}

func (l *CustomLogger) log(level LogLevel, message string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.shouldShowOnConsoleLocked(level) || l.ConsoleWriter == nil {
		return
	}

	line := l.formatMessage(level, message, args...)
	if l.OutputType == PlainOutput || l.OutputType == ColorOutput {
		line = fmt.Sprintf("[%s] %s", time.Now().Format("2006-01-02 15:04:05"), line)
	}

	if _, err := fmt.Fprintln(l.ConsoleWriter, line); err != nil {
		// Fallback to stderr if ConsoleWriter fails
		fmt.Fprintln(os.Stderr, line)
	}
}

// writeRaw writes a line without level formatting.
func (l *CustomLogger) writeRaw(line string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.ConsoleWriter == nil {
		return
	}
	if _, err := fmt.Fprintln(l.ConsoleWriter, line); err != nil {
		fmt.Fprintln(os.Stderr, line)
	}
}

// NewCustomLogger creates a new instance of CustomLogger.
func NewCustomLogger(level slog.Level) *CustomLogger {
	return &CustomLogger{
		LogLevel:      level,
		Quiet:         false,
		ConsoleWriter: os.Stderr, // Default to stderr for CLI output
		Verbose:       false,
		OutputType:    PlainOutput,
	}
}

// NewCustomLoggerWithOptions creates a new CustomLogger with full configuration.
// Unknown output formats fall back to plain text.
func NewCustomLoggerWithOptions(logLevelStr, outputFormat string, quiet, verbose bool) *CustomLogger {
	logLevel := DetermineLogLevel(logLevelStr)
	outputType, _ := ParseOutputType(outputFormat)

	// If verbose is set, ensure we're at least at debug level
	if verbose && logLevel > slog.LevelDebug {
		logLevel = slog.LevelDebug
	}

	return &CustomLogger{
		LogLevel:      logLevel,
		OutputType:    outputType,
		Quiet:         quiet,
		ConsoleWriter: os.Stderr,
		Verbose:       verbose,
	}
}

// SetQuiet enables or disables quiet mode.
// In quiet mode, only error messages are displayed.
func (l *CustomLogger) SetQuiet(quiet bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Quiet = quiet
}

// SetVerbose enables or disables verbose mode.
func (l *CustomLogger) SetVerbose(verbose bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Verbose = verbose
}

// IsQuiet returns whether the logger is in quiet mode.
func (l *CustomLogger) IsQuiet() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.Quiet
}

// Info logs an informational message.
func (l *CustomLogger) Info(format string, args ...interface{}) {
	l.log(InfoLevel, format, args...)
}

// Warn logs a warning message.
func (l *CustomLogger) Warn(format string, args ...interface{}) {
	l.log(WarnLevel, format, args...)
}

// Debug logs a debug message.
func (l *CustomLogger) Debug(format string, args ...interface{}) {
	l.log(DebugLevel, format, args...)
}

// Error logs an error message. It accepts either an error, a format string,
// or any other value as the first argument.
func (l *CustomLogger) Error(firstArg interface{}, args ...interface{}) {
	switch v := firstArg.(type) {
	case error:
		if len(args) == 0 {
			l.log(ErrorLevel, "%s", v.Error())
		} else {
			l.log(ErrorLevel, v.Error(), args...)
		}
	case string:
		l.log(ErrorLevel, v, args...)
	default:
		l.log(ErrorLevel, "%v", v)
	}
}

// StartGroup opens a collapsible section. Outside of GitHub Actions the group
// title is printed as a plain header.
func (l *CustomLogger) StartGroup(title string) {
	if l.IsQuiet() {
		return
	}
	if l.OutputType == ActionsOutput {
		l.writeRaw("::group::" + escapeCommandData(title))
		return
	}
	l.log(InfoLevel, "==> %s", title)
}

// EndGroup closes the section opened by StartGroup.
func (l *CustomLogger) EndGroup() {
	if l.OutputType == ActionsOutput && !l.IsQuiet() {
		l.writeRaw("::endgroup::")
	}
}

// Output sends data to stdout.
func (l *CustomLogger) Output(data interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch l.OutputType {
	case JSONOutput:
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(data); err != nil {
			fmt.Fprintf(os.Stderr, "failed to encode JSON output: %v\n", err)
		}
	default:
		if _, err := fmt.Fprintln(os.Stdout, data); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write output: %v\n", err)
		}
	}
}

// DetermineLogLevel converts a string to slog.Level
func DetermineLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var (
	defaultMu     sync.RWMutex
	defaultLogger = NewCustomLogger(slog.LevelInfo)
)

// Initialize configures the process-wide default logger.
func Initialize(logLevel, logFormat string, quiet, verbose bool) error {
	if _, err := ParseOutputType(logFormat); err != nil {
		return err
	}

	logger := NewCustomLoggerWithOptions(logLevel, logFormat, quiet, verbose)

	defaultMu.Lock()
	defaultLogger = logger
	defaultMu.Unlock()
	return nil
}

// Default returns the process-wide default logger.
func Default() *CustomLogger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// Info logs an informational message using the default logger.
func Info(message string, args ...interface{}) { Default().Info(message, args...) }

// Warn logs a warning using the default logger.
func Warn(message string, args ...interface{}) { Default().Warn(message, args...) }

// Debug logs a debug message using the default logger.
func Debug(message string, args ...interface{}) { Default().Debug(message, args...) }

// Error logs an error using the default logger.
func Error(firstArg interface{}, args ...interface{}) { Default().Error(firstArg, args...) }

// Context-based logging support

// loggerKeyType is the type for the logger context key
type loggerKeyType struct{}

// loggerKey is the context key for storing the logger
var loggerKey = loggerKeyType{}

// WithLogger returns a new context with the provided logger.
func WithLogger(ctx context.Context, l *CustomLogger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext retrieves the logger from the context.
// If no logger is found in context, the default logger is returned.
func FromContext(ctx context.Context) *CustomLogger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey).(*CustomLogger); ok && l != nil {
			return l
		}
	}
	return Default()
}

// InfoContext logs an informational message using the logger from context.
func InfoContext(ctx context.Context, message string, args ...interface{}) {
	FromContext(ctx).Info(message, args...)
}

// WarnContext logs a warning message using the logger from context.
func WarnContext(ctx context.Context, message string, args ...interface{}) {
	FromContext(ctx).Warn(message, args...)
}

// DebugContext logs a debug message using the logger from context.
func DebugContext(ctx context.Context, message string, args ...interface{}) {
	FromContext(ctx).Debug(message, args...)
}

// ErrorContext logs an error message using the logger from context. It accepts either
// an error, a format string, or any other value as the first argument.
func ErrorContext(ctx context.Context, firstArg interface{}, args ...interface{}) {
	FromContext(ctx).Error(firstArg, args...)
}

// StartGroupContext opens a collapsible log section using the logger from context.
func StartGroupContext(ctx context.Context, title string) {
	FromContext(ctx).StartGroup(title)
}

// EndGroupContext closes the current log section using the logger from context.
func EndGroupContext(ctx context.Context) {
	FromContext(ctx).EndGroup()
}

// OutputContext sends data to stdout using the logger from context.
func OutputContext(ctx context.Context, data interface{}) {
	FromContext(ctx).Output(data)
}
