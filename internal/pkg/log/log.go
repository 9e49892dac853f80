package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/davecgh/go-spew/spew"
	"github.com/fatih/color"
)

type ctxKey string

const contextKeyRequestID ctxKey = "request_id"

var (
	out     io.Writer = color.Output
	debugOn atomic.Bool

	infoLabel  = color.New(color.FgWhite, color.BgGreen).SprintFunc()
	warnLabel  = color.New(color.FgBlack, color.BgYellow).SprintFunc()
	errorLabel = color.New(color.FgRed).SprintFunc()
	debugLabel = color.New(color.FgCyan).SprintFunc()
)

// SetOutput redirects log output. Used by tests.
func SetOutput(w io.Writer) {
	if w == nil {
		w = os.Stdout
	}
	out = w
}

// SetDebug toggles Debug output.
func SetDebug(enabled bool) {
	debugOn.Store(enabled)
}

// WithRequestID adds request ID to context for logging
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, contextKeyRequestID, requestID)
}

// RequestID returns the request ID stored on ctx, or "".
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(contextKeyRequestID).(string); ok {
		return id
	}
	return ""
}

func write(label string, requestID string, format string, a ...interface{}) {
	msg := fmt.Sprintf(format, a...)
	if requestID != "" {
		fmt.Fprintf(out, "%s [req_id=%s] %s\n", label, requestID, msg)
		return
	}
	fmt.Fprintf(out, "%s %s\n", label, msg)
}

// Info log information
func Info(format string, a ...interface{}) {
	write(infoLabel("[INFO] "), "", format, a...)
}

// InfoWithContext logs information with the request ID found on ctx.
func InfoWithContext(ctx context.Context, format string, a ...interface{}) {
	write(infoLabel("[INFO] "), RequestID(ctx), format, a...)
}

// Warn log warning
func Warn(format string, a ...interface{}) {
	write(warnLabel("[WARN] "), "", format, a...)
}

// WarnWithContext logs a warning with the request ID found on ctx.
func WarnWithContext(ctx context.Context, format string, a ...interface{}) {
	write(warnLabel("[WARN] "), RequestID(ctx), format, a...)
}

// Error log error
func Error(format string, a ...interface{}) {
	write(errorLabel("[Error]"), "", format, a...)
}

// ErrorWithContext logs an error with the request ID found on ctx.
func ErrorWithContext(ctx context.Context, format string, a ...interface{}) {
	write(errorLabel("[Error]"), RequestID(ctx), format, a...)
}

// Debug logs only when debug output is enabled.
func Debug(format string, a ...interface{}) {
	if !debugOn.Load() {
		return
	}
	write(debugLabel("[DEBUG]"), "", format, a...)
}

// DebugWithContext logs at debug level with the request ID found on ctx.
func DebugWithContext(ctx context.Context, format string, a ...interface{}) {
	if !debugOn.Load() {
		return
	}
	write(debugLabel("[DEBUG]"), RequestID(ctx), format, a...)
}

// InfoStruct dumps values with spew at debug level.
func InfoStruct(a ...interface{}) {
	if !debugOn.Load() {
		return
	}
	fmt.Fprint(out, spew.Sdump(a...))
}
