// Package log is the application's structured, asynchronous logger.
//
// Entries carry a level, the caller, the request ID and viewer found on the
// context, and arbitrary key/value fields. Delivery to transporters happens
// on a background Buffer.
package log

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"sync"
)

// DefaultBufferSize is the number of pending entries a logger holds.
const DefaultBufferSize = 1000

// Logger writes entries at or above its level to a Buffer.
type Logger struct {
	mu     sync.RWMutex
	level  Level
	buffer *Buffer
	fields map[string]any
}

// New creates a logger with the given minimum level and transporters.
func New(level Level, transporters ...Transporter) *Logger {
	return &Logger{
		level:  level,
		buffer: NewBuffer(DefaultBufferSize, transporters...),
		fields: map[string]any{},
	}
}

// SetLevel changes the minimum level.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	l.level = level
	l.mu.Unlock()
}

// Level returns the minimum level.
func (l *Logger) Level() Level {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.level
}

// With returns a child logger sharing the buffer, with extra base fields.
func (l *Logger) With(keysAndValues ...any) *Logger {
	l.mu.RLock()
	fields := make(map[string]any, len(l.fields)+len(keysAndValues)/2)
	for k, v := range l.fields {
		fields[k] = v
	}
	level := l.level
	l.mu.RUnlock()

	mergePairs(fields, keysAndValues)
	return &Logger{level: level, buffer: l.buffer, fields: fields}
}

// Close flushes pending entries. Child loggers share the same buffer.
func (l *Logger) Close() {
	l.buffer.Close()
}

// Log records msg at level. Base fields, context fields and call-site
// fields are merged in that order, later ones winning.
func (l *Logger) Log(ctx context.Context, level Level, msg string, keysAndValues ...any) {
	l.log(ctx, level, msg, keysAndValues)
}

func (l *Logger) log(ctx context.Context, level Level, msg string, keysAndValues []any) {
	l.mu.RLock()
	if !l.level.Enables(level) {
		l.mu.RUnlock()
		return
	}
	entry := NewEntry(level, msg)
	for k, v := range l.fields {
		entry.Fields[k] = v
	}
	l.mu.RUnlock()

	entry.Caller = caller(3)
	if ctx != nil {
		entry.RequestID = RequestIDFromContext(ctx)
		entry.Viewer = ViewerFromContext(ctx)
		for k, v := range FieldsFromContext(ctx) {
			entry.Fields[k] = v
		}
	}
	mergePairs(entry.Fields, keysAndValues)

	l.buffer.Send(*entry)
}

func caller(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s:%d", filepath.Base(file), line)
}

func (l *Logger) Debug(msg string, keysAndValues ...any) { l.log(nil, Debug, msg, keysAndValues) }
func (l *Logger) Info(msg string, keysAndValues ...any)  { l.log(nil, Info, msg, keysAndValues) }
func (l *Logger) Warn(msg string, keysAndValues ...any)  { l.log(nil, Warn, msg, keysAndValues) }
func (l *Logger) Error(msg string, keysAndValues ...any) { l.log(nil, Error, msg, keysAndValues) }

// Fatal logs at Fatal level. Exiting is left to the caller.
func (l *Logger) Fatal(msg string, keysAndValues ...any) { l.log(nil, Fatal, msg, keysAndValues) }

func (l *Logger) DebugCtx(ctx context.Context, msg string, keysAndValues ...any) {
	l.log(ctx, Debug, msg, keysAndValues)
}

func (l *Logger) InfoCtx(ctx context.Context, msg string, keysAndValues ...any) {
	l.log(ctx, Info, msg, keysAndValues)
}

func (l *Logger) WarnCtx(ctx context.Context, msg string, keysAndValues ...any) {
	l.log(ctx, Warn, msg, keysAndValues)
}

func (l *Logger) ErrorCtx(ctx context.Context, msg string, keysAndValues ...any) {
	l.log(ctx, Error, msg, keysAndValues)
}

// --- process-wide logger ---

var (
	globalMu     sync.RWMutex
	globalLogger *Logger
	discard      = &Logger{level: Fatal + 1, buffer: NewBuffer(1), fields: map[string]any{}}
)

// SetDefault installs l as the process-wide logger.
func SetDefault(l *Logger) {
	globalMu.Lock()
	globalLogger = l
	globalMu.Unlock()
}

// Default returns the process-wide logger, or one that drops everything.
func Default() *Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	if globalLogger == nil {
		return discard
	}
	return globalLogger
}

func GlobalDebug(msg string, keysAndValues ...any) { Default().log(nil, Debug, msg, keysAndValues) }
func GlobalInfo(msg string, keysAndValues ...any)  { Default().log(nil, Info, msg, keysAndValues) }
func GlobalWarn(msg string, keysAndValues ...any)  { Default().log(nil, Warn, msg, keysAndValues) }
func GlobalError(msg string, keysAndValues ...any) { Default().log(nil, Error, msg, keysAndValues) }

func GlobalDebugCtx(ctx context.Context, msg string, keysAndValues ...any) {
	Default().log(ctx, Debug, msg, keysAndValues)
}

func GlobalInfoCtx(ctx context.Context, msg string, keysAndValues ...any) {
	Default().log(ctx, Info, msg, keysAndValues)
}

func GlobalWarnCtx(ctx context.Context, msg string, keysAndValues ...any) {
	Default().log(ctx, Warn, msg, keysAndValues)
}

func GlobalErrorCtx(ctx context.Context, msg string, keysAndValues ...any) {
	Default().log(ctx, Error, msg, keysAndValues)
}
