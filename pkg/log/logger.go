// Package log provides structured, leveled logging for vipattern on top of
// github.com/rs/zerolog.
//
// Components obtain a named logger once and attach their context:
//
//	logger := log.GetLoggerWithName("pattern").With(log.ComponentKey, "engine")
//	logger.Info("Search finished", log.PatternsKey, len(patterns))
//
// Key/value pairs follow the slog convention: alternating string keys and
// arbitrary values. Error values are rendered with their message.
package log

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

// Level is a logging severity.
type Level = zerolog.Level

// Supported levels.
const (
	DebugLevel    = zerolog.DebugLevel
	InfoLevel     = zerolog.InfoLevel
	WarnLevel     = zerolog.WarnLevel
	ErrorLevel    = zerolog.ErrorLevel
	DisabledLevel = zerolog.Disabled
)

// Logger is the logging interface used throughout vipattern.
type Logger interface {
	Debug(msg string, kv ...interface{})
	Info(msg string, kv ...interface{})
	Warn(msg string, kv ...interface{})
	Error(msg string, kv ...interface{})
	With(kv ...interface{}) Logger
	Enabled(level Level) bool
}

// LoggerProvider hands out loggers sharing one output and level.
type LoggerProvider interface {
	GetLogger() Logger
	GetLoggerWithName(name string) Logger
	SetLevel(level Level)
}

// ZerologProvider is a LoggerProvider backed by a zerolog.Logger.
type ZerologProvider struct {
	mu   sync.RWMutex
	base zerolog.Logger
}

// NewZerologProvider creates a provider writing JSON lines to stderr.
func NewZerologProvider(level Level) *ZerologProvider {
	return NewZerologProviderWithWriter(os.Stderr, level)
}

// NewZerologProviderWithWriter creates a provider writing to w.
func NewZerologProviderWithWriter(w io.Writer, level Level) *ZerologProvider {
	return &ZerologProvider{
		base: zerolog.New(w).With().Timestamp().Logger().Level(level),
	}
}

// GetLogger returns the root logger.
func (p *ZerologProvider) GetLogger() Logger {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return &zerologLogger{l: p.base}
}

// GetLoggerWithName returns a logger tagged with a logger name.
func (p *ZerologProvider) GetLoggerWithName(name string) Logger {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return &zerologLogger{l: p.base.With().Str("logger", name).Logger()}
}

// SetLevel changes the minimum level of loggers created afterwards.
func (p *ZerologProvider) SetLevel(level Level) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.base = p.base.Level(level)
}

type zerologLogger struct {
	l zerolog.Logger
}

func (z *zerologLogger) Debug(msg string, kv ...interface{}) { emit(z.l.Debug(), msg, kv) }
func (z *zerologLogger) Info(msg string, kv ...interface{})  { emit(z.l.Info(), msg, kv) }
func (z *zerologLogger) Warn(msg string, kv ...interface{})  { emit(z.l.Warn(), msg, kv) }
func (z *zerologLogger) Error(msg string, kv ...interface{}) { emit(z.l.Error(), msg, kv) }

func (z *zerologLogger) With(kv ...interface{}) Logger {
	if len(kv) == 0 {
		return z
	}
	return &zerologLogger{l: z.l.With().Fields(normalize(kv)).Logger()}
}

func (z *zerologLogger) Enabled(level Level) bool {
	return z.l.GetLevel() <= level
}

func emit(e *zerolog.Event, msg string, kv []interface{}) {
	if e == nil {
		return
	}
	if len(kv) > 0 {
		e = e.Fields(normalize(kv))
	}
	e.Msg(msg)
}

// normalize drops a dangling key and replaces non-string keys so zerolog
// never sees a malformed field list.
func normalize(kv []interface{}) []interface{} {
	if len(kv)%2 == 1 {
		kv = append(kv[:len(kv):len(kv)], "<missing>")
	}
	for i := 0; i < len(kv); i += 2 {
		if _, ok := kv[i].(string); !ok {
			out := make([]interface{}, len(kv))
			copy(out, kv)
			for j := 0; j < len(out); j += 2 {
				if _, ok := out[j].(string); !ok {
					out[j] = "!badkey"
				}
			}
			return out
		}
	}
	return kv
}

var (
	globalMu       sync.RWMutex
	globalProvider LoggerProvider = NewZerologProvider(InfoLevel)
)

// SetupLogger configures the global provider from a level name
// ("debug", "info", "warn", "error", "disabled") and routes the zerolog
// global logger, used for warnings, through the same level.
func SetupLogger(level string) {
	lvl := ToLogLevel(level)
	SetProvider(NewZerologProvider(lvl))
	zerolog.SetGlobalLevel(lvl)
}

// SetOutput sends global logging to w at the given level.
func SetOutput(w io.Writer, level Level) {
	SetProvider(NewZerologProviderWithWriter(w, level))
	zlog.Logger = zerolog.New(w).With().Timestamp().Logger()
}

// SetProvider replaces the global provider.
func SetProvider(p LoggerProvider) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalProvider = p
}

// GetLogger returns the global root logger.
func GetLogger() Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalProvider.GetLogger()
}

// GetLoggerWithName returns a named logger from the global provider.
func GetLoggerWithName(name string) Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalProvider.GetLoggerWithName(name)
}

// LogError logs err at error level on the global logger.
func LogError(err error, msg string, kv ...interface{}) {
	if err == nil {
		return
	}
	GetLogger().Error(msg, append([]interface{}{ErrorKey, err}, kv...)...)
}

// ToLogLevel parses a level name, defaulting to info.
func ToLogLevel(level string) Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug", "trace":
		return DebugLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	case "disabled", "off", "none":
		return DisabledLevel
	default:
		return InfoLevel
	}
}

// NewNopLogger returns a logger that discards everything.
func NewNopLogger() Logger {
	return &zerologLogger{l: zerolog.Nop()}
}
