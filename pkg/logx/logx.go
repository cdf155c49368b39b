package logx

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger provides structured key-value logging for the insight engine.
// It wraps logrus so that every package logs through the same interface:
//
//	logger.Info("Cache entry stored", "key", key, "tags", len(tags))
//
// Fields may be passed either as alternating key/value pairs or as a single
// map[string]interface{}.
type Logger struct {
	entry *logrus.Entry
}

// NewLogger creates a logger at the given level (trace|debug|info|warn|error)
// for the named component. Unknown levels fall back to info.
func NewLogger(level, component string) *Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})
	l.SetLevel(parseLevel(level))

	entry := logrus.NewEntry(l)
	if component != "" {
		entry = entry.WithField("component", component)
	}
	return &Logger{entry: entry}
}

// WithComponent returns a child logger tagged with a component name
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{entry: l.entry.WithField("component", component)}
}

// SetLevel changes the log level at runtime
func (l *Logger) SetLevel(level string) {
	l.entry.Logger.SetLevel(parseLevel(level))
}

// SetOutput redirects log output (used by tests)
func (l *Logger) SetOutput(w io.Writer) {
	l.entry.Logger.SetOutput(w)
}

// Trace logs at trace level
func (l *Logger) Trace(msg string, fields ...interface{}) {
	l.entry.WithFields(parseFields(fields)).Trace(msg)
}

// Debug logs at debug level
func (l *Logger) Debug(msg string, fields ...interface{}) {
	l.entry.WithFields(parseFields(fields)).Debug(msg)
}

// Info logs at info level
func (l *Logger) Info(msg string, fields ...interface{}) {
	l.entry.WithFields(parseFields(fields)).Info(msg)
}

// Warn logs at warn level
func (l *Logger) Warn(msg string, fields ...interface{}) {
	l.entry.WithFields(parseFields(fields)).Warn(msg)
}

// Error logs at error level
func (l *Logger) Error(msg string, fields ...interface{}) {
	l.entry.WithFields(parseFields(fields)).Error(msg)
}

func parseLevel(level string) logrus.Level {
	switch strings.ToLower(level) {
	case "trace":
		return logrus.TraceLevel
	case "debug":
		return logrus.DebugLevel
	case "info", "":
		return logrus.InfoLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// parseFields accepts either a single map or alternating key/value pairs.
// Malformed trailing values are logged under the "extra" key rather than lost.
func parseFields(kv []interface{}) logrus.Fields {
	fields := logrus.Fields{}
	if len(kv) == 1 {
		if m, ok := kv[0].(map[string]interface{}); ok {
			for k, v := range m {
				fields[k] = v
			}
			return fields
		}
	}
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		fields[key] = kv[i+1]
	}
	if len(kv)%2 != 0 && len(kv) > 1 {
		fields["extra"] = kv[len(kv)-1]
	}
	return fields
}
