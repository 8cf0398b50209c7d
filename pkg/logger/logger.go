package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// LevelCritical sits above slog.LevelError and is rendered as "CRITICAL".
const LevelCritical = slog.Level(12)

const (
	FormatJSON   = "json"
	FormatText   = "text"
	FormatPretty = "pretty"
)

type Logger interface {
	Debug(message string, args ...any)
	Info(message string, args ...any)
	Warn(message string, args ...any)
	Error(message string, args ...any)
	Critical(message string, args ...any)
	// BusinessError logs a rejected request at warn level. Nil errors are ignored.
	BusinessError(message string, err error, args ...any)
	// InternalError logs an unexpected failure at error level. Nil errors are ignored.
	InternalError(message string, err error, args ...any)
	With(args ...any) Logger
	// Named scopes every record to a component, e.g. "budget" or "events".
	Named(component string) Logger
}

type Options struct {
	Level  slog.Level
	Format string
	// Service is attached to every record when set.
	Service string
}

var levelNames = map[string]slog.Level{
	"debug":    slog.LevelDebug,
	"info":     slog.LevelInfo,
	"warn":     slog.LevelWarn,
	"warning":  slog.LevelWarn,
	"error":    slog.LevelError,
	"critical": LevelCritical,
	"fatal":    LevelCritical,
}

// OptionsFromEnv reads LOG_LEVEL, LOG_FORMAT and ENV. Development defaults
// to debug output.
func OptionsFromEnv() Options {
	env := normalize(os.Getenv("ENV"))
	return Options{
		Level:   parseLevel(os.Getenv("LOG_LEVEL"), env),
		Format:  parseFormat(os.Getenv("LOG_FORMAT")),
		Service: "family-finance",
	}
}

func NewFromEnv() Logger {
	return New(os.Stdout, OptionsFromEnv())
}

// NewNop returns a logger that drops every record.
func NewNop() Logger {
	return New(io.Discard, Options{Level: LevelCritical + 1, Format: FormatJSON})
}

func New(output io.Writer, opts Options) Logger {
	var handler slog.Handler
	switch parseFormat(opts.Format) {
	case FormatPretty:
		handler = tint.NewHandler(output, &tint.Options{
			Level:       opts.Level,
			TimeFormat:  time.Kitchen,
			ReplaceAttr: renameCritical,
		})
	case FormatText:
		handler = slog.NewTextHandler(output, &slog.HandlerOptions{Level: opts.Level, ReplaceAttr: renameCritical})
	default:
		handler = slog.NewJSONHandler(output, &slog.HandlerOptions{Level: opts.Level, ReplaceAttr: renameCritical})
	}

	base := slog.New(handler)
	if opts.Service != "" {
		base = base.With("service", opts.Service)
	}
	return &slogLogger{base: base}
}

type slogLogger struct {
	base *slog.Logger
}

func (l *slogLogger) Debug(message string, args ...any) { l.base.Debug(message, args...) }
func (l *slogLogger) Info(message string, args ...any)  { l.base.Info(message, args...) }
func (l *slogLogger) Warn(message string, args ...any)  { l.base.Warn(message, args...) }
func (l *slogLogger) Error(message string, args ...any) { l.base.Error(message, args...) }

func (l *slogLogger) Critical(message string, args ...any) {
	l.base.Log(context.Background(), LevelCritical, message, args...)
}

func (l *slogLogger) BusinessError(message string, err error, args ...any) {
	l.logErr(slog.LevelWarn, message, err, args)
}

func (l *slogLogger) InternalError(message string, err error, args ...any) {
	l.logErr(slog.LevelError, message, err, args)
}

func (l *slogLogger) logErr(level slog.Level, message string, err error, args []any) {
	if err == nil {
		return
	}
	l.base.Log(context.Background(), level, message, append([]any{"err", err}, args...)...)
}

func (l *slogLogger) With(args ...any) Logger {
	return &slogLogger{base: l.base.With(args...)}
}

func (l *slogLogger) Named(component string) Logger {
	return l.With("component", component)
}

func parseLevel(value string, env string) slog.Level {
	if level, ok := levelNames[normalize(value)]; ok {
		return level
	}
	if env == "development" {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

func parseFormat(value string) string {
	switch format := normalize(value); format {
	case FormatJSON, FormatText, FormatPretty:
		return format
	default:
		return FormatJSON
	}
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func renameCritical(_ []string, attr slog.Attr) slog.Attr {
	if attr.Key != slog.LevelKey {
		return attr
	}
	if level, ok := attr.Value.Any().(slog.Level); ok && level == LevelCritical {
		attr.Value = slog.StringValue("CRITICAL")
	}
	return attr
}
