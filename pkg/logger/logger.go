package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

type Logger struct {
	zl zerolog.Logger
}

type Config struct {
	Level      string // debug, info, warn, error
	Format     string // json or console
	Output     string // stdout, stderr, or file path
	TimeFormat string
}

func New(cfg *Config) (*Logger, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	var out io.Writer
	switch cfg.Output {
	case "", "stdout":
		out = os.Stdout
	case "stderr":
		out = os.Stderr
	default:
		f, err := os.OpenFile(cfg.Output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("could not open log file: %w", err)
		}
		out = f
	}

	tf := cfg.TimeFormat
	if tf == "" {
		tf = time.RFC3339
	}
	zerolog.TimeFieldFormat = tf

	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: tf}
	}

	zl := zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		CallerWithSkipFrameCount(4).
		Logger()
	return &Logger{zl: zl}, nil
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

func (l *Logger) Debug(msg string, fields ...Field) { l.emit(l.zl.Debug(), msg, fields) }
func (l *Logger) Info(msg string, fields ...Field)  { l.emit(l.zl.Info(), msg, fields) }
func (l *Logger) Warn(msg string, fields ...Field)  { l.emit(l.zl.Warn(), msg, fields) }
func (l *Logger) Error(msg string, fields ...Field) { l.emit(l.zl.Error(), msg, fields) }

func (l *Logger) emit(e *zerolog.Event, msg string, fields []Field) {
	if e == nil {
		return
	}
	for _, f := range fields {
		f.event(e)
	}
	e.Msg(msg)
}

// With returns a child logger that stamps fields on every event.
func (l *Logger) With(fields ...Field) *Logger {
	c := l.zl.With()
	for _, f := range fields {
		c = f.context(c)
	}
	return &Logger{zl: c.Logger()}
}

type kind uint8

const (
	kindString kind = iota
	kindStrings
	kindInt
	kindInt64
	kindFloat
	kindDuration
	kindError
)

// Field is one typed key/value pair.
type Field struct {
	key  string
	kind kind
	str  string
	strs []string
	num  int64
	flt  float64
	err  error
}

func (f Field) event(e *zerolog.Event) {
	switch f.kind {
	case kindString:
		e.Str(f.key, f.str)
	case kindStrings:
		e.Strs(f.key, f.strs)
	case kindInt, kindInt64:
		e.Int64(f.key, f.num)
	case kindFloat:
		e.Float64(f.key, f.flt)
	case kindDuration:
		e.Dur(f.key, time.Duration(f.num))
	case kindError:
		e.AnErr(f.key, f.err)
	}
}

func (f Field) context(c zerolog.Context) zerolog.Context {
	switch f.kind {
	case kindString:
		return c.Str(f.key, f.str)
	case kindStrings:
		return c.Strs(f.key, f.strs)
	case kindInt, kindInt64:
		return c.Int64(f.key, f.num)
	case kindFloat:
		return c.Float64(f.key, f.flt)
	case kindDuration:
		return c.Dur(f.key, time.Duration(f.num))
	case kindError:
		return c.AnErr(f.key, f.err)
	}
	return c
}

func String(key, value string) Field { return Field{key: key, kind: kindString, str: value} }

func Strings(key string, value []string) Field {
	return Field{key: key, kind: kindStrings, strs: append([]string(nil), value...)}
}

func Int(key string, value int) Field     { return Field{key: key, kind: kindInt, num: int64(value)} }
func Int64(key string, value int64) Field { return Field{key: key, kind: kindInt64, num: value} }

func Float64(key string, value float64) Field { return Field{key: key, kind: kindFloat, flt: value} }

// Duration is logged in milliseconds.
func Duration(key string, value time.Duration) Field {
	return Field{key: key, kind: kindDuration, num: int64(value)}
}

// Error logs err under "error"; a nil err is omitted.
func Error(err error) Field { return Field{key: zerolog.ErrorFieldName, kind: kindError, err: err} }
