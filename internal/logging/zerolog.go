package logging

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// ZerologLogger adapts zerolog.Logger to Logger. Key–value args are attached
// as fields; a non-string key is rendered with fmt.
type ZerologLogger struct {
	z zerolog.Logger
}

func NewZerologLogger(z zerolog.Logger) *ZerologLogger {
	return &ZerologLogger{z: z}
}

func (l *ZerologLogger) Debug(ctx context.Context, msg string, args ...any) {
	l.emit(l.z.Debug(), msg, args)
}

func (l *ZerologLogger) Info(ctx context.Context, msg string, args ...any) {
	l.emit(l.z.Info(), msg, args)
}

func (l *ZerologLogger) Warn(ctx context.Context, msg string, args ...any) {
	l.emit(l.z.Warn(), msg, args)
}

func (l *ZerologLogger) Error(ctx context.Context, msg string, args ...any) {
	l.emit(l.z.Error(), msg, args)
}

func (l *ZerologLogger) With(args ...any) Logger {
	c := l.z.With()
	for i := 0; i < len(args); i += 2 {
		key, val := pair(args, i)
		c = c.Interface(key, val)
	}
	return &ZerologLogger{z: c.Logger()}
}

func (l *ZerologLogger) emit(e *zerolog.Event, msg string, args []any) {
	for i := 0; i < len(args); i += 2 {
		key, val := pair(args, i)
		if err, ok := val.(error); ok {
			e = e.AnErr(key, err)
			continue
		}
		e = e.Interface(key, val)
	}
	e.Msg(msg)
}

// pair mirrors slog's handling of a dangling value: it is logged under "!BADKEY".
func pair(args []any, i int) (string, any) {
	if i+1 >= len(args) {
		return "!BADKEY", args[i]
	}
	key, ok := args[i].(string)
	if !ok {
		key = fmt.Sprint(args[i])
	}
	return key, args[i+1]
}

func zerologLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
