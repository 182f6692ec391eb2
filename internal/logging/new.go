package logging

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Options selects and configures a backend.
//
// Format "text" and "json" use log/slog; "console" uses zerolog's
// human-readable writer and "zerolog" its JSON output.
type Options struct {
	Level  string
	Format string
	Output io.Writer
}

// New builds a Logger from opts. Unknown formats fall back to slog text.
func New(opts Options) Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	switch opts.Format {
	case "json":
		h := slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slogLevel(opts.Level)})
		return NewSlogLogger(slog.New(h))
	case "console":
		w := zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339, NoColor: true}
		z := zerolog.New(w).Level(zerologLevel(opts.Level)).With().Timestamp().Logger()
		return NewZerologLogger(z)
	case "zerolog":
		z := zerolog.New(out).Level(zerologLevel(opts.Level)).With().Timestamp().Logger()
		return NewZerologLogger(z)
	default:
		h := slog.NewTextHandler(out, &slog.HandlerOptions{Level: slogLevel(opts.Level)})
		return NewSlogLogger(slog.New(h))
	}
}
