// Package logger provides structured logging using zerolog, matching
// the format used in the teacher repository's internal/logger. Per
// spec.md §7, all bot diagnostics go to this "debug channel" — stderr —
// never to stdout, which is reserved for the engine's line protocol
// (internal/protocol).
package logger

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type contextKey string

const turnIDKey contextKey = "turn_id"

const milliTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Init initializes the global logger. level is typically read from
// config.Config.LogLevel.
func Init(level string) {
	zerolog.TimeFieldFormat = milliTimeFormat
	zerolog.TimestampFunc = func() time.Time { return time.Now().UTC() }

	const callerWidth = 30
	zerolog.CallerMarshalFunc = func(pc uintptr, file string, line int) string {
		path := fmt.Sprintf("%s:%d", filepath.Base(file), line)
		if len(path) >= callerWidth {
			return path[len(path)-callerWidth:]
		}
		return path + strings.Repeat(" ", callerWidth-len(path))
	}

	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)

	var output io.Writer = zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: milliTimeFormat,
		NoColor:    !isDevelopmentMode(),
	}

	if logFile := os.Getenv("LOG_FILE"); logFile != "" {
		f, ferr := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if ferr == nil {
			output = io.MultiWriter(output, f)
		}
	}

	log.Logger = log.Output(output).With().Caller().Logger()

	log.Info().Str("level", parsed.String()).Msg("Logger initialized")
}

func isDevelopmentMode() bool {
	return os.Getenv("DEV") == "true" || os.Getenv("DEV_MODE") == "true"
}

// Get returns the global logger instance.
func Get() zerolog.Logger {
	return log.Logger
}

// NewTurnID generates a short random correlation ID for one turn's
// worth of log lines.
func NewTurnID() string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	const length = 8

	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("turn%06d", time.Now().UnixNano()%1000000)
	}
	for i := range b {
		b[i] = charset[b[i]%byte(len(charset))]
	}
	return string(b)
}

// WithTurnID returns a new context carrying the given turn correlation ID.
func WithTurnID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, turnIDKey, id)
}

// TurnIDFromContext extracts the turn correlation ID from ctx, or "".
func TurnIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(turnIDKey).(string)
	return id
}

// ForTurn returns a logger enriched with the turn correlation ID.
func ForTurn(ctx context.Context) zerolog.Logger {
	id := TurnIDFromContext(ctx)
	if id == "" {
		return log.Logger
	}
	return log.Logger.With().Str("turnId", id).Logger()
}
