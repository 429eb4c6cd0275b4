package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Log is the process-wide logger. Every line carries the instance id so
// relays behind a load balancer can be told apart.
var Log zerolog.Logger

var instanceID string

func init() {
	instanceID = uuid.New().String()
	Log = newLogger(os.Stdout)
}

func newLogger(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Str("instance", instanceID).Logger()
}

// Init sets the global level ("debug", "info", "warn", "error") and the
// output writer. A nil writer keeps stdout.
func Init(level string, w io.Writer) {
	l := zerolog.InfoLevel
	switch strings.ToLower(level) {
	case "debug":
		l = zerolog.DebugLevel
	case "warn":
		l = zerolog.WarnLevel
	case "error":
		l = zerolog.ErrorLevel
	}
	zerolog.SetGlobalLevel(l)
	if w == nil {
		w = os.Stdout
	}
	Log = newLogger(w)
}

// Get returns the global logger for structured fields.
func Get() *zerolog.Logger {
	return &Log
}

func Info(msg string, args ...any) {
	Log.Info().Msg(fmt.Sprintf(msg, args...))
}

func Warn(msg string, args ...any) {
	Log.Warn().Msg(fmt.Sprintf(msg, args...))
}

func Error(msg string, args ...any) {
	Log.Error().Msg(fmt.Sprintf(msg, args...))
}

func Fatal(args ...any) {
	Log.Fatal().Msg(fmt.Sprint(args...)) // logs + os.Exit(1)
}
