package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// ZerologLogger adapts a zerolog.Logger to the library Logger interface.
//
//	zl := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
//	logging.SetGlobalLogger(logging.NewZerologLogger(zl))
type ZerologLogger struct {
	logger zerolog.Logger
}

// NewZerologLogger wraps zl. The zerolog level already set on zl is kept.
func NewZerologLogger(zl zerolog.Logger) *ZerologLogger {
	return &ZerologLogger{logger: zl}
}

func (z *ZerologLogger) event(e *zerolog.Event, msg string, fields []Fields) {
	for _, f := range fields {
		if len(f) > 0 {
			e = e.Fields(map[string]any(f))
		}
	}
	e.Msg(msg)
}

func (z *ZerologLogger) Debug(msg string, fields ...Fields) {
	z.event(z.logger.Debug(), msg, fields)
}

func (z *ZerologLogger) Info(msg string, fields ...Fields) {
	z.event(z.logger.Info(), msg, fields)
}

func (z *ZerologLogger) Warn(msg string, fields ...Fields) {
	z.event(z.logger.Warn(), msg, fields)
}

func (z *ZerologLogger) Error(err error, msg string, fields ...Fields) {
	z.event(z.logger.Error().Err(err), msg, fields)
}

func (z *ZerologLogger) Fatal(err error, msg string, fields ...Fields) {
	z.event(z.logger.Fatal().Err(err), msg, fields)
}

func (z *ZerologLogger) WithFields(fields Fields) Logger {
	return &ZerologLogger{logger: z.logger.With().Fields(map[string]any(fields)).Logger()}
}

func (z *ZerologLogger) WithContext(ctx context.Context) Logger {
	if fields, ok := FieldsFromContext(ctx); ok {
		return z.WithFields(fields)
	}
	return z
}

func (z *ZerologLogger) SetLevel(level Level) {
	z.logger = z.logger.Level(ZerologLevel(level))
}

// ZerologLevel maps a library Level onto the zerolog level of the same name.
func ZerologLevel(level Level) zerolog.Level {
	switch level {
	case DebugLevel:
		return zerolog.DebugLevel
	case InfoLevel:
		return zerolog.InfoLevel
	case WarnLevel:
		return zerolog.WarnLevel
	case ErrorLevel:
		return zerolog.ErrorLevel
	case FatalLevel:
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}
