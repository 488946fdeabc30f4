package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

type Interface interface {
	Debug(message interface{}, args ...interface{})
	Info(message string, args ...interface{})
	Warn(message string, args ...interface{})
	Error(message interface{}, args ...interface{})
	Fatal(message interface{}, args ...interface{})
}

type Logger struct {
	logger *zerolog.Logger
}

var _ Interface = (*Logger)(nil)

func New(level string) *Logger {
	return NewWithWriter(level, os.Stdout)
}

func NewWithWriter(level string, w io.Writer) *Logger {
	var l zerolog.Level

	switch strings.ToLower(level) {
	case "error":
		l = zerolog.ErrorLevel
	case "warn":
		l = zerolog.WarnLevel
	case "info":
		l = zerolog.InfoLevel
	case "debug":
		l = zerolog.DebugLevel
	case "disabled":
		l = zerolog.Disabled
	default:
		l = zerolog.InfoLevel
	}

	logger := zerolog.New(w).
		Level(l).
		With().
		Timestamp().
		Logger()

	return &Logger{logger: &logger}
}

func (l *Logger) Debug(message interface{}, args ...interface{}) {
	l.msg(l.logger.Debug(), message, args...)
}

func (l *Logger) Info(message string, args ...interface{}) {
	l.log(l.logger.Info(), message, args...)
}

func (l *Logger) Warn(message string, args ...interface{}) {
	l.log(l.logger.Warn(), message, args...)
}

func (l *Logger) Error(message interface{}, args ...interface{}) {
	l.msg(l.logger.Error(), message, args...)
}

func (l *Logger) Fatal(message interface{}, args ...interface{}) {
	l.msg(l.logger.Fatal(), message, args...)

	os.Exit(1)
}

func (l *Logger) log(e *zerolog.Event, message string, args ...interface{}) {
	if len(args) == 0 {
		e.Msg(message)
	} else {
		e.Msgf(message, args...)
	}
}

// msg accepts either a format string or an error. For an error the first
// argument, if any, is the format of the context message.
func (l *Logger) msg(e *zerolog.Event, message interface{}, args ...interface{}) {
	switch msg := message.(type) {
	case error:
		e = e.Err(msg)
		if len(args) == 0 {
			e.Send()
			return
		}
		format, ok := args[0].(string)
		if !ok {
			e.Msg(fmt.Sprint(args...))
			return
		}
		l.log(e, format, args[1:]...)
	case string:
		l.log(e, msg, args...)
	default:
		l.log(e, fmt.Sprintf("%v has unknown type %T", message, msg), args...)
	}
}
