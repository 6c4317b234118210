package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

type Level = logrus.Level

const (
	DebugLevel = logrus.DebugLevel
	InfoLevel  = logrus.InfoLevel
	WarnLevel  = logrus.WarnLevel
	ErrorLevel = logrus.ErrorLevel
)

// Fields is a set of structured values attached to a log line.
type Fields = logrus.Fields

type Logger struct {
	entry *logrus.Entry
}

func New(levelStr string) *Logger {
	return NewWithOutput(levelStr, os.Stdout)
}

func NewWithOutput(levelStr string, out io.Writer) *Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(parseLevel(levelStr))
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	return &Logger{entry: logrus.NewEntry(l)}
}

func parseLevel(levelStr string) Level {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug":
		return DebugLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

// WithFields returns a child logger that stamps every line with fields.
func (l *Logger) WithFields(fields Fields) *Logger {
	return &Logger{entry: l.entry.WithFields(fields)}
}

func (l *Logger) Level() Level {
	return l.entry.Logger.GetLevel()
}

func (l *Logger) Debug(v ...interface{}) {
	l.entry.Debug(sprint(v...))
}

func (l *Logger) Info(v ...interface{}) {
	l.entry.Info(sprint(v...))
}

func (l *Logger) Warn(v ...interface{}) {
	l.entry.Warn(sprint(v...))
}

func (l *Logger) Error(v ...interface{}) {
	l.entry.Error(sprint(v...))
}

func (l *Logger) Fatal(v ...interface{}) {
	l.entry.Fatal(sprint(v...))
}

func (l *Logger) Debugf(format string, v ...interface{}) {
	l.entry.Debugf(format, v...)
}

func (l *Logger) Infof(format string, v ...interface{}) {
	l.entry.Infof(format, v...)
}

func (l *Logger) Warnf(format string, v ...interface{}) {
	l.entry.Warnf(format, v...)
}

func (l *Logger) Errorf(format string, v ...interface{}) {
	l.entry.Errorf(format, v...)
}

// sprint joins operands with spaces, so "Failed to load:", err reads naturally.
func sprint(v ...interface{}) string {
	return strings.TrimSuffix(fmt.Sprintln(v...), "\n")
}
