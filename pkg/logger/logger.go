package logger

import (
	"os"
	"sync"

	charmlog "github.com/charmbracelet/log"
)

var (
	std  *charmlog.Logger
	once sync.Once
)

// Init configures the process-wide logger. Safe to call more than once.
func Init() {
	once.Do(func() {
		std = charmlog.NewWithOptions(os.Stderr, charmlog.Options{
			ReportTimestamp: true,
		})
		if os.Getenv("APP_ENV") == "development" {
			std.SetLevel(charmlog.DebugLevel)
		}
	})
}

func get() *charmlog.Logger {
	Init()
	return std
}

func Debug(msg any, keyvals ...any) {
	get().Debug(msg, keyvals...)
}

func Info(msg any, keyvals ...any) {
	get().Info(msg, keyvals...)
}

func Warn(msg any, keyvals ...any) {
	get().Warn(msg, keyvals...)
}

func Error(msg any, keyvals ...any) {
	get().Error(msg, keyvals...)
}
