package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

var Log = logrus.StandardLogger()

// InitLogger configures the shared logger. Packages that log through the
// logrus package functions pick up the same settings.
func InitLogger(level string) {
	Log = logrus.StandardLogger()

	// Output to stdout instead of the default stderr
	Log.SetOutput(os.Stdout)

	// Set JSON formatter for structured logging
	Log.SetFormatter(&logrus.JSONFormatter{})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)
}
