package logger

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// New builds the service logger. Local environments get a colored text
// console, everything else JSON; level comes from LOG_LEVEL.
func New() *logrus.Logger {
	log := logrus.New()

	env := os.Getenv("ENVIRONMENT")
	if env == "" || env == "local" {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
			ForceColors:     true,
		})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339,
		})
	}

	log.SetOutput(os.Stdout)

	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		log.SetLevel(logrus.DebugLevel)
	case "warn":
		log.SetLevel(logrus.WarnLevel)
	case "error":
		log.SetLevel(logrus.ErrorLevel)
	default:
		log.SetLevel(logrus.InfoLevel)
	}

	return log
}
