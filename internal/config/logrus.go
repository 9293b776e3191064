package config

import (
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	logg     *logrus.Logger
	loggOnce sync.Once
)

// GetLogger builds the process logger on first use. Construction is deferred
// so APP_ENV loaded from .env by main is seen; call it after godotenv.Load.
func GetLogger() *logrus.Logger {
	loggOnce.Do(func() {
		logg = logrus.New()
		logg.SetOutput(os.Stdout)
		if os.Getenv("APP_ENV") == "production" {
			logg.SetFormatter(&logrus.JSONFormatter{})
			logg.SetLevel(logrus.InfoLevel)
		} else {
			logg.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
			logg.SetLevel(logrus.DebugLevel)
		}
	})
	return logg
}
