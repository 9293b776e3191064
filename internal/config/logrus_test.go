package config

import (
	"testing"

	"github.com/sirupsen/logrus"
)

func TestGetLoggerHonorsEnvSetAfterImport(t *testing.T) {
	// package import must not have frozen the formatter already; the env var
	// is set here, long after init, and must still take effect
	t.Setenv("APP_ENV", "production")

	log := GetLogger()
	if log == nil {
		t.Fatal("nil logger")
	}
	if _, ok := log.Formatter.(*logrus.JSONFormatter); !ok {
		t.Errorf("formatter = %T, want JSON in production", log.Formatter)
	}
	if log.Level != logrus.InfoLevel {
		t.Errorf("level = %v, want info in production", log.Level)
	}

	if GetLogger() != log {
		t.Error("GetLogger must return the same instance")
	}
}
