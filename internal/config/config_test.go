package config_test

import (
	"testing"
	"time"

	"github.com/SAGARSINGH-1/HostelCMS/internal/config"
)

func TestRequestTimeout(t *testing.T) {
	app := config.AppConfig{RequestTimeoutSeconds: 30}
	if got := app.RequestTimeout(); got != 30*time.Second {
		t.Fatalf("expected 30s, got %v", got)
	}
}

func TestRequestTimeoutDisabled(t *testing.T) {
	app := config.AppConfig{RequestTimeoutSeconds: 0}
	if got := app.RequestTimeout(); got != 0 {
		t.Fatalf("expected zero duration, got %v", got)
	}
}
