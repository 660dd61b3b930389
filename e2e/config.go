package e2e

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// E2E_BACKEND_ADDR points the suite at an already running backend.
	// Empty means an in-process devserver is started instead.
	BackendAddr string `envconfig:"E2E_BACKEND_ADDR"`
	// Short debounce keeps the suite fast without changing semantics.
	Debounce time.Duration `envconfig:"E2E_DEBOUNCE" default:"50ms"`
	Timeout  time.Duration `envconfig:"E2E_TIMEOUT" default:"5s"`
	LogLevel string        `envconfig:"E2E_LOG_LEVEL" default:"WARN"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
