package config

import (
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
)

// HTTPServerConfig holds HTTP server settings for the local development server
type HTTPServerConfig struct {
	Port int `env:"HTTP_PORT" yaml:"http_port" default:"8080"`

	ReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT" yaml:"read_timeout" default:"15s"`
	WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" yaml:"write_timeout" default:"30s"`
	IdleTimeout  time.Duration `env:"HTTP_IDLE_TIMEOUT" yaml:"idle_timeout" default:"60s"`

	// RequestTimeout bounds a single handler invocation
	RequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT" yaml:"request_timeout" default:"25s"`
}

// Validate checks HTTPServerConfig for valid port range and timeouts
func (h HTTPServerConfig) Validate() error {
	var result error
	if h.Port < 1 || h.Port > 65535 {
		result = multierror.Append(result, fmt.Errorf("http port must be between 1-65535, got %d", h.Port))
	}
	if h.RequestTimeout <= 0 {
		result = multierror.Append(result, fmt.Errorf("request_timeout must be greater than 0"))
	}
	return result
}

// Addr returns the listen address for the configured port
func (h HTTPServerConfig) Addr() string {
	return fmt.Sprintf(":%d", h.Port)
}
