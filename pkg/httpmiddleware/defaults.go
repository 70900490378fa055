// Package httpmiddleware assembles the chi middleware stack of the development server.
package httpmiddleware

import (
	"time"

	"github.com/abirbhav/Dining-Concierge-Chatbot/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/unrolled/secure"
)

// Config selects the middleware applied by ApplyToRouter.
type Config struct {
	Logger   logger.Logger
	CORS     *CORSConfig
	Security *secure.Options
	Timeout  time.Duration

	EnableCorrelationID bool
	EnableLogging       bool // requires Logger
	EnableRecovery      bool
	EnableCORS          bool
	EnableSecurity      bool
	EnableRealIP        bool
	EnableTimeout       bool
	EnableHeartbeat     bool // answers /ping
}

// DefaultConfig enables everything except logging, which needs a Logger.
func DefaultConfig() Config {
	corsConfig := DefaultCORSConfig()
	return Config{
		CORS:                &corsConfig,
		Timeout:             30 * time.Second,
		EnableCorrelationID: true,
		EnableRecovery:      true,
		EnableCORS:          true,
		EnableSecurity:      true,
		EnableRealIP:        true,
		EnableTimeout:       true,
		EnableHeartbeat:     true,
	}
}

// ApplyToRouter installs the enabled middleware, outermost first:
// correlation id, security headers, real IP, logging, recovery, CORS, timeout, heartbeat.
func ApplyToRouter(router chi.Router, config Config) {
	if config.EnableCorrelationID {
		router.Use(CorrelationID())
	}
	if config.EnableSecurity {
		router.Use(Security(config.Security))
	}
	if config.EnableRealIP {
		router.Use(middleware.RealIP)
	}
	if config.EnableLogging && config.Logger != nil {
		router.Use(config.Logger.HTTPMiddleware)
	}
	if config.EnableRecovery {
		router.Use(middleware.Recoverer)
	}
	if config.EnableCORS && config.CORS != nil {
		router.Use(CORS(*config.CORS))
	}
	if config.EnableTimeout && config.Timeout > 0 {
		router.Use(middleware.Timeout(config.Timeout))
	}
	if config.EnableHeartbeat {
		router.Use(middleware.Heartbeat("/ping"))
	}
}

// WithLogger applies DefaultConfig with request logging through log.
func WithLogger(router chi.Router, log logger.Logger) {
	config := DefaultConfig()
	config.Logger = log
	config.EnableLogging = true
	ApplyToRouter(router, config)
}
