// Package config defines the typed configuration of each binary. A config is
// loaded once in main and passed to the handlers it builds.
package config

import (
	"fmt"
	"os"

	"github.com/abirbhav/Dining-Concierge-Chatbot/pkg/config"
	"github.com/abirbhav/Dining-Concierge-Chatbot/pkg/logger"
	"github.com/hashicorp/go-multierror"
)

// ConfigFileEnv names the environment variable pointing at an optional YAML file
const ConfigFileEnv = "CONFIG_FILE"

// RelayConfig configures the Relay handler
type RelayConfig struct {
	config.CommonConfig `yaml:",inline"`
	AWS                 AWSConfig `yaml:"aws,inline"`
	Lex                 LexConfig `yaml:"lex,inline"`
}

// Validate validates the relay configuration
func (c RelayConfig) Validate() error {
	return c.CommonConfig.Validate()
}

// LogConfig logs the loaded configuration (without sensitive data)
func (c RelayConfig) LogConfig(log logger.Logger) {
	log.Info("Relay configuration loaded",
		logger.StringField("service_name", c.ServiceName),
		logger.StringField("log_level", c.LogLevel),
		logger.StringField("bot_name", c.Lex.BotName),
		logger.StringField("bot_alias", c.Lex.BotAlias),
		logger.BoolField("endpoint_override", c.AWS.EndpointURL != ""),
	)
}

// FulfillmentConfig configures the Lex code hook
type FulfillmentConfig struct {
	config.CommonConfig `yaml:",inline"`
	AWS                 AWSConfig    `yaml:"aws,inline"`
	Queue               QueueConfig  `yaml:"queue,inline"`
	Dialog              DialogConfig `yaml:"dialog,inline"`
}

// Validate validates the fulfillment configuration
func (c FulfillmentConfig) Validate() error {
	var result error
	for _, v := range []config.Validator{c.CommonConfig, c.Queue, c.Dialog} {
		if err := v.Validate(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result
}

// LogConfig logs the loaded configuration (without sensitive data)
func (c FulfillmentConfig) LogConfig(log logger.Logger) {
	log.Info("Fulfillment configuration loaded",
		logger.StringField("service_name", c.ServiceName),
		logger.StringField("log_level", c.LogLevel),
		logger.StringField("queue_name", c.Queue.Name),
		logger.StringField("time_zone", c.Dialog.TimeZone),
		logger.BoolField("endpoint_override", c.AWS.EndpointURL != ""),
	)
}

// Notifier invocation modes
const (
	NotifierModeSchedule = "schedule"
	NotifierModeSQS      = "sqs"
)

// NotifierConfig configures the queue drain and digest delivery
type NotifierConfig struct {
	config.CommonConfig `yaml:",inline"`

	// Mode selects a scheduled drain or an SQS event source mapping
	Mode string `env:"NOTIFIER_MODE" yaml:"notifier_mode" default:"schedule"`

	AWS                 AWSConfig         `yaml:"aws,inline"`
	Queue               QueueConfig       `yaml:"queue,inline"`
	Search              SearchConfig      `yaml:"search,inline"`
	Restaurants         RestaurantsConfig `yaml:"restaurants,inline"`
	Mail                MailConfig        `yaml:"mail,inline"`
	Archive             ArchiveConfig     `yaml:"archive,inline"`
}

// Validate validates the notifier configuration
func (c NotifierConfig) Validate() error {
	var result error
	for _, v := range []config.Validator{c.CommonConfig, c.Queue, c.Search} {
		if err := v.Validate(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	if c.Mode != NotifierModeSchedule && c.Mode != NotifierModeSQS {
		result = multierror.Append(result, fmt.Errorf("notifier_mode must be %q or %q, got %q", NotifierModeSchedule, NotifierModeSQS, c.Mode))
	}
	return result
}

// LogConfig logs the loaded configuration (without sensitive data)
func (c NotifierConfig) LogConfig(log logger.Logger) {
	log.Info("Notifier configuration loaded",
		logger.StringField("service_name", c.ServiceName),
		logger.StringField("log_level", c.LogLevel),
		logger.StringField("notifier_mode", c.Mode),
		logger.StringField("queue_name", c.Queue.Name),
		logger.IntField("batch_size", c.Queue.BatchSize),
		logger.DurationField("wait_time", c.Queue.WaitTime),
		logger.StringField("es_index", c.Search.Index),
		logger.IntField("search_limit", c.Search.Limit),
		logger.StringField("restaurant_table", c.Restaurants.Table),
		logger.BoolField("archive_enabled", c.Archive.Enabled()),
		logger.BoolField("endpoint_override", c.AWS.EndpointURL != ""),
	)
}

// DevServerConfig combines every handler's settings for the local HTTP harness
type DevServerConfig struct {
	config.CommonConfig `yaml:",inline"`
	AWS                 AWSConfig               `yaml:"aws,inline"`
	Lex                 LexConfig               `yaml:"lex,inline"`
	Queue               QueueConfig             `yaml:"queue,inline"`
	Dialog              DialogConfig            `yaml:"dialog,inline"`
	Search              SearchConfig            `yaml:"search,inline"`
	Restaurants         RestaurantsConfig       `yaml:"restaurants,inline"`
	Mail                MailConfig              `yaml:"mail,inline"`
	Archive             ArchiveConfig           `yaml:"archive,inline"`
	HTTP                config.HTTPServerConfig `yaml:"http,inline"`
	Metrics             config.MetricsConfig    `yaml:"metrics,inline"`
}

// Validate validates the dev server configuration
func (c DevServerConfig) Validate() error {
	var result error
	for _, v := range []config.Validator{c.Relay(), c.Fulfillment(), c.Notifier(), c.HTTP, c.Metrics} {
		if err := v.Validate(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result
}

// Relay returns the relay view of the dev server configuration
func (c DevServerConfig) Relay() RelayConfig {
	return RelayConfig{CommonConfig: c.CommonConfig, AWS: c.AWS, Lex: c.Lex}
}

// Fulfillment returns the fulfillment view of the dev server configuration
func (c DevServerConfig) Fulfillment() FulfillmentConfig {
	return FulfillmentConfig{CommonConfig: c.CommonConfig, AWS: c.AWS, Queue: c.Queue, Dialog: c.Dialog}
}

// Notifier returns the notifier view of the dev server configuration
func (c DevServerConfig) Notifier() NotifierConfig {
	return NotifierConfig{
		CommonConfig: c.CommonConfig,
		Mode:         NotifierModeSchedule,
		AWS:          c.AWS,
		Queue:        c.Queue,
		Search:       c.Search,
		Restaurants:  c.Restaurants,
		Mail:         c.Mail,
		Archive:      c.Archive,
	}
}

// LogConfig logs the loaded configuration (without sensitive data)
func (c DevServerConfig) LogConfig(log logger.Logger) {
	c.Relay().LogConfig(log)
	c.Fulfillment().LogConfig(log)
	c.Notifier().LogConfig(log)
	log.Info("HTTP configuration loaded",
		logger.IntField("http_port", c.HTTP.Port),
		logger.BoolField("metrics_exposed", c.Metrics.ExposeMetrics),
		logger.IntField("metrics_port", c.Metrics.Port),
	)
}

// Load fills dest from the YAML file named by CONFIG_FILE (if any) and the environment.
func Load[T any](dest *T) error {
	return config.GetConfig(dest, os.Getenv(ConfigFileEnv), false)
}

// NewLogger builds the process logger from the common settings
func NewLogger(c config.CommonConfig) logger.Logger {
	return logger.NewLogger(logger.Config{
		Level:   logger.ParseLevel(c.LogLevel),
		Format:  c.LogFormat,
		Service: c.ServiceName,
	})
}
