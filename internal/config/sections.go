package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/hashicorp/go-multierror"
)

// AWSConfig holds SDK settings shared by every AWS client
type AWSConfig struct {
	Region  string `env:"AWS_REGION" yaml:"aws_region"`
	Profile string `env:"AWS_PROFILE" yaml:"aws_profile"`

	// EndpointURL overrides every service endpoint, e.g. http://localhost:4566 for LocalStack
	EndpointURL string `env:"AWS_ENDPOINT_URL" yaml:"aws_endpoint_url"`
}

// LexConfig identifies the bot the relay forwards text to
type LexConfig struct {
	BotName  string `env:"BOT_NAME" yaml:"bot_name" required:"true"`
	BotAlias string `env:"BOT_ALIAS" yaml:"bot_alias" required:"true"`
	UserID   string `env:"USER_ID" yaml:"user_id" required:"true"`
}

// QueueConfig holds the dining request queue settings
type QueueConfig struct {
	Name string `env:"QUEUE_NAME" yaml:"queue_name" default:"DiningQueue"`

	// BatchSize is the maximum number of messages received per drain (1-10)
	BatchSize int `env:"BATCH_SIZE" yaml:"batch_size" default:"1"`

	// WaitTime enables long polling when non-zero (max 20s)
	WaitTime time.Duration `env:"WAIT_TIME" yaml:"wait_time" default:"0s"`

	// VisibilityTimeout is passed through to ReceiveMessage when non-zero
	VisibilityTimeout time.Duration `env:"VISIBILITY_TIMEOUT" yaml:"visibility_timeout" default:"0s"`
}

// Validate checks QueueConfig against the SQS receive limits
func (q QueueConfig) Validate() error {
	var result error
	if q.Name == "" {
		result = multierror.Append(result, fmt.Errorf("queue_name must not be empty"))
	}
	if q.BatchSize < 1 || q.BatchSize > 10 {
		result = multierror.Append(result, fmt.Errorf("batch_size must be between 1 and 10, got %d", q.BatchSize))
	}
	if q.WaitTime < 0 || q.WaitTime > 20*time.Second {
		result = multierror.Append(result, fmt.Errorf("wait_time must be between 0s and 20s, got %s", q.WaitTime))
	}
	if q.VisibilityTimeout < 0 || q.VisibilityTimeout > 12*time.Hour {
		result = multierror.Append(result, fmt.Errorf("visibility_timeout must be between 0s and 12h, got %s", q.VisibilityTimeout))
	}
	return result
}

// DialogConfig holds settings for slot validation
type DialogConfig struct {
	// TimeZone decides what "today" means when validating the reservation date
	TimeZone string `env:"TIME_ZONE" yaml:"time_zone" default:"America/New_York"`
}

// Location resolves TimeZone
func (d DialogConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(d.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("failed to load time zone %q: %w", d.TimeZone, err)
	}
	return loc, nil
}

// Validate checks that TimeZone names a known location
func (d DialogConfig) Validate() error {
	_, err := d.Location()
	return err
}

// SearchConfig holds the restaurant search index connection
type SearchConfig struct {
	BaseURL  string        `env:"ES_BASE_URL" yaml:"es_base_url" required:"true"`
	Index    string        `env:"ES_INDEX" yaml:"es_index" required:"true"`
	Username string        `env:"ES_USERNAME" yaml:"es_username" required:"true"`
	Password string        `env:"ES_PASSWORD" yaml:"-" required:"true"`
	Timeout  time.Duration `env:"ES_TIMEOUT" yaml:"es_timeout" default:"10s"`

	// Limit is the number of ids requested from the index per message
	Limit int `env:"SEARCH_LIMIT" yaml:"search_limit" default:"5"`
}

// Validate checks SearchConfig for a usable URL and limits
func (s SearchConfig) Validate() error {
	var result error
	if u, err := url.Parse(s.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		result = multierror.Append(result, fmt.Errorf("es_base_url must be an absolute URL, got %q", s.BaseURL))
	}
	if s.Timeout <= 0 {
		result = multierror.Append(result, fmt.Errorf("es_timeout must be greater than 0"))
	}
	if s.Limit < 1 {
		result = multierror.Append(result, fmt.Errorf("search_limit must be at least 1, got %d", s.Limit))
	}
	return result
}

// RestaurantsConfig names the restaurant details table
type RestaurantsConfig struct {
	Table string `env:"RESTAURANT_TABLE" yaml:"restaurant_table" default:"yelp-restaurants"`
}

// MailConfig holds the SES sender and the operator copied on every digest
type MailConfig struct {
	SourceAddress   string `env:"SES_SOURCE_ADDRESS" yaml:"ses_source_address" required:"true"`
	OperatorAddress string `env:"SES_OPERATOR_ADDRESS" yaml:"ses_operator_address" required:"true"`
}

// ArchiveConfig enables copying delivered digests to S3 when Bucket is set
type ArchiveConfig struct {
	Bucket string `env:"ARCHIVE_BUCKET" yaml:"archive_bucket"`
	Prefix string `env:"ARCHIVE_PREFIX" yaml:"archive_prefix" default:"digests/"`
}

// Enabled returns true if an archive bucket is configured
func (a ArchiveConfig) Enabled() bool {
	return a.Bucket != ""
}
