// Package awsclients loads the AWS SDK configuration and builds the service
// clients used by the handlers.
package awsclients

import (
	"context"
	"errors"
	"fmt"

	"github.com/abirbhav/Dining-Concierge-Chatbot/internal/config"
	"github.com/abirbhav/Dining-Concierge-Chatbot/pkg/logger"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/lexruntimeservice"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/smithy-go"
)

// LoadOptions converts AWSConfig into SDK load options.
func LoadOptions(cfg config.AWSConfig) []func(*awsconfig.LoadOptions) error {
	configOptions := []func(*awsconfig.LoadOptions) error{}

	if cfg.Profile != "" {
		configOptions = append(configOptions, awsconfig.WithSharedConfigProfile(cfg.Profile))
	}

	if cfg.Region != "" {
		configOptions = append(configOptions, awsconfig.WithRegion(cfg.Region))
	}

	if cfg.EndpointURL != "" {
		configOptions = append(configOptions, awsconfig.WithBaseEndpoint(cfg.EndpointURL))
	}

	return configOptions
}

// Load resolves credentials and region from the default chain plus overrides in cfg.
func Load(ctx context.Context, cfg config.AWSConfig) (aws.Config, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, LoadOptions(cfg)...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return awsCfg, nil
}

// Clients groups the service clients built from a single aws.Config.
// Clients are constructed lazily so each binary only pays for what it uses.
type Clients struct {
	cfg       aws.Config
	pathStyle bool
}

// New returns a Clients for awsCfg. pathStyle forces S3 path-style addressing, which
// local emulators require.
func New(awsCfg aws.Config, pathStyle bool) *Clients {
	return &Clients{cfg: awsCfg, pathStyle: pathStyle}
}

// FromConfig loads the SDK configuration and wraps it.
func FromConfig(ctx context.Context, cfg config.AWSConfig) (*Clients, error) {
	awsCfg, err := Load(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return New(awsCfg, cfg.EndpointURL != ""), nil
}

func (c *Clients) Lex() *lexruntimeservice.Client {
	return lexruntimeservice.NewFromConfig(c.cfg)
}

func (c *Clients) SQS() *sqs.Client {
	return sqs.NewFromConfig(c.cfg)
}

func (c *Clients) DynamoDB() *dynamodb.Client {
	return dynamodb.NewFromConfig(c.cfg)
}

func (c *Clients) SES() *sesv2.Client {
	return sesv2.NewFromConfig(c.cfg)
}

func (c *Clients) S3() *s3.Client {
	return s3.NewFromConfig(c.cfg, func(o *s3.Options) {
		o.UsePathStyle = c.pathStyle
	})
}

// ErrorCode returns the service error code carried by err, or "" when err did not
// come from an AWS API.
func ErrorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}

// ErrorFields returns log fields describing err, including the service error code when known.
func ErrorFields(err error) []logger.LogField {
	fields := []logger.LogField{logger.ErrorField(err)}
	if code := ErrorCode(err); code != "" {
		fields = append(fields, logger.StringField("error_code", code))
	}
	return fields
}
