package awsclients

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/abirbhav/Dining-Concierge-Chatbot/internal/config"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOptions(t *testing.T) {
	assert.Empty(t, LoadOptions(config.AWSConfig{}))
	assert.Len(t, LoadOptions(config.AWSConfig{Region: "us-east-1"}), 1)
	assert.Len(t, LoadOptions(config.AWSConfig{Region: "us-east-1", Profile: "dev", EndpointURL: "http://localhost:4566"}), 3)
}

func TestLoadAppliesOverrides(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")
	t.Setenv("AWS_CONFIG_FILE", "/dev/null")
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", "/dev/null")

	awsCfg, err := Load(context.Background(), config.AWSConfig{Region: "eu-west-1", EndpointURL: "http://localhost:4566"})
	require.NoError(t, err)
	assert.Equal(t, "eu-west-1", awsCfg.Region)
	require.NotNil(t, awsCfg.BaseEndpoint)
	assert.Equal(t, "http://localhost:4566", aws.ToString(awsCfg.BaseEndpoint))

	clients := New(awsCfg, true)
	assert.NotNil(t, clients.SQS())
	assert.NotNil(t, clients.S3())
}

func TestErrorCode(t *testing.T) {
	apiErr := &smithy.GenericAPIError{Code: "QueueDoesNotExist", Message: "no such queue"}
	wrapped := fmt.Errorf("failed to resolve queue: %w", apiErr)

	assert.Equal(t, "QueueDoesNotExist", ErrorCode(wrapped))
	assert.Equal(t, "", ErrorCode(errors.New("plain")))

	fields := ErrorFields(wrapped)
	require.Len(t, fields, 2)
	assert.Equal(t, "error_code", fields[1].Key)
	assert.Len(t, ErrorFields(errors.New("plain")), 1)
}
