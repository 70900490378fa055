// Package archive keeps a copy of every delivered digest in S3.
package archive

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Archiver stores a delivered digest body.
type Archiver interface {
	Archive(ctx context.Context, requestID string, deliveredAt time.Time, body string) error
}

// S3API is the subset of the S3 client used by S3Archiver.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Archiver writes digests to {prefix}{yyyy/mm/dd}/{request_id}.txt.
type S3Archiver struct {
	client S3API
	bucket string
	prefix string
}

// NewS3Archiver returns an archiver writing to bucket under prefix.
func NewS3Archiver(client S3API, bucket, prefix string) *S3Archiver {
	return &S3Archiver{client: client, bucket: bucket, prefix: prefix}
}

// Key returns the object key for a digest.
func Key(prefix, requestID string, deliveredAt time.Time) string {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return prefix + path.Join(deliveredAt.UTC().Format("2006/01/02"), requestID+".txt")
}

// Archive uploads body as a text object.
func (a *S3Archiver) Archive(ctx context.Context, requestID string, deliveredAt time.Time, body string) error {
	key := Key(a.prefix, requestID, deliveredAt)
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        strings.NewReader(body),
		ContentType: aws.String("text/plain; charset=utf-8"),
	})
	if err != nil {
		return fmt.Errorf("failed to put object %s to bucket %s: %w", key, a.bucket, err)
	}
	return nil
}

// Nop discards digests. It is used when no archive bucket is configured.
type Nop struct{}

func (Nop) Archive(context.Context, string, time.Time, string) error { return nil }
