package queue

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// SQSAPI is the subset of the SQS client used by Queue.
type SQSAPI interface {
	GetQueueUrl(ctx context.Context, params *sqs.GetQueueUrlInput, optFns ...func(*sqs.Options)) (*sqs.GetQueueUrlOutput, error)
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// Message is one received queue message.
type Message struct {
	ID            string
	ReceiptHandle string
	Body          string
	SchemaVersion string
	ReceiveCount  int
}

// ReceiveOptions controls a single ReceiveMessage call. Zero durations leave the
// queue defaults in place.
type ReceiveOptions struct {
	MaxMessages       int
	WaitTime          time.Duration
	VisibilityTimeout time.Duration
}

// Queue publishes and consumes dining requests on a named SQS queue. The queue URL
// is resolved on first use and cached for the life of the process.
type Queue struct {
	client SQSAPI
	name   string

	mu  sync.Mutex
	url string
}

// New returns a Queue for the queue called name.
func New(client SQSAPI, name string) *Queue {
	return &Queue{client: client, name: name}
}

// Name returns the queue name.
func (q *Queue) Name() string {
	return q.name
}

// URL resolves the queue URL by name. A failed lookup is retried on the next call.
func (q *Queue) URL(ctx context.Context) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.url != "" {
		return q.url, nil
	}

	out, err := q.client.GetQueueUrl(ctx, &sqs.GetQueueUrlInput{QueueName: aws.String(q.name)})
	if err != nil {
		return "", fmt.Errorf("failed to get url of queue %s: %w", q.name, err)
	}
	q.url = aws.ToString(out.QueueUrl)
	return q.url, nil
}

// Publish sends req as one message and returns the SQS message id.
func (q *Queue) Publish(ctx context.Context, req DiningRequest) (string, error) {
	url, err := q.URL(ctx)
	if err != nil {
		return "", err
	}

	body, err := Encode(req)
	if err != nil {
		return "", err
	}

	out, err := q.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(url),
		MessageBody: aws.String(body),
		MessageAttributes: map[string]types.MessageAttributeValue{
			SchemaVersionAttribute: {
				DataType:    aws.String("String"),
				StringValue: aws.String(SchemaVersion),
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to send message to queue %s: %w", q.name, err)
	}
	return aws.ToString(out.MessageId), nil
}

// Receive fetches up to opts.MaxMessages messages.
func (q *Queue) Receive(ctx context.Context, opts ReceiveOptions) ([]Message, error) {
	url, err := q.URL(ctx)
	if err != nil {
		return nil, err
	}

	maxMessages := opts.MaxMessages
	if maxMessages < 1 {
		maxMessages = 1
	}

	input := &sqs.ReceiveMessageInput{
		QueueUrl:                    aws.String(url),
		MaxNumberOfMessages:         int32(maxMessages),
		WaitTimeSeconds:             int32(opts.WaitTime / time.Second),
		MessageAttributeNames:       []string{SchemaVersionAttribute},
		MessageSystemAttributeNames: []types.MessageSystemAttributeName{types.MessageSystemAttributeNameApproximateReceiveCount},
	}
	if opts.VisibilityTimeout > 0 {
		input.VisibilityTimeout = int32(opts.VisibilityTimeout / time.Second)
	}

	out, err := q.client.ReceiveMessage(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to receive messages from queue %s: %w", q.name, err)
	}

	messages := make([]Message, 0, len(out.Messages))
	for _, m := range out.Messages {
		msg := Message{
			ID:            aws.ToString(m.MessageId),
			ReceiptHandle: aws.ToString(m.ReceiptHandle),
			Body:          aws.ToString(m.Body),
		}
		if attr, ok := m.MessageAttributes[SchemaVersionAttribute]; ok {
			msg.SchemaVersion = aws.ToString(attr.StringValue)
		}
		if count, err := strconv.Atoi(m.Attributes[string(types.MessageSystemAttributeNameApproximateReceiveCount)]); err == nil {
			msg.ReceiveCount = count
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// Delete removes a received message so it is not redelivered.
func (q *Queue) Delete(ctx context.Context, receiptHandle string) error {
	url, err := q.URL(ctx)
	if err != nil {
		return err
	}

	_, err = q.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(url),
		ReceiptHandle: aws.String(receiptHandle),
	})
	if err != nil {
		return fmt.Errorf("failed to delete message from queue %s: %w", q.name, err)
	}
	return nil
}
