// Package notifier drains the dining request queue: for each request it looks up
// restaurants, emails a digest of suggestions and deletes the message. A message is
// only deleted after its email was sent; anything that fails earlier stays in the
// queue and is redelivered.
package notifier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/abirbhav/Dining-Concierge-Chatbot/internal/archive"
	"github.com/abirbhav/Dining-Concierge-Chatbot/internal/awsclients"
	"github.com/abirbhav/Dining-Concierge-Chatbot/internal/mailer"
	"github.com/abirbhav/Dining-Concierge-Chatbot/internal/queue"
	"github.com/abirbhav/Dining-Concierge-Chatbot/internal/restaurants"
	"github.com/abirbhav/Dining-Concierge-Chatbot/pkg/logger"
	"github.com/aws/aws-lambda-go/events"
	"github.com/hashicorp/go-multierror"
)

// MaxSuggestions caps the entries of a digest
const MaxSuggestions = 3

// Consumer receives and deletes queue messages.
type Consumer interface {
	Receive(ctx context.Context, opts queue.ReceiveOptions) ([]queue.Message, error)
	Delete(ctx context.Context, receiptHandle string) error
}

// Searcher returns restaurant ids matching a term.
type Searcher interface {
	SearchIDs(ctx context.Context, term string, limit int) ([]string, error)
}

// RestaurantStore returns restaurant details by id.
type RestaurantStore interface {
	Get(ctx context.Context, businessID string) (restaurants.Record, error)
}

// Sender delivers an email.
type Sender interface {
	Send(ctx context.Context, email mailer.Email) (string, error)
}

// Recorder observes message outcomes.
type Recorder interface {
	MessageDelivered()
	MessageFailed()
	MessageMalformed()
}

type nopRecorder struct{}

func (nopRecorder) MessageDelivered() {}
func (nopRecorder) MessageFailed()    {}
func (nopRecorder) MessageMalformed() {}

// Config wires a Notifier. Queue, Search, Restaurants, Mailer and Logger are required.
type Config struct {
	Queue       Consumer
	Search      Searcher
	Restaurants RestaurantStore
	Mailer      Sender
	Archiver    archive.Archiver
	Recorder    Recorder
	Logger      logger.Logger

	Receive        queue.ReceiveOptions
	SearchLimit    int
	MaxSuggestions int
	Now            func() time.Time
}

// DrainResult counts the outcome of one drain.
type DrainResult struct {
	Received  int `json:"received"`
	Delivered int `json:"delivered"`
	Malformed int `json:"malformed"`
	Failed    int `json:"failed"`
}

// Notifier processes dining requests.
type Notifier struct {
	cfg Config
}

// New validates cfg and fills defaults.
func New(cfg Config) (*Notifier, error) {
	var result error
	if cfg.Queue == nil {
		result = multierror.Append(result, errors.New("queue is required"))
	}
	if cfg.Search == nil {
		result = multierror.Append(result, errors.New("search client is required"))
	}
	if cfg.Restaurants == nil {
		result = multierror.Append(result, errors.New("restaurant store is required"))
	}
	if cfg.Mailer == nil {
		result = multierror.Append(result, errors.New("mailer is required"))
	}
	if cfg.Logger == nil {
		result = multierror.Append(result, errors.New("logger is required"))
	}
	if result != nil {
		return nil, fmt.Errorf("failed to create notifier: %w", result)
	}

	if cfg.Archiver == nil {
		cfg.Archiver = archive.Nop{}
	}
	if cfg.Recorder == nil {
		cfg.Recorder = nopRecorder{}
	}
	if cfg.Receive.MaxMessages < 1 {
		cfg.Receive.MaxMessages = 1
	}
	if cfg.SearchLimit < 1 {
		cfg.SearchLimit = 5
	}
	if cfg.MaxSuggestions < 1 || cfg.MaxSuggestions > MaxSuggestions {
		cfg.MaxSuggestions = MaxSuggestions
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Notifier{cfg: cfg}, nil
}

// Drain receives one batch and processes every message in it. Malformed messages are
// counted and left for the queue's redrive policy. Upstream failures are returned
// together once the whole batch was attempted.
func (n *Notifier) Drain(ctx context.Context) (DrainResult, error) {
	log := logger.GetLoggerFromContext(ctx, n.cfg.Logger)

	var result DrainResult
	messages, err := n.cfg.Queue.Receive(ctx, n.cfg.Receive)
	if err != nil {
		log.Error("Failed to receive messages", awsclients.ErrorFields(err)...)
		return result, err
	}
	result.Received = len(messages)

	var errs error
	for _, msg := range messages {
		msgLog := log.WithFields(
			logger.StringField("message_id", msg.ID),
			logger.IntField("receive_count", msg.ReceiveCount),
		)

		if err := n.deliver(ctx, msgLog, msg.Body); err != nil {
			if errors.Is(err, queue.ErrMalformedMessage) {
				result.Malformed++
				n.cfg.Recorder.MessageMalformed()
				msgLog.Warn("Leaving malformed message in queue", logger.ErrorField(err))
				continue
			}
			result.Failed++
			n.cfg.Recorder.MessageFailed()
			msgLog.Error("Failed to process message", awsclients.ErrorFields(err)...)
			errs = multierror.Append(errs, fmt.Errorf("message %s: %w", msg.ID, err))
			continue
		}

		if err := n.cfg.Queue.Delete(ctx, msg.ReceiptHandle); err != nil {
			result.Failed++
			n.cfg.Recorder.MessageFailed()
			msgLog.Error("Failed to delete delivered message", awsclients.ErrorFields(err)...)
			errs = multierror.Append(errs, fmt.Errorf("message %s: %w", msg.ID, err))
			continue
		}
		result.Delivered++
		n.cfg.Recorder.MessageDelivered()
	}

	log.Info("Drain finished",
		logger.IntField("received", result.Received),
		logger.IntField("delivered", result.Delivered),
		logger.IntField("malformed", result.Malformed),
		logger.IntField("failed", result.Failed),
	)
	return result, errs
}

// HandleSQSEvent processes messages delivered by an SQS event source mapping. The
// runtime deletes the messages that are not reported back as batch item failures.
func (n *Notifier) HandleSQSEvent(ctx context.Context, event events.SQSEvent) (events.SQSEventResponse, error) {
	log := logger.GetLoggerFromContext(ctx, n.cfg.Logger)

	var resp events.SQSEventResponse
	for _, record := range event.Records {
		msgLog := log.WithFields(logger.StringField("message_id", record.MessageId))

		err := n.deliver(ctx, msgLog, record.Body)
		switch {
		case err == nil:
			n.cfg.Recorder.MessageDelivered()
			continue
		case errors.Is(err, queue.ErrMalformedMessage):
			n.cfg.Recorder.MessageMalformed()
			msgLog.Warn("Reporting malformed message", logger.ErrorField(err))
		default:
			n.cfg.Recorder.MessageFailed()
			msgLog.Error("Failed to process message", awsclients.ErrorFields(err)...)
		}
		resp.BatchItemFailures = append(resp.BatchItemFailures, events.SQSBatchItemFailure{ItemIdentifier: record.MessageId})
	}

	log.Info("SQS batch finished",
		logger.IntField("received", len(event.Records)),
		logger.IntField("failed", len(resp.BatchItemFailures)),
	)
	return resp, nil
}

// deliver runs the pipeline for one message body up to and including the email.
func (n *Notifier) deliver(ctx context.Context, log logger.Logger, body string) error {
	req, err := queue.Decode(body)
	if err != nil {
		return err
	}
	log = log.WithFields(logger.StringField("request_id", req.RequestID))

	entries, err := n.suggestions(ctx, log, req.Cuisine)
	if err != nil {
		return err
	}

	digest := BuildDigest(req, entries)
	sesID, err := n.cfg.Mailer.Send(ctx, mailer.Email{To: req.Email, Subject: digest.Subject, Body: digest.Body})
	if err != nil {
		return err
	}
	log.Info("Digest sent",
		logger.StringField("ses_message_id", sesID),
		logger.IntField("suggestions", len(digest.Entries)),
	)

	if err := n.cfg.Archiver.Archive(ctx, req.RequestID, n.cfg.Now(), digest.Body); err != nil {
		log.Warn("Failed to archive digest", awsclients.ErrorFields(err)...)
	}
	return nil
}

// suggestions resolves search hits in order until MaxSuggestions records are found.
// Ids without a record are skipped.
func (n *Notifier) suggestions(ctx context.Context, log logger.Logger, cuisine string) ([]restaurants.Record, error) {
	ids, err := n.cfg.Search.SearchIDs(ctx, cuisine, n.cfg.SearchLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to search restaurants: %w", err)
	}

	entries := make([]restaurants.Record, 0, n.cfg.MaxSuggestions)
	for _, id := range ids {
		if len(entries) == n.cfg.MaxSuggestions {
			break
		}
		record, err := n.cfg.Restaurants.Get(ctx, id)
		if errors.Is(err, restaurants.ErrNotFound) {
			log.Debug("Search hit has no restaurant record", logger.StringField("business_id", id))
			continue
		}
		if err != nil {
			return nil, err
		}
		entries = append(entries, record)
	}
	return entries, nil
}
