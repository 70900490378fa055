// Package fulfillment implements the Lex code hook: intent dispatch, slot
// validation during the dialog and enqueueing of confirmed dining requests.
package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/abirbhav/Dining-Concierge-Chatbot/internal/dialog"
	"github.com/abirbhav/Dining-Concierge-Chatbot/internal/queue"
	"github.com/abirbhav/Dining-Concierge-Chatbot/internal/validation"
	"github.com/abirbhav/Dining-Concierge-Chatbot/pkg/logger"
	"github.com/aws/aws-lambda-go/events"
)

// Fixed replies
const (
	MsgGreeting  = "Hi there, how can I help?"
	MsgThankYou  = "No problem. Thank you for using the dining concierge bot."
	MsgFulfilled = "I will send my suggestions to the email address you provided shortly"
)

// ErrUnsupportedIntent is wrapped by UnsupportedIntentError.
var ErrUnsupportedIntent = errors.New("intent not supported")

// UnsupportedIntentError reports an intent outside the handled set.
type UnsupportedIntentError struct {
	Intent string
}

func (e *UnsupportedIntentError) Error() string {
	return fmt.Sprintf("intent with name %q not supported", e.Intent)
}

func (e *UnsupportedIntentError) Unwrap() error {
	return ErrUnsupportedIntent
}

// Publisher enqueues a confirmed dining request.
type Publisher interface {
	Publish(ctx context.Context, req queue.DiningRequest) (string, error)
}

// Handler answers Lex code-hook invocations.
type Handler struct {
	publisher Publisher
	validator *validation.Validator
	now       validation.Clock
	logger    logger.Logger
}

// NewHandler returns a Handler. A nil now means time.Now.
func NewHandler(publisher Publisher, validator *validation.Validator, now validation.Clock, log logger.Logger) *Handler {
	if now == nil {
		now = time.Now
	}
	return &Handler{publisher: publisher, validator: validator, now: now, logger: log}
}

// Handle dispatches on the current intent.
func (h *Handler) Handle(ctx context.Context, req dialog.Request) (dialog.Response, error) {
	log := logger.GetLoggerFromContext(ctx, h.logger).WithFields(
		logger.StringField("intent", req.IntentName()),
		logger.StringField("invocation_source", req.InvocationSource),
		logger.StringField("user_id", req.UserID),
	)
	log.Debug("Code hook invoked")

	switch req.IntentName() {
	case dialog.IntentGreeting:
		return dialog.ElicitIntent{SessionAttributes: req.SessionAttributes, Message: MsgGreeting}, nil
	case dialog.IntentThankYou:
		return dialog.Close{SessionAttributes: req.SessionAttributes, FulfillmentState: dialog.Fulfilled, Message: MsgThankYou}, nil
	case dialog.IntentDiningSuggestions:
		return h.diningSuggestions(ctx, log, req)
	default:
		log.Warn("Unsupported intent")
		return nil, &UnsupportedIntentError{Intent: req.IntentName()}
	}
}

// HandleLex adapts Handle to the aws-lambda-go Lex event types.
func (h *Handler) HandleLex(ctx context.Context, event events.LexEvent) (events.LexResponse, error) {
	resp, err := h.Handle(ctx, dialog.Request{LexEvent: event})
	if err != nil {
		return events.LexResponse{}, err
	}
	return resp.LexResponse(), nil
}

func (h *Handler) diningSuggestions(ctx context.Context, log logger.Logger, req dialog.Request) (dialog.Response, error) {
	slots, err := req.SlotSet()
	if err != nil {
		return nil, err
	}

	if req.InvocationSource == dialog.SourceDialogCodeHook {
		result := h.validator.Validate(slots)
		if !result.Valid {
			log.Info("Slot failed validation",
				logger.StringField("violated_slot", result.ViolatedSlot),
				logger.Field("filled_slots", slots.Filled()),
			)
			return dialog.ElicitSlot{
				SessionAttributes: req.SessionAttributes,
				IntentName:        req.IntentName(),
				Slots:             dialog.WithoutSlot(req.Slots(), result.ViolatedSlot),
				SlotToElicit:      result.ViolatedSlot,
				Message:           result.Message,
			}, nil
		}
		log.Debug("Slots valid, delegating", logger.Field("filled_slots", slots.Filled()))
		return dialog.Delegate{SessionAttributes: req.SessionAttributes, Slots: req.Slots()}, nil
	}

	dining := queue.FromSlots(slots, h.now())
	messageID, err := h.publisher.Publish(ctx, dining)
	if err != nil {
		log.Error("Failed to enqueue dining request",
			logger.StringField("request_id", dining.RequestID),
			logger.ErrorField(err),
		)
		return nil, fmt.Errorf("failed to enqueue dining request: %w", err)
	}
	log.Info("Dining request enqueued",
		logger.StringField("request_id", dining.RequestID),
		logger.StringField("message_id", messageID),
	)

	return dialog.Close{SessionAttributes: req.SessionAttributes, FulfillmentState: dialog.Fulfilled, Message: MsgFulfilled}, nil
}
