// Package relay forwards free text from the chat front end to the Lex runtime
// and returns the bot's reply in the same message envelope.
package relay

import (
	"context"
	"errors"
	"fmt"

	"github.com/abirbhav/Dining-Concierge-Chatbot/internal/awsclients"
	"github.com/abirbhav/Dining-Concierge-Chatbot/internal/config"
	"github.com/abirbhav/Dining-Concierge-Chatbot/pkg/logger"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lexruntimeservice"
)

// MessageTypeUnstructured is the only message type the front end sends.
const MessageTypeUnstructured = "unstructured"

// ErrEmptyRequest is returned when the envelope carries no messages.
var ErrEmptyRequest = errors.New("request contains no messages")

// LexRuntime is the subset of the Lex runtime client used by the relay.
type LexRuntime interface {
	PostText(ctx context.Context, params *lexruntimeservice.PostTextInput, optFns ...func(*lexruntimeservice.Options)) (*lexruntimeservice.PostTextOutput, error)
}

// Unstructured holds free text.
type Unstructured struct {
	Text string `json:"text"`
}

// Message is one entry of the envelope.
type Message struct {
	Type         string       `json:"type"`
	Unstructured Unstructured `json:"unstructured"`
}

// Envelope is both the request and the response body.
type Envelope struct {
	Messages []Message `json:"messages"`
}

// NewEnvelope wraps text in a single unstructured message.
func NewEnvelope(text string) Envelope {
	return Envelope{Messages: []Message{{Type: MessageTypeUnstructured, Unstructured: Unstructured{Text: text}}}}
}

// Handler relays one user utterance per invocation.
type Handler struct {
	lex    LexRuntime
	cfg    config.LexConfig
	logger logger.Logger
}

// NewHandler returns a Handler posting to the bot described by cfg.
func NewHandler(lex LexRuntime, cfg config.LexConfig, log logger.Logger) *Handler {
	return &Handler{lex: lex, cfg: cfg, logger: log}
}

// Handle posts the text of the first message to Lex and wraps the reply.
// Messages after the first are ignored.
func (h *Handler) Handle(ctx context.Context, req Envelope) (Envelope, error) {
	log := logger.GetLoggerFromContext(ctx, h.logger)

	if len(req.Messages) == 0 {
		return Envelope{}, ErrEmptyRequest
	}
	text := req.Messages[0].Unstructured.Text
	log.Debug("Relaying message to Lex", logger.IntField("text_length", len(text)))

	out, err := h.lex.PostText(ctx, &lexruntimeservice.PostTextInput{
		BotName:   aws.String(h.cfg.BotName),
		BotAlias:  aws.String(h.cfg.BotAlias),
		UserId:    aws.String(h.cfg.UserID),
		InputText: aws.String(text),
	})
	if err != nil {
		log.Error("Lex PostText failed", awsclients.ErrorFields(err)...)
		return Envelope{}, fmt.Errorf("failed to post text to lex: %w", err)
	}

	log.Info("Lex replied",
		logger.StringField("intent", aws.ToString(out.IntentName)),
		logger.StringField("dialog_state", string(out.DialogState)),
	)
	return NewEnvelope(aws.ToString(out.Message)), nil
}
