// Package devserver exposes the relay, fulfillment and notifier handlers over plain
// HTTP so the whole flow can be exercised locally without API Gateway or Lambda.
package devserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/abirbhav/Dining-Concierge-Chatbot/internal/dialog"
	"github.com/abirbhav/Dining-Concierge-Chatbot/internal/fulfillment"
	"github.com/abirbhav/Dining-Concierge-Chatbot/internal/notifier"
	"github.com/abirbhav/Dining-Concierge-Chatbot/internal/relay"
	"github.com/abirbhav/Dining-Concierge-Chatbot/pkg/health"
	"github.com/abirbhav/Dining-Concierge-Chatbot/pkg/httpmiddleware"
	"github.com/abirbhav/Dining-Concierge-Chatbot/pkg/logger"
	"github.com/abirbhav/Dining-Concierge-Chatbot/pkg/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/hashicorp/go-multierror"
)

// Relay answers chat front end requests.
type Relay interface {
	Handle(ctx context.Context, req relay.Envelope) (relay.Envelope, error)
}

// Fulfillment answers Lex code hook events.
type Fulfillment interface {
	Handle(ctx context.Context, req dialog.Request) (dialog.Response, error)
}

// Drainer processes one batch of queued dining requests.
type Drainer interface {
	Drain(ctx context.Context) (notifier.DrainResult, error)
}

// Config wires the router. Relay, Fulfillment, Notifier and Logger are required.
type Config struct {
	Relay          Relay
	Fulfillment    Fulfillment
	Notifier       Drainer
	Health         *health.Checker
	Metrics        *metrics.Metrics
	Logger         logger.Logger
	RequestTimeout time.Duration
}

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Error string `json:"error"`
}

// DrainResponse is the body of POST /notifier/drain.
type DrainResponse struct {
	Result notifier.DrainResult `json:"result"`
	Error  string               `json:"error,omitempty"`
}

type server struct {
	cfg Config
}

// NewRouter builds the chi router with the standard middleware stack.
func NewRouter(cfg Config) (chi.Router, error) {
	var result error
	if cfg.Relay == nil {
		result = multierror.Append(result, errors.New("relay handler is required"))
	}
	if cfg.Fulfillment == nil {
		result = multierror.Append(result, errors.New("fulfillment handler is required"))
	}
	if cfg.Notifier == nil {
		result = multierror.Append(result, errors.New("notifier is required"))
	}
	if cfg.Logger == nil {
		result = multierror.Append(result, errors.New("logger is required"))
	}
	if result != nil {
		return nil, fmt.Errorf("failed to create dev server router: %w", result)
	}
	if cfg.Health == nil {
		cfg.Health = health.New(health.WithLogger(cfg.Logger))
	}

	s := &server{cfg: cfg}
	router := chi.NewRouter()

	mwConfig := httpmiddleware.DefaultConfig()
	mwConfig.Logger = cfg.Logger
	mwConfig.EnableLogging = true
	if cfg.RequestTimeout > 0 {
		mwConfig.Timeout = cfg.RequestTimeout
	}
	httpmiddleware.ApplyToRouter(router, mwConfig)
	if cfg.Metrics != nil {
		router.Use(cfg.Metrics.HTTPMiddleware())
	}

	router.Post("/relay", s.handleRelay)
	router.Post("/fulfillment", s.handleFulfillment)
	router.Post("/notifier/drain", s.handleDrain)
	router.Get("/health/live", cfg.Health.LivenessHandler())
	router.Get("/health/ready", cfg.Health.ReadinessHandler())

	return router, nil
}

func (s *server) handleRelay(w http.ResponseWriter, r *http.Request) {
	var req relay.Envelope
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	resp, err := s.cfg.Relay.Handle(r.Context(), req)
	if err != nil {
		code := http.StatusBadGateway
		if errors.Is(err, relay.ErrEmptyRequest) {
			code = http.StatusBadRequest
		}
		writeError(w, code, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *server) handleFulfillment(w http.ResponseWriter, r *http.Request) {
	var req dialog.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	resp, err := s.cfg.Fulfillment.Handle(r.Context(), req)
	if err != nil {
		code := http.StatusBadGateway
		if errors.Is(err, fulfillment.ErrUnsupportedIntent) {
			code = http.StatusUnprocessableEntity
		}
		writeError(w, code, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *server) handleDrain(w http.ResponseWriter, r *http.Request) {
	result, err := s.cfg.Notifier.Drain(r.Context())
	if err != nil {
		writeJSON(w, http.StatusBadGateway, DrainResponse{Result: result, Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, DrainResponse{Result: result})
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, ErrorResponse{Error: err.Error()})
}
