// Package server builds the handlers of each binary from its configuration and runs
// the local development server.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/abirbhav/Dining-Concierge-Chatbot/internal/archive"
	"github.com/abirbhav/Dining-Concierge-Chatbot/internal/awsclients"
	appconfig "github.com/abirbhav/Dining-Concierge-Chatbot/internal/config"
	"github.com/abirbhav/Dining-Concierge-Chatbot/internal/devserver"
	"github.com/abirbhav/Dining-Concierge-Chatbot/internal/fulfillment"
	"github.com/abirbhav/Dining-Concierge-Chatbot/internal/mailer"
	"github.com/abirbhav/Dining-Concierge-Chatbot/internal/notifier"
	"github.com/abirbhav/Dining-Concierge-Chatbot/internal/queue"
	"github.com/abirbhav/Dining-Concierge-Chatbot/internal/relay"
	"github.com/abirbhav/Dining-Concierge-Chatbot/internal/restaurants"
	"github.com/abirbhav/Dining-Concierge-Chatbot/internal/search"
	"github.com/abirbhav/Dining-Concierge-Chatbot/internal/validation"
	"github.com/abirbhav/Dining-Concierge-Chatbot/pkg/health"
	"github.com/abirbhav/Dining-Concierge-Chatbot/pkg/health/checkers"
	"github.com/abirbhav/Dining-Concierge-Chatbot/pkg/logger"
	"github.com/abirbhav/Dining-Concierge-Chatbot/pkg/metrics"
)

// shutdownTimeout bounds the graceful shutdown of the dev server listeners
const shutdownTimeout = 10 * time.Second

// NewRelay builds the relay handler.
func NewRelay(cfg appconfig.RelayConfig, clients *awsclients.Clients, log logger.Logger) *relay.Handler {
	return relay.NewHandler(clients.Lex(), cfg.Lex, log)
}

// NewFulfillment builds the Lex code hook with a validator in the configured time zone.
func NewFulfillment(cfg appconfig.FulfillmentConfig, clients *awsclients.Clients, log logger.Logger) (*fulfillment.Handler, error) {
	loc, err := cfg.Dialog.Location()
	if err != nil {
		return nil, err
	}
	q := queue.New(clients.SQS(), cfg.Queue.Name)
	return fulfillment.NewHandler(q, validation.New(loc, time.Now), time.Now, log), nil
}

// NewNotifier builds the queue consumer. recorder may be nil.
func NewNotifier(cfg appconfig.NotifierConfig, clients *awsclients.Clients, recorder notifier.Recorder, log logger.Logger) (*notifier.Notifier, error) {
	store, err := restaurants.NewStore(clients.DynamoDB(), cfg.Restaurants.Table)
	if err != nil {
		return nil, fmt.Errorf("failed to create restaurant store: %w", err)
	}

	var archiver archive.Archiver = archive.Nop{}
	if cfg.Archive.Enabled() {
		archiver = archive.NewS3Archiver(clients.S3(), cfg.Archive.Bucket, cfg.Archive.Prefix)
	}

	return notifier.New(notifier.Config{
		Queue:       queue.New(clients.SQS(), cfg.Queue.Name),
		Search:      search.NewClient(searchConfig(cfg.Search)),
		Restaurants: store,
		Mailer:      mailer.New(clients.SES(), cfg.Mail.SourceAddress, cfg.Mail.OperatorAddress),
		Archiver:    archiver,
		Recorder:    recorder,
		Logger:      log,
		Receive: queue.ReceiveOptions{
			MaxMessages:       cfg.Queue.BatchSize,
			WaitTime:          cfg.Queue.WaitTime,
			VisibilityTimeout: cfg.Queue.VisibilityTimeout,
		},
		SearchLimit: cfg.Search.Limit,
	})
}

func searchConfig(s appconfig.SearchConfig) search.Config {
	return search.Config{
		BaseURL:  s.BaseURL,
		Index:    s.Index,
		Username: s.Username,
		Password: s.Password,
		Timeout:  s.Timeout,
	}
}

// Server is the local development server hosting every handler behind one router.
type Server struct {
	cfg     appconfig.DevServerConfig
	log     logger.Logger
	metrics *metrics.Metrics
	http    *http.Server
}

// New wires all handlers against the AWS clients described by cfg.
func New(ctx context.Context, cfg appconfig.DevServerConfig, log logger.Logger) (*Server, error) {
	clients, err := awsclients.FromConfig(ctx, cfg.AWS)
	if err != nil {
		return nil, err
	}
	return NewWithClients(cfg, clients, log)
}

// NewWithClients wires all handlers against clients.
func NewWithClients(cfg appconfig.DevServerConfig, clients *awsclients.Clients, log logger.Logger) (*Server, error) {
	m := metrics.NewMetrics(cfg.Metrics.EnableHTTPMetrics, cfg.Metrics.EnableJobMetrics, log)

	fulfillmentHandler, err := NewFulfillment(cfg.Fulfillment(), clients, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create fulfillment handler: %w", err)
	}
	notifierHandler, err := NewNotifier(cfg.Notifier(), clients, m, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create notifier: %w", err)
	}

	checker := health.New(health.WithLogger(log))
	checker.AddReadinessCheck(checkers.NewHTTPChecker(cfg.Search.BaseURL, "search-index"))

	router, err := devserver.NewRouter(devserver.Config{
		Relay:          NewRelay(cfg.Relay(), clients, log),
		Fulfillment:    fulfillmentHandler,
		Notifier:       notifierHandler,
		Health:         checker,
		Metrics:        m,
		Logger:         log,
		RequestTimeout: cfg.HTTP.RequestTimeout,
	})
	if err != nil {
		return nil, err
	}

	return &Server{
		cfg:     cfg,
		log:     log,
		metrics: m,
		http: &http.Server{
			Addr:              cfg.HTTP.Addr(),
			Handler:           router,
			ReadTimeout:       cfg.HTTP.ReadTimeout,
			ReadHeaderTimeout: cfg.HTTP.ReadTimeout,
			WriteTimeout:      cfg.HTTP.WriteTimeout,
			IdleTimeout:       cfg.HTTP.IdleTimeout,
		},
	}, nil
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Run serves until ctx is cancelled, then shuts the listeners down gracefully.
func (s *Server) Run(ctx context.Context) error {
	var metricsServer *http.Server
	if s.cfg.Metrics.ExposeMetrics {
		metricsServer = s.metrics.Listen(s.cfg.Metrics.Port)
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Starting dev server", logger.StringField("addr", s.http.Addr))
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("dev server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info("Shutting down dev server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var shutdownErr error
	if err := s.http.Shutdown(shutdownCtx); err != nil { //nolint:contextcheck // parent context is already cancelled
		shutdownErr = fmt.Errorf("failed to shut down dev server: %w", err)
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil && shutdownErr == nil { //nolint:contextcheck // parent context is already cancelled
			shutdownErr = fmt.Errorf("failed to shut down metrics listener: %w", err)
		}
	}
	return shutdownErr
}
