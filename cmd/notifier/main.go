package main

import (
	"context"
	"log"

	"github.com/abirbhav/Dining-Concierge-Chatbot/internal/awsclients"
	appconfig "github.com/abirbhav/Dining-Concierge-Chatbot/internal/config"
	"github.com/abirbhav/Dining-Concierge-Chatbot/internal/lambdautil"
	"github.com/abirbhav/Dining-Concierge-Chatbot/internal/notifier"
	"github.com/abirbhav/Dining-Concierge-Chatbot/internal/server"
	"github.com/abirbhav/Dining-Concierge-Chatbot/pkg/logger"
	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
)

func main() {
	var cfg appconfig.NotifierConfig
	if err := appconfig.Load(&cfg); err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger := appconfig.NewLogger(cfg.CommonConfig)
	cfg.LogConfig(appLogger)

	clients, err := awsclients.FromConfig(context.Background(), cfg.AWS)
	if err != nil {
		appLogger.Error("Failed to create AWS clients", logger.ErrorField(err))
		log.Fatal(err)
	}

	n, err := server.NewNotifier(cfg, clients, nil, appLogger)
	if err != nil {
		appLogger.Error("Failed to create notifier", logger.ErrorField(err))
		log.Fatal(err)
	}

	if cfg.Mode == appconfig.NotifierModeSQS {
		lambda.Start(lambdautil.Wrap("notifier", appLogger, n.HandleSQSEvent))
		return
	}

	// Scheduled invocations carry no payload of interest; each one drains a batch.
	drain := func(ctx context.Context, _ events.CloudWatchEvent) (notifier.DrainResult, error) {
		return n.Drain(ctx)
	}
	lambda.Start(lambdautil.Wrap("notifier", appLogger, drain))
}
