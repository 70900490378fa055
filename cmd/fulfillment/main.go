package main

import (
	"context"
	"log"

	"github.com/abirbhav/Dining-Concierge-Chatbot/internal/awsclients"
	appconfig "github.com/abirbhav/Dining-Concierge-Chatbot/internal/config"
	"github.com/abirbhav/Dining-Concierge-Chatbot/internal/lambdautil"
	"github.com/abirbhav/Dining-Concierge-Chatbot/internal/server"
	"github.com/abirbhav/Dining-Concierge-Chatbot/pkg/logger"
	"github.com/aws/aws-lambda-go/lambda"
)

func main() {
	var cfg appconfig.FulfillmentConfig
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

	handler, err := server.NewFulfillment(cfg, clients, appLogger)
	if err != nil {
		appLogger.Error("Failed to create fulfillment handler", logger.ErrorField(err))
		log.Fatal(err)
	}

	lambda.Start(lambdautil.Wrap("fulfillment", appLogger, handler.HandleLex))
}
