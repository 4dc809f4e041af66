package main

import (
	"context"
	"os"
	"time"

	"odonto/internal/amqp"
	"odonto/internal/cli"
	"odonto/internal/registro"
	registrogoogle "odonto/internal/registro/google"
	registromem "odonto/internal/registro/memory"
	"odonto/internal/services"
	"odonto/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	logger.Info("Starting odonto-worker")

	store := cli.InitStore(logger, cfg)
	svc := services.New(store, nil)
	defer func() {
		if err := svc.Close(); err != nil {
			logger.Error("Service close error", "error", err)
		}
	}()

	// Register backend: Sheets when configured, in-memory otherwise so the
	// worker still drains the queue in local setups.
	var writer registro.Writer
	if cfg.GoogleSpreadsheetID != "" {
		client, err := registrogoogle.New(context.Background(), registrogoogle.Config{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			SheetName:       cfg.GoogleSheetName,
			OAuthClientJSON: cfg.GoogleOAuthClientJSON,
			OAuthClientFile: cfg.GoogleOAuthClientFile,
			OAuthTokenJSON:  cfg.GoogleOAuthTokenJSON,
			OAuthTokenFile:  cfg.GoogleOAuthTokenFile,
		})
		if err != nil {
			logger.Error("Failed to initialize Sheets register", "error", err)
			os.Exit(1)
		}
		writer = client
		logger.Info("Sheets register initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID, "sheet", cfg.GoogleSheetName)
	} else {
		writer = registromem.New()
		logger.Info("Sheets register disabled, using in-memory register")
	}

	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		amqpClient = client
		defer amqpClient.Close()
	}

	mail := worker.MailConfig{
		Host:      cfg.SMTPHost,
		Port:      cfg.SMTPPort,
		Username:  cfg.SMTPUsername,
		Password:  cfg.SMTPPassword,
		Sender:    cfg.SenderEmail,
		Recipient: cfg.ReminderRecipient,
	}
	w := worker.NewRegistroWorker(store, svc, writer, amqpClient, cfg.ReminderCron, mail)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)
	if err := w.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("Worker failed", "error", err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped gracefully")
}
