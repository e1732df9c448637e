package main

import (
	"context"
	"errors"
	"os"

	"golang.org/x/sync/errgroup"

	"enriquecer/internal/amqp"
	"enriquecer/internal/cli"
	"enriquecer/internal/log"
	gsheet "enriquecer/internal/sheets/google"
	"enriquecer/internal/storage"
	"enriquecer/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), log.ComponentWorker)
	logger.Info("Starting enriquecer-worker")

	cfg := cli.LoadAndValidateWorkerConfig(logger)

	kv := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer kv.Close()

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	sheetsClient, err := gsheet.New(ctx, gsheet.Options{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", "error", err)
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	mirror := worker.NewMirrorWorker(storage.NewTransactionStore(kv), sheetsClient, cfg.SyncInterval, cfg.SyncDebounce)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return amqpClient.Consume(gctx, mirror.HandleEvent)
	})
	g.Go(func() error {
		return mirror.Run(gctx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}
