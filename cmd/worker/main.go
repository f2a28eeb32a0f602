package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"billguard-backend/internal/analysis"
	"billguard-backend/internal/extraction"
	"billguard-backend/internal/findings"
	"billguard-backend/internal/inbox"
	"billguard-backend/internal/invoices"
	"billguard-backend/internal/llm"
	"billguard-backend/internal/llm/openai"
	"billguard-backend/internal/scan"
	"billguard-backend/internal/scanjobs"
	"billguard-backend/internal/shared/config"
	"billguard-backend/internal/shared/storage/db"
	"billguard-backend/internal/shared/telemetry"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg := config.Load()
	log := telemetry.NewLogger(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultWorkerOptions()))
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}
	defer database.Close()

	var llmClient llm.Client = llm.PlaceholderClient{}
	if cfg.UseModelExtraction() && cfg.LLMProvider == "openai" {
		client, err := openai.NewClient(cfg.OpenAIAPIKey, cfg.LLMModel)
		if err != nil {
			log.Fatal().Err(err).Msg("configure openai client")
		}
		llmClient = client
	}

	extractor := extraction.New(
		extraction.Config{UseModel: cfg.UseModelExtraction()},
		llmClient,
		log,
	)
	detector := analysis.NewDetector(analysis.Config{
		PriceThresholdPct:  cfg.PriceThresholdPct,
		ProbableWindowDays: cfg.ProbableWindowDays,
	})

	jobRepo := &scanjobs.PGRepo{DB: database}
	orchestrator := scan.NewOrchestrator(
		jobRepo,
		&invoices.PGRepo{DB: database},
		&findings.PGRepo{DB: database},
		// Inbox provider wiring belongs to the surrounding application;
		// jobs claimed before it exists fail with a credentials error.
		inbox.NoCredentialsFactory{},
		extractor,
		detector,
		log,
	)

	pollInterval := time.Duration(cfg.PollIntervalSec) * time.Second
	sem := make(chan struct{}, max(1, cfg.WorkerConcurrency))
	var wg sync.WaitGroup

	log.Info().Dur("poll_interval", pollInterval).Int("concurrency", cfg.WorkerConcurrency).
		Msg("scan worker started")

pollLoop:
	for {
		select {
		case <-ctx.Done():
			break pollLoop
		default:
		}

		job, ok, err := jobRepo.NextQueued(ctx)
		if err != nil {
			if ctx.Err() != nil {
				break pollLoop
			}
			log.Error().Err(err).Msg("poll queued jobs")
			sleep(ctx, pollInterval)
			continue
		}
		if !ok {
			sleep(ctx, pollInterval)
			continue
		}

		select {
		case <-ctx.Done():
			break pollLoop
		case sem <- struct{}{}:
		}
		wg.Add(1)
		go func(jobID string) {
			defer wg.Done()
			defer func() { <-sem }()
			if err := orchestrator.Run(ctx, jobID); err != nil {
				log.Error().Err(err).Str("job_id", jobID).Msg("scan job error")
			}
		}(job.ID)
	}

	log.Info().Dur("timeout", shutdownTimeout).Msg("shutdown requested, waiting for in-flight jobs")
	waitDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(waitDone)
	}()
	select {
	case <-waitDone:
	case <-time.After(shutdownTimeout):
		log.Warn().Msg("shutdown timeout reached; exiting with in-flight jobs")
	}
}

func sleep(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
