package service

import (
	"context"
	"log"
	"sync"
	"time"

	"bookingflow/internal/port"
)

// IngestWorkerConfig holds settings for the ingest queue worker.
type IngestWorkerConfig struct {
	PollInterval   time.Duration
	JobConcurrency int
}

// IngestWorker polls for queued upload jobs and dispatches them for
// processing. Because jobs are claimed from the database, a restarted process
// picks up whatever its predecessor left queued.
type IngestWorker struct {
	jobRepo port.JobRepository
	ingest  IngestService
	cfg     IngestWorkerConfig
	wg      sync.WaitGroup
}

// NewIngestWorker creates a new IngestWorker.
func NewIngestWorker(jobRepo port.JobRepository, ingest IngestService, cfg IngestWorkerConfig) *IngestWorker {
	return &IngestWorker{
		jobRepo: jobRepo,
		ingest:  ingest,
		cfg:     cfg,
	}
}

// Start runs the polling loop until ctx is canceled. It blocks until all
// in-flight jobs have finished.
func (w *IngestWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	sem := make(chan struct{}, w.cfg.JobConcurrency)

	log.Printf("ingestWorker: started (poll=%s, concurrency=%d)", w.cfg.PollInterval, w.cfg.JobConcurrency)

	for {
		select {
		case <-ctx.Done():
			log.Printf("ingestWorker: shutting down, waiting for in-flight jobs...")
			w.wg.Wait()
			log.Printf("ingestWorker: shutdown complete")
			return
		case <-ticker.C:
			available := w.cfg.JobConcurrency - len(sem)
			if available <= 0 {
				continue
			}

			jobs, err := w.jobRepo.ClaimQueued(ctx, available)
			if err != nil {
				if ctx.Err() != nil {
					// Context canceled during poll — exit gracefully
					continue
				}
				log.Printf("ingestWorker: ClaimQueued error: %v", err)
				continue
			}

			for i := range jobs {
				job := jobs[i] // copy for goroutine

				sem <- struct{}{} // acquire
				w.wg.Add(1)
				go func() {
					defer w.wg.Done()
					defer func() { <-sem }() // release

					// Use a fresh context independent of the poll context so
					// in-flight jobs complete even during shutdown.
					jobCtx, cancel := context.WithTimeout(context.Background(), jobTimeout)
					defer cancel()

					log.Printf("ingestWorker: dispatching job %s", job.ID)
					w.ingest.ProcessJob(jobCtx, &job)
				}()
			}
		}
	}
}
