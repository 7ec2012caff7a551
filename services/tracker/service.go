// Package tracker orchestrates one tracking run: every configured
// source is driven to a terminal outcome under a shared concurrency
// limit and an optional run deadline, and the outcomes come back as a
// single batch in configured order.
package tracker

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"followtrack-backend/lib/extract"
	"followtrack-backend/lib/telemetry"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/semaphore"
)

var tracer = telemetry.Tracer("followtrack.services.tracker")

const defaultConcurrency = 3

type Options struct {
	// Concurrency caps simultaneously attempting jobs. Defaults to 3.
	Concurrency int
	// RunDeadline bounds the whole run; zero means no deadline. Jobs
	// still in flight when it passes record a timeout failure.
	RunDeadline time.Duration
	// Seed makes fingerprint rotation and backoff jitter reproducible
	// across runs with the same job list.
	Seed int64
}

type Service struct {
	controller *extract.Controller
	jobs       []extract.Job
	options    Options
}

func NewService(controller *extract.Controller, jobs []extract.Job, options Options) *Service {
	if options.Concurrency <= 0 {
		options.Concurrency = defaultConcurrency
	}
	return &Service{controller: controller, jobs: jobs, options: options}
}

// Run executes every job and returns the full batch. One job's failure
// never aborts the others; the batch always holds exactly one result
// per configured job, in configured order.
func (s *Service) Run(ctx context.Context) extract.Batch {
	ctx, span := tracer.Start(ctx, "tracker:Run")
	defer span.End()

	batch := extract.Batch{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Results:   make([]extract.Result, len(s.jobs)),
	}
	span.SetAttributes(
		attribute.String("run.id", batch.RunID),
		attribute.Int("run.jobs", len(s.jobs)),
		attribute.Int("run.concurrency", s.options.Concurrency),
	)
	slog.InfoContext(
		ctx, "run start",
		"run_id", batch.RunID,
		"jobs", len(s.jobs),
		"concurrency", s.options.Concurrency,
	)

	if s.options.RunDeadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.options.RunDeadline)
		defer cancel()
	}

	sem := semaphore.NewWeighted(int64(s.options.Concurrency))
	var wg sync.WaitGroup
	for i, job := range s.jobs {
		wg.Add(1)
		go func(slot int, job extract.Job) {
			defer wg.Done()

			if err := sem.Acquire(ctx, 1); err != nil {
				// deadline hit while queued: still a terminal outcome
				batch.Results[slot] = extract.Result{
					Source:   job.Extractor.Source(),
					Attempts: 1,
					Failure:  extract.Classify(err),
				}
				return
			}
			defer sem.Release(1)

			rng := rand.New(rand.NewSource(s.options.Seed + int64(slot)))
			batch.Results[slot] = s.controller.Run(ctx, job, rng)
		}(i, job)
	}
	wg.Wait()

	succeeded := 0
	for _, result := range batch.Results {
		if result.Succeeded() {
			succeeded++
		}
	}
	span.SetAttributes(attribute.Int("run.succeeded", succeeded))
	slog.InfoContext(
		ctx, "run complete",
		"run_id", batch.RunID,
		"succeeded", succeeded,
		"failed", len(batch.Results)-succeeded,
	)
	return batch
}
