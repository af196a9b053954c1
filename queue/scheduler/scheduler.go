package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pamcare/pamcare/config"
	"github.com/pamcare/pamcare/db"
	"github.com/pamcare/pamcare/queue/executor"
)

// Scheduler claims pending jobs on a fixed interval and runs them through
// the executor with bounded concurrency.
type Scheduler struct {
	configProvider *config.Provider
	db             db.DbQueue
	executor       *executor.DefaultExecutor
	logger         *slog.Logger
	ctx            context.Context
	cancel         context.CancelFunc
	shutdownDone   chan struct{}
}

func NewScheduler(provider *config.Provider, dbQueue db.DbQueue, exec *executor.DefaultExecutor, logger *slog.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		configProvider: provider,
		db:             dbQueue,
		executor:       exec,
		logger:         logger,
		ctx:            ctx,
		cancel:         cancel,
		shutdownDone:   make(chan struct{}),
	}
}

// Executor exposes the job executor so callers can register handlers.
func (s *Scheduler) Executor() *executor.DefaultExecutor {
	return s.executor
}

// Name identifies the scheduler in server lifecycle logs.
func (s *Scheduler) Name() string {
	return "job-scheduler"
}

// Start begins ticking in a background goroutine. It returns immediately.
func (s *Scheduler) Start() error {
	go func() {
		interval := s.configProvider.Get().Scheduler.Interval.Duration
		s.logger.Info("starting job scheduler", "interval", interval)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.ctx.Done():
				s.logger.Info("job scheduler received shutdown signal")
				close(s.shutdownDone)
				return
			case <-ticker.C:
				s.processJobs()
			}
		}
	}()
	return nil
}

// Stop signals the scheduler to stop and waits for the current batch to
// finish or the context to expire, whichever comes first.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.logger.Info("stopping job scheduler")
	s.cancel()

	select {
	case <-s.shutdownDone:
		s.logger.Info("job scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Info("job scheduler shutdown timed out")
		return ctx.Err()
	}
}

func (s *Scheduler) processJobs() {
	cfg := s.configProvider.Get().Scheduler

	jobs, err := s.db.Claim(cfg.MaxJobsPerTick)
	if err != nil {
		s.logger.Error("failed to claim jobs", "err", err)
		return
	}
	if len(jobs) == 0 {
		return
	}

	s.logger.Info("claimed jobs", "count", len(jobs))

	jobTimeout := cfg.JobTimeout.Duration
	if jobTimeout <= 0 {
		jobTimeout = 10 * time.Minute
	}
	multiplier := cfg.ConcurrencyMultiplier
	if multiplier <= 0 {
		multiplier = 1
	}

	// The scheduler's context is the parent so in-flight jobs see shutdown.
	g, ctx := errgroup.WithContext(s.ctx)
	g.SetLimit(runtime.NumCPU() * multiplier)

	for _, job := range jobs {
		jobCopy := job
		g.Go(func() error {
			jobCtx, cancel := context.WithTimeout(ctx, jobTimeout)
			defer cancel()

			s.logger.Info("starting job execution",
				"job_id", jobCopy.ID,
				"job_type", jobCopy.JobType,
				"attempt", jobCopy.Attempts)

			err := s.executor.Execute(jobCtx, *jobCopy)

			switch {
			case err == nil:
				s.finishJob(jobCopy)
			case errors.Is(err, context.DeadlineExceeded):
				s.failJob(jobCopy, "job execution timed out")
			case errors.Is(err, context.Canceled):
				s.failJob(jobCopy, "job execution canceled")
			default:
				s.failJob(jobCopy, err.Error())
			}

			// Errors are recorded per job; do not cancel the batch.
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.logger.Error("error executing job batch", "err", err)
	}
}

// finishJob marks a job completed and, for recurrent jobs, inserts the next
// occurrence one interval from now.
func (s *Scheduler) finishJob(job *db.Job) {
	if err := s.db.MarkCompleted(job.ID); err != nil {
		s.logger.Error("failed to mark job as completed", "job_id", job.ID, "err", err)
	}

	if !job.Recurrent || job.Interval <= 0 {
		return
	}

	if err := s.db.InsertJob(nextRecurrentJob(*job)); err != nil {
		s.logger.Error("failed to reschedule recurrent job", "job_type", job.JobType, "err", err)
	}
}

// nextRecurrentJob builds the follow-up occurrence of a completed recurrent
// job. The next run keeps the original cadence by adding the interval to the
// previous scheduled time, not to the completion time.
func nextRecurrentJob(job db.Job) db.Job {
	base := job.ScheduledFor
	if base.IsZero() {
		base = time.Now()
	}

	return db.Job{
		JobType:      job.JobType,
		Payload:      job.Payload,
		MaxAttempts:  job.MaxAttempts,
		ScheduledFor: base.Add(job.Interval),
		Recurrent:    true,
		Interval:     job.Interval,
	}
}

func (s *Scheduler) failJob(job *db.Job, msg string) {
	if err := s.db.MarkFailed(job.ID, msg); err != nil {
		s.logger.Error("failed to mark job as failed", "job_id", job.ID, "err", err)
	}
}
