// internal/scanner/scheduler.go
package scanner

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Job is a named periodic task. Run receives a context that is cancelled
// on scheduler shutdown.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context)
}

// Scheduler owns one timer goroutine per registered job. Each job is a
// single-worker loop: a new run cannot start while the previous run of the
// same job is still in progress, and ticks that arrive mid-run are
// dropped rather than queued.
type Scheduler struct {
	logger *slog.Logger

	mu     sync.Mutex
	jobs   []Job
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewScheduler(logger *slog.Logger) *Scheduler {
	return &Scheduler{logger: logger}
}

// Register adds a job. Must be called before Start.
func (s *Scheduler) Register(job Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, job)
}

// Start launches all registered jobs. Each runs once per interval until
// the parent context is cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, s.cancel = context.WithCancel(ctx)
	for _, job := range s.jobs {
		s.wg.Add(1)
		go s.runJob(ctx, job)
	}
}

// Stop cancels all jobs and waits for in-flight runs to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
}

func (s *Scheduler) runJob(ctx context.Context, job Job) {
	defer s.wg.Done()

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	s.logger.Info("scanner job started",
		slog.String("job", job.Name),
		slog.Duration("interval", job.Interval),
	)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scanner job stopped", slog.String("job", job.Name))
			return
		case <-ticker.C:
			started := time.Now()
			job.Run(ctx)
			s.logger.Debug("scanner job run finished",
				slog.String("job", job.Name),
				slog.Duration("took", time.Since(started)),
			)
		}
	}
}
