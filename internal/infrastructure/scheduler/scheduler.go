package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// JobStatus represents the status of a scheduled job
type JobStatus string

const (
	JobStatusPending JobStatus = "PENDING"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusSuccess JobStatus = "SUCCESS"
	JobStatusFailed  JobStatus = "FAILED"
)

// Job is one budget reconciliation of one project
type Job struct {
	ID          uuid.UUID
	ProjectID   uuid.UUID
	Status      JobStatus
	Error       string
	StartedAt   *time.Time
	CompletedAt *time.Time
	RetryCount  int
	MaxRetries  int
}

// NewJob creates a new job instance
func NewJob(projectID uuid.UUID, maxRetries int) *Job {
	return &Job{
		ID:         uuid.New(),
		ProjectID:  projectID,
		Status:     JobStatusPending,
		MaxRetries: maxRetries,
	}
}

// Start marks the job as running
func (j *Job) Start() {
	now := time.Now()
	j.Status = JobStatusRunning
	j.StartedAt = &now
	j.Error = ""
}

// Complete marks the job as successful
func (j *Job) Complete() {
	now := time.Now()
	j.Status = JobStatusSuccess
	j.CompletedAt = &now
}

// Fail marks the job as failed
func (j *Job) Fail(err string) {
	now := time.Now()
	j.Status = JobStatusFailed
	j.CompletedAt = &now
	j.Error = err
}

// ShouldRetry returns true if the job should be retried
func (j *Job) ShouldRetry() bool {
	return j.Status == JobStatusFailed && j.RetryCount < j.MaxRetries
}

// JobExecutor runs one job
type JobExecutor interface {
	Execute(ctx context.Context, job *Job) error
}

// ExecutorFunc adapts a function to JobExecutor
type ExecutorFunc func(ctx context.Context, job *Job) error

// Execute calls f
func (f ExecutorFunc) Execute(ctx context.Context, job *Job) error { return f(ctx, job) }

// Config holds scheduler configuration
type Config struct {
	MaxConcurrentJobs int
	QueueSize         int
	JobTimeout        time.Duration
	RetryAttempts     int
	RetryDelay        time.Duration
}

// DefaultConfig returns default scheduler configuration
func DefaultConfig() Config {
	return Config{
		MaxConcurrentJobs: 2,
		QueueSize:         256,
		JobTimeout:        time.Minute,
		RetryAttempts:     3,
		RetryDelay:        30 * time.Second,
	}
}

// Validate checks the configuration
func (c Config) Validate() error {
	if c.MaxConcurrentJobs <= 0 || c.QueueSize <= 0 || c.JobTimeout <= 0 || c.RetryAttempts < 0 || c.RetryDelay < 0 {
		return ErrInvalidConfig
	}
	return nil
}

// Scheduler runs jobs on a fixed pool of workers
type Scheduler struct {
	config   Config
	executor JobExecutor
	logger   *zap.Logger

	jobs      chan *Job
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	retries   map[uuid.UUID]*time.Timer
}

// NewScheduler creates a new scheduler instance
func NewScheduler(config Config, executor JobExecutor, logger *zap.Logger) (*Scheduler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Scheduler{
		config:   config,
		executor: executor,
		logger:   logger,
		retries:  make(map[uuid.UUID]*time.Timer),
	}, nil
}

// Start starts the worker pool
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return nil
	}
	s.isRunning = true
	s.jobs = make(chan *Job, s.config.QueueSize)

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	for i := 0; i < s.config.MaxConcurrentJobs; i++ {
		s.wg.Add(1)
		go s.worker(ctx, i, s.jobs)
	}

	s.logger.Info("Scheduler started",
		zap.Int("workers", s.config.MaxConcurrentJobs),
		zap.Duration("job_timeout", s.config.JobTimeout),
	)
	return nil
}

// Stop cancels running jobs, drops pending retries and waits for workers
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	for id, timer := range s.retries {
		timer.Stop()
		delete(s.retries, id)
	}
	close(s.jobs)
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Scheduler stop timed out")
		return ctx.Err()
	}
}

// IsRunning reports whether workers are accepting jobs
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// SubmitJob queues a job without blocking
func (s *Scheduler) SubmitJob(job *Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enqueueLocked(job)
}

func (s *Scheduler) enqueueLocked(job *Job) error {
	if !s.isRunning {
		return ErrSchedulerNotRunning
	}
	select {
	case s.jobs <- job:
		s.logger.Debug("Job submitted",
			zap.String("job_id", job.ID.String()),
			zap.String("project_id", job.ProjectID.String()),
		)
		return nil
	default:
		return ErrJobQueueFull
	}
}

// Schedule submits one reconciliation job per project and returns how many
// were queued
func (s *Scheduler) Schedule(projectIDs []uuid.UUID) (int, error) {
	for i, id := range projectIDs {
		if err := s.SubmitJob(NewJob(id, s.config.RetryAttempts)); err != nil {
			return i, err
		}
	}
	return len(projectIDs), nil
}

func (s *Scheduler) worker(ctx context.Context, workerID int, jobs <-chan *Job) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			s.processJob(ctx, job, workerID)
		}
	}
}

func (s *Scheduler) processJob(ctx context.Context, job *Job, workerID int) {
	job.Start()

	jobCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()

	if err := s.executor.Execute(jobCtx, job); err != nil {
		job.Fail(err.Error())
		s.logger.Error("Job failed",
			zap.Int("worker_id", workerID),
			zap.String("job_id", job.ID.String()),
			zap.String("project_id", job.ProjectID.String()),
			zap.Int("retry_count", job.RetryCount),
			zap.Error(err),
		)
		if job.ShouldRetry() {
			s.scheduleRetry(job)
		}
		return
	}

	job.Complete()
	s.logger.Debug("Job completed",
		zap.Int("worker_id", workerID),
		zap.String("job_id", job.ID.String()),
		zap.String("project_id", job.ProjectID.String()),
	)
}

// scheduleRetry re-queues the job once the retry delay has elapsed
func (s *Scheduler) scheduleRetry(job *Job) {
	job.RetryCount++
	job.Status = JobStatusPending

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isRunning {
		return
	}
	s.retries[job.ID] = time.AfterFunc(s.config.RetryDelay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.retries, job.ID)
		if err := s.enqueueLocked(job); err != nil && err != ErrSchedulerNotRunning {
			s.logger.Warn("Failed to re-queue job for retry",
				zap.String("job_id", job.ID.String()),
				zap.Error(err),
			)
		}
	})
}
