package scheduler

import (
	"context"
	"fmt"
)

// Job represents a unit of work that can be executed by the worker pool.
type Job interface {
	// Execute runs the job. Implementations must respect ctx cancellation.
	Execute(ctx context.Context) error

	// Description returns a human-readable description for logs and spans.
	Description() string
}

// Sweeper is implemented by item.Service.
type Sweeper interface {
	Sweep(ctx context.Context) error
}

// SweepJob removes expired checked-off items so the list is already clean
// when the first read of the day arrives.
type SweepJob struct {
	sweeper Sweeper
}

func NewSweepJob(sweeper Sweeper) *SweepJob {
	return &SweepJob{sweeper: sweeper}
}

func (j *SweepJob) Execute(ctx context.Context) error {
	if err := j.sweeper.Sweep(ctx); err != nil {
		return fmt.Errorf("sweep job failed: %w", err)
	}
	return nil
}

func (j *SweepJob) Description() string {
	return "Expired item sweep"
}

// SweepJobProvider returns a JobProvider yielding a single SweepJob per run.
func SweepJobProvider(sweeper Sweeper) JobProvider {
	return func(ctx context.Context) ([]Job, error) {
		return []Job{NewSweepJob(sweeper)}, nil
	}
}
