// Package jobs runs scheduled maintenance against the store.
package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"sonance/internal/observability"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/robfig/cron"
)

// Job is one unit of scheduled work.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Runner fires every job on a shared cron schedule. A job whose previous run
// is still in progress is skipped for that tick.
type Runner struct {
	cron     *cron.Cron
	schedule string
	jobs     []Job
	running  mapset.Set[string]
}

// NewRunner returns a Runner for jobs on the given cron schedule.
func NewRunner(schedule string, jobs ...Job) *Runner {
	return &Runner{
		cron:     cron.New(),
		schedule: schedule,
		jobs:     jobs,
		running:  mapset.NewSet[string](),
	}
}

// Start registers every job and starts the scheduler. Runs use ctx, so
// cancelling it aborts in-flight work.
func (r *Runner) Start(ctx context.Context) error {
	for _, job := range r.jobs {
		if err := r.cron.AddFunc(r.schedule, func() { r.RunOnce(ctx, job) }); err != nil {
			return fmt.Errorf("schedule job %s: %w", job.Name(), err)
		}
	}
	r.cron.Start()
	slog.Info("Maintenance jobs scheduled",
		slog.String("schedule", r.schedule),
		slog.Int("jobs", len(r.jobs)),
	)
	return nil
}

// RunOnce runs job unless it is already running and reports whether it ran.
func (r *Runner) RunOnce(ctx context.Context, job Job) bool {
	name := job.Name()
	if !r.running.Add(name) {
		slog.WarnContext(ctx, "Maintenance job still running, skipping tick", slog.String("job", name))
		return false
	}
	defer r.running.Remove(name)

	if err := job.Run(ctx); err != nil {
		observability.MaintenanceFailures.WithLabelValues(name).Inc()
		slog.ErrorContext(ctx, "Maintenance job failed",
			slog.String("job", name),
			slog.String("error", err.Error()),
		)
	}
	return true
}

// Stop halts the scheduler. In-flight runs finish on their own.
func (r *Runner) Stop() {
	r.cron.Stop()
}
