package jobs

import (
	"context"
	"sync"
	"time"

	"deliverytracker/internal/pkg/logger"
	"deliverytracker/internal/pkg/metrics"

	"github.com/robfig/cron/v3"
)

// scheduledJob runs one task on a cron schedule. Executions never overlap and
// Stop cancels the context of a running execution.
type scheduledJob struct {
	name     string
	schedule string
	task     func(ctx context.Context) error
	cron     *cron.Cron
	log      *logger.Logger
	metrics  *metrics.JobMetrics

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

func newScheduledJob(
	name, schedule string,
	task func(ctx context.Context) error,
	log *logger.Logger,
	jobMetrics *metrics.JobMetrics,
) *scheduledJob {
	if log == nil {
		log = logger.Nop()
	}
	return &scheduledJob{
		name:     name,
		schedule: schedule,
		task:     task,
		cron:     cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		log:      log,
		metrics:  jobMetrics,
	}
}

// Start registers the task and starts the scheduler.
func (j *scheduledJob) Start() error {
	j.mu.Lock()
	j.ctx, j.cancel = context.WithCancel(context.Background())
	ctx := j.ctx
	j.mu.Unlock()

	if _, err := j.cron.AddFunc(j.schedule, func() { j.run(ctx) }); err != nil {
		j.cancel()
		return err
	}

	j.cron.Start()
	j.log.Info(j.log.WithFields(ctx, map[string]any{"job": j.name, "schedule": j.schedule}), "job started")
	return nil
}

// Stop cancels a running execution and waits for it to return.
func (j *scheduledJob) Stop() {
	j.mu.Lock()
	if j.cancel != nil {
		j.cancel()
	}
	j.mu.Unlock()

	<-j.cron.Stop().Done()
	j.log.Info(j.log.WithField(context.Background(), "job", j.name), "job stopped")
}

func (j *scheduledJob) run(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	ctx = j.log.WithField(ctx, "job", j.name)

	start := time.Now()
	err := j.task(ctx)
	j.metrics.ObserveDuration(j.name, time.Since(start))

	if err != nil {
		j.metrics.IncFailure(j.name)
		j.log.Error(ctx, "job failed", err)
		return
	}
	j.metrics.IncSuccess(j.name)
}
