package jobs

import (
	"context"

	"deliverytracker/internal/core/application/proofs"
	"deliverytracker/internal/pkg/logger"
	"deliverytracker/internal/pkg/metrics"
)

type sweeper interface {
	Sweep(ctx context.Context) (proofs.SweepReport, error)
}

// ProofSweepJob periodically retries the proof store, so entries left by a
// failed sweep are sent even if no connectivity change is observed.
type ProofSweepJob struct {
	*scheduledJob
	pipeline sweeper
	log      *logger.Logger
}

func NewProofSweepJob(pipeline sweeper, schedule string, log *logger.Logger, jobMetrics *metrics.JobMetrics) *ProofSweepJob {
	if log == nil {
		log = logger.Nop()
	}
	j := &ProofSweepJob{pipeline: pipeline, log: log}
	j.scheduledJob = newScheduledJob("proof_sweep", schedule, j.Run, log, jobMetrics)
	return j
}

// Run performs one sweep.
func (j *ProofSweepJob) Run(ctx context.Context) error {
	report, err := j.pipeline.Sweep(ctx)
	if err != nil {
		return err
	}
	if report.Sent+report.Failed+report.Dropped > 0 {
		j.log.Info(j.log.WithFields(ctx, map[string]any{
			"sent":    report.Sent,
			"failed":  report.Failed,
			"dropped": report.Dropped,
		}), "proof store swept")
	}
	return nil
}
