package jobs

import (
	"context"
	"sync"

	"deliverytracker/internal/core/application/proofs"
	"deliverytracker/internal/core/ports"
	"deliverytracker/internal/pkg/logger"
	"deliverytracker/internal/pkg/metrics"
)

type connectivityListener interface {
	OnConnectivityRestored(ctx context.Context) (proofs.SweepReport, error)
}

// ConnectivityWatchJob probes the server and notifies the pipeline when it
// becomes reachable after having been unreachable. The first probe only
// records the state: the agent sweeps once on start anyway.
type ConnectivityWatchJob struct {
	*scheduledJob
	oracle   ports.ConnectivityOracle
	listener connectivityListener
	log      *logger.Logger

	mu       sync.Mutex
	observed bool
	online   bool
}

func NewConnectivityWatchJob(
	oracle ports.ConnectivityOracle,
	listener connectivityListener,
	schedule string,
	log *logger.Logger,
	jobMetrics *metrics.JobMetrics,
) *ConnectivityWatchJob {
	if log == nil {
		log = logger.Nop()
	}
	j := &ConnectivityWatchJob{oracle: oracle, listener: listener, log: log}
	j.scheduledJob = newScheduledJob("connectivity_watch", schedule, j.Run, log, jobMetrics)
	return j
}

// Run probes once and triggers the listener on an offline to online edge.
func (j *ConnectivityWatchJob) Run(ctx context.Context) error {
	online := j.oracle.IsConnected(ctx)

	j.mu.Lock()
	restored := j.observed && !j.online && online
	if j.observed && j.online && !online {
		j.log.Warn(ctx, "server unreachable, proofs will be queued", nil)
	}
	j.observed = true
	j.online = online
	j.mu.Unlock()

	if !restored {
		return nil
	}
	_, err := j.listener.OnConnectivityRestored(ctx)
	return err
}
