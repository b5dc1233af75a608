package jobs

import (
	"fmt"
)

type job interface {
	Start() error
	Stop()
}

// JobManager coordinates all scheduled jobs of the courier agent.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	connectivityWatchJob *ConnectivityWatchJob
	proofSweepJob        *ProofSweepJob
	boardRefreshJob      *BoardRefreshJob
	started              []job
}

// NewJobManager creates a job manager. A nil job is skipped.
func NewJobManager(
	connectivityWatchJob *ConnectivityWatchJob,
	proofSweepJob *ProofSweepJob,
	boardRefreshJob *BoardRefreshJob,
) *JobManager {
	return &JobManager{
		connectivityWatchJob: connectivityWatchJob,
		proofSweepJob:        proofSweepJob,
		boardRefreshJob:      boardRefreshJob,
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	type namedJob struct {
		name string
		job  job
	}
	var named []namedJob
	if jm.connectivityWatchJob != nil {
		named = append(named, namedJob{"connectivity watch", jm.connectivityWatchJob})
	}
	if jm.proofSweepJob != nil {
		named = append(named, namedJob{"proof sweep", jm.proofSweepJob})
	}
	if jm.boardRefreshJob != nil {
		named = append(named, namedJob{"board refresh", jm.boardRefreshJob})
	}

	for _, n := range named {
		if err := n.job.Start(); err != nil {
			// Stop already started jobs if this one fails
			jm.StopAll()
			return fmt.Errorf("failed to start %s job: %w", n.name, err)
		}
		jm.started = append(jm.started, n.job)
	}

	return nil
}

// StopAll stops all started jobs gracefully, in reverse start order.
func (jm *JobManager) StopAll() {
	for i := len(jm.started) - 1; i >= 0; i-- {
		jm.started[i].Stop()
	}
	jm.started = nil
}
