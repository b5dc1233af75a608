// Package jobs provides scheduled background tasks for the courier agent.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3.
// Executions of the same job never overlap and every run is recorded in
// metrics.JobMetrics.
//
// # Available Jobs
//
// 1. ConnectivityWatchJob - Probes the server and sweeps the proof store when it becomes reachable again
// 2. ProofSweepJob - Sweeps the proof store on a fixed schedule as a fallback
// 3. BoardRefreshJob - Reloads the courier's deliveries into the board
//
// # Usage
//
//	jobManager := jobs.NewJobManager(watchJob, sweepJob, refreshJob)
//
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//
//	defer jobManager.StopAll()
//
// # Scheduling
//
// Schedules are cron expressions with a seconds field, or descriptors such as
// "@every 10s".
//
// # Error Handling
//
// - A failed run is logged and counted, the next run happens on schedule
// - Stop cancels the context of a running execution
// - Failed job starts will stop any already running jobs
package jobs
