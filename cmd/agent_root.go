package cmd

import (
	"context"

	"deliverytracker/internal/adapters/in/agentapi"
	"deliverytracker/internal/adapters/out/apiclient"
	"deliverytracker/internal/adapters/out/proofstore"
	"deliverytracker/internal/core/application/proofs"
	"deliverytracker/internal/core/ports"
	"deliverytracker/internal/jobs"
	"deliverytracker/internal/pkg/logger"
	"deliverytracker/internal/pkg/metrics"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// AgentRoot wires the courier agent: the proof store, the pipeline talking to
// the API, the board and the background jobs.
type AgentRoot struct {
	cfg      AgentConfig
	log      *logger.Logger
	store    *proofstore.Store
	client   *apiclient.Client
	pipeline *proofs.Pipeline
	board    *proofs.Board
	jobs     *jobs.JobManager
	registry *prometheus.Registry
}

func NewAgentRoot(cfg AgentConfig, log *logger.Logger) (*AgentRoot, error) {
	store, err := proofstore.Open(cfg.StorePath)
	if err != nil {
		return nil, err
	}

	client, err := apiclient.NewClient(cfg.APIURL, cfg.APIToken, apiclient.WithProbeTimeout(cfg.ProbeTimeout))
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	registry := prometheus.NewRegistry()
	pipeline, err := proofs.NewPipeline(proofs.Dependencies{
		Store:        store,
		Uploader:     client,
		Completer:    client,
		Submitter:    client,
		Statuses:     client,
		Connectivity: client,
		Clock:        ports.SystemClock,
		Log:          log,
		Metrics:      metrics.NewSweepMetrics(registry),
	}, cfg.UploadTimeout)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	board := proofs.NewBoard(pipeline)
	jobMetrics := metrics.NewJobMetrics(registry)

	return &AgentRoot{
		cfg:      cfg,
		log:      log,
		store:    store,
		client:   client,
		pipeline: pipeline,
		board:    board,
		registry: registry,
		jobs: jobs.NewJobManager(
			jobs.NewConnectivityWatchJob(client, pipeline, cfg.WatchSchedule, log, jobMetrics),
			jobs.NewProofSweepJob(pipeline, cfg.SweepSchedule, log, jobMetrics),
			jobs.NewBoardRefreshJob(board, client, cfg.BoardSchedule, log, jobMetrics),
		),
	}, nil
}

// Start sweeps the proof store once, loads the board and starts the jobs.
// Failures of the first sweep or refresh are logged: the jobs retry them.
func (a *AgentRoot) Start(ctx context.Context) error {
	report, err := a.pipeline.Start(ctx)
	if err != nil {
		a.log.Warn(ctx, "startup sweep failed", err)
	} else {
		a.log.Info(a.log.WithFields(ctx, map[string]any{
			"sent":    report.Sent,
			"failed":  report.Failed,
			"dropped": report.Dropped,
		}), "startup sweep done")
	}

	if err = a.board.Refresh(ctx, a.client); err != nil {
		a.log.Warn(ctx, "board not loaded", err)
	}

	return a.jobs.StartAll()
}

// CreateRouter builds the local API used by the capture app.
func (a *AgentRoot) CreateRouter() *echo.Echo {
	e := agentapi.NewRouter(a.board, a.pipeline, a.log, a.cfg.MaxImageBytes)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})))
	return e
}

// Close stops the jobs and closes the proof store.
func (a *AgentRoot) Close() error {
	a.jobs.StopAll()
	return a.store.Close()
}
