package jobs

import (
	"context"

	"deliverytracker/internal/core/application/proofs"
	"deliverytracker/internal/pkg/logger"
	"deliverytracker/internal/pkg/metrics"
)

type boardRefresher interface {
	Refresh(ctx context.Context, source proofs.CardSource) error
}

// BoardRefreshJob reloads the courier's deliveries into the board.
type BoardRefreshJob struct {
	*scheduledJob
	board  boardRefresher
	source proofs.CardSource
}

func NewBoardRefreshJob(
	board boardRefresher,
	source proofs.CardSource,
	schedule string,
	log *logger.Logger,
	jobMetrics *metrics.JobMetrics,
) *BoardRefreshJob {
	j := &BoardRefreshJob{board: board, source: source}
	j.scheduledJob = newScheduledJob("board_refresh", schedule, j.Run, log, jobMetrics)
	return j
}

func (j *BoardRefreshJob) Run(ctx context.Context) error {
	return j.board.Refresh(ctx, j.source)
}
