package proofs_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"deliverytracker/internal/core/application/proofs"
	"deliverytracker/internal/core/domain/model/delivery"
	"deliverytracker/internal/core/domain/model/kernel"
	"deliverytracker/internal/core/domain/model/proof"
	"deliverytracker/internal/core/ports"
	"deliverytracker/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type PipelineTestSuite struct {
	suite.Suite
	store        *memoryStore
	server       *fakeServer
	connectivity *fakeConnectivity
	pipeline     *proofs.Pipeline
	ctx          context.Context
}

func TestPipelineTestSuite(t *testing.T) {
	suite.Run(t, new(PipelineTestSuite))
}

func (suite *PipelineTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.store = &memoryStore{}
	suite.server = newFakeServer()
	suite.connectivity = &fakeConnectivity{}
	suite.connectivity.connected.Store(true)

	pipeline, err := proofs.NewPipeline(proofs.Dependencies{
		Store:        suite.store,
		Uploader:     suite.server,
		Completer:    suite.server,
		Statuses:     suite.server,
		Connectivity: suite.connectivity,
		Clock:        ports.ClockFunc(func() time.Time { return time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC) }),
	}, time.Second)
	suite.Require().NoError(err)
	suite.pipeline = pipeline
}

func (suite *PipelineTestSuite) TestOfflineCaptureIsSentAfterConnectivityRestored() {
	d2 := suite.server.add(delivery.Pending)
	suite.connectivity.connected.Store(false)

	result, err := suite.pipeline.Submit(suite.ctx, d2, testImage())

	suite.Require().NoError(err)
	suite.Equal(proofs.OutcomeQueued, result.Outcome)
	suite.Equal([]kernel.UUID{d2}, suite.store.deliveryIDs())
	suite.Equal(delivery.Pending, suite.server.status(d2))
	suite.Empty(suite.server.uploaded())

	suite.connectivity.connected.Store(true)
	report, err := suite.pipeline.OnConnectivityRestored(suite.ctx)

	suite.Require().NoError(err)
	suite.Equal(proofs.SweepReport{Sent: 1}, report)
	suite.Empty(suite.store.deliveryIDs())
	suite.Equal(delivery.Delivered, suite.server.status(d2))
}

func (suite *PipelineTestSuite) TestSubmitOnDeliveredLeavesStoreUnchanged() {
	id := suite.server.add(delivery.Delivered)
	queued := suite.server.add(delivery.Pending)
	suite.Require().NoError(suite.pipeline.Enqueue(suite.ctx, queued, testImage()))
	before := suite.store.entryIDs()

	for _, connected := range []bool{true, false} {
		suite.connectivity.connected.Store(connected)

		_, err := suite.pipeline.Submit(suite.ctx, id, testImage())

		suite.Require().ErrorIs(err, errs.ErrAlreadyTerminal)
		suite.Equal(before, suite.store.entryIDs())
	}
	suite.Empty(suite.server.uploaded())
}

func (suite *PipelineTestSuite) TestSubmitOnCancelledIsRejected() {
	id := suite.server.add(delivery.Cancelled)

	_, err := suite.pipeline.Submit(suite.ctx, id, testImage())

	suite.Require().ErrorIs(err, errs.ErrAlreadyTerminal)
	suite.Empty(suite.store.entryIDs())
}

func (suite *PipelineTestSuite) TestSubmitConnectedSendsDirectly() {
	id := suite.server.add(delivery.Pending)

	result, err := suite.pipeline.Submit(suite.ctx, id, testImage())

	suite.Require().NoError(err)
	suite.Equal(proofs.OutcomeSent, result.Outcome)
	suite.Equal("proofs/"+id.String()+".jpg", result.Path)
	suite.Equal(delivery.Delivered, suite.server.status(id))
	suite.Empty(suite.store.entryIDs())
}

func (suite *PipelineTestSuite) TestSubmitFallsBackToQueueOnTransportFailure() {
	id := suite.server.add(delivery.Pending)
	suite.server.onUpload = func(context.Context, kernel.UUID) error {
		return errs.NewTransportFailureError("upload", errors.New("connection reset by peer"))
	}

	result, err := suite.pipeline.Submit(suite.ctx, id, testImage())

	suite.Require().NoError(err)
	suite.Equal(proofs.OutcomeQueued, result.Outcome)
	suite.Equal([]kernel.UUID{id}, suite.store.deliveryIDs())
	suite.Equal(delivery.Pending, suite.server.status(id))
}

func (suite *PipelineTestSuite) TestSubmitReturnsLifecycleRejection() {
	id := suite.server.add(delivery.Pending)
	suite.server.onUpload = func(context.Context, kernel.UUID) error {
		return errs.NewUnauthorizedError("courier", "complete delivery")
	}

	_, err := suite.pipeline.Submit(suite.ctx, id, testImage())

	suite.Require().ErrorIs(err, errs.ErrUnauthorized)
	suite.Empty(suite.store.entryIDs())
}

func (suite *PipelineTestSuite) TestSubmitQueuesWhenStatusIsUnreachable() {
	id := suite.server.add(delivery.Pending)
	suite.server.setDown(true)

	result, err := suite.pipeline.Submit(suite.ctx, id, testImage())

	suite.Require().NoError(err)
	suite.Equal(proofs.OutcomeQueued, result.Outcome)
	suite.Equal([]kernel.UUID{id}, suite.store.deliveryIDs())
}

func (suite *PipelineTestSuite) TestSweepIsIdempotentWhileServerIsDown() {
	first := suite.server.add(delivery.Pending)
	second := suite.server.add(delivery.Pending)
	suite.Require().NoError(suite.pipeline.Enqueue(suite.ctx, first, testImage()))
	suite.Require().NoError(suite.pipeline.Enqueue(suite.ctx, second, testImage()))
	suite.server.setDown(true)
	before := suite.store.entryIDs()

	report, err := suite.pipeline.Sweep(suite.ctx)
	suite.Require().NoError(err)
	suite.Equal(proofs.SweepReport{Failed: 2}, report)
	suite.Equal(before, suite.store.entryIDs())

	report, err = suite.pipeline.Sweep(suite.ctx)
	suite.Require().NoError(err)
	suite.Equal(proofs.SweepReport{Failed: 2}, report)
	suite.Equal(before, suite.store.entryIDs())
}

func (suite *PipelineTestSuite) TestSweepDropsCorruptEntriesForGood() {
	good := suite.server.add(delivery.Pending)
	corrupt, err := proof.RestoreSubmission(
		kernel.NewUUID(), suite.server.add(delivery.Pending), "", "image/jpeg", "lost.jpg",
		time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), proof.CurrentSchemaVersion,
	)
	suite.Require().NoError(err)
	suite.Require().NoError(suite.store.Append(suite.ctx, corrupt))
	suite.Require().NoError(suite.pipeline.Enqueue(suite.ctx, good, testImage()))

	report, err := suite.pipeline.Sweep(suite.ctx)
	suite.Require().NoError(err)
	suite.Equal(proofs.SweepReport{Sent: 1, Dropped: 1}, report)
	suite.Empty(suite.store.entryIDs())
	suite.Equal([]kernel.UUID{good}, suite.server.uploaded())

	report, err = suite.pipeline.Sweep(suite.ctx)
	suite.Require().NoError(err)
	suite.Equal(proofs.SweepReport{}, report)
}

func (suite *PipelineTestSuite) TestSweepDropsEntriesForClosedDeliveries() {
	id := suite.server.add(delivery.Pending)
	suite.Require().NoError(suite.pipeline.Enqueue(suite.ctx, id, testImage()))
	suite.server.mu.Lock()
	suite.server.statuses[id] = delivery.Cancelled
	suite.server.mu.Unlock()

	report, err := suite.pipeline.Sweep(suite.ctx)

	suite.Require().NoError(err)
	suite.Equal(proofs.SweepReport{Dropped: 1}, report)
	suite.Empty(suite.store.entryIDs())
}

func (suite *PipelineTestSuite) TestSweepThroughSubmitterLeavesNoImageForClosedDelivery() {
	pipeline, err := proofs.NewPipeline(proofs.Dependencies{
		Store:        suite.store,
		Uploader:     suite.server,
		Completer:    suite.server,
		Submitter:    suite.server,
		Statuses:     suite.server,
		Connectivity: suite.connectivity,
	}, time.Second)
	suite.Require().NoError(err)

	open := suite.server.add(delivery.Pending)
	closed := suite.server.add(delivery.Pending)
	suite.Require().NoError(pipeline.Enqueue(suite.ctx, closed, testImage()))
	suite.Require().NoError(pipeline.Enqueue(suite.ctx, open, testImage()))
	suite.server.mu.Lock()
	suite.server.statuses[closed] = delivery.Cancelled
	suite.server.mu.Unlock()

	report, err := pipeline.Sweep(suite.ctx)

	suite.Require().NoError(err)
	suite.Equal(proofs.SweepReport{Sent: 1, Dropped: 1}, report)
	suite.Empty(suite.store.entryIDs())
	suite.Equal([]kernel.UUID{closed, open}, suite.server.uploaded())
	suite.Equal(map[string]kernel.UUID{"proofs/" + open.String() + ".jpg": open}, suite.server.storedImages())
	suite.Equal(delivery.Delivered, suite.server.status(open))
}

func (suite *PipelineTestSuite) TestSweepKeepsEnqueueOrder() {
	ids := []kernel.UUID{
		suite.server.add(delivery.Pending),
		suite.server.add(delivery.Pending),
		suite.server.add(delivery.Pending),
	}
	for _, id := range ids {
		suite.Require().NoError(suite.pipeline.Enqueue(suite.ctx, id, testImage()))
	}

	report, err := suite.pipeline.Start(suite.ctx)

	suite.Require().NoError(err)
	suite.Equal(3, report.Sent)
	suite.Equal(ids, suite.server.uploaded())
}

func (suite *PipelineTestSuite) TestEntriesEnqueuedDuringSweepWaitForNextSweep() {
	first := suite.server.add(delivery.Pending)
	late := suite.server.add(delivery.Pending)
	suite.Require().NoError(suite.pipeline.Enqueue(suite.ctx, first, testImage()))

	suite.server.onUpload = func(ctx context.Context, id kernel.UUID) error {
		if id.IsEqual(first) {
			return suite.pipeline.Enqueue(ctx, late, testImage())
		}
		return nil
	}

	report, err := suite.pipeline.Sweep(suite.ctx)
	suite.Require().NoError(err)
	suite.Equal(proofs.SweepReport{Sent: 1}, report)
	suite.Equal([]kernel.UUID{late}, suite.store.deliveryIDs())

	report, err = suite.pipeline.Sweep(suite.ctx)
	suite.Require().NoError(err)
	suite.Equal(proofs.SweepReport{Sent: 1}, report)
	suite.Empty(suite.store.entryIDs())
}

func (suite *PipelineTestSuite) TestSecondSweepWhileRunningIsSkipped() {
	id := suite.server.add(delivery.Pending)
	suite.Require().NoError(suite.pipeline.Enqueue(suite.ctx, id, testImage()))

	started := make(chan struct{})
	release := make(chan struct{})
	suite.server.onUpload = func(context.Context, kernel.UUID) error {
		close(started)
		<-release
		return nil
	}

	done := make(chan proofs.SweepReport)
	go func() {
		report, _ := suite.pipeline.Sweep(suite.ctx)
		done <- report
	}()

	<-started
	report, err := suite.pipeline.Sweep(suite.ctx)
	suite.Require().NoError(err)
	suite.True(report.Skipped)

	close(release)
	suite.Equal(proofs.SweepReport{Sent: 1}, <-done)
}

func (suite *PipelineTestSuite) TestSweepStopsWhenContextIsCancelled() {
	ids := []kernel.UUID{suite.server.add(delivery.Pending), suite.server.add(delivery.Pending)}
	for _, id := range ids {
		suite.Require().NoError(suite.pipeline.Enqueue(suite.ctx, id, testImage()))
	}

	ctx, cancel := context.WithCancel(suite.ctx)
	defer cancel()
	suite.server.onUpload = func(context.Context, kernel.UUID) error {
		cancel()
		return nil
	}

	report, err := suite.pipeline.Sweep(ctx)

	suite.Require().NoError(err)
	suite.Equal(proofs.SweepReport{Sent: 1}, report)
	suite.Equal([]kernel.UUID{ids[1]}, suite.store.deliveryIDs())
}

type MockUploader struct {
	mock.Mock
}

func (m *MockUploader) Upload(ctx context.Context, deliveryID kernel.UUID, image proof.Image) (string, error) {
	args := m.Called(ctx, deliveryID, image)
	return args.String(0), args.Error(1)
}

func TestPipeline_UploadTimeoutIsTransportFailure(t *testing.T) {
	store := &memoryStore{}
	server := newFakeServer()
	id := server.add(delivery.Pending)
	connectivity := &fakeConnectivity{}
	connectivity.connected.Store(true)

	uploader := new(MockUploader)
	uploader.On("Upload", mock.Anything, id, mock.Anything).
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).
		Return("", context.DeadlineExceeded).
		Once()

	pipeline, err := proofs.NewPipeline(proofs.Dependencies{
		Store:        store,
		Uploader:     uploader,
		Completer:    server,
		Statuses:     server,
		Connectivity: connectivity,
	}, 20*time.Millisecond)
	require.NoError(t, err)

	result, err := pipeline.Submit(context.Background(), id, testImage())

	require.NoError(t, err)
	assert.Equal(t, proofs.OutcomeQueued, result.Outcome)
	assert.Equal(t, []kernel.UUID{id}, store.deliveryIDs())
	assert.Equal(t, delivery.Pending, server.status(id))
	uploader.AssertExpectations(t)
}

func TestNewPipeline_RequiresCollaborators(t *testing.T) {
	_, err := proofs.NewPipeline(proofs.Dependencies{}, time.Second)

	require.ErrorIs(t, err, errs.ErrValueIsRequired)
}
