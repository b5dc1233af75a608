// Package proofs moves captured proof of delivery images from the courier
// agent to the server. A submission is either delivered right away or kept in
// the local proof store until a sweep can send it.
package proofs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"deliverytracker/internal/core/domain/model/delivery"
	"deliverytracker/internal/core/domain/model/kernel"
	"deliverytracker/internal/core/domain/model/proof"
	"deliverytracker/internal/core/ports"
	"deliverytracker/internal/pkg/errs"
	"deliverytracker/internal/pkg/logger"
	"deliverytracker/internal/pkg/metrics"
)

const DefaultUploadTimeout = 30 * time.Second

// Outcome tells what Submit did with an image.
type Outcome int

const (
	// OutcomeSent means the image was uploaded and the delivery completed.
	OutcomeSent Outcome = iota + 1
	// OutcomeQueued means the image is in the proof store waiting for a sweep.
	OutcomeQueued
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSent:
		return "sent"
	case OutcomeQueued:
		return "queued"
	default:
		return "unknown"
	}
}

type SubmitResult struct {
	Outcome Outcome
	// Path is the stored image path, set only when Outcome is OutcomeSent.
	Path string
}

// SweepReport counts what one pass over the proof store did. Skipped is set
// when another sweep was already running and nothing was done.
type SweepReport struct {
	Sent    int
	Failed  int
	Dropped int
	Skipped bool
}

// Dependencies are the collaborators of a Pipeline. All of them are required
// except Submitter, Log, Metrics and Clock. When Submitter is set, proofs are
// sent through it instead of Uploader followed by Completer.
type Dependencies struct {
	Store        ports.ProofStore
	Uploader     ports.ProofUploader
	Completer    ports.ProofCompleter
	Submitter    ports.ProofSubmitter
	Statuses     ports.DeliveryStatusReader
	Connectivity ports.ConnectivityOracle
	Clock        ports.Clock
	Log          *logger.Logger
	Metrics      *metrics.SweepMetrics
}

// Pipeline is safe for concurrent use. Writes to the proof store from Submit,
// Enqueue and Sweep are serialized, and at most one sweep runs at a time.
type Pipeline struct {
	store        ports.ProofStore
	uploader     ports.ProofUploader
	completer    ports.ProofCompleter
	submitter    ports.ProofSubmitter
	statuses     ports.DeliveryStatusReader
	connectivity ports.ConnectivityOracle
	clock        ports.Clock
	log          *logger.Logger
	metrics      *metrics.SweepMetrics

	uploadTimeout time.Duration

	storeMu sync.Mutex
	sweepMu sync.Mutex
}

func NewPipeline(deps Dependencies, uploadTimeout time.Duration) (*Pipeline, error) {
	if err := errors.Join(
		required("store", deps.Store == nil),
		required("uploader", deps.Uploader == nil),
		required("completer", deps.Completer == nil),
		required("statuses", deps.Statuses == nil),
		required("connectivity", deps.Connectivity == nil),
	); err != nil {
		return nil, err
	}

	if uploadTimeout <= 0 {
		uploadTimeout = DefaultUploadTimeout
	}
	if deps.Clock == nil {
		deps.Clock = ports.SystemClock
	}
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}

	return &Pipeline{
		store:         deps.Store,
		uploader:      deps.Uploader,
		completer:     deps.Completer,
		submitter:     deps.Submitter,
		statuses:      deps.Statuses,
		connectivity:  deps.Connectivity,
		clock:         deps.Clock,
		log:           deps.Log,
		metrics:       deps.Metrics,
		uploadTimeout: uploadTimeout,
	}, nil
}

func required(name string, missing bool) error {
	if missing {
		return errs.NewValueIsRequiredError(name)
	}
	return nil
}

// Submit completes deliveryID with image, or keeps the image for later.
//
// A delivery that is already Delivered or Cancelled is rejected with
// *errs.AlreadyTerminalError and nothing is stored. When the server is not
// reachable, or the upload fails with a transport failure, the image is
// enqueued and the call succeeds with OutcomeQueued. Any other error is
// returned as is.
func (p *Pipeline) Submit(ctx context.Context, deliveryID kernel.UUID, image proof.Image) (SubmitResult, error) {
	if err := errors.Join(deliveryID.Validate(), image.Validate()); err != nil {
		return SubmitResult{}, err
	}
	ctx = p.log.WithDeliveryID(ctx, deliveryID.String())

	var status delivery.Status
	err := p.withTimeout(ctx, "read delivery status", func(ctx context.Context) error {
		var err error
		status, err = p.statuses.DeliveryStatus(ctx, deliveryID)
		return err
	})
	switch {
	case errs.IsRecoverable(err):
		// The status is unknown while offline; the sweep finds out later.
		p.log.Debug(ctx, "delivery status unavailable, queueing proof")
		return p.queue(ctx, deliveryID, image)
	case err != nil:
		return SubmitResult{}, err
	case status.IsTerminal():
		p.metrics.ObserveSubmit(metrics.OutcomeRejected)
		return SubmitResult{}, errs.NewAlreadyTerminalError("delivery", deliveryID, status.String(), "submit proof")
	}

	if !p.connectivity.IsConnected(ctx) {
		return p.queue(ctx, deliveryID, image)
	}

	path, err := p.deliver(ctx, deliveryID, image)
	if err != nil {
		if errs.IsRecoverable(err) {
			p.log.Warn(ctx, "direct proof upload failed, queueing", err)
			return p.queue(ctx, deliveryID, image)
		}
		p.metrics.ObserveSubmit(metrics.OutcomeError)
		return SubmitResult{}, err
	}

	p.metrics.ObserveSubmit(OutcomeSent.String())
	return SubmitResult{Outcome: OutcomeSent, Path: path}, nil
}

func (p *Pipeline) queue(ctx context.Context, deliveryID kernel.UUID, image proof.Image) (SubmitResult, error) {
	if err := p.Enqueue(ctx, deliveryID, image); err != nil {
		p.metrics.ObserveSubmit(metrics.OutcomeError)
		return SubmitResult{}, err
	}
	p.metrics.ObserveSubmit(OutcomeQueued.String())
	return SubmitResult{Outcome: OutcomeQueued}, nil
}

// Enqueue appends a self-contained copy of image to the proof store.
func (p *Pipeline) Enqueue(ctx context.Context, deliveryID kernel.UUID, image proof.Image) error {
	entry, err := proof.NewSubmission(deliveryID, image, p.clock.Now())
	if err != nil {
		return err
	}

	p.storeMu.Lock()
	defer p.storeMu.Unlock()

	if err := p.store.Append(ctx, entry); err != nil {
		return fmt.Errorf("append proof submission: %w", err)
	}
	p.log.Info(p.log.WithField(ctx, "submission_id", entry.ID().String()), "proof queued")
	return nil
}

// Sweep makes one pass over the proof store in enqueue order.
//
// Each sent entry is removed as soon as its delivery is completed, so an
// interrupted sweep never sends an entry twice. Corrupt entries and entries
// whose delivery no longer accepts a proof are dropped. Entries that failed
// with a transport failure stay for the next sweep. Entries enqueued while the
// sweep runs are left for the next one.
//
// A call made while another sweep is running returns at once with Skipped set.
func (p *Pipeline) Sweep(ctx context.Context) (SweepReport, error) {
	if !p.sweepMu.TryLock() {
		return SweepReport{Skipped: true}, nil
	}
	defer p.sweepMu.Unlock()

	started := time.Now()

	entries, err := p.load(ctx)
	if err != nil {
		return SweepReport{}, err
	}

	var report SweepReport
	finished := make(map[kernel.UUID]struct{}, len(entries))

	for _, entry := range entries {
		if ctx.Err() != nil {
			break
		}

		entryCtx := p.log.WithFields(ctx, map[string]any{
			"submission_id": entry.ID().String(),
			"delivery_id":   entry.DeliveryID().String(),
		})

		image, err := entry.Image()
		if err != nil {
			p.log.Warn(entryCtx, "dropping corrupt proof submission", err)
			report.Dropped++
			finished[entry.ID()] = struct{}{}
			continue
		}

		if _, err = p.deliver(entryCtx, entry.DeliveryID(), image); err != nil {
			if isObsolete(err) {
				p.log.Warn(entryCtx, "dropping proof submission for a closed delivery", err)
				report.Dropped++
				finished[entry.ID()] = struct{}{}
				continue
			}
			p.log.Warn(entryCtx, "proof submission kept for the next sweep", err)
			report.Failed++
			continue
		}

		report.Sent++
		finished[entry.ID()] = struct{}{}
		if err = p.remove(ctx, entry.ID()); err != nil {
			p.log.Warn(entryCtx, "sent proof submission not removed yet", err)
		}
	}

	remaining, err := p.compact(ctx, finished)
	p.metrics.ObserveSweep(report.Sent, report.Failed, report.Dropped, remaining, time.Since(started))
	if err != nil {
		return report, err
	}

	if report.Sent+report.Failed+report.Dropped > 0 {
		p.log.Info(p.log.WithFields(ctx, map[string]any{
			"sent":      report.Sent,
			"failed":    report.Failed,
			"dropped":   report.Dropped,
			"remaining": remaining,
		}), "proof sweep finished")
	}

	return report, nil
}

// Start runs the start-up sweep.
func (p *Pipeline) Start(ctx context.Context) (SweepReport, error) {
	return p.Sweep(ctx)
}

// OnConnectivityRestored runs a sweep after the server became reachable again.
func (p *Pipeline) OnConnectivityRestored(ctx context.Context) (SweepReport, error) {
	p.log.Info(ctx, "connectivity restored, sweeping proof store")
	return p.Sweep(ctx)
}

// Pending returns the entries currently waiting in the proof store.
func (p *Pipeline) Pending(ctx context.Context) ([]*proof.Submission, error) {
	return p.load(ctx)
}

// deliver uploads image and completes the delivery with the stored path. Each
// remote call is bounded by the upload timeout and an expired deadline is
// reported as a transport failure.
func (p *Pipeline) deliver(ctx context.Context, deliveryID kernel.UUID, image proof.Image) (string, error) {
	var path string
	if p.submitter != nil {
		err := p.withTimeout(ctx, "submit proof", func(ctx context.Context) error {
			var err error
			path, err = p.submitter.SubmitProof(ctx, deliveryID, image)
			return err
		})
		return path, err
	}

	err := p.withTimeout(ctx, "upload proof", func(ctx context.Context) error {
		var err error
		path, err = p.uploader.Upload(ctx, deliveryID, image)
		return err
	})
	if err != nil {
		return "", err
	}

	err = p.withTimeout(ctx, "complete delivery", func(ctx context.Context) error {
		return p.completer.CompleteWithProof(ctx, deliveryID, path)
	})
	if err != nil {
		return "", err
	}
	return path, nil
}

func (p *Pipeline) withTimeout(ctx context.Context, operation string, call func(context.Context) error) error {
	callCtx, cancel := context.WithTimeout(ctx, p.uploadTimeout)
	defer cancel()

	err := call(callCtx)
	if err != nil && !errs.IsRecoverable(err) && errors.Is(callCtx.Err(), context.DeadlineExceeded) {
		return errs.NewTransportFailureError(operation, err)
	}
	return err
}

func (p *Pipeline) load(ctx context.Context) ([]*proof.Submission, error) {
	p.storeMu.Lock()
	defer p.storeMu.Unlock()

	entries, err := p.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load proof store: %w", err)
	}
	return entries, nil
}

func (p *Pipeline) remove(ctx context.Context, id kernel.UUID) error {
	p.storeMu.Lock()
	defer p.storeMu.Unlock()

	return p.store.Remove(ctx, id)
}

// compact replaces the store with its current entries minus the finished ones
// and returns how many are left. Entries appended during the sweep are kept.
func (p *Pipeline) compact(ctx context.Context, finished map[kernel.UUID]struct{}) (int, error) {
	p.storeMu.Lock()
	defer p.storeMu.Unlock()

	current, err := p.store.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("load proof store: %w", err)
	}

	survivors := make([]*proof.Submission, 0, len(current))
	for _, entry := range current {
		if _, ok := finished[entry.ID()]; !ok {
			survivors = append(survivors, entry)
		}
	}

	if len(survivors) == len(current) {
		return len(current), nil
	}
	if err = p.store.Save(ctx, survivors); err != nil {
		return len(current), fmt.Errorf("save proof store: %w", err)
	}
	return len(survivors), nil
}

// isObsolete reports errors that no retry can fix: the delivery is gone,
// closed or no longer assigned to this courier.
func isObsolete(err error) bool {
	return errors.Is(err, errs.ErrObjectNotFound) ||
		errors.Is(err, errs.ErrAlreadyTerminal) ||
		errors.Is(err, errs.ErrInvalidTransition) ||
		errors.Is(err, errs.ErrUnauthorized)
}
