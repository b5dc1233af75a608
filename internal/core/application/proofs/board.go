package proofs

import (
	"context"
	"errors"

	"deliverytracker/internal/core/domain/model/delivery"
	"deliverytracker/internal/core/domain/model/kernel"
	"deliverytracker/internal/core/domain/model/proof"
	"deliverytracker/internal/pkg/errs"
	"deliverytracker/internal/pkg/optimistic"
)

// Card is the courier's local view of one assigned delivery.
type Card struct {
	ID            kernel.UUID
	InvoiceNumber string
	ClientName    string
	Status        delivery.Status
	// ProofQueued is set while the proof waits in the local proof store.
	ProofQueued bool
}

// CardSource lists the courier's deliveries as the server sees them.
type CardSource interface {
	CourierCards(ctx context.Context) ([]Card, error)
}

type submitter interface {
	Submit(ctx context.Context, deliveryID kernel.UUID, image proof.Image) (SubmitResult, error)
}

// Board shows a submitted delivery as Delivered while the submission is in
// flight and settles on what the pipeline reports: Delivered when sent,
// Pending with ProofQueued when queued, the previous card when rejected.
type Board struct {
	cards    *optimistic.Store[kernel.UUID, Card]
	pipeline submitter
}

func NewBoard(pipeline submitter) *Board {
	return &Board{
		cards:    optimistic.NewStore[kernel.UUID, Card](),
		pipeline: pipeline,
	}
}

// Refresh reconciles every card the source returns with the server state.
func (b *Board) Refresh(ctx context.Context, source CardSource) error {
	cards, err := source.CourierCards(ctx)
	if err != nil {
		return err
	}
	b.Reconcile(cards...)
	return nil
}

func (b *Board) Reconcile(cards ...Card) {
	for _, card := range cards {
		b.cards.Reconcile(card.ID, card)
	}
}

func (b *Board) Cards() []optimistic.View[Card] {
	return b.cards.List()
}

func (b *Board) Card(id kernel.UUID) (optimistic.View[Card], bool) {
	return b.cards.Get(id)
}

// Submit runs the pipeline for a delivery already on the board.
func (b *Board) Submit(ctx context.Context, deliveryID kernel.UUID, image proof.Image) (SubmitResult, error) {
	var result SubmitResult

	_, err := b.cards.Apply(ctx, deliveryID,
		func(card Card) Card {
			card.Status = delivery.Delivered
			card.ProofQueued = false
			return card
		},
		func(ctx context.Context, card Card) (Card, error) {
			submitted, err := b.pipeline.Submit(ctx, card.ID, image)
			if err != nil {
				return Card{}, err
			}
			result = submitted
			card.ProofQueued = submitted.Outcome == OutcomeQueued
			if card.ProofQueued {
				card.Status = delivery.Pending
			}
			return card, nil
		},
	)
	if errors.Is(err, optimistic.ErrUnknownKey) {
		return SubmitResult{}, errs.NewObjectNotFoundError("deliveryID", deliveryID)
	}
	if err != nil {
		return SubmitResult{}, err
	}
	return result, nil
}
