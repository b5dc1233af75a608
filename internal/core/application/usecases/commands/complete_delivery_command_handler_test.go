package commands_test

import (
	"testing"
	"time"

	"deliverytracker/internal/core/application/usecases/commands"
	"deliverytracker/internal/core/domain/model/delivery"
	"deliverytracker/internal/core/domain/model/kernel"
	"deliverytracker/internal/core/ports"
	"deliverytracker/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedClock = ports.ClockFunc(func() time.Time { return fixedNow })

func TestCompleteDeliveryCommandHandler_Handle_AssignedCourier(t *testing.T) {
	ctx := t.Context()
	courierID := kernel.NewUUID()
	d := newAssigned(t, courierID)

	cmd, err := commands.NewCompleteDeliveryCommand(newCourierActor(t, courierID), d.ID(), " proofs/p.jpg ")
	require.NoError(t, err)

	locker := new(MockLocker)
	factory := new(MockUoWFactory)
	uow, repo := expectMutation(ctx, locker, factory, d)

	handler := commands.NewCompleteDeliveryCommandHandler(factory, locker, fixedClock, nil)
	got, err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, delivery.Delivered, got.Status())
	assert.Equal(t, "proofs/p.jpg", got.ProofImagePath())
	require.NotNil(t, got.DeliveredAt())
	assert.Equal(t, fixedNow, *got.DeliveredAt())
	uow.AssertExpectations(t)
	repo.AssertExpectations(t)
}

func TestCompleteDeliveryCommandHandler_Handle_AdminWithoutProof(t *testing.T) {
	ctx := t.Context()
	d := newAssigned(t, kernel.NewUUID())

	cmd, err := commands.NewCompleteDeliveryCommand(newAdmin(t), d.ID(), "")
	require.NoError(t, err)

	locker := new(MockLocker)
	factory := new(MockUoWFactory)
	expectMutation(ctx, locker, factory, d)

	handler := commands.NewCompleteDeliveryCommandHandler(factory, locker, fixedClock, nil)
	got, err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, delivery.Delivered, got.Status())
	assert.Empty(t, got.ProofImagePath())
}

func TestCompleteDeliveryCommandHandler_Handle_Rejections(t *testing.T) {
	assignee := kernel.NewUUID()

	tests := []struct {
		name   string
		build  func(t *testing.T) *delivery.Delivery
		actor  func(t *testing.T) kernel.Actor
		target error
	}{
		{
			name:   "should reject another courier",
			build:  func(t *testing.T) *delivery.Delivery { return newAssigned(t, assignee) },
			actor:  func(t *testing.T) kernel.Actor { return newCourierActor(t, kernel.NewUUID()) },
			target: errs.ErrUnauthorized,
		},
		{
			name:   "should reject an already delivered delivery",
			build:  func(t *testing.T) *delivery.Delivery { return newDelivered(t, assignee, "proofs/a.jpg") },
			actor:  newAdmin,
			target: errs.ErrAlreadyTerminal,
		},
		{
			name: "should reject a cancelled delivery",
			build: func(t *testing.T) *delivery.Delivery {
				d := newAssigned(t, assignee)
				require.NoError(t, d.Cancel(""))
				return d
			},
			actor:  newAdmin,
			target: errs.ErrAlreadyTerminal,
		},
		{
			name:   "should reject a delivery without courier",
			build:  newPending,
			actor:  newAdmin,
			target: errs.ErrInvalidTransition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := t.Context()
			d := tt.build(t)
			before := d.Status()

			cmd, err := commands.NewCompleteDeliveryCommand(tt.actor(t), d.ID(), "proofs/b.jpg")
			require.NoError(t, err)

			locker := new(MockLocker)
			factory := new(MockUoWFactory)
			uow := new(MockUoW)
			repo := new(MockDeliveryRepository)

			mock.InOrder(
				locker.On("Lock", ctx, d.ID()).Return(nil).Once(),
				factory.On("Create").Return(uow).Once(),
				uow.On("Begin", ctx).Return(nil).Once(),
				uow.On("DeliveryRepository").Return(repo).Once(),
				repo.On("Get", ctx, d.ID()).Return(d, nil).Once(),
				uow.On("Rollback", ctx).Return(nil).Once(),
			)

			handler := commands.NewCompleteDeliveryCommandHandler(factory, locker, fixedClock, nil)
			_, err = handler.Handle(ctx, cmd)

			require.ErrorIs(t, err, tt.target)
			assert.Equal(t, before, d.Status())
			repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		})
	}
}

func TestCompleteDeliveryCommandHandler_Handle_NotFound(t *testing.T) {
	ctx := t.Context()
	id := kernel.NewUUID()

	cmd, err := commands.NewCompleteDeliveryCommand(newAdmin(t), id, "")
	require.NoError(t, err)

	locker := new(MockLocker)
	factory := new(MockUoWFactory)
	uow := new(MockUoW)
	repo := new(MockDeliveryRepository)

	mock.InOrder(
		locker.On("Lock", ctx, id).Return(nil).Once(),
		factory.On("Create").Return(uow).Once(),
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("DeliveryRepository").Return(repo).Once(),
		repo.On("Get", ctx, id).Return(nil, errs.NewObjectNotFoundError("delivery", id)).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	handler := commands.NewCompleteDeliveryCommandHandler(factory, locker, fixedClock, nil)
	_, err = handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrObjectNotFound)
}

func TestCompleteDeliveryCommandHandler_Handle_Unauthenticated(t *testing.T) {
	cmd, err := commands.NewCompleteDeliveryCommand(kernel.Actor{}, kernel.NewUUID(), "")
	require.NoError(t, err)

	factory := new(MockUoWFactory)
	handler := commands.NewCompleteDeliveryCommandHandler(factory, new(MockLocker), fixedClock, nil)
	_, err = handler.Handle(t.Context(), cmd)

	require.ErrorIs(t, err, errs.ErrUnauthenticated)
	factory.AssertNotCalled(t, "Create")
}
