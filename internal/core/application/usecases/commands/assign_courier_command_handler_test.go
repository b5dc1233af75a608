package commands_test

import (
	"errors"
	"testing"

	"deliverytracker/internal/core/application/usecases/commands"
	"deliverytracker/internal/core/domain/model/delivery"
	"deliverytracker/internal/core/domain/model/kernel"
	"deliverytracker/internal/pkg/errs"
	"deliverytracker/internal/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNewAssignCourierCommand(t *testing.T) {
	admin := newAdmin(t)

	_, err := commands.NewAssignCourierCommand(admin, kernel.UUID{}, nil)
	require.ErrorIs(t, err, errs.ErrValueIsRequired)

	courierID := kernel.NewUUID()
	cmd, err := commands.NewAssignCourierCommand(admin, kernel.NewUUID(), &courierID)
	require.NoError(t, err)
	require.NoError(t, cmd.Validate())
	assert.True(t, cmd.CourierID().IsEqual(courierID))
}

func TestAssignCourierCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	d := newPending(t)
	c := newCourier(t, kernel.RoleCourier)
	courierID := c.ID()

	cmd, err := commands.NewAssignCourierCommand(newAdmin(t), d.ID(), &courierID)
	require.NoError(t, err)

	locker := new(MockLocker)
	factory := new(MockUoWFactory)
	uow := new(MockUoW)
	deliveryRepo := new(MockDeliveryRepository)
	courierRepo := new(MockCourierRepository)

	mock.InOrder(
		locker.On("Lock", ctx, d.ID()).Return(nil).Once(),
		factory.On("Create").Return(uow).Once(),
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("DeliveryRepository").Return(deliveryRepo).Once(),
		deliveryRepo.On("Get", ctx, d.ID()).Return(d, nil).Once(),
		uow.On("CourierRepository").Return(courierRepo).Once(),
		courierRepo.On("Get", ctx, courierID).Return(c, nil).Once(),
		deliveryRepo.On("Update", ctx, d).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	handler := commands.NewAssignCourierCommandHandler(factory, locker, nil)
	got, err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, delivery.Pending, got.Status())
	assert.True(t, got.IsAssignedTo(courierID))
	assert.Equal(t, "Maria", got.CourierName())
	assert.Equal(t, 1, locker.released)
	locker.AssertExpectations(t)
	factory.AssertExpectations(t)
	uow.AssertExpectations(t)
	deliveryRepo.AssertExpectations(t)
	courierRepo.AssertExpectations(t)
}

func TestAssignCourierCommandHandler_Handle_Unassign(t *testing.T) {
	ctx := t.Context()
	d := newAssigned(t, kernel.NewUUID())

	cmd, err := commands.NewAssignCourierCommand(newAdmin(t), d.ID(), nil)
	require.NoError(t, err)

	locker := new(MockLocker)
	factory := new(MockUoWFactory)
	uow, repo := expectMutation(ctx, locker, factory, d)

	handler := commands.NewAssignCourierCommandHandler(factory, locker, nil)
	got, err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Nil(t, got.CourierID())
	assert.Empty(t, got.CourierName())
	uow.AssertExpectations(t)
	repo.AssertExpectations(t)
	uow.AssertNotCalled(t, "CourierRepository")
}

func TestAssignCourierCommandHandler_Handle_ValidationError(t *testing.T) {
	ctx := t.Context()
	cmd := commands.AssignCourierCommand{} // not constructed properly

	factory := new(MockUoWFactory)
	locker := new(MockLocker)
	handler := commands.NewAssignCourierCommandHandler(factory, locker, nil)
	_, err := handler.Handle(ctx, cmd)

	require.Error(t, err)
	require.ErrorIs(t, err, commands.ErrAssignCourierCommandIsNotConstructed)
	factory.AssertNotCalled(t, "Create")
	locker.AssertNotCalled(t, "Lock", mock.Anything, mock.Anything)
}

func TestAssignCourierCommandHandler_Handle_RequiresAdmin(t *testing.T) {
	ctx := t.Context()
	courierID := kernel.NewUUID()

	tests := []struct {
		name   string
		actor  kernel.Actor
		target error
	}{
		{
			name:   "should reject courier callers",
			actor:  newCourierActor(t, courierID),
			target: errs.ErrUnauthorized,
		},
		{
			name:   "should reject missing actor",
			actor:  kernel.Actor{},
			target: errs.ErrUnauthenticated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := commands.NewAssignCourierCommand(tt.actor, kernel.NewUUID(), &courierID)
			require.NoError(t, err)

			factory := new(MockUoWFactory)
			handler := commands.NewAssignCourierCommandHandler(factory, new(MockLocker), nil)
			_, err = handler.Handle(ctx, cmd)

			require.ErrorIs(t, err, tt.target)
			factory.AssertNotCalled(t, "Create")
		})
	}
}

func TestAssignCourierCommandHandler_Handle_DeliveredIsRejected(t *testing.T) {
	ctx := t.Context()
	original := kernel.NewUUID()
	d := newDelivered(t, original, "proofs/a.jpg")
	c := newCourier(t, kernel.RoleCourier)
	courierID := c.ID()

	cmd, err := commands.NewAssignCourierCommand(newAdmin(t), d.ID(), &courierID)
	require.NoError(t, err)

	locker := new(MockLocker)
	factory := new(MockUoWFactory)
	uow := new(MockUoW)
	deliveryRepo := new(MockDeliveryRepository)
	courierRepo := new(MockCourierRepository)

	mock.InOrder(
		locker.On("Lock", ctx, d.ID()).Return(nil).Once(),
		factory.On("Create").Return(uow).Once(),
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("DeliveryRepository").Return(deliveryRepo).Once(),
		deliveryRepo.On("Get", ctx, d.ID()).Return(d, nil).Once(),
		uow.On("CourierRepository").Return(courierRepo).Once(),
		courierRepo.On("Get", ctx, courierID).Return(c, nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	reg := prometheus.NewRegistry()
	handler := commands.NewAssignCourierCommandHandler(factory, locker, metrics.NewLifecycleMetrics(reg))
	_, err = handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrInvalidTransition)
	assert.Equal(t, delivery.Delivered, d.Status())
	assert.True(t, d.IsAssignedTo(original))
	assert.NotNil(t, d.DeliveredAt())
	deliveryRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	uow.AssertNotCalled(t, "Commit", mock.Anything)
	assert.Equal(t, 1, locker.released)

	count, err := testutil.GatherAndCount(reg, "delivery_transitions_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestAssignCourierCommandHandler_Handle_UnknownCourier(t *testing.T) {
	ctx := t.Context()
	d := newPending(t)
	courierID := kernel.NewUUID()

	cmd, err := commands.NewAssignCourierCommand(newAdmin(t), d.ID(), &courierID)
	require.NoError(t, err)

	locker := new(MockLocker)
	factory := new(MockUoWFactory)
	uow := new(MockUoW)
	deliveryRepo := new(MockDeliveryRepository)
	courierRepo := new(MockCourierRepository)

	mock.InOrder(
		locker.On("Lock", ctx, d.ID()).Return(nil).Once(),
		factory.On("Create").Return(uow).Once(),
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("DeliveryRepository").Return(deliveryRepo).Once(),
		deliveryRepo.On("Get", ctx, d.ID()).Return(d, nil).Once(),
		uow.On("CourierRepository").Return(courierRepo).Once(),
		courierRepo.On("Get", ctx, courierID).
			Return(nil, errs.NewObjectNotFoundError("courier", courierID)).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	handler := commands.NewAssignCourierCommandHandler(factory, locker, nil)
	_, err = handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrObjectNotFound)
	assert.Nil(t, d.CourierID())
}

func TestAssignCourierCommandHandler_Handle_NonCourierUser(t *testing.T) {
	ctx := t.Context()
	d := newPending(t)
	seller := newCourier(t, kernel.RoleSeller)
	sellerID := seller.ID()

	cmd, err := commands.NewAssignCourierCommand(newAdmin(t), d.ID(), &sellerID)
	require.NoError(t, err)

	locker := new(MockLocker)
	factory := new(MockUoWFactory)
	uow := new(MockUoW)
	deliveryRepo := new(MockDeliveryRepository)
	courierRepo := new(MockCourierRepository)

	mock.InOrder(
		locker.On("Lock", ctx, d.ID()).Return(nil).Once(),
		factory.On("Create").Return(uow).Once(),
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("DeliveryRepository").Return(deliveryRepo).Once(),
		deliveryRepo.On("Get", ctx, d.ID()).Return(d, nil).Once(),
		uow.On("CourierRepository").Return(courierRepo).Once(),
		courierRepo.On("Get", ctx, sellerID).Return(seller, nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	handler := commands.NewAssignCourierCommandHandler(factory, locker, nil)
	_, err = handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
}

func TestAssignCourierCommandHandler_Handle_LockError(t *testing.T) {
	ctx := t.Context()
	d := newPending(t)

	cmd, err := commands.NewAssignCourierCommand(newAdmin(t), d.ID(), nil)
	require.NoError(t, err)

	locker := new(MockLocker)
	locker.On("Lock", ctx, d.ID()).Return(errors.New("lock error")).Once()
	factory := new(MockUoWFactory)

	handler := commands.NewAssignCourierCommandHandler(factory, locker, nil)
	_, err = handler.Handle(ctx, cmd)

	require.EqualError(t, err, "lock error")
	factory.AssertNotCalled(t, "Create")
}

func TestAssignCourierCommandHandler_Handle_BeginError(t *testing.T) {
	ctx := t.Context()
	d := newPending(t)

	cmd, err := commands.NewAssignCourierCommand(newAdmin(t), d.ID(), nil)
	require.NoError(t, err)

	locker := new(MockLocker)
	uow := new(MockUoW)
	factory := new(MockUoWFactory)

	mock.InOrder(
		locker.On("Lock", ctx, d.ID()).Return(nil).Once(),
		factory.On("Create").Return(uow).Once(),
		uow.On("Begin", ctx).Return(errors.New("begin error")).Once(),
	)

	handler := commands.NewAssignCourierCommandHandler(factory, locker, nil)
	_, err = handler.Handle(ctx, cmd)

	require.EqualError(t, err, "begin error")
	assert.Equal(t, 1, locker.released)
}

func TestAssignCourierCommandHandler_Handle_UpdateError(t *testing.T) {
	ctx := t.Context()
	d := newPending(t)

	cmd, err := commands.NewAssignCourierCommand(newAdmin(t), d.ID(), nil)
	require.NoError(t, err)

	locker := new(MockLocker)
	uow := new(MockUoW)
	repo := new(MockDeliveryRepository)
	factory := new(MockUoWFactory)

	mock.InOrder(
		locker.On("Lock", ctx, d.ID()).Return(nil).Once(),
		factory.On("Create").Return(uow).Once(),
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("DeliveryRepository").Return(repo).Once(),
		repo.On("Get", ctx, d.ID()).Return(d, nil).Once(),
		repo.On("Update", ctx, d).Return(errors.New("update error")).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	handler := commands.NewAssignCourierCommandHandler(factory, locker, nil)
	_, err = handler.Handle(ctx, cmd)

	require.EqualError(t, err, "update error")
	uow.AssertNotCalled(t, "Commit", mock.Anything)
}
