package commands_test

import (
	"context"
	"testing"
	"time"

	"deliverytracker/internal/core/application/usecases/commands"
	"deliverytracker/internal/core/domain/model/courier"
	"deliverytracker/internal/core/domain/model/delivery"
	"deliverytracker/internal/core/domain/model/kernel"
	"deliverytracker/internal/core/ports"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockDeliveryRepository struct{ mock.Mock }

func (m *MockDeliveryRepository) Add(ctx context.Context, d *delivery.Delivery) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDeliveryRepository) Update(ctx context.Context, d *delivery.Delivery) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDeliveryRepository) Get(ctx context.Context, id kernel.UUID) (*delivery.Delivery, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*delivery.Delivery), args.Error(1)
}

func (m *MockDeliveryRepository) GetByInvoiceNumber(ctx context.Context, number string) (*delivery.Delivery, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*delivery.Delivery), args.Error(1)
}

type MockCourierRepository struct{ mock.Mock }

func (m *MockCourierRepository) Add(ctx context.Context, c *courier.Courier) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCourierRepository) Get(ctx context.Context, id kernel.UUID) (*courier.Courier, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*courier.Courier), args.Error(1)
}

type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) DeliveryRepository() ports.DeliveryRepository {
	args := m.Called()
	return args.Get(0).(ports.DeliveryRepository)
}

func (m *MockUoW) CourierRepository() ports.CourierRepository {
	args := m.Called()
	return args.Get(0).(ports.CourierRepository)
}

type MockUoWFactory struct{ mock.Mock }

func (m *MockUoWFactory) Create() commands.UoW {
	args := m.Called()
	return args.Get(0).(commands.UoW)
}

// MockLocker records Lock calls and counts releases.
type MockLocker struct {
	mock.Mock
	released int
}

func (m *MockLocker) Lock(ctx context.Context, id kernel.UUID) (func(), error) {
	args := m.Called(ctx, id)
	if err := args.Error(0); err != nil {
		return nil, err
	}
	return func() { m.released++ }, nil
}

var fixedNow = time.Date(2024, 3, 10, 14, 30, 0, 0, time.UTC)

func newAdmin(t *testing.T) kernel.Actor {
	t.Helper()
	actor, err := kernel.NewActor(kernel.NewUUID(), kernel.RoleAdmin)
	require.NoError(t, err)
	return actor
}

func newCourierActor(t *testing.T, id kernel.UUID) kernel.Actor {
	t.Helper()
	actor, err := kernel.NewActor(id, kernel.RoleCourier)
	require.NoError(t, err)
	return actor
}

func newInvoice(t *testing.T, number string) delivery.Invoice {
	t.Helper()
	taxID, err := kernel.NewTaxID("12345678901")
	require.NoError(t, err)
	inv, err := delivery.NewInvoice(
		number, "ACME Ltda", taxID,
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		decimal.RequireFromString("150.25"), "",
	)
	require.NoError(t, err)
	return inv
}

func newPending(t *testing.T) *delivery.Delivery {
	t.Helper()
	d, err := delivery.NewDelivery(kernel.NewUUID(), newInvoice(t, "1001"))
	require.NoError(t, err)
	return d
}

func newAssigned(t *testing.T, courierID kernel.UUID) *delivery.Delivery {
	t.Helper()
	d := newPending(t)
	require.NoError(t, d.AssignCourier(&courierID, "Maria"))
	return d
}

func newDelivered(t *testing.T, courierID kernel.UUID, proofPath string) *delivery.Delivery {
	t.Helper()
	d := newAssigned(t, courierID)
	require.NoError(t, d.CompleteWithProof(proofPath, fixedNow.Add(-time.Hour)))
	return d
}

func newCourier(t *testing.T, role kernel.Role) *courier.Courier {
	t.Helper()
	c, err := courier.NewCourier(kernel.NewUUID(), "Maria", role)
	require.NoError(t, err)
	return c
}

// expectMutation wires the mocks for one successful lock, begin, get, update and
// commit round trip on d.
func expectMutation(ctx context.Context, locker *MockLocker, factory *MockUoWFactory, d *delivery.Delivery) (*MockUoW, *MockDeliveryRepository) {
	return expectMutationWithRepo(ctx, locker, factory, new(MockDeliveryRepository), d)
}

func expectMutationWithRepo(
	ctx context.Context,
	locker *MockLocker,
	factory *MockUoWFactory,
	repo *MockDeliveryRepository,
	d *delivery.Delivery,
) (*MockUoW, *MockDeliveryRepository) {
	uow := new(MockUoW)

	mock.InOrder(
		locker.On("Lock", ctx, d.ID()).Return(nil).Once(),
		factory.On("Create").Return(uow).Once(),
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("DeliveryRepository").Return(repo).Once(),
		repo.On("Get", ctx, d.ID()).Return(d, nil).Once(),
		repo.On("Update", ctx, d).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	return uow, repo
}
