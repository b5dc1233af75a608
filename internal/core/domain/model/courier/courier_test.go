package courier_test

import (
	"testing"

	"deliverytracker/internal/core/domain/model/courier"
	"deliverytracker/internal/core/domain/model/kernel"
	"deliverytracker/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCourier(t *testing.T) {
	validID := kernel.NewUUID()

	t.Run("should create courier with valid parameters", func(t *testing.T) {
		c, err := courier.NewCourier(validID, "  Maria  ", kernel.RoleCourier)

		require.NoError(t, err)
		require.NoError(t, c.Validate())
		assert.True(t, c.ID().IsEqual(validID))
		assert.Equal(t, "Maria", c.Name())
		assert.Equal(t, kernel.RoleCourier, c.Role())
	})

	t.Run("should join validation errors", func(t *testing.T) {
		c, err := courier.NewCourier(kernel.UUID{}, " ", kernel.Role("driver"))

		require.Error(t, err)
		assert.Nil(t, c)
		require.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)
		require.ErrorIs(t, err, courier.ErrNameIsRequired)
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("restore behaves like new", func(t *testing.T) {
		c, err := courier.RestoreCourier(validID, "Admin", kernel.RoleAdmin)
		require.NoError(t, err)
		assert.Equal(t, kernel.RoleAdmin, c.Role())
	})
}

func TestCourier_Validate(t *testing.T) {
	var nilCourier *courier.Courier
	assert.Equal(t, courier.ErrCourierIsNotConstructed, nilCourier.Validate())
	assert.Equal(t, courier.ErrCourierIsNotConstructed, (&courier.Courier{}).Validate())
}

func TestCourier_EnsureCanReceiveDeliveries(t *testing.T) {
	testCases := []struct {
		role    kernel.Role
		allowed bool
	}{
		{kernel.RoleCourier, true},
		{kernel.RoleAdmin, false},
		{kernel.RoleSeller, false},
	}

	for _, tc := range testCases {
		t.Run(tc.role.String(), func(t *testing.T) {
			c, err := courier.NewCourier(kernel.NewUUID(), "User", tc.role)
			require.NoError(t, err)

			err = c.EnsureCanReceiveDeliveries()
			if tc.allowed {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, errs.ErrValueIsInvalid)
			assert.Contains(t, err.Error(), "cannot receive deliveries")
		})
	}
}

func TestCourier_IsEqual(t *testing.T) {
	id := kernel.NewUUID()
	a, _ := courier.NewCourier(id, "A", kernel.RoleCourier)
	b, _ := courier.NewCourier(id, "B", kernel.RoleCourier)
	c, _ := courier.NewCourier(kernel.NewUUID(), "A", kernel.RoleCourier)

	assert.True(t, a.IsEqual(b))
	assert.False(t, a.IsEqual(c))
	assert.False(t, a.IsEqual(nil))
}
